package tui

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fentz26/taskwatch/internal/models"
)

func TestModelAppliesTransitions(t *testing.T) {
	m := NewModel([]string{"TaskOne", "TaskTwo"})

	m.Update(transitionMsg(models.Event{Label: "TaskOne", State: models.StateStarted}))
	m.Update(transitionMsg(models.Event{Label: "TaskTwo", State: models.StateStarted}))
	m.Update(transitionMsg(models.Event{Label: "TaskTwo", State: models.StateMilestone, Message: "TaskTwo 50 Percent at 1000.12ms\n"}))

	live, done := m.counts()
	if live != 2 || done != 0 {
		t.Errorf("Expected 2 live and 0 done, got %d and %d", live, done)
	}
	if m.index["TaskTwo"].milestone != "TaskTwo 50 Percent at 1000.12ms" {
		t.Errorf("Unexpected milestone %q", m.index["TaskTwo"].milestone)
	}

	m.Update(transitionMsg(models.Event{Label: "TaskTwo", State: models.StateDone, Elapsed: 2 * time.Second}))
	m.Update(transitionMsg(models.Event{Label: "TaskOne", State: models.StateError, Reason: "sensor offline"}))

	live, done = m.counts()
	if live != 0 || done != 2 {
		t.Errorf("Expected 0 live and 2 done, got %d and %d", live, done)
	}

	view := m.View()
	for _, want := range []string{"TaskOne", "failed: sensor offline", "complete in 2000.00ms", "Finished: 2/2"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q:\n%s", want, view)
		}
	}
}

func TestModelUnknownLabelAddsRow(t *testing.T) {
	m := NewModel(nil)
	if !strings.Contains(m.View(), "No tasks registered.") {
		t.Error("Expected empty-state text")
	}
	m.Update(transitionMsg(models.Event{Label: "Late", State: models.StateStarted}))
	if len(m.rows) != 1 || m.rows[0].label != "Late" {
		t.Errorf("Expected a row for Late, got %+v", m.rows)
	}
}

func TestModelLogPane(t *testing.T) {
	m := NewModel([]string{"A"})
	m.Update(logMsg("A Running\nA Took "))
	m.Update(logMsg("5.00ms\n"))

	if len(m.logs) != 2 || m.logs[0] != "A Running" || m.logs[1] != "A Took 5.00ms" {
		t.Errorf("Unexpected log lines %q", m.logs)
	}

	for i := 0; i < maxLogLines*2; i++ {
		m.Update(logMsg("line\n"))
	}
	if len(m.logs) != maxLogLines {
		t.Errorf("Expected log pane capped at %d, got %d", maxLogLines, len(m.logs))
	}
}

func TestModelFinishedQuits(t *testing.T) {
	m := NewModel([]string{"A"})
	_, cmd := m.Update(finishedMsg{err: errors.New("A: reaction fault")})
	if cmd == nil {
		t.Fatal("Expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if !strings.Contains(m.View(), "A: reaction fault") {
		t.Error("Expected the monitor error in the status bar")
	}
	if m.logs[len(m.logs)-1] != "App Finished" {
		t.Errorf("Expected App Finished as the last log line, got %q", m.logs)
	}
}

func TestControllerExitsOnFinish(t *testing.T) {
	c := Start(io.Discard, []string{"A"}, tea.WithInput(new(bytes.Buffer)))

	c.OnTransition(models.Event{Label: "A", State: models.StateStarted})
	c.Write([]byte("A Running\n"))
	c.Finish(nil)

	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for the view to exit")
	}
	if err := c.Wait(); err != nil {
		t.Errorf("Unexpected program error: %v", err)
	}
}

func TestControllerDropsMessagesAfterExit(t *testing.T) {
	c := Start(io.Discard, []string{"A"}, tea.WithInput(new(bytes.Buffer)))
	c.Finish(nil)
	if err := c.Wait(); err != nil {
		t.Fatalf("Unexpected program error: %v", err)
	}

	sent := make(chan struct{})
	go func() {
		c.OnTransition(models.Event{Label: "A", State: models.StateDone})
		if n, err := c.Write([]byte("A Complete\n")); err != nil || n != len("A Complete\n") {
			t.Errorf("Write after exit = %d, %v", n, err)
		}
		c.Finish(nil)
		close(sent)
	}()

	select {
	case <-sent:
	case <-time.After(5 * time.Second):
		t.Fatal("Sending to an exited view blocked")
	}
}
