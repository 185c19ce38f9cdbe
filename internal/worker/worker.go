// Package worker runs simulated tasks that report progress only through a status.Record.
package worker

import (
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/fentz26/taskwatch/internal/models"
	"github.com/fentz26/taskwatch/internal/status"
)

var (
	ErrNoLabel      = errors.New("task label is empty")
	ErrNoStages     = errors.New("task has no stages")
	ErrInvalidStage = errors.New("stage duration must be positive")
)

// WorkFunc performs one stage of simulated work.
type WorkFunc func(stage int, d time.Duration) error

// Sleep is the default WorkFunc.
func Sleep(_ int, d time.Duration) error {
	time.Sleep(d)
	return nil
}

// Task is a fixed sequence of timed stages. Every stage boundary except
// the last is reported as a milestone.
type Task struct {
	Label  string
	Stages []time.Duration

	// Prepare runs before the task announces itself. A failure here
	// moves the record straight from None to Error.
	Prepare func() error
	// Work defaults to Sleep.
	Work WorkFunc
}

// Validate checks that the task can run.
func (t *Task) Validate() error {
	if t.Label == "" {
		return ErrNoLabel
	}
	if len(t.Stages) == 0 {
		return fmt.Errorf("%s: %w", t.Label, ErrNoStages)
	}
	for i, d := range t.Stages {
		if d <= 0 {
			return fmt.Errorf("%s stage %d: %w", t.Label, i, ErrInvalidStage)
		}
	}
	return nil
}

// Total is the configured duration of all stages.
func (t *Task) Total() time.Duration {
	var total time.Duration
	for _, d := range t.Stages {
		total += d
	}
	return total
}

// Spawn runs the task on its own goroutine. No handle is returned: the
// record's terminal state is the only completion signal.
func (t *Task) Spawn(rec *status.Record) {
	go t.Run(rec)
}

// Run drives rec through Started, one Milestone per inner stage boundary
// and Done, or Error if a step fails.
func (t *Task) Run(rec *status.Record) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("task %s panic: %v\n%s", t.Label, r, debug.Stack())
			rec.Fail(fmt.Sprintf("panic: %v", r))
		}
	}()

	if t.Prepare != nil {
		if err := t.Prepare(); err != nil {
			rec.Fail(err.Error())
			return
		}
	}

	work := t.Work
	if work == nil {
		work = Sleep
	}

	rec.SetState(models.StateStarted)
	start := time.Now()

	total := t.Total()
	var planned time.Duration
	for i, d := range t.Stages {
		if err := work(i, d); err != nil {
			rec.Fail(err.Error())
			return
		}
		planned += d
		if i == len(t.Stages)-1 {
			break
		}

		pct := int(planned * 100 / total)
		rec.AppendMessage(fmt.Sprintf("%s %d Percent at %sms\n", t.Label, pct, models.FormatMillis(time.Since(start))))
		rec.SetState(models.StateMilestone)
	}

	rec.SetElapsed(time.Since(start))
	rec.SetState(models.StateDone)
}
