package tui

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fentz26/taskwatch/internal/models"
)

// Controller runs the live view. It is a monitor.Observer and the io.Writer
// behind the run's console sink.
type Controller struct {
	program *tea.Program
	done    chan struct{}
	err     error
}

// Start launches the view on its own goroutine, writing to out.
func Start(out io.Writer, labels []string, opts ...tea.ProgramOption) *Controller {
	if out == nil {
		out = os.Stdout
	}
	opts = append([]tea.ProgramOption{tea.WithOutput(out)}, opts...)
	program := tea.NewProgram(NewModel(labels), opts...)
	c := &Controller{
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, c.err = program.Run()
		close(c.done)
	}()
	return c
}

// OnTransition forwards a monitor event to the view.
func (c *Controller) OnTransition(ev models.Event) {
	c.send(transitionMsg(ev))
}

// Write forwards sink output to the log pane.
func (c *Controller) Write(p []byte) (int, error) {
	c.send(logMsg(string(p)))
	return len(p), nil
}

// send drops msg once the view has exited, so a monitor that keeps
// running headless never waits on a closed program.
func (c *Controller) send(msg tea.Msg) {
	select {
	case <-c.done:
		return
	default:
	}
	c.program.Send(msg)
}

// Finish tells the view the monitor returned; the view then exits.
func (c *Controller) Finish(err error) {
	c.send(finishedMsg{err: err})
}

// Done is closed once the view has exited, either after Finish or
// because the user quit.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the view has exited.
func (c *Controller) Wait() error {
	<-c.done
	return c.err
}
