package monitor

import "github.com/fentz26/taskwatch/internal/models"

// Observer is notified once for every transition the monitor acknowledges.
// Calls come from the monitor goroutine while it holds its own lock, so an
// observer must not call back into the Monitor.
type Observer interface {
	OnTransition(ev models.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev models.Event)

func (f ObserverFunc) OnTransition(ev models.Event) { f(ev) }
