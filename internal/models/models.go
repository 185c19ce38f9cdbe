// Package models defines the core domain types for taskwatch.
package models

import (
	"strconv"
	"time"
)

// LifecycleState is the progress marker a worker writes and a monitor acknowledges.
type LifecycleState int32

const (
	StateError LifecycleState = iota - 1
	StateNone
	StateReady
	StatePaused
	StateStarted
	StateRunning
	StateMilestone
	StateDone
	StateComplete
)

var stateNames = map[LifecycleState]string{
	StateError:     "Error",
	StateNone:      "None",
	StateReady:     "Ready",
	StatePaused:    "Paused",
	StateStarted:   "Started",
	StateRunning:   "Running",
	StateMilestone: "Milestone",
	StateDone:      "Done",
	StateComplete:  "Complete",
}

func (s LifecycleState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// IsTerminal reports whether no further worker transition can follow s.
func (s LifecycleState) IsTerminal() bool {
	return s == StateDone || s == StateComplete || s == StateError
}

// Event describes one acknowledged transition, delivered to observers.
type Event struct {
	RunID   string         `json:"run_id"`
	TaskID  string         `json:"task_id"`
	Label   string         `json:"label"`
	State   LifecycleState `json:"state"`
	Elapsed time.Duration  `json:"elapsed,omitempty"`
	Message string         `json:"message,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	At      time.Time      `json:"at"`
}

// FormatMillis renders d as fractional milliseconds, e.g. "2000.41".
func FormatMillis(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 2, 64)
}
