// Package status provides the per-task record shared by a worker and its monitor.
//
// A Record carries no lock. The state field is the synchronization point:
// a worker appends to the message buffer and stores elapsed before it
// writes the state that announces them, and a monitor reads those fields
// only after it has loaded that state.
package status

import (
	"sync/atomic"
	"time"

	"github.com/fentz26/taskwatch/internal/models"
	"github.com/google/uuid"
)

// Record is the shared status cell for one task.
type Record struct {
	ID string

	state   atomic.Int32
	elapsed atomic.Int64

	// Immutable snapshots; each append publishes a new string.
	messages atomic.Pointer[string]
	reason   atomic.Pointer[string]

	notify atomic.Pointer[chan struct{}]
}

// New creates a record in the None state.
func New() *Record {
	r := &Record{ID: uuid.New().String()}
	r.state.Store(int32(models.StateNone))
	return r
}

// State returns the current lifecycle state.
func (r *Record) State() models.LifecycleState {
	return models.LifecycleState(r.state.Load())
}

// SetState stores s and wakes an attached monitor.
func (r *Record) SetState(s models.LifecycleState) {
	r.state.Store(int32(s))
	r.wake()
}

// CompareAndSwapState stores next only if the current state is old.
func (r *Record) CompareAndSwapState(old, next models.LifecycleState) bool {
	if !r.state.CompareAndSwap(int32(old), int32(next)) {
		return false
	}
	r.wake()
	return true
}

// Elapsed is valid once the state has reached Done or Complete.
func (r *Record) Elapsed() time.Duration {
	return time.Duration(r.elapsed.Load())
}

func (r *Record) SetElapsed(d time.Duration) {
	r.elapsed.Store(int64(d))
}

// AppendMessage adds text to the message buffer. Only the owning worker calls it.
func (r *Record) AppendMessage(text string) {
	next := text
	if cur := r.messages.Load(); cur != nil {
		next = *cur + text
	}
	r.messages.Store(&next)
}

// Messages returns everything appended so far.
func (r *Record) Messages() string {
	if cur := r.messages.Load(); cur != nil {
		return *cur
	}
	return ""
}

// Fail records reason and moves the record to the Error state.
func (r *Record) Fail(reason string) {
	r.reason.Store(&reason)
	r.SetState(models.StateError)
}

// Reason is valid once the state is Error.
func (r *Record) Reason() string {
	if p := r.reason.Load(); p != nil {
		return *p
	}
	return ""
}

// Notify attaches a wake channel. Every state write performs a
// non-blocking send on it, so a buffered channel of size one coalesces
// wake-ups from any number of records.
func (r *Record) Notify(ch chan struct{}) {
	r.notify.Store(&ch)
}

func (r *Record) wake() {
	p := r.notify.Load()
	if p == nil || *p == nil {
		return
	}
	select {
	case *p <- struct{}{}:
	default:
	}
}
