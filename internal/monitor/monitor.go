// Package monitor polls status records and turns their transitions into
// exactly one reaction each.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fentz26/taskwatch/internal/models"
	"github.com/fentz26/taskwatch/internal/sink"
	"github.com/fentz26/taskwatch/internal/status"
	"github.com/google/uuid"
)

// PollMode selects how the loop waits between ticks that fired nothing.
type PollMode string

const (
	// PollYield busy-polls, yielding the processor between ticks.
	PollYield PollMode = "yield"
	// PollNotify sleeps until a registered record changes state.
	PollNotify PollMode = "notify"
)

// ParsePollMode validates a mode name. Empty means PollYield.
func ParsePollMode(s string) (PollMode, error) {
	switch PollMode(s) {
	case "", PollYield:
		return PollYield, nil
	case PollNotify:
		return PollNotify, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPollMode, s)
}

// Options configures a Monitor. Zero values get defaults in New.
type Options struct {
	Sink    *sink.Console
	Counter *Counter
	Mode    PollMode
	// Interval bounds a PollNotify wait when no wake-up arrives.
	Interval time.Duration
	// Hardened stops counting a task whose reaction faults and makes Run
	// report the fault.
	Hardened  bool
	Logger    *log.Logger
	Observers []Observer
}

// entry is monitor-owned bookkeeping for one registered record.
type entry struct {
	label    string
	rec      *status.Record
	counted  bool
	terminal bool
	failed   bool
	flushed  int
}

// Stats is a snapshot of monitor progress.
type Stats struct {
	RunID    string `json:"run_id"`
	Ticks    int64  `json:"ticks"`
	Tasks    int    `json:"tasks"`
	Terminal int    `json:"terminal"`
	Live     int    `json:"live"`
	Faults   int    `json:"faults"`
}

// Monitor runs the polling control loop over a fixed set of records.
type Monitor struct {
	runID     string
	sink      *sink.Console
	counter   *Counter
	mode      PollMode
	interval  time.Duration
	hardened  bool
	logger    *log.Logger
	observers []Observer

	wake    chan struct{}
	running atomic.Bool
	ticks   atomic.Int64

	mu       sync.Mutex
	entries  []*entry
	labels   map[string]bool
	terminal int
	faults   []error
}

// New creates a monitor.
func New(opts Options) *Monitor {
	if opts.Sink == nil {
		opts.Sink = sink.New(nil)
	}
	if opts.Counter == nil {
		opts.Counter = NewCounter()
	}
	if opts.Mode == "" {
		opts.Mode = PollYield
	}
	if opts.Interval <= 0 {
		opts.Interval = 50 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Monitor{
		runID:     uuid.New().String(),
		sink:      opts.Sink,
		counter:   opts.Counter,
		mode:      opts.Mode,
		interval:  opts.Interval,
		hardened:  opts.Hardened,
		logger:    opts.Logger,
		observers: opts.Observers,
		wake:      make(chan struct{}, 1),
		labels:    make(map[string]bool),
	}
}

// RunID identifies this monitor run in emitted events.
func (m *Monitor) RunID() string {
	return m.runID
}

// Register adds a record under label. All records must be registered before Run.
func (m *Monitor) Register(label string, rec *status.Record) error {
	if rec == nil {
		return ErrNilRecord
	}
	if m.running.Load() {
		return ErrAlreadyRunning
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.labels[label] {
		return fmt.Errorf("%s: %w", label, ErrDuplicateLabel)
	}
	m.labels[label] = true
	rec.Notify(m.wake)
	m.entries = append(m.entries, &entry{label: label, rec: rec})
	return nil
}

// Run polls until every registered record has been observed in a terminal
// state and the live-task counter is zero. A task that never finishes
// keeps Run looping until ctx ends.
//
// In hardened mode Run returns the reaction faults it contained, joined
// and wrapping ErrReactionFault.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer m.running.Store(false)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fired := m.Tick()
		if m.finished() {
			return m.faultErr()
		}
		if fired == 0 {
			m.wait(ctx)
		}
	}
}

// Tick makes one pass over every registered record and returns how many
// reactions fired.
func (m *Monitor) Tick() int {
	m.ticks.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	fired := 0
	for _, e := range m.entries {
		if e.terminal {
			continue
		}
		effects, ok, err := m.react(e)
		if ok {
			fired++
		}
		if err != nil {
			m.fault(e, err)
		}
		for _, fx := range effects {
			if err := m.apply(e, fx); err != nil {
				m.fault(e, err)
			}
		}
	}
	return fired
}

// Stats returns a progress snapshot.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		RunID:    m.runID,
		Ticks:    m.ticks.Load(),
		Tasks:    len(m.entries),
		Terminal: m.terminal,
		Live:     m.counter.Value(),
		Faults:   len(m.faults),
	}
}

// effect is the output owed for one fired row.
type effect struct {
	state models.LifecycleState
	text  string
	fill  func(ev *models.Event)
}

// react applies the transition table to one record. It only does
// bookkeeping: acknowledgment, counter and terminal marks are settled for
// the whole row before any of the returned effects runs, so a failing
// side effect can neither re-fire the row nor leave the counter wrong.
func (m *Monitor) react(e *entry) (effects []effect, fired bool, err error) {
	switch e.rec.State() {
	case models.StateStarted:
		if !e.rec.CompareAndSwapState(models.StateStarted, models.StateRunning) {
			return nil, false, nil
		}
		return m.onStarted(e, nil), true, nil

	case models.StateMilestone:
		if !e.rec.CompareAndSwapState(models.StateMilestone, models.StateRunning) {
			return nil, false, nil
		}
		// A Started overwritten before it was polled still gets its reaction.
		effects = m.onStarted(e, effects)
		return m.onMilestone(e, effects), true, nil

	case models.StateDone:
		if !e.rec.CompareAndSwapState(models.StateDone, models.StateComplete) {
			return nil, false, nil
		}
		effects = m.onStarted(e, effects)
		effects = m.onMilestone(e, effects)
		effects, err = m.onDone(e, effects)
		return effects, true, err

	case models.StateError:
		effects, err = m.onError(e, nil)
		return effects, true, err
	}
	return nil, false, nil
}

func (m *Monitor) onStarted(e *entry, effects []effect) []effect {
	if e.counted {
		return effects
	}
	e.counted = true
	m.counter.Inc()

	return append(effects, effect{state: models.StateStarted, text: e.label + " Running\n"})
}

// onMilestone claims whatever the worker appended since the last flush.
func (m *Monitor) onMilestone(e *entry, effects []effect) []effect {
	msgs := e.rec.Messages()
	if len(msgs) <= e.flushed {
		return effects
	}
	text := msgs[e.flushed:]
	e.flushed = len(msgs)

	return append(effects, effect{
		state: models.StateMilestone,
		text:  text,
		fill:  func(ev *models.Event) { ev.Message = text },
	})
}

func (m *Monitor) onDone(e *entry, effects []effect) ([]effect, error) {
	m.markTerminal(e)
	_, err := m.counter.Dec()

	elapsed := e.rec.Elapsed()
	return append(effects, effect{
		state: models.StateDone,
		text:  fmt.Sprintf("%s Took %sms\n%s Complete\n", e.label, models.FormatMillis(elapsed), e.label),
		fill:  func(ev *models.Event) { ev.Elapsed = elapsed },
	}), err
}

func (m *Monitor) onError(e *entry, effects []effect) ([]effect, error) {
	m.markTerminal(e)
	var err error
	if e.counted {
		_, err = m.counter.Dec()
	}

	reason := e.rec.Reason()
	return append(effects, effect{
		state: models.StateError,
		text:  fmt.Sprintf("%s Failed: %s\n", e.label, reason),
		fill:  func(ev *models.Event) { ev.Reason = reason },
	}), err
}

func (m *Monitor) markTerminal(e *entry) {
	if e.terminal {
		return
	}
	e.terminal = true
	m.terminal++
}

// apply writes the console line first, then notifies observers. Each
// step is recovered on its own so one fault cannot suppress the others.
func (m *Monitor) apply(e *entry, fx effect) error {
	err := m.guard(e, func() error { return m.emit(e, fx.text) })
	if len(m.observers) == 0 {
		return err
	}

	ev := models.Event{
		RunID:  m.runID,
		TaskID: e.rec.ID,
		Label:  e.label,
		State:  fx.state,
		At:     time.Now(),
	}
	if fx.fill != nil {
		fx.fill(&ev)
	}
	for _, o := range m.observers {
		o := o
		err = errors.Join(err, m.guard(e, func() error {
			o.OnTransition(ev)
			return nil
		}))
	}
	return err
}

func (m *Monitor) guard(e *entry, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: panic: %v", e.label, ErrReactionFault, r)
		}
	}()
	return fn()
}

func (m *Monitor) emit(e *entry, text string) error {
	if err := m.sink.Write(text); err != nil {
		return fmt.Errorf("%s: %w: %v", e.label, ErrReactionFault, err)
	}
	return nil
}

// fault contains a reaction failure to its own task.
func (m *Monitor) fault(e *entry, err error) {
	m.logger.Printf("monitor: %v", err)
	if !m.hardened {
		return
	}
	m.faults = append(m.faults, err)
	if e.failed {
		return
	}
	e.failed = true
	if e.counted && !e.terminal {
		if _, decErr := m.counter.Dec(); decErr != nil {
			m.logger.Printf("monitor: %s: %v", e.label, decErr)
		}
	}
	m.markTerminal(e)
}

func (m *Monitor) finished() bool {
	m.mu.Lock()
	done := m.terminal == len(m.entries)
	m.mu.Unlock()
	return done && m.counter.Value() == 0
}

func (m *Monitor) faultErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.faults) == 0 {
		return nil
	}
	return errors.Join(m.faults...)
}

func (m *Monitor) wait(ctx context.Context) {
	if m.mode != PollNotify {
		runtime.Gosched()
		return
	}

	timer := time.NewTimer(m.interval)
	defer timer.Stop()
	select {
	case <-m.wake:
	case <-timer.C:
	case <-ctx.Done():
	}
}
