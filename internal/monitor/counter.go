package monitor

import "sync"

// Counter tracks tasks a monitor has seen start but not yet seen finish.
// One Counter may be shared by several monitors.
type Counter struct {
	mu sync.Mutex
	n  int
}

// NewCounter creates a counter at zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Inc records a started task and returns the new count.
func (c *Counter) Inc() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

// Dec records a finished task. The count never drops below zero.
func (c *Counter) Dec() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == 0 {
		return 0, ErrCounterUnderflow
	}
	c.n--
	return c.n, nil
}

// Value returns the current count.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
