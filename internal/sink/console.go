// Package sink serializes text output from concurrent producers.
package sink

import (
	"errors"
	"io"
	"os"
	"sync"
)

// ErrNoWriter is returned when a Console has no destination.
var ErrNoWriter = errors.New("sink has no writer")

// Console writes whole blocks of text to a shared writer so that two
// concurrent callers never interleave bytes.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a console sink. A nil writer falls back to stdout.
func New(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

// Write emits text as one block.
func (c *Console) Write(text string) error {
	if c == nil || c.w == nil {
		return ErrNoWriter
	}
	if text == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := io.WriteString(c.w, text)
	return err
}

// Println emits text followed by a newline, as one block.
func (c *Console) Println(text string) error {
	return c.Write(text + "\n")
}
