package sink

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// slowWriter writes one byte at a time so unsynchronized callers would interleave.
type slowWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *slowWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		w.mu.Lock()
		w.buf.WriteByte(b)
		w.mu.Unlock()
	}
	return len(p), nil
}

func (w *slowWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("closed")
}

func TestConsoleWrite(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	if err := c.Println("TaskOne Running"); err != nil {
		t.Fatalf("Println failed: %v", err)
	}
	if err := c.Write(""); err != nil {
		t.Fatalf("Empty write failed: %v", err)
	}
	if buf.String() != "TaskOne Running\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func TestConsoleWriteError(t *testing.T) {
	c := New(failingWriter{})
	if err := c.Println("x"); err == nil {
		t.Error("Expected writer error to be returned")
	}

	var nilConsole *Console
	if err := nilConsole.Write("x"); !errors.Is(err, ErrNoWriter) {
		t.Errorf("Expected ErrNoWriter, got %v", err)
	}
}

func TestConsoleBlocksDoNotInterleave(t *testing.T) {
	w := &slowWriter{}
	c := New(w)

	const producers = 8
	const lines = 20
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			var block strings.Builder
			for i := 0; i < lines; i++ {
				fmt.Fprintf(&block, "producer-%d line-%d\n", id, i)
			}
			if err := c.Write(block.String()); err != nil {
				t.Errorf("Write failed: %v", err)
			}
		}(p)
	}
	wg.Wait()

	out := strings.Split(strings.TrimSuffix(w.String(), "\n"), "\n")
	if len(out) != producers*lines {
		t.Fatalf("Expected %d lines, got %d", producers*lines, len(out))
	}
	for start := 0; start < len(out); start += lines {
		var id int
		if _, err := fmt.Sscanf(out[start], "producer-%d line-0", &id); err != nil {
			t.Fatalf("Block at line %d does not start a producer block: %q", start, out[start])
		}
		for i := 0; i < lines; i++ {
			want := fmt.Sprintf("producer-%d line-%d", id, i)
			if out[start+i] != want {
				t.Fatalf("Interleaved output at line %d: got %q, want %q", start+i, out[start+i], want)
			}
		}
	}
}
