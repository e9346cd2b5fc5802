package console

import (
	"sync"
	"testing"
	"time"
)

// collector is a Sink that accumulates drained lines.
type collector struct {
	mu    sync.Mutex
	lines []string
}

func (c *collector) sink(lines []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, lines...)
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]string, len(c.lines))
	copy(result, c.lines)
	return result
}

func TestCapture_WriteAndDrain(t *testing.T) {
	col := &collector{}
	cp := New(col.sink, WithInterval(5*time.Millisecond))
	defer cp.Close()

	cp.WriteLine("one")
	cp.WriteLine("two")

	deadline := time.After(2 * time.Second)
	for {
		if len(col.snapshot()) == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("lines not drained, got %v", col.snapshot())
		case <-time.After(time.Millisecond):
		}
	}

	got := col.snapshot()
	if got[0] != "one" || got[1] != "two" {
		t.Errorf("drained lines = %v, want [one two]", got)
	}
}

func TestCapture_Write_SplitsLines(t *testing.T) {
	col := &collector{}
	cp := New(col.sink, WithInterval(time.Hour)) // drain only on Close
	n, err := cp.Write([]byte("alpha\nbeta\n"))
	if err != nil || n != len("alpha\nbeta\n") {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	cp.Close()

	got := col.snapshot()
	if len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Errorf("drained lines = %v, want [alpha beta]", got)
	}
}

func TestCapture_NonBlockingWhenFull(t *testing.T) {
	// No sink ticks happen during the writes; the queue must absorb or
	// drop everything without blocking the producer.
	col := &collector{}
	cp := New(col.sink, WithCapacity(4), WithInterval(time.Hour))
	defer cp.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			cp.WriteLine("line")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer blocked on a full queue")
	}

	stats := cp.Stats()
	if stats.Queued != 4 {
		t.Errorf("Queued = %d, want 4", stats.Queued)
	}
	if stats.Dropped != 96 {
		t.Errorf("Dropped = %d, want 96", stats.Dropped)
	}
}

func TestCapture_CloseFlushes(t *testing.T) {
	col := &collector{}
	cp := New(col.sink, WithInterval(time.Hour))

	cp.WriteLine("pending")
	cp.Close()

	got := col.snapshot()
	if len(got) != 1 || got[0] != "pending" {
		t.Errorf("lines after Close = %v, want [pending]", got)
	}

	stats := cp.Stats()
	if stats.Delivered != 1 {
		t.Errorf("Delivered = %d, want 1", stats.Delivered)
	}

	// Close is idempotent.
	cp.Close()
}

func TestCapture_BatchDelivery(t *testing.T) {
	var mu sync.Mutex
	var batches [][]string
	sink := func(lines []string) {
		mu.Lock()
		batches = append(batches, lines)
		mu.Unlock()
	}

	cp := New(sink, WithInterval(time.Hour))
	cp.WriteLine("a")
	cp.WriteLine("b")
	cp.WriteLine("c")
	cp.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("sink called %d times, want 1 batched call", len(batches))
	}
	if len(batches[0]) != 3 {
		t.Errorf("batch size = %d, want 3", len(batches[0]))
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\nb", []string{"a", "b"}},
		{"\n\n", nil},
	}

	for _, tt := range tests {
		got := splitLines(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitLines(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("splitLines(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestCapture_WriteAfterClose_CountsDropped(t *testing.T) {
	col := &collector{}
	cp := New(col.sink, WithInterval(time.Hour))

	cp.WriteLine("before")
	cp.Close()

	cp.WriteLine("after")
	if _, err := cp.Write([]byte("more\nlines\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	stats := cp.Stats()
	if stats.Queued != 1 {
		t.Errorf("Stats().Queued = %d, want 1", stats.Queued)
	}
	if stats.Delivered != 1 {
		t.Errorf("Stats().Delivered = %d, want 1", stats.Delivered)
	}
	if stats.Dropped != 3 {
		t.Errorf("Stats().Dropped = %d, want 3", stats.Dropped)
	}
	if got := col.snapshot(); len(got) != 1 || got[0] != "before" {
		t.Errorf("delivered lines = %v, want [before]", got)
	}
}
