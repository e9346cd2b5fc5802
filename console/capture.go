// Package console buffers captured program output off the producing
// goroutine and drains it periodically to a sink.
//
// Producers (stdout redirection, worker logs) must never block on the
// UI: writes enqueue onto a bounded queue without blocking, dropping
// output when the consumer falls behind. A timer drains the queue in
// batches instead of per line, so a chatty producer costs one UI
// update per interval rather than one per write.
package console

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultCapacity = 1024
	defaultInterval = 100 * time.Millisecond
)

// Sink receives a drained batch of output lines on the capture's
// drain goroutine.
type Sink func(lines []string)

// Stats reports capture counters.
type Stats struct {
	// Queued is the total number of lines accepted onto the queue.
	Queued uint64
	// Delivered is the total number of lines handed to the sink.
	Delivered uint64
	// Dropped is the total number of lines discarded because the
	// queue was full.
	Dropped uint64
}

// Capture is a bounded, non-blocking output queue with periodic
// batch drain. It implements io.Writer so process output can be teed
// into it.
type Capture struct {
	sink     Sink
	queue    chan string
	interval time.Duration
	log      zerolog.Logger

	queued    atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64

	done     chan struct{}
	closedWg sync.WaitGroup
	closed   atomic.Bool
}

// Option configures a Capture.
type Option func(*Capture)

// WithCapacity sets the queue capacity in lines.
func WithCapacity(n int) Option {
	return func(c *Capture) {
		if n > 0 {
			c.queue = make(chan string, n)
		}
	}
}

// WithInterval sets the drain period.
func WithInterval(d time.Duration) Option {
	return func(c *Capture) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the diagnostic logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Capture) {
		c.log = log
	}
}

// New creates a capture draining to the given sink and starts its
// drain goroutine.
func New(sink Sink, opts ...Option) *Capture {
	c := &Capture{
		sink:     sink,
		queue:    make(chan string, defaultCapacity),
		interval: defaultInterval,
		log:      zerolog.Nop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.closedWg.Add(1)
	go c.drainLoop()

	return c
}

// Write enqueues output, splitting it into lines. It never blocks:
// when the queue is full, lines are dropped and counted. Write always
// reports full success so a misbehaving consumer cannot stall the
// producer's io pipeline.
func (c *Capture) Write(p []byte) (int, error) {
	for _, line := range splitLines(string(p)) {
		c.push(line)
	}
	return len(p), nil
}

// WriteLine enqueues a single line without blocking.
func (c *Capture) WriteLine(line string) {
	c.push(line)
}

// push performs the non-blocking enqueue. Lines pushed after Close
// have no drain goroutine left to deliver them and count as dropped.
func (c *Capture) push(line string) {
	if c.closed.Load() {
		c.dropped.Add(1)
		return
	}
	select {
	case c.queue <- line:
		c.queued.Add(1)
	default:
		c.dropped.Add(1)
	}
}

// Stats returns the current counters.
func (c *Capture) Stats() Stats {
	return Stats{
		Queued:    c.queued.Load(),
		Delivered: c.delivered.Load(),
		Dropped:   c.dropped.Load(),
	}
}

// Close stops the drain goroutine after a final flush. Writes after
// Close are dropped. Safe to call multiple times.
func (c *Capture) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}

	close(c.done)
	c.closedWg.Wait()

	if dropped := c.dropped.Load(); dropped > 0 {
		c.log.Warn().Uint64("lines", dropped).Msg("console output dropped")
	}
}

// drainLoop hands batches to the sink on each tick until closed, then
// performs a final drain.
func (c *Capture) drainLoop() {
	defer c.closedWg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.drain()
		case <-c.done:
			c.drain()
			return
		}
	}
}

// drain empties the queue into one sink call.
func (c *Capture) drain() {
	var batch []string
	for {
		select {
		case line := <-c.queue:
			batch = append(batch, line)
		default:
			if len(batch) > 0 {
				c.delivered.Add(uint64(len(batch)))
				if c.sink != nil {
					c.sink(batch)
				}
			}
			return
		}
	}
}

// splitLines splits written output on newlines, keeping a trailing
// partial line as its own entry and discarding empty fragments.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "\n")
	result := parts[:0]
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
