// Package sim provides the external-collaborator simulation harness:
// a deterministic tick-based clock and a central message bus with
// adversary interception hooks, for driving reproducible scenarios.
package sim

import (
	"container/heap"
	"fmt"
)

// scheduledEvent is one entry in the clock's event heap.
type scheduledEvent struct {
	tick     int
	seq      int // FIFO tie-breaker for events at the same tick
	callback func()
}

type eventHeap []*scheduledEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].tick != h[j].tick {
		return h[i].tick < h[j].tick
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(*scheduledEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Clock is a deterministic tick-based simulation clock: one tick is one
// communication round. Events scheduled for the same tick fire in the
// order they were scheduled.
type Clock struct {
	tick   int
	seq    int
	events eventHeap
}

// NewClock creates a clock starting at tick 0.
func NewClock() *Clock {
	c := &Clock{}
	heap.Init(&c.events)
	return c
}

// Tick reports the current tick.
func (c *Clock) Tick() int { return c.tick }

// PendingEvents reports how many events are still scheduled.
func (c *Clock) PendingEvents() int { return len(c.events) }

// Advance moves the clock forward by n ticks, firing any events scheduled
// along the way.
func (c *Clock) Advance(n int) {
	for i := 0; i < n; i++ {
		c.tick++
		c.fireEvents()
	}
}

// Schedule registers callback to run after delay ticks (delay >= 0).
// Returns the event's sequence number.
func (c *Clock) Schedule(delay int, callback func()) (int, error) {
	if delay < 0 {
		return 0, fmt.Errorf("sim: delay must be non-negative, got %d", delay)
	}
	seq := c.seq
	c.seq++
	heap.Push(&c.events, &scheduledEvent{tick: c.tick + delay, seq: seq, callback: callback})
	return seq, nil
}

// ScheduleAt registers callback to run at an absolute tick, which must
// not be in the past.
func (c *Clock) ScheduleAt(tick int, callback func()) (int, error) {
	if tick < c.tick {
		return 0, fmt.Errorf("sim: cannot schedule in the past: %d < %d", tick, c.tick)
	}
	return c.Schedule(tick-c.tick, callback)
}

func (c *Clock) fireEvents() {
	for len(c.events) > 0 && c.events[0].tick <= c.tick {
		ev := heap.Pop(&c.events).(*scheduledEvent)
		ev.callback()
	}
}

// RunUntilIdle advances the clock until no events remain scheduled, or
// maxTicks ticks have passed. Returns the number of ticks advanced.
func (c *Clock) RunUntilIdle(maxTicks int) int {
	start := c.tick
	for len(c.events) > 0 && c.tick-start < maxTicks {
		nextTick := c.events[0].tick
		if nextTick-start > maxTicks {
			c.tick = start + maxTicks
			break
		}
		if nextTick > c.tick {
			c.tick = nextTick
		}
		c.fireEvents()
	}
	return c.tick - start
}
