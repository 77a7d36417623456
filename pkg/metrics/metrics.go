// Package metrics collects timing, throughput, and resource measurements
// from protocol runs, and fits scaling curves to project behavior at
// network sizes larger than what was actually simulated.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// Measurement is one recorded data point for a named operation at a
// given network size n.
type Measurement struct {
	Name         string
	N            int
	TimeS        float64
	BytesSent    int
	BytesReceived int
	MemoryBytes  int
	Extra        map[string]any
}

// Collector accumulates measurements across a simulation run.
type Collector struct {
	mu           sync.Mutex
	measurements []Measurement
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Measure times the execution of fn and records it under name at network
// size n, along with whatever fields fn sets on the returned Measurement
// before returning.
func (c *Collector) Measure(name string, n int, fn func(m *Measurement)) Measurement {
	m := Measurement{Name: name, N: n}
	start := time.Now()
	fn(&m)
	m.TimeS = time.Since(start).Seconds()

	c.mu.Lock()
	c.measurements = append(c.measurements, m)
	c.mu.Unlock()
	return m
}

// Record manually appends a measurement.
func (c *Collector) Record(name string, n int, timeS float64, bytesSent, memoryBytes int, extra map[string]any) Measurement {
	m := Measurement{
		Name: name, N: n, TimeS: timeS,
		BytesSent: bytesSent, MemoryBytes: memoryBytes, Extra: extra,
	}
	c.mu.Lock()
	c.measurements = append(c.measurements, m)
	c.mu.Unlock()
	return m
}

// Get returns every measurement recorded under name.
func (c *Collector) Get(name string) []Measurement {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Measurement
	for _, m := range c.measurements {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// All returns every measurement recorded so far.
func (c *Collector) All() []Measurement {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Measurement, len(c.measurements))
	copy(out, c.measurements)
	return out
}

// Series is a named measurement's data as parallel slices, sorted by N.
type Series struct {
	N      []int
	TimeS  []float64
	Bytes  []int
	Memory []int
}

// GetSeries returns name's measurements as a Series sorted by network
// size, ready for curve fitting.
func (c *Collector) GetSeries(name string) Series {
	ms := c.Get(name)
	sort.Slice(ms, func(i, j int) bool { return ms[i].N < ms[j].N })

	s := Series{
		N:      make([]int, len(ms)),
		TimeS:  make([]float64, len(ms)),
		Bytes:  make([]int, len(ms)),
		Memory: make([]int, len(ms)),
	}
	for i, m := range ms {
		s.N[i] = m.N
		s.TimeS[i] = m.TimeS
		s.Bytes[i] = m.BytesSent
		s.Memory[i] = m.MemoryBytes
	}
	return s
}

// Clear discards all recorded measurements.
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.measurements = nil
}
