package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Reporter renders a Collector's measurements as CSV, JSON, or summary
// statistics.
type Reporter struct {
	Collector *Collector
}

// NewReporter wraps collector for reporting.
func NewReporter(collector *Collector) *Reporter {
	return &Reporter{Collector: collector}
}

func (r *Reporter) measurements(name string) []Measurement {
	if name == "" {
		return r.Collector.All()
	}
	return r.Collector.Get(name)
}

// ToCSV renders measurements (all, or just name if non-empty) as a CSV
// string with a header row.
func (r *Reporter) ToCSV(name string) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"name", "n", "time_s", "bytes_sent", "memory_bytes"}); err != nil {
		return "", err
	}
	for _, m := range r.measurements(name) {
		row := []string{
			m.Name,
			strconv.Itoa(m.N),
			strconv.FormatFloat(m.TimeS, 'g', -1, 64),
			strconv.Itoa(m.BytesSent),
			strconv.Itoa(m.MemoryBytes),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ToDict renders measurements as a slice of generic maps, merging each
// measurement's Extra fields alongside the standard columns.
func (r *Reporter) ToDict(name string) []map[string]any {
	ms := r.measurements(name)
	out := make([]map[string]any, len(ms))
	for i, m := range ms {
		entry := map[string]any{
			"name":         m.Name,
			"n":            m.N,
			"time_s":       m.TimeS,
			"bytes_sent":   m.BytesSent,
			"memory_bytes": m.MemoryBytes,
		}
		for k, v := range m.Extra {
			entry[k] = v
		}
		out[i] = entry
	}
	return out
}

// ToJSON renders measurements as an indented JSON array.
func (r *Reporter) ToJSON(name string) (string, error) {
	data, err := json.MarshalIndent(r.ToDict(name), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Summary is aggregate statistics for one named measurement series.
type Summary struct {
	Name      string
	Count     int
	MinTime   float64
	MaxTime   float64
	AvgTime   float64
	TotalTime float64
	NValues   []int
}

// Summarize computes aggregate statistics for name. Returns the zero
// Summary if no measurements match.
func (r *Reporter) Summarize(name string) Summary {
	ms := r.Collector.Get(name)
	if len(ms) == 0 {
		return Summary{}
	}

	s := Summary{Name: name, Count: len(ms)}
	s.MinTime = ms[0].TimeS
	s.MaxTime = ms[0].TimeS
	nSet := make(map[int]struct{})
	for _, m := range ms {
		if m.TimeS < s.MinTime {
			s.MinTime = m.TimeS
		}
		if m.TimeS > s.MaxTime {
			s.MaxTime = m.TimeS
		}
		s.TotalTime += m.TimeS
		nSet[m.N] = struct{}{}
	}
	s.AvgTime = s.TotalTime / float64(len(ms))
	for n := range nSet {
		s.NValues = append(s.NValues, n)
	}
	sort.Ints(s.NValues)
	return s
}

// WriteCSV writes name's CSV rendering to filepath.
func (r *Reporter) WriteCSV(filepath, name string) error {
	body, err := r.ToCSV(name)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, []byte(body), 0o644)
}

// WriteJSON writes name's JSON rendering to filepath.
func (r *Reporter) WriteJSON(filepath, name string) error {
	body, err := r.ToJSON(name)
	if err != nil {
		return fmt.Errorf("metrics: rendering JSON for %q: %w", name, err)
	}
	return os.WriteFile(filepath, []byte(body), 0o644)
}
