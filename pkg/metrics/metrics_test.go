package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/liun/pkg/metrics"
)

func TestCollectorMeasureRecordsElapsedTime(t *testing.T) {
	c := metrics.NewCollector()
	m := c.Measure("op", 10, func(m *metrics.Measurement) {
		time.Sleep(time.Millisecond)
		m.BytesSent = 42
	})
	assert.Greater(t, m.TimeS, 0.0)
	assert.Equal(t, 42, m.BytesSent)
	assert.Len(t, c.Get("op"), 1)
}

func TestCollectorGetSeriesSortsByN(t *testing.T) {
	c := metrics.NewCollector()
	c.Record("dkg", 30, 0.3, 0, 0, nil)
	c.Record("dkg", 10, 0.1, 0, 0, nil)
	c.Record("dkg", 20, 0.2, 0, 0, nil)

	series := c.GetSeries("dkg")
	assert.Equal(t, []int{10, 20, 30}, series.N)
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.3}, series.TimeS, 1e-9)
}

func TestCollectorClearRemovesMeasurements(t *testing.T) {
	c := metrics.NewCollector()
	c.Record("x", 1, 0, 0, 0, nil)
	c.Clear()
	assert.Empty(t, c.All())
}

func TestFitPowerLawRecoversKnownExponent(t *testing.T) {
	ns := []int{1, 2, 4, 8, 16}
	values := make([]float64, len(ns))
	for i, n := range ns {
		values[i] = 3.0 * float64(n) * float64(n) // a=3, b=2
	}
	fit := metrics.FitPowerLaw(ns, values)
	assert.InDelta(t, 3.0, fit.A, 0.05)
	assert.InDelta(t, 2.0, fit.B, 0.01)
	assert.Greater(t, fit.RSquared, 0.99)
}

func TestFitQuadraticRecoversKnownCoefficients(t *testing.T) {
	ns := []int{1, 2, 3, 4, 5}
	values := make([]float64, len(ns))
	for i, n := range ns {
		fn := float64(n)
		values[i] = 2*fn*fn + 5*fn + 1
	}
	fit := metrics.FitQuadratic(ns, values)
	assert.InDelta(t, 2.0, fit.A, 1e-6)
	assert.InDelta(t, 5.0, fit.B, 1e-6)
	assert.InDelta(t, 1.0, fit.C, 1e-6)
}

func TestEfficiencyAnalyzerExtrapolates(t *testing.T) {
	c := metrics.NewCollector()
	for _, n := range []int{10, 20, 40} {
		c.Record("dkg", n, float64(n)*float64(n)/1000.0, 0, 0, nil)
	}
	analyzer := metrics.NewEfficiencyAnalyzer(c)
	_, err := analyzer.Analyze("dkg", nil, nil)
	require.NoError(t, err)

	projected, err := analyzer.Extrapolate("dkg", []int{80})
	require.NoError(t, err)
	assert.Greater(t, projected[80], 0.0)
}

func TestReporterToCSVAndSummary(t *testing.T) {
	c := metrics.NewCollector()
	c.Record("sign", 10, 0.01, 100, 200, nil)
	c.Record("sign", 20, 0.02, 150, 250, nil)

	r := metrics.NewReporter(c)
	csvOut, err := r.ToCSV("sign")
	require.NoError(t, err)
	assert.True(t, strings.Contains(csvOut, "name,n,time_s,bytes_sent,memory_bytes"))
	assert.True(t, strings.Contains(csvOut, "sign,10"))

	summary := r.Summarize("sign")
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 0.01, summary.MinTime, 1e-9)
	assert.InDelta(t, 0.02, summary.MaxTime, 1e-9)
	assert.Equal(t, []int{10, 20}, summary.NValues)
}

func TestReporterToJSONIncludesExtra(t *testing.T) {
	c := metrics.NewCollector()
	c.Record("sign", 10, 0.01, 0, 0, map[string]any{"threshold": 7})

	r := metrics.NewReporter(c)
	jsonOut, err := r.ToJSON("sign")
	require.NoError(t, err)
	assert.True(t, strings.Contains(jsonOut, "\"threshold\": 7"))
}
