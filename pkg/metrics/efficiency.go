package metrics

import (
	"fmt"
	"math"
)

// PowerFit is a fitted power law, values = a * n^b.
type PowerFit struct {
	A, B     float64
	RSquared float64
}

// FitPowerLaw fits values = a * n^b to (ns, values) via log-linear
// regression. Points with n <= 0 or value <= 0 are dropped before
// fitting, since the log transform is undefined there. Returns a zero
// fit if fewer than two usable points remain.
func FitPowerLaw(ns []int, values []float64) PowerFit {
	if len(ns) < 2 || len(values) < 2 {
		return PowerFit{}
	}

	var logN, logV []float64
	for i := range ns {
		if i >= len(values) {
			break
		}
		if ns[i] > 0 && values[i] > 0 {
			logN = append(logN, math.Log(float64(ns[i])))
			logV = append(logV, math.Log(values[i]))
		}
	}
	n := len(logN)
	if n < 2 {
		return PowerFit{}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i := 0; i < n; i++ {
		sumX += logN[i]
		sumY += logV[i]
		sumXY += logN[i] * logV[i]
		sumX2 += logN[i] * logN[i]
	}

	denom := float64(n)*sumX2 - sumX*sumX
	if math.Abs(denom) < 1e-15 {
		return PowerFit{}
	}

	b := (float64(n)*sumXY - sumX*sumY) / denom
	logA := (sumY - b*sumX) / float64(n)
	a := math.Exp(logA)

	meanY := sumY / float64(n)
	var ssTot, ssRes float64
	for i := 0; i < n; i++ {
		ssTot += (logV[i] - meanY) * (logV[i] - meanY)
		pred := logA + b*logN[i]
		ssRes += (logV[i] - pred) * (logV[i] - pred)
	}
	rSquared := 0.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	}

	return PowerFit{A: a, B: b, RSquared: rSquared}
}

// QuadraticFit is a fitted quadratic, values = a*n^2 + b*n + c.
type QuadraticFit struct {
	A, B, C float64
}

// FitQuadratic fits values = a*n^2 + b*n + c to (ns, values) via the
// normal equations, solved with Cramer's rule. Requires at least three
// points; returns a zero fit otherwise or if the system is singular.
func FitQuadratic(ns []int, values []float64) QuadraticFit {
	if len(ns) < 3 {
		return QuadraticFit{}
	}

	rows := make([][3]float64, len(ns))
	for i, x := range ns {
		fx := float64(x)
		rows[i] = [3]float64{fx * fx, fx, 1}
	}

	var ata [3][3]float64
	var atv [3]float64
	for i := 0; i < len(rows); i++ {
		for r := 0; r < 3; r++ {
			atv[r] += rows[i][r] * values[i]
			for c := 0; c < 3; c++ {
				ata[r][c] += rows[i][r] * rows[i][c]
			}
		}
	}

	det := det3(ata)
	if math.Abs(det) < 1e-15 {
		return QuadraticFit{}
	}

	a := det3(replaceCol(ata, atv, 0)) / det
	b := det3(replaceCol(ata, atv, 1)) / det
	c := det3(replaceCol(ata, atv, 2)) / det
	return QuadraticFit{A: a, B: b, C: c}
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

func replaceCol(m [3][3]float64, v [3]float64, col int) [3][3]float64 {
	out := m
	for i := 0; i < 3; i++ {
		out[i][col] = v[i]
	}
	return out
}

// ExtrapolatePower projects a power-law fit out to targetN.
func ExtrapolatePower(fit PowerFit, targetN int) float64 {
	return fit.A * math.Pow(float64(targetN), fit.B)
}

// ExtrapolateQuadratic projects a quadratic fit out to targetN.
func ExtrapolateQuadratic(fit QuadraticFit, targetN int) float64 {
	n := float64(targetN)
	return fit.A*n*n + fit.B*n + fit.C
}

// AnalysisResult bundles both fitted curves for a named metric, along
// with the raw measured data they were fit from.
type AnalysisResult struct {
	PowerFit      PowerFit
	QuadraticFit  *QuadraticFit
	MeasuredN     []int
	MeasuredValues []float64
}

// EfficiencyAnalyzer fits and extrapolates scaling curves from a
// Collector's measurements.
type EfficiencyAnalyzer struct {
	Collector *Collector
	fits      map[string]AnalysisResult
}

// NewEfficiencyAnalyzer creates an analyzer reading from collector (may
// be nil if Analyze is always called with explicit ns/values).
func NewEfficiencyAnalyzer(collector *Collector) *EfficiencyAnalyzer {
	return &EfficiencyAnalyzer{Collector: collector, fits: make(map[string]AnalysisResult)}
}

// Analyze fits both curves for name, using collector data if ns/values
// are nil.
func (e *EfficiencyAnalyzer) Analyze(name string, ns []int, values []float64) (AnalysisResult, error) {
	if ns == nil || values == nil {
		if e.Collector == nil {
			return AnalysisResult{}, fmt.Errorf("metrics: no data source for %q", name)
		}
		series := e.Collector.GetSeries(name)
		ns = series.N
		values = series.TimeS
	}

	powerFit := FitPowerLaw(ns, values)
	var quadFit *QuadraticFit
	if len(ns) >= 3 {
		q := FitQuadratic(ns, values)
		quadFit = &q
	}

	result := AnalysisResult{
		PowerFit:       powerFit,
		QuadraticFit:   quadFit,
		MeasuredN:      ns,
		MeasuredValues: values,
	}
	e.fits[name] = result
	return result, nil
}

// Extrapolate projects name's power-law fit to every size in targetNs.
// Analyze must have been called for name first.
func (e *EfficiencyAnalyzer) Extrapolate(name string, targetNs []int) (map[int]float64, error) {
	fit, ok := e.fits[name]
	if !ok {
		return nil, fmt.Errorf("metrics: no fit for %q", name)
	}
	out := make(map[int]float64, len(targetNs))
	for _, n := range targetNs {
		out[n] = ExtrapolatePower(fit.PowerFit, n)
	}
	return out, nil
}
