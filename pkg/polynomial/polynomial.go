// Package polynomial implements polynomial evaluation and interpolation
// over GF(M61).
//
// Two coefficient orderings are kept as distinct types rather than
// documented by variable-naming convention: Low (index i = coefficient
// of x^i) is what Shamir sharing and USS use; High (index 0 = highest
// degree) is what the Wegman-Carter MAC in pkg/channel consumes.
package polynomial

import "github.com/luxfi/liun/pkg/field"

// Low is a polynomial in low-first order: Low[i] is the coefficient of x^i.
type Low []field.Element

// High is a polynomial in high-first order: High[0] is the coefficient of
// the highest-degree term.
type High []field.Element

// HornerLow evaluates a Low polynomial at x using Horner's method.
func HornerLow(coeffs Low, x field.Element) field.Element {
	var result field.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(coeffs[i])
	}
	return result
}

// HornerHigh evaluates a High polynomial at x using Horner's method.
func HornerHigh(coeffs High, x field.Element) field.Element {
	var result field.Element
	for _, c := range coeffs {
		result = result.Mul(x).Add(c)
	}
	return result
}

// Point is an (x, f(x)) pair over GF(M61).
type Point struct {
	X field.Element
	Y field.Element
}

// Points builds a slice of Point from parallel xs/ys slices.
func Points(xs, ys []field.Element) []Point {
	pts := make([]Point, len(xs))
	for i := range xs {
		pts[i] = Point{X: xs[i], Y: ys[i]}
	}
	return pts
}

// LagrangeAt evaluates the unique interpolating polynomial through points
// at t, using the classical Lagrange basis form. O(n^2).
func LagrangeAt(points []Point, t field.Element) (field.Element, error) {
	var result field.Element
	for i := range points {
		basis, err := lagrangeBasisAt(points, i, t)
		if err != nil {
			return 0, err
		}
		result = result.Add(points[i].Y.Mul(basis))
	}
	return result, nil
}

func lagrangeBasisAt(points []Point, i int, target field.Element) (field.Element, error) {
	xi := points[i].X
	num := field.New(1)
	den := field.New(1)
	for j := range points {
		if j == i {
			continue
		}
		xj := points[j].X
		num = num.Mul(target.Sub(xj))
		den = den.Mul(xi.Sub(xj))
	}
	inv, err := den.Inv()
	if err != nil {
		return 0, err
	}
	return num.Mul(inv), nil
}

// LagrangeBasisAt computes the i-th Lagrange basis coefficient
// L_i(target) = prod_{j != i} (target - x_j) / (x_i - x_j) for the given
// x-coordinates.
func LagrangeBasisAt(xs []field.Element, i int, target field.Element) (field.Element, error) {
	xi := xs[i]
	num := field.New(1)
	den := field.New(1)
	for j, xj := range xs {
		if j == i {
			continue
		}
		num = num.Mul(target.Sub(xj))
		den = den.Mul(xi.Sub(xj))
	}
	inv, err := den.Inv()
	if err != nil {
		return 0, err
	}
	return num.Mul(inv), nil
}

// NewtonCoefficients computes the divided-difference coefficients of the
// interpolating polynomial through points. O(n^2). Returns the x-values and
// the coefficient table, for use with NewtonEval.
func NewtonCoefficients(points []Point) ([]field.Element, []field.Element, error) {
	n := len(points)
	xs := make([]field.Element, n)
	d := make([]field.Element, n)
	for i, p := range points {
		xs[i] = p.X
		d[i] = p.Y
	}

	for j := 1; j < n; j++ {
		for i := n - 1; i >= j; i-- {
			num := d[i].Sub(d[i-1])
			den := xs[i].Sub(xs[i-j])
			q, err := num.Div(den)
			if err != nil {
				return nil, nil, err
			}
			d[i] = q
		}
	}
	return xs, d, nil
}

// NewtonEval evaluates a Newton-form polynomial (as returned by
// NewtonCoefficients) at t in O(n).
func NewtonEval(xs, coeffs []field.Element, t field.Element) field.Element {
	n := len(coeffs)
	result := coeffs[n-1]
	for i := n - 2; i >= 0; i-- {
		result = result.Mul(t.Sub(xs[i])).Add(coeffs[i])
	}
	return result
}

// InterpolatingPoly precomputes the Newton-form coefficients of an
// interpolating polynomial so repeated evaluation at fresh points is O(n)
// instead of O(n^2). DKG consistency detection relies on this: one
// sender's degree+1 points are interpolated once, then every remaining
// share is checked in O(n).
type InterpolatingPoly struct {
	xs     []field.Element
	coeffs []field.Element
}

// NewInterpolatingPoly builds an InterpolatingPoly from a set of points.
// O(n^2) construction.
func NewInterpolatingPoly(points []Point) (*InterpolatingPoly, error) {
	xs, coeffs, err := NewtonCoefficients(points)
	if err != nil {
		return nil, err
	}
	return &InterpolatingPoly{xs: xs, coeffs: coeffs}, nil
}

// EvalAt evaluates the precomputed polynomial at t in O(n).
func (p *InterpolatingPoly) EvalAt(t field.Element) field.Element {
	return NewtonEval(p.xs, p.coeffs, t)
}

// Len reports how many points were used to build p.
func (p *InterpolatingPoly) Len() int { return len(p.xs) }
