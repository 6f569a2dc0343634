// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package liquidity

import (
	"math/big"
	"sort"
	"strings"

	"github.com/michielbdejong/ilp-connector/fault"
)

// Point - one breakpoint of a curve
type Point struct {
	X *big.Rat // source amount
	Y *big.Rat // destination amount
}

// Curve - immutable piecewise linear liquidity curve
type Curve struct {
	points []Point
}

// New - create a curve from breakpoints sorted by source amount
//
// an origin is added when the first point is not at zero source
// amount, both coordinates must be non-negative and non-decreasing
func New(points []Point) (*Curve, error) {
	p := make([]Point, 0, len(points)+1)
	if len(points) > 0 && points[0].X.Sign() > 0 {
		p = append(p, Point{X: rat(0), Y: rat(0)})
	}
	for i, pt := range points {
		if nil == pt.X || nil == pt.Y || pt.X.Sign() < 0 || pt.Y.Sign() < 0 {
			return nil, fault.ErrInvalidCurve
		}
		if i > 0 {
			prev := points[i-1]
			if pt.X.Cmp(prev.X) < 0 || pt.Y.Cmp(prev.Y) < 0 {
				return nil, fault.ErrInvalidCurve
			}
		}
		p = append(p, Point{X: new(big.Rat).Set(pt.X), Y: new(big.Rat).Set(pt.Y)})
	}
	if len(p) < 2 {
		return nil, fault.ErrIncompleteCurve
	}
	return &Curve{points: p}, nil
}

// FromStrings - create a curve from pairs of decimal strings
func FromStrings(pairs [][2]string) (*Curve, error) {
	points := make([]Point, len(pairs))
	for i, pair := range pairs {
		x, err := ParseAmount(pair[0])
		if nil != err {
			return nil, err
		}
		y, err := ParseAmount(pair[1])
		if nil != err {
			return nil, err
		}
		points[i] = Point{X: x, Y: y}
	}
	return New(points)
}

// Linear - the two point curve through the origin and (limit, limit × rate)
func Linear(limit *big.Rat, rate *big.Rat) *Curve {
	return &Curve{
		points: []Point{
			{X: rat(0), Y: rat(0)},
			{X: new(big.Rat).Set(limit), Y: mul(limit, rate)},
		},
	}
}

// Points - copy of the breakpoints
func (c *Curve) Points() []Point {
	p := make([]Point, len(c.points))
	for i, pt := range c.points {
		p[i] = Point{X: new(big.Rat).Set(pt.X), Y: new(big.Rat).Set(pt.Y)}
	}
	return p
}

// Strings - breakpoints as pairs of decimal strings
func (c *Curve) Strings() [][2]string {
	s := make([][2]string, len(c.points))
	for i, pt := range c.points {
		s[i] = [2]string{FormatAmount(pt.X), FormatAmount(pt.Y)}
	}
	return s
}

// Max - the last breakpoint
func (c *Curve) Max() Point {
	last := c.points[len(c.points)-1]
	return Point{X: new(big.Rat).Set(last.X), Y: new(big.Rat).Set(last.Y)}
}

// Equal - true if both curves have identical breakpoints
func (c *Curve) Equal(other *Curve) bool {
	if nil == c || nil == other {
		return c == other
	}
	if len(c.points) != len(other.points) {
		return false
	}
	for i, pt := range c.points {
		if 0 != pt.X.Cmp(other.points[i].X) || 0 != pt.Y.Cmp(other.points[i].Y) {
			return false
		}
	}
	return true
}

// String - compact representation for logging
func (c *Curve) String() string {
	b := strings.Builder{}
	b.WriteString("[")
	for i, pair := range c.Strings() {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("[" + pair[0] + "," + pair[1] + "]")
	}
	b.WriteString("]")
	return b.String()
}

// Evaluate - destination amount for a source amount
//
// between breakpoints the value is interpolated, outside them the
// slope of the nearest segment is extended
func (c *Curve) Evaluate(x *big.Rat) *big.Rat {
	p := c.points
	n := len(p)

	if x.Cmp(p[0].X) < 0 {
		return along(p[0], firstSlope(p), x)
	}

	// last point at or left of x, a vertical step resolves to its top
	i := sort.Search(n, func(j int) bool { return p[j].X.Cmp(x) > 0 }) - 1

	if i == n-1 {
		if 0 == x.Cmp(p[i].X) {
			return new(big.Rat).Set(p[i].Y)
		}
		return along(p[i], lastSlope(p), x)
	}

	a := p[i]
	b := p[i+1]
	if 0 == x.Cmp(a.X) {
		return new(big.Rat).Set(a.Y)
	}
	slope := quo(sub(b.Y, a.Y), sub(b.X, a.X))
	return along(a, slope, x)
}

// Invert - smallest source amount producing a destination amount
//
// fails with AmountTooLargeError when y is beyond a flat tail
func (c *Curve) Invert(y *big.Rat) (*big.Rat, error) {
	p := c.points
	n := len(p)

	if y.Cmp(p[0].Y) <= 0 {
		return new(big.Rat).Set(p[0].X), nil
	}

	for i := 0; i < n-1; i += 1 {
		a := p[i]
		b := p[i+1]
		if y.Cmp(b.Y) > 0 {
			continue
		}
		dy := sub(b.Y, a.Y)
		if 0 == dy.Sign() {
			return new(big.Rat).Set(a.X), nil
		}
		// x = a.X + (y - a.Y) × dx/dy
		return add(a.X, mul(sub(y, a.Y), quo(sub(b.X, a.X), dy))), nil
	}

	last := p[n-1]
	slope := lastSlope(p)
	if 0 == slope.Sign() {
		return nil, fault.AmountTooLargeError("destination amount " + FormatAmount(y) + " exceeds curve maximum " + FormatAmount(last.Y))
	}
	return add(last.X, quo(sub(y, last.Y), slope)), nil
}

// Combine - pointwise maximum of two curves
//
// the result contains every breakpoint of either curve and every
// point where the two curves cross
func (c *Curve) Combine(other *Curve) *Curve {
	xs := mergeXs(c.xs(), other.xs())

	extra := make([]*big.Rat, 0)
	for i := 0; i < len(xs)-1; i += 1 {
		if x, ok := crossing(c, other, xs[i], xs[i+1]); ok {
			extra = append(extra, x)
		}
	}

	// beyond the last breakpoint both curves are straight lines, if
	// they meet there the steeper one needs a point past the meeting
	last := xs[len(xs)-1]
	if x, ok := tailCrossing(c, other, last); ok {
		extra = append(extra, x, beyond(x))
	}
	xs = mergeXs(xs, extra)

	points := sample(xs, func(x *big.Rat) *big.Rat {
		return maxRat(c.Evaluate(x), other.Evaluate(x))
	})
	return &Curve{points: simplify(points)}
}

// Compose - curve of applying c and then other
//
// breakpoints are those of c together with the source amounts at
// which c reaches a breakpoint of other
func (c *Curve) Compose(other *Curve) *Curve {
	extra := make([]*big.Rat, 0, len(other.points))
	for _, pt := range other.points {
		x, err := c.Invert(pt.X)
		if nil != err {
			continue
		}
		extra = append(extra, x)
	}
	xs := mergeXs(c.xs(), extra)

	points := sample(xs, func(x *big.Rat) *big.Rat {
		return other.Evaluate(c.Evaluate(x))
	})
	return &Curve{points: simplify(points)}
}

// breakpoints of a function that is linear between consecutive xs
//
// f resolves a jump to its top, so where the value arriving from the
// left differs a second point with the same source amount keeps the
// bottom of the step
func sample(xs []*big.Rat, f func(*big.Rat) *big.Rat) []Point {
	points := make([]Point, 0, 2*len(xs))
	for i, x := range xs {
		y := f(x)
		if i > 0 {
			prev := points[len(points)-1]
			if left := leftLimit(f, prev, x); 0 != left.Cmp(y) {
				points = append(points, Point{X: new(big.Rat).Set(x), Y: left})
			}
		}
		points = append(points, Point{X: x, Y: y})
	}

	// a step at the end would hide the slope that follows it
	if n := len(points); n > 1 && 0 == points[n-1].X.Cmp(points[n-2].X) {
		x := beyond(points[n-1].X)
		points = append(points, Point{X: x, Y: f(x)})
	}
	return points
}

// value reached at x1 along the straight piece starting at a
func leftLimit(f func(*big.Rat) *big.Rat, a Point, x1 *big.Rat) *big.Rat {
	mid := quo(add(a.X, x1), rat(2))
	return sub(mul(rat(2), f(mid)), a.Y)
}

// value on the line through a with the given slope
func along(a Point, slope *big.Rat, x *big.Rat) *big.Rat {
	y := add(a.Y, mul(slope, sub(x, a.X)))
	if y.Sign() < 0 {
		return rat(0)
	}
	return y
}

// slope of the first segment with some width
func firstSlope(p []Point) *big.Rat {
	for i := 0; i < len(p)-1; i += 1 {
		dx := sub(p[i+1].X, p[i].X)
		if 0 != dx.Sign() {
			return quo(sub(p[i+1].Y, p[i].Y), dx)
		}
	}
	return rat(0)
}

// slope of the last segment with some width
func lastSlope(p []Point) *big.Rat {
	for i := len(p) - 1; i > 0; i -= 1 {
		dx := sub(p[i].X, p[i-1].X)
		if 0 != dx.Sign() {
			return quo(sub(p[i].Y, p[i-1].Y), dx)
		}
	}
	return rat(0)
}

func (c *Curve) xs() []*big.Rat {
	xs := make([]*big.Rat, len(c.points))
	for i, pt := range c.points {
		xs[i] = pt.X
	}
	return xs
}

// sorted union without duplicates
func mergeXs(a []*big.Rat, b []*big.Rat) []*big.Rat {
	all := make([]*big.Rat, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	sort.Slice(all, func(i, j int) bool { return all[i].Cmp(all[j]) < 0 })

	result := make([]*big.Rat, 0, len(all))
	for _, x := range all {
		if len(result) > 0 && 0 == result[len(result)-1].Cmp(x) {
			continue
		}
		result = append(result, new(big.Rat).Set(x))
	}
	return result
}

// point strictly between x0 and x1 where two straight pieces cross
func crossing(a *Curve, b *Curve, x0 *big.Rat, x1 *big.Rat) (*big.Rat, bool) {
	diff := func(x *big.Rat) *big.Rat { return sub(a.Evaluate(x), b.Evaluate(x)) }
	d0 := diff(x0)
	d1 := leftLimit(diff, Point{X: x0, Y: d0}, x1)
	if d0.Sign()*d1.Sign() >= 0 {
		return nil, false
	}
	// linear difference: x = x0 + d0 × (x1 - x0) / (d0 - d1)
	return add(x0, mul(d0, quo(sub(x1, x0), sub(d0, d1)))), true
}

// meeting point of the extended last segments at or beyond x0
func tailCrossing(a *Curve, b *Curve, x0 *big.Rat) (*big.Rat, bool) {
	d0 := sub(a.Evaluate(x0), b.Evaluate(x0))
	ds := sub(lastSlope(a.points), lastSlope(b.points))
	if 0 == ds.Sign() || (0 != d0.Sign() && d0.Sign() == ds.Sign()) {
		return nil, false
	}
	// d0 + ds × t = 0
	t := quo(new(big.Rat).Neg(d0), ds)
	return add(x0, t), true
}

// a source amount past x
func beyond(x *big.Rat) *big.Rat {
	if 0 == x.Sign() {
		return rat(1)
	}
	return add(x, x)
}

// drop points that repeat their predecessor
func simplify(points []Point) []Point {
	result := make([]Point, 0, len(points))
	for _, pt := range points {
		if n := len(result); n > 0 {
			prev := result[n-1]
			if 0 == prev.X.Cmp(pt.X) && 0 == prev.Y.Cmp(pt.Y) {
				continue
			}
		}
		result = append(result, pt)
	}
	if 1 == len(result) {
		result = append(result, Point{X: add(result[0].X, rat(1)), Y: new(big.Rat).Set(result[0].Y)})
	}
	return result
}
