// Trajectory segment displacement polynomials
//
// Copyright (C) 2019-2020  Kevin O'Connor <kevin@koconnor.net>
// Copyright (C) 2020  Dmitry Butyugin <dmbutyugin@google.com>
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package scurve implements the bounded-degree displacement polynomials
// carried by trajectory segments. A curve gives the scalar displacement along
// a segment's principal direction as a function of segment-local time, with
// s(0) == 0 and degree at most 6.
package scurve

// MaxOrder is the highest polynomial degree a segment curve may carry.
const MaxOrder = 6

// SCurve is the displacement polynomial
// s(t) = C1*t + C2*t^2 + C3*t^3 + C4*t^4 + C5*t^5 + C6*t^6.
type SCurve struct {
	C1, C2, C3, C4, C5, C6 float64
}

// binomial[n][k] = n choose k, for n,k <= MaxOrder.
var binomial = [MaxOrder + 1][MaxOrder + 1]float64{
	{1},
	{1, 1},
	{1, 2, 1},
	{1, 3, 3, 1},
	{1, 4, 6, 4, 1},
	{1, 5, 10, 10, 5, 1},
	{1, 6, 15, 20, 15, 6, 1},
}

// Eval returns the displacement at segment-local time t.
func (s *SCurve) Eval(t float64) float64 {
	v := s.C6
	v = s.C5 + v*t
	v = s.C4 + v*t
	v = s.C3 + v*t
	v = s.C2 + v*t
	v = s.C1 + v*t
	return v * t
}

// Deriv returns the velocity ds/dt at segment-local time t.
func (s *SCurve) Deriv(t float64) float64 {
	v := 6. * s.C6
	v = 5.*s.C5 + v*t
	v = 4.*s.C4 + v*t
	v = 3.*s.C3 + v*t
	v = 2.*s.C2 + v*t
	return s.C1 + v*t
}

// Diff returns the displacement accumulated between start and end.
func (s *SCurve) Diff(start, end float64) float64 {
	return s.Eval(end) - s.Eval(start)
}

// Scaled returns the curve with all coefficients multiplied by r. Used to
// project a segment's principal-direction displacement onto an axis via its
// direction ratio.
func (s *SCurve) Scaled(r float64) SCurve {
	return SCurve{r * s.C1, r * s.C2, r * s.C3, r * s.C4, r * s.C5, r * s.C6}
}

// Coeffs returns the polynomial coefficients with c[0] set to pos, so that
// c[k] is the t^k coefficient of pos + s(t).
func (s *SCurve) Coeffs(pos float64) [MaxOrder + 1]float64 {
	return [MaxOrder + 1]float64{pos, s.C1, s.C2, s.C3, s.C4, s.C5, s.C6}
}

// Rebased returns the curve translated to start at time t0 of the original
// clock: r(t) = s(t0 + t) - s(t0). Segments cut out of a longer acceleration
// group use this to obtain their own local clock.
func (s *SCurve) Rebased(t0 float64) SCurve {
	c := s.Coeffs(0.)
	var out [MaxOrder + 1]float64
	pow := 1.
	// out[j] += binom(n, j) * c[n] * t0^(n-j), accumulated diagonal by diagonal
	for d := 0; d <= MaxOrder; d, pow = d+1, pow*t0 {
		for j := 0; j+d <= MaxOrder; j++ {
			out[j] += binomial[j+d][j] * c[j+d] * pow
		}
	}
	return SCurve{out[1], out[2], out[3], out[4], out[5], out[6]}
}

// FromVelocity returns the curve of constant-velocity motion.
func FromVelocity(v float64) SCurve {
	return SCurve{C1: v}
}

// FromTrapezoid returns the curve of constant-acceleration motion starting at
// velocity startV (accel may be negative for deceleration).
func FromTrapezoid(startV, accel float64) SCurve {
	return SCurve{C1: startV, C2: .5 * accel}
}

// FromBezier4 returns the displacement curve of a jerk-limited acceleration
// group with a 4th order Bezier acceleration profile: acceleration ramps as
// 6*a*u*(1-u) over u = t/totalT, averaging to effAccel across the group.
func FromBezier4(startV, effAccel, totalT float64) SCurve {
	invT := 1. / totalT
	return SCurve{
		C1: startV,
		C3: effAccel * invT,
		C4: -.5 * effAccel * invT * invT,
	}
}

// FromBezier6 returns the displacement curve of an acceleration group with a
// 6th order Bezier acceleration profile (30*a*u^2*(1-u)^2).
func FromBezier6(startV, effAccel, totalT float64) SCurve {
	invT := 1. / totalT
	invT2 := invT * invT
	return SCurve{
		C1: startV,
		C4: 2.5 * effAccel * invT2,
		C5: -3. * effAccel * invT2 * invT,
		C6: effAccel * invT2 * invT2,
	}
}
