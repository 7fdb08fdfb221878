// Windowed integration of kernel-weighted trajectory positions
//
// Copyright (C) 2019-2020  Kevin O'Connor <kevin@koconnor.net>
// Copyright (C) 2020  Dmitry Butyugin <dmbutyugin@google.com>
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package smoother

import (
	"fmt"

	"stepsmooth/pkg/scurve"
	"stepsmooth/pkg/trapq"
)

const maxOrder = scurve.MaxOrder

// binomial[n][k] = n choose k.
var binomial = [maxOrder + 1][maxOrder + 1]float64{
	{1},
	{1, 1},
	{1, 2, 1},
	{1, 3, 3, 1},
	{1, 4, 6, 4, 1},
	{1, 5, 10, 10, 5, 1},
	{1, 6, 15, 20, 15, 6, 1},
}

// Trajectory selects the scalar curve a move contributes to a windowed
// query: the constant position at the move start plus a displacement
// polynomial over the move-local time.
type Trajectory interface {
	Curve(m *trapq.Move) (pos float64, s scurve.SCurve)
}

// AxisTrajectory projects moves onto a cartesian axis through the move's
// direction ratio.
type AxisTrajectory int

// Curve implements Trajectory.
func (ax AxisTrajectory) Curve(m *trapq.Move) (float64, scurve.SCurve) {
	return m.StartPos.Axis(int(ax)), m.S.Scaled(m.AxesR.Axis(int(ax)))
}

// iwt evaluates the antiderivative of t^k * w(t) at t.
func (sm *Smoother) iwt(k int, t float64) float64 {
	t2 := t * t
	v := sm.itab[k][3]
	v = sm.itab[k][2] + v*t2
	v = sm.itab[k][1] + v*t2
	v = sm.itab[k][0] + v*t2
	p := t
	for i := 0; i < k; i++ {
		p *= t
	}
	return v * p
}

// IntegrateWeighted computes the definite integral of w(t + toff) times the
// trajectory polynomial pos + s(t) over [start, end]. The range must already
// be clipped to the segment's local domain and toff must place it inside the
// kernel support. Two equivalent closed-form expansions are used:
//
//   - toff^2 > hst^2: expand the kernel polynomial about the window
//     midpoint and integrate the monomial products directly. Shifting the
//     trajectory polynomial by a large toff suffers catastrophic
//     cancellation, so the kernel is shifted instead.
//   - otherwise: shift the trajectory into the kernel-centered frame
//     (u = t + toff) and reuse the precomputed antiderivative tables of
//     t^k * w(t).
//
// The branch is a numerical-stability requirement, not an optimization.
func (sm *Smoother) IntegrateWeighted(pos float64, s *scurve.SCurve,
	start, end, toff float64) float64 {
	a := s.Coeffs(pos)
	if toff*toff > sm.hst2 {
		return sm.integrateKernelShifted(&a, start, end, toff)
	}
	return sm.integrateCurveShifted(&a, start, end, toff)
}

// integrateCurveShifted rebases the trajectory polynomial into the
// kernel-centered frame and integrates each monomial against the kernel
// antiderivative tables.
func (sm *Smoother) integrateCurveShifted(a *[maxOrder + 1]float64,
	start, end, toff float64) float64 {
	// b[j]: t^j coefficients of the trajectory evaluated at u - toff
	var b [maxOrder + 1]float64
	pow := 1.
	for d := 0; d <= maxOrder; d, pow = d+1, pow*-toff {
		for j := 0; j+d <= maxOrder; j++ {
			b[j] += binomial[j+d][j] * a[j+d] * pow
		}
	}
	us, ue := start+toff, end+toff
	res := 0.
	for k := 0; k <= maxOrder; k++ {
		if b[k] != 0. {
			res += b[k] * (sm.iwt(k, ue) - sm.iwt(k, us))
		}
	}
	return res
}

// integrateKernelShifted expands the kernel polynomial about the window
// midpoint and integrates the monomial products directly. Both expansions
// are recentered on the midpoint: expanding about the segment's local origin
// would put powers of the (possibly large) window position into every term,
// which cancel catastrophically, while powers of the half width stay at the
// kernel's own scale.
func (sm *Smoother) integrateKernelShifted(a *[maxOrder + 1]float64,
	start, end, toff float64) float64 {
	tm := 0.5 * (start + end)
	// Window midpoint in the kernel frame; inside the support
	u0 := tm + toff
	// d[j]: tau^j coefficients of w(u0 + tau)
	var d [maxOrder + 1]float64
	c := [maxOrder + 1]float64{sm.c0, 0., sm.c2, 0., sm.c4, 0., sm.c6}
	for m := 0; m <= sm.order; m += 2 {
		if c[m] == 0. {
			continue
		}
		pow := 1.
		for j := m; j >= 0; j-- {
			d[j] += binomial[m][j] * c[m] * pow
			pow *= u0
		}
	}
	// b[k]: tau^k coefficients of the trajectory evaluated at tm + tau
	var b [maxOrder + 1]float64
	pow := 1.
	for n := 0; n <= maxOrder; n, pow = n+1, pow*tm {
		for k := 0; k+n <= maxOrder; k++ {
			b[k] += binomial[k+n][k] * a[k+n] * pow
		}
	}
	var ps, pe [2*maxOrder + 2]float64
	ps[0], pe[0] = 1., 1.
	for i := 1; i <= 2*maxOrder+1; i++ {
		ps[i] = ps[i-1] * (start - tm)
		pe[i] = pe[i-1] * (end - tm)
	}
	res := 0.
	for j := 0; j <= sm.order; j++ {
		if d[j] == 0. {
			continue
		}
		for k := 0; k <= maxOrder; k++ {
			if b[k] == 0. {
				continue
			}
			n := j + k + 1
			res += d[j] * b[k] * (pe[n] - ps[n]) / float64(n)
		}
	}
	return res
}

// moveIntegrate clips the window to the move's local domain and integrates
// its weighted contribution.
func (sm *Smoother) moveIntegrate(traj Trajectory, m *trapq.Move,
	start, end, toff float64) float64 {
	if start < 0. {
		start = 0.
	}
	if end > m.MoveT {
		end = m.MoveT
	}
	pos, s := traj.Curve(m)
	return sm.IntegrateWeighted(pos, &s, start, end, toff)
}

// IntegrateWindow computes the kernel-weighted average of traj over the
// window [moveTime-hst, moveTime+hst] centered in the referenced move's local
// clock, walking into neighboring moves as needed. The traversal is read
// only. A window that reaches past the retained queue ends reports the
// boundary error; that is a violation of the host's retention contract and
// has no recovery path here.
func (sm *Smoother) IntegrateWindow(ref trapq.MoveRef, traj Trajectory,
	moveTime float64) (float64, error) {
	m := ref.Move()
	start, end := moveTime-sm.hst, moveTime+sm.hst
	offset := -moveTime
	res := sm.moveIntegrate(traj, m, start, end, offset)
	// Walk into previous moves while the window extends before this move
	prev := ref
	for start < 0. {
		var err error
		prev, err = prev.Prev()
		if err != nil {
			return 0., fmt.Errorf("smoothing window at %.6f: %w", moveTime, err)
		}
		pm := prev.Move()
		start += pm.MoveT
		offset -= pm.MoveT
		res += sm.moveIntegrate(traj, pm, start, pm.MoveT, offset)
	}
	// Walk into next moves while the window extends past the current move
	offset = -moveTime
	next := ref
	for end > m.MoveT {
		end -= m.MoveT
		offset += m.MoveT
		var err error
		next, err = next.Next()
		if err != nil {
			return 0., fmt.Errorf("smoothing window at %.6f: %w", moveTime, err)
		}
		m = next.Move()
		res += sm.moveIntegrate(traj, m, 0., end, offset)
	}
	return res, nil
}
