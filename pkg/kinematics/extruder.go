// Extruder stepper kinematics with pressure advance
//
// Copyright (C) 2018-2019  Kevin O'Connor <kevin@koconnor.net>
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package kinematics

import (
	"fmt"

	"stepsmooth/pkg/scurve"
	"stepsmooth/pkg/smoother"
	"stepsmooth/pkg/trapq"
)

// Without pressure advance the extruder stepper position is the nominal
// filament position. With pressure advance, extra filament is pushed during
// acceleration and retracted during deceleration:
//
//	pa_position(t) = nominal_position(t) + pressure_advance * nominal_velocity(t)
//
// which is then averaged over the smoothing window through the windowed
// integrator. Extruder move queues carry the filament displacement on the X
// axis with the extrusion rate folded into the segment curve.

// Extruder is the extruder stepper kinematics.
type Extruder struct {
	pressureAdvance float64
	smoothTime      float64
	sm              *smoother.Smoother
	traj            smoother.Trajectory
}

// NewExtruder creates extruder kinematics with smoothing and pressure
// advance disabled.
func NewExtruder() *Extruder {
	return &Extruder{}
}

// SetPressureAdvance reconfigures the pressure advance coefficient and
// smoothing duration. A zero smoothTime disables filtering and zeroes the
// pressure advance with it; a positive pressure advance therefore requires a
// positive smoothTime. On a validation error the previous configuration is
// kept unchanged.
func (e *Extruder) SetPressureAdvance(pressureAdvance, smoothTime float64) error {
	if pressureAdvance < 0. {
		return fmt.Errorf("%w: pressure advance %v must be non-negative",
			smoother.ErrInvalidParameter, pressureAdvance)
	}
	if smoothTime < 0. {
		return fmt.Errorf("%w: smooth time %v must be non-negative",
			smoother.ErrInvalidParameter, smoothTime)
	}
	if smoothTime == 0. {
		e.sm, e.pressureAdvance, e.smoothTime = nil, 0., 0.
		return nil
	}
	sm, err := smoother.NewBoxSmoother(.5 * smoothTime)
	if err != nil {
		return err
	}
	e.sm = sm
	e.pressureAdvance = pressureAdvance
	e.smoothTime = smoothTime
	e.traj = advanceTrajectory{pa: pressureAdvance}
	return nil
}

// PressureAdvance returns the configured pressure advance coefficient.
func (e *Extruder) PressureAdvance() float64 {
	return e.pressureAdvance
}

// SmoothTime returns the configured smoothing duration.
func (e *Extruder) SmoothTime() float64 {
	return e.smoothTime
}

// CalcPosition implements Kinematics.
func (e *Extruder) CalcPosition(ref trapq.MoveRef, moveTime float64) (float64, error) {
	m := ref.Move()
	if e.sm == nil {
		// Pressure advance not enabled
		return m.StartPos.X + m.GetDistance(moveTime), nil
	}
	return e.sm.IntegrateWindow(ref, e.traj, moveTime)
}

// ActiveFlags implements Kinematics.
func (e *Extruder) ActiveFlags() AxisFlags {
	return AxisFlagX
}

// StepGenWindow implements Kinematics.
func (e *Extruder) StepGenWindow() (float64, float64) {
	if e.sm == nil {
		return 0., 0.
	}
	hst := e.sm.HalfSupportTime()
	return hst, hst
}

// advanceTrajectory derives the pressure-advanced filament trajectory
// pos + s(t) + pa * s'(t) from a move's segment curve.
type advanceTrajectory struct {
	pa float64
}

// Curve implements smoother.Trajectory.
func (a advanceTrajectory) Curve(m *trapq.Move) (float64, scurve.SCurve) {
	s := &m.S
	d := scurve.SCurve{
		C1: s.C1 + 2.*a.pa*s.C2,
		C2: s.C2 + 3.*a.pa*s.C3,
		C3: s.C3 + 4.*a.pa*s.C4,
		C4: s.C4 + 5.*a.pa*s.C5,
		C5: s.C5 + 6.*a.pa*s.C6,
		C6: s.C6,
	}
	return m.StartPos.X + a.pa*s.C1, d
}
