// Stepper kinematics capability
//
// Copyright (C) 2018-2021  Kevin O'Connor <kevin@koconnor.net>
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package kinematics computes stepper positions from trajectory segments. It
// provides the basic cartesian models, the extruder model with pressure
// advance, and the axis-smoothing decorator that filters X/Y positions
// through a vibration-suppressing kernel before delegating to a wrapped
// model.
package kinematics

import "stepsmooth/pkg/trapq"

// AxisFlags is a bit set of the cartesian axes a kinematics model reads.
type AxisFlags uint8

const (
	// AxisFlagX marks the X axis as read.
	AxisFlagX AxisFlags = 1 << iota
	// AxisFlagY marks the Y axis as read.
	AxisFlagY
	// AxisFlagZ marks the Z axis as read.
	AxisFlagZ
)

// Kinematics computes a stepper position from a move and a move-local time.
type Kinematics interface {
	// CalcPosition returns the stepper position for the referenced move at
	// the given move-local time. Boundary errors from windowed smoothing are
	// contract violations and abort the computation.
	CalcPosition(ref trapq.MoveRef, moveTime float64) (float64, error)

	// ActiveFlags reports which cartesian axes the model reads.
	ActiveFlags() AxisFlags

	// StepGenWindow reports the history and lookahead durations (seconds)
	// the segment queue owner must retain around any queried time.
	StepGenWindow() (preActive, postActive float64)
}
