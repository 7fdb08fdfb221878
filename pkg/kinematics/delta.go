// Delta tower stepper kinematics
//
// Copyright (C) 2018-2019  Kevin O'Connor <kevin@koconnor.net>
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package kinematics

import (
	"fmt"
	"math"

	"stepsmooth/pkg/trapq"
)

// Delta maps a stepper onto one tower carriage of a linear delta machine.
// The carriage height is the toolhead z plus the vertical leg of the arm
// between the tower and the toolhead xy position.
type Delta struct {
	arm2           float64
	towerX, towerY float64
}

// NewDelta creates the kinematics for one delta tower. arm is the diagonal
// arm length; towerX, towerY is the tower position in the bed plane.
func NewDelta(arm, towerX, towerY float64) (*Delta, error) {
	if arm <= 0. {
		return nil, fmt.Errorf("delta kinematics: arm length %v must be positive", arm)
	}
	return &Delta{arm2: arm * arm, towerX: towerX, towerY: towerY}, nil
}

// CalcPosition implements Kinematics.
func (d *Delta) CalcPosition(ref trapq.MoveRef, moveTime float64) (float64, error) {
	pos := ref.Move().GetCoord(moveTime)
	dx, dy := d.towerX-pos.X, d.towerY-pos.Y
	leg2 := d.arm2 - dx*dx - dy*dy
	if leg2 < 0. {
		return 0., fmt.Errorf("delta kinematics: position (%v, %v) out of arm reach",
			pos.X, pos.Y)
	}
	return pos.Z + math.Sqrt(leg2), nil
}

// ActiveFlags implements Kinematics.
func (d *Delta) ActiveFlags() AxisFlags {
	return AxisFlagX | AxisFlagY | AxisFlagZ
}

// StepGenWindow implements Kinematics.
func (d *Delta) StepGenWindow() (float64, float64) {
	return 0., 0.
}
