// Cartesian and corexy stepper position formulas
//
// Copyright (C) 2018-2021  Kevin O'Connor <kevin@koconnor.net>
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package kinematics

import (
	"fmt"

	"stepsmooth/pkg/trapq"
)

// Cartesian maps a stepper directly onto one cartesian axis.
type Cartesian struct {
	axis int
}

// NewCartesian creates the kinematics for the stepper of axis 'x', 'y'
// or 'z'.
func NewCartesian(axis byte) (*Cartesian, error) {
	switch axis {
	case 'x':
		return &Cartesian{axis: trapq.AxisX}, nil
	case 'y':
		return &Cartesian{axis: trapq.AxisY}, nil
	case 'z':
		return &Cartesian{axis: trapq.AxisZ}, nil
	}
	return nil, fmt.Errorf("cartesian kinematics: unknown axis %q", axis)
}

// CalcPosition implements Kinematics.
func (c *Cartesian) CalcPosition(ref trapq.MoveRef, moveTime float64) (float64, error) {
	m := ref.Move()
	return m.StartPos.Axis(c.axis) + m.AxesR.Axis(c.axis)*m.S.Eval(moveTime), nil
}

// ActiveFlags implements Kinematics.
func (c *Cartesian) ActiveFlags() AxisFlags {
	return AxisFlags(1) << c.axis
}

// StepGenWindow implements Kinematics.
func (c *Cartesian) StepGenWindow() (float64, float64) {
	return 0., 0.
}

// CoreXY maps a stepper onto x+y or x-y.
type CoreXY struct {
	sign float64
}

// NewCoreXY creates the kinematics for a corexy stepper; kind is '+' for the
// x+y stepper and '-' for the x-y stepper.
func NewCoreXY(kind byte) (*CoreXY, error) {
	switch kind {
	case '+':
		return &CoreXY{sign: 1.}, nil
	case '-':
		return &CoreXY{sign: -1.}, nil
	}
	return nil, fmt.Errorf("corexy kinematics: unknown stepper type %q", kind)
}

// CalcPosition implements Kinematics.
func (c *CoreXY) CalcPosition(ref trapq.MoveRef, moveTime float64) (float64, error) {
	pos := ref.Move().GetCoord(moveTime)
	return pos.X + c.sign*pos.Y, nil
}

// ActiveFlags implements Kinematics.
func (c *CoreXY) ActiveFlags() AxisFlags {
	return AxisFlagX | AxisFlagY
}

// StepGenWindow implements Kinematics.
func (c *CoreXY) StepGenWindow() (float64, float64) {
	return 0., 0.
}
