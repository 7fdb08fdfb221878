// Kinematic filter to smooth out cartesian XY movements
//
// Copyright (C) 2019-2020  Kevin O'Connor <kevin@koconnor.net>
// Copyright (C) 2020  Dmitry Butyugin <dmbutyugin@google.com>
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package kinematics

import (
	"errors"
	"fmt"

	"stepsmooth/pkg/smoother"
	"stepsmooth/pkg/trapq"
)

// dummyEvalTime is the sentinel move-local time the synthetic segment is
// evaluated at; the synthetic segment's constant curve makes the value
// irrelevant beyond staying inside the segment's time domain.
const dummyEvalTime = 500.

// SmoothAxis decorates a kinematics model with per-axis position smoothing:
// X and Y positions are replaced by their kernel-weighted window averages
// before the wrapped model computes the stepper position.
type SmoothAxis struct {
	orig    Kinematics
	active  AxisFlags
	profile smoother.Profile

	xSm, ySm     *smoother.Smoother
	xTraj, yTraj smoother.Trajectory

	freqX, freqY       float64
	dampingX, dampingY float64
}

// ErrNoSmoothableAxis reports a wrapped model that reads neither X nor Y.
var ErrNoSmoothableAxis = errors.New("smooth axis: wrapped kinematics reads neither X nor Y")

// NewSmoothAxis wraps orig with axis smoothing using the given kernel
// profile. Smoothing starts disabled on both axes; call SetParams to enable
// it.
func NewSmoothAxis(orig Kinematics, profile smoother.Profile) (*SmoothAxis, error) {
	active := orig.ActiveFlags() & (AxisFlagX | AxisFlagY)
	if active == 0 {
		return nil, ErrNoSmoothableAxis
	}
	// Probe-build to reject an unknown or window-less profile at setup time
	if _, err := smoother.HalfSmoothTime(profile, 1., 0.); err != nil {
		return nil, err
	}
	return &SmoothAxis{
		orig:    orig,
		active:  active,
		profile: profile,
		xTraj:   smoother.AxisTrajectory(trapq.AxisX),
		yTraj:   smoother.AxisTrajectory(trapq.AxisY),
	}, nil
}

// SetParams rebuilds the per-axis kernels. A zero target frequency disables
// smoothing on that axis only. Both kernels are validated before either is
// installed; on error the previous configuration is kept unchanged.
func (sa *SmoothAxis) SetParams(freqX, freqY, dampingX, dampingY float64) error {
	var xSm, ySm *smoother.Smoother
	var err error
	if freqX > 0. {
		if xSm, err = smoother.NewSmoother(sa.profile, freqX, dampingX); err != nil {
			return fmt.Errorf("axis x: %w", err)
		}
	} else if freqX < 0. {
		return fmt.Errorf("%w: axis x target frequency %v must be non-negative",
			smoother.ErrInvalidParameter, freqX)
	}
	if freqY > 0. {
		if ySm, err = smoother.NewSmoother(sa.profile, freqY, dampingY); err != nil {
			return fmt.Errorf("axis y: %w", err)
		}
	} else if freqY < 0. {
		return fmt.Errorf("%w: axis y target frequency %v must be non-negative",
			smoother.ErrInvalidParameter, freqY)
	}
	sa.xSm, sa.ySm = xSm, ySm
	sa.freqX, sa.freqY = freqX, freqY
	sa.dampingX, sa.dampingY = dampingX, dampingY
	return nil
}

// SetProfile switches the kernel profile and rebuilds any active kernels
// with it. On error the previous profile and kernels are kept.
func (sa *SmoothAxis) SetProfile(profile smoother.Profile) error {
	old := sa.profile
	sa.profile = profile
	if err := sa.SetParams(sa.freqX, sa.freqY, sa.dampingX, sa.dampingY); err != nil {
		sa.profile = old
		return err
	}
	return nil
}

// Profile returns the configured kernel profile.
func (sa *SmoothAxis) Profile() smoother.Profile {
	return sa.profile
}

// Params returns the configured per-axis frequencies and damping ratios.
func (sa *SmoothAxis) Params() (freqX, freqY, dampingX, dampingY float64) {
	return sa.freqX, sa.freqY, sa.dampingX, sa.dampingY
}

// CalcPosition implements Kinematics. The smoothed positions are written
// into a stack-local synthetic segment handed to the wrapped model, so the
// incoming segment queue is never mutated.
func (sa *SmoothAxis) CalcPosition(ref trapq.MoveRef, moveTime float64) (float64, error) {
	if sa.xSm == nil && sa.ySm == nil {
		return sa.orig.CalcPosition(ref, moveTime)
	}
	m := ref.Move()
	syn := trapq.Move{
		MoveT:    2. * dummyEvalTime,
		StartPos: m.GetCoord(moveTime),
	}
	axes := [...]struct {
		flag AxisFlags
		sm   *smoother.Smoother
		traj smoother.Trajectory
		axis int
	}{
		{AxisFlagX, sa.xSm, sa.xTraj, trapq.AxisX},
		{AxisFlagY, sa.ySm, sa.yTraj, trapq.AxisY},
	}
	for _, ax := range axes {
		if sa.active&ax.flag == 0 || ax.sm == nil {
			continue
		}
		pos, err := ax.sm.IntegrateWindow(ref, ax.traj, moveTime)
		if err != nil {
			return 0., err
		}
		syn.StartPos.SetAxis(ax.axis, pos)
	}
	return sa.orig.CalcPosition(trapq.Synthetic(&syn), dummyEvalTime)
}

// ActiveFlags implements Kinematics.
func (sa *SmoothAxis) ActiveFlags() AxisFlags {
	return sa.orig.ActiveFlags()
}

// StepGenWindow implements Kinematics. The window is the largest half
// support time across active, smoothed axes.
func (sa *SmoothAxis) StepGenWindow() (float64, float64) {
	hst := 0.
	if sa.active&AxisFlagX != 0 && sa.xSm != nil {
		hst = sa.xSm.HalfSupportTime()
	}
	if sa.active&AxisFlagY != 0 && sa.ySm != nil && sa.ySm.HalfSupportTime() > hst {
		hst = sa.ySm.HalfSupportTime()
	}
	return hst, hst
}
