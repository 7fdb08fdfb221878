// Trajectory segment queue
//
// Copyright (C) 2018-2021  Kevin O'Connor <kevin@koconnor.net>
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package trapq maintains the ordered queue of planned trajectory segments
// ("moves"). Moves are appended at the tail by the planner and retired from
// the head once step generation no longer needs them; every consumer in
// between only reads. Each move's local time domain is contiguous with its
// neighbors, which is the invariant the windowed integration in pkg/smoother
// relies on.
//
// The queue is index based: a MoveRef names a move by a stable sequence
// number, and neighbor traversal is bounds checked instead of walking raw
// list nodes. All access is expected to follow a single-writer discipline;
// the queue itself does no locking.
package trapq

import (
	"errors"

	"stepsmooth/pkg/scurve"
)

var (
	// ErrQueueUnderflow reports a traversal before the oldest retained move.
	// It indicates the host violated the declared history retention window.
	ErrQueueUnderflow = errors.New("trapq: traversal before first retained move")
	// ErrQueueOverflow reports a traversal past the newest planned move.
	ErrQueueOverflow = errors.New("trapq: traversal past last planned move")
)

// Axis indices for Coord access.
const (
	AxisX = iota
	AxisY
	AxisZ
)

// Coord is a cartesian position or per-axis ratio triple.
type Coord struct {
	X, Y, Z float64
}

// Axis returns the component for the given axis index.
func (c *Coord) Axis(axis int) float64 {
	switch axis {
	case AxisX:
		return c.X
	case AxisY:
		return c.Y
	}
	return c.Z
}

// SetAxis sets the component for the given axis index.
func (c *Coord) SetAxis(axis int, v float64) {
	switch axis {
	case AxisX:
		c.X = v
	case AxisY:
		c.Y = v
	default:
		c.Z = v
	}
}

// Move is a single chronologically bounded piece of motion. S gives the
// scalar displacement along the move's principal direction over the local
// time range [0, MoveT]; AxesR projects that displacement onto each axis.
type Move struct {
	PrintTime float64
	MoveT     float64
	StartPos  Coord
	AxesR     Coord
	S         scurve.SCurve
}

// GetDistance returns the displacement along the principal direction at
// move-local time t.
func (m *Move) GetDistance(t float64) float64 {
	return m.S.Eval(t)
}

// GetCoord returns the cartesian position at move-local time t.
func (m *Move) GetCoord(t float64) Coord {
	d := m.S.Eval(t)
	return Coord{
		X: m.StartPos.X + m.AxesR.X*d,
		Y: m.StartPos.Y + m.AxesR.Y*d,
		Z: m.StartPos.Z + m.AxesR.Z*d,
	}
}

// TrapQ is the move queue.
type TrapQ struct {
	moves []Move
	first int64 // sequence number of moves[0]
}

// New creates an empty queue.
func New() *TrapQ {
	return &TrapQ{}
}

// Len returns the number of retained moves.
func (q *TrapQ) Len() int {
	return len(q.moves)
}

// At returns a reference to the i-th retained move (0 is the oldest).
func (q *TrapQ) At(i int) MoveRef {
	if i < 0 || i >= len(q.moves) {
		return MoveRef{}
	}
	return MoveRef{q: q, seq: q.first + int64(i)}
}

// AppendMove adds a fully built move at the tail and returns its reference.
func (q *TrapQ) AppendMove(m Move) MoveRef {
	q.moves = append(q.moves, m)
	return MoveRef{q: q, seq: q.first + int64(len(q.moves)-1)}
}

// Append builds the moves of a trapezoidal velocity profile (acceleration,
// cruise, deceleration; phases with zero duration are skipped) and adds them
// at the tail. accelOrder selects the acceleration profile: 2 for constant
// acceleration, 4 or 6 for the jerk-limited Bezier profiles.
//
// The acceleration and deceleration phases may be slices cut out of longer
// acceleration groups shared with neighboring profiles: accelOffsetT locates
// the phase inside a group of duration totalAccelT whose start velocity is
// startV (and likewise decelOffsetT/totalDecelT inside a group decelerating
// from cruiseV). A standalone phase passes a zero offset and its own
// duration as the group total.
func (q *TrapQ) Append(printTime, accelT, accelOffsetT, totalAccelT,
	cruiseT, decelT, decelOffsetT, totalDecelT float64,
	startPos, axesR Coord, startV, cruiseV, accel float64, accelOrder int) {
	if accelT > 0. {
		group := accelCurve(startV, accel, totalAccelT, accelOrder)
		q.AppendMove(Move{
			PrintTime: printTime,
			MoveT:     accelT,
			StartPos:  startPos,
			AxesR:     axesR,
			S:         group.Rebased(accelOffsetT),
		})
		m := &q.moves[len(q.moves)-1]
		startPos = m.GetCoord(accelT)
		printTime += accelT
	}
	if cruiseT > 0. {
		q.AppendMove(Move{
			PrintTime: printTime,
			MoveT:     cruiseT,
			StartPos:  startPos,
			AxesR:     axesR,
			S:         scurve.FromVelocity(cruiseV),
		})
		m := &q.moves[len(q.moves)-1]
		startPos = m.GetCoord(cruiseT)
		printTime += cruiseT
	}
	if decelT > 0. {
		group := accelCurve(cruiseV, -accel, totalDecelT, accelOrder)
		q.AppendMove(Move{
			PrintTime: printTime,
			MoveT:     decelT,
			StartPos:  startPos,
			AxesR:     axesR,
			S:         group.Rebased(decelOffsetT),
		})
	}
}

func accelCurve(startV, accel, totalT float64, accelOrder int) scurve.SCurve {
	switch accelOrder {
	case 4:
		return scurve.FromBezier4(startV, accel, totalT)
	case 6:
		return scurve.FromBezier6(startV, accel, totalT)
	}
	return scurve.FromTrapezoid(startV, accel)
}

// SetPosition appends a zero-duration marker move resetting the queue
// position, mirroring a planner homing or position reset.
func (q *TrapQ) SetPosition(printTime float64, pos Coord) {
	q.AppendMove(Move{
		PrintTime: printTime,
		StartPos:  pos,
	})
}

// FinalizeMoves retires moves that ended before clearHistoryTime. The host
// must reduce clearHistoryTime by the largest step-generation window declared
// by its kinematics so a pending window query never loses segments; the queue
// does not enforce that contract, it only honors the time it is given.
func (q *TrapQ) FinalizeMoves(clearHistoryTime float64) {
	n := 0
	for n < len(q.moves) && q.moves[n].PrintTime+q.moves[n].MoveT < clearHistoryTime {
		n++
	}
	if n == 0 {
		return
	}
	q.moves = q.moves[n:]
	q.first += int64(n)
}

// Find returns a reference to the move containing printTime, along with the
// move-local time. Times before the first retained move or at or past the end
// of the last move report the matching boundary error.
func (q *TrapQ) Find(printTime float64) (MoveRef, float64, error) {
	if len(q.moves) == 0 || printTime < q.moves[0].PrintTime {
		return MoveRef{}, 0., ErrQueueUnderflow
	}
	for i := range q.moves {
		m := &q.moves[i]
		if printTime < m.PrintTime+m.MoveT {
			return MoveRef{q: q, seq: q.first + int64(i)}, printTime - m.PrintTime, nil
		}
	}
	last := &q.moves[len(q.moves)-1]
	if printTime == last.PrintTime+last.MoveT {
		return MoveRef{q: q, seq: q.first + int64(len(q.moves)-1)}, last.MoveT, nil
	}
	return MoveRef{}, 0., ErrQueueOverflow
}

// MoveRef names a move either inside a queue (by stable sequence number) or a
// standalone synthetic move that has no neighbors.
type MoveRef struct {
	q   *TrapQ
	seq int64
	m   *Move
}

// Synthetic wraps a standalone move. Traversing past it reports the queue
// boundary errors, so a synthetic move is only usable where the full query
// window stays inside its own time domain.
func Synthetic(m *Move) MoveRef {
	return MoveRef{m: m}
}

// Move returns the referenced move.
func (r MoveRef) Move() *Move {
	if r.m != nil {
		return r.m
	}
	return &r.q.moves[r.seq-r.q.first]
}

// Prev returns the chronologically previous move.
func (r MoveRef) Prev() (MoveRef, error) {
	if r.m != nil || r.q == nil || r.seq <= r.q.first {
		return MoveRef{}, ErrQueueUnderflow
	}
	return MoveRef{q: r.q, seq: r.seq - 1}, nil
}

// Next returns the chronologically next move.
func (r MoveRef) Next() (MoveRef, error) {
	if r.m != nil || r.q == nil || r.seq+1 >= r.q.first+int64(len(r.q.moves)) {
		return MoveRef{}, ErrQueueOverflow
	}
	return MoveRef{q: r.q, seq: r.seq + 1}, nil
}
