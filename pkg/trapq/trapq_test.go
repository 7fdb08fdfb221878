// Move queue tests
package trapq

import (
	"errors"
	"math"
	"testing"
)

func appendTrapezoid(q *TrapQ) {
	// 40 -> 100 -> 40 mm/s at 1000 mm/s^2 along X
	q.Append(1., 0.06, 0., 0.06, 0.2, 0.06, 0., 0.06,
		Coord{X: 10.}, Coord{X: 1.}, 40., 100., 1000., 2)
}

func TestAppendBuildsContiguousMoves(t *testing.T) {
	q := New()
	appendTrapezoid(q)
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	for i := 0; i < q.Len()-1; i++ {
		m := q.At(i).Move()
		n := q.At(i + 1).Move()
		if math.Abs(m.PrintTime+m.MoveT-n.PrintTime) > 1e-12 {
			t.Errorf("move %d ends at %v but move %d starts at %v",
				i, m.PrintTime+m.MoveT, i+1, n.PrintTime)
		}
		endPos := m.GetCoord(m.MoveT)
		if math.Abs(endPos.X-n.StartPos.X) > 1e-9 {
			t.Errorf("move %d ends at X=%v but move %d starts at X=%v",
				i, endPos.X, i+1, n.StartPos.X)
		}
	}
	// Velocity is continuous at the phase boundaries
	accel := q.At(0).Move()
	cruise := q.At(1).Move()
	if v := accel.S.Deriv(accel.MoveT); math.Abs(v-100.) > 1e-9 {
		t.Errorf("acceleration phase ends at velocity %v, want 100", v)
	}
	if v := cruise.S.Deriv(0.); math.Abs(v-100.) > 1e-9 {
		t.Errorf("cruise phase starts at velocity %v, want 100", v)
	}
}

func TestAppendSlicesAccelGroup(t *testing.T) {
	// One 0.12s Bezier acceleration group appended whole, and again cut into
	// two moves through the group offsets. The slices must retrace the whole
	// group's positions and stay velocity continuous at the cut.
	whole := New()
	whole.Append(0., 0.12, 0., 0.12, 0., 0., 0., 0.,
		Coord{X: 10.}, Coord{X: 1.}, 40., 160., 1000., 6)

	sliced := New()
	sliced.Append(0., 0.06, 0., 0.12, 0., 0., 0., 0.,
		Coord{X: 10.}, Coord{X: 1.}, 40., 160., 1000., 6)
	cutPos := sliced.At(0).Move().GetCoord(0.06)
	sliced.Append(0.06, 0.06, 0.06, 0.12, 0., 0., 0., 0.,
		cutPos, Coord{X: 1.}, 40., 160., 1000., 6)

	if whole.Len() != 1 || sliced.Len() != 2 {
		t.Fatalf("Len() = %d and %d, want 1 and 2", whole.Len(), sliced.Len())
	}
	wm := whole.At(0).Move()
	first, second := sliced.At(0).Move(), sliced.At(1).Move()
	for _, tv := range []float64{0., 0.02, 0.05, 0.06} {
		if got, want := second.GetCoord(tv).X, wm.GetCoord(0.06+tv).X; math.Abs(got-want) > 1e-9 {
			t.Errorf("second slice at %v: X=%v, want %v", tv, got, want)
		}
	}
	if v1, v2 := first.S.Deriv(0.06), second.S.Deriv(0.); math.Abs(v1-v2) > 1e-9 {
		t.Errorf("velocity jumps at the cut: %v vs %v", v1, v2)
	}
	if v := second.S.Deriv(0.06); math.Abs(v-160.) > 1e-9 {
		t.Errorf("group ends at velocity %v, want 160", v)
	}
}

func TestFindLocatesMovesAndBoundaries(t *testing.T) {
	q := New()
	appendTrapezoid(q)
	ref, localT, err := q.Find(1.1)
	if err != nil {
		t.Fatalf("Find(1.1) failed: %v", err)
	}
	if ref.Move() != q.At(1).Move() {
		t.Error("Find(1.1) did not return the cruise move")
	}
	if math.Abs(localT-0.04) > 1e-12 {
		t.Errorf("Find(1.1) local time = %v, want 0.04", localT)
	}

	if _, _, err := q.Find(0.5); !errors.Is(err, ErrQueueUnderflow) {
		t.Errorf("Find before queue start: err = %v, want ErrQueueUnderflow", err)
	}
	if _, _, err := q.Find(2.); !errors.Is(err, ErrQueueOverflow) {
		t.Errorf("Find past queue end: err = %v, want ErrQueueOverflow", err)
	}

	// The exact end time of the last move maps onto it
	ref, localT, err = q.Find(1. + 0.06 + 0.2 + 0.06)
	if err != nil {
		t.Fatalf("Find(end) failed: %v", err)
	}
	if ref.Move() != q.At(2).Move() || math.Abs(localT-0.06) > 1e-12 {
		t.Errorf("Find(end) = move %v at %v", ref.Move(), localT)
	}
}

func TestNeighborTraversalIsBoundsChecked(t *testing.T) {
	q := New()
	appendTrapezoid(q)
	head := q.At(0)
	if _, err := head.Prev(); !errors.Is(err, ErrQueueUnderflow) {
		t.Errorf("Prev at head: err = %v, want ErrQueueUnderflow", err)
	}
	tail := q.At(q.Len() - 1)
	if _, err := tail.Next(); !errors.Is(err, ErrQueueOverflow) {
		t.Errorf("Next at tail: err = %v, want ErrQueueOverflow", err)
	}
	mid, err := head.Next()
	if err != nil {
		t.Fatalf("Next at head failed: %v", err)
	}
	back, err := mid.Prev()
	if err != nil {
		t.Fatalf("Prev at mid failed: %v", err)
	}
	if back.Move() != head.Move() {
		t.Error("Prev(Next(head)) != head")
	}
}

func TestFinalizeMovesKeepsStableReferences(t *testing.T) {
	q := New()
	appendTrapezoid(q)
	cruise := q.At(1)
	// Retire the acceleration move only (it ends at t=1.06)
	q.FinalizeMoves(1.1)
	if q.Len() != 2 {
		t.Fatalf("Len() = %d after FinalizeMoves, want 2", q.Len())
	}
	// The old reference still names the cruise move
	if cruise.Move() != q.At(0).Move() {
		t.Error("reference invalidated by FinalizeMoves")
	}
	if _, err := cruise.Prev(); !errors.Is(err, ErrQueueUnderflow) {
		t.Error("retired move still reachable via Prev")
	}
}

func TestSyntheticMoveHasNoNeighbors(t *testing.T) {
	m := Move{MoveT: 1000., StartPos: Coord{X: 42.}}
	ref := Synthetic(&m)
	if ref.Move() != &m {
		t.Error("Synthetic reference does not resolve to the move")
	}
	if _, err := ref.Prev(); !errors.Is(err, ErrQueueUnderflow) {
		t.Errorf("synthetic Prev: err = %v, want ErrQueueUnderflow", err)
	}
	if _, err := ref.Next(); !errors.Is(err, ErrQueueOverflow) {
		t.Errorf("synthetic Next: err = %v, want ErrQueueOverflow", err)
	}
}

func TestGetCoordProjectsDirectionRatios(t *testing.T) {
	m := Move{
		MoveT:    1.,
		StartPos: Coord{X: 1., Y: 2., Z: 3.},
		AxesR:    Coord{X: 0.6, Y: 0.8},
	}
	m.S.C1 = 10.
	pos := m.GetCoord(0.5)
	if math.Abs(pos.X-4.) > 1e-12 || math.Abs(pos.Y-6.) > 1e-12 || math.Abs(pos.Z-3.) > 1e-12 {
		t.Errorf("GetCoord(0.5) = %+v", pos)
	}
}
