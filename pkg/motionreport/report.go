// Motion reporting: sampling stepper and trajectory positions
//
// Copyright (C) 2021  Kevin O'Connor <kevin@koconnor.net>
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package motionreport exposes the planned trajectory and the computed
// stepper positions as a diagnostic API: move queue dumps and sampled
// position traces, over HTTP and websocket streams.
package motionreport

import (
	"fmt"
	"sort"
	"sync"

	"stepsmooth/pkg/kinematics"
	"stepsmooth/pkg/log"
	"stepsmooth/pkg/trapq"
)

// Sample is one sampled stepper position.
type Sample struct {
	Time     float64 `json:"time"`
	Position float64 `json:"position"`
}

// MoveDump is the JSON view of one queued move.
type MoveDump struct {
	PrintTime     float64     `json:"print_time"`
	Duration      float64     `json:"move_t"`
	StartVelocity float64     `json:"start_v"`
	StartPos      trapq.Coord `json:"start_pos"`
	AxesR         trapq.Coord `json:"axes_r"`
}

// Reporter samples registered stepper kinematics against a shared move
// queue. Registration happens at startup; sampling is read only.
type Reporter struct {
	mu       sync.RWMutex
	q        *trapq.TrapQ
	steppers map[string]kinematics.Kinematics
	logger   *log.Logger
}

// NewReporter creates a reporter over the given move queue.
func NewReporter(q *trapq.TrapQ, logger *log.Logger) *Reporter {
	return &Reporter{
		q:        q,
		steppers: make(map[string]kinematics.Kinematics),
		logger:   logger.Component("motionreport"),
	}
}

// AddStepper registers a named stepper for position sampling.
func (r *Reporter) AddStepper(name string, k kinematics.Kinematics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.steppers[name]; ok {
		return fmt.Errorf("motionreport: stepper %q already registered", name)
	}
	r.steppers[name] = k
	return nil
}

// StepperNames lists the registered steppers in sorted order.
func (r *Reporter) StepperNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.steppers))
	for name := range r.steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DumpMoves returns the queued moves overlapping [startTime, endTime].
func (r *Reporter) DumpMoves(startTime, endTime float64) []MoveDump {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var dump []MoveDump
	for i := 0; i < r.q.Len(); i++ {
		m := r.q.At(i).Move()
		if m.PrintTime+m.MoveT < startTime || m.PrintTime > endTime {
			continue
		}
		dump = append(dump, MoveDump{
			PrintTime:     m.PrintTime,
			Duration:      m.MoveT,
			StartVelocity: m.S.C1,
			StartPos:      m.StartPos,
			AxesR:         m.AxesR,
		})
	}
	return dump
}

// Retire releases queue history that ended before printTime, reduced by the
// largest step generation window any registered stepper declares, so a
// pending smoothing query never loses the segments it still needs.
func (r *Reporter) Retire(printTime float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	maxPre := 0.
	for _, k := range r.steppers {
		if pre, _ := k.StepGenWindow(); pre > maxPre {
			maxPre = pre
		}
	}
	r.q.FinalizeMoves(printTime - maxPre)
}

// SampleStepper samples the named stepper's position at fixed intervals over
// [startTime, endTime]. Instants whose smoothing window leaves the retained
// queue are skipped; the trace reports what is computable, missing segments
// are the caller's cue to widen retention.
func (r *Reporter) SampleStepper(name string, startTime, endTime,
	interval float64) ([]Sample, error) {
	if interval <= 0. {
		return nil, fmt.Errorf("motionreport: interval %v must be positive", interval)
	}
	if endTime < startTime {
		return nil, fmt.Errorf("motionreport: empty sample range [%v, %v]",
			startTime, endTime)
	}
	r.mu.RLock()
	k, ok := r.steppers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("motionreport: unknown stepper %q", name)
	}
	var samples []Sample
	skipped := 0
	for t := startTime; t <= endTime+1e-9; t += interval {
		ref, localTime, err := r.q.Find(t)
		if err != nil {
			skipped++
			continue
		}
		pos, err := k.CalcPosition(ref, localTime)
		if err != nil {
			skipped++
			continue
		}
		samples = append(samples, Sample{Time: t, Position: pos})
	}
	if skipped > 0 {
		r.logger.Debugf("stepper %s: %d of %d samples outside the retained queue",
			name, skipped, skipped+len(samples))
	}
	return samples, nil
}
