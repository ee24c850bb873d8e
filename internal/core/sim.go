package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/MuhammedFaaik/f66/internal/physics"
)

// Tuning collects the per-match simulation constants, filled from config.
type Tuning struct {
	TickRate         int
	SnapshotEvery    int64
	MaxSpeed         float64
	MaxKickForce     float64
	KickRange        float64
	PossessionRadius float64
	Friction         float64
	Field            physics.Field
	IdleTimeout      time.Duration
	InputQueueSize   int
	SendQueueSize    int
}

func (t Tuning) TickInterval() time.Duration {
	return time.Second / time.Duration(t.TickRate)
}

// Normalize fills in safe values for fields a sparse config leaves at
// zero; the tick interval and snapshot cadence both divide by them.
func (t Tuning) Normalize() Tuning {
	if t.TickRate <= 0 {
		t.TickRate = 30
	}
	if t.SnapshotEvery <= 0 {
		t.SnapshotEvery = 1
	}
	if t.InputQueueSize <= 0 {
		t.InputQueueSize = 256
	}
	if t.SendQueueSize <= 0 {
		t.SendQueueSize = 64
	}
	return t
}

func (t Tuning) DT() float64 {
	return 1.0 / float64(t.TickRate)
}

// A ball slower than this can be claimed by a nearby player.
const possessionSpeedMax = 1.0

// StepResult reports what one tick changed, for delta building and event
// broadcast.
type StepResult struct {
	Goal           physics.Team // TeamNone if nobody scored
	MovedPlayers   []int64
	BallChanged    bool
	ScoreChanged   bool
	DroppedUnknown []int64 // inputs referencing players not in the match
}

// Step advances the match by one fixed timestep. Inputs must be the drained
// queue content in arrival order; stale and duplicate sequence numbers are
// discarded here. The returned error signals a broken simulation invariant,
// after which the match must be ended.
func Step(m *Match, inputs []PlayerInput, tun Tuning) (StepResult, error) {
	if m.Phase != PhaseActive {
		return StepResult{}, fmt.Errorf("step on %s match %s", m.Phase, m.ID)
	}

	var res StepResult
	dt := tun.DT()
	prevTick := m.Tick
	prevScore := m.Score

	// Per-player sequence order; relative order across players carries no
	// meaning, so a deterministic (player, seq) order is fine.
	sort.SliceStable(inputs, func(i, j int) bool {
		if inputs[i].PlayerID != inputs[j].PlayerID {
			return inputs[i].PlayerID < inputs[j].PlayerID
		}
		return inputs[i].Seq < inputs[j].Seq
	})

	moved := make(map[int64]bool)
	for _, in := range inputs {
		p, ok := m.Players[in.PlayerID]
		if !ok {
			res.DroppedUnknown = append(res.DroppedUnknown, in.PlayerID)
			continue
		}
		if in.Seq <= p.LastSeq {
			continue // duplicate or replayed input
		}
		p.LastSeq = in.Seq

		p.Vel = in.Move.ClampLength(tun.MaxSpeed)
		p.Pos = physics.ClampToBounds(physics.Integrate(p.Pos, p.Vel, dt), tun.Field)
		moved[p.ID] = true

		if in.Kick && p.Pos.Sub(m.Ball.Pos).Length() <= tun.KickRange {
			m.Ball.Vel = in.KickDir.ClampLength(tun.MaxKickForce)
			m.Ball.Possessor = 0
			res.BallChanged = true
		}
	}
	for id := range moved {
		res.MovedPlayers = append(res.MovedPlayers, id)
	}
	sort.Slice(res.MovedPlayers, func(i, j int) bool { return res.MovedPlayers[i] < res.MovedPlayers[j] })

	// Ball kinematics.
	if !m.Ball.Vel.IsZero() {
		m.Ball.Pos = physics.Integrate(m.Ball.Pos, m.Ball.Vel, dt)
		m.Ball.Vel = physics.ApplyFriction(m.Ball.Vel, tun.Friction, dt)
		m.Ball.Pos, m.Ball.Vel = physics.ReflectBounds(m.Ball.Pos, m.Ball.Vel, tun.Field)
		res.BallChanged = true
	}

	// Possession: a slow ball belongs to the nearest player in reach.
	if m.Ball.Vel.Length() < possessionSpeedMax {
		closest, dist := int64(0), tun.PossessionRadius
		for _, p := range m.Players {
			if d := p.Pos.Sub(m.Ball.Pos).Length(); d <= dist {
				closest, dist = p.ID, d
			}
		}
		if closest != 0 && closest != m.Ball.Possessor {
			m.Ball.Possessor = closest
			res.BallChanged = true
		}
	}

	if team := physics.DetectGoal(m.Ball.Pos, tun.Field); team != physics.TeamNone {
		m.Score[team-1]++
		m.Ball = BallState{} // back to center, at rest
		res.Goal = team
		res.ScoreChanged = true
		res.BallChanged = true
	}

	m.Tick++

	if m.Tick <= prevTick || m.Score[0] < prevScore[0] || m.Score[1] < prevScore[1] {
		return res, fmt.Errorf("simulation invariant violated in match %s at tick %d", m.ID, m.Tick)
	}
	return res, nil
}
