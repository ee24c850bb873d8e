package core

import (
	"log"
	"sync"
	"time"

	"github.com/MuhammedFaaik/f66/internal/physics"
	"github.com/MuhammedFaaik/f66/internal/protocol"
)

type member struct {
	playerID int64
	conn     Conn
}

// Room owns one match: its state, its input queue and the connections
// subscribed to it. A single goroutine (Run) drives the simulation; the
// mutex covers the membership and phase fields that the registry touches
// from the outside.
type Room struct {
	ID string

	mu         sync.Mutex
	match      *Match
	members    map[string]member // keyed by connection id
	endReason  string
	lastActive time.Time
	startedAt  time.Time

	// Multi-producer, single-consumer: connection handlers enqueue, only
	// the tick drains. Bounded; a full queue rejects instead of blocking.
	inputs chan PlayerInput

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	tun Tuning

	// OnResult receives the final record exactly once, after the last
	// fully applied tick.
	OnResult func(FinalRecord)
}

func newRoom(match *Match, tun Tuning) *Room {
	return &Room{
		ID:         match.ID,
		match:      match,
		members:    make(map[string]member),
		lastActive: time.Now(),
		inputs:     make(chan PlayerInput, tun.InputQueueSize),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		tun:        tun,
	}
}

// Run drives the room until End. The stop signal is only observed between
// ticks, so teardown never interrupts a half-applied tick.
func (r *Room) Run() {
	ticker := time.NewTicker(r.tun.TickInterval())
	defer ticker.Stop()
	defer close(r.done)

	for {
		select {
		case <-r.stop:
			r.finalize()
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.match.Phase == PhaseActive {
				r.tick()
			}
			r.mu.Unlock()
		}
	}
}

// Join reserves a player slot. Allowed while Pending or, for a reserved
// slot, any time before Ended.
func (r *Room) Join(playerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = time.Now()
	return r.match.AddPlayer(playerID, r.tun.Field)
}

// Attach subscribes a connection and hands it an immediate full snapshot.
func (r *Room) Attach(connID string, playerID int64, conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.match.Phase == PhaseEnded {
		return ErrMatchEnded
	}
	if _, ok := r.match.Players[playerID]; !ok {
		return ErrNotInMatch
	}
	r.members[connID] = member{playerID: playerID, conn: conn}
	r.lastActive = time.Now()
	if data, err := protocol.Encode(protocol.MsgSnapshot, r.snapshotLocked()); err == nil {
		conn.Send(data)
	}
	return nil
}

// Detach unsubscribes a connection. The player keeps their slot; an empty
// room is torn down by the registry's idle sweep, not here.
func (r *Room) Detach(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mem, ok := r.members[connID]; ok {
		delete(r.members, connID)
		mem.conn.Close()
	}
	r.lastActive = time.Now()
}

// Enqueue queues one input for the next tick.
func (r *Room) Enqueue(in PlayerInput) error {
	select {
	case r.inputs <- in:
		return nil
	default:
		return ErrInputQueueFull
	}
}

func (r *Room) Start(callerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if callerID != 0 && callerID != r.match.CreatorID {
		return ErrNotCreator
	}
	switch r.match.Phase {
	case PhasePending:
		r.match.Phase = PhaseActive
		r.startedAt = time.Now()
		r.lastActive = r.startedAt
		return nil
	case PhaseEnded:
		return ErrMatchEnded
	default:
		return ErrMatchNotPending
	}
}

// Pause stops ticking; inputs keep queueing and are applied on resume.
func (r *Room) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.match.Phase != PhaseActive {
		return ErrMatchNotPending
	}
	r.match.Phase = PhasePaused
	return nil
}

func (r *Room) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.match.Phase != PhasePaused {
		return ErrMatchNotPending
	}
	r.match.Phase = PhaseActive
	return nil
}

// End requests a graceful stop. Idempotent; the final record is emitted
// from the room goroutine once the in-flight tick (if any) has completed.
func (r *Room) End(reason string) {
	r.mu.Lock()
	if r.endReason == "" {
		r.endReason = reason
	}
	r.mu.Unlock()
	r.stopOnce.Do(func() { close(r.stop) })
}

// Done is closed once the room goroutine has fully torn down.
func (r *Room) Done() <-chan struct{} { return r.done }

// IdleExpired reports whether the room has had no connections for longer
// than the given timeout.
func (r *Room) IdleExpired(timeout time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) == 0 && time.Since(r.lastActive) > timeout
}

func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.match.Phase
}

// --- tick path (mu held) ---

func (r *Room) tick() {
	inputs := r.drainInputs()
	res, err := Step(r.match, inputs, r.tun)
	if err != nil {
		// Broken invariant: end this match, never the process.
		log.Printf("match %s: %v, ending match", r.ID, err)
		if r.endReason == "" {
			r.endReason = "fault"
		}
		r.stopOnce.Do(func() { close(r.stop) })
		return
	}
	for _, id := range res.DroppedUnknown {
		log.Printf("match %s: dropped input for unknown player %d", r.ID, id)
	}

	if res.Goal != physics.TeamNone {
		if data, err := protocol.Encode(protocol.MsgGoal, protocol.GoalMsg{
			MatchID: r.ID,
			Team:    int(res.Goal),
			Score:   r.match.Score,
		}); err == nil {
			r.broadcastLocked(data)
		}
	}

	if r.match.Tick%r.tun.SnapshotEvery == 0 {
		if data, err := protocol.Encode(protocol.MsgSnapshot, r.snapshotLocked()); err == nil {
			r.broadcastLocked(data)
		}
		return
	}
	if delta, ok := r.deltaLocked(res); ok {
		if data, err := protocol.Encode(protocol.MsgDelta, delta); err == nil {
			r.broadcastLocked(data)
		}
	}
}

func (r *Room) drainInputs() []PlayerInput {
	var out []PlayerInput
	for {
		select {
		case in := <-r.inputs:
			out = append(out, in)
		default:
			return out
		}
	}
}

// broadcastLocked fans out best-effort: a full send queue drops the message
// for that member only.
func (r *Room) broadcastLocked(data []byte) {
	for _, mem := range r.members {
		mem.conn.Send(data)
	}
}

func (r *Room) snapshotLocked() protocol.SnapshotMsg {
	snap := protocol.SnapshotMsg{
		MatchID: r.ID,
		Tick:    r.match.Tick,
		Players: make([]protocol.PlayerSnapshot, 0, len(r.match.Players)),
		Ball:    wireBall(r.match.Ball),
		Score:   r.match.Score,
	}
	for _, p := range r.match.Players {
		snap.Players = append(snap.Players, wirePlayer(p))
	}
	return snap
}

func (r *Room) deltaLocked(res StepResult) (protocol.DeltaMsg, bool) {
	delta := protocol.DeltaMsg{MatchID: r.ID, Tick: r.match.Tick}
	changed := false
	for _, id := range res.MovedPlayers {
		if p, ok := r.match.Players[id]; ok {
			delta.Players = append(delta.Players, wirePlayer(p))
			changed = true
		}
	}
	if res.BallChanged {
		b := wireBall(r.match.Ball)
		delta.Ball = &b
		changed = true
	}
	if res.ScoreChanged {
		score := r.match.Score
		delta.Score = &score
		changed = true
	}
	return delta, changed
}

func (r *Room) finalize() {
	r.mu.Lock()
	if r.match.Phase == PhaseEnded {
		r.mu.Unlock()
		return
	}
	r.match.Phase = PhaseEnded
	reason := r.endReason
	if reason == "" {
		reason = "ended"
	}

	started := r.startedAt
	if started.IsZero() {
		started = r.match.CreatedAt
	}
	rec := FinalRecord{
		MatchID:   r.ID,
		Players:   make([]int64, 0, len(r.match.Players)),
		Score:     r.match.Score,
		Winner:    r.match.Winner(),
		Tick:      r.match.Tick,
		Duration:  time.Since(started).Seconds(),
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	}
	// Team1's player first, so the score pair lines up with the ids.
	for _, team := range []physics.Team{physics.Team1, physics.Team2} {
		for id, p := range r.match.Players {
			if p.Team == team {
				rec.Players = append(rec.Players, id)
			}
		}
	}

	if data, err := protocol.Encode(protocol.MsgMatchEnd, protocol.MatchEndMsg{
		MatchID: r.ID,
		Score:   r.match.Score,
		Winner:  rec.Winner,
		Reason:  reason,
	}); err == nil {
		r.broadcastLocked(data)
	}
	for _, mem := range r.members {
		mem.conn.Close()
	}
	r.members = make(map[string]member)
	r.mu.Unlock()

	if r.OnResult != nil {
		r.OnResult(rec)
	}
}

func wireVec(v physics.Vector3) protocol.Vec3 {
	return protocol.Vec3{v.X, v.Y, v.Z}
}

func wirePlayer(p *PlayerState) protocol.PlayerSnapshot {
	return protocol.PlayerSnapshot{ID: p.ID, Pos: wireVec(p.Pos), Vel: wireVec(p.Vel)}
}

func wireBall(b BallState) protocol.BallSnapshot {
	return protocol.BallSnapshot{Pos: wireVec(b.Pos), Vel: wireVec(b.Vel), Possessor: b.Possessor}
}
