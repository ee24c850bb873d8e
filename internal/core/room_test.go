package core

import (
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MuhammedFaaik/f66/internal/protocol"
)

type fakeConn struct {
	sendCh chan []byte
	drops  int32
	closed int32
}

func newFakeConn(capacity int) *fakeConn {
	return &fakeConn{sendCh: make(chan []byte, capacity)}
}

func (f *fakeConn) Send(b []byte) error {
	cp := append([]byte(nil), b...)
	select {
	case f.sendCh <- cp:
		return nil
	default:
		atomic.AddInt32(&f.drops, 1)
		return ErrSendDropped
	}
}

func (f *fakeConn) Close() error {
	atomic.StoreInt32(&f.closed, 1)
	return nil
}

// roomTuning speeds the loop up so the tests finish quickly.
func roomTuning() Tuning {
	tun := testTuning()
	tun.TickRate = 100
	return tun
}

// waitForEnvelope pumps messages until one of the wanted type arrives.
func waitForEnvelope(t *testing.T, fc *fakeConn, msgType string) protocol.Envelope {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.Type == msgType {
				return env
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", msgType)
		}
	}
}

func decodeSnapshot(t *testing.T, env protocol.Envelope) protocol.SnapshotMsg {
	t.Helper()
	var snap protocol.SnapshotMsg
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func encodeInput(t *testing.T, in protocol.InputMsg) []byte {
	t.Helper()
	data, err := protocol.Encode(protocol.MsgInput, in)
	if err != nil {
		t.Fatalf("encode input: %v", err)
	}
	return data
}

func setupTwoPlayerMatch(t *testing.T, m *Manager) (matchID string, fc1, fc2 *fakeConn) {
	t.Helper()
	matchID, err := m.CreateMatch(1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.JoinMatch(matchID, 2); err != nil {
		t.Fatalf("join: %v", err)
	}
	fc1, fc2 = newFakeConn(64), newFakeConn(64)
	if err := m.RegisterConnection("c1", 1, matchID, fc1); err != nil {
		t.Fatalf("register c1: %v", err)
	}
	if err := m.RegisterConnection("c2", 2, matchID, fc2); err != nil {
		t.Fatalf("register c2: %v", err)
	}
	return matchID, fc1, fc2
}

func TestStartBroadcastsToRoomMembersOnly(t *testing.T) {
	m := NewManager(roomTuning())
	matchID, fc1, fc2 := setupTwoPlayerMatch(t, m)

	// A second match with its own connection; it must see nothing of the
	// first match's traffic.
	otherID, err := m.CreateMatch(3)
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	fc3 := newFakeConn(64)
	if err := m.RegisterConnection("c3", 3, otherID, fc3); err != nil {
		t.Fatalf("register c3: %v", err)
	}

	if err := m.StartMatch(matchID, 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	for _, fc := range []*fakeConn{fc1, fc2} {
		env := waitForEnvelope(t, fc, protocol.MsgSnapshot)
		snap := decodeSnapshot(t, env)
		if snap.MatchID != matchID {
			t.Fatalf("snapshot for %q, want %q", snap.MatchID, matchID)
		}
		if len(snap.Players) != 2 {
			t.Fatalf("snapshot has %d players, want 2", len(snap.Players))
		}
	}

	// Drain whatever fc3 got: only its own (pending, tick 0) state.
	for {
		select {
		case b := <-fc3.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			snap := decodeSnapshot(t, env)
			if snap.MatchID == matchID {
				t.Fatal("foreign match traffic leaked into another room")
			}
		default:
			return
		}
	}
}

func TestInputMovesPlayerInBroadcastState(t *testing.T) {
	m := NewManager(roomTuning())
	matchID, fc1, _ := setupTwoPlayerMatch(t, m)

	if err := m.StartMatch(matchID, 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	raw := encodeInput(t, protocol.InputMsg{
		MatchID: matchID,
		Seq:     1,
		Move:    protocol.Vec3{100, 0, 0},
	})
	if err := m.RouteInput("c1", raw); err != nil {
		t.Fatalf("route input: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case b := <-fc1.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil || env.Type != protocol.MsgSnapshot {
				continue
			}
			snap := decodeSnapshot(t, env)
			for _, p := range snap.Players {
				if p.ID == 1 && p.Pos[0] > 0 {
					return // movement made it into the broadcast state
				}
			}
		case <-deadline:
			t.Fatal("player movement never showed up in a snapshot")
		}
	}
}

func TestRouteInputRejections(t *testing.T) {
	m := NewManager(roomTuning())
	matchID, _, _ := setupTwoPlayerMatch(t, m)

	if err := m.RouteInput("nope", []byte(`{}`)); !errors.Is(err, ErrUnknownConnection) {
		t.Fatalf("unknown connection err = %v", err)
	}
	if err := m.RouteInput("c1", []byte(`garbage`)); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("garbage err = %v", err)
	}
	foreign := encodeInput(t, protocol.InputMsg{MatchID: "other", Seq: 1})
	if err := m.RouteInput("c1", foreign); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("foreign match err = %v", err)
	}
	_ = matchID
}

func TestEndMatchEmitsFinalRecordAfterWholeTick(t *testing.T) {
	m := NewManager(roomTuning())
	results := make(chan FinalRecord, 1)
	m.OnResult = func(rec FinalRecord) { results <- rec }

	matchID, fc1, _ := setupTwoPlayerMatch(t, m)
	if err := m.StartMatch(matchID, 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Let the loop run a few ticks.
	env := waitForEnvelope(t, fc1, protocol.MsgSnapshot)
	snap := decodeSnapshot(t, env)
	for snap.Tick < 3 {
		snap = decodeSnapshot(t, waitForEnvelope(t, fc1, protocol.MsgSnapshot))
	}

	if err := m.EndMatch(matchID, "test over"); err != nil {
		t.Fatalf("end: %v", err)
	}

	var rec FinalRecord
	select {
	case rec = <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("no final record")
	}

	if rec.MatchID != matchID || rec.Reason != "test over" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Tick < snap.Tick {
		t.Fatalf("final tick %d behind observed tick %d", rec.Tick, snap.Tick)
	}
	if len(rec.Players) != 2 || rec.Players[0] != 1 || rec.Players[1] != 2 {
		t.Fatalf("players = %v, want [1 2] (Team1 first)", rec.Players)
	}

	// Members were told and the registry forgot the match.
	waitForEnvelope(t, fc1, protocol.MsgMatchEnd)
	if err := m.EndMatch(matchID, "again"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("second end err = %v", err)
	}
	if err := m.RouteInput("c1", []byte(`{}`)); !errors.Is(err, ErrUnknownConnection) {
		t.Fatalf("stale connection err = %v", err)
	}
}

func TestSlowConsumerLosesMessagesNotTheMatch(t *testing.T) {
	m := NewManager(roomTuning())
	results := make(chan FinalRecord, 1)
	m.OnResult = func(rec FinalRecord) { results <- rec }

	matchID, err := m.CreateMatch(1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	slow := newFakeConn(1) // fills after one message and is never drained
	if err := m.RegisterConnection("c1", 1, matchID, slow); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := m.StartMatch(matchID, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if err := m.EndMatch(matchID, "done"); err != nil {
		t.Fatalf("end: %v", err)
	}

	var rec FinalRecord
	select {
	case rec = <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("no final record")
	}
	if rec.Tick < 5 {
		t.Fatalf("loop stalled behind slow consumer: tick = %d", rec.Tick)
	}
	if atomic.LoadInt32(&slow.drops) == 0 {
		t.Fatal("expected dropped messages on the saturated connection")
	}
}

func TestRoomTicksWithUnsetSnapshotCadence(t *testing.T) {
	tun := roomTuning()
	tun.SnapshotEvery = 0 // as if game.snapshot_every were missing
	m := NewManager(tun)

	matchID, fc1, _ := setupTwoPlayerMatch(t, m)
	if err := m.StartMatch(matchID, 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	snap := decodeSnapshot(t, waitForEnvelope(t, fc1, protocol.MsgSnapshot))
	for snap.Tick < 2 {
		snap = decodeSnapshot(t, waitForEnvelope(t, fc1, protocol.MsgSnapshot))
	}
}

func TestIdleRoomSweptAndEnded(t *testing.T) {
	tun := roomTuning()
	tun.IdleTimeout = 20 * time.Millisecond
	m := NewManager(tun)
	results := make(chan FinalRecord, 1)
	m.OnResult = func(rec FinalRecord) { results <- rec }

	if _, err := m.CreateMatch(1); err != nil {
		t.Fatalf("create: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	m.Sweep()

	select {
	case rec := <-results:
		if rec.Reason != "idle" {
			t.Fatalf("reason = %q, want idle", rec.Reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("idle room was not ended")
	}
}
