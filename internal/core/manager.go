package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/MuhammedFaaik/f66/internal/physics"
	"github.com/MuhammedFaaik/f66/internal/protocol"
	"github.com/google/uuid"
)

type connInfo struct {
	playerID int64
	matchID  string
}

// Manager is the room registry and match lifecycle in one place: it maps
// matches to rooms, players to their single active match and connections
// to rooms, and it routes inbound messages to the right input queue.
type Manager struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	playerRoom map[int64]string
	conns      map[string]connInfo

	tun Tuning

	// OnResult is invoked once per ended match with the final record,
	// after the registry bookkeeping has been cleaned up.
	OnResult func(FinalRecord)
}

func NewManager(tun Tuning) *Manager {
	return &Manager{
		rooms:      make(map[string]*Room),
		playerRoom: make(map[int64]string),
		conns:      make(map[string]connInfo),
		tun:        tun.Normalize(),
	}
}

// CreateMatch allocates a Pending match with the creator in the first slot
// and spawns its room goroutine (the loop only ticks once Active).
func (m *Manager) CreateMatch(creatorID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if other, ok := m.playerRoom[creatorID]; ok {
		return "", fmt.Errorf("%w (match %s)", ErrAlreadyInRoom, other)
	}

	id := uuid.New().String()
	match := NewMatch(id, creatorID)
	match.AddPlayer(creatorID, m.tun.Field)

	room := newRoom(match, m.tun)
	room.OnResult = m.matchEnded
	m.rooms[id] = room
	m.playerRoom[creatorID] = id
	go room.Run()
	return id, nil
}

func (m *Manager) JoinMatch(matchID string, playerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[matchID]
	if !ok {
		return ErrMatchNotFound
	}
	if other, ok := m.playerRoom[playerID]; ok && other != matchID {
		return fmt.Errorf("%w (match %s)", ErrAlreadyInRoom, other)
	}
	if err := room.Join(playerID); err != nil {
		return err
	}
	m.playerRoom[playerID] = matchID
	return nil
}

func (m *Manager) StartMatch(matchID string, callerID int64) error {
	room, err := m.room(matchID)
	if err != nil {
		return err
	}
	return room.Start(callerID)
}

func (m *Manager) PauseMatch(matchID string) error {
	room, err := m.room(matchID)
	if err != nil {
		return err
	}
	return room.Pause()
}

func (m *Manager) ResumeMatch(matchID string) error {
	room, err := m.room(matchID)
	if err != nil {
		return err
	}
	return room.Resume()
}

// EndMatch stops the match's loop gracefully; persistence is triggered by
// the room once its final tick has completed.
func (m *Manager) EndMatch(matchID, reason string) error {
	room, err := m.room(matchID)
	if err != nil {
		return err
	}
	room.End(reason)
	return nil
}

// RegisterConnection binds a transport connection to a joined player's
// room. A player can only ever be attached through one active match.
func (m *Manager) RegisterConnection(connID string, playerID int64, matchID string, conn Conn) error {
	m.mu.Lock()
	room, ok := m.rooms[matchID]
	if !ok {
		m.mu.Unlock()
		return ErrMatchNotFound
	}
	if other, ok := m.playerRoom[playerID]; ok && other != matchID {
		m.mu.Unlock()
		return fmt.Errorf("%w (match %s)", ErrAlreadyInRoom, other)
	}
	m.conns[connID] = connInfo{playerID: playerID, matchID: matchID}
	m.mu.Unlock()

	if err := room.Attach(connID, playerID, conn); err != nil {
		m.mu.Lock()
		delete(m.conns, connID)
		m.mu.Unlock()
		return err
	}
	return nil
}

// RouteInput decodes raw transport bytes and enqueues the result into the
// connection's match. Malformed payloads never reach the simulation.
func (m *Manager) RouteInput(connID string, raw []byte) error {
	m.mu.RLock()
	info, ok := m.conns[connID]
	room := m.rooms[info.matchID]
	m.mu.RUnlock()
	if !ok {
		return ErrUnknownConnection
	}
	if room == nil {
		return ErrMatchNotFound
	}

	env, err := protocol.DecodeEnvelope(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	in, err := protocol.DecodeInput(env)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if in.MatchID != info.matchID {
		return fmt.Errorf("%w: input for foreign match %s", ErrMalformedInput, in.MatchID)
	}

	pi := PlayerInput{
		PlayerID: info.playerID,
		Seq:      in.Seq,
		Move:     vec(in.Move),
		Kick:     in.Kick,
		ClientTS: in.ClientTS,
	}
	if in.KickDir != nil {
		pi.KickDir = vec(*in.KickDir)
	}
	return room.Enqueue(pi)
}

// RemoveConnection detaches a connection from its room, if any.
func (m *Manager) RemoveConnection(connID string) {
	m.mu.Lock()
	info, ok := m.conns[connID]
	delete(m.conns, connID)
	room := m.rooms[info.matchID]
	m.mu.Unlock()
	if ok && room != nil {
		room.Detach(connID)
	}
}

// Broadcast delivers a raw message to every connection in a match's room.
func (m *Manager) Broadcast(matchID string, data []byte) error {
	room, err := m.room(matchID)
	if err != nil {
		return err
	}
	room.mu.Lock()
	room.broadcastLocked(data)
	room.mu.Unlock()
	return nil
}

func (m *Manager) room(matchID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return room, nil
}

// matchEnded is the rooms' OnResult: registry cleanup, then hand-off.
func (m *Manager) matchEnded(rec FinalRecord) {
	m.mu.Lock()
	delete(m.rooms, rec.MatchID)
	for _, pid := range rec.Players {
		if m.playerRoom[pid] == rec.MatchID {
			delete(m.playerRoom, pid)
		}
	}
	for cid, info := range m.conns {
		if info.matchID == rec.MatchID {
			delete(m.conns, cid)
		}
	}
	m.mu.Unlock()

	if m.OnResult != nil {
		m.OnResult(rec)
	}
}

// Sweep ends rooms that have sat with no connections past the idle timeout.
func (m *Manager) Sweep() {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	for _, r := range rooms {
		if r.IdleExpired(m.tun.IdleTimeout) {
			r.End("idle")
		}
	}
}

// StartCleanupTask runs the idle sweep periodically.
func (m *Manager) StartCleanupTask(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		m.Sweep()
	}
}

func vec(v protocol.Vec3) physics.Vector3 {
	return physics.Vector3{X: v[0], Y: v[1], Z: v[2]}
}
