package core

import (
	"time"

	"github.com/MuhammedFaaik/f66/internal/physics"
)

type Phase int32

const (
	PhasePending Phase = iota
	PhaseActive
	PhasePaused
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseActive:
		return "active"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// PlayerState is mutated only by the match's simulation loop.
type PlayerState struct {
	ID      int64
	Team    physics.Team
	Pos     physics.Vector3
	Vel     physics.Vector3
	LastSeq int64 // highest applied input sequence number
}

// BallState is the single ball of a match. Possessor is 0 when nobody
// controls the ball.
type BallState struct {
	Pos       physics.Vector3
	Vel       physics.Vector3
	Possessor int64
}

// Match is the authoritative state of one match. It is owned by exactly
// one room; nothing else mutates it while the room is alive.
type Match struct {
	ID        string
	Phase     Phase
	Players   map[int64]*PlayerState
	Ball      BallState
	Score     [2]int
	Tick      int64
	CreatorID int64
	CreatedAt time.Time
}

func NewMatch(id string, creatorID int64) *Match {
	return &Match{
		ID:        id,
		Phase:     PhasePending,
		Players:   make(map[int64]*PlayerState),
		CreatorID: creatorID,
		CreatedAt: time.Now(),
	}
}

// AddPlayer reserves a slot. The first player takes Team1 and kicks off on
// the -Y half, the second Team2 on the +Y half.
func (m *Match) AddPlayer(playerID int64, f physics.Field) error {
	if m.Phase == PhaseEnded {
		return ErrMatchEnded
	}
	if _, ok := m.Players[playerID]; ok {
		return nil // rejoin of a reserved slot
	}
	if len(m.Players) >= 2 {
		return ErrMatchFull
	}

	team := physics.Team1
	spawnY := -f.HalfLength / 2
	if len(m.Players) == 1 {
		team = physics.Team2
		spawnY = f.HalfLength / 2
	}
	m.Players[playerID] = &PlayerState{
		ID:   playerID,
		Team: team,
		Pos:  physics.Vector3{Y: spawnY},
	}
	return nil
}

// Winner returns the id of the leading player, or 0 on a draw.
func (m *Match) Winner() int64 {
	if m.Score[0] == m.Score[1] {
		return 0
	}
	lead := physics.Team1
	if m.Score[1] > m.Score[0] {
		lead = physics.Team2
	}
	for _, p := range m.Players {
		if p.Team == lead {
			return p.ID
		}
	}
	return 0
}

// FinalRecord is the shape handed to the persistence side when a match
// ends. Players is ordered Team1 first, matching the score pair.
type FinalRecord struct {
	MatchID   string  `json:"match_id"`
	Players   []int64 `json:"players"`
	Score     [2]int  `json:"score"`
	Winner    int64   `json:"winner"`
	Tick      int64   `json:"tick"`
	Duration  float64 `json:"duration"` // seconds
	Reason    string  `json:"reason"`
	Timestamp int64   `json:"timestamp"`
}
