package protocol

import "encoding/json"

// Message types carried in the envelope.
const (
	MsgInput    = "input"
	MsgSnapshot = "snapshot"
	MsgDelta    = "delta"
	MsgGoal     = "goal"
	MsgMatchEnd = "match_end"
	MsgError    = "error"
)

// Envelope frames every websocket message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Vec3 is the wire form of a vector: [x, y, z].
type Vec3 [3]float64

// InputMsg is the only inbound payload once a connection is established.
type InputMsg struct {
	MatchID  string `json:"match_id"`
	Seq      int64  `json:"seq"`
	Move     Vec3   `json:"move"`
	Kick     bool   `json:"kick"`
	KickDir  *Vec3  `json:"kick_dir,omitempty"`
	ClientTS int64  `json:"ts,omitempty"`
}

type PlayerSnapshot struct {
	ID  int64 `json:"uid"`
	Pos Vec3  `json:"pos"`
	Vel Vec3  `json:"vel"`
}

type BallSnapshot struct {
	Pos       Vec3  `json:"pos"`
	Vel       Vec3  `json:"vel"`
	Possessor int64 `json:"possessor,omitempty"`
}

// SnapshotMsg is the periodic full state; lagging clients resync from it.
type SnapshotMsg struct {
	MatchID string           `json:"match_id"`
	Tick    int64            `json:"tick"`
	Players []PlayerSnapshot `json:"players"`
	Ball    BallSnapshot     `json:"ball"`
	Score   [2]int           `json:"score"`
}

// DeltaMsg carries only what changed since the previous tick.
type DeltaMsg struct {
	MatchID string           `json:"match_id"`
	Tick    int64            `json:"tick"`
	Players []PlayerSnapshot `json:"players,omitempty"`
	Ball    *BallSnapshot    `json:"ball,omitempty"`
	Score   *[2]int          `json:"score,omitempty"`
}

type GoalMsg struct {
	MatchID string `json:"match_id"`
	Team    int    `json:"team"`
	Score   [2]int `json:"score"`
}

type MatchEndMsg struct {
	MatchID string `json:"match_id"`
	Score   [2]int `json:"score"`
	Winner  int64  `json:"winner,omitempty"`
	Reason  string `json:"reason"`
}

type ErrorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
