package core

import "github.com/MuhammedFaaik/f66/internal/physics"

// PlayerInput is one decoded client command. It is queued by a connection
// handler and consumed by the simulation loop at most once: inputs whose
// sequence number is not above the player's last applied one are discarded.
type PlayerInput struct {
	PlayerID int64
	Seq      int64
	Move     physics.Vector3
	Kick     bool
	KickDir  physics.Vector3
	ClientTS int64
}
