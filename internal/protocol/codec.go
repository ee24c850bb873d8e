package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrMalformed marks inbound bytes that fail framing or validation.
var ErrMalformed = errors.New("malformed message")

func Encode(msgType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Data: data})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env, nil
}

// DecodeInput validates an inbound input payload. Non-finite vector
// components are rejected here so they never reach the simulation.
func DecodeInput(env Envelope) (InputMsg, error) {
	if env.Type != MsgInput {
		return InputMsg{}, fmt.Errorf("%w: unexpected type %q", ErrMalformed, env.Type)
	}
	var in InputMsg
	if err := json.Unmarshal(env.Data, &in); err != nil {
		return InputMsg{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if in.MatchID == "" {
		return InputMsg{}, fmt.Errorf("%w: missing match_id", ErrMalformed)
	}
	if in.Seq < 0 {
		return InputMsg{}, fmt.Errorf("%w: negative seq", ErrMalformed)
	}
	if !finite(in.Move) {
		return InputMsg{}, fmt.Errorf("%w: non-finite move vector", ErrMalformed)
	}
	if in.Kick {
		if in.KickDir == nil {
			return InputMsg{}, fmt.Errorf("%w: kick without direction", ErrMalformed)
		}
		if !finite(*in.KickDir) {
			return InputMsg{}, fmt.Errorf("%w: non-finite kick vector", ErrMalformed)
		}
	}
	return in, nil
}

func finite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
