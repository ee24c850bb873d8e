package physics

import "math"

// Team indexes into a match score pair. TeamNone means "no team".
type Team int

const (
	TeamNone Team = iota
	Team1
	Team2
)

// Field describes the playable area. X spans [-HalfWidth, HalfWidth],
// Y spans [-HalfLength, HalfLength]. The goal mouths sit on the Y end
// lines, |X| < GoalHalfWidth, and extend GoalDepth behind them.
type Field struct {
	HalfWidth     float64
	HalfLength    float64
	GoalHalfWidth float64
	GoalDepth     float64
}

// InGoalMouth reports whether an x coordinate lies inside the goal opening.
func (f Field) InGoalMouth(x float64) bool {
	return math.Abs(x) < f.GoalHalfWidth
}

// ClampToBounds hard-clamps a position to the field rectangle. Used for
// players, who never enter the goal zone.
func ClampToBounds(pos Vector3, f Field) Vector3 {
	pos.X = clamp(pos.X, -f.HalfWidth, f.HalfWidth)
	pos.Y = clamp(pos.Y, -f.HalfLength, f.HalfLength)
	if pos.Z < 0 {
		pos.Z = 0
	}
	return pos
}

// ReflectBounds bounces a moving body off the field edges and returns the
// corrected position and velocity. The goal mouths are exempt from the end
// line bounce so the ball can cross into the goal zone; the back of the net
// stops it dead.
func ReflectBounds(pos, vel Vector3, f Field) (Vector3, Vector3) {
	if pos.X > f.HalfWidth {
		pos.X = 2*f.HalfWidth - pos.X
		vel.X = -vel.X
	} else if pos.X < -f.HalfWidth {
		pos.X = -2*f.HalfWidth - pos.X
		vel.X = -vel.X
	}

	if f.InGoalMouth(pos.X) {
		limit := f.HalfLength + f.GoalDepth
		if pos.Y > limit {
			pos.Y = limit
			vel = Vector3{}
		} else if pos.Y < -limit {
			pos.Y = -limit
			vel = Vector3{}
		}
	} else {
		if pos.Y > f.HalfLength {
			pos.Y = 2*f.HalfLength - pos.Y
			vel.Y = -vel.Y
		} else if pos.Y < -f.HalfLength {
			pos.Y = -2*f.HalfLength - pos.Y
			vel.Y = -vel.Y
		}
	}

	if pos.Z < 0 {
		pos.Z = -pos.Z
		vel.Z = -vel.Z
	}

	// A body faster than a field length per step would overshoot a single
	// reflection; settle it on the boundary instead of looping.
	pos.X = clamp(pos.X, -f.HalfWidth, f.HalfWidth)
	pos.Y = clamp(pos.Y, -(f.HalfLength+f.GoalDepth), f.HalfLength+f.GoalDepth)

	return pos, vel
}

// DetectGoal reports which team scored for a ball position, or TeamNone.
// Crossing the +Y end line scores for Team2, the -Y end line for Team1.
func DetectGoal(pos Vector3, f Field) Team {
	if !f.InGoalMouth(pos.X) {
		return TeamNone
	}
	if pos.Y > f.HalfLength {
		return Team2
	}
	if pos.Y < -f.HalfLength {
		return Team1
	}
	return TeamNone
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
