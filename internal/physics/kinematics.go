package physics

import "math"

// Integrate advances a position by one Euler step.
func Integrate(pos, vel Vector3, dt float64) Vector3 {
	return pos.Add(vel.Scale(dt))
}

// ApplyFriction decays velocity exponentially toward zero. The decay factor
// is always in (0, 1], so the velocity never reverses direction.
func ApplyFriction(vel Vector3, coeff, dt float64) Vector3 {
	return vel.Scale(math.Exp(-coeff * dt))
}
