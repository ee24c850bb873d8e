package physics

import (
	"math"
	"testing"
)

func TestIntegrateEulerStep(t *testing.T) {
	pos := Integrate(Vector3{}, Vector3{0, 10, 0}, 1.0)
	if pos != (Vector3{0, 10, 0}) {
		t.Fatalf("Integrate = %v, want (0,10,0)", pos)
	}

	pos = Integrate(Vector3{1, 1, 1}, Vector3{3, 0, -3}, 0.5)
	if pos != (Vector3{2.5, 1, -0.5}) {
		t.Fatalf("Integrate = %v", pos)
	}
}

func TestApplyFrictionDecaysTowardZero(t *testing.T) {
	vel := Vector3{10, -4, 2}
	for i := 0; i < 200; i++ {
		next := ApplyFriction(vel, 0.8, 1.0/30)

		// Never reverses direction.
		if next.X*vel.X < 0 || next.Y*vel.Y < 0 || next.Z*vel.Z < 0 {
			t.Fatalf("friction reversed direction: %v -> %v", vel, next)
		}
		// Strictly shrinking.
		if next.Length() >= vel.Length() {
			t.Fatalf("friction did not decay: %v -> %v", vel, next)
		}
		vel = next
	}
	if vel.Length() > 0.1 {
		t.Fatalf("velocity did not approach zero: %v", vel)
	}
}

func TestApplyFrictionZeroCoefficient(t *testing.T) {
	vel := Vector3{0, 10, 0}
	if got := ApplyFriction(vel, 0, 1.0); got != vel {
		t.Fatalf("zero friction changed velocity: %v", got)
	}
}

func TestApplyFrictionNeverOvershoots(t *testing.T) {
	// Even a huge coefficient only scales toward zero.
	got := ApplyFriction(Vector3{5, 0, 0}, 100, 1.0)
	if got.X < 0 || math.IsNaN(got.X) {
		t.Fatalf("friction overshot zero: %v", got)
	}
}
