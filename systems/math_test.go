package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func vecNear(a, b r3.Vec) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// TestSafeNormalize verifies unit output or exact zero, never NaN.
func TestSafeNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   r3.Vec
		want r3.Vec
	}{
		{"zero", r3.Vec{}, r3.Vec{}},
		{"below epsilon", r3.Vec{X: 1e-10}, r3.Vec{}},
		{"axis", r3.Vec{Y: 3}, r3.Vec{Y: 1}},
		{"diagonal", r3.Vec{X: 3, Z: 4}, r3.Vec{X: 0.6, Z: 0.8}},
		{"infinite", r3.Vec{X: math.Inf(1)}, r3.Vec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeNormalize(tt.in)
			if !vecNear(got, tt.want) {
				t.Errorf("SafeNormalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestSafeNormalizeUnitOrZero sweeps magnitudes across many decades.
func TestSafeNormalizeUnitOrZero(t *testing.T) {
	for exp := -20; exp <= 20; exp++ {
		v := r3.Vec{X: math.Pow(10, float64(exp)), Y: -2 * math.Pow(10, float64(exp)), Z: 0.5}
		got := SafeNormalize(v)
		n := r3.Norm(got)
		if got != (r3.Vec{}) && math.Abs(n-1) > 1e-12 {
			t.Errorf("exp %d: |SafeNormalize| = %v, want 1 or zero vector", exp, n)
		}
		if math.IsNaN(n) {
			t.Errorf("exp %d: NaN result", exp)
		}
	}
}

// TestProjectOnPlane verifies the normal component is removed.
func TestProjectOnPlane(t *testing.T) {
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	n := r3.Vec{Y: 2}

	got := ProjectOnPlane(v, n)
	if !vecNear(got, r3.Vec{X: 1, Z: 3}) {
		t.Errorf("ProjectOnPlane = %v, want (1, 0, 3)", got)
	}
	if d := r3.Dot(got, n); math.Abs(d) > tol {
		t.Errorf("projection not orthogonal to normal: dot = %v", d)
	}
	if again := ProjectOnPlane(got, n); !vecNear(again, got) {
		t.Errorf("projection not idempotent: %v then %v", got, again)
	}
}

// TestProjectOnDegeneratePlane verifies tiny normals leave v unchanged.
func TestProjectOnDegeneratePlane(t *testing.T) {
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	for _, n := range []r3.Vec{{}, {Y: 1e-30}} {
		if got := ProjectOnPlane(v, n); got != v {
			t.Errorf("ProjectOnPlane(v, %v) = %v, want %v", n, got, v)
		}
	}
}

// TestLookRotation verifies the basis is orthonormal and faces forward.
func TestLookRotation(t *testing.T) {
	tests := []struct {
		name    string
		forward r3.Vec
		up      r3.Vec
		wantUp  r3.Vec
	}{
		{"forward z up y", r3.Vec{Z: 2}, r3.Vec{Y: 1}, r3.Vec{Y: 1}},
		{"forward x up z", r3.Vec{X: 1}, r3.Vec{Z: 1}, r3.Vec{Z: 1}},
		{"tilted up", r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1}, r3.Vec{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ok := LookRotation(tt.forward, tt.up)
			if !ok {
				t.Fatal("LookRotation failed")
			}
			if !vecNear(o.Forward, r3.Unit(tt.forward)) {
				t.Errorf("Forward = %v, want %v", o.Forward, r3.Unit(tt.forward))
			}
			if !vecNear(o.Up, tt.wantUp) {
				t.Errorf("Up = %v, want %v", o.Up, tt.wantUp)
			}
		})
	}
}

// TestLookRotationParallelUp verifies a valid basis when up is collinear.
func TestLookRotationParallelUp(t *testing.T) {
	o, ok := LookRotation(r3.Vec{Y: 1}, r3.Vec{Y: 1})
	if !ok {
		t.Fatal("LookRotation failed")
	}
	if math.Abs(r3.Norm(o.Up)-1) > tol {
		t.Errorf("|Up| = %v, want 1", r3.Norm(o.Up))
	}
	if d := r3.Dot(o.Up, o.Forward); math.Abs(d) > tol {
		t.Errorf("Up not orthogonal to Forward: dot = %v", d)
	}
}

// TestLookRotationDegenerate verifies a zero forward is rejected.
func TestLookRotationDegenerate(t *testing.T) {
	if _, ok := LookRotation(r3.Vec{}, r3.Vec{Y: 1}); ok {
		t.Error("LookRotation accepted a zero forward")
	}
}
