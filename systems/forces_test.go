package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func twoAgents(a, b r3.Vec) *Poses {
	p := NewPoses(2)
	p.Positions[0], p.Positions[1] = a, b
	p.Forwards[0], p.Forwards[1] = r3.Vec{Z: 1}, r3.Vec{Z: -1}
	p.Ups[0], p.Ups[1] = r3.Vec{Y: 1}, r3.Vec{Y: 1}
	return &p
}

// TestAlignmentOpposingPair checks two boids facing opposite ways each
// align to the other's heading.
func TestAlignmentOpposingPair(t *testing.T) {
	poses := twoAgents(r3.Vec{}, r3.Vec{X: 1})
	settings := InteractionSettings{Alignment: 1, AlignmentRadius: 10}
	steering := make([]r3.Vec, 2)
	f := NewBoidForces(settings, poses, steering)

	f.Compute(0, 2)

	for i, want := range []r3.Vec{{Z: -1}, {Z: 1}} {
		if got := f.Alignment(i); !vecNear(got, want) {
			t.Errorf("Alignment(%d) = %v, want %v", i, got, want)
		}
		if !vecNear(steering[i], want) {
			t.Errorf("steering[%d] = %v, want %v", i, steering[i], want)
		}
	}
}

// TestSeparationSymmetric checks a pair pushes apart equally.
func TestSeparationSymmetric(t *testing.T) {
	poses := twoAgents(r3.Vec{}, r3.Vec{X: 1})
	f := NewBoidForces(InteractionSettings{Separation: 2, SeparationRadius: 1.5}, poses, make([]r3.Vec, 2))

	s0, s1 := f.Separation(0), f.Separation(1)
	if !vecNear(s0, r3.Vec{X: -2}) {
		t.Errorf("Separation(0) = %v, want (-2, 0, 0)", s0)
	}
	if !vecNear(r3.Add(s0, s1), r3.Vec{}) {
		t.Errorf("Separation not symmetric: %v vs %v", s0, s1)
	}
}

// TestRadiusIsExclusive checks neighbours exactly at the radius are ignored.
func TestRadiusIsExclusive(t *testing.T) {
	poses := twoAgents(r3.Vec{}, r3.Vec{X: 1})
	f := NewBoidForces(InteractionSettings{
		Separation: 1, SeparationRadius: 1,
		Alignment: 1, AlignmentRadius: 1,
	}, poses, make([]r3.Vec, 2))

	if got := f.Separation(0); got != (r3.Vec{}) {
		t.Errorf("Separation at radius = %v, want zero", got)
	}
	if got := f.Alignment(0); got != (r3.Vec{}) {
		t.Errorf("Alignment at radius = %v, want zero", got)
	}
}

func TestCohesion(t *testing.T) {
	tests := []struct {
		name   string
		poses  *Poses
		radius float64
		want   r3.Vec
	}{
		{
			name:   "pair pulls to midpoint",
			poses:  twoAgents(r3.Vec{}, r3.Vec{X: 2}),
			radius: 5,
			want:   r3.Vec{X: 1},
		},
		{
			name:   "isolated agent averages itself",
			poses:  twoAgents(r3.Vec{}, r3.Vec{X: 20}),
			radius: 5,
			want:   r3.Vec{},
		},
		{
			name:   "zero radius counts nobody",
			poses:  twoAgents(r3.Vec{}, r3.Vec{X: 2}),
			radius: 0,
			want:   r3.Vec{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewBoidForces(InteractionSettings{Cohesion: 1, CohesionRadius: tt.radius}, tt.poses, make([]r3.Vec, 2))
			if got := f.Cohesion(0); !vecNear(got, tt.want) {
				t.Errorf("Cohesion(0) = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestResultantIsUnitOrZero checks the combined rule output is normalized.
func TestResultantIsUnitOrZero(t *testing.T) {
	poses := twoAgents(r3.Vec{}, r3.Vec{X: 1, Y: 1})
	settings := InteractionSettings{
		Separation: 1, SeparationRadius: 3,
		Alignment: 0.5, AlignmentRadius: 3,
		Cohesion: 2, CohesionRadius: 3,
	}
	steering := make([]r3.Vec, 2)
	NewBoidForces(settings, poses, steering).Compute(0, 2)

	for i, s := range steering {
		if n := r3.Norm(s); s != (r3.Vec{}) && (n < 1-tol || n > 1+tol) {
			t.Errorf("|steering[%d]| = %v, want 1 or 0", i, n)
		}
	}
}
