package components

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestProbeResultHit(t *testing.T) {
	tests := []struct {
		name string
		r    ProbeResult
		want bool
	}{
		{"no hit", NoHit, false},
		{"zero distance with stale normal", ProbeResult{Normal: r3.Vec{Y: 1}, Point: r3.Vec{X: 3}}, false},
		{"hit", ProbeResult{Distance: 0.25, Normal: r3.Vec{Y: 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Hit(); got != tt.want {
				t.Errorf("Hit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if KindBoid.String() != "boid" || KindCrowd.String() != "crowd" || Kind(9).String() != "unknown" {
		t.Errorf("unexpected kind names: %s %s %s", KindBoid, KindCrowd, Kind(9))
	}
}
