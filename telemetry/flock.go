package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/systems"
)

// FlockStats summarizes the population's poses at the end of a window.
type FlockStats struct {
	WindowEnd int32 `csv:"window_end"`
	Agents    int   `csv:"agents"`

	// Polarization is the length of the mean forward vector: 1 when every
	// agent faces the same way, near 0 when headings are disordered.
	Polarization float64 `csv:"polarization"`

	CentroidX float64 `csv:"centroid_x"`
	CentroidY float64 `csv:"centroid_y"`
	CentroidZ float64 `csv:"centroid_z"`

	// Distance from each agent to the centroid
	SpreadMean float64 `csv:"spread_mean"`
	SpreadStd  float64 `csv:"spread_std"`

	// Distance from each agent to its nearest neighbour
	NearestMean float64 `csv:"nearest_mean"`
	NearestStd  float64 `csv:"nearest_std"`

	// Fraction of agents whose downward probe hit ground (crowd only)
	Grounded float64 `csv:"grounded"`
}

// ComputeFlockStats computes FlockStats from poses. ground holds the
// downward probe results for crowd agents and is nil for boids. A nil poses
// yields zero stats.
func ComputeFlockStats(poses *systems.Poses, ground []components.ProbeResult) FlockStats {
	if poses == nil {
		return FlockStats{}
	}
	n := poses.Len()
	s := FlockStats{Agents: n}
	if n == 0 {
		return s
	}

	var heading, centroid r3.Vec
	for i := 0; i < n; i++ {
		heading = r3.Add(heading, poses.Forwards[i])
		centroid = r3.Add(centroid, poses.Positions[i])
	}
	inv := 1 / float64(n)
	s.Polarization = r3.Norm(r3.Scale(inv, heading))
	centroid = r3.Scale(inv, centroid)
	s.CentroidX, s.CentroidY, s.CentroidZ = centroid.X, centroid.Y, centroid.Z

	spread := make([]float64, n)
	for i, p := range poses.Positions {
		spread[i] = r3.Norm(r3.Sub(p, centroid))
	}
	s.SpreadMean, s.SpreadStd = meanStd(spread)

	if n > 1 {
		nearest := make([]float64, n)
		for i, p := range poses.Positions {
			best := math.Inf(1)
			for j, q := range poses.Positions {
				if i == j {
					continue
				}
				if d := r3.Norm(r3.Sub(p, q)); d < best {
					best = d
				}
			}
			nearest[i] = best
		}
		s.NearestMean, s.NearestStd = meanStd(nearest)
	}

	if len(ground) > 0 {
		hits := 0
		for _, g := range ground {
			if g.Hit() {
				hits++
			}
		}
		s.Grounded = float64(hits) / float64(len(ground))
	}
	return s
}

func meanStd(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s FlockStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("agents", s.Agents),
		slog.Float64("polarization", s.Polarization),
		slog.Float64("spread_mean", s.SpreadMean),
		slog.Float64("nearest_mean", s.NearestMean),
		slog.Float64("grounded", s.Grounded),
	)
}
