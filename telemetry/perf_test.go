package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSnapshot)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseStages)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[PhaseSnapshot]; !ok {
		t.Error("expected snapshot phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseStages]; !ok {
		t.Error("expected stages phase to be tracked")
	}
	if stats.MinTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v > max %v", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseStages)
		pc.EndTick()
	}

	if pc.count != 5 {
		t.Errorf("window holds %d samples, want 5", pc.count)
	}
	if stats := pc.Stats(); stats.TicksPerSecond < 0 {
		t.Error("expected non-negative ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(500 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	s := PerfStats{
		AvgTickDuration: 2 * time.Millisecond,
		PhasePct:        map[string]float64{PhaseStages: 80, PhaseSnapshot: 10},
	}
	row := s.ToCSV(42)
	if row.WindowEnd != 42 || row.AvgTickUS != 2000 {
		t.Errorf("got %+v", row)
	}
	if row.StagesPct != 80 || row.SnapshotPct != 10 || row.WritebackPct != 0 {
		t.Errorf("phase percentages not mapped: %+v", row)
	}
}

func TestPerfCollector_AbortTickNotRecorded(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.StartTick()
	pc.StartPhase(PhaseSnapshot)
	pc.AbortTick()

	if pc.count != 0 {
		t.Fatalf("window holds %d samples after abort, want 0", pc.count)
	}

	pc.StartTick()
	pc.StartPhase(PhaseStages)
	pc.EndTick()

	stats := pc.Stats()
	if _, ok := stats.PhaseAvg[PhaseSnapshot]; ok {
		t.Error("aborted snapshot phase leaked into the next tick")
	}
	if pct := stats.PhasePct[PhaseStages]; pct > 100 {
		t.Errorf("stages pct = %v, want <= 100", pct)
	}
}

func TestPerfCollector_SteadyStateNoAllocs(t *testing.T) {
	pc := NewPerfCollector(4)
	tick := func() {
		pc.StartTick()
		pc.StartPhase(PhaseSnapshot)
		pc.StartPhase(PhaseStages)
		pc.StartPhase(PhaseWriteback)
		pc.EndTick()
	}
	for i := 0; i < 4; i++ {
		tick()
	}

	if allocs := testing.AllocsPerRun(100, tick); allocs != 0 {
		t.Errorf("tick allocates %v times, want 0", allocs)
	}
}

func TestPerfCollector_SamplesKeepOwnPhases(t *testing.T) {
	pc := NewPerfCollector(2)

	pc.StartTick()
	pc.StartPhase("first")
	pc.EndTick()

	pc.StartTick()
	pc.StartPhase("second")
	pc.EndTick()

	if _, ok := pc.samples[0].phases["first"]; !ok {
		t.Error("first sample lost its phase")
	}
	if _, ok := pc.samples[0].phases["second"]; ok {
		t.Error("first sample shares phases with the second")
	}
}
