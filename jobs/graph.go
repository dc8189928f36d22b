package jobs

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateStage is returned when two stages share a name.
	ErrDuplicateStage = errors.New("duplicate stage")
	// ErrUnknownDependency is returned when a stage depends on a stage that
	// is not declared before it.
	ErrUnknownDependency = errors.New("unknown dependency")
	// ErrWriteConflict is returned when two stages that may run concurrently
	// touch the same buffer and at least one of them writes it.
	ErrWriteConflict = errors.New("write conflict")
	// ErrNoRun is returned for a stage without a Run function.
	ErrNoRun = errors.New("stage has no run function")
)

// Stage is one node of a tick's dependency graph. Reads and Writes name
// the buffers the stage touches; After names the stages whose output it
// consumes.
type Stage struct {
	Name   string
	Reads  []string
	Writes []string
	After  []string

	// Run schedules the stage's work behind dep and returns its handle. The
	// returned handle must not complete before dep does.
	Run func(p *Pool, dep *Handle) *Handle
}

// Graph is a validated, immutable set of stages. Executing it never runs two
// stages concurrently when either writes a buffer the other uses.
type Graph struct {
	stages []Stage
	deps   [][]int

	handles []*Handle
	scratch []*Handle
}

// NewGraph validates the stages and builds a graph. Stages must be listed
// after everything they depend on.
func NewGraph(stages ...Stage) (*Graph, error) {
	index := make(map[string]int, len(stages))
	deps := make([][]int, len(stages))
	ancestors := make([]map[int]bool, len(stages))

	for i, st := range stages {
		if _, dup := index[st.Name]; dup {
			return nil, fmt.Errorf("stage %q: %w", st.Name, ErrDuplicateStage)
		}
		if st.Run == nil {
			return nil, fmt.Errorf("stage %q: %w", st.Name, ErrNoRun)
		}

		ancestors[i] = make(map[int]bool)
		for _, name := range st.After {
			j, ok := index[name]
			if !ok {
				return nil, fmt.Errorf("stage %q after %q: %w", st.Name, name, ErrUnknownDependency)
			}
			deps[i] = append(deps[i], j)
			ancestors[i][j] = true
			for a := range ancestors[j] {
				ancestors[i][a] = true
			}
		}
		index[st.Name] = i
	}

	for i := range stages {
		for j := 0; j < i; j++ {
			if ancestors[i][j] {
				continue
			}
			if buf, ok := conflict(stages[i], stages[j]); ok {
				return nil, fmt.Errorf("stages %q and %q on buffer %q: %w",
					stages[j].Name, stages[i].Name, buf, ErrWriteConflict)
			}
		}
	}

	return &Graph{
		stages:  stages,
		deps:    deps,
		handles: make([]*Handle, len(stages)),
		scratch: make([]*Handle, 0, len(stages)),
	}, nil
}

// conflict reports a buffer that one unordered stage writes while the other
// reads or writes it.
func conflict(a, b Stage) (string, bool) {
	for _, w := range a.Writes {
		if contains(b.Writes, w) || contains(b.Reads, w) {
			return w, true
		}
	}
	for _, w := range b.Writes {
		if contains(a.Reads, w) {
			return w, true
		}
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Names returns the stage names in declaration order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.stages))
	for i, st := range g.stages {
		names[i] = st.Name
	}
	return names
}

// Execute schedules every stage behind its dependencies and returns a
// handle that completes once all of them have. Execute and Complete on the
// returned handle must finish before Execute is called again.
func (g *Graph) Execute(p *Pool) *Handle {
	for i, st := range g.stages {
		g.scratch = g.scratch[:0]
		for _, j := range g.deps[i] {
			g.scratch = append(g.scratch, g.handles[j])
		}
		g.handles[i] = st.Run(p, Combine(g.scratch...))
	}
	return Combine(g.handles...)
}
