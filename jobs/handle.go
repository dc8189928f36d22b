// Package jobs runs data-parallel work on a fixed worker pool and joins it
// through completion handles.
package jobs

// Handle completes once the work it was returned for has finished. A nil
// Handle is already complete.
type Handle struct {
	done chan struct{}
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// completed is shared by every dependency-free join.
var completed = func() *Handle {
	h := newHandle()
	close(h.done)
	return h
}()

// Completed returns a handle that is already complete.
func Completed() *Handle {
	return completed
}

// Complete blocks until the handle's work has finished.
func (h *Handle) Complete() {
	if h == nil {
		return
	}
	<-h.done
}

// Done returns a channel closed when the handle completes.
func (h *Handle) Done() <-chan struct{} {
	if h == nil {
		return completed.done
	}
	return h.done
}

// IsCompleted reports whether the handle has completed without blocking.
func (h *Handle) IsCompleted() bool {
	if h == nil {
		return true
	}
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Combine returns a handle that completes after all of hs have completed.
func Combine(hs ...*Handle) *Handle {
	var pending []*Handle
	for _, h := range hs {
		if !h.IsCompleted() {
			pending = append(pending, h)
		}
	}

	switch len(pending) {
	case 0:
		return completed
	case 1:
		return pending[0]
	}

	joined := newHandle()
	go func() {
		for _, h := range pending {
			<-h.done
		}
		close(joined.done)
	}()
	return joined
}
