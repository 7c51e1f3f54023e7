package qtensor

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultMinChunk is the smallest span handed to a parallel backend.
const DefaultMinChunk = 4096

/*
Executor runs fn over contiguous spans that together cover [0, n) exactly
once. ParallelFor returns only after every span has finished, so callers can
rely on it as a barrier between passes. fn must only write to positions inside
its own span.
*/
type Executor interface {
	ParallelFor(n int, fn func(lo, hi int)) error
}

// SerialExecutor runs the whole range on the calling goroutine.
type SerialExecutor struct{}

func (SerialExecutor) ParallelFor(n int, fn func(lo, hi int)) error {
	if n > 0 {
		fn(0, n)
	}
	return nil
}

/*
GroupExecutor fans spans out over goroutines with an errgroup, running at
most Workers of them at once.
*/
type GroupExecutor struct {
	workers  int
	minChunk int
}

// NewGroupExecutor falls back to GOMAXPROCS workers and DefaultMinChunk for
// non-positive arguments.
func NewGroupExecutor(workers, minChunk int) *GroupExecutor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if minChunk <= 0 {
		minChunk = DefaultMinChunk
	}
	return &GroupExecutor{workers: workers, minChunk: minChunk}
}

func (ge *GroupExecutor) ParallelFor(n int, fn func(lo, hi int)) error {
	spans := split(n, ge.workers, ge.minChunk)
	if len(spans) == 1 {
		fn(spans[0].lo, spans[0].hi)
		return nil
	}

	var g errgroup.Group
	g.SetLimit(ge.workers)

	for _, s := range spans {
		g.Go(func() error {
			fn(s.lo, s.hi)
			return nil
		})
	}

	return g.Wait()
}

type span struct {
	lo, hi int
}

// split cuts [0, n) into at most parts spans of at least minChunk elements
// (the last one may be shorter).
func split(n, parts, minChunk int) []span {
	if n <= 0 {
		return nil
	}

	parts = max(1, min(parts, (n+minChunk-1)/minChunk))
	size := (n + parts - 1) / parts

	spans := make([]span, 0, parts)
	for lo := 0; lo < n; lo += size {
		spans = append(spans, span{lo: lo, hi: min(lo+size, n)})
	}

	return spans
}
