package qtensor

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

/*
PoolExecutor schedules every span as a Job on a Q and waits for all of them.
The pool is borrowed: closing it is up to the caller. A breaker makes calls
fail fast with ErrCircuitOpen once the pool keeps failing.
*/
type PoolExecutor struct {
	pool     *Q
	parts    int
	minChunk int
	breaker  *CircuitBreaker
}

// NewPoolExecutor splits work into at most parts spans of at least minChunk elements.
func NewPoolExecutor(pool *Q, parts, minChunk int) *PoolExecutor {
	if parts <= 0 {
		parts = 1
	}
	if minChunk <= 0 {
		minChunk = DefaultMinChunk
	}
	return &PoolExecutor{
		pool:     pool,
		parts:    parts,
		minChunk: minChunk,
		breaker:  NewCircuitBreaker(3, time.Second, 1),
	}
}

func (pe *PoolExecutor) ParallelFor(n int, fn func(lo, hi int)) error {
	if !pe.breaker.Allow() {
		return ErrCircuitOpen
	}

	err := pe.run(n, fn)

	// A closed pool is final, a panicking span is the caller's bug. Neither
	// says anything about pool health.
	var panicked *PanicError
	switch {
	case errors.Is(err, ErrPoolClosed):
	case err == nil, errors.As(err, &panicked):
		pe.breaker.RecordSuccess()
	default:
		pe.breaker.RecordFailure()
	}

	return err
}

func (pe *PoolExecutor) run(n int, fn func(lo, hi int)) error {
	spans := split(n, pe.parts, pe.minChunk)
	results := make([]chan QuantumValue, len(spans))

	for i, s := range spans {
		results[i] = pe.pool.Schedule(uuid.NewString(), func() (any, error) {
			fn(s.lo, s.hi)
			return nil, nil
		})
	}

	// Every span has to settle before returning, even after a failure or a
	// Close, since the spans write into buffers the caller owns. Schedule
	// guarantees each channel gets a value.
	var first error
	for i, ch := range results {
		if value := <-ch; value.Error != nil && first == nil {
			first = fmt.Errorf("span [%d, %d): %w", spans[i].lo, spans[i].hi, value.Error)
		}
	}

	return first
}
