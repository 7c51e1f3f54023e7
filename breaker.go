package qtensor

import (
	"errors"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

// ErrCircuitOpen is returned by a PoolExecutor whose pool keeps failing.
var ErrCircuitOpen = errors.New("circuit open: pool is failing")

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

/*
CircuitBreaker stops a PoolExecutor from queueing more work on a pool that
failed maxFailures times in a row. After resetTimeout it lets halfOpenMax
calls through; enough successes close it again, one failure reopens it.
Nothing is retried, a rejected call just fails fast.
*/
type CircuitBreaker struct {
	mu               sync.Mutex
	maxFailures      int
	resetTimeout     time.Duration
	halfOpenMax      int
	failureCount     int
	state            CircuitState
	openTime         time.Time
	halfOpenAttempts int
	halfOpenInFlight int
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, halfOpenMax int) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  max(1, maxFailures),
		resetTimeout: resetTimeout,
		halfOpenMax:  max(1, halfOpenMax),
	}
}

// RecordFailure records a failure and updates the circuit state
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++

	switch cb.state {
	case CircuitHalfOpen:
		cb.trip()
		errnie.Info("circuit breaker reopened from half-open state")
	case CircuitClosed:
		if cb.failureCount >= cb.maxFailures {
			cb.trip()
			errnie.Info("circuit breaker opened after %d failures", cb.failureCount)
		}
	}
}

// RecordSuccess records a successful attempt and updates the circuit state
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failureCount = 0
	case CircuitHalfOpen:
		cb.halfOpenAttempts++
		if cb.halfOpenAttempts >= cb.halfOpenMax {
			cb.state = CircuitClosed
			cb.failureCount = 0
			cb.halfOpenAttempts = 0
			cb.halfOpenInFlight = 0
			errnie.Info("circuit breaker closed from half-open")
		}
	}
}

// Allow determines if a request is allowed based on the circuit state
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.openTime) <= cb.resetTimeout {
			return false
		}
		cb.state = CircuitHalfOpen
		cb.halfOpenAttempts = 0
		cb.halfOpenInFlight = 1
		return true
	case CircuitHalfOpen:
		if cb.halfOpenInFlight >= cb.halfOpenMax {
			return false
		}
		cb.halfOpenInFlight++
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// trip must be called with mu held.
func (cb *CircuitBreaker) trip() {
	cb.state = CircuitOpen
	cb.openTime = time.Now()
	cb.halfOpenAttempts = 0
	cb.halfOpenInFlight = 0
}
