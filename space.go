package qtensor

import (
	"sync"
	"time"
)

// QuantumValue wraps a job result with metadata
type QuantumValue struct {
	Value     any
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

/*
QuantumSpace hands job results to whoever awaits them. A result stored before
anyone awaits it is kept until its TTL runs out or the first Await claims it.
*/
type QuantumSpace struct {
	mu      sync.Mutex
	values  map[string]QuantumValue
	waiting map[string][]chan QuantumValue
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func newQuantumSpace(cleanupInterval time.Duration) *QuantumSpace {
	qs := &QuantumSpace{
		values:  make(map[string]QuantumValue),
		waiting: make(map[string][]chan QuantumValue),
		done:    make(chan struct{}),
	}

	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	qs.wg.Add(1)
	go func() {
		defer qs.wg.Done()
		qs.cleanup(cleanupInterval)
	}()

	return qs
}

// Store delivers a value to every waiter, or keeps it when nobody is waiting
func (qs *QuantumSpace) Store(id string, value any, err error, ttl time.Duration) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	qv := QuantumValue{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}

	channels, ok := qs.waiting[id]
	if !ok {
		qs.values[id] = qv
		return
	}

	// Await channels are buffered with room for exactly one value.
	for _, ch := range channels {
		ch <- qv
		close(ch)
	}
	delete(qs.waiting, id)
}

// Await returns a channel that will receive the value when it's available
func (qs *QuantumSpace) Await(id string) chan QuantumValue {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	ch := make(chan QuantumValue, 1)

	if qv, ok := qs.values[id]; ok {
		delete(qs.values, id)
		ch <- qv
		close(ch)
		return ch
	}

	qs.waiting[id] = append(qs.waiting[id], ch)
	return ch
}

// Pending reports how many results are stored but not yet claimed.
func (qs *QuantumSpace) Pending() int {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	return len(qs.values)
}

func (qs *QuantumSpace) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-qs.done:
			return
		case <-ticker.C:
			qs.mu.Lock()
			qs.cleanupExpiredValues()
			qs.mu.Unlock()
		}
	}
}

func (qs *QuantumSpace) cleanupExpiredValues() {
	now := time.Now()
	for id, qv := range qs.values {
		if qv.TTL > 0 && now.Sub(qv.CreatedAt) > qv.TTL {
			delete(qs.values, id)
		}
	}
}

// Close stops the cleanup goroutine. Stored values stay claimable.
func (qs *QuantumSpace) Close() {
	qs.once.Do(func() {
		close(qs.done)
	})
	qs.wg.Wait()
}
