package qtensor

import (
	"math"
	"time"

	"github.com/theapemachine/errnie"
)

// ScalerConfig tunes when the pool grows
type ScalerConfig struct {
	TargetLoad       float64 // queued jobs per worker to aim for
	ScaleUpThreshold float64 // queued jobs per worker that trigger growth
	Cooldown         time.Duration
}

/*
Scaler grows the pool toward maxWorkers while the job queue backs up. Workers
are never removed before Close; kernel passes are short and bursty, so a
shrinking pool would only thrash.
*/
type Scaler struct {
	pool             *Q
	minWorkers       int
	maxWorkers       int
	targetLoad       float64
	scaleUpThreshold float64
	cooldown         time.Duration
}

func NewScaler(q *Q, minWorkers, maxWorkers int, config *ScalerConfig) *Scaler {
	return &Scaler{
		pool:             q,
		minWorkers:       minWorkers,
		maxWorkers:       maxWorkers,
		targetLoad:       config.TargetLoad,
		scaleUpThreshold: config.ScaleUpThreshold,
		cooldown:         config.Cooldown,
	}
}

func (s *Scaler) evaluate() {
	toAdd := s.needed()
	if toAdd <= 0 {
		return
	}

	for range toAdd {
		s.pool.startWorker()
	}
	errnie.Info("scaled up by %d workers", toAdd)
}

// needed decides how many workers to add and stamps LastScale when it is more than zero.
func (s *Scaler) needed() int {
	m := s.pool.metrics
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.LastScale) < s.cooldown || m.WorkerCount >= s.maxWorkers {
		return 0
	}

	currentLoad := float64(m.JobQueueSize) / float64(max(1, m.WorkerCount))
	if currentLoad <= s.scaleUpThreshold {
		return 0
	}

	want := int(math.Ceil(float64(m.JobQueueSize) / s.targetLoad))
	toAdd := min(want-m.WorkerCount, s.maxWorkers-m.WorkerCount)
	if toAdd > 0 {
		m.LastScale = time.Now()
	}
	return toAdd
}
