package qtensor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

// ErrPoolClosed is returned for jobs that cannot complete because the pool shut down.
var ErrPoolClosed = errors.New("pool closed")

// Q is a worker pool that hands each Job to the next idle Worker
type Q struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workers    chan chan Job
	jobs       chan Job
	space      *QuantumSpace
	scaler     *Scaler
	metrics    *Metrics
	workerMu   sync.Mutex
	workerList []*Worker
	config     *Config
	closeOnce  sync.Once
	closeMu    sync.RWMutex
	closed     bool
}

// NewQ creates a pool with minWorkers running workers that may grow to maxWorkers
func NewQ(ctx context.Context, minWorkers, maxWorkers int, config *Config) *Q {
	if config == nil {
		config = NewConfig()
	}
	minWorkers = max(1, minWorkers)
	maxWorkers = max(minWorkers, maxWorkers)

	ctx, cancel := context.WithCancel(ctx)
	q := &Q{
		ctx:        ctx,
		cancel:     cancel,
		workerList: make([]*Worker, 0, maxWorkers),
		jobs:       make(chan Job, maxWorkers*10),
		workers:    make(chan chan Job, maxWorkers),
		space:      newQuantumSpace(config.ResultTTL),
		metrics:    newMetrics(),
		config:     config,
	}

	q.scaler = NewScaler(q, minWorkers, maxWorkers, &ScalerConfig{
		TargetLoad:       2.0,
		ScaleUpThreshold: 4.0,
		Cooldown:         500 * time.Millisecond,
	})

	for range minWorkers {
		q.startWorker()
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.manage()
	}()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.collectMetrics()
	}()

	errnie.Info("NewQ - workers %d..%d, scheduling timeout %v", minWorkers, maxWorkers, config.SchedulingTimeout)

	return q
}

func (q *Q) manage() {
	defer q.seal()

	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			select {
			case <-q.ctx.Done():
				q.space.Store(job.ID, nil, ErrPoolClosed, job.TTL)
				return
			case workerChan := <-q.workers:
				// The worker is parked on its channel until it sees ctx.Done.
				select {
				case workerChan <- job:
				case <-q.ctx.Done():
					q.space.Store(job.ID, nil, ErrPoolClosed, job.TTL)
					return
				}
			case <-time.After(q.config.SchedulingTimeout):
				errnie.Info("no available workers for job %s", job.ID)
				q.metrics.recordSchedulingFailure()
				q.space.Store(job.ID, nil, fmt.Errorf("job %s: no available workers", job.ID), job.TTL)
			}
		}
	}
}

/*
seal stops Schedule from queueing anything new and fails whatever is still
queued. Once it returns, every job ever accepted has a result on its way.
*/
func (q *Q) seal() {
	q.closeMu.Lock()
	q.closed = true
	q.closeMu.Unlock()

	for {
		select {
		case job := <-q.jobs:
			q.space.Store(job.ID, nil, ErrPoolClosed, job.TTL)
		default:
			return
		}
	}
}

func (q *Q) collectMetrics() {
	ticker := time.NewTicker(q.config.MetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.metrics.mu.Lock()
			q.metrics.JobQueueSize = len(q.jobs)
			q.metrics.IdleWorkers = len(q.workers)
			q.metrics.mu.Unlock()

			q.scaler.evaluate()
		}
	}
}

/*
Schedule queues fn under id and returns the channel its result arrives on.
The channel always receives exactly one value: the result, a scheduling
error, or ErrPoolClosed when the pool shuts down before a worker picks the
job up.
*/
func (q *Q) Schedule(id string, fn func() (any, error)) chan QuantumValue {
	job := Job{
		ID:        id,
		Fn:        fn,
		TTL:       q.config.ResultTTL,
		StartTime: time.Now(),
	}

	// Held until the job is queued and awaited, so seal cannot drain in between.
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()

	if q.closed || q.ctx.Err() != nil {
		return settled(QuantumValue{Error: ErrPoolClosed, CreatedAt: time.Now()})
	}

	ctx, cancel := context.WithTimeout(q.ctx, q.config.SchedulingTimeout)
	defer cancel()

	select {
	case q.jobs <- job:
		return q.space.Await(id)
	case <-ctx.Done():
		q.metrics.recordSchedulingFailure()

		err := ErrPoolClosed
		if q.ctx.Err() == nil {
			err = fmt.Errorf("job %s scheduling timeout: %w", id, ctx.Err())
		}

		return settled(QuantumValue{Error: err, CreatedAt: time.Now()})
	}
}

// settled returns a closed channel already holding qv.
func settled(qv QuantumValue) chan QuantumValue {
	ch := make(chan QuantumValue, 1)
	ch <- qv
	close(ch)
	return ch
}

// Metrics returns a snapshot of the pool metrics.
func (q *Q) Metrics() map[string]any {
	return q.metrics.ExportMetrics()
}

func (q *Q) startWorker() {
	worker := &Worker{
		pool: q,
		jobs: make(chan Job),
	}

	q.workerMu.Lock()
	q.workerList = append(q.workerList, worker)
	q.workerMu.Unlock()

	q.metrics.mu.Lock()
	q.metrics.WorkerCount++
	count := q.metrics.WorkerCount
	q.metrics.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		worker.run()
	}()

	errnie.Info("started worker, total workers: %d", count)
}

// Close stops every worker and waits for them; safe to call more than once
func (q *Q) Close() {
	if q == nil {
		return
	}

	q.closeOnce.Do(func() {
		errnie.Info("closing pool")

		q.cancel()
		q.wg.Wait()
		q.space.Close()

		q.workerMu.Lock()
		q.workerList = nil
		q.workerMu.Unlock()
	})
}
