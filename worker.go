package qtensor

import (
	"fmt"
	"runtime/debug"
)

// PanicError is stored for a job whose function panicked.
type PanicError struct {
	JobID string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job %s panicked: %v\n%s", e.JobID, e.Value, e.Stack)
}

// Worker processes jobs
type Worker struct {
	pool *Q
	jobs chan Job
}

func (w *Worker) run() {
	for {
		select {
		case <-w.pool.ctx.Done():
			return
		case w.pool.workers <- w.jobs:
		}

		select {
		case <-w.pool.ctx.Done():
			return
		case job := <-w.jobs:
			result, err := w.processJob(job)
			w.pool.space.Store(job.ID, result, err, job.TTL)
		}
	}
}

func (w *Worker) processJob(job Job) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{JobID: job.ID, Value: r, Stack: debug.Stack()}
		}
		w.pool.metrics.recordJobExecution(job.StartTime, err == nil)
	}()

	return job.Fn()
}
