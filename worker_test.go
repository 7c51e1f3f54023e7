package qtensor

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newBarePool(ctx context.Context) *Q {
	return &Q{
		ctx:     ctx,
		workers: make(chan chan Job, 1),
		space:   newQuantumSpace(time.Minute),
		metrics: newMetrics(),
		config:  NewConfig(),
	}
}

func TestWorker(t *testing.T) {
	Convey("Given a worker", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		pool := newBarePool(ctx)
		worker := &Worker{
			pool: pool,
			jobs: make(chan Job),
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			worker.run()
		}()

		Reset(func() {
			cancel()
			<-done
			pool.space.Close()
		})

		dispatch := func(job Job) QuantumValue {
			workerChan := <-pool.workers
			workerChan <- job
			return await(pool.space.Await(job.ID))
		}

		Convey("It should process a job successfully", func() {
			value := dispatch(Job{
				ID:        "job_success",
				Fn:        func() (any, error) { return "result", nil },
				StartTime: time.Now(),
				TTL:       10 * time.Second,
			})

			So(value.Error, ShouldBeNil)
			So(value.Value, ShouldEqual, "result")
		})

		Convey("It should turn a panic into an error", func() {
			value := dispatch(Job{
				ID:        "job_panic",
				Fn:        func() (any, error) { panic("kaboom") },
				StartTime: time.Now(),
			})

			So(value.Error, ShouldNotBeNil)
			So(value.Error.Error(), ShouldContainSubstring, "job_panic panicked: kaboom")

			Convey("And record the failure", func() {
				pool.metrics.mu.RLock()
				defer pool.metrics.mu.RUnlock()
				So(pool.metrics.FailedJobs, ShouldEqual, int64(1))
				So(pool.metrics.JobSuccessRate, ShouldEqual, 0.0)
			})
		})

		Convey("It should keep serving after a job", func() {
			for _, id := range []string{"first", "second", "third"} {
				value := dispatch(Job{
					ID:        id,
					Fn:        func() (any, error) { return id, nil },
					StartTime: time.Now(),
				})
				So(value.Value, ShouldEqual, id)
			}
		})

		Convey("It should stop when the pool context is cancelled", func() {
			cancel()

			select {
			case <-done:
			case <-time.After(testTimeout):
				t.Fatal("worker did not stop")
			}
		})
	})
}
