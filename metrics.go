package qtensor

import (
	"sort"
	"sync"
	"time"
)

type Metrics struct {
	mu                 sync.RWMutex
	WorkerCount        int
	JobQueueSize       int
	IdleWorkers        int
	LastScale          time.Time
	TotalJobTime       time.Duration
	JobCount           int64
	FailedJobs         int64
	SchedulingFailures int64

	AverageJobLatency time.Duration
	P95JobLatency     time.Duration
	P99JobLatency     time.Duration
	JobSuccessRate    float64

	// Sliding window of recent latencies for the percentiles
	latencies  []time.Duration
	windowSize int
}

func newMetrics() *Metrics {
	return &Metrics{
		latencies:  make([]time.Duration, 0, 1000),
		windowSize: 1000,
	}
}

func (m *Metrics) recordJobExecution(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalJobTime += duration
	m.JobCount++
	if !success {
		m.FailedJobs++
	}
	m.JobSuccessRate = float64(m.JobCount-m.FailedJobs) / float64(m.JobCount)

	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) recordSchedulingFailure() {
	m.mu.Lock()
	m.SchedulingFailures++
	m.mu.Unlock()
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageJobLatency = m.TotalJobTime / time.Duration(m.JobCount)

	m.latencies = append(m.latencies, duration)
	if len(m.latencies) > m.windowSize {
		m.latencies = m.latencies[1:]
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	m.P95JobLatency = sorted[min(int(float64(len(sorted))*0.95), len(sorted)-1)]
	m.P99JobLatency = sorted[min(int(float64(len(sorted))*0.99), len(sorted)-1)]
}

func (m *Metrics) ExportMetrics() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]any{
		"worker_count":        m.WorkerCount,
		"queue_size":          m.JobQueueSize,
		"idle_workers":        m.IdleWorkers,
		"job_count":           m.JobCount,
		"failed_jobs":         m.FailedJobs,
		"scheduling_failures": m.SchedulingFailures,
		"success_rate":        m.JobSuccessRate,
		"avg_latency_us":      m.AverageJobLatency.Microseconds(),
		"p95_latency_us":      m.P95JobLatency.Microseconds(),
		"p99_latency_us":      m.P99JobLatency.Microseconds(),
	}
}
