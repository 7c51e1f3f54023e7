package qtensor

import "time"

// Job represents work to be done
type Job struct {
	ID        string
	Fn        func() (any, error)
	TTL       time.Duration
	StartTime time.Time
}
