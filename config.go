package qtensor

import "time"

type Config struct {
	SchedulingTimeout time.Duration
	ResultTTL         time.Duration
	MetricsInterval   time.Duration
}

func NewConfig() *Config {
	return &Config{
		SchedulingTimeout: 10 * time.Second,
		ResultTTL:         time.Minute,
		MetricsInterval:   500 * time.Millisecond,
	}
}
