package validator

import "time"

type Config struct {
	// MaxLinks and MaxImages bound how many discovered items are probed,
	// in document order.
	MaxLinks  int
	MaxImages int

	// LinkTimeout and ImageTimeout bound each individual probe.
	LinkTimeout  time.Duration
	ImageTimeout time.Duration

	// Concurrency is the worker-pool ceiling for in-flight probes.
	Concurrency int

	// ProbesPerSecond rate-limits outbound probes so a scan cannot hammer
	// the target host.
	ProbesPerSecond float64
}

func DefaultConfig() *Config {
	return &Config{
		MaxLinks:        20,
		MaxImages:       10,
		LinkTimeout:     10 * time.Second,
		ImageTimeout:    5 * time.Second,
		Concurrency:     5,
		ProbesPerSecond: 20,
	}
}
