package fetcher

import "time"

type Config struct {
	// ScanTimeout bounds the top-level page request of a full scan.
	ScanTimeout time.Duration

	// QuickTimeout bounds a quick reachability check.
	QuickTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		ScanTimeout:  30 * time.Second,
		QuickTimeout: 15 * time.Second,
	}
}
