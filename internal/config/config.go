// Package config loads the process configuration from a YAML file with
// sensible defaults, plus environment overrides for SMTP credentials so
// secrets stay out of the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type SMTP struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`

	// ScanInterval is how often the scheduler walks all registered sites.
	ScanInterval time.Duration `yaml:"scan_interval"`

	// ProbeConcurrency caps in-flight link/image probes within one scan.
	ProbeConcurrency int `yaml:"probe_concurrency"`

	SMTP SMTP `yaml:"smtp"`
}

func Default() *Config {
	return &Config{
		ListenAddr:       ":3000",
		DBPath:           "data/siteguard.db",
		ScanInterval:     time.Hour,
		ProbeConcurrency: 5,
		SMTP: SMTP{
			Host:      "smtp.gmail.com",
			Port:      587,
			FromEmail: "alerts@siteguard.com",
			FromName:  "SiteGuard Alerts",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error: defaults plus environment overrides apply. SMTP_USER and
// SMTP_PASS env vars always win over file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		cfg.SMTP.Password = v
	}

	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = time.Hour
	}
	if cfg.ProbeConcurrency <= 0 {
		cfg.ProbeConcurrency = 5
	}

	return cfg, nil
}
