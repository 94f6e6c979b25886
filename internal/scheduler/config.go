package scheduler

import (
	"time"

	"github.com/smallbiznis/haccp/internal/config"
)

// Config controls sweep intervals and look-ahead windows.
type Config struct {
	RunInterval      time.Duration
	JobTimeout       time.Duration
	StaleReadingAge  time.Duration
	ReviewLookahead  time.Duration
	EnabledJobs      []string
	MaxLoggedRecords int
}

func DefaultConfig() Config {
	return Config{
		RunInterval:      15 * time.Minute,
		JobTimeout:       30 * time.Second,
		StaleReadingAge:  24 * time.Hour,
		ReviewLookahead:  30 * 24 * time.Hour,
		MaxLoggedRecords: 20,
	}
}

func ProvideConfig(cfg config.Config) Config {
	c := DefaultConfig()
	c.RunInterval = cfg.Scheduler.Interval
	c.EnabledJobs = cfg.Scheduler.Jobs
	return c.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.StaleReadingAge <= 0 {
		c.StaleReadingAge = defaults.StaleReadingAge
	}
	if c.ReviewLookahead <= 0 {
		c.ReviewLookahead = defaults.ReviewLookahead
	}
	if c.MaxLoggedRecords <= 0 {
		c.MaxLoggedRecords = defaults.MaxLoggedRecords
	}
	return c
}
