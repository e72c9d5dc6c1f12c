package emailsend

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SESEnabled    bool          `mapstructure:"ses_enabled"`
	Region        string        `mapstructure:"region"`
	DefaultFrom   string        `mapstructure:"default_from"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		Region:        "ap-south-1",
		DefaultFrom:   "bids@aparcables.example.com",
		SubjectPrefix: "Commercial Bid",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.DefaultFrom == "" {
		return fmt.Errorf("default_from email is required")
	}
	if c.SESEnabled && c.Region == "" {
		return fmt.Errorf("region is required when SES is enabled")
	}
	return nil
}
