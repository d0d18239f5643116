package refresh

import "time"

// Config holds configuration for the Refresher
type Config struct {
	// Spec is the cron schedule (standard 5-field format or @every/@daily)
	// default: "@every 24h"
	Spec string `mapstructure:"spec"`
	// Timeout bounds one full refresh run
	// default: 5m
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns the default configuration for the Refresher
func DefaultConfig() *Config {
	return &Config{
		Spec:    "@every 24h",
		Timeout: 5 * time.Minute,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Spec == "" {
		return ErrEmptySpec
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout(c.Timeout)
	}
	return nil
}
