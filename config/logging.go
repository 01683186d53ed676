package config

import "fmt"

// LoggingConfig controls the zerolog-backed logger in infra/logger.
type LoggingConfig struct {
	// Level is one of zerolog's level names: debug, info, warn, error.
	Level string `json:"level"`
	// Format is "console" (human-readable) or "json". SetDefaults (and
	// so Load) fills an unset Format with "json"; infra/logger's
	// APP_ENV=dev console shortcut applies only when an empty Format
	// reaches it.
	Format string `json:"format"`
}

// SetDefaults applies the defaults used when no logging section is given.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks that Level and Format name a recognized option.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging level %q", c.Level)
	}
	switch c.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown logging format %q", c.Format)
	}
	return nil
}
