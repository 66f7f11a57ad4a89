package app

import (
	"errors"
	"time"

	"github.com/specialistvlad/boxwire/internal/scheduler"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProgramPath string // hcl file or directory
	SavePath    string // where the program is written on shutdown; empty disables saving

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	EditorURL       string
	EditorNamespace string

	MaxUIDelay time.Duration
	WarnSlice  time.Duration
	LongSlice  time.Duration

	// Serve keeps the program running until the context ends. Otherwise the
	// run stops as soon as no work is left.
	Serve bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProgramPath == "" {
		return nil, errors.New("ProgramPath is a required configuration field and cannot be empty")
	}
	if cfg.MaxUIDelay < 0 || cfg.WarnSlice < 0 || cfg.LongSlice < 0 {
		return nil, errors.New("durations cannot be negative")
	}
	if cfg.WarnSlice > 0 && cfg.LongSlice > 0 && cfg.LongSlice < cfg.WarnSlice {
		return nil, errors.New("long-slice must not be shorter than warn-slice")
	}
	if cfg.EditorNamespace != "" && cfg.EditorURL == "" {
		return nil, errors.New("editor-namespace requires editor-url")
	}
	return &cfg, nil
}

// schedulerConfig maps the app settings onto the scheduler; zero values
// fall back to the scheduler defaults.
func (c *Config) schedulerConfig() scheduler.Config {
	return scheduler.Config{
		MaxUIDelay: c.MaxUIDelay,
		WarnSlice:  c.WarnSlice,
		LongSlice:  c.LongSlice,
	}
}
