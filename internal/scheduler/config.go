package scheduler

import "time"

// Config tunes the run loop.
type Config struct {
	// MaxUIDelay is the longest the run loop goes without flushing deferred
	// UI notifications and yielding to the event loop.
	MaxUIDelay time.Duration
	// WarnSlice and LongSlice are the slice durations above which a box is
	// reported at warn and error level.
	WarnSlice time.Duration
	LongSlice time.Duration
	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MaxUIDelay: 100 * time.Millisecond,
		WarnSlice:  100 * time.Millisecond,
		LongSlice:  1000 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxUIDelay <= 0 {
		c.MaxUIDelay = d.MaxUIDelay
	}
	if c.WarnSlice <= 0 {
		c.WarnSlice = d.WarnSlice
	}
	if c.LongSlice <= 0 {
		c.LongSlice = d.LongSlice
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}
