package cache

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Option configures a cache container.
type Option func(*config)

type config struct {
	defaultTTL time.Duration
	clock      clockwork.Clock

	// Adaptive tuning; ignored by the other containers.
	windowSize      int
	switchThreshold float64
}

func buildConfig(opts []Option) config {
	cfg := config{
		clock:           clockwork.NewRealClock(),
		windowSize:      defaultWindowSize,
		switchThreshold: defaultSwitchThreshold,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTTL sets the default time-to-live for entries stored with Set. Zero
// (the default) means entries never expire unless SetTTL is used.
//
// Example:
//
//	c := cache.New[string](100, cache.WithTTL(5*time.Minute))
func WithTTL(ttl time.Duration) Option {
	return func(cfg *config) {
		cfg.defaultTTL = ttl
	}
}

// WithClock sets the clock used for TTL comparison and recency tracking.
// The default is the real wall clock. Tests inject a fake clock to exercise
// expiry deterministically:
//
//	clk := clockwork.NewFakeClock()
//	c := cache.New[string](100, cache.WithTTL(time.Minute), cache.WithClock(clk))
//	c.Set("k", "v")
//	clk.Advance(2 * time.Minute)
//	_, ok := c.Get("k") // ok == false
func WithClock(clock clockwork.Clock) Option {
	return func(cfg *config) {
		cfg.clock = clock
	}
}

// WithWindowSize sets the number of trailing accesses an AdaptiveCache
// considers when deciding between recency- and frequency-based eviction.
// Ignored by the other containers.
func WithWindowSize(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.windowSize = n
		}
	}
}

// WithSwitchThreshold sets the repeat-access ratio above which an
// AdaptiveCache evicts by frequency instead of recency. The ratio is
// repeat-key accesses divided by unique keys in the trailing window.
// Ignored by the other containers.
func WithSwitchThreshold(ratio float64) Option {
	return func(cfg *config) {
		if ratio > 0 {
			cfg.switchThreshold = ratio
		}
	}
}
