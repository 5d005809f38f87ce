package appmap

import (
	"github.com/goliatone/go-appmap/pkg/activity"
	"github.com/jonboulle/clockwork"
)

// Option configures sessions and reapplication.
type Option func(*config)

type config struct {
	logger  Logger
	emitter *activity.Emitter
	clock   clockwork.Clock
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithLogger attaches a logger. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithEmitter publishes one activity event per committed change.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(cfg *config) {
		cfg.emitter = emitter
	}
}

// WithClock overrides the clock used for commit timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(cfg *config) {
		cfg.clock = clock
	}
}

func (c config) loggerOrNoop() Logger {
	if c.logger != nil {
		return c.logger
	}
	return noopLogger{}
}

func (c config) clockOrReal() clockwork.Clock {
	if c.clock != nil {
		return c.clock
	}
	return clockwork.NewRealClock()
}
