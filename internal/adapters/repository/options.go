package repository

import (
	"github.com/itbasis/go-clock"

	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	clock  clock.Clock
	logger logger.Logger
}

func defaultOptions() options {
	return options{
		clock:  clock.New(),
		logger: logger.Nop(),
	}
}

// WithClock sets the clock used for created/updated timestamps.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
