package service

import (
	"log/slog"
	"math/rand/v2"
	"time"
)

type options struct {
	now    func() time.Time
	src    rand.Source
	logger *slog.Logger
}

// Option configures the generators and services in this package
type Option func(*options)

// WithClock overrides the wall clock, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRand sets the random source used for noise draws
func WithRand(src rand.Source) Option {
	return func(o *options) { o.src = src }
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
