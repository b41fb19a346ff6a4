package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"mathquiz/internal/arith"
	"mathquiz/internal/domain"
)

// ResultRecorder archives finished sessions (Postgres in production).
type ResultRecorder interface {
	Record(ctx context.Context, result domain.SessionResult) error
}

// Option customizes controllers and the service that creates them.
type Option func(*options)

type options struct {
	scheduler  Scheduler
	recorder   ResultRecorder
	logger     zerolog.Logger
	generators func() *arith.Generator
	now        func() time.Time
}

func defaultOptions() options {
	return options{
		scheduler: TickerScheduler{},
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
}

func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

func WithRecorder(r ResultRecorder) Option {
	return func(o *options) { o.recorder = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithGenerators sets the question source. newGenerator is called once per
// controller, so sessions never share a random source.
func WithGenerators(newGenerator func() *arith.Generator) Option {
	return func(o *options) { o.generators = newGenerator }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
