// internal/humanoid/pacer.go

// Package humanoid paces a survey run the way a person would move through
// it: literal pauses between steps and per-character typing with a random
// cadence. Every wait is context aware so an interrupt unwinds immediately.
package humanoid

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Pacer performs the pauses of a run.
type Pacer struct {
	logger *zap.Logger
	sleep  SleepFunc
	total  time.Duration
}

// PacerOption configures a Pacer.
type PacerOption func(*Pacer)

// WithSleep replaces the real clock, mainly for tests.
func WithSleep(fn SleepFunc) PacerOption {
	return func(p *Pacer) { p.sleep = fn }
}

// NewPacer returns a Pacer backed by timers.
func NewPacer(logger *zap.Logger, opts ...PacerOption) *Pacer {
	p := &Pacer{logger: logger.Named("pacer"), sleep: sleepCtx}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause waits for d. Non-positive durations return at once, even when ctx is
// already done.
func (p *Pacer) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if err := p.sleep(ctx, d); err != nil {
		return err
	}
	p.total += d
	return nil
}

// Pad tops up the time spent on a group of questions to budget. Nothing
// happens when spent already reaches it.
func (p *Pacer) Pad(ctx context.Context, budget, spent time.Duration) error {
	remaining := budget - spent
	if remaining <= 0 {
		return nil
	}
	p.logger.Debug("Padding question group.", zap.Duration("pad", remaining))
	return p.Pause(ctx, remaining)
}

// Total is the sum of completed pauses.
func (p *Pacer) Total() time.Duration { return p.total }
