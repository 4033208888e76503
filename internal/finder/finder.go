// internal/finder/finder.go

// Package finder locates interactable elements through a driver.Driver while
// absorbing the timing races between page rendering and queries. Lookups are
// retried a bounded number of times at a fixed spacing; "not found" is a
// normal result, never an error.
package finder

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/surveyor/internal/config"
	"github.com/xkilldash9x/surveyor/internal/driver"
)

// ErrWaitTimeout is returned by WaitPresent when nothing matched in time.
var ErrWaitTimeout = errors.New("timed out waiting for element")

// minPoll bounds how fast WaitPresent polls when no retry delay is configured.
const minPoll = 50 * time.Millisecond

// Finder wraps a driver with retry and visibility filtering.
type Finder struct {
	drv      driver.Driver
	logger   *zap.Logger
	attempts int
	delay    time.Duration
}

// New creates a Finder. Non-positive attempts are treated as one.
func New(drv driver.Driver, cfg config.FinderConfig, logger *zap.Logger) *Finder {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return &Finder{
		drv:      drv,
		logger:   logger.Named("finder"),
		attempts: attempts,
		delay:    cfg.RetryDelay,
	}
}

// Driver returns the wrapped driver.
func (f *Finder) Driver() driver.Driver { return f.drv }

// pacer spaces successive attempts by the retry delay. The first attempt is
// never delayed.
func (f *Finder) pacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Find returns the first element matching d that is both visible and
// enabled. Driver errors count as a failed attempt.
func (f *Finder) Find(ctx context.Context, scope driver.Element, d driver.Descriptor) (driver.Element, bool) {
	lim := f.pacer(f.delay)
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			return nil, false
		}
		els, err := f.drv.FindElements(ctx, scope, d)
		if err != nil {
			f.logger.Debug("Lookup failed; retrying.",
				zap.Stringer("descriptor", d), zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		for _, el := range els {
			if f.Usable(ctx, el) {
				return el, true
			}
		}
	}
	f.logger.Debug("Element not found.", zap.Stringer("descriptor", d), zap.Int("attempts", f.attempts))
	return nil, false
}

// FindAll returns every visible element matching d. Only driver errors are
// retried; an empty page region is a valid answer.
func (f *Finder) FindAll(ctx context.Context, scope driver.Element, d driver.Descriptor) []driver.Element {
	els, ok := f.query(ctx, scope, d)
	if !ok {
		return nil
	}
	visible := els[:0:0]
	for _, el := range els {
		if f.Visible(ctx, el) {
			visible = append(visible, el)
		}
	}
	return visible
}

// Exists reports whether anything in the document matches d, visible or not.
func (f *Finder) Exists(ctx context.Context, d driver.Descriptor) bool {
	return f.ExistsIn(ctx, nil, d)
}

// ExistsIn is Exists restricted to the subtree of scope.
func (f *Finder) ExistsIn(ctx context.Context, scope driver.Element, d driver.Descriptor) bool {
	return len(f.Query(ctx, scope, d)) > 0
}

// Query returns every element matching d without any visibility filtering,
// or nil when the driver keeps failing.
func (f *Finder) Query(ctx context.Context, scope driver.Element, d driver.Descriptor) []driver.Element {
	els, _ := f.query(ctx, scope, d)
	return els
}

func (f *Finder) query(ctx context.Context, scope driver.Element, d driver.Descriptor) ([]driver.Element, bool) {
	lim := f.pacer(f.delay)
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			return nil, false
		}
		els, err := f.drv.FindElements(ctx, scope, d)
		if err == nil {
			return els, true
		}
		f.logger.Debug("Query failed; retrying.",
			zap.Stringer("descriptor", d), zap.Int("attempt", attempt), zap.Error(err))
	}
	return nil, false
}

// WaitPresent polls until an element matching d exists or timeout elapses.
func (f *Finder) WaitPresent(ctx context.Context, d driver.Descriptor, timeout time.Duration) (driver.Element, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interval := f.delay
	if interval < minPoll {
		interval = minPoll
	}
	lim := f.pacer(interval)
	for {
		if err := lim.Wait(waitCtx); err != nil {
			break
		}
		els, err := f.drv.FindElements(waitCtx, nil, d)
		if err == nil && len(els) > 0 {
			return els[0], nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrWaitTimeout
}

// Visible reports visibility, treating driver errors as hidden.
func (f *Finder) Visible(ctx context.Context, el driver.Element) bool {
	ok, err := f.drv.IsVisible(ctx, el)
	return err == nil && ok
}

// Usable reports whether el is visible and enabled.
func (f *Finder) Usable(ctx context.Context, el driver.Element) bool {
	if !f.Visible(ctx, el) {
		return false
	}
	ok, err := f.drv.IsEnabled(ctx, el)
	return err == nil && ok
}

// Text reads the text of el, returning "" on any driver error.
func (f *Finder) Text(ctx context.Context, el driver.Element) string {
	s, err := f.drv.ReadText(ctx, el)
	if err != nil {
		return ""
	}
	return s
}

// Attr reads an attribute of el, returning "" on any driver error.
func (f *Finder) Attr(ctx context.Context, el driver.Element, name string) string {
	s, err := f.drv.GetAttribute(ctx, el, name)
	if err != nil {
		return ""
	}
	return s
}
