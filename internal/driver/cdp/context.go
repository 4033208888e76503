// internal/driver/cdp/context.go
package cdp

import (
	"context"
	"time"
)

// combineContext derives from session, which carries the chromedp target, and
// is also canceled when op is canceled. op usually carries the caller's
// deadline or the process signal context.
func combineContext(session, op context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(session)
	go func() {
		select {
		case <-op.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}

// detachedContext keeps the values of its parent but none of its
// cancellation.
type detachedContext struct {
	context.Context
}

func (detachedContext) Deadline() (time.Time, bool) { return time.Time{}, false }
func (detachedContext) Done() <-chan struct{}       { return nil }
func (detachedContext) Err() error                  { return nil }

// detach lets the browser outlive a canceled run context so that Close, not
// an interrupt, is what tears it down.
func detach(ctx context.Context) context.Context {
	return detachedContext{ctx}
}
