// internal/driver/cdp/driver.go

// Package cdp implements driver.Driver on top of the Chrome DevTools Protocol
// using chromedp. Elements are addressed by tagging them with a data
// attribute when they are found, so every later operation is a plain
// attribute selector and a stale handle is simply a selector with no match.
package cdp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/surveyor/internal/config"
	"github.com/xkilldash9x/surveyor/internal/driver"
)

type element struct {
	id string
}

func (e element) Key() string { return e.id }

func (e element) selector() string {
	return fmt.Sprintf(`[%s="%s"]`, tagAttr, e.id)
}

// Driver drives one browser tab.
type Driver struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	sessionCtx    context.Context
	cancelSession context.CancelFunc
	cancelAlloc   context.CancelFunc

	// runActions and evaluate are swapped out in tests.
	runActions func(ctx context.Context, actions ...chromedp.Action) error
	evaluate   func(ctx context.Context, script string) ([]byte, error)

	closed    atomic.Bool
	closeOnce sync.Once
}

var _ driver.Driver = (*Driver)(nil)

// New launches (or attaches to) a browser and opens a tab. The browser is not
// bound to ctx's cancellation; it lives until Close.
func New(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Driver, error) {
	log := logger.Named("cdp")
	allocCtx, cancelAlloc := newAllocator(detach(ctx), cfg)
	sugar := log.Sugar()
	sessionCtx, cancelSession := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)

	d := &Driver{
		logger:        log,
		cfg:           cfg,
		sessionCtx:    sessionCtx,
		cancelSession: cancelSession,
		cancelAlloc:   cancelAlloc,
		runActions:    chromedp.Run,
	}
	d.evaluate = d.evaluateJS

	var startup []chromedp.Action
	if w, h, ok := viewport(cfg); ok {
		startup = append(startup, chromedp.EmulateViewport(w, h))
	}
	// The first Run allocates the browser and the tab.
	if err := d.run(ctx, cfg.NavigationTimeout, startup...); err != nil {
		d.Close()
		return nil, fmt.Errorf("browser failed to start: %w", err)
	}

	log.Info("Browser session ready.",
		zap.Bool("headless", cfg.Headless),
		zap.Bool("remote", cfg.RemoteURL != ""))
	return d, nil
}

// run executes actions against the tab, bounded by ctx and by timeout when it
// is positive.
func (d *Driver) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if d.closed.Load() {
		return driver.ErrClosed
	}
	opCtx, cancel := combineContext(d.sessionCtx, ctx)
	defer cancel()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		opCtx, cancelTimeout = context.WithTimeout(opCtx, timeout)
		defer cancelTimeout()
	}

	err := d.runActions(opCtx, actions...)
	if err != nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		d.logger.Debug("Browser action timed out.", zap.Duration("timeout", timeout))
		return fmt.Errorf("browser action timed out after %v: %w", timeout, context.DeadlineExceeded)
	}
	return err
}

func (d *Driver) evaluateJS(ctx context.Context, script string) ([]byte, error) {
	var raw []byte
	err := d.run(ctx, d.cfg.ActionTimeout,
		chromedp.Evaluate(script, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithAwaitPromise(false).WithSilent(true)
		}),
	)
	return raw, err
}

// call evaluates script and decodes its envelope into out.
func (d *Driver) call(ctx context.Context, script string, out interface{}) error {
	if d.closed.Load() {
		return driver.ErrClosed
	}
	raw, err := d.evaluate(ctx, script)
	if err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	var res evalResult
	if err := jsoniter.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("unexpected script result %q: %w", raw, err)
	}
	if res.Stale {
		return driver.ErrStaleElement
	}
	if out == nil || len(res.Value) == 0 {
		return nil
	}
	if err := jsoniter.Unmarshal(res.Value, out); err != nil {
		return fmt.Errorf("unexpected script value %q: %w", res.Value, err)
	}
	return nil
}

func handle(el driver.Element) (element, error) {
	e, ok := el.(element)
	if !ok {
		return element{}, fmt.Errorf("foreign element handle %T", el)
	}
	return e, nil
}

// onElement runs body against el and decodes the value into out.
func (d *Driver) onElement(ctx context.Context, el driver.Element, body string, out interface{}) error {
	e, err := handle(el)
	if err != nil {
		return err
	}
	return d.call(ctx, elementScript(e.id, body), out)
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.logger.Debug("Navigating.", zap.String("url", url))
	if err := d.run(ctx, d.cfg.NavigationTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

func (d *Driver) FindElements(ctx context.Context, scope driver.Element, desc driver.Descriptor) ([]driver.Element, error) {
	scopeID := ""
	if scope != nil {
		e, err := handle(scope)
		if err != nil {
			return nil, err
		}
		scopeID = e.id
	}

	var ids []string
	if err := d.call(ctx, findScript(scopeID, desc.String()), &ids); err != nil {
		return nil, err
	}
	out := make([]driver.Element, len(ids))
	for i, id := range ids {
		out[i] = element{id: id}
	}
	return out, nil
}

func (d *Driver) IsVisible(ctx context.Context, el driver.Element) (bool, error) {
	var v bool
	err := d.onElement(ctx, el, visibleBody, &v)
	return v, err
}

func (d *Driver) IsEnabled(ctx context.Context, el driver.Element) (bool, error) {
	var v bool
	err := d.onElement(ctx, el, enabledBody, &v)
	return v, err
}

func (d *Driver) Click(ctx context.Context, el driver.Element) (bool, error) {
	var v bool
	if err := d.onElement(ctx, el, clickBody, &v); err != nil {
		return false, err
	}
	return v, nil
}

func (d *Driver) SetText(ctx context.Context, el driver.Element, text string) error {
	return d.onElement(ctx, el, setValueBody(text), nil)
}

func (d *Driver) Clear(ctx context.Context, el driver.Element) error {
	return d.onElement(ctx, el, setValueBody(""), nil)
}

// SendKeys types through the input pipeline so the page sees real key events.
func (d *Driver) SendKeys(ctx context.Context, el driver.Element, keys string) error {
	if err := d.onElement(ctx, el, presentBody, nil); err != nil {
		return err
	}
	e, _ := handle(el)
	return d.run(ctx, d.cfg.ActionTimeout, chromedp.SendKeys(e.selector(), keys, chromedp.ByQuery))
}

func (d *Driver) SelectValue(ctx context.Context, el driver.Element, value string) error {
	var found bool
	if err := d.onElement(ctx, el, selectBody(value), &found); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("select %s has no option with value %q", el.Key(), value)
	}
	return nil
}

func (d *Driver) ReadText(ctx context.Context, el driver.Element) (string, error) {
	var s string
	err := d.onElement(ctx, el, readTextBody, &s)
	return s, err
}

func (d *Driver) GetAttribute(ctx context.Context, el driver.Element, name string) (string, error) {
	var s string
	err := d.onElement(ctx, el, attributeBody(name), &s)
	return s, err
}

// Close closes the tab and then the allocator, which stops a locally
// launched browser.
func (d *Driver) Close() error {
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		if d.cancelSession != nil {
			d.cancelSession()
		}
		if d.cancelAlloc != nil {
			d.cancelAlloc()
		}
		d.logger.Debug("Browser session closed.")
	})
	return nil
}
