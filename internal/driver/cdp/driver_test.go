// internal/driver/cdp/driver_test.go
package cdp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/surveyor/internal/config"
	"github.com/xkilldash9x/surveyor/internal/driver"
)

// fakeBrowser answers scripts with canned envelopes and records them.
type fakeBrowser struct {
	scripts []string
	reply   func(script string) (string, error)
}

func (f *fakeBrowser) evaluate(_ context.Context, script string) ([]byte, error) {
	f.scripts = append(f.scripts, script)
	out, err := f.reply(script)
	return []byte(out), err
}

func newTestDriver(t *testing.T, f *fakeBrowser) *Driver {
	t.Helper()
	d := &Driver{
		logger:     zaptest.NewLogger(t),
		cfg:        config.BrowserConfig{ActionTimeout: time.Second, NavigationTimeout: time.Second},
		sessionCtx: context.Background(),
		runActions: func(ctx context.Context, actions ...chromedp.Action) error { return nil },
	}
	if f != nil {
		d.evaluate = f.evaluate
	}
	return d
}

func TestFindElements(t *testing.T) {
	ctx := context.Background()

	t.Run("document search tags results", func(t *testing.T) {
		f := &fakeBrowser{reply: func(string) (string, error) {
			return `{"value":["k1-1","k1-2"]}`, nil
		}}
		d := newTestDriver(t, f)

		els, err := d.FindElements(ctx, nil, "//table[contains(@class,'HighlyLikelyDESC')]")
		require.NoError(t, err)
		require.Len(t, els, 2)
		assert.Equal(t, "k1-2", els[1].Key())

		require.Len(t, f.scripts, 1)
		assert.Contains(t, f.scripts[0], `"//table[contains(@class,'HighlyLikelyDESC')]"`)
		assert.Contains(t, f.scripts[0], `"data-surveyor-id"`)
	})

	t.Run("scoped search passes the scope tag", func(t *testing.T) {
		f := &fakeBrowser{reply: func(string) (string, error) { return `{"value":[]}`, nil }}
		d := newTestDriver(t, f)

		els, err := d.FindElements(ctx, element{id: "k1-7"}, ".//input")
		require.NoError(t, err)
		assert.Empty(t, els)
		assert.Contains(t, f.scripts[0], `("k1-7", ".//input"`)
	})

	t.Run("missing scope is stale", func(t *testing.T) {
		f := &fakeBrowser{reply: func(string) (string, error) { return `{"stale":true}`, nil }}
		d := newTestDriver(t, f)

		_, err := d.FindElements(ctx, element{id: "old-1"}, ".//input")
		assert.ErrorIs(t, err, driver.ErrStaleElement)
	})

	t.Run("evaluation errors are wrapped", func(t *testing.T) {
		boom := errors.New("target closed")
		f := &fakeBrowser{reply: func(string) (string, error) { return "", boom }}
		d := newTestDriver(t, f)

		_, err := d.FindElements(ctx, nil, "//p")
		assert.ErrorIs(t, err, boom)
	})
}

func TestElementOperations(t *testing.T) {
	ctx := context.Background()
	el := element{id: "k2-3"}

	t.Run("state queries decode values", func(t *testing.T) {
		f := &fakeBrowser{reply: func(script string) (string, error) {
			switch {
			case strings.Contains(script, "getBoundingClientRect"):
				return `{"value":true}`, nil
			case strings.Contains(script, "el.disabled"):
				return `{"value":false}`, nil
			case strings.Contains(script, "innerText"):
				return `{"value":"How likely are you to recommend us?"}`, nil
			default:
				return `{"value":"5"}`, nil
			}
		}}
		d := newTestDriver(t, f)

		vis, err := d.IsVisible(ctx, el)
		require.NoError(t, err)
		assert.True(t, vis)

		enabled, err := d.IsEnabled(ctx, el)
		require.NoError(t, err)
		assert.False(t, enabled)

		text, err := d.ReadText(ctx, el)
		require.NoError(t, err)
		assert.Equal(t, "How likely are you to recommend us?", text)

		val, err := d.GetAttribute(ctx, el, "value")
		require.NoError(t, err)
		assert.Equal(t, "5", val)
	})

	t.Run("click and text entry", func(t *testing.T) {
		f := &fakeBrowser{reply: func(string) (string, error) { return `{"value":true}`, nil }}
		d := newTestDriver(t, f)

		ok, err := d.Click(ctx, el)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, d.SetText(ctx, el, `quote " and backslash \`))
		assert.Contains(t, f.scripts[1], `el.value = "quote \" and backslash \\";`)

		require.NoError(t, d.Clear(ctx, el))
		assert.Contains(t, f.scripts[2], `el.value = "";`)
	})

	t.Run("select reports a missing option", func(t *testing.T) {
		f := &fakeBrowser{reply: func(string) (string, error) { return `{"value":false}`, nil }}
		d := newTestDriver(t, f)

		err := d.SelectValue(ctx, el, "7")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no option with value "7"`)
	})

	t.Run("send keys checks presence then types", func(t *testing.T) {
		f := &fakeBrowser{reply: func(string) (string, error) { return `{"value":true}`, nil }}
		d := newTestDriver(t, f)
		var captured []chromedp.Action
		d.runActions = func(ctx context.Context, actions ...chromedp.Action) error {
			captured = actions
			return nil
		}

		require.NoError(t, d.SendKeys(ctx, el, "a"))
		assert.Len(t, f.scripts, 1)
		assert.Len(t, captured, 1)
	})

	t.Run("stale element", func(t *testing.T) {
		f := &fakeBrowser{reply: func(string) (string, error) { return `{"stale":true}`, nil }}
		d := newTestDriver(t, f)

		_, err := d.Click(ctx, el)
		assert.ErrorIs(t, err, driver.ErrStaleElement)
		assert.ErrorIs(t, d.SendKeys(ctx, el, "x"), driver.ErrStaleElement)
	})

	t.Run("garbage results are reported", func(t *testing.T) {
		f := &fakeBrowser{reply: func(string) (string, error) { return `not json`, nil }}
		d := newTestDriver(t, f)

		_, err := d.IsVisible(ctx, el)
		assert.Error(t, err)
	})
}

func TestRunTimeoutsAndClose(t *testing.T) {
	t.Run("navigation honours the configured timeout", func(t *testing.T) {
		d := newTestDriver(t, nil)
		d.cfg.NavigationTimeout = 20 * time.Millisecond
		d.runActions = func(ctx context.Context, actions ...chromedp.Action) error {
			<-ctx.Done()
			return ctx.Err()
		}

		err := d.Navigate(context.Background(), "https://survey.example.test")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "timed out")
	})

	t.Run("caller cancellation propagates", func(t *testing.T) {
		d := newTestDriver(t, nil)
		d.cfg.NavigationTimeout = time.Minute
		d.runActions = func(ctx context.Context, actions ...chromedp.Action) error {
			<-ctx.Done()
			return ctx.Err()
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := d.Navigate(ctx, "https://survey.example.test")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("close is idempotent and final", func(t *testing.T) {
		calls := 0
		d := newTestDriver(t, &fakeBrowser{reply: func(string) (string, error) { return `{"value":[]}`, nil }})
		d.cancelSession = func() { calls++ }
		d.cancelAlloc = func() { calls++ }

		require.NoError(t, d.Close())
		require.NoError(t, d.Close())
		assert.Equal(t, 2, calls)

		_, err := d.FindElements(context.Background(), nil, "//p")
		assert.ErrorIs(t, err, driver.ErrClosed)
		assert.ErrorIs(t, d.Navigate(context.Background(), "x"), driver.ErrClosed)
	})
}

func TestLaunchFlags(t *testing.T) {
	flags := launchFlags(config.BrowserConfig{
		Headless: true,
		Args:     []string{"--window-size=1280,800", "--incognito", "--"},
	})
	assert.Equal(t, true, flags["headless"])
	assert.Equal(t, true, flags["disable-gpu"])
	assert.Equal(t, "1280,800", flags["window-size"])
	assert.Equal(t, true, flags["incognito"])
	_, hasEmpty := flags[""]
	assert.False(t, hasEmpty)

	w, h, ok := viewport(config.BrowserConfig{Viewport: map[string]int{"width": 1366, "height": 768}})
	assert.True(t, ok)
	assert.Equal(t, int64(1366), w)
	assert.Equal(t, int64(768), h)
	_, _, ok = viewport(config.BrowserConfig{})
	assert.False(t, ok)
}

func TestCombineContextAndDetach(t *testing.T) {
	session, cancelSession := context.WithCancel(context.WithValue(context.Background(), struct{}{}, "tab"))
	defer cancelSession()
	op, cancelOp := context.WithCancel(context.Background())

	combined, cancel := combineContext(session, op)
	defer cancel()
	assert.Equal(t, "tab", combined.Value(struct{}{}))

	cancelOp()
	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context was not canceled with the operation context")
	}

	parent, cancelParent := context.WithCancel(session)
	cancelParent()
	d := detach(parent)
	assert.NoError(t, d.Err())
	assert.Nil(t, d.Done())
	assert.Equal(t, "tab", d.Value(struct{}{}))
}
