// internal/driver/cdp/allocator.go
package cdp

import (
	"context"
	"runtime"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/surveyor/internal/config"
)

// launchFlags collects the command line flags for a locally launched browser.
// Custom args come last so they override the defaults.
func launchFlags(cfg config.BrowserConfig) map[string]interface{} {
	flags := map[string]interface{}{
		"headless":           cfg.Headless,
		"disable-gpu":        cfg.Headless,
		"disable-extensions": true,
		"mute-audio":         true,
	}
	// Containers and CI runners rarely provide the namespaces the sandbox needs.
	if runtime.GOOS == "linux" {
		flags["no-sandbox"] = true
		flags["disable-dev-shm-usage"] = true
	}

	for _, arg := range cfg.Args {
		name, val, hasVal := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if name == "" {
			continue
		}
		if hasVal {
			flags[name] = val
		} else {
			flags[name] = true
		}
	}
	return flags
}

// newAllocator attaches to cfg.RemoteURL when it is set and launches a local
// browser otherwise.
func newAllocator(ctx context.Context, cfg config.BrowserConfig) (context.Context, context.CancelFunc) {
	if cfg.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, val := range launchFlags(cfg) {
		opts = append(opts, chromedp.Flag(name, val))
	}
	return chromedp.NewExecAllocator(ctx, opts...)
}

// viewport reads width and height from the configured viewport map.
func viewport(cfg config.BrowserConfig) (int64, int64, bool) {
	w, h := cfg.Viewport["width"], cfg.Viewport["height"]
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return int64(w), int64(h), true
}
