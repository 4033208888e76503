// File: internal/driver/driver.go

// Package driver defines the boundary between the survey logic and the
// browser that renders the survey. Everything above this package talks to a
// page only through Driver and the opaque Element handles it hands out.
package driver

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrStaleElement is returned when a handle refers to a node that no longer
	// exists, typically because the page navigated after the handle was issued.
	ErrStaleElement = errors.New("stale element reference")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("driver is closed")
)

// Descriptor is an XPath 1.0 expression. When used with a scope element it is
// evaluated relative to that element, so scoped descriptors start with ".//".
type Descriptor string

// XPath formats a descriptor.
func XPath(format string, args ...interface{}) Descriptor {
	return Descriptor(fmt.Sprintf(format, args...))
}

func (d Descriptor) String() string { return string(d) }

// Element is an opaque handle to a node on the current page. Handles are only
// valid until the next navigation.
type Element interface {
	// Key identifies the node within its page. Two handles to the same node
	// return the same key.
	Key() string
}

// Driver is the set of page operations the survey needs. Implementations are
// not required to be safe for concurrent use.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	// FindElements returns every element matching d in document order. A nil
	// scope searches the whole document. No match is not an error.
	FindElements(ctx context.Context, scope Element, d Descriptor) ([]Element, error)
	IsVisible(ctx context.Context, el Element) (bool, error)
	IsEnabled(ctx context.Context, el Element) (bool, error)
	// Click activates el and reports whether the click was delivered.
	Click(ctx context.Context, el Element) (bool, error)
	// SetText replaces the value of an input or textarea.
	SetText(ctx context.Context, el Element, text string) error
	// SendKeys appends keystrokes to the focused value of el.
	SendKeys(ctx context.Context, el Element, keys string) error
	Clear(ctx context.Context, el Element) error
	// SelectValue picks the option of a select element whose value is value.
	SelectValue(ctx context.Context, el Element, value string) error
	ReadText(ctx context.Context, el Element) (string, error)
	// GetAttribute returns the attribute value, or "" when it is absent.
	GetAttribute(ctx context.Context, el Element, name string) (string, error)
	// Close releases the browser. It is safe to call more than once.
	Close() error
}
