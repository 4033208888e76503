// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xkilldash9x/surveyor/internal/driver"
)

// -- Element Mock --

// Element is a fixed-key element handle for tests.
type Element string

// Key implements driver.Element.
func (e Element) Key() string { return string(e) }

var _ driver.Element = Element("")

// -- Driver Mock --

// MockDriver mocks driver.Driver.
type MockDriver struct {
	mock.Mock
}

var _ driver.Driver = (*MockDriver)(nil)

func (m *MockDriver) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockDriver) FindElements(ctx context.Context, scope driver.Element, d driver.Descriptor) ([]driver.Element, error) {
	args := m.Called(ctx, scope, d)
	var els []driver.Element
	if v := args.Get(0); v != nil {
		els = v.([]driver.Element)
	}
	return els, args.Error(1)
}

func (m *MockDriver) IsVisible(ctx context.Context, el driver.Element) (bool, error) {
	args := m.Called(ctx, el)
	return args.Bool(0), args.Error(1)
}

func (m *MockDriver) IsEnabled(ctx context.Context, el driver.Element) (bool, error) {
	args := m.Called(ctx, el)
	return args.Bool(0), args.Error(1)
}

func (m *MockDriver) Click(ctx context.Context, el driver.Element) (bool, error) {
	args := m.Called(ctx, el)
	return args.Bool(0), args.Error(1)
}

func (m *MockDriver) SetText(ctx context.Context, el driver.Element, text string) error {
	args := m.Called(ctx, el, text)
	return args.Error(0)
}

func (m *MockDriver) SendKeys(ctx context.Context, el driver.Element, keys string) error {
	args := m.Called(ctx, el, keys)
	return args.Error(0)
}

func (m *MockDriver) Clear(ctx context.Context, el driver.Element) error {
	args := m.Called(ctx, el)
	return args.Error(0)
}

func (m *MockDriver) SelectValue(ctx context.Context, el driver.Element, value string) error {
	args := m.Called(ctx, el, value)
	return args.Error(0)
}

func (m *MockDriver) ReadText(ctx context.Context, el driver.Element) (string, error) {
	args := m.Called(ctx, el)
	return args.String(0), args.Error(1)
}

func (m *MockDriver) GetAttribute(ctx context.Context, el driver.Element, name string) (string, error) {
	args := m.Called(ctx, el, name)
	return args.String(0), args.Error(1)
}

func (m *MockDriver) Close() error {
	args := m.Called()
	return args.Error(0)
}
