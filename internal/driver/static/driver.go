// internal/driver/static/driver.go

// Package static implements driver.Driver over a fixed sequence of recorded
// HTML pages held in memory. Submitting a page (clicking a submit input or the
// NextButton control) loads the next recorded page. Every mutating call is
// recorded so callers can replay or assert on the exact interaction.
package static

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/surveyor/internal/driver"
)

// Call is one recorded driver interaction.
type Call struct {
	Op  string
	Key string
	Arg string
}

func (c Call) String() string {
	if c.Arg == "" {
		return fmt.Sprintf("%s %s", c.Op, c.Key)
	}
	return fmt.Sprintf("%s %s %q", c.Op, c.Key, c.Arg)
}

type element struct {
	node *html.Node
	gen  int
	key  string
}

func (e *element) Key() string { return e.key }

// Driver serves recorded pages.
type Driver struct {
	logger *zap.Logger
	pages  []string

	mu     sync.Mutex
	doc    *html.Node
	page   int
	gen    int
	url    string
	calls  []Call
	closed bool
	once   sync.Once
}

var _ driver.Driver = (*Driver)(nil)

// New returns a driver that serves pages in order.
func New(logger *zap.Logger, pages ...string) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{logger: logger.Named("static"), pages: pages, page: -1}
}

// NewFromFiles reads each file as one recorded page.
func NewFromFiles(logger *zap.Logger, paths ...string) (*Driver, error) {
	pages := make([]string, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read recorded page: %w", err)
		}
		pages = append(pages, string(b))
	}
	return New(logger, pages...), nil
}

// Calls returns a copy of the recorded interactions.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// PageIndex is the zero-based index of the page currently loaded, or -1
// before Navigate.
func (d *Driver) PageIndex() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page
}

// URL returns the last navigated URL.
func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

// Closed reports whether Close has been called.
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Document exposes the live document of the current page for assertions.
func (d *Driver) Document() *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc
}

func (d *Driver) record(op string, el *element, arg string) {
	key := ""
	if el != nil {
		key = el.key
	}
	d.calls = append(d.calls, Call{Op: op, Key: key, Arg: arg})
}

func (d *Driver) load(i int) error {
	doc, err := htmlquery.Parse(strings.NewReader(d.pages[i]))
	if err != nil {
		return fmt.Errorf("failed to parse recorded page %d: %w", i, err)
	}
	d.doc = doc
	d.page = i
	d.gen++
	d.logger.Debug("Loaded recorded page.", zap.Int("page", i))
	return nil
}

// resolve turns a handle into its node, checking it still belongs to the
// current page.
func (d *Driver) resolve(el driver.Element) (*element, error) {
	if d.closed {
		return nil, driver.ErrClosed
	}
	e, ok := el.(*element)
	if !ok || e == nil {
		return nil, fmt.Errorf("foreign element handle %T", el)
	}
	if e.gen != d.gen {
		return nil, driver.ErrStaleElement
	}
	return e, nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return driver.ErrClosed
	}
	if len(d.pages) == 0 {
		return fmt.Errorf("no recorded pages to serve for %s", url)
	}
	d.url = url
	d.record("navigate", nil, url)
	return d.load(0)
}

func (d *Driver) FindElements(ctx context.Context, scope driver.Element, desc driver.Descriptor) ([]driver.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, driver.ErrClosed
	}
	if d.doc == nil {
		return nil, nil
	}

	root := d.doc
	if scope != nil {
		e, err := d.resolve(scope)
		if err != nil {
			return nil, err
		}
		root = e.node
	}

	nodes, err := htmlquery.QueryAll(root, desc.String())
	if err != nil {
		return nil, fmt.Errorf("invalid descriptor %q: %w", desc, err)
	}
	out := make([]driver.Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		out = append(out, &element{node: n, gen: d.gen, key: nodeKey(n)})
	}
	return out, nil
}

func (d *Driver) IsVisible(ctx context.Context, el driver.Element) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.resolve(el)
	if err != nil {
		return false, err
	}
	return visible(e.node), nil
}

func (d *Driver) IsEnabled(ctx context.Context, el driver.Element) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.resolve(el)
	if err != nil {
		return false, err
	}
	return !hasAttr(e.node, "disabled"), nil
}

func (d *Driver) Click(ctx context.Context, el driver.Element) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.resolve(el)
	if err != nil {
		return false, err
	}
	if !visible(e.node) || hasAttr(e.node, "disabled") {
		return false, nil
	}
	d.record("click", e, "")
	return true, d.activate(e.node)
}

// activate applies the default action of a click on n.
func (d *Driver) activate(n *html.Node) error {
	tag := strings.ToLower(n.Data)
	typ := strings.ToLower(htmlquery.SelectAttr(n, "type"))

	switch {
	case tag == "label":
		if target := d.byID(htmlquery.SelectAttr(n, "for")); target != nil {
			return d.activate(target)
		}
	case htmlquery.SelectAttr(n, "id") == "NextButton" || typ == "submit":
		return d.submit()
	case tag == "input" && typ == "radio":
		name := htmlquery.SelectAttr(n, "name")
		for _, other := range htmlquery.Find(d.doc, fmt.Sprintf("//input[@type='radio' and @name='%s']", name)) {
			removeAttr(other, "checked")
		}
		setAttr(n, "checked", "checked")
	case tag == "input" && typ == "checkbox":
		if hasAttr(n, "checked") {
			removeAttr(n, "checked")
		} else {
			setAttr(n, "checked", "checked")
		}
	}

	if dialog := closestDialog(n); dialog != nil {
		setAttr(dialog, "style", "display:none")
	}
	return nil
}

func (d *Driver) submit() error {
	next := d.page + 1
	if next >= len(d.pages) {
		d.logger.Debug("Submit on the last recorded page; staying put.", zap.Int("page", d.page))
		return nil
	}
	return d.load(next)
}

func (d *Driver) byID(id string) *html.Node {
	if id == "" {
		return nil
	}
	return htmlquery.FindOne(d.doc, fmt.Sprintf("//*[@id='%s']", id))
}

func (d *Driver) SetText(ctx context.Context, el driver.Element, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.resolve(el)
	if err != nil {
		return err
	}
	d.record("set_text", e, text)
	setValue(e.node, text)
	return nil
}

func (d *Driver) SendKeys(ctx context.Context, el driver.Element, keys string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.resolve(el)
	if err != nil {
		return err
	}
	d.record("send_keys", e, keys)
	setValue(e.node, value(e.node)+keys)
	return nil
}

func (d *Driver) Clear(ctx context.Context, el driver.Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.resolve(el)
	if err != nil {
		return err
	}
	d.record("clear", e, "")
	setValue(e.node, "")
	return nil
}

func (d *Driver) SelectValue(ctx context.Context, el driver.Element, v string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.resolve(el)
	if err != nil {
		return err
	}
	if !strings.EqualFold(e.node.Data, "select") {
		return fmt.Errorf("element %s is a <%s>, not a <select>", e.key, e.node.Data)
	}

	var chosen *html.Node
	for _, opt := range htmlquery.Find(e.node, ".//option") {
		removeAttr(opt, "selected")
		if chosen == nil && htmlquery.SelectAttr(opt, "value") == v {
			chosen = opt
		}
	}
	if chosen == nil {
		return fmt.Errorf("select %s has no option with value %q", e.key, v)
	}
	setAttr(chosen, "selected", "selected")
	d.record("select", e, v)
	return nil
}

func (d *Driver) ReadText(ctx context.Context, el driver.Element) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.resolve(el)
	if err != nil {
		return "", err
	}
	return htmlquery.InnerText(e.node), nil
}

func (d *Driver) GetAttribute(ctx context.Context, el driver.Element, name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.resolve(el)
	if err != nil {
		return "", err
	}
	if name == "value" {
		return value(e.node), nil
	}
	return htmlquery.SelectAttr(e.node, name), nil
}

func (d *Driver) Close() error {
	d.once.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.closed = true
		d.record("close", nil, "")
	})
	return nil
}
