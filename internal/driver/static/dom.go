// internal/driver/static/dom.go
package static

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// visible approximates rendered visibility from markup alone: a node is hidden
// when it or any ancestor carries the hidden attribute, a "hidden" class, or
// an inline display:none / visibility:hidden style. Hidden inputs are never
// visible.
func visible(n *html.Node) bool {
	if strings.EqualFold(n.Data, "input") && strings.EqualFold(htmlquery.SelectAttr(n, "type"), "hidden") {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if hasAttr(cur, "hidden") || hasClass(cur, "hidden") {
			return false
		}
		style := strings.ReplaceAll(strings.ToLower(htmlquery.SelectAttr(cur, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

// closestDialog returns the nearest ancestor acting as a modal dialog.
func closestDialog(n *html.Node) *html.Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if strings.EqualFold(cur.Data, "dialog") || strings.EqualFold(htmlquery.SelectAttr(cur, "role"), "dialog") {
			return cur
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(htmlquery.SelectAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, name, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

func removeAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != name {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// value reads the current form value: text content for textareas, the value
// attribute for everything else.
func value(n *html.Node) string {
	if strings.EqualFold(n.Data, "textarea") {
		return htmlquery.InnerText(n)
	}
	return htmlquery.SelectAttr(n, "value")
}

func setValue(n *html.Node, v string) {
	if !strings.EqualFold(n.Data, "textarea") {
		setAttr(n, "value", v)
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if v != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: v})
	}
}
