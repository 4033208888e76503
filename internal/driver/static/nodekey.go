// internal/driver/static/nodekey.go
package static

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// nodeKey builds an XPath that locates n in its document. The walk stops at
// the nearest ancestor carrying an id, which keeps keys short and readable in
// logs ("//*[@id='FNSR000123']/td[2]/input[1]").
func nodeKey(n *html.Node) string {
	if n == nil {
		return ""
	}

	var steps []string
	for cur := n; cur != nil && cur.Type != html.DocumentNode; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		tag := strings.ToLower(cur.Data)
		if id := htmlquery.SelectAttr(cur, "id"); id != "" {
			steps = append(steps, fmt.Sprintf("//*[@id='%s']", id))
			break
		}
		steps = append(steps, fmt.Sprintf("%s[%d]", tag, siblingIndex(cur, tag)))
	}
	if len(steps) == 0 {
		return "/"
	}

	var b strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		if i == len(steps)-1 && strings.HasPrefix(steps[i], "//") {
			b.WriteString(steps[i])
			continue
		}
		b.WriteString("/")
		b.WriteString(steps[i])
	}
	return b.String()
}

// siblingIndex is the 1-based position of n among preceding siblings with the
// same tag.
func siblingIndex(n *html.Node, tag string) int {
	idx := 1
	for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
		if prev.Type == html.ElementNode && strings.ToLower(prev.Data) == tag {
			idx++
		}
	}
	return idx
}
