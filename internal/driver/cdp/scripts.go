// internal/driver/cdp/scripts.go
package cdp

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// tagAttr marks nodes returned by FindElements so later calls can address
// them with a plain attribute selector.
const tagAttr = "data-surveyor-id"

// findScript evaluates an XPath against the document or a tagged scope and
// tags every element result. Tags combine a per-document token with a
// counter, so a handle from a previous page never matches a node on the
// current one.
func findScript(scopeID, xpath string) string {
	return fmt.Sprintf(`(function(scopeId, xp, attr) {
	let root = document;
	if (scopeId) {
		root = document.querySelector('[' + attr + '="' + scopeId + '"]');
		if (!root) return {stale: true};
	}
	if (!window.__surveyorToken) {
		window.__surveyorToken = Math.random().toString(36).slice(2, 10);
		window.__surveyorSeq = 0;
	}
	const snap = document.evaluate(xp, root, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	const ids = [];
	for (let i = 0; i < snap.snapshotLength; i++) {
		const node = snap.snapshotItem(i);
		if (node.nodeType !== Node.ELEMENT_NODE) continue;
		let id = node.getAttribute(attr);
		if (!id) {
			window.__surveyorSeq++;
			id = window.__surveyorToken + '-' + window.__surveyorSeq;
			node.setAttribute(attr, id);
		}
		ids.push(id);
	}
	return {value: ids};
})(%s, %s, %s)`, jsonEncode(scopeID), jsonEncode(xpath), jsonEncode(tagAttr))
}

// elementScript wraps body so that it runs with el bound to the tagged node,
// or reports staleness when the node is gone. body must return {value: ...}.
func elementScript(id, body string) string {
	return fmt.Sprintf(`(function(id, attr) {
	const el = document.querySelector('[' + attr + '="' + id + '"]');
	if (!el) return {stale: true};
	%s
})(%s, %s)`, body, jsonEncode(id), jsonEncode(tagAttr))
}

const (
	visibleBody = `const r = el.getBoundingClientRect();
	const s = window.getComputedStyle(el);
	return {value: r.width > 0 && r.height > 0 && s.display !== 'none' && s.visibility !== 'hidden'};`

	enabledBody = `return {value: !el.disabled};`

	clickBody = `el.scrollIntoView({block: 'center', inline: 'center'});
	el.click();
	return {value: true};`

	readTextBody = `return {value: el.tagName === 'TEXTAREA' ? el.value : (el.innerText || el.textContent || '')};`

	presentBody = `return {value: true};`
)

func setValueBody(v string) string {
	return fmt.Sprintf(`el.value = %s;
	el.dispatchEvent(new Event('input', {bubbles: true}));
	el.dispatchEvent(new Event('change', {bubbles: true}));
	return {value: true};`, jsonEncode(v))
}

func selectBody(v string) string {
	return fmt.Sprintf(`const opt = Array.from(el.options || []).find(o => o.value === %s);
	if (!opt) return {value: false};
	el.value = opt.value;
	el.dispatchEvent(new Event('change', {bubbles: true}));
	return {value: true};`, jsonEncode(v))
}

func attributeBody(name string) string {
	return fmt.Sprintf(`const name = %s;
	if (name === 'value' && 'value' in el) return {value: String(el.value)};
	const v = el.getAttribute(name);
	return {value: v === null ? '' : v};`, jsonEncode(name))
}

// evalResult is the envelope every script returns.
type evalResult struct {
	Stale bool                `json:"stale"`
	Value jsoniter.RawMessage `json:"value"`
}

func jsonEncode(v interface{}) string {
	b, err := jsoniter.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}
