// internal/policy/decision.go
package policy

import "strings"

// Kind is the shape of an answer decision.
type Kind int

const (
	Skip Kind = iota
	Single
	Multi
	Text
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case Multi:
		return "multi"
	case Text:
		return "text"
	default:
		return "skip"
	}
}

// Option is one selectable answer of a question, in page order.
type Option struct {
	ID    string
	Label string
	Value string
	// Rank is 1-5 on scaled questions and 0 for unordered choices.
	Rank int
}

// Decision is what a policy chose for one question.
type Decision struct {
	Kind Kind
	// Indices point into the options the policy was given.
	Indices []int
	// Text is the literal text to type: the comment of a free-text question
	// or the detail of an "Other" problem option.
	Text string
	// Label is a human readable summary of the choice.
	Label string
	// Profile names the weight profile that produced the choice, if any.
	Profile string
	// Reason explains a skip.
	Reason string
}

// Skipped reports whether nothing should be entered.
func (d Decision) Skipped() bool { return d.Kind == Skip }

func skip(reason string) Decision {
	return Decision{Kind: Skip, Reason: reason}
}

func single(opts []Option, i int, label string) Decision {
	if label == "" {
		label = opts[i].Label
	}
	return Decision{Kind: Single, Indices: []int{i}, Label: label}
}

func multi(opts []Option, idx []int) Decision {
	labels := make([]string, len(idx))
	for i, j := range idx {
		labels[i] = opts[j].Label
	}
	return Decision{Kind: Multi, Indices: idx, Label: strings.Join(labels, ", ")}
}
