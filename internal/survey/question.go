// internal/survey/question.go
package survey

import (
	"github.com/xkilldash9x/surveyor/internal/classify"
	"github.com/xkilldash9x/surveyor/internal/driver"
	"github.com/xkilldash9x/surveyor/internal/policy"
)

// Question is one question instance found on the current page. Questions are
// rebuilt on every page pass and hold handles that go stale on navigation.
type Question struct {
	// ID comes from a structural id (row id, element id, input name) and falls
	// back to the element's generated key.
	ID        string
	Archetype classify.Archetype
	Category  classify.Category
	Text      string
	Options   []policy.Option

	// field is the select or textarea of dropdown and free-text questions.
	field driver.Element
	// targets are the click targets, parallel to Options: the option's label
	// when it has one, otherwise the input itself.
	targets []driver.Element
	// inputs are the raw inputs, parallel to Options.
	inputs []driver.Element
	// other is the free-text detail field of an "Other" problem option.
	other driver.Element
}

// HasOther reports whether the question offers a visible "Other" detail field.
func (q *Question) HasOther() bool { return q.other != nil }

// Group is a set of questions paced as one unit, such as the rows of one
// table or the options of one fieldset.
type Group struct {
	Archetype classify.Archetype
	Questions []*Question
}

// answeredSet tracks the questions committed during one page pass.
type answeredSet map[string]struct{}

func newAnsweredSet() answeredSet { return make(answeredSet) }

func (s answeredSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s answeredSet) add(id string) { s[id] = struct{}{} }
