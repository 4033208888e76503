// internal/classify/classify.go

// Package classify maps what a survey page shows (question text, option
// labels and the structural classes of the markup) onto a closed set of
// question archetypes, categories and answer weight profiles. Everything here
// is a pure function of strings, so the rules can be tested without a page.
package classify

import (
	"fmt"
	"strings"
)

// Archetype is the kind of question construct found on a page.
type Archetype string

const (
	Likelihood          Archetype = "likelihood"
	Satisfaction        Archetype = "satisfaction"
	SatisfactionNA      Archetype = "satisfaction-na"
	OverallSatisfaction Archetype = "overall-satisfaction"
	Dropdown            Archetype = "dropdown"
	CheckboxGroup       Archetype = "checkbox-group"
	ProblemReport       Archetype = "problem-report"
	TableRadio          Archetype = "table-radio"
	Radio               Archetype = "radio"
	FreeText            Archetype = "free-text"
)

// Archetypes lists every archetype. Likelihood comes first because it is
// handled before everything else on a page.
func Archetypes() []Archetype {
	return []Archetype{
		Likelihood, FreeText, Dropdown, Radio, TableRadio, CheckboxGroup,
		ProblemReport, SatisfactionNA, Satisfaction, OverallSatisfaction,
	}
}

// ParseArchetype resolves a configured archetype name.
func ParseArchetype(s string) (Archetype, error) {
	name := Archetype(strings.ToLower(strings.TrimSpace(s)))
	for _, a := range Archetypes() {
		if a == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown question archetype %q", s)
}

// Structural class markers used by the survey markup.
const (
	markerLikelihood   = "HighlyLikelyDESC"
	markerSatisfaction = "HighlySatisfiedNeitherDESC"
	markerTableRadio   = "Inputtyperbl"
	markerOptions      = "inputtypeopt"
	markerRadioGroup   = "inputtyperblv"
)

// TableArchetype classifies one row of a radio table from the table's class
// attribute, whether the table has a not-applicable column, and the row
// text. It returns "" for tables that carry no known marker.
func TableArchetype(class string, hasNA bool, rowText string) Archetype {
	switch {
	case strings.Contains(class, markerLikelihood):
		return Likelihood
	case strings.Contains(class, markerSatisfaction):
		if hasNA {
			return SatisfactionNA
		}
		if IsOverallSatisfaction(rowText) {
			return OverallSatisfaction
		}
		return Satisfaction
	case strings.Contains(class, markerTableRadio):
		return TableRadio
	}
	return ""
}

// FieldsetArchetype classifies a fieldset from its class and legend text.
func FieldsetArchetype(class, legend string) Archetype {
	switch {
	case strings.Contains(class, markerOptions):
		if IsProblemExperience(legend) {
			return ProblemReport
		}
		return CheckboxGroup
	case strings.Contains(class, markerRadioGroup):
		return Radio
	}
	return ""
}

// IsOverallSatisfaction reports whether text is the overall satisfaction
// question, which is always answered with the top rank.
func IsOverallSatisfaction(text string) bool {
	return strings.Contains(strings.ToLower(text), "overall satisfaction")
}

// IsProblemExperience reports whether a checkbox legend asks which problem
// the guest experienced.
func IsProblemExperience(legend string) bool {
	return strings.Contains(strings.ToLower(legend), "problem you experienced")
}

// containsFold reports whether s contains any of subs, ignoring case.
func containsFold(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// MatchesAny reports whether label contains any keyword, ignoring case.
func MatchesAny(label string, keywords []string) bool {
	return containsFold(label, keywords...)
}

// HasKeyword reports whether label contains any keyword exactly as written.
// Menu item keywords are capitalised, so "Cone" does not match "Scone".
func HasKeyword(label string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}
