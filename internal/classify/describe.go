// internal/classify/describe.go
package classify

// Description is everything the rules derive from a single piece of text.
type Description struct {
	Text                string
	OverallSatisfaction bool
	ProblemExperience   bool
	Likelihood          Profile
	Satisfaction        Profile
	Checkbox            CheckboxRule
}

// Describe runs every text rule against text.
func Describe(text string) Description {
	return Description{
		Text:                text,
		OverallSatisfaction: IsOverallSatisfaction(text),
		ProblemExperience:   IsProblemExperience(text),
		Likelihood:          ScaleProfile(text, ScaleLikelihood),
		Satisfaction:        ScaleProfile(text, ScaleSatisfaction),
		Checkbox:            CheckboxRuleFor(text),
	}
}
