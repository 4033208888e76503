// internal/classify/profiles.go
package classify

import "strings"

// Scale is the wording family of a five point question.
type Scale string

const (
	ScaleLikelihood   Scale = "likelihood"
	ScaleSatisfaction Scale = "satisfaction"
)

// Profile is a named weight vector. Weights are listed in page order, which
// for five point scales runs from rank 5 down to rank 1.
type Profile struct {
	Name    string
	Weights []float64
}

type scaleRule struct {
	name     string
	keywords []string
	weights  []float64
}

// scaleRules are checked in order against the lowercased question text.
var scaleRules = []scaleRule{
	{"recommend", []string{"recommend"}, []float64{0.70, 0.20, 0.07, 0.02, 0.01}},
	{"return", []string{"return"}, []float64{0.60, 0.25, 0.10, 0.04, 0.01}},
	{"shake", []string{"shake"}, []float64{0.70, 0.20, 0.07, 0.02, 0.01}},
	{"frozen-dessert", []string{"mcflurry", "cone"}, []float64{0.65, 0.25, 0.07, 0.02, 0.01}},
	{"breakfast", []string{"breakfast", "bagel", "muffin"}, []float64{0.50, 0.30, 0.15, 0.04, 0.01}},
}

var (
	defaultLikelihood   = Profile{"likelihood-default", []float64{0.50, 0.30, 0.15, 0.04, 0.01}}
	defaultSatisfaction = Profile{"satisfaction-default", []float64{0.60, 0.25, 0.10, 0.04, 0.01}}
)

// ScaleProfile picks the weight profile for a five point question.
func ScaleProfile(text string, scale Scale) Profile {
	lower := strings.ToLower(text)
	for _, r := range scaleRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return Profile{Name: r.name, Weights: clone(r.weights)}
			}
		}
	}
	if scale == ScaleSatisfaction {
		return Profile{Name: defaultSatisfaction.Name, Weights: clone(defaultSatisfaction.Weights)}
	}
	return Profile{Name: defaultLikelihood.Name, Weights: clone(defaultLikelihood.Weights)}
}

// ProblemReportedProbability is the chance that a guest reported the problem
// a not-applicable question asks about.
const ProblemReportedProbability = 0.3

// NAProfile picks the six slot weights of a satisfaction question with a
// trailing not-applicable column. The last slot is N/A.
func NAProfile(text string, reported bool) Profile {
	switch {
	case !reported:
		return Profile{"na-not-reported", []float64{0, 0, 0, 0, 0, 1.00}}
	case strings.Contains(strings.ToLower(text), "problem"):
		return Profile{"na-problem", []float64{0.20, 0.30, 0.20, 0.15, 0.15, 0}}
	default:
		return Profile{"na-reported", []float64{0.50, 0.30, 0.10, 0.05, 0.05, 0}}
	}
}

func clone(w []float64) []float64 {
	out := make([]float64, len(w))
	copy(out, w)
	return out
}

var ratingLabels = map[Scale][6]string{
	ScaleLikelihood:   {"", "Not At All Likely", "Not Very Likely", "Somewhat Likely", "Likely", "Highly Likely"},
	ScaleSatisfaction: {"", "Highly Dissatisfied", "Dissatisfied", "Neutral", "Satisfied", "Highly Satisfied"},
}

// RatingLabel names a rank on a scale, or returns "" for ranks outside 1-5.
func RatingLabel(scale Scale, rank int) string {
	labels, ok := ratingLabels[scale]
	if !ok || rank < 1 || rank > 5 {
		return ""
	}
	return labels[rank]
}
