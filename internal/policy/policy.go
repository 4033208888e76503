// internal/policy/policy.go

// Package policy decides how to answer each question archetype. Policies are
// pure functions of the question text, its visible options and a random
// source: they never touch a page and never fail. A question that cannot be
// answered sensibly yields a Skip decision carrying the reason.
package policy

import (
	"fmt"
	"math/rand"

	"github.com/xkilldash9x/surveyor/internal/classify"
)

// SeriousProblemProbability is the chance that a problem report describes a
// serious incident with several problems.
const SeriousProblemProbability = 0.2

// Policies holds the random source shared by every policy of a run. It is
// not safe for concurrent use.
type Policies struct {
	rng *rand.Rand
}

// New returns policies drawing from rng.
func New(rng *rand.Rand) *Policies {
	return &Policies{rng: rng}
}

// Scale answers a five point likelihood or satisfaction question with the
// weight profile its text selects.
func (p *Policies) Scale(text string, scale classify.Scale, opts []Option) Decision {
	prof := classify.ScaleProfile(text, scale)
	d := p.weighted(prof, opts)
	if !d.Skipped() {
		if label := classify.RatingLabel(scale, opts[d.Indices[0]].Rank); label != "" {
			d.Label = label
		}
	}
	return d
}

// Overall always picks the top rank of a satisfaction question.
func (p *Policies) Overall(opts []Option) Decision {
	for i, o := range opts {
		if o.Rank == 5 {
			return single(opts, i, classify.RatingLabel(classify.ScaleSatisfaction, 5))
		}
	}
	return skip("no rank 5 option visible")
}

// SatisfactionNA answers a six slot satisfaction question whose last slot is
// not applicable. The problem is assumed reported with
// classify.ProblemReportedProbability; otherwise N/A is chosen.
func (p *Policies) SatisfactionNA(text string, opts []Option) Decision {
	reported := p.rng.Float64() < classify.ProblemReportedProbability
	return p.weighted(classify.NAProfile(text, reported), opts)
}

func (p *Policies) weighted(prof classify.Profile, opts []Option) Decision {
	if len(opts) == 0 {
		return skip("no visible options")
	}
	if len(prof.Weights) != len(opts) {
		return skip(fmt.Sprintf("profile %s has %d weights for %d visible options", prof.Name, len(prof.Weights), len(opts)))
	}
	i, ok := SampleWeighted(p.rng, prof.Weights)
	if !ok {
		return skip(fmt.Sprintf("profile %s has no positive weight", prof.Name))
	}
	d := single(opts, i, "")
	d.Profile = prof.Name
	return d
}

// SampleWeighted draws an index with probability proportional to its weight.
// Zero and negative weights are never drawn. It reports false when no weight
// is positive.
func SampleWeighted(rng *rand.Rand, weights []float64) (int, bool) {
	total, last := 0.0, -1
	for i, w := range weights {
		if w > 0 {
			total += w
			last = i
		}
	}
	if last < 0 {
		return 0, false
	}
	r := rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			return i, true
		}
		r -= w
	}
	// Rounding can leave r a hair above the final weight.
	return last, true
}

// Dropdown picks uniformly among the options that are real answers.
func (p *Policies) Dropdown(opts []Option) Decision {
	var valid []int
	for i, o := range opts {
		if !classify.IsPlaceholderOption(o.Label, o.Value) {
			valid = append(valid, i)
		}
	}
	if len(valid) == 0 {
		return skip("no answerable dropdown options")
	}
	return single(opts, valid[p.rng.Intn(len(valid))], "")
}

// Uniform picks one option uniformly. It serves table radios and standalone
// radio groups.
func (p *Policies) Uniform(opts []Option) Decision {
	if len(opts) == 0 {
		return skip("no visible options")
	}
	return single(opts, p.rng.Intn(len(opts)), "")
}

// Checkbox selects distinct options of a multi-select group. Keyword groups
// prefer matching options up to the group's cap; without matches, and for
// generic groups, a uniform count between 1 and the cap is drawn.
func (p *Policies) Checkbox(legend string, opts []Option) Decision {
	if len(opts) == 0 {
		return skip("no visible options")
	}
	rule := classify.CheckboxRuleFor(legend)

	var matches []int
	if len(rule.Keywords) > 0 {
		for i, o := range opts {
			if classify.HasKeyword(o.Label, rule.Keywords) {
				matches = append(matches, i)
			}
		}
	}

	var chosen []int
	if len(matches) > 0 {
		k := min(rule.Cap, max(1, len(matches)))
		chosen = p.sample(matches, k)
	} else {
		k := 1 + p.rng.Intn(min(rule.Cap, len(opts)))
		chosen = p.sample(indices(len(opts)), k)
	}
	return multi(opts, chosen)
}

// ProblemReport answers the "problem you experienced" group. A serious
// incident selects between two and four problems, common ones first, and
// writes a complaint into the "Other" field when hasOther is set. Otherwise a
// single minor problem is reported.
func (p *Policies) ProblemReport(opts []Option, hasOther bool) Decision {
	n := len(opts)
	if n == 0 {
		return skip("no visible options")
	}

	if p.rng.Float64() < SeriousProblemProbability {
		k := n
		if n >= 2 {
			k = 2 + p.rng.Intn(min(4, n)-1)
		}
		var chosen []int
		taken := make(map[int]bool, k)
		for i, o := range opts {
			if len(chosen) == k {
				break
			}
			if classify.MatchesAny(o.Label, classify.CommonProblems) {
				chosen = append(chosen, i)
				taken[i] = true
			}
		}
		if len(chosen) < k {
			var rest []int
			for i := range opts {
				if !taken[i] {
					rest = append(rest, i)
				}
			}
			chosen = append(chosen, p.sample(rest, k-len(chosen))...)
		}
		d := multi(opts, chosen)
		d.Profile = "serious"
		if hasOther {
			d.Text = classify.ComplaintTemplates[p.rng.Intn(len(classify.ComplaintTemplates))]
		}
		return d
	}

	for i, o := range opts {
		if classify.MatchesAny(o.Label, classify.MinorProblems) {
			d := single(opts, i, "")
			d.Profile = "minor"
			return d
		}
	}
	d := single(opts, p.rng.Intn(n), "")
	d.Profile = "minor"
	return d
}

// FreeText picks one of the comment templates.
func (p *Policies) FreeText() Decision {
	c := classify.CommentTemplates[p.rng.Intn(len(classify.CommentTemplates))]
	return Decision{Kind: Text, Text: c, Label: c}
}

// sample draws k distinct elements of pool, in draw order.
func (p *Policies) sample(pool []int, k int) []int {
	if k > len(pool) {
		k = len(pool)
	}
	shuffled := append([]int(nil), pool...)
	p.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:k]
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
