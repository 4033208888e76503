// internal/policy/policy_test.go
package policy

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/surveyor/internal/classify"
)

const trials = 20000

// chiSquareCritical holds generous critical values (p < 0.0001) by degrees of
// freedom, so a fixed seed never sits near the edge.
var chiSquareCritical = map[int]float64{1: 15.14, 2: 18.42, 3: 21.11, 4: 23.51, 5: 25.74}

func newPolicies(seed int64) *Policies {
	return New(rand.New(rand.NewSource(seed)))
}

func scaleOptions(n int) []Option {
	opts := make([]Option, n)
	for i := range opts {
		rank := n - i
		opts[i] = Option{ID: fmt.Sprintf("r%d", rank), Label: fmt.Sprintf("%d", rank), Value: fmt.Sprintf("%d", rank), Rank: rank}
	}
	return opts
}

// assertDistribution runs a chi-squared goodness-of-fit test. Cells with zero
// expected probability must never be hit and are left out of the statistic.
func assertDistribution(t *testing.T, counts []int, weights []float64) {
	t.Helper()
	require.Len(t, counts, len(weights))
	total := 0
	for _, c := range counts {
		total += c
	}
	stat, df := 0.0, -1
	for i, w := range weights {
		if w == 0 {
			assert.Zero(t, counts[i], "zero-weight slot %d was selected", i)
			continue
		}
		expected := w * float64(total)
		diff := float64(counts[i]) - expected
		stat += diff * diff / expected
		df++
	}
	if df < 1 {
		return
	}
	assert.Less(t, stat, chiSquareCritical[df], "chi-squared %.2f with %d degrees of freedom; counts %v", stat, df, counts)
}

func TestSampleWeighted(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	weights := []float64{0.1, 0, 0.6, 0.3}
	counts := make([]int, len(weights))
	for i := 0; i < trials; i++ {
		idx, ok := SampleWeighted(rng, weights)
		require.True(t, ok)
		counts[idx]++
	}
	assertDistribution(t, counts, weights)

	_, ok := SampleWeighted(rng, []float64{0, 0})
	assert.False(t, ok)
	_, ok = SampleWeighted(rng, nil)
	assert.False(t, ok)
	idx, ok := SampleWeighted(rng, []float64{0, -1, 2})
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestScaleConvergence(t *testing.T) {
	cases := []struct {
		text  string
		scale classify.Scale
	}{
		{"How likely are you to recommend us?", classify.ScaleLikelihood},
		{"How likely are you to return?", classify.ScaleLikelihood},
		{"Anything else likely?", classify.ScaleLikelihood},
		{"Taste of your shake", classify.ScaleSatisfaction},
		{"Temperature of your McFlurry", classify.ScaleSatisfaction},
		{"Your bagel", classify.ScaleSatisfaction},
		{"Speed of service", classify.ScaleSatisfaction},
	}
	for i, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			p := newPolicies(int64(100 + i))
			opts := scaleOptions(5)
			counts := make([]int, 5)
			for n := 0; n < trials; n++ {
				d := p.Scale(tc.text, tc.scale, opts)
				require.Equal(t, Single, d.Kind)
				counts[d.Indices[0]]++
			}
			assertDistribution(t, counts, classify.ScaleProfile(tc.text, tc.scale).Weights)
		})
	}
}

func TestScaleRecommendUsesRecommendProfile(t *testing.T) {
	p := newPolicies(1)
	d := p.Scale("How likely are you to RECOMMEND this McDonald's?", classify.ScaleLikelihood, scaleOptions(5))
	assert.Equal(t, "recommend", d.Profile)
	assert.Contains(t, []string{"Highly Likely", "Likely", "Somewhat Likely", "Not Very Likely", "Not At All Likely"}, d.Label)
}

func TestScaleMismatchSkips(t *testing.T) {
	p := newPolicies(2)
	for _, n := range []int{0, 1, 4, 6} {
		d := p.Scale("How likely are you to recommend us?", classify.ScaleLikelihood, scaleOptions(n))
		assert.Equal(t, Skip, d.Kind, "n=%d", n)
		assert.Empty(t, d.Indices)
		assert.NotEmpty(t, d.Reason)
	}
}

func TestOverall(t *testing.T) {
	p := newPolicies(3)
	opts := scaleOptions(5)
	for i := 0; i < 100; i++ {
		d := p.Overall(opts)
		require.Equal(t, Single, d.Kind)
		assert.Equal(t, 5, opts[d.Indices[0]].Rank)
		assert.Equal(t, "Highly Satisfied", d.Label)
	}
	assert.True(t, p.Overall(scaleOptions(4)).Skipped(), "without a rank 5 option there is nothing to force")
}

func TestSatisfactionNA(t *testing.T) {
	opts := append(scaleOptions(5), Option{ID: "na", Label: "N/A", Value: "9", Rank: 0})

	t.Run("N/A is chosen with probability 0.7", func(t *testing.T) {
		p := newPolicies(4)
		na, reportedCounts := 0, make([]int, 6)
		for i := 0; i < trials; i++ {
			d := p.SatisfactionNA("Speed of the fix", opts)
			require.Equal(t, Single, d.Kind)
			if d.Profile == "na-not-reported" {
				require.Equal(t, 5, d.Indices[0])
				na++
				continue
			}
			require.NotEqual(t, 5, d.Indices[0], "N/A must never be chosen once a problem was reported")
			reportedCounts[d.Indices[0]]++
		}
		assertDistribution(t, []int{trials - na, na}, []float64{0.3, 0.7})
		assertDistribution(t, reportedCounts, classify.NAProfile("Speed of the fix", true).Weights)
	})

	t.Run("problem wording uses the problem profile", func(t *testing.T) {
		p := newPolicies(5)
		counts := make([]int, 6)
		for i := 0; i < trials; i++ {
			d := p.SatisfactionNA("How was the problem handled?", opts)
			if d.Profile == "na-problem" {
				counts[d.Indices[0]]++
			}
		}
		assertDistribution(t, counts, classify.NAProfile("problem", true).Weights)
	})

	t.Run("five visible options is a mismatch", func(t *testing.T) {
		p := newPolicies(6)
		for i := 0; i < 50; i++ {
			assert.True(t, p.SatisfactionNA("x", scaleOptions(5)).Skipped())
		}
	})
}

func TestDropdown(t *testing.T) {
	opts := []Option{
		{Label: " - Select One - ", Value: ""},
		{Label: "Under 18", Value: "1"},
		{Label: "18-24", Value: "2"},
		{Label: "", Value: "3"},
		{Label: "Prefer not to answer", Value: "9"},
		{Label: "No deseo responder", Value: "10"},
		{Label: "25-34", Value: ""},
		{Label: "35+", Value: "4"},
	}
	allowed := map[int]bool{1: true, 2: true, 7: true}

	p := newPolicies(7)
	counts := map[int]int{}
	for i := 0; i < 3000; i++ {
		d := p.Dropdown(opts)
		require.Equal(t, Single, d.Kind)
		idx := d.Indices[0]
		require.True(t, allowed[idx], "excluded option %q chosen", opts[idx].Label)
		counts[idx]++
	}
	assert.Len(t, counts, 3, "every valid option is reachable")

	d := p.Dropdown(opts[:1])
	assert.True(t, d.Skipped())
	assert.Equal(t, "no answerable dropdown options", d.Reason)
}

func TestUniform(t *testing.T) {
	p := newPolicies(8)
	opts := []Option{{Label: "Yes"}, {Label: "No"}, {Label: "Maybe"}}
	counts := make([]int, 3)
	for i := 0; i < trials; i++ {
		counts[p.Uniform(opts).Indices[0]]++
	}
	assertDistribution(t, counts, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3})
	assert.True(t, p.Uniform(nil).Skipped())
}

func labelled(labels ...string) []Option {
	opts := make([]Option, len(labels))
	for i, l := range labels {
		opts[i] = Option{ID: fmt.Sprintf("o%d", i), Label: l, Value: fmt.Sprintf("%d", i)}
	}
	return opts
}

func assertDistinct(t *testing.T, idx []int) {
	t.Helper()
	seen := map[int]bool{}
	for _, i := range idx {
		require.False(t, seen[i], "option %d selected twice in %v", i, idx)
		seen[i] = true
	}
}

func TestCheckbox(t *testing.T) {
	t.Run("bakery prefers sweets and caps at two", func(t *testing.T) {
		opts := labelled("Apple Pie", "Oreo McFlurry", "Hot Fudge Sundae", "Chocolate Shake", "Cookie")
		p := newPolicies(9)
		for i := 0; i < 2000; i++ {
			d := p.Checkbox("Which Bakery & Sweet Treats did you order?", opts)
			require.Equal(t, Multi, d.Kind)
			require.Len(t, d.Indices, 2)
			assertDistinct(t, d.Indices)
			for _, idx := range d.Indices {
				assert.Contains(t, []int{1, 2, 3}, idx)
			}
		}
	})

	t.Run("a single sweet match selects exactly it", func(t *testing.T) {
		opts := labelled("Apple Pie", "Vanilla Cone", "Cookie")
		d := newPolicies(10).Checkbox("bakery & sweet treats", opts)
		assert.Equal(t, []int{1}, d.Indices)
		assert.Equal(t, "Vanilla Cone", d.Label)
	})

	t.Run("bakery without matches picks one or two", func(t *testing.T) {
		opts := labelled("Apple Pie", "Cookie", "Cinnamon Roll")
		p := newPolicies(11)
		sizes := map[int]int{}
		for i := 0; i < 2000; i++ {
			d := p.Checkbox("bakery & sweet treats", opts)
			assertDistinct(t, d.Indices)
			sizes[len(d.Indices)]++
		}
		assert.Equal(t, 2, len(sizes))
		assert.Positive(t, sizes[1])
		assert.Positive(t, sizes[2])
	})

	t.Run("keywords match case sensitively", func(t *testing.T) {
		opts := labelled("Scone", "Apple Pie", "Cookie", "Milkshake")
		p := newPolicies(16)
		picked := map[string]int{}
		sizes := map[int]int{}
		for i := 0; i < 1000; i++ {
			d := p.Checkbox("Which Bakery & Sweet Treats did you order?", opts)
			require.Equal(t, Multi, d.Kind)
			assertDistinct(t, d.Indices)
			sizes[len(d.Indices)]++
			for _, idx := range d.Indices {
				picked[opts[idx].Label]++
			}
		}
		assert.Len(t, picked, 4, "every option is reachable through the uniform fallback")
		assert.Positive(t, sizes[1])
		assert.Positive(t, sizes[2])
		assert.Zero(t, sizes[3])
	})

	t.Run("breakfast caps at three", func(t *testing.T) {
		opts := labelled("Hotcakes", "Hashbrown", "Sausage Burrito", "Sausage McGriddle", "Coffee")
		p := newPolicies(12)
		for i := 0; i < 2000; i++ {
			d := p.Checkbox("Which breakfast items did you order?", opts)
			require.Len(t, d.Indices, 3)
			assertDistinct(t, d.Indices)
			assert.NotContains(t, d.Indices, 4)
		}
	})

	t.Run("generic draws between one and three distinct options", func(t *testing.T) {
		opts := labelled("Drive thru", "Kiosk", "Counter", "App", "Delivery")
		p := newPolicies(13)
		sizes := map[int]int{}
		for i := 0; i < trials; i++ {
			d := p.Checkbox("How did you order?", opts)
			assertDistinct(t, d.Indices)
			sizes[len(d.Indices)]++
		}
		assertDistribution(t, []int{sizes[1], sizes[2], sizes[3]}, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3})
		assert.Zero(t, sizes[4])
	})

	t.Run("generic with one option", func(t *testing.T) {
		d := newPolicies(14).Checkbox("x", labelled("Only"))
		assert.Equal(t, []int{0}, d.Indices)
	})

	t.Run("no options", func(t *testing.T) {
		assert.True(t, newPolicies(15).Checkbox("x", nil).Skipped())
	})
}

func TestProblemReport(t *testing.T) {
	opts := labelled("Accuracy of order", "Friendliness of employees", "Quality of food", "Speed of service", "Other (please specify)", "Menu board")

	p := newPolicies(16)
	serious := 0
	for i := 0; i < trials; i++ {
		d := p.ProblemReport(opts, true)
		assertDistinct(t, d.Indices)
		if d.Profile == "serious" {
			serious++
			require.Equal(t, Multi, d.Kind)
			require.GreaterOrEqual(t, len(d.Indices), 2)
			require.LessOrEqual(t, len(d.Indices), 4)
			assert.Equal(t, []int{0, 2}, d.Indices[:2], "common problems come first in page order")
			assert.Contains(t, classify.ComplaintTemplates, d.Text)
			continue
		}
		require.Equal(t, Single, d.Kind)
		assert.Equal(t, []int{1}, d.Indices, "the first minor problem is preferred")
		assert.Empty(t, d.Text)
	}
	assertDistribution(t, []int{serious, trials - serious}, []float64{0.2, 0.8})

	t.Run("no other field means no detail text", func(t *testing.T) {
		p := newPolicies(17)
		for i := 0; i < 200; i++ {
			assert.Empty(t, p.ProblemReport(opts, false).Text)
		}
	})

	t.Run("minor fallback is uniform", func(t *testing.T) {
		p := newPolicies(18)
		plain := labelled("Menu board", "Parking", "Music")
		seen := map[int]bool{}
		for i := 0; i < 2000; i++ {
			d := p.ProblemReport(plain, false)
			if d.Profile == "minor" {
				seen[d.Indices[0]] = true
			}
		}
		assert.Len(t, seen, 3)
	})

	t.Run("a single option is always selected", func(t *testing.T) {
		p := newPolicies(19)
		for i := 0; i < 200; i++ {
			d := p.ProblemReport(labelled("Parking"), false)
			assert.Equal(t, []int{0}, d.Indices)
		}
	})

	t.Run("no options", func(t *testing.T) {
		assert.True(t, newPolicies(20).ProblemReport(nil, true).Skipped())
	})
}

func TestFreeText(t *testing.T) {
	p := newPolicies(21)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		d := p.FreeText()
		require.Equal(t, Text, d.Kind)
		require.Contains(t, classify.CommentTemplates, d.Text)
		seen[d.Text] = true
	}
	assert.Len(t, seen, len(classify.CommentTemplates))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "skip", Skip.String())
	assert.Equal(t, "single", Single.String())
	assert.Equal(t, "multi", Multi.String())
	assert.Equal(t, "text", Text.String())
}
