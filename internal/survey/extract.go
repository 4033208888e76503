// internal/survey/extract.go
package survey

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/surveyor/internal/classify"
	"github.com/xkilldash9x/surveyor/internal/driver"
	"github.com/xkilldash9x/surveyor/internal/finder"
	"github.com/xkilldash9x/surveyor/internal/policy"
)

// extractor turns the current page into question groups, one archetype at a
// time. It only reads the page.
type extractor struct {
	find   *finder.Finder
	logger *zap.Logger
}

func newExtractor(f *finder.Finder, logger *zap.Logger) *extractor {
	return &extractor{find: f, logger: logger.Named("extract")}
}

// hasLikelihood reports whether a likelihood table is showing.
func (x *extractor) hasLikelihood(ctx context.Context) bool {
	return len(x.find.FindAll(ctx, nil, likelihoodTables)) > 0
}

// extract returns the visible question groups of archetype a in page order.
func (x *extractor) extract(ctx context.Context, a classify.Archetype) []Group {
	var groups []Group
	switch a {
	case classify.Likelihood:
		groups = x.tableRows(ctx, likelihoodTables, a)
	case classify.Satisfaction, classify.OverallSatisfaction:
		groups = x.tableRows(ctx, satisfactionTables, a)
	case classify.SatisfactionNA:
		groups = x.wholeTables(ctx, satisfactionTables, a)
	case classify.TableRadio:
		groups = x.wholeTables(ctx, radioTables, a)
	case classify.Radio:
		groups = x.radioGroups(ctx)
	case classify.CheckboxGroup, classify.ProblemReport:
		groups = x.optionGroups(ctx, a)
	case classify.Dropdown:
		groups = x.dropdowns(ctx)
	case classify.FreeText:
		groups = x.freeText(ctx)
	}
	if len(groups) > 0 {
		x.logger.Debug("Extracted question groups.", zap.String("archetype", string(a)), zap.Int("groups", len(groups)))
	}
	return groups
}

// tableRows builds one question per row and one group per table. Rows are
// kept only when the row classifies as want, which is how overall
// satisfaction rows are split from the general satisfaction pass.
func (x *extractor) tableRows(ctx context.Context, tables driver.Descriptor, want classify.Archetype) []Group {
	var groups []Group
	for _, table := range x.find.FindAll(ctx, nil, tables) {
		class := x.find.Attr(ctx, table, "class")
		hasNA := x.find.ExistsIn(ctx, table, naColumn)

		g := Group{Archetype: want}
		for _, row := range x.find.FindAll(ctx, table, tableRows) {
			text := x.firstText(ctx, row, rowText)
			if classify.TableArchetype(class, hasNA, text) != want {
				continue
			}
			q := &Question{ID: x.idOf(ctx, row, "id"), Archetype: want, Text: text}
			x.radioOptions(ctx, q, row, radios, table, false)
			g.Questions = append(g.Questions, q)
		}
		if len(g.Questions) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// wholeTables builds one question per table from every radio it contains.
func (x *extractor) wholeTables(ctx context.Context, tables driver.Descriptor, want classify.Archetype) []Group {
	var groups []Group
	for _, table := range x.find.FindAll(ctx, nil, tables) {
		class := x.find.Attr(ctx, table, "class")
		hasNA := x.find.ExistsIn(ctx, table, naColumn)
		text := x.firstText(ctx, table, rowText)
		if classify.TableArchetype(class, hasNA, text) != want {
			continue
		}
		q := &Question{ID: x.tableID(ctx, table), Archetype: want, Text: text}
		x.radioOptions(ctx, q, table, radios, table, false)
		groups = append(groups, Group{Archetype: want, Questions: []*Question{q}})
	}
	return groups
}

func (x *extractor) tableID(ctx context.Context, table driver.Element) string {
	if id := strings.TrimSpace(x.find.Attr(ctx, table, "id")); id != "" {
		return id
	}
	for _, row := range x.find.Query(ctx, table, tableRows) {
		if id := strings.TrimSpace(x.find.Attr(ctx, row, "id")); id != "" {
			return id
		}
	}
	return table.Key()
}

func (x *extractor) radioGroups(ctx context.Context) []Group {
	var groups []Group
	for _, fs := range x.find.FindAll(ctx, nil, radioFieldsets) {
		text := x.firstText(ctx, fs, legend)
		if classify.FieldsetArchetype(x.find.Attr(ctx, fs, "class"), text) != classify.Radio {
			continue
		}
		q := &Question{Archetype: classify.Radio, Text: text}
		x.radioOptions(ctx, q, fs, namedRadios, nil, true)
		q.ID = x.groupID(ctx, fs, q.inputs)
		groups = append(groups, Group{Archetype: classify.Radio, Questions: []*Question{q}})
	}
	return groups
}

// radioOptions collects the visible radios under scope. Labels are looked up
// inside labelScope, or in the whole document when globalLabels is set.
func (x *extractor) radioOptions(ctx context.Context, q *Question, scope driver.Element, d driver.Descriptor, labelScope driver.Element, globalLabels bool) {
	for _, in := range x.find.FindAll(ctx, scope, d) {
		id := x.find.Attr(ctx, in, "id")
		value := x.find.Attr(ctx, in, "value")

		target, text := in, ""
		if id != "" {
			ld, ls := scopedLabelFor(id), labelScope
			if globalLabels || labelScope == nil {
				ld, ls = labelFor(id), nil
			}
			if labels := x.find.Query(ctx, ls, ld); len(labels) > 0 {
				target = labels[0]
				text = x.text(ctx, labels[0])
			}
		}
		if header := x.find.Attr(ctx, in, "aria-labelledby"); header != "" && labelScope != nil {
			if h := x.firstText(ctx, labelScope, scopedByID(header)); h != "" {
				text = h
			}
		}
		if text == "" {
			text = value
		}

		q.Options = append(q.Options, policy.Option{ID: id, Label: text, Value: value, Rank: rankOf(value)})
		q.inputs = append(q.inputs, in)
		q.targets = append(q.targets, target)
	}
}

// rankOf reads a scale rank from an option value. Anything outside 1-5, such
// as the N/A column, has rank 0.
func rankOf(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > 5 {
		return 0
	}
	return n
}

func (x *extractor) optionGroups(ctx context.Context, want classify.Archetype) []Group {
	var groups []Group
	for _, fs := range x.find.FindAll(ctx, nil, optionFieldsets) {
		text := x.firstText(ctx, fs, legend)
		if classify.FieldsetArchetype(x.find.Attr(ctx, fs, "class"), text) != want {
			continue
		}
		q := &Question{Archetype: want, Text: text, Category: classify.CheckboxRuleFor(text).Category}
		if want == classify.ProblemReport {
			q.Category = classify.CategoryProblem
		}

		for _, opt := range x.find.FindAll(ctx, fs, cataOptions) {
			boxes := x.find.Query(ctx, opt, checkbox)
			if len(boxes) == 0 {
				continue
			}
			in := boxes[0]
			target, label := in, ""
			if labels := x.find.Query(ctx, opt, anyLabel); len(labels) > 0 {
				target = labels[0]
				label = x.text(ctx, labels[0])
			}
			value := x.find.Attr(ctx, in, "value")
			if label == "" {
				label = value
			}
			q.Options = append(q.Options, policy.Option{ID: x.find.Attr(ctx, in, "id"), Label: label, Value: value})
			q.inputs = append(q.inputs, in)
			q.targets = append(q.targets, target)
		}

		if want == classify.ProblemReport && len(x.find.FindAll(ctx, fs, otherLabel)) > 0 {
			if in, ok := x.find.Find(ctx, fs, textInput); ok {
				q.other = in
			}
		}
		q.ID = x.groupID(ctx, fs, q.inputs)
		groups = append(groups, Group{Archetype: want, Questions: []*Question{q}})
	}
	return groups
}

// groupID names a fieldset by its id, then by the name its inputs share.
func (x *extractor) groupID(ctx context.Context, fs driver.Element, inputs []driver.Element) string {
	if id := strings.TrimSpace(x.find.Attr(ctx, fs, "id")); id != "" {
		return id
	}
	for _, in := range inputs {
		if name := strings.TrimSpace(x.find.Attr(ctx, in, "name")); name != "" {
			return name
		}
	}
	return fs.Key()
}

func (x *extractor) dropdowns(ctx context.Context) []Group {
	var groups []Group
	for _, sel := range x.find.FindAll(ctx, nil, dropdowns) {
		q := &Question{ID: x.idOf(ctx, sel, "id", "name"), Archetype: classify.Dropdown, field: sel}
		q.Text = x.labelText(ctx, sel)
		for _, opt := range x.find.Query(ctx, sel, selectOptions) {
			q.Options = append(q.Options, policy.Option{
				Label: x.text(ctx, opt),
				Value: x.find.Attr(ctx, opt, "value"),
			})
		}
		groups = append(groups, Group{Archetype: classify.Dropdown, Questions: []*Question{q}})
	}
	return groups
}

func (x *extractor) freeText(ctx context.Context) []Group {
	var groups []Group
	for _, ta := range x.find.FindAll(ctx, nil, textareas) {
		if !x.find.Usable(ctx, ta) {
			continue
		}
		q := &Question{ID: x.idOf(ctx, ta, "id", "name"), Archetype: classify.FreeText, field: ta}
		q.Text = x.labelText(ctx, ta)
		groups = append(groups, Group{Archetype: classify.FreeText, Questions: []*Question{q}})
	}
	return groups
}

// labelText reads the document label pointing at el, if any.
func (x *extractor) labelText(ctx context.Context, el driver.Element) string {
	id := x.find.Attr(ctx, el, "id")
	if id == "" {
		return ""
	}
	return x.firstText(ctx, nil, labelFor(id))
}

func (x *extractor) idOf(ctx context.Context, el driver.Element, attrs ...string) string {
	for _, a := range attrs {
		if v := strings.TrimSpace(x.find.Attr(ctx, el, a)); v != "" {
			return v
		}
	}
	return el.Key()
}

func (x *extractor) firstText(ctx context.Context, scope driver.Element, d driver.Descriptor) string {
	els := x.find.Query(ctx, scope, d)
	if len(els) == 0 {
		return ""
	}
	return x.text(ctx, els[0])
}

// text reads el with runs of whitespace collapsed.
func (x *extractor) text(ctx context.Context, el driver.Element) string {
	return strings.Join(strings.Fields(x.find.Text(ctx, el)), " ")
}
