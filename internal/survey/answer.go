// internal/survey/answer.go
package survey

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/surveyor/internal/classify"
	"github.com/xkilldash9x/surveyor/internal/driver"
	"github.com/xkilldash9x/surveyor/internal/policy"
)

// pacing is how long a group of questions takes: a pause after every entered
// answer, and a budget the whole group is padded up to.
type pacing struct {
	perAnswer time.Duration
	budget    time.Duration
}

func (c *Controller) pacingFor(a classify.Archetype) pacing {
	p := c.cfg.Pacing
	switch a {
	case classify.Likelihood, classify.Satisfaction, classify.CheckboxGroup, classify.ProblemReport:
		return pacing{perAnswer: p.AnswerPause, budget: p.QuestionDuration}
	case classify.SatisfactionNA, classify.TableRadio, classify.Radio:
		return pacing{perAnswer: p.QuestionDuration}
	case classify.FreeText:
		return pacing{perAnswer: p.TextPause}
	default:
		return pacing{perAnswer: p.AnswerPause}
	}
}

func (c *Controller) answerArchetype(ctx context.Context, a classify.Archetype, answered answeredSet) error {
	for _, g := range c.x.extract(ctx, a) {
		if err := c.answerGroup(ctx, g, answered); err != nil {
			return err
		}
	}
	return nil
}

// answerGroup answers every question of g not yet in answered and pads the
// group to its time budget. Only context errors are returned; a question that
// cannot be entered is logged and left unanswered.
func (c *Controller) answerGroup(ctx context.Context, g Group, answered answeredSet) error {
	pace := c.pacingFor(g.Archetype)
	start := c.pacer.Total()
	committed := 0

	for _, q := range g.Questions {
		if answered.has(q.ID) {
			c.logger.Debug("Question already answered on this page.", zap.String("question_id", q.ID))
			continue
		}
		d := c.decide(q)
		idx := c.record(q, d)
		if d.Skipped() {
			c.logger.Warn("Skipping question.",
				zap.String("question_id", q.ID),
				zap.String("archetype", string(q.Archetype)),
				zap.String("reason", d.Reason))
			continue
		}

		ok, err := c.apply(ctx, q, d, pace.perAnswer)
		if ok {
			answered.add(q.ID)
			c.decisions[idx].Committed = true
			committed++
			c.logger.Info("Answered question.",
				zap.String("archetype", string(q.Archetype)),
				zap.String("question", q.Text),
				zap.String("choice", d.Label))
		}
		if err != nil {
			return err
		}
	}

	if committed > 0 && pace.budget > 0 {
		return c.pacer.Pad(ctx, pace.budget, c.pacer.Total()-start)
	}
	return nil
}

func (c *Controller) decide(q *Question) policy.Decision {
	switch q.Archetype {
	case classify.Likelihood:
		return c.policies.Scale(q.Text, classify.ScaleLikelihood, q.Options)
	case classify.Satisfaction:
		return c.policies.Scale(q.Text, classify.ScaleSatisfaction, q.Options)
	case classify.OverallSatisfaction:
		return c.policies.Overall(q.Options)
	case classify.SatisfactionNA:
		return c.policies.SatisfactionNA(q.Text, q.Options)
	case classify.Dropdown:
		return c.policies.Dropdown(q.Options)
	case classify.CheckboxGroup:
		return c.policies.Checkbox(q.Text, q.Options)
	case classify.ProblemReport:
		return c.policies.ProblemReport(q.Options, q.HasOther())
	case classify.TableRadio, classify.Radio:
		return c.policies.Uniform(q.Options)
	case classify.FreeText:
		return c.policies.FreeText()
	}
	return policy.Decision{Kind: policy.Skip, Reason: "no policy for archetype " + string(q.Archetype)}
}

func (c *Controller) record(q *Question, d policy.Decision) int {
	c.decisions = append(c.decisions, DecisionRecord{
		Page:       c.pages,
		QuestionID: q.ID,
		Archetype:  string(q.Archetype),
		Category:   string(q.Category),
		Question:   q.Text,
		Kind:       d.Kind.String(),
		Choice:     d.Label,
		Text:       d.Text,
		Profile:    d.Profile,
		Reason:     d.Reason,
		At:         c.clock(),
	})
	return len(c.decisions) - 1
}

// apply enters d on the page and reports whether anything was committed.
func (c *Controller) apply(ctx context.Context, q *Question, d policy.Decision, pause time.Duration) (bool, error) {
	switch d.Kind {
	case policy.Single:
		i := d.Indices[0]
		if q.field != nil {
			if err := c.drv.SelectValue(ctx, q.field, q.Options[i].Value); err != nil {
				return false, c.actionFailed(ctx, q, "select", err)
			}
		} else {
			ok, err := c.choose(ctx, q, i)
			if !ok {
				return false, err
			}
		}
		return true, c.pacer.Pause(ctx, pause)

	case policy.Multi:
		n := 0
		for _, i := range d.Indices {
			ok, err := c.choose(ctx, q, i)
			if err != nil {
				return n > 0, err
			}
			if !ok {
				continue
			}
			n++
			if err := c.pacer.Pause(ctx, pause); err != nil {
				return true, err
			}
		}
		if n > 0 && d.Text != "" && q.other != nil {
			typed, err := c.typeInto(ctx, q, q.other, d.Text)
			if err != nil {
				return true, err
			}
			if typed {
				c.logger.Info("Described the problem.", zap.String("detail", d.Text))
				if err := c.pacer.Pause(ctx, c.cfg.Pacing.DetailPause); err != nil {
					return true, err
				}
			}
		}
		return n > 0, nil

	case policy.Text:
		if q.field == nil {
			return false, nil
		}
		typed, err := c.typeInto(ctx, q, q.field, d.Text)
		if !typed {
			return false, err
		}
		return true, c.pacer.Pause(ctx, pause)
	}
	return false, nil
}

// choose clicks option i, falling back to the raw input when its label does
// not take the click.
func (c *Controller) choose(ctx context.Context, q *Question, i int) (bool, error) {
	targets := []driver.Element{q.targets[i]}
	if q.inputs[i] != nil && q.inputs[i].Key() != q.targets[i].Key() {
		targets = append(targets, q.inputs[i])
	}
	for _, el := range targets {
		clicked, err := c.drv.Click(ctx, el)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			c.logger.Debug("Option click failed.", zap.String("question_id", q.ID), zap.String("element", el.Key()), zap.Error(err))
			continue
		}
		if clicked {
			return true, nil
		}
	}
	c.logger.Warn("Option could not be selected.", zap.String("question_id", q.ID), zap.String("option", q.Options[i].Label))
	return false, nil
}

// typeInto clears el and types text with the human cadence. It reports
// whether the whole text went in.
func (c *Controller) typeInto(ctx context.Context, q *Question, el driver.Element, text string) (bool, error) {
	if err := c.drv.Clear(ctx, el); err != nil {
		return false, c.actionFailed(ctx, q, "clear", err)
	}
	if err := c.typist.Type(ctx, c.drv, el, text); err != nil {
		return false, c.actionFailed(ctx, q, "type", err)
	}
	return true, nil
}

// actionFailed swallows a driver error after logging it, unless the run is
// being canceled.
func (c *Controller) actionFailed(ctx context.Context, q *Question, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	c.logger.Warn("Page action failed.", zap.String("op", op), zap.String("question_id", q.ID), zap.Error(err))
	return nil
}
