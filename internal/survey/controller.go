// internal/survey/controller.go
package survey

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/surveyor/internal/classify"
	"github.com/xkilldash9x/surveyor/internal/config"
	"github.com/xkilldash9x/surveyor/internal/driver"
	"github.com/xkilldash9x/surveyor/internal/finder"
	"github.com/xkilldash9x/surveyor/internal/humanoid"
	"github.com/xkilldash9x/surveyor/internal/policy"
)

// State is a state of the page controller.
type State string

const (
	AwaitingTicketEntry State = "awaiting_ticket_entry"
	AnsweringPage       State = "answering_page"
	Submitting          State = "submitting"
	Completed           State = "completed"
	Errored             State = "errored"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool { return s == Completed || s == Errored }

var (
	// ErrTicketEntry means a ticket field or the button that submits the
	// ticket could not be used.
	ErrTicketEntry = errors.New("ticket entry failed")
	// ErrPageError means the page showed an error indicator after answering.
	ErrPageError = errors.New("page shows an error")
	// ErrNoSubmit means a page had neither a submit control nor a completion
	// marker.
	ErrNoSubmit = errors.New("no submit control and no completion marker")
	// ErrPageLimit means the survey did not finish within the page bound.
	ErrPageLimit = errors.New("page limit reached")
)

// Controller drives one survey session page by page. It is not safe for
// concurrent use.
type Controller struct {
	cfg      *config.Config
	drv      driver.Driver
	find     *finder.Finder
	x        *extractor
	pacer    *humanoid.Pacer
	typist   *humanoid.Typist
	policies *policy.Policies
	logger   *zap.Logger
	clock    func() time.Time

	precedence  []classify.Archetype
	overallOnly bool

	state     State
	trace     []State
	pages     int
	decisions []DecisionRecord
	result    *Result
	err       error
}

// NewController wires a controller around drv. Answer sampling and typing
// cadence both draw from rng.
func NewController(drv driver.Driver, cfg *config.Config, pacer *humanoid.Pacer, rng *rand.Rand, logger *zap.Logger) (*Controller, error) {
	precedence, err := parsePrecedence(cfg.Survey.Precedence)
	if err != nil {
		return nil, err
	}
	logger = logger.Named("controller")
	find := finder.New(drv, cfg.Finder, logger)
	return &Controller{
		cfg:         cfg,
		drv:         drv,
		find:        find,
		x:           newExtractor(find, logger),
		pacer:       pacer,
		typist:      humanoid.NewTypist(pacer, rng, cfg.Pacing.TypingDelayMin, cfg.Pacing.TypingDelayMax),
		policies:    policy.New(rng),
		logger:      logger,
		clock:       time.Now,
		precedence:  precedence,
		overallOnly: cfg.Survey.Mode == config.ModeOverallOnly,
		state:       AwaitingTicketEntry,
		trace:       []State{AwaitingTicketEntry},
	}, nil
}

// parsePrecedence resolves configured archetype names. Likelihood is dropped
// since it is always handled on its own, and repeats keep their first slot.
func parsePrecedence(names []string) ([]classify.Archetype, error) {
	seen := make(map[classify.Archetype]bool, len(names))
	out := make([]classify.Archetype, 0, len(names))
	for _, name := range names {
		a, err := classify.ParseArchetype(name)
		if err != nil {
			return nil, fmt.Errorf("invalid precedence: %w", err)
		}
		if a == classify.Likelihood || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out, nil
}

// State returns the state the controller is currently in.
func (c *Controller) State() State { return c.state }

// Trace returns every state the controller has been in, in order.
func (c *Controller) Trace() []State { return append([]State(nil), c.trace...) }

// Pages is the number of answering passes made.
func (c *Controller) Pages() int { return c.pages }

// Decisions returns the decisions log.
func (c *Controller) Decisions() []DecisionRecord {
	return append([]DecisionRecord(nil), c.decisions...)
}

// Result is the captured completion result, or nil.
func (c *Controller) Result() *Result { return c.result }

// Err is the error that moved the controller to Errored.
func (c *Controller) Err() error { return c.err }

// Run steps the state machine until it reaches a terminal state or ctx is
// done. It returns nil on Completed, the cause on Errored, and the context
// error on cancellation, in which case the state is left as it was.
func (c *Controller) Run(ctx context.Context) error {
	for !c.state.Terminal() {
		var next State
		var err error
		switch c.state {
		case AwaitingTicketEntry:
			next, err = c.enterTicket(ctx)
		case AnsweringPage:
			next, err = c.answerPage(ctx)
		case Submitting:
			next, err = c.submit(ctx)
		default:
			err = fmt.Errorf("unknown controller state %q", c.state)
		}

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			c.err = err
			c.logger.Error("Survey errored.", zap.String("state", string(c.state)), zap.Int("page", c.pages), zap.Error(err))
			c.transition(Errored)
			return err
		}
		c.transition(next)
	}
	return c.err
}

func (c *Controller) transition(next State) {
	c.logger.Debug("State transition.", zap.String("from", string(c.state)), zap.String("to", string(next)))
	c.state = next
	c.trace = append(c.trace, next)
}

func (c *Controller) enterTicket(ctx context.Context) (State, error) {
	c.logger.Info("Entering ticket number.", zap.Int("segments", len(c.cfg.Survey.Ticket)))
	for i, segment := range c.cfg.Survey.Ticket {
		field, ok := c.find.Find(ctx, nil, ticketField(i+1))
		if !ok {
			return "", fmt.Errorf("%w: field CN%d not found", ErrTicketEntry, i+1)
		}
		if err := c.drv.SetText(ctx, field, segment); err != nil {
			return "", fmt.Errorf("%w: segment %d: %w", ErrTicketEntry, i+1, err)
		}
		c.logger.Debug("Ticket segment entered.", zap.Int("segment", i+1))
		if err := c.pacer.Pause(ctx, c.cfg.Pacing.TicketSegmentPause); err != nil {
			return "", err
		}
	}

	btn, ok := c.find.Find(ctx, nil, nextButton)
	if !ok {
		return "", fmt.Errorf("%w: NextButton not found", ErrTicketEntry)
	}
	clicked, err := c.drv.Click(ctx, btn)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTicketEntry, err)
	}
	if !clicked {
		return "", fmt.Errorf("%w: NextButton did not take the click", ErrTicketEntry)
	}
	c.logger.Info("Ticket submitted.")
	if err := c.pacer.Pause(ctx, c.cfg.Pacing.PostTicketPause); err != nil {
		return "", err
	}
	return AnsweringPage, nil
}

func (c *Controller) answerPage(ctx context.Context) (State, error) {
	c.pages++
	if c.pages > c.cfg.Survey.MaxPages {
		return "", fmt.Errorf("%w: %d pages", ErrPageLimit, c.cfg.Survey.MaxPages)
	}
	c.logger.Info("Answering page.", zap.Int("page", c.pages))

	if err := c.extendSession(ctx); err != nil {
		return "", err
	}
	answered := newAnsweredSet()

	if c.overallOnly {
		if err := c.answerArchetype(ctx, classify.OverallSatisfaction, answered); err != nil {
			return "", err
		}
		return Submitting, nil
	}

	if c.x.hasLikelihood(ctx) {
		c.logger.Info("Likelihood page; answering likelihood questions only.")
		if err := c.answerArchetype(ctx, classify.Likelihood, answered); err != nil {
			return "", err
		}
		return Submitting, nil
	}

	for _, a := range c.precedence {
		if err := c.answerArchetype(ctx, a, answered); err != nil {
			return "", err
		}
	}

	if msg, ok := c.pageError(ctx); ok {
		return "", fmt.Errorf("%w: %q", ErrPageError, msg)
	}
	return Submitting, nil
}

// extendSession dismisses the session timeout dialog when it is showing.
func (c *Controller) extendSession(ctx context.Context) error {
	if len(c.find.FindAll(ctx, nil, timeoutDialog)) == 0 {
		return nil
	}
	btn, ok := c.find.Find(ctx, nil, extendButton)
	if !ok {
		c.logger.Warn("Session timeout dialog without an extend button.")
		return nil
	}
	clicked, err := c.drv.Click(ctx, btn)
	if err != nil || !clicked {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn("Could not extend the session.", zap.Error(err))
		return nil
	}
	c.logger.Info("Extended the survey session.")
	return c.pacer.Pause(ctx, c.cfg.Pacing.SessionExtendPause)
}

func (c *Controller) pageError(ctx context.Context) (string, bool) {
	errs := c.find.FindAll(ctx, nil, errorIndicator)
	if len(errs) == 0 {
		return "", false
	}
	return c.x.text(ctx, errs[0]), true
}

func (c *Controller) submit(ctx context.Context) (State, error) {
	for _, d := range []driver.Descriptor{submitNext, nextButton} {
		el, ok := c.find.Find(ctx, nil, d)
		if !ok {
			continue
		}
		clicked, err := c.drv.Click(ctx, el)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			c.logger.Warn("Submit click failed.", zap.Stringer("control", d), zap.Error(err))
			continue
		}
		if !clicked {
			continue
		}
		c.logger.Info("Page submitted.", zap.Int("page", c.pages))
		if err := c.pacer.Pause(ctx, c.cfg.Pacing.PostSubmitPause); err != nil {
			return "", err
		}
		if c.overallOnly {
			if c.find.Exists(ctx, completionMarker) {
				c.captureResult(ctx)
			}
			return Completed, nil
		}
		return AnsweringPage, nil
	}

	if c.find.Exists(ctx, completionMarker) {
		c.captureResult(ctx)
		return Completed, nil
	}
	return "", ErrNoSubmit
}

// captureResult reads the completion page once.
func (c *Controller) captureResult(ctx context.Context) {
	if c.result != nil {
		return
	}
	res := &Result{CapturedAt: c.clock()}
	if el, ok := c.find.Find(ctx, nil, validationCode); ok {
		res.ValidationCode = strings.TrimSpace(strings.Replace(c.x.text(ctx, el), validationPrefix, "", 1))
	}
	if el, ok := c.find.Find(ctx, nil, finishHeader); ok {
		res.CompletionMessage = c.x.text(ctx, el)
	}
	if res.CompletionMessage == "" {
		if el, ok := c.find.Find(ctx, nil, finishHeaderAlt); ok {
			res.CompletionMessage = c.x.text(ctx, el)
		}
	}
	c.result = res
	c.logger.Info("Survey completed.",
		zap.String("validation_code", res.ValidationCode),
		zap.String("message", res.CompletionMessage))
}
