// internal/survey/runner.go

// Package survey walks a customer satisfaction survey from its entry page to
// the completion page: it finds the questions on each page, asks the answer
// policies what to choose, enters the choices through a driver.Driver and
// reports how the run ended.
package survey

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/surveyor/internal/config"
	"github.com/xkilldash9x/surveyor/internal/driver"
	"github.com/xkilldash9x/surveyor/internal/finder"
	"github.com/xkilldash9x/surveyor/internal/humanoid"
)

// ErrEntryTimeout means the ticket field never showed up on the entry page.
var ErrEntryTimeout = errors.New("entry page did not show the ticket field")

// Runner executes one survey session end to end.
type Runner struct {
	cfg    *config.Config
	drv    driver.Driver
	logger *zap.Logger
	sleep  humanoid.SleepFunc
	clock  func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSleep replaces the pause clock of the run.
func WithSleep(fn humanoid.SleepFunc) RunnerOption {
	return func(r *Runner) { r.sleep = fn }
}

// WithClock replaces the wall clock used for timestamps and time seeding.
func WithClock(fn func() time.Time) RunnerOption {
	return func(r *Runner) { r.clock = fn }
}

// NewRunner creates a Runner. The runner owns drv and closes it when Run
// returns.
func NewRunner(drv driver.Driver, cfg *config.Config, logger *zap.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{cfg: cfg, drv: drv, logger: logger.Named("runner"), clock: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs the session and always returns a report. The driver is
// closed on every path, including panics.
func (r *Runner) Run(ctx context.Context) (rep *Report) {
	seed := r.cfg.Survey.Seed
	if seed == 0 {
		seed = r.clock().UnixNano()
	}
	rep = &Report{
		RunID:     uuid.NewString(),
		Mode:      r.cfg.Survey.Mode,
		URL:       r.cfg.Survey.URL,
		Seed:      seed,
		StartedAt: r.clock(),
	}
	logger := r.logger.With(zap.String("run_id", rep.RunID))

	var pacerOpts []humanoid.PacerOption
	if r.sleep != nil {
		pacerOpts = append(pacerOpts, humanoid.WithSleep(r.sleep))
	}
	pacer := humanoid.NewPacer(logger, pacerOpts...)

	var ctrl *Controller
	defer func() {
		if p := recover(); p != nil {
			rep.Outcome = OutcomeFailed
			rep.Error = fmt.Sprintf("panic: %v", p)
			logger.Error("Survey run panicked.", zap.Any("panic", p), zap.Stack("stack"))
		}
		r.finish(ctx, rep, ctrl, pacer, logger)
	}()

	var err error
	ctrl, err = NewController(r.drv, r.cfg, pacer, rand.New(rand.NewSource(seed)), logger)
	if err != nil {
		rep.Outcome = OutcomeFailed
		rep.Error = err.Error()
		return rep
	}

	logger.Info("Starting survey run.",
		zap.String("url", r.cfg.Survey.URL),
		zap.String("mode", r.cfg.Survey.Mode),
		zap.Int64("seed", seed))

	err = r.session(ctx, ctrl, pacer)
	rep.Outcome = classifyOutcome(ctx, ctrl, err)
	if err != nil {
		rep.Error = err.Error()
	}
	return rep
}

func (r *Runner) session(ctx context.Context, ctrl *Controller, pacer *humanoid.Pacer) error {
	if err := r.drv.Navigate(ctx, r.cfg.Survey.URL); err != nil {
		return fmt.Errorf("failed to open survey: %w", err)
	}
	if err := pacer.Pause(ctx, r.cfg.Pacing.PageLoadPause); err != nil {
		return err
	}

	timeout := r.cfg.Survey.EntryTimeout
	if _, err := ctrl.find.WaitPresent(ctx, ticketField(1), timeout); err != nil {
		if errors.Is(err, finder.ErrWaitTimeout) {
			return fmt.Errorf("%w after %v", ErrEntryTimeout, timeout)
		}
		return err
	}
	return ctrl.Run(ctx)
}

func classifyOutcome(ctx context.Context, ctrl *Controller, err error) Outcome {
	switch {
	case err == nil && ctrl.State() == Completed:
		return OutcomeCompleted
	case errors.Is(err, ErrEntryTimeout):
		return OutcomeEntryTimeout
	case ctx.Err() != nil:
		return OutcomeInterrupted
	case ctrl.State() == Errored:
		return OutcomeErrored
	default:
		return OutcomeFailed
	}
}

// finish copies the controller's view into the report and releases the
// browser after a short pause.
func (r *Runner) finish(ctx context.Context, rep *Report, ctrl *Controller, pacer *humanoid.Pacer, logger *zap.Logger) {
	if ctrl != nil {
		rep.FinalState = ctrl.State()
		rep.Trace = ctrl.Trace()
		rep.Pages = ctrl.Pages()
		rep.Decisions = ctrl.Decisions()
		rep.Result = ctrl.Result()
	}

	logger.Info("Closing browser session.")
	_ = pacer.Pause(ctx, r.cfg.Pacing.ShutdownPause)
	if err := r.drv.Close(); err != nil {
		logger.Warn("Failed to close driver.", zap.Error(err))
	}

	rep.FinishedAt = r.clock()
	rep.Duration = rep.FinishedAt.Sub(rep.StartedAt)
	rep.Paused = pacer.Total()

	fields := []zap.Field{
		zap.String("outcome", string(rep.Outcome)),
		zap.String("final_state", string(rep.FinalState)),
		zap.Int("pages", rep.Pages),
		zap.Int("answered", rep.Answered()),
		zap.Duration("duration", rep.Duration),
	}
	if rep.Outcome == OutcomeCompleted {
		logger.Info("Survey run finished.", fields...)
		return
	}
	logger.Warn("Survey run did not complete.", append(fields, zap.String("error", rep.Error))...)
}
