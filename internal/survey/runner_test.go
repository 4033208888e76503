// internal/survey/runner_test.go
package survey

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/surveyor/internal/config"
	"github.com/xkilldash9x/surveyor/internal/driver/static"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// panickyDriver blows up on navigation.
type panickyDriver struct {
	*static.Driver
}

func (p panickyDriver) Navigate(ctx context.Context, url string) error {
	panic("renderer crashed")
}

func fullSurvey(t *testing.T) []string {
	return []string{
		fixture(t, "entry.html"),
		fixture(t, "likelihood.html"),
		fixture(t, "mixed.html"),
		fixture(t, "finish.html"),
	}
}

func TestRunnerCompletesSurvey(t *testing.T) {
	drv := static.New(zaptest.NewLogger(t), fullSurvey(t)...)
	rep := NewRunner(drv, testConfig(), zaptest.NewLogger(t)).Run(context.Background())

	require.Equal(t, OutcomeCompleted, rep.Outcome, rep.Error)
	assert.Empty(t, rep.Error)
	assert.Equal(t, Completed, rep.FinalState)
	assert.Equal(t, []State{
		AwaitingTicketEntry,
		AnsweringPage, Submitting,
		AnsweringPage, Submitting,
		AnsweringPage, Submitting,
		Completed,
	}, rep.Trace)
	assert.Equal(t, 3, rep.Pages)

	require.NotNil(t, rep.Result)
	assert.Equal(t, "8GX4KQ2M", rep.Result.ValidationCode)
	assert.Equal(t, "Thank you! Your feedback has been received.", rep.Result.CompletionMessage)

	// Two likelihood rows on page one, ten questions on page two.
	assert.Len(t, rep.Decisions, 12)
	assert.Equal(t, 12, rep.Answered())
	assert.Zero(t, rep.Skipped())

	_, err := uuid.Parse(rep.RunID)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), rep.Seed)
	assert.Equal(t, testURL, rep.URL)
	assert.Equal(t, config.ModeFull, rep.Mode)
	assert.True(t, drv.Closed())
	assert.False(t, rep.FinishedAt.Before(rep.StartedAt))
}

func TestRunnerOutcomes(t *testing.T) {
	t.Run("entry timeout", func(t *testing.T) {
		drv := static.New(zaptest.NewLogger(t), fixture(t, "likelihood.html"))
		rep := NewRunner(drv, testConfig(), zaptest.NewLogger(t)).Run(context.Background())

		assert.Equal(t, OutcomeEntryTimeout, rep.Outcome)
		assert.Contains(t, rep.Error, ErrEntryTimeout.Error())
		assert.Equal(t, AwaitingTicketEntry, rep.FinalState)
		assert.True(t, drv.Closed())
	})

	t.Run("errored", func(t *testing.T) {
		page := strings.Replace(fixture(t, "entry.html"), `<input type="submit" id="NextButton" value="Start">`, "", 1)
		drv := static.New(zaptest.NewLogger(t), page)
		rep := NewRunner(drv, testConfig(), zaptest.NewLogger(t)).Run(context.Background())

		assert.Equal(t, OutcomeErrored, rep.Outcome)
		assert.Equal(t, Errored, rep.FinalState)
		assert.Contains(t, rep.Error, ErrTicketEntry.Error())
		assert.True(t, drv.Closed())
	})

	t.Run("interrupted", func(t *testing.T) {
		cfg := testConfig()
		cfg.Pacing.PageLoadPause = time.Second
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		drv := static.New(zaptest.NewLogger(t), fullSurvey(t)...)
		sleep := func(ctx context.Context, d time.Duration) error {
			cancel()
			return context.Canceled
		}
		rep := NewRunner(drv, cfg, zaptest.NewLogger(t), WithSleep(sleep)).Run(ctx)

		assert.Equal(t, OutcomeInterrupted, rep.Outcome)
		assert.Equal(t, AwaitingTicketEntry, rep.FinalState)
		assert.True(t, drv.Closed())
	})

	t.Run("panic is contained", func(t *testing.T) {
		drv := panickyDriver{static.New(zaptest.NewLogger(t), fullSurvey(t)...)}
		var rep *Report
		require.NotPanics(t, func() {
			rep = NewRunner(drv, testConfig(), zaptest.NewLogger(t)).Run(context.Background())
		})

		assert.Equal(t, OutcomeFailed, rep.Outcome)
		assert.Contains(t, rep.Error, "panic")
		assert.Contains(t, rep.Error, "renderer crashed")
		assert.True(t, drv.Closed())
	})

	t.Run("unreachable survey", func(t *testing.T) {
		drv := static.New(zaptest.NewLogger(t))
		rep := NewRunner(drv, testConfig(), zaptest.NewLogger(t)).Run(context.Background())

		assert.Equal(t, OutcomeFailed, rep.Outcome)
		assert.Contains(t, rep.Error, "failed to open survey")
		assert.True(t, drv.Closed())
	})

	t.Run("invalid precedence", func(t *testing.T) {
		cfg := testConfig()
		cfg.Survey.Precedence = []string{"matrix"}
		drv := static.New(zaptest.NewLogger(t), fullSurvey(t)...)
		rep := NewRunner(drv, cfg, zaptest.NewLogger(t)).Run(context.Background())

		assert.Equal(t, OutcomeFailed, rep.Outcome)
		assert.Empty(t, rep.Trace)
		assert.True(t, drv.Closed())
	})
}

func TestRunnerOverallOnly(t *testing.T) {
	cfg := testConfig()
	cfg.Survey.Mode = config.ModeOverallOnly
	drv := static.New(zaptest.NewLogger(t),
		fixture(t, "entry.html"), fixture(t, "mixed.html"), fixture(t, "finish.html"))

	rep := NewRunner(drv, cfg, zaptest.NewLogger(t)).Run(context.Background())

	require.Equal(t, OutcomeCompleted, rep.Outcome, rep.Error)
	require.Len(t, rep.Decisions, 1)
	assert.Equal(t, "FNSR000070", rep.Decisions[0].QuestionID)
	assert.Equal(t, "Highly Satisfied", rep.Decisions[0].Choice)
	require.NotNil(t, rep.Result)
	assert.Equal(t, "8GX4KQ2M", rep.Result.ValidationCode)
}

func TestRunnerSeeding(t *testing.T) {
	run := func(t *testing.T, cfg *config.Config, opts ...RunnerOption) *Report {
		drv := static.New(zaptest.NewLogger(t), fullSurvey(t)...)
		return NewRunner(drv, cfg, zaptest.NewLogger(t), opts...).Run(context.Background())
	}

	t.Run("same seed, same answers", func(t *testing.T) {
		a := run(t, testConfig())
		b := run(t, testConfig())
		require.Equal(t, OutcomeCompleted, a.Outcome)
		require.Equal(t, OutcomeCompleted, b.Outcome)
		assert.NotEqual(t, a.RunID, b.RunID)
		if diff := cmp.Diff(a.Decisions, b.Decisions, cmpopts.IgnoreFields(DecisionRecord{}, "At")); diff != "" {
			t.Errorf("seeded runs diverged (-first +second):\n%s", diff)
		}
	})

	t.Run("zero seed is drawn from the clock and reported", func(t *testing.T) {
		cfg := testConfig()
		cfg.Survey.Seed = 0
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		rep := run(t, cfg, WithClock(func() time.Time { return now }))

		assert.Equal(t, now.UnixNano(), rep.Seed)
		assert.Equal(t, now, rep.StartedAt)
		assert.Zero(t, rep.Duration)
	})
}

func TestRunnerPauses(t *testing.T) {
	cfg := testConfig()
	cfg.Pacing.PageLoadPause = 5 * time.Second
	cfg.Pacing.ShutdownPause = 3 * time.Second

	var slept []time.Duration
	sleep := func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	drv := static.New(zaptest.NewLogger(t), fixture(t, "entry.html"), fixture(t, "finish.html"))
	rep := NewRunner(drv, cfg, zaptest.NewLogger(t), WithSleep(sleep)).Run(context.Background())

	require.Equal(t, OutcomeCompleted, rep.Outcome, rep.Error)
	assert.Equal(t, []time.Duration{5 * time.Second, 3 * time.Second}, slept)
	assert.Equal(t, 8*time.Second, rep.Paused)
}
