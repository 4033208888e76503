// cmd/run_test.go
package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/surveyor/internal/config"
	"github.com/xkilldash9x/surveyor/internal/driver"
	"github.com/xkilldash9x/surveyor/internal/driver/static"
	"github.com/xkilldash9x/surveyor/internal/survey"
)

func fullSurveyPaths() []string {
	return []string{
		fixturePath("entry.html"),
		fixturePath("likelihood.html"),
		fixturePath("mixed.html"),
		fixturePath("finish.html"),
	}
}

// useStaticBrowser makes the run command drive recorded pages instead of
// Chrome and returns the driver it will use.
func useStaticBrowser(t *testing.T, paths ...string) **static.Driver {
	t.Helper()
	var used *static.Driver
	original := newBrowserDriver
	newBrowserDriver = func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (driver.Driver, error) {
		drv, err := static.NewFromFiles(logger, paths...)
		used = drv
		return drv, err
	}
	t.Cleanup(func() { newBrowserDriver = original })
	return &used
}

func decodeReport(t *testing.T, out string) survey.Report {
	t.Helper()
	var rep survey.Report
	require.NoError(t, jsoniter.UnmarshalFromString(out, &rep), out)
	return rep
}

func TestRunCmd(t *testing.T) {
	t.Run("flags override the configured ticket", func(t *testing.T) {
		t.Setenv("SURVEYOR_PACING_POST_TICKET_PAUSE", "0s")
		drv := useStaticBrowser(t, fixturePath("entry.html"), fixturePath("finish.html"))
		path := createTempConfig(t, "pacing:\n  answer_pause: 0s\n  question_duration: 0s\n  ticket_segment_pause: 0s\n  post_submit_pause: 0s\n  page_load_pause: 0s\n  shutdown_pause: 0s\nfinder:\n  retry_delay: 0s\n")

		out, err := executeCommand(t, "--config", path, "run", "--ticket", "11111,22222", "--seed", "3", "--json")
		require.NoError(t, err)

		rep := decodeReport(t, out)
		assert.Equal(t, survey.OutcomeCompleted, rep.Outcome)
		assert.Equal(t, int64(3), rep.Seed)

		require.NotNil(t, *drv)
		var segments []string
		for _, c := range (*drv).Calls() {
			if c.Op == "set_text" {
				segments = append(segments, c.Arg)
			}
		}
		assert.Equal(t, []string{"11111", "22222"}, segments)
		assert.True(t, (*drv).Closed())
	})

	t.Run("browser start failure", func(t *testing.T) {
		original := newBrowserDriver
		newBrowserDriver = func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (driver.Driver, error) {
			return nil, errors.New("chrome not found")
		}
		t.Cleanup(func() { newBrowserDriver = original })

		_, err := executeCommand(t, "run")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to start browser: chrome not found")
	})

	t.Run("rejects arguments", func(t *testing.T) {
		_, err := executeCommand(t, "run", "extra")
		assert.Error(t, err)
	})
}

func TestReplayCmd(t *testing.T) {
	t.Run("completes recorded survey", func(t *testing.T) {
		dir := t.TempDir()
		jsonFile := filepath.Join(dir, "run.json")
		xlsxFile := filepath.Join(dir, "decisions.xlsx")

		args := append([]string{"replay", "--seed", "7", "--json-file", jsonFile, "--report", xlsxFile}, fullSurveyPaths()...)
		out, err := executeCommand(t, args...)
		require.NoError(t, err)

		assert.Contains(t, out, "COMPLETED")
		assert.Contains(t, out, "8GX4KQ2M")

		raw, err := os.ReadFile(jsonFile)
		require.NoError(t, err)
		rep := decodeReport(t, string(raw))
		assert.Equal(t, 3, rep.Pages)
		assert.Len(t, rep.Decisions, 12)

		info, err := os.Stat(xlsxFile)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})

	t.Run("overall only from config file", func(t *testing.T) {
		path := createTempConfig(t, "survey:\n  mode: overall-only\n")
		out, err := executeCommand(t, "--config", path, "replay", "--json",
			fixturePath("entry.html"), fixturePath("mixed.html"), fixturePath("finish.html"))
		require.NoError(t, err)

		rep := decodeReport(t, out)
		assert.Equal(t, config.ModeOverallOnly, rep.Mode)
		assert.Len(t, rep.Decisions, 1)
	})

	t.Run("overall only flag", func(t *testing.T) {
		out, err := executeCommand(t, "replay", "--json", "--overall-only",
			fixturePath("entry.html"), fixturePath("mixed.html"), fixturePath("finish.html"))
		require.NoError(t, err)
		assert.Len(t, decodeReport(t, out).Decisions, 1)
	})

	t.Run("page limit from the environment", func(t *testing.T) {
		t.Setenv("SURVEYOR_SURVEY_MAX_PAGES", "1")
		out, errOut, err := executeCommandStreams(t, append([]string{"replay", "--json"}, fullSurveyPaths()...)...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ended errored")
		assert.NotContains(t, out, "Error:")
		assert.NotContains(t, errOut, "Error:", "the command error is printed once, by Execute")

		rep := decodeReport(t, out)
		assert.Equal(t, survey.OutcomeErrored, rep.Outcome)
		assert.Contains(t, rep.Error, "page limit")
	})

	t.Run("missing page file", func(t *testing.T) {
		_, err := executeCommand(t, "replay", filepath.Join(t.TempDir(), "nope.html"))
		assert.Error(t, err)
	})

	t.Run("needs pages", func(t *testing.T) {
		_, err := executeCommand(t, "replay")
		assert.Error(t, err)
	})
}

func TestFinishRun(t *testing.T) {
	t.Run("interrupted runs surface context.Canceled", func(t *testing.T) {
		cmd := NewRootCommand()
		cmd.SetOut(new(nopBuffer))
		err := finishRun(cmd, config.NewDefaultConfig(), &survey.Report{RunID: "r", Outcome: survey.OutcomeInterrupted})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unwritable report file", func(t *testing.T) {
		cmd := NewRootCommand()
		cmd.SetOut(new(nopBuffer))
		cfg := config.NewDefaultConfig()
		cfg.Report.XLSXFile = t.TempDir()
		err := finishRun(cmd, cfg, &survey.Report{RunID: "r", Outcome: survey.OutcomeCompleted})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write report")
	})
}

type nopBuffer struct{}

func (nopBuffer) Write(p []byte) (int, error) { return len(p), nil }
