// cmd/replay.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/surveyor/internal/config"
	"github.com/xkilldash9x/surveyor/internal/driver/static"
	"github.com/xkilldash9x/surveyor/internal/observability"
	"github.com/xkilldash9x/surveyor/internal/survey"
)

func newReplayCmd() *cobra.Command {
	var overallOnly bool

	replayCmd := &cobra.Command{
		Use:   "replay <page.html>...",
		Short: "Runs a survey session against recorded pages",
		Long: `Serves the given HTML files in order as the survey, starting with the entry
page. Every submit moves to the next file. Pauses are disabled.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			if overallOnly {
				cfg.Survey.Mode = config.ModeOverallOnly
			}
			cfg.Pacing = config.NoPacing()
			cfg.Finder.RetryDelay = 0
			logger := observability.GetLogger()

			drv, err := static.NewFromFiles(logger, args...)
			if err != nil {
				return err
			}
			rep := survey.NewRunner(drv, cfg, logger).Run(ctx)
			return finishRun(cmd, cfg, rep)
		},
	}
	addSessionFlags(replayCmd, &overallOnly)
	return replayCmd
}
