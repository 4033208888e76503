// cmd/run.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/surveyor/internal/config"
	"github.com/xkilldash9x/surveyor/internal/driver"
	"github.com/xkilldash9x/surveyor/internal/driver/cdp"
	"github.com/xkilldash9x/surveyor/internal/observability"
	"github.com/xkilldash9x/surveyor/internal/survey"
)

// newBrowserDriver opens the live browser. Replaced in tests.
var newBrowserDriver = func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (driver.Driver, error) {
	return cdp.New(ctx, cfg, logger)
}

func newRunCmd() *cobra.Command {
	var overallOnly bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Completes one survey in a browser",
		Long: `Opens the survey entry page in Chrome, enters the receipt ticket and answers
every page until the completion page hands out a validation code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			if overallOnly {
				cfg.Survey.Mode = config.ModeOverallOnly
			}
			logger := observability.GetLogger()

			drv, err := newBrowserDriver(ctx, cfg.Browser, logger)
			if err != nil {
				return fmt.Errorf("failed to start browser: %w", err)
			}
			rep := survey.NewRunner(drv, cfg, logger).Run(ctx)
			return finishRun(cmd, cfg, rep)
		},
	}

	addSessionFlags(runCmd, &overallOnly)
	runCmd.Flags().StringSlice("ticket", nil, "receipt ticket segments, comma separated")
	runCmd.Flags().String("url", "", "survey entry page")
	runCmd.Flags().Bool("headless", false, "run the browser without a window")
	runCmd.Flags().String("remote-url", "", "attach to a running browser instead of launching one")
	return runCmd
}

// addSessionFlags registers the flags shared by every command that runs a
// survey session.
func addSessionFlags(cmd *cobra.Command, overallOnly *bool) {
	cmd.Flags().Int64("seed", 0, "answer sampling seed (0 picks one from the clock)")
	cmd.Flags().Int("max-pages", 0, "give up after this many survey pages")
	cmd.Flags().Bool("json", false, "print the JSON report instead of the summary")
	cmd.Flags().String("json-file", "", "also write the JSON report to this file")
	cmd.Flags().String("report", "", "write the decision log to this .xlsx file")
	cmd.Flags().BoolVar(overallOnly, "overall-only", false, "answer only the overall satisfaction question")
}
