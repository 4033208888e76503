// cmd/output.go
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/surveyor/internal/config"
	"github.com/xkilldash9x/surveyor/internal/observability"
	"github.com/xkilldash9x/surveyor/internal/reporting"
	"github.com/xkilldash9x/surveyor/internal/survey"
)

// finishRun renders rep to every configured output and turns an unsuccessful
// outcome into the command error.
func finishRun(cmd *cobra.Command, cfg *config.Config, rep *survey.Report) error {
	if err := writeReports(cmd, cfg.Report, rep); err != nil {
		return err
	}

	switch rep.Outcome {
	case survey.OutcomeCompleted:
		return nil
	case survey.OutcomeInterrupted:
		return fmt.Errorf("survey run %s: %w", rep.RunID, context.Canceled)
	default:
		return fmt.Errorf("survey run %s ended %s: %s", rep.RunID, rep.Outcome, rep.Error)
	}
}

func writeReports(cmd *cobra.Command, cfg config.ReportConfig, rep *survey.Report) error {
	var console reporting.Reporter
	if cfg.JSON {
		console = reporting.NewJSONReporter(reporting.NopCloser(cmd.OutOrStdout()))
	} else {
		console = reporting.NewTextReporter(reporting.NopCloser(cmd.OutOrStdout()))
	}
	outputs := []reporting.Reporter{console}

	var errs []error
	if cfg.JSONFile != "" {
		r, err := reporting.New(reporting.FormatJSON, cfg.JSONFile)
		if err != nil {
			errs = append(errs, err)
		} else {
			outputs = append(outputs, r)
		}
	}
	if cfg.XLSXFile != "" {
		r, err := reporting.New(reporting.FormatXLSX, cfg.XLSXFile)
		if err != nil {
			errs = append(errs, err)
		} else {
			outputs = append(outputs, r)
		}
	}

	for _, r := range outputs {
		if err := r.Write(rep); err != nil {
			errs = append(errs, err)
		}
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		observability.GetLogger().Error("Failed to write report.", zap.Error(err))
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
