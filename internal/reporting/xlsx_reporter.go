// internal/reporting/xlsx_reporter.go
package reporting

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/xkilldash9x/surveyor/internal/observability"
	"github.com/xkilldash9x/surveyor/internal/survey"
)

// Sheet names of the decision log workbook.
const (
	RunsSheet      = "Runs"
	DecisionsSheet = "Decisions"
)

var (
	runsHeader = []interface{}{
		"Run ID", "Started", "Outcome", "Final State", "Mode", "Seed", "Pages",
		"Answered", "Skipped", "Validation Code", "Message", "Error", "Duration (s)",
	}
	decisionsHeader = []interface{}{
		"Run ID", "Page", "Question ID", "Archetype", "Category", "Question",
		"Kind", "Choice", "Text", "Profile", "Reason", "Entered", "At",
	}
)

// XLSXReporter collects runs into a workbook with one row per run and one row
// per decision. The workbook is written when the reporter is closed. It is
// safe for concurrent use.
type XLSXReporter struct {
	writer io.WriteCloser
	logger *zap.Logger

	mu          sync.Mutex
	file        *excelize.File
	runRow      int
	decisionRow int
	headerStyle int
	initErr     error
}

func NewXLSXReporter(writer io.WriteCloser) *XLSXReporter {
	r := &XLSXReporter{
		writer:      writer,
		logger:      observability.GetLogger().Named("xlsx_reporter"),
		file:        excelize.NewFile(),
		runRow:      1,
		decisionRow: 1,
	}
	r.initErr = r.init()
	return r
}

func (r *XLSXReporter) init() error {
	f := r.file
	if err := f.SetSheetName("Sheet1", RunsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(DecisionsSheet); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	r.headerStyle = style

	if err := r.appendRow(RunsSheet, &r.runRow, runsHeader); err != nil {
		return err
	}
	if err := r.appendRow(DecisionsSheet, &r.decisionRow, decisionsHeader); err != nil {
		return err
	}
	for _, sheet := range []string{RunsSheet, DecisionsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(DecisionsSheet, "F", "F", 60); err != nil {
		return err
	}
	return f.SetColWidth(DecisionsSheet, "I", "I", 40)
}

// appendRow writes values at the next free row of sheet.
func (r *XLSXReporter) appendRow(sheet string, row *int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, *row)
	if err != nil {
		return err
	}
	if err := r.file.SetSheetRow(sheet, cell, &values); err != nil {
		return err
	}
	*row++
	return nil
}

func (r *XLSXReporter) Write(rep *survey.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initErr != nil {
		return fmt.Errorf("failed to prepare workbook: %w", r.initErr)
	}

	var code, message string
	if rep.Result != nil {
		code, message = rep.Result.ValidationCode, rep.Result.CompletionMessage
	}
	run := []interface{}{
		rep.RunID, rep.StartedAt.Format(time.RFC3339), string(rep.Outcome), string(rep.FinalState),
		rep.Mode, rep.Seed, rep.Pages, rep.Answered(), rep.Skipped(),
		code, message, rep.Error, rep.Duration.Seconds(),
	}
	if err := r.appendRow(RunsSheet, &r.runRow, run); err != nil {
		return fmt.Errorf("failed to add run row: %w", err)
	}

	for _, d := range rep.Decisions {
		row := []interface{}{
			rep.RunID, d.Page, d.QuestionID, d.Archetype, d.Category, d.Question,
			d.Kind, d.Choice, d.Text, d.Profile, d.Reason, d.Committed, d.At.Format(time.RFC3339),
		}
		if err := r.appendRow(DecisionsSheet, &r.decisionRow, row); err != nil {
			return fmt.Errorf("failed to add decision row: %w", err)
		}
	}
	r.logger.Debug("Added run to workbook.", zap.String("run_id", rep.RunID), zap.Int("decisions", len(rep.Decisions)))
	return nil
}

// Close writes the workbook and closes the output.
func (r *XLSXReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.file.Close()

	if r.initErr != nil {
		_ = r.writer.Close()
		return fmt.Errorf("failed to prepare workbook: %w", r.initErr)
	}
	if err := r.file.Write(r.writer); err != nil {
		_ = r.writer.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return r.writer.Close()
}
