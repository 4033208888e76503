// internal/reporting/text_reporter.go
package reporting

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/xkilldash9x/surveyor/internal/survey"
)

// TextReporter prints a console summary of each run.
type TextReporter struct {
	writer io.WriteCloser
}

func NewTextReporter(writer io.WriteCloser) *TextReporter {
	return &TextReporter{writer: writer}
}

func (r *TextReporter) Write(rep *survey.Report) error {
	tw := tabwriter.NewWriter(r.writer, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Run\t%s\n", rep.RunID)
	fmt.Fprintf(tw, "Outcome\t%s\n", strings.ToUpper(string(rep.Outcome)))
	fmt.Fprintf(tw, "Final state\t%s\n", rep.FinalState)
	fmt.Fprintf(tw, "Mode\t%s\n", rep.Mode)
	fmt.Fprintf(tw, "Seed\t%d\n", rep.Seed)
	fmt.Fprintf(tw, "Pages\t%d\n", rep.Pages)
	fmt.Fprintf(tw, "Answered\t%d (%d skipped)\n", rep.Answered(), rep.Skipped())
	fmt.Fprintf(tw, "Duration\t%s (paused %s)\n", rep.Duration.Round(time.Millisecond), rep.Paused)
	if rep.Result != nil {
		fmt.Fprintf(tw, "Validation code\t%s\n", orDash(rep.Result.ValidationCode))
		fmt.Fprintf(tw, "Message\t%s\n", orDash(rep.Result.CompletionMessage))
	}
	if rep.Error != "" {
		fmt.Fprintf(tw, "Error\t%s\n", rep.Error)
	}
	if len(rep.Trace) > 0 {
		states := make([]string, len(rep.Trace))
		for i, s := range rep.Trace {
			states[i] = string(s)
		}
		fmt.Fprintf(tw, "Trace\t%s\n", strings.Join(states, " > "))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if len(rep.Decisions) == 0 {
		return nil
	}
	fmt.Fprintln(r.writer)
	tw = tabwriter.NewWriter(r.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tARCHETYPE\tQUESTION\tANSWER\tENTERED")
	for _, d := range rep.Decisions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", d.Page, d.Archetype, truncate(d.Question, 60), answerOf(d), yesNo(d.Committed))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write decisions: %w", err)
	}
	return nil
}

func (r *TextReporter) Close() error {
	return r.writer.Close()
}

// answerOf is the short human form of a decision.
func answerOf(d survey.DecisionRecord) string {
	switch {
	case d.Kind == "skip":
		return "skipped: " + d.Reason
	case d.Choice != "" && d.Text != "":
		return d.Choice + " / " + truncate(d.Text, 40)
	case d.Choice != "":
		return d.Choice
	default:
		return truncate(d.Text, 40)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
