// internal/reporting/reporter.go

// Package reporting renders a finished survey run for people and for other
// tools: a console summary, a JSON document and a spreadsheet decision log.
package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/xkilldash9x/surveyor/internal/survey"
)

// Output formats understood by New.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// Reporter writes run reports to an output.
type Reporter interface {
	// Write renders a single run report.
	Write(rep *survey.Report) error
	// Close finalizes the output and releases the underlying file, if any.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for format writing to outputPath. An empty path or
// "stdout" writes to standard output, except for the spreadsheet format which
// needs a file.
func New(format, outputPath string) (Reporter, error) {
	isStdOut := outputPath == "" || outputPath == "stdout"
	if format == FormatXLSX && isStdOut {
		return nil, fmt.Errorf("xlsx reporter needs an output file")
	}
	switch format {
	case FormatText, FormatJSON, FormatXLSX:
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	var writer io.WriteCloser
	if isStdOut {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(writer), nil
	case FormatXLSX:
		return NewXLSXReporter(writer), nil
	default:
		return NewTextReporter(writer), nil
	}
}

// NopCloser lets a reporter write to a stream it does not own.
func NopCloser(w io.Writer) io.WriteCloser {
	return &nopWriteCloser{w}
}
