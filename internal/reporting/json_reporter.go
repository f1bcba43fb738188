// File: internal/reporting/json_reporter.go
package reporting

import (
	"fmt"
	"io"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
)

// JSONReporter renders the report as a single JSON document.
type JSONReporter struct {
	writer io.WriteCloser
	indent int
}

// NewJSONReporter takes ownership of the writer.
func NewJSONReporter(writer io.WriteCloser, indent int) *JSONReporter {
	return &JSONReporter{writer: writer, indent: indent}
}

func (r *JSONReporter) Write(report *schemas.Report) error {
	out, err := report.ToJSON(r.indent)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if _, err := io.WriteString(r.writer, out+"\n"); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (r *JSONReporter) Close() error {
	return r.writer.Close()
}
