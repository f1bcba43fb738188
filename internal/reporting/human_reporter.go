// File: internal/reporting/human_reporter.go
package reporting

import (
	"fmt"
	"io"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
)

var compactJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// HumanReporter renders the report as readable plain text: a summary block
// followed by a numbered issue list.
type HumanReporter struct {
	writer io.WriteCloser
}

// NewHumanReporter takes ownership of the writer.
func NewHumanReporter(writer io.WriteCloser) *HumanReporter {
	return &HumanReporter{writer: writer}
}

func (r *HumanReporter) Write(report *schemas.Report) error {
	var b strings.Builder
	b.WriteString("=== Lint Summary ===\n")

	keys := make([]string, 0, len(report.Summary))
	for k := range report.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, renderValue(report.Summary[k]))
	}

	b.WriteString("\n=== Issues ===\n")
	if len(report.Issues) == 0 {
		b.WriteString("No issues found.\n")
	} else {
		for i, iss := range report.Issues {
			loc := ""
			if iss.LineStart > 0 {
				loc = fmt.Sprintf(" (%d-%d)", iss.LineStart, iss.LineEnd)
			}
			fmt.Fprintf(&b, "%d. [%s] %s - %s%s\n   %s\n", i+1, iss.Severity, iss.Rule, iss.Path, loc, iss.Message)
			if iss.Recommendation != "" {
				fmt.Fprintf(&b, "   Recommendation: %s\n", iss.Recommendation)
			}
			if iss.CodeSuggestion != "" {
				b.WriteString("   Code Suggestion:\n")
				for _, line := range strings.Split(iss.CodeSuggestion, "\n") {
					b.WriteString("     " + line + "\n")
				}
			}
		}
	}

	if _, err := io.WriteString(r.writer, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (r *HumanReporter) Close() error {
	return r.writer.Close()
}

// renderValue flattens scalar summary values directly and nested structures
// as compact JSON.
func renderValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case bool, int, int64, float64:
		return fmt.Sprintf("%v", v)
	default:
		out, err := compactJSON.MarshalToString(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return out
	}
}
