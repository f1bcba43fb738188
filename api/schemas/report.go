package schemas

import (
	"encoding/json"
	"time"
)

// ScanSummary is a free-form mapping from metric name to value. Each scanner
// owns the shape of its own summary (counts, ratios, truncation flags); the
// orchestrator nests them under per-scanner keys.
type ScanSummary map[string]any

// ScanResult is the (summary, findings) pair every scanner produces.
type ScanResult struct {
	Summary  ScanSummary
	Findings []Finding
}

// Report is the terminal artifact of a scan: the merged summary tree plus the
// ordered, deduplicated finding list. It is created once per scan invocation
// and is immutable after the advisory stage returns.
type Report struct {
	ScanID      string      `json:"scan_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Summary     ScanSummary `json:"summary"`
	Issues      []Finding   `json:"issues"`
}

// ToJSON renders the report with the stable field names of the external
// contract. A negative indent collapses the output onto a single line.
func (r *Report) ToJSON(indent int) (string, error) {
	var (
		b   []byte
		err error
	)
	if indent > 0 {
		b, err = json.MarshalIndent(r, "", spaces(indent))
	} else {
		b, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func spaces(n int) string {
	if n > 8 {
		n = 8
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}
