package schemas

// -- Finding Schemas --

// Severity represents the severity level of a lint finding. The values are
// lowercase to align with the JSON report contract.
type Severity string

// Constants defining the standard severity levels for findings.
const (
	SeverityError   Severity = "error"   // A failure inside the engine itself or a definite defect.
	SeverityWarning Severity = "warning" // The default severity for heuristic findings.
	SeverityInfo    Severity = "info"    // Advisory findings such as style observations.
)

// Rank maps a severity onto a sortable integer where lower is more severe.
// Unknown severities sort after info so malformed data never outranks real
// findings.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// Valid reports whether the severity is one of the three known levels.
func (s Severity) Valid() bool {
	return s == SeverityError || s == SeverityWarning || s == SeverityInfo
}

// Finding encapsulates a single issue reported by a scanner: the rule that
// fired, where it fired, and the human-readable message. The optional
// Recommendation and CodeSuggestion fields are populated exactly once by the
// advisory stage and never re-mutated afterwards.
type Finding struct {
	Rule string `json:"rule"` // Stable category identifier (e.g. "function_too_long").
	Path string `json:"path"` // File or directory, relative to the repository root.

	// LineStart and LineEnd are 1-based and inclusive. Zero means the finding
	// is not tied to a specific line and the field is omitted from JSON.
	LineStart int `json:"line_start,omitempty"`
	LineEnd   int `json:"line_end,omitempty"`

	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	Recommendation string `json:"recommendation,omitempty"`  // Remediation text from the advisor.
	CodeSuggestion string `json:"code_suggestion,omitempty"` // Optional short replacement snippet.
}

// FindingKey is the identity triple used for merging and deduplication. Two
// findings sharing the same key describe the same logical issue even when
// emitted by different scanners or different runs.
type FindingKey struct {
	Path      string
	LineStart int
	Rule      string
}

// Key returns the finding's identity triple.
func (f *Finding) Key() FindingKey {
	return FindingKey{Path: f.Path, LineStart: f.LineStart, Rule: f.Rule}
}

// FindingDigest is the compact representation of a finding forwarded to the
// remediation advisor. It deliberately omits the mutable recommendation
// fields so the advisor only ever sees the immutable identity and message.
type FindingDigest struct {
	Rule      string   `json:"rule"`
	Path      string   `json:"path"`
	LineStart int      `json:"line_start,omitempty"`
	LineEnd   int      `json:"line_end,omitempty"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
}

// Digest projects a finding into its advisor-facing form.
func (f *Finding) Digest() FindingDigest {
	return FindingDigest{
		Rule:      f.Rule,
		Path:      f.Path,
		LineStart: f.LineStart,
		LineEnd:   f.LineEnd,
		Severity:  f.Severity,
		Message:   f.Message,
	}
}

// Recommendation is one remediation tuple returned by the advisor. Tuples
// whose identity triple matches no finding in the report are silently
// dropped during the merge.
type Recommendation struct {
	Path           string `json:"path"`
	LineStart      int    `json:"line_start,omitempty"`
	Rule           string `json:"rule"`
	Text           string `json:"text"`
	CodeSuggestion string `json:"code_suggestion,omitempty"`
}

// Key returns the identity triple the recommendation targets.
func (r *Recommendation) Key() FindingKey {
	return FindingKey{Path: r.Path, LineStart: r.LineStart, Rule: r.Rule}
}
