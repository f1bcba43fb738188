package schemas

// Thresholds bundles the numeric knobs shared by the heuristic scanners.
// Zero values are replaced with the documented defaults at request
// validation time, so scanners may assume every field is positive.
type Thresholds struct {
	MaxFileLines  int `json:"max_file_lines" mapstructure:"max_file_lines"`
	MaxClassLines int `json:"max_class_lines" mapstructure:"max_class_lines"`
	MaxFuncLines  int `json:"max_func_lines" mapstructure:"max_func_lines"`

	// ShingleLines is the duplication window size in normalized lines;
	// MinOccurrences is how many locations a window hash needs before the
	// block counts as duplicated.
	ShingleLines   int `json:"shingle_lines" mapstructure:"shingle_lines"`
	MinOccurrences int `json:"min_occurrences" mapstructure:"min_occurrences"`

	LargeDirFiles int `json:"large_dir_files" mapstructure:"large_dir_files"`

	// CommentDensityMinLines gates the density check to files of at least
	// this many lines; CommentDensityPct is the ratio (percent) below which
	// a low_comment_density finding fires.
	CommentDensityMinLines int     `json:"comment_density_min_lines" mapstructure:"comment_density_min_lines"`
	CommentDensityPct      float64 `json:"comment_density_pct" mapstructure:"comment_density_pct"`

	// LowCoveragePct is the implementation-to-test file ratio (percent)
	// below which a language gets a low coverage warning.
	LowCoveragePct float64 `json:"low_coverage_pct" mapstructure:"low_coverage_pct"`
}

// DefaultThresholds returns the documented defaults for every knob.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxFileLines:           1000,
		MaxClassLines:          400,
		MaxFuncLines:           50,
		ShingleLines:           5,
		MinOccurrences:         2,
		LargeDirFiles:          50,
		CommentDensityMinLines: 50,
		CommentDensityPct:      2.0,
		LowCoveragePct:         10.0,
	}
}

// ScanContext is the immutable-per-run configuration handed to every scanner.
// The orchestrator gives each scanner its own copy via Clone so no scanner can
// mutate state visible to another; the isolation is an invariant, not an
// optimization.
type ScanContext struct {
	// RepoRoot is the resolved absolute repository root. TargetSubpath, when
	// set, scopes the scan to a subtree; it must resolve inside RepoRoot.
	RepoRoot      string `json:"repo_root"`
	TargetSubpath string `json:"target_subpath,omitempty"`

	// ExcludeDirs extends the default exclusion set (VCS metadata,
	// dependency directories, virtualenvs, caches).
	ExcludeDirs []string `json:"exclude_dirs,omitempty"`

	// MaxIssues caps the finding list of every scanner; DuplicationMaxIssues
	// overrides the cap for the duplication scanner, which is the most
	// expensive one and capped separately.
	MaxIssues            int `json:"max_issues"`
	DuplicationMaxIssues int `json:"duplication_max_issues"`

	// IncludeIndexSample asks the indexer for a capped path sample.
	IncludeIndexSample bool `json:"include_index_sample"`
	IndexSampleLimit   int  `json:"index_sample_limit"`

	Thresholds Thresholds `json:"thresholds"`
}

// Clone returns a deep copy of the context. Every slice is copied so a
// scanner holding the clone can never alias memory owned by another scanner.
func (sc ScanContext) Clone() ScanContext {
	out := sc
	if sc.ExcludeDirs != nil {
		out.ExcludeDirs = make([]string, len(sc.ExcludeDirs))
		copy(out.ExcludeDirs, sc.ExcludeDirs)
	}
	return out
}

// DuplicationCap resolves the effective duplication issue cap, falling back
// to the general per-scanner cap.
func (sc ScanContext) DuplicationCap() int {
	if sc.DuplicationMaxIssues > 0 {
		return sc.DuplicationMaxIssues
	}
	return sc.MaxIssues
}
