// File: internal/analysis/pattern/coverage.go
package pattern

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/core"
	"github.com/emelas-tomoro/llm-linter/internal/index"
)

var (
	pythonTestPath = regexp.MustCompile(`(^|/)tests?/|(^|/)test_`)
	scriptTestPath = regexp.MustCompile(`\.test\.|/__tests__/`)
)

type langCoverage struct {
	impl  int
	tests int
}

func (l langCoverage) pct() float64 {
	if l.impl == 0 {
		return 0.0
	}
	pct := float64(l.tests) / float64(l.impl) * 100.0
	return math.Round(pct*10) / 10
}

// CoverageScanner estimates test coverage per language by comparing the number
// of test files to the number of implementation files. It never reads file
// contents; path shape alone determines what counts as a test.
type CoverageScanner struct {
	*core.BaseScanner
}

// NewCoverageScanner creates the test-coverage estimator.
func NewCoverageScanner(logger *zap.Logger) *CoverageScanner {
	return &CoverageScanner{BaseScanner: core.NewBaseScanner("testing", logger)}
}

func (s *CoverageScanner) Scan(ctx context.Context, sc schemas.ScanContext) (schemas.ScanResult, error) {
	base, err := index.ResolveRoot(sc.RepoRoot, sc.TargetSubpath)
	if err != nil {
		return schemas.ScanResult{}, err
	}

	var py, ts, js langCoverage
	err = index.Walk(ctx, base, core.SourceExts, index.ExcludeSet(sc.ExcludeDirs), func(rel, abs string) error {
		slashed := filepath.ToSlash(rel)
		switch filepath.Ext(rel) {
		case ".py":
			py.impl++
			if pythonTestPath.MatchString(slashed) {
				py.tests++
			}
		case ".ts", ".tsx":
			ts.impl++
			if scriptTestPath.MatchString(slashed) {
				ts.tests++
			}
		case ".js", ".jsx":
			js.impl++
			if scriptTestPath.MatchString(slashed) {
				js.tests++
			}
		}
		return nil
	})
	if err != nil {
		return schemas.ScanResult{}, err
	}

	res := schemas.ScanResult{
		Summary: schemas.ScanSummary{
			"python_impl_files":          py.impl,
			"python_test_files":          py.tests,
			"python_test_file_ratio_pct": py.pct(),
			"ts_impl_files":              ts.impl,
			"ts_test_files":              ts.tests,
			"ts_test_file_ratio_pct":     ts.pct(),
			"js_impl_files":              js.impl,
			"js_test_files":              js.tests,
			"js_test_file_ratio_pct":     js.pct(),
		},
	}

	low := func(lang, label string, cov langCoverage) {
		if cov.impl > 0 && cov.pct() < sc.Thresholds.LowCoveragePct {
			res.Findings = append(res.Findings, schemas.Finding{
				Rule:     "low_test_coverage_" + lang,
				Path:     ".",
				Severity: schemas.SeverityWarning,
				Message:  fmt.Sprintf("Low %s test file ratio (~%.1f%%). Consider adding tests.", label, cov.pct()),
			})
		}
	}
	low("python", "Python", py)
	low("ts", "TS", ts)
	low("js", "JS", js)

	core.Truncate(&res, sc.MaxIssues)
	s.Logger.Debug("Coverage scan complete", zap.Int("findings", len(res.Findings)))
	return res, nil
}
