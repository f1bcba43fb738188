// File: internal/analysis/tree/complexity.go
package tree

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/core"
	"github.com/emelas-tomoro/llm-linter/internal/index"
)

// ComplexityScanner flags long files, classes, and functions using line-count
// thresholds. File length is checked for every supported source extension;
// class and function spans require a parseable Python file.
type ComplexityScanner struct {
	*core.BaseScanner
}

// NewComplexityScanner creates the length/complexity scanner.
func NewComplexityScanner(logger *zap.Logger) *ComplexityScanner {
	return &ComplexityScanner{BaseScanner: core.NewBaseScanner("complexity", logger)}
}

// Scan walks the repository twice: once over all source files for the file
// length check, once over Python files for declaration spans. Files that fail
// to parse are skipped silently.
func (s *ComplexityScanner) Scan(ctx context.Context, sc schemas.ScanContext) (schemas.ScanResult, error) {
	base, err := index.ResolveRoot(sc.RepoRoot, sc.TargetSubpath)
	if err != nil {
		return schemas.ScanResult{}, err
	}

	th := sc.Thresholds
	exclude := index.ExcludeSet(sc.ExcludeDirs)
	res := schemas.ScanResult{
		Summary: schemas.ScanSummary{"long_files": 0, "long_classes": 0, "long_functions": 0},
	}
	bump := func(key string) { res.Summary[key] = res.Summary[key].(int) + 1 }

	err = index.Walk(ctx, base, core.SourceExts, exclude, func(rel, abs string) error {
		content := core.ReadFileSafe(abs)
		if lines := countLines(content); lines > th.MaxFileLines {
			bump("long_files")
			res.Findings = append(res.Findings, schemas.Finding{
				Rule:     "file_too_long",
				Path:     rel,
				Severity: schemas.SeverityWarning,
				Message:  fmt.Sprintf("File has %d lines (>%d). Consider splitting.", lines, th.MaxFileLines),
			})
		}
		return nil
	})
	if err != nil {
		return schemas.ScanResult{}, err
	}

	parser := newParser()
	defer parser.Close()

	err = index.Walk(ctx, base, core.PythonExts, exclude, func(rel, abs string) error {
		src := core.ReadFileSafe(abs)
		if src == "" {
			return nil
		}
		t, err := parsePython(ctx, parser, []byte(src))
		if err != nil {
			return nil
		}
		defer t.Close()

		source := []byte(src)
		walkDecls(t.RootNode(), source, func(kind, name string, start, end int) {
			span := end - start + 1
			switch {
			case kind == "class" && span > th.MaxClassLines:
				bump("long_classes")
				res.Findings = append(res.Findings, schemas.Finding{
					Rule:      "class_too_long",
					Path:      rel,
					LineStart: start,
					LineEnd:   end,
					Severity:  schemas.SeverityWarning,
					Message:   fmt.Sprintf("Class '%s' is %d lines (>%d).", name, span, th.MaxClassLines),
				})
			case kind == "function" && span > th.MaxFuncLines:
				bump("long_functions")
				res.Findings = append(res.Findings, schemas.Finding{
					Rule:      "function_too_long",
					Path:      rel,
					LineStart: start,
					LineEnd:   end,
					Severity:  schemas.SeverityWarning,
					Message:   fmt.Sprintf("Function '%s' is %d lines (>%d).", name, span, th.MaxFuncLines),
				})
			}
		})
		return nil
	})
	if err != nil {
		return schemas.ScanResult{}, err
	}

	core.Truncate(&res, sc.MaxIssues)
	s.Logger.Debug("Complexity scan complete", zap.Int("findings", len(res.Findings)))
	return res, nil
}
