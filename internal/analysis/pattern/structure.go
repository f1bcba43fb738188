// File: internal/analysis/pattern/structure.go
package pattern

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/core"
	"github.com/emelas-tomoro/llm-linter/internal/index"
)

// StructureScanner checks directory-level organization: oversized directories
// and Python package directories missing an __init__.py.
type StructureScanner struct {
	*core.BaseScanner
}

// NewStructureScanner creates the file-structure scanner.
func NewStructureScanner(logger *zap.Logger) *StructureScanner {
	return &StructureScanner{BaseScanner: core.NewBaseScanner("structure", logger)}
}

func (s *StructureScanner) Scan(ctx context.Context, sc schemas.ScanContext) (schemas.ScanResult, error) {
	base, err := index.ResolveRoot(sc.RepoRoot, sc.TargetSubpath)
	if err != nil {
		return schemas.ScanResult{}, err
	}

	exclude := index.ExcludeSet(sc.ExcludeDirs)
	largeDirs := []map[string]any{}
	var findings []schemas.Finding

	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if path != base {
			if _, skip := exclude[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil
		}
		files := 0
		hasPy := false
		hasInit := false
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			files++
			switch {
			case e.Name() == "__init__.py":
				hasPy = true
				hasInit = true
			case filepath.Ext(e.Name()) == ".py":
				hasPy = true
			}
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			return nil
		}

		if path != base && files > sc.Thresholds.LargeDirFiles {
			largeDirs = append(largeDirs, map[string]any{"path": rel, "num_files": files})
			findings = append(findings, schemas.Finding{
				Rule:     "large_directory",
				Path:     rel,
				Severity: schemas.SeverityInfo,
				Message:  fmt.Sprintf("Directory contains %d files. Consider sub-structuring to improve navigability.", files),
			})
		}
		if hasPy && !hasInit {
			findings = append(findings, schemas.Finding{
				Rule:     "missing_init_py",
				Path:     rel,
				Severity: schemas.SeverityWarning,
				Message:  "Python package directory missing __init__.py.",
			})
		}
		return nil
	})
	if err != nil {
		return schemas.ScanResult{}, err
	}

	res := schemas.ScanResult{
		Summary:  schemas.ScanSummary{"large_dirs": largeDirs},
		Findings: findings,
	}
	core.Truncate(&res, sc.MaxIssues)
	s.Logger.Debug("Structure scan complete", zap.Int("findings", len(res.Findings)))
	return res, nil
}
