// File: internal/analysis/tree/cohesion.go
package tree

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/core"
	"github.com/emelas-tomoro/llm-linter/internal/index"
)

// CohesionScanner flags instance methods that never touch instance state.
// Dunder methods and methods decorated @staticmethod or @classmethod are
// exempt.
type CohesionScanner struct {
	*core.BaseScanner
}

// NewCohesionScanner creates the class-cohesion scanner.
func NewCohesionScanner(logger *zap.Logger) *CohesionScanner {
	return &CohesionScanner{BaseScanner: core.NewBaseScanner("design", logger)}
}

func (s *CohesionScanner) Scan(ctx context.Context, sc schemas.ScanContext) (schemas.ScanResult, error) {
	base, err := index.ResolveRoot(sc.RepoRoot, sc.TargetSubpath)
	if err != nil {
		return schemas.ScanResult{}, err
	}

	res := schemas.ScanResult{
		Summary: schemas.ScanSummary{"methods_no_self_usage": 0},
	}

	parser := newParser()
	defer parser.Close()

	err = index.Walk(ctx, base, core.PythonExts, index.ExcludeSet(sc.ExcludeDirs), func(rel, abs string) error {
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
		// Classes nested inside other classes or functions count too.
		walk(t.RootNode(), func(class *sitter.Node) bool {
			if class.Type() != "class_definition" {
				return true
			}
			className := declName(class, source)
			classMethods(class, func(method, wrapper *sitter.Node) {
				name := declName(method, source)
				if isDunder(name) {
					return
				}
				if hasDecoratorNamed(wrapper, source, "staticmethod", "classmethod") {
					return
				}
				if referencesSelf(method, source) {
					return
				}
				res.Summary["methods_no_self_usage"] = res.Summary["methods_no_self_usage"].(int) + 1
				line, _ := lineSpan(method)
				res.Findings = append(res.Findings, schemas.Finding{
					Rule:      "low_class_cohesion",
					Path:      rel,
					LineStart: line,
					Severity:  schemas.SeverityInfo,
					Message:   fmt.Sprintf("Method '%s' in class '%s' does not access instance state; consider @staticmethod or moving it.", name, className),
				})
			})
			return true
		})
		return nil
	})
	if err != nil {
		return schemas.ScanResult{}, err
	}

	core.Truncate(&res, sc.MaxIssues)
	s.Logger.Debug("Cohesion scan complete", zap.Int("findings", len(res.Findings)))
	return res, nil
}
