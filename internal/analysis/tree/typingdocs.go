// File: internal/analysis/tree/typingdocs.go
package tree

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/core"
	"github.com/emelas-tomoro/llm-linter/internal/index"
)

// TypingDocsScanner checks Python type annotations, docstrings, and comment
// density. A callable counts as fully typed only when every plain positional
// parameter is annotated and the return type is annotated.
type TypingDocsScanner struct {
	*core.BaseScanner
}

// NewTypingDocsScanner creates the typing and documentation scanner.
func NewTypingDocsScanner(logger *zap.Logger) *TypingDocsScanner {
	return &TypingDocsScanner{BaseScanner: core.NewBaseScanner("typing_docs", logger)}
}

// Scan analyzes module docstrings, class docstrings, callable typing and
// docstrings at module level (methods included), plus comment density for
// files of at least the configured minimum length.
func (s *TypingDocsScanner) Scan(ctx context.Context, sc schemas.ScanContext) (schemas.ScanResult, error) {
	base, err := index.ResolveRoot(sc.RepoRoot, sc.TargetSubpath)
	if err != nil {
		return schemas.ScanResult{}, err
	}

	th := sc.Thresholds
	res := schemas.ScanResult{
		Summary: schemas.ScanSummary{
			"total_functions":       0,
			"typed_functions":       0,
			"functions_without_doc": 0,
			"classes_without_doc":   0,
		},
	}
	bump := func(key string) { res.Summary[key] = res.Summary[key].(int) + 1 }

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
		root := t.RootNode()

		if !hasDocstring(root, source) {
			res.Findings = append(res.Findings, schemas.Finding{
				Rule:      "missing_module_docstring",
				Path:      rel,
				LineStart: 1,
				Severity:  schemas.SeverityWarning,
				Message:   "Module is missing a top-level docstring.",
			})
		}

		for i := 0; i < int(root.NamedChildCount()); i++ {
			node := unwrapDefinition(root.NamedChild(i))
			switch node.Type() {
			case "class_definition":
				if !hasDocstring(node.ChildByFieldName("body"), source) {
					bump("classes_without_doc")
					start, _ := lineSpan(node)
					res.Findings = append(res.Findings, schemas.Finding{
						Rule:      "missing_class_docstring",
						Path:      rel,
						LineStart: start,
						Severity:  schemas.SeverityWarning,
						Message:   fmt.Sprintf("Class '%s' is missing a docstring.", declName(node, source)),
					})
				}
				classMethods(node, func(method, _ *sitter.Node) {
					s.checkCallable(&res, bump, method, source, rel, "Method")
				})
			case "function_definition":
				s.checkCallable(&res, bump, node, source, rel, "Function")
			}
		}

		totalLines := countLines(src)
		if totalLines >= th.CommentDensityMinLines {
			comments := 0
			for _, line := range strings.Split(src, "\n") {
				if strings.HasPrefix(strings.TrimSpace(line), "#") {
					comments++
				}
			}
			density := float64(comments) / float64(totalLines) * 100.0
			if density < th.CommentDensityPct {
				res.Findings = append(res.Findings, schemas.Finding{
					Rule:     "low_comment_density",
					Path:     rel,
					Severity: schemas.SeverityInfo,
					Message:  fmt.Sprintf("Low comment density (%.1f%%).", density),
				})
			}
		}
		return nil
	})
	if err != nil {
		return schemas.ScanResult{}, err
	}

	core.Truncate(&res, sc.MaxIssues)
	s.Logger.Debug("Typing/docs scan complete", zap.Int("findings", len(res.Findings)))
	return res, nil
}

func (s *TypingDocsScanner) checkCallable(res *schemas.ScanResult, bump func(string), fn *sitter.Node, source []byte, rel, kind string) {
	bump("total_functions")
	name := declName(fn, source)
	start, _ := lineSpan(fn)

	if fullyTyped(fn) {
		bump("typed_functions")
	} else {
		res.Findings = append(res.Findings, schemas.Finding{
			Rule:      "missing_type_hints",
			Path:      rel,
			LineStart: start,
			Severity:  schemas.SeverityWarning,
			Message:   fmt.Sprintf("%s '%s' is missing type hints.", kind, name),
		})
	}

	if !hasDocstring(fn.ChildByFieldName("body"), source) {
		bump("functions_without_doc")
		res.Findings = append(res.Findings, schemas.Finding{
			Rule:      "missing_function_docstring",
			Path:      rel,
			LineStart: start,
			Severity:  schemas.SeverityWarning,
			Message:   fmt.Sprintf("%s '%s' is missing a docstring.", kind, name),
		})
	}
}
