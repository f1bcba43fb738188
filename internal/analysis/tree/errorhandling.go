// File: internal/analysis/tree/errorhandling.go
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

// ErrorHandlingScanner flags bare and overly broad exception handlers in
// Python sources and tallies try/except usage.
type ErrorHandlingScanner struct {
	*core.BaseScanner
}

// NewErrorHandlingScanner creates the exception-hygiene scanner.
func NewErrorHandlingScanner(logger *zap.Logger) *ErrorHandlingScanner {
	return &ErrorHandlingScanner{BaseScanner: core.NewBaseScanner("error_handling", logger)}
}

func (s *ErrorHandlingScanner) Scan(ctx context.Context, sc schemas.ScanContext) (schemas.ScanResult, error) {
	base, err := index.ResolveRoot(sc.RepoRoot, sc.TargetSubpath)
	if err != nil {
		return schemas.ScanResult{}, err
	}

	res := schemas.ScanResult{
		Summary: schemas.ScanSummary{
			"try_blocks":    0,
			"except_blocks": 0,
			"bare_except":   0,
			"broad_except":  0,
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
		walk(t.RootNode(), func(n *sitter.Node) bool {
			switch n.Type() {
			case "try_statement":
				bump("try_blocks")
			case "except_clause":
				bump("except_blocks")
				s.checkClause(&res, bump, n, source, rel)
			}
			return true
		})
		return nil
	})
	if err != nil {
		return schemas.ScanResult{}, err
	}

	core.Truncate(&res, sc.MaxIssues)
	s.Logger.Debug("Error-handling scan complete", zap.Int("findings", len(res.Findings)))
	return res, nil
}

// checkClause classifies a single except clause. A clause with no exception
// expression is bare; one naming Exception or BaseException (directly or
// through an "as" binding) is broad.
func (s *ErrorHandlingScanner) checkClause(res *schemas.ScanResult, bump func(string), clause *sitter.Node, source []byte, rel string) {
	line, _ := lineSpan(clause)

	caught := exceptExpr(clause)
	if caught == nil {
		bump("bare_except")
		res.Findings = append(res.Findings, schemas.Finding{
			Rule:      "bare_except",
			Path:      rel,
			LineStart: line,
			Severity:  schemas.SeverityWarning,
			Message:   "Bare except detected; catch specific exceptions.",
		})
		return
	}

	if caught.Type() == "as_pattern" {
		if inner := caught.NamedChild(0); inner != nil {
			caught = inner
		}
	}
	if caught.Type() == "identifier" {
		name := caught.Content(source)
		if name == "Exception" || name == "BaseException" {
			bump("broad_except")
			res.Findings = append(res.Findings, schemas.Finding{
				Rule:      "broad_except",
				Path:      rel,
				LineStart: line,
				Severity:  schemas.SeverityWarning,
				Message:   fmt.Sprintf("Catching broad exception '%s'. Prefer specific exception types.", name),
			})
		}
	}
}

// exceptExpr returns the exception expression of an except clause, or nil for
// a bare except. The clause's named children are the optional expression
// followed by the handler block.
func exceptExpr(clause *sitter.Node) *sitter.Node {
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		if child.Type() != "block" && child.Type() != "comment" {
			return child
		}
	}
	return nil
}
