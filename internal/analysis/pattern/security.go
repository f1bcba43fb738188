// File: internal/analysis/pattern/security.go
package pattern

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/core"
	"github.com/emelas-tomoro/llm-linter/internal/index"
)

type securityPattern struct {
	re   *regexp.Regexp
	rule string
}

// Checked in order; a line matching several patterns yields one finding per
// pattern.
var securityPatterns = []securityPattern{
	{regexp.MustCompile(`\beval\(`), "use_of_eval"},
	{regexp.MustCompile(`exec\(`), "use_of_exec"},
	{regexp.MustCompile(`subprocess\.[a-zA-Z_]+\(.*shell\s*=\s*True`), "subprocess_shell_true"},
	{regexp.MustCompile(`aws_secret_access_key|api_key|token\s*=\s*['"]`), "potential_secret_leak"},
	{regexp.MustCompile(`pickle\.(load|loads)`), "unsafe_pickle_usage"},
}

var securityExts = []string{".py", ".js", ".ts", ".tsx"}

// SecurityScanner flags dangerous call sites and likely credential leaks via
// regular-expression heuristics over raw file content.
type SecurityScanner struct {
	*core.BaseScanner
}

// NewSecurityScanner creates the security-smell scanner.
func NewSecurityScanner(logger *zap.Logger) *SecurityScanner {
	return &SecurityScanner{BaseScanner: core.NewBaseScanner("security", logger)}
}

func (s *SecurityScanner) Scan(ctx context.Context, sc schemas.ScanContext) (schemas.ScanResult, error) {
	base, err := index.ResolveRoot(sc.RepoRoot, sc.TargetSubpath)
	if err != nil {
		return schemas.ScanResult{}, err
	}

	var findings []schemas.Finding
	err = index.Walk(ctx, base, securityExts, index.ExcludeSet(sc.ExcludeDirs), func(rel, abs string) error {
		content := core.ReadFileSafe(abs)
		if content == "" {
			return nil
		}
		for _, p := range securityPatterns {
			for _, loc := range p.re.FindAllStringIndex(content, -1) {
				findings = append(findings, schemas.Finding{
					Rule:      p.rule,
					Path:      rel,
					LineStart: strings.Count(content[:loc[0]], "\n") + 1,
					Severity:  schemas.SeverityWarning,
					Message:   fmt.Sprintf("Suspicious pattern '%s' detected.", p.rule),
				})
			}
		}
		return nil
	})
	if err != nil {
		return schemas.ScanResult{}, err
	}

	truncated := false
	if sc.MaxIssues > 0 && len(findings) > sc.MaxIssues {
		findings = findings[:sc.MaxIssues]
		truncated = true
	}

	s.Logger.Debug("Security scan complete", zap.Int("findings", len(findings)))
	return schemas.ScanResult{
		Summary:  schemas.ScanSummary{"issues": len(findings), "truncated": truncated},
		Findings: findings,
	}, nil
}
