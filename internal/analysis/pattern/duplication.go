// File: internal/analysis/pattern/duplication.go
package pattern

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/core"
	"github.com/emelas-tomoro/llm-linter/internal/index"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

type dupLocation struct {
	path string
	line int
}

// DuplicationScanner finds near-exact duplicated code blocks by hashing
// fixed-size windows of whitespace-normalized lines across all source files.
// The first location of each repeated block is treated as canonical; every
// later occurrence is reported against it.
type DuplicationScanner struct {
	*core.BaseScanner
}

// NewDuplicationScanner creates the line-shingling duplication scanner.
func NewDuplicationScanner(logger *zap.Logger) *DuplicationScanner {
	return &DuplicationScanner{BaseScanner: core.NewBaseScanner("duplication", logger)}
}

func (s *DuplicationScanner) Scan(ctx context.Context, sc schemas.ScanContext) (schemas.ScanResult, error) {
	base, err := index.ResolveRoot(sc.RepoRoot, sc.TargetSubpath)
	if err != nil {
		return schemas.ScanResult{}, err
	}

	th := sc.Thresholds
	maxIssues := sc.DuplicationCap()

	// Hash order must be the order blocks were first seen so the report is
	// stable run to run.
	shingles := make(map[string][]dupLocation)
	var order []string

	err = index.Walk(ctx, base, core.SourceExts, index.ExcludeSet(sc.ExcludeDirs), func(rel, abs string) error {
		lines := strings.Split(core.ReadFileSafe(abs), "\n")
		if n := len(lines); n > 0 && lines[n-1] == "" {
			lines = lines[:n-1]
		}
		for i := range lines {
			lines[i] = normalizeLine(lines[i])
		}
		if len(lines) < th.ShingleLines {
			return nil
		}
		for i := 0; i+th.ShingleLines <= len(lines); i++ {
			block := strings.Join(lines[i:i+th.ShingleLines], "\n")
			if strings.TrimSpace(block) == "" {
				continue
			}
			sum := md5.Sum([]byte(block))
			key := hex.EncodeToString(sum[:])
			if _, seen := shingles[key]; !seen {
				order = append(order, key)
			}
			shingles[key] = append(shingles[key], dupLocation{path: rel, line: i + 1})
		}
		return nil
	})
	if err != nil {
		return schemas.ScanResult{}, err
	}

	var findings []schemas.Finding
outer:
	for _, key := range order {
		locs := shingles[key]
		if len(locs) < th.MinOccurrences {
			continue
		}
		first := locs[0]
		for _, loc := range locs[1:] {
			findings = append(findings, schemas.Finding{
				Rule:      "duplicated_code_block",
				Path:      loc.path,
				LineStart: loc.line,
				Severity:  schemas.SeverityWarning,
				Message:   fmt.Sprintf("Duplicated %d-line block also found in %s:%d", th.ShingleLines, first.path, first.line),
			})
			if maxIssues > 0 && len(findings) >= maxIssues {
				break outer
			}
		}
	}

	s.Logger.Debug("Duplication scan complete", zap.Int("findings", len(findings)))
	return schemas.ScanResult{
		Summary: schemas.ScanSummary{
			"duplicated_blocks": len(findings),
			"truncated":         maxIssues > 0 && len(findings) >= maxIssues,
		},
		Findings: findings,
	}, nil
}

func normalizeLine(line string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(line), " ")
}
