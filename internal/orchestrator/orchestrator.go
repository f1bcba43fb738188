// File: internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/advisor"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/pattern"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/tree"
	"github.com/emelas-tomoro/llm-linter/internal/index"
)

// Engine fans a scan out across every registered scanner, merges their
// results deterministically, and optionally enriches the merged findings with
// remediation advice. Scanner faults (errors and panics alike) degrade to
// scanner_exception findings; they never abort the run.
type Engine struct {
	logger   *zap.Logger
	scanners []schemas.RepoScanner
	indexer  *index.Indexer

	// advisor may be nil, in which case the enrichment stage is skipped.
	advisor            schemas.Advisor
	maxAdvisorFindings int
}

// Option configures an Engine.
type Option func(*Engine)

// WithAdvisor enables the remediation stage. maxFindings bounds how many of
// the most severe findings are forwarded.
func WithAdvisor(a schemas.Advisor, maxFindings int) Option {
	return func(e *Engine) {
		e.advisor = a
		e.maxAdvisorFindings = maxFindings
	}
}

// WithScanners replaces the default scanner set. Intended for tests.
func WithScanners(scanners ...schemas.RepoScanner) Option {
	return func(e *Engine) { e.scanners = scanners }
}

// New builds an engine with the full default scanner set. The registration
// order is fixed: it is the tie-break order when two scanners emit findings
// with the same identity, so it must not vary between runs.
func New(logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		logger:  logger.Named("orchestrator"),
		indexer: index.New(logger),
		scanners: []schemas.RepoScanner{
			pattern.NewDuplicationScanner(logger),
			tree.NewCohesionScanner(logger),
			pattern.NewStructureScanner(logger),
			tree.NewComplexityScanner(logger),
			tree.NewTypingDocsScanner(logger),
			tree.NewErrorHandlingScanner(logger),
			pattern.NewCoverageScanner(logger),
			pattern.NewSecurityScanner(logger),
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes every scanner concurrently against its own clone of the scan
// context and returns the merged report content. rulesText, when non-empty,
// is forwarded verbatim to the advisor.
func (e *Engine) Run(ctx context.Context, sc schemas.ScanContext, rulesText string) (schemas.ScanResult, error) {
	if _, err := index.ResolveRoot(sc.RepoRoot, sc.TargetSubpath); err != nil {
		return schemas.ScanResult{}, err
	}

	e.logger.Info("Starting repository scan",
		zap.String("root", sc.RepoRoot),
		zap.Int("scanners", len(e.scanners)))

	results := make([]schemas.ScanResult, len(e.scanners))
	faults := make([]error, len(e.scanners))
	var indexSummary *index.Summary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := e.indexer.Index(gctx, sc.Clone())
		if err != nil {
			e.logger.Warn("Repository indexing failed", zap.Error(err))
			return nil
		}
		indexSummary = s
		return nil
	})
	for i, scanner := range e.scanners {
		i, scanner := i, scanner
		g.Go(func() error {
			results[i], faults[i] = e.runOne(gctx, scanner, sc.Clone())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return schemas.ScanResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return schemas.ScanResult{}, err
	}

	merged := e.merge(results, faults, indexSummary)

	if e.advisor != nil && len(merged.Findings) > 0 {
		e.enrich(ctx, &merged, rulesText)
	}

	e.logger.Info("Scan complete", zap.Int("total_issues", len(merged.Findings)))
	return merged, nil
}

// runOne executes a single scanner, converting a panic into an ordinary
// error so one misbehaving scanner cannot take down the run.
func (e *Engine) runOne(ctx context.Context, scanner schemas.RepoScanner, sc schemas.ScanContext) (res schemas.ScanResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	e.logger.Debug("Running scanner", zap.String("scanner", scanner.Name()))
	return scanner.Scan(ctx, sc)
}

// merge combines per-scanner results in registration order: faults become
// scanner_exception findings, duplicate identities keep their first
// occurrence, and the final list is ordered by severity, then location.
func (e *Engine) merge(results []schemas.ScanResult, faults []error, idx *index.Summary) schemas.ScanResult {
	byScanner := schemas.ScanSummary{}
	var findings []schemas.Finding

	for i, scanner := range e.scanners {
		if faults[i] != nil {
			e.logger.Error("Scanner failed",
				zap.String("scanner", scanner.Name()),
				zap.Error(faults[i]))
			findings = append(findings, schemas.Finding{
				Rule:     "scanner_exception",
				Path:     "",
				Severity: schemas.SeverityError,
				Message:  fmt.Sprintf("Scanner '%s' failed: %v", scanner.Name(), faults[i]),
			})
			continue
		}
		byScanner[scanner.Name()] = results[i].Summary
		findings = append(findings, results[i].Findings...)
	}

	seen := make(map[schemas.FindingKey]struct{}, len(findings))
	deduped := findings[:0]
	for _, f := range findings {
		key := f.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, f)
	}

	sort.SliceStable(deduped, func(a, b int) bool {
		fa, fb := deduped[a], deduped[b]
		if ra, rb := fa.Severity.Rank(), fb.Severity.Rank(); ra != rb {
			return ra < rb
		}
		if fa.Path != fb.Path {
			return fa.Path < fb.Path
		}
		if fa.LineStart != fb.LineStart {
			return fa.LineStart < fb.LineStart
		}
		return fa.Rule < fb.Rule
	})

	summary := schemas.ScanSummary{
		"by_scanner":   byScanner,
		"total_issues": len(deduped),
	}
	if idx != nil {
		summary["index"] = idx
	}
	return schemas.ScanResult{Summary: summary, Findings: deduped}
}

// enrich forwards the most severe findings to the advisor and merges any
// returned recommendations back in. Advisor failure is logged and recorded
// as zero recommendations applied; the scan itself never fails here.
func (e *Engine) enrich(ctx context.Context, merged *schemas.ScanResult, rulesText string) {
	limit := e.maxAdvisorFindings
	if limit <= 0 || limit > len(merged.Findings) {
		limit = len(merged.Findings)
	}
	digests := make([]schemas.FindingDigest, 0, limit)
	for _, f := range merged.Findings[:limit] {
		digests = append(digests, f.Digest())
	}

	recs, err := e.advisor.Recommend(ctx, digests, rulesText)
	if err != nil {
		e.logger.Warn("Recommendations pass failed", zap.Error(err))
		merged.Summary["recommendations"] = 0
		return
	}
	applied := advisor.Merge(merged.Findings, recs)
	merged.Summary["recommendations"] = applied
	e.logger.Info("Recommendations merged",
		zap.Int("returned", len(recs)),
		zap.Int("applied", applied))
}
