// File: internal/orchestrator/orchestrator_test.go
package orchestrator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/orchestrator"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeScanner returns canned results, errors, or panics on demand.
type fakeScanner struct {
	name     string
	result   schemas.ScanResult
	err      error
	panicMsg string
}

func (f *fakeScanner) Name() string { return f.name }

func (f *fakeScanner) Scan(ctx context.Context, sc schemas.ScanContext) (schemas.ScanResult, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.result, f.err
}

// fakeAdvisor records what it was asked and replies with canned tuples.
type fakeAdvisor struct {
	recs    []schemas.Recommendation
	err     error
	gotLen  int
	gotText string
}

func (f *fakeAdvisor) Recommend(ctx context.Context, findings []schemas.FindingDigest, rulesText string) ([]schemas.Recommendation, error) {
	f.gotLen = len(findings)
	f.gotText = rulesText
	return f.recs, f.err
}

func finding(rule, path string, line int, sev schemas.Severity) schemas.Finding {
	return schemas.Finding{Rule: rule, Path: path, LineStart: line, Severity: sev, Message: rule + " at " + path}
}

func scanContext(root string) schemas.ScanContext {
	return schemas.ScanContext{RepoRoot: root, MaxIssues: 300, Thresholds: schemas.DefaultThresholds()}
}

func TestEngine_MergesAndOrdersFindings(t *testing.T) {
	root := t.TempDir()

	a := &fakeScanner{name: "alpha", result: schemas.ScanResult{
		Summary: schemas.ScanSummary{"hits": 2},
		Findings: []schemas.Finding{
			finding("rule_b", "z.py", 4, schemas.SeverityInfo),
			finding("rule_a", "a.py", 10, schemas.SeverityWarning),
		},
	}}
	b := &fakeScanner{name: "beta", result: schemas.ScanResult{
		Summary: schemas.ScanSummary{"hits": 1},
		Findings: []schemas.Finding{
			finding("rule_c", "a.py", 2, schemas.SeverityError),
		},
	}}

	engine := orchestrator.New(zap.NewNop(), orchestrator.WithScanners(a, b))
	res, err := engine.Run(context.Background(), scanContext(root), "")
	require.NoError(t, err)

	require.Len(t, res.Findings, 3)
	assert.Equal(t, "rule_c", res.Findings[0].Rule, "errors sort first")
	assert.Equal(t, "rule_a", res.Findings[1].Rule, "warnings before info")
	assert.Equal(t, "rule_b", res.Findings[2].Rule)

	assert.Equal(t, 3, res.Summary["total_issues"])
	byScanner, ok := res.Summary["by_scanner"].(schemas.ScanSummary)
	require.True(t, ok)
	assert.Equal(t, schemas.ScanSummary{"hits": 2}, byScanner["alpha"])
	assert.Equal(t, schemas.ScanSummary{"hits": 1}, byScanner["beta"])
}

func TestEngine_ScannerErrorBecomesFinding(t *testing.T) {
	root := t.TempDir()

	ok := &fakeScanner{name: "steady", result: schemas.ScanResult{Summary: schemas.ScanSummary{}}}
	broken := &fakeScanner{name: "flaky", err: errors.New("walk failed")}

	engine := orchestrator.New(zap.NewNop(), orchestrator.WithScanners(ok, broken))
	res, err := engine.Run(context.Background(), scanContext(root), "")
	require.NoError(t, err, "a failing scanner must not fail the run")

	require.Len(t, res.Findings, 1)
	f := res.Findings[0]
	assert.Equal(t, "scanner_exception", f.Rule)
	assert.Equal(t, schemas.SeverityError, f.Severity)
	assert.Contains(t, f.Message, "flaky")
	assert.Contains(t, f.Message, "walk failed")

	byScanner := res.Summary["by_scanner"].(schemas.ScanSummary)
	assert.Contains(t, byScanner, "steady")
	assert.NotContains(t, byScanner, "flaky")
}

func TestEngine_ScannerPanicBecomesFinding(t *testing.T) {
	root := t.TempDir()

	engine := orchestrator.New(zap.NewNop(), orchestrator.WithScanners(
		&fakeScanner{name: "volatile", panicMsg: "index out of range"},
	))
	res, err := engine.Run(context.Background(), scanContext(root), "")
	require.NoError(t, err)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "scanner_exception", res.Findings[0].Rule)
	assert.Contains(t, res.Findings[0].Message, "volatile")
	assert.Contains(t, res.Findings[0].Message, "index out of range")
}

func TestEngine_DeduplicatesByIdentityTriple(t *testing.T) {
	root := t.TempDir()

	dup := finding("shared_rule", "same.py", 7, schemas.SeverityWarning)
	first := dup
	first.Message = "from the first scanner"
	second := dup
	second.Message = "from the second scanner"

	engine := orchestrator.New(zap.NewNop(), orchestrator.WithScanners(
		&fakeScanner{name: "one", result: schemas.ScanResult{Summary: schemas.ScanSummary{}, Findings: []schemas.Finding{first}}},
		&fakeScanner{name: "two", result: schemas.ScanResult{Summary: schemas.ScanSummary{}, Findings: []schemas.Finding{second}}},
	))
	res, err := engine.Run(context.Background(), scanContext(root), "")
	require.NoError(t, err)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "from the first scanner", res.Findings[0].Message)
	assert.Equal(t, 1, res.Summary["total_issues"])
}

func TestEngine_DeterministicAcrossRuns(t *testing.T) {
	root := t.TempDir()

	scanners := []schemas.RepoScanner{
		&fakeScanner{name: "one", result: schemas.ScanResult{Summary: schemas.ScanSummary{}, Findings: []schemas.Finding{
			finding("r1", "b.py", 3, schemas.SeverityWarning),
			finding("r2", "a.py", 3, schemas.SeverityWarning),
		}}},
		&fakeScanner{name: "two", result: schemas.ScanResult{Summary: schemas.ScanSummary{}, Findings: []schemas.Finding{
			finding("r3", "a.py", 1, schemas.SeverityInfo),
		}}},
	}

	engine := orchestrator.New(zap.NewNop(), orchestrator.WithScanners(scanners...))

	first, err := engine.Run(context.Background(), scanContext(root), "")
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), scanContext(root), "")
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first.Findings, second.Findings))
}

func TestEngine_EnrichesTopFindings(t *testing.T) {
	root := t.TempDir()

	adv := &fakeAdvisor{recs: []schemas.Recommendation{
		{Path: "a.py", LineStart: 2, Rule: "rule_c", Text: "split this up", CodeSuggestion: "pass"},
		{Path: "nomatch.py", LineStart: 1, Rule: "rule_x", Text: "dropped"},
	}}

	engine := orchestrator.New(zap.NewNop(),
		orchestrator.WithScanners(&fakeScanner{name: "one", result: schemas.ScanResult{
			Summary: schemas.ScanSummary{},
			Findings: []schemas.Finding{
				finding("rule_c", "a.py", 2, schemas.SeverityError),
				finding("rule_d", "b.py", 5, schemas.SeverityInfo),
			},
		}}),
		orchestrator.WithAdvisor(adv, 1),
	)

	res, err := engine.Run(context.Background(), scanContext(root), "house rules")
	require.NoError(t, err)

	assert.Equal(t, 1, adv.gotLen, "only the top finding is forwarded")
	assert.Equal(t, "house rules", adv.gotText)

	require.Len(t, res.Findings, 2)
	assert.Equal(t, "split this up", res.Findings[0].Recommendation)
	assert.Equal(t, "pass", res.Findings[0].CodeSuggestion)
	assert.Empty(t, res.Findings[1].Recommendation)
	assert.Equal(t, 1, res.Summary["recommendations"], "unmatched tuples are not counted")
}

func TestEngine_AdvisorFailureLeavesReportIntact(t *testing.T) {
	root := t.TempDir()

	engine := orchestrator.New(zap.NewNop(),
		orchestrator.WithScanners(&fakeScanner{name: "one", result: schemas.ScanResult{
			Summary:  schemas.ScanSummary{},
			Findings: []schemas.Finding{finding("r", "a.py", 1, schemas.SeverityWarning)},
		}}),
		orchestrator.WithAdvisor(&fakeAdvisor{err: errors.New("quota exceeded")}, 10),
	)

	res, err := engine.Run(context.Background(), scanContext(root), "")
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Empty(t, res.Findings[0].Recommendation)
	assert.Equal(t, 0, res.Summary["recommendations"])
}

func TestEngine_RejectsMissingRoot(t *testing.T) {
	engine := orchestrator.New(zap.NewNop(), orchestrator.WithScanners(&fakeScanner{name: "one"}))
	_, err := engine.Run(context.Background(), scanContext("/definitely/not/a/real/path"), "")
	assert.Error(t, err)
}
