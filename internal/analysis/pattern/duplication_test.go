// File: internal/analysis/pattern/duplication_test.go
package pattern_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/pattern"
)

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testContext(root string) schemas.ScanContext {
	return schemas.ScanContext{
		RepoRoot:             root,
		MaxIssues:            300,
		DuplicationMaxIssues: 200,
		Thresholds:           schemas.DefaultThresholds(),
	}
}

const sharedBlock = `result = compute(a, b)
if result is None:
    raise ValueError("no result")
log.info("computed", result)
store.save(result)
cleanup()
`

func TestDuplicationScanner_FlagsRepeatedBlockAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "first.py", sharedBlock)
	writeFixture(t, root, "second.py", sharedBlock)

	s := pattern.NewDuplicationScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	// A 6-line block shared by two files yields two overlapping 5-line
	// windows, each reported once against its first location.
	require.Len(t, res.Findings, 2)
	for _, f := range res.Findings {
		assert.Equal(t, "duplicated_code_block", f.Rule)
		assert.Equal(t, "second.py", f.Path)
		assert.Equal(t, schemas.SeverityWarning, f.Severity)
		assert.Contains(t, f.Message, "also found in first.py:")
	}
	assert.Equal(t, 2, res.Summary["duplicated_blocks"])
	assert.Equal(t, false, res.Summary["truncated"])
}

func TestDuplicationScanner_IgnoresWhitespaceDifferences(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "tight.py", sharedBlock)

	writeFixture(t, root, "loose.py", `result =    compute(a, b)
if result is None:
        raise ValueError("no result")
log.info("computed",   result)
store.save(result)
cleanup()
`)

	s := pattern.NewDuplicationScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Findings, "whitespace-only differences must still hash equal")
}

func TestDuplicationScanner_UniqueContentIsClean(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "a.py", "alpha = 1\nbeta = 2\ngamma = 3\ndelta = 4\nepsilon = 5\n")
	writeFixture(t, root, "b.py", "one = 1\ntwo = 2\nthree = 3\nfour = 4\nfive = 5\n")

	s := pattern.NewDuplicationScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)
	assert.Empty(t, res.Findings)
	assert.Equal(t, 0, res.Summary["duplicated_blocks"])
}

func TestDuplicationScanner_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "x.py", sharedBlock+sharedBlock)
	writeFixture(t, root, "y.py", sharedBlock)

	s := pattern.NewDuplicationScanner(zap.NewNop())

	first, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)
	second, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first.Findings, second.Findings))
}

func TestDuplicationScanner_HonorsDedicatedCap(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "x.py", sharedBlock)
	writeFixture(t, root, "y.py", sharedBlock)
	writeFixture(t, root, "z.py", sharedBlock)

	sc := testContext(root)
	sc.DuplicationMaxIssues = 1

	s := pattern.NewDuplicationScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), sc)
	require.NoError(t, err)

	assert.Len(t, res.Findings, 1)
	assert.Equal(t, true, res.Summary["truncated"])
}
