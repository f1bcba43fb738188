// File: internal/index/index_test.go
package index_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/index"
)

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveRoot_AcceptsSubpath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "svc"), 0o755))

	resolved, err := index.ResolveRoot(root, "svc")
	require.NoError(t, err)
	assert.Equal(t, "svc", filepath.Base(resolved))
}

func TestResolveRoot_RejectsEscapingSubpath(t *testing.T) {
	root := t.TempDir()

	_, err := index.ResolveRoot(root, "../sibling")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the repository root")
}

func TestResolveRoot_RejectsMissingRoot(t *testing.T) {
	_, err := index.ResolveRoot("/no/such/repo/root", "")
	assert.Error(t, err)
}

func TestWithinRoot(t *testing.T) {
	root := t.TempDir()

	abs, ok := index.WithinRoot(root, "pkg/mod.py")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "pkg", "mod.py"), abs)

	_, ok = index.WithinRoot(root, "../../etc/passwd")
	assert.False(t, ok)
}

func TestWalk_FiltersExtensionsAndExclusions(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "app.py", "x = 1\n")
	writeFixture(t, root, "notes.md", "docs\n")
	writeFixture(t, root, ".hidden.py", "x = 1\n")
	writeFixture(t, root, "node_modules/dep.py", "x = 1\n")
	writeFixture(t, root, "custom/skipme.py", "x = 1\n")

	var seen []string
	err := index.Walk(context.Background(), root, []string{".py"}, index.ExcludeSet([]string{"custom"}), func(rel, abs string) error {
		seen = append(seen, rel)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, seen)
}

func TestWalk_StopsOnCancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "a/one.py", "x = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := index.Walk(ctx, root, nil, index.ExcludeSet(nil), func(rel, abs string) error {
		t.Fatal("walk must not visit files after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndexer_CountsByExtension(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "a.py", "x = 1\n")
	writeFixture(t, root, "b.py", "y = 2\n")
	writeFixture(t, root, "web/app.ts", "const a = 1;\n")
	writeFixture(t, root, "Makefile", "all:\n")

	ix := index.New(zap.NewNop())
	summary, err := ix.Index(context.Background(), schemas.ScanContext{RepoRoot: root})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.CountsByExt[".py"])
	assert.Equal(t, 1, summary.CountsByExt[".ts"])
	assert.Equal(t, 1, summary.CountsByExt["noext"])
	assert.Equal(t, 4, summary.NumFiles)
	assert.Empty(t, summary.FilesSample)
}

func TestIndexer_SamplesFilesWhenAsked(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "a.py", "x = 1\n")
	writeFixture(t, root, "b.py", "y = 2\n")
	writeFixture(t, root, "c.py", "z = 3\n")

	ix := index.New(zap.NewNop())
	summary, err := ix.Index(context.Background(), schemas.ScanContext{
		RepoRoot:           root,
		IncludeIndexSample: true,
		IndexSampleLimit:   2,
	})
	require.NoError(t, err)

	assert.Len(t, summary.FilesSample, 2)
	assert.Equal(t, 2, summary.FilesSampled)
	assert.Equal(t, 2, summary.FilesSampleLimit)
	assert.Equal(t, 3, summary.NumFiles)
}
