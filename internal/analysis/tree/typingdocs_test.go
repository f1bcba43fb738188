// File: internal/analysis/tree/typingdocs_test.go
package tree_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/tree"
)

func TestTypingDocsScanner_FullyTypedAndDocumented(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "clean.py", `"""Module docstring."""


def add(a: int, b: int) -> int:
    """Add two numbers."""
    return a + b
`)

	s := tree.NewTypingDocsScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	assert.Empty(t, res.Findings)
	assert.Equal(t, 1, res.Summary["total_functions"])
	assert.Equal(t, 1, res.Summary["typed_functions"])
	assert.Equal(t, 0, res.Summary["functions_without_doc"])
}

func TestTypingDocsScanner_MissingEverything(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "messy.py", `def compute(a, b):
    return a + b


class Widget:
    def render(self, target):
        return target
`)

	s := tree.NewTypingDocsScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	rules := make(map[string]int)
	for _, f := range res.Findings {
		rules[f.Rule]++
		assert.Equal(t, schemas.SeverityWarning, f.Severity, f.Rule)
	}
	assert.Equal(t, 1, rules["missing_module_docstring"])
	assert.Equal(t, 1, rules["missing_class_docstring"])
	assert.Equal(t, 2, rules["missing_type_hints"])
	assert.Equal(t, 2, rules["missing_function_docstring"])

	assert.Equal(t, 2, res.Summary["total_functions"])
	assert.Equal(t, 0, res.Summary["typed_functions"])
	assert.Equal(t, 2, res.Summary["functions_without_doc"])
	assert.Equal(t, 1, res.Summary["classes_without_doc"])
}

func TestTypingDocsScanner_MethodMessagesNameTheKind(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "kinds.py", `"""Docs."""


class Box:
    """Docs."""

    def open(self):
        """Docs."""
        return self


def seal():
    """Docs."""
    return None
`)

	s := tree.NewTypingDocsScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	var messages []string
	for _, f := range res.Findings {
		assert.Equal(t, "missing_type_hints", f.Rule)
		messages = append(messages, f.Message)
	}
	require.Len(t, messages, 2)
	assert.Contains(t, strings.Join(messages, "\n"), "Method 'open' is missing type hints.")
	assert.Contains(t, strings.Join(messages, "\n"), "Function 'seal' is missing type hints.")
}

func TestTypingDocsScanner_LowCommentDensity(t *testing.T) {
	root := t.TempDir()

	// ~100 lines with a single comment line: well below the 2% floor.
	var b strings.Builder
	b.WriteString(`"""Docs."""` + "\n")
	b.WriteString("# setup\n")
	for i := 0; i < 98; i++ {
		b.WriteString("x = 1\n")
	}
	writeFixture(t, root, "dense.py", b.String())

	s := tree.NewTypingDocsScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "low_comment_density", res.Findings[0].Rule)
	assert.Contains(t, res.Findings[0].Message, "Low comment density (1.0%)")
}

func TestTypingDocsScanner_ShortFilesSkipDensityCheck(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "short.py", `"""Docs."""
x = 1
`)

	s := tree.NewTypingDocsScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)
	assert.Empty(t, res.Findings)
}
