// File: internal/analysis/tree/cohesion_test.go
package tree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/internal/analysis/tree"
)

func TestCohesionScanner_FlagsMethodIgnoringInstanceState(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "shapes.py", `class Shape:
    def __init__(self, size):
        self.size = size

    def area(self):
        return self.size * self.size

    def describe(self, label):
        return "shape: " + label
`)

	s := tree.NewCohesionScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	require.Len(t, res.Findings, 1)
	f := res.Findings[0]
	assert.Equal(t, "low_class_cohesion", f.Rule)
	assert.Equal(t, 8, f.LineStart)
	assert.Contains(t, f.Message, "Method 'describe' in class 'Shape'")
	assert.Equal(t, 1, res.Summary["methods_no_self_usage"])
}

func TestCohesionScanner_FlagsMethodsOfNestedClasses(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "nested.py", `class Outer:
    class Inner:
        def helper(self):
            return 1


def factory():
    class Local:
        def detached(self):
            return 2

    return Local
`)

	s := tree.NewCohesionScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	require.Len(t, res.Findings, 2)
	assert.Contains(t, res.Findings[0].Message, "Method 'helper' in class 'Inner'")
	assert.Contains(t, res.Findings[1].Message, "Method 'detached' in class 'Local'")
	assert.Equal(t, 2, res.Summary["methods_no_self_usage"])
}

func TestCohesionScanner_ExemptsDundersAndStaticMethods(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "exempt.py", `class Tool:
    def __repr__(self):
        return "Tool"

    @staticmethod
    def helper(x):
        return x * 2

    @classmethod
    def build(cls):
        return cls()
`)

	s := tree.NewCohesionScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	assert.Empty(t, res.Findings)
	assert.Equal(t, 0, res.Summary["methods_no_self_usage"])
}
