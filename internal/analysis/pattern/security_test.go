// File: internal/analysis/pattern/security_test.go
package pattern_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/analysis/pattern"
)

func TestSecurityScanner_FlagsDangerousCalls(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "danger.py", `import pickle
import subprocess

data = pickle.loads(blob)
subprocess.run(cmd, shell=True)
value = eval(user_input)
`)

	s := pattern.NewSecurityScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	byRule := make(map[string]schemas.Finding)
	for _, f := range res.Findings {
		byRule[f.Rule] = f
		assert.Equal(t, schemas.SeverityWarning, f.Severity)
		assert.Equal(t, "danger.py", f.Path)
	}

	require.Contains(t, byRule, "unsafe_pickle_usage")
	assert.Equal(t, 4, byRule["unsafe_pickle_usage"].LineStart)

	require.Contains(t, byRule, "subprocess_shell_true")
	assert.Equal(t, 5, byRule["subprocess_shell_true"].LineStart)

	require.Contains(t, byRule, "use_of_eval")
	assert.Equal(t, 6, byRule["use_of_eval"].LineStart)
}

func TestSecurityScanner_FlagsSecretAssignments(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "settings.py", `token = "abc123"
`)

	s := pattern.NewSecurityScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "potential_secret_leak", res.Findings[0].Rule)
	assert.Equal(t, 1, res.Findings[0].LineStart)
	assert.Equal(t, "Suspicious pattern 'potential_secret_leak' detected.", res.Findings[0].Message)
}

func TestSecurityScanner_CleanFileProducesNoFindings(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "clean.py", `import json

value = json.loads(blob)
`)

	s := pattern.NewSecurityScanner(zap.NewNop())
	res, err := s.Scan(context.Background(), testContext(root))
	require.NoError(t, err)

	assert.Empty(t, res.Findings)
	assert.Equal(t, 0, res.Summary["issues"])
	assert.Equal(t, false, res.Summary["truncated"])
}
