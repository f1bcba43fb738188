// File: internal/rules/rules.go

// Package rules loads free-form best-practice guideline text for the advisor.
package rules

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/emelas-tomoro/llm-linter/internal/analysis/core"
)

// Load concatenates every .md and .txt file under dir (recursively) into a
// single blob, blank-line separated. A missing or empty directory yields "".
// Files are visited extension-major so the result is stable: all .md files in
// walk order, then all .txt files.
func Load(dir string) string {
	if dir == "" {
		return ""
	}
	if _, err := os.Stat(dir); err != nil {
		return ""
	}

	var blobs []string
	for _, ext := range []string{".md", ".txt"} {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if filepath.Ext(d.Name()) != ext {
				return nil
			}
			if text := core.ReadFileSafe(path); strings.TrimSpace(text) != "" {
				blobs = append(blobs, text)
			}
			return nil
		})
	}
	return strings.Join(blobs, "\n\n")
}
