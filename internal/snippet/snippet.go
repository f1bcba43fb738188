// File: internal/snippet/snippet.go

// Package snippet reads small, size-clamped excerpts of repository files for
// inclusion in advisor prompts. Reads never escape the repository root.
package snippet

import (
	"strings"

	"github.com/emelas-tomoro/llm-linter/internal/analysis/core"
	"github.com/emelas-tomoro/llm-linter/internal/index"
)

const (
	// DefaultContextLines is how many lines of surrounding context a ranged
	// read includes on each side.
	DefaultContextLines = 6
	// DefaultMaxChars clamps the snippet size so a pathological file cannot
	// blow up a prompt.
	DefaultMaxChars = 4000
	// headLines is the size of the head excerpt returned when no range is
	// given.
	headLines = 200
)

// Reader serves clipped snippets rooted at a single repository.
type Reader struct {
	root string
}

// NewReader creates a reader for the given resolved repository root.
func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// Read returns a snippet of the file at path (relative or absolute). With a
// zero lineStart the head of the file is returned; otherwise the inclusive
// line range plus context. Unreadable files yield an empty string, and paths
// resolving outside the root yield an error marker instead of content.
func (r *Reader) Read(path string, lineStart, lineEnd int) string {
	abs, ok := index.WithinRoot(r.root, path)
	if !ok {
		return "[read_code_snippet] Error: path is outside repository root"
	}
	text := core.ReadFileSafe(abs)
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	n := len(lines)

	var body string
	if lineStart == 0 && lineEnd == 0 {
		if n > headLines {
			lines = lines[:headLines]
		}
		body = strings.Join(lines, "\n")
	} else {
		s := max(1, lineStart)
		e := lineEnd
		if e == 0 {
			e = s
		}
		e = min(n, e)
		sCtx := max(1, s-DefaultContextLines)
		eCtx := min(n, e+DefaultContextLines)
		// A range past the end of the file degrades to an empty snippet.
		if sCtx <= eCtx {
			body = strings.Join(lines[sCtx-1:eCtx], "\n")
		}
	}

	if len(body) > DefaultMaxChars {
		body = body[:DefaultMaxChars] + "\n[clipped]"
	}
	return "/ path: " + abs + "\n" + body
}
