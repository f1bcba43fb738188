// File: internal/index/index.go
// Description: Read-only repository traversal shared by every scanner. The
// indexer resolves the scan root, enforces path safety, applies the exclusion
// set, and produces the counts-by-extension summary.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
)

// defaultExcludeDirs is the baseline set of directory names skipped during
// traversal: VCS metadata, dependency and build output, virtualenvs, caches.
var defaultExcludeDirs = []string{
	".git",
	"node_modules",
	"dist",
	"build",
	"__pycache__",
	".venv",
	"venv",
	"env",
	"site-packages",
	"lib",
	"bin",
	"include",
	".mypy_cache",
	".pytest_cache",
	".ruff_cache",
}

// ExcludeSet builds the effective exclusion set from the defaults plus any
// caller-supplied directory names.
func ExcludeSet(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(defaultExcludeDirs)+len(extra))
	for _, d := range defaultExcludeDirs {
		set[d] = struct{}{}
	}
	for _, d := range extra {
		if d = strings.TrimSpace(d); d != "" {
			set[d] = struct{}{}
		}
	}
	return set
}

// ResolveRoot resolves the repository root (plus optional subpath) to an
// absolute path and refuses any subpath that escapes the root. This is the
// single path-safety gate for the whole engine.
func ResolveRoot(root, subpath string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository root %q: %w", root, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("repository root %q is not accessible: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repository root %q is not a directory", root)
	}

	sub := strings.TrimSpace(subpath)
	if sub == "" {
		return abs, nil
	}

	joined := filepath.Join(abs, sub)
	rel, err := filepath.Rel(abs, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("target subpath %q resolves outside the repository root", subpath)
	}
	if _, err := os.Stat(joined); err != nil {
		return "", fmt.Errorf("target subpath %q is not accessible: %w", subpath, err)
	}
	return joined, nil
}

// WithinRoot reports whether the given path (absolute or relative to root)
// stays inside root once cleaned. Used by snippet reads to defend against
// traversal in caller-supplied paths.
func WithinRoot(root, path string) (string, bool) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, path)
	}
	abs = filepath.Clean(abs)
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return abs, true
}

// WalkFunc receives each regular file as a root-relative path (slash
// separated, for display) and the absolute path for reading.
type WalkFunc func(rel, abs string) error

// Walk enumerates regular files under base, skipping excluded directories and
// dot-prefixed files. exts filters by extension; nil means every file. The
// context is checked per directory so a pathologically large tree can be
// cancelled mid-walk.
func Walk(ctx context.Context, base string, exts []string, exclude map[string]struct{}, fn WalkFunc) error {
	return filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal: heterogeneous
			// repositories routinely contain permission islands.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if path != base {
				if _, skip := exclude[d.Name()]; skip {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if exts != nil && !hasExt(name, exts) {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return nil
		}
		return fn(filepath.ToSlash(rel), path)
	})
}

func hasExt(name string, exts []string) bool {
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

// Summary is the indexer's output: counts grouped by extension plus the
// optional capped path sample.
type Summary struct {
	Root        string         `json:"root"`
	CountsByExt map[string]int `json:"counts_by_ext"`
	NumFiles    int            `json:"num_files"`
	// Commit is the repository HEAD hash when the root is a git work tree;
	// it identifies the scanned snapshot in the report.
	Commit string `json:"commit,omitempty"`

	FilesSample      []string `json:"files_sample,omitempty"`
	FilesSampled     int      `json:"files_sampled,omitempty"`
	FilesSampleLimit int      `json:"files_sample_limit,omitempty"`
}

// Indexer walks the file tree once and summarizes it.
type Indexer struct {
	logger *zap.Logger
}

// New creates an Indexer.
func New(logger *zap.Logger) *Indexer {
	return &Indexer{logger: logger.Named("index")}
}

// Index traverses the scan root and returns the counts-by-extension summary.
// Pure read-only traversal; no side effects.
func (ix *Indexer) Index(ctx context.Context, sc schemas.ScanContext) (*Summary, error) {
	base, err := ResolveRoot(sc.RepoRoot, sc.TargetSubpath)
	if err != nil {
		return nil, err
	}

	exclude := ExcludeSet(sc.ExcludeDirs)
	counts := make(map[string]int)
	var sample []string

	err = Walk(ctx, base, nil, exclude, func(rel, abs string) error {
		ext := filepath.Ext(rel)
		if ext == "" {
			ext = "noext"
		}
		counts[ext]++
		if sc.IncludeIndexSample && len(sample) < sc.IndexSampleLimit {
			sample = append(sample, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index repository: %w", err)
	}

	num := 0
	for _, c := range counts {
		num += c
	}

	summary := &Summary{
		Root:        base,
		CountsByExt: counts,
		NumFiles:    num,
		Commit:      headCommit(sc.RepoRoot),
	}
	if sc.IncludeIndexSample {
		summary.FilesSample = sample
		summary.FilesSampled = len(sample)
		summary.FilesSampleLimit = sc.IndexSampleLimit
	}

	ix.logger.Debug("Indexed repository", zap.String("root", base), zap.Int("files", num))
	return summary, nil
}

// headCommit returns the HEAD hash when root is a git work tree, or "".
func headCommit(root string) string {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
