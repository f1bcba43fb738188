package core

import (
	"os"

	"go.uber.org/zap"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
)

// BaseScanner provides a foundational implementation of the scanner contract,
// handling the name and a named sub-logger. It is intended to be embedded
// within specific scanner implementations to reduce boilerplate.
type BaseScanner struct {
	name   string
	Logger *zap.Logger // Exposed for use in specific scanner implementations.
}

// NewBaseScanner creates a BaseScanner with a sub-logger named after the
// scanner.
func NewBaseScanner(name string, logger *zap.Logger) *BaseScanner {
	return &BaseScanner{
		name:   name,
		Logger: logger.Named(name),
	}
}

// Name returns the scanner's stable identifier.
func (b *BaseScanner) Name() string { return b.name }

// ReadFileSafe reads a file and returns its content, or "" when the file
// cannot be read. Scanners treat unreadable files like empty ones: skipped,
// never surfaced as findings.
func ReadFileSafe(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// Truncate enforces a scanner's issue cap, recording the truncation in the
// summary instead of erroring.
func Truncate(res *schemas.ScanResult, max int) {
	if max > 0 && len(res.Findings) > max {
		res.Findings = res.Findings[:max]
		res.Summary["truncated"] = true
	}
}

// SourceExts are the file extensions the text-level checks accept.
var SourceExts = []string{".py", ".ts", ".tsx", ".js", ".jsx"}

// PythonExts are the extensions handled by the syntax-tree scanners.
var PythonExts = []string{".py"}
