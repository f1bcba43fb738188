package schemas

import "context"

// RepoScanner is the contract every analysis unit implements: given an
// isolated scan context, produce a (summary, findings) pair. Scanners must be
// safe to run concurrently with each other; the only shared resource is the
// read-only file tree. A scanner returning an error (or panicking) is
// captured by the orchestrator as a scanner_exception finding rather than
// aborting the run.
type RepoScanner interface {
	// Name is the stable identifier used as the scanner's summary key.
	Name() string
	Scan(ctx context.Context, sc ScanContext) (ScanResult, error)
}

// Advisor turns a bounded batch of finding digests into remediation tuples.
// rulesText is optional free-form guideline text prepended to the advisor's
// operating instructions; the scanners themselves never consume it.
//
// Implementations talk to external services and may fail; callers must treat
// any error as "no recommendations" and never let it invalidate the report.
type Advisor interface {
	Recommend(ctx context.Context, findings []FindingDigest, rulesText string) ([]Recommendation, error)
}
