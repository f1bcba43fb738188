// File: internal/advisor/merge.go
package advisor

import "github.com/emelas-tomoro/llm-linter/api/schemas"

// Merge applies recommendations onto findings in place, matching by the
// (path, line_start, rule) identity triple. A finding receives at most one
// recommendation; once set it is never overwritten, so applying the same
// batch twice changes nothing. Recommendations matching no finding are
// dropped. Returns the number of findings that were updated.
func Merge(findings []schemas.Finding, recs []schemas.Recommendation) int {
	if len(findings) == 0 || len(recs) == 0 {
		return 0
	}

	byKey := make(map[schemas.FindingKey][]int, len(findings))
	for i := range findings {
		key := findings[i].Key()
		byKey[key] = append(byKey[key], i)
	}

	applied := 0
	for i := range recs {
		rec := &recs[i]
		if rec.Text == "" {
			continue
		}
		for _, idx := range byKey[rec.Key()] {
			if findings[idx].Recommendation != "" {
				continue
			}
			findings[idx].Recommendation = rec.Text
			if rec.CodeSuggestion != "" {
				findings[idx].CodeSuggestion = rec.CodeSuggestion
			}
			applied++
		}
	}
	return applied
}
