// Package match scores extracted medicine names against registry candidates.
// Three similarity strategies run per candidate and the best one wins: plain
// ratio catches typos, partial ratio catches truncation, and token-sort ratio
// catches word reordering. Any single metric alone is defeated by one of the
// common OCR failure modes.
package match

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Result pairs a candidate name with its similarity score on the internal
// 0-100 scale.
type Result struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Normalized converts the score to the [0,1] scale used by verdicts.
func (r Result) Normalized() float64 { return float64(r.Score) / 100 }

// maxResults caps the returned match list.
const maxResults = 10

// Score compares query against every candidate case-insensitively, keeps
// those scoring at or above threshold (0-100), and returns them sorted by
// descending score, at most ten. The sort is stable so equal scores keep
// candidate order.
func Score(query string, candidates []string, threshold int) []Result {
	q := strings.ToLower(query)
	out := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		c := strings.ToLower(cand)
		best := fuzzy.Ratio(q, c)
		if s := fuzzy.PartialRatio(q, c); s > best {
			best = s
		}
		if s := fuzzy.TokenSortRatio(q, c); s > best {
			best = s
		}
		if best >= threshold {
			out = append(out, Result{Name: cand, Score: best})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

// Best returns the single highest score for query against one candidate on
// the [0,1] scale, or 0 when it falls below threshold.
func Best(query, candidate string, threshold int) float64 {
	res := Score(query, []string{candidate}, threshold)
	if len(res) == 0 {
		return 0
	}
	return res[0].Normalized()
}
