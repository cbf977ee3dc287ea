package stats

import (
	"sort"

	"github.com/verte-zerg/kanadraw/internal/model"
)

// TopCharsByFrequency returns the top N characters by number of drawings.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := append([]model.CharAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Attempts == sorted[j].Attempts {
			return sorted[i].Char < sorted[j].Char
		}
		return sorted[i].Attempts > sorted[j].Attempts
	})
	n = min(n, len(sorted))
	out := make([]string, 0, n)
	for _, agg := range sorted[:n] {
		out = append(out, agg.Char)
	}
	return out
}
