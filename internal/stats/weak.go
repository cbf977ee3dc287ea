package stats

import (
	"github.com/verte-zerg/kanadraw/internal/model"
)

// SelectWeakChars picks the top characters with the lowest accuracy, breaking
// ties by the lower mean score.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[string]struct{} {
	weakSet := map[string]struct{}{}
	if len(aggs) == 0 {
		return weakSet
	}
	candidates := SortByAccuracy(aggs)
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for _, agg := range candidates[:top] {
		if agg.Char != "" {
			weakSet[agg.Char] = struct{}{}
		}
	}
	return weakSet
}
