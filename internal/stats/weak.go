package stats

import (
	"sort"

	"github.com/verte-zerg/autogram/internal/model"
)

// SelectMissedChars returns the characters most often left with a guess error, worst first.
// Characters that never missed are omitted; top <= 0 keeps all of them.
func SelectMissedChars(aggs []model.CharAggregate, top int) []string {
	candidates := make([]model.CharAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Misses > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := missRate(candidates[i]), missRate(candidates[j])
		if ri == rj {
			return candidates[i].Char < candidates[j].Char
		}
		return ri > rj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for _, agg := range candidates[:top] {
		out = append(out, agg.Char)
	}
	return out
}

func missRate(agg model.CharAggregate) float64 {
	if agg.Runs == 0 {
		return 0
	}
	return float64(agg.Misses) / float64(agg.Runs)
}
