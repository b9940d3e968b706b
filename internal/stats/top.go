package stats

import (
	"sort"

	"github.com/verte-zerg/autogram/internal/model"
)

// TopVaryingChars returns the n characters whose final count spread most across runs.
func TopVaryingChars(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	type item struct {
		ch     string
		spread int
	}
	items := make([]item, 0, len(aggs))
	for _, agg := range aggs {
		if spread := agg.MaxCount - agg.MinCount; spread > 0 {
			items = append(items, item{ch: agg.Char, spread: spread})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].spread == items[j].spread {
			return items[i].ch < items[j].ch
		}
		return items[i].spread > items[j].spread
	})
	n = min(n, len(items))
	out := make([]string, 0, n)
	for _, it := range items[:n] {
		out = append(out, it.ch)
	}
	return out
}
