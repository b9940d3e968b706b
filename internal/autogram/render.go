package autogram

import (
	"strings"

	"github.com/verte-zerg/autogram/internal/numerals"
)

// Render writes the sentence a model describes with the given per-slot counts. counts is
// indexed like Model.Slots; slots with a zero count are left out of the list.
func Render(m *Model, counts []int) string {
	items := make([]string, 0, len(m.slots))
	for i, slot := range m.slots {
		q := counts[i]
		if q <= 0 {
			continue
		}
		items = append(items, numerals.Entry(slot.Char, q, m.opts.PluralSuffix))
	}
	list := joinList(items, m.opts.Separator, m.opts.Conjunction)
	return strings.Replace(m.opts.Template, Placeholder, list, 1)
}

func joinList(items []string, sep, conjunction string) string {
	if conjunction == "" {
		return strings.Join(items, sep)
	}
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	last := len(items) - 1
	return strings.Join(items[:last], sep) + conjunction + items[last]
}
