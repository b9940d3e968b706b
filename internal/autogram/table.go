package autogram

import "github.com/verte-zerg/autogram/internal/numerals"

const quantities = numerals.MaxCount + 1

// FrequencyTable holds, for each variable slot and quantity, how many occurrences of every
// variable character rendering that slot's list entry adds. Row zero is empty because a zero
// count is left out of the sentence.
type FrequencyTable struct {
	width int
	data  []int
}

func newFrequencyTable(width int) *FrequencyTable {
	return &FrequencyTable{
		width: width,
		data:  make([]int, width*quantities*width),
	}
}

// Width returns the number of variable slots.
func (t *FrequencyTable) Width() int {
	return t.width
}

// Row returns the contribution vector of slot i rendered with quantity q.
// The returned slice aliases the table and must not be modified.
func (t *FrequencyTable) Row(i, q int) []int {
	start := (i*quantities + q) * t.width
	return t.data[start : start+t.width : start+t.width]
}

// At returns how many occurrences of variable slot j rendering slot i at quantity q adds.
func (t *FrequencyTable) At(i, q, j int) int {
	return t.data[(i*quantities+q)*t.width+j]
}

func (t *FrequencyTable) set(i, q int, values []int) {
	copy(t.data[(i*quantities+q)*t.width:], values)
}
