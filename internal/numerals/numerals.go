// Package numerals spells small cardinal numbers and names tracked characters.
package numerals

import "fmt"

// MaxCount is the largest quantity that can be spelled.
const MaxCount = 99

var first20 = [...]string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen",
}

var tens = [...]string{"twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

var spelled = buildSpelled()

func buildSpelled() [MaxCount + 1]string {
	var out [MaxCount + 1]string
	for q := range out {
		if q < len(first20) {
			out[q] = first20[q]
			continue
		}
		word := tens[q/10-2]
		if unit := q % 10; unit != 0 {
			word += "-" + first20[unit]
		}
		out[q] = word
	}
	return out
}

// Spell returns the lower-case English cardinal for q. It panics when q is outside [0, MaxCount].
func Spell(q int) string {
	if q < 0 || q > MaxCount {
		panic(fmt.Sprintf("numerals: cannot spell %d", q))
	}
	return spelled[q]
}

// InRange reports whether q can be spelled.
func InRange(q int) bool {
	return q >= 0 && q <= MaxCount
}

// All returns the spellings of 0..MaxCount, indexed by value.
func All() []string {
	out := make([]string, len(spelled))
	copy(out, spelled[:])
	return out
}
