// Package verify checks whether a sentence truthfully counts its own characters.
package verify

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/autogram/internal/numerals"
)

// Options tune a check.
type Options struct {
	// PluralSuffix is the suffix the sentence appends to plural glyphs, e.g. "'s".
	PluralSuffix string
	// Tracked lists characters that must be stated whenever they occur. Empty means only stated
	// characters are checked.
	Tracked []rune
}

// Mismatch describes one character whose stated count is wrong.
type Mismatch struct {
	Char   rune
	Stated int
	Actual int
	// Missing is set when the character occurs but the sentence never states its count.
	Missing bool
}

// Report is the outcome of Check.
type Report struct {
	Stated     map[rune]int
	Actual     map[rune]int
	Mismatches []Mismatch
}

// OK reports whether every stated count matched.
func (r Report) OK() bool {
	return len(r.Stated) > 0 && len(r.Mismatches) == 0
}

// ActualFrequency counts every rune of the lower-cased sentence.
func ActualFrequency(sentence string) map[rune]int {
	out := map[rune]int{}
	for _, r := range strings.ToLower(sentence) {
		out[r]++
	}
	return out
}

// StatedFrequency extracts the "<number> <name>" claims of a sentence. A later claim for the
// same character replaces an earlier one.
func StatedFrequency(sentence, pluralSuffix string) map[rune]int {
	out := map[rune]int{}
	for _, m := range claimPattern(pluralSuffix).FindAllStringSubmatch(strings.ToLower(sentence), -1) {
		q, ok := numberValues[m[1]]
		if !ok {
			continue
		}
		r, ok := extendedNames[m[2]]
		if !ok {
			r, _ = utf8.DecodeRuneInString(m[2])
		}
		out[r] = q
	}
	return out
}

// Check compares the stated and actual counts of a sentence.
func Check(sentence string, opts Options) Report {
	report := Report{
		Stated: StatedFrequency(sentence, opts.PluralSuffix),
		Actual: ActualFrequency(sentence),
	}
	for r, q := range report.Stated {
		if actual := report.Actual[r]; actual != q {
			report.Mismatches = append(report.Mismatches, Mismatch{Char: r, Stated: q, Actual: actual})
		}
	}
	for _, r := range opts.Tracked {
		r = unicode.ToLower(r)
		if _, ok := report.Stated[r]; ok {
			continue
		}
		if actual := report.Actual[r]; actual > 0 {
			report.Mismatches = append(report.Mismatches, Mismatch{Char: r, Actual: actual, Missing: true})
		}
	}
	sort.Slice(report.Mismatches, func(i, j int) bool {
		return report.Mismatches[i].Char < report.Mismatches[j].Char
	})
	return report
}

// IsAutogram reports whether every count the sentence states is true.
func IsAutogram(sentence, pluralSuffix string) bool {
	return Check(sentence, Options{PluralSuffix: pluralSuffix}).OK()
}

var (
	numberValues  = map[string]int{}
	extendedNames = numerals.ExtendedNames()
	numberAlt     string
	nameAlt       string
)

func init() {
	words := numerals.All()
	for q, w := range words {
		numberValues[w] = q
	}
	numberAlt = longestFirst(words)

	names := make([]string, 0, len(extendedNames))
	for name := range extendedNames {
		names = append(names, name)
	}
	nameAlt = longestFirst(names)
}

func longestFirst(words []string) string {
	sorted := append([]string(nil), words...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

func claimPattern(pluralSuffix string) *regexp.Regexp {
	suffix := ""
	if pluralSuffix != "" {
		suffix = "(?:" + regexp.QuoteMeta(strings.ToLower(pluralSuffix)) + ")?"
	}
	return regexp.MustCompile(`\b(` + numberAlt + `)\s+(` + nameAlt + `|[a-z]` + suffix + `)(?:[^a-z]|$)`)
}
