// Package autogram builds the numeric model of a self-describing sentence and searches it for
// a fixed point.
package autogram

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/autogram/internal/numerals"
)

// Placeholder marks where the count list is inserted into a template.
const Placeholder = "{0}"

// DefaultSeparator joins list entries before the conjunction.
const DefaultSeparator = ", "

// Options are the inputs of Build.
type Options struct {
	// Alphabet lists the characters eligible for tracking, e.g. "abcdefghijklmnopqrstuvwxyz".
	Alphabet string
	// Template is the sentence body with exactly one Placeholder.
	Template string
	// Conjunction joins the last two list entries, e.g. " and ". A blank conjunction leaves the
	// separator between them.
	Conjunction string
	// PluralSuffix is appended to a glyph whose count is not one, e.g. "'s".
	PluralSuffix string
	// Forced lists characters to track even when absent from the template.
	Forced string
	// Separator joins the other list entries. Empty means DefaultSeparator.
	Separator string
}

// Slot describes one tracked character.
type Slot struct {
	Char  rune
	Index int
	// Variable is set when the character occurs in some spelled count, so its total depends on
	// the counts of other characters.
	Variable bool
	// Baseline counts occurrences guaranteed by the fixed text.
	Baseline int
	// Minimum is a lower bound on the true count. For invariant slots it is the exact count.
	Minimum int
	// VariableIndex is the position among variable slots, or -1.
	VariableIndex int
	// VariableBaseline is Baseline plus the spelled counts of invariant characters.
	VariableBaseline int
}

// Model is the immutable result of Build.
type Model struct {
	opts      Options
	slots     []Slot
	variables []int
	table     *FrequencyTable
}

// Options returns the normalized options the model was built from.
func (m *Model) Options() Options {
	return m.opts
}

// Slots returns a copy of all slots in index order.
func (m *Model) Slots() []Slot {
	out := make([]Slot, len(m.slots))
	copy(out, m.slots)
	return out
}

// Slot returns the slot at index i.
func (m *Model) Slot(i int) Slot {
	return m.slots[i]
}

// VariableCount returns the number of variable slots.
func (m *Model) VariableCount() int {
	return len(m.variables)
}

// VariableSlot returns the slot with variable index v.
func (m *Model) VariableSlot(v int) Slot {
	return m.slots[m.variables[v]]
}

// Table returns the numeral frequency table.
func (m *Model) Table() *FrequencyTable {
	return m.table
}

// VariableBaseline returns the fixed part of every variable slot's count.
func (m *Model) VariableBaseline() []int {
	out := make([]int, len(m.variables))
	for v, i := range m.variables {
		out[v] = m.slots[i].VariableBaseline
	}
	return out
}

// VariableMinimum returns the lower bound of every variable slot's count.
func (m *Model) VariableMinimum() []int {
	out := make([]int, len(m.variables))
	for v, i := range m.variables {
		out[v] = m.slots[i].Minimum
	}
	return out
}

// Build derives the numeric model for the given options.
func Build(opts Options) (*Model, error) {
	opts, err := normalize(opts)
	if err != nil {
		return nil, err
	}
	b := newBuilder(opts)
	if err := b.classify(); err != nil {
		return nil, err
	}
	b.buildTable()
	if err := b.foldInvariants(); err != nil {
		return nil, err
	}
	b.contractSeparator()
	b.keepNamedSlots()
	if err := b.validate(); err != nil {
		return nil, err
	}
	if err := b.checkReachable(); err != nil {
		return nil, err
	}
	return &Model{
		opts:      opts,
		slots:     b.slots,
		variables: b.variables,
		table:     b.table,
	}, nil
}

func normalize(opts Options) (Options, error) {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if strings.TrimSpace(opts.Conjunction) == "" {
		opts.Conjunction = ""
	}
	opts.Alphabet = strings.ToLower(opts.Alphabet)
	opts.Forced = strings.ToLower(opts.Forced)
	if opts.Alphabet == "" {
		return opts, configErrorf("alphabet", nil, "must not be empty")
	}
	if !utf8.ValidString(opts.Alphabet) || !utf8.ValidString(opts.Template) {
		return opts, configErrorf("template", nil, "must be valid UTF-8")
	}
	switch n := strings.Count(opts.Template, Placeholder); n {
	case 1:
	case 0:
		return opts, configErrorf("template", nil, "missing list placeholder %s", Placeholder)
	default:
		return opts, configErrorf("template", nil, "placeholder %s occurs %d times", Placeholder, n)
	}
	return opts, nil
}

type builder struct {
	opts      Options
	suffix    string
	skeleton  string
	numerals  string
	baseline  string
	slots     []Slot
	index     map[rune]int
	named     map[rune]bool
	variables []int
	table     *FrequencyTable
}

func newBuilder(opts Options) *builder {
	suffix := strings.ToLower(opts.PluralSuffix)
	sep := strings.ToLower(opts.Separator)
	var nums strings.Builder
	for q := 1; q <= numerals.MaxCount; q++ {
		nums.WriteString(numeralPart(q, sep))
		if q != 1 {
			nums.WriteString(suffix)
		}
	}
	return &builder{
		opts:     opts,
		suffix:   suffix,
		skeleton: strings.ToLower(strings.Replace(opts.Template, Placeholder, "", 1) + opts.Conjunction),
		numerals: nums.String(),
	}
}

// numeralPart is the text every list entry carries apart from the character name.
func numeralPart(q int, sep string) string {
	return numerals.Spell(q) + " " + sep
}

func (b *builder) classify() error {
	alphabet := map[rune]struct{}{}
	for _, r := range b.opts.Alphabet {
		alphabet[r] = struct{}{}
	}

	// Extended names are listed as words; the plural forms are assumed present.
	pool := b.skeleton + b.opts.Forced + b.numerals
	var names strings.Builder
	b.named = map[rune]bool{}
	for _, r := range sortedRunes(alphabet) {
		if numerals.HasExtendedName(r) && strings.ContainsRune(pool, r) {
			names.WriteString(numerals.Plural(r, b.suffix))
			b.named[r] = true
		}
	}
	b.baseline = b.skeleton + names.String()

	relevant := map[rune]struct{}{}
	for _, r := range b.baseline + b.opts.Forced + b.numerals {
		if _, ok := alphabet[r]; ok {
			relevant[r] = struct{}{}
		}
	}
	if len(relevant) == 0 {
		return configErrorf("alphabet", nil, "no character of %q occurs in the sentence", b.opts.Alphabet)
	}

	b.index = make(map[rune]int, len(relevant))
	for i, r := range sortedRunes(relevant) {
		baseline := strings.Count(b.baseline, string(r))
		forced := strings.ContainsRune(b.opts.Forced, r)
		slot := Slot{
			Char:          r,
			Index:         i,
			Variable:      strings.ContainsRune(b.numerals, r),
			Baseline:      baseline,
			Minimum:       baseline,
			VariableIndex: -1,
		}
		if !numerals.HasExtendedName(r) && (baseline > 0 || forced) {
			slot.Minimum++
		}
		if slot.Variable {
			slot.VariableIndex = len(b.variables)
			slot.VariableBaseline = baseline
			b.variables = append(b.variables, i)
		} else if forced && slot.Minimum == 0 {
			return configErrorf("forced", nil, "character %q can never occur", r)
		}
		if !numerals.InRange(slot.Minimum) {
			return configErrorf("template", ErrCountOutOfRange, "character %q occurs %d times", r, slot.Minimum)
		}
		b.index[r] = i
		b.slots = append(b.slots, slot)
	}
	return nil
}

// entry counts the runes of one list entry over all slots. withGlyph controls whether a glyph
// named by itself is counted; invariant minimums already include it.
func (b *builder) entry(r rune, q int, withGlyph bool) []int {
	counts := b.frequencies(numeralPart(q, strings.ToLower(b.opts.Separator)))
	if numerals.HasExtendedName(r) {
		if q == 1 {
			addInto(counts, b.frequencies(numerals.Singular(r)), 1)
			addInto(counts, b.frequencies(numerals.Plural(r, b.suffix)), -1)
		}
		return counts
	}
	tail := ""
	if withGlyph {
		tail = string(r)
	}
	if q != 1 {
		tail += b.suffix
	}
	addInto(counts, b.frequencies(tail), 1)
	return counts
}

func (b *builder) buildTable() {
	b.table = newFrequencyTable(len(b.variables))
	row := make([]int, len(b.variables))
	for v, i := range b.variables {
		r := b.slots[i].Char
		for q := 1; q <= numerals.MaxCount; q++ {
			full := b.entry(r, q, true)
			for w, j := range b.variables {
				row[w] = full[j]
			}
			b.table.set(v, q, row)
		}
	}
}

func (b *builder) foldInvariants() error {
	fixed := make([]int, len(b.slots))
	for i, s := range b.slots {
		fixed[i] = s.Minimum
	}
	for i, s := range b.slots {
		if s.Variable || fixed[i] == 0 {
			continue
		}
		spelled := b.entry(s.Char, fixed[i], false)
		for j := range b.slots {
			b.slots[j].Minimum += spelled[j]
			if b.slots[j].Variable {
				b.slots[j].VariableBaseline += spelled[j]
			}
		}
	}
	for _, s := range b.slots {
		if !numerals.InRange(s.Minimum) {
			return configErrorf("template", ErrCountOutOfRange, "character %q needs at least %d occurrences", s.Char, s.Minimum)
		}
	}
	return nil
}

// contractSeparator removes the separators the list does not use: two when the conjunction
// joins the last entry, one otherwise.
func (b *builder) contractSeparator() {
	sep := strings.ToLower(b.opts.Separator)
	unused := 2
	if b.opts.Conjunction == "" {
		unused = 1
	}
	for i := range b.slots {
		delta := unused * strings.Count(sep, string(b.slots[i].Char))
		if delta == 0 {
			continue
		}
		b.slots[i].Baseline -= delta
		b.slots[i].Minimum -= delta
		if b.slots[i].Variable {
			b.slots[i].VariableBaseline -= delta
		}
	}
}

// keepNamedSlots raises the minimum of every variable slot whose plural name is already in the
// baseline, so the entry holding that name is never dropped from the list.
func (b *builder) keepNamedSlots() {
	for i, s := range b.slots {
		if s.Variable && b.named[s.Char] && s.Minimum < 1 {
			b.slots[i].Minimum = 1
		}
	}
}

// checkReachable rejects variable slots whose count can never match itself: even with every
// other entry at its largest contribution, no count from the slot's floor up is reached.
func (b *builder) checkReachable() error {
	floors := make([]int, len(b.variables))
	for v, i := range b.variables {
		floors[v] = max(0, b.slots[i].Minimum)
	}
	for v, i := range b.variables {
		s := b.slots[i]
		others := 0
		for w := range b.variables {
			if w == v {
				continue
			}
			best := b.table.At(w, floors[w], v)
			for q := floors[w] + 1; q <= numerals.MaxCount; q++ {
				best = max(best, b.table.At(w, q, v))
			}
			others += best
		}
		reachable := false
		for c := floors[v]; c <= numerals.MaxCount && !reachable; c++ {
			reachable = c <= s.VariableBaseline+others+b.table.At(v, c, v)
		}
		if !reachable {
			return configErrorf("separator", ErrCountOutOfRange,
				"character %q can never reach %d occurrences: too few list entries for the separator contraction", s.Char, floors[v])
		}
	}
	return nil
}

func (b *builder) validate() error {
	for _, s := range b.slots {
		if s.Minimum < s.Baseline {
			return configErrorf("", ErrInvariant, "slot %q minimum %d below baseline %d", s.Char, s.Minimum, s.Baseline)
		}
		if s.Variable && s.Minimum < s.VariableBaseline {
			return configErrorf("", ErrInvariant, "slot %q minimum %d below variable baseline %d", s.Char, s.Minimum, s.VariableBaseline)
		}
		if s.Variable != (s.VariableIndex >= 0) {
			return configErrorf("", ErrInvariant, "slot %q variable index %d", s.Char, s.VariableIndex)
		}
	}
	return nil
}

func (b *builder) frequencies(s string) []int {
	out := make([]int, len(b.slots))
	for _, r := range s {
		if i, ok := b.index[r]; ok {
			out[i]++
		}
	}
	return out
}

func addInto(dst, src []int, sign int) {
	for i, v := range src {
		dst[i] += sign * v
	}
}

// sortedRunes orders letters a-z first, then every other rune by code point.
func sortedRunes(set map[rune]struct{}) []rune {
	out := make([]rune, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := isLatinLetter(out[i]), isLatinLetter(out[j])
		if li != lj {
			return li
		}
		return out[i] < out[j]
	})
	return out
}

func isLatinLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// String summarizes the model for logs.
func (m *Model) String() string {
	return fmt.Sprintf("autogram model: %d slots, %d variable", len(m.slots), len(m.variables))
}
