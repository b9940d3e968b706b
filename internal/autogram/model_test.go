package autogram

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildModel(t *testing.T, opts Options) *Model {
	t.Helper()
	m, err := Build(opts)
	require.NoError(t, err)
	return m
}

func testOptions(alphabet string) Options {
	return Options{
		Alphabet:     alphabet,
		Template:     "A test {0}",
		Conjunction:  " and ",
		PluralSuffix: "'s",
	}
}

func TestBuildSingleInvariant(t *testing.T) {
	m := buildModel(t, testOptions("a"))

	require.Len(t, m.Slots(), 1)
	a := m.Slot(0)
	assert.Equal(t, 'a', a.Char)
	assert.False(t, a.Variable)
	assert.Equal(t, -1, a.VariableIndex)
	assert.Equal(t, 2, a.Baseline)
	assert.Equal(t, 3, a.Minimum)
	assert.Equal(t, 0, m.VariableCount())
}

func TestBuildInvariantAndVariable(t *testing.T) {
	m := buildModel(t, testOptions("ae"))

	require.Len(t, m.Slots(), 2)
	a, e := m.Slot(0), m.Slot(1)

	assert.False(t, a.Variable)
	assert.Equal(t, 2, a.Baseline)
	assert.Equal(t, 3, a.Minimum)

	assert.True(t, e.Variable)
	assert.Equal(t, 0, e.VariableIndex)
	assert.Equal(t, 1, e.Baseline)
	assert.Equal(t, 4, e.Minimum)
	assert.Equal(t, 3, e.VariableBaseline)
	assert.Equal(t, []int{3}, m.VariableBaseline())
	assert.Equal(t, []int{4}, m.VariableMinimum())
}

func TestBuildForcedCharacter(t *testing.T) {
	opts := testOptions("aerz")
	opts.Forced = "Z"
	m := buildModel(t, opts)

	want := []Slot{
		{Char: 'a', Index: 0, Baseline: 2, Minimum: 3, VariableIndex: -1},
		{Char: 'e', Index: 1, Variable: true, Baseline: 1, Minimum: 5, VariableIndex: 0, VariableBaseline: 4},
		{Char: 'r', Index: 2, Variable: true, Baseline: 0, Minimum: 1, VariableIndex: 1, VariableBaseline: 1},
		{Char: 'z', Index: 3, Baseline: 0, Minimum: 1, VariableIndex: -1},
	}
	assert.Equal(t, want, m.Slots())
}

func TestBuildExtendedCharacters(t *testing.T) {
	m := buildModel(t, Options{
		Alphabet:     "abc, ",
		Template:     "Look {0}.",
		Conjunction:  " and ",
		PluralSuffix: "'s",
	})

	want := []Slot{
		{Char: 'a', Index: 0, Baseline: 3, Minimum: 4, VariableIndex: -1},
		{Char: 'c', Index: 1, Baseline: 2, Minimum: 3, VariableIndex: -1},
		{Char: ' ', Index: 2, Variable: true, Baseline: 1, Minimum: 5, VariableIndex: 0, VariableBaseline: 5},
		{Char: ',', Index: 3, Variable: true, Baseline: -2, Minimum: 1, VariableIndex: 1, VariableBaseline: 0},
	}
	assert.Equal(t, want, m.Slots())

	table := m.Table()
	assert.Equal(t, 2, table.Width())
	assert.Equal(t, []int{2, 1}, table.Row(0, 1))
	assert.Equal(t, []int{2, 1}, table.Row(0, 4))
	assert.Equal(t, []int{2, 1}, table.Row(1, 2))
	assert.Equal(t, 1, table.At(1, 2, 1))
}

func TestBuildTableCountsOwnGlyph(t *testing.T) {
	m := buildModel(t, Options{
		Alphabet:     "aeiou",
		Template:     "Vowels here: {0}.",
		Conjunction:  " and ",
		PluralSuffix: "'s",
	})

	e := m.Slot(1)
	require.True(t, e.Variable)
	// "three e's, " holds three e's.
	assert.Equal(t, []int{3, 0, 0, 0}, m.Table().Row(e.VariableIndex, 3))
	assert.Equal(t, []int{0, 0, 0, 0}, m.Table().Row(e.VariableIndex, 0))
}

func TestBuildSlotInvariants(t *testing.T) {
	cases := []Options{
		testOptions("abcdefghijklmnopqrstuvwxyz"),
		{Alphabet: "abcdefghij", Template: "This sentence contains {0}.", Conjunction: " and ", PluralSuffix: "'s"},
		{Alphabet: "abcdefghijklmnopqrstuvwxyz,-' ", Template: "Only the fool would take trouble to verify that his sentence was composed of {0}.", Conjunction: " and, last but not least, ", PluralSuffix: "'s"},
		{Alphabet: "efghinorstuvwx", Template: "This sentence has {0}.", Conjunction: " and ", PluralSuffix: "s", Separator: "; "},
	}
	for _, opts := range cases {
		t.Run(opts.Alphabet, func(t *testing.T) {
			m := buildModel(t, opts)
			variables := 0
			for i, s := range m.Slots() {
				assert.Equal(t, i, s.Index)
				assert.GreaterOrEqual(t, s.Minimum, s.Baseline, "slot %q", s.Char)
				if s.Variable {
					assert.GreaterOrEqual(t, s.Minimum, s.VariableBaseline, "slot %q", s.Char)
					assert.Equal(t, variables, s.VariableIndex)
					variables++
				} else {
					assert.Equal(t, -1, s.VariableIndex)
				}
			}
			assert.Equal(t, variables, m.VariableCount())
			assert.Equal(t, variables, m.Table().Width())
		})
	}
}

func TestBuildOrdersLettersFirst(t *testing.T) {
	m := buildModel(t, Options{
		Alphabet:     " ,zae",
		Template:     "Look {0}.",
		Conjunction:  " and ",
		PluralSuffix: "'s",
	})

	var chars []rune
	for _, s := range m.Slots() {
		chars = append(chars, s.Char)
	}
	assert.Equal(t, []rune{'a', 'e', ' ', ','}, chars)
}

func TestBuildDefaultsSeparator(t *testing.T) {
	m := buildModel(t, testOptions("ae"))
	assert.Equal(t, DefaultSeparator, m.Options().Separator)
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name  string
		opts  Options
		field string
		cause error
	}{
		{name: "empty alphabet", opts: testOptions(""), field: "alphabet"},
		{name: "missing placeholder", opts: Options{Alphabet: "a", Template: "no list"}, field: "template"},
		{name: "duplicate placeholder", opts: Options{Alphabet: "a", Template: "{0} and {0}"}, field: "template"},
		{name: "nothing relevant", opts: Options{Alphabet: "q", Template: "{0}"}, field: "alphabet"},
		{name: "forced extended never rendered", opts: Options{Alphabet: "a'", Template: "A {0}", PluralSuffix: "s", Forced: "'"}, field: "forced"},
		{
			name:  "count beyond spellable range",
			opts:  Options{Alphabet: "a", Template: strings.Repeat("a", 120) + " {0}"},
			field: "template",
			cause: ErrCountOutOfRange,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig))
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.field, cfgErr.Field)
			if tc.cause != nil {
				assert.ErrorIs(t, err, tc.cause)
			}
		})
	}
}

func TestBuildKeepsNamedSlotsListed(t *testing.T) {
	// "commas" is counted in the baseline, so the comma entry must stay in the list.
	m := buildModel(t, testOptions("ae,"))

	comma := m.Slot(2)
	require.Equal(t, ',', comma.Char)
	require.True(t, comma.Variable)
	assert.Equal(t, -2, comma.Baseline)
	assert.Equal(t, 1, comma.Minimum)
	assert.Equal(t, 1, m.VariableMinimum()[comma.VariableIndex])
}

func TestBuildBlankConjunction(t *testing.T) {
	m := buildModel(t, Options{
		Alphabet:     "abc, ",
		Template:     "Look {0}.",
		Conjunction:  " ",
		PluralSuffix: "'s",
	})

	assert.Equal(t, "", m.Options().Conjunction)
	want := []Slot{
		{Char: 'a', Index: 0, Baseline: 2, Minimum: 3, VariableIndex: -1},
		{Char: 'c', Index: 1, Baseline: 2, Minimum: 3, VariableIndex: -1},
		{Char: ' ', Index: 2, Variable: true, Baseline: 0, Minimum: 4, VariableIndex: 0, VariableBaseline: 4},
		{Char: ',', Index: 3, Variable: true, Baseline: -1, Minimum: 1, VariableIndex: 1, VariableBaseline: 1},
	}
	assert.Equal(t, want, m.Slots())
	assert.Equal(t, "Look three a's, three c's, eight spaces, three commas.", Render(m, []int{3, 3, 8, 3}))
}

func TestBuildRejectsUnreachableSlot(t *testing.T) {
	// Two entries leave no comma in the list, yet the comma entry needs one.
	_, err := Build(testOptions("s,"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.True(t, errors.Is(err, ErrCountOutOfRange))

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "separator", cfgErr.Field)
	assert.Contains(t, cfgErr.Reason, "too few list entries")
}
