package numerals

type extendedName struct {
	singular string
	plural   string
}

// Characters rendered as a word rather than their own glyph.
var extendedNames = map[rune]extendedName{
	',':  {singular: "comma", plural: "commas"},
	'-':  {singular: "hyphen", plural: "hyphens"},
	'\'': {singular: "apostrophe", plural: "apostrophes"},
	' ':  {singular: "space", plural: "spaces"},
}

// HasExtendedName reports whether r is written as a word in a count list.
func HasExtendedName(r rune) bool {
	_, ok := extendedNames[r]
	return ok
}

// Singular returns the name used for a count of one.
func Singular(r rune) string {
	if n, ok := extendedNames[r]; ok {
		return n.singular
	}
	return string(r)
}

// Plural returns the name used for any count other than one.
// Extended names carry their own plural; other glyphs take the suffix.
func Plural(r rune, suffix string) string {
	if n, ok := extendedNames[r]; ok {
		return n.plural
	}
	return string(r) + suffix
}

// Name returns the singular or plural name of r for quantity q.
func Name(r rune, q int, suffix string) string {
	if q == 1 {
		return Singular(r)
	}
	return Plural(r, suffix)
}

// Entry renders one list item, e.g. "three e's" or "one comma".
func Entry(r rune, q int, suffix string) string {
	return Spell(q) + " " + Name(r, q, suffix)
}

// ExtendedNames maps every extended name, singular and plural, to its character.
func ExtendedNames() map[string]rune {
	out := make(map[string]rune, len(extendedNames)*2)
	for r, n := range extendedNames {
		out[n.singular] = r
		out[n.plural] = r
	}
	return out
}
