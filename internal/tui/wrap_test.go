package tui

import "testing"

func plainRunes(s string) []styledRune {
	out := make([]styledRune, 0, len(s))
	for _, r := range s {
		out = append(out, styledRune{s: string(r), width: 1, isSpace: r == ' '})
	}
	return out
}

func TestBuildStyledRunesMarksOffChars(t *testing.T) {
	runes := buildStyledRunes("Ee s", map[rune]bool{'e': true})
	if len(runes) != 4 {
		t.Fatalf("expected 4 runes, got %d", len(runes))
	}
	if runes[0].s != offStyle.Render("E") {
		t.Fatalf("expected off style for upper-case tracked rune")
	}
	if runes[1].s != offStyle.Render("e") {
		t.Fatalf("expected off style for tracked rune")
	}
	if !runes[2].isSpace {
		t.Fatalf("expected space flag")
	}
	if runes[3].s != settledStyle.Render("s") {
		t.Fatalf("expected settled style for untracked rune")
	}
}

func TestBuildStyledRunesWide(t *testing.T) {
	runes := buildStyledRunes("日a", nil)
	if runes[0].width != 2 || runes[1].width != 1 {
		t.Fatalf("unexpected widths %d %d", runes[0].width, runes[1].width)
	}
}

func TestWrapStyledRunesAtSpace(t *testing.T) {
	got := wrapStyledRunes(plainRunes("one two three"), 8)
	want := "one two\nthree"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapStyledRunesLongWord(t *testing.T) {
	got := wrapStyledRunes(plainRunes("abcdefgh"), 3)
	want := "abc\ndef\ngh"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapStyledRunesNoWidth(t *testing.T) {
	got := wrapStyledRunes(plainRunes("one two"), 0)
	if got != "one two" {
		t.Fatalf("expected unwrapped text, got %q", got)
	}
}
