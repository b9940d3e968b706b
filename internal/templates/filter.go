package templates

import "strings"

// FilterFunc returns true when a template should be kept.
type FilterFunc func(string) bool

// HasSinglePlaceholder keeps templates with exactly one occurrence of placeholder.
func HasSinglePlaceholder(placeholder string) FilterFunc {
	return func(line string) bool {
		return strings.Count(line, placeholder) == 1
	}
}
