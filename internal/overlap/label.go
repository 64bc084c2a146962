package overlap

import (
	"strings"
	"unicode/utf8"
)

// FormatLabel reflows text into lines of at most width characters by greedy
// word packing. Words are never split, so a single long word may exceed width.
func FormatLabel(text string, width int) string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		if utf8.RuneCountInString(current)+utf8.RuneCountInString(word)+1 > width {
			if current != "" {
				lines = append(lines, current)
			}
			current = word
			continue
		}
		if current != "" {
			current += " "
		}
		current += word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return strings.Join(lines, "\n")
}

// FlattenLabel joins a reflowed label back onto a single line.
func FlattenLabel(label string) string {
	return strings.ReplaceAll(label, "\n", " ")
}
