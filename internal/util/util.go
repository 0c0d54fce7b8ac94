// internal/util/util.go
package util

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}

// WrapToWidth wraps instruction text to a terminal width in runes. Existing
// line breaks are kept; words longer than the width are split.
func WrapToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var wrapped []string
	var cur strings.Builder
	count := 0
	flush := func() {
		if cur.Len() > 0 {
			wrapped = append(wrapped, cur.String())
			cur.Reset()
			count = 0
		}
	}

	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		if wordLen > width {
			flush()
			runes := []rune(word)
			for start := 0; start < len(runes); start += width {
				end := start + width
				if end > len(runes) {
					end = len(runes)
				}
				wrapped = append(wrapped, string(runes[start:end]))
			}
			continue
		}
		sep := 0
		if count > 0 {
			sep = 1
		}
		if count+sep+wordLen > width {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteByte(' ')
			count++
		}
		cur.WriteString(word)
		count += wordLen
	}
	flush()
	return wrapped
}
