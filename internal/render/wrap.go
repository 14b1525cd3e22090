package render

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var errInvalidUTF8 = errors.New("text is not valid UTF-8")

type measurer interface {
	StringWidth(text string, style Style) float64
}

// wrapText breaks text into lines no wider than width. Explicit newlines are
// kept, words are broken greedily, and a single word wider than the column
// is split between runes. Empty text yields no lines.
func wrapText(m measurer, text string, width float64, style Style) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	if !utf8.ValidString(text) {
		return nil, errInvalidUTF8
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if m.StringWidth(candidate, style) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			for word != "" && m.StringWidth(word, style) > width {
				cut := fitPrefix(m, word, width, style)
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			line = word
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// fitPrefix returns the byte length of the longest prefix of word that fits
// width. At least one rune is always taken so wrapping terminates.
func fitPrefix(m measurer, word string, width float64, style Style) int {
	_, first := utf8.DecodeRuneInString(word)
	cut := first
	for i := range word {
		if i == 0 {
			continue
		}
		if m.StringWidth(word[:i], style) > width {
			break
		}
		cut = i
	}
	if m.StringWidth(word, style) <= width {
		return len(word)
	}
	return cut
}
