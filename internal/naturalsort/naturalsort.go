// Package naturalsort orders strings by interpreting embedded digit runs as
// numbers rather than comparing them lexically, so "page2" sorts before
// "page10". Non-digit runs compare case-insensitively.
package naturalsort

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

var fold = cases.Fold()

type token struct {
	text    string
	numeric bool
}

// key splits s into alternating digit and non-digit runs. Digit runs keep
// their raw text so arbitrarily long numbers compare without overflow.
func key(s string) []token {
	tokens := make([]token, 0, 4)
	start := 0
	digits := false
	for i, r := range s {
		isDigit := r >= '0' && r <= '9'
		if i == 0 {
			digits = isDigit
			continue
		}
		if isDigit != digits {
			tokens = append(tokens, makeToken(s[start:i], digits))
			start = i
			digits = isDigit
		}
	}
	if start < len(s) {
		tokens = append(tokens, makeToken(s[start:], digits))
	}
	return tokens
}

func makeToken(text string, numeric bool) token {
	if numeric {
		return token{text: strings.TrimLeft(text, "0"), numeric: true}
	}
	return token{text: fold.String(text)}
}

func compareTokens(a, b token) int {
	if a.numeric && b.numeric {
		if d := len(a.text) - len(b.text); d != 0 {
			if d < 0 {
				return -1
			}
			return 1
		}
		return strings.Compare(a.text, b.text)
	}
	if a.numeric != b.numeric {
		// A digit run sorts before a non-digit run at the same position,
		// matching how "1" < "a" lexically.
		if a.numeric {
			return -1
		}
		return 1
	}
	return strings.Compare(a.text, b.text)
}

// Compare returns -1, 0, or 1 ordering a relative to b naturally.
func Compare(a, b string) int {
	ka, kb := key(a), key(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		if c := compareTokens(ka[i], kb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ka) < len(kb):
		return -1
	case len(ka) > len(kb):
		return 1
	}
	return 0
}

// Less reports whether a orders before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Strings sorts values in place in natural order.
func Strings(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return Less(values[i], values[j])
	})
}

// Paths sorts file paths in place by the natural order of their basenames.
func Paths(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return Less(filepath.Base(paths[i]), filepath.Base(paths[j]))
	})
}

// SearchPaths returns the insertion index that keeps paths sorted by basename
// when inserting path.
func SearchPaths(paths []string, path string) int {
	base := filepath.Base(path)
	return sort.Search(len(paths), func(i int) bool {
		return !Less(filepath.Base(paths[i]), base)
	})
}
