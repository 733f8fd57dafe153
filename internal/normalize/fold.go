// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IndexFold returns the byte range of the first occurrence of sub in s under
// Unicode simple case folding, or (-1, -1). Folding can change byte widths,
// so the returned range is measured in s and may differ in length from sub.
func IndexFold(s, sub string) (start, end int) {
	return IndexFoldFrom(s, sub, 0)
}

// IndexFoldFrom is IndexFold starting the scan at byte offset from.
func IndexFoldFrom(s, sub string, from int) (start, end int) {
	if sub == "" || from < 0 || from >= len(s) {
		return -1, -1
	}
	if isASCII(s) && isASCII(sub) {
		idx := strings.Index(asciiLower(s[from:]), asciiLower(sub))
		if idx < 0 {
			return -1, -1
		}
		return from + idx, from + idx + len(sub)
	}

	first, _ := utf8.DecodeRuneInString(sub)
	for i := from; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if foldEqual(r, first) {
			if j, ok := matchFoldAt(s, sub, i); ok {
				return i, j
			}
		}
		i += size
	}
	return -1, -1
}

// matchFoldAt reports whether sub matches s at byte i and where it ends.
func matchFoldAt(s, sub string, i int) (int, bool) {
	j := i
	for _, want := range sub {
		if j >= len(s) {
			return 0, false
		}
		got, size := utf8.DecodeRuneInString(s[j:])
		if !foldEqual(got, want) {
			return 0, false
		}
		j += size
	}
	return j, true
}

func foldEqual(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
