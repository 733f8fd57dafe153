// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package boundary

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// ExpandToSentence grows [start, end) outward to the nearest sentence-ending
// punctuation or newline, looking at most window bytes in each direction.
// A side with no boundary in reach stays put, unless the window reaches the
// edge of the text.
func ExpandToSentence(s string, start, end, window int) (int, int) {
	newStart := sentenceStartBefore(s, start, window)
	newEnd := sentenceEndAfter(s, end, window)
	if newEnd <= newStart {
		return start, end
	}
	return newStart, newEnd
}

func sentenceStartBefore(s string, pos, window int) int {
	lo := RuneFloor(s, pos-window)
	for i := pos; i > lo; {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		if r == '\n' || IsTerminal(r) {
			return skipClosingAndSpace(s, i, pos)
		}
		i -= size
	}
	if lo == 0 {
		return 0
	}
	return pos
}

func sentenceEndAfter(s string, pos, window int) int {
	if EndsSentenceAt(s, pos) {
		return absorbClosing(s, pos)
	}
	hi := RuneCeil(s, pos+window)
	for i := pos; i < hi; {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '\n' {
			return i
		}
		if IsTerminal(r) {
			return absorbClosing(s, i+size)
		}
		i += size
	}
	if hi == len(s) {
		return trimRightSpace(s, pos, len(s))
	}
	return pos
}

// RefineToSentence moves start to the nearest sentence start and end to the
// nearest sentence end, each within the given distance. Ends that cannot be
// refined, or that would produce an empty range, keep their original value.
func RefineToSentence(s string, start, end, within int) (int, int) {
	spans := Sentences(s)
	if len(spans) == 0 {
		return start, end
	}
	starts := make([]int, len(spans))
	ends := make([]int, len(spans))
	for i, sp := range spans {
		starts[i] = sp.Start
		ends[i] = sp.End
	}

	newStart := nearest(starts, start, within)
	newEnd := nearest(ends, end, within)
	if newEnd <= newStart {
		return start, end
	}
	return newStart, newEnd
}

// nearest returns the element of sorted closest to pos if it lies within
// the given distance, else pos.
func nearest(sorted []int, pos, within int) int {
	i := sort.SearchInts(sorted, pos)
	best, bestDist := pos, within+1
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(sorted) {
			continue
		}
		if d := abs(sorted[j] - pos); d < bestDist {
			best, bestDist = sorted[j], d
		}
	}
	return best
}

// NextBoundary scans forward from `from` at most limit bytes for the end of
// the current sentence or paragraph. It returns the offset just past the
// terminal punctuation (and any closing quotes), or the offset of a
// paragraph break.
func NextBoundary(s string, from, limit int) (int, bool) {
	hi := RuneCeil(s, from+limit)
	for i := from; i < hi; {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '\n' && isParagraphBreak(s, i) {
			return i, true
		}
		if IsTerminal(r) {
			j := absorbClosing(s, i+size)
			if j == len(s) {
				return j, true
			}
			next, _ := utf8.DecodeRuneInString(s[j:])
			if unicode.IsSpace(next) {
				return j, true
			}
		}
		i += size
	}
	if hi == len(s) && from < len(s) {
		return len(s), true
	}
	return -1, false
}

// EndsSentenceAt reports whether the text just before pos, ignoring closing
// quotes and brackets, is terminal punctuation.
func EndsSentenceAt(s string, pos int) bool {
	i := pos
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		if IsClosing(r) {
			i -= size
			continue
		}
		return IsTerminal(r)
	}
	return false
}

// PrecededByBoundary reports whether pos starts a fresh sentence or line:
// the nearest non-blank text before it is the start of the document, a
// newline, or terminal punctuation (optionally followed by closing quotes).
func PrecededByBoundary(s string, pos int) bool {
	i := pos
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		if r == ' ' || r == '\t' {
			i -= size
			continue
		}
		if r == '\n' {
			return true
		}
		return EndsSentenceAt(s, i)
	}
	return true
}

// NextLetterIsLower reports whether the first letter after pos on the same
// line is lowercase, which means the text after pos continues a sentence.
func NextLetterIsLower(s string, pos int) bool {
	for i := pos; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '\n':
			return false
		case r == ' ' || r == '\t' || IsQuote(r) || r == '(' || r == '[':
			i += size
		case unicode.IsLetter(r):
			return unicode.IsLower(r)
		default:
			return false
		}
	}
	return false
}

func isParagraphBreak(s string, i int) bool {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		}
		return false
	}
	return false
}

// skipClosingAndSpace advances from i past closing quotes and whitespace,
// never beyond limit.
func skipClosingAndSpace(s string, i, limit int) int {
	for i < limit {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !IsClosing(r) && !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

// absorbClosing advances i past further terminal punctuation and closing
// quotes or brackets.
func absorbClosing(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !IsClosing(r) && !IsTerminal(r) {
			break
		}
		i += size
	}
	return i
}

func trimRightSpace(s string, lo, hi int) int {
	for hi > lo {
		r, size := utf8.DecodeLastRuneInString(s[:hi])
		if !unicode.IsSpace(r) {
			break
		}
		hi -= size
	}
	return hi
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
