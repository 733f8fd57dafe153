// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package score computes similarity between text fragments: edit-distance
// similarity for short strings, character and word Jaccard for long ones.
package score

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LongTextThreshold is the length in bytes above which Auto switches from
// edit distance to character-frequency Jaccard.
const LongTextThreshold = 500

// defaultDiffTimeout bounds a single diff when the caller sets no deadline.
const defaultDiffTimeout = time.Second

// Levenshtein returns 1 - distance/max(len(a), len(b)), with lengths and
// distance counted in runes.
func Levenshtein(a, b string) float64 {
	return LevenshteinBefore(a, b, time.Time{})
}

// LevenshteinBefore is Levenshtein with the diff bounded by deadline. A
// diff that runs out of time degrades to a coarser (lower) similarity
// instead of blocking.
func LevenshteinBefore(a, b string, deadline time.Time) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = defaultDiffTimeout
	if !deadline.IsZero() {
		dmp.DiffTimeout = max(time.Until(deadline), time.Nanosecond)
	}
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)

	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return clamp01(1.0 - float64(distance)/float64(maxLen))
}

// CharJaccard returns the weighted Jaccard similarity of the case-folded,
// non-space character frequencies of a and b: the sum of per-character
// minimum counts over the sum of maximum counts. It runs in linear time.
func CharJaccard(a, b string) float64 {
	if a == b {
		return 1.0
	}
	fa, fb := charFreq(a), charFreq(b)
	if len(fa) == 0 || len(fb) == 0 {
		return 0.0
	}

	var inter, union int
	for r, ca := range fa {
		cb := fb[r]
		inter += min(ca, cb)
		union += max(ca, cb)
	}
	for r, cb := range fb {
		if _, seen := fa[r]; !seen {
			union += cb
		}
	}
	return float64(inter) / float64(union)
}

// Auto picks Levenshtein for short inputs and CharJaccard once either input
// exceeds LongTextThreshold, avoiding quadratic cost on long windows.
func Auto(a, b string, deadline time.Time) float64 {
	if len(a) > LongTextThreshold || len(b) > LongTextThreshold {
		return CharJaccard(a, b)
	}
	return LevenshteinBefore(a, b, deadline)
}

func charFreq(s string) map[rune]int {
	freq := make(map[rune]int, 64)
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		freq[unicode.ToLower(r)]++
	}
	return freq
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
