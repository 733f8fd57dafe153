// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package score

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minSignificantLen is the shortest token, in letters, that counts as a
// significant word.
const minSignificantLen = 3

// stopWords are common English function words ignored by word overlap.
var stopWords = toSet(
	"a", "about", "after", "again", "all", "also", "am", "an", "and", "any",
	"are", "as", "at", "be", "because", "been", "before", "being", "but",
	"by", "can", "could", "did", "do", "does", "doing", "down", "for", "from",
	"had", "has", "have", "having", "he", "her", "here", "hers", "him", "his",
	"how", "i", "if", "in", "into", "is", "it", "its", "just", "me", "more",
	"most", "my", "no", "nor", "not", "now", "of", "off", "on", "once", "only",
	"or", "other", "our", "out", "over", "own", "same", "she", "should", "so",
	"some", "such", "than", "that", "the", "their", "them", "then", "there",
	"these", "they", "this", "those", "through", "to", "too", "under", "until",
	"up", "very", "was", "we", "were", "what", "when", "where", "which",
	"while", "who", "whom", "why", "will", "with", "would", "you", "your",
)

// WordSet is a set of case-folded words.
type WordSet map[string]struct{}

// Len returns the number of words in the set.
func (s WordSet) Len() int { return len(s) }

// Has reports whether w is in the set.
func (s WordSet) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// SignificantWords returns the alphabetic tokens of s that are at least
// three letters long and not stop words, case-folded.
func SignificantWords(s string) WordSet {
	set := make(WordSet)
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if utf8.RuneCountInString(tok) < minSignificantLen {
			continue
		}
		w := strings.ToLower(tok)
		if IsStopWord(w) {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// WordJaccard returns |a ∩ b| / |a ∪ b|, or 0 when both are empty.
func WordJaccard(a, b WordSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for w := range small {
		if large.Has(w) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// IsStopWord reports whether w, ignoring case and surrounding punctuation,
// is a stop word.
func IsStopWord(w string) bool {
	w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) }))
	_, ok := stopWords[w]
	return ok
}

// StopWordRatio returns the fraction of words that are stop words.
func StopWordRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	n := 0
	for _, w := range words {
		if IsStopWord(w) {
			n++
		}
	}
	return float64(n) / float64(len(words))
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
