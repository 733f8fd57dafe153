// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package boundary finds sentence, paragraph and quotation edges in prose
// and snaps byte offsets to them.
package boundary

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) of a text.
type Span struct {
	Start int
	End   int
}

// Len returns the length of the span in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Text returns the spanned substring of s.
func (s Span) Text(text string) string { return text[s.Start:s.End] }

var (
	// sentenceBreak matches terminal punctuation, optional closing quotes or
	// brackets, and the whitespace after them. Group 1 is the punctuation.
	sentenceBreak  = regexp.MustCompile(`([.!?…]+["'”’)\]]*)\s+`)
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n\s*`)
)

// IsTerminal reports whether r ends a sentence.
func IsTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

// IsQuote reports whether r is a straight or curly quotation mark.
func IsQuote(r rune) bool {
	switch r {
	case '"', '\'', '“', '”', '‘', '’':
		return true
	}
	return false
}

// IsClosing reports whether r may trail terminal punctuation: a closing
// quote or bracket.
func IsClosing(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', ')', ']':
		return true
	}
	return false
}

// RuneFloor clamps i into [0, len(s)] and moves it back to a rune start.
func RuneFloor(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// RuneCeil clamps i into [0, len(s)] and moves it forward to a rune start.
func RuneCeil(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

// Paragraphs splits s at blank lines. Spans are trimmed of surrounding
// whitespace; empty paragraphs are dropped.
func Paragraphs(s string) []Span {
	return splitTrimmed(s, Span{0, len(s)}, paragraphBreak, 0)
}

// Sentences splits s into sentences: paragraphs first, then at terminal
// punctuation followed by whitespace. Terminal punctuation stays with its
// sentence.
func Sentences(s string) []Span {
	var out []Span
	for _, p := range Paragraphs(s) {
		out = append(out, sentencesIn(s, p)...)
	}
	return out
}

// Chunks splits s into paragraphs, further splitting paragraphs longer than
// maxParagraph bytes into sentences.
func Chunks(s string, maxParagraph int) []Span {
	var out []Span
	for _, p := range Paragraphs(s) {
		if p.Len() > maxParagraph {
			out = append(out, sentencesIn(s, p)...)
			continue
		}
		out = append(out, p)
	}
	return out
}

func sentencesIn(s string, p Span) []Span {
	return splitTrimmed(s, p, sentenceBreak, 1)
}

// splitTrimmed splits the region p of s at each match of re. When keep is
// positive, the capture group keep stays with the piece before the match.
func splitTrimmed(s string, p Span, re *regexp.Regexp, keep int) []Span {
	region := s[p.Start:p.End]
	var out []Span
	prev := 0
	for _, loc := range re.FindAllStringSubmatchIndex(region, -1) {
		end := loc[0]
		if keep > 0 && loc[2*keep+1] >= 0 {
			end = loc[2*keep+1]
		}
		if sp, ok := trim(s, Span{p.Start + prev, p.Start + end}); ok {
			out = append(out, sp)
		}
		prev = loc[1]
	}
	if sp, ok := trim(s, Span{p.Start + prev, p.End}); ok {
		out = append(out, sp)
	}
	return out
}

// trim shrinks sp to exclude leading and trailing whitespace.
func trim(s string, sp Span) (Span, bool) {
	for sp.Start < sp.End {
		r, size := utf8.DecodeRuneInString(s[sp.Start:sp.End])
		if !unicode.IsSpace(r) {
			break
		}
		sp.Start += size
	}
	for sp.End > sp.Start {
		r, size := utf8.DecodeLastRuneInString(s[sp.Start:sp.End])
		if !unicode.IsSpace(r) {
			break
		}
		sp.End -= size
	}
	return sp, sp.End > sp.Start
}
