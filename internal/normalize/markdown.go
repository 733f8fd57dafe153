// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// rule is one markdown rewrite. keep names the capture group that replaces
// the match; zero deletes the match.
type rule struct {
	re   *regexp.Regexp
	keep int
}

// markdownRules are applied in order.
var markdownRules = []rule{
	{regexp.MustCompile(`(?m)^[ \t]*#+[ \t]*`), 0},       // headers
	{regexp.MustCompile(`\*\*([^*\n]+?)\*\*`), 1},        // bold
	{regexp.MustCompile(`\*([^*\n]+?)\*`), 1},            // italic
	{regexp.MustCompile("(?s)```.*?```"), 0},             // fenced code
	{regexp.MustCompile("`([^`\n]+)`"), 1},               // inline code
	{regexp.MustCompile(`\[([^\]\n]+)\]\([^)\n]*\)`), 1}, // links
	{regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`), 0},        // blockquotes
}

var emphasisNote = regexp.MustCompile(`(?i)[ \t]*(\(emphasis added\)|\[emphasis mine\])`)

// quotePairs lists the wrapping quote pairs CleanTarget removes.
var quotePairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'“':  '”',
	'‘':  '’',
}

// StripMarkdown removes markdown syntax from the normalized text, keeping
// the position mapping intact.
func (m *PositionMap) StripMarkdown() *PositionMap {
	out := m
	for _, r := range markdownRules {
		out = out.Rewrite(r.re, r.keep)
	}
	return out
}

// StripMarkdownString returns s without markdown syntax.
func StripMarkdownString(s string) string {
	return Identity(s).StripMarkdown().Text()
}

// CollapseString collapses whitespace runs in s and trims the result.
func CollapseString(s string) string {
	return strings.TrimSpace(Identity(s).CollapseSpace().Text())
}

// CleanTarget removes the decorations a chat model tends to add around a
// quoted fragment: one wrapping pair of quotes and emphasis annotations.
func CleanTarget(s string) string {
	s = emphasisNote.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return unwrapQuotes(s)
}

// unwrapQuotes strips a single pair of matching quotes around s.
func unwrapQuotes(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	closing, ok := quotePairs[first]
	if !ok {
		return s
	}
	last, lastSize := utf8.DecodeLastRuneInString(s)
	if last != closing || len(s) < size+lastSize {
		return s
	}
	return strings.TrimSpace(s[size : len(s)-lastSize])
}

// ForMatching returns the canonical comparison form of a target: cleaned,
// markdown-free, whitespace-collapsed.
func ForMatching(s string) string {
	return CollapseString(StripMarkdownString(CleanTarget(s)))
}
