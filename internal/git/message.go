// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxSubjectLength = 72
	defaultSummary   = "revise documents"
)

// commitTypes maps instruction keywords to commit types, most specific first.
var commitTypes = []struct {
	keywords []string
	prefix   string
}{
	{[]string{"typo", "typos", "spelling", "misspelling", "grammar", "punctuation", "fix", "correct"}, "fix"},
	{[]string{"tone", "voice", "reword", "rephrase", "polish", "tighten", "style", "clarify"}, "style"},
	{[]string{"remove", "delete", "cut", "drop", "shorten", "trim", "condense"}, "cut"},
	{[]string{"add", "insert", "append", "expand", "extend", "write", "include"}, "add"},
	{[]string{"readme", "docs", "documentation", "changelog"}, "docs"},
}

// GenerateMessage creates a commit message from the instruction and the
// edited documents, ending with the Edited-By trailer.
func GenerateMessage(instruction string, modifiedFiles []string) string {
	subject := buildSubject(inferCommitType(instruction), instruction)
	body := buildBody(modifiedFiles)

	msg := subject
	if body != "" {
		msg += "\n\n" + body
	}
	msg += "\n\n" + editedByTrailer

	return msg
}

// inferCommitType picks the commit type from instruction keywords. Plain
// revisions are "edit".
func inferCommitType(instruction string) string {
	lower := strings.ToLower(instruction)
	for _, ct := range commitTypes {
		for _, kw := range ct.keywords {
			if containsWord(lower, kw) {
				return ct.prefix
			}
		}
	}
	return "edit"
}

// containsWord checks whether text contains keyword bounded by non-letters
// or string edges.
func containsWord(text, keyword string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		leftOK := start == 0 || !unicode.IsLetter(before)
		rightOK := end == len(text) || !unicode.IsLetter(after)
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

// buildSubject creates "type: summary", at most maxSubjectLength bytes.
func buildSubject(commitType, instruction string) string {
	summary := strings.Join(strings.Fields(instruction), " ")
	summary = strings.TrimRight(summary, ".")
	if summary == "" {
		summary = defaultSummary
	}
	first, size := utf8.DecodeRuneInString(summary)
	summary = string(unicode.ToLower(first)) + summary[size:]

	subject := fmt.Sprintf("%s: %s", commitType, summary)
	if len(subject) > maxSubjectLength {
		cut := maxSubjectLength - 3
		for cut > 0 && !utf8.RuneStart(subject[cut]) {
			cut--
		}
		subject = subject[:cut] + "..."
	}

	return subject
}

func buildBody(modifiedFiles []string) string {
	if len(modifiedFiles) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString("Edited documents:\n")
	for _, f := range modifiedFiles {
		fmt.Fprintf(&buf, "- %s\n", f)
	}
	return strings.TrimRight(buf.String(), "\n")
}
