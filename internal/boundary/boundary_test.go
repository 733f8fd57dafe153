// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package boundary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(s string, spans []Span) []string {
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = sp.Text(s)
	}
	return out
}

func TestSentences(t *testing.T) {
	s := "Hello world. How are you? Fine.\n\nNew para here."
	assert.Equal(t,
		[]string{"Hello world.", "How are you?", "Fine.", "New para here."},
		texts(s, Sentences(s)))
}

func TestSentences_ClosingQuoteStaysWithSentence(t *testing.T) {
	s := `"Stop!" she cried. He stopped.`
	assert.Equal(t, []string{`"Stop!"`, "she cried.", "He stopped."}, texts(s, Sentences(s)))
}

func TestParagraphs(t *testing.T) {
	s := "  one\ntwo  \n \n\nthree\n"
	assert.Equal(t, []string{"one\ntwo", "three"}, texts(s, Paragraphs(s)))
	assert.Empty(t, Paragraphs("   \n\n  "))
}

func TestChunks_SplitsLongParagraphs(t *testing.T) {
	short := "A short paragraph."
	long := strings.Repeat("This sentence is here. ", 20)
	s := short + "\n\n" + long

	chunks := texts(s, Chunks(s, 300))
	require.Len(t, chunks, 21)
	assert.Equal(t, short, chunks[0])
	assert.Equal(t, "This sentence is here.", chunks[1])
}

func TestRuneFloorCeil(t *testing.T) {
	s := "aé b" // é is two bytes at 1..3
	assert.Equal(t, 1, RuneFloor(s, 2))
	assert.Equal(t, 3, RuneCeil(s, 2))
	assert.Equal(t, 0, RuneFloor(s, -4))
	assert.Equal(t, len(s), RuneCeil(s, 99))
}

func TestExpandToSentence(t *testing.T) {
	s := "First one. The cat sat on the mat. Last."
	start := strings.Index(s, "cat")
	end := strings.Index(s, " the mat")

	gotStart, gotEnd := ExpandToSentence(s, start, end, 200)
	assert.Equal(t, "The cat sat on the mat.", s[gotStart:gotEnd])
}

func TestExpandToSentence_KeepsEdgesAlreadyOnBoundary(t *testing.T) {
	s := "First one. The cat sat on the mat. Last."
	want := "The cat sat on the mat."
	start := strings.Index(s, want)

	gotStart, gotEnd := ExpandToSentence(s, start, start+len(want), 200)
	assert.Equal(t, start, gotStart)
	assert.Equal(t, start+len(want), gotEnd)
}

func TestExpandToSentence_WindowTooSmall(t *testing.T) {
	s := "First one. " + strings.Repeat("word ", 100) + "end."
	start := strings.Index(s, "word") + 250
	gotStart, gotEnd := ExpandToSentence(s, start, start+4, 10)
	assert.Equal(t, start, gotStart)
	assert.Equal(t, start+4, gotEnd)
}

func TestRefineToSentence(t *testing.T) {
	s := "Alpha beta. Gamma delta epsilon. Zeta."
	start, end := RefineToSentence(s, 13, 30, 5)
	assert.Equal(t, "Gamma delta epsilon.", s[start:end])

	start, end = RefineToSentence(s, 15, 28, 1)
	assert.Equal(t, 15, start)
	assert.Equal(t, 28, end)
}

func TestNextBoundary(t *testing.T) {
	s := "the cat sat on the mat. It ran."
	got, ok := NextBoundary(s, 4, 500)
	require.True(t, ok)
	assert.Equal(t, "the cat sat on the mat.", s[:got])

	s = "no terminal here\n\nnext paragraph"
	got, ok = NextBoundary(s, 3, 500)
	require.True(t, ok)
	assert.Equal(t, "no terminal here", s[:got])

	s = "3.14 is pi and more text follows"
	_, ok = NextBoundary(s, 0, 10)
	assert.False(t, ok)
}

func TestNextBoundary_IncludesClosingQuote(t *testing.T) {
	s := `He said "go now." Then left.`
	got, ok := NextBoundary(s, 3, 500)
	require.True(t, ok)
	assert.Equal(t, `He said "go now."`, s[:got])
}

func TestPrecededByBoundary(t *testing.T) {
	tests := []struct {
		name string
		s    string
		pos  int
		want bool
	}{
		{"start of document", "Hello", 0, true},
		{"after period and space", "Hello. World", 7, true},
		{"directly after period", "Hello. World", 6, true},
		{"mid word", "Hello. World", 3, false},
		{"after newline", "a\nb", 2, true},
		{"after closing quote", `"Stop." Go`, 8, true},
		{"after comma", "Well, then", 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrecededByBoundary(tt.s, tt.pos))
		})
	}
}

func TestNextLetterIsLower(t *testing.T) {
	assert.True(t, NextLetterIsLower("x and more", 1))
	assert.True(t, NextLetterIsLower(`x "quoted`, 1))
	assert.False(t, NextLetterIsLower("x More", 1))
	assert.False(t, NextLetterIsLower("x\nmore", 1))
	assert.False(t, NextLetterIsLower("x 42 more", 1))
	assert.False(t, NextLetterIsLower("x", 1))
}

func TestEndsSentenceAt(t *testing.T) {
	assert.True(t, EndsSentenceAt("Done.", 5))
	assert.True(t, EndsSentenceAt(`"Done!"`, 7))
	assert.False(t, EndsSentenceAt("Done", 4))
	assert.False(t, EndsSentenceAt("", 0))
}
