// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/petar-djukic/go-splice/internal/locate"
	"github.com/petar-djukic/go-splice/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFinder returns a fixed result regardless of the query.
type stubFinder struct {
	res types.SearchResult
}

func (s stubFinder) Find(context.Context, types.SearchQuery) types.SearchResult {
	return s.res
}

func stubSpan(doc string, start, end int, confidence float64, t types.MatchType) stubFinder {
	return stubFinder{types.SearchResult{
		StartOffset: start,
		Length:      end - start,
		Confidence:  confidence,
		MatchedText: doc[start:end],
		MatchType:   t,
	}}
}

func newFinder() Finder {
	return locate.New(locate.Options{})
}

func TestApplyReplacement(t *testing.T) {
	doc := "I saw teh dog run."
	out, res, err := ApplyReplacement(context.Background(), newFinder(), doc, "teh dog", "the dog")

	require.NoError(t, err)
	assert.Equal(t, "I saw the dog run.", out)
	assert.Equal(t, types.MatchExact, res.MatchType)
	assert.Equal(t, 6, res.Start)
	assert.Equal(t, 7, res.Length)
	assert.Equal(t, "I saw teh dog run.", doc)
}

func TestApplyReplacement_WhitespaceTolerant(t *testing.T) {
	doc := "Intro.\nThe committee met on\nTuesday to review the budget.\nOutro."
	out, res, err := ApplyReplacement(context.Background(), newFinder(), doc,
		"The committee met on Tuesday to review the budget.",
		"The board met on Wednesday.")

	require.NoError(t, err)
	assert.Equal(t, "Intro.\nThe board met on Wednesday.\nOutro.", out)
	assert.Equal(t, types.MatchNormalizedWhitespace, res.MatchType)
}

func TestApplyReplacement_KeepsMarkdownPairsBalanced(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		original string
		changed  string
		want     string
	}{
		{
			name:     "match ends inside bold",
			doc:      "He was **very** tired. She was not.",
			original: "He was very",
			changed:  "He looked",
			want:     "He looked tired. She was not.",
		},
		{
			name:     "match starts inside bold",
			doc:      "Intro.\n\n**The results** were clear today.",
			original: "The results were clear today.",
			changed:  "Nothing changed.",
			want:     "Intro.\n\nNothing changed.",
		},
		{
			name:     "match ends inside italic",
			doc:      "It was *quite* late.",
			original: "It was quite",
			changed:  "It was",
			want:     "It was late.",
		},
		{
			name:     "match ends inside link text",
			doc:      "Read [the guide](https://example.com) first.",
			original: "Read the guide",
			changed:  "Read the manual",
			want:     "Read the manual first.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res, err := ApplyReplacement(context.Background(), newFinder(), tt.doc, tt.original, tt.changed)
			require.NoError(t, err)
			assert.Equal(t, types.MatchAIChatPattern, res.MatchType)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestApplyReplacement_Refusals(t *testing.T) {
	doc := "A quick brown fox leaps over the lazy dog."
	original := "The quick brown fox jumps over the lazy dog"

	tests := []struct {
		name     string
		finder   Finder
		doc      string
		original string
		want     error
		kind     types.ErrorKind
	}{
		{
			name:     "empty document",
			finder:   newFinder(),
			doc:      "",
			original: "anything",
			want:     types.ErrInputEmpty,
			kind:     types.KindInputEmpty,
		},
		{
			name:     "nothing similar",
			finder:   newFinder(),
			doc:      "The sky is blue today.\nNothing else here.",
			original: "quantum chromodynamics lattice gauge",
			want:     types.ErrNoMatch,
			kind:     types.KindNoMatch,
		},
		{
			name:     "cancelled search",
			finder:   stubFinder{types.NotFound(types.MatchCancelled)},
			doc:      doc,
			original: original,
			want:     types.ErrCancelled,
			kind:     types.KindCancelled,
		},
		{
			name:     "low confidence",
			finder:   stubSpan(doc, 0, len(doc), 0.5, types.MatchFuzzy),
			doc:      doc,
			original: original,
			want:     types.ErrLowConfidence,
			kind:     types.KindLowConfidence,
		},
		{
			name:     "span shorter than half the original",
			finder:   stubSpan(doc, 2, 13, 0.95, types.MatchFuzzy),
			doc:      doc,
			original: original,
			want:     types.ErrLengthMismatch,
			kind:     types.KindLengthMismatch,
		},
		{
			name:     "boundary phrase missing",
			finder:   stubSpan(doc, 0, len(doc), 0.7, types.MatchFuzzy),
			doc:      doc,
			original: original,
			want:     types.ErrKeyPhraseMissing,
			kind:     types.KindKeyPhraseMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.doc
			out, res, err := ApplyReplacement(context.Background(), tt.finder, tt.doc, tt.original, "changed")

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Empty(t, out)
			assert.Nil(t, res)
			assert.Equal(t, before, tt.doc)

			var re *types.ReplacementError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.kind, re.Kind)
			assert.Equal(t, tt.original, re.Target)
		})
	}
}

func TestApplyReplacement_NoMatchCarriesClosestLines(t *testing.T) {
	doc := "alpha beta\ngamma delta epsilon\nzeta"
	_, _, err := ApplyReplacement(context.Background(), stubFinder{types.NotFound(types.MatchNoMatch)},
		doc, "gamma delta epsilonn", "x")

	var re *types.ReplacementError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "gamma delta epsilon", re.ClosestMatch)
	assert.Equal(t, 2, re.ClosestLineStart)
	assert.Equal(t, 2, re.ClosestLineEnd)
	assert.Contains(t, re.Error(), "lines 2-2")
}

func TestBoundaryPhrases(t *testing.T) {
	assert.Equal(t, []string{"the quick", "lazy dog"}, boundaryPhrases("The **quick** brown fox jumps over the lazy dog."))
	assert.Equal(t, []string{"one two"}, boundaryPhrases("One two"))
	assert.Nil(t, boundaryPhrases("single"))
}

func TestValidateAnchor(t *testing.T) {
	doc := "Yesterday the cat sat on the mat. Then it slept."

	point, res, err := ValidateAnchor(context.Background(), newFinder(), doc, "the cat sat on the mat.")
	require.NoError(t, err)
	assert.Equal(t, len("Yesterday the cat sat on the mat."), point)
	assert.Equal(t, types.MatchExact, res.MatchType)
}

func TestValidateAnchor_Refusals(t *testing.T) {
	tests := []struct {
		name           string
		doc            string
		anchor         string
		kind           types.ErrorKind
		wantSuggestion string
	}{
		{
			name:           "anchor ends mid-word",
			doc:            "Yesterday the cat sat on the mat. Then it slept.",
			anchor:         "the cat sat on th",
			kind:           types.KindAnchorIncomplete,
			wantSuggestion: "Yesterday the cat sat on the mat.",
		},
		{
			name:           "short anchor splits a sentence",
			doc:            "Yesterday the cat sat on the mat. Then it slept.",
			anchor:         "Yesterday the",
			kind:           types.KindAnchorMidSentence,
			wantSuggestion: "Yesterday the cat sat on the mat.",
		},
		{
			name:           "insertion inside open quotation",
			doc:            `He shouted "Run now. We must hurry!" and left.`,
			anchor:         `He shouted "Run now.`,
			kind:           types.KindAnchorMidSentence,
			wantSuggestion: `He shouted "Run now. We must hurry!"`,
		},
		{
			name:   "anchor absent",
			doc:    "Yesterday the cat sat on the mat. Then it slept.",
			anchor: "quantum chromodynamics",
			kind:   types.KindNoMatch,
		},
		{
			name:   "empty anchor",
			doc:    "Some text.",
			anchor: "  ",
			kind:   types.KindInputEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, _, err := ValidateAnchor(context.Background(), newFinder(), tt.doc, tt.anchor)
			require.Error(t, err)
			assert.Equal(t, -1, point)

			var ae *types.AnchorError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.kind, ae.Kind)
			assert.True(t, errors.Is(err, tt.kind.Sentinel()))
			assert.Equal(t, tt.wantSuggestion, ae.Suggestion)
		})
	}
}

func TestValidateAnchor_DialogueTagAtLineEnd(t *testing.T) {
	doc := "\"Come in,\" she said\n\nHe entered."
	point, _, err := ValidateAnchor(context.Background(), newFinder(), doc, `"Come in," she said`)
	require.NoError(t, err)
	assert.Equal(t, len(`"Come in," she said`), point)
}

func TestEndsAtBoundary(t *testing.T) {
	tests := []struct {
		anchor string
		want   bool
	}{
		{"short", true},
		{"This sentence is complete.", true},
		{"Is this sentence complete?", true},
		{"She said “this is quoted”", true},
		{"A paragraph without punctuation\n\n", true},
		{`"Come in," she whispered`, true},
		{"the cat sat on th", false},
		{"this sentence trails off, and", false},
	}
	for _, tt := range tests {
		t.Run(tt.anchor, func(t *testing.T) {
			assert.Equal(t, tt.want, endsAtBoundary(tt.anchor))
		})
	}
}

func TestInsertAfter(t *testing.T) {
	doc := "First sentence. Second sentence."
	out, res, err := InsertAfter(context.Background(), newFinder(), doc, "First sentence.", " Inserted sentence.")

	require.NoError(t, err)
	assert.Equal(t, "First sentence. Inserted sentence. Second sentence.", out)
	assert.Equal(t, types.EditInsert, res.Kind)
	assert.Equal(t, 15, res.Start)
	assert.Equal(t, 0, res.Length)
}

func TestTextEditor_Apply(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		edit        types.Edit
		wantContent string
		wantMatch   types.MatchType
		wantErr     error
	}{
		{
			name:        "exact replacement",
			fileContent: "I saw teh dog run.\n",
			edit:        types.Edit{OldContent: "teh dog", NewContent: "the dog"},
			wantContent: "I saw the dog run.\n",
			wantMatch:   types.MatchExact,
		},
		{
			name:        "replacement across reflowed lines",
			fileContent: "The report was\nlong and dull.\n",
			edit:        types.Edit{OldContent: "was long and dull.", NewContent: "was short."},
			wantContent: "The report was short.\n",
			wantMatch:   types.MatchNormalizedWhitespace,
		},
		{
			name:        "insertion after a sentence",
			fileContent: "First sentence. Second sentence.\n",
			edit:        types.Edit{Kind: types.EditInsert, Anchor: "First sentence.", NewContent: " Middle."},
			wantContent: "First sentence. Middle. Second sentence.\n",
			wantMatch:   types.MatchExact,
		},
		{
			name:        "empty search appends",
			fileContent: "existing content\n",
			edit:        types.Edit{NewContent: "appended content\n"},
			wantContent: "existing content\nappended content\n",
			wantMatch:   types.MatchExact,
		},
		{
			name:        "refused replacement leaves file alone",
			fileContent: "The sky is blue today.\n",
			edit:        types.Edit{OldContent: "quantum chromodynamics lattice gauge", NewContent: "x"},
			wantContent: "The sky is blue today.\n",
			wantErr:     types.ErrNoMatch,
		},
		{
			name:        "refused insertion leaves file alone",
			fileContent: "Yesterday the cat sat on the mat. Then it slept.\n",
			edit:        types.Edit{Kind: types.EditInsert, Anchor: "the cat sat on th", NewContent: "x"},
			wantContent: "Yesterday the cat sat on the mat. Then it slept.\n",
			wantErr:     types.ErrAnchorIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "chapter.md")
			require.NoError(t, os.WriteFile(path, []byte(tt.fileContent), 0o644))

			tt.edit.FilePath = path
			editor := &TextEditor{Finder: newFinder()}
			result, err := editor.Apply(context.Background(), tt.edit)

			got, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, tt.wantContent, string(got))

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, result.MatchType)
			assert.Equal(t, path, result.FilePath)
			assert.Equal(t, tt.edit.Kind, result.Kind)
		})
	}
}

func TestTextEditor_EmptyEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	_, err := (&TextEditor{Finder: newFinder()}).Apply(context.Background(), types.Edit{FilePath: path})
	assert.Error(t, err)

	_, err = (&TextEditor{Finder: newFinder()}).Apply(context.Background(), types.Edit{NewContent: "x"})
	assert.Error(t, err)
}

func TestTextEditor_CreateFile(t *testing.T) {
	t.Run("creates new file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "subdir", "new.md")

		editor := &TextEditor{Finder: newFinder()}
		result, err := editor.Apply(context.Background(), types.Edit{
			Kind:       types.EditCreate,
			FilePath:   path,
			NewContent: "# Title\n",
		})

		require.NoError(t, err)
		assert.Equal(t, path, result.FilePath)

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "# Title\n", string(got))
	})

	t.Run("fails if file exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "existing.md")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

		editor := &TextEditor{Finder: newFinder()}
		_, err := editor.Apply(context.Background(), types.Edit{
			Kind:       types.EditCreate,
			FilePath:   path,
			NewContent: "new",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}

func TestAtomicWrite_PreservesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	err := atomicWrite(path, []byte("new"))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}
