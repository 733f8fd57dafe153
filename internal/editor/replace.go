// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package editor

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/petar-djukic/go-splice/internal/locate"
	"github.com/petar-djukic/go-splice/internal/normalize"
	"github.com/petar-djukic/go-splice/pkg/types"
)

// Acceptance thresholds for located spans.
const (
	// MinConfidence is the lowest match confidence an edit accepts.
	MinConfidence = 0.6

	// MinLengthRatio is the smallest matched length, as a fraction of the
	// searched text, a replacement accepts.
	MinLengthRatio = 0.5

	// boundaryPhraseMinLen is the searched-text length above which the
	// first and last two-word phrases must appear in the match.
	boundaryPhraseMinLen = 20

	// diagnosticTimeout bounds the closest-match scan run after a miss.
	diagnosticTimeout = time.Second
)

// Finder locates a fragment in a document. *locate.Locator implements it.
type Finder interface {
	Find(ctx context.Context, q types.SearchQuery) types.SearchResult
}

// ApplyReplacement locates original in document and substitutes changed for
// the matched span. When the match is missing or untrustworthy it returns a
// *types.ReplacementError and document is left as it was.
func ApplyReplacement(ctx context.Context, f Finder, document, original, changed string) (string, *types.ApplyResult, error) {
	if document == "" || strings.TrimSpace(original) == "" {
		return "", nil, &types.ReplacementError{
			Kind:    types.KindInputEmpty,
			Target:  original,
			Result:  types.NotFound(types.MatchNoMatch),
			Message: "document and original text must be non-empty",
		}
	}

	res := f.Find(ctx, types.SearchQuery{Document: document, Target: original})
	if err := validateMatch(ctx, document, original, res); err != nil {
		return "", nil, err
	}

	out := document[:res.StartOffset] + changed + document[res.End():]
	return out, &types.ApplyResult{
		Kind:       types.EditReplace,
		MatchType:  res.MatchType,
		Confidence: res.Confidence,
		Start:      res.StartOffset,
		Length:     res.Length,
	}, nil
}

// validateMatch applies the acceptance rules to a search result.
func validateMatch(ctx context.Context, document, original string, res types.SearchResult) *types.ReplacementError {
	fail := func(kind types.ErrorKind, format string, args ...any) *types.ReplacementError {
		return &types.ReplacementError{
			Kind:    kind,
			Target:  original,
			Result:  res,
			Message: fmt.Sprintf(format, args...),
		}
	}

	switch {
	case res.MatchType == types.MatchCancelled:
		return fail(types.KindCancelled, "search did not finish")
	case !res.Found():
		return noMatch(ctx, document, original, res)
	case res.Confidence < MinConfidence:
		return fail(types.KindLowConfidence, "%s match with confidence %.2f, need %.2f",
			res.MatchType, res.Confidence, MinConfidence)
	case float64(res.Length) < MinLengthRatio*float64(len(original)):
		return fail(types.KindLengthMismatch, "matched %d bytes of a %d-byte original",
			res.Length, len(original))
	}

	if len(original) > boundaryPhraseMinLen {
		matched := canonical(res.MatchedText)
		for _, phrase := range boundaryPhrases(original) {
			if !strings.Contains(matched, phrase) {
				return fail(types.KindKeyPhraseMissing, "matched text lacks %q", phrase)
			}
		}
	}
	return nil
}

// noMatch builds a KindNoMatch error carrying the closest line window.
func noMatch(ctx context.Context, document, original string, res types.SearchResult) *types.ReplacementError {
	dctx, cancel := context.WithTimeout(ctx, diagnosticTimeout)
	defer cancel()
	closest := locate.ClosestLines(dctx, document, original)
	return &types.ReplacementError{
		Kind:             types.KindNoMatch,
		Target:           original,
		Result:           res,
		ClosestMatch:     closest.Text,
		Similarity:       closest.Similarity,
		ClosestLineStart: closest.LineStart,
		ClosestLineEnd:   closest.LineEnd,
	}
}

// boundaryPhrases returns the first and last two-word phrases of s in
// canonical form.
func boundaryPhrases(s string) []string {
	words := strings.Fields(canonical(s))
	if len(words) < 2 {
		return nil
	}
	n := len(words)
	first := words[0] + " " + words[1]
	last := words[n-2] + " " + words[n-1]
	if first == last {
		return []string{first}
	}
	return []string{first, last}
}

// canonical lowercases s, strips markdown and chat decorations, collapses
// whitespace, and trims punctuation from the ends of each word.
func canonical(s string) string {
	words := strings.Fields(strings.ToLower(normalize.ForMatching(s)))
	out := words[:0]
	for _, w := range words {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}
