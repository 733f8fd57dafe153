// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package editor

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/petar-djukic/go-splice/internal/boundary"
	"github.com/petar-djukic/go-splice/pkg/types"
)

const (
	// shortAnchorLen is the rune count below which an anchor's own ending
	// is not checked.
	shortAnchorLen = 15

	// suggestionReach is how far past the insertion point a suggested
	// anchor may extend.
	suggestionReach = 500

	// suggestionContext is the most prior context a suggestion carries.
	suggestionContext = 50

	// suggestionMinLen is the shortest suggestion offered.
	suggestionMinLen = 10
)

// dialogueTag matches anchors that end with a speech attribution such as
// `"Come in," she said`.
var dialogueTag = regexp.MustCompile(`(?i)[,.!?…]["'”’]\s+\S+(\s+\S+)?\s+(said|asked|replied|answered|whispered|shouted|called|cried|muttered|added|continued)\.?$`)

// ValidateAnchor locates anchor in document and returns the insertion point
// just past it. It refuses anchors that end mid-thought and insertion points
// that fall inside a sentence or an open quotation. The returned error is a
// *types.AnchorError, whose Suggestion proposes an anchor ending at the next
// safe boundary when one exists.
func ValidateAnchor(ctx context.Context, f Finder, document, anchor string) (int, *types.SearchResult, error) {
	if document == "" || strings.TrimSpace(anchor) == "" {
		return -1, nil, &types.AnchorError{
			Kind:   types.KindInputEmpty,
			Anchor: anchor,
			Reason: "document and anchor must be non-empty",
		}
	}

	res := f.Find(ctx, types.SearchQuery{Document: document, Target: anchor})
	switch {
	case res.MatchType == types.MatchCancelled:
		return -1, nil, &types.AnchorError{Kind: types.KindCancelled, Anchor: anchor, Reason: "search did not finish"}
	case !res.Found():
		return -1, nil, &types.AnchorError{Kind: types.KindNoMatch, Anchor: anchor, Reason: "anchor not found in document"}
	case res.Confidence < MinConfidence:
		return -1, nil, &types.AnchorError{
			Kind:       types.KindLowConfidence,
			Anchor:     anchor,
			Reason:     "anchor matched with low confidence: " + res.MatchType.String(),
			Suggestion: suggestAnchor(document, res.End()),
		}
	}

	point := res.End()
	if !endsAtBoundary(anchor) {
		return -1, &res, &types.AnchorError{
			Kind:       types.KindAnchorIncomplete,
			Anchor:     anchor,
			Reason:     "anchor does not end at a sentence, quotation or paragraph boundary",
			Suggestion: suggestAnchor(document, point),
		}
	}
	if reason := unsafePoint(document, point); reason != "" {
		return -1, &res, &types.AnchorError{
			Kind:       types.KindAnchorMidSentence,
			Anchor:     anchor,
			Reason:     reason,
			Suggestion: suggestAnchor(document, point),
		}
	}
	return point, &res, nil
}

// InsertAfter validates anchor and inserts text at the insertion point.
// document is not modified when an error is returned.
func InsertAfter(ctx context.Context, f Finder, document, anchor, text string) (string, *types.ApplyResult, error) {
	point, res, err := ValidateAnchor(ctx, f, document, anchor)
	if err != nil {
		return "", nil, err
	}
	out := document[:point] + text + document[point:]
	return out, &types.ApplyResult{
		Kind:       types.EditInsert,
		MatchType:  res.MatchType,
		Confidence: res.Confidence,
		Start:      point,
	}, nil
}

// endsAtBoundary reports whether the anchor text ends where new content can
// follow: a paragraph break, terminal punctuation, a closing quote, or a
// dialogue tag. Short anchors get the benefit of the doubt.
func endsAtBoundary(anchor string) bool {
	if strings.HasSuffix(anchor, "\n\n") {
		return true
	}
	t := strings.TrimRightFunc(anchor, unicode.IsSpace)
	if utf8.RuneCountInString(t) < shortAnchorLen {
		return true
	}
	if boundary.EndsSentenceAt(t, len(t)) {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(t)
	if last == '”' || last == '"' || last == '’' {
		return true
	}
	return dialogueTag.MatchString(t)
}

// unsafePoint returns why inserting at point would split a sentence or a
// quotation, or "" when the point is safe.
func unsafePoint(document string, point int) string {
	before := document[:point]
	if strings.Count(before, `"`)%2 != 0 || strings.Count(before, "“") != strings.Count(before, "”") {
		return "insertion point is inside an open quotation"
	}
	if point >= len(document) || atLineEnd(document, point) {
		return ""
	}
	if !boundary.PrecededByBoundary(document, point) {
		return "insertion point falls mid-sentence"
	}
	if boundary.NextLetterIsLower(document, point) {
		return "text after the insertion point continues the sentence"
	}
	return ""
}

// atLineEnd reports whether only blanks separate point from the next
// newline.
func atLineEnd(s string, point int) bool {
	for i := point; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		}
		return false
	}
	return true
}

// suggestAnchor proposes an anchor that runs from up to suggestionContext
// bytes before point to the next sentence or paragraph boundary. It returns
// "" when no boundary lies within reach.
func suggestAnchor(document string, point int) string {
	end, ok := boundary.NextBoundary(document, point, suggestionReach)
	if !ok || end <= 0 {
		return ""
	}

	start := wordStart(document, point-suggestionContext, point)
	if end-start < suggestionMinLen {
		start = boundary.RuneFloor(document, end-suggestionMinLen)
	}
	return strings.TrimSpace(document[start:end])
}

// wordStart clamps i into [0, limit] and advances it to the start of a word
// if it lands inside one.
func wordStart(s string, i, limit int) int {
	if i <= 0 {
		return 0
	}
	i = boundary.RuneCeil(s, i)
	prev, _ := utf8.DecodeLastRuneInString(s[:i])
	if unicode.IsSpace(prev) {
		return i
	}
	for i < limit {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if unicode.IsSpace(r) {
			break
		}
	}
	return min(i, limit)
}
