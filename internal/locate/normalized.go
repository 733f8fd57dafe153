// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"context"
	"strings"

	"github.com/petar-djukic/go-splice/internal/normalize"
	"github.com/petar-djukic/go-splice/pkg/types"
)

// exact attempts a byte-for-byte substring match.
func (l *Locator) exact(_ context.Context, doc, target string) (types.SearchResult, bool) {
	idx := strings.Index(doc, target)
	if idx < 0 {
		return types.SearchResult{}, false
	}
	return span(doc, idx, idx+len(target), l.opts.ExactConfidence, types.MatchExact), true
}

// caseInsensitive matches under Unicode simple case folding. The span is
// measured in the document because folding can change byte widths.
func (l *Locator) caseInsensitive(_ context.Context, doc, target string) (types.SearchResult, bool) {
	start, end := normalize.IndexFold(doc, target)
	if start < 0 {
		return types.SearchResult{}, false
	}
	return span(doc, start, end, l.opts.FoldConfidence, types.MatchCaseInsensitive), true
}

// normalizedWhitespace collapses whitespace runs in both texts, matches
// case-insensitively, and maps the hit back to the original offsets.
func (l *Locator) normalizedWhitespace(_ context.Context, doc, target string) (types.SearchResult, bool) {
	m := normalize.Identity(doc).CollapseSpace()
	start, end, ok := searchMapped(m, normalize.CollapseString(target))
	if !ok {
		return types.SearchResult{}, false
	}
	return span(doc, start, end, l.opts.WhitespaceConfidence, types.MatchNormalizedWhitespace), true
}

// markdown strips markdown syntax from the document and both markdown and
// chat decorations from the target, then matches as normalizedWhitespace.
func (l *Locator) markdown(_ context.Context, doc, target string) (types.SearchResult, bool) {
	m := normalize.Identity(doc).StripMarkdown().CollapseSpace()
	start, end, ok := searchMapped(m, normalize.ForMatching(target))
	if !ok {
		return types.SearchResult{}, false
	}
	return span(doc, start, end, l.opts.MarkdownConfidence, types.MatchAIChatPattern), true
}

// searchMapped finds needle in the normalized text of m, case-insensitively,
// and returns the matching range of the original text.
func searchMapped(m *normalize.PositionMap, needle string) (int, int, bool) {
	if needle == "" {
		return 0, 0, false
	}
	start, end := normalize.IndexFold(m.Text(), needle)
	if start < 0 {
		return 0, 0, false
	}
	return m.Span(start, end)
}

// findLoose locates needle case-insensitively in doc, falling back to a
// whitespace-collapsed search when the raw text has irregular spacing.
func findLoose(doc, needle string) (int, int, bool) {
	if start, end := normalize.IndexFold(doc, needle); start >= 0 {
		return start, end, true
	}
	return searchMapped(normalize.Identity(doc).CollapseSpace(), normalize.CollapseString(needle))
}
