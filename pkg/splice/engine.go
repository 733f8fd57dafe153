// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package splice

import (
	"context"

	"github.com/petar-djukic/go-splice/internal/editor"
	"github.com/petar-djukic/go-splice/internal/locate"
	"github.com/petar-djukic/go-splice/pkg/types"
)

// Engine locates fragments and applies edits to in-memory documents. It
// holds no per-call state and is safe for concurrent use.
type Engine struct {
	loc    *locate.Locator
	radius int
}

// Find locates target in document. A radius <= 0 uses the configured
// context radius. Absence is reported as a result with MatchType
// types.MatchNoMatch; a cancelled ctx yields types.MatchCancelled.
func (e *Engine) Find(ctx context.Context, document, target string, contextRadius int) types.SearchResult {
	if contextRadius <= 0 {
		contextRadius = e.radius
	}
	return e.loc.Find(ctx, types.SearchQuery{
		Document:      document,
		Target:        target,
		ContextRadius: contextRadius,
	})
}

// ApplyReplacement replaces the span matching originalText with changedText.
// On refusal it returns a *types.ReplacementError and no document.
func (e *Engine) ApplyReplacement(ctx context.Context, document, originalText, changedText string) (string, *types.ApplyResult, error) {
	return editor.ApplyReplacement(ctx, e.loc, document, originalText, changedText)
}

// ValidateAnchor returns the byte offset just past anchorText, where new
// content can be inserted. On refusal it returns -1 and a
// *types.AnchorError, which may carry a suggested anchor.
func (e *Engine) ValidateAnchor(ctx context.Context, document, anchorText string) (int, error) {
	point, _, err := editor.ValidateAnchor(ctx, e.loc, document, anchorText)
	if err != nil {
		return -1, err
	}
	return point, nil
}

// InsertAfter inserts newText after a validated anchorText.
func (e *Engine) InsertAfter(ctx context.Context, document, anchorText, newText string) (string, *types.ApplyResult, error) {
	return editor.InsertAfter(ctx, e.loc, document, anchorText, newText)
}

// Applier returns an applier that performs edits on document files with
// this engine, writing each file atomically. Failed edits leave the file
// untouched.
func (e *Engine) Applier() types.Applier {
	return &editor.TextEditor{Finder: e.loc}
}
