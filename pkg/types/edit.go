// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "context"

// EditKind distinguishes the operations an Edit can perform.
type EditKind int

const (
	EditReplace EditKind = iota // Replace OldContent with NewContent
	EditInsert                  // Insert NewContent after the Anchor
	EditCreate                  // Create a new document with NewContent
)

func (k EditKind) String() string {
	switch k {
	case EditReplace:
		return "replace"
	case EditInsert:
		return "insert"
	case EditCreate:
		return "create"
	default:
		return "unknown"
	}
}

// Edit represents a single document edit produced by a writing assistant.
type Edit struct {
	Kind       EditKind
	FilePath   string // Target document path
	OldContent string // Text to locate (replace); empty for create/append
	Anchor     string // Text the insertion must follow (insert)
	NewContent string // Replacement or inserted text
}

// MatchType identifies which matching strategy located a span.
type MatchType int

const (
	MatchNoMatch MatchType = iota
	MatchExact
	MatchCaseInsensitive
	MatchNormalizedWhitespace
	MatchAIChatPattern
	MatchPartialSentence
	MatchFuzzy
	MatchFlexibleWordOrder
	MatchCancelled
	MatchError
)

func (m MatchType) String() string {
	switch m {
	case MatchNoMatch:
		return "no_match"
	case MatchExact:
		return "exact"
	case MatchCaseInsensitive:
		return "case_insensitive"
	case MatchNormalizedWhitespace:
		return "normalized_whitespace"
	case MatchAIChatPattern:
		return "ai_chat_pattern"
	case MatchPartialSentence:
		return "partial_sentence"
	case MatchFuzzy:
		return "fuzzy"
	case MatchFlexibleWordOrder:
		return "flexible_word_order"
	case MatchCancelled:
		return "cancelled"
	case MatchError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the match type by name in JSON and YAML output.
func (m MatchType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// SearchQuery is the immutable input of a single search. Cancellation is
// carried by the context passed alongside it.
type SearchQuery struct {
	Document      string // Text to search in
	Target        string // Fragment to locate
	ContextRadius int    // Bytes of surrounding text to report (default 100)
}

// SearchResult describes the span a search located. When StartOffset is
// non-negative, MatchedText equals Document[StartOffset:StartOffset+Length].
type SearchResult struct {
	StartOffset  int       `json:"start_offset"`
	Length       int       `json:"length"`
	Confidence   float64   `json:"confidence"`
	MatchedText  string    `json:"matched_text"`
	Context      string    `json:"context"`
	IsExactMatch bool      `json:"is_exact_match"`
	MatchType    MatchType `json:"match_type"`
}

// NotFound returns an empty result tagged with the given match type.
func NotFound(t MatchType) SearchResult {
	return SearchResult{StartOffset: -1, MatchType: t}
}

// Found reports whether the result points at a span of the document.
func (r SearchResult) Found() bool {
	return r.StartOffset >= 0
}

// End returns the byte offset just past the matched span.
func (r SearchResult) End() int {
	return r.StartOffset + r.Length
}

// ApplyResult describes the outcome of applying a single edit.
type ApplyResult struct {
	FilePath   string    `json:"file_path,omitempty"`
	Kind       EditKind  `json:"-"`
	MatchType  MatchType `json:"match_type"`
	Confidence float64   `json:"confidence"`
	Start      int       `json:"start"`  // Byte offset of the edited span in the original document
	Length     int       `json:"length"` // Length of the replaced span (0 for insertions)
}

// Applier applies an Edit to a document. The replace and insert paths of the
// text editor both implement this interface.
type Applier interface {
	Apply(ctx context.Context, edit Edit) (*ApplyResult, error)
}
