// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an edit was refused.
type ErrorKind int

const (
	KindNoMatch ErrorKind = iota
	KindLowConfidence
	KindLengthMismatch
	KindKeyPhraseMissing
	KindCancelled
	KindAnchorIncomplete
	KindAnchorMidSentence
	KindInputEmpty
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoMatch:
		return "no_match"
	case KindLowConfidence:
		return "low_confidence"
	case KindLengthMismatch:
		return "length_mismatch"
	case KindKeyPhraseMissing:
		return "key_phrase_missing"
	case KindCancelled:
		return "cancelled"
	case KindAnchorIncomplete:
		return "anchor_incomplete"
	case KindAnchorMidSentence:
		return "anchor_mid_sentence"
	case KindInputEmpty:
		return "input_empty"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per ErrorKind, for use with errors.Is.
var (
	ErrNoMatch           = errors.New("no match found")
	ErrLowConfidence     = errors.New("match confidence too low")
	ErrLengthMismatch    = errors.New("matched span too short")
	ErrKeyPhraseMissing  = errors.New("matched span lacks boundary phrases")
	ErrCancelled         = errors.New("search cancelled")
	ErrAnchorIncomplete  = errors.New("anchor does not end at a boundary")
	ErrAnchorMidSentence = errors.New("insertion point is mid-sentence")
	ErrInputEmpty        = errors.New("empty input")
)

var kindSentinels = map[ErrorKind]error{
	KindNoMatch:           ErrNoMatch,
	KindLowConfidence:     ErrLowConfidence,
	KindLengthMismatch:    ErrLengthMismatch,
	KindKeyPhraseMissing:  ErrKeyPhraseMissing,
	KindCancelled:         ErrCancelled,
	KindAnchorIncomplete:  ErrAnchorIncomplete,
	KindAnchorMidSentence: ErrAnchorMidSentence,
	KindInputEmpty:        ErrInputEmpty,
}

// Sentinel returns the sentinel error for the kind.
func (k ErrorKind) Sentinel() error {
	if err, ok := kindSentinels[k]; ok {
		return err
	}
	return ErrNoMatch
}

// ReplacementError describes why a replacement was refused. The document is
// never modified when one is returned.
type ReplacementError struct {
	Kind     ErrorKind
	FilePath string       // Document path, when known
	Target   string       // The original text that was searched for
	Result   SearchResult // What the search returned
	Message  string       // Human-readable detail

	// Closest* describe the nearest line window, filled for KindNoMatch.
	ClosestMatch     string
	Similarity       float64
	ClosestLineStart int // 1-based
	ClosestLineEnd   int // 1-based
}

func (e *ReplacementError) Error() string {
	where := ""
	if e.FilePath != "" {
		where = " in " + e.FilePath
	}
	if e.Kind == KindNoMatch && e.ClosestMatch != "" {
		return fmt.Sprintf("no match%s (closest match at lines %d-%d, similarity %.2f)",
			where, e.ClosestLineStart, e.ClosestLineEnd, e.Similarity)
	}
	if e.Message == "" {
		return fmt.Sprintf("%v%s", e.Kind.Sentinel(), where)
	}
	return fmt.Sprintf("%v%s: %s", e.Kind.Sentinel(), where, e.Message)
}

// Is makes errors.Is match the sentinel for the error's kind.
func (e *ReplacementError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

// AnchorError describes why an insertion anchor was refused. Suggestion, when
// non-empty, is an extended anchor that ends at a safe boundary; it is never
// applied automatically.
type AnchorError struct {
	Kind       ErrorKind
	FilePath   string
	Anchor     string
	Reason     string
	Suggestion string
}

func (e *AnchorError) Error() string {
	msg := fmt.Sprintf("%v", e.Kind.Sentinel())
	if e.FilePath != "" {
		msg += " in " + e.FilePath
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (suggested anchor: %q)", e.Suggestion)
	}
	return msg
}

// Is makes errors.Is match the sentinel for the error's kind.
func (e *AnchorError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

// HasSuggestion reports whether a corrected anchor was proposed.
func (e *AnchorError) HasSuggestion() bool {
	return e.Suggestion != ""
}
