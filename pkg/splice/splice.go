// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package splice is the public interface of go-splice. An Engine locates
// fragments of text in a document, even when the fragment was copied with
// altered whitespace, markdown, casing or wording, and applies guarded
// replacements and insertions at the located spans. An Assistant drives an
// Engine from a language model that proposes edits to documents on disk.
package splice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/petar-djukic/go-splice/pkg/types"
)

// Error types for the splice API. Refused edits are reported with
// *types.ReplacementError and *types.AnchorError instead; match those with
// errors.Is against the sentinels in package types.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLLMFailure    = errors.New("LLM call failed")
	ErrParseFailure  = errors.New("failed to parse LLM response into edits")
)

// Config tunes an Engine. Zero fields take the defaults.
type Config struct {
	// FuzzyThreshold is the minimum similarity, in [0, 1], a fuzzy
	// candidate needs (default 0.6).
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold"`

	// FuzzyTimeout bounds the fuzzy strategy (default 2s).
	FuzzyTimeout time.Duration `mapstructure:"fuzzy_timeout"`

	// Documents or targets longer than these, in bytes, skip fuzzy search
	// (defaults 50000 and 1000).
	MaxFuzzyDocument int `mapstructure:"max_fuzzy_document"`
	MaxFuzzyTarget   int `mapstructure:"max_fuzzy_target"`

	SemanticThreshold float64 `mapstructure:"semantic_threshold"` // Word-set overlap for sentence matches (default 0.4)
	FlexibleThreshold float64 `mapstructure:"flexible_threshold"` // Word-set overlap for reordered matches (default 0.5)

	// ContextRadius is the number of bytes of surrounding text Find reports
	// when the caller passes no radius (default 100).
	ContextRadius int `mapstructure:"context_radius"`

	Logger *slog.Logger `mapstructure:"-"` // Debug traces of the cascade (nil discards)
}

// AssistantConfig configures an Assistant.
type AssistantConfig struct {
	WorkDir     string       // Directory the documents live in (required)
	Model       string       // Bedrock model ID (required)
	Region      string       // AWS region (required)
	Profile     string       // AWS credential profile (empty uses the default chain)
	MaxRetries  int          // Maximum follow-up rounds for refused edits (default 3)
	MaxTokens   int          // Maximum tokens for a model response (default 4096)
	Temperature float32      // Sampling temperature (0 leaves the model default)
	CheckCmd    string       // Document checker command, e.g. a prose linter (empty to skip)
	StyleGuide  string       // Style guide text included in the system prompt
	NoGit       bool         // Disable commits of edited documents
	Logger      *slog.Logger // Progress and retry logging (nil discards)
}

// Result holds the outcome of an Assistant.Revise invocation.
type Result struct {
	ModifiedFiles []string         `json:"modified_files"`
	Errors        []string         `json:"errors,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	TokensUsed    types.TokenUsage `json:"tokens_used"`
	Retries       int              `json:"retries"`
	Success       bool             `json:"success"`
	Commit        string           `json:"commit,omitempty"`
}

// Assistant revises documents according to a natural language instruction.
type Assistant interface {
	// Revise shows the documents at paths to the model with instruction,
	// applies the edits it proposes, asks again about refused edits, and
	// commits the edited documents when everything applied.
	Revise(ctx context.Context, instruction string, paths []string) (*Result, error)
}
