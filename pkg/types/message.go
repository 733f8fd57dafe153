// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across go-splice packages.
package types

// TokenUsage tracks token consumption for LLM calls.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns the sum of input and output tokens.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Add returns the element-wise sum of two usages.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
	}
}

// Document is a named text passed to the writing assistant.
type Document struct {
	Path    string // Path relative to the working directory
	Content string // Full document text
}

// StreamResponse holds the result of a streaming LLM call.
type StreamResponse struct {
	FullText   string     // Accumulated response text
	Usage      TokenUsage // Token counts from API metadata
	Retries    int        // Number of retries performed (due to rate limits)
	StopReason string     // Why the model stopped, e.g. "end_turn" or "max_tokens"
	Err        error      // Set when the call failed
}
