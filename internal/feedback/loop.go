// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package feedback

import (
	"context"
	"fmt"
)

const defaultMaxRetries = 3

// RetryFunc is called on each retry iteration with the formatted prompt. It
// should send the prompt to the model, parse the response, apply the edits,
// and return the documents it modified along with the edits that failed.
type RetryFunc func(ctx context.Context, prompt string) (modifiedFiles []string, failures []error, err error)

// LoopConfig configures the retry loop.
type LoopConfig struct {
	CheckConfig  CheckConfig  // Document checker settings
	FormatConfig FormatConfig // Prompt formatting settings
	MaxRetries   int          // Maximum retry iterations (default 3)
}

// LoopResult holds the outcome of the retry loop.
type LoopResult struct {
	Success       bool      // No failed edits and the checker passed
	Retries       int       // Number of retry iterations performed
	Final         *Problems // Problems left after the last iteration
	ModifiedFiles []string  // All documents modified across all iterations
}

// Run executes the retry loop. It starts from the first round's modified
// documents and failures, runs the checker, and while problems remain
// formats them, calls retryFn, and checks again, up to MaxRetries times.
func Run(ctx context.Context, cfg LoopConfig, initialFiles []string, initialFailures []error, retryFn RetryFunc) (*LoopResult, error) {
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	result := &LoopResult{
		ModifiedFiles: initialFiles,
	}

	problems := &Problems{
		Failures: initialFailures,
		Check:    Check(ctx, cfg.CheckConfig, initialFiles),
	}
	result.Final = problems
	if problems.None() {
		result.Success = true
		return result, nil
	}

	for i := 0; i < maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("context canceled after %d retries: %w", result.Retries, err)
		}

		result.Retries++

		prompt := FormatFailures(problems, result.ModifiedFiles, cfg.FormatConfig)

		modifiedFiles, failures, err := retryFn(ctx, prompt)
		if err != nil {
			return result, fmt.Errorf("retry %d failed: %w", result.Retries, err)
		}

		result.ModifiedFiles = mergeFiles(result.ModifiedFiles, modifiedFiles)

		problems = &Problems{
			Failures: failures,
			Check:    Check(ctx, cfg.CheckConfig, result.ModifiedFiles),
		}
		result.Final = problems

		if problems.None() {
			result.Success = true
			return result, nil
		}
	}

	return result, fmt.Errorf("max retries (%d) exhausted with %d failed edits remaining",
		maxRetries, len(problems.Failures))
}

// mergeFiles combines two file lists, deduplicating entries.
func mergeFiles(existing, additional []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, f := range existing {
		seen[f] = true
	}
	merged := make([]string, len(existing))
	copy(merged, existing)
	for _, f := range additional {
		if !seen[f] {
			merged = append(merged, f)
			seen[f] = true
		}
	}
	return merged
}
