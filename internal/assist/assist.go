// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package assist runs a writing instruction end to end: it shows the
// documents to a model, parses the edit blocks it answers with, applies
// them through the locator, asks again about refused edits, and commits
// the result.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/petar-djukic/go-splice/internal/editformat"
	"github.com/petar-djukic/go-splice/internal/editor"
	"github.com/petar-djukic/go-splice/internal/feedback"
	gitpkg "github.com/petar-djukic/go-splice/internal/git"
	"github.com/petar-djukic/go-splice/internal/llm"
	"github.com/petar-djukic/go-splice/internal/locate"
	"github.com/petar-djukic/go-splice/pkg/types"
)

// maxDocumentSize caps the documents sent to the model.
const maxDocumentSize = 256 * 1024

// ErrNoDocuments is returned when Run is given nothing to edit.
var ErrNoDocuments = errors.New("no documents given")

// Prompter abstracts model interactions so the runner is testable.
type Prompter interface {
	Generate(ctx context.Context, system []brtypes.SystemContentBlock, messages []brtypes.Message) (string, error)
	Usage() types.TokenUsage
}

// RunResult holds the outcome of a Runner.Run invocation.
type RunResult struct {
	ModifiedFiles []string         // Documents changed, relative to WorkDir
	Errors        []string         // Problems left after all retries
	Notes         string           // The model's explanation outside the edit blocks
	TokensUsed    types.TokenUsage // Total tokens consumed
	Retries       int              // Number of retry iterations performed
	Success       bool             // True if no problems remain
	Commit        string           // Hash of the edit commit, empty when none was made
}

// Deps holds injected dependencies for the runner.
type Deps struct {
	LLMClient  *llm.Client   // Real client; nil when Prompter is set.
	Prompter   Prompter      // Mock for testing; overrides LLMClient.
	Finder     editor.Finder // Locator for edits; nil builds a default one.
	WorkDir    string
	MaxRetries int
	CheckCmd   string // Document checker run after each round (empty to skip)
	StyleGuide string
	NoGit      bool
	Logger     *slog.Logger
}

// Runner orchestrates one revision.
type Runner struct {
	deps   Deps
	logger *slog.Logger
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps Deps) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if deps.Finder == nil {
		deps.Finder = locate.New(locate.Options{Logger: logger})
	}
	return &Runner{deps: deps, logger: logger}
}

// Run applies instruction to the documents at paths: save dirty work,
// prompt, parse, apply, check, retry, commit.
func (r *Runner) Run(ctx context.Context, instruction string, paths []string) (*RunResult, error) {
	result := &RunResult{}

	if len(paths) == 0 {
		return result, ErrNoDocuments
	}

	var gitRepo *gitpkg.Repo
	if !r.deps.NoGit {
		repo, err := gitpkg.Open(gitpkg.Config{
			WorkDir:     r.deps.WorkDir,
			AutoCommit:  true,
			DirtyCommit: true,
		})
		if err == nil {
			gitRepo = repo
			if err := repo.HandleDirty(); err != nil {
				return result, fmt.Errorf("handling dirty files: %w", err)
			}
		} else {
			r.logger.Debug("git disabled", "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	docs, err := r.readDocuments(paths)
	if err != nil {
		return result, err
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Path
	}
	systemPrompt, err := llm.RenderSystemPrompt(llm.TemplateData{
		Documents:  names,
		StyleGuide: r.deps.StyleGuide,
	})
	if err != nil {
		return result, fmt.Errorf("rendering system prompt: %w", err)
	}

	system, messages := llm.ConstructMessages(systemPrompt, docs, instruction)

	responseText, err := r.generate(ctx, system, messages)
	if err != nil {
		return result, fmt.Errorf("LLM call failed: %w", err)
	}

	defaultPath := ""
	if len(docs) == 1 {
		defaultPath = docs[0].Path
	}

	parseResult, err := editformat.ParseFor(responseText, defaultPath)
	if err != nil {
		result.TokensUsed = r.usage()
		return result, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	result.Notes = parseResult.ReasoningText

	router := &editformat.Router{
		Applier: &editor.TextEditor{Finder: r.deps.Finder},
	}

	modified, failures := r.apply(ctx, router, parseResult, docs)
	r.logger.Info("edits applied",
		"blocks", parseResult.BlocksFound,
		"modified", len(modified),
		"failed", len(failures))

	prevMessages := messages
	prevResponse := responseText

	loopResult, loopErr := feedback.Run(ctx, feedback.LoopConfig{
		CheckConfig: feedback.CheckConfig{
			WorkDir: r.deps.WorkDir,
			Command: r.deps.CheckCmd,
		},
		MaxRetries: r.deps.MaxRetries,
	}, modified, failures, func(ctx context.Context, report string) ([]string, []error, error) {
		r.logger.Debug("retrying failed edits", "report_bytes", len(report))
		retryMessages := llm.ConstructRetryMessages(prevMessages, prevResponse, report)

		retryText, err := r.generate(ctx, system, retryMessages)
		if err != nil {
			return nil, nil, fmt.Errorf("retry LLM call: %w", err)
		}
		prevMessages = retryMessages
		prevResponse = retryText

		retryParse, err := editformat.ParseFor(retryText, defaultPath)
		if err != nil {
			return nil, []error{err}, nil
		}
		m, f := r.apply(ctx, router, retryParse, docs)
		return m, f, nil
	})

	if loopResult != nil {
		result.Retries = loopResult.Retries
		result.ModifiedFiles = r.relativePaths(loopResult.ModifiedFiles)
		result.Success = loopResult.Success
		if final := loopResult.Final; final != nil && !loopResult.Success {
			for _, f := range final.Failures {
				result.Errors = append(result.Errors, f.Error())
			}
			if final.Check != nil && !final.Check.OK {
				for _, issue := range final.Check.Issues {
					result.Errors = append(result.Errors, "check: "+issue.String())
				}
				if len(final.Check.Issues) == 0 {
					result.Errors = append(result.Errors, "check failed: "+final.Check.Output)
				}
			}
		}
	}

	result.TokensUsed = r.usage()

	if loopErr != nil && ctx.Err() != nil {
		return result, loopErr
	}
	if loopErr != nil {
		r.logger.Warn("revision incomplete", "error", loopErr)
	}

	if result.Success && gitRepo != nil {
		hash, err := gitRepo.AutoCommit(loopResult.ModifiedFiles, instruction)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("auto-commit failed: %v", err))
		} else if !hash.IsZero() {
			result.Commit = hash.String()
		}
	}

	return result, nil
}

// apply resolves the parsed edits against the documents, routes them, and
// returns the absolute paths modified and every failure, parse errors
// included.
func (r *Runner) apply(ctx context.Context, router *editformat.Router, parsed *editformat.ParseResult, docs []types.Document) ([]string, []error) {
	var failures []error
	for _, pe := range parsed.ParseErrors {
		failures = append(failures, pe)
	}

	allowed := make(map[string]bool, len(docs))
	for _, d := range docs {
		allowed[r.resolve(d.Path)] = true
	}

	edits := make([]types.Edit, 0, len(parsed.Edits))
	for _, e := range parsed.Edits {
		e.FilePath = r.resolve(e.FilePath)
		if !allowed[e.FilePath] {
			failures = append(failures, fmt.Errorf("%s is not one of the documents being edited", e.FilePath))
			continue
		}
		edits = append(edits, e)
	}

	routed := router.ApplyAll(ctx, edits)
	var modified []string
	for _, a := range routed.Applied {
		r.logger.Debug("edit applied",
			"path", a.FilePath,
			"match", a.MatchType,
			"confidence", a.Confidence)
		modified = append(modified, a.FilePath)
	}
	return modified, append(failures, routed.Errors...)
}

// generate sends a prompt to the model and returns the full response text.
func (r *Runner) generate(ctx context.Context, system []brtypes.SystemContentBlock, messages []brtypes.Message) (string, error) {
	if r.deps.Prompter != nil {
		return r.deps.Prompter.Generate(ctx, system, messages)
	}
	if r.deps.LLMClient == nil {
		return "", errors.New("no LLM client configured")
	}

	resp, err := r.deps.LLMClient.Complete(ctx, system, messages)
	if err != nil {
		return "", err
	}
	if resp.StopReason == "max_tokens" {
		r.logger.Warn("response truncated at the token limit; later edit blocks may be missing")
	}
	return resp.FullText, nil
}

// usage returns cumulative token usage.
func (r *Runner) usage() types.TokenUsage {
	if r.deps.Prompter != nil {
		return r.deps.Prompter.Usage()
	}
	if r.deps.LLMClient != nil {
		return r.deps.LLMClient.CumulativeUsage()
	}
	return types.TokenUsage{}
}

// readDocuments loads the documents named by paths, which may be absolute
// or relative to WorkDir. Document.Path is relative to WorkDir when the
// document lives under it.
func (r *Runner) readDocuments(paths []string) ([]types.Document, error) {
	docs := make([]types.Document, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs := r.resolve(p)
		if seen[abs] {
			continue
		}
		seen[abs] = true

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		if info.Size() > maxDocumentSize {
			return nil, fmt.Errorf("%s is larger than %d bytes", p, maxDocumentSize)
		}

		content, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		docs = append(docs, types.Document{Path: r.relative(abs), Content: string(content)})
	}
	return docs, nil
}

func (r *Runner) resolve(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.deps.WorkDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (r *Runner) relative(abs string) string {
	root, err := filepath.Abs(r.deps.WorkDir)
	if err != nil {
		return abs
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs
	}
	return rel
}

func (r *Runner) relativePaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = r.relative(p)
	}
	return out
}
