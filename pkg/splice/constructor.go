// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package splice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/petar-djukic/go-splice/internal/assist"
	"github.com/petar-djukic/go-splice/internal/editformat"
	"github.com/petar-djukic/go-splice/internal/llm"
	"github.com/petar-djukic/go-splice/internal/locate"
)

const (
	defaultMaxRetries = 3
	defaultMaxTokens  = 4096
	defaultLLMTimeout = 5 * time.Minute
)

// NewEngine validates the config and returns an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	applyDefaults(&cfg)

	loc := locate.New(locate.Options{
		FuzzyThreshold:    cfg.FuzzyThreshold,
		FuzzyTimeout:      cfg.FuzzyTimeout,
		MaxFuzzyDocument:  cfg.MaxFuzzyDocument,
		MaxFuzzyTarget:    cfg.MaxFuzzyTarget,
		SemanticThreshold: cfg.SemanticThreshold,
		FlexibleThreshold: cfg.FlexibleThreshold,
		Logger:            cfg.Logger,
	})
	return &Engine{loc: loc, radius: cfg.ContextRadius}, nil
}

// NewAssistant validates the config, initializes the Bedrock client, and
// returns an Assistant that locates edits with engine. A nil engine gets
// the default configuration.
func NewAssistant(cfg AssistantConfig, engine *Engine) (Assistant, error) {
	if err := validateAssistantConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	applyAssistantDefaults(&cfg)

	if engine == nil {
		var err error
		if engine, err = NewEngine(Config{Logger: cfg.Logger}); err != nil {
			return nil, err
		}
	}

	client, err := llm.NewClient(context.Background(), llm.ClientConfig{
		ModelID:     cfg.Model,
		Region:      cfg.Region,
		Profile:     cfg.Profile,
		Timeout:     defaultLLMTimeout,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMFailure, err)
	}

	return newAssistant(cfg, engine, assist.Deps{LLMClient: client}), nil
}

// newAssistant wires the runner. deps supplies the model side.
func newAssistant(cfg AssistantConfig, engine *Engine, deps assist.Deps) *assistantAdapter {
	deps.Finder = engine.loc
	deps.WorkDir = cfg.WorkDir
	deps.MaxRetries = cfg.MaxRetries
	deps.CheckCmd = cfg.CheckCmd
	deps.StyleGuide = cfg.StyleGuide
	deps.NoGit = cfg.NoGit
	deps.Logger = cfg.Logger
	return &assistantAdapter{runner: assist.NewRunner(deps)}
}

// assistantAdapter adapts internal/assist.Runner to the public Assistant
// interface.
type assistantAdapter struct {
	runner *assist.Runner
}

func (a *assistantAdapter) Revise(ctx context.Context, instruction string, paths []string) (*Result, error) {
	ir, err := a.runner.Run(ctx, instruction, paths)
	if ir == nil {
		return &Result{}, err
	}
	res := &Result{
		ModifiedFiles: ir.ModifiedFiles,
		Errors:        ir.Errors,
		Notes:         ir.Notes,
		TokensUsed:    ir.TokensUsed,
		Retries:       ir.Retries,
		Success:       ir.Success,
		Commit:        ir.Commit,
	}
	var noEdits *editformat.NoEditsFoundError
	switch {
	case errors.As(err, &noEdits):
		err = fmt.Errorf("%w: %v", ErrParseFailure, err)
	case errors.Is(err, llm.ErrLLMFailure):
		err = fmt.Errorf("%w: %v", ErrLLMFailure, err)
	}
	return res, err
}

// validateConfig checks that thresholds are fractions and limits are not
// negative.
func validateConfig(cfg Config) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"FuzzyThreshold", cfg.FuzzyThreshold},
		{"SemanticThreshold", cfg.SemanticThreshold},
		{"FlexibleThreshold", cfg.FlexibleThreshold},
	} {
		if f.v < 0 || f.v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", f.name, f.v)
		}
	}
	if cfg.FuzzyTimeout < 0 {
		return fmt.Errorf("FuzzyTimeout must not be negative")
	}
	if cfg.MaxFuzzyDocument < 0 || cfg.MaxFuzzyTarget < 0 {
		return fmt.Errorf("fuzzy size limits must not be negative")
	}
	if cfg.ContextRadius < 0 {
		return fmt.Errorf("ContextRadius must not be negative")
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.ContextRadius == 0 {
		cfg.ContextRadius = locate.DefaultContextRadius
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
}

// validateAssistantConfig checks that required fields are present.
func validateAssistantConfig(cfg AssistantConfig) error {
	if cfg.WorkDir == "" {
		return fmt.Errorf("WorkDir is required")
	}
	if info, err := os.Stat(cfg.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("WorkDir %q does not exist or is not a directory", cfg.WorkDir)
	}
	if cfg.Model == "" {
		return fmt.Errorf("Model is required")
	}
	if cfg.Region == "" {
		return fmt.Errorf("Region is required")
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("MaxRetries must not be negative")
	}
	return nil
}

func applyAssistantDefaults(cfg *AssistantConfig) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
}
