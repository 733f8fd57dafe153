// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"log/slog"
	"time"
)

// Default thresholds and confidences. The fuzzy weights were tuned by hand
// and are exposed through Options so they can be re-tuned.
const (
	DefaultContextRadius = 100

	DefaultExactConfidence      = 1.0
	DefaultFoldConfidence       = 0.95
	DefaultWhitespaceConfidence = 0.85
	DefaultMarkdownConfidence   = 0.85
	DefaultKeyPhraseConfidence  = 0.80
	DefaultPartialConfidence    = 0.75

	DefaultSemanticThreshold = 0.40
	DefaultSemanticScale     = 0.9
	DefaultFlexibleThreshold = 0.50
	DefaultFlexibleScale     = 0.8

	DefaultFuzzyThreshold   = 0.6
	DefaultFuzzyTimeout     = 2 * time.Second
	DefaultMaxFuzzyDocument = 50_000
	DefaultMaxFuzzyTarget   = 1000

	DefaultRefineSimilarityWeight = 0.7
	DefaultRefineLengthWeight     = 0.3
	DefaultRefineLengthCap        = 1.5
	DefaultExtendRatio            = 0.8
)

// Fixed search geometry.
const (
	keyPhraseMinWords  = 3
	keyPhraseMaxWords  = 8
	keyPhraseMinLen    = 15
	keyPhraseMaxStop   = 0.7
	keyPhraseWindow    = 200
	keyPhraseMaxSpan   = 1000
	keyPhraseMaxTries  = 200
	semanticChunkLen   = 300
	flexibleMinWindow  = 100
	flexibleRefine     = 100
	partialMinSentence = 10
	fuzzySeeds         = 4
	shortfallRatio     = 0.9
	refineGridSteps    = 2
)

// Options tunes the cascade. Zero fields take the defaults above.
type Options struct {
	ExactConfidence      float64 `mapstructure:"exact_confidence"`
	FoldConfidence       float64 `mapstructure:"fold_confidence"`
	WhitespaceConfidence float64 `mapstructure:"whitespace_confidence"`
	MarkdownConfidence   float64 `mapstructure:"markdown_confidence"`
	KeyPhraseConfidence  float64 `mapstructure:"key_phrase_confidence"`
	PartialConfidence    float64 `mapstructure:"partial_confidence"`

	SemanticThreshold float64 `mapstructure:"semantic_threshold"`
	SemanticScale     float64 `mapstructure:"semantic_scale"`
	FlexibleThreshold float64 `mapstructure:"flexible_threshold"`
	FlexibleScale     float64 `mapstructure:"flexible_scale"`

	// FuzzyThreshold is the minimum similarity a fuzzy candidate needs.
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold"`

	// FuzzyTimeout is the wall-clock budget of the fuzzy strategy.
	FuzzyTimeout time.Duration `mapstructure:"fuzzy_timeout"`

	// MaxFuzzyDocument and MaxFuzzyTarget gate fuzzy search by input size.
	MaxFuzzyDocument int `mapstructure:"max_fuzzy_document"`
	MaxFuzzyTarget   int `mapstructure:"max_fuzzy_target"`

	RefineSimilarityWeight float64 `mapstructure:"refine_similarity_weight"`
	RefineLengthWeight     float64 `mapstructure:"refine_length_weight"`
	RefineLengthCap        float64 `mapstructure:"refine_length_cap"`

	// ExtendRatio is the fraction of the best similarity an extension of
	// a short match must keep.
	ExtendRatio float64 `mapstructure:"extend_ratio"`

	// Logger receives debug traces of the cascade. Nil discards them.
	Logger *slog.Logger `mapstructure:"-"`
}

// WithDefaults returns a copy of o with zero fields set to defaults.
func (o Options) WithDefaults() Options {
	setFloat(&o.ExactConfidence, DefaultExactConfidence)
	setFloat(&o.FoldConfidence, DefaultFoldConfidence)
	setFloat(&o.WhitespaceConfidence, DefaultWhitespaceConfidence)
	setFloat(&o.MarkdownConfidence, DefaultMarkdownConfidence)
	setFloat(&o.KeyPhraseConfidence, DefaultKeyPhraseConfidence)
	setFloat(&o.PartialConfidence, DefaultPartialConfidence)
	setFloat(&o.SemanticThreshold, DefaultSemanticThreshold)
	setFloat(&o.SemanticScale, DefaultSemanticScale)
	setFloat(&o.FlexibleThreshold, DefaultFlexibleThreshold)
	setFloat(&o.FlexibleScale, DefaultFlexibleScale)
	setFloat(&o.FuzzyThreshold, DefaultFuzzyThreshold)
	setFloat(&o.RefineSimilarityWeight, DefaultRefineSimilarityWeight)
	setFloat(&o.RefineLengthWeight, DefaultRefineLengthWeight)
	setFloat(&o.RefineLengthCap, DefaultRefineLengthCap)
	setFloat(&o.ExtendRatio, DefaultExtendRatio)
	if o.FuzzyTimeout <= 0 {
		o.FuzzyTimeout = DefaultFuzzyTimeout
	}
	if o.MaxFuzzyDocument <= 0 {
		o.MaxFuzzyDocument = DefaultMaxFuzzyDocument
	}
	if o.MaxFuzzyTarget <= 0 {
		o.MaxFuzzyTarget = DefaultMaxFuzzyTarget
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func setFloat(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}
