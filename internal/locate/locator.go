// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package locate finds where a possibly inexact fragment sits in a document.
// It tries an ordered cascade of strategies, from exact substring search to
// windowed fuzzy scoring, and returns the first span any of them accepts.
package locate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/petar-djukic/go-splice/internal/boundary"
	"github.com/petar-djukic/go-splice/internal/candidate"
	"github.com/petar-djukic/go-splice/pkg/types"
)

// strategy is one step of the cascade. ok is false when the strategy found
// nothing it is willing to report.
type strategy struct {
	name string
	run  func(ctx context.Context, doc, target string) (types.SearchResult, bool)
}

// Locator runs the matching cascade. It holds only immutable configuration,
// so one Locator may serve concurrent searches.
type Locator struct {
	opts   Options
	gen    candidate.Generator
	logger *slog.Logger

	inline    []strategy // cheap, run on the caller's goroutine
	deferred  []strategy // run on a worker goroutine
	aiPattern []strategy // sub-cascade behind the ai_chat_pattern step
}

// New returns a Locator configured by opts.
func New(opts Options) *Locator {
	opts = opts.WithDefaults()
	l := &Locator{
		opts:   opts,
		logger: opts.Logger,
	}
	l.inline = []strategy{
		{"exact", l.exact},
		{"case_insensitive", l.caseInsensitive},
	}
	l.aiPattern = []strategy{
		{"markdown", l.markdown},
		{"key_phrase", l.keyPhrase},
		{"semantic", l.semantic},
		{"flexible_word_order", l.flexibleWordOrder},
	}
	l.deferred = []strategy{
		{"normalized_whitespace", l.normalizedWhitespace},
		{"ai_chat_pattern", l.aiChatPattern},
		{"partial_sentence", l.partialSentence},
		{"fuzzy", l.fuzzy},
	}
	return l
}

// Options returns the effective configuration.
func (l *Locator) Options() Options { return l.opts }

// Find locates q.Target in q.Document. Absence of a match is reported as a
// MatchNoMatch result, never as an error. If ctx is cancelled before a
// strategy succeeds, the result has MatchCancelled.
func (l *Locator) Find(ctx context.Context, q types.SearchQuery) types.SearchResult {
	if q.Document == "" || strings.TrimSpace(q.Target) == "" {
		return types.NotFound(types.MatchNoMatch)
	}
	if ctx.Err() != nil {
		return types.NotFound(types.MatchCancelled)
	}

	res, ok := l.firstMatch(ctx, q.Document, q.Target, l.inline)
	if !ok {
		res = l.runDeferred(ctx, q.Document, q.Target)
	}
	if !res.Found() {
		l.logger.Debug("no strategy matched", "match_type", res.MatchType, "target_len", len(q.Target))
		return res
	}

	radius := q.ContextRadius
	if radius <= 0 {
		radius = DefaultContextRadius
	}
	res.Context = contextAround(q.Document, res.StartOffset, res.End(), radius)
	return res
}

// runDeferred runs the expensive strategies on a worker goroutine and waits
// for it or for ctx. The worker observes ctx and stops on its own.
func (l *Locator) runDeferred(ctx context.Context, doc, target string) types.SearchResult {
	done := make(chan types.SearchResult, 1)
	go func() {
		res, ok := l.firstMatch(ctx, doc, target, l.deferred)
		if !ok {
			res = types.NotFound(types.MatchNoMatch)
		}
		done <- res
	}()

	select {
	case res := <-done:
		if !res.Found() && ctx.Err() != nil {
			return types.NotFound(types.MatchCancelled)
		}
		return res
	case <-ctx.Done():
		return types.NotFound(types.MatchCancelled)
	}
}

// firstMatch returns the result of the first strategy in list that finds a
// span. It stops early when ctx is done.
func (l *Locator) firstMatch(ctx context.Context, doc, target string, list []strategy) (types.SearchResult, bool) {
	for _, s := range list {
		if ctx.Err() != nil {
			return types.SearchResult{}, false
		}
		if res, ok := l.try(ctx, s, doc, target); ok {
			return res, true
		}
	}
	return types.SearchResult{}, false
}

// try runs one strategy. A panic or an out-of-range span counts as nothing
// found, so one faulty strategy cannot abort the cascade.
func (l *Locator) try(ctx context.Context, s strategy, doc, target string) (res types.SearchResult, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			l.logger.Warn("strategy panicked", "strategy", s.name, "panic", p)
			res, ok = types.SearchResult{}, false
		}
	}()

	res, ok = s.run(ctx, doc, target)
	if !ok {
		return types.SearchResult{}, false
	}
	if !inRange(doc, res) {
		l.logger.Warn("strategy returned an invalid span",
			"strategy", s.name, "start", res.StartOffset, "length", res.Length)
		return types.SearchResult{}, false
	}
	l.logger.Debug("strategy matched",
		"strategy", s.name,
		"match_type", res.MatchType,
		"confidence", res.Confidence,
		"start", res.StartOffset,
		"length", res.Length,
	)
	return res, true
}

// aiChatPattern tries the strategies aimed at chat-model output, in order.
func (l *Locator) aiChatPattern(ctx context.Context, doc, target string) (types.SearchResult, bool) {
	return l.firstMatch(ctx, doc, target, l.aiPattern)
}

// span builds a found result for doc[start:end].
func span(doc string, start, end int, confidence float64, t types.MatchType) types.SearchResult {
	return types.SearchResult{
		StartOffset:  start,
		Length:       end - start,
		Confidence:   confidence,
		MatchedText:  doc[start:end],
		IsExactMatch: t == types.MatchExact,
		MatchType:    t,
	}
}

func inRange(doc string, r types.SearchResult) bool {
	if r.StartOffset < 0 || r.Length <= 0 || r.End() > len(doc) {
		return false
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return false
	}
	return r.MatchedText == doc[r.StartOffset:r.End()]
}

// contextAround returns the match with up to radius bytes on either side,
// snapped outward to rune boundaries.
func contextAround(doc string, start, end, radius int) string {
	lo := boundary.RuneFloor(doc, start-radius)
	hi := boundary.RuneCeil(doc, end+radius)
	return doc[lo:hi]
}
