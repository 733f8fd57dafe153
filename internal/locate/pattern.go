// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"context"
	"sort"
	"strings"

	"github.com/petar-djukic/go-splice/internal/boundary"
	"github.com/petar-djukic/go-splice/internal/candidate"
	"github.com/petar-djukic/go-splice/internal/normalize"
	"github.com/petar-djukic/go-splice/internal/score"
	"github.com/petar-djukic/go-splice/pkg/types"
)

// keyPhrase searches for the longest distinctive n-gram of the target and
// expands the hit to the surrounding sentence.
func (l *Locator) keyPhrase(ctx context.Context, doc, target string) (types.SearchResult, bool) {
	phrases := keyPhrases(normalize.ForMatching(target))
	if len(phrases) == 0 {
		return types.SearchResult{}, false
	}

	m := normalize.Identity(doc).CollapseSpace()
	for i, p := range phrases {
		if i >= keyPhraseMaxTries {
			break
		}
		if ctx.Err() != nil {
			return types.SearchResult{}, false
		}
		ps, pe, ok := searchMapped(m, p)
		if !ok {
			continue
		}
		start, end := boundary.ExpandToSentence(doc, ps, pe, keyPhraseWindow)
		start, end = capAround(doc, start, end, ps, pe, min(3*len(target), keyPhraseMaxSpan))
		return span(doc, start, end, l.opts.KeyPhraseConfidence, types.MatchAIChatPattern), true
	}
	return types.SearchResult{}, false
}

// keyPhrases returns the 3-8 word n-grams of each sentence of s that are
// long enough and not dominated by stop words, longest first.
func keyPhrases(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, sp := range boundary.Sentences(s) {
		words := strings.Fields(sp.Text(s))
		for n := min(keyPhraseMaxWords, len(words)); n >= keyPhraseMinWords; n-- {
			for i := 0; i+n <= len(words); i++ {
				gram := words[i : i+n]
				p := strings.Join(gram, " ")
				if len(p) < keyPhraseMinLen || seen[p] || score.StopWordRatio(gram) > keyPhraseMaxStop {
					continue
				}
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// capAround shrinks [start, end) to at most limit bytes while keeping the
// core range [coreStart, coreEnd) inside it.
func capAround(doc string, start, end, coreStart, coreEnd, limit int) (int, int) {
	if end-start <= limit {
		return start, end
	}
	slack := max(limit-(coreEnd-coreStart), 0)
	start = max(start, coreStart-slack/2)
	end = min(end, start+limit)
	end = max(end, coreEnd)
	return boundary.RuneFloor(doc, start), boundary.RuneCeil(doc, end)
}

// semantic picks the paragraph or sentence chunk sharing the most
// significant words with the target.
func (l *Locator) semantic(ctx context.Context, doc, target string) (types.SearchResult, bool) {
	want := score.SignificantWords(target)
	if want.Len() == 0 {
		return types.SearchResult{}, false
	}

	var best boundary.Span
	bestScore := 0.0
	for i, ch := range boundary.Chunks(doc, semanticChunkLen) {
		if i%l.checkEvery() == 0 && ctx.Err() != nil {
			return types.SearchResult{}, false
		}
		if s := score.WordJaccard(want, score.SignificantWords(ch.Text(doc))); s > bestScore {
			best, bestScore = ch, s
		}
	}
	if bestScore < l.opts.SemanticThreshold {
		return types.SearchResult{}, false
	}
	return span(doc, best.Start, best.End, bestScore*l.opts.SemanticScale, types.MatchAIChatPattern), true
}

// flexibleWordOrder slides a window over the document scoring significant
// word overlap, which tolerates reordered wording.
func (l *Locator) flexibleWordOrder(ctx context.Context, doc, target string) (types.SearchResult, bool) {
	want := score.SignificantWords(target)
	if want.Len() == 0 {
		return types.SearchResult{}, false
	}

	window := max(len(target), flexibleMinWindow)
	windows, err := l.gen.Slide(ctx, doc, window, window/2)
	if err != nil || len(windows) == 0 {
		return types.SearchResult{}, false
	}

	best, bestScore := windows[0], 0.0
	for _, w := range windows {
		if s := score.WordJaccard(want, score.SignificantWords(w.Text)); s > bestScore {
			best, bestScore = w, s
		}
	}
	if bestScore < l.opts.FlexibleThreshold {
		return types.SearchResult{}, false
	}

	start, end := boundary.RefineToSentence(doc, best.Offset, best.End(), flexibleRefine)
	return span(doc, start, end, bestScore*l.opts.FlexibleScale, types.MatchFlexibleWordOrder), true
}

func (l *Locator) checkEvery() int {
	if l.gen.CheckEvery > 0 {
		return l.gen.CheckEvery
	}
	return candidate.DefaultCheckEvery
}
