// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"context"
	"sort"
	"time"

	"github.com/petar-djukic/go-splice/internal/boundary"
	"github.com/petar-djukic/go-splice/internal/candidate"
	"github.com/petar-djukic/go-splice/internal/normalize"
	"github.com/petar-djukic/go-splice/internal/score"
	"github.com/petar-djukic/go-splice/pkg/types"
)

// scored is a candidate window with its similarity to the target.
type scored struct {
	c   candidate.Candidate
	sim float64
}

// partialSentence searches for the first sentence of the target and then
// grows the hit toward the full target length.
func (l *Locator) partialSentence(ctx context.Context, doc, target string) (types.SearchResult, bool) {
	clean := normalize.CleanTarget(target)
	sentences := boundary.Sentences(clean)
	if len(sentences) == 0 {
		return types.SearchResult{}, false
	}
	first := normalize.CollapseString(sentences[0].Text(clean))
	if len(first) < partialMinSentence {
		return types.SearchResult{}, false
	}

	start, end, ok := findLoose(doc, first)
	if !ok {
		return types.SearchResult{}, false
	}
	end, _ = l.extend(ctx, doc, target, start, end)
	return span(doc, start, end, l.opts.PartialConfidence, types.MatchPartialSentence), true
}

// fuzzy runs the windowed similarity search under its own time budget.
// Budget expiry yields no match; caller cancellation is left for the
// cascade to report.
func (l *Locator) fuzzy(ctx context.Context, doc, target string) (types.SearchResult, bool) {
	if len(doc) > l.opts.MaxFuzzyDocument || len(target) > l.opts.MaxFuzzyTarget {
		l.logger.Debug("fuzzy search skipped by size gate",
			"doc_len", len(doc), "target_len", len(target))
		return types.SearchResult{}, false
	}

	fctx, cancel := context.WithTimeout(ctx, l.opts.FuzzyTimeout)
	defer cancel()

	res, ok := l.fuzzySearch(fctx, doc, target)
	if fctx.Err() != nil {
		if ctx.Err() == nil {
			l.logger.Debug("fuzzy search budget expired", "budget", l.opts.FuzzyTimeout)
		}
		return types.SearchResult{}, false
	}
	return res, ok
}

// fuzzySearch scores coarse windows, explores the neighbourhood of the best
// few, then refines and extends the winner.
func (l *Locator) fuzzySearch(ctx context.Context, doc, target string) (types.SearchResult, bool) {
	tl := len(target)
	deadline, _ := ctx.Deadline()

	coarse, err := l.gen.Slide(ctx, doc, tl, max(tl/4, 1))
	if err != nil || len(coarse) == 0 {
		return types.SearchResult{}, false
	}
	seeds := make([]scored, 0, len(coarse))
	for i, c := range coarse {
		if i%l.checkEvery() == 0 && ctx.Err() != nil {
			return types.SearchResult{}, false
		}
		seeds = append(seeds, scored{c, score.Auto(c.Text, target, deadline)})
	}
	sort.SliceStable(seeds, func(i, j int) bool { return seeds[i].sim > seeds[j].sim })
	seeds = seeds[:min(fuzzySeeds, len(seeds))]

	best := seeds[0]
	for _, seed := range seeds {
		around, err := l.gen.Around(ctx, doc, seed.c.Offset, tl)
		if err != nil {
			return types.SearchResult{}, false
		}
		for _, c := range around {
			if sim := score.Auto(c.Text, target, deadline); sim > best.sim {
				best = scored{c, sim}
			}
		}
	}
	if best.sim < l.opts.FuzzyThreshold {
		return types.SearchResult{}, false
	}

	start, end := l.refine(ctx, doc, target, best.c.Offset, best.c.End(), deadline)
	end, sim := l.extend(ctx, doc, target, start, end)
	if sim < l.opts.FuzzyThreshold {
		start, end, sim = best.c.Offset, best.c.End(), best.sim
	}
	return span(doc, start, end, sim, types.MatchFuzzy), true
}

// refine searches a small grid of (start, length) pairs around a span for
// the one with the best weighted mix of similarity and length coverage.
func (l *Locator) refine(ctx context.Context, doc, target string, start, end int, deadline time.Time) (int, int) {
	step := max(len(target)/20, 1)
	length := end - start
	bestStart, bestEnd := start, end
	bestScore := l.refineScore(doc[start:end], target, deadline)

	for i := -refineGridSteps; i <= refineGridSteps; i++ {
		for j := -refineGridSteps; j <= refineGridSteps; j++ {
			if ctx.Err() != nil {
				return bestStart, bestEnd
			}
			s := boundary.RuneFloor(doc, start+i*step)
			e := boundary.RuneCeil(doc, s+length+j*step)
			if e <= s || (s == bestStart && e == bestEnd) {
				continue
			}
			if sc := l.refineScore(doc[s:e], target, deadline); sc > bestScore {
				bestStart, bestEnd, bestScore = s, e, sc
			}
		}
	}
	return bestStart, bestEnd
}

func (l *Locator) refineScore(text, target string, deadline time.Time) float64 {
	sim := score.Auto(text, target, deadline)
	coverage := min(float64(len(text))/float64(len(target)), l.opts.RefineLengthCap)
	return l.opts.RefineSimilarityWeight*sim + l.opts.RefineLengthWeight*coverage
}

// extend grows a span that is materially shorter than the target toward
// the target length, as long as similarity stays within ExtendRatio of the
// best seen. It returns the new end and the similarity of the final span.
func (l *Locator) extend(ctx context.Context, doc, target string, start, end int) (int, float64) {
	deadline, _ := ctx.Deadline()
	best := score.Auto(doc[start:end], target, deadline)
	want := len(target)
	if float64(end-start) >= shortfallRatio*float64(want) {
		return end, best
	}

	last := best
	step := max(want/20, 1)
	for n := end - start + step; ctx.Err() == nil; n += step {
		n = min(n, want)
		e := boundary.RuneCeil(doc, start+n)
		if e > end {
			sim := score.Auto(doc[start:e], target, deadline)
			if sim < l.opts.ExtendRatio*best {
				break
			}
			end, last = e, sim
			best = max(best, sim)
		}
		if n >= want || e >= len(doc) {
			break
		}
	}
	return end, last
}
