// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package candidate generates trial windows over a document for fuzzy
// scoring, under a count cap and with periodic cancellation checks.
package candidate

import (
	"context"

	"github.com/petar-djukic/go-splice/internal/boundary"
)

// Defaults for Generator fields left at zero.
const (
	DefaultMaxCandidates = 1000
	DefaultCheckEvery    = 16
	DefaultPerRegion     = 20
)

// Candidate is a trial substring of the document at a byte offset.
type Candidate struct {
	Offset int
	Text   string
}

// End returns the byte offset just past the candidate.
func (c Candidate) End() int { return c.Offset + len(c.Text) }

// Generator produces candidate windows. The zero value is usable.
type Generator struct {
	// MaxCandidates caps the windows returned by Slide.
	MaxCandidates int
	// CheckEvery is the number of candidates generated between context checks.
	CheckEvery int
	// PerRegion caps the windows returned by Around.
	PerRegion int
}

// regionOffsets and regionLengths shape the windows Around generates:
// offset shifts in quarters of the target length, and length factors.
var (
	regionOffsets = []float64{0, -0.125, 0.125, -0.25, 0.25}
	regionLengths = []float64{1.0, 0.9, 1.25, 0.75}
)

func (g Generator) withDefaults() Generator {
	if g.MaxCandidates <= 0 {
		g.MaxCandidates = DefaultMaxCandidates
	}
	if g.CheckEvery <= 0 {
		g.CheckEvery = DefaultCheckEvery
	}
	if g.PerRegion <= 0 {
		g.PerRegion = DefaultPerRegion
	}
	return g
}

// Slide returns windows of size bytes across doc, starting every step
// bytes. When the window count would exceed MaxCandidates the step grows to
// fit. The final window is aligned to the end of doc so the tail is covered.
// Offsets and ends are snapped to rune boundaries. It returns the context
// error if ctx is done during generation.
func (g Generator) Slide(ctx context.Context, doc string, size, step int) ([]Candidate, error) {
	g = g.withDefaults()
	if size <= 0 || doc == "" {
		return nil, nil
	}
	if size >= len(doc) {
		return []Candidate{{Offset: 0, Text: doc}}, nil
	}
	step = max(step, 1)
	span := len(doc) - size
	if span/step+1 > g.MaxCandidates {
		step = span/max(g.MaxCandidates-1, 1) + 1
	}

	out := make([]Candidate, 0, min(span/step+2, g.MaxCandidates))
	last := -1
	emit := func(off int) error {
		start := boundary.RuneFloor(doc, off)
		if start == last {
			return nil
		}
		last = start
		end := boundary.RuneCeil(doc, start+size)
		out = append(out, Candidate{Offset: start, Text: doc[start:end]})
		if len(out)%g.CheckEvery == 0 {
			return ctx.Err()
		}
		return nil
	}

	for off := 0; off <= span && len(out) < g.MaxCandidates; off += step {
		if err := emit(off); err != nil {
			return out, err
		}
	}
	if last < boundary.RuneFloor(doc, span) && len(out) < g.MaxCandidates {
		if err := emit(span); err != nil {
			return out, err
		}
	}
	return out, ctx.Err()
}

// Around returns up to PerRegion windows near offset whose starts shift by
// up to 25% of targetLen and whose lengths range between 75% and 125% of
// targetLen. Windows are clipped to doc; duplicates are skipped.
func (g Generator) Around(ctx context.Context, doc string, offset, targetLen int) ([]Candidate, error) {
	g = g.withDefaults()
	if targetLen <= 0 || doc == "" {
		return nil, nil
	}

	type key struct{ start, end int }
	seen := make(map[key]bool, g.PerRegion)
	out := make([]Candidate, 0, g.PerRegion)

	for _, shift := range regionOffsets {
		for _, factor := range regionLengths {
			if len(out) >= g.PerRegion {
				return out, ctx.Err()
			}
			start := boundary.RuneFloor(doc, offset+int(shift*float64(targetLen)))
			end := boundary.RuneCeil(doc, start+int(factor*float64(targetLen)))
			k := key{start, end}
			if end <= start || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, Candidate{Offset: start, Text: doc[start:end]})
			if len(out)%g.CheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return out, err
				}
			}
		}
	}
	return out, ctx.Err()
}
