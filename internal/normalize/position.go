// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package normalize rewrites text for approximate matching while keeping a
// byte-exact mapping back to the original.
package normalize

import (
	"regexp"
	"slices"
	"unicode"
	"unicode/utf8"
)

// PositionMap is a normalized rendering of an original text together with
// the original byte offset of every normalized byte. Offsets are strictly
// increasing, so any normalized span maps to exactly one original span.
type PositionMap struct {
	original string
	text     string
	offsets  []int
	// pairs holds the constructs Rewrite reduced to a capture group, such
	// as **bold**. A span never splits one.
	pairs []pair
}

// pair is a rewritten construct in original offsets. outer covers the whole
// match and inner the kept group.
type pair struct {
	outerStart, outerEnd int
	innerStart, innerEnd int
}

// Identity returns the trivial map of s onto itself.
func Identity(s string) *PositionMap {
	offsets := make([]int, len(s))
	for i := range offsets {
		offsets[i] = i
	}
	return &PositionMap{original: s, text: s, offsets: offsets}
}

// Text returns the normalized text.
func (m *PositionMap) Text() string { return m.text }

// Original returns the text the map was built from.
func (m *PositionMap) Original() string { return m.original }

// Len returns the length of the normalized text in bytes.
func (m *PositionMap) Len() int { return len(m.text) }

// Offset returns the original byte offset of normalized byte i. For
// i == Len() it returns the end of the original text.
func (m *PositionMap) Offset(i int) int {
	if i >= len(m.offsets) {
		return len(m.original)
	}
	if i < 0 {
		return 0
	}
	return m.offsets[i]
}

// Span maps the normalized range [start, end) to an original range. The end
// is advanced to the next rune boundary of the original. A range that would
// cut through the markup of a rewritten pair such as **bold** is widened to
// cover the whole pair. Ranges inside the kept text of a pair stay as they
// are. ok is false for empty or out-of-range input.
func (m *PositionMap) Span(start, end int) (origStart, origEnd int, ok bool) {
	if start < 0 || end > len(m.text) || start >= end {
		return 0, 0, false
	}
	origStart = m.offsets[start]
	origEnd = snapForward(m.original, m.offsets[end-1]+1)
	origStart, origEnd = m.widen(origStart, origEnd)
	return origStart, origEnd, true
}

// widen grows [start, end) until no recorded pair straddles either edge.
// Pairs can nest, so it repeats until nothing changes.
func (m *PositionMap) widen(start, end int) (int, int) {
	for changed := true; changed; {
		changed = false
		for _, p := range m.pairs {
			if p.outerStart >= end || p.outerEnd <= start {
				continue
			}
			if p.innerStart <= start && end <= p.innerEnd {
				continue
			}
			if p.outerStart < start {
				start, changed = p.outerStart, true
			}
			if p.outerEnd > end {
				end, changed = p.outerEnd, true
			}
		}
	}
	return start, end
}

// CollapseSpace replaces every run of Unicode whitespace with one ASCII
// space. The space maps to the first character of the run.
func (m *PositionMap) CollapseSpace() *PositionMap {
	b := newBuilder(m, len(m.text))
	inSpace := false
	for i, r := range m.text {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.appendByte(' ', m.offsets[i])
			}
			inSpace = true
			continue
		}
		b.appendFrom(i, i+utf8.RuneLen(r))
		inSpace = false
	}
	return b.build()
}

// TrimSpace drops leading and trailing whitespace from the normalized text.
func (m *PositionMap) TrimSpace() *PositionMap {
	start, end := 0, len(m.text)
	for start < end {
		r, size := utf8.DecodeRuneInString(m.text[start:])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(m.text[:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	b := newBuilder(m, end-start)
	b.appendFrom(start, end)
	return b.build()
}

// Rewrite removes every match of re. When keep is positive, the bytes of
// that capture group survive in place of the match.
func (m *PositionMap) Rewrite(re *regexp.Regexp, keep int) *PositionMap {
	matches := re.FindAllStringSubmatchIndex(m.text, -1)
	if len(matches) == 0 {
		return m
	}
	b := newBuilder(m, len(m.text))
	prev := 0
	for _, loc := range matches {
		b.appendFrom(prev, loc[0])
		if keep > 0 && 2*keep+1 < len(loc) && loc[2*keep] >= 0 {
			b.appendFrom(loc[2*keep], loc[2*keep+1])
			if loc[2*keep] < loc[2*keep+1] {
				b.pairs = append(b.pairs, pair{
					outerStart: m.offsets[loc[0]],
					outerEnd:   m.offsets[loc[1]-1] + 1,
					innerStart: m.offsets[loc[2*keep]],
					innerEnd:   m.offsets[loc[2*keep+1]-1] + 1,
				})
			}
		}
		prev = loc[1]
	}
	b.appendFrom(prev, len(m.text))
	return b.build()
}

// builder accumulates a derived map from slices of its source.
type builder struct {
	src     *PositionMap
	buf     []byte
	offsets []int
	pairs   []pair
}

func newBuilder(src *PositionMap, capacity int) *builder {
	return &builder{
		src:     src,
		buf:     make([]byte, 0, capacity),
		offsets: make([]int, 0, capacity),
		pairs:   slices.Clone(src.pairs),
	}
}

func (b *builder) appendFrom(i, j int) {
	if i >= j {
		return
	}
	b.buf = append(b.buf, b.src.text[i:j]...)
	b.offsets = append(b.offsets, b.src.offsets[i:j]...)
}

func (b *builder) appendByte(c byte, offset int) {
	b.buf = append(b.buf, c)
	b.offsets = append(b.offsets, offset)
}

func (b *builder) build() *PositionMap {
	return &PositionMap{original: b.src.original, text: string(b.buf), offsets: b.offsets, pairs: b.pairs}
}

// snapForward moves i to the next rune boundary of s.
func snapForward(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
