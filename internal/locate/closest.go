// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"context"
	"strings"

	"github.com/petar-djukic/go-splice/internal/score"
)

// Closest describes the line window of a document most similar to a
// fragment that could not be located. Lines are 1-based.
type Closest struct {
	Text       string
	Similarity float64
	LineStart  int
	LineEnd    int
}

// ClosestLines slides a window of as many lines as search has over content
// and returns the most similar window. It is a diagnostic for failed
// searches and stops early, returning the best so far, when ctx is done.
func ClosestLines(ctx context.Context, content, search string) Closest {
	if search == "" || content == "" {
		return Closest{}
	}

	contentLines := strings.Split(content, "\n")
	searchLen := min(len(strings.Split(search, "\n")), len(contentLines))
	deadline, _ := ctx.Deadline()

	var bestSim float64
	var bestStart int
	for i := 0; i <= len(contentLines)-searchLen; i++ {
		if ctx.Err() != nil {
			break
		}
		window := strings.Join(contentLines[i:i+searchLen], "\n")
		if s := score.Auto(window, search, deadline); s > bestSim {
			bestSim = s
			bestStart = i
		}
	}

	if bestSim == 0 {
		return Closest{}
	}
	return Closest{
		Text:       strings.Join(contentLines[bestStart:bestStart+searchLen], "\n"),
		Similarity: bestSim,
		LineStart:  bestStart + 1,
		LineEnd:    bestStart + searchLen,
	}
}
