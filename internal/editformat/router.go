// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package editformat

import (
	"context"
	"fmt"

	"github.com/petar-djukic/go-splice/pkg/types"
)

// RouteResult holds the outcome of applying all edits through the router.
type RouteResult struct {
	Applied []*types.ApplyResult // Successful edits
	Errors  []error              // Errors from failed edits (in order)
}

// Failed reports whether any edit was refused.
func (r *RouteResult) Failed() bool {
	return len(r.Errors) > 0
}

// Router applies a batch of edits through one Applier, which handles every
// edit kind. It is usually an *editor.TextEditor.
type Router struct {
	Applier types.Applier
}

// ApplyAll applies each edit in order. A failed edit does not stop the rest;
// its error is collected. When ctx is done the remaining edits are reported
// as failed with the context error.
func (r *Router) ApplyAll(ctx context.Context, edits []types.Edit) *RouteResult {
	result := &RouteResult{}

	for _, edit := range edits {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", edit.FilePath, err))
			continue
		}
		ar, err := r.Applier.Apply(ctx, edit)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Applied = append(result.Applied, ar)
	}

	return result
}
