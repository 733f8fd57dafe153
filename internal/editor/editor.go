// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package editor applies located edits to documents: replacements guarded
// by confidence and span checks, insertions guarded by anchor checks, and
// the file-level plumbing around both.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petar-djukic/go-splice/pkg/types"
)

// TextEditor applies edits to document files on disk. It implements the
// types.Applier interface.
type TextEditor struct {
	// Finder locates the text each edit refers to.
	Finder Finder
}

// Verify interface compliance at compile time.
var _ types.Applier = (*TextEditor)(nil)

// Apply applies a single edit to its file. Create edits make a new file.
// Replace edits with empty original text append to the file. Otherwise the
// file is read, edited in memory, and written back atomically; on any
// refusal the file is left untouched.
func (e *TextEditor) Apply(ctx context.Context, edit types.Edit) (*types.ApplyResult, error) {
	if edit.FilePath == "" {
		return nil, errors.New("edit has no file path")
	}

	switch edit.Kind {
	case types.EditCreate:
		return e.createFile(edit)
	case types.EditInsert:
		return e.rewrite(edit, func(doc string) (string, *types.ApplyResult, error) {
			return InsertAfter(ctx, e.Finder, doc, edit.Anchor, edit.NewContent)
		})
	}

	if edit.OldContent == "" && edit.NewContent != "" {
		return e.appendFile(edit)
	}
	if edit.OldContent == "" && edit.NewContent == "" {
		return nil, fmt.Errorf("edit has empty search and replacement text for %s", edit.FilePath)
	}
	return e.rewrite(edit, func(doc string) (string, *types.ApplyResult, error) {
		return ApplyReplacement(ctx, e.Finder, doc, edit.OldContent, edit.NewContent)
	})
}

// rewrite reads the edit's file, transforms it with fn and writes the
// result back. Refusals from fn are tagged with the file path.
func (e *TextEditor) rewrite(edit types.Edit, fn func(doc string) (string, *types.ApplyResult, error)) (*types.ApplyResult, error) {
	content, err := os.ReadFile(edit.FilePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", edit.FilePath, err)
	}

	out, result, err := fn(string(content))
	if err != nil {
		return nil, withPath(err, edit.FilePath)
	}

	if err := atomicWrite(edit.FilePath, []byte(out)); err != nil {
		return nil, fmt.Errorf("writing %s: %w", edit.FilePath, err)
	}
	result.FilePath = edit.FilePath
	result.Kind = edit.Kind
	return result, nil
}

// withPath records path on the structured refusal errors.
func withPath(err error, path string) error {
	var re *types.ReplacementError
	if errors.As(err, &re) {
		re.FilePath = path
		return re
	}
	var ae *types.AnchorError
	if errors.As(err, &ae) {
		ae.FilePath = path
		return ae
	}
	return fmt.Errorf("%s: %w", path, err)
}

// createFile creates a new file with the given content.
// Returns an error if the file already exists.
func (e *TextEditor) createFile(edit types.Edit) (*types.ApplyResult, error) {
	if _, err := os.Stat(edit.FilePath); err == nil {
		return nil, fmt.Errorf("file already exists: %s", edit.FilePath)
	}

	dir := filepath.Dir(edit.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if err := atomicWrite(edit.FilePath, []byte(edit.NewContent)); err != nil {
		return nil, fmt.Errorf("creating %s: %w", edit.FilePath, err)
	}

	return &types.ApplyResult{
		FilePath:   edit.FilePath,
		Kind:       types.EditCreate,
		MatchType:  types.MatchExact,
		Confidence: 1.0,
	}, nil
}

// appendFile appends content to an existing file (empty search, non-empty replace).
func (e *TextEditor) appendFile(edit types.Edit) (*types.ApplyResult, error) {
	content, err := os.ReadFile(edit.FilePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", edit.FilePath, err)
	}

	result := string(content) + edit.NewContent
	if err := atomicWrite(edit.FilePath, []byte(result)); err != nil {
		return nil, fmt.Errorf("writing %s: %w", edit.FilePath, err)
	}

	return &types.ApplyResult{
		FilePath:   edit.FilePath,
		Kind:       types.EditReplace,
		MatchType:  types.MatchExact,
		Confidence: 1.0,
		Start:      len(content),
	}, nil
}

// atomicWrite writes data to a temp file in the same directory, then renames
// it to the target path, so readers never see a half-written document.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	// Preserve original file permissions if the file exists.
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	f, err := os.CreateTemp(dir, ".go-splice-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
