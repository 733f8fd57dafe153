// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package editformat turns model responses and edit plans into Edit values
// and routes them to the replacement and insertion appliers.
package editformat

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/go-splice/pkg/types"
)

const markerDivider = "======="

// blockSyntax pairs the opening and closing markers of one block form.
type blockSyntax struct {
	open  string
	close string
	kind  types.EditKind
}

var syntaxes = []blockSyntax{
	{open: "<<<<<<< SEARCH", close: ">>>>>>> REPLACE", kind: types.EditReplace},
	{open: "<<<<<<< AFTER", close: ">>>>>>> INSERT", kind: types.EditInsert},
}

// ParseError describes a malformed edit block in a response.
type ParseError struct {
	Position int    // Line number where the block starts (1-based)
	RawText  string // The raw text of the malformed block
	Message  string // What went wrong
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Position, e.Message)
}

// NoEditsFoundError is returned when the response contains no edit blocks.
type NoEditsFoundError struct{}

func (e *NoEditsFoundError) Error() string {
	return "no edit blocks found in response"
}

// ParseResult holds the outcome of parsing a response.
type ParseResult struct {
	Edits         []types.Edit  // Successfully parsed edits
	ParseErrors   []*ParseError // Errors from malformed blocks
	ReasoningText string        // Non-edit text from the response
	BlocksFound   int           // Total blocks attempted
	BlocksParsed  int           // Blocks that produced valid edits
}

// Parse extracts SEARCH/REPLACE and AFTER/INSERT blocks from a response.
// Each block must be preceded by a line naming its document.
func Parse(response string) (*ParseResult, error) {
	return ParseFor(response, "")
}

// ParseFor is Parse with a fallback document path for blocks that do not
// name one. Block text is taken verbatim between the markers, without the
// newline that precedes each marker.
func ParseFor(response, defaultPath string) (*ParseResult, error) {
	if strings.TrimSpace(response) == "" {
		return nil, &NoEditsFoundError{}
	}

	result := &ParseResult{}
	lines := strings.Split(response, "\n")
	var reasoning strings.Builder
	i := 0

	for i < len(lines) {
		openIdx, syntax := nextOpening(lines, i)
		if openIdx < 0 {
			for ; i < len(lines); i++ {
				appendReasoning(&reasoning, lines[i])
			}
			break
		}

		// The line just before the opening marker may name the document.
		filePath := ""
		pathLine := openIdx - 1
		if pathLine >= i {
			filePath = extractFilePath(lines[pathLine])
		}
		if filePath == "" {
			pathLine = openIdx
		}
		for ; i < pathLine; i++ {
			appendReasoning(&reasoning, lines[i])
		}
		if filePath == "" {
			filePath = defaultPath
		}

		i = openIdx + 1
		result.BlocksFound++

		first, next, ok := collectUntil(lines, i, markerDivider)
		i = next
		if !ok {
			result.ParseErrors = append(result.ParseErrors, &ParseError{
				Position: openIdx + 1,
				RawText:  reconstructBlock(lines, openIdx, i),
				Message:  "unclosed block: missing " + markerDivider + " divider",
			})
			continue
		}

		second, next, ok := collectUntil(lines, i, syntax.close)
		i = next
		if !ok {
			result.ParseErrors = append(result.ParseErrors, &ParseError{
				Position: openIdx + 1,
				RawText:  reconstructBlock(lines, openIdx, i),
				Message:  "unclosed block: missing " + syntax.close + " marker",
			})
			continue
		}

		// Skip a trailing markdown fence after the closing marker.
		if i < len(lines) && isMarkdownFence(lines[i]) {
			i++
		}

		if filePath == "" {
			result.ParseErrors = append(result.ParseErrors, &ParseError{
				Position: openIdx + 1,
				RawText:  reconstructBlock(lines, openIdx, i),
				Message:  "missing document path before " + syntax.open + " marker",
			})
			continue
		}

		edit := types.Edit{Kind: syntax.kind, FilePath: filePath, NewContent: second}
		if syntax.kind == types.EditInsert {
			if strings.TrimSpace(first) == "" {
				result.ParseErrors = append(result.ParseErrors, &ParseError{
					Position: openIdx + 1,
					RawText:  reconstructBlock(lines, openIdx, i),
					Message:  "insertion block has an empty anchor",
				})
				continue
			}
			edit.Anchor = first
		} else {
			edit.OldContent = first
		}

		result.Edits = append(result.Edits, edit)
		result.BlocksParsed++
	}

	result.ReasoningText = strings.TrimSpace(reasoning.String())

	if result.BlocksFound == 0 {
		return nil, &NoEditsFoundError{}
	}

	return result, nil
}

// nextOpening returns the index of the first opening marker at or after
// from, with its block syntax, or -1.
func nextOpening(lines []string, from int) (int, blockSyntax) {
	for j := from; j < len(lines); j++ {
		for _, s := range syntaxes {
			if isMarker(lines[j], s.open) {
				return j, s
			}
		}
	}
	return -1, blockSyntax{}
}

// collectUntil joins lines from i up to the marker line and returns the
// text, the index after the marker, and whether the marker was found.
func collectUntil(lines []string, i int, marker string) (string, int, bool) {
	start := i
	for ; i < len(lines); i++ {
		if isMarker(lines[i], marker) {
			return strings.Join(lines[start:i], "\n"), i + 1, true
		}
	}
	return strings.Join(lines[start:], "\n"), i, false
}

// extractFilePath cleans a document path line, stripping markdown fences,
// backticks and surrounding whitespace. Lines that read like prose yield "".
func extractFilePath(line string) string {
	s := strings.TrimSpace(line)
	if isMarkdownFence(s) {
		return ""
	}

	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)

	if strings.ContainsAny(s, " \t") && !strings.Contains(s, "/") {
		return ""
	}
	if strings.HasSuffix(s, ":") {
		return ""
	}
	return s
}

// isMarker checks if a line matches a marker, allowing leading/trailing whitespace.
func isMarker(line, marker string) bool {
	return strings.TrimSpace(line) == marker
}

// isMarkdownFence checks if a line is a markdown fence (``` with optional language).
func isMarkdownFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

// reconstructBlock joins lines from start to end for error reporting.
func reconstructBlock(lines []string, start, end int) string {
	end = min(end, len(lines))
	return strings.Join(lines[start:end], "\n")
}

func appendReasoning(b *strings.Builder, line string) {
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(line)
}
