// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package feedback

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/petar-djukic/go-splice/pkg/types"
)

const (
	defaultContextLines   = 3
	defaultMaxQuoted      = 2000
	defaultMaxCheckOutput = 4096
)

// FormatConfig configures failure formatting.
type FormatConfig struct {
	ContextLines   int // Document lines shown around a closest match (default 3)
	MaxQuoted      int // Maximum bytes of searched or anchor text quoted back (default 2000)
	MaxCheckOutput int // Maximum bytes of raw checker output (default 4096)
}

func (c FormatConfig) withDefaults() FormatConfig {
	if c.ContextLines == 0 {
		c.ContextLines = defaultContextLines
	}
	if c.MaxQuoted == 0 {
		c.MaxQuoted = defaultMaxQuoted
	}
	if c.MaxCheckOutput == 0 {
		c.MaxCheckOutput = defaultMaxCheckOutput
	}
	return c
}

// Problems collects what is still wrong after a round of edits.
type Problems struct {
	Failures []error      // Refused edits and unparseable blocks
	Check    *CheckResult // Document checker outcome, nil when not run
}

// None reports whether nothing is left to fix.
func (p *Problems) None() bool {
	return len(p.Failures) == 0 && (p.Check == nil || p.Check.OK)
}

// FormatFailures produces a follow-up prompt from the problems of the last
// round. Replacement failures quote the searched text and, for misses, the
// closest document lines. Anchor failures carry the reason and any
// suggested anchor. Checker findings follow.
func FormatFailures(p *Problems, modifiedFiles []string, cfg FormatConfig) string {
	cfg = cfg.withDefaults()
	var buf strings.Builder

	buf.WriteString("Some edits could not be applied and the affected text was left unchanged. ")
	buf.WriteString("Send corrected edits in the same block format, copying search and anchor text exactly from the document.\n\n")

	if len(modifiedFiles) > 0 {
		buf.WriteString("## Modified Documents\n\n")
		for _, f := range modifiedFiles {
			fmt.Fprintf(&buf, "- %s\n", f)
		}
		buf.WriteString("\n")
	}

	if len(p.Failures) > 0 {
		buf.WriteString("## Failed Edits\n\n")
		for _, err := range p.Failures {
			writeFailure(&buf, err, cfg)
		}
	}

	if p.Check != nil && !p.Check.OK {
		buf.WriteString("## Document Check\n\n")
		for _, issue := range p.Check.Issues {
			fmt.Fprintf(&buf, "- %s\n", issue)
		}
		if len(p.Check.Issues) == 0 && p.Check.Output != "" {
			buf.WriteString("```\n")
			buf.WriteString(truncate(p.Check.Output, cfg.MaxCheckOutput))
			buf.WriteString("\n```\n")
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

func writeFailure(buf *strings.Builder, err error, cfg FormatConfig) {
	var re *types.ReplacementError
	var ae *types.AnchorError
	switch {
	case errors.As(err, &re):
		fmt.Fprintf(buf, "### %s: %s\n\n", re.Kind, re.FilePath)
		if re.Message != "" {
			fmt.Fprintf(buf, "%s\n\n", re.Message)
		}
		buf.WriteString("Searched for:\n")
		writeQuoted(buf, truncate(re.Target, cfg.MaxQuoted))
		if re.ClosestMatch != "" {
			fmt.Fprintf(buf, "Closest match (lines %d-%d, similarity %.2f):\n",
				re.ClosestLineStart, re.ClosestLineEnd, re.Similarity)
			excerpt := documentContext(re.FilePath, re.ClosestLineStart, re.ClosestLineEnd, cfg.ContextLines)
			if excerpt == "" {
				excerpt = truncate(re.ClosestMatch, cfg.MaxQuoted)
			}
			writeQuoted(buf, excerpt)
		}

	case errors.As(err, &ae):
		fmt.Fprintf(buf, "### %s: %s\n\n", ae.Kind, ae.FilePath)
		if ae.Reason != "" {
			fmt.Fprintf(buf, "%s\n\n", ae.Reason)
		}
		buf.WriteString("Anchor:\n")
		writeQuoted(buf, truncate(ae.Anchor, cfg.MaxQuoted))
		if ae.HasSuggestion() {
			buf.WriteString("Suggested anchor:\n")
			writeQuoted(buf, ae.Suggestion)
		}

	default:
		fmt.Fprintf(buf, "### error\n\n%s\n\n", err)
	}
}

func writeQuoted(buf *strings.Builder, s string) {
	buf.WriteString("```\n")
	buf.WriteString(s)
	if !strings.HasSuffix(s, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString("```\n\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "\n... (truncated)"
}

// documentContext reads a document and returns numbered lines from
// contextLines before first to contextLines after last. Lines inside
// [first, last] are marked.
func documentContext(filePath string, first, last, contextLines int) string {
	if filePath == "" || first <= 0 {
		return ""
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return ""
	}

	lines := strings.Split(string(data), "\n")
	start := max(first-contextLines-1, 0)
	end := min(last+contextLines, len(lines))

	var buf strings.Builder
	for i := start; i < end; i++ {
		lineNum := i + 1
		marker := "  "
		if lineNum >= first && lineNum <= last {
			marker = "> "
		}
		fmt.Fprintf(&buf, "%s%4d │ %s\n", marker, lineNum, lines[i])
	}
	return buf.String()
}
