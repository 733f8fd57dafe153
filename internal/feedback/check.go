// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package feedback turns refused edits and document checker findings into
// follow-up prompts for the model, and runs the bounded retry loop.
package feedback

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultCheckTimeout = 60 * time.Second

// Issue is a single finding reported by the document checker.
type Issue struct {
	FilePath string // Document path as printed by the checker
	Line     int    // Line number (1-based)
	Column   int    // Column number (1-based, 0 if not available)
	Message  string // Finding text
}

func (i Issue) String() string {
	if i.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", i.FilePath, i.Line, i.Column, i.Message)
	}
	return fmt.Sprintf("%s:%d: %s", i.FilePath, i.Line, i.Message)
}

// CheckResult holds the outcome of running the document checker.
type CheckResult struct {
	OK      bool    // Checker exited successfully, or was not configured
	Skipped bool    // No checker configured or no documents to check
	Issues  []Issue // Parsed findings
	Output  string  // Raw checker output (stdout+stderr)
}

// CheckConfig configures the external document checker, such as a prose
// linter. The edited document paths are appended to Command's arguments.
type CheckConfig struct {
	WorkDir string        // Working directory for the command
	Command string        // Checker command line (empty to skip)
	Timeout time.Duration // Timeout for one run (default 60s)
}

// Check runs the configured checker over files. A non-zero exit marks the
// result as failed; lines of the form path:line[:col]: message are parsed
// into Issues.
func Check(ctx context.Context, cfg CheckConfig, files []string) *CheckResult {
	parts := strings.Fields(cfg.Command)
	if len(parts) == 0 || len(files) == 0 {
		return &CheckResult{OK: true, Skipped: true}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCheckTimeout
	}

	args := append(parts[1:], files...)
	out, err := runCommand(ctx, cfg.WorkDir, timeout, parts[0], args...)
	result := &CheckResult{OK: err == nil, Output: out}
	if !result.OK {
		result.Issues = parseIssues(out)
	}
	return result
}

// runCommand executes a command with a timeout and captures combined output.
func runCommand(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	return buf.String(), err
}

// issueRegex matches checker output lines:
// doc.md:10:5: message
// doc.md:10: message
var issueRegex = regexp.MustCompile(`^([^\s:][^:]*):(\d+)(?::(\d+))?:\s*(.+)$`)

func parseIssues(output string) []Issue {
	var issues []Issue
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		matches := issueRegex.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		lineNum, _ := strconv.Atoi(matches[2])
		colNum := 0
		if matches[3] != "" {
			colNum, _ = strconv.Atoi(matches[3])
		}

		issues = append(issues, Issue{
			FilePath: matches[1],
			Line:     lineNum,
			Column:   colNum,
			Message:  matches[4],
		})
	}
	return issues
}
