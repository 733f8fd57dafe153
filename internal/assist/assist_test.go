// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package assist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-splice/pkg/types"
)

// mockPrompter implements Prompter for testing.
type mockPrompter struct {
	responses []string // Responses to return in order.
	callCount int
	lastUser  string // Text of the last user message seen
	usage     types.TokenUsage
}

func (m *mockPrompter) Generate(_ context.Context, _ []brtypes.SystemContentBlock, messages []brtypes.Message) (string, error) {
	if len(messages) > 0 {
		last := messages[len(messages)-1]
		if len(last.Content) > 0 {
			if tb, ok := last.Content[0].(*brtypes.ContentBlockMemberText); ok {
				m.lastUser = tb.Value
			}
		}
	}
	if m.callCount >= len(m.responses) {
		return "", errors.New("no more mock responses")
	}
	resp := m.responses[m.callCount]
	m.callCount++
	m.usage.InputTokens += 500
	m.usage.OutputTokens += 200
	return resp, nil
}

func (m *mockPrompter) Usage() types.TokenUsage {
	return m.usage
}

const story = "The night was dark. Teh rain fell on the roof.\n\nShe waited by the door.\n"

func TestRunner_SuccessfulEdit(t *testing.T) {
	dir := setupDocs(t, map[string]string{"story.md": story})

	mock := &mockPrompter{
		responses: []string{`Fixed the typo.

story.md
<<<<<<< SEARCH
Teh rain fell
=======
The rain fell
>>>>>>> REPLACE
`},
	}

	runner := NewRunner(Deps{Prompter: mock, WorkDir: dir, MaxRetries: 1, NoGit: true})
	result, err := runner.Run(context.Background(), "fix the typo", []string{"story.md"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"story.md"}, result.ModifiedFiles)
	assert.Equal(t, 700, result.TokensUsed.Total())
	assert.Equal(t, "Fixed the typo.", result.Notes)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, mock.callCount)

	content := readDoc(t, dir, "story.md")
	assert.Equal(t, strings.Replace(story, "Teh", "The", 1), content)
}

func TestRunner_SingleDocumentNeedsNoPath(t *testing.T) {
	dir := setupDocs(t, map[string]string{"story.md": story})

	mock := &mockPrompter{
		responses: []string{`<<<<<<< AFTER
She waited by the door.
=======
 Nobody came.
>>>>>>> INSERT
`},
	}

	runner := NewRunner(Deps{Prompter: mock, WorkDir: dir, MaxRetries: 1, NoGit: true})
	result, err := runner.Run(context.Background(), "add an ending", []string{"story.md"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Contains(t, readDoc(t, dir, "story.md"), "She waited by the door. Nobody came.\n")
}

func TestRunner_RetriesRefusedEdit(t *testing.T) {
	dir := setupDocs(t, map[string]string{"story.md": story})

	mock := &mockPrompter{
		responses: []string{
			`story.md
<<<<<<< SEARCH
A sentence that appears nowhere in this document at all, really.
=======
Replaced.
>>>>>>> REPLACE
`,
			`story.md
<<<<<<< SEARCH
She waited by the door.
=======
She waited by the window.
>>>>>>> REPLACE
`,
		},
	}

	runner := NewRunner(Deps{Prompter: mock, WorkDir: dir, MaxRetries: 2, NoGit: true})
	result, err := runner.Run(context.Background(), "change the setting", []string{"story.md"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Retries)
	assert.Equal(t, 2, mock.callCount)
	assert.Contains(t, mock.lastUser, "## Failed Edits")
	assert.Contains(t, mock.lastUser, "A sentence that appears nowhere")
	assert.Contains(t, readDoc(t, dir, "story.md"), "She waited by the window.")
}

func TestRunner_RetriesExhausted(t *testing.T) {
	dir := setupDocs(t, map[string]string{"story.md": story})

	miss := `story.md
<<<<<<< SEARCH
A sentence that appears nowhere in this document at all, really.
=======
Replaced.
>>>>>>> REPLACE
`
	mock := &mockPrompter{responses: []string{miss, miss}}

	runner := NewRunner(Deps{Prompter: mock, WorkDir: dir, MaxRetries: 1, NoGit: true})
	result, err := runner.Run(context.Background(), "change it", []string{"story.md"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Retries)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no match")
	assert.Equal(t, story, readDoc(t, dir, "story.md"))
}

func TestRunner_RejectsOtherDocuments(t *testing.T) {
	dir := setupDocs(t, map[string]string{
		"story.md": story,
		"other.md": "The night was dark.\n",
	})

	mock := &mockPrompter{
		responses: []string{`other.md
<<<<<<< SEARCH
The night was dark.
=======
The night was bright.
>>>>>>> REPLACE
`},
	}

	runner := NewRunner(Deps{Prompter: mock, WorkDir: dir, MaxRetries: 1, NoGit: true})
	result, err := runner.Run(context.Background(), "brighten", []string{"story.md"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "not one of the documents being edited")
	assert.Equal(t, "The night was dark.\n", readDoc(t, dir, "other.md"))
}

func TestRunner_ParseFailure(t *testing.T) {
	dir := setupDocs(t, map[string]string{"story.md": story})

	mock := &mockPrompter{
		responses: []string{"I'm not sure what to change. Can you clarify?"},
	}

	runner := NewRunner(Deps{Prompter: mock, WorkDir: dir, MaxRetries: 1, NoGit: true})
	_, err := runner.Run(context.Background(), "do something", []string{"story.md"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestRunner_InputErrors(t *testing.T) {
	dir := setupDocs(t, map[string]string{"story.md": story})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "chapters"), 0o755))

	tests := []struct {
		name    string
		paths   []string
		wantErr string
	}{
		{"no documents", nil, "no documents given"},
		{"missing document", []string{"missing.md"}, "reading missing.md"},
		{"directory", []string{"chapters"}, "is a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockPrompter{responses: []string{"anything"}}
			runner := NewRunner(Deps{Prompter: mock, WorkDir: dir, NoGit: true})

			_, err := runner.Run(context.Background(), "edit", tt.paths)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, 0, mock.callCount)
		})
	}
}

func TestRunner_ContextCancellation(t *testing.T) {
	dir := setupDocs(t, map[string]string{"story.md": story})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(Deps{
		Prompter: &mockPrompter{responses: []string{"anything"}},
		WorkDir:  dir,
		NoGit:    true,
	})

	_, err := runner.Run(ctx, "edit", []string{"story.md"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_NoLLMClient(t *testing.T) {
	dir := setupDocs(t, map[string]string{"story.md": story})

	runner := NewRunner(Deps{WorkDir: dir, NoGit: true})

	_, err := runner.Run(context.Background(), "edit", []string{"story.md"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no LLM client")
}

func TestRunner_CommitsWithGit(t *testing.T) {
	dir := setupDocs(t, map[string]string{"story.md": story})
	initRepo(t, dir)

	mock := &mockPrompter{
		responses: []string{`story.md
<<<<<<< SEARCH
Teh rain
=======
The rain
>>>>>>> REPLACE
`},
	}

	runner := NewRunner(Deps{Prompter: mock, WorkDir: dir, MaxRetries: 1})
	result, err := runner.Run(context.Background(), "Fix the typo", []string{"story.md"})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.NotEmpty(t, result.Commit)

	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)
	head, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, result.Commit, head.Hash().String())

	commit, err := r.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(commit.Message, "fix: fix the typo"))
	assert.Contains(t, commit.Message, "- story.md")
}

func TestReadDocuments(t *testing.T) {
	dir := setupDocs(t, map[string]string{
		"a.md":       "A.\n",
		"notes/b.md": "B.\n",
	})

	runner := NewRunner(Deps{WorkDir: dir})
	docs, err := runner.readDocuments([]string{"a.md", filepath.Join(dir, "notes", "b.md"), "a.md"})
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "a.md", docs[0].Path)
	assert.Equal(t, "A.\n", docs[0].Content)
	assert.Equal(t, filepath.Join("notes", "b.md"), docs[1].Path)
}

func TestReadDocuments_TooLarge(t *testing.T) {
	dir := setupDocs(t, map[string]string{
		"big.md": strings.Repeat("x", maxDocumentSize+1),
	})

	runner := NewRunner(Deps{WorkDir: dir})
	_, err := runner.readDocuments([]string{"big.md"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than")
}

func TestRelative(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(Deps{WorkDir: dir})

	assert.Equal(t, "a.md", runner.relative(filepath.Join(dir, "a.md")))
	outside := filepath.Join(filepath.Dir(dir), "x.md")
	assert.Equal(t, outside, runner.relative(outside))
}

// setupDocs creates a temp dir holding the given documents.
func setupDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return dir
}

// initRepo makes dir a git repository with everything in it committed.
func initRepo(t *testing.T, dir string) {
	t.Helper()

	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))

	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func readDoc(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}
