// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package splice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-splice/internal/assist"
	"github.com/petar-djukic/go-splice/pkg/types"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(Config{})
	require.NoError(t, err)
	return e
}

func TestEngine_FindExactAtInsertedOffset(t *testing.T) {
	e := newTestEngine(t)
	target := "a fragment worth finding"

	for _, offset := range []int{0, 17, 60} {
		base := strings.Repeat("Filler text keeps going. ", 4)
		doc := base[:offset] + target + base[offset:]

		res := e.Find(context.Background(), doc, target, 0)
		assert.Equal(t, offset, res.StartOffset)
		assert.Equal(t, 1.0, res.Confidence)
		assert.True(t, res.IsExactMatch)
		assert.Equal(t, types.MatchExact, res.MatchType)
		assert.Equal(t, doc[res.StartOffset:res.End()], res.MatchedText)
	}
}

func TestEngine_FindNormalizedWhitespace(t *testing.T) {
	e := newTestEngine(t)

	res := e.Find(context.Background(), "The cat sat on the mat.", "cat  sat   on the mat", 0)
	assert.Equal(t, types.MatchNormalizedWhitespace, res.MatchType)
	assert.Equal(t, "cat sat on the mat", res.MatchedText)
	assert.InDelta(t, 0.85, res.Confidence, 1e-9)
	assert.False(t, res.IsExactMatch)
}

func TestEngine_FindContextRadius(t *testing.T) {
	doc := strings.Repeat("a", 50) + "needle" + strings.Repeat("b", 50)

	e, err := NewEngine(Config{ContextRadius: 5})
	require.NoError(t, err)

	res := e.Find(context.Background(), doc, "needle", 0)
	assert.Equal(t, "aaaaaneedlebbbbb", res.Context)

	res = e.Find(context.Background(), doc, "needle", 2)
	assert.Equal(t, "aaneedlebb", res.Context)
}

func TestEngine_FindAbsentAndCancelled(t *testing.T) {
	e := newTestEngine(t)

	res := e.Find(context.Background(), "Nothing to see here.", "", 0)
	assert.Equal(t, types.MatchNoMatch, res.MatchType)
	assert.False(t, res.Found())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res = e.Find(ctx, "Nothing to see here.", "see", 0)
	assert.Equal(t, types.MatchCancelled, res.MatchType)
	assert.Equal(t, -1, res.StartOffset)
}

func TestEngine_ApplyReplacement(t *testing.T) {
	e := newTestEngine(t)

	out, ar, err := e.ApplyReplacement(context.Background(), "I saw teh dog run.", "teh dog", "the dog")
	require.NoError(t, err)
	assert.Equal(t, "I saw the dog run.", out)
	assert.Equal(t, 6, ar.Start)
	assert.Equal(t, 7, ar.Length)
}

func TestEngine_ApplyReplacementRefused(t *testing.T) {
	e := newTestEngine(t)

	out, ar, err := e.ApplyReplacement(context.Background(), "", "teh dog", "the dog")
	assert.ErrorIs(t, err, types.ErrInputEmpty)
	assert.Empty(t, out)
	assert.Nil(t, ar)

	var re *types.ReplacementError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, types.KindInputEmpty, re.Kind)
}

func TestEngine_ValidateAnchor(t *testing.T) {
	e := newTestEngine(t)
	doc := "The cat sat on the mat. It purred."

	point, err := e.ValidateAnchor(context.Background(), doc, "The cat sat on the mat.")
	require.NoError(t, err)
	assert.Equal(t, len("The cat sat on the mat."), point)

	point, err = e.ValidateAnchor(context.Background(), doc, "the cat sat on th")
	assert.Equal(t, -1, point)
	assert.ErrorIs(t, err, types.ErrAnchorIncomplete)

	var ae *types.AnchorError
	require.True(t, errors.As(err, &ae))
	assert.True(t, ae.HasSuggestion())
}

func TestEngine_InsertAfter(t *testing.T) {
	e := newTestEngine(t)

	out, ar, err := e.InsertAfter(context.Background(), "First. Third.", "First.", " Second.")
	require.NoError(t, err)
	assert.Equal(t, "First. Second. Third.", out)
	assert.Equal(t, 6, ar.Start)
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e := newTestEngine(t)
	doc := "I saw teh dog run. The cat sat on the mat."

	errs := make(chan error, 8)
	for range 8 {
		go func() {
			_, _, err := e.ApplyReplacement(context.Background(), doc, "teh dog", "the dog")
			errs <- err
		}()
	}
	for range 8 {
		assert.NoError(t, <-errs)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"fuzzy threshold above one", Config{FuzzyThreshold: 1.5}},
		{"negative semantic threshold", Config{SemanticThreshold: -0.1}},
		{"flexible threshold above one", Config{FlexibleThreshold: 2}},
		{"negative timeout", Config{FuzzyTimeout: -time.Second}},
		{"negative document limit", Config{MaxFuzzyDocument: -1}},
		{"negative radius", Config{ContextRadius: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewAssistant_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name    string
		cfg     AssistantConfig
		wantErr string
	}{
		{"missing workdir", AssistantConfig{Model: "m", Region: "r"}, "WorkDir is required"},
		{"workdir is a file", AssistantConfig{WorkDir: file, Model: "m", Region: "r"}, "not a directory"},
		{"missing model", AssistantConfig{WorkDir: dir, Region: "r"}, "Model is required"},
		{"missing region", AssistantConfig{WorkDir: dir, Model: "m"}, "Region is required"},
		{"negative retries", AssistantConfig{WorkDir: dir, Model: "m", Region: "r", MaxRetries: -1}, "MaxRetries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAssistant(tt.cfg, nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// scriptedPrompter answers with canned responses.
type scriptedPrompter struct {
	responses []string
	calls     int
}

var _ assist.Prompter = (*scriptedPrompter)(nil)

func (p *scriptedPrompter) Generate(_ context.Context, _ []brtypes.SystemContentBlock, _ []brtypes.Message) (string, error) {
	if p.calls >= len(p.responses) {
		return "", errors.New("no more responses")
	}
	p.calls++
	return p.responses[p.calls-1], nil
}

func (p *scriptedPrompter) Usage() types.TokenUsage {
	return types.TokenUsage{InputTokens: 100 * p.calls, OutputTokens: 50 * p.calls}
}

func TestAssistant_Revise(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.md"), []byte("Meet me at  the\nstation at noon.\n"), 0o644))

	cfg := AssistantConfig{WorkDir: dir, Model: "m", Region: "r", NoGit: true}
	applyAssistantDefaults(&cfg)
	a := newAssistant(cfg, newTestEngine(t), assist.Deps{
		Prompter: &scriptedPrompter{responses: []string{`note.md
<<<<<<< SEARCH
Meet me at the station at noon.
=======
Meet me at the station at one.
>>>>>>> REPLACE
`}},
	})

	res, err := a.Revise(context.Background(), "move the meeting to one", []string{"note.md"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"note.md"}, res.ModifiedFiles)
	assert.Equal(t, 150, res.TokensUsed.Total())

	data, err := os.ReadFile(filepath.Join(dir, "note.md"))
	require.NoError(t, err)
	assert.Equal(t, "Meet me at the station at one.\n", string(data))
}

func TestAssistant_ReviseParseFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.md"), []byte("Hello.\n"), 0o644))

	cfg := AssistantConfig{WorkDir: dir, Model: "m", Region: "r", NoGit: true}
	applyAssistantDefaults(&cfg)
	a := newAssistant(cfg, newTestEngine(t), assist.Deps{
		Prompter: &scriptedPrompter{responses: []string{"Looks fine to me."}},
	})

	res, err := a.Revise(context.Background(), "polish", []string{"note.md"})
	assert.ErrorIs(t, err, ErrParseFailure)
	require.NotNil(t, res)
	assert.False(t, res.Success)
}

func TestEngine_Applier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("I saw teh dog run.\n"), 0o644))

	ar, err := newTestEngine(t).Applier().Apply(context.Background(), types.Edit{
		Kind:       types.EditReplace,
		FilePath:   path,
		OldContent: "teh dog",
		NewContent: "the dog",
	})
	require.NoError(t, err)
	assert.Equal(t, path, ar.FilePath)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "I saw the dog run.\n", string(data))
}
