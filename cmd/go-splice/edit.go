// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-splice/internal/editformat"
	"github.com/petar-djukic/go-splice/pkg/splice"
	"github.com/petar-djukic/go-splice/pkg/types"
)

// newFindCmd creates the "find" command.
func newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Locate a fragment in a document",
		Long:  "Find reports where a fragment of text occurs in a document, which strategy matched it, and how confident the match is.",
		RunE:  runFind,
	}

	cmd.Flags().StringP("doc", "d", "", "Document to search (required)")
	cmd.Flags().StringP("target", "t", "", "Fragment to locate, or @file to read it from a file (required)")
	cmd.Flags().Int("radius", 0, "Bytes of surrounding context to report (default from config)")
	cmd.MarkFlagRequired("doc")
	cmd.MarkFlagRequired("target")

	return cmd
}

func runFind(cmd *cobra.Command, args []string) error {
	doc, target, err := docAndText(cmd, "target")
	if err != nil {
		return err
	}
	radius, _ := cmd.Flags().GetInt("radius")

	engine, err := newEngine(newLogger())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	res := engine.Find(ctx, doc, target, radius)
	printJSON(res)
	if !res.Found() {
		return fmt.Errorf("fragment not found (%s)", res.MatchType)
	}
	return nil
}

// newReplaceCmd creates the "replace" command.
func newReplaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Replace a fragment in a document",
		Long:  "Replace locates the original text and substitutes the new text for the matched span. The document is left untouched when the match is missing or untrustworthy.",
		RunE:  runReplace,
	}

	cmd.Flags().StringP("doc", "d", "", "Document to edit (required)")
	cmd.Flags().String("from", "", "Original text, or @file (required)")
	cmd.Flags().String("to", "", "Replacement text, or @file")
	cmd.Flags().Bool("dry-run", false, "Print the edited document instead of writing it")
	cmd.MarkFlagRequired("doc")
	cmd.MarkFlagRequired("from")

	return cmd
}

func runReplace(cmd *cobra.Command, args []string) error {
	to, err := textFlag(cmd, "to")
	if err != nil {
		return err
	}
	return runEdit(cmd, "from", func(ctx context.Context, e *splice.Engine, path, from string, dryRun bool) (*types.ApplyResult, string, error) {
		if dryRun {
			doc, err := readDoc(path)
			if err != nil {
				return nil, "", err
			}
			out, ar, err := e.ApplyReplacement(ctx, doc, from, to)
			return ar, out, err
		}
		ar, err := e.Applier().Apply(ctx, types.Edit{
			Kind:       types.EditReplace,
			FilePath:   path,
			OldContent: from,
			NewContent: to,
		})
		return ar, "", err
	})
}

// newAnchorCmd creates the "anchor" command.
func newAnchorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anchor",
		Short: "Check that new text can follow an anchor",
		Long:  "Anchor locates the anchor text and reports the insertion point after it, or why inserting there would split a sentence or quotation.",
		RunE:  runAnchor,
	}

	cmd.Flags().StringP("doc", "d", "", "Document to search (required)")
	cmd.Flags().StringP("anchor", "a", "", "Anchor text, or @file (required)")
	cmd.MarkFlagRequired("doc")
	cmd.MarkFlagRequired("anchor")

	return cmd
}

func runAnchor(cmd *cobra.Command, args []string) error {
	doc, anchor, err := docAndText(cmd, "anchor")
	if err != nil {
		return err
	}

	engine, err := newEngine(newLogger())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	point, err := engine.ValidateAnchor(ctx, doc, anchor)
	if err != nil {
		return err
	}
	printJSON(struct {
		InsertionPoint int `json:"insertion_point"`
	}{point})
	return nil
}

// newInsertCmd creates the "insert" command.
func newInsertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Insert text after an anchor",
		Long:  "Insert validates the anchor and inserts the new text just after it. The document is left untouched when the anchor is refused.",
		RunE:  runInsert,
	}

	cmd.Flags().StringP("doc", "d", "", "Document to edit (required)")
	cmd.Flags().StringP("after", "a", "", "Anchor text, or @file (required)")
	cmd.Flags().String("text", "", "Text to insert, or @file (required)")
	cmd.Flags().Bool("dry-run", false, "Print the edited document instead of writing it")
	cmd.MarkFlagRequired("doc")
	cmd.MarkFlagRequired("after")
	cmd.MarkFlagRequired("text")

	return cmd
}

func runInsert(cmd *cobra.Command, args []string) error {
	text, err := textFlag(cmd, "text")
	if err != nil {
		return err
	}
	return runEdit(cmd, "after", func(ctx context.Context, e *splice.Engine, path, anchor string, dryRun bool) (*types.ApplyResult, string, error) {
		if dryRun {
			doc, err := readDoc(path)
			if err != nil {
				return nil, "", err
			}
			out, ar, err := e.InsertAfter(ctx, doc, anchor, text)
			return ar, out, err
		}
		ar, err := e.Applier().Apply(ctx, types.Edit{
			Kind:       types.EditInsert,
			FilePath:   path,
			Anchor:     anchor,
			NewContent: text,
		})
		return ar, "", err
	})
}

type editFunc func(ctx context.Context, e *splice.Engine, path, text string, dryRun bool) (*types.ApplyResult, string, error)

// runEdit is the shared body of replace and insert. In a dry run the edited
// document goes to stdout; otherwise the apply result does.
func runEdit(cmd *cobra.Command, textName string, fn editFunc) error {
	docFlag, _ := cmd.Flags().GetString("doc")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	text, err := textFlag(cmd, textName)
	if err != nil {
		return err
	}

	engine, err := newEngine(newLogger())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	ar, out, err := fn(ctx, engine, resolvePath(docFlag), text, dryRun)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Print(out)
		return nil
	}
	printJSON(ar)
	return nil
}

// newApplyCmd creates the "apply" command.
func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply PLAN",
		Short: "Apply a YAML edit plan",
		Long:  "Apply reads a YAML plan of replacements and insertions and applies each in order. A refused edit does not stop the rest; the command fails if any edit was refused.",
		Args:  cobra.ExactArgs(1),
		RunE:  runApply,
	}
}

func runApply(cmd *cobra.Command, args []string) error {
	plan, err := editformat.LoadPlan(resolvePath(args[0]))
	if err != nil {
		return err
	}

	engine, err := newEngine(newLogger())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	router := &editformat.Router{Applier: engine.Applier()}
	result := router.ApplyAll(ctx, plan.ToEdits())

	errs := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = e.Error()
	}
	printJSON(struct {
		Applied []*types.ApplyResult `json:"applied"`
		Errors  []string             `json:"errors,omitempty"`
	}{result.Applied, errs})

	if result.Failed() {
		return fmt.Errorf("%d of %d edits refused", len(result.Errors), len(result.Errors)+len(result.Applied))
	}
	return nil
}

// docAndText reads the --doc document and the text flag named name.
func docAndText(cmd *cobra.Command, name string) (string, string, error) {
	docFlag, _ := cmd.Flags().GetString("doc")
	doc, err := readDoc(resolvePath(docFlag))
	if err != nil {
		return "", "", err
	}
	text, err := textFlag(cmd, name)
	if err != nil {
		return "", "", err
	}
	return doc, text, nil
}

// textFlag returns the value of a text flag. A value starting with @ names
// a file holding the text, relative to the working directory.
func textFlag(cmd *cobra.Command, name string) (string, error) {
	v, _ := cmd.Flags().GetString(name)
	if !strings.HasPrefix(v, "@") {
		return v, nil
	}
	data, err := os.ReadFile(resolvePath(v[1:]))
	if err != nil {
		return "", fmt.Errorf("reading --%s: %w", name, err)
	}
	return string(data), nil
}

func readDoc(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return string(data), nil
}

// resolvePath interprets relative paths against --workdir.
func resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(viper.GetString("workdir"), p)
}
