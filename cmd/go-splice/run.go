// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gitpkg "github.com/petar-djukic/go-splice/internal/git"
	"github.com/petar-djukic/go-splice/pkg/splice"
)

// newReviseCmd creates the "revise" command.
func newReviseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revise DOCUMENT...",
		Short: "Revise documents with a language model",
		Long:  "Revise sends the documents and an instruction to the model, applies the edits it proposes, asks again about any it could not apply, and commits the result.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRevise,
	}

	cmd.Flags().StringP("prompt", "p", "", "Editing instruction (required)")
	cmd.MarkFlagRequired("prompt")

	return cmd
}

// runRevise executes the revision.
func runRevise(cmd *cobra.Command, args []string) error {
	prompt, _ := cmd.Flags().GetString("prompt")
	logger := newLogger()

	styleGuide := ""
	if path := viper.GetString("style-guide"); path != "" {
		data, err := os.ReadFile(resolvePath(path))
		if err != nil {
			return fmt.Errorf("reading style guide: %w", err)
		}
		styleGuide = string(data)
	}

	engine, err := newEngine(logger)
	if err != nil {
		return err
	}

	a, err := splice.NewAssistant(splice.AssistantConfig{
		WorkDir:    viper.GetString("workdir"),
		Model:      viper.GetString("model"),
		Region:     viper.GetString("region"),
		Profile:    viper.GetString("profile"),
		MaxRetries: viper.GetInt("max-retries"),
		MaxTokens:  viper.GetInt("max-tokens"),
		CheckCmd:   viper.GetString("check-cmd"),
		StyleGuide: styleGuide,
		NoGit:      viper.GetBool("no-git"),
		Logger:     logger,
	}, engine)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := a.Revise(ctx, prompt, args)
	if result != nil {
		printJSON(result)
	}
	if err != nil {
		return err
	}
	if !result.Success {
		return errors.New("some edits could not be applied")
	}
	return nil
}

// newUndoCmd creates the "undo" command.
func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last go-splice commit",
		Long:  "Undo performs a soft reset of the last commit if it was made by go-splice. The edits stay staged.",
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir := viper.GetString("workdir")

			repo, err := gitpkg.Open(gitpkg.Config{WorkDir: workDir})
			if err != nil {
				return fmt.Errorf("opening repository: %w", err)
			}

			if err := repo.Undo(); err != nil {
				return fmt.Errorf("undo failed: %w", err)
			}

			color.New(color.FgGreen).Println("Reverted the last go-splice commit.")
			return nil
		},
	}
}
