// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command go-splice locates text fragments in documents and applies guarded
// edits to them, by hand, from a YAML plan, or from a language model.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-splice/internal/locate"
	"github.com/petar-djukic/go-splice/pkg/splice"
	"github.com/petar-djukic/go-splice/pkg/types"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "go-splice",
		Short:         "Locate and edit text fragments in documents",
		Long:          "go-splice finds fragments of text in documents even when they were copied with altered whitespace, markdown or wording, and applies replacements and insertions at the located spans only when the match is trustworthy.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().String("workdir", ".", "Directory the documents live in")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug traces to stderr")
	rootCmd.PersistentFlags().String("model", "", "Bedrock model ID")
	rootCmd.PersistentFlags().String("region", "", "AWS region for Bedrock")
	rootCmd.PersistentFlags().String("profile", "", "AWS credential profile")
	rootCmd.PersistentFlags().Int("max-retries", 3, "Maximum follow-up rounds for refused edits")
	rootCmd.PersistentFlags().Int("max-tokens", 4096, "Maximum tokens for a model response")
	rootCmd.PersistentFlags().String("check-cmd", "", "Document checker run on edited files (e.g., 'vale --output=line')")
	rootCmd.PersistentFlags().String("style-guide", "", "File holding a style guide for the model")
	rootCmd.PersistentFlags().Bool("no-git", false, "Disable git operations")

	// Bind flags to viper.
	for _, name := range []string{
		"workdir", "verbose", "model", "region", "profile", "max-retries",
		"max-tokens", "check-cmd", "style-guide", "no-git",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Engine tuning lives under engine.* in the config file and
	// GO_SPLICE_ENGINE_* in the environment.
	viper.SetDefault("engine.fuzzy_threshold", locate.DefaultFuzzyThreshold)
	viper.SetDefault("engine.fuzzy_timeout", locate.DefaultFuzzyTimeout)
	viper.SetDefault("engine.max_fuzzy_document", locate.DefaultMaxFuzzyDocument)
	viper.SetDefault("engine.max_fuzzy_target", locate.DefaultMaxFuzzyTarget)
	viper.SetDefault("engine.semantic_threshold", locate.DefaultSemanticThreshold)
	viper.SetDefault("engine.flexible_threshold", locate.DefaultFlexibleThreshold)
	viper.SetDefault("engine.context_radius", locate.DefaultContextRadius)

	// Env vars: GO_SPLICE_MODEL, GO_SPLICE_MAX_RETRIES, etc.
	viper.SetEnvPrefix("GO_SPLICE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".go-splice")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	rootCmd.AddCommand(newFindCmd())
	rootCmd.AddCommand(newReplaceCmd())
	rootCmd.AddCommand(newAnchorCmd())
	rootCmd.AddCommand(newInsertCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newReviseCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print go-splice version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("go-splice %s\n", version)
		},
	}
}

// newLogger returns a text logger on stderr: debug with --verbose, warn
// otherwise.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newEngine builds an engine from the engine.* settings.
func newEngine(logger *slog.Logger) (*splice.Engine, error) {
	var cfg splice.Config
	if err := viper.UnmarshalKey("engine", &cfg); err != nil {
		return nil, fmt.Errorf("reading engine settings: %w", err)
	}
	cfg.Logger = logger
	return splice.NewEngine(cfg)
}

// printJSON outputs v as indented JSON to stdout.
func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

// printError reports err on stderr in color. Refused anchors also print
// the suggested replacement anchor.
func printError(err error) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	red.Fprint(os.Stderr, "Error: ")
	fmt.Fprintln(os.Stderr, err)

	var ae *types.AnchorError
	if errors.As(err, &ae) && ae.HasSuggestion() {
		yellow.Fprint(os.Stderr, "Suggested anchor: ")
		fmt.Fprintf(os.Stderr, "%q\n", ae.Suggestion)
	}
	var re *types.ReplacementError
	if errors.As(err, &re) && re.ClosestMatch != "" {
		yellow.Fprintf(os.Stderr, "Closest match (lines %d-%d): ", re.ClosestLineStart, re.ClosestLineEnd)
		fmt.Fprintf(os.Stderr, "%q\n", re.ClosestMatch)
	}
}
