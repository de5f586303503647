// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pride-gateway/internal/archive"
	"github.com/pdiddy/pride-gateway/internal/llm"
	"github.com/pdiddy/pride-gateway/internal/pipeline"
	"github.com/pdiddy/pride-gateway/internal/tools"
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Answer one question about the PRIDE Archive",
	Long: `Ask runs a single question through the pipeline and prints the answer.
Pipeline progress goes to stderr; use --json for the full result record
including intent, tools called, and timing.`,
	Example: `  pride-gateway ask "What mouse cancer datasets are available?"
  pride-gateway ask --json "human heart proteome 2024"`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the full result record as JSON")
	askCmd.Flags().Bool("quiet", false, "suppress progress output")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a question")
	}
	question := strings.Join(args, " ")

	cfg := appConfig()
	runner := &tools.Runner{Archive: archive.NewClient(cfg.Archive)}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		if !errors.Is(err, llm.ErrNoCredential) {
			return err
		}
		fmt.Fprintln(os.Stderr, "No model API key configured; using deterministic fallbacks")
	}

	p := pipeline.New(runner, provider, cfg.LLM, cfg.Pipeline)
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		p.Progress = os.Stderr
	}

	result := p.Run(context.Background(), question)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println(result.FinalResponse)
	if !result.Success {
		return fmt.Errorf("no archive call succeeded")
	}
	return nil
}
