// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pride-gateway/internal/analytics"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Inspect the question analytics log",
	Long: `Analytics reads the SQLite question log the gateway writes. Use the
report subcommand for aggregate usage numbers, or questions to list raw
question records.`,
}

// --- report subcommand ---

var analyticsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate usage report over the last N days",
	RunE:  runAnalyticsReport,
}

func runAnalyticsReport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	days, _ := cmd.Flags().GetInt("days")
	report, err := store.BuildReport(context.Background(), days)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml":
		return report.WriteYAML(os.Stdout)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return fmt.Errorf("unknown format %q: use yaml or json", format)
	}
}

// --- questions subcommand ---

var analyticsQuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List logged question records, newest first",
	RunE:  runAnalyticsQuestions,
}

func runAnalyticsQuestions(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := analytics.QueryOptions{}
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	opts.UserID, _ = cmd.Flags().GetString("user")
	if sinceStr, _ := cmd.Flags().GetString("since"); sinceStr != "" {
		since, err := time.Parse("2006-01-02", sinceStr)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}
		opts.Since = since
	}

	records, err := store.Questions(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No questions logged.")
		return nil
	}
	for _, r := range records {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		fmt.Printf("%s  %-6s  %6dms  %s\n",
			r.Timestamp.Format("2006-01-02 15:04"), status, r.ResponseTimeMS, r.Question)
	}
	return nil
}

func openStore() (*analytics.Store, error) {
	cfg := appConfig()
	if _, err := os.Stat(cfg.Analytics.DatabasePath); err != nil {
		return nil, fmt.Errorf("no analytics database at %s", cfg.Analytics.DatabasePath)
	}
	return analytics.NewStore(cfg.Analytics.DatabasePath)
}

func init() {
	analyticsReportCmd.Flags().Int("days", 7, "report window in days")
	analyticsReportCmd.Flags().String("format", "yaml", "output format: yaml or json")

	analyticsQuestionsCmd.Flags().Int("limit", 50, "maximum records to list")
	analyticsQuestionsCmd.Flags().String("user", "", "filter by user id")
	analyticsQuestionsCmd.Flags().String("since", "", "only records on or after this date (YYYY-MM-DD)")
	analyticsQuestionsCmd.Flags().Bool("json", false, "output records as JSON")

	analyticsCmd.AddCommand(analyticsReportCmd)
	analyticsCmd.AddCommand(analyticsQuestionsCmd)
	rootCmd.AddCommand(analyticsCmd)
}
