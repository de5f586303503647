// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pride-gateway/internal/notify"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send the usage report to the configured Slack webhook",
	Long: `Notify builds the aggregate usage report and posts it to the Slack
incoming webhook from the config or .secrets/slack-webhook-url. Intended
for a daily cron.`,
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().Int("days", 7, "report window in days")

	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	notifier := notify.NewNotifier(cfg.Notify.WebhookURL)
	if !notifier.Enabled() {
		return fmt.Errorf("no Slack webhook configured")
	}

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

	if _, err := notifier.Report(context.Background(), report); err != nil {
		return err
	}
	fmt.Printf("Report for the last %d days sent.\n", report.Days)
	return nil
}
