// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify sends gateway events to a Slack incoming webhook. An
// empty webhook URL disables the notifier; every send then reports
// skipped without error.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/pride-gateway/internal/analytics"
)

// Notifier posts messages to a Slack incoming webhook.
type Notifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewNotifier returns a Notifier with a 10s client timeout.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && n.WebhookURL != ""
}

// message is the Slack webhook payload: plain text plus optional Block
// Kit blocks.
type message struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks,omitempty"`
}

type block struct {
	Type string     `json:"type"`
	Text *blockText `json:"text,omitempty"`
}

type blockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func section(markdown string) block {
	return block{Type: "section", Text: &blockText{Type: "mrkdwn", Text: markdown}}
}

func header(text string) block {
	return block{Type: "header", Text: &blockText{Type: "plain_text", Text: text}}
}

// Question announces one answered question. Returns (false, nil) when
// the notifier is disabled.
func (n *Notifier) Question(ctx context.Context, question, userID string, responseTimeMS int64, success bool) (bool, error) {
	if !n.Enabled() {
		return false, nil
	}
	status := "answered"
	if !success {
		status = "degraded"
	}
	if userID == "" {
		userID = "anonymous"
	}
	msg := message{
		Text: fmt.Sprintf("Question %s in %dms (%s): %s", status, responseTimeMS, userID, question),
	}
	return true, n.post(ctx, msg)
}

// Report sends a usage report as a Block Kit message.
func (n *Notifier) Report(ctx context.Context, r analytics.Report) (bool, error) {
	if !n.Enabled() {
		return false, nil
	}

	summary := fmt.Sprintf(
		"*Questions:* %d\n*Success rate:* %.1f%%\n*Avg response:* %.0fms\n*Unique users:* %d\n*Active days:* %d",
		r.TotalQuestions, r.SuccessRate*100, r.AvgResponseMS, r.UniqueUsers, r.ActiveDays,
	)
	blocks := []block{
		header(fmt.Sprintf("PRIDE Gateway usage, last %d days", r.Days)),
		section(summary),
	}
	if len(r.TopQuestions) > 0 {
		var top bytes.Buffer
		top.WriteString("*Top questions:*\n")
		for _, tq := range r.TopQuestions {
			fmt.Fprintf(&top, "• %s (%d)\n", tq.Question, tq.Count)
		}
		blocks = append(blocks, section(top.String()))
	}

	msg := message{
		Text:   fmt.Sprintf("PRIDE Gateway report: %d questions over %d days", r.TotalQuestions, r.Days),
		Blocks: blocks,
	}
	return true, n.post(ctx, msg)
}

// Error announces an operational failure.
func (n *Notifier) Error(ctx context.Context, what, detail string) (bool, error) {
	if !n.Enabled() {
		return false, nil
	}
	msg := message{Text: fmt.Sprintf(":warning: %s: %s", what, detail)}
	return true, n.post(ctx, msg)
}

func (n *Notifier) post(ctx context.Context, msg message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding Slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("Slack webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
