// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"
)

// Report aggregates logged questions over a rolling day window.
type Report struct {
	Days           int           `json:"days" yaml:"days"`
	TotalQuestions int           `json:"total_questions" yaml:"total_questions"`
	SuccessRate    float64       `json:"success_rate" yaml:"success_rate"`
	AvgResponseMS  float64       `json:"avg_response_ms" yaml:"avg_response_ms"`
	UniqueUsers    int           `json:"unique_users" yaml:"unique_users"`
	ActiveDays     int           `json:"active_days" yaml:"active_days"`
	Daily          []DayCount    `json:"daily" yaml:"daily"`
	TopQuestions   []TopQuestion `json:"top_questions" yaml:"top_questions"`
}

// DayCount is the question volume for one calendar day.
type DayCount struct {
	Day   string `json:"day" yaml:"day"`
	Count int    `json:"count" yaml:"count"`
}

// TopQuestion is a repeated question with its frequency.
type TopQuestion struct {
	Question string `json:"question" yaml:"question"`
	Count    int    `json:"count" yaml:"count"`
}

// BuildReport computes the aggregates over the last days days. days <= 0
// means 7.
func (s *Store) BuildReport(ctx context.Context, days int) (Report, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339Nano)
	report := Report{Days: days}

	var successes int
	var avgMS *float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(success), 0), AVG(response_time_ms)
		 FROM questions WHERE timestamp >= ?`, since,
	).Scan(&report.TotalQuestions, &successes, &avgMS)
	if err != nil {
		return Report{}, fmt.Errorf("computing totals: %w", err)
	}
	if report.TotalQuestions > 0 {
		report.SuccessRate = float64(successes) / float64(report.TotalQuestions)
	}
	if avgMS != nil {
		report.AvgResponseMS = *avgMS
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM questions
		 WHERE timestamp >= ? AND user_id IS NOT NULL AND user_id != ''`, since,
	).Scan(&report.UniqueUsers)
	if err != nil {
		return Report{}, fmt.Errorf("counting users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT substr(timestamp, 1, 10) AS day, COUNT(*)
		 FROM questions WHERE timestamp >= ?
		 GROUP BY day ORDER BY day`, since)
	if err != nil {
		return Report{}, fmt.Errorf("computing daily counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return Report{}, fmt.Errorf("scanning day row: %w", err)
		}
		report.Daily = append(report.Daily, dc)
	}
	if err := rows.Err(); err != nil {
		return Report{}, err
	}
	report.ActiveDays = len(report.Daily)

	topRows, err := s.db.QueryContext(ctx,
		`SELECT question, COUNT(*) AS n
		 FROM questions WHERE timestamp >= ?
		 GROUP BY question ORDER BY n DESC, question LIMIT 10`, since)
	if err != nil {
		return Report{}, fmt.Errorf("computing top questions: %w", err)
	}
	defer topRows.Close()
	for topRows.Next() {
		var tq TopQuestion
		if err := topRows.Scan(&tq.Question, &tq.Count); err != nil {
			return Report{}, fmt.Errorf("scanning top question row: %w", err)
		}
		report.TopQuestions = append(report.TopQuestions, tq)
	}
	return report, topRows.Err()
}

// WriteYAML renders the report as YAML to w.
func (r Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
