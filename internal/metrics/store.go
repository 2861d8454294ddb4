package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"meal-planner/internal/shared"
)

// ExecutionMetric records metadata for a single agent execution.
type ExecutionMetric struct {
	AgentName        string    `db:"agent_name"`
	Model            string    `db:"model"`
	PromptTokens     int       `db:"prompt_tokens"`
	CompletionTokens int       `db:"completion_tokens"`
	LatencyMS        int64     `db:"latency_ms"`
	Timestamp        time.Time `db:"timestamp"`
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now()
	}
	m.Timestamp = m.Timestamp.UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO execution_metrics (agent_name, model, prompt_tokens, completion_tokens, latency_ms, timestamp)
		VALUES (:agent_name, :model, :prompt_tokens, :completion_tokens, :latency_ms, :timestamp)`, m)
	if err != nil {
		return fmt.Errorf("failed to record execution metric: %w", err)
	}
	return nil
}

// RecordMeta records metrics directly from shared.AgentMeta. Executions that
// used no tokens, such as cache hits, are skipped.
func (s *Store) RecordMeta(ctx context.Context, meta shared.AgentMeta) error {
	if !meta.Usage.Used() {
		return nil
	}
	return s.Record(ctx, MapUsage(meta.AgentName, meta.Usage, meta.Latency))
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string `db:"day" json:"date"`
	TotalPrompt     int    `db:"total_prompt" json:"total_prompt"`
	TotalCompletion int    `db:"total_completion" json:"total_completion"`
	TotalExecution  int    `db:"total_execution" json:"total_execution"`
}

// GetDailyUsage retrieves usage for the last N days, newest day first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := s.now().UTC().AddDate(0, 0, -days)

	usage := []DailyUsage{}
	err := s.db.SelectContext(ctx, &usage, `
		SELECT date(timestamp) AS day,
			COALESCE(SUM(prompt_tokens), 0) AS total_prompt,
			COALESCE(SUM(completion_tokens), 0) AS total_completion,
			COUNT(*) AS total_execution
		FROM execution_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	return usage, nil
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := s.now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM execution_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up execution metrics: %w", err)
	}
	return res.RowsAffected()
}

// MapUsage helper to convert shared.TokenUsage to ExecutionMetric.
func MapUsage(agentName string, usage shared.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		AgentName:        agentName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
	}
}
