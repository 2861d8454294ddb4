package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/database/dbtest"
	"meal-planner/internal/shared"
)

func TestCollector(t *testing.T) {
	c := NewCollector("test")

	c.CacheHit()
	c.CacheMiss()
	c.CacheMiss()
	c.PlanServed(true)
	c.PlanServed(false)
	c.PlanServed(false)
	c.TokensUsed("Planner", 100, 40)
	c.ObserveHTTP("GET", "/plans", "200", 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.CacheMisses))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.PlansGenerated.WithLabelValues("generated")))
	assert.Equal(t, 40.0, testutil.ToFloat64(c.LLMTokens.WithLabelValues("Planner", "completion")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_plan_cache_hits_total 1")
	assert.Contains(t, string(body), `test_http_requests_total{method="GET",route="/plans",status="200"} 1`)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s := NewStore(dbtest.New(t))
	s.now = func() time.Time { return now }

	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "Planner", Model: "m", PromptTokens: 100, CompletionTokens: 50, Timestamp: now.Add(-time.Hour)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "Planner", Model: "m", PromptTokens: 10, CompletionTokens: 5, Timestamp: now.Add(-2 * time.Hour)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "Cook", Model: "m", PromptTokens: 1, CompletionTokens: 1, Timestamp: now.AddDate(0, 0, -1)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "Old", Model: "m", PromptTokens: 1, CompletionTokens: 1, Timestamp: now.AddDate(0, 0, -40)}))

	t.Run("RecordMetaSkipsEmptyUsage", func(t *testing.T) {
		require.NoError(t, s.RecordMeta(ctx, shared.AgentMeta{AgentName: "Planner"}))
		usage, err := s.GetDailyUsage(ctx, 60)
		require.NoError(t, err)
		total := 0
		for _, u := range usage {
			total += u.TotalExecution
		}
		assert.Equal(t, 4, total)
	})

	t.Run("GetDailyUsage", func(t *testing.T) {
		usage, err := s.GetDailyUsage(ctx, 7)
		require.NoError(t, err)
		require.Len(t, usage, 2)
		assert.Equal(t, DailyUsage{Date: "2026-10-19", TotalPrompt: 110, TotalCompletion: 55, TotalExecution: 2}, usage[0])
		assert.Equal(t, "2026-10-18", usage[1].Date)
	})

	t.Run("Cleanup", func(t *testing.T) {
		removed, err := s.Cleanup(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
	})
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.db"), make([]byte, 2048), 0o644))

	h := GetSysHealth(dir)
	assert.Equal(t, "2.0 KiB", h.DataDiskSize)
	assert.Positive(t, h.Goroutines)
	assert.NotEmpty(t, h.Alloc)
}
