package plancache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"meal-planner/internal/meal"
)

// SQLiteBackend persists cached plans in the plan_cache table.
type SQLiteBackend struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
}

type cacheRow struct {
	PlanData  string        `db:"plan_data"`
	ExpiresAt sql.NullInt64 `db:"expires_at"`
}

// NewSQLiteBackend creates a backend over an already migrated database.
// A ttl of zero keeps entries forever.
func NewSQLiteBackend(db *sqlx.DB, ttl time.Duration) *SQLiteBackend {
	return &SQLiteBackend{db: db, ttl: ttl, now: time.Now}
}

// Get implements Backend.
func (b *SQLiteBackend) Get(ctx context.Context, key string) (meal.MealPlan, bool, error) {
	var row cacheRow
	err := b.db.GetContext(ctx, &row, `SELECT plan_data, expires_at FROM plan_cache WHERE cache_key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return meal.MealPlan{}, false, nil
		}
		return meal.MealPlan{}, false, fmt.Errorf("failed to query plan cache: %w", err)
	}

	if row.ExpiresAt.Valid && b.now().Unix() >= row.ExpiresAt.Int64 {
		return meal.MealPlan{}, false, nil
	}

	var plan meal.MealPlan
	if err := json.Unmarshal([]byte(row.PlanData), &plan); err != nil {
		return meal.MealPlan{}, false, fmt.Errorf("failed to unmarshal cached plan: %w", err)
	}
	return plan, true, nil
}

// Put implements Backend.
func (b *SQLiteBackend) Put(ctx context.Context, key string, plan meal.MealPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	now := b.now()
	var expiresAt sql.NullInt64
	if b.ttl > 0 {
		expiresAt = sql.NullInt64{Int64: now.Add(b.ttl).Unix(), Valid: true}
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO plan_cache (cache_key, plan_data, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			plan_data = excluded.plan_data,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		key, string(data), now.Unix(), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cached plan: %w", err)
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed.
func (b *SQLiteBackend) Purge(ctx context.Context) (int64, error) {
	res, err := b.db.ExecContext(ctx,
		`DELETE FROM plan_cache WHERE expires_at IS NOT NULL AND expires_at <= ?`, b.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge plan cache: %w", err)
	}
	return res.RowsAffected()
}
