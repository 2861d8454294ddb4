// Package preferences stores each user's dietary profile.
package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"meal-planner/internal/meal"
	"meal-planner/internal/validation"
)

// Validate checks prefs against the field constraints declared on
// meal.UserPreferences.
func Validate(prefs meal.UserPreferences) error {
	return validation.Struct(prefs)
}

// Repository persists preferences as a JSON document per user.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new preferences repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the stored preferences of userID.
func (r *Repository) Get(ctx context.Context, userID string) (meal.UserPreferences, bool, error) {
	var data string
	err := r.db.GetContext(ctx, &data, `SELECT data FROM user_preferences WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return meal.UserPreferences{}, false, nil
		}
		return meal.UserPreferences{}, false, fmt.Errorf("failed to get preferences for user %s: %w", userID, err)
	}

	var prefs meal.UserPreferences
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		return meal.UserPreferences{}, false, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	return prefs, true, nil
}

// Save validates prefs and replaces whatever was stored for userID.
func (r *Repository) Save(ctx context.Context, userID string, prefs meal.UserPreferences) error {
	if err := Validate(prefs); err != nil {
		return err
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save preferences for user %s: %w", userID, err)
	}
	return nil
}
