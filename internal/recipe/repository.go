package recipe

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

// SavedRecipe is a recipe in a household cookbook.
type SavedRecipe struct {
	ID          int64       `json:"id"`
	HouseholdID string      `json:"-"`
	SourceURL   string      `json:"source_url,omitempty"`
	Recipe      meal.Recipe `json:"recipe"`
	CreatedAt   time.Time   `json:"created_at"`
}

type recipeRow struct {
	ID          int64     `db:"id"`
	HouseholdID string    `db:"household_id"`
	SourceURL   string    `db:"source_url"`
	Data        string    `db:"data"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r recipeRow) toSaved() (SavedRecipe, error) {
	var rec meal.Recipe
	if err := json.Unmarshal([]byte(r.Data), &rec); err != nil {
		return SavedRecipe{}, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return SavedRecipe{
		ID:          r.ID,
		HouseholdID: r.HouseholdID,
		SourceURL:   r.SourceURL,
		Recipe:      rec,
		CreatedAt:   r.CreatedAt,
	}, nil
}

// Repository is a database-backed cookbook.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a recipe and fills in its ID and creation time.
func (r *Repository) Save(ctx context.Context, rec *SavedRecipe) error {
	data, err := json.Marshal(rec.Recipe)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	rec.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO cookbook_recipes (household_id, source_url, title, data, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.HouseholdID, rec.SourceURL, rec.Recipe.Title, string(data), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read recipe id: %w", err)
	}
	return nil
}

// Get retrieves a household's recipe by ID, or nil when there is none.
func (r *Repository) Get(ctx context.Context, householdID string, id int64) (*SavedRecipe, error) {
	var row recipeRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, household_id, source_url, data, created_at FROM cookbook_recipes WHERE household_id = ? AND id = ?`,
		householdID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	saved, err := row.toSaved()
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// List returns the household's cookbook sorted by title.
func (r *Repository) List(ctx context.Context, householdID string) ([]SavedRecipe, error) {
	var rows []recipeRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, household_id, source_url, data, created_at FROM cookbook_recipes WHERE household_id = ? ORDER BY title COLLATE NOCASE, id`,
		householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := make([]SavedRecipe, 0, len(rows))
	for _, row := range rows {
		saved, err := row.toSaved()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, saved)
	}
	return recipes, nil
}
