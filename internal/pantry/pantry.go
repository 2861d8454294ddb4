// Package pantry tracks what a household already has at home.
package pantry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"meal-planner/internal/meal"
	"meal-planner/internal/shopping"
	"meal-planner/internal/validation"
)

// ErrNotFound is returned when an item does not exist in the household's pantry.
var ErrNotFound = errors.New("pantry item not found")

// Item is one stocked ingredient.
type Item struct {
	ID          int64         `json:"id" db:"id"`
	HouseholdID string        `json:"-" db:"household_id"`
	Name        string        `json:"name" db:"name" validate:"required"`
	Quantity    float64       `json:"quantity" db:"quantity" validate:"gt=0"`
	Unit        string        `json:"unit" db:"unit" validate:"required"`
	Category    meal.Category `json:"category" db:"category" validate:"required"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// Validate checks the item's fields.
func (i Item) Validate() error {
	if err := validation.Struct(i); err != nil {
		return err
	}
	if !i.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", validation.ErrInvalid, i.Category)
	}
	return nil
}

// ToStock converts pantry items for shopping.Subtract.
func ToStock(items []Item) []shopping.Stock {
	stock := make([]shopping.Stock, 0, len(items))
	for _, it := range items {
		stock = append(stock, shopping.Stock{Name: it.Name, Quantity: it.Quantity, Unit: it.Unit})
	}
	return stock
}

// Repository handles persistence of pantry items.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository creates a new pantry repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

const itemColumns = `id, household_id, name, unit, quantity, category, updated_at`

// List returns the household's items ordered by name.
func (r *Repository) List(ctx context.Context, householdID string) ([]Item, error) {
	items := []Item{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+itemColumns+` FROM pantry_items WHERE household_id = ? ORDER BY name_key, unit`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry items: %w", err)
	}
	return items, nil
}

// Upsert adds item to the pantry. An item with the same name (ignoring case)
// and unit is topped up instead of duplicated. It returns the stored item.
func (r *Repository) Upsert(ctx context.Context, item Item) (Item, error) {
	if err := item.Validate(); err != nil {
		return Item{}, err
	}

	var stored Item
	err := r.db.GetContext(ctx, &stored, `
		INSERT INTO pantry_items (household_id, name, name_key, unit, quantity, category, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (household_id, name_key, unit) DO UPDATE SET
			quantity = pantry_items.quantity + excluded.quantity,
			updated_at = excluded.updated_at
		RETURNING `+itemColumns,
		item.HouseholdID, item.Name, strings.ToLower(item.Name), item.Unit, item.Quantity, item.Category, r.now().UTC(),
	)
	if err != nil {
		return Item{}, fmt.Errorf("failed to upsert pantry item: %w", err)
	}
	return stored, nil
}

// Delete removes an item.
func (r *Repository) Delete(ctx context.Context, householdID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pantry_items WHERE household_id = ? AND id = ?`, householdID, id)
	if err != nil {
		return fmt.Errorf("failed to delete pantry item: %w", err)
	}
	return requireRow(res)
}

// Consume takes amount off an item and removes it once nothing is left.
// It returns the remaining quantity.
func (r *Repository) Consume(ctx context.Context, householdID string, id int64, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", validation.ErrInvalid)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var qty float64
	err = tx.GetContext(ctx, &qty, `SELECT quantity FROM pantry_items WHERE household_id = ? AND id = ?`, householdID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to read pantry item: %w", err)
	}

	remaining := qty - amount
	if remaining <= 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM pantry_items WHERE id = ?`, id)
		remaining = 0
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE pantry_items SET quantity = ?, updated_at = ? WHERE id = ?`,
			remaining, r.now().UTC(), id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to consume pantry item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit pantry update: %w", err)
	}
	return remaining, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
