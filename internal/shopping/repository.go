package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type listRow struct {
	ID          int64     `db:"id"`
	MealPlanID  int64     `db:"meal_plan_id"`
	HouseholdID string    `db:"household_id"`
	Items       string    `db:"items"`
	CreatedAt   time.Time `db:"created_at"`
}

// Save stores the list for its meal plan, replacing any previous one.
func (r *Repository) Save(ctx context.Context, list *ShoppingList) (int64, error) {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}

	var id int64
	err = r.db.GetContext(ctx, &id, `
		INSERT INTO shopping_lists (meal_plan_id, household_id, items, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (meal_plan_id) DO UPDATE SET
			items = excluded.items,
			created_at = excluded.created_at
		RETURNING id`,
		list.MealPlanID, list.HouseholdID, string(itemsJSON), list.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping list: %w", err)
	}

	list.ID = id
	return id, nil
}

// GetByMealPlanID retrieves a shopping list by meal plan ID. It returns nil
// when the plan has no stored list.
func (r *Repository) GetByMealPlanID(ctx context.Context, mealPlanID int64) (*ShoppingList, error) {
	var row listRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, meal_plan_id, household_id, items, created_at FROM shopping_lists WHERE meal_plan_id = ?`,
		mealPlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping list by meal plan ID: %w", err)
	}

	var items CategorizedList
	if err := json.Unmarshal([]byte(row.Items), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}

	return &ShoppingList{
		ID:          row.ID,
		HouseholdID: row.HouseholdID,
		MealPlanID:  row.MealPlanID,
		Items:       items,
		CreatedAt:   row.CreatedAt,
	}, nil
}

// DeleteByMealPlanID deletes a shopping list by meal plan ID.
func (r *Repository) DeleteByMealPlanID(ctx context.Context, mealPlanID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE meal_plan_id = ?`, mealPlanID); err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	return nil
}
