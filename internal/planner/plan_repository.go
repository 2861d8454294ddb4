package planner

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

// StoredPlan is a meal plan saved for a household.
type StoredPlan struct {
	ID          int64         `json:"id"`
	HouseholdID string        `json:"household_id"`
	WeekStart   string        `json:"week_start"`
	Servings    int           `json:"servings"`
	CacheKey    string        `json:"cache_key"`
	Plan        meal.MealPlan `json:"plan"`
	CreatedAt   time.Time     `json:"created_at"`
}

type planRow struct {
	ID          int64     `db:"id"`
	HouseholdID string    `db:"household_id"`
	WeekStart   string    `db:"week_start"`
	Servings    int       `db:"servings"`
	CacheKey    string    `db:"cache_key"`
	PlanData    string    `db:"plan_data"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r planRow) toPlan() (StoredPlan, error) {
	var plan meal.MealPlan
	if err := json.Unmarshal([]byte(r.PlanData), &plan); err != nil {
		return StoredPlan{}, fmt.Errorf("failed to unmarshal meal plan %d: %w", r.ID, err)
	}
	return StoredPlan{
		ID:          r.ID,
		HouseholdID: r.HouseholdID,
		WeekStart:   r.WeekStart,
		Servings:    r.Servings,
		CacheKey:    r.CacheKey,
		Plan:        plan,
		CreatedAt:   r.CreatedAt,
	}, nil
}

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, household_id, week_start, servings, cache_key, plan_data, created_at`

// Save inserts a new meal plan and sets its ID and creation time.
func (r *PlanRepository) Save(ctx context.Context, p *StoredPlan) error {
	data, err := json.Marshal(p.Plan)
	if err != nil {
		return fmt.Errorf("failed to marshal meal plan: %w", err)
	}

	p.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO meal_plans (household_id, week_start, servings, cache_key, plan_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.HouseholdID, p.WeekStart, p.Servings, p.CacheKey, string(data), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meal plan: %w", err)
	}

	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read meal plan id: %w", err)
	}
	return nil
}

// Get returns the plan with the given ID, or nil when there is none.
func (r *PlanRepository) Get(ctx context.Context, id int64) (*StoredPlan, error) {
	var row planRow
	err := r.db.GetContext(ctx, &row, `SELECT `+planColumns+` FROM meal_plans WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal plan %d: %w", id, err)
	}

	plan, err := row.toPlan()
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListRecentByHousehold retrieves the N most recent meal plans for a household.
func (r *PlanRepository) ListRecentByHousehold(ctx context.Context, householdID string, limit int) ([]StoredPlan, error) {
	var rows []planRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+planColumns+` FROM meal_plans WHERE household_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		householdID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for household %s: %w", householdID, err)
	}

	plans := make([]StoredPlan, 0, len(rows))
	for _, row := range rows {
		plan, err := row.toPlan()
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// LatestForWeek returns the household's newest plan for weekStart, or nil
// when it has none.
func (r *PlanRepository) LatestForWeek(ctx context.Context, householdID, weekStart string) (*StoredPlan, error) {
	var row planRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+planColumns+` FROM meal_plans WHERE household_id = ? AND week_start = ? ORDER BY id DESC LIMIT 1`,
		householdID, weekStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal plan for week %s: %w", weekStart, err)
	}

	plan, err := row.toPlan()
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ExistsForWeek reports whether the household already has a plan for weekStart.
func (r *PlanRepository) ExistsForWeek(ctx context.Context, householdID, weekStart string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM meal_plans WHERE household_id = ? AND week_start = ?)`,
		householdID, weekStart)
	if err != nil {
		return false, fmt.Errorf("failed to check meal plan for week: %w", err)
	}
	return exists, nil
}
