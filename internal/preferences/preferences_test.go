package preferences

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/database/dbtest"
	"meal-planner/internal/meal"
	"meal-planner/internal/validation"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		prefs   meal.UserPreferences
		wantErr bool
	}{
		{name: "Empty", prefs: meal.UserPreferences{}},
		{name: "Full", prefs: meal.UserPreferences{
			DietaryRestrictions: []string{"vegan"},
			DailyCalorieGoal:    1800,
			MaxCookingTimeMins:  meal.IntPtr(20),
			BudgetLevel:         meal.IntPtr(5),
		}},
		{name: "NegativeCalories", prefs: meal.UserPreferences{DailyCalorieGoal: -1}, wantErr: true},
		{name: "BudgetTooHigh", prefs: meal.UserPreferences{BudgetLevel: meal.IntPtr(6)}, wantErr: true},
		{name: "BudgetTooLow", prefs: meal.UserPreferences{BudgetLevel: meal.IntPtr(0)}, wantErr: true},
		{name: "ZeroCookingTime", prefs: meal.UserPreferences{MaxCookingTimeMins: meal.IntPtr(0)}, wantErr: true},
		{name: "BlankAllergy", prefs: meal.UserPreferences{Allergies: []string{""}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.prefs)
			if tt.wantErr {
				assert.ErrorIs(t, err, validation.ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.New(t))

	t.Run("Missing", func(t *testing.T) {
		_, ok, err := repo.Get(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SaveAndOverwrite", func(t *testing.T) {
		first := meal.UserPreferences{DietaryRestrictions: []string{"vegan"}, DailyCalorieGoal: 1800}
		require.NoError(t, repo.Save(ctx, "u1", first))

		second := meal.UserPreferences{Allergies: []string{"nuts"}, BudgetLevel: meal.IntPtr(2)}
		require.NoError(t, repo.Save(ctx, "u1", second))

		got, ok, err := repo.Get(ctx, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, second, got)
	})

	t.Run("InvalidIsNotSaved", func(t *testing.T) {
		err := repo.Save(ctx, "u2", meal.UserPreferences{BudgetLevel: meal.IntPtr(9)})
		assert.ErrorIs(t, err, validation.ErrInvalid)

		_, ok, err := repo.Get(ctx, "u2")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
