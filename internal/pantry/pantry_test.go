package pantry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/database/dbtest"
	"meal-planner/internal/meal"
	"meal-planner/internal/shopping"
	"meal-planner/internal/validation"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.New(t))

	var oatsID int64
	t.Run("UpsertMergesCaseInsensitively", func(t *testing.T) {
		first, err := repo.Upsert(ctx, Item{HouseholdID: "h1", Name: "Oats", Quantity: 500, Unit: "g", Category: meal.CategoryPantry})
		require.NoError(t, err)
		oatsID = first.ID

		merged, err := repo.Upsert(ctx, Item{HouseholdID: "h1", Name: "oats", Quantity: 250, Unit: "g", Category: meal.CategoryPantry})
		require.NoError(t, err)
		assert.Equal(t, oatsID, merged.ID)
		assert.Equal(t, 750.0, merged.Quantity)
		assert.Equal(t, "Oats", merged.Name)
	})

	t.Run("DifferentUnitIsSeparate", func(t *testing.T) {
		_, err := repo.Upsert(ctx, Item{HouseholdID: "h1", Name: "Oats", Quantity: 1, Unit: "kg", Category: meal.CategoryPantry})
		require.NoError(t, err)

		items, err := repo.List(ctx, "h1")
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("ScopedByHousehold", func(t *testing.T) {
		items, err := repo.List(ctx, "h2")
		require.NoError(t, err)
		assert.Empty(t, items)

		assert.ErrorIs(t, repo.Delete(ctx, "h2", oatsID), ErrNotFound)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := repo.Upsert(ctx, Item{HouseholdID: "h1", Name: "Salt", Quantity: 0, Unit: "g", Category: meal.CategoryPantry})
		assert.ErrorIs(t, err, validation.ErrInvalid)
		_, err = repo.Upsert(ctx, Item{HouseholdID: "h1", Name: "Salt", Quantity: 1, Unit: "g", Category: "garage"})
		assert.ErrorIs(t, err, validation.ErrInvalid)
	})

	t.Run("Consume", func(t *testing.T) {
		left, err := repo.Consume(ctx, "h1", oatsID, 700)
		require.NoError(t, err)
		assert.Equal(t, 50.0, left)

		left, err = repo.Consume(ctx, "h1", oatsID, 100)
		require.NoError(t, err)
		assert.Zero(t, left)

		_, err = repo.Consume(ctx, "h1", oatsID, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestToStock(t *testing.T) {
	stock := ToStock([]Item{{Name: "Milk", Quantity: 1, Unit: "l", Category: meal.CategoryDairy}})
	assert.Equal(t, []shopping.Stock{{Name: "Milk", Quantity: 1, Unit: "l"}}, stock)
}
