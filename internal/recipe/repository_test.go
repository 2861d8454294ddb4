package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/database/dbtest"
	"meal-planner/internal/meal"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.New(t))

	soup := &SavedRecipe{HouseholdID: "h1", SourceURL: "https://example.com/soup", Recipe: meal.Recipe{
		Title:       "soup",
		Ingredients: []meal.Ingredient{{Name: "Leek", Quantity: 2, Unit: "pc", Category: meal.CategoryProduce}},
		Difficulty:  meal.Easy,
	}}
	bread := &SavedRecipe{HouseholdID: "h1", Recipe: meal.Recipe{Title: "Bread", Difficulty: meal.Hard}}

	require.NoError(t, repo.Save(ctx, soup))
	require.NoError(t, repo.Save(ctx, bread))
	require.NoError(t, repo.Save(ctx, &SavedRecipe{HouseholdID: "h2", Recipe: meal.Recipe{Title: "Other"}}))

	t.Run("List", func(t *testing.T) {
		list, err := repo.List(ctx, "h1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Bread", list[0].Recipe.Title)
		assert.Equal(t, "soup", list[1].Recipe.Title)
	})

	t.Run("Get", func(t *testing.T) {
		got, err := repo.Get(ctx, "h1", soup.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, soup.Recipe, got.Recipe)
		assert.Equal(t, "https://example.com/soup", got.SourceURL)

		other, err := repo.Get(ctx, "h2", soup.ID)
		require.NoError(t, err)
		assert.Nil(t, other)
	})
}
