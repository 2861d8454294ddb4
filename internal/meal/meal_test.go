package meal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecipe() Recipe {
	return Recipe{
		Day:          Monday,
		MealType:     Dinner,
		Title:        "Lentil Soup",
		Ingredients:  []Ingredient{{Name: "Lentils", Quantity: 200, Unit: "g", Category: CategoryPantry}},
		Instructions: []string{"Simmer."},
		PrepTimeMins: 5,
		CookTimeMins: 30,
		Difficulty:   Easy,
	}
}

func TestIngredientValidate(t *testing.T) {
	tests := []struct {
		name string
		ing  Ingredient
		ok   bool
	}{
		{"Valid", Ingredient{Name: "Oats", Quantity: 1, Unit: "g", Category: CategoryPantry}, true},
		{"MissingName", Ingredient{Name: " ", Quantity: 1, Unit: "g", Category: CategoryPantry}, false},
		{"MissingUnit", Ingredient{Name: "Oats", Quantity: 1, Category: CategoryPantry}, false},
		{"ZeroQuantity", Ingredient{Name: "Oats", Unit: "g", Category: CategoryPantry}, false},
		{"NegativeQuantity", Ingredient{Name: "Oats", Quantity: -2, Unit: "g", Category: CategoryPantry}, false},
		{"NaN", Ingredient{Name: "Oats", Quantity: math.NaN(), Unit: "g", Category: CategoryPantry}, false},
		{"Infinite", Ingredient{Name: "Oats", Quantity: math.Inf(1), Unit: "g", Category: CategoryPantry}, false},
		{"UnknownCategory", Ingredient{Name: "Oats", Quantity: 1, Unit: "g", Category: "snacks"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ing.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRecipeValidate(t *testing.T) {
	require.NoError(t, sampleRecipe().Validate())

	r := sampleRecipe()
	r.Day = "Someday"
	assert.Error(t, r.Validate())

	r = sampleRecipe()
	r.MealType = "brunch"
	assert.Error(t, r.Validate())

	r = sampleRecipe()
	r.CookTimeMins = -1
	assert.Error(t, r.Validate())

	r = sampleRecipe()
	r.Ingredients[0].Unit = ""
	assert.ErrorContains(t, r.Validate(), "ingredient 0")

	assert.Error(t, MealPlan{}.Validate())
	assert.NoError(t, MealPlan{Recipes: []Recipe{sampleRecipe(), sampleRecipe()}}.Validate())
}

func TestClone(t *testing.T) {
	orig := MealPlan{Recipes: []Recipe{sampleRecipe()}}
	c := orig.Clone()

	c.Recipes[0].Title = "Changed"
	c.Recipes[0].Ingredients[0].Quantity = 999
	c.Recipes[0].Instructions[0] = "Burn."

	assert.Equal(t, "Lentil Soup", orig.Recipes[0].Title)
	assert.Equal(t, 200.0, orig.Recipes[0].Ingredients[0].Quantity)
	assert.Equal(t, "Simmer.", orig.Recipes[0].Instructions[0])

	assert.Nil(t, MealPlan{}.Clone().Recipes)
}

func TestCategories(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("Produce").Valid())
	assert.True(t, Saturday.Valid())
	assert.False(t, Day("monday").Valid())
}
