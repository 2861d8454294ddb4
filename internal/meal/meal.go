// Package meal holds the domain types shared by the planner, the plan cache
// and the shopping list aggregator.
package meal

import (
	"fmt"
	"math"
	"strings"
)

// Category is the shopping-aisle classification attached to an ingredient.
type Category string

const (
	CategoryProduce   Category = "produce"
	CategoryProtein   Category = "protein"
	CategoryDairy     Category = "dairy"
	CategoryPantry    Category = "pantry"
	CategoryFrozen    Category = "frozen"
	CategoryBakery    Category = "bakery"
	CategoryBeverages Category = "beverages"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryProduce,
	CategoryProtein,
	CategoryDairy,
	CategoryPantry,
	CategoryFrozen,
	CategoryBakery,
	CategoryBeverages,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Day is a day of the planned week.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// Days lists the week starting on Monday.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Day) Valid() bool {
	for _, known := range Days {
		if d == known {
			return true
		}
	}
	return false
}

// MealType is the slot a recipe fills within a day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

func (m MealType) Valid() bool {
	switch m {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

// Difficulty grades how demanding a recipe is.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Ingredient is a single line of a recipe's ingredient list.
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Unit     string   `json:"unit"`
	Category Category `json:"category"`
}

// Nutrition holds per-serving macro estimates.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Recipe is a generated recipe assigned to a day and meal slot.
type Recipe struct {
	Day          Day          `json:"day"`
	MealType     MealType     `json:"mealType"`
	Title        string       `json:"title"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Nutrition    Nutrition    `json:"nutrition"`
	PrepTimeMins int          `json:"prepTimeMins"`
	CookTimeMins int          `json:"cookTimeMins"`
	Difficulty   Difficulty   `json:"difficulty"`
}

// MealPlan is a flat collection of recipes. Several recipes may share the
// same day and meal type.
type MealPlan struct {
	Recipes []Recipe `json:"recipes"`
}

// Clone returns a deep copy of the plan.
func (p MealPlan) Clone() MealPlan {
	if p.Recipes == nil {
		return MealPlan{}
	}
	out := MealPlan{Recipes: make([]Recipe, len(p.Recipes))}
	for i, r := range p.Recipes {
		out.Recipes[i] = r.Clone()
	}
	return out
}

// Clone returns a deep copy of the recipe.
func (r Recipe) Clone() Recipe {
	c := r
	if r.Ingredients != nil {
		c.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	}
	if r.Instructions != nil {
		c.Instructions = append([]string(nil), r.Instructions...)
	}
	return c
}

// Validate checks the schema constraints generated recipes must satisfy.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("recipe title is empty")
	}
	if !r.Day.Valid() {
		return fmt.Errorf("recipe %q: unknown day %q", r.Title, r.Day)
	}
	if !r.MealType.Valid() {
		return fmt.Errorf("recipe %q: unknown meal type %q", r.Title, r.MealType)
	}
	if !r.Difficulty.Valid() {
		return fmt.Errorf("recipe %q: unknown difficulty %q", r.Title, r.Difficulty)
	}
	if r.PrepTimeMins < 0 || r.CookTimeMins < 0 {
		return fmt.Errorf("recipe %q: negative preparation or cooking time", r.Title)
	}
	for i, ing := range r.Ingredients {
		if err := ing.Validate(); err != nil {
			return fmt.Errorf("recipe %q ingredient %d: %w", r.Title, i, err)
		}
	}
	return nil
}

// Validate checks every recipe of the plan.
func (p MealPlan) Validate() error {
	if len(p.Recipes) == 0 {
		return fmt.Errorf("meal plan has no recipes")
	}
	for _, r := range p.Recipes {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate reports the first problem found with the ingredient, if any.
func (i Ingredient) Validate() error {
	switch {
	case strings.TrimSpace(i.Name) == "":
		return fmt.Errorf("missing name")
	case strings.TrimSpace(i.Unit) == "":
		return fmt.Errorf("missing unit")
	case math.IsNaN(i.Quantity) || math.IsInf(i.Quantity, 0):
		return fmt.Errorf("quantity is not a finite number")
	case i.Quantity <= 0:
		return fmt.Errorf("quantity must be positive, got %v", i.Quantity)
	case !i.Category.Valid():
		return fmt.Errorf("unknown category %q", i.Category)
	}
	return nil
}
