package shopping

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"meal-planner/internal/meal"
)

// ErrMalformedIngredient is matched by every *MalformedIngredientError.
var ErrMalformedIngredient = errors.New("malformed ingredient")

// MalformedIngredientError identifies the ingredient that stopped an
// aggregation.
type MalformedIngredientError struct {
	RecipeTitle string
	Index       int
	Reason      string
}

func (e *MalformedIngredientError) Error() string {
	return fmt.Sprintf("malformed ingredient %d in recipe %q: %s", e.Index, e.RecipeTitle, e.Reason)
}

func (e *MalformedIngredientError) Is(target error) bool {
	return target == ErrMalformedIngredient
}

// AggregatedIngredient is one shopping list line: the summed quantity of an
// ingredient across every recipe that uses it in the same unit.
type AggregatedIngredient struct {
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Unit     string   `json:"unit"`
	Recipes  []string `json:"recipes"`
}

// CategorizedList groups shopping list lines by aisle. Categories without
// lines are absent.
type CategorizedList map[meal.Category][]AggregatedIngredient

// Section is one category of a CategorizedList.
type Section struct {
	Category meal.Category          `json:"category"`
	Items    []AggregatedIngredient `json:"items"`
}

// Ordered returns the non-empty sections in meal.Categories order.
func (l CategorizedList) Ordered() []Section {
	var sections []Section
	for _, c := range meal.Categories {
		if items := l[c]; len(items) > 0 {
			sections = append(sections, Section{Category: c, Items: items})
		}
	}
	return sections
}

// Len returns the number of lines across all categories.
func (l CategorizedList) Len() int {
	n := 0
	for _, items := range l {
		n += len(items)
	}
	return n
}

type itemKey struct {
	name string
	unit string
}

func keyOf(name, unit string) itemKey {
	return itemKey{name: strings.ToLower(name), unit: unit}
}

type mergedItem struct {
	category meal.Category
	item     AggregatedIngredient
	seen     map[string]struct{}
}

// Aggregate merges the ingredients of recipes into a shopping list.
//
// Ingredients are identified by lowercased name and unit; quantities are
// summed and the titles of contributing recipes are kept once each in first
// seen order. The first occurrence decides the display name and the
// category. Within a category, lines keep first-encounter order. Any
// malformed ingredient, or a sum that overflows, fails the whole call.
func Aggregate(recipes []meal.Recipe) (CategorizedList, error) {
	for _, r := range recipes {
		for i, ing := range r.Ingredients {
			if err := ing.Validate(); err != nil {
				return nil, &MalformedIngredientError{RecipeTitle: r.Title, Index: i, Reason: err.Error()}
			}
		}
	}

	merged := make(map[itemKey]*mergedItem)
	var order []itemKey

	for _, r := range recipes {
		for i, ing := range r.Ingredients {
			k := keyOf(ing.Name, ing.Unit)

			m, ok := merged[k]
			if !ok {
				m = &mergedItem{
					category: ing.Category,
					item: AggregatedIngredient{
						Name: ing.Name,
						Unit: ing.Unit,
					},
					seen: make(map[string]struct{}),
				}
				merged[k] = m
				order = append(order, k)
			}

			m.item.Quantity += ing.Quantity
			if math.IsInf(m.item.Quantity, 0) {
				return nil, &MalformedIngredientError{RecipeTitle: r.Title, Index: i, Reason: fmt.Sprintf("total quantity of %q overflows", m.item.Name)}
			}
			if _, dup := m.seen[r.Title]; !dup {
				m.seen[r.Title] = struct{}{}
				m.item.Recipes = append(m.item.Recipes, r.Title)
			}
		}
	}

	list := make(CategorizedList)
	for _, k := range order {
		m := merged[k]
		list[m.category] = append(list[m.category], m.item)
	}
	return list, nil
}
