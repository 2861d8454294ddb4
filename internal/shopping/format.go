package shopping

import (
	"fmt"
	"strconv"
	"strings"

	"meal-planner/internal/meal"
)

var categoryTitles = map[meal.Category]string{
	meal.CategoryProduce:   "Produce",
	meal.CategoryProtein:   "Protein",
	meal.CategoryDairy:     "Dairy",
	meal.CategoryPantry:    "Pantry",
	meal.CategoryFrozen:    "Frozen",
	meal.CategoryBakery:    "Bakery",
	meal.CategoryBeverages: "Beverages",
}

// CategoryTitle returns the heading used for c in rendered lists.
func CategoryTitle(c meal.Category) string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}

// FormatQuantity renders q without trailing zeros.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// FormatText renders the list as plain text, one section per category.
func FormatText(list CategorizedList) string {
	sections := list.Ordered()
	if len(sections) == 0 {
		return "Shopping list is empty.\n"
	}

	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s\n", CategoryTitle(s.Category))
		for _, item := range s.Items {
			fmt.Fprintf(&sb, "- %s: %s %s (%s)\n",
				item.Name, FormatQuantity(item.Quantity), item.Unit, strings.Join(item.Recipes, ", "))
		}
	}
	return sb.String()
}
