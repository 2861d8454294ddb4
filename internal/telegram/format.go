package telegram

import (
	"fmt"
	"strings"

	"meal-planner/internal/meal"
	"meal-planner/internal/shopping"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatShoppingList renders an aggregated list as Telegram Markdown.
func FormatShoppingList(weekStart string, list shopping.CategorizedList) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*")
	if weekStart != "" {
		fmt.Fprintf(&sb, " (week of %s)", weekStart)
	}
	sb.WriteString("\n")

	sections := list.Ordered()
	if len(sections) == 0 {
		sb.WriteString("\n_Nothing to buy_\n")
		return sb.String()
	}

	for _, s := range sections {
		fmt.Fprintf(&sb, "\n*%s*\n", shopping.CategoryTitle(s.Category))
		for _, item := range s.Items {
			fmt.Fprintf(&sb, "• %s: %s %s\n", escape(item.Name), shopping.FormatQuantity(item.Quantity), escape(item.Unit))
		}
	}
	return sb.String()
}

// FormatPlan renders a plan summary grouped by day, with the total active
// time for the week.
func FormatPlan(weekStart string, plan meal.MealPlan) string {
	var sb strings.Builder
	sb.WriteString("📅 *Weekly Meal Plan*")
	if weekStart != "" {
		fmt.Fprintf(&sb, " (week of %s)", weekStart)
	}
	sb.WriteString("\n")

	byDay := make(map[meal.Day][]meal.Recipe)
	for _, r := range plan.Recipes {
		byDay[r.Day] = append(byDay[r.Day], r)
	}

	total := 0
	for _, day := range meal.Days {
		recipes := byDay[day]
		if len(recipes) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n*%s*\n", day)
		for _, r := range recipes {
			mins := r.PrepTimeMins + r.CookTimeMins
			total += mins
			fmt.Fprintf(&sb, "• _%s_: %s", r.MealType, escape(r.Title))
			if mins > 0 {
				fmt.Fprintf(&sb, " (%d mins)", mins)
			}
			sb.WriteString("\n")
		}
	}

	fmt.Fprintf(&sb, "\n⏱ *Total Prep:* %d mins\n", total)
	return sb.String()
}
