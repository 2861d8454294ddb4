package app

import (
	"context"
	"fmt"
	"io"

	"meal-planner/internal/meal"
	"meal-planner/internal/shopping"
)

// CLIUser is the identity plans made from the command line are saved under.
const CLIUser = "cli"

// GenerateMealPlan creates a meal plan and prints it with its shopping list.
func (a *App) GenerateMealPlan(ctx context.Context, w io.Writer, prefs meal.UserPreferences, weekStart string, servings int) error {
	out, err := a.PlanWeek(ctx, CLIUser, PlanInput{
		Preferences: &prefs,
		WeekStart:   weekStart,
		Servings:    servings,
	})
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	p := out.Plan
	source := "generated"
	if out.Cached {
		source = "cached"
	}
	fmt.Fprintf(w, "=== WEEKLY MEAL PLAN (%s, %d servings, %s) ===\n", p.WeekStart, p.Servings, source)
	if out.Replaced {
		fmt.Fprintln(w, "(replaces an earlier plan for this week)")
	}
	for _, day := range meal.Days {
		for _, r := range p.Plan.Recipes {
			if r.Day != day {
				continue
			}
			fmt.Fprintf(w, "%-10s %-10s %s (%d min)\n", day, r.MealType, r.Title, r.PrepTimeMins+r.CookTimeMins)
		}
	}

	list, err := a.buildShoppingList(ctx, p, false)
	if err != nil {
		return fmt.Errorf("failed to build shopping list: %w", err)
	}

	fmt.Fprintln(w, "\n=== SHOPPING LIST ===")
	fmt.Fprint(w, shopping.FormatText(list.Items))
	return nil
}

// CleanupMetrics removes execution metrics older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	if a.usage == nil {
		return 0, nil
	}
	return a.usage.Cleanup(ctx, days)
}
