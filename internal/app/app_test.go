package app_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/app"
	"meal-planner/internal/app/apptest"
	"meal-planner/internal/family"
	"meal-planner/internal/meal"
	"meal-planner/internal/pantry"
	"meal-planner/internal/planner"
	"meal-planner/internal/telegram"
)

func prefs() meal.UserPreferences {
	return meal.UserPreferences{
		DietaryRestrictions: []string{"vegetarian"},
		Allergies:           []string{},
		DailyCalorieGoal:    2000,
	}
}

func TestPlanWeek(t *testing.T) {
	ctx := context.Background()

	t.Run("GeneratesThenServesFromCache", func(t *testing.T) {
		env := apptest.New(t)
		p := prefs()

		first, err := env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &p, WeekStart: "2026-10-19", Servings: 2})
		require.NoError(t, err)
		assert.False(t, first.Cached)
		assert.False(t, first.Replaced)
		assert.NotZero(t, first.Plan.ID)
		assert.Equal(t, "alice", first.Plan.HouseholdID)
		require.Len(t, first.Plan.Plan.Recipes, 2)

		second, err := env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &p, WeekStart: "2026-10-19", Servings: 2})
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.True(t, second.Replaced)
		assert.NotEqual(t, first.Plan.ID, second.Plan.ID)
		assert.Equal(t, first.Plan.CacheKey, second.Plan.CacheKey)
		assert.Equal(t, 1, env.Generator.Calls())

		usage, err := env.App.Usage(ctx, 1)
		require.NoError(t, err)
		require.Len(t, usage, 1)
		assert.Equal(t, 1, usage[0].TotalExecution)
		assert.Equal(t, 100, usage[0].TotalPrompt)
	})

	t.Run("UsesSavedPreferencesAndDefaults", func(t *testing.T) {
		env := apptest.New(t)

		_, err := env.App.PlanWeek(ctx, "bob", app.PlanInput{})
		assert.ErrorIs(t, err, app.ErrNoPreferences)

		require.NoError(t, env.App.SavePreferences(ctx, "bob", prefs()))
		out, err := env.App.PlanWeek(ctx, "bob", app.PlanInput{})
		require.NoError(t, err)
		assert.Equal(t, planner.NextMonday(time.Now()), out.Plan.WeekStart)
		assert.Equal(t, 2, out.Plan.Servings)
	})

	t.Run("RejectsBadInput", func(t *testing.T) {
		env := apptest.New(t)
		p := prefs()

		_, err := env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &p, WeekStart: "2026-10-20"})
		assert.Error(t, err)

		bad := prefs()
		bad.BudgetLevel = meal.IntPtr(9)
		_, err = env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &bad})
		assert.Error(t, err)
		assert.Zero(t, env.Generator.Calls())
	})
}

func TestPlansAreScopedByHousehold(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	p := prefs()

	out, err := env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &p, WeekStart: "2026-10-19"})
	require.NoError(t, err)

	_, err = env.App.Plan(ctx, "mallory", out.Plan.ID)
	assert.ErrorIs(t, err, app.ErrNotFound)

	_, err = env.App.Plan(ctx, "alice", out.Plan.ID+100)
	assert.ErrorIs(t, err, app.ErrNotFound)

	recent, err := env.App.RecentPlans(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestShoppingList(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	p := prefs()

	out, err := env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &p, WeekStart: "2026-10-19"})
	require.NoError(t, err)

	var storedID int64
	t.Run("AggregatesPlan", func(t *testing.T) {
		list, err := env.App.ShoppingList(ctx, "alice", out.Plan.ID, false)
		require.NoError(t, err)
		assert.NotZero(t, list.ID)
		storedID = list.ID

		oats := list.Items[meal.CategoryPantry]
		require.Len(t, oats, 1)
		assert.Equal(t, "Oats", oats[0].Name)
		assert.Equal(t, 150.0, oats[0].Quantity)
		assert.Equal(t, []string{"Oat Bowl", "Oat Smoothie"}, oats[0].Recipes)
		assert.Equal(t, 3, list.Items.Len())
	})

	t.Run("ExcludesPantry", func(t *testing.T) {
		_, err := env.App.StockPantry(ctx, "alice", pantry.Item{Name: "OATS", Quantity: 120, Unit: "g", Category: meal.CategoryPantry})
		require.NoError(t, err)
		_, err = env.App.StockPantry(ctx, "alice", pantry.Item{Name: "Milk", Quantity: 1, Unit: "l", Category: meal.CategoryDairy})
		require.NoError(t, err)

		list, err := env.App.ShoppingList(ctx, "alice", out.Plan.ID, true)
		require.NoError(t, err)
		require.Len(t, list.Items[meal.CategoryPantry], 1)
		assert.Equal(t, 30.0, list.Items[meal.CategoryPantry][0].Quantity)
		// Different unit, so the milk in stock does not count.
		assert.Len(t, list.Items[meal.CategoryDairy], 1)
		assert.Zero(t, list.ID)
	})

	t.Run("ReadsStoredList", func(t *testing.T) {
		list, err := env.App.ShoppingList(ctx, "alice", out.Plan.ID, false)
		require.NoError(t, err)
		assert.Equal(t, storedID, list.ID)
		assert.Equal(t, 150.0, list.Items[meal.CategoryPantry][0].Quantity)
		assert.Equal(t, []string{"Oat Bowl", "Oat Smoothie"}, list.Items[meal.CategoryPantry][0].Recipes)
	})

	t.Run("DiscardRebuilds", func(t *testing.T) {
		err := env.App.DiscardShoppingList(ctx, "mallory", out.Plan.ID)
		assert.ErrorIs(t, err, app.ErrNotFound)

		require.NoError(t, env.App.DiscardShoppingList(ctx, "alice", out.Plan.ID))
		list, err := env.App.ShoppingList(ctx, "alice", out.Plan.ID, false)
		require.NoError(t, err)
		assert.NotZero(t, list.ID)
		assert.NotEqual(t, storedID, list.ID)
		assert.Equal(t, 3, list.Items.Len())
	})
}

func TestSendShoppingList(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	p := prefs()

	out, err := env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &p, WeekStart: "2026-10-19"})
	require.NoError(t, err)

	err = env.App.SendShoppingList(ctx, "alice", out.Plan.ID, false)
	assert.ErrorIs(t, err, family.ErrNotMember)

	_, err = env.App.CreateFamily(ctx, "alice", "Smiths")
	require.NoError(t, err)

	// Plans made before the family existed stay with the user.
	_, err = env.App.Plan(ctx, "alice", out.Plan.ID)
	assert.ErrorIs(t, err, app.ErrNotFound)

	out, err = env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &p, WeekStart: "2026-10-19"})
	require.NoError(t, err)

	err = env.App.SendShoppingList(ctx, "alice", out.Plan.ID, false)
	assert.ErrorIs(t, err, telegram.ErrNoChat)

	_, err = env.App.SetFamilyChat(ctx, "alice", 4242)
	require.NoError(t, err)
	require.NoError(t, env.App.SendShoppingList(ctx, "alice", out.Plan.ID, false))

	require.Len(t, env.Sender.Sent, 1)
	assert.Equal(t, int64(4242), env.Sender.Sent[0].ChatID)
	assert.Contains(t, env.Sender.Sent[0].Text, "Oats")

	require.NoError(t, env.App.SendPlan(ctx, "alice", out.Plan.ID))
	require.Len(t, env.Sender.Sent, 2)
	assert.Equal(t, int64(4242), env.Sender.Sent[1].ChatID)
	assert.Contains(t, env.Sender.Sent[1].Text, "Oat Bowl")
	assert.Contains(t, env.Sender.Sent[1].Text, "2026-10-19")

	err = env.App.SendPlan(ctx, "bob", out.Plan.ID)
	assert.ErrorIs(t, err, family.ErrNotMember)
}

func TestCurrentPlan(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	p := prefs()

	_, err := env.App.CurrentPlan(ctx, "alice")
	assert.ErrorIs(t, err, app.ErrNotFound)

	week := planner.WeekStartOf(time.Now())
	_, err = env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &p, WeekStart: week})
	require.NoError(t, err)
	latest, err := env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &p, WeekStart: week, Servings: 4})
	require.NoError(t, err)
	_, err = env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &p, WeekStart: planner.NextMonday(time.Now())})
	require.NoError(t, err)

	got, err := env.App.CurrentPlan(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, latest.Plan.ID, got.ID)
	assert.Equal(t, 4, got.Servings)

	_, err = env.App.CurrentPlan(ctx, "bob")
	assert.ErrorIs(t, err, app.ErrNotFound)
}

func TestFamilyMembersShareHousehold(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	p := prefs()

	_, err := env.App.CreateFamily(ctx, "alice", "Smiths")
	require.NoError(t, err)
	token, expires, err := env.App.InviteToFamily(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	f, err := env.App.JoinFamily(ctx, "bob", token)
	require.NoError(t, err)

	members, err := env.App.FamilyMembers(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].UserID)

	out, err := env.App.PlanWeek(ctx, "alice", app.PlanInput{Preferences: &p, WeekStart: "2026-10-19"})
	require.NoError(t, err)
	assert.Equal(t, f.ID, out.Plan.HouseholdID)

	got, err := env.App.Plan(ctx, "bob", out.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Plan.ID, got.ID)

	_, err = env.App.StockPantry(ctx, "bob", pantry.Item{Name: "Rice", Quantity: 1, Unit: "kg", Category: meal.CategoryPantry})
	require.NoError(t, err)
	items, err := env.App.PantryItems(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rice", items[0].Name)
}

func TestGenerateMealPlan(t *testing.T) {
	env := apptest.New(t)

	var out bytes.Buffer
	err := env.App.GenerateMealPlan(context.Background(), &out, prefs(), "2026-10-19", 2)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "=== WEEKLY MEAL PLAN (2026-10-19, 2 servings, generated) ===")
	assert.Contains(t, text, "Oat Bowl")
	assert.Contains(t, text, "- Oats: 150 g (Oat Bowl, Oat Smoothie)")
}
