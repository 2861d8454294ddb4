package app

import (
	"context"
	"time"

	"meal-planner/internal/family"
	"meal-planner/internal/meal"
	"meal-planner/internal/metrics"
	"meal-planner/internal/pantry"
)

// Preferences returns the user's saved preferences.
func (a *App) Preferences(ctx context.Context, userID string) (meal.UserPreferences, error) {
	prefs, ok, err := a.prefs.Get(ctx, userID)
	if err != nil {
		return meal.UserPreferences{}, err
	}
	if !ok {
		return meal.UserPreferences{}, ErrNoPreferences
	}
	return prefs, nil
}

// SavePreferences validates and stores the user's preferences.
func (a *App) SavePreferences(ctx context.Context, userID string, prefs meal.UserPreferences) error {
	return a.prefs.Save(ctx, userID, prefs)
}

// PantryItems lists the household pantry.
func (a *App) PantryItems(ctx context.Context, userID string) ([]pantry.Item, error) {
	household, err := a.families.HouseholdFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return a.pantry.List(ctx, household)
}

// StockPantry adds item to the household pantry.
func (a *App) StockPantry(ctx context.Context, userID string, item pantry.Item) (pantry.Item, error) {
	household, err := a.families.HouseholdFor(ctx, userID)
	if err != nil {
		return pantry.Item{}, err
	}
	item.HouseholdID = household
	return a.pantry.Upsert(ctx, item)
}

// RemovePantryItem deletes an item of the household pantry.
func (a *App) RemovePantryItem(ctx context.Context, userID string, id int64) error {
	household, err := a.families.HouseholdFor(ctx, userID)
	if err != nil {
		return err
	}
	return a.pantry.Delete(ctx, household, id)
}

// ConsumePantryItem takes amount off a pantry item and returns what is left.
func (a *App) ConsumePantryItem(ctx context.Context, userID string, id int64, amount float64) (float64, error) {
	household, err := a.families.HouseholdFor(ctx, userID)
	if err != nil {
		return 0, err
	}
	return a.pantry.Consume(ctx, household, id, amount)
}

// Family returns the user's family, if any.
func (a *App) Family(ctx context.Context, userID string) (*family.Family, error) {
	f, err := a.families.FamilyOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, family.ErrNotMember
	}
	return f, nil
}

// FamilyMembers lists who shares the user's household.
func (a *App) FamilyMembers(ctx context.Context, userID string) ([]family.Member, error) {
	return a.families.Members(ctx, userID)
}

// CreateFamily starts a family owned by the user.
func (a *App) CreateFamily(ctx context.Context, userID, name string) (*family.Family, error) {
	return a.families.Create(ctx, userID, name)
}

// InviteToFamily issues an invite token for the user's family.
func (a *App) InviteToFamily(ctx context.Context, userID string) (string, time.Time, error) {
	return a.families.Invite(ctx, userID)
}

// JoinFamily redeems an invite token.
func (a *App) JoinFamily(ctx context.Context, userID, token string) (*family.Family, error) {
	return a.families.Join(ctx, token, userID)
}

// SetFamilyChat sets the Telegram chat shopping lists are sent to.
func (a *App) SetFamilyChat(ctx context.Context, userID string, chatID int64) (*family.Family, error) {
	return a.families.SetTelegramChat(ctx, userID, chatID)
}

// Usage returns LLM token usage per day for the last days.
func (a *App) Usage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	if a.usage == nil {
		return []metrics.DailyUsage{}, nil
	}
	return a.usage.GetDailyUsage(ctx, days)
}
