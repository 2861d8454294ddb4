package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/meal"
	"meal-planner/internal/shopping"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if s.err != nil {
		return tgbotapi.Message{}, s.err
	}
	s.sent = append(s.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(s.sent)}, nil
}

func sampleList() shopping.CategorizedList {
	return shopping.CategorizedList{
		meal.CategoryPantry:  {{Name: "Oats", Quantity: 150, Unit: "g", Recipes: []string{"Oat Bowl"}}},
		meal.CategoryProduce: {{Name: "Bok_choy", Quantity: 2.5, Unit: "pc", Recipes: []string{"Stir Fry"}}},
	}
}

func TestFormatShoppingList(t *testing.T) {
	out := FormatShoppingList("2026-10-19", sampleList())

	assert.Contains(t, out, "🛒 *Shopping List* (week of 2026-10-19)")
	assert.Contains(t, out, "• Bok\\_choy: 2.5 pc")
	assert.Contains(t, out, "• Oats: 150 g")
	assert.Less(t, strings.Index(out, "*Produce*"), strings.Index(out, "*Pantry*"))

	assert.Contains(t, FormatShoppingList("", nil), "_Nothing to buy_")
}

func TestFormatPlan(t *testing.T) {
	plan := meal.MealPlan{Recipes: []meal.Recipe{
		{Day: meal.Tuesday, MealType: meal.Dinner, Title: "Salad", PrepTimeMins: 10},
		{Day: meal.Monday, MealType: meal.Lunch, Title: "Tacos", PrepTimeMins: 5, CookTimeMins: 10},
		{Day: meal.Monday, MealType: meal.Dinner, Title: "Soup"},
	}}

	out := FormatPlan("2026-10-19", plan)

	assert.Contains(t, out, "📅 *Weekly Meal Plan* (week of 2026-10-19)")
	assert.Contains(t, out, "• _lunch_: Tacos (15 mins)")
	assert.Contains(t, out, "• _dinner_: Soup\n")
	assert.Contains(t, out, "⏱ *Total Prep:* 25 mins")
	assert.Less(t, strings.Index(out, "*Monday*"), strings.Index(out, "*Tuesday*"))
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("SendsMarkdown", func(t *testing.T) {
		sender := &recordingSender{}
		n := NewNotifierWithSender(sender, nil)

		require.NoError(t, n.SendShoppingList(ctx, 42, "2026-10-19", sampleList()))
		require.Len(t, sender.sent, 1)
		assert.Equal(t, int64(42), sender.sent[0].ChatID)
		assert.Equal(t, tgbotapi.ModeMarkdown, sender.sent[0].ParseMode)
	})

	t.Run("NoChat", func(t *testing.T) {
		n := NewNotifierWithSender(&recordingSender{}, nil)
		assert.ErrorIs(t, n.SendPlan(ctx, 0, "", meal.MealPlan{}), ErrNoChat)
	})

	t.Run("SendError", func(t *testing.T) {
		boom := errors.New("bot was blocked")
		n := NewNotifierWithSender(&recordingSender{err: boom}, nil)
		assert.ErrorIs(t, n.SendPlan(ctx, 7, "", meal.MealPlan{}), boom)
	})
}
