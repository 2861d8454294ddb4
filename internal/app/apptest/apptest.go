// Package apptest wires an App over a throwaway database and fake
// collaborators for tests.
package apptest

import (
	"context"
	"net/http"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"meal-planner/internal/app"
	"meal-planner/internal/database/dbtest"
	"meal-planner/internal/family"
	"meal-planner/internal/llm"
	"meal-planner/internal/metrics"
	"meal-planner/internal/pantry"
	"meal-planner/internal/plancache"
	"meal-planner/internal/planner"
	"meal-planner/internal/preferences"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shared"
	"meal-planner/internal/shopping"
	"meal-planner/internal/telegram"
)

// PlanJSON is a two-recipe plan that shares one ingredient.
const PlanJSON = `{"recipes": [
	{
		"day": "Monday", "mealType": "breakfast", "title": "Oat Bowl",
		"ingredients": [
			{"name": "Oats", "quantity": 100, "unit": "g", "category": "pantry"},
			{"name": "Milk", "quantity": 200, "unit": "ml", "category": "dairy"}
		],
		"instructions": ["Cook oats in milk."],
		"nutrition": {"calories": 400, "protein": 12, "carbs": 60, "fat": 8},
		"prepTimeMins": 2, "cookTimeMins": 8, "difficulty": "easy"
	},
	{
		"day": "Tuesday", "mealType": "breakfast", "title": "Oat Smoothie",
		"ingredients": [
			{"name": "oats", "quantity": 50, "unit": "g", "category": "pantry"},
			{"name": "Banana", "quantity": 1, "unit": "pc", "category": "produce"}
		],
		"instructions": ["Blend."],
		"nutrition": {"calories": 350, "protein": 9, "carbs": 55, "fat": 6},
		"prepTimeMins": 5, "cookTimeMins": 0, "difficulty": "easy"
	}
]}`

// Generator is a scripted llm.TextGenerator.
type Generator struct {
	mu      sync.Mutex
	Content string
	Err     error
	Prompts []string
}

func (g *Generator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return llm.ContentResponse{}, g.Err
	}
	return llm.ContentResponse{
		Content: g.Content,
		Usage:   shared.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150, Model: "mock"},
	}, nil
}

// Calls returns how many prompts the generator received.
func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Prompts)
}

// Set replaces the scripted answer.
func (g *Generator) Set(content string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Content = content
	g.Err = err
}

// Sender records Telegram messages instead of sending them.
type Sender struct {
	mu   sync.Mutex
	Sent []tgbotapi.MessageConfig
}

func (s *Sender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(s.Sent)}, nil
}

// Env is a wired App with handles on its fakes.
type Env struct {
	App       *app.App
	Generator *Generator
	Sender    *Sender
	Usage     *metrics.Store
	Collector *metrics.Collector
}

// New builds an App whose LLM answers with PlanJSON.
func New(t testing.TB) *Env {
	t.Helper()

	db := dbtest.New(t)
	gen := &Generator{Content: PlanJSON}
	sender := &Sender{}
	collector := metrics.NewCollector("test")
	usage := metrics.NewStore(db)

	cache := plancache.NewStore(plancache.NewMemoryBackend(plancache.MemoryOptions{}), nil, collector)
	a := app.New(app.Deps{
		Planner:     planner.NewPlanner(cache, gen, planner.Options{}),
		Plans:       planner.NewPlanRepository(db),
		Lists:       shopping.NewRepository(db),
		Preferences: preferences.NewRepository(db),
		Pantry:      pantry.NewRepository(db),
		Families:    family.NewService(family.NewRepository(db), "0123456789abcdef", 0, nil),
		Importer:    recipe.NewImporter(gen, http.DefaultClient, nil),
		Cookbook:    recipe.NewRepository(db),
		Notifier:    telegram.NewNotifierWithSender(sender, nil),
		Usage:       usage,
		Collector:   collector,
	})

	return &Env{App: a, Generator: gen, Sender: sender, Usage: usage, Collector: collector}
}
