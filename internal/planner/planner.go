// Package planner generates weekly meal plans and single recipes with an LLM,
// reusing cached plans for repeated requests.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/llm"
	"meal-planner/internal/meal"
	"meal-planner/internal/plancache"
	"meal-planner/internal/shared"
)

// ErrInvalidResponse is returned when the LLM answer cannot be turned into a
// valid plan or recipe.
var ErrInvalidResponse = errors.New("invalid llm response")

const defaultTimeout = 90 * time.Second

// PlanCache is the subset of *plancache.Store the planner needs.
type PlanCache interface {
	Get(ctx context.Context, key string) (meal.MealPlan, bool, error)
	Put(ctx context.Context, key string, plan meal.MealPlan) error
}

// Options tunes a Planner. Zero values select defaults.
type Options struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// Planner handles the generation of meal plans.
type Planner struct {
	cache   PlanCache
	textGen llm.TextGenerator
	timeout time.Duration
	logger  *zap.Logger
}

// NewPlanner creates a new Planner instance.
func NewPlanner(cache PlanCache, textGen llm.TextGenerator, opts Options) *Planner {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Planner{
		cache:   cache,
		textGen: textGen,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
}

// PlanRequest describes a weekly plan to generate.
type PlanRequest struct {
	Preferences meal.UserPreferences
	WeekStart   string
	Servings    int
	// Force skips the cache lookup. The fresh plan still replaces the cached one.
	Force bool
}

// PlanResult is a generated or cached plan.
type PlanResult struct {
	Plan     meal.MealPlan
	CacheKey string
	Cached   bool
	Meta     shared.AgentMeta
}

// GeneratePlan returns the cached plan for req when there is one, otherwise
// asks the LLM for a new plan and caches it.
func (p *Planner) GeneratePlan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	key, err := plancache.DeriveKey(req.Preferences, req.WeekStart, req.Servings)
	if err != nil {
		return PlanResult{}, err
	}

	log := p.logger.With(zap.String("cache_key", key), zap.String("week_start", req.WeekStart))

	if !req.Force {
		cached, ok, err := p.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn("plan cache lookup failed, generating a new plan", zap.Error(err))
		case ok:
			log.Info("serving cached meal plan")
			return PlanResult{Plan: cached, CacheKey: key, Cached: true}, nil
		}
	}

	prompt, err := buildPlanPrompt(req)
	if err != nil {
		return PlanResult{}, err
	}

	start := time.Now()
	resp, err := p.generate(ctx, prompt)
	if err != nil {
		return PlanResult{}, fmt.Errorf("failed to generate meal plan from LLM: %w", err)
	}
	meta := shared.AgentMeta{AgentName: "Planner", Usage: resp.Usage, Latency: time.Since(start)}

	var plan meal.MealPlan
	if err := decode(resp.Content, &plan); err != nil {
		return PlanResult{Meta: meta}, err
	}
	if err := plan.Validate(); err != nil {
		return PlanResult{Meta: meta}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if err := p.cache.Put(ctx, key, plan); err != nil {
		log.Warn("failed to cache meal plan", zap.Error(err))
	}

	log.Info("generated meal plan",
		zap.Int("recipes", len(plan.Recipes)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("latency", meta.Latency))

	return PlanResult{Plan: plan, CacheKey: key, Meta: meta}, nil
}

// RecipeRequest describes a single recipe to generate.
type RecipeRequest struct {
	Preferences meal.UserPreferences
	Day         meal.Day
	MealType    meal.MealType
	Servings    int
	Hint        string
}

// GenerateRecipe asks the LLM for one recipe. Results are not cached.
func (p *Planner) GenerateRecipe(ctx context.Context, req RecipeRequest) (meal.Recipe, shared.AgentMeta, error) {
	if !req.Day.Valid() {
		return meal.Recipe{}, shared.AgentMeta{}, fmt.Errorf("%w: unknown day %q", plancache.ErrInvalidInput, req.Day)
	}
	if !req.MealType.Valid() {
		return meal.Recipe{}, shared.AgentMeta{}, fmt.Errorf("%w: unknown meal type %q", plancache.ErrInvalidInput, req.MealType)
	}
	if req.Servings <= 0 {
		return meal.Recipe{}, shared.AgentMeta{}, fmt.Errorf("%w: servings must be a positive integer, got %d", plancache.ErrInvalidInput, req.Servings)
	}

	prompt, err := buildRecipePrompt(req)
	if err != nil {
		return meal.Recipe{}, shared.AgentMeta{}, err
	}

	start := time.Now()
	resp, err := p.generate(ctx, prompt)
	if err != nil {
		return meal.Recipe{}, shared.AgentMeta{}, fmt.Errorf("failed to generate recipe from LLM: %w", err)
	}
	meta := shared.AgentMeta{AgentName: "Cook", Usage: resp.Usage, Latency: time.Since(start)}

	var r meal.Recipe
	if err := decode(resp.Content, &r); err != nil {
		return meal.Recipe{}, meta, err
	}
	// The slot is the caller's choice, whatever the model echoed back.
	r.Day = req.Day
	r.MealType = req.MealType
	if err := r.Validate(); err != nil {
		return meal.Recipe{}, meta, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return r, meta, nil
}

func (p *Planner) generate(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.textGen.GenerateContent(ctx, prompt)
}

func decode(content string, v any) error {
	raw, err := extractJSON(content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: failed to parse JSON: %v", ErrInvalidResponse, err)
	}
	return nil
}
