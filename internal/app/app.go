package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/family"
	"meal-planner/internal/meal"
	"meal-planner/internal/metrics"
	"meal-planner/internal/pantry"
	"meal-planner/internal/planner"
	"meal-planner/internal/preferences"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shared"
	"meal-planner/internal/shopping"
	"meal-planner/internal/telegram"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrNoPreferences         = errors.New("no preferences saved for user")
	ErrNotificationsDisabled = errors.New("telegram notifications are not configured")
)

const (
	defaultServings  = 2
	recentPlansLimit = 10
	maxRecentPlans   = 50
)

// Deps are the collaborators an App is built from. Notifier may be nil.
type Deps struct {
	Planner     *planner.Planner
	Plans       *planner.PlanRepository
	Lists       *shopping.Repository
	Preferences *preferences.Repository
	Pantry      *pantry.Repository
	Families    *family.Service
	Importer    *recipe.Importer
	Cookbook    *recipe.Repository
	Notifier    *telegram.Notifier
	Usage       *metrics.Store
	Collector   *metrics.Collector
	Logger      *zap.Logger
}

// App holds the application's dependencies and implements the use cases
// shared by the CLI and the HTTP API. Every user-facing call resolves the
// caller's household first.
type App struct {
	planner   *planner.Planner
	plans     *planner.PlanRepository
	lists     *shopping.Repository
	prefs     *preferences.Repository
	pantry    *pantry.Repository
	families  *family.Service
	importer  *recipe.Importer
	cookbook  *recipe.Repository
	notifier  *telegram.Notifier
	usage     *metrics.Store
	collector *metrics.Collector
	logger    *zap.Logger
	now       func() time.Time
}

// New creates and initializes a new App instance.
func New(d Deps) *App {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Collector == nil {
		d.Collector = metrics.NewCollector("meal_planner")
	}
	return &App{
		planner:   d.Planner,
		plans:     d.Plans,
		lists:     d.Lists,
		prefs:     d.Preferences,
		pantry:    d.Pantry,
		families:  d.Families,
		importer:  d.Importer,
		cookbook:  d.Cookbook,
		notifier:  d.Notifier,
		usage:     d.Usage,
		collector: d.Collector,
		logger:    d.Logger,
		now:       time.Now,
	}
}

// Collector exposes the Prometheus collector the app reports to.
func (a *App) Collector() *metrics.Collector {
	return a.collector
}

// PlanInput describes a plan request. Zero values select defaults: the
// user's saved preferences, next Monday and two servings.
type PlanInput struct {
	Preferences *meal.UserPreferences
	WeekStart   string
	Servings    int
	Force       bool
}

// PlanOutput is a saved plan and whether it came from the cache. Replaced
// is set when the household already had a plan for the same week.
type PlanOutput struct {
	Plan     *planner.StoredPlan `json:"plan"`
	Cached   bool                `json:"cached"`
	Replaced bool                `json:"replaced"`
}

// PlanWeek generates (or serves from cache) a weekly plan and saves it for
// the user's household.
func (a *App) PlanWeek(ctx context.Context, userID string, in PlanInput) (PlanOutput, error) {
	household, err := a.families.HouseholdFor(ctx, userID)
	if err != nil {
		return PlanOutput{}, err
	}

	prefs, err := a.preferencesFor(ctx, userID, in.Preferences)
	if err != nil {
		return PlanOutput{}, err
	}
	if in.WeekStart == "" {
		in.WeekStart = planner.NextMonday(a.now())
	}
	if in.Servings == 0 {
		in.Servings = defaultServings
	}

	res, err := a.planner.GeneratePlan(ctx, planner.PlanRequest{
		Preferences: prefs,
		WeekStart:   in.WeekStart,
		Servings:    in.Servings,
		Force:       in.Force,
	})
	a.recordMeta(ctx, res.Meta)
	if err != nil {
		return PlanOutput{}, err
	}
	a.collector.PlanServed(res.Cached)

	replaced, err := a.plans.ExistsForWeek(ctx, household, in.WeekStart)
	if err != nil {
		return PlanOutput{}, err
	}

	stored := &planner.StoredPlan{
		HouseholdID: household,
		WeekStart:   in.WeekStart,
		Servings:    in.Servings,
		CacheKey:    res.CacheKey,
		Plan:        res.Plan,
	}
	if err := a.plans.Save(ctx, stored); err != nil {
		return PlanOutput{}, err
	}

	a.logger.Info("meal plan saved",
		zap.Int64("plan_id", stored.ID),
		zap.String("household_id", household),
		zap.Bool("cached", res.Cached),
		zap.Bool("replaced", replaced))
	return PlanOutput{Plan: stored, Cached: res.Cached, Replaced: replaced}, nil
}

func (a *App) preferencesFor(ctx context.Context, userID string, explicit *meal.UserPreferences) (meal.UserPreferences, error) {
	if explicit != nil {
		if err := preferences.Validate(*explicit); err != nil {
			return meal.UserPreferences{}, err
		}
		return *explicit, nil
	}
	prefs, ok, err := a.prefs.Get(ctx, userID)
	if err != nil {
		return meal.UserPreferences{}, err
	}
	if !ok {
		return meal.UserPreferences{}, ErrNoPreferences
	}
	return prefs, nil
}

// Plan returns a saved plan of the user's household.
func (a *App) Plan(ctx context.Context, userID string, id int64) (*planner.StoredPlan, error) {
	household, err := a.families.HouseholdFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := a.plans.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.HouseholdID != household {
		return nil, fmt.Errorf("meal plan %d: %w", id, ErrNotFound)
	}
	return p, nil
}

// CurrentPlan returns the household's newest plan for the week that
// contains today.
func (a *App) CurrentPlan(ctx context.Context, userID string) (*planner.StoredPlan, error) {
	household, err := a.families.HouseholdFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	week := planner.WeekStartOf(a.now())
	p, err := a.plans.LatestForWeek(ctx, household, week)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("meal plan for week %s: %w", week, ErrNotFound)
	}
	return p, nil
}

// RecentPlans lists the household's latest plans, newest first.
func (a *App) RecentPlans(ctx context.Context, userID string, limit int) ([]planner.StoredPlan, error) {
	household, err := a.families.HouseholdFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = recentPlansLimit
	}
	if limit > maxRecentPlans {
		limit = maxRecentPlans
	}
	return a.plans.ListRecentByHousehold(ctx, household, limit)
}

// ShoppingList returns the shopping list of a saved plan. The full list is
// built once and stored; later calls read it back. With excludePantry the
// household pantry is taken off a freshly built list, which is not stored.
func (a *App) ShoppingList(ctx context.Context, userID string, planID int64, excludePantry bool) (*shopping.ShoppingList, error) {
	p, err := a.Plan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	return a.shoppingListFor(ctx, p, excludePantry)
}

func (a *App) shoppingListFor(ctx context.Context, p *planner.StoredPlan, excludePantry bool) (*shopping.ShoppingList, error) {
	if !excludePantry {
		stored, err := a.lists.GetByMealPlanID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			return stored, nil
		}
	}
	return a.buildShoppingList(ctx, p, excludePantry)
}

// DiscardShoppingList drops the stored list of a plan so the next request
// rebuilds it.
func (a *App) DiscardShoppingList(ctx context.Context, userID string, planID int64) error {
	p, err := a.Plan(ctx, userID, planID)
	if err != nil {
		return err
	}
	return a.lists.DeleteByMealPlanID(ctx, p.ID)
}

func (a *App) buildShoppingList(ctx context.Context, p *planner.StoredPlan, excludePantry bool) (*shopping.ShoppingList, error) {
	items, err := shopping.Aggregate(p.Plan.Recipes)
	if err != nil {
		a.collector.AggregationFailures.Inc()
		return nil, err
	}

	list := &shopping.ShoppingList{
		HouseholdID: p.HouseholdID,
		MealPlanID:  p.ID,
		Items:       items,
	}

	if excludePantry {
		stock, err := a.pantry.List(ctx, p.HouseholdID)
		if err != nil {
			return nil, err
		}
		list.Items = shopping.Subtract(items, pantry.ToStock(stock))
		list.CreatedAt = a.now().UTC()
		return list, nil
	}

	if _, err := a.lists.Save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// familyChat returns the Telegram chat of the user's family.
func (a *App) familyChat(ctx context.Context, userID string) (int64, error) {
	if a.notifier == nil {
		return 0, ErrNotificationsDisabled
	}
	f, err := a.families.FamilyOf(ctx, userID)
	if err != nil {
		return 0, err
	}
	if f == nil {
		return 0, family.ErrNotMember
	}
	return f.TelegramChatID, nil
}

// SendShoppingList posts the plan's shopping list to the family's Telegram
// chat.
func (a *App) SendShoppingList(ctx context.Context, userID string, planID int64, excludePantry bool) error {
	chatID, err := a.familyChat(ctx, userID)
	if err != nil {
		return err
	}
	p, err := a.Plan(ctx, userID, planID)
	if err != nil {
		return err
	}
	list, err := a.shoppingListFor(ctx, p, excludePantry)
	if err != nil {
		return err
	}
	return a.notifier.SendShoppingList(ctx, chatID, p.WeekStart, list.Items)
}

// SendPlan posts a summary of the plan's recipes to the family's Telegram
// chat.
func (a *App) SendPlan(ctx context.Context, userID string, planID int64) error {
	chatID, err := a.familyChat(ctx, userID)
	if err != nil {
		return err
	}
	p, err := a.Plan(ctx, userID, planID)
	if err != nil {
		return err
	}
	return a.notifier.SendPlan(ctx, chatID, p.WeekStart, p.Plan)
}

// RecipeInput describes a single generated recipe.
type RecipeInput struct {
	Day      meal.Day
	MealType meal.MealType
	Servings int
	Hint     string
}

// GenerateRecipe asks the planner for one recipe using the user's saved
// preferences.
func (a *App) GenerateRecipe(ctx context.Context, userID string, in RecipeInput) (meal.Recipe, error) {
	prefs, err := a.preferencesFor(ctx, userID, nil)
	if err != nil {
		return meal.Recipe{}, err
	}
	if in.Servings == 0 {
		in.Servings = defaultServings
	}

	r, meta, err := a.planner.GenerateRecipe(ctx, planner.RecipeRequest{
		Preferences: prefs,
		Day:         in.Day,
		MealType:    in.MealType,
		Servings:    in.Servings,
		Hint:        in.Hint,
	})
	a.recordMeta(ctx, meta)
	return r, err
}

// ImportRecipe extracts a recipe from a web page into the household cookbook.
func (a *App) ImportRecipe(ctx context.Context, userID, url string) (*recipe.SavedRecipe, error) {
	household, err := a.families.HouseholdFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	r, meta, err := a.importer.ImportURL(ctx, url)
	a.recordMeta(ctx, meta)
	if err != nil {
		return nil, err
	}

	saved := &recipe.SavedRecipe{HouseholdID: household, SourceURL: url, Recipe: r}
	if err := a.cookbook.Save(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Cookbook lists the household's saved recipes.
func (a *App) Cookbook(ctx context.Context, userID string) ([]recipe.SavedRecipe, error) {
	household, err := a.families.HouseholdFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return a.cookbook.List(ctx, household)
}

// CookbookRecipe returns one saved recipe of the household.
func (a *App) CookbookRecipe(ctx context.Context, userID string, id int64) (*recipe.SavedRecipe, error) {
	household, err := a.families.HouseholdFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	r, err := a.cookbook.Get(ctx, household, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("recipe %d: %w", id, ErrNotFound)
	}
	return r, nil
}

// recordMeta stores token usage of one LLM execution. Failures are logged,
// never returned.
func (a *App) recordMeta(ctx context.Context, meta shared.AgentMeta) {
	if meta.AgentName == "" || !meta.Usage.Used() {
		return
	}
	a.collector.TokensUsed(meta.AgentName, meta.Usage.PromptTokens, meta.Usage.CompletionTokens)
	if a.usage == nil {
		return
	}
	if err := a.usage.RecordMeta(ctx, meta); err != nil {
		a.logger.Warn("failed to record execution metrics", zap.String("agent", meta.AgentName), zap.Error(err))
	}
}
