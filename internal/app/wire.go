package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/family"
	"meal-planner/internal/llm"
	"meal-planner/internal/metrics"
	"meal-planner/internal/pantry"
	"meal-planner/internal/plancache"
	"meal-planner/internal/planner"
	"meal-planner/internal/preferences"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
	"meal-planner/internal/telegram"
)

// Runtime is a fully wired App plus the resources it owns.
type Runtime struct {
	App       *App
	DB        *database.DB
	Collector *metrics.Collector
	Usage     *metrics.Store

	purger  *plancache.SQLiteBackend
	closers []func() error
	logger  *zap.Logger
}

// Build wires every component from cfg.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rt := &Runtime{logger: logger}

	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}
	rt.DB = db
	rt.closers = append(rt.closers, db.Close)

	rt.Collector = metrics.NewCollector("meal_planner")
	rt.Usage = metrics.NewStore(db.SQL)

	backend, err := rt.cacheBackend(ctx, cfg, db.SQL)
	if err != nil {
		rt.Close()
		return nil, err
	}
	cache := plancache.NewStore(backend, logger.Named("plancache"), rt.Collector)

	textGen, err := rt.textGenerator(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}

	var notifier *telegram.Notifier
	if cfg.TelegramBotToken != "" {
		notifier, err = telegram.NewNotifier(cfg.TelegramBotToken, logger.Named("telegram"))
		if err != nil {
			rt.Close()
			return nil, err
		}
	}

	rt.App = New(Deps{
		Planner:     planner.NewPlanner(cache, textGen, planner.Options{Timeout: cfg.LLMTimeout, Logger: logger.Named("planner")}),
		Plans:       planner.NewPlanRepository(db.SQL),
		Lists:       shopping.NewRepository(db.SQL),
		Preferences: preferences.NewRepository(db.SQL),
		Pantry:      pantry.NewRepository(db.SQL),
		Families:    family.NewService(family.NewRepository(db.SQL), cfg.InviteSecret, cfg.InviteTTL, logger.Named("family")),
		Importer:    recipe.NewImporter(textGen, &http.Client{Timeout: 20 * time.Second}, logger.Named("recipe")),
		Cookbook:    recipe.NewRepository(db.SQL),
		Notifier:    notifier,
		Usage:       rt.Usage,
		Collector:   rt.Collector,
		Logger:      logger,
	})
	return rt, nil
}

func (rt *Runtime) cacheBackend(ctx context.Context, cfg *config.Config, db *sqlx.DB) (plancache.Backend, error) {
	switch cfg.CacheBackend {
	case config.CacheMemory:
		return plancache.NewMemoryBackend(plancache.MemoryOptions{MaxEntries: cfg.CacheMaxEntries, TTL: cfg.CacheTTL}), nil
	case config.CacheDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return plancache.NewDynamoBackend(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBCacheTable, cfg.CacheTTL), nil
	default:
		b := plancache.NewSQLiteBackend(db, cfg.CacheTTL)
		if cfg.CacheTTL > 0 {
			rt.purger = b
		}
		return b, nil
	}
}

func (rt *Runtime) textGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, error) {
	var next llm.TextGenerator
	switch cfg.LLMProvider {
	case config.ProviderGroq:
		next = llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel)
	default:
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		next = gemini
	}

	gen := llm.NewBreakerGenerator(next, llm.DefaultBreakerSettings(cfg.LLMProvider), rt.logger.Named("llm"))
	rt.closers = append(rt.closers, gen.Close)
	return gen, nil
}

// PurgeCache removes expired plan cache rows every interval until ctx is
// done. It returns at once when the cache does not live in SQLite or has no
// TTL.
func (rt *Runtime) PurgeCache(ctx context.Context, interval time.Duration) {
	if rt.purger == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := rt.purger.Purge(ctx)
			if err != nil {
				rt.logger.Warn("plan cache purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				rt.logger.Info("purged expired cached plans", zap.Int64("removed", n))
			}
		}
	}
}

// Close releases everything Build opened, newest first.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
