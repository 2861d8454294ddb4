package plancache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"meal-planner/internal/meal"
)

// Backend is the storage behind a Store. Implementations must replace the
// value for a key in a single step so readers never see a partial plan.
type Backend interface {
	Get(ctx context.Context, key string) (meal.MealPlan, bool, error)
	Put(ctx context.Context, key string, plan meal.MealPlan) error
}

// StatsRecorder receives hit and miss notifications.
type StatsRecorder interface {
	CacheHit()
	CacheMiss()
}

// Store is the plan cache handed to callers. It has no process-wide state;
// every Store owns its backend.
type Store struct {
	backend  Backend
	logger   *zap.Logger
	recorder StatsRecorder
}

// NewStore creates a Store over backend. logger and recorder may be nil.
func NewStore(backend Backend, logger *zap.Logger, recorder StatsRecorder) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend:  backend,
		logger:   logger,
		recorder: recorder,
	}
}

// Get returns the plan stored under key. A miss is reported as ok == false
// with a nil error.
func (s *Store) Get(ctx context.Context, key string) (meal.MealPlan, bool, error) {
	if key == "" {
		return meal.MealPlan{}, false, fmt.Errorf("%w: empty cache key", ErrInvalidInput)
	}

	plan, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return meal.MealPlan{}, false, fmt.Errorf("failed to read plan cache: %w", err)
	}

	if !ok {
		s.logger.Debug("plan cache miss", zap.String("key", key))
		if s.recorder != nil {
			s.recorder.CacheMiss()
		}
		return meal.MealPlan{}, false, nil
	}

	s.logger.Debug("plan cache hit", zap.String("key", key), zap.Int("recipes", len(plan.Recipes)))
	if s.recorder != nil {
		s.recorder.CacheHit()
	}
	return plan, true, nil
}

// Put stores plan under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, plan meal.MealPlan) error {
	if key == "" {
		return fmt.Errorf("%w: empty cache key", ErrInvalidInput)
	}

	if err := s.backend.Put(ctx, key, plan); err != nil {
		return fmt.Errorf("failed to write plan cache: %w", err)
	}

	s.logger.Debug("plan cached", zap.String("key", key), zap.Int("recipes", len(plan.Recipes)))
	return nil
}
