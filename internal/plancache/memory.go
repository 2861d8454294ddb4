package plancache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"meal-planner/internal/meal"
)

// MemoryOptions bounds a MemoryBackend. Zero values mean unbounded size and
// no expiry.
type MemoryOptions struct {
	MaxEntries int
	TTL        time.Duration
}

// MemoryBackend keeps plans in process memory with optional LRU eviction and
// per-entry expiry.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	opts    MemoryOptions
	now     func() time.Time
}

type memoryEntry struct {
	key       string
	plan      meal.MealPlan
	expiresAt time.Time // zero => never
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend(opts MemoryOptions) *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		opts:    opts,
		now:     time.Now,
	}
}

// Get implements Backend.
func (b *MemoryBackend) Get(_ context.Context, key string) (meal.MealPlan, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	el, ok := b.entries[key]
	if !ok {
		return meal.MealPlan{}, false, nil
	}

	entry := el.Value.(*memoryEntry)
	if !entry.expiresAt.IsZero() && !b.now().Before(entry.expiresAt) {
		b.remove(el)
		return meal.MealPlan{}, false, nil
	}

	b.lru.MoveToFront(el)
	return entry.plan.Clone(), true, nil
}

// Put implements Backend.
func (b *MemoryBackend) Put(_ context.Context, key string, plan meal.MealPlan) error {
	entry := &memoryEntry{key: key, plan: plan.Clone()}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.opts.TTL > 0 {
		entry.expiresAt = b.now().Add(b.opts.TTL)
	}

	if el, ok := b.entries[key]; ok {
		el.Value = entry
		b.lru.MoveToFront(el)
		return nil
	}

	b.entries[key] = b.lru.PushFront(entry)

	for b.opts.MaxEntries > 0 && b.lru.Len() > b.opts.MaxEntries {
		b.remove(b.lru.Back())
	}
	return nil
}

// Len returns the number of entries currently held, expired ones included.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lru.Len()
}

func (b *MemoryBackend) remove(el *list.Element) {
	entry := el.Value.(*memoryEntry)
	delete(b.entries, entry.key)
	b.lru.Remove(el)
}
