package cache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"
)

// Memory is an in-process Store backed by otter. Entries are evicted once
// they have lived for the retention period, whatever their contents say about
// validity: callers remain responsible for checking freshness of what they
// read.
type Memory[T any] struct {
	entries *otter.Cache[string, T]
	counter *stats.Counter
}

// NewMemory creates a store holding at most maxEntries values, each retained
// for no longer than retention.
func NewMemory[T any](retention time.Duration, maxEntries int) (*Memory[T], error) {
	counter := stats.NewCounter()
	entries, err := otter.New(&otter.Options[string, T]{
		MaximumSize:      maxEntries,
		StatsRecorder:    counter,
		ExpiryCalculator: otter.ExpiryCreating[string, T](retention),
	})
	if err != nil {
		return nil, err
	}

	return &Memory[T]{
		entries: entries,
		counter: counter,
	}, nil
}

func (m *Memory[T]) Get(_ context.Context, key string) (T, bool, error) {
	entry, ok := m.entries.GetEntry(key)
	if !ok {
		var zero T
		return zero, false, nil
	}

	return entry.Value, true, nil
}

func (m *Memory[T]) Set(_ context.Context, key string, value T) error {
	m.entries.Set(key, value)
	return nil
}

func (m *Memory[T]) Invalidate(_ context.Context, key string) error {
	m.entries.Invalidate(key)
	return nil
}

func (m *Memory[T]) Close() error {
	m.entries.InvalidateAll()
	return nil
}

// Stats reports the lookups recorded since the store was created.
func (m *Memory[T]) Stats() Stats {
	snapshot := m.counter.Snapshot()
	return Stats{
		Hits:   snapshot.Hits,
		Misses: snapshot.Misses,
	}
}
