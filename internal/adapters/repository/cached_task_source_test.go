package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
)

type memoryCache struct {
	data    map[string][]byte
	setErr  error
	getErr  error
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	b, ok := c.data[key]
	if !ok {
		return errors.New("miss")
	}
	return json.Unmarshal(b, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	delete(c.data, key)
	return nil
}

type countingSource struct {
	tasks []entities.Task
	err   error
	calls int
}

func (s *countingSource) FetchTasks(context.Context) ([]entities.Task, error) {
	s.calls++
	return s.tasks, s.err
}

func TestCachedTaskSource_MissThenHit(t *testing.T) {
	src := &countingSource{tasks: []entities.Task{{ID: 1, Title: "A", DueDate: "2024-03-05"}}}
	cache := newMemoryCache()
	cached := NewCachedTaskSource(src, cache, time.Minute, logger.NewNop())

	first, err := cached.FetchTasks(context.Background())
	require.NoError(t, err)
	second, err := cached.FetchTasks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first[0].Title, second[0].Title)
	assert.Equal(t, entities.DueDate("2024-03-05"), second[0].DueDate)
}

func TestCachedTaskSource_CacheErrorsFallThrough(t *testing.T) {
	src := &countingSource{tasks: []entities.Task{{ID: 1}}}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	cached := NewCachedTaskSource(src, cache, time.Minute, logger.NewNop())

	tasks, err := cached.FetchTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 1, src.calls)
}

func TestCachedTaskSource_SourceError(t *testing.T) {
	src := &countingSource{err: errors.New("db down")}
	cached := NewCachedTaskSource(src, newMemoryCache(), time.Minute, logger.NewNop())

	_, err := cached.FetchTasks(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestCachedTaskSource_Invalidate(t *testing.T) {
	src := &countingSource{tasks: []entities.Task{{ID: 1}}}
	cache := newMemoryCache()
	cached := NewCachedTaskSource(src, cache, time.Minute, logger.NewNop())

	_, _ = cached.FetchTasks(context.Background())
	cached.Invalidate(context.Background())
	_, _ = cached.FetchTasks(context.Background())

	assert.Equal(t, []string{TasksCacheKey}, cache.deleted)
	assert.Equal(t, 2, src.calls)
}

type invalidatingSource struct {
	tasks  []entities.Task
	onCall func()
}

func (s *invalidatingSource) FetchTasks(context.Context) ([]entities.Task, error) {
	s.onCall()
	return s.tasks, nil
}

func TestCachedTaskSource_WriteDuringFetchSkipsStore(t *testing.T) {
	cache := newMemoryCache()
	src := &invalidatingSource{tasks: []entities.Task{{ID: 1, Title: "stale"}}}
	cached := NewCachedTaskSource(src, cache, time.Minute, logger.NewNop())
	src.onCall = func() { cached.Invalidate(context.Background()) }

	tasks, err := cached.FetchTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.NotContains(t, cache.data, TasksCacheKey)

	src.onCall = func() {}
	_, err = cached.FetchTasks(context.Background())
	require.NoError(t, err)
	assert.Contains(t, cache.data, TasksCacheKey)
}
