package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/ports"
)

// TasksCacheKey holds the full task collection served to calendar views.
const TasksCacheKey = "tasks:all"

// CachedTaskSource serves the task collection from the cache when
// possible. Cache failures fall through to the wrapped source.
//
// A fetch that overlaps an Invalidate in this process does not store its
// result. Writes made through another process are only picked up once
// the entry expires, so staleness there is bounded by the TTL.
type CachedTaskSource struct {
	source     ports.TaskSource
	cache      ports.CacheRepository
	ttl        time.Duration
	logger     *logger.Logger
	generation atomic.Uint64
}

// NewCachedTaskSource creates a cache-backed task source
func NewCachedTaskSource(source ports.TaskSource, cache ports.CacheRepository, ttl time.Duration, log *logger.Logger) *CachedTaskSource {
	return &CachedTaskSource{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithComponent("task_cache"),
	}
}

func (s *CachedTaskSource) FetchTasks(ctx context.Context) ([]entities.Task, error) {
	var tasks []entities.Task
	err := s.cache.Get(ctx, TasksCacheKey, &tasks)
	if err == nil {
		return tasks, nil
	}
	s.logger.Debugw("Task cache miss", "error", err)

	gen := s.generation.Load()
	tasks, err = s.source.FetchTasks(ctx)
	if err != nil {
		return nil, err
	}

	if s.generation.Load() != gen {
		s.logger.Debugw("Tasks changed during fetch, not caching")
		return tasks, nil
	}

	if err := s.cache.Set(ctx, TasksCacheKey, tasks, s.ttl); err != nil {
		s.logger.Warnw("Failed to cache tasks", "error", err)
	}

	return tasks, nil
}

// Invalidate drops the cached collection after a task write.
func (s *CachedTaskSource) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	if err := s.cache.Delete(ctx, TasksCacheKey); err != nil {
		s.logger.Warnw("Failed to invalidate task cache", "error", err)
	}
}
