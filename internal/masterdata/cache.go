// Package masterdata caches the project and task reference lists with a TTL.
package masterdata

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/shopstack-asia/shopstack-timesheet/internal/logging"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

const (
	projectsKey = "projects"
	tasksKey    = "tasks"
)

// Source is the upstream provider of reference data, in practice the sheets
// store.
type Source interface {
	Projects(ctx context.Context) ([]timesheet.Project, error)
	Tasks(ctx context.Context) ([]timesheet.Task, error)
}

// Cache holds the two reference lists with a shared TTL and lazy refill: a
// read past expiry triggers a synchronous refetch before returning.
//
// Concurrent reads during an in-flight refetch are not deduplicated;
// overlapping fetches against the source of truth are idempotent and accepted.
type Cache struct {
	source Source
	items  *cache.Cache
	logger *slog.Logger
}

// NewCache creates a reference data cache with the supplied TTL so tests can
// use a short expiry instead of the production five minutes.
func NewCache(source Source, ttl time.Duration) *Cache {
	return &Cache{
		source: source,
		items:  cache.New(ttl, ttl*2),
		logger: logging.ForService("masterdata"),
	}
}

// Projects returns the cached project list, refetching when expired.
func (c *Cache) Projects(ctx context.Context) ([]timesheet.Project, error) {
	if cached, found := c.items.Get(projectsKey); found {
		if projects, ok := cached.([]timesheet.Project); ok {
			return projects, nil
		}
	}

	projects, err := c.source.Projects(ctx)
	if err != nil {
		return nil, err
	}

	c.items.Set(projectsKey, projects, cache.DefaultExpiration)
	c.logger.Debug("refreshed project cache", "count", len(projects))
	return projects, nil
}

// Tasks returns the cached task list, refetching when expired.
func (c *Cache) Tasks(ctx context.Context) ([]timesheet.Task, error) {
	if cached, found := c.items.Get(tasksKey); found {
		if tasks, ok := cached.([]timesheet.Task); ok {
			return tasks, nil
		}
	}

	tasks, err := c.source.Tasks(ctx)
	if err != nil {
		return nil, err
	}

	c.items.Set(tasksKey, tasks, cache.DefaultExpiration)
	c.logger.Debug("refreshed task cache", "count", len(tasks))
	return tasks, nil
}

// ProjectMap returns the current projects keyed by id.
func (c *Cache) ProjectMap(ctx context.Context) (map[string]timesheet.Project, error) {
	projects, err := c.Projects(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]timesheet.Project, len(projects))
	for _, p := range projects {
		m[p.ID] = p
	}
	return m, nil
}

// TaskMap returns the current tasks keyed by id.
func (c *Cache) TaskMap(ctx context.Context) (map[string]timesheet.Task, error) {
	tasks, err := c.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]timesheet.Task, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m, nil
}

// Invalidate flushes both cached lists.
func (c *Cache) Invalidate() {
	c.items.Flush()
	c.logger.Debug("master data cache flushed")
}
