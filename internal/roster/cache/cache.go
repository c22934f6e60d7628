// Package cache keeps the roster in Redis in front of the team table.
package cache

import (
	"context"
	"errors"
	"log/slog"

	"presence/internal/roster"
	"presence/internal/roster/models"
	"presence/pkg/platform/sentinel"
)

const rosterKey = "active"

// Store is the snapshot cache. internal/platform/redis.JSONCache satisfies it.
type Store interface {
	Get(ctx context.Context, key string) (models.Roster, error)
	Set(ctx context.Context, key string, members models.Roster) error
}

// Cached is a read-through roster.Source.
type Cached struct {
	source roster.Source
	cache  Store
	logger *slog.Logger
}

var _ roster.Source = (*Cached)(nil)

func New(source roster.Source, cache Store, logger *slog.Logger) *Cached {
	return &Cached{source: source, cache: cache, logger: logger}
}

func (c *Cached) Members(ctx context.Context) (models.Roster, error) {
	members, err := c.cache.Get(ctx, rosterKey)
	if err == nil {
		return members, nil
	}
	if !errors.Is(err, sentinel.ErrCacheMiss) {
		c.logger.WarnContext(ctx, "roster cache read failed", "error", err)
	}

	members, err = c.source.Members(ctx)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = models.Roster{}
	}
	if err := c.cache.Set(ctx, rosterKey, members); err != nil {
		c.logger.WarnContext(ctx, "roster cache write failed", "error", err)
	}
	return members, nil
}
