// Package cache keeps leave snapshots in Redis in front of the leave table.
package cache

import (
	"context"
	"errors"
	"log/slog"

	"presence/internal/leave"
	"presence/internal/leave/models"
	"presence/pkg/platform/sentinel"
)

// Store is the snapshot cache. internal/platform/redis.JSONCache satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]models.LeaveRecord, error)
	Set(ctx context.Context, key string, records []models.LeaveRecord) error
	DeletePrefix(ctx context.Context) error
}

// Cached is a read-through leave.Source. Cache failures fall back to the
// underlying source and are only logged.
type Cached struct {
	source leave.Source
	cache  Store
	logger *slog.Logger
}

var _ leave.Source = (*Cached)(nil)

func New(source leave.Source, cache Store, logger *slog.Logger) *Cached {
	return &Cached{source: source, cache: cache, logger: logger}
}

func windowKey(from, to string) string {
	return from + ":" + to
}

func (c *Cached) List(ctx context.Context, from, to string) ([]models.LeaveRecord, error) {
	key := windowKey(from, to)
	records, err := c.cache.Get(ctx, key)
	if err == nil {
		return records, nil
	}
	if !errors.Is(err, sentinel.ErrCacheMiss) {
		c.logger.WarnContext(ctx, "leave cache read failed", "key", key, "error", err)
	}
	return c.fill(ctx, from, to)
}

// Warm reloads the window from the source and replaces the cached copy.
func (c *Cached) Warm(ctx context.Context, from, to string) error {
	_, err := c.fill(ctx, from, to)
	return err
}

// Invalidate drops every cached window.
func (c *Cached) Invalidate(ctx context.Context) error {
	return c.cache.DeletePrefix(ctx)
}

func (c *Cached) fill(ctx context.Context, from, to string) ([]models.LeaveRecord, error) {
	records, err := c.source.List(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.LeaveRecord{}
	}
	if err := c.cache.Set(ctx, windowKey(from, to), records); err != nil {
		c.logger.WarnContext(ctx, "leave cache write failed", "from", from, "to", to, "error", err)
	}
	return records, nil
}
