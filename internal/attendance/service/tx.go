package service

import (
	"context"
	"sync"
	"time"

	"presence/internal/attendance/store"
	dErrors "presence/pkg/domain-errors"
)

// StoreTx runs one person's save batch as a unit. Implementations may wrap a
// database transaction or, in memory, a per-person lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(store store.Store) error) error
}

// Save batches from the same person key always land on the same shard and
// run one at a time; batches from different people usually run in parallel.
const numStoreShards = 64

const defaultTxTimeout = 5 * time.Second

type shardedStoreTx struct {
	shards  [numStoreShards]sync.Mutex
	store   store.Store
	timeout time.Duration
}

// NewShardedTx serializes save batches per person over an in-memory store.
// It only orders batches; the store must itself apply a batch all-or-nothing.
func NewShardedTx(s store.Store) StoreTx {
	return &shardedStoreTx{store: s}
}

func (t *shardedStoreTx) RunInTx(ctx context.Context, fn func(store store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(t.store)
}

// selectShard picks the shard for the person whose batch is saving, or shard
// 0 when the context carries no person key.
func selectShard(ctx context.Context) int {
	if key, ok := ctx.Value(txPersonKeyCtx).(string); ok && key != "" {
		return int(fnv32(key) % numStoreShards)
	}
	return 0
}

// fnv32 is FNV-1a.
func fnv32(s string) uint32 {
	const (
		offset = 2166136261
		prime  = 16777619
	)
	h := uint32(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

type txPersonKey struct{}

var txPersonKeyCtx = txPersonKey{}

// withTxPerson tags ctx with the person key a save batch belongs to.
func withTxPerson(ctx context.Context, personKey string) context.Context {
	return context.WithValue(ctx, txPersonKeyCtx, personKey)
}
