package tx

import (
	"context"
	"sync"
	"time"

	dErrors "pharmaops/pkg/domain-errors"
)

// Runner serializes workflow transitions per entity. The key is the id of the
// aggregate being transitioned (normally the order id); all reads that feed a
// transition decision happen inside fn, in the same transaction as the write
// that acts on the decision.
//
// The postgres implementation opens a real transaction and takes a per-key
// advisory lock. MutexRunner backs the in-memory stores in tests.
type Runner interface {
	RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// numShards trades lock granularity against footprint. Two orders rarely hash
// to the same shard; two transitions on the same order always do.
const numShards = 128

// defaultTxTimeout bounds a workflow transaction.
const defaultTxTimeout = 5 * time.Second

// MutexRunner provides the Runner contract over in-memory stores using
// sharded mutexes keyed by FNV-1a of the entity id.
type MutexRunner struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

func NewMutexRunner() *MutexRunner {
	return &MutexRunner{}
}

func (r *MutexRunner) RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := r.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := hashKey(key) % numShards
	r.shards[shard].Lock()
	defer r.shards[shard].Unlock()

	// Check again after acquiring the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// hashKey uses FNV-1a for even shard distribution.
func hashKey(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
