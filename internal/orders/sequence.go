package orders

import (
	"context"
	stdErrors "errors"
	"strconv"
	"sync"

	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/redis"
)

// FirstBaseNumber keeps customer-facing order numbers six digits from day
// one.
const FirstBaseNumber = 100000

const baseNumberCounter = "order_base_number"

// RedisAllocator allocates base numbers with an atomic Redis counter. The
// counter survives restarts; Seed only backfills it when the key is absent,
// so a live counter is never rewound.
type RedisAllocator struct {
	client *redis.Client
}

// NewRedisAllocator builds the allocator.
func NewRedisAllocator(client *redis.Client) (*RedisAllocator, error) {
	if client == nil {
		return nil, stdErrors.New("redis client is required")
	}
	return &RedisAllocator{client: client}, nil
}

// Seed initializes the counter from the highest persisted base number. Called
// once at boot; a no-op when the counter already exists.
func (a *RedisAllocator) Seed(ctx context.Context, highestPersisted int64) error {
	floor := highestPersisted
	if floor < FirstBaseNumber-1 {
		floor = FirstBaseNumber - 1
	}
	_, err := a.client.SetNX(ctx, a.client.CounterKey(baseNumberCounter), strconv.FormatInt(floor, 10), 0)
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "seed order number counter")
	}
	return nil
}

// Next returns the next unused base number.
func (a *RedisAllocator) Next(ctx context.Context) (int64, error) {
	next, err := a.client.Incr(ctx, a.client.CounterKey(baseNumberCounter))
	if err != nil {
		return 0, errors.Wrap(errors.CodeDependency, err, "allocate order number")
	}
	return next, nil
}

// MemoryAllocator is an in-process allocator for tests and single-node dev
// runs.
type MemoryAllocator struct {
	mu   sync.Mutex
	last int64
}

// NewMemoryAllocator starts counting after the given base number.
func NewMemoryAllocator(highestPersisted int64) *MemoryAllocator {
	last := highestPersisted
	if last < FirstBaseNumber-1 {
		last = FirstBaseNumber - 1
	}
	return &MemoryAllocator{last: last}
}

// Next returns the next unused base number.
func (m *MemoryAllocator) Next(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last++
	return m.last, nil
}

var (
	_ BaseNumberAllocator = (*RedisAllocator)(nil)
	_ BaseNumberAllocator = (*MemoryAllocator)(nil)
)
