// internal/domain/cart/snapshot.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore is the durable load/save contract for cart snapshots. Load
// returns (nil, nil) when no snapshot exists. The engine tolerates the store
// being entirely absent and treats save failures as non-fatal.
type SnapshotStore interface {
	Load(ctx context.Context, ownerKey string) (*Snapshot, error)
	Save(ctx context.Context, ownerKey string, snap Snapshot) error
	Delete(ctx context.Context, ownerKey string) error
}

// RedisSnapshotStore persists cart snapshots as JSON values with a TTL
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotStore creates a Redis-backed snapshot store
func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisSnapshotStore{
		client: client,
		ttl:    ttl,
	}
}

func snapshotKey(ownerKey string) string {
	return fmt.Sprintf("cart:snapshot:%s", ownerKey)
}

// Load retrieves a snapshot by owner key
func (s *RedisSnapshotStore) Load(ctx context.Context, ownerKey string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey(ownerKey)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	return &snap, nil
}

// Save stores a snapshot with the configured expiration
func (s *RedisSnapshotStore) Save(ctx context.Context, ownerKey string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(ownerKey), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}
	return nil
}

// Delete removes a snapshot
func (s *RedisSnapshotStore) Delete(ctx context.Context, ownerKey string) error {
	if err := s.client.Del(ctx, snapshotKey(ownerKey)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}

// MemorySnapshotStore is an in-memory SnapshotStore for tests and for
// running without Redis
type MemorySnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewMemorySnapshotStore creates an empty in-memory snapshot store
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{
		snaps: make(map[string]Snapshot),
	}
}

// Load retrieves a snapshot by owner key
func (s *MemorySnapshotStore) Load(_ context.Context, ownerKey string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[ownerKey]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

// Save stores a snapshot
func (s *MemorySnapshotStore) Save(_ context.Context, ownerKey string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[ownerKey] = snap
	return nil
}

// Delete removes a snapshot
func (s *MemorySnapshotStore) Delete(_ context.Context, ownerKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, ownerKey)
	return nil
}
