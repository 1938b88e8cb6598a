package localstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ScepterCode/Storemaster-sub000/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps collections in Redis, one key per kind. Used when the
// client-resident store is shared across devices behind the same account.
type RedisStore struct {
	rdb *redis.Client
	// prefix isolates one user's collections from another's.
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *RedisStore) get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(key), raw, 0).Err()
}

func (s *RedisStore) GetAll(ctx context.Context, kind models.EntityKind) ([]json.RawMessage, error) {
	var records []json.RawMessage
	ok, err := s.get(ctx, CollectionKey(kind), &records)
	if err != nil || !ok {
		return nil, err
	}
	return records, nil
}

func (s *RedisStore) SetAll(ctx context.Context, kind models.EntityKind, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	return s.set(ctx, CollectionKey(kind), records)
}

func (s *RedisStore) GetStatus(ctx context.Context, key string, dest any) (bool, error) {
	return s.get(ctx, key, dest)
}

func (s *RedisStore) SetStatus(ctx context.Context, key string, value any) error {
	return s.set(ctx, key, value)
}
