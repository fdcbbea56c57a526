package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"listing-forge/internal/listing"
)

const (
	projectKeyPrefix = "lf:project:"
	projectIndexKey  = "lf:projects"
)

// RedisStore keeps each project as a JSON value plus a recency index in
// a sorted set scored by update time.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping verifies connectivity so callers can fall back to the memory
// store before taking traffic.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*listing.Project, error) {
	data, err := s.client.Get(ctx, projectKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	return decodeProject(data)
}

func (s *RedisStore) List(ctx context.Context) ([]listing.Project, error) {
	ids, err := s.client.ZRevRange(ctx, projectIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}

	out := make([]listing.Project, 0, len(ids))
	for _, id := range ids {
		p, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// Index entry outlived its value; heal the index.
			_ = s.client.ZRem(ctx, projectIndexKey, id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *RedisStore) Save(ctx context.Context, p *listing.Project) error {
	if p.ID == "" {
		return errors.New("project id is empty")
	}
	p.UpdatedAt = time.Now().UTC()
	data, err := encodeProject(p)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, projectKeyPrefix+p.ID, data, 0)
	pipe.ZAdd(ctx, projectIndexKey, redis.Z{Score: float64(p.UpdatedAt.UnixMilli()), Member: p.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save %s: %w", p.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	deleted, err := s.client.Del(ctx, projectKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", id, err)
	}
	if err := s.client.ZRem(ctx, projectIndexKey, id).Err(); err != nil {
		return fmt.Errorf("redis delete index %s: %w", id, err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}
