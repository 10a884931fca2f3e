package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"p9e.in/towerpro/models"
)

// Cache is the byte cache behind CachedStore. A miss returns found=false and
// no error.
type Cache interface {
	Get(ctx context.Context, key string) (val []byte, found bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCache adapts a go-redis client to Cache.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, val, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

const defaultCacheTTL = 24 * time.Hour

// CachedStore serves reads of completed reports from a cache. Drafts change on
// every autosave and are always read through. Cache failures are logged and
// never fail the call.
type CachedStore struct {
	next  DocumentStore
	cache Cache
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewCachedStore(next DocumentStore, cache Cache, log logrus.FieldLogger) *CachedStore {
	return &CachedStore{next: next, cache: cache, ttl: defaultCacheTTL, log: log}
}

func cacheKey(id string) string { return "report:" + id }

func (s *CachedStore) Get(ctx context.Context, id string) (*models.Report, error) {
	raw, found, err := s.cache.Get(ctx, cacheKey(id))
	if err != nil {
		s.log.WithFields(logrus.Fields{"op": "cache.get", "report_id": id}).WithError(err).Warn("report cache read failed")
	}
	if found {
		var r models.Report
		if err := json.Unmarshal(raw, &r); err == nil {
			return &r, nil
		}
	}

	r, err := s.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status == models.StatusComplete {
		s.fill(ctx, id, r)
	}
	return r, nil
}

// fill caches r, then reads the source again. A Merge that landed between
// the first read and the Set has already run its invalidation, so the stale
// entry is removed here instead.
func (s *CachedStore) fill(ctx context.Context, id string, r *models.Report) {
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(id), raw, s.ttl); err != nil {
		s.log.WithFields(logrus.Fields{"op": "cache.set", "report_id": id}).WithError(err).Warn("report cache write failed")
		return
	}

	current, err := s.next.Get(ctx, id)
	if err == nil {
		if now, merr := json.Marshal(current); merr == nil && bytes.Equal(now, raw) {
			return
		}
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.log.WithFields(logrus.Fields{"op": "cache.delete", "report_id": id}).WithError(err).Warn("report cache invalidation failed")
	}
}

func (s *CachedStore) Merge(ctx context.Context, id string, p Patch) error {
	if err := s.next.Merge(ctx, id, p); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.log.WithFields(logrus.Fields{"op": "cache.delete", "report_id": id}).WithError(err).Warn("report cache invalidation failed")
	}
	return nil
}

func (s *CachedStore) ListByOwner(ctx context.Context, owner string) ([]models.Report, error) {
	return s.next.ListByOwner(ctx, owner)
}
