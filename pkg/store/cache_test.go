package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p9e.in/towerpro/models"
)

type mapCache struct {
	vals   map[string][]byte
	setErr error
	sets   int
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.vals[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.vals[key] = val
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	delete(c.vals, key)
	return nil
}

func TestCachedStore_CachesOnlyComplete(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	mem := NewMemoryStore()
	cache := &mapCache{vals: map[string][]byte{}}
	s := NewCachedStore(mem, cache, log)

	require.NoError(t, s.Merge(ctx, "draft", Patch{}))
	_, err := s.Get(ctx, "draft")
	require.NoError(t, err)
	assert.Empty(t, cache.vals)

	complete := models.StatusComplete
	require.NoError(t, s.Merge(ctx, "done", Patch{Status: &complete}))
	_, err = s.Get(ctx, "done")
	require.NoError(t, err)
	assert.Contains(t, cache.vals, "report:done")

	// a write invalidates
	require.NoError(t, s.Merge(ctx, "done", Patch{OverallNotes: ptr("late note")}))
	assert.NotContains(t, cache.vals, "report:done")
	got, err := s.Get(ctx, "done")
	require.NoError(t, err)
	assert.Equal(t, "late note", got.OverallNotes)
}

func TestCachedStore_CacheFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	log, hook := test.NewNullLogger()
	mem := NewMemoryStore()
	cache := &mapCache{vals: map[string][]byte{}, setErr: errors.New("connection refused")}
	s := NewCachedStore(mem, cache, log)

	complete := models.StatusComplete
	require.NoError(t, mem.Merge(ctx, "done", Patch{Status: &complete}))
	r, err := s.Get(ctx, "done")
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, r.Status)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "cache.set", hook.LastEntry().Data["op"])
}

func TestCachedStore_PassesNotFound(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := NewCachedStore(NewMemoryStore(), &mapCache{vals: map[string][]byte{}}, log)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

// racingStore runs a write through the cache the first time a report is read,
// after the read has taken its snapshot.
type racingStore struct {
	*MemoryStore
	cached *CachedStore
	reads  int
}

func (r *racingStore) Get(ctx context.Context, id string) (*models.Report, error) {
	doc, err := r.MemoryStore.Get(ctx, id)
	r.reads++
	if r.reads == 1 && err == nil {
		if err := r.cached.Merge(ctx, id, Patch{OverallNotes: ptr("amended")}); err != nil {
			return nil, err
		}
	}
	return doc, err
}

func TestCachedStore_WriteDuringFillIsNotCached(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	src := &racingStore{MemoryStore: NewMemoryStore()}
	cache := &mapCache{vals: map[string][]byte{}}
	s := NewCachedStore(src, cache, log)
	src.cached = s

	complete := models.StatusComplete
	require.NoError(t, src.MemoryStore.Merge(ctx, "done", Patch{Status: &complete, OverallNotes: ptr("original")}))

	got, err := s.Get(ctx, "done")
	require.NoError(t, err)
	assert.Equal(t, "original", got.OverallNotes)
	assert.NotContains(t, cache.vals, "report:done")

	got, err = s.Get(ctx, "done")
	require.NoError(t, err)
	assert.Equal(t, "amended", got.OverallNotes)
	assert.Contains(t, cache.vals, "report:done")
}
