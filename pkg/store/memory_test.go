package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p9e.in/towerpro/models"
)

func ptr[T any](v T) *T { return &v }

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "report_1_abcde")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_MergeRules(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id := "report_1_abcde"
	t1 := time.Date(2025, 5, 16, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t2.Add(time.Minute)

	doc := models.NewReport(id)
	doc.SiteInfo.FacilityName = "Acme Plant"
	p := ContentPatch(doc)
	p.CreatedBy = ptr("user-1")
	p.UpdatedAt = &t1
	p.CreatedAtIfAbsent = &t1
	require.NoError(t, s.Merge(ctx, id, p))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, got.Status)
	assert.Equal(t, models.CurrentSchemaVersion, got.SchemaVersion)
	assert.Equal(t, "Acme Plant", got.SiteInfo.FacilityName)
	assert.True(t, got.CreatedAt.Equal(t1))

	// second autosave: createdAt kept, updatedAt advanced
	p = Patch{UpdatedAt: &t2, CreatedAtIfAbsent: &t2, TowerInfo: &models.TowerInfo{Manufacturer: "BAC"}}
	require.NoError(t, s.Merge(ctx, id, p))
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(t1))
	assert.True(t, got.UpdatedAt.Equal(t2))
	assert.Equal(t, "Acme Plant", got.SiteInfo.FacilityName, "untouched slice survives")
	assert.Equal(t, "BAC", got.TowerInfo.Manufacturer)

	complete := models.StatusComplete
	require.NoError(t, s.Merge(ctx, id, Patch{Status: &complete, CompletedAtIfAbsent: &t2, UpdatedAt: &t2}))

	draft := models.StatusDraft
	require.NoError(t, s.Merge(ctx, id, Patch{Status: &draft, CompletedAtIfAbsent: &t3, UpdatedAt: &t3}))
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, got.Status, "complete never regresses")
	assert.True(t, got.CompletedAt.Equal(t2))
	assert.True(t, got.UpdatedAt.Equal(t3))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id := "report_1_abcde"
	doc := models.NewReport(id)
	doc.Sections[models.SectionBasin] = models.SectionResult{Photos: []string{"a"}}
	require.NoError(t, s.Merge(ctx, id, ContentPatch(doc)))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	got.Sections[models.SectionBasin] = models.SectionResult{Photos: []string{"b"}}

	again, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Sections.Section(models.SectionBasin).Photos)
}

func TestMemoryStore_ListByOwner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, owner := range []string{"u1", "u2", "u1", "u1"} {
		created := base.Add(time.Duration(i) * time.Hour)
		id := models.NewReportID(created)
		require.NoError(t, s.Merge(ctx, id, Patch{CreatedBy: ptr(owner), CreatedAtIfAbsent: &created}))
	}

	list, err := s.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].CreatedAt.After(*list[i].CreatedAt), "newest first")
	}

	none, err := s.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
