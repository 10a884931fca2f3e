package drafts

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
	"p9e.in/towerpro/pkg/events"
	"p9e.in/towerpro/pkg/store"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type recordingPublisher struct {
	got []events.ReportCompleted
	err error
}

func (p *recordingPublisher) PublishCompleted(_ context.Context, ev events.ReportCompleted) error {
	p.got = append(p.got, ev)
	return p.err
}

type failingStore struct {
	store.DocumentStore
	err error
}

func (s failingStore) Merge(context.Context, string, store.Patch) error { return s.err }

func newTestPersister(s store.DocumentStore, pub events.Publisher) (*Persister, *test.Hook) {
	log, hook := test.NewNullLogger()
	p := NewPersister(s, pub, log)
	clock := &stepClock{t: time.Date(2025, 5, 16, 9, 0, 0, 0, time.UTC)}
	p.now = clock.now
	return p, hook
}

func TestSaveDraft_IdempotentExceptUpdatedAt(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	p, _ := newTestPersister(mem, nil)

	doc := models.NewReport("report_1_abcde")
	doc.SiteInfo.FacilityName = "Acme Plant"

	require.NoError(t, p.SaveDraft(ctx, doc, "user-1"))
	first, err := mem.Get(ctx, doc.ID)
	require.NoError(t, err)

	require.NoError(t, p.SaveDraft(ctx, doc, "user-1"))
	second, err := mem.Get(ctx, doc.ID)
	require.NoError(t, err)

	assert.True(t, second.UpdatedAt.After(*first.UpdatedAt))
	assert.True(t, second.CreatedAt.Equal(*first.CreatedAt))

	first.UpdatedAt, second.UpdatedAt = nil, nil
	assert.Equal(t, first, second)
	assert.Equal(t, models.StatusDraft, second.Status)
	assert.Equal(t, "user-1", second.CreatedBy)
}

func TestFinalize_OneWay(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	pub := &recordingPublisher{}
	p, _ := newTestPersister(mem, pub)

	doc := models.NewReport("report_1_abcde")
	require.NoError(t, p.SaveDraft(ctx, doc, "user-1"))
	draft, err := mem.Get(ctx, doc.ID)
	require.NoError(t, err)

	final, err := p.Finalize(ctx, doc, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, final.Status)
	require.NotNil(t, final.CompletedAt)
	assert.True(t, final.CreatedAt.Equal(*draft.CreatedAt), "createdAt survives finalize")

	// autosaves after completion never reopen it
	require.NoError(t, p.SaveDraft(ctx, doc, "user-1"))
	require.NoError(t, p.SaveDraft(ctx, doc, "user-1"))
	stored, err := mem.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, stored.Status)

	// resubmission keeps the original completion time
	again, err := p.Finalize(ctx, doc, "user-1")
	require.NoError(t, err)
	assert.True(t, again.CompletedAt.Equal(*final.CompletedAt))

	require.Len(t, pub.got, 2)
	assert.Equal(t, "report_1_abcde", pub.got[0].ReportID)
	assert.Equal(t, "user-1", pub.got[0].CreatedBy)
}

func TestFinalize_StoreFailureIsLoud(t *testing.T) {
	boom := errors.New("unavailable")
	pub := &recordingPublisher{}
	p, _ := newTestPersister(failingStore{DocumentStore: store.NewMemoryStore(), err: boom}, pub)

	doc := models.NewReport("report_1_abcde")
	doc.OverallNotes = "keep me"
	got, err := p.Finalize(context.Background(), doc, "user-1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, doc, got, "in-memory document preserved for retry")
	assert.Empty(t, pub.got)
}

func TestFinalize_PublishFailureIsLogged(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("topic missing")}
	p, hook := newTestPersister(store.NewMemoryStore(), pub)

	_, err := p.Finalize(context.Background(), models.NewReport("r1"), "user-1")
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "events.publish", hook.LastEntry().Data["op"])
}
