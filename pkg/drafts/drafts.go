// Package drafts turns the in-memory report into durable writes: autosaved
// drafts and the one-way finalization.
package drafts

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"p9e.in/towerpro/models"
	"p9e.in/towerpro/pkg/events"
	"p9e.in/towerpro/pkg/store"
)

var tracer = otel.Tracer("p9e.in/towerpro/pkg/drafts")

// Persister writes report documents on behalf of a signed-in user. The owner
// is always passed in by the caller.
type Persister struct {
	store     store.DocumentStore
	publisher events.Publisher
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewPersister(s store.DocumentStore, pub events.Publisher, log logrus.FieldLogger) *Persister {
	if pub == nil {
		pub = events.LogPublisher{Log: log}
	}
	return &Persister{store: s, publisher: pub, log: log, now: time.Now}
}

// Store exposes the underlying document store for reads.
func (p *Persister) Store() store.DocumentStore { return p.store }

// SaveDraft merges every content slice of doc into the stored document.
// It never writes status, so a completed report cannot be reopened by an
// autosave. The error is returned for the caller's diagnostic sink.
func (p *Persister) SaveDraft(ctx context.Context, doc models.Report, owner string) error {
	ctx, span := tracer.Start(ctx, "drafts.SaveDraft")
	defer span.End()
	span.SetAttributes(attribute.String("report.id", doc.ID))

	now := p.now().UTC()
	patch := store.ContentPatch(doc)
	patch.CreatedBy = &owner
	patch.UpdatedAt = &now
	patch.CreatedAtIfAbsent = &now

	if err := p.store.Merge(ctx, doc.ID, patch); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save draft")
		return fmt.Errorf("save draft %s: %w", doc.ID, err)
	}
	return nil
}

// Finalize writes the terminal submission: status complete, completedAt
// (kept if the report was completed before), createdBy and the timestamps,
// together with the full content. Failure is returned to the user.
//
// On success it returns the stored document, or doc stamped locally when
// the read back fails.
func (p *Persister) Finalize(ctx context.Context, doc models.Report, owner string) (models.Report, error) {
	ctx, span := tracer.Start(ctx, "drafts.Finalize")
	defer span.End()
	span.SetAttributes(attribute.String("report.id", doc.ID))

	now := p.now().UTC()
	complete := models.StatusComplete
	patch := store.ContentPatch(doc)
	patch.Status = &complete
	patch.CreatedBy = &owner
	patch.UpdatedAt = &now
	patch.CreatedAtIfAbsent = &now
	patch.CompletedAtIfAbsent = &now

	if err := p.store.Merge(ctx, doc.ID, patch); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "finalize")
		return doc, fmt.Errorf("finalize %s: %w", doc.ID, err)
	}

	final := doc
	final.Status = models.StatusComplete
	final.CreatedBy = owner
	final.UpdatedAt = &now
	if final.CompletedAt == nil {
		final.CompletedAt = &now
	}
	if stored, err := p.store.Get(ctx, doc.ID); err == nil {
		final = *stored
	} else {
		p.log.WithFields(logrus.Fields{"op": "drafts.finalize.reload", "report_id": doc.ID}).WithError(err).Warn("reload after finalize failed")
	}

	completedAt := now
	if final.CompletedAt != nil {
		completedAt = *final.CompletedAt
	}
	ev := events.ReportCompleted{ReportID: final.ID, CreatedBy: owner, CompletedAt: completedAt}
	if err := p.publisher.PublishCompleted(ctx, ev); err != nil {
		p.log.WithFields(logrus.Fields{"op": "events.publish", "report_id": doc.ID}).WithError(err).Error("completion event not published")
	}
	return final, nil
}
