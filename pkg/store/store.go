// Package store persists report documents keyed by report id.
//
// Every write is a merge: fields carried by a Patch overwrite the stored value,
// fields left nil are untouched. All backends share three conditional rules:
//   - a new row starts as draft;
//   - status never moves back from complete to draft;
//   - createdAt and completedAt are only written when not already set.
package store

import (
	"context"
	"errors"
	"time"

	"p9e.in/towerpro/models"
)

// ErrNotFound is returned by Get when no document exists for the id.
var ErrNotFound = errors.New("report not found")

// DocumentStore is the key-value document store consumed by the engine.
type DocumentStore interface {
	Get(ctx context.Context, id string) (*models.Report, error)
	Merge(ctx context.Context, id string, patch Patch) error
	ListByOwner(ctx context.Context, owner string) ([]models.Report, error)
}

// Patch is one partial write. Nil fields are left as stored.
type Patch struct {
	SiteInfo     *models.SiteInfo
	TowerInfo    *models.TowerInfo
	Inspector    *models.InspectorSelection
	Sections     models.Sections
	Conductivity *models.Conductivity
	Chemical     *models.Chemical
	Records      *models.Records
	OverallNotes *string

	Status    *models.Status
	CreatedBy *string
	UpdatedAt *time.Time

	// Written only when the stored value is empty (first write wins).
	CreatedAtIfAbsent   *time.Time
	CompletedAtIfAbsent *time.Time
}

// ContentPatch carries every content slice of r: the shape of an autosave.
func ContentPatch(r models.Report) Patch {
	inspector := models.InspectorSelection{
		InspectorID:   r.InspectorID,
		InspectorName: r.InspectorName,
		InspectorCert: r.InspectorCert,
	}
	sections := r.Sections
	if sections == nil {
		sections = models.EmptySections()
	}
	notes := r.OverallNotes
	return Patch{
		SiteInfo:     &r.SiteInfo,
		TowerInfo:    &r.TowerInfo,
		Inspector:    &inspector,
		Sections:     sections,
		Conductivity: &r.Conductivity,
		Chemical:     &r.Chemical,
		Records:      &r.Records,
		OverallNotes: &notes,
	}
}

// mergeStatus applies the one-way status rule.
func mergeStatus(stored models.Status, incoming *models.Status) models.Status {
	if stored == models.StatusComplete {
		return stored
	}
	if incoming == nil {
		if stored == "" {
			return models.StatusDraft
		}
		return stored
	}
	return *incoming
}
