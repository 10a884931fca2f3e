package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"p9e.in/towerpro/models"
)

// MemoryStore keeps documents in process. Documents are stored serialized so
// callers never share maps or slices with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string][]byte{}}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Report, error) {
	s.mu.RLock()
	raw, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var r models.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &r, nil
}

func (s *MemoryStore) Merge(ctx context.Context, id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := models.Report{ID: id}
	if raw, ok := s.docs[id]; ok {
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("decode report %s: %w", id, err)
		}
	}

	r.SchemaVersion = models.CurrentSchemaVersion
	r.Status = mergeStatus(r.Status, p.Status)
	if p.SiteInfo != nil {
		r.SiteInfo = *p.SiteInfo
	}
	if p.TowerInfo != nil {
		r.TowerInfo = *p.TowerInfo
	}
	if p.Inspector != nil {
		r.InspectorID = p.Inspector.InspectorID
		r.InspectorName = p.Inspector.InspectorName
		r.InspectorCert = p.Inspector.InspectorCert
	}
	if p.Sections != nil {
		r.Sections = p.Sections
	}
	if p.Conductivity != nil {
		r.Conductivity = *p.Conductivity
	}
	if p.Chemical != nil {
		r.Chemical = *p.Chemical
	}
	if p.Records != nil {
		r.Records = *p.Records
	}
	if p.OverallNotes != nil {
		r.OverallNotes = *p.OverallNotes
	}
	if p.CreatedBy != nil {
		r.CreatedBy = *p.CreatedBy
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		r.UpdatedAt = &t
	}
	if p.CreatedAtIfAbsent != nil && r.CreatedAt == nil {
		t := *p.CreatedAtIfAbsent
		r.CreatedAt = &t
	}
	if p.CompletedAtIfAbsent != nil && r.CompletedAt == nil {
		t := *p.CompletedAtIfAbsent
		r.CompletedAt = &t
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", id, err)
	}
	s.docs[id] = raw
	return nil
}

func (s *MemoryStore) ListByOwner(ctx context.Context, owner string) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Report
	for id, raw := range s.docs {
		var r models.Report
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", id, err)
		}
		if r.CreatedBy == owner {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	return out, nil
}
