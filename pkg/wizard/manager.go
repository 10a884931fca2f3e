package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"p9e.in/towerpro/models"
	"p9e.in/towerpro/pkg/store"
)

// Manager keeps the open sessions, one per report id.
type Manager struct {
	docs     store.DocumentStore
	saver    Saver
	uploader Uploader
	log      logrus.FieldLogger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(docs store.DocumentStore, saver Saver, uploader Uploader, log logrus.FieldLogger) *Manager {
	return &Manager{
		docs:     docs,
		saver:    saver,
		uploader: uploader,
		log:      log,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// Start opens a wizard on a fresh draft under a newly generated id. Nothing
// is stored until the first Advance.
func (m *Manager) Start(owner string) *Session {
	s := newSession(models.NewReport(models.NewReportID(m.now())), owner, m.saver, m.uploader, m.log)
	m.put(s)
	return s
}

// OpenForEdit loads id into a new session at the first step. An id with no
// stored document starts an empty draft under that id.
func (m *Manager) OpenForEdit(ctx context.Context, id, owner string) (*Session, error) {
	doc := models.NewReport(id)
	stored, err := m.docs.Get(ctx, id)
	switch {
	case err == nil:
		doc = *stored
	case errors.Is(err, store.ErrNotFound):
		m.log.WithFields(logrus.Fields{"op": "wizard.open", "report_id": id}).Info("no stored report, starting fresh")
	default:
		return nil, fmt.Errorf("load report %s: %w", id, err)
	}

	s := newSession(doc, owner, m.saver, m.uploader, m.log)
	if old := m.put(s); old != nil {
		old.Flush()
	}
	return s, nil
}

// Get returns the open session for id if it belongs to owner.
func (m *Manager) Get(id, owner string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.owner != owner {
		return nil, ErrNoSession
	}
	return s, nil
}

// Finalize submits the open session for id and, once the report is stored,
// drops the session. A failed submission keeps the session for a retry.
func (m *Manager) Finalize(ctx context.Context, id, owner string) (State, error) {
	s, err := m.Get(id, owner)
	if err != nil {
		return State{}, err
	}
	st, err := s.Finalize(ctx)
	if err != nil {
		return st, err
	}
	s.Flush()

	m.mu.Lock()
	if m.sessions[id] == s {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	return st, nil
}

func (m *Manager) put(s *Session) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.sessions[s.ID()]
	m.sessions[s.ID()] = s
	return old
}

// Close waits for every pending autosave. Used on shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		s.Flush()
	}
}
