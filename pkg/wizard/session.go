// Package wizard drives the eleven-step report composition flow for one user
// and one report at a time.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"p9e.in/towerpro/models"
	"p9e.in/towerpro/pkg/attachments"
)

var (
	ErrNotAtReview    = errors.New("submit is only available on the review step")
	ErrSaveInProgress = errors.New("a submission is already in progress")
	ErrFinalized      = errors.New("report already submitted in this session")
	ErrNoSession      = errors.New("no open wizard for this report")
)

// Saver is the persistence used by a session.
type Saver interface {
	SaveDraft(ctx context.Context, doc models.Report, owner string) error
	Finalize(ctx context.Context, doc models.Report, owner string) (models.Report, error)
}

// Uploader is the photo pipeline used by a session.
type Uploader interface {
	Upload(ctx context.Context, reportID string, target models.PhotoTarget, files []attachments.File, existing []string, progress func(attachments.Progress)) ([]string, error)
}

// State is a read-only snapshot of a session.
type State struct {
	ReportID  string         `json:"reportId"`
	StepIndex int            `json:"stepIndex"`
	StepKey   models.StepKey `json:"stepKey"`
	StepCount int            `json:"stepCount"`
	IsFirst   bool           `json:"isFirst"`
	IsLast    bool           `json:"isLast"`
	Steps     []models.Step  `json:"steps"`
	Document  models.Report  `json:"document"`
	IsSaving  bool           `json:"isSaving"`
	LastError string         `json:"lastError,omitempty"`
	Finalized bool           `json:"finalized"`
}

// Session holds the in-progress document and the current step.
//
// Advance issues an autosave and moves on without waiting for it. Autosaves
// run detached, strictly in the order they were issued, and their failures go
// to the log only. Flush waits for the ones still running.
type Session struct {
	owner    string
	saver    Saver
	uploader Uploader
	log      logrus.FieldLogger

	mu        sync.Mutex
	stepIndex int
	doc       models.Report
	isSaving  bool
	lastError error
	finalized bool

	pending <-chan struct{}
	wg      sync.WaitGroup
}

func newSession(doc models.Report, owner string, saver Saver, uploader Uploader, log logrus.FieldLogger) *Session {
	if doc.Sections == nil {
		doc.Sections = models.EmptySections()
	}
	return &Session{
		owner:    owner,
		saver:    saver,
		uploader: uploader,
		log:      log.WithFields(logrus.Fields{"report_id": doc.ID, "owner": owner}),
		doc:      doc,
	}
}

func (s *Session) ID() string    { return s.doc.ID }
func (s *Session) Owner() string { return s.owner }

// State returns a snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{
		ReportID:  s.doc.ID,
		StepIndex: s.stepIndex,
		StepKey:   models.Steps[s.stepIndex].Key,
		StepCount: len(models.Steps),
		IsFirst:   s.stepIndex == 0,
		IsLast:    s.stepIndex == models.LastStepIndex,
		Steps:     models.Steps,
		Document:  s.doc,
		IsSaving:  s.isSaving,
		Finalized: s.finalized,
	}
	if s.lastError != nil {
		st.LastError = s.lastError.Error()
	}
	return st
}

// Document returns the current in-memory document.
func (s *Session) Document() models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Advance autosaves the current document and moves one step forward. On the
// review step the save still happens but the index stays put.
func (s *Session) Advance(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autosaveLocked(ctx, s.doc)
	if s.stepIndex < models.LastStepIndex {
		s.stepIndex++
	}
	return s.stateLocked()
}

// Retreat moves one step back without saving. At the first step it is a no-op.
func (s *Session) Retreat() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stepIndex > 0 {
		s.stepIndex--
	}
	return s.stateLocked()
}

// UpdateStepData replaces the slice owned by step with payload in memory.
// Nothing is persisted until the next Advance or Finalize.
func (s *Session) UpdateStepData(step models.StepKey, payload any) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return s.stateLocked(), ErrFinalized
	}
	next, err := models.ApplyStepUpdate(s.doc, step, payload)
	if err != nil {
		return s.stateLocked(), err
	}
	s.doc = next
	return s.stateLocked(), nil
}

// SelectInspector snapshots a roster entry into the document.
func (s *Session) SelectInspector(in models.Inspector) (State, error) {
	return s.UpdateStepData(models.StepInspector, in.Selection())
}

// Finalize submits the report. It is only reachable from the review step and
// rejects a second call while one is in flight. On failure the document is
// kept as is and the error is both returned and kept in State.LastError so
// the user can retry.
func (s *Session) Finalize(ctx context.Context) (State, error) {
	s.mu.Lock()
	var blocked error
	switch {
	case s.stepIndex != models.LastStepIndex:
		blocked = ErrNotAtReview
	case s.isSaving:
		blocked = ErrSaveInProgress
	case s.finalized:
		blocked = ErrFinalized
	}
	if blocked != nil {
		st := s.stateLocked()
		s.mu.Unlock()
		return st, blocked
	}
	s.isSaving = true
	s.lastError = nil
	doc := s.doc
	pending := s.pending
	s.mu.Unlock()

	// earlier autosaves land first
	if pending != nil {
		<-pending
	}
	final, err := s.saver.Finalize(ctx, doc, s.owner)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isSaving = false
	if err != nil {
		s.lastError = err
		s.log.WithField("op", "wizard.finalize").WithError(err).Error("report submission failed")
		return s.stateLocked(), err
	}
	s.doc = final
	s.finalized = true
	return s.stateLocked(), nil
}

// autosaveLocked queues a detached save of doc behind the previous one.
func (s *Session) autosaveLocked(ctx context.Context, doc models.Report) {
	prev := s.pending
	done := make(chan struct{})
	s.pending = done
	step := models.Steps[s.stepIndex].Key

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		if err := s.saver.SaveDraft(context.WithoutCancel(ctx), doc, s.owner); err != nil {
			s.log.WithFields(logrus.Fields{"op": "wizard.autosave", "step": step}).WithError(err).Error("autosave failed")
		}
	}()
}

// Flush blocks until every autosave issued so far has finished.
func (s *Session) Flush() {
	s.wg.Wait()
}

// AddPhotos uploads files for target and appends the resulting URLs to the
// target's current photo list. When the upload stops part way, the photos
// that made it are still added and the upload error is returned.
func (s *Session) AddPhotos(ctx context.Context, target models.PhotoTarget, files []attachments.File, progress func(attachments.Progress)) (State, error) {
	s.mu.Lock()
	if s.finalized {
		st := s.stateLocked()
		s.mu.Unlock()
		return st, ErrFinalized
	}
	id := s.doc.ID
	s.mu.Unlock()

	added, upErr := s.uploader.Upload(ctx, id, target, files, nil, progress)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(added) > 0 {
		current, err := s.doc.Photos(target)
		if err != nil {
			return s.stateLocked(), err
		}
		urls := make([]string, 0, len(current)+len(added))
		urls = append(append(urls, current...), added...)
		if err := s.setPhotosLocked(target, urls); err != nil {
			return s.stateLocked(), err
		}
	}
	return s.stateLocked(), upErr
}

// RemovePhoto drops the photo at idx from target. The stored file is kept.
func (s *Session) RemovePhoto(target models.PhotoTarget, idx int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return s.stateLocked(), ErrFinalized
	}
	current, err := s.doc.Photos(target)
	if err != nil {
		return s.stateLocked(), err
	}
	urls, err := attachments.Remove(current, idx)
	if err != nil {
		return s.stateLocked(), err
	}
	if err := s.setPhotosLocked(target, urls); err != nil {
		return s.stateLocked(), err
	}
	return s.stateLocked(), nil
}

func (s *Session) setPhotosLocked(target models.PhotoTarget, urls []string) error {
	step, payload, err := s.doc.PhotoUpdate(target, urls)
	if err != nil {
		return err
	}
	next, err := models.ApplyStepUpdate(s.doc, step, payload)
	if err != nil {
		return fmt.Errorf("set %s photos: %w", target, err)
	}
	s.doc = next
	return nil
}
