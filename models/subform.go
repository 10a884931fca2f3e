package models

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownCheck     = errors.New("unknown checklist item")
	ErrInvalidCondition = errors.New("invalid condition")
	ErrUnknownSection   = errors.New("unknown section")
	ErrUnknownTarget    = errors.New("unknown photo target")
)

// The helpers below fold one edit into a section's current value and return the
// complete new slice, ready for ApplyStepUpdate. They never modify the receiver.

// WithCondition selects a rating, replacing any previous one.
func (s SectionResult) WithCondition(c Condition) (SectionResult, error) {
	if !c.Valid() {
		return s, fmt.Errorf("%w: %q", ErrInvalidCondition, c)
	}
	s.Condition = c
	return s, nil
}

// WithCheck sets one checklist item. Other items are left as they are.
func (s SectionResult) WithCheck(section SectionKey, key string, on bool) (SectionResult, error) {
	list, ok := Checklists[section]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if !list.Has(key) {
		return s, fmt.Errorf("%w: %s.%s", ErrUnknownCheck, section, key)
	}
	checks := make(map[string]bool, len(s.Checks)+1)
	for k, v := range s.Checks {
		checks[k] = v
	}
	checks[key] = on
	s.Checks = checks
	return s, nil
}

// Checked reports an item's state; items never toggled read as false.
func (s SectionResult) Checked(key string) bool {
	return s.Checks[key]
}

// WithNotes replaces the notes (last write wins).
func (s SectionResult) WithNotes(notes string) SectionResult {
	s.Notes = notes
	return s
}

// WithPhotos replaces the ordered photo list.
func (s SectionResult) WithPhotos(urls []string) SectionResult {
	s.Photos = slices.Clone(urls)
	return s
}

// Validate checks the structural rules every stored section must satisfy:
// a rating from the closed set (or none) and only defined checklist keys.
func (s SectionResult) Validate(section SectionKey) error {
	list, ok := Checklists[section]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if s.Condition != "" && !s.Condition.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCondition, s.Condition)
	}
	for k := range s.Checks {
		if !list.Has(k) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownCheck, section, k)
		}
	}
	return nil
}

// PhotoTarget names a sub-form that carries photos: a section key or one of
// the conductivity, chemical and records steps.
type PhotoTarget string

// PhotoTargets lists every sub-form that accepts attachments.
var PhotoTargets = []PhotoTarget{
	PhotoTarget(SectionOverallTower),
	PhotoTarget(SectionBasin),
	PhotoTarget(SectionFill),
	PhotoTarget(SectionDriftEliminators),
	PhotoTarget(StepConductivity),
	PhotoTarget(StepChemical),
	PhotoTarget(StepRecords),
}

func (t PhotoTarget) Valid() bool {
	return slices.Contains(PhotoTargets, t)
}

// Photos returns the current photo list of target.
func (r Report) Photos(target PhotoTarget) ([]string, error) {
	switch StepKey(target) {
	case StepConductivity:
		return r.Conductivity.Photos, nil
	case StepChemical:
		return r.Chemical.Photos, nil
	case StepRecords:
		return r.Records.Photos, nil
	}
	if StepKey(target).IsSection() {
		return r.Sections.Section(SectionKey(target)).Photos, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
}

// PhotoUpdate builds the complete step payload that replaces target's photo
// list with urls, leaving the rest of the sub-form unchanged.
func (r Report) PhotoUpdate(target PhotoTarget, urls []string) (StepKey, any, error) {
	urls = slices.Clone(urls)
	switch StepKey(target) {
	case StepConductivity:
		c := r.Conductivity
		c.Photos = urls
		return StepConductivity, c, nil
	case StepChemical:
		c := r.Chemical
		c.Photos = urls
		return StepChemical, c, nil
	case StepRecords:
		c := r.Records
		c.Photos = urls
		return StepRecords, c, nil
	}
	if StepKey(target).IsSection() {
		s := r.Sections.Section(SectionKey(target)).WithPhotos(urls)
		return StepKey(target), s, nil
	}
	return "", nil, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
}
