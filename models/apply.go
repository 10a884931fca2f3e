package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

var (
	ErrUnknownStep     = errors.New("unknown step")
	ErrPayloadMismatch = errors.New("payload does not match step")
)

// InspectorSelection is the inspector step payload. The three fields are
// always replaced together.
type InspectorSelection struct {
	InspectorID   string `json:"inspectorId"`
	InspectorName string `json:"inspectorName"`
	InspectorCert string `json:"inspectorCert"`
}

// ReviewNotes is the review step payload.
type ReviewNotes struct {
	OverallNotes string `json:"overallNotes"`
}

// ApplyStepUpdate returns a copy of current with the slice owned by step
// replaced wholesale by payload. There is no deep merge: callers pass the
// complete slice, already folded with their own partial edits.
//
// Payload types: SiteInfo, TowerInfo, InspectorSelection, SectionResult (the
// four section steps), Conductivity, Chemical, Records and ReviewNotes.
func ApplyStepUpdate(current Report, step StepKey, payload any) (Report, error) {
	next := current
	mismatch := func() (Report, error) {
		return current, fmt.Errorf("%w: %s got %T", ErrPayloadMismatch, step, payload)
	}

	switch step {
	case StepSiteInfo:
		v, ok := payload.(SiteInfo)
		if !ok {
			return mismatch()
		}
		next.SiteInfo = v
	case StepTowerInfo:
		v, ok := payload.(TowerInfo)
		if !ok {
			return mismatch()
		}
		next.TowerInfo = v
	case StepInspector:
		v, ok := payload.(InspectorSelection)
		if !ok {
			return mismatch()
		}
		next.InspectorID = v.InspectorID
		next.InspectorName = v.InspectorName
		next.InspectorCert = v.InspectorCert
	case StepOverallTower, StepBasin, StepFill, StepDriftEliminators:
		v, ok := payload.(SectionResult)
		if !ok {
			return mismatch()
		}
		if err := v.Validate(SectionKey(step)); err != nil {
			return current, err
		}
		sections := make(Sections, len(SectionKeys))
		maps.Copy(sections, current.Sections)
		for _, k := range SectionKeys {
			if _, ok := sections[k]; !ok {
				sections[k] = SectionResult{}
			}
		}
		sections[SectionKey(step)] = v
		next.Sections = sections
	case StepConductivity:
		v, ok := payload.(Conductivity)
		if !ok {
			return mismatch()
		}
		next.Conductivity = v
	case StepChemical:
		v, ok := payload.(Chemical)
		if !ok {
			return mismatch()
		}
		next.Chemical = v
	case StepRecords:
		v, ok := payload.(Records)
		if !ok {
			return mismatch()
		}
		next.Records = v
	case StepReview:
		v, ok := payload.(ReviewNotes)
		if !ok {
			return mismatch()
		}
		next.OverallNotes = v.OverallNotes
	default:
		return current, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	return next, nil
}

// DecodeStepPayload decodes a JSON body into the payload type of step.
func DecodeStepPayload(step StepKey, raw []byte) (any, error) {
	switch step {
	case StepSiteInfo:
		return decodeAs[SiteInfo](step, raw)
	case StepTowerInfo:
		return decodeAs[TowerInfo](step, raw)
	case StepInspector:
		return decodeAs[InspectorSelection](step, raw)
	case StepOverallTower, StepBasin, StepFill, StepDriftEliminators:
		return decodeAs[SectionResult](step, raw)
	case StepConductivity:
		return decodeAs[Conductivity](step, raw)
	case StepChemical:
		return decodeAs[Chemical](step, raw)
	case StepRecords:
		return decodeAs[Records](step, raw)
	case StepReview:
		return decodeAs[ReviewNotes](step, raw)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStep, step)
}

func decodeAs[T any](step StepKey, raw []byte) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", step, err)
	}
	return v, nil
}
