package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrentSchemaVersion is stamped on every stored report so that checklist
// definitions can evolve without breaking historical records.
const CurrentSchemaVersion = 1

// Status is the report lifecycle label. The only valid edge is draft -> complete.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusComplete Status = "complete"
)

// Condition is the overall rating of an inspected section.
type Condition string

const (
	ConditionGood Condition = "good"
	ConditionFair Condition = "fair"
	ConditionPoor Condition = "poor"
	ConditionNA   Condition = "na"
)

// Conditions is the closed set of ratings, in display order.
var Conditions = []Condition{ConditionGood, ConditionFair, ConditionPoor, ConditionNA}

// Valid reports whether c is one of the four ratings. The empty value
// (no selection yet) is not a rating.
func (c Condition) Valid() bool {
	switch c {
	case ConditionGood, ConditionFair, ConditionPoor, ConditionNA:
		return true
	}
	return false
}

// Label is the display text used by the read-only view.
func (c Condition) Label() string {
	switch c {
	case ConditionGood:
		return "Good"
	case ConditionFair:
		return "Fair"
	case ConditionPoor:
		return "Poor"
	case ConditionNA:
		return "N/A"
	}
	return string(c)
}

// Report is the root aggregate the wizard accumulates into.
//
// Values are treated as immutable: ApplyStepUpdate and the sub-form helpers
// return new values and never write through shared maps or slices.
type Report struct {
	ID            string `json:"id"`
	SchemaVersion int    `json:"schemaVersion"`
	Status        Status `json:"status"`

	SiteInfo  SiteInfo  `json:"siteInfo"`
	TowerInfo TowerInfo `json:"towerInfo"`

	// Snapshot of the selected inspector, not a live reference.
	InspectorID   string `json:"inspectorId"`
	InspectorName string `json:"inspectorName"`
	InspectorCert string `json:"inspectorCert"`

	Sections     Sections     `json:"sections"`
	Conductivity Conductivity `json:"conductivity"`
	Chemical     Chemical     `json:"chemical"`
	Records      Records      `json:"records"`
	OverallNotes string       `json:"overallNotes"`

	CreatedBy   string     `json:"createdBy,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// NewReport returns the empty draft shape for id.
func NewReport(id string) Report {
	return Report{
		ID:            id,
		SchemaVersion: CurrentSchemaVersion,
		Status:        StatusDraft,
		Sections:      EmptySections(),
	}
}

// Sections maps each checklist section to its result.
type Sections map[SectionKey]SectionResult

// EmptySections has an empty result for every section key.
func EmptySections() Sections {
	s := make(Sections, len(SectionKeys))
	for _, k := range SectionKeys {
		s[k] = SectionResult{}
	}
	return s
}

// Section returns the stored result for key, or the empty result.
func (s Sections) Section(key SectionKey) SectionResult {
	if s == nil {
		return SectionResult{}
	}
	return s[key]
}

// SectionResult is the checklist sub-form body shared by every section.
type SectionResult struct {
	Condition Condition       `json:"condition,omitempty"`
	Checks    map[string]bool `json:"checks,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Photos    []string        `json:"photos,omitempty"`
}

// IsZero reports whether nothing has been entered for the section.
func (s SectionResult) IsZero() bool {
	return s.Condition == "" && len(s.Checks) == 0 && s.Notes == "" && len(s.Photos) == 0
}

type SiteInfo struct {
	FacilityName   string    `json:"facilityName,omitempty"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	State          string    `json:"state,omitempty"`
	Zip            string    `json:"zip,omitempty"`
	InspectionDate *JSONDate `json:"inspectionDate,omitempty"`
	ContactName    string    `json:"contactName,omitempty"`
	ContactPhone   string    `json:"contactPhone,omitempty"`
	ContactEmail   string    `json:"contactEmail,omitempty"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
}

// TowerType values offered by the tower step.
const (
	TowerCrossflow    = "crossflow"
	TowerCounterflow  = "counterflow"
	TowerNaturalDraft = "natural_draft"
	TowerOther        = "other"
)

// Fill media values offered by the tower step.
const (
	FillPVCFilm   = "pvc_film"
	FillPVCSplash = "pvc_splash"
	FillWood      = "wood"
	FillCeramic   = "ceramic"
	FillOther     = "other"
)

type TowerInfo struct {
	Manufacturer  string           `json:"manufacturer,omitempty"`
	Model         string           `json:"model,omitempty"`
	SerialNumber  string           `json:"serialNumber,omitempty"`
	YearInstalled *int             `json:"yearInstalled,omitempty"`
	CapacityTons  *decimal.Decimal `json:"capacityTons,omitempty"`
	FlowRateGpm   *decimal.Decimal `json:"flowRateGpm,omitempty"`
	NumCells      *int             `json:"numCells,omitempty"`
	TowerType     string           `json:"towerType,omitempty"`
	FillType      string           `json:"fillType,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// Controller status values for the conductivity step.
const (
	ControllerFunctioning    = "Functioning"
	ControllerMalfunctioning = "Malfunctioning"
	ControllerNotPresent     = "Not Present"
)

type Conductivity struct {
	Manufacturer    string           `json:"manufacturer,omitempty"`
	SetPoint        *decimal.Decimal `json:"setPoint,omitempty"`
	Reading         *decimal.Decimal `json:"reading,omitempty"`
	Cycles          *decimal.Decimal `json:"cycles,omitempty"`
	Status          string           `json:"status,omitempty"`
	BlowdownWorking bool             `json:"blowdownWorking,omitempty"`
	ProbeClean      bool             `json:"probeClean,omitempty"`
	TimerWorking    bool             `json:"timerWorking,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Photos          []string         `json:"photos,omitempty"`
}

// Dosing methods offered by the chemical step.
const (
	DosingContinuous           = "continuous"
	DosingBatch                = "batch"
	DosingBlowdownProportional = "blowdown_proportional"
	DosingManual               = "manual"
	DosingOther                = "other"
)

type Chemical struct {
	Supplier            string           `json:"supplier,omitempty"`
	RepName             string           `json:"repName,omitempty"`
	Chemicals           string           `json:"chemicals,omitempty"`
	DosingMethod        string           `json:"dosingMethod,omitempty"`
	InhibitorPpm        *decimal.Decimal `json:"inhibitorPpm,omitempty"`
	OxidizingBiocidePpm *decimal.Decimal `json:"oxidizingBiocidePpm,omitempty"`
	Ph                  *decimal.Decimal `json:"ph,omitempty"`
	LastSlugDate        *JSONDate        `json:"lastSlugDate,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	Photos              []string         `json:"photos,omitempty"`
}

type Records struct {
	TreatmentLogs    bool      `json:"treatmentLogs,omitempty"`
	InspectionLogs   bool      `json:"inspectionLogs,omitempty"`
	WaterTestResults bool      `json:"waterTestResults,omitempty"`
	LabAnalysis      bool      `json:"labAnalysis,omitempty"`
	RiskAssessment   bool      `json:"riskAssessment,omitempty"`
	Certifications   bool      `json:"certifications,omitempty"`
	SDS              bool      `json:"sds,omitempty"`
	LastLabDate      *JSONDate `json:"lastLabDate,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Photos           []string  `json:"photos,omitempty"`
}

// Flag returns the value of the records flag named key (see RecordChecks).
func (r Records) Flag(key string) bool {
	switch key {
	case "treatmentLogs":
		return r.TreatmentLogs
	case "inspectionLogs":
		return r.InspectionLogs
	case "waterTestResults":
		return r.WaterTestResults
	case "labAnalysis":
		return r.LabAnalysis
	case "riskAssessment":
		return r.RiskAssessment
	case "certifications":
		return r.Certifications
	case "sds":
		return r.SDS
	}
	return false
}
