package models

// StepKey names one page of the report wizard.
type StepKey string

const (
	StepSiteInfo         StepKey = "siteInfo"
	StepTowerInfo        StepKey = "towerInfo"
	StepInspector        StepKey = "inspector"
	StepOverallTower     StepKey = "overallTower"
	StepBasin            StepKey = "basin"
	StepFill             StepKey = "fill"
	StepDriftEliminators StepKey = "driftEliminators"
	StepConductivity     StepKey = "conductivity"
	StepChemical         StepKey = "chemical"
	StepRecords          StepKey = "records"
	StepReview           StepKey = "review"
)

// Step describes a wizard page for the stepper header.
type Step struct {
	Key   StepKey `json:"key"`
	Label string  `json:"label"`
	Title string  `json:"title"`
}

// Steps is the fixed wizard order. Index positions are significant.
var Steps = []Step{
	{Key: StepSiteInfo, Label: "Site Info", Title: "Site Information"},
	{Key: StepTowerInfo, Label: "Tower", Title: "Tower Information"},
	{Key: StepInspector, Label: "Inspector", Title: "Inspector Selection"},
	{Key: StepOverallTower, Label: "Overall", Title: "Overall Tower"},
	{Key: StepBasin, Label: "Basin", Title: "Cold Water Basin"},
	{Key: StepFill, Label: "Fill", Title: "Packing Material (Fill)"},
	{Key: StepDriftEliminators, Label: "Drift Elim.", Title: "Drift Eliminators"},
	{Key: StepConductivity, Label: "Conductivity", Title: "Conductivity Controller"},
	{Key: StepChemical, Label: "Chemical", Title: "Chemical Treatment"},
	{Key: StepRecords, Label: "Records", Title: "Records on Site"},
	{Key: StepReview, Label: "Review", Title: "Review & Submit"},
}

// LastStepIndex is the terminal wizard position (the review step).
var LastStepIndex = len(Steps) - 1

// StepIndex returns the position of key in Steps, or -1.
func StepIndex(key StepKey) int {
	for i, s := range Steps {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// IsSection reports whether the step edits one of the checklist sections.
func (k StepKey) IsSection() bool {
	_, ok := Checklists[SectionKey(k)]
	return ok
}
