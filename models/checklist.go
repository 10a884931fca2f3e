package models

// SectionKey identifies one of the four checklist-bearing inspected subsystems.
type SectionKey string

const (
	SectionOverallTower     SectionKey = "overallTower"
	SectionBasin            SectionKey = "basin"
	SectionFill             SectionKey = "fill"
	SectionDriftEliminators SectionKey = "driftEliminators"
)

// SectionKeys lists the sections in report order.
var SectionKeys = []SectionKey{
	SectionOverallTower,
	SectionBasin,
	SectionFill,
	SectionDriftEliminators,
}

// CheckItem is one checklist row.
type CheckItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Checklist is the static, ordered definition of a section's checklist.
type Checklist struct {
	Section     SectionKey  `json:"section"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Items       []CheckItem `json:"items"`
}

// Has reports whether key is defined for the section.
func (c Checklist) Has(key string) bool {
	for _, it := range c.Items {
		if it.Key == key {
			return true
		}
	}
	return false
}

// Label returns the display label for key, or "" when undefined.
func (c Checklist) Label(key string) string {
	for _, it := range c.Items {
		if it.Key == key {
			return it.Label
		}
	}
	return ""
}

// Checklists holds the definition for every section. Keys must stay stable:
// stored reports reference them.
var Checklists = map[SectionKey]Checklist{
	SectionOverallTower: {
		Section:     SectionOverallTower,
		Title:       "Overall Tower",
		Description: "Assess the general condition of the cooling tower structure and ancillary equipment.",
		Items: []CheckItem{
			{Key: "structuralIntegrity", Label: "Structural integrity appears sound"},
			{Key: "accessLadders", Label: "Access ladders / safety rails in good condition"},
			{Key: "fanDeck", Label: "Fan deck / distribution deck in good condition"},
			{Key: "pipingIntact", Label: "Piping / valves intact and leak-free"},
			{Key: "noCorrosion", Label: "No significant corrosion / deterioration visible"},
		},
	},
	SectionBasin: {
		Section:     SectionBasin,
		Title:       "Cold Water Basin",
		Description: "Inspect the cold water collection basin for cleanliness, biological growth, and mechanical condition.",
		Items: []CheckItem{
			{Key: "waterLevel", Label: "Water level at proper operating level"},
			{Key: "cleanBasin", Label: "Basin free of excessive sediment / debris"},
			{Key: "noBiofilm", Label: "No visible algae or biofilm growth"},
			{Key: "inletScreens", Label: "Inlet screens present and unobstructed"},
			{Key: "makeupWorking", Label: "Make-up water valve / float functioning correctly"},
			{Key: "noCorrosion", Label: "No significant corrosion or scale buildup"},
		},
	},
	SectionFill: {
		Section:     SectionFill,
		Title:       "Packing Material (Fill)",
		Description: "Evaluate the condition of the heat transfer fill / packing media.",
		Items: []CheckItem{
			{Key: "minFouling", Label: "Minimal fouling / blockage of fill media"},
			{Key: "noPhysicalDmg", Label: "No physical damage (cracking, collapse, sagging)"},
			{Key: "noBiofilm", Label: "No significant biological growth on fill"},
			{Key: "evenDistrib", Label: "Water distributes evenly across fill"},
		},
	},
	SectionDriftEliminators: {
		Section:     SectionDriftEliminators,
		Title:       "Drift Eliminators",
		Description: "Inspect drift eliminators for presence, completeness, and condition. Mark N/A if not applicable.",
		Items: []CheckItem{
			{Key: "present", Label: "Drift eliminators are present"},
			{Key: "properlySeated", Label: "Properly seated / no gaps"},
			{Key: "noDamage", Label: "No damage or missing sections"},
			{Key: "clean", Label: "Clean and not blocked"},
		},
	},
}

// RecordChecks are the documentation flags of the records-on-site step.
var RecordChecks = []CheckItem{
	{Key: "treatmentLogs", Label: "Chemical treatment logs present and current"},
	{Key: "inspectionLogs", Label: "Inspection / maintenance logs present and current"},
	{Key: "waterTestResults", Label: "Water test results on file"},
	{Key: "labAnalysis", Label: "Third-party lab analysis on file"},
	{Key: "riskAssessment", Label: "Legionella risk assessment / water management plan on site"},
	{Key: "certifications", Label: "Service technician certifications on file"},
	{Key: "sds", Label: "Chemical SDS sheets accessible"},
}
