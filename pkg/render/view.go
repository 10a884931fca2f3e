// Package render turns a stored report into the read-only forms it is shown
// and shared in: a labelled view, a spreadsheet and map features.
package render

import (
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"p9e.in/towerpro/models"
)

const dateFormat = "January 2, 2006"

type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Check struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
}

// Block is one card of the report.
type Block struct {
	Key    string   `json:"key"`
	Title  string   `json:"title"`
	Badge  string   `json:"badge,omitempty"`
	Rows   []Row    `json:"rows,omitempty"`
	Checks []Check  `json:"checks,omitempty"`
	Notes  []string `json:"notes,omitempty"`
	Photos []string `json:"photos,omitempty"`
}

// View is the read-only rendition of a report. It never changes the report.
type View struct {
	ReportID       string  `json:"reportId"`
	Status         string  `json:"status"`
	Title          string  `json:"title"`
	ReportDate     string  `json:"reportDate"`
	InspectorName  string  `json:"inspectorName"`
	InspectionDate string  `json:"inspectionDate"`
	Blocks         []Block `json:"blocks"`
}

// Build assembles the view. Empty rows are dropped, and sections with no
// condition, notes or photos are left out.
func Build(r models.Report) View {
	v := View{
		ReportID:       r.ID,
		Status:         string(r.Status),
		Title:          "Cooling Tower Inspection Report",
		ReportDate:     reportDate(r),
		InspectorName:  r.InspectorName,
		InspectionDate: dateString(r.SiteInfo.InspectionDate),
	}

	site := r.SiteInfo
	v.add(Block{Key: "site", Title: "Site Information", Rows: rows(
		Row{"Facility", site.FacilityName},
		Row{"Address", AddressLine(site)},
		Row{"Contact", site.ContactName},
		Row{"Phone", site.ContactPhone},
		Row{"Email", site.ContactEmail},
	)}, true)
	v.add(Block{Key: "inspection", Title: "Inspection Details", Rows: rows(
		Row{"Inspection Date", v.InspectionDate},
		Row{"Inspector", r.InspectorName},
		Row{"Certification", r.InspectorCert},
		Row{"Report Date", v.ReportDate},
	)}, true)

	tower := r.TowerInfo
	v.add(Block{Key: "tower", Title: "Tower Information", Rows: rows(
		Row{"Manufacturer", tower.Manufacturer},
		Row{"Model", tower.Model},
		Row{"Serial #", tower.SerialNumber},
		Row{"Year Installed", intString(tower.YearInstalled)},
		Row{"Capacity", withUnit(tower.CapacityTons, "tons")},
		Row{"Flow Rate", withUnit(tower.FlowRateGpm, "GPM")},
		Row{"Tower Type", humanize(tower.TowerType)},
		Row{"Fill Type", humanize(tower.FillType)},
		Row{"# of Cells", intString(tower.NumCells)},
	), Notes: notes(tower.Notes)}, true)

	for _, key := range models.SectionKeys {
		sec := r.Sections.Section(key)
		if sec.Condition == "" && sec.Notes == "" && len(sec.Photos) == 0 {
			continue
		}
		badge := ""
		if sec.Condition != "" {
			badge = sec.Condition.Label()
		}
		v.add(Block{
			Key:    string(key),
			Title:  models.Checklists[key].Title,
			Badge:  badge,
			Checks: sectionChecks(key, sec.Checks),
			Notes:  notes(sec.Notes),
			Photos: sec.Photos,
		}, true)
	}

	c := r.Conductivity
	if c.Status != "" || c.SetPoint != nil || c.Notes != "" {
		v.add(Block{Key: "conductivity", Title: "Conductivity Controller", Badge: c.Status, Rows: rows(
			Row{"Manufacturer", c.Manufacturer},
			Row{"Set Point", withUnit(c.SetPoint, "µS/cm")},
			Row{"Reading", withUnit(c.Reading, "µS/cm")},
			Row{"Cycles", decimalString(c.Cycles)},
			Row{"Blowdown", yesNo(c.BlowdownWorking, "Functioning", "Not functioning")},
			Row{"Probe", yesNo(c.ProbeClean, "Clean", "Needs cleaning")},
			Row{"Timer", yesNo(c.TimerWorking, "Working", "Not working")},
		), Notes: notes(c.Notes), Photos: c.Photos}, true)
	}

	ch := r.Chemical
	if ch.Supplier != "" || ch.Notes != "" {
		v.add(Block{Key: "chemical", Title: "Chemical Treatment", Rows: rows(
			Row{"Supplier", ch.Supplier},
			Row{"Service Rep", ch.RepName},
			Row{"Dosing Method", humanize(ch.DosingMethod)},
			Row{"Last Biocide Slug", dateString(ch.LastSlugDate)},
			Row{"Inhibitor Residual", withUnit(ch.InhibitorPpm, "ppm")},
			Row{"Oxidizing Biocide", withUnit(ch.OxidizingBiocidePpm, "ppm")},
			Row{"pH", decimalString(ch.Ph)},
		), Notes: notes(ch.Chemicals, ch.Notes), Photos: ch.Photos}, true)
	}

	rec := r.Records
	var recChecks []Check
	for _, c := range models.RecordChecks {
		recChecks = append(recChecks, Check{Key: c.Key, Label: c.Label, Passed: rec.Flag(c.Key)})
	}
	v.add(Block{Key: "records", Title: "Records on Site", Checks: recChecks,
		Rows: rows(Row{"Last lab analysis", dateString(rec.LastLabDate)}), Notes: notes(rec.Notes), Photos: rec.Photos,
	}, recordsFilled(rec))

	v.add(Block{Key: "overallNotes", Title: "Overall Notes & Recommendations", Notes: notes(r.OverallNotes)}, r.OverallNotes != "")
	return v
}

func (v *View) add(b Block, show bool) {
	if show {
		v.Blocks = append(v.Blocks, b)
	}
}

// AddressLine joins the non-empty address parts with ", ".
func AddressLine(s models.SiteInfo) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{s.Address, s.City, s.State, s.Zip} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// reportDate is completedAt, falling back to createdAt.
func reportDate(r models.Report) string {
	switch {
	case r.CompletedAt != nil:
		return r.CompletedAt.Format(dateFormat)
	case r.CreatedAt != nil:
		return r.CreatedAt.Format(dateFormat)
	}
	return ""
}

func sectionChecks(key models.SectionKey, checks map[string]bool) []Check {
	if len(checks) == 0 {
		return nil
	}
	list := models.Checklists[key]
	out := make([]Check, 0, len(checks))
	for _, it := range list.Items {
		if on, ok := checks[it.Key]; ok {
			out = append(out, Check{Key: it.Key, Label: it.Label, Passed: on})
		}
	}
	// keys no longer in the checklist, from older reports
	var extra []string
	for k := range checks {
		if !list.Has(k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	for _, k := range extra {
		out = append(out, Check{Key: k, Label: HumanizeKey(k), Passed: checks[k]})
	}
	return out
}

// HumanizeKey turns a camelCase key into a label: "noPhysicalDmg" becomes
// "No Physical Dmg".
func HumanizeKey(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func humanize(v string) string {
	if v == "" {
		return ""
	}
	words := strings.Split(v, "_")
	for i, w := range words {
		if w == "pvc" {
			words[i] = "PVC"
			continue
		}
		words[i] = HumanizeKey(w)
	}
	return strings.Join(words, " ")
}

func rows(in ...Row) []Row {
	out := in[:0:0]
	for _, r := range in {
		if r.Value != "" {
			out = append(out, r)
		}
	}
	return out
}

func notes(in ...string) []string {
	var out []string
	for _, n := range in {
		if strings.TrimSpace(n) != "" {
			out = append(out, n)
		}
	}
	return out
}

func recordsFilled(r models.Records) bool {
	for _, c := range models.RecordChecks {
		if r.Flag(c.Key) {
			return true
		}
	}
	return r.LastLabDate != nil || r.Notes != "" || len(r.Photos) > 0
}

func withUnit(d *decimal.Decimal, unit string) string {
	if d == nil {
		return ""
	}
	return d.String() + " " + unit
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func intString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func dateString(d *models.JSONDate) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

// GeneratedLine is the footer printed under the report.
func GeneratedLine(v View, now time.Time) string {
	date := v.ReportDate
	if date == "" {
		date = now.Format(dateFormat)
	}
	return "Generated by TowerPro · " + date
}
