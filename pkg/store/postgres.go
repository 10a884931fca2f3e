package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"p9e.in/towerpro/models"
)

// ReportRecord is the reports table row. Each wizard slice is one jsonb
// column so a merge can replace a slice without touching the others.
type ReportRecord struct {
	ID            string `gorm:"primaryKey;size:64"`
	SchemaVersion int    `gorm:"not null;default:1"`
	Status        string `gorm:"size:16;not null;default:draft;index"`

	SiteInfo  datatypes.JSONType[models.SiteInfo]  `gorm:"type:jsonb"`
	TowerInfo datatypes.JSONType[models.TowerInfo] `gorm:"type:jsonb"`

	InspectorID   string `gorm:"size:64"`
	InspectorName string `gorm:"size:100"`
	InspectorCert string `gorm:"size:150"`

	Sections     datatypes.JSONType[models.Sections]     `gorm:"type:jsonb"`
	Conductivity datatypes.JSONType[models.Conductivity] `gorm:"type:jsonb"`
	Chemical     datatypes.JSONType[models.Chemical]     `gorm:"type:jsonb"`
	Records      datatypes.JSONType[models.Records]      `gorm:"type:jsonb"`
	OverallNotes string                                  `gorm:"type:text"`

	CreatedBy   string     `gorm:"size:128;index"`
	CreatedAt   *time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false"`
	CompletedAt *time.Time
}

func (ReportRecord) TableName() string { return "reports" }

func (rec ReportRecord) toReport() *models.Report {
	r := &models.Report{
		ID:            rec.ID,
		SchemaVersion: rec.SchemaVersion,
		Status:        models.Status(rec.Status),
		SiteInfo:      rec.SiteInfo.Data(),
		TowerInfo:     rec.TowerInfo.Data(),
		InspectorID:   rec.InspectorID,
		InspectorName: rec.InspectorName,
		InspectorCert: rec.InspectorCert,
		Sections:      rec.Sections.Data(),
		Conductivity:  rec.Conductivity.Data(),
		Chemical:      rec.Chemical.Data(),
		Records:       rec.Records.Data(),
		OverallNotes:  rec.OverallNotes,
		CreatedBy:     rec.CreatedBy,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
		CompletedAt:   rec.CompletedAt,
	}
	if r.Sections == nil {
		r.Sections = models.EmptySections()
	}
	return r
}

// PostgresStore keeps reports in postgres through gorm.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Report, error) {
	var rec ReportRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load report %s: %w", id, err)
	}
	return rec.toReport(), nil
}

// Merge upserts the patch in a single statement. The conditional fields are
// resolved by the database, not by a read before the write, so two autosaves
// racing each other cannot clear createdAt or reopen a completed report.
func (s *PostgresStore) Merge(ctx context.Context, id string, p Patch) error {
	stmt, args := buildMerge(id, p)
	if err := s.db.WithContext(ctx).Exec(stmt, args...).Error; err != nil {
		return fmt.Errorf("merge report %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner string) ([]models.Report, error) {
	var recs []ReportRecord
	if err := s.db.WithContext(ctx).
		Where("created_by = ?", owner).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list reports for %s: %w", owner, err)
	}
	out := make([]models.Report, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *rec.toReport())
	}
	return out, nil
}

func buildMerge(id string, p Patch) (string, []any) {
	status := models.StatusDraft
	if p.Status != nil {
		status = *p.Status
	}

	cols := []string{"id", "schema_version", "status"}
	args := []any{id, models.CurrentSchemaVersion, string(status)}
	sets := []string{"schema_version = EXCLUDED.schema_version"}

	add := func(col string, v any, set string) {
		cols = append(cols, col)
		args = append(args, v)
		if set == "" {
			set = col + " = EXCLUDED." + col
		}
		sets = append(sets, set)
	}

	if p.Status != nil {
		sets = append(sets, "status = CASE WHEN reports.status = 'complete' THEN reports.status ELSE EXCLUDED.status END")
	}
	if p.SiteInfo != nil {
		add("site_info", datatypes.NewJSONType(*p.SiteInfo), "")
	}
	if p.TowerInfo != nil {
		add("tower_info", datatypes.NewJSONType(*p.TowerInfo), "")
	}
	if p.Inspector != nil {
		add("inspector_id", p.Inspector.InspectorID, "")
		add("inspector_name", p.Inspector.InspectorName, "")
		add("inspector_cert", p.Inspector.InspectorCert, "")
	}
	if p.Sections != nil {
		add("sections", datatypes.NewJSONType(p.Sections), "")
	}
	if p.Conductivity != nil {
		add("conductivity", datatypes.NewJSONType(*p.Conductivity), "")
	}
	if p.Chemical != nil {
		add("chemical", datatypes.NewJSONType(*p.Chemical), "")
	}
	if p.Records != nil {
		add("records", datatypes.NewJSONType(*p.Records), "")
	}
	if p.OverallNotes != nil {
		add("overall_notes", *p.OverallNotes, "")
	}
	if p.CreatedBy != nil {
		add("created_by", *p.CreatedBy, "")
	}
	if p.UpdatedAt != nil {
		add("updated_at", *p.UpdatedAt, "")
	}
	if p.CreatedAtIfAbsent != nil {
		add("created_at", *p.CreatedAtIfAbsent, "created_at = COALESCE(reports.created_at, EXCLUDED.created_at)")
	}
	if p.CompletedAtIfAbsent != nil {
		add("completed_at", *p.CompletedAtIfAbsent, "completed_at = COALESCE(reports.completed_at, EXCLUDED.completed_at)")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO reports (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		strings.Join(cols, ", "), placeholders, strings.Join(sets, ", "))
	return stmt, args
}
