package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"p9e.in/towerpro/config"
	"p9e.in/towerpro/models"
)

var errInspectorNotFound = errors.New("inspector not found")

// Roster is the list of inspectors a report can be assigned to.
type Roster interface {
	List(ctx context.Context) ([]models.Inspector, error)
	Get(ctx context.Context, id string) (*models.Inspector, error)
}

// GormRoster reads the inspectors table.
type GormRoster struct {
	db *gorm.DB
}

func NewGormRoster(db *gorm.DB) *GormRoster {
	return &GormRoster{db: db}
}

func (g *GormRoster) List(ctx context.Context) ([]models.Inspector, error) {
	var out []models.Inspector
	if err := g.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (g *GormRoster) Get(ctx context.Context, id string) (*models.Inspector, error) {
	var in models.Inspector
	err := g.db.WithContext(ctx).First(&in, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInspectorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// StaticRoster is a fixed roster, used when no database is configured.
type StaticRoster []models.Inspector

func (s StaticRoster) List(context.Context) ([]models.Inspector, error) {
	return s, nil
}

func (s StaticRoster) Get(_ context.Context, id string) (*models.Inspector, error) {
	for _, in := range s {
		if in.ID.String() == id {
			return &in, nil
		}
	}
	return nil, errInspectorNotFound
}

// ListInspectors serves the roster for the inspector step.
func ListInspectors(roster Roster, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := roster.List(r.Context())
		if err != nil {
			config.LogError(log, "handlers", "ListInspectors", "list inspectors", nil, err)
			http.Error(w, "could not load inspectors", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
