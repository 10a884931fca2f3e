package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inspector is a roster entry. Reports copy the identity fields at selection
// time, so later edits to the roster never change past reports.
type Inspector struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Name          string    `gorm:"size:100;not null;index" json:"name"`
	Email         string    `gorm:"size:100"              json:"email"`
	Phone         string    `gorm:"size:20"               json:"phone"`
	Certification string    `gorm:"size:150"              json:"certification"`
	CreatedAt     time.Time `gorm:"autoCreateTime"        json:"createdAt"`
}

func (i *Inspector) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// Selection snapshots the inspector for the report's inspector step.
func (i Inspector) Selection() InspectorSelection {
	return InspectorSelection{
		InspectorID:   i.ID.String(),
		InspectorName: i.Name,
		InspectorCert: i.Certification,
	}
}
