package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	BlogRunSucceeded = "succeeded"
	BlogRunFailed    = "failed"
)

// BlogRun records one pipeline execution and where its artifacts ended up.
type BlogRun struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RunID          string         `gorm:"column:run_id;not null;uniqueIndex" json:"run_id"`
	Topic          string         `gorm:"column:topic;not null;index" json:"topic"`
	Title          string         `gorm:"column:title" json:"title"`
	Status         string         `gorm:"column:status;not null;index" json:"status"`
	Error          string         `gorm:"column:error" json:"error,omitempty"`
	DocumentPath   string         `gorm:"column:document_path" json:"docx_path,omitempty"`
	CoverPath      string         `gorm:"column:cover_path" json:"cover_path,omitempty"`
	AssetsDir      string         `gorm:"column:assets_dir" json:"assets_dir,omitempty"`
	DocumentURL    string         `gorm:"column:document_url" json:"docx_url,omitempty"`
	CoverURL       string         `gorm:"column:cover_url" json:"cover_url,omitempty"`
	VisualsPlanned int            `gorm:"column:visuals_planned;not null;default:0" json:"visuals_planned"`
	VisualsFound   int            `gorm:"column:visuals_found;not null;default:0" json:"visuals_found"`
	Manifest       datatypes.JSON `gorm:"column:manifest" json:"manifest"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (BlogRun) TableName() string { return "blog_run" }
