package models

import (
	"path/filepath"
	"strings"
	"time"
)

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

type LifecycleState string

const (
	StateActive  LifecycleState = "active"
	StateTrashed LifecycleState = "trashed"
)

// Media is a single ingested asset (image or video) and its metadata.
// FileName is generated at ingest and never derived from user input;
// Fingerprint identifies the file content and is unique across active
// and trashed assets.
type Media struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	OriginalName string         `gorm:"size:255;not null" json:"original_name"`
	FileName     string         `gorm:"size:255;not null;uniqueIndex" json:"file_name"`
	FilePath     string         `gorm:"size:512;not null" json:"file_path"`
	Kind         MediaKind      `gorm:"size:8;not null;index" json:"kind"`
	ContentType  string         `gorm:"size:120;not null" json:"content_type"`
	SizeBytes    int64          `gorm:"not null" json:"size_bytes"`
	Fingerprint  string         `gorm:"size:128;not null;uniqueIndex" json:"fingerprint"`
	Width        *int           `json:"width"`
	Height       *int           `json:"height"`
	Duration     *int           `json:"duration,omitempty"` // seconds, videos only
	State        LifecycleState `gorm:"size:8;not null;default:active;index" json:"state"`
	TrashedAt    *time.Time     `json:"trashed_at,omitempty"`
	CapturedAt   *time.Time     `json:"captured_at,omitempty"`
	UploadedAt   time.Time      `gorm:"not null" json:"uploaded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Media) TableName() string {
	return "media"
}

// Trashed reports whether the asset currently sits in the trash.
func (m *Media) Trashed() bool {
	return m.State == StateTrashed
}

// ThumbName is the file name of the asset's thumbnail inside the thumbs
// directory. Thumbnails are always JPEG, named after the stored file.
func (m *Media) ThumbName() string {
	return strings.TrimSuffix(m.FileName, filepath.Ext(m.FileName)) + ".jpg"
}
