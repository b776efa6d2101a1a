package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pellicule/backend/internal/config"
	"github.com/pellicule/backend/internal/models"
	"github.com/pellicule/backend/internal/pkg/preview"
)

// DeriveResult carries everything the generator could extract from a file.
// Extraction is best-effort: missing fields stay nil and the reason lands
// in Warnings instead of failing the ingest.
type DeriveResult struct {
	Width      *int
	Height     *int
	Duration   *int
	CapturedAt *time.Time
	ThumbName  string // empty when thumbnail generation failed
	Warnings   []string
}

// Degraded reports whether any extraction step failed.
func (r *DeriveResult) Degraded() bool {
	return len(r.Warnings) > 0
}

// ArtifactGenerator is the derived-artifact contract the lifecycle manager
// consumes; tests substitute a fake.
type ArtifactGenerator interface {
	Derive(ctx context.Context, absPath string, kind models.MediaKind, thumbName string) DeriveResult
}

// DeriveService produces thumbnails and intrinsic metadata for stored files.
type DeriveService struct {
	processor *preview.Processor
	storage   *StorageService
}

func NewDeriveService(cfg *config.Config, storage *StorageService) *DeriveService {
	return &DeriveService{
		processor: preview.NewProcessor(
			cfg.ThumbnailMaxSize,
			cfg.ThumbnailQuality,
			cfg.FFmpegPath,
			cfg.FFprobePath,
			cfg.ProbeTimeout,
		),
		storage: storage,
	}
}

func (s *DeriveService) Derive(ctx context.Context, absPath string, kind models.MediaKind, thumbName string) DeriveResult {
	var result DeriveResult

	switch kind {
	case models.MediaKindImage:
		if w, h, err := preview.ImageDimensions(absPath); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("dimensions: %v", err))
		} else {
			result.Width, result.Height = &w, &h
		}
		if captured, err := preview.CaptureTime(absPath); err == nil {
			result.CapturedAt = &captured
		}
		if err := s.processor.ImageThumbnail(absPath, s.storage.ThumbFilePath(thumbName)); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("thumbnail: %v", err))
		} else {
			result.ThumbName = thumbName
		}

	case models.MediaKindVideo:
		if probe, err := s.processor.ProbeVideo(ctx, absPath); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("probe: %v", err))
		} else {
			result.Width, result.Height = &probe.Width, &probe.Height
			if probe.Duration > 0 {
				d := probe.Duration
				result.Duration = &d
			}
		}
		if err := s.processor.VideoThumbnail(ctx, absPath, s.storage.ThumbFilePath(thumbName)); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("thumbnail: %v", err))
		} else {
			result.ThumbName = thumbName
		}
	}

	return result
}
