package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/pellicule/backend/internal/config"
	"github.com/pellicule/backend/internal/metrics"
	"github.com/pellicule/backend/internal/models"
	"github.com/pellicule/backend/internal/repository"
)

// MediaService orchestrates the asset lifecycle: ingest with dedupe and
// derived artifacts, trash, restore, permanent deletion and trash-emptying.
type MediaService struct {
	repo    *repository.MediaRepository
	albums  *AlbumService
	storage *StorageService
	derive  ArtifactGenerator
	cfg     *config.Config
}

func NewMediaService(repo *repository.MediaRepository, albums *AlbumService, storage *StorageService, derive ArtifactGenerator, cfg *config.Config) *MediaService {
	return &MediaService{
		repo:    repo,
		albums:  albums,
		storage: storage,
		derive:  derive,
		cfg:     cfg,
	}
}

// IngestInput is one upload handed to the lifecycle manager.
type IngestInput struct {
	OriginalName string
	ContentType  string
	Reader       io.Reader
}

// IngestResult is a successful ingest, possibly with degraded metadata.
type IngestResult struct {
	Media    *models.Media
	Warnings []string
}

// MediaView is the read model handed to the presentation layer: the asset
// plus derived favorite status and thumb path, computed at read time.
type MediaView struct {
	models.Media
	Favorite bool   `json:"favorite"`
	Thumb    string `json:"thumb"`
}

// Ingest stores one upload: stage, fingerprint, dedupe, promote, derive,
// catalog. All-or-nothing per asset: a failure after the bytes land rolls
// the bytes back; a duplicate never persists anything.
func (s *MediaService) Ingest(ctx context.Context, in IngestInput, declaredAlbumID *uint) (*IngestResult, error) {
	kind, err := kindFromContentType(in.ContentType)
	if err != nil {
		return nil, err
	}

	staged, err := s.storage.Stage(ctx, in.Reader)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	fingerprint := s.fingerprint(in.OriginalName, staged)
	if existing, err := s.repo.FindByFingerprint(fingerprint); err == nil {
		s.storage.Discard(staged)
		metrics.DuplicateIngestsTotal.Inc()
		return nil, fmt.Errorf("already ingested as media %d: %w", existing.ID, ErrDuplicate)
	} else if !errors.Is(err, ErrNotFound) {
		s.storage.Discard(staged)
		return nil, err
	}

	fileName := GenerateFileName(in.OriginalName)
	absPath, err := s.storage.Promote(staged, fileName)
	if err != nil {
		s.storage.Discard(staged)
		return nil, fmt.Errorf("storage: %w", err)
	}

	media := &models.Media{
		OriginalName: in.OriginalName,
		FileName:     fileName,
		FilePath:     "/media/" + fileName,
		Kind:         kind,
		ContentType:  in.ContentType,
		SizeBytes:    staged.Size,
		Fingerprint:  fingerprint,
		State:        models.StateActive,
		UploadedAt:   time.Now().UTC(),
	}

	derived := s.derive.Derive(ctx, absPath, kind, media.ThumbName())
	media.Width = derived.Width
	media.Height = derived.Height
	media.Duration = derived.Duration
	media.CapturedAt = s.captureTimestamp(derived.CapturedAt, absPath)
	if derived.Degraded() {
		metrics.DerivationWarningsTotal.Inc()
		log.Printf("Ingest %s: degraded metadata: %s", in.OriginalName, strings.Join(derived.Warnings, "; "))
	}

	// A cancelled ingest must not leave a catalog row behind.
	if err := ctx.Err(); err != nil {
		s.rollbackStored(absPath, media.ThumbName())
		return nil, err
	}

	if err := s.repo.Insert(media); err != nil {
		s.rollbackStored(absPath, media.ThumbName())
		if errors.Is(err, ErrDuplicate) {
			// Lost a concurrent race on the fingerprint index.
			metrics.DuplicateIngestsTotal.Inc()
			return nil, err
		}
		return nil, fmt.Errorf("catalog: %w", err)
	}

	warnings := derived.Warnings
	if declaredAlbumID != nil {
		if err := s.albums.AddMedia(*declaredAlbumID, media.ID, nil); err != nil {
			// The asset is safely in the library; the album link is not
			// worth failing the ingest over.
			log.Printf("Ingest %s: failed to link into album %d: %v", in.OriginalName, *declaredAlbumID, err)
			warnings = append(warnings, fmt.Sprintf("album link: %v", err))
		}
	}

	metrics.IngestsTotal.WithLabelValues(string(kind)).Inc()
	return &IngestResult{Media: media, Warnings: warnings}, nil
}

// MoveToTrash soft-deletes an asset and strips it from every album,
// favorites included. Already-trashed or absent assets are ErrNotFound.
func (s *MediaService) MoveToTrash(id uint) (*models.Media, error) {
	media, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if media.Trashed() {
		return nil, fmt.Errorf("media %d already trashed: %w", id, ErrNotFound)
	}

	now := time.Now().UTC()
	if err := s.repo.SetState(id, models.StateTrashed, now); err != nil {
		return nil, err
	}
	media.State = models.StateTrashed
	media.TrashedAt = &now

	// The state transition is the primary guarantee; membership cleanup
	// is best-effort and the reconciliation sweep covers failures.
	if err := s.albums.RemoveFromAllAlbums(id); err != nil {
		log.Printf("Trash media %d: failed to strip album memberships: %v", id, err)
	}
	return media, nil
}

// RestoreFromTrash reactivates a trashed asset. Its former album
// memberships stay gone; favorite status must be re-set explicitly.
func (s *MediaService) RestoreFromTrash(id uint) (*models.Media, error) {
	media, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !media.Trashed() {
		return nil, fmt.Errorf("media %d not in trash: %w", id, ErrNotFound)
	}

	if err := s.repo.SetState(id, models.StateActive, time.Now().UTC()); err != nil {
		return nil, err
	}
	media.State = models.StateActive
	media.TrashedAt = nil
	return media, nil
}

// DeletePermanently purges an asset from any state: bytes and thumbnail
// best-effort, memberships and catalog row transactionally. Irreversible.
func (s *MediaService) DeletePermanently(id uint) error {
	media, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	return s.purge(media)
}

func (s *MediaService) purge(media *models.Media) error {
	if err := s.storage.Remove(s.storage.MediaFilePath(media.FileName)); err != nil {
		log.Printf("Purge media %d: %v", media.ID, err)
	}
	if err := s.storage.Remove(s.storage.ThumbFilePath(media.ThumbName())); err != nil {
		log.Printf("Purge media %d: %v", media.ID, err)
	}
	if err := s.repo.Delete(media.ID); err != nil {
		return err
	}
	metrics.PurgesTotal.Inc()
	return nil
}

// TrashFailure is one asset that could not be purged during EmptyTrash.
type TrashFailure struct {
	MediaID uint   `json:"media_id"`
	Error   string `json:"error"`
}

// EmptyTrashResult is the per-item outcome report of an EmptyTrash run.
type EmptyTrashResult struct {
	DeletedCount int            `json:"deleted_count"`
	Failures     []TrashFailure `json:"failures,omitempty"`
}

// EmptyTrash purges every trashed asset. Items are independent: one
// failure never aborts the rest. Missing files on disk do not keep a
// catalog row alive.
func (s *MediaService) EmptyTrash() (*EmptyTrashResult, error) {
	trashed, err := s.repo.ListTrashed()
	if err != nil {
		return nil, err
	}

	result := &EmptyTrashResult{}
	for i := range trashed {
		if err := s.purge(&trashed[i]); err != nil {
			log.Printf("Empty trash: failed to purge media %d: %v", trashed[i].ID, err)
			result.Failures = append(result.Failures, TrashFailure{
				MediaID: trashed[i].ID,
				Error:   err.Error(),
			})
			continue
		}
		result.DeletedCount++
	}
	return result, nil
}

// MediaUpdate is a sparse patch; nil fields stay untouched.
type MediaUpdate struct {
	OriginalName *string
	CapturedAt   *time.Time
	Width        *int
	Height       *int
	Duration     *int
}

// Update applies a sparse patch. An empty patch is a no-op returning
// false, not an error.
func (s *MediaService) Update(id uint, patch MediaUpdate) (bool, error) {
	fields := map[string]interface{}{}
	if patch.OriginalName != nil {
		fields["original_name"] = *patch.OriginalName
	}
	if patch.CapturedAt != nil {
		fields["captured_at"] = *patch.CapturedAt
	}
	if patch.Width != nil {
		fields["width"] = *patch.Width
	}
	if patch.Height != nil {
		fields["height"] = *patch.Height
	}
	if patch.Duration != nil {
		fields["duration"] = *patch.Duration
	}
	return s.repo.Update(id, fields)
}

// Get returns one asset as a read view.
func (s *MediaService) Get(id uint) (*MediaView, error) {
	media, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	favorite, err := s.albums.IsFavorite(id)
	if err != nil {
		return nil, err
	}
	view := s.view(*media, favorite)
	return &view, nil
}

// List returns the library as read views; favorite status is resolved in
// one batch query.
func (s *MediaService) List(includeTrashed bool) ([]MediaView, error) {
	media, err := s.repo.List(includeTrashed)
	if err != nil {
		return nil, err
	}
	favorites, err := s.albums.FavoriteIDs()
	if err != nil {
		return nil, err
	}

	views := make([]MediaView, 0, len(media))
	for _, m := range media {
		views = append(views, s.view(m, favorites[m.ID]))
	}
	return views, nil
}

// ListTrashed returns trash contents, most recently trashed first.
func (s *MediaService) ListTrashed() ([]MediaView, error) {
	media, err := s.repo.ListTrashed()
	if err != nil {
		return nil, err
	}
	views := make([]MediaView, 0, len(media))
	for _, m := range media {
		// Trashed assets hold no memberships, so never a favorite.
		views = append(views, s.view(m, false))
	}
	return views, nil
}

// FilePath resolves an asset to the absolute path of its original bytes.
func (s *MediaService) FilePath(media *models.Media) string {
	return s.storage.MediaFilePath(media.FileName)
}

// ThumbPath resolves an asset to the absolute path of its thumbnail.
func (s *MediaService) ThumbPath(media *models.Media) string {
	return s.storage.ThumbFilePath(media.ThumbName())
}

func (s *MediaService) view(media models.Media, favorite bool) MediaView {
	return MediaView{
		Media:    media,
		Favorite: favorite,
		Thumb:    "/thumbs/" + media.ThumbName(),
	}
}

func (s *MediaService) rollbackStored(absPath, thumbName string) {
	if err := s.storage.Remove(absPath); err != nil {
		log.Printf("Ingest rollback: %v", err)
	}
	if err := s.storage.Remove(s.storage.ThumbFilePath(thumbName)); err != nil {
		log.Printf("Ingest rollback: %v", err)
	}
}

// fingerprint derives the content identity of an upload. sha256 of the
// bytes by default; the name-size composite is the documented weaker
// fallback that trades false negatives for speed.
func (s *MediaService) fingerprint(originalName string, staged *StagedFile) string {
	if s.cfg.FingerprintMode == "name-size" {
		sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", originalName, staged.Size)))
		return hex.EncodeToString(sum[:])
	}
	return staged.SHA256
}

// captureTimestamp settles the best-effort capture time: embedded
// metadata, else file modification time, else ingest time.
func (s *MediaService) captureTimestamp(extracted *time.Time, absPath string) *time.Time {
	if extracted != nil {
		return extracted
	}
	if info, err := s.storage.Stat(absPath); err == nil {
		t := info.ModTime().UTC()
		return &t
	}
	t := time.Now().UTC()
	return &t
}

func kindFromContentType(contentType string) (models.MediaKind, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.MediaKindImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return models.MediaKindVideo, nil
	default:
		return "", fmt.Errorf("content type %q: %w", contentType, ErrUnsupportedType)
	}
}
