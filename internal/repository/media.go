package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pellicule/backend/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a catalog row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert collides with the unique
	// fingerprint index, i.e. the same content was already ingested.
	ErrDuplicate = errors.New("duplicate content")
)

// MediaRepository is the catalog access layer for media rows.
type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Insert creates a media row. The unique index on fingerprint serializes
// concurrent ingests of identical content: the loser gets ErrDuplicate.
func (r *MediaRepository) Insert(media *models.Media) error {
	if err := r.db.Create(media).Error; err != nil {
		if isDuplicateErr(err) {
			return fmt.Errorf("fingerprint %s: %w", media.Fingerprint, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert media: %w", err)
	}
	return nil
}

// FindByID returns the row regardless of lifecycle state.
func (r *MediaRepository) FindByID(id uint) (*models.Media, error) {
	var media models.Media
	if err := r.db.First(&media, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load media %d: %w", id, err)
	}
	return &media, nil
}

// FindByFingerprint looks up content across active and trashed assets.
func (r *MediaRepository) FindByFingerprint(fingerprint string) (*models.Media, error) {
	var media models.Media
	if err := r.db.First(&media, "fingerprint = ?", fingerprint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up fingerprint: %w", err)
	}
	return &media, nil
}

// List returns media ordered by capture date, newest first. Trashed rows
// are excluded unless includeTrashed is set.
func (r *MediaRepository) List(includeTrashed bool) ([]models.Media, error) {
	var media []models.Media
	query := r.db.Order("captured_at DESC, id DESC")
	if !includeTrashed {
		query = query.Where("state = ?", models.StateActive)
	}
	if err := query.Find(&media).Error; err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return media, nil
}

// ListTrashed returns trash contents, most recently trashed first.
func (r *MediaRepository) ListTrashed() ([]models.Media, error) {
	var media []models.Media
	err := r.db.Where("state = ?", models.StateTrashed).
		Order("trashed_at DESC").Find(&media).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trash: %w", err)
	}
	return media, nil
}

// Update applies a sparse column update. Returns false when fields is
// empty or no row matched.
func (r *MediaRepository) Update(id uint, fields map[string]interface{}) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}
	res := r.db.Model(&models.Media{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update media %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SetState transitions the lifecycle state, keeping trashed_at consistent:
// non-null iff the state is trashed.
func (r *MediaRepository) SetState(id uint, state models.LifecycleState, now time.Time) error {
	fields := map[string]interface{}{"state": state}
	if state == models.StateTrashed {
		fields["trashed_at"] = now
	} else {
		fields["trashed_at"] = nil
	}
	res := r.db.Model(&models.Media{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to set state on media %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row and its album memberships in one transaction.
// The cascade is explicit so it holds on engines without enforced FKs.
func (r *MediaRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("media_id = ?", id).Delete(&models.AlbumMedia{}).Error; err != nil {
			return fmt.Errorf("failed to delete memberships of media %d: %w", id, err)
		}
		res := tx.Delete(&models.Media{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete media %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// The pure-Go sqlite driver does not translate constraint errors.
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
