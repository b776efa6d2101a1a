package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/pellicule/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AlbumRepository is the catalog access layer for albums and memberships.
type AlbumRepository struct {
	db *gorm.DB
}

func NewAlbumRepository(db *gorm.DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

// Insert creates an album. A pre-set ID is honored, which is how the
// favorites album claims its reserved ID at bootstrap.
func (r *AlbumRepository) Insert(album *models.Album) error {
	if err := r.db.Create(album).Error; err != nil {
		return fmt.Errorf("failed to insert album: %w", err)
	}
	return nil
}

func (r *AlbumRepository) FindByID(id uint) (*models.Album, error) {
	var album models.Album
	if err := r.db.First(&album, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load album %d: %w", id, err)
	}
	return &album, nil
}

func (r *AlbumRepository) List() ([]models.Album, error) {
	var albums []models.Album
	if err := r.db.Order("created_at DESC").Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	return albums, nil
}

// Update applies a sparse column update. Returns false when no row matched.
func (r *AlbumRepository) Update(id uint, fields map[string]interface{}) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}
	res := r.db.Model(&models.Album{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update album %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the album and its memberships in one transaction.
func (r *AlbumRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("album_id = ?", id).Delete(&models.AlbumMedia{}).Error; err != nil {
			return fmt.Errorf("failed to delete memberships of album %d: %w", id, err)
		}
		res := tx.Delete(&models.Album{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete album %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// UpsertMembership links media into an album. With a nil position the link
// is appended at max(position)+1; an existing (album, media) pair has its
// position replaced rather than erroring.
func (r *AlbumRepository) UpsertMembership(albumID, mediaID uint, position *int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		pos := 0
		if position != nil {
			pos = *position
		} else {
			var maxPos *int
			err := tx.Model(&models.AlbumMedia{}).
				Where("album_id = ?", albumID).
				Select("MAX(position)").Scan(&maxPos).Error
			if err != nil {
				return fmt.Errorf("failed to compute append position: %w", err)
			}
			if maxPos != nil {
				pos = *maxPos
			}
			pos++
		}

		link := models.AlbumMedia{
			AlbumID:  albumID,
			MediaID:  mediaID,
			Position: pos,
			AddedAt:  time.Now().UTC(),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "album_id"}, {Name: "media_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"position"}),
		}).Create(&link).Error
		if err != nil {
			return fmt.Errorf("failed to upsert membership: %w", err)
		}
		return nil
	})
}

// DeleteMembership unlinks one asset from one album; absent links are a no-op.
func (r *AlbumRepository) DeleteMembership(albumID, mediaID uint) error {
	err := r.db.Where("album_id = ? AND media_id = ?", albumID, mediaID).
		Delete(&models.AlbumMedia{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return nil
}

// DeleteMembershipsByMedia strips an asset from every album.
func (r *AlbumRepository) DeleteMembershipsByMedia(mediaID uint) error {
	err := r.db.Where("media_id = ?", mediaID).Delete(&models.AlbumMedia{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete memberships of media %d: %w", mediaID, err)
	}
	return nil
}

// ListMediaOrdered returns an album's media in ascending manual position.
func (r *AlbumRepository) ListMediaOrdered(albumID uint) ([]models.Media, error) {
	var media []models.Media
	err := r.db.Model(&models.Media{}).
		Joins("JOIN album_media ON album_media.media_id = media.id").
		Where("album_media.album_id = ?", albumID).
		Order("album_media.position ASC").
		Find(&media).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list album media: %w", err)
	}
	return media, nil
}

// ListMemberIDs returns the member media IDs of one album in a single query.
func (r *AlbumRepository) ListMemberIDs(albumID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.AlbumMedia{}).
		Where("album_id = ?", albumID).
		Pluck("media_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list member ids: %w", err)
	}
	return ids, nil
}

// MemberCount returns the number of assets linked into an album.
func (r *AlbumRepository) MemberCount(albumID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.AlbumMedia{}).
		Where("album_id = ?", albumID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count album members: %w", err)
	}
	return count, nil
}

// CoverMedia returns the first asset of an album by position, used as the
// album cover in listings. ErrNotFound when the album is empty.
func (r *AlbumRepository) CoverMedia(albumID uint) (*models.Media, error) {
	var media models.Media
	err := r.db.Model(&models.Media{}).
		Joins("JOIN album_media ON album_media.media_id = media.id").
		Where("album_media.album_id = ?", albumID).
		Order("album_media.position ASC").
		First(&media).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load album cover: %w", err)
	}
	return &media, nil
}

// DeleteOrphanMemberships removes links whose media is trashed or gone.
// Trash and purge already strip memberships best-effort; this sweep is the
// reconciliation path for links that survived a partial failure.
func (r *AlbumRepository) DeleteOrphanMemberships() (int64, error) {
	res := r.db.Where(
		"media_id IN (?)",
		r.db.Model(&models.Media{}).Select("id").Where("state = ?", models.StateTrashed),
	).Or(
		"media_id NOT IN (?)",
		r.db.Model(&models.Media{}).Select("id"),
	).Delete(&models.AlbumMedia{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to sweep orphan memberships: %w", res.Error)
	}
	return res.RowsAffected, nil
}
