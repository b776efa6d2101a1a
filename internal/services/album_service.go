package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/pellicule/backend/internal/config"
	"github.com/pellicule/backend/internal/models"
	"github.com/pellicule/backend/internal/repository"
)

// AlbumService manages albums, their ordered memberships, and the
// protected favorites album. Favorite status of an asset is nothing but
// its membership in the favorites album.
type AlbumService struct {
	albums *repository.AlbumRepository
	media  *repository.MediaRepository
	cfg    *config.Config
}

func NewAlbumService(albums *repository.AlbumRepository, media *repository.MediaRepository, cfg *config.Config) *AlbumService {
	return &AlbumService{albums: albums, media: media, cfg: cfg}
}

// AlbumUpdate is a sparse patch; nil fields stay untouched.
type AlbumUpdate struct {
	Name        *string
	Description *string
}

// AlbumView is the album representation produced for listings.
type AlbumView struct {
	models.Album
	MediaCount int64  `json:"media_count"`
	Thumb      string `json:"thumb,omitempty"`
}

// EnsureFavoriteAlbum creates the reserved favorites album if absent.
// Idempotent; called once at process start.
func (s *AlbumService) EnsureFavoriteAlbum() error {
	album, err := s.albums.FindByID(s.cfg.FavoriteAlbumID)
	if errors.Is(err, ErrNotFound) {
		return s.albums.Insert(&models.Album{
			ID:          s.cfg.FavoriteAlbumID,
			Name:        "Favorites",
			Description: "Favorite media",
			IsFavorite:  true,
		})
	}
	if err != nil {
		return err
	}
	if !album.IsFavorite {
		// Reclaim the reserved ID if an older database left the flag unset.
		_, err = s.albums.Update(album.ID, map[string]interface{}{"is_favorite": true})
	}
	return err
}

func (s *AlbumService) Create(name, description string) (*models.Album, error) {
	album := &models.Album{Name: name, Description: description}
	if err := s.albums.Insert(album); err != nil {
		return nil, err
	}
	return album, nil
}

func (s *AlbumService) Get(id uint) (*models.Album, error) {
	return s.albums.FindByID(id)
}

// List returns all albums with their member count and cover thumbnail
// (first member by position, as the original gallery shows them).
func (s *AlbumService) List() ([]AlbumView, error) {
	albums, err := s.albums.List()
	if err != nil {
		return nil, err
	}

	views := make([]AlbumView, 0, len(albums))
	for _, album := range albums {
		view := AlbumView{Album: album}
		if count, err := s.albums.MemberCount(album.ID); err == nil {
			view.MediaCount = count
		}
		if cover, err := s.albums.CoverMedia(album.ID); err == nil {
			view.Thumb = "/thumbs/" + cover.ThumbName()
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *AlbumService) Update(id uint, patch AlbumUpdate) (*models.Album, error) {
	fields := map[string]interface{}{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}

	if len(fields) > 0 {
		updated, err := s.albums.Update(id, fields)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, ErrNotFound
		}
	}
	return s.albums.FindByID(id)
}

// Delete removes an album and its memberships. The favorites album is
// rejected unconditionally, before any existence check.
func (s *AlbumService) Delete(id uint) error {
	if id == s.cfg.FavoriteAlbumID {
		return ErrProtectedAlbum
	}
	return s.albums.Delete(id)
}

// AddMedia links an asset into an album. A nil position appends; adding
// an already-linked asset replaces its position. Trashed assets are never
// album members and are treated as absent.
func (s *AlbumService) AddMedia(albumID, mediaID uint, position *int) error {
	if _, err := s.albums.FindByID(albumID); err != nil {
		return fmt.Errorf("album %d: %w", albumID, err)
	}
	media, err := s.media.FindByID(mediaID)
	if err != nil {
		return fmt.Errorf("media %d: %w", mediaID, err)
	}
	if media.Trashed() {
		return fmt.Errorf("media %d is trashed: %w", mediaID, ErrNotFound)
	}
	return s.albums.UpsertMembership(albumID, mediaID, position)
}

// RemoveMedia unlinks an asset from an album; absent links are a no-op.
func (s *AlbumService) RemoveMedia(albumID, mediaID uint) error {
	return s.albums.DeleteMembership(albumID, mediaID)
}

// RemoveFromAllAlbums strips an asset from every album, favorites included.
func (s *AlbumService) RemoveFromAllAlbums(mediaID uint) error {
	return s.albums.DeleteMembershipsByMedia(mediaID)
}

// GetMedia returns an album's assets in ascending manual position.
func (s *AlbumService) GetMedia(albumID uint) ([]models.Media, error) {
	if _, err := s.albums.FindByID(albumID); err != nil {
		return nil, err
	}
	return s.albums.ListMediaOrdered(albumID)
}

// FavoriteIDs returns the favorites album's member IDs as a set; list
// views use this instead of per-asset lookups.
func (s *AlbumService) FavoriteIDs() (map[uint]bool, error) {
	ids, err := s.albums.ListMemberIDs(s.cfg.FavoriteAlbumID)
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *AlbumService) IsFavorite(mediaID uint) (bool, error) {
	favorites, err := s.FavoriteIDs()
	if err != nil {
		return false, err
	}
	return favorites[mediaID], nil
}

// SetFavorite flips an asset's membership in the favorites album.
func (s *AlbumService) SetFavorite(mediaID uint, favorite bool) error {
	if favorite {
		return s.AddMedia(s.cfg.FavoriteAlbumID, mediaID, nil)
	}
	return s.RemoveMedia(s.cfg.FavoriteAlbumID, mediaID)
}

// ReconcileMemberships sweeps links pointing at trashed or missing media.
func (s *AlbumService) ReconcileMemberships() (int64, error) {
	removed, err := s.albums.DeleteOrphanMemberships()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Printf("Membership reconciliation: removed %d orphan links", removed)
	}
	return removed, nil
}
