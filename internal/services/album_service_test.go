package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pellicule/backend/internal/models"
)

func (e *testEnv) ingestN(t *testing.T, n int) []uint {
	t.Helper()
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		result := e.ingest(t, fmt.Sprintf("asset-%d.jpg", i), "image/jpeg", fmt.Sprintf("content-%d", i), nil)
		ids = append(ids, result.Media.ID)
	}
	return ids
}

func TestEnsureFavoriteAlbumIdempotent(t *testing.T) {
	env := newTestEnv(t)

	// newTestEnv already ran it once; run it again.
	if err := env.albums.EnsureFavoriteAlbum(); err != nil {
		t.Fatalf("Second EnsureFavoriteAlbum failed: %v", err)
	}

	album, err := env.albums.Get(env.cfg.FavoriteAlbumID)
	if err != nil {
		t.Fatalf("Favorites album missing: %v", err)
	}
	if !album.IsFavorite {
		t.Error("Expected IsFavorite set on the reserved album")
	}

	views, err := env.albums.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(views) != 1 {
		t.Errorf("Expected exactly 1 album, got %d", len(views))
	}
}

func TestEnsureFavoriteAlbumReclaimsFlag(t *testing.T) {
	env := newTestEnv(t)

	// Simulate an older database where the reserved row lost its flag.
	if _, err := env.albumRepo.Update(env.cfg.FavoriteAlbumID, map[string]interface{}{"is_favorite": false}); err != nil {
		t.Fatalf("Failed to clear flag: %v", err)
	}
	if err := env.albums.EnsureFavoriteAlbum(); err != nil {
		t.Fatalf("EnsureFavoriteAlbum failed: %v", err)
	}
	album, _ := env.albums.Get(env.cfg.FavoriteAlbumID)
	if !album.IsFavorite {
		t.Error("Expected flag reclaimed on the reserved album")
	}
}

func TestDeleteFavoritesAlbumRejected(t *testing.T) {
	env := newTestEnv(t)

	if err := env.albums.Delete(env.cfg.FavoriteAlbumID); !errors.Is(err, ErrProtectedAlbum) {
		t.Fatalf("Expected ErrProtectedAlbum, got %v", err)
	}
	if _, err := env.albums.Get(env.cfg.FavoriteAlbumID); err != nil {
		t.Errorf("Favorites album should still exist: %v", err)
	}
}

func TestDeleteAlbumRemovesMemberships(t *testing.T) {
	env := newTestEnv(t)

	album, _ := env.albums.Create("Doomed", "")
	ids := env.ingestN(t, 2)
	for _, id := range ids {
		if err := env.albums.AddMedia(album.ID, id, nil); err != nil {
			t.Fatalf("AddMedia failed: %v", err)
		}
	}

	if err := env.albums.Delete(album.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := env.albums.Get(album.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// The assets themselves stay in the library.
	for _, id := range ids {
		if _, err := env.media.Get(id); err != nil {
			t.Errorf("Asset %d lost with the album: %v", id, err)
		}
	}
}

func TestDeleteMissingAlbum(t *testing.T) {
	env := newTestEnv(t)
	if err := env.albums.Delete(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestAddMediaAppendsInOrder(t *testing.T) {
	env := newTestEnv(t)

	album, _ := env.albums.Create("Ordered", "")
	ids := env.ingestN(t, 3)
	for _, id := range ids {
		if err := env.albums.AddMedia(album.ID, id, nil); err != nil {
			t.Fatalf("AddMedia failed: %v", err)
		}
	}

	members, err := env.albums.GetMedia(album.ID)
	if err != nil {
		t.Fatalf("GetMedia failed: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("Expected 3 members, got %d", len(members))
	}
	for i, m := range members {
		if m.ID != ids[i] {
			t.Errorf("Position %d: expected media %d, got %d", i, ids[i], m.ID)
		}
	}
}

func TestAddMediaReplacesPosition(t *testing.T) {
	env := newTestEnv(t)

	album, _ := env.albums.Create("Reordered", "")
	ids := env.ingestN(t, 2)
	for _, id := range ids {
		if err := env.albums.AddMedia(album.ID, id, nil); err != nil {
			t.Fatalf("AddMedia failed: %v", err)
		}
	}

	// Re-adding the first asset with a higher position moves it to the end
	// instead of erroring or duplicating the link.
	pos := 10
	if err := env.albums.AddMedia(album.ID, ids[0], &pos); err != nil {
		t.Fatalf("Re-add failed: %v", err)
	}

	members, _ := env.albums.GetMedia(album.ID)
	if len(members) != 2 {
		t.Fatalf("Expected 2 members after re-add, got %d", len(members))
	}
	if members[0].ID != ids[1] || members[1].ID != ids[0] {
		t.Errorf("Expected order [%d %d], got [%d %d]", ids[1], ids[0], members[0].ID, members[1].ID)
	}
}

func TestAddMediaRejections(t *testing.T) {
	env := newTestEnv(t)

	album, _ := env.albums.Create("Strict", "")
	ids := env.ingestN(t, 1)
	if _, err := env.media.MoveToTrash(ids[0]); err != nil {
		t.Fatalf("MoveToTrash failed: %v", err)
	}

	tests := []struct {
		name    string
		albumID uint
		mediaID uint
	}{
		{"missing album", 999, ids[0]},
		{"missing media", album.ID, 999},
		{"trashed media", album.ID, ids[0]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.albums.AddMedia(tt.albumID, tt.mediaID, nil)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestRemoveMediaAbsentLinkIsNoop(t *testing.T) {
	env := newTestEnv(t)

	album, _ := env.albums.Create("Sparse", "")
	if err := env.albums.RemoveMedia(album.ID, 42); err != nil {
		t.Fatalf("Expected no-op for absent link, got %v", err)
	}
}

func TestAlbumUpdateSparse(t *testing.T) {
	env := newTestEnv(t)

	album, _ := env.albums.Create("Before", "old text")

	name := "After"
	updated, err := env.albums.Update(album.ID, AlbumUpdate{Name: &name})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "After" || updated.Description != "old text" {
		t.Errorf("Expected name change only, got %q %q", updated.Name, updated.Description)
	}

	// Empty patch returns the album unchanged.
	same, err := env.albums.Update(album.ID, AlbumUpdate{})
	if err != nil {
		t.Fatalf("Empty update failed: %v", err)
	}
	if same.Name != "After" {
		t.Errorf("Expected unchanged album, got %q", same.Name)
	}

	if _, err := env.albums.Update(999, AlbumUpdate{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing album, got %v", err)
	}
}

func TestAlbumListViews(t *testing.T) {
	env := newTestEnv(t)

	album, _ := env.albums.Create("Gallery", "")
	ids := env.ingestN(t, 2)
	for _, id := range ids {
		if err := env.albums.AddMedia(album.ID, id, nil); err != nil {
			t.Fatalf("AddMedia failed: %v", err)
		}
	}

	views, err := env.albums.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var gallery *AlbumView
	for i := range views {
		if views[i].ID == album.ID {
			gallery = &views[i]
		}
	}
	if gallery == nil {
		t.Fatal("Gallery album missing from listing")
	}
	if gallery.MediaCount != 2 {
		t.Errorf("Expected media_count=2, got %d", gallery.MediaCount)
	}
	if gallery.Thumb == "" {
		t.Error("Expected a cover thumb for a non-empty album")
	}
}

func TestSetFavoriteToggle(t *testing.T) {
	env := newTestEnv(t)
	ids := env.ingestN(t, 1)

	if err := env.albums.SetFavorite(ids[0], true); err != nil {
		t.Fatalf("SetFavorite(true) failed: %v", err)
	}
	// Favoriting twice keeps a single membership.
	if err := env.albums.SetFavorite(ids[0], true); err != nil {
		t.Fatalf("Repeat SetFavorite failed: %v", err)
	}
	favorite, _ := env.albums.IsFavorite(ids[0])
	if !favorite {
		t.Error("Expected favorite after toggle on")
	}

	if err := env.albums.SetFavorite(ids[0], false); err != nil {
		t.Fatalf("SetFavorite(false) failed: %v", err)
	}
	favorite, _ = env.albums.IsFavorite(ids[0])
	if favorite {
		t.Error("Expected not favorite after toggle off")
	}
}

func TestReconcileMemberships(t *testing.T) {
	env := newTestEnv(t)

	album, _ := env.albums.Create("Stale", "")
	ids := env.ingestN(t, 2)
	for _, id := range ids {
		if err := env.albums.AddMedia(album.ID, id, nil); err != nil {
			t.Fatalf("AddMedia failed: %v", err)
		}
	}

	// Flip state directly, bypassing the service, to fake a link that
	// survived a partial trash.
	env.db.Model(&models.Media{}).Where("id = ?", ids[0]).
		Update("state", models.StateTrashed)

	removed, err := env.albums.ReconcileMemberships()
	if err != nil {
		t.Fatalf("ReconcileMemberships failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 orphan removed, got %d", removed)
	}

	members, _ := env.albums.GetMedia(album.ID)
	if len(members) != 1 || members[0].ID != ids[1] {
		t.Errorf("Expected only the active asset to remain, got %v", members)
	}
}
