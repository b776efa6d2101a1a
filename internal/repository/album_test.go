package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/pellicule/backend/internal/models"
)

func TestUpsertMembershipAppends(t *testing.T) {
	db := newTestDB(t)
	mediaRepo := NewMediaRepository(db)
	albumRepo := NewAlbumRepository(db)

	album := &models.Album{Name: "Sequence"}
	if err := albumRepo.Insert(album); err != nil {
		t.Fatalf("Insert album failed: %v", err)
	}

	ids := make([]uint, 0, 3)
	for i := 1; i <= 3; i++ {
		m := newMedia(i)
		if err := mediaRepo.Insert(m); err != nil {
			t.Fatalf("Insert media failed: %v", err)
		}
		if err := albumRepo.UpsertMembership(album.ID, m.ID, nil); err != nil {
			t.Fatalf("UpsertMembership failed: %v", err)
		}
		ids = append(ids, m.ID)
	}

	ordered, err := albumRepo.ListMediaOrdered(album.ID)
	if err != nil {
		t.Fatalf("ListMediaOrdered failed: %v", err)
	}
	for i, m := range ordered {
		if m.ID != ids[i] {
			t.Errorf("Position %d: expected %d, got %d", i, ids[i], m.ID)
		}
	}
}

func TestUpsertMembershipReplacesPosition(t *testing.T) {
	db := newTestDB(t)
	mediaRepo := NewMediaRepository(db)
	albumRepo := NewAlbumRepository(db)

	album := &models.Album{Name: "Shuffle"}
	if err := albumRepo.Insert(album); err != nil {
		t.Fatalf("Insert album failed: %v", err)
	}
	first := newMedia(1)
	second := newMedia(2)
	for _, m := range []*models.Media{first, second} {
		if err := mediaRepo.Insert(m); err != nil {
			t.Fatalf("Insert media failed: %v", err)
		}
		if err := albumRepo.UpsertMembership(album.ID, m.ID, nil); err != nil {
			t.Fatalf("UpsertMembership failed: %v", err)
		}
	}

	pos := 99
	if err := albumRepo.UpsertMembership(album.ID, first.ID, &pos); err != nil {
		t.Fatalf("Re-upsert failed: %v", err)
	}

	count, _ := albumRepo.MemberCount(album.ID)
	if count != 2 {
		t.Fatalf("Expected 2 memberships after re-upsert, got %d", count)
	}
	ordered, _ := albumRepo.ListMediaOrdered(album.ID)
	if ordered[len(ordered)-1].ID != first.ID {
		t.Errorf("Expected re-upserted asset last, got order %v", ordered)
	}
}

func TestCoverMedia(t *testing.T) {
	db := newTestDB(t)
	mediaRepo := NewMediaRepository(db)
	albumRepo := NewAlbumRepository(db)

	album := &models.Album{Name: "Covers"}
	if err := albumRepo.Insert(album); err != nil {
		t.Fatalf("Insert album failed: %v", err)
	}

	if _, err := albumRepo.CoverMedia(album.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for empty album, got %v", err)
	}

	first := newMedia(1)
	if err := mediaRepo.Insert(first); err != nil {
		t.Fatalf("Insert media failed: %v", err)
	}
	if err := albumRepo.UpsertMembership(album.ID, first.ID, nil); err != nil {
		t.Fatalf("UpsertMembership failed: %v", err)
	}

	cover, err := albumRepo.CoverMedia(album.ID)
	if err != nil {
		t.Fatalf("CoverMedia failed: %v", err)
	}
	if cover.ID != first.ID {
		t.Errorf("Expected cover %d, got %d", first.ID, cover.ID)
	}
}

func TestDeleteOrphanMemberships(t *testing.T) {
	db := newTestDB(t)
	mediaRepo := NewMediaRepository(db)
	albumRepo := NewAlbumRepository(db)

	album := &models.Album{Name: "Sweep"}
	if err := albumRepo.Insert(album); err != nil {
		t.Fatalf("Insert album failed: %v", err)
	}

	healthy := newMedia(1)
	binned := newMedia(2)
	for _, m := range []*models.Media{healthy, binned} {
		if err := mediaRepo.Insert(m); err != nil {
			t.Fatalf("Insert media failed: %v", err)
		}
		if err := albumRepo.UpsertMembership(album.ID, m.ID, nil); err != nil {
			t.Fatalf("UpsertMembership failed: %v", err)
		}
	}

	// One member goes to the trash behind the sweep's back; one link points
	// at a row that no longer exists at all.
	if err := mediaRepo.SetState(binned.ID, models.StateTrashed, time.Now().UTC()); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	ghost := models.AlbumMedia{AlbumID: album.ID, MediaID: 12345, Position: 99, AddedAt: time.Now().UTC()}
	if err := db.Create(&ghost).Error; err != nil {
		t.Fatalf("Failed to plant ghost membership: %v", err)
	}

	removed, err := albumRepo.DeleteOrphanMemberships()
	if err != nil {
		t.Fatalf("DeleteOrphanMemberships failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 orphans removed, got %d", removed)
	}

	ids, _ := albumRepo.ListMemberIDs(album.ID)
	if len(ids) != 1 || ids[0] != healthy.ID {
		t.Errorf("Expected only the healthy link to survive, got %v", ids)
	}
}
