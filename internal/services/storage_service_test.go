package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pellicule/backend/internal/config"
)

func newTestStorage(t *testing.T) *StorageService {
	t.Helper()
	return NewStorageService(&config.Config{DataPath: t.TempDir()})
}

func TestStageAndPromote(t *testing.T) {
	storage := newTestStorage(t)

	content := "raw upload bytes"
	staged, err := storage.Stage(context.Background(), strings.NewReader(content))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if staged.Size != int64(len(content)) {
		t.Errorf("Expected size %d, got %d", len(content), staged.Size)
	}
	sum := sha256.Sum256([]byte(content))
	if staged.SHA256 != hex.EncodeToString(sum[:]) {
		t.Errorf("Unexpected hash %s", staged.SHA256)
	}
	if !strings.HasSuffix(staged.Path, ".part") {
		t.Errorf("Expected .part staging name, got %s", staged.Path)
	}

	abs, err := storage.Promote(staged, "stored.jpg")
	if err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		t.Fatalf("Promoted file missing: %v", err)
	}
	if string(data) != content {
		t.Error("Promoted bytes differ from upload")
	}
	if _, err := os.Stat(staged.Path); !os.IsNotExist(err) {
		t.Error("Expected staging file gone after promote")
	}
}

func TestStageCancelledContext(t *testing.T) {
	storage := newTestStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := storage.Stage(ctx, strings.NewReader("data")); err == nil {
		t.Fatal("Expected error from cancelled stage")
	}

	entries, _ := os.ReadDir(filepath.Join(storage.cfg.TmpPath()))
	if len(entries) != 0 {
		t.Errorf("Expected staging file cleaned up, found %d entries", len(entries))
	}
}

func TestDiscard(t *testing.T) {
	storage := newTestStorage(t)

	staged, err := storage.Stage(context.Background(), strings.NewReader("throwaway"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	storage.Discard(staged)
	if _, err := os.Stat(staged.Path); !os.IsNotExist(err) {
		t.Error("Expected staging file removed")
	}

	// Discarding nil or twice must not panic.
	storage.Discard(nil)
	storage.Discard(staged)
}

func TestRemoveMissingFile(t *testing.T) {
	storage := newTestStorage(t)
	if err := storage.Remove(storage.MediaFilePath("never-existed.jpg")); err != nil {
		t.Fatalf("Expected missing file to be a no-op, got %v", err)
	}
}

func TestGenerateFileName(t *testing.T) {
	tests := []struct {
		original string
		ext      string
	}{
		{"Photo.JPG", ".jpg"},
		{"clip.MP4", ".mp4"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			got := GenerateFileName(tt.original)
			if !strings.HasSuffix(got, tt.ext) {
				t.Errorf("GenerateFileName(%s) = %s, want suffix %s", tt.original, got, tt.ext)
			}
			if strings.Contains(got, tt.original) && tt.original != "noext" {
				t.Errorf("Generated name %s leaks the original name", got)
			}
		})
	}

	if GenerateFileName("same.jpg") == GenerateFileName("same.jpg") {
		t.Error("Expected distinct names for repeated uploads of the same name")
	}
}

func TestDirSize(t *testing.T) {
	storage := newTestStorage(t)

	dir := storage.cfg.MediaPath()
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 100), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.bin"), make([]byte, 50), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	size, err := storage.DirSize(dir)
	if err != nil {
		t.Fatalf("DirSize failed: %v", err)
	}
	if size != 150 {
		t.Errorf("Expected 150 bytes, got %d", size)
	}
}
