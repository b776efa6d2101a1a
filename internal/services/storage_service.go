package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pellicule/backend/internal/config"
)

// StorageService is the content store: a local filesystem area holding
// original media files, generated thumbnails and in-flight uploads.
// Pure byte storage; no catalog knowledge.
type StorageService struct {
	cfg *config.Config
}

func NewStorageService(cfg *config.Config) *StorageService {
	for _, dir := range []string{cfg.MediaPath(), cfg.ThumbsPath(), cfg.TmpPath()} {
		_ = os.MkdirAll(dir, 0o755)
	}
	return &StorageService{cfg: cfg}
}

// StagedFile is an upload parked in the tmp directory, hashed but not yet
// part of the library.
type StagedFile struct {
	Path   string
	Size   int64
	SHA256 string
}

// Stage streams an upload into the tmp directory, computing its sha256
// along the way. The caller either promotes or discards the result.
func (s *StorageService) Stage(ctx context.Context, r io.Reader) (*StagedFile, error) {
	path := filepath.Join(s.cfg.TmpPath(), uuid.New().String()+".part")

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, hasher), r)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to sync staging file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	return &StagedFile{
		Path:   path,
		Size:   n,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Promote moves a staged file into the media directory under fileName.
// Staging and media live on the same volume, so this is a rename.
func (s *StorageService) Promote(staged *StagedFile, fileName string) (string, error) {
	dest := s.MediaFilePath(fileName)
	if err := os.Rename(staged.Path, dest); err != nil {
		return "", fmt.Errorf("failed to promote staged file: %w", err)
	}
	return dest, nil
}

// Discard drops a staged upload that will not enter the library.
func (s *StorageService) Discard(staged *StagedFile) {
	if staged != nil {
		_ = os.Remove(staged.Path)
	}
}

// GenerateFileName builds a collision-free stored name, keeping only the
// original extension.
func GenerateFileName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return uuid.New().String() + ext
}

// MediaFilePath resolves a stored file name to its absolute path.
func (s *StorageService) MediaFilePath(fileName string) string {
	return filepath.Join(s.cfg.MediaPath(), fileName)
}

// ThumbFilePath resolves a thumbnail file name to its absolute path.
func (s *StorageService) ThumbFilePath(thumbName string) string {
	return filepath.Join(s.cfg.ThumbsPath(), thumbName)
}

// Remove deletes a file; a missing file is not an error.
func (s *StorageService) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Stat returns file metadata for a stored path.
func (s *StorageService) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// DirSize walks a directory and sums file sizes.
func (s *StorageService) DirSize(dir string) (int64, error) {
	var size int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, statErr := d.Info(); statErr == nil {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to size %s: %w", dir, err)
	}
	return size, nil
}
