package services

import (
	"errors"

	"github.com/pellicule/backend/internal/repository"
)

// Catalog-level sentinels are re-exported so handlers only depend on the
// service layer.
var (
	ErrNotFound  = repository.ErrNotFound
	ErrDuplicate = repository.ErrDuplicate

	// ErrUnsupportedType is returned when an upload declares a content
	// type that is neither image/* nor video/*.
	ErrUnsupportedType = errors.New("unsupported media type")

	// ErrProtectedAlbum is returned on any attempt to delete the
	// favorites album.
	ErrProtectedAlbum = errors.New("favorites album cannot be deleted")
)
