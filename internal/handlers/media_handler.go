package handlers

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pellicule/backend/internal/config"
	"github.com/pellicule/backend/internal/services"
)

type MediaHandler struct {
	mediaService *services.MediaService
	cfg          *config.Config
}

func NewMediaHandler(mediaService *services.MediaService, cfg *config.Config) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, cfg: cfg}
}

// Upload handles multi-file ingest.
// POST /media with a multipart form: files (one or more), album_id (optional).
// Items are independent; the response carries a per-file outcome and the
// status is 201 when everything landed, 207 otherwise.
func (h *MediaHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files is required"})
		return
	}
	if len(files) > h.cfg.UploadMaxFiles {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "too many files",
			"max":   h.cfg.UploadMaxFiles,
		})
		return
	}

	var albumID *uint
	if raw := c.PostForm("album_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album_id"})
			return
		}
		id := uint(parsed)
		albumID = &id
	}

	results := make([]gin.H, 0, len(files))
	failed := 0
	for _, fh := range files {
		result := h.ingestOne(c, fh, albumID)
		if success, _ := result["success"].(bool); !success {
			failed++
		}
		results = append(results, result)
	}

	status := http.StatusCreated
	if failed > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"success": failed == 0,
		"total":   len(files),
		"failed":  failed,
		"results": results,
	})
}

func (h *MediaHandler) ingestOne(c *gin.Context, fh *multipart.FileHeader, albumID *uint) gin.H {
	if fh.Size > h.cfg.UploadMaxFileSize {
		return gin.H{"success": false, "name": fh.Filename, "error": "file too large"}
	}
	if !h.cfg.ExtensionAllowed(filepath.Ext(fh.Filename)) {
		return gin.H{"success": false, "name": fh.Filename, "error": "extension not allowed"}
	}

	f, err := fh.Open()
	if err != nil {
		return gin.H{"success": false, "name": fh.Filename, "error": "failed to open upload"}
	}
	defer f.Close()

	result, err := h.mediaService.Ingest(c.Request.Context(), services.IngestInput{
		OriginalName: fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
		Reader:       f,
	}, albumID)
	if err != nil {
		return gin.H{"success": false, "name": fh.Filename, "error": err.Error()}
	}

	item := gin.H{
		"success": true,
		"id":      result.Media.ID,
		"name":    result.Media.OriginalName,
		"path":    result.Media.FilePath,
		"thumb":   "/thumbs/" + result.Media.ThumbName(),
		"kind":    result.Media.Kind,
		"size":    result.Media.SizeBytes,
	}
	if len(result.Warnings) > 0 {
		item["warnings"] = result.Warnings
	}
	return item
}

// List returns the library.
// GET /media?include_trashed=true
func (h *MediaHandler) List(c *gin.Context) {
	includeTrashed := c.Query("include_trashed") == "true"
	views, err := h.mediaService.List(includeTrashed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
}

// Get returns one asset.
// GET /media/:id
func (h *MediaHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.mediaService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

// Download streams the original bytes with the original file name.
// GET /media/:id/file
func (h *MediaHandler) Download(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.mediaService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(h.mediaService.FilePath(&view.Media), view.OriginalName)
}

// Thumb serves the generated thumbnail.
// GET /media/:id/thumb
func (h *MediaHandler) Thumb(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.mediaService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.File(h.mediaService.ThumbPath(&view.Media))
}

type mediaUpdateRequest struct {
	OriginalName *string    `json:"original_name"`
	CapturedAt   *time.Time `json:"captured_at"`
	Width        *int       `json:"width"`
	Height       *int       `json:"height"`
	Duration     *int       `json:"duration"`
}

// Update applies a sparse metadata patch.
// PUT /media/:id
func (h *MediaHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req mediaUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.mediaService.Update(id, services.MediaUpdate{
		OriginalName: req.OriginalName,
		CapturedAt:   req.CapturedAt,
		Width:        req.Width,
		Height:       req.Height,
		Duration:     req.Duration,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

// Trash soft-deletes an asset and strips its album memberships.
// DELETE /media/:id
func (h *MediaHandler) Trash(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	media, err := h.mediaService.MoveToTrash(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      media.ID,
		"name":    media.OriginalName,
		"message": "media moved to trash",
	})
}

// Restore brings an asset back from the trash.
// POST /media/:id/restore
func (h *MediaHandler) Restore(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	media, err := h.mediaService.RestoreFromTrash(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      media.ID,
		"name":    media.OriginalName,
		"message": "media restored",
	})
}

// DeletePermanently purges an asset regardless of state.
// DELETE /media/:id/permanent
func (h *MediaHandler) DeletePermanently(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.mediaService.DeletePermanently(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id, "message": "media deleted permanently"})
}

// GetTrash lists trash contents.
// GET /trash
func (h *MediaHandler) GetTrash(c *gin.Context) {
	views, err := h.mediaService.ListTrashed()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
}

// EmptyTrash purges everything in the trash, reporting per-item outcomes.
// DELETE /trash
func (h *MediaHandler) EmptyTrash(c *gin.Context) {
	result, err := h.mediaService.EmptyTrash()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       len(result.Failures) == 0,
		"deleted_count": result.DeletedCount,
		"failures":      result.Failures,
	})
}
