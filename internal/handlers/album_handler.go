package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pellicule/backend/internal/services"
)

type AlbumHandler struct {
	albumService *services.AlbumService
}

func NewAlbumHandler(albumService *services.AlbumService) *AlbumHandler {
	return &AlbumHandler{albumService: albumService}
}

type albumCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Create creates an album.
// POST /albums
func (h *AlbumHandler) Create(c *gin.Context) {
	var req albumCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	album, err := h.albumService.Create(req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": album})
}

// List returns all albums with member counts and cover thumbs.
// GET /albums
func (h *AlbumHandler) List(c *gin.Context) {
	albums, err := h.albumService.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": albums})
}

// Get returns one album.
// GET /albums/:id
func (h *AlbumHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	album, err := h.albumService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": album})
}

type albumUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Update applies a sparse patch to an album.
// PUT /albums/:id
func (h *AlbumHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req albumUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	album, err := h.albumService.Update(id, services.AlbumUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": album})
}

// Delete removes an album; the favorites album is always refused.
// DELETE /albums/:id
func (h *AlbumHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.albumService.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "album deleted"})
}

type addMediaRequest struct {
	MediaID  uint `json:"media_id" binding:"required"`
	Position *int `json:"position"`
}

// AddMedia links an asset into an album, appending unless a position is
// given; re-adding replaces the position.
// POST /albums/:id/media
func (h *AlbumHandler) AddMedia(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req addMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media_id is required"})
		return
	}
	if err := h.albumService.AddMedia(id, req.MediaID, req.Position); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveMedia unlinks an asset from an album.
// DELETE /albums/:id/media/:mediaId
func (h *AlbumHandler) RemoveMedia(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	mediaID, ok := paramID(c, "mediaId")
	if !ok {
		return
	}
	if err := h.albumService.RemoveMedia(id, mediaID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMedia returns an album's assets in manual order, with the derived
// favorite flag resolved in one batch.
// GET /albums/:id/media
func (h *AlbumHandler) GetMedia(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	media, err := h.albumService.GetMedia(id)
	if err != nil {
		respondError(c, err)
		return
	}
	favorites, err := h.albumService.FavoriteIDs()
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(media))
	for _, m := range media {
		items = append(items, gin.H{
			"id":          m.ID,
			"name":        m.OriginalName,
			"path":        m.FilePath,
			"thumb":       "/thumbs/" + m.ThumbName(),
			"kind":        m.Kind,
			"favorite":    favorites[m.ID],
			"size":        m.SizeBytes,
			"width":       m.Width,
			"height":      m.Height,
			"duration":    m.Duration,
			"captured_at": m.CapturedAt,
			"uploaded_at": m.UploadedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

type setFavoriteRequest struct {
	Favorite *bool `json:"favorite" binding:"required"`
}

// SetFavorite flips an asset's membership in the favorites album.
// PUT /media/:id/favorite
func (h *AlbumHandler) SetFavorite(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req setFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "favorite is required"})
		return
	}
	if err := h.albumService.SetFavorite(id, *req.Favorite); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "favorite": *req.Favorite})
}
