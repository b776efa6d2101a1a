package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pellicule/backend/internal/services"
)

type StorageHandler struct {
	statsService *services.StatsService
}

func NewStorageHandler(statsService *services.StatsService) *StorageHandler {
	return &StorageHandler{statsService: statsService}
}

// GetStats reports disk capacity plus per-directory library usage.
// GET /storage/stats
func (h *StorageHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetStats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
