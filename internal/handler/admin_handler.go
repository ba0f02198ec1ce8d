package handler

import (
	"errors"
	"net/http"
	"time"

	"shelfpick/backend/internal/bgg"
	"shelfpick/backend/internal/config"
	"shelfpick/backend/internal/store"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type ImportInput struct {
	Username string `json:"username"`
}

type SessionCleanupInput struct {
	OlderThanDays int `json:"older_than_days" binding:"required,min=1"`
}

// endregion

// AdminHandler serves maintenance endpoints: BGG imports and bulk session
// cleanup.
type AdminHandler struct {
	importer *bgg.Importer
	sessions *store.SessionStore
}

func NewAdminHandler(importer *bgg.Importer, sessions *store.SessionStore) *AdminHandler {
	return &AdminHandler{importer: importer, sessions: sessions}
}

// StartImport godoc
// @Summary      Start a BGG collection import
// @Description  Enqueues a background import of the given (or configured) BGG user's collection.
// @Tags         admin-bgg
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        input body ImportInput false "Import Info"
// @Success      202  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse "No username configured"
// @Failure      409  {object}  ErrorResponse "Import already in progress"
// @Router       /admin/bgg/import [post]
func (h *AdminHandler) StartImport(c *gin.Context) {
	var input ImportInput
	_ = c.ShouldBindJSON(&input)

	username := input.Username
	if username == "" {
		username = config.AppConfig.BGGUsername
	}
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No BGG username supplied or configured"})
		return
	}

	if err := h.importer.Enqueue(username); err != nil {
		if errors.Is(err, bgg.ErrImportBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue import"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Import started", "username": username})
}

// ImportStatus godoc
// @Summary      Get BGG import status
// @Description  Returns the state of the current or last import.
// @Tags         admin-bgg
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  bgg.ImportStatus
// @Router       /admin/bgg/import/status [get]
func (h *AdminHandler) ImportStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.importer.Status())
}

// CleanupSessions godoc
// @Summary      Bulk-delete old pick sessions
// @Description  Removes sessions created before the given age, with their players and votes.
// @Tags         admin-sessions
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        input body SessionCleanupInput true "Cutoff"
// @Success      200  {object}  map[string]int64
// @Failure      400  {object}  ErrorResponse
// @Router       /admin/sessions/cleanup [post]
func (h *AdminHandler) CleanupSessions(c *gin.Context) {
	var input SessionCleanupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cutoff := time.Now().AddDate(0, 0, -input.OlderThanDays)
	removed, err := h.sessions.DeleteOlderThan(cutoff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clean up sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
