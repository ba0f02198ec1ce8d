package handler

import (
	"net/http"

	"shelfpick/backend/internal/database"
	"shelfpick/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

type SettingInput struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// publicSettingKeys are the settings exposed without authentication.
var publicSettingKeys = []string{
	"site_title",
	"default_session_filters",
	"kid_mode_default",
}

// GetPublicSettings godoc
// @Summary      Get public settings
// @Description  Returns the whitelisted settings the frontend needs before login.
// @Tags         settings
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /settings [get]
func GetPublicSettings(c *gin.Context) {
	var settings []models.Setting
	database.DB.Where("key IN ?", publicSettingKeys).Find(&settings)

	response := make(map[string]string, len(settings))
	for _, setting := range settings {
		response[setting.Key] = setting.Value
	}
	c.JSON(http.StatusOK, response)
}

// GetAllSettings godoc
// @Summary      Get all settings
// @Description  Returns every setting row.
// @Tags         admin-settings
// @Produce      json
// @Security     CookieAuth
// @Success      200 {object} map[string]string
// @Router       /admin/settings [get]
func GetAllSettings(c *gin.Context) {
	var settings []models.Setting
	database.DB.Find(&settings)

	response := make(map[string]string, len(settings))
	for _, setting := range settings {
		response[setting.Key] = setting.Value
	}
	c.JSON(http.StatusOK, response)
}

// UpsertSetting godoc
// @Summary      Set a setting
// @Description  Creates or updates one setting by key.
// @Tags         admin-settings
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        input body SettingInput true "Setting"
// @Success      200 {object} map[string]string
// @Failure      400 {object} ErrorResponse
// @Router       /admin/settings [put]
func UpsertSetting(c *gin.Context) {
	var input SettingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setting := models.Setting{Key: input.Key, Value: input.Value}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save setting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{input.Key: input.Value})
}
