package handler

import (
	"net/http"
	"strconv"

	"shelfpick/backend/internal/database"
	"shelfpick/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type RegisteredPlayerInput struct {
	Name   string `json:"name" binding:"required"`
	Avatar string `json:"avatar"`
}

type RegisteredPlayerResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

func newRegisteredPlayerResponse(player models.RegisteredPlayer) RegisteredPlayerResponse {
	return RegisteredPlayerResponse{
		ID:     player.ID,
		Name:   player.Name,
		Avatar: player.Avatar,
	}
}

// GetPlayers godoc
// @Summary      List registered players
// @Description  Retrieves the household player registry.
// @Tags         players
// @Produce      json
// @Success      200  {array}  RegisteredPlayerResponse
// @Router       /players [get]
func GetPlayers(c *gin.Context) {
	var players []models.RegisteredPlayer
	database.DB.Order("name").Find(&players)

	response := make([]RegisteredPlayerResponse, 0, len(players))
	for _, player := range players {
		response = append(response, newRegisteredPlayerResponse(player))
	}
	c.JSON(http.StatusOK, response)
}

// CreatePlayer godoc
// @Summary      Register a player
// @Description  Adds a person to the player registry.
// @Tags         players
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        input body RegisteredPlayerInput true "Player Info"
// @Success      201  {object}  RegisteredPlayerResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Player already exists"
// @Router       /players [post]
func CreatePlayer(c *gin.Context) {
	var input RegisteredPlayerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player := models.RegisteredPlayer{Name: input.Name, Avatar: input.Avatar}
	if err := database.DB.Create(&player).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Player already exists"})
		return
	}

	c.JSON(http.StatusCreated, newRegisteredPlayerResponse(player))
}

// UpdatePlayer godoc
// @Summary      Update a registered player
// @Description  Updates a player's name or avatar.
// @Tags         players
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path int                   true "Player ID"
// @Param        input body RegisteredPlayerInput true "New Player Info"
// @Success      200  {object}  RegisteredPlayerResponse
// @Failure      404  {object}  ErrorResponse "Player not found"
// @Router       /players/{id} [put]
func UpdatePlayer(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var player models.RegisteredPlayer
	if err := database.DB.First(&player, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		return
	}

	var input RegisteredPlayerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player.Name = input.Name
	player.Avatar = input.Avatar
	database.DB.Save(&player)

	c.JSON(http.StatusOK, newRegisteredPlayerResponse(player))
}

// DeletePlayer godoc
// @Summary      Delete a registered player
// @Description  Removes a player from the registry.
// @Tags         players
// @Produce      json
// @Security     CookieAuth
// @Param        id path int true "Player ID"
// @Success      200 {object} map[string]string "{"message": "Player deleted"}"
// @Failure      404 {object} ErrorResponse "Player not found"
// @Router       /players/{id} [delete]
func DeletePlayer(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Delete(&models.RegisteredPlayer{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Player deleted"})
}
