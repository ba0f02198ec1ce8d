package handler

import (
	"net/http"
	"strconv"
	"time"

	"shelfpick/backend/internal/database"
	"shelfpick/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

type PlayParticipantInput struct {
	PlayerID uint `json:"player_id" binding:"required"`
	Score    *int `json:"score"`
	Won      bool `json:"won"`
	IsNew    bool `json:"is_new"`
}

type PlayInput struct {
	GameID       uint                   `json:"game_id" binding:"required"`
	PlayedAt     time.Time              `json:"played_at" binding:"required"`
	Location     string                 `json:"location"`
	Notes        string                 `json:"notes"`
	Participants []PlayParticipantInput `json:"participants"`
}

type PlayParticipantResponse struct {
	PlayerID uint   `json:"player_id"`
	Name     string `json:"name"`
	Score    *int   `json:"score,omitempty"`
	Won      bool   `json:"won"`
	IsNew    bool   `json:"is_new"`
}

type PlayResponse struct {
	ID           uint                      `json:"id"`
	GameID       uint                      `json:"game_id"`
	GameName     string                    `json:"game_name"`
	PlayedAt     time.Time                 `json:"played_at"`
	Location     string                    `json:"location,omitempty"`
	Notes        string                    `json:"notes,omitempty"`
	Participants []PlayParticipantResponse `json:"participants"`
}

func newPlayResponse(play models.Play) PlayResponse {
	participants := make([]PlayParticipantResponse, 0, len(play.Participants))
	for _, p := range play.Participants {
		participants = append(participants, PlayParticipantResponse{
			PlayerID: p.PlayerID,
			Name:     p.Player.Name,
			Score:    p.Score,
			Won:      p.Won,
			IsNew:    p.IsNew,
		})
	}
	return PlayResponse{
		ID:           play.ID,
		GameID:       play.GameID,
		GameName:     play.Game.Name,
		PlayedAt:     play.PlayedAt,
		Location:     play.Location,
		Notes:        play.Notes,
		Participants: participants,
	}
}

// endregion

// GetPlays godoc
// @Summary      List logged plays
// @Description  Gets a paginated list of plays, newest first, optionally filtered by game.
// @Tags         plays
// @Produce      json
// @Param        game_id query int false "Filter by Game ID"
// @Param        page    query int false "Page number" default(1)
// @Param        limit   query int false "Items per page" default(20)
// @Success      200 {object} map[string]interface{}
// @Router       /plays [get]
func GetPlays(c *gin.Context) {
	page, limit := pageParams(c)

	query := database.DB.Model(&models.Play{}).
		Preload("Game").
		Preload("Participants.Player")
	if gameID := c.Query("game_id"); gameID != "" {
		query = query.Where("game_id = ?", gameID)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count plays"})
		return
	}

	var plays []models.Play
	offset := (page - 1) * limit
	if err := query.Order("played_at DESC").Offset(offset).Limit(limit).Find(&plays).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list plays"})
		return
	}

	response := make([]PlayResponse, 0, len(plays))
	for _, play := range plays {
		response = append(response, newPlayResponse(play))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}

// CreatePlay godoc
// @Summary      Log a play
// @Description  Records a play of a game with its participants.
// @Tags         plays
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        input body PlayInput true "Play Info"
// @Success      201  {object}  PlayResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Game or player not found"
// @Router       /plays [post]
func CreatePlay(c *gin.Context) {
	var input PlayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var game models.Game
	if err := database.DB.First(&game, input.GameID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	play := models.Play{
		GameID:   input.GameID,
		PlayedAt: input.PlayedAt,
		Location: input.Location,
		Notes:    input.Notes,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&play).Error; err != nil {
			return err
		}
		for _, participant := range input.Participants {
			var player models.RegisteredPlayer
			if err := tx.First(&player, participant.PlayerID).Error; err != nil {
				return err
			}
			row := models.PlayParticipant{
				PlayID:   play.ID,
				PlayerID: participant.PlayerID,
				Score:    participant.Score,
				Won:      participant.Won,
				IsNew:    participant.IsNew,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "One or more players not found"})
		return
	}

	database.DB.Preload("Game").Preload("Participants.Player").First(&play, play.ID)
	c.JSON(http.StatusCreated, newPlayResponse(play))
}

// DeletePlay godoc
// @Summary      Delete a logged play
// @Description  Removes a play and its participant rows.
// @Tags         plays
// @Produce      json
// @Security     CookieAuth
// @Param        id path int true "Play ID"
// @Success      200 {object} map[string]string "{"message": "Play deleted"}"
// @Failure      404 {object} ErrorResponse "Play not found"
// @Router       /plays/{id} [delete]
func DeletePlay(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("play_id = ?", id).Delete(&models.PlayParticipant{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Play{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Play not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Play deleted"})
}
