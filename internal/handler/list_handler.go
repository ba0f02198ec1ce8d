package handler

import (
	"net/http"
	"strconv"
	"strings"

	"shelfpick/backend/internal/database"
	"shelfpick/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// region --- DTOs ---

type GameListInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type GameListEntryInput struct {
	GameID   uint `json:"game_id" binding:"required"`
	Position int  `json:"position"`
}

type GameListResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description,omitempty"`
	Games       []GameResponse `json:"games"`
}

func newGameListResponse(list models.GameList) GameListResponse {
	games := make([]GameResponse, 0, len(list.Entries))
	for _, entry := range list.Entries {
		games = append(games, newGameResponse(entry.Game))
	}
	return GameListResponse{
		ID:          list.ID,
		Name:        list.Name,
		Slug:        list.Slug,
		Description: list.Description,
		Games:       games,
	}
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}

func preloadListEntries(db *gorm.DB) *gorm.DB {
	return db.Order("position").Preload("Game.Categories")
}

// endregion

// region --- Public Handlers ---

// GetGameLists godoc
// @Summary      List curated game lists
// @Description  Retrieves all curated lists with their games in list order.
// @Tags         lists
// @Produce      json
// @Success      200  {array}  GameListResponse
// @Router       /lists [get]
func GetGameLists(c *gin.Context) {
	var lists []models.GameList
	database.DB.Preload("Entries", preloadListEntries).Order("name").Find(&lists)

	response := make([]GameListResponse, 0, len(lists))
	for _, list := range lists {
		response = append(response, newGameListResponse(list))
	}
	c.JSON(http.StatusOK, response)
}

// GetGameListBySlug godoc
// @Summary      Get a curated list
// @Description  Retrieves one curated list by slug, games in list order.
// @Tags         lists
// @Produce      json
// @Param        slug path string true "List slug"
// @Success      200  {object}  GameListResponse
// @Failure      404  {object}  ErrorResponse "List not found"
// @Router       /lists/{slug} [get]
func GetGameListBySlug(c *gin.Context) {
	var list models.GameList
	err := database.DB.Preload("Entries", preloadListEntries).
		Where("slug = ?", c.Param("slug")).First(&list).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	c.JSON(http.StatusOK, newGameListResponse(list))
}

// endregion

// region --- Admin Handlers ---

// CreateGameList godoc
// @Summary      Create a curated list
// @Description  Creates an empty curated list; the slug is derived from the name.
// @Tags         admin-lists
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        input body GameListInput true "List Info"
// @Success      201  {object}  GameListResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "A list with this name already exists"
// @Router       /admin/lists [post]
func CreateGameList(c *gin.Context) {
	var input GameListInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list := models.GameList{
		Name:        input.Name,
		Slug:        slugify(input.Name),
		Description: input.Description,
	}
	if list.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "List name must contain letters or digits"})
		return
	}
	if err := database.DB.Create(&list).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A list with this name already exists"})
		return
	}

	c.JSON(http.StatusCreated, newGameListResponse(list))
}

// UpdateGameList godoc
// @Summary      Update a curated list
// @Description  Updates a list's name and description.
// @Tags         admin-lists
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path int           true "List ID"
// @Param        input body GameListInput true "New List Info"
// @Success      200  {object}  GameListResponse
// @Failure      404  {object}  ErrorResponse "List not found"
// @Router       /admin/lists/{id} [put]
func UpdateGameList(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var list models.GameList
	if err := database.DB.First(&list, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	var input GameListInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list.Name = input.Name
	list.Description = input.Description
	database.DB.Save(&list)

	database.DB.Preload("Entries", preloadListEntries).First(&list, id)
	c.JSON(http.StatusOK, newGameListResponse(list))
}

// DeleteGameList godoc
// @Summary      Delete a curated list
// @Description  Deletes a list and its entries.
// @Tags         admin-lists
// @Produce      json
// @Security     CookieAuth
// @Param        id path int true "List ID"
// @Success      200 {object} map[string]string "{"message": "List deleted"}"
// @Failure      404 {object} ErrorResponse "List not found"
// @Router       /admin/lists/{id} [delete]
func DeleteGameList(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("game_list_id = ?", id).Delete(&models.GameListEntry{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.GameList{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "List deleted"})
}

// AddGameToList godoc
// @Summary      Add a game to a list
// @Description  Appends a game to a curated list, optionally at a position. Re-adding a game moves it to the given position.
// @Tags         admin-lists
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path int                true "List ID"
// @Param        input body GameListEntryInput true "Entry"
// @Success      200  {object}  GameListResponse
// @Failure      404  {object}  ErrorResponse "List or game not found"
// @Router       /admin/lists/{id}/games [post]
func AddGameToList(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var list models.GameList
	if err := database.DB.First(&list, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	var input GameListEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var game models.Game
	if err := database.DB.First(&game, input.GameID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	position := input.Position
	if position <= 0 {
		var maxPosition int
		database.DB.Model(&models.GameListEntry{}).
			Where("game_list_id = ?", list.ID).
			Select("COALESCE(MAX(position), 0)").Scan(&maxPosition)
		position = maxPosition + 1
	}

	entry := models.GameListEntry{
		GameListID: list.ID,
		GameID:     game.ID,
		Position:   position,
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_list_id"}, {Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"position", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add game to list"})
		return
	}

	database.DB.Preload("Entries", preloadListEntries).First(&list, id)
	c.JSON(http.StatusOK, newGameListResponse(list))
}

// RemoveGameFromList godoc
// @Summary      Remove a game from a list
// @Description  Removes a game from a curated list.
// @Tags         admin-lists
// @Produce      json
// @Security     CookieAuth
// @Param        id     path int true "List ID"
// @Param        gameID path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game removed from list"}"
// @Failure      404 {object} ErrorResponse "Entry not found"
// @Router       /admin/lists/{id}/games/{gameID} [delete]
func RemoveGameFromList(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	gameID, _ := strconv.Atoi(c.Param("gameID"))

	// Hard delete: a soft-deleted row would still occupy the (list, game)
	// unique index and block re-adding the game later.
	result := database.DB.Unscoped().
		Where("game_list_id = ? AND game_id = ?", id, gameID).
		Delete(&models.GameListEntry{})
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game is not in this list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game removed from list"})
}

// endregion
