package handler

import (
	"net/http"
	"strconv"
	"strings"

	"shelfpick/backend/internal/database"
	"shelfpick/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type GameInput struct {
	BGGID           string  `json:"bgg_id" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Image           string  `json:"image"`
	Thumbnail       string  `json:"thumbnail"`
	YearPublished   int     `json:"year_published"`
	MinPlayers      int     `json:"min_players"`
	MaxPlayers      int     `json:"max_players"`
	PlayTimeMinutes int     `json:"play_time_minutes"`
	Rating          float64 `json:"rating"`
	Weight          float64 `json:"weight"`
	KidFriendly     bool    `json:"kid_friendly"`
	IsExpansion     bool    `json:"is_expansion"`
	Owned           bool    `json:"owned"`
	CategoryIDs     []uint  `json:"category_ids"`
}

type GameResponse struct {
	ID              uint               `json:"id"`
	BGGID           string             `json:"bgg_id"`
	Name            string             `json:"name"`
	Description     string             `json:"description,omitempty"`
	Image           string             `json:"image,omitempty"`
	Thumbnail       string             `json:"thumbnail,omitempty"`
	YearPublished   int                `json:"year_published,omitempty"`
	MinPlayers      int                `json:"min_players"`
	MaxPlayers      int                `json:"max_players"`
	PlayTimeMinutes int                `json:"play_time_minutes"`
	Rating          float64            `json:"rating"`
	Weight          float64            `json:"weight"`
	KidFriendly     bool               `json:"kid_friendly"`
	IsExpansion     bool               `json:"is_expansion"`
	Owned           bool               `json:"owned"`
	Categories      []CategoryResponse `json:"categories"`
}

func newGameResponse(game models.Game) GameResponse {
	var categoryResponses []CategoryResponse
	for _, category := range game.Categories {
		if category != nil {
			categoryResponses = append(categoryResponses, newCategoryResponse(*category))
		}
	}

	return GameResponse{
		ID:              game.ID,
		BGGID:           game.BGGID,
		Name:            game.Name,
		Description:     game.Description,
		Image:           game.Image,
		Thumbnail:       game.Thumbnail,
		YearPublished:   game.YearPublished,
		MinPlayers:      game.MinPlayers,
		MaxPlayers:      game.MaxPlayers,
		PlayTimeMinutes: game.PlayTimeMinutes,
		Rating:          game.Rating,
		Weight:          game.Weight,
		KidFriendly:     game.KidFriendly,
		IsExpansion:     game.IsExpansion,
		Owned:           game.Owned,
		Categories:      categoryResponses,
	}
}

// PaginatedGameResponse defines the structure for a paginated list of games.
type PaginatedGameResponse struct {
	Data []GameResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// endregion

// region --- Public Handlers ---

// GetGames godoc
// @Summary      List games
// @Description  Gets a paginated list of games, filterable by player count, playtime, kid-friendliness, category, and name.
// @Tags         games
// @Produce      json
// @Param        players      query int    false "Number of players the game must support"
// @Param        max_playtime query int    false "Maximum playtime in minutes"
// @Param        kid_friendly query bool   false "Only kid-friendly games"
// @Param        category     query string false "Category name"
// @Param        expansions   query bool   false "Include expansions (default false)"
// @Param        search       query string false "Name substring"
// @Param        page         query int    false "Page number" default(1)
// @Param        limit        query int    false "Items per page" default(20)
// @Success      200 {object} PaginatedGameResponse
// @Router       /games [get]
func GetGames(c *gin.Context) {
	page, limit := pageParams(c)

	query := database.DB.Model(&models.Game{}).Preload("Categories")

	// Anonymous visitors only see the owned collection; logged-in users
	// see everything the importer has brought in.
	if _, loggedIn := c.Get("userID"); !loggedIn {
		query = query.Where("owned = ?", true)
	}

	if players := c.Query("players"); players != "" {
		if n, err := strconv.Atoi(players); err == nil && n > 0 {
			query = query.Where("min_players <= ? AND max_players >= ?", n, n)
		}
	}
	if maxPlaytime := c.Query("max_playtime"); maxPlaytime != "" {
		if n, err := strconv.Atoi(maxPlaytime); err == nil && n > 0 {
			query = query.Where("play_time_minutes > 0 AND play_time_minutes <= ?", n)
		}
	}
	if c.Query("kid_friendly") == "true" {
		query = query.Where("kid_friendly = ?", true)
	}
	if c.Query("expansions") != "true" {
		query = query.Where("is_expansion = ?", false)
	}
	if category := c.Query("category"); category != "" {
		query = query.
			Joins("JOIN game_categories ON game_categories.game_id = games.id").
			Joins("JOIN categories ON categories.id = game_categories.category_id").
			Where("categories.name = ?", category)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(games.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count games"})
		return
	}

	var games []models.Game
	offset := (page - 1) * limit
	if err := query.Order("games.name").Offset(offset).Limit(limit).Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list games"})
		return
	}

	response := make([]GameResponse, 0, len(games))
	for _, game := range games {
		response = append(response, newGameResponse(game))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}

// GetGameByID godoc
// @Summary      Get a single game by ID
// @Description  Retrieves details for a single game, including its categories.
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} GameResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func GetGameByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var game models.Game
	if err := database.DB.Preload("Categories").First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, newGameResponse(game))
}

// endregion

// region --- Admin Handlers ---

// CreateGame godoc
// @Summary      Create a new game
// @Description  Creates a game and associates it with the given categories.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  GameResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/games [post]
func CreateGame(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var categories []*models.Category
	if len(input.CategoryIDs) > 0 {
		database.DB.Find(&categories, input.CategoryIDs)
	}

	game := models.Game{
		BGGID:           input.BGGID,
		Name:            input.Name,
		Description:     input.Description,
		Image:           input.Image,
		Thumbnail:       input.Thumbnail,
		YearPublished:   input.YearPublished,
		MinPlayers:      input.MinPlayers,
		MaxPlayers:      input.MaxPlayers,
		PlayTimeMinutes: input.PlayTimeMinutes,
		Rating:          input.Rating,
		Weight:          input.Weight,
		KidFriendly:     input.KidFriendly,
		IsExpansion:     input.IsExpansion,
		Owned:           input.Owned,
		Categories:      categories,
	}

	if err := database.DB.Create(&game).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Game with this BGG id already exists"})
		return
	}

	c.JSON(http.StatusCreated, newGameResponse(game))
}

// UpdateGame godoc
// @Summary      Update a game
// @Description  Updates a game's details and replaces its categories.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int       true  "Game ID"
// @Param        input body      GameInput true  "New Game Info"
// @Success      200   {object}  GameResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse "Game not found"
// @Router       /admin/games/{id} [put]
func UpdateGame(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var game models.Game
	if err := database.DB.First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var categories []*models.Category
	if len(input.CategoryIDs) > 0 {
		database.DB.Find(&categories, input.CategoryIDs)
	}

	game.BGGID = input.BGGID
	game.Name = input.Name
	game.Description = input.Description
	game.Image = input.Image
	game.Thumbnail = input.Thumbnail
	game.YearPublished = input.YearPublished
	game.MinPlayers = input.MinPlayers
	game.MaxPlayers = input.MaxPlayers
	game.PlayTimeMinutes = input.PlayTimeMinutes
	game.Rating = input.Rating
	game.Weight = input.Weight
	game.KidFriendly = input.KidFriendly
	game.IsExpansion = input.IsExpansion
	game.Owned = input.Owned

	if err := database.DB.Model(&game).Association("Categories").Replace(categories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update categories for game"})
		return
	}

	database.DB.Save(&game)

	database.DB.Preload("Categories").First(&game, id)

	c.JSON(http.StatusOK, newGameResponse(game))
}

// DeleteGame godoc
// @Summary      Delete a game
// @Description  Deletes an existing game.
// @Tags         admin-games
// @Produce      json
// @Security     CookieAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game deleted"}"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /admin/games/{id} [delete]
func DeleteGame(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Select("Categories").Delete(&models.Game{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
}

// endregion
