package handler

import (
	"net/http"
	"strconv"
	"time"

	"shelfpick/backend/internal/database"
	"shelfpick/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type CategoryInput struct {
	Name string `json:"name" binding:"required"`
}

type CategoryResponse struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name"`
}

func newCategoryResponse(category models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
		Name:      category.Name,
	}
}

// GetCategories godoc
// @Summary      Get all categories
// @Description  Retrieves a list of all game categories.
// @Tags         categories
// @Produce      json
// @Success      200  {array}   CategoryResponse
// @Router       /categories [get]
func GetCategories(c *gin.Context) {
	var categories []models.Category
	database.DB.Order("name").Find(&categories)

	var response []CategoryResponse
	for _, category := range categories {
		response = append(response, newCategoryResponse(category))
	}
	c.JSON(http.StatusOK, response)
}

// CreateCategory godoc
// @Summary      Create a new category
// @Description  Creates a new game category.
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        input body CategoryInput true "Category Info"
// @Success      201  {object}  CategoryResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Category already exists"
// @Router       /admin/categories [post]
func CreateCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Category{Name: input.Name}
	if err := database.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists or another error occurred"})
		return
	}

	c.JSON(http.StatusCreated, newCategoryResponse(category))
}

// UpdateCategory godoc
// @Summary      Update a category
// @Description  Updates the name of an existing category.
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path int           true "Category ID"
// @Param        input body CategoryInput true "New Category Info"
// @Success      200  {object}  CategoryResponse
// @Failure      404  {object}  ErrorResponse "Category not found"
// @Router       /admin/categories/{id} [put]
func UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	database.DB.Model(&category).Update("name", input.Name)
	c.JSON(http.StatusOK, newCategoryResponse(category))
}

// DeleteCategory godoc
// @Summary      Delete a category
// @Description  Deletes an existing category.
// @Tags         admin-categories
// @Produce      json
// @Security     CookieAuth
// @Param        id path int true "Category ID"
// @Success      200 {object} map[string]string "{"message": "Category deleted"}"
// @Failure      404 {object} ErrorResponse "Category not found"
// @Router       /admin/categories/{id} [delete]
func DeleteCategory(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Delete(&models.Category{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
