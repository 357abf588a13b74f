package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lifelog/core/internal/application/services"
	"github.com/lifelog/core/internal/infrastructure/logger"
	"github.com/lifelog/core/internal/ports"
)

// CategoryHandler handles note category requests
type CategoryHandler struct {
	categoryService *services.CategoryService
	logger          *logger.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *services.CategoryService, logger *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// ListCategories returns the user's categories
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {array} entities.Category
// @Security BearerAuth
// @Router /api/categories [get]
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	categories, err := h.categoryService.ListCategories(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, categories)
}

// CreateCategory appends a category
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body ports.CategoryInput true "Category"
// @Success 201 {object} entities.Category
// @Security BearerAuth
// @Router /api/categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var input ports.CategoryInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory renames or recolors a category
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body ports.CategoryInput true "Category"
// @Success 200 {object} entities.Category
// @Security BearerAuth
// @Router /api/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	var input ports.CategoryInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), userID, id, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category; notes keep their content
// @Summary Delete a category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} MessageResponse
// @Security BearerAuth
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), userID, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Category deleted"})
}
