package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lifelog/core/internal/application/services"
	"github.com/lifelog/core/internal/infrastructure/logger"
	"github.com/lifelog/core/internal/ports"
)

// MemoHandler handles standalone memo requests
type MemoHandler struct {
	memoService *services.MemoService
	logger      *logger.Logger
}

// NewMemoHandler creates a new memo handler
func NewMemoHandler(memoService *services.MemoService, logger *logger.Logger) *MemoHandler {
	return &MemoHandler{
		memoService: memoService,
		logger:      logger,
	}
}

// ListMemos returns memos, optionally filtered by category
// @Summary List memos
// @Tags memos
// @Produce json
// @Param categoryId query string false "Memo category ID"
// @Success 200 {array} entities.Memo
// @Security BearerAuth
// @Router /api/memos [get]
func (h *MemoHandler) ListMemos(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var categoryID *uuid.UUID
	if raw := c.QueryParam("categoryId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
		}
		categoryID = &parsed
	}

	memos, err := h.memoService.ListMemos(c.Request().Context(), userID, categoryID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, memos)
}

// GetMemo returns one memo
// @Summary Get a memo
// @Tags memos
// @Produce json
// @Param id path string true "Memo ID"
// @Success 200 {object} entities.Memo
// @Security BearerAuth
// @Router /api/memos/{id} [get]
func (h *MemoHandler) GetMemo(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid memo ID")
	}

	memo, err := h.memoService.GetMemo(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, memo)
}

// CreateMemo stores a new memo
// @Summary Create a memo
// @Tags memos
// @Accept json
// @Produce json
// @Param request body ports.MemoInput true "Memo"
// @Success 201 {object} entities.Memo
// @Security BearerAuth
// @Router /api/memos [post]
func (h *MemoHandler) CreateMemo(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var input ports.MemoInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	memo, err := h.memoService.CreateMemo(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, memo)
}

// UpdateMemo rewrites a memo
// @Summary Update a memo
// @Tags memos
// @Accept json
// @Produce json
// @Param id path string true "Memo ID"
// @Param request body ports.MemoInput true "Memo"
// @Success 200 {object} entities.Memo
// @Security BearerAuth
// @Router /api/memos/{id} [put]
func (h *MemoHandler) UpdateMemo(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid memo ID")
	}

	var input ports.MemoInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	memo, err := h.memoService.UpdateMemo(c.Request().Context(), userID, id, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, memo)
}

// DeleteMemo removes a memo
// @Summary Delete a memo
// @Tags memos
// @Produce json
// @Param id path string true "Memo ID"
// @Success 200 {object} MessageResponse
// @Security BearerAuth
// @Router /api/memos/{id} [delete]
func (h *MemoHandler) DeleteMemo(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid memo ID")
	}

	if err := h.memoService.DeleteMemo(c.Request().Context(), userID, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Memo deleted"})
}

// ListMemoCategories returns memo categories
// @Summary List memo categories
// @Tags memos
// @Produce json
// @Success 200 {array} entities.MemoCategory
// @Security BearerAuth
// @Router /api/memos/categories [get]
func (h *MemoHandler) ListMemoCategories(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	categories, err := h.memoService.ListMemoCategories(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, categories)
}

// CreateMemoCategory appends a memo category
// @Summary Create a memo category
// @Tags memos
// @Accept json
// @Produce json
// @Param request body ports.CategoryInput true "Category"
// @Success 201 {object} entities.MemoCategory
// @Security BearerAuth
// @Router /api/memos/categories [post]
func (h *MemoHandler) CreateMemoCategory(c echo.Context) error {
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

	category, err := h.memoService.CreateMemoCategory(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, category)
}

// DeleteMemoCategory removes a memo category
// @Summary Delete a memo category
// @Tags memos
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} MessageResponse
// @Security BearerAuth
// @Router /api/memos/categories/{id} [delete]
func (h *MemoHandler) DeleteMemoCategory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	if err := h.memoService.DeleteMemoCategory(c.Request().Context(), userID, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Memo category deleted"})
}
