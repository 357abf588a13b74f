package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lifelog/core/internal/application/services"
	"github.com/lifelog/core/internal/infrastructure/logger"
	"github.com/lifelog/core/internal/ports"
)

// EntryHandler handles journal entry requests
type EntryHandler struct {
	entryService *services.EntryService
	logger       *logger.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(entryService *services.EntryService, logger *logger.Logger) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		logger:       logger,
	}
}

// ListEntries returns a page of entries
// @Summary List entries
// @Tags entries
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} entities.Entry
// @Security BearerAuth
// @Router /api/entries [get]
func (h *EntryHandler) ListEntries(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	filter := entryFilterFromQuery(c)
	entries, total, err := h.entryService.ListEntries(c.Request().Context(), userID, filter)
	if err != nil {
		return err
	}

	c.Response().Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	return c.JSON(http.StatusOK, entries)
}

// GetEntry returns one date's entry with children
// @Summary Get an entry by date
// @Tags entries
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} entities.Entry
// @Security BearerAuth
// @Router /api/entries/{date} [get]
func (h *EntryHandler) GetEntry(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	entry, err := h.entryService.GetEntry(c.Request().Context(), userID, c.Param("date"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entry)
}

// UpsertEntry writes the full desired state of one date
// @Summary Create or update an entry
// @Tags entries
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param request body ports.EntryInput true "Entry state"
// @Success 200 {object} entities.Entry
// @Security BearerAuth
// @Router /api/entries/{date} [put]
func (h *EntryHandler) UpsertEntry(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var input ports.EntryInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	// The path is authoritative for the date.
	input.Date = c.Param("date")

	if err := c.Validate(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.entryService.Upsert(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entry)
}

// DeleteEntry removes one date's entry
// @Summary Delete an entry
// @Tags entries
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} MessageResponse
// @Security BearerAuth
// @Router /api/entries/{date} [delete]
func (h *EntryHandler) DeleteEntry(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	if err := h.entryService.DeleteEntry(c.Request().Context(), userID, c.Param("date")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Entry deleted"})
}

// Migrate imports trial-mode data in one shot
// @Summary Migrate local data to the server
// @Tags entries
// @Accept json
// @Produce json
// @Param request body ports.MigrateInput true "Local entries and categories"
// @Success 200 {object} ports.MigrateResult
// @Security BearerAuth
// @Router /api/entries/migrate [post]
func (h *EntryHandler) Migrate(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var input ports.MigrateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.entryService.Migrate(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func entryFilterFromQuery(c echo.Context) ports.EntryFilter {
	filter := ports.EntryFilter{
		From: c.QueryParam("from"),
		To:   c.QueryParam("to"),
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.QueryParam("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	return filter
}
