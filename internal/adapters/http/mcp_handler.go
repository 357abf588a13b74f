package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lifelog/core/internal/application/services"
	"github.com/lifelog/core/internal/infrastructure/logger"
	"github.com/lifelog/core/internal/ports"
)

// MCPHandler exposes the AI-assistant tool surface. Every route is
// authenticated by API key; the resolved user lands in the request context
// the same way JWT auth does.
type MCPHandler struct {
	mcpService *services.MCPService
	logger     *logger.Logger
}

// NewMCPHandler creates a new MCP handler
func NewMCPHandler(mcpService *services.MCPService, logger *logger.Logger) *MCPHandler {
	return &MCPHandler{
		mcpService: mcpService,
		logger:     logger,
	}
}

// ListEntries returns entry summaries for a date range
// @Summary List entry summaries
// @Tags mcp
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ports.EntryList
// @Security ApiKeyAuth
// @Router /api/v1/entries [get]
func (h *MCPHandler) ListEntries(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	list, err := h.mcpService.ListEntries(c.Request().Context(), userID, entryFilterFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, list)
}

// GetEntry returns one entry with category names resolved
// @Summary Get entry detail
// @Tags mcp
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} ports.EntryDetail
// @Security ApiKeyAuth
// @Router /api/v1/entries/{date} [get]
func (h *MCPHandler) GetEntry(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	detail, err := h.mcpService.GetEntryDetail(c.Request().Context(), userID, c.Param("date"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, detail)
}

// Search scans todos and notes for a substring
// @Summary Search entries
// @Tags mcp
// @Produce json
// @Param q query string true "Search text"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} ports.SearchResponse
// @Security ApiKeyAuth
// @Router /api/v1/search [get]
func (h *MCPHandler) Search(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	response, err := h.mcpService.Search(c.Request().Context(), userID, c.QueryParam("q"), entryFilterFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response)
}

// Stats aggregates a date range
// @Summary Get statistics
// @Tags mcp
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} ports.Stats
// @Security ApiKeyAuth
// @Router /api/v1/stats [get]
func (h *MCPHandler) Stats(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	stats, err := h.mcpService.Stats(c.Request().Context(), userID, entryFilterFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}

// Categories returns categories with note counts
// @Summary List categories with note counts
// @Tags mcp
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {array} ports.CategoryCount
// @Security ApiKeyAuth
// @Router /api/v1/categories [get]
func (h *MCPHandler) Categories(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	categories, err := h.mcpService.Categories(c.Request().Context(), userID, entryFilterFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, categories)
}

// AddTodo appends a todo to a date's entry
// @Summary Add a todo
// @Tags mcp
// @Accept json
// @Produce json
// @Param request body ports.AddTodoInput true "Todo"
// @Success 201 {object} entities.Todo
// @Security ApiKeyAuth
// @Router /api/v1/todos [post]
func (h *MCPHandler) AddTodo(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var input ports.AddTodoInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	todo, err := h.mcpService.AddTodo(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, todo)
}

// AddNote appends a note to a date's entry
// @Summary Add a note
// @Tags mcp
// @Accept json
// @Produce json
// @Param request body ports.AddNoteInput true "Note"
// @Success 201 {object} entities.Note
// @Security ApiKeyAuth
// @Router /api/v1/notes [post]
func (h *MCPHandler) AddNote(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var input ports.AddNoteInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	note, err := h.mcpService.AddNote(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, note)
}

// IncompleteTodos returns pending todos across a range
// @Summary List incomplete todos
// @Tags mcp
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {array} ports.IncompleteTodo
// @Security ApiKeyAuth
// @Router /api/v1/todos/incomplete [get]
func (h *MCPHandler) IncompleteTodos(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	todos, err := h.mcpService.IncompleteTodos(c.Request().Context(), userID, entryFilterFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, todos)
}

// NotesByCategory returns notes filed under a named category
// @Summary List notes by category
// @Tags mcp
// @Produce json
// @Param category query string false "Category name (empty for uncategorized)"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {array} ports.CategoryNote
// @Security ApiKeyAuth
// @Router /api/v1/notes [get]
func (h *MCPHandler) NotesByCategory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	notes, err := h.mcpService.NotesByCategory(c.Request().Context(), userID, c.QueryParam("category"), entryFilterFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notes)
}
