package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/middleware"
)

// journalHandler handles HTTP requests related to journals.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: journalService,
	}
}

// RegisterJournalRoutes registers routes related to journals.
func RegisterJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.postEntry)
		journals.GET("", h.listJournals)
		journals.GET("/:id", h.getJournal)
		journals.POST("/:id/reverse", h.reverseJournal)
	}
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Validates that the entry balances and applies it to account balances atomically. includePPN appends the PPN lines.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.PostEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Unbalanced, empty or invalid entry"
// @Failure 500 {object} map[string]string "Failed to post journal"
// @Router /journals [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	creatorUserID := middleware.ActorFromContext(c)
	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to post journal", slog.Int("lines", len(req.Lines)), slog.Bool("include_ppn", req.IncludePPN))

	journal, err := h.journalService.PostEntry(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondError(c, logger, err, "Failed to post journal")
		return
	}

	logger.Info("Journal posted successfully", slog.String("journal_id", journal.JournalID))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
}

// getJournal godoc
// @Summary Get a journal entry by ID
// @Description Retrieves a journal with its lines
// @Tags journals
// @Produce  json
// @Param   id path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 500 {object} map[string]string "Failed to retrieve journal"
// @Router /journals/{id} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	journalID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("journal_id", journalID))

	journal, err := h.journalService.GetJournalByID(c.Request.Context(), journalID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// listJournals godoc
// @Summary List journal entries
// @Description Lists journals newest first with token-based pagination
// @Tags journals
// @Produce  json
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD), inclusive"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list journals"
// @Router /journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}

	resp, err := h.journalService.ListJournals(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list journals")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// reverseJournal godoc
// @Summary Reverse a journal entry
// @Description Posts a mirrored journal and marks the original as reversed
// @Tags journals
// @Produce  json
// @Param   id path string true "Journal ID to reverse"
// @Success 201 {object} dto.JournalResponse
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal already reversed"
// @Failure 500 {object} map[string]string "Failed to reverse journal"
// @Router /journals/{id}/reverse [post]
func (h *journalHandler) reverseJournal(c *gin.Context) {
	journalID := c.Param("id")
	userID := middleware.ActorFromContext(c)
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("journal_id", journalID),
		slog.String("user_id", userID),
	)
	logger.Info("Received request to reverse journal")

	reversal, err := h.journalService.ReverseJournal(c.Request.Context(), journalID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse journal")
		return
	}

	logger.Info("Journal reversed successfully", slog.String("reversing_journal_id", reversal.JournalID))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(reversal))
}
