package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/export"
	"github.com/jakartamandarin/jm_finance/internal/middleware"
)

// reconciliationHandler handles bank statements and matching.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

// bankLinesParams bounds a bank statement listing. Both dates are inclusive.
type bankLinesParams struct {
	From time.Time `form:"from" time_format:"2006-01-02" time_utc:"1" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" time_utc:"1" binding:"required"`
}

// RegisterReconciliationRoutes registers statement import and reconciliation routes.
func RegisterReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := &reconciliationHandler{reconciliationService: reconciliationService}

	statements := rg.Group("/bank-statements")
	{
		statements.POST("", h.importBankLines)
		statements.POST("/:accountID/csv", h.importBankCSV)
		statements.GET("/:accountID", h.listBankLines)
	}

	recon := rg.Group("/reconciliations")
	{
		recon.POST("/match", h.autoMatch)
		recon.POST("", h.reconcile)
		recon.GET("/:id", h.getRun)
	}
}

// autoMatch godoc
// @Summary Match bank lines against system records
// @Description Runs the matcher on the posted data without storing anything. format=csv returns a CSV file.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Produce text/csv
// @Param input body dto.AutoMatchRequest true "Bank lines and system records"
// @Param format query string false "Response format" Enums(json, csv)
// @Success 200 {object} dto.AutoMatchResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Ambiguous match under strict tie-breaking"
// @Router /reconciliations/match [post]
func (h *reconciliationHandler) autoMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AutoMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	results, err := h.reconciliationService.AutoMatch(dto.ToBankLines(req.BankLines), dto.ToSystemRecords(req.SystemRecords))
	if err != nil {
		respondError(c, logger, err, "Failed to match records")
		return
	}

	resp := dto.ToAutoMatchResponse(results)
	logger.Info("Auto-match completed", slog.Int("matched", resp.MatchedCount), slog.Int("unmatched", resp.UnmatchedCount))
	if wantsCSV(c.Query("format")) {
		respondCSV(c, logger, "matches.csv", export.MatchResultsTable(results))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// importBankLines godoc
// @Summary Import bank statement lines
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param statement body dto.ImportBankLinesRequest true "Statement lines for one bank account"
// @Success 201 {array} domain.BankStatementLine
// @Failure 400 {object} map[string]string "Invalid input or not a bank account"
// @Failure 409 {object} map[string]string "Line already imported"
// @Router /bank-statements [post]
func (h *reconciliationHandler) importBankLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ImportBankLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	lines, err := h.reconciliationService.ImportBankLines(c.Request.Context(), req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", req.AccountID)), err, "Failed to import bank lines")
		return
	}
	logger.Info("Bank lines imported", slog.String("account_id", req.AccountID), slog.Int("count", len(lines)))
	c.JSON(http.StatusCreated, lines)
}

// importBankCSV godoc
// @Summary Import a bank statement CSV
// @Description Accepts the CSV as a multipart "file" field or as the raw request body
// @Tags reconciliation
// @Accept text/csv
// @Accept multipart/form-data
// @Produce json
// @Param accountID path string true "Bank account ID"
// @Success 201 {array} domain.BankStatementLine
// @Failure 400 {object} map[string]string "Malformed CSV or not a bank account"
// @Router /bank-statements/{accountID}/csv [post]
func (h *reconciliationHandler) importBankCSV(c *gin.Context) {
	accountID := c.Param("accountID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", accountID))

	var body io.Reader = c.Request.Body
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			badRequest(c, logger, "upload", err)
			return
		}
		defer f.Close()
		body = f
	}

	lines, err := h.reconciliationService.ImportBankCSV(c.Request.Context(), accountID, body, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger, err, "Failed to import bank statement")
		return
	}
	logger.Info("Bank statement imported", slog.Int("count", len(lines)))
	c.JSON(http.StatusCreated, lines)
}

// listBankLines godoc
// @Summary List imported bank lines
// @Tags reconciliation
// @Produce json
// @Param accountID path string true "Bank account ID"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD), inclusive"
// @Success 200 {array} domain.BankStatementLine
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Router /bank-statements/{accountID} [get]
func (h *reconciliationHandler) listBankLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params bankLinesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}

	lines, err := h.reconciliationService.ListBankLines(c.Request.Context(), c.Param("accountID"), params.From, params.To)
	if err != nil {
		respondError(c, logger, err, "Failed to list bank lines")
		return
	}
	c.JSON(http.StatusOK, lines)
}

// reconcile godoc
// @Summary Reconcile a bank account
// @Description Matches the stored statement lines against ledger lines for the period and stores the run
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param run body dto.ReconcileRequest true "Account and period"
// @Success 201 {object} dto.ReconciliationRunResponse
// @Failure 400 {object} map[string]string "Invalid input or not a bank account"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /reconciliations [post]
func (h *reconciliationHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	run, records, err := h.reconciliationService.Reconcile(c.Request.Context(), req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", req.AccountID)), err, "Failed to reconcile account")
		return
	}
	logger.Info("Reconciliation run stored",
		slog.String("run_id", run.RunID),
		slog.Int("matched", run.MatchedCount),
		slog.Int("unmatched", run.UnmatchedCount),
	)
	c.JSON(http.StatusCreated, dto.ReconciliationRunResponse{Run: *run, Records: records})
}

// getRun godoc
// @Summary Get a reconciliation run
// @Tags reconciliation
// @Produce json
// @Produce text/csv
// @Param id path string true "Run ID"
// @Param format query string false "Response format" Enums(json, csv)
// @Success 200 {object} dto.ReconciliationRunResponse
// @Failure 404 {object} map[string]string "Run not found"
// @Router /reconciliations/{id} [get]
func (h *reconciliationHandler) getRun(c *gin.Context) {
	runID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("run_id", runID))

	run, records, err := h.reconciliationService.GetRun(c.Request.Context(), runID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve reconciliation run")
		return
	}
	if wantsCSV(c.Query("format")) {
		respondCSV(c, logger, "reconciliation-"+runID+".csv", export.ReconciliationRecordsTable(records))
		return
	}
	c.JSON(http.StatusOK, dto.ReconciliationRunResponse{Run: *run, Records: records})
}
