package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/export"
	"github.com/jakartamandarin/jm_finance/internal/middleware"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// RegisterReportingRoutes registers routes related to financial reports
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/profit-and-loss", h.getProfitAndLoss)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
		reportingGroup.GET("/tax", h.getTaxReport)
	}
}

// reportDate is the date printed on a point-in-time report.
func reportDate(asOf *time.Time) time.Time {
	if asOf != nil {
		return *asOf
	}
	return time.Now().UTC()
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Generates a trial balance as of a date, or from current balances when asOf is omitted
// @Tags reports
// @Produce json
// @Produce text/csv
// @Param asOf query string false "Report date (YYYY-MM-DD)"
// @Param format query string false "Response format" Enums(json, csv)
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}

	rows, err := h.reportingService.TrialBalance(c.Request.Context(), params.AsOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance")
		return
	}

	logger.Info("Trial balance generated", slog.Int("rows", len(rows)))
	if wantsCSV(params.Format) {
		respondCSV(c, logger, "trial-balance.csv", export.TrialBalanceTable(rows))
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(rows, reportDate(params.AsOf)))
}

// getProfitAndLoss godoc
// @Summary Generate profit and loss report
// @Description Generates a profit and loss report for a period; both dates are inclusive
// @Tags reports
// @Produce json
// @Produce text/csv
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Param format query string false "Response format" Enums(json, csv)
// @Success 200 {object} dto.ProfitAndLossResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}
	if params.From == nil || params.To == nil {
		logger.Warn("Missing date range for profit and loss")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both from and to dates are required. Use YYYY-MM-DD"})
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), *params.From, *params.To)
	if err != nil {
		respondError(c, logger, err, "Failed to generate profit and loss report")
		return
	}

	if wantsCSV(params.Format) {
		respondCSV(c, logger, "profit-and-loss.csv", export.ProfitAndLossTable(report))
		return
	}
	c.JSON(http.StatusOK, dto.ToProfitAndLossResponse(report))
}

// getBalanceSheet godoc
// @Summary Generate balance sheet report
// @Description Generates a balance sheet as of a date; current earnings are shown within equity
// @Tags reports
// @Produce json
// @Produce text/csv
// @Param asOf query string false "Report date (YYYY-MM-DD)"
// @Param format query string false "Response format" Enums(json, csv)
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), params.AsOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet")
		return
	}
	if !report.IsBalanced() {
		logger.Error("Balance sheet does not balance",
			slog.String("assets", report.TotalAssets.String()),
			slog.String("liabilities", report.TotalLiabilities.String()),
			slog.String("equity", report.TotalEquity.String()),
		)
	}

	if wantsCSV(params.Format) {
		respondCSV(c, logger, "balance-sheet.csv", export.BalanceSheetTable(report))
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(report, reportDate(params.AsOf)))
}

// getTaxReport godoc
// @Summary Generate tax report
// @Description Sums the balances of tax accounts (PPN, pajak) as of a date
// @Tags reports
// @Produce json
// @Produce text/csv
// @Param asOf query string false "Report date (YYYY-MM-DD)"
// @Param format query string false "Response format" Enums(json, csv)
// @Success 200 {object} dto.TaxReportResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/tax [get]
func (h *reportingHandler) getTaxReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}

	report, err := h.reportingService.TaxReport(c.Request.Context(), params.AsOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate tax report")
		return
	}
	if wantsCSV(params.Format) {
		respondCSV(c, logger, "tax.csv", export.TaxReportTable(report))
		return
	}
	c.JSON(http.StatusOK, dto.ToTaxReportResponse(report, reportDate(params.AsOf)))
}
