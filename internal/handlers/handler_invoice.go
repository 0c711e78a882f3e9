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

// invoiceHandler handles the invoice lifecycle.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
	now            func() time.Time // derives overdue in responses
}

// RegisterInvoiceRoutes registers invoice routes.
func RegisterInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := &invoiceHandler{invoiceService: invoiceService, now: time.Now}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:id", h.getInvoice)
		invoices.POST("/:id/pay", h.markPaid)
		invoices.POST("/:id/cancel", h.cancelInvoice)
	}
}

// createInvoice godoc
// @Summary Create an invoice
// @Description Computes subtotal, PPN and total and issues a pending invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body dto.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger.With(slog.String("student_id", req.StudentID)), err, "Failed to create invoice")
		return
	}
	logger.Info("Invoice created", slog.String("invoice_id", inv.InvoiceID), slog.String("number", inv.InvoiceNumber))
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(inv, h.now()))
}

// listInvoices godoc
// @Summary List invoices
// @Description Filters by student and status; overdue is derived from the due date. format=csv returns a CSV file.
// @Tags invoices
// @Produce json
// @Produce text/csv
// @Param studentID query string false "Student ID"
// @Param status query string false "Status" Enums(pending, paid, overdue, cancelled)
// @Param format query string false "Response format" Enums(json, csv)
// @Success 200 {array} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}

	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list invoices")
		return
	}
	now := h.now()
	if wantsCSV(params.Format) {
		respondCSV(c, logger, "invoices.csv", export.InvoicesTable(invoices, now))
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponses(invoices, now))
}

// getInvoice godoc
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Router /invoices/{id} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	inv, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv, h.now()))
}

// markPaid godoc
// @Summary Mark an invoice paid
// @Description Posts the payment to the ledger and marks the invoice paid
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param payment body dto.PayInvoiceRequest true "Payment reference"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is not pending"
// @Router /invoices/{id}/pay [post]
func (h *invoiceHandler) markPaid(c *gin.Context) {
	invoiceID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", invoiceID))
	var req dto.PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	inv, err := h.invoiceService.MarkPaid(c.Request.Context(), invoiceID, req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger, err, "Failed to mark invoice paid")
		return
	}
	logger.Info("Invoice paid", slog.String("journal_id", inv.JournalID))
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv, h.now()))
}

// cancelInvoice godoc
// @Summary Cancel an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param cancellation body dto.CancelInvoiceRequest true "Reason"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is not pending"
// @Router /invoices/{id}/cancel [post]
func (h *invoiceHandler) cancelInvoice(c *gin.Context) {
	invoiceID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", invoiceID))
	var req dto.CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	inv, err := h.invoiceService.CancelInvoice(c.Request.Context(), invoiceID, req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger, err, "Failed to cancel invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv, h.now()))
}
