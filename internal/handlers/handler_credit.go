package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/middleware"
)

// creditHandler handles credit packages and student hour balances.
type creditHandler struct {
	creditService portssvc.CreditSvcFacade
}

// RegisterCreditRoutes registers the package catalogue and the per-student credit ledger.
func RegisterCreditRoutes(rg *gin.RouterGroup, creditService portssvc.CreditSvcFacade) {
	h := &creditHandler{creditService: creditService}

	packages := rg.Group("/credit-packages")
	{
		packages.POST("", h.createPackage)
		packages.GET("", h.listPackages)
		packages.GET("/:id", h.getPackage)
		packages.PUT("/:id", h.updatePackage)
	}

	credit := rg.Group("/students/:studentID/credit")
	{
		credit.POST("", h.openAccount)
		credit.GET("", h.getStudentCredit)
		credit.GET("/balance", h.getBalance)
		credit.POST("/purchase", h.purchase)
		credit.POST("/deduct", h.deduct)
		credit.POST("/adjust", h.adjust)
	}
}

func toTransactionResponse(txn *domain.CreditTransaction) dto.CreditTransactionResponse {
	return dto.ToCreditTransactionResponses([]domain.CreditTransaction{*txn})[0]
}

// createPackage godoc
// @Summary Create a credit package
// @Tags credit
// @Accept json
// @Produce json
// @Param package body dto.CreatePackageRequest true "Package"
// @Success 201 {object} dto.CreditPackageResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to create package"
// @Router /credit-packages [post]
func (h *creditHandler) createPackage(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	pkg, err := h.creditService.CreatePackage(c.Request.Context(), req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger, err, "Failed to create package")
		return
	}
	logger.Info("Credit package created", slog.String("package_id", pkg.PackageID), slog.String("type", string(pkg.PackageType)))
	c.JSON(http.StatusCreated, dto.ToCreditPackageResponse(pkg))
}

// listPackages godoc
// @Summary List credit packages
// @Tags credit
// @Produce json
// @Param active query bool false "Only active packages"
// @Success 200 {array} dto.CreditPackageResponse
// @Failure 500 {object} map[string]string "Failed to list packages"
// @Router /credit-packages [get]
func (h *creditHandler) listPackages(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	pkgs, err := h.creditService.ListPackages(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, logger, err, "Failed to list packages")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditPackageResponses(pkgs))
}

// getPackage godoc
// @Summary Get a credit package
// @Tags credit
// @Produce json
// @Param id path string true "Package ID"
// @Success 200 {object} dto.CreditPackageResponse
// @Failure 404 {object} map[string]string "Package not found"
// @Router /credit-packages/{id} [get]
func (h *creditHandler) getPackage(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	pkg, err := h.creditService.GetPackage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve package")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditPackageResponse(pkg))
}

// updatePackage godoc
// @Summary Update a credit package
// @Tags credit
// @Accept json
// @Produce json
// @Param id path string true "Package ID"
// @Param package body dto.UpdatePackageRequest true "Fields to update"
// @Success 200 {object} dto.CreditPackageResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Package not found"
// @Router /credit-packages/{id} [put]
func (h *creditHandler) updatePackage(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	pkg, err := h.creditService.UpdatePackage(c.Request.Context(), c.Param("id"), req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger, err, "Failed to update package")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditPackageResponse(pkg))
}

// openAccount godoc
// @Summary Open a student's credit account
// @Description Records the initial grant of hours
// @Tags credit
// @Accept json
// @Produce json
// @Param studentID path string true "Student ID"
// @Param credit body dto.OpenCreditRequest true "Initial hours"
// @Success 201 {object} dto.StudentCreditResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Account already open"
// @Router /students/{studentID}/credit [post]
func (h *creditHandler) openAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	studentID := c.Param("studentID")
	var req dto.OpenCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	credit, err := h.creditService.OpenAccount(c.Request.Context(), studentID, req.InitialHours, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger.With(slog.String("student_id", studentID)), err, "Failed to open credit account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToStudentCreditResponse(credit))
}

// getStudentCredit godoc
// @Summary Get a student's credit with history
// @Tags credit
// @Produce json
// @Param studentID path string true "Student ID"
// @Success 200 {object} dto.StudentCreditResponse
// @Failure 404 {object} map[string]string "No credit account"
// @Router /students/{studentID}/credit [get]
func (h *creditHandler) getStudentCredit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	credit, err := h.creditService.GetStudentCredit(c.Request.Context(), c.Param("studentID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve credit")
		return
	}
	c.JSON(http.StatusOK, dto.ToStudentCreditResponse(credit))
}

// getBalance godoc
// @Summary Get a student's remaining hours
// @Description Zero for a student without a credit account
// @Tags credit
// @Produce json
// @Param studentID path string true "Student ID"
// @Success 200 {object} map[string]interface{}
// @Router /students/{studentID}/credit/balance [get]
func (h *creditHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	studentID := c.Param("studentID")
	hours, err := h.creditService.GetBalance(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve balance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"studentID": studentID, "remainingHours": hours})
}

// purchase godoc
// @Summary Purchase a credit package
// @Tags credit
// @Accept json
// @Produce json
// @Param studentID path string true "Student ID"
// @Param purchase body dto.PurchaseRequest true "Package and amount paid"
// @Success 201 {object} dto.CreditTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or inactive package"
// @Failure 404 {object} map[string]string "Package not found"
// @Router /students/{studentID}/credit/purchase [post]
func (h *creditHandler) purchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	studentID := c.Param("studentID")
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	txn, err := h.creditService.Purchase(c.Request.Context(), studentID, req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger.With(slog.String("student_id", studentID)), err, "Failed to purchase credit")
		return
	}
	c.JSON(http.StatusCreated, toTransactionResponse(txn))
}

// deduct godoc
// @Summary Deduct hours for a class
// @Tags credit
// @Accept json
// @Produce json
// @Param studentID path string true "Student ID"
// @Param deduction body dto.DeductRequest true "Hours and class"
// @Success 201 {object} dto.CreditTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 422 {object} map[string]string "Insufficient credit"
// @Router /students/{studentID}/credit/deduct [post]
func (h *creditHandler) deduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	studentID := c.Param("studentID")
	var req dto.DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	txn, err := h.creditService.Deduct(c.Request.Context(), studentID, req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger.With(slog.String("student_id", studentID)), err, "Failed to deduct credit")
		return
	}
	c.JSON(http.StatusCreated, toTransactionResponse(txn))
}

// adjust godoc
// @Summary Adjust a student's hours
// @Tags credit
// @Accept json
// @Produce json
// @Param studentID path string true "Student ID"
// @Param adjustment body dto.AdjustRequest true "Signed hours and reason"
// @Success 201 {object} dto.CreditTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 422 {object} map[string]string "Insufficient credit"
// @Router /students/{studentID}/credit/adjust [post]
func (h *creditHandler) adjust(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	studentID := c.Param("studentID")
	var req dto.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}

	txn, err := h.creditService.Adjust(c.Request.Context(), studentID, req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, logger.With(slog.String("student_id", studentID)), err, "Failed to adjust credit")
		return
	}
	c.JSON(http.StatusCreated, toTransactionResponse(txn))
}
