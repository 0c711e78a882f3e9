package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jakartamandarin/jm_finance/internal/export"
)

const formatCSV = "csv"

// wantsCSV reports whether the caller asked for CSV with ?format=csv.
func wantsCSV(format string) bool {
	return strings.EqualFold(format, formatCSV)
}

// respondCSV writes t as an attachment named filename.
func respondCSV(c *gin.Context, logger *slog.Logger, filename string, t export.Table) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, t); err != nil {
		logger.Error("Failed to render CSV", slog.String("file", filename), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render CSV"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
