package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/facturio/fiscal_engine_app/internal/core/services"
	"github.com/facturio/fiscal_engine_app/internal/dto"
	"github.com/facturio/fiscal_engine_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exportHandler handles HTTP requests for regulatory and target-software exports.
type exportHandler struct {
	fecService     portssvc.FECSvcFacade
	adapterService portssvc.FormatAdapterSvcFacade
}

func newExportHandler(fec portssvc.FECSvcFacade, adapter portssvc.FormatAdapterSvcFacade) *exportHandler {
	return &exportHandler{
		fecService:     fec,
		adapterService: adapter,
	}
}

// registerExportRoutes registers routes related to ledger exports.
func registerExportRoutes(rg *gin.RouterGroup, fec portssvc.FECSvcFacade, adapter portssvc.FormatAdapterSvcFacade) {
	h := newExportHandler(fec, adapter)

	exports := rg.Group("/exports")
	{
		exports.GET("/fec", h.downloadFEC)
		exports.GET("/fec/count", h.countFEC)
		exports.GET("/accounting/:target", h.downloadAccountingCSV)
		exports.GET("/accounting/:target/columns", h.listColumns)
	}
}

// parseDateRange binds and parses the shared from/to query parameters.
func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	var q dto.DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return time.Time{}, time.Time{}, false
	}
	from, _ := time.Parse("2006-01-02", q.From)
	to, _ := time.Parse("2006-01-02", q.To)
	if err := services.ValidateDateRange(from, to); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// downloadFEC streams the FEC file for the requested date range.
func (h *exportHandler) downloadFEC(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := middleware.GetAccountIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	logger.Info("Received FEC export request",
		slog.String("from", from.Format("2006-01-02")),
		slog.String("to", to.Format("2006-01-02")))

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+services.FECFilename(accountID, from, to)+`"`)
	c.Status(http.StatusOK)

	if err := h.fecService.Stream(c.Request.Context(), accountID, from, to, c.Writer); err != nil {
		// Headers are already sent; abort the connection rather than emit a
		// truncated file that looks complete.
		logger.Error("FEC stream failed", slog.String("error", err.Error()))
		c.Abort()
		return
	}
}

// countFEC returns the number of ledger lines the export would contain.
func (h *exportHandler) countFEC(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := middleware.GetAccountIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	count, err := h.fecService.Count(c.Request.Context(), accountID, from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrConfiguration) || errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to count FEC lines", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count export lines"})
		return
	}

	c.JSON(http.StatusOK, dto.ExportCountResponse{
		From:  from.Format("2006-01-02"),
		To:    to.Format("2006-01-02"),
		Lines: count,
	})
}

// downloadAccountingCSV streams the CSV layout of a target accounting software.
func (h *exportHandler) downloadAccountingCSV(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := middleware.GetAccountIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	target := portssvc.ExportTarget(c.Param("target"))
	if _, err := h.adapterService.Columns(target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	logger.Info("Received accounting CSV export request", slog.String("target", string(target)))

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+services.ExportFilename(target, from, to)+`"`)
	c.Status(http.StatusOK)

	if err := h.adapterService.Stream(c.Request.Context(), accountID, target, from, to, c.Writer); err != nil {
		logger.Error("Accounting CSV stream failed", slog.String("error", err.Error()))
		c.Abort()
		return
	}
}

// listColumns returns the ordered column list of a target layout.
func (h *exportHandler) listColumns(c *gin.Context) {
	target := portssvc.ExportTarget(c.Param("target"))
	columns, err := h.adapterService.Columns(target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	c.JSON(http.StatusOK, dto.ExportColumnsResponse{
		Target:  string(target),
		Columns: names,
	})
}
