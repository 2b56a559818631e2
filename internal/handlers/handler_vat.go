package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/facturio/fiscal_engine_app/internal/core/services"
	"github.com/facturio/fiscal_engine_app/internal/dto"
	"github.com/facturio/fiscal_engine_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// vatHandler handles HTTP requests for VAT declarations.
type vatHandler struct {
	vatService portssvc.VATSvcFacade
}

func newVATHandler(vs portssvc.VATSvcFacade) *vatHandler {
	return &vatHandler{vatService: vs}
}

// registerVATRoutes registers routes related to VAT declarations.
func registerVATRoutes(rg *gin.RouterGroup, vs portssvc.VATSvcFacade) {
	h := newVATHandler(vs)

	vat := rg.Group("/vat")
	{
		vat.GET("/declaration", h.getDeclaration)
	}
}

// getDeclaration builds the yearly VAT declaration, as JSON or downloadable CSV.
func (h *vatHandler) getDeclaration(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := middleware.GetAccountIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var q dto.VATReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	periodType := domain.PeriodMonthly
	if q.PeriodType != "" {
		periodType = domain.PeriodType(q.PeriodType)
	}

	logger.Info("Received VAT declaration request",
		slog.Int("year", q.Year),
		slog.String("period_type", string(periodType)))

	report, err := h.vatService.Build(c.Request.Context(), accountID, q.Year, periodType)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to build VAT declaration", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build VAT declaration"})
		return
	}

	if q.Format == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="`+services.VATFilename(q.Year)+`"`)
		c.Status(http.StatusOK)
		if err := h.vatService.WriteCSV(report, c.Writer); err != nil {
			logger.Error("VAT CSV write failed", slog.String("error", err.Error()))
			c.Abort()
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToVATReportResponse(report))
}
