package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/facturio/fiscal_engine_app/internal/dto"
	"github.com/facturio/fiscal_engine_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportHandler handles HTTP requests for aggregate summaries.
type reportHandler struct {
	aggregateService portssvc.AggregateSvcFacade
}

func newReportHandler(as portssvc.AggregateSvcFacade) *reportHandler {
	return &reportHandler{aggregateService: as}
}

// registerReportRoutes registers routes related to aggregate reporting.
func registerReportRoutes(rg *gin.RouterGroup, as portssvc.AggregateSvcFacade) {
	h := newReportHandler(as)

	reports := rg.Group("/reports")
	{
		reports.GET("/summary", h.getSummary)
	}
}

// getSummary builds the revenue/expense summary for a fiscal year or date range.
func (h *reportHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := middleware.GetAccountIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var q dto.SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	filters := portssvc.SummaryFilters{
		Year:      q.Year,
		ClientID:  q.ClientID,
		ProjectID: q.ProjectID,
	}
	if q.From != "" {
		filters.DateFrom, _ = time.Parse("2006-01-02", q.From)
	}
	if q.To != "" {
		filters.DateTo, _ = time.Parse("2006-01-02", q.To)
	}

	logger.Info("Received summary report request",
		slog.Int("year", q.Year),
		slog.String("from", q.From),
		slog.String("to", q.To))

	report, err := h.aggregateService.BuildSummary(c.Request.Context(), accountID, filters)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to build summary report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build summary report"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSummaryResponse(report))
}
