package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/facturio/fiscal_engine_app/internal/dto"
	"github.com/facturio/fiscal_engine_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	rateService portssvc.RateSvcFacade
}

func newExchangeRateHandler(rs portssvc.RateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{rateService: rs}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, rs portssvc.RateSvcFacade) {
	h := newExchangeRateHandler(rs)

	rates := rg.Group("/exchange-rates")
	{
		rates.GET("", h.listRates)
		rates.GET("/:base/:target", h.resolveRate)
		rates.POST("/refresh", h.refreshRates)
		rates.POST("/convert", h.convert)
	}
}

// resolveRate resolves the conversion rate for a pair at a date (default today).
func (h *exchangeRateHandler) resolveRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	base := c.Param("base")
	target := c.Param("target")

	var q dto.ResolveRateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	asOf := time.Now().UTC()
	if q.AsOf != "" {
		asOf, _ = time.Parse("2006-01-02", q.AsOf)
	}

	rate, err := h.rateService.Resolve(c.Request.Context(), base, target, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrRateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to resolve exchange rate", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve exchange rate"})
		return
	}

	c.JSON(http.StatusOK, dto.ResolveRateResponse{
		BaseCurrencyCode:   strings.ToUpper(base),
		TargetCurrencyCode: strings.ToUpper(target),
		AsOf:               asOf.Format("2006-01-02"),
		Rate:               rate,
	})
}

// convert converts an amount into the target currency at a date.
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	asOf := time.Now().UTC()
	if req.AsOf != "" {
		asOf, _ = time.Parse("2006-01-02", req.AsOf)
	}

	amount := domain.MonetaryAmount{Amount: req.Amount, CurrencyCode: strings.ToUpper(req.CurrencyCode)}
	converted, err := h.rateService.Convert(c.Request.Context(), amount, req.TargetCode, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrRateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to convert amount", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert amount"})
		return
	}

	c.JSON(http.StatusOK, dto.ConvertResponse{
		Amount:        req.Amount,
		CurrencyCode:  strings.ToUpper(req.CurrencyCode),
		TargetCode:    strings.ToUpper(req.TargetCode),
		AsOf:          asOf.Format("2006-01-02"),
		Converted:     converted.Round(2),
		ConvertedFull: converted,
	})
}

// refreshRates triggers an immediate provider fetch for the base currency.
func (h *exchangeRateHandler) refreshRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	base := strings.ToUpper(c.DefaultQuery("base", "EUR"))

	logger.Info("Received rate refresh request", slog.String("base", base))
	stored := h.rateService.FetchAndStore(c.Request.Context(), base)

	c.JSON(http.StatusOK, dto.RefreshRatesResponse{
		BaseCurrencyCode: base,
		StoredCount:      stored,
	})
}

// listRates returns the stored rate history with optional filters.
func (h *exchangeRateHandler) listRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var base, target *string
	if v := c.Query("base"); v != "" {
		base = &v
	}
	if v := c.Query("target"); v != "" {
		target = &v
	}
	var asOf *time.Time
	if v := c.Query("asOf"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be formatted as YYYY-MM-DD"})
			return
		}
		asOf = &t
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	rates, total, err := h.rateService.ListRates(c.Request.Context(), base, target, asOf, page, pageSize)
	if err != nil {
		logger.Error("Failed to list exchange rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list exchange rates"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListExchangeRatesResponse(rates, total, page, pageSize))
}
