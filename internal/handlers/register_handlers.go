package handlers

import (
	"log"
	"net/http"

	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/facturio/fiscal_engine_app/internal/middleware"
	"github.com/facturio/fiscal_engine_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Every v1 route is scoped to the account in the X-Account-ID header.
	v1 := r.Group("/api/v1", middleware.AccountContextMiddleware())

	registerExchangeRateRoutes(v1, services.Rate)
	registerVATRoutes(v1, services.VAT)
	registerReportRoutes(v1, services.Aggregate)

	// Exports are expensive to serve; they get their own rate-limited group.
	exportGroup := v1.Group("", middleware.RateLimit(newExportLimiter(cfg)))
	registerExportRoutes(exportGroup, services.FEC, services.FormatAdapter)
}

func newExportLimiter(cfg *config.Config) *limiter.Limiter {
	rate, err := limiter.NewRateFromFormatted(cfg.ExportRateLimit)
	if err != nil {
		log.Printf("Warning: invalid EXPORT_RATE_LIMIT (%q), defaulting to 10-M\n", cfg.ExportRateLimit)
		rate, _ = limiter.NewRateFromFormatted("10-M")
	}
	return limiter.New(memory.NewStore(), rate)
}
