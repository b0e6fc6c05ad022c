// Package api wires the HTTP surface of the sitemap-manager service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/napieracademy/sitemap-manager/internal/auth"
	"github.com/napieracademy/sitemap-manager/internal/config"
	"github.com/napieracademy/sitemap-manager/internal/handlers"
	"github.com/napieracademy/sitemap-manager/internal/logger"
)

const healthPingTimeout = 2 * time.Second

// Pinger checks a backing dependency, used by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter builds the service router. The administrative endpoints
// (generation trigger, discrepancy report) sit behind JWT auth; the
// published sitemap, stats, health, and metrics are public reads.
func NewRouter(
	h *handlers.SitemapHandler,
	cfg *config.Config,
	db Pinger,
	registry *prometheus.Registry,
	log logger.Logger,
) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.CORSOrigins))

	router.GET("/health", healthHandler(db))
	router.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/sitemap.xml", h.ServeSitemap)

	v1 := router.Group("/api/v1/sitemap")
	v1.GET("/stats", h.GetStats)

	admin := v1.Group("")
	admin.Use(auth.Middleware(cfg.Auth.JWTSecret))
	admin.POST("/generate", h.Generate)
	admin.GET("/discrepancies", h.GetDiscrepancies)

	return router
}

func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"checks": gin.H{"database": err.Error()},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "sitemap-manager",
		})
	}
}
