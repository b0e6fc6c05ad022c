package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/napieracademy/sitemap-manager/internal/artifact"
	"github.com/napieracademy/sitemap-manager/internal/generator"
	"github.com/napieracademy/sitemap-manager/internal/logger"
	"github.com/napieracademy/sitemap-manager/internal/repository"
)

type SitemapHandler struct {
	gen    *generator.Generator
	stats  *repository.StatsRepository
	store  *artifact.Store
	logger logger.Logger
}

func NewSitemapHandler(
	gen *generator.Generator,
	stats *repository.StatsRepository,
	store *artifact.Store,
	log logger.Logger,
) *SitemapHandler {
	return &SitemapHandler{
		gen:    gen,
		stats:  stats,
		store:  store,
		logger: log,
	}
}

// Generate triggers a generation run and returns its summary.
func (h *SitemapHandler) Generate(c *gin.Context) {
	summary, err := h.gen.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, generator.ErrRunInProgress) {
			c.JSON(http.StatusConflict, summary)
			return
		}
		c.JSON(http.StatusInternalServerError, summary)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetStats returns the statistics row of the most recent run.
func (h *SitemapHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.Read(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrStatsNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No generation has run yet"})
			return
		}
		h.logger.Error("Failed to read sitemap stats", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetDiscrepancies reconciles the tracked-page set against the published
// sitemap and returns the classified report.
func (h *SitemapHandler) GetDiscrepancies(c *gin.Context) {
	report, err := h.gen.Discrepancies(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build discrepancy report", logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to build discrepancy report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// ServeSitemap serves the canonical published artifact.
func (h *SitemapHandler) ServeSitemap(c *gin.Context) {
	data, err := h.store.Read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No sitemap has been published yet"})
			return
		}
		h.logger.Error("Failed to read sitemap artifact", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sitemap"})
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}
