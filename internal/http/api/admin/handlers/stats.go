package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lumenlearn/tutor-backend/internal/analytics"
)

// StatsHandler serves the admin analytics endpoints.
type StatsHandler struct {
	db *gorm.DB
}

// NewStatsHandler constructs a stats handler.
func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// Stats returns the dashboard headline numbers.
func (h *StatsHandler) Stats(c *gin.Context) {
	stats, errStats := analytics.Stats(c.Request.Context(), h.db)
	if errStats != nil {
		log.WithError(errStats).Error("admin: stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Analytics returns the detailed platform analytics payload.
func (h *StatsHandler) Analytics(c *gin.Context) {
	out, errAnalytics := analytics.Platform(c.Request.Context(), h.db)
	if errAnalytics != nil {
		log.WithError(errAnalytics).Error("admin: analytics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics unavailable"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// ComprehensiveAnalytics returns analytics bounded to the last N days.
// days defaults to 0, meaning all time; negative or malformed values are
// clamped to 0.
func (h *StatsHandler) ComprehensiveAnalytics(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 {
			days = parsed
		}
	}

	out, errAnalytics := analytics.Comprehensive(c.Request.Context(), h.db, days)
	if errAnalytics != nil {
		log.WithError(errAnalytics).Error("admin: comprehensive analytics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics unavailable"})
		return
	}
	c.JSON(http.StatusOK, out)
}
