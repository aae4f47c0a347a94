package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lumenlearn/tutor-backend/internal/models"
)

// FlaggedHandler serves the moderation review queue.
type FlaggedHandler struct {
	db *gorm.DB
}

// NewFlaggedHandler constructs a flagged content handler.
func NewFlaggedHandler(db *gorm.DB) *FlaggedHandler {
	return &FlaggedHandler{db: db}
}

// flaggedRow joins one flag with its student's identity.
type flaggedRow struct {
	models.FlaggedContent
	Name  string `json:"name"`
	Email string `json:"email"`
}

// List returns flagged content newest first. The optional reviewed query
// parameter filters by review status.
func (h *FlaggedHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 100)

	query := h.db.WithContext(c.Request.Context()).
		Model(&models.FlaggedContent{}).
		Select("flagged_contents.*, students.name AS name, students.email AS email").
		Joins("LEFT JOIN students ON students.student_id = flagged_contents.student_id").
		Order("flagged_contents.flagged_at DESC").
		Limit(limit)

	if raw := c.Query("reviewed"); raw != "" {
		reviewed, errParse := strconv.ParseBool(raw)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reviewed filter"})
			return
		}
		query = query.Where("flagged_contents.reviewed = ?", reviewed)
	}

	rows := make([]flaggedRow, 0)
	if errFind := query.Scan(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list flagged failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":           row.ID,
			"student_id":   row.StudentID,
			"message_id":   row.MessageID,
			"message_text": row.MessageText,
			"category":     row.Category,
			"severity":     row.Severity,
			"reason":       row.Reason,
			"verdict":      row.Verdict,
			"reviewed":     row.Reviewed,
			"reviewed_by":  row.ReviewedBy,
			"reviewed_at":  row.ReviewedAt,
			"flagged_at":   row.FlaggedAt,
			"name":         row.Name,
			"email":        row.Email,
		})
	}
	c.JSON(http.StatusOK, gin.H{"flagged": out, "count": len(out)})
}

// Review marks one flag as reviewed by the signed-in admin.
func (h *FlaggedHandler) Review(c *gin.Context) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var flag models.FlaggedContent
	if errFind := h.db.WithContext(c.Request.Context()).First(&flag, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	adminID := c.GetUint64("adminID")
	now := time.Now()
	updates := map[string]any{
		"reviewed":    true,
		"reviewed_by": adminID,
		"reviewed_at": now,
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&flag).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "review update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": flag.ID})
}
