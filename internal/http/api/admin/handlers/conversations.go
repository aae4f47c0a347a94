package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lumenlearn/tutor-backend/internal/db"
	"github.com/lumenlearn/tutor-backend/internal/models"
)

// ConversationHandler serves admin views over conversation history.
type ConversationHandler struct {
	db *gorm.DB
}

// NewConversationHandler constructs a conversation handler.
func NewConversationHandler(db *gorm.DB) *ConversationHandler {
	return &ConversationHandler{db: db}
}

// conversationRow joins one message with its student's identity.
type conversationRow struct {
	models.Message
	Name  string `json:"name"`
	Email string `json:"email"`
}

func formatConversation(row conversationRow) gin.H {
	return gin.H{
		"id":               row.ID,
		"student_id":       row.StudentID,
		"role":             row.Role,
		"message":          row.Body,
		"session_id":       row.SessionID,
		"tokens_est":       row.TokensEst,
		"response_time_ms": row.ResponseTimeMS,
		"created_at":       row.CreatedAt,
		"name":             row.Name,
		"email":            row.Email,
	}
}

// List returns recent conversations across all students.
func (h *ConversationHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	offset := queryInt(c, "offset", 0)

	rows := make([]conversationRow, 0)
	errFind := h.db.WithContext(c.Request.Context()).
		Model(&models.Message{}).
		Select("messages.*, students.name AS name, students.email AS email").
		Joins("JOIN students ON students.student_id = messages.student_id").
		Order("messages.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list conversations failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatConversation(row))
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out, "count": len(out)})
}

// Search returns conversations whose text matches the query keyword.
func (h *ConversationHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	limit := queryInt(c, "limit", 50)

	pattern := db.NormalizeLikePattern(h.db, "%"+query+"%")
	rows := make([]conversationRow, 0)
	errFind := h.db.WithContext(c.Request.Context()).
		Model(&models.Message{}).
		Select("messages.*, students.name AS name, students.email AS email").
		Joins("JOIN students ON students.student_id = messages.student_id").
		Where(db.CaseInsensitiveLikeExpr(h.db, "messages.body"), pattern).
		Order("messages.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatConversation(row))
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out, "count": len(out)})
}

// ListByStudent returns recent conversations for one student.
func (h *ConversationHandler) ListByStudent(c *gin.Context) {
	studentID := strings.TrimSpace(c.Param("student_id"))
	if studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}
	limit := queryInt(c, "limit", 50)

	rows := make([]conversationRow, 0)
	errFind := h.db.WithContext(c.Request.Context()).
		Model(&models.Message{}).
		Select("messages.*, students.name AS name, students.email AS email").
		Joins("JOIN students ON students.student_id = messages.student_id").
		Where("messages.student_id = ?", studentID).
		Order("messages.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list conversations failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatConversation(row))
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out, "student_id": studentID, "count": len(out)})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, errParse := strconv.Atoi(raw)
	if errParse != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
