package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lumenlearn/tutor-backend/internal/models"
)

// StudentHandler serves admin views over student accounts.
type StudentHandler struct {
	db *gorm.DB
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{db: db}
}

// studentRow extends a student with message aggregates.
type studentRow struct {
	models.Student
	MessageCount  int64      `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at"`
}

// List returns students ordered by recency of activity, with message
// aggregates.
func (h *StudentHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	offset := queryInt(c, "offset", 0)

	rows := make([]studentRow, 0)
	errFind := h.db.WithContext(c.Request.Context()).
		Model(&models.Student{}).
		Select("students.*, COUNT(messages.id) AS message_count, MAX(messages.created_at) AS last_message_at").
		Joins("LEFT JOIN messages ON messages.student_id = students.student_id").
		Group("students.id").
		Order("students.last_active DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list students failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":              row.ID,
			"student_id":      row.StudentID,
			"email":           row.Email,
			"name":            row.Name,
			"total_messages":  row.TotalMessages,
			"message_count":   row.MessageCount,
			"last_message_at": row.LastMessageAt,
			"last_active":     row.LastActive,
			"created_at":      row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"students": out, "count": len(out)})
}

// Get returns one student by external identifier.
func (h *StudentHandler) Get(c *gin.Context) {
	studentID := strings.TrimSpace(c.Param("student_id"))
	if studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}

	var student models.Student
	errFind := h.db.WithContext(c.Request.Context()).
		Where("student_id = ?", studentID).
		First(&student).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             student.ID,
		"student_id":     student.StudentID,
		"email":          student.Email,
		"name":           student.Name,
		"total_messages": student.TotalMessages,
		"last_active":    student.LastActive,
		"created_at":     student.CreatedAt,
	})
}
