package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/lumenlearn/tutor-backend/internal/chat"
)

// ChatHandler serves the student chat and history endpoints.
type ChatHandler struct {
	svc *chat.Service
}

// NewChatHandler constructs a chat handler.
func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Chat processes one student message and returns the tutor reply.
func (h *ChatHandler) Chat(c *gin.Context) {
	var body chatRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	message := strings.TrimSpace(body.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	studentID := c.GetString("principalID")
	reply, errRespond := h.svc.Respond(c.Request.Context(), studentID, message, body.SessionID)
	if errRespond != nil {
		log.WithError(errRespond).WithField("student_id", studentID).Error("chat endpoint failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again!"})
		return
	}

	if reply.Throttled {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": reply.Text})
		return
	}

	out := gin.H{
		"reply":      reply.Text,
		"session_id": reply.SessionID,
	}
	if !reply.Flagged {
		out["response_time_ms"] = reply.ResponseTimeMS
	}
	c.JSON(http.StatusOK, out)
}

// History returns the caller's recent conversation turns, oldest first.
func (h *ChatHandler) History(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 {
			limit = parsed
		}
	}

	studentID := c.GetString("principalID")
	rows, errHistory := h.svc.History(c.Request.Context(), studentID, limit)
	if errHistory != nil {
		log.WithError(errHistory).WithField("student_id", studentID).Error("history endpoint failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"role":       row.Role,
			"message":    row.Body,
			"created_at": row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"history": out})
}
