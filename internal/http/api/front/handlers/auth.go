package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenlearn/tutor-backend/internal/config"
	"github.com/lumenlearn/tutor-backend/internal/db"
	"github.com/lumenlearn/tutor-backend/internal/models"
	"github.com/lumenlearn/tutor-backend/internal/security"
)

// TokenHandler issues JWTs for students and admins from the learning
// platform's webhook payload or a direct request.
type TokenHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
	access config.AccessConfig
}

// NewTokenHandler constructs a token handler.
func NewTokenHandler(db *gorm.DB, jwtCfg config.JWTConfig, access config.AccessConfig) *TokenHandler {
	return &TokenHandler{db: db, jwtCfg: jwtCfg, access: access}
}

// tokenUser is the user shape accepted both flat and nested under the
// webhook envelope.
type tokenUser struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	FullName  string `json:"full_name"`
}

type tokenRequest struct {
	tokenUser
	Data struct {
		User tokenUser `json:"user"`
	} `json:"data"`
}

// Issue validates the payload, provisions the account, and returns a
// signed token. Payloads may arrive flat ({student_id,email,name}) or as
// a platform webhook ({data:{user:{...}}}).
func (h *TokenHandler) Issue(c *gin.Context) {
	raw, errRead := io.ReadAll(c.Request.Body)
	if errRead != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	// Webhook signature is enforced only when both a secret and a
	// signature header are present.
	if signature := c.GetHeader("X-Signature"); h.access.WebhookSecret != "" && signature != "" {
		if !security.VerifyWebhookSignature(h.access.WebhookSecret, raw, signature) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
			return
		}
	}

	var body tokenRequest
	if errUnmarshal := json.Unmarshal(raw, &body); errUnmarshal != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	user := body.Data.User
	if user.ID == "" && user.StudentID == "" && user.Email == "" {
		user = body.tokenUser
	}

	principalID := strings.TrimSpace(firstNonEmpty(user.ID, user.StudentID))
	email := strings.TrimSpace(user.Email)
	name := strings.TrimSpace(firstNonEmpty(user.Username, user.Name, user.FullName))

	if principalID == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	isAdmin := h.access.IsAdminEmail(email)
	role := security.RoleStudent
	if isAdmin {
		role = security.RoleAdmin
	}

	ctx := c.Request.Context()
	var errEnsure error
	if isAdmin {
		errEnsure = ensureAdmin(h.db.WithContext(ctx), principalID, email, name)
	} else {
		errEnsure = ensureStudent(h.db.WithContext(ctx), principalID, email, name)
	}
	if errEnsure != nil {
		// The identifier upsert cannot conflict, so a unique violation
		// means the email is already bound to another account.
		if db.IsUniqueViolation(errEnsure) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered to another account"})
			return
		}
		log.WithError(errEnsure).Error("auth: account provisioning failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "account provisioning failed"})
		return
	}

	token, errSign := security.SignToken(h.jwtCfg.Secret, principalID, email, name, role, h.jwtCfg.Expiry, time.Now())
	if errSign != nil {
		log.WithError(errSign).Error("auth: sign token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int64(h.jwtCfg.Expiry.Seconds()),
		"role":       role,
		"is_admin":   isAdmin,
	})
}

// ensureStudent creates the student row or refreshes activity and name on
// repeat token requests.
func ensureStudent(tx *gorm.DB, studentID, email, name string) error {
	now := time.Now()
	student := models.Student{
		StudentID:  studentID,
		Email:      email,
		Name:       name,
		LastActive: now,
	}
	assignments := map[string]any{"last_active": now}
	if name != "" {
		assignments["name"] = name
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&student).Error
}

// ensureAdmin creates the admin row or refreshes activity, reactivating
// disabled accounts still on the allow-list.
func ensureAdmin(tx *gorm.DB, adminID, email, name string) error {
	now := time.Now()
	admin := models.Admin{
		AdminID:    adminID,
		Email:      email,
		Name:       name,
		Active:     true,
		LastActive: now,
	}
	assignments := map[string]any{"last_active": now, "active": true}
	if name != "" {
		assignments["name"] = name
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "admin_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&admin).Error
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
