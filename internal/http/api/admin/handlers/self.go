package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lumenlearn/tutor-backend/internal/models"
	"github.com/lumenlearn/tutor-backend/internal/security"
)

// SelfHandler serves the signed-in admin's own account endpoints.
type SelfHandler struct {
	db *gorm.DB
}

// NewSelfHandler constructs a self-service handler.
func NewSelfHandler(db *gorm.DB) *SelfHandler {
	return &SelfHandler{db: db}
}

func (h *SelfHandler) currentAdmin(c *gin.Context) (*models.Admin, bool) {
	adminID := c.GetUint64("adminID")
	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, adminID).Error; errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
		return nil, false
	}
	return &admin, true
}

// Me returns the signed-in admin's profile.
func (h *SelfHandler) Me(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           admin.ID,
		"admin_id":     admin.AdminID,
		"email":        admin.Email,
		"name":         admin.Name,
		"totp_enabled": admin.TOTPSecret != "",
		"has_password": admin.Password != "",
		"last_active":  admin.LastActive,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword sets or rotates the dashboard password. The current
// password is required once one exists.
func (h *SelfHandler) ChangePassword(c *gin.Context) {
	var body changePasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}

	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	if admin.Password != "" && !security.VerifyPassword(admin.Password, body.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid current password"})
		return
	}

	hash, errHash := security.HashPassword(body.NewPassword)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password update failed"})
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(admin).Update("password", hash).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PrepareTOTP generates a new TOTP secret for enrollment. The secret is
// not activated until confirmed.
func (h *SelfHandler) PrepareTOTP(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	if admin.TOTPSecret != "" {
		c.JSON(http.StatusConflict, gin.H{"error": "totp already enabled"})
		return
	}

	secret, url, errGenerate := security.GenerateTOTPSecret("LumenLearn Tutor", admin.Email)
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "totp setup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": secret, "otpauth_url": url})
}

type confirmTOTPRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

// ConfirmTOTP activates a prepared secret once the admin proves they can
// generate codes for it.
func (h *SelfHandler) ConfirmTOTP(c *gin.Context) {
	var body confirmTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	secret := strings.TrimSpace(body.Secret)
	if secret == "" || !security.VerifyTOTP(secret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}

	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(admin).Update("totp_secret", secret).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "totp setup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type disableTOTPRequest struct {
	Code string `json:"code"`
}

// DisableTOTP turns MFA off after a final valid code.
func (h *SelfHandler) DisableTOTP(c *gin.Context) {
	var body disableTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	if admin.TOTPSecret == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "totp not enabled"})
		return
	}
	if !security.VerifyTOTP(admin.TOTPSecret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(admin).Update("totp_secret", "").Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "totp update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
