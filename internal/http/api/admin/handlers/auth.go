package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lumenlearn/tutor-backend/internal/config"
	"github.com/lumenlearn/tutor-backend/internal/models"
	"github.com/lumenlearn/tutor-backend/internal/security"
)

// totpPendingExpiry bounds how long a password-verified login may wait
// for its TOTP code.
const totpPendingExpiry = 5 * time.Minute

// AuthHandler serves the admin dashboard login flow.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
	access config.AccessConfig
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, access config.AccessConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, access: access}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies email and password. Accounts with TOTP enabled receive
// a short-lived pending token to exchange at /login/totp.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if !h.access.IsAdminEmail(email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&admin).Error; errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !admin.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
		return
	}
	if admin.Password == "" || !security.VerifyPassword(admin.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if admin.TOTPSecret != "" {
		pending, errSign := security.SignToken(h.jwtCfg.Secret, admin.AdminID, admin.Email, admin.Name, "admin-totp-pending", totpPendingExpiry, time.Now())
		if errSign != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"totp_required": true, "pending_token": pending})
		return
	}

	h.issueSession(c, &admin)
}

type loginTOTPRequest struct {
	PendingToken string `json:"pending_token"`
	Code         string `json:"code"`
}

// LoginTOTP exchanges a pending token plus a valid TOTP code for a full
// admin session.
func (h *AuthHandler) LoginTOTP(c *gin.Context) {
	var body loginTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	claims, errJWT := security.ParseToken(h.jwtCfg.Secret, strings.TrimSpace(body.PendingToken))
	if errJWT != nil || claims.Role != "admin-totp-pending" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).Where("admin_id = ?", claims.PrincipalID).First(&admin).Error; errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
		return
	}
	if admin.TOTPSecret == "" || !security.VerifyTOTP(admin.TOTPSecret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}

	h.issueSession(c, &admin)
}

func (h *AuthHandler) issueSession(c *gin.Context, admin *models.Admin) {
	token, errSign := security.SignToken(h.jwtCfg.Secret, admin.AdminID, admin.Email, admin.Name, security.RoleAdmin, h.jwtCfg.Expiry, time.Now())
	if errSign != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	now := time.Now()
	_ = h.db.WithContext(c.Request.Context()).Model(admin).Update("last_active", now).Error

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int64(h.jwtCfg.Expiry.Seconds()),
		"role":       security.RoleAdmin,
		"is_admin":   true,
	})
}
