package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lumenlearn/tutor-backend/internal/config"
	handlers "github.com/lumenlearn/tutor-backend/internal/http/api/admin/handlers"
	"github.com/lumenlearn/tutor-backend/internal/models"
	"github.com/lumenlearn/tutor-backend/internal/security"
)

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, access config.AccessConfig) {
	if r == nil || db == nil {
		return
	}

	adminGroup := r.Group("/api/admin")

	authHandler := handlers.NewAuthHandler(db, jwtCfg, access)
	adminGroup.POST("/login", authHandler.Login)
	adminGroup.POST("/login/totp", authHandler.LoginTOTP)

	authed := adminGroup.Group("")
	authed.Use(adminAuthMiddleware(db, jwtCfg, access))

	selfHandler := handlers.NewSelfHandler(db)
	authed.GET("/me", selfHandler.Me)
	authed.PUT("/me/password", selfHandler.ChangePassword)
	authed.POST("/me/totp/prepare", selfHandler.PrepareTOTP)
	authed.POST("/me/totp/confirm", selfHandler.ConfirmTOTP)
	authed.POST("/me/totp/disable", selfHandler.DisableTOTP)

	conversationHandler := handlers.NewConversationHandler(db)
	authed.GET("/conversations", conversationHandler.List)
	authed.GET("/conversations/search", conversationHandler.Search)
	authed.GET("/student/:student_id/conversations", conversationHandler.ListByStudent)

	flaggedHandler := handlers.NewFlaggedHandler(db)
	authed.GET("/flagged", flaggedHandler.List)
	authed.POST("/flagged/:id/review", flaggedHandler.Review)

	studentHandler := handlers.NewStudentHandler(db)
	authed.GET("/students", studentHandler.List)
	authed.GET("/student/:student_id", studentHandler.Get)

	statsHandler := handlers.NewStatsHandler(db)
	authed.GET("/stats", statsHandler.Stats)
	authed.GET("/analytics", statsHandler.Analytics)
	authed.GET("/comprehensive-analytics", statsHandler.ComprehensiveAnalytics)

	settingHandler := handlers.NewSettingHandler(db)
	authed.GET("/settings", settingHandler.List)
	authed.GET("/settings/:key", settingHandler.Get)
	authed.PUT("/settings/:key", settingHandler.Update)
}

// adminAuthMiddleware validates admin JWTs against the allow-list and
// loads admin context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig, access config.AccessConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := ""
		if authHeader != "" {
			token = strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
				return
			}
		}
		// Cookie fallback for the embedded dashboard.
		if token == "" {
			token, _ = c.Cookie("admin_session")
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if claims.Role != security.RoleAdmin || !access.IsAdminEmail(claims.Email) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		var admin models.Admin
		if errFind := db.WithContext(c.Request.Context()).Where("admin_id = ?", claims.PrincipalID).First(&admin).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
			return
		}

		c.Set("adminID", admin.ID)
		c.Set("adminExternalID", admin.AdminID)
		c.Set("adminEmail", admin.Email)
		c.Set("adminName", admin.Name)
		c.Next()
	}
}
