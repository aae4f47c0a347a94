package front

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lumenlearn/tutor-backend/internal/chat"
	"github.com/lumenlearn/tutor-backend/internal/config"
	handlers "github.com/lumenlearn/tutor-backend/internal/http/api/front/handlers"
	"github.com/lumenlearn/tutor-backend/internal/security"
)

// RegisterFrontRoutes registers the student-facing routes, middleware,
// and handlers.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, access config.AccessConfig, svc *chat.Service) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/health", healthHandler.Health)

	tokenHandler := handlers.NewTokenHandler(db, jwtCfg, access)
	r.POST("/api/auth/token", tokenHandler.Issue)

	authed := r.Group("/api")
	authed.Use(StudentAuthMiddleware(jwtCfg))

	chatHandler := handlers.NewChatHandler(svc)
	authed.POST("/chat", chatHandler.Chat)
	authed.GET("/history", chatHandler.History)
}

// StudentAuthMiddleware validates bearer JWTs and loads the principal
// into the request context. Admin tokens pass too; the student routes
// only need an authenticated principal.
func StudentAuthMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("principalID", claims.PrincipalID)
		c.Set("principalEmail", claims.Email)
		c.Set("principalName", claims.Name)
		c.Set("principalRole", claims.Role)
		c.Next()
	}
}
