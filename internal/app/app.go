package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/lumenlearn/tutor-backend/internal/chat"
	"github.com/lumenlearn/tutor-backend/internal/config"
	"github.com/lumenlearn/tutor-backend/internal/db"
	adminapi "github.com/lumenlearn/tutor-backend/internal/http/api/admin"
	"github.com/lumenlearn/tutor-backend/internal/http/api/front"
	"github.com/lumenlearn/tutor-backend/internal/http/middleware"
	"github.com/lumenlearn/tutor-backend/internal/llm"
	"github.com/lumenlearn/tutor-backend/internal/ratelimit"
	internalsettings "github.com/lumenlearn/tutor-backend/internal/settings"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the tutor backend with database-backed components and
// serves until the context is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)

	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errSnapshot := internalsettings.LoadSnapshot(conn); errSnapshot != nil {
		return errSnapshot
	}

	jwtCfg, _ := config.LoadJWTConfig(configPath)
	if jwtCfg.Secret == "" {
		return fmt.Errorf("missing jwt secret (set `jwt.secret` in config file or %s)", config.EnvJWTSecret)
	}
	llmCfg, _ := config.LoadLLMConfig(configPath)
	if llmCfg.APIKey == "" {
		log.Warn("llm api key not configured, replies will use fallbacks")
	}
	accessCfg, _ := config.LoadAccessConfig(configPath)

	limiter := ratelimit.NewManager(ratelimit.NewGormStore(conn), ratelimit.LoadSettingsConfig, nil, nil)
	generator := llm.NewHTTPClient(llmCfg.APIKey, llmCfg.Model, llmCfg.Endpoint)
	chatService := chat.NewService(conn, limiter, generator)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(accessCfg.AllowedOrigins))
	engine.Use(middleware.SecurityHeaders(accessCfg.AllowedOrigins))

	front.RegisterFrontRoutes(engine, conn, jwtCfg, accessCfg, chatService)
	adminapi.RegisterAdminRoutes(engine, conn, jwtCfg, accessCfg)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", port).Info("tutor backend listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}
