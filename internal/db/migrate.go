package db

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lumenlearn/tutor-backend/internal/models"
	internalsettings "github.com/lumenlearn/tutor-backend/internal/settings"
	"gorm.io/gorm"
)

// Migrate runs database migrations and seeds default settings.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite, DialectPostgres, "":
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Student{},
		&models.Admin{},
		&models.Message{},
		&models.FlaggedContent{},
		&models.RateLimitEntry{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensureDefaultSettings(conn); errSeed != nil {
		return errSeed
	}
	return nil
}

// ensureDefaultSettings inserts missing settings rows without touching
// values operators may have changed.
func ensureDefaultSettings(conn *gorm.DB) error {
	defaults := map[string]any{
		internalsettings.SiteNameKey:               internalsettings.DefaultSiteName,
		internalsettings.RateLimitMaxRequestsKey:   internalsettings.DefaultRateLimitMaxRequests,
		internalsettings.RateLimitWindowSecondsKey: internalsettings.DefaultRateLimitWindowSeconds,
		internalsettings.RateLimitRedisEnabledKey:  false,
		internalsettings.RateLimitRedisPrefixKey:   internalsettings.DefaultRateLimitRedisPrefix,
		internalsettings.HistoryContextTurnsKey:    internalsettings.DefaultHistoryContextTurns,
	}

	for key, value := range defaults {
		var existing models.Setting
		errFind := conn.Where("key = ?", key).First(&existing).Error
		if errFind == nil {
			continue
		}
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			return fmt.Errorf("db: read setting %s: %w", key, errFind)
		}
		raw, errMarshal := json.Marshal(value)
		if errMarshal != nil {
			return fmt.Errorf("db: marshal setting %s: %w", key, errMarshal)
		}
		row := models.Setting{Key: key, Value: raw}
		if errCreate := conn.Create(&row).Error; errCreate != nil {
			return fmt.Errorf("db: seed setting %s: %w", key, errCreate)
		}
	}
	return nil
}
