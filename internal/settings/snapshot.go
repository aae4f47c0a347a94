package settings

import (
	"encoding/json"
	"sync/atomic"

	"github.com/lumenlearn/tutor-backend/internal/models"
	"gorm.io/gorm"
)

// snapshot holds the last loaded settings table as key -> raw JSON.
var snapshot atomic.Pointer[map[string]json.RawMessage]

// LoadSnapshot reads the settings table and replaces the in-process
// snapshot. Call at startup and after settings writes.
func LoadSnapshot(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	var rows []models.Setting
	if errFind := conn.Find(&rows).Error; errFind != nil {
		return errFind
	}
	next := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		next[row.Key] = json.RawMessage(row.Value)
	}
	snapshot.Store(&next)
	return nil
}

// DBConfigValue returns the raw JSON value for a settings key from the
// current snapshot.
func DBConfigValue(key string) (json.RawMessage, bool) {
	current := snapshot.Load()
	if current == nil {
		return nil, false
	}
	value, ok := (*current)[key]
	return value, ok
}

// SetSnapshotForTest replaces the snapshot directly. Tests only.
func SetSnapshotForTest(values map[string]json.RawMessage) {
	snapshot.Store(&values)
}
