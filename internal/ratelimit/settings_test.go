package ratelimit

import (
	"encoding/json"
	"testing"
	"time"

	internalsettings "github.com/lumenlearn/tutor-backend/internal/settings"
)

func TestLoadSettingsConfigDefaults(t *testing.T) {
	internalsettings.SetSnapshotForTest(map[string]json.RawMessage{})

	cfg := LoadSettingsConfig()
	if cfg.MaxRequests != internalsettings.DefaultRateLimitMaxRequests {
		t.Fatalf("expected default max requests, got %d", cfg.MaxRequests)
	}
	if cfg.WindowSeconds != internalsettings.DefaultRateLimitWindowSeconds {
		t.Fatalf("expected default window, got %d", cfg.WindowSeconds)
	}
	if cfg.RedisEnabled {
		t.Fatal("redis should be disabled by default")
	}
	if cfg.RedisPrefix != internalsettings.DefaultRateLimitRedisPrefix {
		t.Fatalf("expected default prefix, got %q", cfg.RedisPrefix)
	}
}

func TestLoadSettingsConfigOverrides(t *testing.T) {
	internalsettings.SetSnapshotForTest(map[string]json.RawMessage{
		internalsettings.RateLimitMaxRequestsKey:   json.RawMessage(`20`),
		internalsettings.RateLimitWindowSecondsKey: json.RawMessage(`"120"`),
		internalsettings.RateLimitRedisEnabledKey:  json.RawMessage(`"yes"`),
		internalsettings.RateLimitRedisAddrKey:     json.RawMessage(`" localhost:6379 "`),
		internalsettings.RateLimitRedisDBKey:       json.RawMessage(`3`),
	})

	cfg := LoadSettingsConfig()
	if cfg.MaxRequests != 20 {
		t.Fatalf("expected max requests 20, got %d", cfg.MaxRequests)
	}
	if cfg.WindowSeconds != 120 {
		t.Fatalf("expected window 120s, got %d", cfg.WindowSeconds)
	}
	if !cfg.RedisEnabled {
		t.Fatal("expected redis enabled")
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("expected trimmed addr, got %q", cfg.RedisAddr)
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("expected redis db 3, got %d", cfg.RedisDB)
	}

	limits := cfg.Limits()
	if limits.Window != 2*time.Minute || limits.MaxRequests != 20 {
		t.Fatalf("unexpected limits %+v", limits)
	}
}

func TestParseHelpersRejectMalformedValues(t *testing.T) {
	if _, ok := parseBool(json.RawMessage(`"maybe"`)); ok {
		t.Fatal("unknown string should not parse as bool")
	}
	if _, ok := parseNonNegativeInt(json.RawMessage(`-1`)); ok {
		t.Fatal("negative int should be rejected")
	}
	if _, ok := parseNonNegativeInt(json.RawMessage(`1.5`)); ok {
		t.Fatal("fractional value should be rejected")
	}
	if _, ok := parseString(json.RawMessage(`42`)); ok {
		t.Fatal("number should not parse as string")
	}
}
