package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvDBConnection  = "DB_CONNECTION"
	EnvJWTSecret     = "JWT_SECRET"
	EnvJWTExpiry     = "JWT_EXPIRY"
	EnvLLMAPIKey     = "LLM_API_KEY"
	EnvAdminEmails   = "ADMIN_EMAILS"
	EnvAllowedOrigin = "ALLOWED_ORIGINS"
	EnvWebhookSecret = "WEBHOOK_SECRET"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// LLMConfig holds settings for the text-generation service.
type LLMConfig struct {
	APIKey   string `yaml:"api-key"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
}

// AccessConfig holds CORS origins, admin allow-list, and webhook secret.
type AccessConfig struct {
	AllowedOrigins []string `yaml:"allowed-origins"`
	AdminEmails    []string `yaml:"admin-emails"`
	WebhookSecret  string   `yaml:"webhook-secret"`
}

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 24 * time.Hour

// LoadJWTConfig loads JWT settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	result := JWTConfig{Expiry: defaultJWTExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.JWT
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// defaultLLMModel is used when the config omits the model name.
const defaultLLMModel = "gemini-2.0-flash"

// defaultLLMEndpoint is the generative-language API base URL.
const defaultLLMEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// LoadLLMConfig loads text-generation settings from the YAML config file.
func LoadLLMConfig(configPath string) (LLMConfig, error) {
	// fileConfig maps the YAML fields needed for LLM settings.
	type fileConfig struct {
		LLM LLMConfig `yaml:"llm"`
	}

	var result LLMConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.LLM
		}
	}

	if key := strings.TrimSpace(os.Getenv(EnvLLMAPIKey)); key != "" {
		result.APIKey = key
	}
	if strings.TrimSpace(result.Model) == "" {
		result.Model = defaultLLMModel
	}
	if strings.TrimSpace(result.Endpoint) == "" {
		result.Endpoint = defaultLLMEndpoint
	}
	return result, nil
}

// LoadAccessConfig loads CORS, admin allow-list, and webhook settings.
func LoadAccessConfig(configPath string) (AccessConfig, error) {
	// fileConfig maps the YAML fields needed for access settings.
	type fileConfig struct {
		Access AccessConfig `yaml:"access"`
	}

	var result AccessConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Access
		}
	}

	if raw := strings.TrimSpace(os.Getenv(EnvAllowedOrigin)); raw != "" {
		result.AllowedOrigins = splitList(raw)
	}
	if raw := strings.TrimSpace(os.Getenv(EnvAdminEmails)); raw != "" {
		result.AdminEmails = splitList(raw)
	}
	if secret := strings.TrimSpace(os.Getenv(EnvWebhookSecret)); secret != "" {
		result.WebhookSecret = secret
	}

	for i, email := range result.AdminEmails {
		result.AdminEmails[i] = strings.ToLower(strings.TrimSpace(email))
	}
	return result, nil
}

// IsAdminEmail reports whether an email is on the admin allow-list.
func (c AccessConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, candidate := range c.AdminEmails {
		if candidate == email {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
