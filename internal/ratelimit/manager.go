package ratelimit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// durableBreakerDuration is how long the durable path stays skipped after
// a storage failure before it is retried.
const durableBreakerDuration = 30 * time.Second

// durableTimeout bounds one durable-path attempt so a hung store cannot
// stall the request path.
const durableTimeout = 2 * time.Second

// SettingsProvider supplies the latest settings snapshot.
type SettingsProvider func() SettingsConfig

// RedisClientFactory constructs a Redis client for the given options.
type RedisClientFactory func(options *redis.Options) *redis.Client

type redisConfig struct {
	addr     string
	password string
	prefix   string
	db       int
}

// Manager is the hybrid rate limiter: it runs each check against the
// durable window store first (Redis when enabled in settings, the
// database otherwise) and falls back to the in-memory store on any
// storage failure. Callers never see a storage error; the fallback is
// silent apart from an operator log line.
type Manager struct {
	provider       SettingsProvider
	nowFn          func() time.Time
	durable        WindowStore
	fallback       *MemoryStore
	newRedisClient RedisClientFactory

	mu           sync.Mutex
	redisStore   *RedisStore
	redisClient  *redis.Client
	redisCfg     redisConfig
	breakerUntil time.Time
}

// NewManager constructs a Manager with default dependencies when nil.
// durable is the database-backed store used when Redis is not enabled.
func NewManager(durable WindowStore, provider SettingsProvider, nowFn func() time.Time, newRedisClient RedisClientFactory) *Manager {
	if provider == nil {
		provider = LoadSettingsConfig
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	if newRedisClient == nil {
		newRedisClient = redis.NewClient
	}
	return &Manager{
		provider:       provider,
		nowFn:          nowFn,
		durable:        durable,
		fallback:       NewMemoryStore(),
		newRedisClient: newRedisClient,
	}
}

// CheckAndRecord decides whether the principal's request may proceed.
// It never returns an error: storage trouble degrades to the in-memory
// path, and an ambiguous internal failure resolves to allowed.
func (m *Manager) CheckAndRecord(ctx context.Context, principalID string, limits Limits) Decision {
	if m == nil || limits.MaxRequests <= 0 || principalID == "" {
		return Decision{Allowed: true}
	}
	now := m.nowFn()

	if decision, ok := m.checkDurable(ctx, principalID, limits, now); ok {
		return decision
	}

	decision, errMemory := m.fallback.CheckAndRecord(ctx, principalID, limits, now)
	if errMemory != nil {
		log.WithError(errMemory).Warn("rate limit: in-memory fallback failed, allowing request")
		return Decision{Allowed: true}
	}
	return decision
}

func (m *Manager) checkDurable(ctx context.Context, principalID string, limits Limits, now time.Time) (Decision, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.isBreakerActive(now) {
		return Decision{}, false
	}

	store, errStore := m.selectStore(ctx, now)
	if errStore != nil {
		m.tripBreaker(errStore, now)
		return Decision{}, false
	}
	if store == nil {
		return Decision{}, false
	}

	attemptCtx, cancel := context.WithTimeout(ctx, durableTimeout)
	defer cancel()
	decision, errCheck := store.CheckAndRecord(attemptCtx, principalID, limits, now)
	if errCheck != nil {
		m.tripBreaker(errCheck, now)
		return Decision{}, false
	}
	return decision, true
}

// selectStore picks the durable backend for this call: Redis when enabled
// in settings, otherwise the database store.
func (m *Manager) selectStore(ctx context.Context, now time.Time) (WindowStore, error) {
	cfg := m.provider()
	if !cfg.RedisEnabled {
		return m.durable, nil
	}
	return m.ensureRedis(ctx, cfg)
}

func (m *Manager) isBreakerActive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.breakerUntil.IsZero() {
		return false
	}
	if now.Before(m.breakerUntil) {
		return true
	}
	m.breakerUntil = time.Time{}
	return false
}

func (m *Manager) tripBreaker(err error, now time.Time) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		return
	}
	m.breakerUntil = now.Add(durableBreakerDuration)
	log.WithError(err).Warn("rate limit: durable store unavailable, falling back to memory")
}

func (m *Manager) ensureRedis(ctx context.Context, cfg SettingsConfig) (*RedisStore, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis: missing address")
	}

	nextCfg := redisConfig{
		addr:     addr,
		password: strings.TrimSpace(cfg.RedisPassword),
		prefix:   strings.TrimSpace(cfg.RedisPrefix),
		db:       cfg.RedisDB,
	}
	if nextCfg.db < 0 {
		nextCfg.db = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.redisStore != nil && m.redisCfg == nextCfg {
		return m.redisStore, nil
	}
	if m.redisClient != nil {
		_ = m.redisClient.Close()
		m.redisStore = nil
		m.redisClient = nil
	}

	client := m.newRedisClient(&redis.Options{
		Addr:     nextCfg.addr,
		Password: nextCfg.password,
		DB:       nextCfg.db,
	})
	ctxPing, cancel := context.WithTimeout(ctx, durableTimeout)
	defer cancel()
	if errPing := client.Ping(ctxPing).Err(); errPing != nil {
		_ = client.Close()
		return nil, errPing
	}
	m.redisStore = NewRedisStore(client, nextCfg.prefix)
	m.redisClient = client
	m.redisCfg = nextCfg
	return m.redisStore, nil
}
