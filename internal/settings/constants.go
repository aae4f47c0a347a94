package settings

// DB config keys and defaults for settings.
const (
	// SiteNameKey is the DB config key for the UI site name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback UI site name.
	DefaultSiteName = "LumenLearn Tutor"
	// RateLimitMaxRequestsKey controls the max chat requests per window.
	RateLimitMaxRequestsKey = "RATE_LIMIT_MAX_REQUESTS"
	// RateLimitWindowSecondsKey controls the rate limit window length.
	RateLimitWindowSecondsKey = "RATE_LIMIT_WINDOW_SECONDS"
	// RateLimitRedisEnabledKey toggles the Redis-backed window store.
	RateLimitRedisEnabledKey = "RATE_LIMIT_REDIS_ENABLED"
	// RateLimitRedisAddrKey defines the Redis address for rate limiting.
	RateLimitRedisAddrKey = "RATE_LIMIT_REDIS_ADDR"
	// RateLimitRedisPasswordKey defines the Redis password for rate limiting.
	RateLimitRedisPasswordKey = "RATE_LIMIT_REDIS_PASSWORD"
	// RateLimitRedisDBKey defines the Redis DB index for rate limiting.
	RateLimitRedisDBKey = "RATE_LIMIT_REDIS_DB"
	// RateLimitRedisPrefixKey defines the Redis key prefix for rate limiting.
	RateLimitRedisPrefixKey = "RATE_LIMIT_REDIS_PREFIX"
	// HistoryContextTurnsKey controls how many history turns feed the model.
	HistoryContextTurnsKey = "HISTORY_CONTEXT_TURNS"
	// DefaultRateLimitMaxRequests is the fallback chat request cap per window.
	DefaultRateLimitMaxRequests = 10
	// DefaultRateLimitWindowSeconds is the fallback window length in seconds.
	DefaultRateLimitWindowSeconds = 60
	// DefaultRateLimitRedisPrefix is the fallback Redis key prefix.
	DefaultRateLimitRedisPrefix = "lumen:rl"
	// DefaultHistoryContextTurns is the fallback history context depth.
	DefaultHistoryContextTurns = 10
)
