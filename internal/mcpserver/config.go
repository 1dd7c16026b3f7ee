package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// Walk tool defaults.
	WalkLimit       int
	WalkDetailLimit int

	// Resolver settings.
	ConfigFile string

	// Limits.
	MaxInlineSize int64
	MaxLimit      int
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from RAMLTOOLS_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envBool("RAMLTOOLS_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("RAMLTOOLS_CACHE_MAX_SIZE", 10),
		CacheFileTTL:       envDuration("RAMLTOOLS_CACHE_FILE_TTL", 15*time.Minute),
		CacheContentTTL:    envDuration("RAMLTOOLS_CACHE_CONTENT_TTL", 15*time.Minute),
		CacheSweepInterval: envDuration("RAMLTOOLS_CACHE_SWEEP_INTERVAL", 60*time.Second),
		WalkLimit:          envInt("RAMLTOOLS_WALK_LIMIT", 100),
		WalkDetailLimit:    envInt("RAMLTOOLS_WALK_DETAIL_LIMIT", 25),
		ConfigFile:         envFile("RAMLTOOLS_CONFIG"),
		MaxInlineSize:      int64(envInt("RAMLTOOLS_MAX_INLINE_SIZE", 10*1024*1024)),
		MaxLimit:           envInt("RAMLTOOLS_MAX_LIMIT", 1000),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

// envFile returns the path named by key when it points at a readable
// regular file, and "" otherwise.
func envFile(key string) string {
	v := os.Getenv(key)
	if v == "" {
		return ""
	}
	info, err := os.Stat(v)
	if err != nil || !info.Mode().IsRegular() {
		slog.Warn("config file env var does not name a file, ignoring", "key", key, "value", v) //nolint:gosec // G706: values are structured log fields, not format strings
		return ""
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}
