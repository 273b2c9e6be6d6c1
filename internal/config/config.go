package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr      string        // ex: "127.0.0.1:8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline (ex: 10s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Device & stores
	DeviceID     string // identifies this device on the change channel (default: hostname)
	DBPath       string // sqlite file for the local-only store
	BookmarkFile string // homepage bookmarks.yaml to import (optional, empty = import disabled)

	// Hierarchy
	SyncInterval        time.Duration // how often the change counter is checked (ex: 2s)
	ExpirySweepInterval time.Duration // how often expired replacement values are cleared (ex: 1m)
	LoadTimeout         time.Duration // hard bound on one load, remote storms included (ex: 30s)
	LoadMaxAttempts     int           // merge passes per load, 0 = bounded by LoadTimeout only
	TokenMaxDepth       int           // replacement expansion depth before giving up

	// Redis (shared store). Empty RedisAddr keeps the shared store in memory.
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts
	SyncChannel           string        // pub/sub channel carrying change notices

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "127.0.0.1/32, ::1")
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	// Launch planning rate limit per client. PlanBurst 0 disables it.
	PlanBurst        int
	PlanRefillPerMin int
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenAddr:      getenv("LAUNCHBAR_LISTEN_ADDR", "127.0.0.1:8080"),
		ShutdownTimeout: mustDuration("LAUNCHBAR_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("LAUNCHBAR_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("LAUNCHBAR_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LAUNCHBAR_PRETTY_LOG", true),

		// Device & stores
		DeviceID:     getenv("LAUNCHBAR_DEVICE_ID", hostname()),
		DBPath:       getenv("LAUNCHBAR_DB_PATH", "data/launchbar.db"),
		BookmarkFile: getenv("LAUNCHBAR_BOOKMARK_FILE", ""),

		// Hierarchy
		SyncInterval:        mustDuration("LAUNCHBAR_SYNC_INTERVAL", 2*time.Second),
		ExpirySweepInterval: mustDuration("LAUNCHBAR_EXPIRY_SWEEP_INTERVAL", time.Minute),
		LoadTimeout:         mustDuration("LAUNCHBAR_LOAD_TIMEOUT", 30*time.Second),
		LoadMaxAttempts:     getenvInt("LAUNCHBAR_LOAD_MAX_ATTEMPTS", 0),
		TokenMaxDepth:       getenvInt("LAUNCHBAR_TOKEN_MAX_DEPTH", 32),

		// Redis settings
		RedisAddr:             getenv("LAUNCHBAR_REDIS_ADDR", ""),
		RedisUser:             getenv("LAUNCHBAR_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LAUNCHBAR_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("LAUNCHBAR_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("LAUNCHBAR_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),
		SyncChannel:           getenv("LAUNCHBAR_SYNC_CHANNEL", "launchbar:changes"),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LAUNCHBAR_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("LAUNCHBAR_ALLOWED_CIDRS", "127.0.0.1/32, ::1/128")),
		TrustProxy:   mustBool("LAUNCHBAR_TRUST_PROXY", false),

		PlanBurst:        getenvInt("LAUNCHBAR_PLAN_BURST", 30),
		PlanRefillPerMin: getenvInt("LAUNCHBAR_PLAN_REFILL_PER_MIN", 120),
	}

	cfg.validate()

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// validate panics on combinations the service cannot start with.
func (c *Config) validate() {
	if c.RedisAddr != "" && c.RedisPasswordRequired && c.RedisPassword == "" {
		panic("❌ FATAL: LAUNCHBAR_REDIS_PASSWORD is required when LAUNCHBAR_REDIS_PASSWORD_REQUIRED=true")
	}
	if c.TokenMaxDepth < 1 {
		panic(fmt.Sprintf("❌ FATAL: LAUNCHBAR_TOKEN_MAX_DEPTH must be >= 1, got %d", c.TokenMaxDepth))
	}
	if c.LoadMaxAttempts < 0 {
		panic(fmt.Sprintf("❌ FATAL: LAUNCHBAR_LOAD_MAX_ATTEMPTS must be >= 0, got %d", c.LoadMaxAttempts))
	}
	if c.LoadTimeout <= 0 {
		panic("❌ FATAL: LAUNCHBAR_LOAD_TIMEOUT must be > 0")
	}
	if c.RequestTimeout <= 0 {
		panic("❌ FATAL: LAUNCHBAR_REQUEST_TIMEOUT must be > 0")
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// SharedStoreEnabled reports whether the shared store lives in redis.
func (c *Config) SharedStoreEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "launchbar"
	}
	return h
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
