package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	// Cache tier for progress records. Empty RedisAddr falls back to the
	// in-process cache.
	RedisAddr     string
	RedisDB       int
	CacheTTL      time.Duration
	FlushSchedule string // cron expression for the dirty-progress flush job

	EnableLocalAuth bool

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	// Completion thresholds (percent required to pass the forward gate).
	VideoRequiredPct float64
	AudioRequiredPct float64
	TextRequiredPct  float64

	// Gating / navigation tuning.
	GateMessageWindow time.Duration // suppress duplicate gate messages within this window
	WheelThreshold    float64       // accumulated wheel delta per logical step
	WheelCooldown     time.Duration // minimum spacing between wheel-driven steps
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:      mode,
		HTTPAddr:  addr,
		PublicURL: os.Getenv("PUBLIC_URL"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisDB:       envInt("REDIS_DB", 0),
		CacheTTL:      envDuration("CACHE_TTL", 30*24*time.Hour),
		FlushSchedule: envOr("FLUSH_SCHEDULE", "@every 30s"),

		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", true),

		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://app.brightpath.dev"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:3010"),

		VideoRequiredPct: envFloat("VIDEO_REQUIRED_PCT", 80),
		AudioRequiredPct: envFloat("AUDIO_REQUIRED_PCT", 80),
		TextRequiredPct:  envFloat("TEXT_REQUIRED_PCT", 80),

		GateMessageWindow: envDuration("GATE_MESSAGE_WINDOW", 1200*time.Millisecond),
		WheelThreshold:    envFloat("WHEEL_THRESHOLD", 120),
		WheelCooldown:     envDuration("WHEEL_COOLDOWN", 400*time.Millisecond),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
