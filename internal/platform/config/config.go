package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string

	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
	Office      OfficeConfig
	Cache       CacheConfig

	JWTSigningKey string
	TokenTTL      time.Duration
	AdminToken    string

	// AutoMigrate applies embedded migrations at startup.
	AutoMigrate bool
}

// RedisConfig configures the roster/leave snapshot cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures confirmation events. No brokers means events are only logged.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// OfficeConfig holds the calendar rules of the office.
type OfficeConfig struct {
	Location *time.Location
	// Cutoff is the time of day after which "today" means the next working day.
	Cutoff time.Duration
}

type CacheConfig struct {
	TTL                  time.Duration
	LeaveRefreshSchedule string
}

// Load reads a .env file when present, then builds the config from the environment.
func Load(files ...string) (Server, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// existing environment wins over the file
		if err := godotenv.Load(f); err != nil {
			return Server{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:          getEnv("PRESENCE_ADDR", ":8080"),
		Environment:   getEnv("PRESENCE_ENV", "local"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		AdminToken:    os.Getenv("ADMIN_API_TOKEN"),
		AutoMigrate:   getBool("DB_AUTO_MIGRATE", true),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:  splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:    getEnv("KAFKA_ATTENDANCE_TOPIC", "attendance.confirmed"),
			ClientID: getEnv("KAFKA_CLIENT_ID", "presence"),
		},
		Cache: CacheConfig{
			TTL:                  getDuration("CACHE_TTL", 5*time.Minute),
			LeaveRefreshSchedule: getEnv("LEAVE_REFRESH_SCHEDULE", "@every 5m"),
		},
	}

	var err error
	cfg.TokenTTL = getDuration("TOKEN_TTL", 12*time.Hour)

	cfg.Office.Location, err = time.LoadLocation(getEnv("OFFICE_TIMEZONE", "Europe/London"))
	if err != nil {
		return Server{}, fmt.Errorf("OFFICE_TIMEZONE: %w", err)
	}
	cfg.Office.Cutoff, err = parseClock(getEnv("OFFICE_CUTOFF", "17:30"))
	if err != nil {
		return Server{}, fmt.Errorf("OFFICE_CUTOFF: %w", err)
	}

	if cfg.JWTSigningKey == "" {
		if cfg.Environment != "local" {
			return Server{}, fmt.Errorf("JWT_SIGNING_KEY is required outside local")
		}
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg, nil
}

// parseClock parses "HH:MM" into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
