package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// DATABASE_URL wins when set; otherwise the URL is assembled from parts.
	DBURL        string
	DBConfigured bool
	DBMaxConns   int

	AdminAPIBaseURL string
	ProxyCacheTTL   time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string

	SignupRateLimit  int
	SignupRateWindow time.Duration

	OTLPEndpoint string
}

func Load() Config {
	// .env is a dev convenience; absence is fine.
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)

	dbURL := os.Getenv("DATABASE_URL")
	configured := dbURL != ""

	if dbURL == "" {
		dbURL = buildDBURL()
	}

	return Config{
		Env:              env,
		Port:             port,
		DBURL:            dbURL,
		DBConfigured:     configured,
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 5),
		AdminAPIBaseURL:  getEnv("ADMIN_API_BASE_URL", "https://nexus-admin-bay.vercel.app"),
		ProxyCacheTTL:    time.Duration(getEnvInt("PROXY_CACHE_TTL_SECONDS", 30)) * time.Second,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		AllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		SignupRateLimit:  getEnvInt("SIGNUP_RATE_LIMIT", 10),
		SignupRateWindow: time.Duration(getEnvInt("SIGNUP_RATE_WINDOW_SECONDS", 60)) * time.Second,
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "nexus")
	pass := getEnv("DB_PASSWORD", "nexus")
	name := getEnv("DB_NAME", "nexus")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
