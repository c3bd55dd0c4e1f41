package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ProductionAPIURL is used when APP_ENV=production and no override is set.
	ProductionAPIURL = "https://pfinalprogramacionwebg11.onrender.com"
	// LocalAPIURL is the fallback for every other environment.
	LocalAPIURL = "http://127.0.0.1:8000"
)

type Config struct {
	Port        string
	Env         string
	LogLevel    string
	APIBaseURL  string
	APITimeout  time.Duration
	JWTSecret   string
	IdleTimeout time.Duration

	DefaultGroupBy  string
	DefaultShowMA   bool
	DefaultTarget   float64
	MovingAvgWindow int
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can inject values.
func FromEnv(getenv func(string) string) Config {
	env := strings.ToLower(strings.TrimSpace(getenv("APP_ENV")))
	if env == "" {
		env = "development"
	}

	return Config{
		Port:            withDefault(getenv("PORT"), "3000"),
		Env:             env,
		LogLevel:        withDefault(getenv("LOG_LEVEL"), "info"),
		APIBaseURL:      ResolveBaseURL(getenv("OSA_API_URL"), env),
		APITimeout:      durationOr(getenv("OSA_API_TIMEOUT"), 15*time.Second),
		JWTSecret:       getenv("JWT_SECRET"),
		IdleTimeout:     durationOr(getenv("SESSION_IDLE_TIMEOUT"), 30*time.Minute),
		DefaultGroupBy:  withDefault(getenv("DASHBOARD_GROUP_BY"), "day"),
		DefaultShowMA:   boolOr(getenv("DASHBOARD_SHOW_MA"), true),
		DefaultTarget:   floatOr(getenv("DASHBOARD_TARGET"), 95),
		MovingAvgWindow: intOr(getenv("DASHBOARD_MA_WINDOW"), 7),
	}
}

// ResolveBaseURL applies the single precedence order for the upstream API:
// explicit override, then the production default, then the local default.
func ResolveBaseURL(override, env string) string {
	if v := strings.TrimSpace(override); v != "" {
		return strings.TrimRight(v, "/")
	}
	if env == "production" || env == "prod" {
		return ProductionAPIURL
	}
	return LocalAPIURL
}

func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func durationOr(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func boolOr(v string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

func floatOr(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

func intOr(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || i <= 0 {
		return def
	}
	return i
}
