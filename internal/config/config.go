/*
Package config reads the process configuration from the environment,
optionally seeded from a .env file.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"PalavraCerta/internal/database"
	"PalavraCerta/internal/geminiservice"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Port     int
	LogLevel zerolog.Level

	Gemini geminiservice.Config

	StoreDriver    string
	StoreCacheSize int
	StoreTTL       time.Duration
	DB             database.Config
	RedisURL       string

	SessionSecret string
	DisplayTZ     *time.Location
	RateLimitRPS  float64
	AllowOrigins  []string
}

// Load reads files (default ".env") into the environment without overriding
// variables already set, then builds a Config. A missing .env is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	cfg := Config{
		Gemini: geminiservice.Config{
			APIKey:      os.Getenv("GEMINI_API_KEY"),
			BaseURL:     getEnv("GEMINI_BASE_URL", geminiservice.DefaultBaseURL),
			FlashModel:  getEnv("GEMINI_MODEL_FLASH", geminiservice.DefaultFlashModel),
			ProModel:    getEnv("GEMINI_MODEL_PRO", geminiservice.DefaultProModel),
			SpeechModel: getEnv("GEMINI_MODEL_TTS", geminiservice.DefaultSpeechModel),
			Voice:       getEnv("GEMINI_VOICE", geminiservice.DefaultVoice),
		},
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		DB: database.Config{
			Host:     getEnv("BLUEPRINT_DB_HOST", "localhost"),
			Port:     getEnv("BLUEPRINT_DB_PORT", "5432"),
			Database: os.Getenv("BLUEPRINT_DB_DATABASE"),
			Username: os.Getenv("BLUEPRINT_DB_USERNAME"),
			Password: os.Getenv("BLUEPRINT_DB_PASSWORD"),
			Schema:   getEnv("BLUEPRINT_DB_SCHEMA", "public"),
		},
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		AllowOrigins:  splitList(getEnv("CORS_ALLOW_ORIGINS", "https://*,http://*")),
	}

	var err error
	if cfg.Port, err = getInt("PORT", 8080); err != nil {
		return Config{}, err
	}
	if cfg.StoreCacheSize, err = getInt("STORE_CACHE_SIZE", 1024); err != nil {
		return Config{}, err
	}
	if cfg.StoreTTL, err = getDuration("STORE_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 10); err != nil {
		return Config{}, err
	}

	switch cfg.StoreDriver {
	case DriverMemory, DriverPostgres, DriverRedis:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be memory, postgres or redis, got %q", cfg.StoreDriver)
	}

	if cfg.LogLevel, err = zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if cfg.DisplayTZ, err = time.LoadLocation(getEnv("DISPLAY_TZ", "America/Sao_Paulo")); err != nil {
		return Config{}, fmt.Errorf("invalid DISPLAY_TZ: %w", err)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
