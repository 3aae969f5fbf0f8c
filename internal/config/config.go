package config

import (
	"os"
	"strconv"
	"time"

	"farm_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	BotToken      string
	JWTSecret     string
	AllowedOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Farm engine tuning
	TickInterval time.Duration
	IdleTTL      time.Duration

	// Per-player limits for farm operations
	FarmRateLimit  int
	FarmRateWindow int
}

// Load reads configuration from the environment, with .env as a fallback
// for local development. Missing required values are fatal.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			redisDB = n
		}
	}

	tickInterval := time.Second
	if v := os.Getenv("FARM_TICK_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			tickInterval = time.Duration(n) * time.Millisecond
		}
	}

	idleTTL := 10 * time.Minute
	if v := os.Getenv("FARM_IDLE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			idleTTL = time.Duration(n) * time.Second
		}
	}

	farmRateLimit := 60
	if v := os.Getenv("FARM_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			farmRateLimit = n
		}
	}

	farmRateWindow := 60
	if v := os.Getenv("FARM_RATE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			farmRateWindow = n
		}
	}

	return &Config{
		AppPort:        port,
		DatabaseURL:    dbURL,
		BotToken:       botToken,
		JWTSecret:      jwtSecret,
		AllowedOrigin:  os.Getenv("ALLOWED_ORIGIN"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		TickInterval:   tickInterval,
		IdleTTL:        idleTTL,
		FarmRateLimit:  farmRateLimit,
		FarmRateWindow: farmRateWindow,
	}
}
