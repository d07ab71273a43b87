package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the tradeOS core.
type Config struct {
	Port string

	// Simulator defaults (per-session overrides come from market.yaml)
	InitialPrice    float64
	Volatility      float64
	TickIntervalMs  int
	Difficulty      string
	StartingBalance float64

	// Pattern toggles (all enabled by default)
	EnablePump      bool
	EnableDump      bool
	EnableRug       bool
	EnableWhale     bool
	EnableParabolic bool
	EnableSlowGrind bool
	EnableChop      bool

	// Historical bootstrap
	HistoryHours           int
	HistoryIntervalMinutes int

	// Market presets file (YAML); empty disables
	MarketConfigPath string

	// AI trader bot
	BotEnabled    bool
	BotUserID     string
	BotDifficulty string
	BotEveryTicks int

	// Database
	DBPath string

	// Auth
	JWTSecret string

	// Localization
	Language string // "en" or "zh"
}

// Load reads environment variables (optionally via .env) into Config.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	// Database path: prefer DB_PATH, then DATABASE_PATH for backward compatibility.
	dbPath := getEnv("DB_PATH", "")
	if dbPath == "" {
		dbPath = getEnv("DATABASE_PATH", "./data/tradeos.db")
	}

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		InitialPrice:           getEnvFloat("INITIAL_PRICE", 1.0),
		Volatility:             getEnvFloat("VOLATILITY", 0.02),
		TickIntervalMs:         getEnvInt("TICK_INTERVAL_MS", 1000),
		Difficulty:             strings.ToLower(getEnv("DEFAULT_DIFFICULTY", "noob")),
		StartingBalance:        getEnvFloat("STARTING_BALANCE", 1000.0),
		EnablePump:             getEnv("ENABLE_PATTERN_PUMP", "true") == "true",
		EnableDump:             getEnv("ENABLE_PATTERN_DUMP", "true") == "true",
		EnableRug:              getEnv("ENABLE_PATTERN_RUG", "true") == "true",
		EnableWhale:            getEnv("ENABLE_PATTERN_WHALE", "true") == "true",
		EnableParabolic:        getEnv("ENABLE_PATTERN_PARABOLIC", "true") == "true",
		EnableSlowGrind:        getEnv("ENABLE_PATTERN_SLOW_GRIND", "true") == "true",
		EnableChop:             getEnv("ENABLE_PATTERN_CHOP", "true") == "true",
		HistoryHours:           getEnvInt("HISTORY_HOURS", 24),
		HistoryIntervalMinutes: getEnvInt("HISTORY_INTERVAL_MINUTES", 1),
		MarketConfigPath:       getEnv("MARKET_CONFIG", "market.yaml"),
		BotEnabled:             getEnv("AI_TRADER_ENABLED", "false") == "true",
		BotUserID:              getEnv("AI_TRADER_ID", "ai-degen-bot"),
		BotDifficulty:          strings.ToLower(getEnv("AI_TRADER_DIFFICULTY", "degen")),
		BotEveryTicks:          getEnvInt("AI_TRADER_EVERY_TICKS", 5),
		DBPath:                 dbPath,
		JWTSecret:              getEnv("JWT_SECRET", "dev-secret"),
		Language:               getEnv("LANGUAGE", "en"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
