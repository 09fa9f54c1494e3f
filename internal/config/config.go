package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DoyleJ11/petdeal-backend/internal/engine"
	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	LogLevel        string
	Addr            string
	AllowedOrigins  []string
	CatalogPath     string
	Settings        engine.Settings
	BotDelay        time.Duration
	GameLinger      time.Duration
	GameIdleTimeout time.Duration
	ShutdownTimeout time.Duration
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	defaults := engine.DefaultSettings()
	cfg := Config{
		Env:            getEnv("APP_ENV", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Addr:           getEnv("ADDR", ":8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		CatalogPath:    os.Getenv("CATALOG_PATH"),
	}

	if cfg.Env != "dev" && cfg.Env != "prod" {
		return Config{}, fmt.Errorf("APP_ENV: want dev or prod, got %q", cfg.Env)
	}

	var err error
	if cfg.Settings.CardsPerTurnStart, err = getEnvInt("CARDS_PER_TURN_START", defaults.CardsPerTurnStart); err != nil {
		return Config{}, err
	}
	if cfg.Settings.MaxCardsPerTurn, err = getEnvInt("MAX_CARDS_PER_TURN", defaults.MaxCardsPerTurn); err != nil {
		return Config{}, err
	}
	if cfg.Settings.SetsToWin, err = getEnvInt("SETS_TO_WIN", defaults.SetsToWin); err != nil {
		return Config{}, err
	}
	if cfg.Settings.MaxPlayers, err = getEnvInt("MAX_PLAYERS", defaults.MaxPlayers); err != nil {
		return Config{}, err
	}
	if err := cfg.Settings.Validate(); err != nil {
		return Config{}, fmt.Errorf("game settings: %w", err)
	}

	if cfg.BotDelay, err = getEnvDuration("BOT_DELAY", 600*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.GameLinger, err = getEnvDuration("GAME_LINGER", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.GameIdleTimeout, err = getEnvDuration("GAME_IDLE_TIMEOUT", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
