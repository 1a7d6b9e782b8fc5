package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/mathflash/internal/difficulty"
	"github.com/vytor/mathflash/internal/logger"
)

type Config struct {
	Addr                 string
	DBPath               string
	LogLevel             string
	MaxPuzzles           int
	DefaultDifficulty    string
	WorkerCount          int
	WorkerQueueSize      int
	SessionIdleMinutes   int
	SweepIntervalMinutes int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or not integers.
func Load() Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	return Config{
		Addr:                 envOr("ADDR", ":8080"),
		DBPath:               envOr("DB_PATH", "file:mathflash.db"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		MaxPuzzles:           envIntOr("MAX_PUZZLES", 10),
		DefaultDifficulty:    envOr("DEFAULT_DIFFICULTY", "Medium"),
		WorkerCount:          envIntOr("WORKER_COUNT", 1),
		WorkerQueueSize:      envIntOr("WORKER_QUEUE_SIZE", 16),
		SessionIdleMinutes:   envIntOr("SESSION_IDLE_MINUTES", 30),
		SweepIntervalMinutes: envIntOr("SWEEP_INTERVAL_MINUTES", 5),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.MaxPuzzles < 1 || c.MaxPuzzles > 1000 {
		problems = append(problems, fmt.Sprintf("MAX_PUZZLES must be between 1 and 1000 (got %d)", c.MaxPuzzles))
	}
	if _, err := difficulty.ParseLevel(c.DefaultDifficulty); err != nil {
		problems = append(problems, fmt.Sprintf("DEFAULT_DIFFICULTY: %v", err))
	}
	if c.WorkerCount < 1 {
		problems = append(problems, fmt.Sprintf("WORKER_COUNT must be positive (got %d)", c.WorkerCount))
	}
	if c.WorkerQueueSize < 1 {
		problems = append(problems, fmt.Sprintf("WORKER_QUEUE_SIZE must be positive (got %d)", c.WorkerQueueSize))
	}
	if c.SessionIdleMinutes < 1 {
		problems = append(problems, fmt.Sprintf("SESSION_IDLE_MINUTES must be positive (got %d)", c.SessionIdleMinutes))
	}
	if c.SweepIntervalMinutes < 1 {
		problems = append(problems, fmt.Sprintf("SWEEP_INTERVAL_MINUTES must be positive (got %d)", c.SweepIntervalMinutes))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// StartingDifficulty returns the parsed DEFAULT_DIFFICULTY, or Medium when it
// does not parse.
func (c Config) StartingDifficulty() difficulty.Level {
	l, err := difficulty.ParseLevel(c.DefaultDifficulty)
	if err != nil {
		return difficulty.Medium
	}
	return l
}

func (c Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
