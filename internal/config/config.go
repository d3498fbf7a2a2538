package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	StockfishPath       string
	StockfishDepth      int
	EnginePoolSize      int
	SRSCardsPath        string
	OpeningsDBPath      string
	LogLevel            string
	AnalysisWorkerCount int
	AnalysisQueueSize   int
	MineCPThreshold     int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		StockfishPath:       envOr("STOCKFISH_PATH", "stockfish"),
		StockfishDepth:      envIntOr("STOCKFISH_DEPTH", 20),
		EnginePoolSize:      envIntOr("ENGINE_POOL_SIZE", 2),
		SRSCardsPath:        envOr("SRS_CARDS_PATH", "data/srs_cards.json"),
		OpeningsDBPath:      envOr("OPENINGS_DB_PATH", "data/openings.db"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		AnalysisWorkerCount: envIntOr("ANALYSIS_WORKER_COUNT", 2),
		AnalysisQueueSize:   envIntOr("ANALYSIS_QUEUE_SIZE", 64),
		MineCPThreshold:     envIntOr("MINE_CP_THRESHOLD", 80),
	}
}

// Validate checks configuration values, collecting all problems into one error.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.StockfishDepth < 1 || c.StockfishDepth > 30 {
		problems = append(problems, fmt.Sprintf("STOCKFISH_DEPTH must be between 1 and 30, got %d", c.StockfishDepth))
	}
	if c.EnginePoolSize < 1 {
		problems = append(problems, fmt.Sprintf("ENGINE_POOL_SIZE must be positive, got %d", c.EnginePoolSize))
	}
	if c.SRSCardsPath == "" {
		problems = append(problems, "SRS_CARDS_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG/INFO/WARN/ERROR, got %q", c.LogLevel))
	}
	if c.AnalysisWorkerCount < 1 {
		problems = append(problems, fmt.Sprintf("ANALYSIS_WORKER_COUNT must be positive, got %d", c.AnalysisWorkerCount))
	}
	if c.AnalysisQueueSize < 1 {
		problems = append(problems, fmt.Sprintf("ANALYSIS_QUEUE_SIZE must be positive, got %d", c.AnalysisQueueSize))
	}
	if c.MineCPThreshold < 0 {
		problems = append(problems, fmt.Sprintf("MINE_CP_THRESHOLD must be non-negative, got %d", c.MineCPThreshold))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
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
