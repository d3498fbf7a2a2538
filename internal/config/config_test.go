package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndavis/chesstutor/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:                ":8080",
		StockfishPath:       "stockfish",
		StockfishDepth:      20,
		EnginePoolSize:      2,
		SRSCardsPath:        "data/srs_cards.json",
		OpeningsDBPath:      "data/openings.db",
		LogLevel:            "INFO",
		AnalysisWorkerCount: 2,
		AnalysisQueueSize:   64,
		MineCPThreshold:     80,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_StockfishDepthBounds(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		ok    bool
	}{
		{name: "zero depth", depth: 0, ok: false},
		{name: "negative depth", depth: -3, ok: false},
		{name: "too deep", depth: 31, ok: false},
		{name: "minimum depth", depth: 1, ok: true},
		{name: "maximum depth", depth: 30, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.StockfishDepth = tt.depth

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "STOCKFISH_DEPTH")
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR", "warn"} {
		cfg := validConfig()
		cfg.LogLevel = level
		assert.NoError(t, cfg.Validate(), "level %s should be accepted", level)
	}

	cfg := validConfig()
	cfg.LogLevel = "LOUD"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""
	cfg.AnalysisWorkerCount = 0
	cfg.AnalysisQueueSize = 0
	cfg.MineCPThreshold = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
	assert.Contains(t, err.Error(), "ANALYSIS_WORKER_COUNT")
	assert.Contains(t, err.Error(), "ANALYSIS_QUEUE_SIZE")
	assert.Contains(t, err.Error(), "MINE_CP_THRESHOLD")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("SRS_CARDS_PATH", "custom/cards.json")
	t.Setenv("STOCKFISH_DEPTH", "12")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom/cards.json", cfg.SRSCardsPath)
	assert.Equal(t, 12, cfg.StockfishDepth)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("STOCKFISH_DEPTH", "deep")

	cfg := config.Load()
	assert.Equal(t, 20, cfg.StockfishDepth)
}
