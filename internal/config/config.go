// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all board, effect, and server
// settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// BOARD CONFIGURATION
// =============================================================================

// BoardConfig holds the battle board settings shared by the simulation and
// the view engine.
type BoardConfig struct {
	Size         int           // Board is Size x Size cells
	TurnInterval time.Duration // How often the turn loop resolves a turn
	Seed         int64         // RNG seed, 0 = derive from wall clock
}

// DefaultBoard returns the default board configuration.
func DefaultBoard() BoardConfig {
	return BoardConfig{
		Size:         8,
		TurnInterval: 1 * time.Second,
	}
}

// BoardFromEnv returns board configuration with environment variable
// overrides. Environment variables take precedence over defaults.
func BoardFromEnv() BoardConfig {
	cfg := DefaultBoard()

	if s := getEnvInt("BOARD_SIZE", 0); s > 0 {
		cfg.Size = s
	}
	if d := getEnvDuration("TURN_INTERVAL", 0); d > 0 {
		cfg.TurnInterval = d
	}
	if seed := getEnvInt("BATTLE_SEED", 0); seed != 0 {
		cfg.Seed = int64(seed)
	}

	return cfg
}

// =============================================================================
// EFFECT TIMINGS
// =============================================================================

// EffectTimings holds how long each transient visual effect stays visible.
// Tuned for readability at a 1-second turn interval.
type EffectTimings struct {
	Flash        time.Duration // attack-pattern flash on placement
	Shake        time.Duration // cell shake on hit
	Popup        time.Duration // floating damage numbers
	SlideQuantum time.Duration // slide offsets clear after two quanta
}

// DefaultTimings returns the default effect timings.
func DefaultTimings() EffectTimings {
	return EffectTimings{
		Flash:        800 * time.Millisecond,
		Shake:        400 * time.Millisecond,
		Popup:        700 * time.Millisecond,
		SlideQuantum: 50 * time.Millisecond,
	}
}

// TimingsFromEnv returns effect timings with environment variable overrides.
func TimingsFromEnv() EffectTimings {
	cfg := DefaultTimings()

	if d := getEnvDuration("FLASH_DURATION", 0); d > 0 {
		cfg.Flash = d
	}
	if d := getEnvDuration("SHAKE_DURATION", 0); d > 0 {
		cfg.Shake = d
	}
	if d := getEnvDuration("POPUP_DURATION", 0); d > 0 {
		cfg.Popup = d
	}
	if d := getEnvDuration("SLIDE_QUANTUM", 0); d > 0 {
		cfg.SlideQuantum = d
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int
	BattleLogPath string // empty disables the NDJSON audit log
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port: 3000,
	}
}

// ServerFromEnv returns server configuration with environment variable
// overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if path := os.Getenv("BATTLE_LOG_PATH"); path != "" {
		cfg.BattleLogPath = path
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Board   BoardConfig
	Timings EffectTimings
	Server  ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Board:   BoardFromEnv(),
		Timings: TimingsFromEnv(),
		Server:  ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
