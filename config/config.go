package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
)

// SpectatorConfig holds the optional WebSocket feed settings. An empty Addr
// disables the feed; an empty JWKSURL admits every viewer.
type SpectatorConfig struct {
	Addr    string `json:"addr"`
	JWKSURL string `json:"jwks_url"`
	Issuer  string `json:"issuer"`
}

// Config holds all configurable match parameters.
type Config struct {
	MatchName   string   `json:"match_name"`
	Game        string   `json:"game"` // e.g. "holdem.limit.2p"
	PlayerNames []string `json:"player_names"`
	SeatAddrs   []string `json:"seat_addrs"` // one listen address per seat
	LogDir      string   `json:"log_dir"`

	Hands uint32 `json:"hands"`
	Seed  uint64 `json:"seed"` // 0 means derive from the clock at startup

	MaxInvalidActions  uint32 `json:"max_invalid_actions"`
	MaxResponseMicros  uint64 `json:"max_response_micros"`
	MaxUsedHandMicros  uint64 `json:"max_used_hand_micros"`
	MaxUsedMatchMicros uint64 `json:"max_used_match_micros"`

	// StartTimeoutMS bounds the wait for each seat to connect; negative
	// waits indefinitely.
	StartTimeoutMS int `json:"start_timeout_ms"`

	FixedSeats            bool `json:"fixed_seats"`
	Quiet                 bool `json:"quiet"`
	Append                bool `json:"append"`
	EnableLogFile         bool `json:"enable_log_file"`
	EnableTransactionFile bool `json:"enable_transaction_file"`

	Spectator SpectatorConfig `json:"spectator"`

	// DatabaseURL enables result persistence; empty disables. Env only,
	// never config.json, so credentials stay out of checked-in files.
	DatabaseURL string `json:"-"`
}

// Defaults returns a Config with the classic tournament settings.
func Defaults() *Config {
	return &Config{
		MatchName:             "match",
		Game:                  "holdem.limit.2p",
		PlayerNames:           []string{"p1", "p2"},
		SeatAddrs:             []string{":18790", ":18791"},
		LogDir:                ".",
		Hands:                 1000,
		Seed:                  0,
		MaxInvalidActions:     4294967295,
		MaxResponseMicros:     600000000,
		MaxUsedHandMicros:     600000000,
		MaxUsedMatchMicros:    7000000000,
		StartTimeoutMS:        -1,
		FixedSeats:            false,
		Quiet:                 false,
		Append:                false,
		EnableLogFile:         true,
		EnableTransactionFile: true,
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	// Try to load from config.json
	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	// Environment variable overrides
	overrideString(&cfg.MatchName, "MATCH_NAME")
	overrideString(&cfg.Game, "GAME_DEF")
	overrideStrings(&cfg.PlayerNames, "PLAYER_NAMES")
	overrideStrings(&cfg.SeatAddrs, "SEAT_ADDRS")
	overrideString(&cfg.LogDir, "LOG_DIR")
	overrideUint32(&cfg.Hands, "NUM_HANDS")
	overrideUint64(&cfg.Seed, "SEED")
	overrideUint32(&cfg.MaxInvalidActions, "MAX_INVALID_ACTIONS")
	overrideUint64(&cfg.MaxResponseMicros, "MAX_RESPONSE_MICROS")
	overrideUint64(&cfg.MaxUsedHandMicros, "MAX_USED_HAND_MICROS")
	overrideUint64(&cfg.MaxUsedMatchMicros, "MAX_USED_MATCH_MICROS")
	overrideInt(&cfg.StartTimeoutMS, "START_TIMEOUT_MS")
	overrideBool(&cfg.FixedSeats, "FIXED_SEATS")
	overrideBool(&cfg.Quiet, "QUIET")
	overrideBool(&cfg.Append, "APPEND_LOGS")
	overrideBool(&cfg.EnableLogFile, "ENABLE_LOG_FILE")
	overrideBool(&cfg.EnableTransactionFile, "ENABLE_TRANSACTION_FILE")
	overrideString(&cfg.Spectator.Addr, "SPECTATOR_ADDR")
	overrideString(&cfg.Spectator.JWKSURL, "SPECTATOR_JWKS_URL")
	overrideString(&cfg.Spectator.Issuer, "SPECTATOR_ISSUER")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideUint32(field *uint32, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.ParseUint(val, 10, 32); err == nil {
			*field = uint32(n)
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideUint64(field *uint64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*field = b
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

// overrideStrings reads a comma-separated list.
func overrideStrings(field *[]string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		*field = parts
	}
}
