package config

import (
	"os"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Game != "holdem.limit.2p" {
		t.Errorf("expected Game=holdem.limit.2p, got %q", cfg.Game)
	}
	if cfg.Hands != 1000 {
		t.Errorf("expected Hands=1000, got %d", cfg.Hands)
	}
	if len(cfg.PlayerNames) != 2 || len(cfg.SeatAddrs) != 2 {
		t.Errorf("expected 2 player names and 2 seat addrs, got %d and %d", len(cfg.PlayerNames), len(cfg.SeatAddrs))
	}
	if cfg.MaxResponseMicros != 600000000 {
		t.Errorf("expected MaxResponseMicros=600000000, got %d", cfg.MaxResponseMicros)
	}
	if cfg.MaxUsedMatchMicros != 7000000000 {
		t.Errorf("expected MaxUsedMatchMicros=7000000000, got %d", cfg.MaxUsedMatchMicros)
	}
	if cfg.StartTimeoutMS != -1 {
		t.Errorf("expected StartTimeoutMS=-1, got %d", cfg.StartTimeoutMS)
	}
	if !cfg.EnableLogFile || !cfg.EnableTransactionFile {
		t.Error("expected log and transaction files enabled by default")
	}
	if cfg.FixedSeats || cfg.Append || cfg.Quiet {
		t.Error("expected FixedSeats, Append and Quiet off by default")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	os.Setenv("GAME_DEF", "kuhn.limit.3p")
	os.Setenv("NUM_HANDS", "3000")
	os.Setenv("PLAYER_NAMES", "alpha, beta, gamma")
	os.Setenv("SEAT_ADDRS", ":20001,:20002,:20003")
	os.Setenv("FIXED_SEATS", "true")
	os.Setenv("SEED", "42")
	defer func() {
		os.Unsetenv("GAME_DEF")
		os.Unsetenv("NUM_HANDS")
		os.Unsetenv("PLAYER_NAMES")
		os.Unsetenv("SEAT_ADDRS")
		os.Unsetenv("FIXED_SEATS")
		os.Unsetenv("SEED")
	}()

	cfg := Load()

	if cfg.Game != "kuhn.limit.3p" {
		t.Errorf("expected Game=kuhn.limit.3p after env override, got %q", cfg.Game)
	}
	if cfg.Hands != 3000 {
		t.Errorf("expected Hands=3000 after env override, got %d", cfg.Hands)
	}
	if len(cfg.PlayerNames) != 3 || cfg.PlayerNames[1] != "beta" {
		t.Errorf("expected trimmed 3-name list, got %v", cfg.PlayerNames)
	}
	if len(cfg.SeatAddrs) != 3 || cfg.SeatAddrs[2] != ":20003" {
		t.Errorf("expected 3 seat addrs, got %v", cfg.SeatAddrs)
	}
	if !cfg.FixedSeats {
		t.Error("expected FixedSeats=true after env override")
	}
	if cfg.Seed != 42 {
		t.Errorf("expected Seed=42 after env override, got %d", cfg.Seed)
	}
	// Non-overridden fields should remain default
	if cfg.MaxResponseMicros != 600000000 {
		t.Errorf("expected MaxResponseMicros=600000000 (default), got %d", cfg.MaxResponseMicros)
	}
}

func TestLoadWithInvalidEnv(t *testing.T) {
	os.Setenv("NUM_HANDS", "invalid")
	defer os.Unsetenv("NUM_HANDS")

	cfg := Load()

	// Should fall back to default when env value is invalid
	if cfg.Hands != 1000 {
		t.Errorf("expected Hands=1000 (default) with invalid env, got %d", cfg.Hands)
	}
}
