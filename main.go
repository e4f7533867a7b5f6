package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"

	"poker-dealer-server/api"
	"poker-dealer-server/auth"
	"poker-dealer-server/config"
	"poker-dealer-server/dealer"
	"poker-dealer-server/limit"
	"poker-dealer-server/loghandler"
	"poker-dealer-server/spectator"
	"poker-dealer-server/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found; using environment variables")
	}

	cfg := config.Load()

	level := slog.LevelDebug
	if cfg.Quiet {
		level = slog.LevelWarn
	}
	logger := slog.New(loghandler.NewCompactHandler(os.Stderr, level))
	slog.SetDefault(logger)

	rules, err := limit.FromName(cfg.Game)
	if err != nil {
		fatal(logger, "unknown game", "game", cfg.Game, "err", err)
	}
	n := rules.NumPlayers()
	if len(cfg.PlayerNames) != n || len(cfg.SeatAddrs) != n {
		fatal(logger, "configuration mismatch",
			"game", cfg.Game, "players", n, "names", len(cfg.PlayerNames), "addrs", len(cfg.SeatAddrs))
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.Info("match configured", "name", cfg.MatchName, "game", cfg.Game, "hands", cfg.Hands, "seed", seed)

	opts := dealer.Options{
		Rules:      rules,
		Names:      cfg.PlayerNames,
		Hands:      cfg.Hands,
		Seed:       seed,
		FixedSeats: cfg.FixedSeats,
		Limits: dealer.Limits{
			MaxInvalidActions:  cfg.MaxInvalidActions,
			MaxResponseMicros:  cfg.MaxResponseMicros,
			MaxUsedHandMicros:  cfg.MaxUsedHandMicros,
			MaxUsedMatchMicros: cfg.MaxUsedMatchMicros,
		},
		Logger: logger,
	}

	if cfg.EnableLogFile {
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if cfg.Append {
			flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		path := filepath.Join(cfg.LogDir, cfg.MatchName+".log")
		f, err := os.OpenFile(path, flags, 0o644)
		if err != nil {
			fatal(logger, "cannot open match log", "path", path, "err", err)
		}
		defer f.Close()
		opts.LogWriter = f
	}
	if cfg.EnableTransactionFile {
		path := filepath.Join(cfg.LogDir, cfg.MatchName+".tlog")
		tlog, err := dealer.OpenTransactionLog(path, cfg.Append)
		if err != nil {
			fatal(logger, "cannot open transaction log", "path", path, "err", err)
		}
		defer tlog.Close()
		opts.Transactions = tlog
	}

	ctx := context.Background()
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "cannot connect to result store", "err", err)
	}
	defer store.Close()

	if cfg.Spectator.Addr != "" {
		var authorize spectator.Authorizer
		if cfg.Spectator.JWKSURL != "" {
			validator, err := auth.NewValidator(cfg.Spectator.JWKSURL, cfg.Spectator.Issuer, nil)
			if err != nil {
				fatal(logger, "cannot set up spectator auth", "err", err)
			}
			authorize = func(token string) error {
				_, err := validator.Validate(token)
				return err
			}
		}
		hub := spectator.NewHub(logger, authorize)
		go hub.Run(ctx)
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.ServeWS)
		if store != nil {
			api.NewHandler(store, logger).Register(mux)
		}
		go func() {
			logger.Info("spectator feed listening", "addr", cfg.Spectator.Addr)
			if err := http.ListenAndServe(cfg.Spectator.Addr, mux); err != nil {
				logger.Error("spectator feed stopped", "err", err)
			}
		}()
		opts.Spectators = hub
	}

	timeout := time.Duration(cfg.StartTimeoutMS) * time.Millisecond
	if cfg.StartTimeoutMS < 0 {
		timeout = -1
	}
	conns, err := dealer.AcceptSeats(cfg.SeatAddrs, timeout, logger)
	if err != nil {
		fatal(logger, "seat admission failed", "err", err)
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	d, err := dealer.New(opts, conns)
	if err != nil {
		fatal(logger, "cannot start match", "err", err)
	}
	totals, err := d.Run()
	if err != nil {
		fatal(logger, "match aborted", "err", err)
	}

	scoreLine := dealer.FormatScoreLine(totals, cfg.PlayerNames)
	pterm.Success.Println(scoreLine)
	if id, err := store.InsertMatchResult(ctx, storage.MatchResult{
		MatchName: cfg.MatchName,
		Game:      cfg.Game,
		Hands:     cfg.Hands,
		Seed:      seed,
		ScoreLine: scoreLine,
		Names:     cfg.PlayerNames,
		Totals:    totals,
	}); err != nil {
		logger.Error("failed to persist match result", "err", err)
	} else if id != "" {
		logger.Info("match result stored", "id", id, "tag", "storage")
	}
}

func fatal(logger *slog.Logger, msg string, args ...any) {
	logger.Error(msg, args...)
	os.Exit(1)
}
