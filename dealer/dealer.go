// Package dealer implements the referee for one match: it admits one
// connection per seat, drives the per-hand game loop against a rules
// engine, enforces the error and timing policy, persists the transaction
// trail and match log, and computes the final scores.
package dealer

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"strings"
	"time"

	"poker-dealer-server/engine"
	"poker-dealer-server/wire"
)

// Broadcaster receives every observer-view state line the match produces.
// Implementations must tolerate being called from the game loop's thread.
type Broadcaster interface {
	Broadcast(line string)
}

// Options configures one match.
type Options struct {
	Rules      engine.Rules
	Names      []string // per-seat display names
	Hands      uint32
	Seed       uint64
	FixedSeats bool
	Limits     Limits

	// LogWriter receives one Log Line per finished hand plus the final
	// SCORE line; nil disables match logging.
	LogWriter io.Writer
	// Transactions persists applied actions and replays any pending
	// records before live play; nil disables the transaction trail.
	Transactions *TransactionLog
	// ScoreWriter additionally receives the final SCORE line (operator
	// output); nil disables.
	ScoreWriter io.Writer
	// Spectators receives observer-view broadcasts; nil disables.
	Spectators Broadcaster

	Logger *slog.Logger
}

type seat struct {
	name     string
	conn     net.Conn
	r        *bufio.Reader
	lastSent string
}

// Dealer runs a single match. It is driven by exactly one goroutine; all
// seats are served sequentially by the same loop.
type Dealer struct {
	rules  engine.Rules
	opts   Options
	policy *Policy
	seats  []*seat
	log    *slog.Logger

	handID      uint32
	player0Seat int
	totals      []float64
}

// New validates the options and builds a Dealer bound to the given per-seat
// connections, one per seat in seat order.
func New(opts Options, conns []net.Conn) (*Dealer, error) {
	n := opts.Rules.NumPlayers()
	if len(conns) != n {
		return nil, fmt.Errorf("game %s needs %d seats, got %d connections", opts.Rules.Name(), n, len(conns))
	}
	if len(opts.Names) != n {
		return nil, fmt.Errorf("game %s needs %d seat names, got %d", opts.Rules.Name(), n, len(opts.Names))
	}
	if opts.Hands == 0 {
		return nil, fmt.Errorf("match must be at least one hand")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &Dealer{
		rules:  opts.Rules,
		opts:   opts,
		policy: NewPolicy(opts.Limits, n),
		log:    opts.Logger,
		totals: make([]float64, n),
	}
	for i, conn := range conns {
		d.seats = append(d.seats, &seat{
			name: opts.Names[i],
			conn: conn,
			r:    bufio.NewReaderSize(conn, wire.MaxLineLen),
		})
	}
	return d, nil
}

// AcceptSeats listens on one address per seat and admits exactly one
// connection for each. A seat that produces no connection within the
// timeout fails the match start; a negative timeout waits indefinitely.
func AcceptSeats(addrs []string, timeout time.Duration, logger *slog.Logger) ([]net.Conn, error) {
	conns := make([]net.Conn, 0, len(addrs))
	closeAll := func() {
		for _, c := range conns {
			c.Close()
		}
	}
	for i, addr := range addrs {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("seat %d listen on %s: %w", i+1, addr, err)
		}
		logger.Info("waiting for seat", "seat", i+1, "addr", ln.Addr().String())
		if timeout >= 0 {
			if tl, ok := ln.(*net.TCPListener); ok {
				tl.SetDeadline(time.Now().Add(timeout))
			}
		}
		conn, err := ln.Accept()
		ln.Close()
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("seat %d did not connect: %w", i+1, err)
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}
		logger.Info("seat connected", "seat", i+1, "remote", conn.RemoteAddr().String())
		conns = append(conns, conn)
	}
	return conns, nil
}

// seatOf returns the seat a player occupies in the current hand.
func (d *Dealer) seatOf(player int) int {
	n := d.rules.NumPlayers()
	return (player + d.player0Seat) % n
}

// playerOf returns the player occupying a seat in the current hand.
func (d *Dealer) playerOf(seatIdx int) int {
	n := d.rules.NumPlayers()
	return (seatIdx + n - d.player0Seat) % n
}

// handRNG returns the card source for one hand. Keying the stream on both
// the match seed and the hand id lets recovery replay re-deal any hand
// without re-dealing its predecessors.
func handRNG(seed uint64, handID uint32) *rand.Rand {
	mixed := seed ^ (uint64(handID)+1)*0x9e3779b97f4a7c15
	return rand.New(rand.NewSource(int64(mixed)))
}

// FormatValue renders a chip value the way log lines carry them: six
// decimals with trailing zeros, then any bare decimal point, trimmed.
func FormatValue(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatScoreLine renders the final score line:
// "SCORE:<v1>|...|<vn>:<name1>|...|<namen>", one entry per seat.
func FormatScoreLine(totals []float64, names []string) string {
	vals := make([]string, len(totals))
	for i, v := range totals {
		vals[i] = FormatValue(v)
	}
	return "SCORE:" + strings.Join(vals, "|") + ":" + strings.Join(names, "|")
}

// logLine renders one finished hand's Log Line: the omniscient state, each
// player's value and each player's name, both in player order.
func (d *Dealer) logLine(s *engine.State, values []float64) string {
	n := d.rules.NumPlayers()
	vals := make([]string, n)
	names := make([]string, n)
	for p := 0; p < n; p++ {
		vals[p] = FormatValue(values[p])
		names[p] = d.seats[d.seatOf(p)].name
	}
	return engine.EncodeState(d.rules, s) + ":" + strings.Join(vals, "|") + ":" + strings.Join(names, "|")
}
