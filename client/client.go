// Package client plays one seat of a match: it connects to the dealer,
// announces its protocol version, and runs the receive-state/send-action
// loop, delegating action choice to a caller-supplied strategy.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"poker-dealer-server/engine"
	"poker-dealer-server/wire"
)

// Strategy chooses the action for a state in which the bound seat is the
// current actor. It is called once per decision.
type Strategy func(m engine.MatchState) (engine.Action, error)

// Driver runs the client side of the wire protocol for a single seat.
type Driver struct {
	rules engine.Rules
	conn  net.Conn
	r     *bufio.Reader
	log   *slog.Logger

	// HandFinished, when set, is called for every finished-hand state the
	// dealer sends instead of requesting an action.
	HandFinished func(m engine.MatchState)
}

// Dial connects to a dealer seat, sends the version handshake, and returns
// a Driver ready to Play. The caller closes the driver when done.
func Dial(ctx context.Context, addr string, rules engine.Rules, logger *slog.Logger) (*Driver, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to dealer at %s: %w", addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	drv, err := New(conn, rules, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return drv, nil
}

// New wraps an established connection and sends the version handshake.
func New(conn net.Conn, rules engine.Rules, logger *slog.Logger) (*Driver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Driver{
		rules: rules,
		conn:  conn,
		r:     bufio.NewReaderSize(conn, wire.MaxLineLen),
		log:   logger,
	}
	if err := wire.WriteLine(conn, wire.VersionLine()); err != nil {
		return nil, fmt.Errorf("sending version line: %w", err)
	}
	return d, nil
}

// Play runs the protocol loop until the dealer stops sending states. Every
// received state is decoded; finished hands go to HandFinished, states in
// which this seat must act go to the strategy, everything else is only
// observed. The chosen action is checked for legality before it leaves the
// wire, so a buggy strategy fails loudly here instead of burning the seat's
// invalid-action budget. A clean end of stream returns nil.
func (d *Driver) Play(strat Strategy) error {
	for {
		line, err := wire.ReadLine(d.r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading state: %w", err)
		}
		if wire.IsComment(line) {
			continue
		}
		d.log.Debug("FROM dealer", "line", line)

		m, err := engine.DecodeMatchState(d.rules, line)
		if err != nil {
			return err
		}
		if m.State.Finished {
			if d.HandFinished != nil {
				d.HandFinished(m)
			}
			continue
		}
		if d.rules.Actor(m.State) != m.Viewer {
			continue
		}

		action, err := strat(m)
		if err != nil {
			return fmt.Errorf("strategy failed on hand %d: %w", m.State.HandID, err)
		}
		if !d.rules.ValidAction(m.State, action) {
			return fmt.Errorf("strategy chose illegal action %s on hand %d", action, m.State.HandID)
		}
		response := line + ":" + action.String()
		if err := wire.WriteLine(d.conn, response); err != nil {
			return fmt.Errorf("sending action: %w", err)
		}
		d.log.Debug("TO dealer", "line", response)
	}
}

// Close closes the underlying connection.
func (d *Driver) Close() error {
	return d.conn.Close()
}
