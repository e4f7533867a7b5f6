package client_test

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"

	"poker-dealer-server/client"
	"poker-dealer-server/engine"
	"poker-dealer-server/limit"
	"poker-dealer-server/strategy"
	"poker-dealer-server/wire"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startDriver wires a driver to one end of a pipe and returns the dealer's
// end plus a way to join the protocol loop.
func startDriver(t *testing.T, strat client.Strategy, onFinished func(engine.MatchState)) (net.Conn, *bufio.Reader, func() error) {
	t.Helper()
	r, err := limit.Kuhn(2)
	if err != nil {
		t.Fatal(err)
	}

	dealerEnd, clientEnd := net.Pipe()
	var (
		wg      sync.WaitGroup
		playErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		drv, err := client.New(clientEnd, r, quietLogger())
		if err != nil {
			playErr = err
			return
		}
		drv.HandFinished = onFinished
		playErr = drv.Play(strat)
	}()

	join := func() error {
		dealerEnd.Close()
		wg.Wait()
		return playErr
	}
	return dealerEnd, bufio.NewReader(dealerEnd), join
}

func TestDriverHandshakeAndResponse(t *testing.T) {
	dealerEnd, r, join := startDriver(t, strategy.CallStation(), nil)

	version, err := wire.ReadLine(r)
	if err != nil {
		t.Fatal(err)
	}
	if version != wire.VersionLine() {
		t.Errorf("handshake %q, want %q", version, wire.VersionLine())
	}

	// Viewer 0 is the actor in a fresh hand; the driver must answer with the
	// state echoed back and its action appended.
	state := "MATCHSTATE:0:0::Ks|"
	if err := wire.WriteLine(dealerEnd, state); err != nil {
		t.Fatal(err)
	}
	response, err := wire.ReadLine(r)
	if err != nil {
		t.Fatal(err)
	}
	if response != state+":c" {
		t.Errorf("response %q, want %q", response, state+":c")
	}

	if err := join(); err != nil {
		t.Errorf("play should end cleanly on close, got %v", err)
	}
}

func TestDriverStaysQuietWhenNotActing(t *testing.T) {
	finished := 0
	dealerEnd, r, join := startDriver(t, strategy.CallStation(), func(engine.MatchState) { finished++ })

	if _, err := wire.ReadLine(r); err != nil {
		t.Fatal(err)
	}

	// Viewer 1 watching player 0's turn: no response may be sent. The next
	// read must therefore yield the answer to the second state only.
	if err := wire.WriteLine(dealerEnd, "MATCHSTATE:1:0::|Qs"); err != nil {
		t.Fatal(err)
	}
	acting := "MATCHSTATE:1:0:c:|Qs"
	if err := wire.WriteLine(dealerEnd, acting); err != nil {
		t.Fatal(err)
	}
	response, err := wire.ReadLine(r)
	if err != nil {
		t.Fatal(err)
	}
	if response != acting+":c" {
		t.Errorf("response %q, want %q", response, acting+":c")
	}

	// A finished hand goes to the callback, never to the strategy.
	if err := wire.WriteLine(dealerEnd, "MATCHSTATE:1:0:cc:|Qs"); err != nil {
		t.Fatal(err)
	}
	if err := join(); err != nil {
		t.Errorf("play should end cleanly on close, got %v", err)
	}
	if finished != 1 {
		t.Errorf("HandFinished ran %d times, want 1", finished)
	}
}

func TestDriverRejectsIllegalStrategyAction(t *testing.T) {
	alwaysFold := func(m engine.MatchState) (engine.Action, error) {
		return engine.Action{Type: engine.Fold}, nil
	}
	dealerEnd, r, join := startDriver(t, alwaysFold, nil)

	if _, err := wire.ReadLine(r); err != nil {
		t.Fatal(err)
	}
	// Folding with no outstanding bet is illegal; the driver must refuse to
	// send it rather than burn the seat's invalid-action budget.
	if err := wire.WriteLine(dealerEnd, "MATCHSTATE:0:0::Ks|"); err != nil {
		t.Fatal(err)
	}
	if err := join(); err == nil {
		t.Error("an illegal strategy action should fail the driver")
	}
}

func TestRandomStrategyIsLegal(t *testing.T) {
	r, err := limit.Kuhn(2)
	if err != nil {
		t.Fatal(err)
	}
	strat := strategy.Random(r, 1)

	s := r.InitState(0)
	for i := 0; i < 50; i++ {
		a, err := strat(engine.MatchState{Viewer: 0, State: s})
		if err != nil {
			t.Fatal(err)
		}
		if !r.ValidAction(s, a) {
			t.Fatalf("random strategy chose illegal action %s", a)
		}
	}
}
