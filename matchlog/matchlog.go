// Package matchlog reads the logs the dealer writes: one line per finished
// hand plus a final score line. It reconstructs full hand states from log
// lines, replays hands action by action for analysis, and processes whole
// directories of logs in parallel.
package matchlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"poker-dealer-server/engine"
)

// ErrNotHandLine marks a line that is not a hand record: a blank line, a
// comment, or the final SCORE line. Readers skip these.
var ErrNotHandLine = errors.New("not a hand line")

// Hand is one finished hand as recorded in a match log: the terminal state
// with every hole card visible, plus each player's value and name, both in
// player order.
type Hand struct {
	State  *engine.State
	Values []float64
	Names  []string
}

// ParseHand parses one match log line:
//
//	STATE:<handId>:<betting>:<cards>:<v1>|...|<vn>:<name1>|...|<namen>
//
// Lines that are not hand records return ErrNotHandLine; anything else that
// fails to parse is a hard error.
func ParseHand(r engine.Rules, line string) (Hand, error) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' || line[0] == ';' || strings.HasPrefix(line, "SCORE:") {
		return Hand{}, fmt.Errorf("%w: %q", ErrNotHandLine, line)
	}

	fields := strings.SplitN(line, ":", 6)
	if len(fields) != 6 || fields[0] != "STATE" {
		return Hand{}, fmt.Errorf("malformed log line %q", line)
	}

	state, err := engine.DecodeState(r, strings.Join(fields[:4], ":"))
	if err != nil {
		return Hand{}, fmt.Errorf("log line %q: %w", line, err)
	}
	if !state.Finished {
		return Hand{}, fmt.Errorf("log line %q records an unfinished hand", line)
	}

	n := r.NumPlayers()
	valFields := strings.Split(fields[4], "|")
	nameFields := strings.Split(fields[5], "|")
	if len(valFields) != n || len(nameFields) != n {
		return Hand{}, fmt.Errorf("log line %q needs %d values and names", line, n)
	}
	h := Hand{State: state, Values: make([]float64, n), Names: nameFields}
	for p, vf := range valFields {
		v, err := strconv.ParseFloat(vf, 64)
		if err != nil {
			return Hand{}, fmt.Errorf("bad value %q in log line %q", vf, line)
		}
		h.Values[p] = v
	}
	return h, nil
}

// Replay walks the hand from the deal forward, calling fn before every
// action with the state as it stood and the action about to be applied. The
// walk starts from a fresh state carrying the recorded deal, so fn sees
// each intermediate position, not just the terminal one. Returning false
// from fn stops the walk early.
func (h Hand) Replay(r engine.Rules, fn func(s *engine.State, ta engine.TakenAction) bool) error {
	s := r.InitState(h.State.HandID)
	for p := range h.State.Hole {
		s.Hole[p] = append([]engine.Card(nil), h.State.Hole[p]...)
	}
	for round := range h.State.Board {
		s.Board[round] = append([]engine.Card(nil), h.State.Board[round]...)
	}

	for _, roundActions := range h.State.Actions {
		for _, ta := range roundActions {
			if !fn(s, ta) {
				return nil
			}
			if err := r.Apply(s, ta.Action); err != nil {
				return fmt.Errorf("replaying hand %d: %w", h.State.HandID, err)
			}
		}
	}
	return nil
}

// Read collects every hand record from one log stream, in file order.
// Non-hand lines are skipped; a malformed hand line fails the read.
func Read(r engine.Rules, src io.Reader) ([]Hand, error) {
	var hands []Hand
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		h, err := ParseHand(r, scanner.Text())
		if errors.Is(err, ErrNotHandLine) {
			continue
		}
		if err != nil {
			return nil, err
		}
		hands = append(hands, h)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading match log: %w", err)
	}
	return hands, nil
}
