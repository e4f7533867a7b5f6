package dealer

import (
	"fmt"
	"strings"
	"time"

	"poker-dealer-server/engine"
	"poker-dealer-server/wire"
)

// Run plays the match to completion and returns the per-seat totals. Any
// fatal condition (a ceiling breach, a transport failure, an inconsistent
// transaction replay) ends the match immediately with an error. Callers
// own the seat connections and close them however Run ends.
func (d *Dealer) Run() ([]float64, error) {
	if err := d.checkVersions(); err != nil {
		return nil, err
	}
	d.log.Debug("match started", "at", formatStamp(time.Now()), "game", d.rules.Name())

	d.handID = 0
	d.player0Seat = 0
	d.policy.NewHand()
	state := d.rules.InitState(d.handID)
	d.rules.Deal(handRNG(d.opts.Seed, d.handID), state)

	if d.opts.Transactions != nil {
		var err error
		state, err = d.replayTransactions(state)
		if err != nil {
			return nil, fmt.Errorf("transaction replay: %w", err)
		}
	}

	for d.handID < d.opts.Hands {
		if err := d.playHand(state); err != nil {
			return nil, err
		}
		state = d.nextHand()
		if d.handID >= d.opts.Hands {
			break
		}
	}

	d.log.Debug("match finished", "at", formatStamp(time.Now()))
	return d.totals, d.emitScore()
}

// checkVersions reads one handshake line per seat, in seat order. An
// unreadable or unparseable line is fatal; a well-formed but incompatible
// version is only warned about and the connection proceeds.
func (d *Dealer) checkVersions() error {
	for i, st := range d.seats {
		var line string
		for {
			var err error
			line, err = wire.ReadLine(st.r)
			if err != nil {
				return fmt.Errorf("seat %d: reading version line: %w", i+1, err)
			}
			if !wire.IsComment(line) {
				break
			}
		}
		major, minor, rev, err := wire.ParseVersion(line)
		if err != nil {
			return fmt.Errorf("seat %d: %w", i+1, err)
		}
		if !wire.VersionCompatible(major, minor) {
			d.log.Warn("version mismatch, continuing anyway",
				"seat", i+1, "theirs", fmt.Sprintf("%d.%d.%d", major, minor, rev), "ours", wire.VersionLine())
		}
	}
	return nil
}

// playHand drives one hand from its current position to completion:
// broadcast, collect the actor's response, log and apply, repeat.
func (d *Dealer) playHand(state *engine.State) error {
	for !state.Finished {
		actorSeat := d.seatOf(d.rules.Actor(state))
		sendTime, err := d.broadcast(state, actorSeat)
		if err != nil {
			return err
		}
		action, actionText, recvTime, err := d.readResponse(actorSeat, state, sendTime)
		if err != nil {
			return err
		}
		if d.opts.Transactions != nil {
			rec := Record{ActionText: actionText, HandID: state.HandID, Send: sendTime, Recv: recvTime}
			if err := d.opts.Transactions.Append(rec); err != nil {
				return err
			}
		}
		if err := d.rules.Apply(state, action); err != nil {
			return err
		}
	}
	return d.finishHand(state)
}

// broadcast sends every seat its own view of the state and returns the
// timestamp of the send to the acting seat, which starts that seat's
// response clock. Each seat's send is timestamped independently.
func (d *Dealer) broadcast(state *engine.State, actorSeat int) (time.Time, error) {
	var sendTime time.Time
	for i, st := range d.seats {
		line := engine.EncodeMatchState(d.rules, engine.MatchState{Viewer: d.playerOf(i), State: state})
		if err := wire.WriteLine(st.conn, line); err != nil {
			return time.Time{}, fmt.Errorf("seat %d: sending state: %w", i+1, err)
		}
		now := time.Now()
		st.lastSent = line
		if i == actorSeat {
			sendTime = now
		}
		d.log.Debug("TO", "seat", i+1, "at", formatStamp(now), "line", line)
	}
	if d.opts.Spectators != nil {
		d.opts.Spectators.Broadcast(engine.EncodeMatchState(d.rules,
			engine.MatchState{Viewer: engine.ObserverViewer, State: state}))
	}
	return sendTime, nil
}

// readResponse collects one action from the acting seat. Comment lines and
// echoes of a stale state are dropped without charging any budget; the
// accepted response is charged against the seat's timing budgets, and a
// malformed or illegal action below the invalid-action ceiling degrades to
// the minimal passive action. The read blocks at most for the seat's
// remaining budget; silence past that point is fatal.
func (d *Dealer) readResponse(actorSeat int, state *engine.State, sendTime time.Time) (engine.Action, string, time.Time, error) {
	st := d.seats[actorSeat]
	fail := func(err error) (engine.Action, string, time.Time, error) {
		return engine.Action{}, "", time.Time{}, err
	}

	st.conn.SetReadDeadline(time.Now().Add(d.policy.ResponseBudget(actorSeat)))
	defer st.conn.SetReadDeadline(time.Time{})

	for {
		line, err := wire.ReadLine(st.r)
		if err != nil {
			return fail(fmt.Errorf("seat %d: no action: %w", actorSeat+1, err))
		}
		recvTime := time.Now()
		d.log.Debug("FROM", "seat", actorSeat+1, "at", formatStamp(recvTime), "line", line)

		if wire.IsComment(line) {
			continue
		}
		actionText, ok := strings.CutPrefix(line, st.lastSent+":")
		if !ok {
			d.log.Warn("ignoring response to a state that was not requested", "seat", actorSeat+1)
			continue
		}
		if err := d.policy.ChargeTime(actorSeat, sendTime, recvTime); err != nil {
			return fail(err)
		}

		action, perr := engine.ParseAction(actionText)
		if perr != nil || !d.rules.ValidAction(state, action) {
			if err := d.policy.NoteInvalidAction(actorSeat); err != nil {
				return fail(err)
			}
			d.log.Warn("invalid action, substituting call", "seat", actorSeat+1, "got", actionText)
			action = engine.Action{Type: engine.Call}
			actionText = action.String()
		}
		return action, actionText, recvTime, nil
	}
}

// finishHand scores a finished state, writes the Log Line, sends every seat
// the final state, and reports cumulative time use every hundred hands.
func (d *Dealer) finishHand(state *engine.State) error {
	n := d.rules.NumPlayers()
	values := make([]float64, n)
	for p := 0; p < n; p++ {
		values[p] = d.rules.Value(state, p)
		d.totals[d.seatOf(p)] += values[p]
	}

	if d.opts.LogWriter != nil {
		if _, err := fmt.Fprintln(d.opts.LogWriter, d.logLine(state, values)); err != nil {
			return fmt.Errorf("writing match log: %w", err)
		}
	}

	for i, st := range d.seats {
		line := engine.EncodeMatchState(d.rules, engine.MatchState{Viewer: d.playerOf(i), State: state})
		if err := wire.WriteLine(st.conn, line); err != nil {
			return fmt.Errorf("seat %d: sending final state: %w", i+1, err)
		}
		d.log.Debug("TO", "seat", i+1, "at", formatStamp(time.Now()), "line", line)
	}
	if d.opts.Spectators != nil {
		d.opts.Spectators.Broadcast(engine.EncodeState(d.rules, state))
	}

	if d.handID%100 == 0 {
		for i := range d.seats {
			d.log.Debug("cumulative time used", "seat", i+1, "used", d.policy.UsedMatch(i).String())
		}
	}
	return nil
}

// nextHand advances the hand counter, rotates the seating unless fixed,
// resets the hand-time budgets and deals the next hand.
func (d *Dealer) nextHand() *engine.State {
	d.handID++
	if !d.opts.FixedSeats {
		d.player0Seat = (d.player0Seat + 1) % d.rules.NumPlayers()
	}
	d.policy.NewHand()
	state := d.rules.InitState(d.handID)
	d.rules.Deal(handRNG(d.opts.Seed, d.handID), state)
	return state
}

// replayTransactions fast-forwards the match through the records left in
// the transaction log by an interrupted run: each action is validated and
// re-timed against its recorded stamps and applied exactly as in live
// play, with no socket traffic. The returned state is where live play
// resumes. A record that does not fit the reconstruction is fatal.
func (d *Dealer) replayTransactions(state *engine.State) (*engine.State, error) {
	for _, rec := range d.opts.Transactions.Pending() {
		if rec.HandID != d.handID {
			return nil, fmt.Errorf("record %q is for hand %d, expected hand %d", rec, rec.HandID, d.handID)
		}
		action, err := engine.ParseAction(rec.ActionText)
		if err != nil {
			return nil, err
		}
		if !d.rules.ValidAction(state, action) {
			return nil, fmt.Errorf("record %q holds an illegal action", rec)
		}
		actorSeat := d.seatOf(d.rules.Actor(state))
		if err := d.policy.ChargeTime(actorSeat, rec.Send, rec.Recv); err != nil {
			return nil, err
		}
		if err := d.rules.Apply(state, action); err != nil {
			return nil, err
		}
		if state.Finished {
			n := d.rules.NumPlayers()
			for p := 0; p < n; p++ {
				d.totals[d.seatOf(p)] += d.rules.Value(state, p)
			}
			state = d.nextHand()
		}
	}
	if len(d.opts.Transactions.Pending()) > 0 {
		d.log.Info("resumed from transaction log", "hand", d.handID)
	}
	return state, nil
}

// emitScore writes the final SCORE line to the match log and the operator
// stream.
func (d *Dealer) emitScore() error {
	names := make([]string, len(d.seats))
	for i, st := range d.seats {
		names[i] = st.name
	}
	line := FormatScoreLine(d.totals, names)
	d.log.Info(line)
	if d.opts.LogWriter != nil {
		if _, err := fmt.Fprintln(d.opts.LogWriter, line); err != nil {
			return fmt.Errorf("writing match log: %w", err)
		}
	}
	if d.opts.ScoreWriter != nil {
		fmt.Fprintln(d.opts.ScoreWriter, line)
	}
	return nil
}
