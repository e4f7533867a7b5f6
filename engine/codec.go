package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Text encoding of states, following the classic dealer wire format:
//
//	STATE:<handId>:<betting>:<cards>
//	MATCHSTATE:<viewer>:<handId>:<betting>:<cards>
//
// The betting field holds one segment per round, joined by '/', each segment
// a run of actions ("crff", "r200c"). The cards field holds the per-player
// hole hands joined by '|' (an empty segment is a hidden hand), followed by
// one '/'-prefixed segment per revealed board round.

// EncodeState encodes an omniscient view of the state, as written to match
// log lines: every hole card is visible.
func EncodeState(r Rules, s *State) string {
	return "STATE:" + strconv.FormatUint(uint64(s.HandID), 10) +
		":" + encodeBetting(s) + ":" + encodeCards(r, s, OmniscientViewer)
}

// EncodeMatchState encodes the state as seen by the match state's viewer,
// masking hole cards per HandRevealed.
func EncodeMatchState(r Rules, m MatchState) string {
	return "MATCHSTATE:" + strconv.Itoa(m.Viewer) +
		":" + strconv.FormatUint(uint64(m.State.HandID), 10) +
		":" + encodeBetting(m.State) + ":" + encodeCards(r, m.State, m.Viewer)
}

func encodeBetting(s *State) string {
	segs := make([]string, s.Round+1)
	for round := 0; round <= s.Round; round++ {
		var b strings.Builder
		for _, ta := range s.Actions[round] {
			b.WriteString(ta.Action.String())
		}
		segs[round] = b.String()
	}
	return strings.Join(segs, "/")
}

func encodeCards(r Rules, s *State, viewer int) string {
	holes := make([]string, len(s.Hole))
	for p := range s.Hole {
		if HandRevealed(s, viewer, p) {
			holes[p] = cardsToString(s.Hole[p])
		}
	}
	out := strings.Join(holes, "|")
	for round := 0; round <= s.Round; round++ {
		if r.NumBoardCards(round) > 0 {
			out += "/" + cardsToString(s.Board[round])
		}
	}
	return out
}

// DecodeState parses a STATE line produced by EncodeState. The decoded
// action sequence is re-applied through the rules engine, so the returned
// state carries acting players, fold flags, the round cursor and the
// finished flag, and an illegal recorded sequence is rejected.
func DecodeState(r Rules, text string) (*State, error) {
	fields := strings.SplitN(strings.TrimSpace(text), ":", 4)
	if len(fields) != 4 || fields[0] != "STATE" {
		return nil, fmt.Errorf("malformed state %q", text)
	}
	return decodeStateFields(r, fields[1], fields[2], fields[3])
}

// DecodeMatchState parses a MATCHSTATE line produced by EncodeMatchState.
func DecodeMatchState(r Rules, text string) (MatchState, error) {
	fields := strings.SplitN(strings.TrimSpace(text), ":", 5)
	if len(fields) != 5 || fields[0] != "MATCHSTATE" {
		return MatchState{}, fmt.Errorf("malformed match state %q", text)
	}
	viewer, err := strconv.Atoi(fields[1])
	if err != nil || viewer >= r.NumPlayers() || viewer < OmniscientViewer {
		return MatchState{}, fmt.Errorf("bad viewer in match state %q", text)
	}
	s, err := decodeStateFields(r, fields[2], fields[3], fields[4])
	if err != nil {
		return MatchState{}, err
	}
	return MatchState{Viewer: viewer, State: s}, nil
}

func decodeStateFields(r Rules, idField, betting, cards string) (*State, error) {
	handID, err := strconv.ParseUint(idField, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("bad hand id %q", idField)
	}
	s := r.InitState(uint32(handID))

	if err := decodeCards(r, s, cards); err != nil {
		return nil, err
	}

	rounds := strings.Split(betting, "/")
	if len(rounds) > r.NumRounds() {
		return nil, fmt.Errorf("too many betting rounds in %q", betting)
	}
	for _, seg := range rounds {
		actions, err := splitActions(seg)
		if err != nil {
			return nil, err
		}
		for _, a := range actions {
			if err := r.Apply(s, a); err != nil {
				return nil, fmt.Errorf("decoding betting %q: %w", betting, err)
			}
		}
	}
	if s.Round != len(rounds)-1 {
		return nil, fmt.Errorf("betting %q does not settle on round %d", betting, len(rounds)-1)
	}
	return s, nil
}

func decodeCards(r Rules, s *State, cards string) error {
	segs := strings.Split(cards, "/")
	holes := strings.Split(segs[0], "|")
	if len(holes) != r.NumPlayers() {
		return fmt.Errorf("expected %d hole hands, got %d", r.NumPlayers(), len(holes))
	}
	for p, h := range holes {
		if h == "" {
			continue // hidden hand
		}
		parsed, err := ParseCards(h)
		if err != nil {
			return err
		}
		if len(parsed) != r.NumHoleCards() {
			return fmt.Errorf("player %d has %d hole cards, want %d", p, len(parsed), r.NumHoleCards())
		}
		s.Hole[p] = parsed
	}

	boardSeg := 1
	for round := 0; round < r.NumRounds() && boardSeg < len(segs); round++ {
		if r.NumBoardCards(round) == 0 {
			continue
		}
		parsed, err := ParseCards(segs[boardSeg])
		if err != nil {
			return err
		}
		if len(parsed) != r.NumBoardCards(round) {
			return fmt.Errorf("round %d has %d board cards, want %d", round, len(parsed), r.NumBoardCards(round))
		}
		s.Board[round] = parsed
		boardSeg++
	}
	if boardSeg != len(segs) {
		return fmt.Errorf("unexpected board segments in %q", cards)
	}
	return nil
}

func splitActions(seg string) ([]Action, error) {
	var actions []Action
	for i := 0; i < len(seg); {
		j := i + 1
		for j < len(seg) && seg[j] >= '0' && seg[j] <= '9' {
			j++
		}
		a, err := ParseAction(seg[i:j])
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
		i = j
	}
	return actions, nil
}
