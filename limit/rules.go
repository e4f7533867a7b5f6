package limit

import (
	"fmt"
	"math/rand"

	"poker-dealer-server/engine"
)

// Rules drives one fixed-limit game definition. The value is stateless;
// betting position is re-derived from a hand's action history on demand.
type Rules struct {
	def *Def
}

// New validates a definition and wraps it in a Rules engine.
func New(def *Def) (*Rules, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	return &Rules{def: def}, nil
}

func (r *Rules) Name() string      { return r.def.GameName }
func (r *Rules) NumPlayers() int   { return r.def.Players }
func (r *Rules) NumRounds() int    { return len(r.def.BoardCards) }
func (r *Rules) NumHoleCards() int { return r.def.HoleCards }

func (r *Rules) NumBoardCards(round int) int {
	if round < 0 || round >= len(r.def.BoardCards) {
		return 0
	}
	return r.def.BoardCards[round]
}

func (r *Rules) InitState(handID uint32) *engine.State {
	rounds := r.NumRounds()
	return &engine.State{
		HandID:  handID,
		Actions: make([][]engine.TakenAction, rounds),
		Folded:  make([]bool, r.def.Players),
		Hole:    make([][]engine.Card, r.def.Players),
		Board:   make([][]engine.Card, rounds),
	}
}

// Deal fills every hole hand and the full board from a shuffled deck. Board
// cards for later rounds are dealt up front; the codec only reveals rounds
// the hand has reached.
func (r *Rules) Deal(rng *rand.Rand, s *engine.State) {
	perm := rng.Perm(len(r.def.Deck))
	next := 0
	draw := func() engine.Card {
		c := r.def.Deck[perm[next]]
		next++
		return c
	}
	for p := 0; p < r.def.Players; p++ {
		s.Hole[p] = make([]engine.Card, r.def.HoleCards)
		for i := range s.Hole[p] {
			s.Hole[p][i] = draw()
		}
	}
	for round, n := range r.def.BoardCards {
		s.Board[round] = make([]engine.Card, n)
		for i := 0; i < n; i++ {
			s.Board[round][i] = draw()
		}
	}
}

func (r *Rules) Actor(s *engine.State) int {
	t := r.tally(s)
	if s.Finished || len(t.queue) == 0 {
		return -1
	}
	return t.queue[0]
}

func (r *Rules) ValidAction(s *engine.State, a engine.Action) bool {
	if s.Finished || a.Size != 0 {
		return false
	}
	t := r.tally(s)
	if len(t.queue) == 0 {
		return false
	}
	actor := t.queue[0]
	switch a.Type {
	case engine.Fold:
		return t.spent[actor] < t.maxSpent
	case engine.Call:
		return true
	case engine.Raise:
		return t.raises < r.def.MaxRaises[s.Round]
	}
	return false
}

func (r *Rules) Apply(s *engine.State, a engine.Action) error {
	if !r.ValidAction(s, a) {
		return fmt.Errorf("%s in hand %d round %d: %w", a, s.HandID, s.Round, engine.ErrIllegalAction)
	}
	t := r.tally(s)
	actor := t.queue[0]
	t.apply(r.def, s.Round, actor, a)
	s.Actions[s.Round] = append(s.Actions[s.Round], engine.TakenAction{Player: actor, Action: a})
	if a.Type == engine.Fold {
		s.Folded[actor] = true
	}
	switch {
	case t.active() == 1:
		s.Finished = true
	case len(t.queue) == 0:
		if s.Round == r.NumRounds()-1 {
			s.Finished = true
		} else {
			s.Round++
		}
	}
	return nil
}

// Value returns the net chips for a player in a finished hand: the pot is
// split equally among the showdown winners (or goes whole to the last
// player standing), and every player is down what they put in.
func (r *Rules) Value(s *engine.State, player int) float64 {
	t := r.tally(s)
	var pot int32
	var active []int
	for p := 0; p < r.def.Players; p++ {
		pot += t.spent[p]
		if !s.Folded[p] {
			active = append(active, p)
		}
	}
	var winners []int
	if len(active) == 1 {
		winners = active
	} else {
		winners = r.def.Showdown(s, active)
	}
	value := -float64(t.spent[player])
	for _, w := range winners {
		if w == player {
			value += float64(pot) / float64(len(winners))
			break
		}
	}
	return value
}

// tally is the betting position re-derived from a hand's action history:
// chips committed per player, the current round's raise count, and the
// queue of players still due to act.
type tally struct {
	spent    []int32
	maxSpent int32
	raises   int
	folded   []bool
	queue    []int
}

func (r *Rules) tally(s *engine.State) *tally {
	t := &tally{
		spent:  make([]int32, r.def.Players),
		folded: make([]bool, r.def.Players),
	}
	for p := range t.spent {
		t.spent[p] = r.def.Ante
	}
	t.maxSpent = r.def.Ante
	for round := 0; round <= s.Round; round++ {
		t.beginRound()
		for _, ta := range s.Actions[round] {
			t.apply(r.def, round, ta.Player, ta.Action)
		}
	}
	return t
}

func (t *tally) beginRound() {
	t.raises = 0
	t.queue = t.queue[:0]
	for p := range t.folded {
		if !t.folded[p] {
			t.queue = append(t.queue, p)
		}
	}
}

func (t *tally) apply(def *Def, round, player int, a engine.Action) {
	if len(t.queue) > 0 && t.queue[0] == player {
		t.queue = t.queue[1:]
	}
	switch a.Type {
	case engine.Fold:
		t.folded[player] = true
	case engine.Call:
		t.spent[player] = t.maxSpent
	case engine.Raise:
		t.maxSpent += def.RaiseSize[round]
		t.spent[player] = t.maxSpent
		t.raises++
		t.queue = t.queue[:0]
		n := len(t.folded)
		for i := 1; i < n; i++ {
			p := (player + i) % n
			if !t.folded[p] {
				t.queue = append(t.queue, p)
			}
		}
	}
}

func (t *tally) active() int {
	n := 0
	for _, f := range t.folded {
		if !f {
			n++
		}
	}
	return n
}
