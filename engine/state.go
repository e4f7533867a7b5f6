package engine

import (
	"errors"
	"math/rand"
)

// Viewer sentinels. Non-negative viewers are player indices; an observer
// sees no hidden information, an omniscient viewer sees everything.
const (
	ObserverViewer   = -1
	OmniscientViewer = -2
)

// ErrIllegalAction is returned by Rules.Apply when the action is not legal
// in the current state.
var ErrIllegalAction = errors.New("illegal action")

// TakenAction is one applied action together with the player who took it.
type TakenAction struct {
	Player int
	Action Action
}

// State is the full, omniscient record of one hand in progress: the round
// cursor, the per-round action history, the per-player fold flags, all hole
// and board cards, and the finished flag. It is mutated only by Rules.Apply;
// actions are appended and rounds advance, never rewound.
type State struct {
	HandID   uint32
	Round    int
	Actions  [][]TakenAction // indexed by round
	Folded   []bool
	Hole     [][]Card // indexed by player
	Board    [][]Card // indexed by round; empty for rounds with no board cards
	Finished bool
}

// NumActions returns the number of actions taken in the given round.
func (s *State) NumActions(round int) int {
	if round < 0 || round >= len(s.Actions) {
		return 0
	}
	return len(s.Actions[round])
}

// NumActivePlayers returns the number of players who have not folded.
func (s *State) NumActivePlayers() int {
	n := 0
	for _, f := range s.Folded {
		if !f {
			n++
		}
	}
	return n
}

// AllOthersFolded reports whether every player other than the given one
// has folded.
func (s *State) AllOthersFolded(player int) bool {
	for p, f := range s.Folded {
		if p != player && !f {
			return false
		}
	}
	return true
}

// MatchState is a State paired with a viewing identity. The viewer decides
// which hole cards are visible when the state is encoded to text.
type MatchState struct {
	Viewer int
	State  *State
}

// IsObserver reports whether the viewer is not a concrete player.
func (m MatchState) IsObserver() bool { return m.Viewer < 0 }

// IsOmniscient reports whether the viewer sees all hidden information.
func (m MatchState) IsOmniscient() bool { return m.Viewer == OmniscientViewer }

// HandRevealed reports whether the given player's hole cards are visible to
// the viewer. They are visible to an omniscient viewer and to the player
// themselves. A player who did not fold while every opponent folded also
// shows their cards: the hand was won by default, so no showdown occurred
// to keep them hidden. Each player is evaluated independently.
func HandRevealed(s *State, viewer, player int) bool {
	if viewer == OmniscientViewer || viewer == player {
		return true
	}
	return !s.Folded[player] && s.AllOthersFolded(player)
}

// Rules is the card-game rules engine the protocol machinery drives. A
// Rules value is stateless; all hand state lives in the State it operates
// on. Implementations must keep Apply as the only mutation path.
type Rules interface {
	// Name identifies the game definition (e.g. "kuhn.limit.3p").
	Name() string
	NumPlayers() int
	NumRounds() int
	NumHoleCards() int
	// NumBoardCards returns how many board cards are revealed in a round.
	NumBoardCards(round int) int

	// InitState returns the empty state for a new hand.
	InitState(handID uint32) *State
	// Deal fills in every hole and board card from the given source.
	Deal(rng *rand.Rand, s *State)
	// Actor returns the player due to act. Undefined once s.Finished.
	Actor(s *State) int
	// ValidAction reports whether the action is legal in s.
	ValidAction(s *State, a Action) bool
	// Apply validates and applies one action, advancing the round and the
	// finished flag as needed. Returns ErrIllegalAction (wrapped) when the
	// action is not legal.
	Apply(s *State, a Action) error
	// Value returns the hand's value for a player. Only meaningful once
	// s.Finished.
	Value(s *State, player int) float64
}
