// Package limit implements fixed-limit card games behind the engine.Rules
// interface: the betting structure is generic over a Def, and the shipped
// definitions cover Kuhn poker and ante-based limit Texas hold'em.
package limit

import (
	"fmt"

	"poker-dealer-server/engine"
)

// Def describes one fixed-limit game: table size, deck, card layout and the
// per-round betting structure. All sizes are in chips.
type Def struct {
	GameName   string
	Players    int
	HoleCards  int
	BoardCards []int // per round; length is the round count
	Deck       []engine.Card

	Ante      int32
	RaiseSize []int32 // per round
	MaxRaises []int   // per round

	// Showdown ranks the surviving players' hands once the final round
	// settles; it returns the winners (more than one splits the pot).
	Showdown func(s *engine.State, active []int) []int
}

func (d *Def) validate() error {
	if d.Players < 2 {
		return fmt.Errorf("%s: need at least 2 players", d.GameName)
	}
	if len(d.BoardCards) == 0 || len(d.RaiseSize) != len(d.BoardCards) || len(d.MaxRaises) != len(d.BoardCards) {
		return fmt.Errorf("%s: inconsistent per-round tables", d.GameName)
	}
	need := d.Players * d.HoleCards
	for _, n := range d.BoardCards {
		need += n
	}
	if len(d.Deck) < need {
		return fmt.Errorf("%s: deck of %d cannot cover %d dealt cards", d.GameName, len(d.Deck), need)
	}
	if d.Showdown == nil {
		return fmt.Errorf("%s: no showdown rule", d.GameName)
	}
	return nil
}

// Kuhn returns the rules of one-round limit Kuhn poker for 2 or 3 players:
// a one-suit deck of players+1 ranks starting at the jack, a one-chip ante
// and a single one-chip raise.
func Kuhn(players int) (*Rules, error) {
	if players < 2 || players > 3 {
		return nil, fmt.Errorf("kuhn is played by 2 or 3 players, not %d", players)
	}
	deck := make([]engine.Card, players+1)
	for i := range deck {
		deck[i] = engine.Card{Rank: uint8(11 + i), Suit: 3} // Js, Qs, ...
	}
	def := &Def{
		GameName:   fmt.Sprintf("kuhn.limit.%dp", players),
		Players:    players,
		HoleCards:  1,
		BoardCards: []int{0},
		Deck:       deck,
		Ante:       1,
		RaiseSize:  []int32{1},
		MaxRaises:  []int{1},
		Showdown:   highCardShowdown,
	}
	return New(def)
}

// Holdem returns ante-based fixed-limit Texas hold'em: four rounds with a
// 0/3/1/1 board, two hole cards, small bets on the first two rounds and big
// bets after, capped at four raises per round.
func Holdem(players int) (*Rules, error) {
	if players < 2 || players > 10 {
		return nil, fmt.Errorf("holdem table size %d out of range", players)
	}
	deck := make([]engine.Card, 0, 52)
	for rank := uint8(2); rank <= 14; rank++ {
		for suit := uint8(0); suit < 4; suit++ {
			deck = append(deck, engine.Card{Rank: rank, Suit: suit})
		}
	}
	def := &Def{
		GameName:   fmt.Sprintf("holdem.limit.%dp", players),
		Players:    players,
		HoleCards:  2,
		BoardCards: []int{0, 3, 1, 1},
		Deck:       deck,
		Ante:       1,
		RaiseSize:  []int32{2, 2, 4, 4},
		MaxRaises:  []int{4, 4, 4, 4},
		Showdown:   holdemShowdown,
	}
	return New(def)
}

// FromName builds the rules engine named by the configuration surface,
// e.g. "kuhn.limit.3p" or "holdem.limit.2p".
func FromName(name string) (*Rules, error) {
	var players int
	if n, err := fmt.Sscanf(name, "kuhn.limit.%dp", &players); n == 1 && err == nil {
		return Kuhn(players)
	}
	if n, err := fmt.Sscanf(name, "holdem.limit.%dp", &players); n == 1 && err == nil {
		return Holdem(players)
	}
	return nil, fmt.Errorf("unknown game %q", name)
}
