package limit

import (
	"github.com/paulhankin/poker"

	"poker-dealer-server/engine"
)

// highCardShowdown ranks one-card hands by rank alone. Kuhn decks carry a
// single suit, so ties cannot occur.
func highCardShowdown(s *engine.State, active []int) []int {
	best := active[0]
	for _, p := range active[1:] {
		if s.Hole[p][0].Rank > s.Hole[best][0].Rank {
			best = p
		}
	}
	return []int{best}
}

// holdemShowdown evaluates each surviving player's best five of seven cards
// and returns every player tied for the top score.
func holdemShowdown(s *engine.State, active []int) []int {
	var board []engine.Card
	for _, round := range s.Board {
		board = append(board, round...)
	}

	var winners []int
	var bestScore int16
	for _, p := range active {
		var hand [7]poker.Card
		for i, c := range append(append([]engine.Card{}, board...), s.Hole[p]...) {
			hand[i] = evalCard(c)
		}
		score := poker.Eval7(&hand)
		switch {
		case len(winners) == 0 || score > bestScore:
			winners = winners[:0]
			winners = append(winners, p)
			bestScore = score
		case score == bestScore:
			winners = append(winners, p)
		}
	}
	return winners
}

var evalSuits = [4]poker.Suit{poker.Club, poker.Diamond, poker.Heart, poker.Spade}

// evalCard converts a wire card to the evaluator's encoding, where aces
// rank 1.
func evalCard(c engine.Card) poker.Card {
	rank := poker.Rank(c.Rank)
	if c.Rank == 14 {
		rank = 1
	}
	card, err := poker.MakeCard(evalSuits[c.Suit], rank)
	if err != nil {
		panic(err) // deck cards are constructed in range
	}
	return card
}
