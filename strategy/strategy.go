// Package strategy provides built-in action policies for the client driver:
// a passive caller for deterministic baselines and a seeded random player
// for exercising opponents.
package strategy

import (
	"fmt"
	"math/rand"

	"poker-dealer-server/client"
	"poker-dealer-server/engine"
)

// CallStation always calls/checks. Useful as a deterministic baseline: two
// call stations play out every hand to showdown the same way on every run.
func CallStation() client.Strategy {
	return func(m engine.MatchState) (engine.Action, error) {
		return engine.Action{Type: engine.Call}, nil
	}
}

// Random picks uniformly among the legal actions in each state, drawing
// from its own seeded source so runs are reproducible.
func Random(r engine.Rules, seed int64) client.Strategy {
	rng := rand.New(rand.NewSource(seed))
	candidates := []engine.Action{
		{Type: engine.Fold},
		{Type: engine.Call},
		{Type: engine.Raise},
	}
	return func(m engine.MatchState) (engine.Action, error) {
		var legal []engine.Action
		for _, a := range candidates {
			if r.ValidAction(m.State, a) {
				legal = append(legal, a)
			}
		}
		if len(legal) == 0 {
			return engine.Action{}, fmt.Errorf("no legal action on hand %d", m.State.HandID)
		}
		return legal[rng.Intn(len(legal))], nil
	}
}
