package engine

import (
	"fmt"
	"strconv"
)

// ActionType enumerates the kinds of betting actions a player can take.
type ActionType int

const (
	Fold ActionType = iota
	Call             // also check, when nothing is outstanding
	Raise            // also bet, when nothing is outstanding
)

// Action is one betting decision plus an optional size. Size is zero for
// fold and call, and for raises in limit games where the size is implied.
type Action struct {
	Type ActionType
	Size int32
}

// String returns the wire form of the action: "f", "c", or "r" with the
// size appended when non-zero (e.g. "r200").
func (a Action) String() string {
	var ch byte
	switch a.Type {
	case Fold:
		ch = 'f'
	case Call:
		ch = 'c'
	case Raise:
		ch = 'r'
	default:
		return "?"
	}
	if a.Size > 0 {
		return string(ch) + strconv.FormatInt(int64(a.Size), 10)
	}
	return string(ch)
}

// ParseAction parses the wire form of an action. The whole input must be
// consumed: trailing garbage is an error.
func ParseAction(s string) (Action, error) {
	if len(s) == 0 {
		return Action{}, fmt.Errorf("empty action")
	}
	var a Action
	switch s[0] {
	case 'f':
		a.Type = Fold
	case 'c':
		a.Type = Call
	case 'r', 'b':
		a.Type = Raise
	default:
		return Action{}, fmt.Errorf("unknown action %q", s)
	}
	if len(s) > 1 {
		size, err := strconv.ParseInt(s[1:], 10, 32)
		if err != nil || size < 0 {
			return Action{}, fmt.Errorf("malformed action size in %q", s)
		}
		a.Size = int32(size)
	}
	return a, nil
}
