package engine

import "fmt"

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

// Card is a playing card in the two-character text form used on the wire,
// e.g. "Ks" or "Td". Rank runs 2..14 (14 = ace), Suit 0..3 (c, d, h, s).
type Card struct {
	Rank uint8
	Suit uint8
}

// String returns the wire form of the card.
func (c Card) String() string {
	return string([]byte{rankChars[c.Rank-2], suitChars[c.Suit]})
}

// ParseCard parses a two-character card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("malformed card %q", s)
	}
	var card Card
	found := false
	for i := 0; i < len(rankChars); i++ {
		if rankChars[i] == s[0] {
			card.Rank = uint8(i + 2)
			found = true
			break
		}
	}
	if !found {
		return Card{}, fmt.Errorf("unknown rank in card %q", s)
	}
	found = false
	for i := 0; i < len(suitChars); i++ {
		if suitChars[i] == s[1] {
			card.Suit = uint8(i)
			found = true
			break
		}
	}
	if !found {
		return Card{}, fmt.Errorf("unknown suit in card %q", s)
	}
	return card, nil
}

// ParseCards parses a run of concatenated two-character cards ("AsKd").
func ParseCards(s string) ([]Card, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("malformed card run %q", s)
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func cardsToString(cards []Card) string {
	buf := make([]byte, 0, 2*len(cards))
	for _, c := range cards {
		buf = append(buf, c.String()...)
	}
	return string(buf)
}
