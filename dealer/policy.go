package dealer

import (
	"fmt"
	"time"
)

// Limits are the configured ceilings a match is played under. Zero values
// are honored literally; use the Default* constants for the classic
// tournament settings.
type Limits struct {
	MaxInvalidActions  uint32
	MaxResponseMicros  uint64
	MaxUsedHandMicros  uint64
	MaxUsedMatchMicros uint64
}

// Classic default ceilings.
const (
	DefaultMaxInvalidActions  = uint32(1<<32 - 1)
	DefaultMaxResponseMicros  = uint64(600000000)
	DefaultMaxUsedHandMicros  = uint64(600000000)
	DefaultMaxUsedMatchMicros = uint64(7000000000)
)

// Policy tracks per-seat deviation budgets for one match: how many invalid
// actions each seat has produced and how much response time it has burned
// in the current hand and across the match. A Policy is owned by exactly
// one game loop and is never shared.
type Policy struct {
	limits Limits

	invalidActions  []uint32
	usedHandMicros  []uint64
	usedMatchMicros []uint64
}

// NewPolicy returns a Policy for the given seat count.
func NewPolicy(limits Limits, seats int) *Policy {
	return &Policy{
		limits:          limits,
		invalidActions:  make([]uint32, seats),
		usedHandMicros:  make([]uint64, seats),
		usedMatchMicros: make([]uint64, seats),
	}
}

// NewHand resets every seat's hand-time budget. Match budgets and invalid
// action counts carry across hands.
func (p *Policy) NewHand() {
	for s := range p.usedHandMicros {
		p.usedHandMicros[s] = 0
	}
}

// NoteInvalidAction charges one invalid action to a seat. A nil return
// means the seat is still under its ceiling and play degrades (the action
// is substituted); an error means the match must end.
func (p *Policy) NoteInvalidAction(seat int) error {
	p.invalidActions[seat]++
	if p.invalidActions[seat] > p.limits.MaxInvalidActions {
		return fmt.Errorf("seat %d exceeded %d invalid actions", seat+1, p.limits.MaxInvalidActions)
	}
	return nil
}

// ChargeTime accounts one response's latency against a seat's budgets and
// checks all three ceilings. A receive stamp earlier than its send stamp is
// observed clock skew: the response is charged as instantaneous.
func (p *Policy) ChargeTime(seat int, send, recv time.Time) error {
	if recv.Before(send) {
		return nil
	}
	micros := uint64(recv.Sub(send) / time.Microsecond)

	p.usedHandMicros[seat] += micros
	p.usedMatchMicros[seat] += micros

	if micros > p.limits.MaxResponseMicros {
		return fmt.Errorf("seat %d took %dus on one response, over the %dus limit",
			seat+1, micros, p.limits.MaxResponseMicros)
	}
	if p.usedHandMicros[seat] > p.limits.MaxUsedHandMicros {
		return fmt.Errorf("seat %d used %dus this hand, over the %dus limit",
			seat+1, p.usedHandMicros[seat], p.limits.MaxUsedHandMicros)
	}
	if p.usedMatchMicros[seat] > p.limits.MaxUsedMatchMicros {
		return fmt.Errorf("seat %d used %dus this match, over the %dus limit",
			seat+1, p.usedMatchMicros[seat], p.limits.MaxUsedMatchMicros)
	}
	return nil
}

// ResponseBudget returns how long a seat may take to answer the pending
// request before some ceiling is necessarily breached.
func (p *Policy) ResponseBudget(seat int) time.Duration {
	budget := p.limits.MaxResponseMicros
	if left := p.limits.MaxUsedHandMicros - p.usedHandMicros[seat]; left < budget {
		budget = left
	}
	if left := p.limits.MaxUsedMatchMicros - p.usedMatchMicros[seat]; left < budget {
		budget = left
	}
	return time.Duration(budget) * time.Microsecond
}

// UsedMatch returns a seat's cumulative time used in the match.
func (p *Policy) UsedMatch(seat int) time.Duration {
	return time.Duration(p.usedMatchMicros[seat]) * time.Microsecond
}
