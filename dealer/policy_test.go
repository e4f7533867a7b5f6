package dealer

import (
	"testing"
	"time"
)

func testLimits() Limits {
	return Limits{
		MaxInvalidActions:  2,
		MaxResponseMicros:  1000,
		MaxUsedHandMicros:  3000,
		MaxUsedMatchMicros: 10000,
	}
}

func TestInvalidActionCeiling(t *testing.T) {
	p := NewPolicy(testLimits(), 2)

	// Up to the maximum is tolerated; max+1 is fatal, never earlier.
	for i := 0; i < 2; i++ {
		if err := p.NoteInvalidAction(0); err != nil {
			t.Fatalf("invalid action %d should degrade, got %v", i+1, err)
		}
	}
	if err := p.NoteInvalidAction(0); err == nil {
		t.Fatal("third invalid action should abort the match")
	}
	// The other seat's budget is untouched.
	if err := p.NoteInvalidAction(1); err != nil {
		t.Fatalf("seat 1's first invalid action should degrade, got %v", err)
	}
}

func TestSingleResponseCeiling(t *testing.T) {
	p := NewPolicy(testLimits(), 1)
	base := time.Now()

	if err := p.ChargeTime(0, base, base.Add(900*time.Microsecond)); err != nil {
		t.Fatalf("fast response should pass, got %v", err)
	}
	if err := p.ChargeTime(0, base, base.Add(1500*time.Microsecond)); err == nil {
		t.Fatal("single response over the ceiling should abort even with hand budget left")
	}
}

func TestHandAndMatchCeilings(t *testing.T) {
	p := NewPolicy(testLimits(), 1)
	base := time.Now()
	charge := func() error { return p.ChargeTime(0, base, base.Add(999*time.Microsecond)) }

	// Three fast responses exhaust the 3000us hand budget on the fourth.
	for i := 0; i < 3; i++ {
		if err := charge(); err != nil {
			t.Fatalf("response %d should pass, got %v", i+1, err)
		}
	}
	if err := charge(); err == nil {
		t.Fatal("hand budget breach should abort")
	}

	p = NewPolicy(testLimits(), 1)
	for hand := 0; hand < 3; hand++ {
		p.NewHand()
		for i := 0; i < 3; i++ {
			if err := charge(); err != nil {
				t.Fatalf("hand %d response %d should pass, got %v", hand, i+1, err)
			}
		}
	}
	// 9 charges of 999us so far; the match ceiling of 10000us falls next.
	p.NewHand()
	if err := charge(); err != nil {
		t.Fatalf("tenth response still under match budget, got %v", err)
	}
	if err := charge(); err == nil {
		t.Fatal("match budget breach should abort even after a hand reset")
	}
}

func TestClockSkewChargesNothing(t *testing.T) {
	p := NewPolicy(testLimits(), 1)
	base := time.Now()

	if err := p.ChargeTime(0, base, base.Add(-time.Second)); err != nil {
		t.Fatalf("skewed response should be free, got %v", err)
	}
	if used := p.UsedMatch(0); used != 0 {
		t.Errorf("skewed response charged %v", used)
	}
}

func TestResponseBudgetIsTightestCeiling(t *testing.T) {
	p := NewPolicy(testLimits(), 1)

	if got := p.ResponseBudget(0); got != 1000*time.Microsecond {
		t.Errorf("fresh budget %v, want 1ms", got)
	}
	base := time.Now()
	if err := p.ChargeTime(0, base, base.Add(2500*time.Microsecond)); err == nil {
		t.Fatal("expected single-response breach")
	}
	// 2500us charged against the 3000us hand budget leaves 500us.
	if got := p.ResponseBudget(0); got != 500*time.Microsecond {
		t.Errorf("budget after spend %v, want 500us", got)
	}
}
