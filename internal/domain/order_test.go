package domain

import "testing"

func TestSideValid(t *testing.T) {
	if !SideBuy.Valid() || !SideSell.Valid() {
		t.Error("BUY and SELL must be valid sides")
	}
	if Side("HOLD").Valid() {
		t.Error("unknown side must be invalid")
	}
	if Side("").Valid() {
		t.Error("empty side must be invalid")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	cases := []struct {
		status   OrderStatus
		terminal bool
	}{
		{StatusPending, false},
		{StatusMatched, true},
		{StatusCanceled, true},
	}
	for _, c := range cases {
		if c.status.Terminal() != c.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", c.status, !c.terminal, c.terminal)
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusMatched, StatusCanceled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if OrderStatus("FILLED").Valid() {
		t.Error("unknown status must be invalid")
	}
}

func TestOrderCost(t *testing.T) {
	order := &Order{Size: dec("10"), Price: dec("150")}
	if !order.Cost().Equal(dec("1500")) {
		t.Errorf("Cost() = %s, want 1500", order.Cost())
	}
}
