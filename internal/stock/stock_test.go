package stock

import (
	"testing"

	"github.com/gravitas-games/signshop/internal/inventory"
)

func TestCounterRejectsOverdraw(t *testing.T) {
	n := 3
	c := NewCounter(&n)
	if c.Decrease(4) {
		t.Fatalf("expected decrease beyond stock to fail")
	}
	if !c.Increase(2) || c.Amount() != 5 || n != 5 {
		t.Fatalf("expected counter to be 5, got %d", c.Amount())
	}
	if !c.Decrease(5) || n != 0 {
		t.Fatalf("expected counter to drain to 0")
	}
}

func TestLedgerCountsOnlyMatchingData(t *testing.T) {
	chest := inventory.NewGrid("chest", "", 3, 64)
	chest.SetSlot(0, &inventory.Stack{Item: "sword", Qty: 1, Data: map[string]string{"ench": "sharp"}})
	chest.SetSlot(1, &inventory.Stack{Item: "sword", Qty: 1})

	l := NewLedger(chest, inventory.Stack{Item: "sword", Qty: 5, Data: map[string]string{"ench": "sharp"}})
	if l.Amount() != 1 {
		t.Fatalf("expected 1 enchanted sword, got %d", l.Amount())
	}
	if l.Decrease(2) {
		t.Fatalf("expected decrease of 2 to fail")
	}
	if !l.Decrease(1) || chest.Slot(0) != nil || chest.Slot(1) == nil {
		t.Fatalf("expected only the enchanted sword to be removed")
	}
}

func TestLedgerCapacity(t *testing.T) {
	chest := inventory.NewGrid("chest", "", 1, 64)
	l := NewLedger(chest, inventory.Stack{Item: "diamond", Qty: 1})
	if !l.CanIncrease(64) || l.CanIncrease(65) {
		t.Fatalf("unexpected capacity check")
	}
	if l.Increase(65) || l.Amount() != 0 {
		t.Fatalf("expected failed increase to leave the chest empty")
	}
	if !l.Increase(64) || l.Amount() != 64 {
		t.Fatalf("expected chest to be full")
	}
}

func TestUnlimitedIsUntracked(t *testing.T) {
	var b Backend = Unlimited{}
	if b.Tracked() || !b.Decrease(1_000_000) || !b.CanIncrease(1_000_000) {
		t.Fatalf("unlimited stock must never run out or fill up")
	}
}
