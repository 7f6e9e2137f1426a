package models

import (
	"testing"

	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/inventory"
)

func TestPlayerHeldSlot(t *testing.T) {
	p := NewPlayer(uuid.New(), "alice", 4, 64)
	if p.Held() != nil {
		t.Fatalf("expected empty hand")
	}
	if !p.Give(inventory.Stack{Item: "stone", Qty: 70}) {
		t.Fatalf("expected stones to fit")
	}
	if got := p.Held(); got == nil || got.Qty != 64 {
		t.Fatalf("expected full stack in slot 0, got %+v", got)
	}
	if !p.SelectSlot(1) || p.HeldSlot() != 1 || p.Held().Qty != 6 {
		t.Fatalf("expected remainder in slot 1")
	}
	if p.SelectSlot(4) || p.SelectSlot(-1) || p.HeldSlot() != 1 {
		t.Fatalf("expected out of range slots ignored")
	}
}

func TestPlayerGiveAllOrNothing(t *testing.T) {
	p := NewPlayer(uuid.New(), "bob", 1, 64)
	if p.Give(inventory.Stack{Item: "stone", Qty: 65}) {
		t.Fatalf("expected oversized give rejected")
	}
	if p.Held() != nil {
		t.Fatalf("expected inventory untouched")
	}
}
