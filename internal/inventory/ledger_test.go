package inventory

import "testing"

func diamond(qty int) Stack {
	return Stack{Item: ItemID("diamond"), Qty: qty}
}

func TestFreeSpaceCountsPartialAndForeignSlots(t *testing.T) {
	inv := NewGrid("chest", OwnerID("u1"), 3, 64)
	inv.SetSlot(0, &Stack{Item: ItemID("diamond"), Qty: 10})
	inv.SetSlot(1, &Stack{Item: ItemID("stone"), Qty: 1})

	// 3*64 - 10 - 64
	if got := FreeSpaceFor(inv, diamond(1)); got != 118 {
		t.Fatalf("expected free space 118, got %d", got)
	}
	if FreeSlots(inv) != 1 {
		t.Fatalf("expected one free slot, got %d", FreeSlots(inv))
	}
}

func TestLimitUsesSmallerOfContainerAndItem(t *testing.T) {
	inv := NewGrid("chest", OwnerID("u1"), 2, 64)
	pearl := Stack{Item: ItemID("pearl"), Qty: 1, StackMax: 16}
	if got := Limit(inv, pearl); got != 16 {
		t.Fatalf("expected limit 16, got %d", got)
	}
	if got := FreeSpaceFor(inv, pearl); got != 32 {
		t.Fatalf("expected free space 32, got %d", got)
	}
}

func TestPushTopsUpPartialStacksFirst(t *testing.T) {
	inv := NewGrid("chest", OwnerID("u1"), 3, 64)
	inv.SetSlot(2, &Stack{Item: ItemID("diamond"), Qty: 60})

	if !Push(inv, diamond(10)) {
		t.Fatalf("expected push to succeed")
	}
	if inv.Slot(2).Qty != 64 {
		t.Fatalf("expected partial stack topped up to 64, got %d", inv.Slot(2).Qty)
	}
	if inv.Slot(0) == nil || inv.Slot(0).Qty != 6 {
		t.Fatalf("expected remainder of 6 in first empty slot, got %+v", inv.Slot(0))
	}
	if Count(inv, diamond(1)) != 70 {
		t.Fatalf("expected count 70, got %d", Count(inv, diamond(1)))
	}
}

func TestPushIsAllOrNothing(t *testing.T) {
	inv := NewGrid("chest", OwnerID("u1"), 1, 64)
	inv.SetSlot(0, &Stack{Item: ItemID("diamond"), Qty: 60})
	if Push(inv, diamond(5)) {
		t.Fatalf("expected push of 5 into 4 free to fail")
	}
	if inv.Slot(0).Qty != 60 {
		t.Fatalf("expected no mutation, got %d", inv.Slot(0).Qty)
	}
}

func TestPushDoesNotMergeDifferentData(t *testing.T) {
	inv := NewGrid("chest", OwnerID("u1"), 2, 64)
	named := Stack{Item: ItemID("sword"), Qty: 1, Data: map[string]string{"name": "Edge"}}
	inv.SetSlot(0, &named)
	if !Push(inv, Stack{Item: ItemID("sword"), Qty: 1}) {
		t.Fatalf("expected push to succeed")
	}
	if inv.Slot(0).Qty != 1 || inv.Slot(1) == nil {
		t.Fatalf("expected plain sword in its own slot")
	}
}

func TestPullDrainsInOrderAndClearsEmptySlots(t *testing.T) {
	inv := NewGrid("chest", OwnerID("u1"), 3, 64)
	inv.SetSlot(0, &Stack{Item: ItemID("diamond"), Qty: 2})
	inv.SetSlot(1, &Stack{Item: ItemID("stone"), Qty: 5})
	inv.SetSlot(2, &Stack{Item: ItemID("diamond"), Qty: 3})

	if !Pull(inv, diamond(1), 4) {
		t.Fatalf("expected pull to succeed")
	}
	if inv.Slot(0) != nil {
		t.Fatalf("expected first slot cleared")
	}
	if inv.Slot(2).Qty != 1 {
		t.Fatalf("expected 1 diamond left in slot 2, got %d", inv.Slot(2).Qty)
	}
	if inv.Slot(1).Qty != 5 {
		t.Fatalf("stone must be untouched")
	}
}

func TestPullFailsWithoutMutationWhenShort(t *testing.T) {
	inv := NewGrid("chest", OwnerID("u1"), 2, 64)
	inv.SetSlot(0, &Stack{Item: ItemID("diamond"), Qty: 2})
	if Pull(inv, diamond(1), 3) {
		t.Fatalf("expected pull to fail")
	}
	if inv.Slot(0).Qty != 2 {
		t.Fatalf("expected no mutation, got %d", inv.Slot(0).Qty)
	}
}

func TestStacksWithComparesData(t *testing.T) {
	a := Stack{Item: ItemID("sword"), Data: map[string]string{"ench": "sharp"}}
	b := Stack{Item: ItemID("sword"), Data: map[string]string{"ench": "sharp"}}
	c := Stack{Item: ItemID("sword")}
	if !a.StacksWith(b) {
		t.Fatalf("expected equal data to stack")
	}
	if a.StacksWith(c) || !a.SameItem(c) {
		t.Fatalf("expected same item with different data not to stack")
	}
	if !c.StacksWith(Stack{Item: ItemID("sword"), Data: map[string]string{}}) {
		t.Fatalf("nil and empty data must be equal")
	}
}

func TestCopyIsDeep(t *testing.T) {
	a := Stack{Item: ItemID("sword"), Qty: 1, Data: map[string]string{"k": "v"}}
	b := a.WithQty(3)
	b.Data["k"] = "changed"
	if a.Data["k"] != "v" || b.Qty != 3 {
		t.Fatalf("expected deep copy")
	}
}
