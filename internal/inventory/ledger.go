package inventory

// Limit returns the effective per-slot maximum for s in inv.
func Limit(inv Slots, s Stack) int {
	limit := inv.StackLimit()
	if limit <= 0 || s.Max() < limit {
		limit = s.Max()
	}
	return limit
}

// FreeSlots counts the empty slots of inv.
func FreeSlots(inv Slots) int {
	free := 0
	for i := 0; i < inv.Size(); i++ {
		if inv.Slot(i) == nil {
			free++
		}
	}
	return free
}

// FreeSpaceFor returns how many more items stacking with s fit into inv.
// Slots holding other items count as full.
func FreeSpaceFor(inv Slots, s Stack) int {
	limit := Limit(inv, s)
	space := inv.Size() * limit
	for i := 0; i < inv.Size(); i++ {
		st := inv.Slot(i)
		if st == nil {
			continue
		}
		if st.StacksWith(s) {
			space -= min(st.Qty, limit)
		} else {
			space -= limit
		}
	}
	if space < 0 {
		return 0
	}
	return space
}

// Fits reports whether the whole stack s can be pushed into inv.
func Fits(inv Slots, s Stack) bool {
	return FreeSpaceFor(inv, s) >= s.Qty
}

// Push inserts s into inv, topping up partial stacks first and then filling
// empty slots. Nothing is inserted unless the whole stack fits.
func Push(inv Slots, s Stack) bool {
	if s.Empty() {
		return true
	}
	if !Fits(inv, s) {
		return false
	}
	limit := Limit(inv, s)
	remaining := s.Qty
	for i := 0; i < inv.Size() && remaining > 0; i++ {
		st := inv.Slot(i)
		if st == nil || !st.StacksWith(s) || st.Qty >= limit {
			continue
		}
		add := min(limit-st.Qty, remaining)
		merged := st.WithQty(st.Qty + add)
		inv.SetSlot(i, &merged)
		remaining -= add
	}
	for i := 0; i < inv.Size() && remaining > 0; i++ {
		if inv.Slot(i) != nil {
			continue
		}
		put := min(limit, remaining)
		placed := s.WithQty(put)
		inv.SetSlot(i, &placed)
		remaining -= put
	}
	return remaining == 0
}

// Count sums the quantity of every stack in inv that stacks with s.
func Count(inv Slots, s Stack) int {
	total := 0
	for i := 0; i < inv.Size(); i++ {
		if st := inv.Slot(i); st != nil && st.StacksWith(s) {
			total += st.Qty
		}
	}
	return total
}

// Pull removes qty items stacking with s, draining slots in order. Nothing is
// removed unless inv holds at least qty.
func Pull(inv Slots, s Stack, qty int) bool {
	if qty <= 0 {
		return true
	}
	if Count(inv, s) < qty {
		return false
	}
	remaining := qty
	for i := 0; i < inv.Size() && remaining > 0; i++ {
		remaining -= PullSlot(inv, i, s, remaining)
	}
	return true
}

// PullSlot removes up to qty items stacking with s from slot i and returns
// how many were removed.
func PullSlot(inv Slots, i int, s Stack, qty int) int {
	st := inv.Slot(i)
	if st == nil || qty <= 0 || !st.StacksWith(s) {
		return 0
	}
	take := min(st.Qty, qty)
	if take == st.Qty {
		inv.SetSlot(i, nil)
		return take
	}
	left := st.WithQty(st.Qty - take)
	inv.SetSlot(i, &left)
	return take
}
