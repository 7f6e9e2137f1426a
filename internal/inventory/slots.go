package inventory

// Slots is a fixed-size, slot-indexed item store such as a chest or a
// player inventory. Slot returns nil for an empty slot; SetSlot with nil
// clears it.
type Slots interface {
	Size() int
	Slot(i int) *Stack
	SetSlot(i int, s *Stack)
	// StackLimit is the container-wide per-slot maximum.
	StackLimit() int
}

// Grid is a slice-backed Slots implementation.
type Grid struct {
	ID    string   `json:"id"`
	Owner OwnerID  `json:"owner"`
	Limit int      `json:"limit"`
	Cells []*Stack `json:"cells"`
}

// NewGrid creates an empty inventory with size slots capped at limit items each.
func NewGrid(id string, owner OwnerID, size, limit int) *Grid {
	if limit <= 0 {
		limit = DefaultStackMax
	}
	return &Grid{
		ID:    id,
		Owner: owner,
		Limit: limit,
		Cells: make([]*Stack, size),
	}
}

// Size returns the number of slots.
func (g *Grid) Size() int { return len(g.Cells) }

// StackLimit returns the per-slot maximum.
func (g *Grid) StackLimit() int { return g.Limit }

// Slot returns the stack in slot i or nil when the slot is empty or out of range.
func (g *Grid) Slot(i int) *Stack {
	if i < 0 || i >= len(g.Cells) {
		return nil
	}
	st := g.Cells[i]
	if st == nil || st.Empty() {
		return nil
	}
	return st
}

// SetSlot replaces slot i. Empty stacks clear the slot.
func (g *Grid) SetSlot(i int, s *Stack) {
	if i < 0 || i >= len(g.Cells) {
		return
	}
	if s == nil || s.Empty() {
		g.Cells[i] = nil
		return
	}
	g.Cells[i] = s
}
