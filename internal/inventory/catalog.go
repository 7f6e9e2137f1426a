package inventory

import (
	"errors"
	"sort"
	"sync"
)

// ItemDetails captures per-item metadata that stacks do not carry themselves.
type ItemDetails struct {
	ID       ItemID `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	MaxStack int    `json:"maxStack,omitempty" yaml:"max_stack,omitempty"`
	// Placeable marks items that can be put down as blocks.
	Placeable   bool   `json:"placeable,omitempty" yaml:"placeable,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Catalog stores item details keyed by ItemID.
type Catalog struct {
	mu    sync.RWMutex
	items map[ItemID]ItemDetails
}

// NewCatalog constructs a catalog and optionally seeds it with item details.
func NewCatalog(details ...ItemDetails) *Catalog {
	c := &Catalog{items: make(map[ItemID]ItemDetails, len(details))}
	for _, d := range details {
		_ = c.Register(d) // ignore invalid seeds
	}
	return c
}

// Register inserts or replaces metadata for an item. The ID must be non-empty.
func (c *Catalog) Register(details ItemDetails) error {
	if details.ID == "" {
		return errors.New("inventory: item details missing id")
	}
	if details.MaxStack < 0 {
		return errors.New("inventory: negative max stack")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[details.ID] = details
	return nil
}

// Lookup returns details for the provided ID, if present.
func (c *Catalog) Lookup(id ItemID) (ItemDetails, bool) {
	if c == nil {
		return ItemDetails{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	details, ok := c.items[id]
	return details, ok
}

// NewStack builds a stack of qty items carrying the catalog's stack maximum.
func (c *Catalog) NewStack(id ItemID, meta, qty int) Stack {
	st := Stack{Item: id, Meta: meta, Qty: qty}
	if details, ok := c.Lookup(id); ok {
		st.StackMax = details.MaxStack
	}
	return st
}

// DisplayName returns the human readable name of the stack's item.
func (c *Catalog) DisplayName(s Stack) string {
	if details, ok := c.Lookup(s.Item); ok && details.Name != "" {
		return details.Name
	}
	return string(s.Item)
}

// Placeable reports whether the stack's item can be placed as a block.
func (c *Catalog) Placeable(s Stack) bool {
	details, ok := c.Lookup(s.Item)
	return ok && details.Placeable
}

// Export copies catalog contents into a slice sorted by ItemID.
func (c *Catalog) Export() []ItemDetails {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ItemDetails, 0, len(c.items))
	for _, d := range c.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
