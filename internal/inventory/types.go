// Package inventory tracks item stacks held in slot-based containers and
// player inventories. It knows item identifiers, quantities, per-stack
// maxima and the auxiliary data that decides whether two stacks merge.
package inventory

import "maps"

// DefaultStackMax is used when neither the stack nor the catalog sets a maximum.
const DefaultStackMax = 64

// ItemID represents an application-defined identifier for an item type.
type ItemID string

// OwnerID represents an application-defined owner identifier.
type OwnerID string

// Stack represents an item stack tracked by an inventory slot.
type Stack struct {
	Item   ItemID `json:"item" yaml:"item" bson:"item"`
	Meta   int    `json:"meta,omitempty" yaml:"meta,omitempty" bson:"meta,omitempty"`
	Damage int    `json:"damage,omitempty" yaml:"damage,omitempty" bson:"damage,omitempty"`
	// Data is the auxiliary tag data (enchantments, names, ...).
	Data map[string]string `json:"data,omitempty" yaml:"data,omitempty" bson:"data,omitempty"`
	Qty  int               `json:"qty" yaml:"qty" bson:"qty"`
	// StackMax is the per-stack maximum for this item. Zero means DefaultStackMax.
	StackMax int `json:"stackMax,omitempty" yaml:"stack_max,omitempty" bson:"stackMax,omitempty"`
}

// Empty reports whether the stack holds nothing.
func (s Stack) Empty() bool {
	return s.Item == "" || s.Qty <= 0
}

// Max returns the per-stack maximum of the item.
func (s Stack) Max() int {
	if s.StackMax > 0 {
		return s.StackMax
	}
	return DefaultStackMax
}

// Damaged reports whether the stack carries durability damage.
func (s Stack) Damaged() bool {
	return s.Damage > 0
}

// SameItem reports whether both stacks are the same item type and variant,
// ignoring damage and auxiliary data.
func (s Stack) SameItem(o Stack) bool {
	return s.Item == o.Item && s.Meta == o.Meta
}

// StacksWith reports whether both stacks are equal in everything but quantity,
// including auxiliary data. Only such stacks merge into one slot.
func (s Stack) StacksWith(o Stack) bool {
	if !s.SameItem(o) || s.Damage != o.Damage {
		return false
	}
	if len(s.Data) == 0 && len(o.Data) == 0 {
		return true
	}
	return maps.Equal(s.Data, o.Data)
}

// Copy returns a deep copy of the stack.
func (s Stack) Copy() Stack {
	out := s
	if s.Data != nil {
		out.Data = maps.Clone(s.Data)
	}
	return out
}

// WithQty returns a deep copy of the stack holding qty items.
func (s Stack) WithQty(qty int) Stack {
	out := s.Copy()
	out.Qty = qty
	return out
}
