// Package stock abstracts where a shop keeps the items it trades: a plain
// counter, a container in the world, or nowhere at all.
package stock

import (
	"math"

	"github.com/gravitas-games/signshop/internal/inventory"
)

// Backend is the stock of one shop in units of its traded item.
type Backend interface {
	// Amount returns the number of units currently in stock.
	Amount() int
	// CanIncrease reports whether n more units fit, without mutating.
	CanIncrease(n int) bool
	// Increase adds n units. It fails without mutation when they do not fit.
	Increase(n int) bool
	// Decrease removes n units. It fails without mutation when fewer are held.
	Decrease(n int) bool
	// Tracked is false for backends that never run out.
	Tracked() bool
}

// Counter is a virtual stock kept as a plain number owned by the shop record.
type Counter struct {
	n *int
}

// NewCounter wraps the counter at n.
func NewCounter(n *int) *Counter {
	return &Counter{n: n}
}

// Amount returns the counter value.
func (c *Counter) Amount() int { return *c.n }

// CanIncrease reports whether adding n would not overflow the counter.
func (c *Counter) CanIncrease(n int) bool {
	return n >= 0 && *c.n <= math.MaxInt-n
}

// Increase adds n to the counter.
func (c *Counter) Increase(n int) bool {
	if !c.CanIncrease(n) {
		return false
	}
	*c.n += n
	return true
}

// Decrease takes n from the counter. It never goes below zero.
func (c *Counter) Decrease(n int) bool {
	if n < 0 || *c.n < n {
		return false
	}
	*c.n -= n
	return true
}

// Tracked is always true for a counter.
func (c *Counter) Tracked() bool { return true }

// Ledger is the stock held in a container, restricted to one item.
type Ledger struct {
	slots inventory.Slots
	item  inventory.Stack
}

// NewLedger views slots as the stock of item.
func NewLedger(slots inventory.Slots, item inventory.Stack) *Ledger {
	return &Ledger{slots: slots, item: item.WithQty(1)}
}

// Amount counts the matching items in the container.
func (l *Ledger) Amount() int {
	return inventory.Count(l.slots, l.item)
}

// CanIncrease reports whether n more items fit in the container.
func (l *Ledger) CanIncrease(n int) bool {
	return inventory.FreeSpaceFor(l.slots, l.item) >= n
}

// Increase stores n items, all or nothing.
func (l *Ledger) Increase(n int) bool {
	return inventory.Push(l.slots, l.item.WithQty(n))
}

// Decrease removes n items, all or nothing.
func (l *Ledger) Decrease(n int) bool {
	return inventory.Pull(l.slots, l.item, n)
}

// Tracked is always true for a container.
func (l *Ledger) Tracked() bool { return true }

// Unlimited is the stock of an untracked admin shop. It never runs out and
// never fills up.
type Unlimited struct{}

// Amount is always math.MaxInt.
func (Unlimited) Amount() int { return math.MaxInt }

// CanIncrease always succeeds.
func (Unlimited) CanIncrease(int) bool { return true }

// Increase discards the items.
func (Unlimited) Increase(int) bool { return true }

// Decrease always succeeds.
func (Unlimited) Decrease(int) bool { return true }

// Tracked is false: callers skip stock checks.
func (Unlimited) Tracked() bool { return false }
