// Package shop holds the shop records created from tagged signs, their
// validation against the world, and the registry indexing them.
package shop

import (
	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/inventory"
	"github.com/gravitas-games/signshop/internal/stock"
	"github.com/gravitas-games/signshop/internal/world"
)

// searchRadius is the half edge of the box searched for a sign's fixture.
const searchRadius = 1.4

// Shop is one sign-controlled point of sale.
//
// The fixture and container handles are caches. The fixture is identified by
// its id, the container by the block below the sign, and both are re-resolved
// whenever the cached handle is no longer live.
type Shop struct {
	pos          world.BlockPos
	owner        uuid.UUID
	fixtureID    uuid.UUID
	useContainer bool
	stock        int

	fixture   world.Fixture
	container world.Container

	buyPrice  int
	sellPrice int
	amount    int
	item      *inventory.Stack
	valid     bool
	err       error
}

// New creates an unvalidated shop. A non-nil container makes it container-backed.
func New(pos world.BlockPos, owner uuid.UUID, fixture world.Fixture, container world.Container) *Shop {
	s := &Shop{
		pos:          pos,
		owner:        owner,
		fixtureID:    fixture.ID(),
		useContainer: container != nil,
		fixture:      fixture,
		container:    container,
	}
	s.reset()
	return s
}

func (s *Shop) reset() {
	s.buyPrice, s.sellPrice, s.amount = Unset, Unset, 1
	s.item = nil
	s.valid = false
}

// Pos returns the position of the controlling sign.
func (s *Shop) Pos() world.BlockPos { return s.pos }

// Owner returns the subject that created the shop.
func (s *Shop) Owner() uuid.UUID { return s.owner }

// FixtureID returns the identity of the bound display fixture.
func (s *Shop) FixtureID() uuid.UUID { return s.fixtureID }

// UsesContainer reports whether stock lives in the container below the sign.
func (s *Shop) UsesContainer() bool { return s.useContainer }

// BuyPrice returns what a player pays per trade, or Unset.
func (s *Shop) BuyPrice() int { return s.buyPrice }

// SellPrice returns what a player receives per trade, or Unset.
func (s *Shop) SellPrice() int { return s.sellPrice }

// Amount returns the number of items moved per trade.
func (s *Shop) Amount() int { return s.amount }

// Buys reports whether the shop has a buy price, i.e. players can buy from it.
func (s *Shop) Buys() bool { return s.buyPrice != Unset }

// Sells reports whether the shop has a sell price, i.e. players can sell to it.
func (s *Shop) Sells() bool { return s.sellPrice != Unset }

// Valid reports the outcome of the last validation.
func (s *Shop) Valid() bool { return s.valid }

// Err returns why the last validation failed.
func (s *Shop) Err() error { return s.err }

// VirtualStock returns the virtual stock counter.
func (s *Shop) VirtualStock() int { return s.stock }

// SetVirtualStock overwrites the virtual stock counter.
func (s *Shop) SetVirtualStock(n int) { s.stock = n }

// TradedItem returns a copy of the displayed item, or nil when invalid.
func (s *Shop) TradedItem() *inventory.Stack {
	if !s.valid || s.item == nil {
		return nil
	}
	st := s.item.Copy()
	return &st
}

// ItemStack returns a copy of the traded item sized to one transaction.
// Callers use its Qty rather than Amount.
func (s *Shop) ItemStack() (inventory.Stack, bool) {
	if !s.valid || s.item == nil {
		return inventory.Stack{}, false
	}
	return s.item.WithQty(s.amount), true
}

// Validate re-reads the sign, fixture and container and re-derives the
// prices, amount and traded item. Nothing from an earlier validation
// survives a failure.
func (s *Shop) Validate(w world.World, tags Tags) error {
	s.reset()
	s.err = s.validate(w, tags)
	if s.err != nil {
		s.reset()
	}
	s.valid = s.err == nil
	return s.err
}

func (s *Shop) validate(w world.World, tags Tags) error {
	lines, ok := w.SignLines(s.pos)
	if !ok || !tags.Tagged(lines) {
		return ErrMissingHeader
	}

	fixture := s.Fixture(w)
	if fixture == nil {
		return ErrMissingFixture
	}
	item := fixture.Item()
	if item == nil || item.Empty() {
		return ErrEmptyFixture
	}
	if item.Damaged() {
		return ErrDamagedItem
	}

	if s.useContainer && s.Container(w) == nil {
		return ErrMissingContainer
	}

	terms, err := ParseTerms(lines[1:])
	if err != nil {
		return err
	}
	s.buyPrice, s.sellPrice, s.amount = terms.BuyPrice, terms.SellPrice, terms.Amount
	traded := item.WithQty(1)
	s.item = &traded
	return nil
}

// Fixture resolves the bound fixture, searching around the sign by id when
// the cached handle is gone.
func (s *Shop) Fixture(w world.World) world.Fixture {
	if s.fixture != nil && s.fixture.Alive() {
		return s.fixture
	}
	s.fixture = nil
	for _, f := range w.FixturesWithin(SearchBox(s.pos)) {
		if f.ID() == s.fixtureID {
			s.fixture = f
			break
		}
	}
	return s.fixture
}

// Container resolves the stock container directly below the sign.
func (s *Shop) Container(w world.World) world.Container {
	if !s.useContainer {
		return nil
	}
	if s.container != nil {
		if live, ok := w.ContainerAt(s.container.Position()); ok && live == s.container {
			return s.container
		}
		s.container = nil
	}
	if c, ok := FindContainer(w, s.pos); ok {
		s.container = c
	}
	return s.container
}

// Stock returns the stock backend of a valid shop. Shops without a
// container keep a virtual counter when tracked is set and are unlimited
// otherwise.
func (s *Shop) Stock(w world.World, tracked bool) (stock.Backend, bool) {
	if !s.valid {
		return nil, false
	}
	if s.useContainer {
		c := s.Container(w)
		if c == nil {
			return nil, false
		}
		return stock.NewLedger(c, *s.item), true
	}
	if tracked {
		return stock.NewCounter(&s.stock), true
	}
	return stock.Unlimited{}, true
}

// SearchBox returns the volume searched for the fixture of a sign at pos.
func SearchBox(pos world.BlockPos) world.Box {
	return world.BoxAround(searchCenter(pos), searchRadius)
}

func searchCenter(pos world.BlockPos) world.Vec3 {
	return world.Vec3{X: float64(pos.X), Y: float64(pos.Y) + 0.5, Z: float64(pos.Z)}
}

// FindFixture picks the fixture a new shop at pos should bind. Fixtures
// already bound to a shop are skipped unless nothing else is left; among
// the rest the nearest wins.
func FindFixture(w world.World, pos world.BlockPos, bound func(uuid.UUID) bool) world.Fixture {
	candidates := w.FixturesWithin(SearchBox(pos))
	if len(candidates) == 0 {
		return nil
	}
	if bound != nil {
		free := make([]world.Fixture, 0, len(candidates))
		for _, f := range candidates {
			if !bound(f.ID()) {
				free = append(free, f)
			}
		}
		if len(free) > 0 {
			candidates = free
		}
	}
	return world.Nearest(candidates, searchCenter(pos))
}

// FindContainer returns the container directly below the sign at pos.
func FindContainer(w world.World, pos world.BlockPos) (world.Container, bool) {
	return w.ContainerAt(pos.Below())
}
