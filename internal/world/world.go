// Package world describes the block world the shops live in: sign blocks,
// display fixtures hanging next to them and containers underneath.
package world

import (
	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/inventory"
)

// Fixture is a display entity showing a single item, such as an item frame.
type Fixture interface {
	ID() uuid.UUID
	Position() Vec3
	// Item returns a copy of the displayed stack, or nil when empty.
	Item() *inventory.Stack
	// Alive is false once the fixture has been removed from the world.
	Alive() bool
}

// Container is a block that stores items in slots.
type Container interface {
	inventory.Slots
	Position() BlockPos
}

// World is the read side of the block world.
type World interface {
	IsSign(pos BlockPos) bool
	// SignLines returns the text lines of the sign at pos.
	SignLines(pos BlockPos) ([]string, bool)
	// FixturesWithin returns the live fixtures inside box.
	FixturesWithin(box Box) []Fixture
	// ContainerAt returns the container block at pos.
	ContainerAt(pos BlockPos) (Container, bool)
}
