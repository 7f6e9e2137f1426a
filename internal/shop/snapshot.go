package shop

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/world"
)

// Snapshot is the persisted form of a shop. Prices, amount, validity and
// the traded item are not stored; they come back on the next validation.
type Snapshot struct {
	Pos          world.BlockPos `json:"pos" yaml:"pos" bson:"pos"`
	Owner        string         `json:"owner,omitempty" yaml:"owner,omitempty" bson:"owner,omitempty"`
	Fixture      string         `json:"fixture" yaml:"fixture" bson:"fixture"`
	UseContainer bool           `json:"useContainer" yaml:"use_container" bson:"useContainer"`
	Stock        int            `json:"stock,omitempty" yaml:"stock,omitempty" bson:"stock,omitempty"`
}

// Snapshot captures the persistent fields of s.
func (s *Shop) Snapshot() Snapshot {
	sn := Snapshot{
		Pos:          s.pos,
		Fixture:      s.fixtureID.String(),
		UseContainer: s.useContainer,
	}
	if s.owner != uuid.Nil {
		sn.Owner = s.owner.String()
	}
	if !s.useContainer {
		sn.Stock = s.stock
	}
	return sn
}

// FromSnapshot rebuilds an unvalidated shop.
func FromSnapshot(sn Snapshot) (*Shop, error) {
	fixture, err := uuid.Parse(sn.Fixture)
	if err != nil {
		return nil, fmt.Errorf("invalid fixture id %q: %w", sn.Fixture, err)
	}
	owner := uuid.Nil
	if sn.Owner != "" {
		if owner, err = uuid.Parse(sn.Owner); err != nil {
			return nil, fmt.Errorf("invalid owner id %q: %w", sn.Owner, err)
		}
	}
	s := &Shop{
		pos:          sn.Pos,
		owner:        owner,
		fixtureID:    fixture,
		useContainer: sn.UseContainer,
	}
	if !sn.UseContainer {
		s.stock = sn.Stock
	}
	s.reset()
	return s, nil
}
