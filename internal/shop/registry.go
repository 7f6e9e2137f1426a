package shop

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/world"
)

// Store persists shop snapshots.
type Store interface {
	Load(ctx context.Context) ([]Snapshot, error)
	Save(ctx context.Context, shops []Snapshot) error
}

// Registry indexes shops by sign position and by fixture id. Both indexes
// and the shop set change together under one lock.
type Registry struct {
	mu        sync.RWMutex
	shops     map[*Shop]struct{}
	byPos     map[world.BlockPos]*Shop
	byFixture map[uuid.UUID]*Shop
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		shops:     make(map[*Shop]struct{}),
		byPos:     make(map[world.BlockPos]*Shop),
		byFixture: make(map[uuid.UUID]*Shop),
	}
}

// Add registers s. It fails when the position or the fixture is already bound.
func (r *Registry) Add(s *Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPos[s.pos]; ok {
		return fmt.Errorf("%w: %s", ErrPositionTaken, s.pos)
	}
	if _, ok := r.byFixture[s.fixtureID]; ok {
		return fmt.Errorf("%w: %s", ErrFixtureTaken, s.fixtureID)
	}
	r.shops[s] = struct{}{}
	r.byPos[s.pos] = s
	r.byFixture[s.fixtureID] = s
	return nil
}

// Remove unregisters s. Removing an unknown shop is a no-op that returns false.
func (r *Registry) Remove(s *Shop) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shops[s]; !ok {
		return false
	}
	delete(r.shops, s)
	if r.byPos[s.pos] == s {
		delete(r.byPos, s.pos)
	}
	if r.byFixture[s.fixtureID] == s {
		delete(r.byFixture, s.fixtureID)
	}
	return true
}

// AtPos returns the shop controlled by the sign at pos.
func (r *Registry) AtPos(pos world.BlockPos) (*Shop, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byPos[pos]
	return s, ok
}

// ByFixture returns the shop bound to the fixture id.
func (r *Registry) ByFixture(id uuid.UUID) (*Shop, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byFixture[id]
	return s, ok
}

// FixtureBound reports whether any shop binds the fixture id.
func (r *Registry) FixtureBound(id uuid.UUID) bool {
	_, ok := r.ByFixture(id)
	return ok
}

// Len returns the number of registered shops.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shops)
}

// All returns the registered shops ordered by position.
func (r *Registry) All() []*Shop {
	r.mu.RLock()
	out := make([]*Shop, 0, len(r.shops))
	for s := range r.shops {
		out = append(out, s)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return lessPos(out[i].pos, out[j].pos) })
	return out
}

// Clear drops every shop.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shops = make(map[*Shop]struct{})
	r.byPos = make(map[world.BlockPos]*Shop)
	r.byFixture = make(map[uuid.UUID]*Shop)
}

// Load replaces the registry contents with the shops in store. A failed load
// leaves the registry empty. Broken or conflicting records are skipped.
func (r *Registry) Load(ctx context.Context, store Store) int {
	r.Clear()
	snapshots, err := store.Load(ctx)
	if err != nil {
		log.Printf("Failed to load shops, starting with none: %v", err)
		return 0
	}
	for _, sn := range snapshots {
		s, err := FromSnapshot(sn)
		if err != nil {
			log.Printf("Skipping stored shop at %s: %v", sn.Pos, err)
			continue
		}
		if err := r.Add(s); err != nil {
			log.Printf("Skipping stored shop at %s: %v", sn.Pos, err)
		}
	}
	log.Printf("Loaded %d shops", r.Len())
	return r.Len()
}

// Save writes every registered shop to store.
func (r *Registry) Save(ctx context.Context, store Store) error {
	shops := r.All()
	snapshots := make([]Snapshot, 0, len(shops))
	for _, s := range shops {
		snapshots = append(snapshots, s.Snapshot())
	}
	if err := store.Save(ctx, snapshots); err != nil {
		return fmt.Errorf("failed to save shops: %w", err)
	}
	return nil
}

func lessPos(a, b world.BlockPos) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
