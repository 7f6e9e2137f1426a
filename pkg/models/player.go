package models

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/inventory"
)

// Player represents a connected player
type Player struct {
	// From JWT claims
	PlayerID uuid.UUID `json:"id"`       // JWT claim: player_id
	Username string    `json:"username"` // JWT claim
	Operator bool      `json:"operator"` // JWT claim: server operator flag

	// Connection state
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`

	// Session state
	SessionID string `json:"session_id"`

	// Game state, owned by the session loop
	Items *inventory.Grid `json:"items"`

	mu   sync.RWMutex
	held int
}

// NewPlayer creates a player with an empty inventory.
func NewPlayer(id uuid.UUID, username string, size, stackLimit int) *Player {
	return &Player{
		PlayerID: id,
		Username: username,
		Items:    inventory.NewGrid("player:"+id.String(), inventory.OwnerID(id.String()), size, stackLimit),
	}
}

// ID returns the player's persistent id
func (p *Player) ID() uuid.UUID {
	return p.PlayerID
}

// Name returns the player's display name
func (p *Player) Name() string {
	return p.Username
}

// Inventory returns the player's item slots
func (p *Player) Inventory() inventory.Slots {
	return p.Items
}

// HeldSlot returns the selected hotbar slot
func (p *Player) HeldSlot() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.held
}

// SelectSlot changes the held slot. Out of range slots are ignored.
func (p *Player) SelectSlot(i int) bool {
	if i < 0 || i >= p.Items.Size() {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.held = i
	return true
}

// Give adds a stack to the player's inventory if it fits entirely
func (p *Player) Give(st inventory.Stack) bool {
	return inventory.Push(p.Items, st)
}

// Held returns a copy of the stack in hand, or nil
func (p *Player) Held() *inventory.Stack {
	st := p.Items.Slot(p.HeldSlot())
	if st == nil {
		return nil
	}
	cp := st.Copy()
	return &cp
}
