package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/config"
	"github.com/gravitas-games/signshop/internal/journal"
	"github.com/gravitas-games/signshop/internal/network"
	"github.com/gravitas-games/signshop/internal/tick"
	"github.com/gravitas-games/signshop/internal/trade"
	"github.com/gravitas-games/signshop/pkg/models"
)

// Command is work posted to the logic loop
type Command func(ctx context.Context)

// Session owns the players and runs the logic loop. Engine handlers and
// world mutations only happen on the loop.
type Session struct {
	ID        string
	CreatedAt time.Time

	// Player management. Players outlive their connections so inventories
	// survive a reconnect.
	players     map[uuid.UUID]*models.Player // playerID -> Player
	connections map[uuid.UUID]*Connection    // playerID -> live Connection
	known       map[uuid.UUID]string         // playerID -> last known username
	mu          sync.RWMutex

	// Logic loop
	tasks    *tick.Queue
	commands chan Command
	tickRate int

	// Configuration
	config *config.Config
}

// NewSession creates a new game session
func NewSession(id string, cfg *config.Config) *Session {
	log.Printf("Creating session: %s", id)

	return &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		players:     make(map[uuid.UUID]*models.Player),
		connections: make(map[uuid.UUID]*Connection),
		known:       make(map[uuid.UUID]string),
		tasks:       tick.NewQueue(),
		commands:    make(chan Command, 1024),
		tickRate:    cfg.Server.TickRate,
		config:      cfg,
	}
}

// Tasks returns the queue of callbacks run at the start of each tick
func (s *Session) Tasks() *tick.Queue {
	return s.tasks
}

// Run drives the logic loop until ctx is done
func (s *Session) Run(ctx context.Context) error {
	rate := s.tickRate
	if rate <= 0 {
		rate = 20
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	log.Printf("Session %s logic loop running at %d Hz", s.ID, rate)
	for {
		select {
		case <-ctx.Done():
			// Drain what is already queued so accepted trades are not lost
			s.Step(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			s.Step(ctx)
		}
	}
}

// Step runs one tick: deferred tasks first, then the commands queued so far.
func (s *Session) Step(ctx context.Context) {
	s.tasks.RunPending()
	for n := len(s.commands); n > 0; n-- {
		select {
		case cmd := <-s.commands:
			cmd(ctx)
		default:
			return
		}
	}
}

// Post queues cmd for the logic loop. It returns false when the queue is full.
func (s *Session) Post(cmd Command) bool {
	select {
	case s.commands <- cmd:
		return true
	default:
		return false
	}
}

// AddPlayer attaches conn to the player's session state. The first time a
// player id joins, player becomes that state and created is true; later joins
// reuse the stored player and replace any older connection, which is closed.
func (s *Session) AddPlayer(player *models.Player, conn *Connection) (current *models.Player, created bool) {
	s.mu.Lock()
	current, exists := s.players[player.ID()]
	if !exists {
		current = player
		s.players[player.ID()] = current
	} else {
		current.Username = player.Username
		current.Operator = player.Operator
	}
	old := s.connections[player.ID()]
	s.connections[player.ID()] = conn
	s.known[player.ID()] = player.Username
	current.Connected = true
	current.ConnectedAt = time.Now()
	current.SessionID = s.ID
	s.mu.Unlock()

	if old != nil && old != conn {
		log.Printf("Player %s (%s) reconnected, closing previous connection", player.Username, player.ID())
		old.Close()
	}
	log.Printf("Player %s (%s) joined session %s", player.Username, player.ID(), s.ID)
	return current, !exists
}

// RemovePlayer detaches conn from the player. It is a no-op when the player
// has since connected again through another connection.
func (s *Session) RemovePlayer(playerID uuid.UUID, conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connections[playerID] != conn {
		return
	}
	delete(s.connections, playerID)
	if player, exists := s.players[playerID]; exists {
		player.Connected = false
		player.LastSeen = time.Now()
		log.Printf("Player %s (%s) left session %s", player.Username, playerID, s.ID)
	}
}

// GetPlayer retrieves a connected player by ID
func (s *Session) GetPlayer(playerID uuid.UUID) (*models.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, online := s.connections[playerID]; !online {
		return nil, false
	}
	player, exists := s.players[playerID]
	return player, exists
}

// PlayerCount returns the number of connected players
func (s *Session) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// Name implements trade.Directory. Players keep their name after leaving.
func (s *Session) Name(id uuid.UUID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.known[id]
	return name, ok
}

// Notify implements trade.Notifier
func (s *Session) Notify(to uuid.UUID, level trade.Level, text string) {
	s.mu.RLock()
	conn, ok := s.connections[to]
	s.mu.RUnlock()
	if !ok {
		return
	}
	conn.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypeNotice,
		Payload: network.NoticePayload{Level: level.String(), Message: text},
	})
}

// BroadcastMessage sends a message to all connected players
func (s *Session) BroadcastMessage(msg *network.ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conn := range s.connections {
		conn.SendMessage(msg)
	}
}

// SubscribeJournal forwards shop events to every connected player
func (s *Session) SubscribeJournal(bus *journal.Bus) {
	bus.Subscribe("session:"+s.ID, func(ev journal.Event) {
		s.BroadcastMessage(&network.ServerMessage{Type: network.MsgTypeJournal, Payload: ev})
	})
}
