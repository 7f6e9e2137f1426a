package server

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gravitas-games/signshop/internal/inventory"
	"github.com/gravitas-games/signshop/internal/network"
	"github.com/gravitas-games/signshop/internal/trade"
	"github.com/gravitas-games/signshop/internal/world"
	"github.com/gravitas-games/signshop/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	// WebSocket connection
	ws *websocket.Conn

	// Server reference
	server *Server

	// Player information (set after authentication)
	player *models.Player

	// Buffered channel for outbound messages
	send chan []byte

	// Is connection authenticated
	authenticated bool

	closeOnce sync.Once
	closed    chan struct{}
}

// NewConnection creates a new connection
func NewConnection(ws *websocket.Conn, server *Server) *Connection {
	return &Connection{
		ws:            ws,
		server:        server,
		send:          make(chan []byte, 256),
		authenticated: false,
		closed:        make(chan struct{}),
	}
}

// Handle manages the connection lifecycle
func (c *Connection) Handle() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump()
	c.join()
	c.readPump() // Blocking
}

// readPump pumps messages from the WebSocket connection to the server
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var clientMsg network.ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.Printf("Failed to parse client message: %v", err)
			c.SendError("invalid_message", "Failed to parse message")
			continue
		}

		c.handleMessage(&clientMsg)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-c.server.ctx.Done():
			return
		}
	}
}

// join registers the player with the session and sends the welcome message
func (c *Connection) join() {
	session := c.server.session
	deps := c.server.deps
	ctx := c.server.ctx

	if c.player.Operator {
		deps.Perms.SetOperator(c.player.ID(), true)
	}

	player, created := session.AddPlayer(c.player, c)
	c.player = player
	if created {
		for _, item := range c.server.config.Players.StartingItems {
			st := deps.Catalog.NewStack(inventory.ItemID(item.Item), item.Meta, item.Qty)
			if !player.Give(st) {
				log.Printf("No room for starting item %s for %s", item.Item, player.Username)
			}
		}
	}

	balance := "?"
	if err := deps.Bank.Open(ctx, c.player.ID()); err != nil {
		log.Printf("Failed to open wallet for %s: %v", c.player.Username, err)
	} else if n, err := deps.Bank.Wallet(c.player.ID()).Balance(ctx); err == nil {
		balance = deps.Bank.Format(n)
	}

	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeWelcome,
		Payload: network.WelcomePayload{
			PlayerID:  c.player.ID().String(),
			Username:  c.player.Username,
			SessionID: session.ID,
			Balance:   balance,
			Shops:     deps.Shops.Len(),
		},
	})
}

// handleMessage routes messages to appropriate handlers
func (c *Connection) handleMessage(msg *network.ClientMessage) {
	switch msg.Type {
	case network.MsgTypeInteract:
		c.handleInteract(msg.Payload)

	case network.MsgTypeBreak:
		c.handleBreak(msg.Payload)

	case network.MsgTypeAttackFixture, network.MsgTypeDamageFixture, network.MsgTypeUseFixture:
		c.handleFixture(msg.Type, msg.Payload)

	case network.MsgTypeSelectSlot:
		c.handleSelectSlot(msg.Payload)

	case network.MsgTypePing:
		c.handlePing()

	default:
		log.Printf("Unknown message type: %s", msg.Type)
		c.SendError("unknown_message_type", "Unknown message type")
	}
}

func (c *Connection) handleInteract(payload json.RawMessage) {
	var req network.InteractPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError("invalid_interact", "Invalid interact payload")
		return
	}

	ev := trade.Interaction{Block: blockPos(req.Position)}
	switch req.Action {
	case network.ActionUseBlock, "":
		ev.Action = trade.ActionUseBlock
	case network.ActionUseAir:
		ev.Action = trade.ActionUseAir
	case network.ActionAttackBlock:
		ev.Action = trade.ActionAttackBlock
	default:
		c.SendError("invalid_interact", "Unknown action")
		return
	}
	if req.Look != nil {
		look := blockPos(*req.Look)
		ev.Look = &look
	}

	c.post(network.MsgTypeInteract, func(ctx context.Context) trade.Result {
		return c.server.engine.HandleInteract(ctx, c.player, ev)
	})
}

func (c *Connection) handleBreak(payload json.RawMessage) {
	var req network.BreakPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError("invalid_break", "Invalid break payload")
		return
	}
	pos := blockPos(req.Position)

	c.post(network.MsgTypeBreak, func(ctx context.Context) trade.Result {
		res := c.server.engine.HandleBreak(ctx, c.player, pos)
		if !res.Cancel {
			c.server.deps.World.BreakBlock(pos)
		}
		return res
	})
}

func (c *Connection) handleFixture(kind string, payload json.RawMessage) {
	var req network.FixturePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError("invalid_fixture", "Invalid fixture payload")
		return
	}
	id, err := uuid.Parse(req.Fixture)
	if err != nil {
		c.SendError("invalid_fixture", "Invalid fixture id")
		return
	}

	engine := c.server.engine
	w := c.server.deps.World
	c.post(kind, func(ctx context.Context) trade.Result {
		switch kind {
		case network.MsgTypeAttackFixture:
			res := engine.HandleFixtureAttack(ctx, c.player, id)
			if !res.Cancel {
				if item, ok := w.AttackFrame(id); ok && item != nil {
					c.player.Give(*item)
				}
			}
			return res
		case network.MsgTypeDamageFixture:
			if engine.HandleFixtureDamage(id) {
				return trade.Result{Handled: true, Cancel: true}
			}
			w.RemoveFrame(id)
			return trade.Result{}
		default:
			return engine.HandleFixtureUse(ctx, c.player, id)
		}
	})
}

func (c *Connection) handleSelectSlot(payload json.RawMessage) {
	var req network.SelectSlotPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError("invalid_slot", "Invalid slot payload")
		return
	}
	c.post(network.MsgTypeSelectSlot, func(context.Context) trade.Result {
		if !c.player.SelectSlot(req.Slot) {
			return trade.Result{Cancel: true}
		}
		return trade.Result{}
	})
}

// post runs fn on the logic loop and reports its result to the client
func (c *Connection) post(request string, fn func(ctx context.Context) trade.Result) {
	ok := c.server.session.Post(func(ctx context.Context) {
		c.sendResult(request, fn(ctx))
	})
	if !ok {
		c.SendError("busy", "Server busy, try again")
	}
}

func (c *Connection) sendResult(request string, res trade.Result) {
	payload := network.ResultPayload{Request: request, Cancel: res.Cancel}
	if res.Err != nil {
		payload.Error = res.Err.Error()
		payload.Kind = trade.KindOf(res.Err).String()
	}
	c.SendMessage(&network.ServerMessage{Type: network.MsgTypeResult, Payload: payload})
}

// handlePing handles ping requests
func (c *Connection) handlePing() {
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypePong,
		Payload: map[string]interface{}{"timestamp": time.Now().Unix()},
	})
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	select {
	case <-c.closed:
	case c.send <- data:
	default:
		log.Printf("Send buffer full, dropping message")
	}
}

// SendError sends an error message to the client
func (c *Connection) SendError(code, message string) {
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeError,
		Payload: network.ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

// Close removes the player from the session and stops the write pump
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		if c.authenticated && c.player != nil {
			c.server.session.RemovePlayer(c.player.ID(), c)
		}
		close(c.closed)
	})
}

func blockPos(p network.Position) world.BlockPos {
	return world.BlockPos{X: p.X, Y: p.Y, Z: p.Z}
}
