package network

import "encoding/json"

// Message types - Client → Server
const (
	MsgTypeInteract      = "interact"
	MsgTypeBreak         = "break"
	MsgTypeAttackFixture = "attack_fixture"
	MsgTypeDamageFixture = "damage_fixture"
	MsgTypeUseFixture    = "use_fixture"
	MsgTypeSelectSlot    = "select_slot"
	MsgTypePing          = "ping"
)

// Message types - Server → Client
const (
	MsgTypeWelcome = "welcome"
	MsgTypeNotice  = "notice"
	MsgTypeResult  = "result"
	MsgTypeJournal = "journal"
	MsgTypeError   = "error"
	MsgTypePong    = "pong"
)

// Interaction actions
const (
	ActionUseBlock    = "use_block"
	ActionUseAir      = "use_air"
	ActionAttackBlock = "attack_block"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// Position is a block coordinate on the wire
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// InteractPayload is a click on a block or into the air
type InteractPayload struct {
	Position
	Action string `json:"action"`
	// Look is the block a held item would be placed against
	Look *Position `json:"look,omitempty"`
}

// BreakPayload is an attempt to break a block
type BreakPayload struct {
	Position
}

// FixturePayload targets a fixture by id
type FixturePayload struct {
	Fixture string `json:"fixture"`
}

// SelectSlotPayload changes the held inventory slot
type SelectSlotPayload struct {
	Slot int `json:"slot"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	PlayerID  string `json:"player_id"`
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	Balance   string `json:"balance"`
	Shops     int    `json:"shops"`
}

// NoticePayload is a message from the shop engine
type NoticePayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ResultPayload reports whether the client should undo its default action
type ResultPayload struct {
	Request string `json:"request"`
	Cancel  bool   `json:"cancel"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PermissionInfo describes a permission key on the /permissions endpoint
type PermissionInfo struct {
	Key         string `json:"key"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description"`
}
