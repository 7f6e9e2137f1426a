// Package permission answers whether a subject may do something at a place.
package permission

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/config"
	"github.com/gravitas-games/signshop/internal/world"
)

// Key names a permission, dot separated from general to specific.
type Key string

// Parent returns the key one level up, or "" at the root.
func (k Key) Parent() Key {
	i := strings.LastIndexByte(string(k), '.')
	if i < 0 {
		return ""
	}
	return k[:i]
}

// Level is the default grant of a registered key.
type Level int

const (
	// LevelFalse grants nobody by default.
	LevelFalse Level = iota
	// LevelTrue grants everybody by default.
	LevelTrue
	// LevelOp grants operators by default.
	LevelOp
)

func (l Level) String() string {
	switch l {
	case LevelTrue:
		return "TRUE"
	case LevelOp:
		return "OP"
	default:
		return "FALSE"
	}
}

// Checker decides permission queries.
type Checker interface {
	Allowed(subject uuid.UUID, pos world.BlockPos, key Key) bool
}

// Registration describes a registered key.
type Registration struct {
	Key         Key
	Level       Level
	Description string
}

// Policy is a Checker built from registered defaults, operators and
// per-subject overrides. Overrides on a parent key apply to its children;
// denies win over grants.
type Policy struct {
	mu           sync.RWMutex
	registered   map[Key]Registration
	descriptions map[Key]string
	operators    map[uuid.UUID]bool
	grants       map[uuid.UUID]map[Key]bool
	denies       map[uuid.UUID]map[Key]bool
}

// NewPolicy creates an empty policy.
func NewPolicy() *Policy {
	return &Policy{
		registered:   make(map[Key]Registration),
		descriptions: make(map[Key]string),
		operators:    make(map[uuid.UUID]bool),
		grants:       make(map[uuid.UUID]map[Key]bool),
		denies:       make(map[uuid.UUID]map[Key]bool),
	}
}

// FromConfig builds a policy with the operators and overrides of cfg.
func FromConfig(cfg config.PermissionsConfig) (*Policy, error) {
	p := NewPolicy()
	for _, raw := range cfg.Operators {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid operator id %q: %w", raw, err)
		}
		p.SetOperator(id, true)
	}
	for raw, keys := range cfg.Grants {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid grant subject %q: %w", raw, err)
		}
		for _, k := range keys {
			p.Grant(id, Key(k))
		}
	}
	for raw, keys := range cfg.Denies {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid deny subject %q: %w", raw, err)
		}
		for _, k := range keys {
			p.Deny(id, Key(k))
		}
	}
	return p, nil
}

// Register declares key with its default level.
func (p *Policy) Register(key Key, level Level, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered[key] = Registration{Key: key, Level: level, Description: description}
}

// Describe documents a key prefix without granting anything.
func (p *Policy) Describe(key Key, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.descriptions[key] = description
}

// SetOperator marks or unmarks id as an operator.
func (p *Policy) SetOperator(id uuid.UUID, op bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if op {
		p.operators[id] = true
	} else {
		delete(p.operators, id)
	}
}

// Grant allows key and its children for id.
func (p *Policy) Grant(id uuid.UUID, key Key) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set(p.grants, id, key)
}

// Deny forbids key and its children for id.
func (p *Policy) Deny(id uuid.UUID, key Key) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set(p.denies, id, key)
}

func set(m map[uuid.UUID]map[Key]bool, id uuid.UUID, key Key) {
	keys, ok := m[id]
	if !ok {
		keys = make(map[Key]bool)
		m[id] = keys
	}
	keys[key] = true
}

// Allowed implements Checker. Position does not narrow decisions.
func (p *Policy) Allowed(subject uuid.UUID, _ world.BlockPos, key Key) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for k := key; k != ""; k = k.Parent() {
		if p.denies[subject][k] {
			return false
		}
	}
	for k := key; k != ""; k = k.Parent() {
		if p.grants[subject][k] {
			return true
		}
	}
	reg, ok := p.registered[key]
	if !ok {
		return p.operators[subject]
	}
	switch reg.Level {
	case LevelTrue:
		return true
	case LevelOp:
		return p.operators[subject]
	default:
		return false
	}
}

// Registered lists the registered keys in order.
func (p *Policy) Registered() []Registration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Registration, 0, len(p.registered))
	for _, r := range p.registered {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Description returns the documentation of a key or key prefix.
func (p *Policy) Description(key Key) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if r, ok := p.registered[key]; ok {
		return r.Description
	}
	return p.descriptions[key]
}
