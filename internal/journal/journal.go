// Package journal records completed shop operations and fans them out to
// log, in-process subscribers and a message broker.
package journal

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gravitas-games/signshop/internal/inventory"
	"github.com/gravitas-games/signshop/internal/world"
)

// Kind identifies what happened to a shop.
type Kind string

const (
	KindCreated   Kind = "created"
	KindDestroyed Kind = "destroyed"
	KindSold      Kind = "sold"
	KindBought    Kind = "bought"
)

// Event is one journal entry.
type Event struct {
	ID        ulid.ULID        `json:"id"`
	Kind      Kind             `json:"kind"`
	Timestamp time.Time        `json:"timestamp"`
	Shop      world.BlockPos   `json:"shop"`
	Actor     string           `json:"actor,omitempty"`
	Owner     string           `json:"owner,omitempty"`
	Item      inventory.ItemID `json:"item,omitempty"`
	Qty       int              `json:"qty,omitempty"`
	Price     int64            `json:"price,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

// NewEvent stamps a fresh event of kind for the shop at pos.
func NewEvent(kind Kind, pos world.BlockPos) Event {
	return Event{
		ID:        ulid.Make(),
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Shop:      pos,
	}
}

// Publisher delivers journal events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// LogPublisher writes events to a logger.
type LogPublisher struct {
	logger *log.Logger
}

// NewLogPublisher logs to logger, or the standard logger when nil.
func NewLogPublisher(logger *log.Logger) *LogPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish writes ev as one log line.
func (p *LogPublisher) Publish(_ context.Context, ev Event) error {
	p.logger.Printf("shop %s at %s: actor=%s owner=%s item=%s qty=%d price=%d %s",
		ev.Kind, ev.Shop, ev.Actor, ev.Owner, ev.Item, ev.Qty, ev.Price, ev.Reason)
	return nil
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

// Publish hands ev to every publisher and joins their errors.
func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Bus delivers events to in-process subscribers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]func(Event)
}

// NewBus creates a bus without subscribers.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string]func(Event))}
}

// Subscribe registers handler under name, replacing an earlier one.
func (b *Bus) Subscribe(name string, handler func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = handler
}

// Unsubscribe removes the handler registered under name.
func (b *Bus) Unsubscribe(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, name)
}

// Publish delivers ev to the current subscribers.
func (b *Bus) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	handlers := make([]func(Event), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
	return nil
}
