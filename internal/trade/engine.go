// Package trade turns player interactions with shop signs and fixtures into
// checked exchanges of items and currency.
package trade

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/economy"
	"github.com/gravitas-games/signshop/internal/i18n"
	"github.com/gravitas-games/signshop/internal/inventory"
	"github.com/gravitas-games/signshop/internal/journal"
	"github.com/gravitas-games/signshop/internal/permission"
	"github.com/gravitas-games/signshop/internal/shop"
	"github.com/gravitas-games/signshop/internal/world"
)

// ErrNoShop is returned by Engine.Shop when no shop is registered at a position.
var ErrNoShop = errors.New("trade: no shop at position")

// Action is what an actor did.
type Action int

const (
	// ActionUseBlock is a use click on a block.
	ActionUseBlock Action = iota
	// ActionUseAir is a use click into the air while looking at a block.
	ActionUseAir
	// ActionAttackBlock is an attack click on a block. Shops ignore it.
	ActionAttackBlock
)

// Interaction is a click by an actor.
type Interaction struct {
	Action Action
	Block  world.BlockPos
	// Look is where a held block would be placed, for ActionUseAir.
	Look *world.BlockPos
}

// Level is the severity of a message to an actor.
type Level int

const (
	LevelConfirmation Level = iota
	LevelNotification
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelConfirmation:
		return "confirmation"
	case LevelNotification:
		return "notification"
	default:
		return "error"
	}
}

// Actor is the player performing an interaction.
type Actor interface {
	ID() uuid.UUID
	Name() string
	Inventory() inventory.Slots
	// HeldSlot is the inventory slot of the item in hand.
	HeldSlot() int
}

// Notifier delivers messages to players.
type Notifier interface {
	Notify(to uuid.UUID, level Level, text string)
}

// Scheduler runs callbacks on the next tick.
type Scheduler interface {
	RunLater(fn func())
}

// Directory resolves player names.
type Directory interface {
	Name(id uuid.UUID) (string, bool)
}

// Result tells the caller what the engine did with an event.
type Result struct {
	// Handled is set when the event concerned a shop.
	Handled bool
	// Cancel asks the caller to suppress the default world behaviour.
	Cancel bool
	// Err is the rejection reason, nil on success.
	Err error
}

// Config holds the reloadable engine settings.
type Config struct {
	// VirtualStock tracks a stock counter on shops without a container.
	VirtualStock bool
	Tags         shop.Tags
}

// Engine handles shop interactions. All handlers run on the logic loop.
type Engine struct {
	mu  sync.RWMutex
	cfg Config

	world   world.World
	shops   *shop.Registry
	perms   permission.Checker
	bank    economy.Bank
	notify  Notifier
	tasks   Scheduler
	journal journal.Publisher
	catalog *inventory.Catalog
	tr      *i18n.Translator
	names   Directory
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal publishes completed operations to p.
func WithJournal(p journal.Publisher) Option {
	return func(e *Engine) { e.journal = p }
}

// WithCatalog resolves item names and placeability through c.
func WithCatalog(c *inventory.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithTranslator formats messages through t.
func WithTranslator(t *i18n.Translator) Option {
	return func(e *Engine) { e.tr = t }
}

// WithDirectory resolves owner names through d.
func WithDirectory(d Directory) Option {
	return func(e *Engine) { e.names = d }
}

// New creates an engine.
func New(cfg Config, w world.World, shops *shop.Registry, perms permission.Checker, bank economy.Bank,
	notify Notifier, tasks Scheduler, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		world:  w,
		shops:  shops,
		perms:  perms,
		bank:   bank,
		notify: notify,
		tasks:  tasks,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.catalog == nil {
		e.catalog = inventory.NewCatalog()
	}
	if e.tr == nil {
		e.tr = i18n.New("en")
	}
	if e.journal == nil {
		e.journal = journal.Multi{}
	}
	return e
}

// Reconfigure swaps the engine settings.
func (e *Engine) Reconfigure(cfg Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
}

func (e *Engine) config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Shop returns the valid shop at pos, re-validating it if needed.
func (e *Engine) Shop(pos world.BlockPos) (*shop.Shop, error) {
	s, ok, invalid := e.lookup(pos)
	if !ok {
		return nil, ErrNoShop
	}
	if invalid != nil {
		return nil, fmt.Errorf("%w: %w", ErrShopInvalid, invalid)
	}
	return s, nil
}

// lookup finds the shop at pos and re-validates it if it is marked invalid.
// invalid is the validation failure, if any.
func (e *Engine) lookup(pos world.BlockPos) (s *shop.Shop, ok bool, invalid error) {
	s, ok = e.shops.AtPos(pos)
	if !ok || s.Valid() {
		return s, ok, nil
	}
	return s, true, s.Validate(e.world, e.config().Tags)
}

// HandleInteract handles a use click. Clicking an unregistered tagged sign
// creates a shop; clicking a registered one trades with it.
func (e *Engine) HandleInteract(ctx context.Context, actor Actor, ev Interaction) Result {
	pos, ok := e.target(actor, ev)
	if !ok || !e.world.IsSign(pos) {
		return Result{}
	}
	if s, ok := e.shops.AtPos(pos); ok {
		return e.use(ctx, actor, s)
	}
	return e.create(ctx, actor, pos)
}

func (e *Engine) target(actor Actor, ev Interaction) (world.BlockPos, bool) {
	switch ev.Action {
	case ActionUseBlock:
		return ev.Block, true
	case ActionUseAir:
		held := heldStack(actor)
		if held == nil || ev.Look == nil || !e.catalog.Placeable(*held) {
			return world.BlockPos{}, false
		}
		return *ev.Look, true
	default:
		return world.BlockPos{}, false
	}
}

func (e *Engine) create(ctx context.Context, actor Actor, pos world.BlockPos) Result {
	cfg := e.config()
	lines, _ := e.world.SignLines(pos)
	if !cfg.Tags.Tagged(lines) {
		return Result{}
	}

	fixture := shop.FindFixture(e.world, pos, e.shops.FixtureBound)
	if fixture == nil {
		return e.refuse(actor, ErrNoFixture, msgNoFixture)
	}
	if fixture.Item() == nil {
		return e.refuse(actor, ErrFixtureEmpty, msgFixtureEmpty)
	}
	if e.shops.FixtureBound(fixture.ID()) {
		return e.refuse(actor, ErrFixtureBound, msgFixtureBound)
	}

	container, withContainer := shop.FindContainer(e.world, pos)
	if !e.perms.Allowed(actor.ID(), pos, shop.CreateKey(withContainer)) {
		if withContainer {
			return e.refuse(actor, ErrCreateDenied, msgNoCreateOwn)
		}
		return e.refuse(actor, ErrCreateDenied, msgNoCreateAdmin)
	}

	s := shop.New(pos, actor.ID(), fixture, container)
	if err := s.Validate(e.world, cfg.Tags); err != nil {
		return e.reject(actor, fmt.Errorf("%w: %w", ErrShopInvalid, err), msgShopInvalid, err.Error())
	}
	if err := e.shops.Add(s); err != nil {
		return e.internal(actor, err)
	}

	if s.UsesContainer() {
		e.say(actor.ID(), LevelConfirmation, msgCreatedStock)
	} else {
		e.say(actor.ID(), LevelConfirmation, msgCreated)
	}
	e.record(ctx, journal.KindCreated, actor.ID(), s, nil, 0, "")
	return Result{Handled: true, Cancel: true}
}

func (e *Engine) use(ctx context.Context, actor Actor, s *shop.Shop) Result {
	cfg := e.config()
	if err := s.Validate(e.world, cfg.Tags); err != nil {
		e.shops.Remove(s)
		e.record(ctx, journal.KindDestroyed, actor.ID(), s, nil, 0, err.Error())
		return e.reject(actor, fmt.Errorf("%w: %w", ErrShopInvalid, err), msgShopRemoved, err.Error())
	}

	if !e.perms.Allowed(actor.ID(), s.Pos(), s.UseKey()) {
		if s.UsesContainer() {
			return e.reject(actor, ErrUseDenied, msgNoUseOwned)
		}
		return e.reject(actor, ErrUseDenied, msgNoUseAdmin)
	}

	item, _ := s.ItemStack()
	held := heldStack(actor)
	if s.Sells() && (!s.Buys() || (held != nil && held.SameItem(item))) {
		return e.sell(ctx, actor, s, item, held, cfg)
	}
	return e.buy(ctx, actor, s, item, cfg)
}

// sell moves items from the actor into the shop's stock and pays the actor.
func (e *Engine) sell(ctx context.Context, actor Actor, s *shop.Shop, item inventory.Stack, held *inventory.Stack, cfg Config) Result {
	name := e.catalog.DisplayName(item)
	if held == nil || !held.SameItem(item) {
		return e.reject(actor, ErrNoBuyPrice, msgOnlyBuys, name)
	}
	if !held.StacksWith(item) {
		return e.reject(actor, ErrItemMismatch, msgDataMismatch)
	}
	inv := actor.Inventory()
	if inventory.Count(inv, item) < item.Qty {
		return e.reject(actor, ErrNotEnoughItems, msgNotEnough, name)
	}

	price := int64(s.SellPrice())
	var owner economy.Wallet
	if s.UsesContainer() {
		owner = e.bank.Wallet(s.Owner())
		balance, err := owner.Balance(ctx)
		if err != nil {
			return e.internal(actor, err)
		}
		if balance < price {
			return e.reject(actor, ErrOwnerFunds, msgOwnerBroke)
		}
	}
	backend, ok := s.Stock(e.world, cfg.VirtualStock)
	if !ok {
		return e.internal(actor, fmt.Errorf("no stock for shop at %s", s.Pos()))
	}
	if !backend.CanIncrease(item.Qty) {
		return e.reject(actor, ErrStockFull, msgStockFull)
	}

	if owner != nil {
		paid, err := owner.Withdraw(ctx, price)
		if err != nil {
			return e.internal(actor, err)
		}
		if !paid {
			return e.reject(actor, ErrOwnerFunds, msgOwnerBroke)
		}
	}
	taken := inventory.PullSlot(inv, actor.HeldSlot(), item, item.Qty)
	if taken < item.Qty {
		inventory.Pull(inv, item, item.Qty-taken)
	}
	seller := e.bank.Wallet(actor.ID())
	if err := seller.Deposit(ctx, price); err != nil {
		inventory.Push(inv, item)
		if owner != nil {
			e.refund(ctx, owner, price, s)
		}
		return e.internal(actor, err)
	}
	backend.Increase(item.Qty)

	e.say(actor.ID(), LevelConfirmation, msgSold, item.Qty, name, e.bank.Format(price), e.balance(ctx, seller))
	e.record(ctx, journal.KindSold, actor.ID(), s, &item, price, "")
	return Result{Handled: true, Cancel: true}
}

// buy moves items from the shop's stock to the actor and charges the actor.
func (e *Engine) buy(ctx context.Context, actor Actor, s *shop.Shop, item inventory.Stack, cfg Config) Result {
	name := e.catalog.DisplayName(item)
	if !s.Buys() {
		return e.reject(actor, ErrNoBuyPrice, msgOnlyBuys, name)
	}
	backend, ok := s.Stock(e.world, cfg.VirtualStock)
	if !ok {
		return e.internal(actor, fmt.Errorf("no stock for shop at %s", s.Pos()))
	}
	if backend.Tracked() && backend.Amount() < item.Qty {
		return e.reject(actor, ErrOutOfStock, msgStockEmpty)
	}
	inv := actor.Inventory()
	if !inventory.Fits(inv, item) {
		return e.reject(actor, ErrInventoryFull, msgInventoryFull)
	}

	price := int64(s.BuyPrice())
	buyer := e.bank.Wallet(actor.ID())
	paid, err := buyer.Withdraw(ctx, price)
	if err != nil {
		return e.internal(actor, err)
	}
	if !paid {
		return e.reject(actor, ErrInsufficientFunds, msgNoFunds, e.bank.Currency().Plural)
	}
	if s.UsesContainer() {
		if err := e.bank.Wallet(s.Owner()).Deposit(ctx, price); err != nil {
			e.refund(ctx, buyer, price, s)
			return e.internal(actor, err)
		}
	}
	if !backend.Decrease(item.Qty) {
		log.Printf("Stock of shop at %s changed during a purchase", s.Pos())
	}
	inventory.Push(inv, item)

	e.say(actor.ID(), LevelConfirmation, msgBought, item.Qty, name, e.bank.Format(price), e.balance(ctx, buyer))
	e.record(ctx, journal.KindBought, actor.ID(), s, &item, price, "")
	return Result{Handled: true, Cancel: true}
}

// HandleBreak handles an attempt to break the block at pos.
func (e *Engine) HandleBreak(ctx context.Context, actor Actor, pos world.BlockPos) Result {
	s, ok, invalid := e.lookup(pos)
	if !ok {
		return Result{}
	}
	if invalid != nil {
		e.shops.Remove(s)
		e.say(actor.ID(), LevelError, msgShopRemoved, invalid.Error())
		e.record(ctx, journal.KindDestroyed, actor.ID(), s, nil, 0, invalid.Error())
		return Result{Handled: true, Err: fmt.Errorf("%w: %w", ErrShopInvalid, invalid)}
	}
	if !e.CanDestroy(actor.ID(), s) {
		return e.reject(actor, ErrModifyDenied, msgModifyDenied)
	}
	e.shops.Remove(s)
	e.say(actor.ID(), LevelNotification, msgDestroyed)
	e.record(ctx, journal.KindDestroyed, actor.ID(), s, nil, 0, "sign broken")
	return Result{Handled: true}
}

// HandleFixtureAttack handles a player hitting a fixture. When the hit is
// allowed the shop is re-validated on the next tick.
func (e *Engine) HandleFixtureAttack(ctx context.Context, actor Actor, fixture uuid.UUID) Result {
	s, ok := e.shops.ByFixture(fixture)
	if !ok {
		return Result{}
	}
	if !e.CanDestroy(actor.ID(), s) {
		return e.reject(actor, ErrModifyDenied, msgModifyDenied)
	}
	actorID := actor.ID()
	later := context.WithoutCancel(ctx)
	e.tasks.RunLater(func() {
		e.revalidate(later, actorID, s)
	})
	return Result{Handled: true}
}

func (e *Engine) revalidate(ctx context.Context, actorID uuid.UUID, s *shop.Shop) {
	if cur, ok := e.shops.AtPos(s.Pos()); !ok || cur != s {
		return
	}
	err := s.Validate(e.world, e.config().Tags)
	if err == nil {
		return
	}
	if e.shops.Remove(s) {
		e.say(actorID, LevelNotification, msgDestroyed)
		e.record(ctx, journal.KindDestroyed, actorID, s, nil, 0, err.Error())
	}
}

// HandleFixtureDamage reports whether non-player damage to the fixture must
// be cancelled. Shop fixtures take none.
func (e *Engine) HandleFixtureDamage(fixture uuid.UUID) bool {
	return e.shops.FixtureBound(fixture)
}

// HandleFixtureUse handles a use click on a fixture. Only the owner may
// turn a shop's fixture; others are told whose shop it is.
func (e *Engine) HandleFixtureUse(_ context.Context, actor Actor, fixture uuid.UUID) Result {
	s, ok := e.shops.ByFixture(fixture)
	if !ok || s.Owner() == actor.ID() {
		return Result{Handled: ok}
	}
	item := "-"
	if f := s.Fixture(e.world); f != nil {
		if st := f.Item(); st != nil {
			item = e.catalog.DisplayName(*st)
		}
	}
	e.say(actor.ID(), LevelNotification, msgFixtureOwner, e.ownerName(s.Owner()), item)
	return Result{Handled: true, Cancel: true}
}

// CanDestroy reports whether subject may remove s. Container shops need the
// destroy-any key or ownership plus the player destroy key; other shops
// need the admin destroy key.
func (e *Engine) CanDestroy(subject uuid.UUID, s *shop.Shop) bool {
	if !s.UsesContainer() {
		return e.perms.Allowed(subject, s.Pos(), shop.PermAdminDestroy)
	}
	if e.perms.Allowed(subject, s.Pos(), shop.PermPlayerDestroyAny) {
		return true
	}
	return s.Owner() == subject && e.perms.Allowed(subject, s.Pos(), shop.PermPlayerDestroy)
}

func heldStack(actor Actor) *inventory.Stack {
	return actor.Inventory().Slot(actor.HeldSlot())
}

func (e *Engine) ownerName(id uuid.UUID) string {
	if e.names != nil {
		if name, ok := e.names.Name(id); ok {
			return name
		}
	}
	return id.String()
}

func (e *Engine) balance(ctx context.Context, w economy.Wallet) string {
	n, err := w.Balance(ctx)
	if err != nil {
		return "?"
	}
	return e.bank.Format(n)
}

func (e *Engine) refund(ctx context.Context, w economy.Wallet, amount int64, s *shop.Shop) {
	if err := w.Deposit(ctx, amount); err != nil {
		log.Printf("Failed to refund %d after aborted trade at %s: %v", amount, s.Pos(), err)
	}
}

func (e *Engine) say(to uuid.UUID, level Level, key string, args ...any) {
	if e.notify != nil {
		e.notify.Notify(to, level, e.tr.T(key, args...))
	}
}

// refuse reports a rejection that leaves the default interaction alone.
func (e *Engine) refuse(actor Actor, err error, key string, args ...any) Result {
	e.say(actor.ID(), LevelError, key, args...)
	return Result{Handled: true, Err: err}
}

// reject reports a rejection and suppresses the default interaction.
func (e *Engine) reject(actor Actor, err error, key string, args ...any) Result {
	e.say(actor.ID(), LevelError, key, args...)
	return Result{Handled: true, Cancel: true, Err: err}
}

func (e *Engine) internal(actor Actor, err error) Result {
	log.Printf("Shop interaction by %s failed: %v", actor.ID(), err)
	return e.reject(actor, fmt.Errorf("%w: %w", ErrInternal, err), msgInternal)
}

func (e *Engine) record(ctx context.Context, kind journal.Kind, actor uuid.UUID, s *shop.Shop, item *inventory.Stack, price int64, reason string) {
	ev := journal.NewEvent(kind, s.Pos())
	ev.Actor = actor.String()
	if s.Owner() != uuid.Nil {
		ev.Owner = s.Owner().String()
	}
	if item != nil {
		ev.Item, ev.Qty = item.Item, item.Qty
	}
	ev.Price = price
	ev.Reason = reason
	if err := e.journal.Publish(ctx, ev); err != nil {
		log.Printf("Failed to publish %s event for shop at %s: %v", kind, s.Pos(), err)
	}
}
