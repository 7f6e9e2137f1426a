package shop

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/inventory"
	"github.com/gravitas-games/signshop/internal/world"
)

var tags = NewTags("[Shop]")

type fixtureSetup struct {
	w     *world.Memory
	pos   world.BlockPos
	frame *world.Frame
}

func newSetup(lines ...string) fixtureSetup {
	w := world.NewMemory()
	pos := world.BlockPos{X: 10, Y: 64, Z: 10}
	w.PlaceSign(pos, append([]string{"[Shop]"}, lines...)...)
	frame := w.PlaceFrame(world.Vec3{X: 10, Y: 64.5, Z: 10.9}, &inventory.Stack{Item: "diamond", Qty: 1})
	return fixtureSetup{w: w, pos: pos, frame: frame}
}

func (f fixtureSetup) shop(container world.Container) *Shop {
	return New(f.pos, uuid.New(), f.frame, container)
}

func TestValidateParsesPrices(t *testing.T) {
	f := newSetup("buy 10", "sell 5")
	s := f.shop(nil)
	if err := s.Validate(f.w, tags); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if s.BuyPrice() != 10 || s.SellPrice() != 5 || s.Amount() != 1 {
		t.Fatalf("unexpected terms buy=%d sell=%d amount=%d", s.BuyPrice(), s.SellPrice(), s.Amount())
	}
	if !s.Valid() || s.TradedItem() == nil || s.TradedItem().Item != "diamond" {
		t.Fatalf("expected valid diamond shop")
	}
}

func TestParseTerms(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  Terms
		err   error
	}{
		{"both prices", []string{"buy 10", "sell 5"}, Terms{10, 5, 1}, nil},
		{"for and case", []string{"BUY FOR 7", "Amount 3"}, Terms{7, Unset, 3}, nil},
		{"padding trimmed", []string{"  sell   for 2  "}, Terms{Unset, 2, 1}, nil},
		{"substring ignored", []string{"please buy 10 now", "sell 1"}, Terms{Unset, 1, 1}, nil},
		{"duplicate buy", []string{"buy 10", "buy 20"}, Terms{Unset, Unset, 1}, ErrDuplicateBuyPrice},
		{"duplicate sell", []string{"sell 1", "sell 1"}, Terms{Unset, Unset, 1}, ErrDuplicateSellPrice},
		{"duplicate amount", []string{"buy 1", "amount 2", "amount 3"}, Terms{Unset, Unset, 1}, ErrDuplicateAmount},
		{"no price", nil, Terms{Unset, Unset, 1}, ErrNoPrice},
		{"zero amount", []string{"buy 1", "amount 0"}, Terms{Unset, Unset, 1}, ErrInvalidAmount},
		{"overflow", []string{"buy 99999999999999999999999"}, Terms{Unset, Unset, 1}, ErrNumberTooLarge},
	}
	for _, tc := range cases {
		got, err := ParseTerms(tc.lines)
		if !errors.Is(err, tc.err) {
			t.Fatalf("%s: expected error %v, got %v", tc.name, tc.err, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestValidateDuplicateLeavesPricesUnset(t *testing.T) {
	f := newSetup("buy 10", "buy 20")
	s := f.shop(nil)
	err := s.Validate(f.w, tags)
	if !errors.Is(err, ErrDuplicateBuyPrice) || KindOf(err) != KindConfiguration {
		t.Fatalf("expected duplicate price configuration error, got %v", err)
	}
	if s.BuyPrice() != Unset || s.Valid() {
		t.Fatalf("expected buy price unset, got %d", s.BuyPrice())
	}
}

func TestValidateHeaderOnly(t *testing.T) {
	f := newSetup()
	if err := f.shop(nil).Validate(f.w, tags); !errors.Is(err, ErrNoPrice) {
		t.Fatalf("expected no price error, got %v", err)
	}
}

func TestValidateAmountZero(t *testing.T) {
	f := newSetup("buy 1", "amount 0")
	if err := f.shop(nil).Validate(f.w, tags); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount error, got %v", err)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	f := newSetup("buy 3", "amount 4")
	s := f.shop(nil)
	first := s.Validate(f.w, tags)
	a := [4]int{s.BuyPrice(), s.SellPrice(), s.Amount(), s.VirtualStock()}
	second := s.Validate(f.w, tags)
	b := [4]int{s.BuyPrice(), s.SellPrice(), s.Amount(), s.VirtualStock()}
	if first != nil || second != nil || a != b || !s.Valid() {
		t.Fatalf("expected identical results, got %v/%v %v/%v", first, second, a, b)
	}
}

func TestValidateStructuralFailures(t *testing.T) {
	f := newSetup("buy 1")
	s := f.shop(nil)

	f.w.SetSignLines(f.pos, "[Other]", "buy 1")
	if err := s.Validate(f.w, tags); !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("expected missing header, got %v", err)
	}
	f.w.SetSignLines(f.pos, "[Shop]", "buy 1")

	f.w.SetFrameItem(f.frame.ID(), &inventory.Stack{Item: "sword", Qty: 1, Damage: 3})
	if err := s.Validate(f.w, tags); !errors.Is(err, ErrDamagedItem) || KindOf(err) != KindStructural {
		t.Fatalf("expected damaged item, got %v", err)
	}

	f.w.SetFrameItem(f.frame.ID(), nil)
	if err := s.Validate(f.w, tags); !errors.Is(err, ErrEmptyFixture) {
		t.Fatalf("expected empty fixture, got %v", err)
	}

	f.w.RemoveFrame(f.frame.ID())
	if err := s.Validate(f.w, tags); !errors.Is(err, ErrMissingFixture) {
		t.Fatalf("expected missing fixture, got %v", err)
	}
}

func TestValidateFailureClearsEarlierResult(t *testing.T) {
	f := newSetup("buy 10", "sell 5", "amount 2")
	s := f.shop(nil)
	if err := s.Validate(f.w, tags); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.w.SetFrameItem(f.frame.ID(), nil)
	if err := s.Validate(f.w, tags); err == nil {
		t.Fatalf("expected failure")
	}
	if s.BuyPrice() != Unset || s.SellPrice() != Unset || s.Amount() != 1 || s.TradedItem() != nil {
		t.Fatalf("stale data survived a failed validation")
	}
	if _, ok := s.ItemStack(); ok {
		t.Fatalf("invalid shop must not hand out an item stack")
	}
}

func TestValidateContainer(t *testing.T) {
	f := newSetup("buy 1")
	chest := f.w.PlaceChest(f.pos.Below(), 27, 64)
	s := f.shop(chest)
	if err := s.Validate(f.w, tags); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.w.BreakBlock(f.pos.Below())
	if err := s.Validate(f.w, tags); !errors.Is(err, ErrMissingContainer) {
		t.Fatalf("expected missing container, got %v", err)
	}
	// a new chest at the same spot is picked up again
	f.w.PlaceChest(f.pos.Below(), 9, 64)
	if err := s.Validate(f.w, tags); err != nil {
		t.Fatalf("expected replacement chest to be resolved, got %v", err)
	}
	if s.Container(f.w).Size() != 9 {
		t.Fatalf("expected the replacement chest")
	}
}

func TestItemStackIsSizedCopy(t *testing.T) {
	f := newSetup("sell 5", "amount 2")
	s := f.shop(nil)
	if err := s.Validate(f.w, tags); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st, ok := s.ItemStack()
	if !ok || st.Qty != 2 || st.Item != "diamond" {
		t.Fatalf("unexpected stack %+v", st)
	}
	st.Qty = 50
	again, _ := s.ItemStack()
	if again.Qty != 2 {
		t.Fatalf("item stack must be a copy")
	}
}

func TestFindFixturePrefersUnboundThenNearest(t *testing.T) {
	w := world.NewMemory()
	pos := world.BlockPos{X: 0, Y: 64, Z: 0}
	nearest := w.PlaceFrame(world.Vec3{X: 0, Y: 64.5, Z: 0.5}, &inventory.Stack{Item: "a", Qty: 1})
	middle := w.PlaceFrame(world.Vec3{X: 0, Y: 64.5, Z: 1.0}, &inventory.Stack{Item: "b", Qty: 1})
	w.PlaceFrame(world.Vec3{X: 0, Y: 64.5, Z: 1.3}, &inventory.Stack{Item: "c", Qty: 1})

	if got := FindFixture(w, pos, nil); got.ID() != nearest.ID() {
		t.Fatalf("expected nearest fixture")
	}
	bound := func(id uuid.UUID) bool { return id == nearest.ID() }
	if got := FindFixture(w, pos, bound); got.ID() != middle.ID() {
		t.Fatalf("expected nearest unbound fixture")
	}
	all := func(uuid.UUID) bool { return true }
	if got := FindFixture(w, pos, all); got == nil {
		t.Fatalf("expected a candidate even when every fixture is bound")
	}
	if FindFixture(w, world.BlockPos{X: 100, Y: 64, Z: 0}, nil) != nil {
		t.Fatalf("expected no fixture far away")
	}
}

func TestStockBackendSelection(t *testing.T) {
	f := newSetup("buy 1")
	s := f.shop(nil)
	if _, ok := s.Stock(f.w, true); ok {
		t.Fatalf("invalid shop must not expose stock")
	}
	if err := s.Validate(f.w, tags); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := s.Stock(f.w, true)
	if !b.Tracked() || !b.Increase(3) || s.VirtualStock() != 3 {
		t.Fatalf("expected tracked virtual counter")
	}
	b, _ = s.Stock(f.w, false)
	if b.Tracked() {
		t.Fatalf("expected untracked stock when virtual stock is off")
	}

	chest := f.w.PlaceChest(f.pos.Below(), 1, 64)
	cs := New(world.BlockPos{X: 10, Y: 64, Z: 10}, uuid.New(), f.frame, chest)
	if err := cs.Validate(f.w, tags); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ = cs.Stock(f.w, false)
	if !b.Increase(2) || inventory.Count(chest, inventory.Stack{Item: "diamond"}) != 2 {
		t.Fatalf("expected container ledger stock")
	}
}
