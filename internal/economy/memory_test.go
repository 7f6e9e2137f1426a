package economy

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryWalletWithdrawIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	bank := NewMemoryBank(Currency{Singular: "coin", Plural: "coins"}, 10)
	id := uuid.New()
	if err := bank.Open(ctx, id); err != nil {
		t.Fatalf("open: %v", err)
	}
	w := bank.Wallet(id)

	ok, err := w.Withdraw(ctx, 11)
	if err != nil || ok {
		t.Fatalf("expected insufficient funds, got ok=%v err=%v", ok, err)
	}
	if bal, _ := w.Balance(ctx); bal != 10 {
		t.Fatalf("expected balance untouched at 10, got %d", bal)
	}
	if ok, _ := w.Withdraw(ctx, 4); !ok {
		t.Fatalf("expected withdrawal to succeed")
	}
	if err := w.Deposit(ctx, 2); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if bal, _ := w.Balance(ctx); bal != 8 {
		t.Fatalf("expected balance 8, got %d", bal)
	}
	if err := w.Deposit(ctx, -1); err != ErrNegativeAmount {
		t.Fatalf("expected negative amount error, got %v", err)
	}
}

func TestOpenKeepsExistingBalance(t *testing.T) {
	ctx := context.Background()
	bank := NewMemoryBank(Currency{}, 10)
	id := uuid.New()
	bank.Set(id, 3)
	if err := bank.Open(ctx, id); err != nil {
		t.Fatalf("open: %v", err)
	}
	if bal, _ := bank.Wallet(id).Balance(ctx); bal != 3 {
		t.Fatalf("expected existing balance 3, got %d", bal)
	}
}

func TestCurrencyFormat(t *testing.T) {
	c := Currency{Singular: "coin", Plural: "coins"}
	if c.Format(1) != "1 coin" || c.Format(5) != "5 coins" || c.Format(0) != "0 coins" {
		t.Fatalf("unexpected formatting")
	}
}
