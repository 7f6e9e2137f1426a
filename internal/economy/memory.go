package economy

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryBank keeps balances in process memory.
type MemoryBank struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
	currency Currency
	starting int64
}

// NewMemoryBank creates an empty bank whose new wallets start at starting.
func NewMemoryBank(currency Currency, starting int64) *MemoryBank {
	return &MemoryBank{
		balances: make(map[uuid.UUID]int64),
		currency: currency,
		starting: starting,
	}
}

// Wallet returns the wallet of owner.
func (b *MemoryBank) Wallet(owner uuid.UUID) Wallet {
	return &memoryWallet{bank: b, owner: owner}
}

// Open creates the wallet of owner with the starting balance.
func (b *MemoryBank) Open(_ context.Context, owner uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.balances[owner]; !ok {
		b.balances[owner] = b.starting
	}
	return nil
}

// Set overwrites the balance of owner.
func (b *MemoryBank) Set(owner uuid.UUID, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[owner] = amount
}

// Currency returns the bank's unit of account.
func (b *MemoryBank) Currency() Currency {
	return b.currency
}

// Format renders amount in the bank's currency.
func (b *MemoryBank) Format(amount int64) string {
	return b.currency.Format(amount)
}

type memoryWallet struct {
	bank  *MemoryBank
	owner uuid.UUID
}

func (w *memoryWallet) Balance(context.Context) (int64, error) {
	w.bank.mu.Lock()
	defer w.bank.mu.Unlock()
	return w.bank.balances[w.owner], nil
}

func (w *memoryWallet) Deposit(_ context.Context, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	w.bank.mu.Lock()
	defer w.bank.mu.Unlock()
	w.bank.balances[w.owner] += amount
	return nil
}

func (w *memoryWallet) Withdraw(_ context.Context, amount int64) (bool, error) {
	if amount < 0 {
		return false, ErrNegativeAmount
	}
	w.bank.mu.Lock()
	defer w.bank.mu.Unlock()
	if w.bank.balances[w.owner] < amount {
		return false, nil
	}
	w.bank.balances[w.owner] -= amount
	return true, nil
}
