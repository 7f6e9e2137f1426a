// Package economy holds player wallets.
package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNegativeAmount is returned for deposits or withdrawals below zero.
var ErrNegativeAmount = errors.New("economy: negative amount")

// Wallet is the balance of one subject.
type Wallet interface {
	Balance(ctx context.Context) (int64, error)
	Deposit(ctx context.Context, amount int64) error
	// Withdraw removes amount if the balance covers it. It reports false and
	// changes nothing otherwise.
	Withdraw(ctx context.Context, amount int64) (bool, error)
}

// Bank hands out wallets.
type Bank interface {
	Wallet(owner uuid.UUID) Wallet
	// Open creates the wallet of owner with the starting balance if it does not exist.
	Open(ctx context.Context, owner uuid.UUID) error
	Format(amount int64) string
	Currency() Currency
}

// Currency names the unit of account.
type Currency struct {
	Singular string
	Plural   string
}

// Format renders amount with the right currency name.
func (c Currency) Format(amount int64) string {
	name := c.Plural
	if amount == 1 || amount == -1 {
		name = c.Singular
	}
	return fmt.Sprintf("%d %s", amount, name)
}
