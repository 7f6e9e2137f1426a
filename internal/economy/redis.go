package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// withdrawScript decrements KEYS[1] by ARGV[1] only when the balance covers it.
// It returns the new balance, or -1 when funds are insufficient.
const withdrawScript = `
local balance = tonumber(redis.call('GET', KEYS[1]) or '0')
local amount = tonumber(ARGV[1])
if balance < amount then
	return -1
end
return redis.call('DECRBY', KEYS[1], amount)
`

// RedisBank stores balances as integer keys in Redis.
type RedisBank struct {
	client   *redis.Client
	prefix   string
	currency Currency
	starting int64
}

// NewRedisBank creates a bank keyed by prefix + owner id.
func NewRedisBank(client *redis.Client, prefix string, currency Currency, starting int64) *RedisBank {
	return &RedisBank{
		client:   client,
		prefix:   prefix,
		currency: currency,
		starting: starting,
	}
}

func (b *RedisBank) key(owner uuid.UUID) string {
	return b.prefix + owner.String()
}

// Wallet returns the wallet of owner.
func (b *RedisBank) Wallet(owner uuid.UUID) Wallet {
	return &redisWallet{bank: b, key: b.key(owner)}
}

// Open creates the wallet of owner with the starting balance.
func (b *RedisBank) Open(ctx context.Context, owner uuid.UUID) error {
	if err := b.client.SetNX(ctx, b.key(owner), b.starting, 0).Err(); err != nil {
		return fmt.Errorf("failed to open wallet: %w", err)
	}
	return nil
}

// Currency returns the bank's unit of account.
func (b *RedisBank) Currency() Currency {
	return b.currency
}

// Format renders amount in the bank's currency.
func (b *RedisBank) Format(amount int64) string {
	return b.currency.Format(amount)
}

type redisWallet struct {
	bank *RedisBank
	key  string
}

func (w *redisWallet) Balance(ctx context.Context) (int64, error) {
	n, err := w.bank.client.Get(ctx, w.key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return n, nil
}

func (w *redisWallet) Deposit(ctx context.Context, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if err := w.bank.client.IncrBy(ctx, w.key, amount).Err(); err != nil {
		return fmt.Errorf("failed to deposit: %w", err)
	}
	return nil
}

func (w *redisWallet) Withdraw(ctx context.Context, amount int64) (bool, error) {
	if amount < 0 {
		return false, ErrNegativeAmount
	}
	n, err := w.bank.client.Eval(ctx, withdrawScript, []string{w.key}, amount).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to withdraw: %w", err)
	}
	return n >= 0, nil
}
