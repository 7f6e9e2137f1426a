package economy

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
)

func TestRedisWalletBalance(t *testing.T) {
	db, mock := redismock.NewClientMock()
	bank := NewRedisBank(db, "wallet:", Currency{Singular: "coin", Plural: "coins"}, 0)
	id := uuid.New()

	mock.ExpectGet("wallet:" + id.String()).SetVal("12")
	bal, err := bank.Wallet(id).Balance(context.Background())
	if err != nil || bal != 12 {
		t.Fatalf("expected balance 12, got %d (%v)", bal, err)
	}

	mock.ExpectGet("wallet:" + id.String()).RedisNil()
	bal, err = bank.Wallet(id).Balance(context.Background())
	if err != nil || bal != 0 {
		t.Fatalf("expected missing wallet to read as 0, got %d (%v)", bal, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedisWalletWithdraw(t *testing.T) {
	db, mock := redismock.NewClientMock()
	bank := NewRedisBank(db, "wallet:", Currency{}, 0)
	id := uuid.New()
	key := "wallet:" + id.String()

	mock.ExpectEval(withdrawScript, []string{key}, int64(4)).SetVal(int64(6))
	ok, err := bank.Wallet(id).Withdraw(context.Background(), 4)
	if err != nil || !ok {
		t.Fatalf("expected withdrawal to succeed, got ok=%v err=%v", ok, err)
	}

	mock.ExpectEval(withdrawScript, []string{key}, int64(40)).SetVal(int64(-1))
	ok, err = bank.Wallet(id).Withdraw(context.Background(), 40)
	if err != nil || ok {
		t.Fatalf("expected insufficient funds, got ok=%v err=%v", ok, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedisWalletDepositAndOpen(t *testing.T) {
	db, mock := redismock.NewClientMock()
	bank := NewRedisBank(db, "wallet:", Currency{}, 25)
	id := uuid.New()
	key := "wallet:" + id.String()

	mock.ExpectSetNX(key, int64(25), 0).SetVal(true)
	if err := bank.Open(context.Background(), id); err != nil {
		t.Fatalf("open: %v", err)
	}
	mock.ExpectIncrBy(key, 5).SetVal(30)
	if err := bank.Wallet(id).Deposit(context.Background(), 5); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
