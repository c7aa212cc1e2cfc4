package host

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/alxandria/ledger/internal/contract"
	"github.com/alxandria/ledger/internal/db"
	"github.com/alxandria/ledger/internal/models"
)

var (
	// ErrInsufficientFunds is returned when a transfer exceeds the sender's balance
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBalanceOverflow is returned when a credit would overflow a balance
	ErrBalanceOverflow = errors.New("balance overflow")
)

// Bank moves native funds between addresses inside one database transaction
// and records every movement in the transfer log.
type Bank struct {
	balances  *db.BalanceRepository
	transfers *db.TransferRepository
	txID      string
	height    uint64
	now       time.Time
}

var _ contract.BankQuerier = (*Bank)(nil)

// NewBank binds a bank to a gorm handle. txID, height and now tag the
// transfers it records.
func NewBank(tx *gorm.DB, txID string, height uint64, now time.Time) *Bank {
	repo := db.NewRepository(tx)
	return &Bank{
		balances:  db.NewBalanceRepository(repo),
		transfers: db.NewTransferRepository(repo),
		txID:      txID,
		height:    height,
		now:       now,
	}
}

// AllBalances returns the non-zero balances of addr sorted by denomination
func (b *Bank) AllBalances(ctx context.Context, addr string) (contract.Coins, error) {
	rows, err := b.balances.All(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to load balances of %s: %w", addr, err)
	}
	coins := make(contract.Coins, 0, len(rows))
	for _, row := range rows {
		coins = append(coins, contract.NewCoin(row.Amount, row.Denom))
	}
	return coins, nil
}

// Deposit credits funds attached to a request to the receiving address
func (b *Bank) Deposit(ctx context.Context, to string, funds contract.Coins) error {
	coins, err := funds.Normalize()
	if err != nil {
		return fmt.Errorf("invalid deposit: %w", err)
	}
	for _, coin := range coins {
		if err := b.credit(ctx, to, coin); err != nil {
			return err
		}
		if err := b.record(ctx, "", to, coin); err != nil {
			return err
		}
	}
	return nil
}

// Send moves amount from one address to another
func (b *Bank) Send(ctx context.Context, from, to string, amount contract.Coins) error {
	coins, err := amount.Normalize()
	if err != nil {
		return fmt.Errorf("invalid transfer: %w", err)
	}
	for _, coin := range coins {
		have, err := b.balances.Get(ctx, from, coin.Denom)
		if err != nil {
			return fmt.Errorf("failed to load balance: %w", err)
		}
		if have < coin.Amount {
			return fmt.Errorf("%w: %s has %d%s, needs %s", ErrInsufficientFunds, from, have, coin.Denom, coin)
		}
		if err := b.balances.Set(ctx, from, coin.Denom, have-coin.Amount); err != nil {
			return fmt.Errorf("failed to debit %s: %w", from, err)
		}
		if err := b.credit(ctx, to, coin); err != nil {
			return err
		}
		if err := b.record(ctx, from, to, coin); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bank) credit(ctx context.Context, to string, coin contract.Coin) error {
	have, err := b.balances.Get(ctx, to, coin.Denom)
	if err != nil {
		return fmt.Errorf("failed to load balance: %w", err)
	}
	if have > math.MaxUint64-coin.Amount {
		return fmt.Errorf("%w: %s in %s", ErrBalanceOverflow, to, coin.Denom)
	}
	if err := b.balances.Set(ctx, to, coin.Denom, have+coin.Amount); err != nil {
		return fmt.Errorf("failed to credit %s: %w", to, err)
	}
	return nil
}

func (b *Bank) record(ctx context.Context, from, to string, coin contract.Coin) error {
	err := b.transfers.Create(ctx, &models.Transfer{
		TxID:      b.txID,
		Height:    b.height,
		From:      from,
		To:        to,
		Denom:     coin.Denom,
		Amount:    coin.Amount,
		CreatedAt: b.now,
	})
	if err != nil {
		return fmt.Errorf("failed to record transfer: %w", err)
	}
	return nil
}
