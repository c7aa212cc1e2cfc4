package contract

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrCoinOverflow is returned when coins of one denomination sum past uint64.
var ErrCoinOverflow = errors.New("coin amount overflows uint64")

// Coin is an amount of a single native denomination.
type Coin struct {
	Denom  string `json:"denom" validate:"required"`
	Amount uint64 `json:"amount,string"`
}

// NewCoin builds a coin.
func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: amount}
}

// String renders the coin as "<amount><denom>"
func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

// Coins is a list of coins.
type Coins []Coin

// Normalize drops zero amounts, merges duplicate denominations and sorts by
// denomination. It fails with ErrCoinOverflow when a merged amount does not
// fit in uint64.
func (cs Coins) Normalize() (Coins, error) {
	byDenom := make(map[string]uint64, len(cs))
	for _, c := range cs {
		if c.Amount == 0 {
			continue
		}
		if byDenom[c.Denom] > math.MaxUint64-c.Amount {
			return nil, fmt.Errorf("%w: %s", ErrCoinOverflow, c.Denom)
		}
		byDenom[c.Denom] += c.Amount
	}

	out := make(Coins, 0, len(byDenom))
	for denom, amount := range byDenom {
		out = append(out, Coin{Denom: denom, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out, nil
}

// IsZero reports whether no denomination carries a positive amount.
func (cs Coins) IsZero() bool {
	for _, c := range cs {
		if c.Amount > 0 {
			return false
		}
	}
	return true
}

// AmountOf returns the total amount of the given denomination.
func (cs Coins) AmountOf(denom string) uint64 {
	var total uint64
	for _, c := range cs {
		if c.Denom == denom {
			total += c.Amount
		}
	}
	return total
}
