package contract

// AssertSentExactCoin fails with ErrWrongPaymentAmount unless funds are exactly
// the expected coin. Overpayment, underpayment and extra denominations all
// fail, as do funds whose amounts overflow when merged. When expected is nil
// (or zero) any attached funds fail.
func AssertSentExactCoin(funds Coins, expected *Coin) error {
	sent, err := funds.Normalize()
	if err != nil {
		return ErrWrongPaymentAmount
	}

	if expected == nil || expected.Amount == 0 {
		if len(sent) != 0 {
			return ErrWrongPaymentAmount
		}
		return nil
	}

	if len(sent) != 1 {
		return ErrWrongPaymentAmount
	}
	if sent[0].Denom != expected.Denom || sent[0].Amount != expected.Amount {
		return ErrWrongPaymentAmount
	}
	return nil
}
