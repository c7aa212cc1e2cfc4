package host

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/alxandria/ledger/internal/contract"
)

// Bech32Validator accepts canonical bech32 account addresses with a fixed
// human-readable prefix.
type Bech32Validator struct {
	prefix string
}

var _ contract.AddressValidator = Bech32Validator{}

// NewBech32Validator creates a validator for prefix
func NewBech32Validator(prefix string) Bech32Validator {
	return Bech32Validator{prefix: strings.ToLower(prefix)}
}

// AddrValidate returns addr unchanged when it is a canonical address
func (v Bech32Validator) AddrValidate(addr string) (string, error) {
	if addr == "" {
		return "", contract.InvalidAddress(addr, fmt.Errorf("empty address"))
	}
	if addr != strings.ToLower(addr) {
		return "", contract.InvalidAddress(addr, fmt.Errorf("address must be lowercase"))
	}

	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return "", contract.InvalidAddress(addr, err)
	}
	if hrp != v.prefix {
		return "", contract.InvalidAddress(addr, fmt.Errorf("expected prefix %q, got %q", v.prefix, hrp))
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", contract.InvalidAddress(addr, err)
	}
	switch len(payload) {
	case 20, 32:
	default:
		return "", contract.InvalidAddress(addr, fmt.Errorf("unexpected payload length %d", len(payload)))
	}

	return addr, nil
}
