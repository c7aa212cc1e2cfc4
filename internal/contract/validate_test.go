package contract

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestAssertSentExactCoin(t *testing.T) {
	expected := NewCoin(CreatePostFee, DefaultDenom)

	tests := []struct {
		name     string
		funds    Coins
		expected *Coin
		wantErr  bool
	}{
		{"exact amount", Coins{NewCoin(1_000_000, "ujunox")}, &expected, false},
		{"underpayment", Coins{NewCoin(999_999, "ujunox")}, &expected, true},
		{"overpayment", Coins{NewCoin(1_000_001, "ujunox")}, &expected, true},
		{"wrong denom", Coins{NewCoin(1_000_000, "uatom")}, &expected, true},
		{"no funds", nil, &expected, true},
		{"extra denom", Coins{NewCoin(1_000_000, "ujunox"), NewCoin(1, "uatom")}, &expected, true},
		{"split across entries", Coins{NewCoin(600_000, "ujunox"), NewCoin(400_000, "ujunox")}, &expected, false},
		{"zero coin ignored", Coins{NewCoin(1_000_000, "ujunox"), NewCoin(0, "uatom")}, &expected, false},
		{"none expected, none sent", nil, nil, false},
		{"none expected, zero sent", Coins{NewCoin(0, "ujunox")}, nil, false},
		{"none expected, funds sent", Coins{NewCoin(1, "ujunox")}, nil, true},
		{"duplicates wrap to the fee", Coins{NewCoin(math.MaxUint64, "ujunox"), NewCoin(CreatePostFee+1, "ujunox")}, &expected, true},
		{"none expected, duplicates wrap to zero", Coins{NewCoin(math.MaxUint64, "ujunox"), NewCoin(1, "ujunox")}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AssertSentExactCoin(tt.funds, tt.expected)
			if tt.wantErr {
				if !errors.Is(err, ErrWrongPaymentAmount) {
					t.Errorf("AssertSentExactCoin() = %v, want ErrWrongPaymentAmount", err)
				}
				return
			}
			if err != nil {
				t.Errorf("AssertSentExactCoin() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		externalID string
		expected   error
	}{
		{"valid", "hello", testLink, nil},
		{"text at limit", strings.Repeat("a", MaxTextLength), testLink, nil},
		{"text over limit", strings.Repeat("a", MaxTextLength+1), testLink, ErrTooMuchText},
		{"multibyte text counted in bytes", strings.Repeat("é", 250), testLink, ErrTooMuchText},
		{"external id at limit", "", DefaultGatewayPrefix + strings.Repeat("x", MaxExternalIDLength-len(DefaultGatewayPrefix)), nil},
		{"external id over limit", "", DefaultGatewayPrefix + strings.Repeat("x", MaxExternalIDLength), ErrOnlyOneLink},
		{"other gateway", "hello", "https://ipfs.io/ipfs/QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", ErrMustUseApprovedGateway},
		{"empty external id", "hello", "", ErrMustUseApprovedGateway},
		{"text checked first", strings.Repeat("a", MaxTextLength+1), "nope", ErrTooMuchText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.text, tt.externalID, DefaultGatewayPrefix)
			if tt.expected == nil {
				if err != nil {
					t.Errorf("ValidateContent() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expected) {
				t.Errorf("ValidateContent() = %v, want %v", err, tt.expected)
			}
		})
	}
}

func TestCoinsNormalize(t *testing.T) {
	coins := Coins{
		NewCoin(5, "uatom"),
		NewCoin(0, "ujuno"),
		NewCoin(3, "ujunox"),
		NewCoin(2, "uatom"),
	}

	got, err := coins.Normalize()
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Normalize() returned %d coins, want 2", len(got))
	}
	if got[0] != NewCoin(7, "uatom") || got[1] != NewCoin(3, "ujunox") {
		t.Errorf("Normalize() = %v", got)
	}
	if got.AmountOf("uatom") != 7 {
		t.Errorf("AmountOf(uatom) = %d, want 7", got.AmountOf("uatom"))
	}
	if !(Coins{NewCoin(0, "ujunox")}).IsZero() {
		t.Error("zero coins should report IsZero")
	}

	_, err = Coins{NewCoin(math.MaxUint64, "ujunox"), NewCoin(1, "ujunox")}.Normalize()
	if !errors.Is(err, ErrCoinOverflow) {
		t.Errorf("Normalize() overflow = %v, want ErrCoinOverflow", err)
	}
	if _, err := (Coins{NewCoin(math.MaxUint64, "ujunox"), NewCoin(1, "uatom")}).Normalize(); err != nil {
		t.Errorf("Normalize() across denominations unexpected error: %v", err)
	}
}

func TestExecuteMsgAction(t *testing.T) {
	tests := []struct {
		name     string
		msg      ExecuteMsg
		expected string
	}{
		{"create", ExecuteMsg{CreatePost: &CreatePostMsg{}}, ActionCreatePost},
		{"edit", ExecuteMsg{EditPost: &EditPostMsg{}}, ActionEditPost},
		{"delete", ExecuteMsg{DeletePost: &DeletePostMsg{}}, ActionDeletePost},
		{"withdraw", ExecuteMsg{Withdraw: &WithdrawMsg{}}, ActionWithdraw},
		{"empty", ExecuteMsg{}, ""},
		{"two variants", ExecuteMsg{Withdraw: &WithdrawMsg{}, DeletePost: &DeletePostMsg{}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.Action(); got != tt.expected {
				t.Errorf("Action() = %q, want %q", got, tt.expected)
			}
		})
	}
}
