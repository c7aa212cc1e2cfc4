package contract

import "strings"

const (
	MaxTextLength       = 499
	MaxExternalIDLength = 128
)

// ValidateContent checks post text and its external reference. Lengths are
// measured in bytes.
func ValidateContent(text, externalID, gatewayPrefix string) error {
	if len(text) > MaxTextLength {
		return ErrTooMuchText
	}
	if len(externalID) > MaxExternalIDLength {
		return ErrOnlyOneLink
	}
	if !strings.HasPrefix(externalID, gatewayPrefix) {
		return ErrMustUseApprovedGateway
	}
	return nil
}
