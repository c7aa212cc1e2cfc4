package contract

import "fmt"

// ErrorCode identifies the category of a contract failure.
type ErrorCode string

const (
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeWrongPaymentAmount     ErrorCode = "wrong_payment_amount"
	CodeTooMuchText            ErrorCode = "too_much_text"
	CodeOnlyOneLink            ErrorCode = "only_one_link"
	CodeMustUseApprovedGateway ErrorCode = "must_use_approved_gateway"
	CodePostNotFound           ErrorCode = "post_not_found"
	CodePostDeleted            ErrorCode = "post_deleted"
	CodeInvalidMessage         ErrorCode = "invalid_message"
	CodeInvalidAddress         ErrorCode = "invalid_address"
	CodeNotInstantiated        ErrorCode = "not_instantiated"
	CodeAlreadyInstantiated    ErrorCode = "already_instantiated"
	CodeMigrationMismatch      ErrorCode = "migration_mismatch"
)

// Error is a typed contract failure. Two errors match under errors.Is when
// their codes are equal, so callers can compare against the sentinels below
// regardless of the message detail.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrUnauthorized           = &Error{Code: CodeUnauthorized, Message: "Unauthorized"}
	ErrWrongPaymentAmount     = &Error{Code: CodeWrongPaymentAmount, Message: "Wrong payment amount"}
	ErrTooMuchText            = &Error{Code: CodeTooMuchText, Message: fmt.Sprintf("Text exceeds %d bytes", MaxTextLength)}
	ErrOnlyOneLink            = &Error{Code: CodeOnlyOneLink, Message: fmt.Sprintf("External id exceeds %d bytes, only one link is allowed", MaxExternalIDLength)}
	ErrMustUseApprovedGateway = &Error{Code: CodeMustUseApprovedGateway, Message: "External id must use the approved gateway"}
	ErrPostNotFound           = &Error{Code: CodePostNotFound, Message: "Post not found"}
	ErrPostDeleted            = &Error{Code: CodePostDeleted, Message: "Post has been deleted"}
	ErrInvalidMessage         = &Error{Code: CodeInvalidMessage, Message: "Invalid message"}
	ErrInvalidAddress         = &Error{Code: CodeInvalidAddress, Message: "Invalid address"}
	ErrNotInstantiated        = &Error{Code: CodeNotInstantiated, Message: "Contract is not instantiated"}
	ErrAlreadyInstantiated    = &Error{Code: CodeAlreadyInstantiated, Message: "Contract is already instantiated"}
	ErrMigrationMismatch      = &Error{Code: CodeMigrationMismatch, Message: "Can only upgrade from same type"}
)

func postNotFound(id uint64) error {
	return &Error{Code: CodePostNotFound, Message: fmt.Sprintf("Post %d not found", id)}
}

func postDeleted(id uint64) error {
	return &Error{Code: CodePostDeleted, Message: fmt.Sprintf("Post %d has been deleted", id)}
}

func invalidMessage(format string, args ...interface{}) error {
	return &Error{Code: CodeInvalidMessage, Message: "Invalid message: " + fmt.Sprintf(format, args...)}
}

// InvalidAddress builds an address validation failure for the given input.
func InvalidAddress(addr string, cause error) error {
	msg := fmt.Sprintf("Invalid address %q", addr)
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return &Error{Code: CodeInvalidAddress, Message: msg}
}
