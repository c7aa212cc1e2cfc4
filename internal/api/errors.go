package api

import (
	"errors"
	"fmt"

	"github.com/alxandria/ledger/internal/api/ledger"
	"github.com/alxandria/ledger/internal/contract"
	"github.com/alxandria/ledger/internal/host"
)

// Standard JSON-RPC error codes
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32603
)

// Ledger error codes, in the server-defined range
const (
	ErrContract          = -32000
	ErrInsufficientFunds = -32001
	ErrNotFound          = -32004
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
	Data    interface{}
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// ContractErrorData is the error data of a rejected ledger request
type ContractErrorData struct {
	Kind   contract.ErrorCode `json:"kind"`
	Detail string             `json:"detail"`
}

// toAPIError classifies a handler error
func toAPIError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var cerr *contract.Error
	switch {
	case errors.As(err, &cerr):
		return &Error{
			Code:    ErrContract,
			Message: "Contract error",
			Data:    ContractErrorData{Kind: cerr.Code, Detail: cerr.Message},
		}
	case errors.Is(err, ledger.ErrInvalidParams):
		return &Error{Code: ErrInvalidParams, Message: "Invalid params", Data: err.Error()}
	case errors.Is(err, host.ErrInsufficientFunds):
		return &Error{Code: ErrInsufficientFunds, Message: "Insufficient funds", Data: err.Error()}
	case errors.Is(err, host.ErrTxNotFound):
		return &Error{Code: ErrNotFound, Message: "Not found", Data: err.Error()}
	default:
		return &Error{Code: ErrInternalError, Message: "Internal error"}
	}
}
