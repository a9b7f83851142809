// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"errors"
	"fmt"
)

// Status codes reported for a finished transaction.
const (
	StatusOk                uint64 = 0
	StatusFunctionNotFound  uint64 = 1
	StatusContractNotFound  uint64 = 3
	StatusUserError         uint64 = 4
	StatusCallStackOverflow uint64 = 8
	StatusExecutionFailed   uint64 = 10
)

// Fixed failure messages.
const (
	NonPayableFuncMoax       = "function does not accept MOAX payment"
	NonPayableFuncDCT        = "function does not accept DCT payment"
	TooManyDCTTransfers      = "too many DCT transfers"
	BadTokenProvided         = "bad call value token provided"
	InsufficientFunds        = "insufficient funds"
	ActionNotAllowed         = "action is not allowed"
	FunctionNotFound         = "invalid function (not found)"
	ContractNotFound         = "contract not found"
	MaxCallDepthExceeded     = "max call depth exceeded"
	StorageReservedKey       = "cannot write to storage under Dharitri reserved key"
	NFTCreateZeroAmount      = "NFT amount must be greater than zero"
	ArgumentDecodeFailure    = "argument decode error"
	WrongNumberOfArguments   = "wrong number of arguments"
	InvalidBuiltinArguments  = "invalid arguments to process built-in function"
	CannotTransferToSCNoCode = "cannot transfer to a smart contract without code"
)

// Failure kinds. A *TxError unwraps to one of these.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTooManyTransfers  = errors.New("too many token transfers")
	ErrNonPayable        = errors.New("non payable function called with payment")
	ErrRoleViolation     = errors.New("missing token role")
	ErrUnknownRole       = errors.New("unknown token role")
	ErrUserFailure       = errors.New("user failure")
	ErrExecutionFailed   = errors.New("execution failed")
	ErrFunctionNotFound  = errors.New("function not found")
	ErrContractNotFound  = errors.New("contract not found")
	ErrCallStack         = errors.New("call stack overflow")
)

// TxError is the failure observed by whoever started a transaction: a
// status code and a message, the way a scenario expects them.
type TxError struct {
	Status  uint64
	Message string

	kind error
}

func NewTxError(kind error, status uint64, message string) *TxError {
	return &TxError{Status: status, Message: message, kind: kind}
}

func (e *TxError) Error() string {
	return fmt.Sprintf("tx failed with status %d: %s", e.Status, e.Message)
}

func (e *TxError) Unwrap() error { return e.kind }

// UserError is a deliberate failure raised by contract logic.
func UserError(message string) *TxError {
	return NewTxError(ErrUserFailure, StatusUserError, message)
}

// AsTxError converts any error into a *TxError. Errors that are not already
// a *TxError become execution failures carrying the error text.
func AsTxError(err error) *TxError {
	if err == nil {
		return nil
	}
	var txErr *TxError
	if errors.As(err, &txErr) {
		return txErr
	}
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return NewTxError(ErrInsufficientFunds, StatusExecutionFailed, InsufficientFunds)
	case errors.Is(err, ErrRoleViolation):
		return NewTxError(ErrRoleViolation, StatusExecutionFailed, ActionNotAllowed)
	}
	return NewTxError(err, StatusExecutionFailed, err.Error())
}
