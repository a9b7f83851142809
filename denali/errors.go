// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package denali

import "errors"

var (
	ErrAddressLength   = errors.New("address must be 32 bytes long")
	ErrSCAddress       = errors.New("account code does not match its address")
	ErrNewAddress      = errors.New("new address must be a smart contract address")
	ErrUnknownStep     = errors.New("unknown step")
	ErrMissingTx       = errors.New("step has no tx")
	ErrAccountsMissing = errors.New("checkState has no accounts")
	ErrCheckState      = errors.New("state check failed")
	ErrTxExpectation   = errors.New("transaction expectation failed")
	ErrTransferFailed  = errors.New("transfer failed")
	ErrUnknownCode     = errors.New("unknown contract code")
	ErrFileReference   = errors.New("file references are not allowed")
)
