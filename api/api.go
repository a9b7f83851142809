// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api is the set of host functions contract code is written
// against. Contracts receive an API for every call frame and never reach the
// chain state any other way.
package api

import (
	"math/big"

	"github.com/ava-labs/avalanchego/ids"
)

// CallValueAPI exposes the payment attached to the current call.
//
// The single transfer accessors (DCTValue, Token, DCTTokenNonce,
// DCTTokenType) fail the call when more than one token transfer was
// attached. The indexed accessors never fail.
type CallValueAPI interface {
	CheckNotPayable() error
	MoaxValue() *big.Int
	DCTNumTransfers() int

	DCTValue() (*big.Int, error)
	Token() (TokenIdentifier, error)
	DCTTokenNonce() (uint64, error)
	DCTTokenType() (TokenType, error)

	DCTValueByIndex(index int) *big.Int
	TokenByIndex(index int) TokenIdentifier
	DCTTokenNonceByIndex(index int) uint64
	DCTTokenTypeByIndex(index int) TokenType

	AllDCTTransfers() []DCTTokenPayment
}

// BlockchainAPI reads chain and account information.
type BlockchainAPI interface {
	GetCaller() Address
	GetSCAddress() Address
	GetOwnerAddress() Address
	IsSmartContract(addr Address) bool

	GetBalance(addr Address) *big.Int
	GetSCBalance(token TokenIdentifier, nonce uint64) *big.Int
	GetDCTBalance(addr Address, token TokenIdentifier, nonce uint64) *big.Int
	GetDCTTokenData(addr Address, token TokenIdentifier, nonce uint64) DCTTokenData
	GetDCTLocalRoles(token TokenIdentifier) []DCTLocalRole

	GetTxHash() ids.ID
	GetGasLeft() uint64

	GetBlockTimestamp() uint64
	GetBlockNonce() uint64
	GetBlockRound() uint64
	GetBlockEpoch() uint64
	GetBlockRandomSeed() []byte
	GetPrevBlockTimestamp() uint64
	GetPrevBlockNonce() uint64
	GetPrevBlockRound() uint64
	GetPrevBlockEpoch() uint64
	GetPrevBlockRandomSeed() []byte
}

// StorageAPI is the key value storage of the current contract.
type StorageAPI interface {
	StorageLoad(key []byte) []byte
	StorageStore(key, value []byte) error
}

// SendAPI moves value out of the current contract and calls other
// contracts.
type SendAPI interface {
	DirectMoax(to Address, amount *big.Int, data []byte) error
	DirectDCT(to Address, token TokenIdentifier, nonce uint64, amount *big.Int, data []byte) error
	DirectMultiDCT(to Address, payments []DCTTokenPayment, data []byte) error

	// ExecuteOnDestContext synchronously calls [endpoint] on [to]. Effects of
	// the inner call are provisional: they become final only if the
	// enclosing frame commits.
	ExecuteOnDestContext(to Address, moax *big.Int, payments []DCTTokenPayment, endpoint string, args [][]byte) ([][]byte, error)

	DCTLocalMint(token TokenIdentifier, amount *big.Int) error
	DCTLocalBurn(token TokenIdentifier, amount *big.Int) error
	DCTNFTCreate(token TokenIdentifier, amount *big.Int, props NFTProperties) (uint64, error)
	DCTNFTAddQuantity(token TokenIdentifier, nonce uint64, amount *big.Int) error
	DCTNFTBurn(token TokenIdentifier, nonce uint64, amount *big.Int) error
}

// ErrorAPI aborts the current call with a user error.
type ErrorAPI interface {
	SignalError(message string) error
}

// LogAPI records events of the current call.
type LogAPI interface {
	WriteEventLog(identifier []byte, topics [][]byte, data []byte)
}

// API is everything a contract can do.
type API interface {
	CallValueAPI
	BlockchainAPI
	StorageAPI
	SendAPI
	ErrorAPI
	LogAPI
}
