// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"math/big"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

// CallKind tells how a frame was entered.
type CallKind uint8

const (
	// CallDirect is a top level transaction.
	CallDirect CallKind = iota
	// CallQuery is a read only call: its effects are always discarded.
	CallQuery
	// CallDestContext is a nested call executed in the context of its
	// destination.
	CallDestContext
	// CallDeploy runs the constructor of a new contract.
	CallDeploy
)

func (k CallKind) String() string {
	switch k {
	case CallDirect:
		return "direct"
	case CallQuery:
		return "query"
	case CallDestContext:
		return "dest_context"
	case CallDeploy:
		return "deploy"
	default:
		return "unknown"
	}
}

// StateChange is the outcome a transaction closure asks for.
type StateChange uint8

const (
	Commit StateChange = iota
	Revert
)

// TxInputDCT describes one token transfer of a transaction. An empty or MOAX
// identifier designates the native currency.
type TxInputDCT struct {
	TokenIdentifier api.TokenIdentifier
	Nonce           uint64
	Value           *big.Int
}

func (t TxInputDCT) payment() api.DCTTokenPayment {
	return api.DCTTokenPayment{
		TokenIdentifier: t.TokenIdentifier,
		Nonce:           t.Nonce,
		Amount:          t.Value,
	}
}

// TxInput is everything a call frame is created from.
type TxInput struct {
	From      api.Address
	To        api.Address
	MoaxValue *big.Int
	DCTValues []TxInputDCT
	Func      string
	Args      [][]byte
	GasLimit  uint64
	GasPrice  uint64
	TxHash    ids.ID
}

func (in *TxInput) moaxValue() *big.Int {
	if in.MoaxValue == nil {
		return new(big.Int)
	}
	return in.MoaxValue
}

// Log is an event written by a contract.
type Log struct {
	Address    api.Address
	Identifier []byte
	Topics     [][]byte
	Data       []byte
}

// TxResult is what the caller of a transaction observes.
type TxResult struct {
	Status  uint64
	Message string
	Out     [][]byte
	Logs    []Log
	TxHash  ids.ID
	// Committed is false if the transaction failed, asked for a revert or
	// was a query.
	Committed bool
	// Err is the *api.TxError of a failed transaction.
	Err error
}

func (r *TxResult) Succeeded() bool { return r.Err == nil }

func failedResult(hash ids.ID, err error) *TxResult {
	txErr := api.AsTxError(err)
	return &TxResult{
		Status:  txErr.Status,
		Message: txErr.Message,
		TxHash:  hash,
		Err:     txErr,
	}
}
