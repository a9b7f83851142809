// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"bytes"
	"math/big"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/ledger"
)

// reservedStoragePrefix marks storage keys only the protocol may write.
var reservedStoragePrefix = []byte("DHARITRI")

var _ api.API = &TxContext{}

// TxContext is one call frame: the input it was entered with, the ledger
// snapshot its effects go to and what it produced so far. Contract code
// receives it as its api.API; it is never shared between frames.
type TxContext struct {
	mock   *BlockchainMock
	parent *TxContext
	kind   CallKind
	input  *TxInput
	ledger *ledger.Ledger
	depth  int

	output [][]byte
	logs   []Log

	// failure is sticky: once set the frame reverts whatever its handler
	// reports.
	failure error
}

func newTxContext(mock *BlockchainMock, parent *TxContext, kind CallKind, input *TxInput, frame *ledger.Ledger, depth int) *TxContext {
	return &TxContext{
		mock:   mock,
		parent: parent,
		kind:   kind,
		input:  input,
		ledger: frame,
		depth:  depth,
	}
}

func (ctx *TxContext) Input() *TxInput { return ctx.input }

func (ctx *TxContext) Kind() CallKind { return ctx.kind }

// Depth is 0 for top level frames.
func (ctx *TxContext) Depth() int { return ctx.depth }

// Failed reports the fail fast error raised in this frame, if any.
func (ctx *TxContext) Failed() error { return ctx.failure }

// Ledger is the snapshot this frame writes to.
func (ctx *TxContext) Ledger() *ledger.Ledger { return ctx.ledger }

// fail records [err] as the failure of the frame and returns it as a
// *api.TxError. Only the first failure is kept.
func (ctx *TxContext) fail(err error) error {
	txErr := api.AsTxError(err)
	if ctx.failure == nil {
		ctx.failure = txErr
	}
	return txErr
}

// applyTransfers moves the payments of the frame from caller to callee.
func (ctx *TxContext) applyTransfers() error {
	if err := ctx.ledger.TransferMoax(ctx.input.From, ctx.input.To, ctx.input.moaxValue()); err != nil {
		return err
	}
	for _, transfer := range ctx.input.DCTValues {
		if transfer.TokenIdentifier.IsMoax() {
			if err := ctx.ledger.TransferMoax(ctx.input.From, ctx.input.To, transfer.Value); err != nil {
				return err
			}
			continue
		}
		if err := ctx.ledger.TransferDCT(ctx.input.From, ctx.input.To, transfer.TokenIdentifier, transfer.Nonce, transfer.Value); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteNested runs [f] in a nested frame stacked on this one. An explicit
// Revert from [f] only undoes the nested frame. A failure of the nested
// frame is raised in this frame as well.
func (ctx *TxContext) ExecuteNested(input *TxInput, f TxFunc) *TxResult {
	result := ctx.mock.execute(ctx, CallDestContext, input, nil, func(inner *TxContext) (StateChange, error) {
		return f(inner), nil
	})
	if result.Err != nil {
		_ = ctx.fail(result.Err)
	}
	return result
}

func (ctx *TxContext) GetCaller() api.Address { return ctx.input.From }

func (ctx *TxContext) GetSCAddress() api.Address { return ctx.input.To }

func (ctx *TxContext) GetOwnerAddress() api.Address {
	acc, err := ctx.ledger.GetAccount(ctx.input.To)
	switch err {
	case nil:
		return acc.Owner
	case database.ErrNotFound:
		return api.ZeroAddress
	default:
		_ = ctx.fail(err)
		return api.ZeroAddress
	}
}

func (ctx *TxContext) IsSmartContract(addr api.Address) bool {
	acc, err := ctx.ledger.GetAccount(addr)
	if err != nil {
		return false
	}
	return acc.IsSmartContract()
}

func (ctx *TxContext) GetBalance(addr api.Address) *big.Int {
	balance, err := ctx.ledger.GetBalance(addr)
	if err != nil {
		_ = ctx.fail(err)
		return new(big.Int)
	}
	return balance
}

func (ctx *TxContext) GetSCBalance(token api.TokenIdentifier, nonce uint64) *big.Int {
	if token.IsMoax() {
		return ctx.GetBalance(ctx.input.To)
	}
	return ctx.GetDCTBalance(ctx.input.To, token, nonce)
}

func (ctx *TxContext) GetDCTBalance(addr api.Address, token api.TokenIdentifier, nonce uint64) *big.Int {
	balance, err := ctx.ledger.GetDCTBalance(addr, token, nonce)
	if err != nil {
		_ = ctx.fail(err)
		return new(big.Int)
	}
	return balance
}

func (ctx *TxContext) GetDCTTokenData(addr api.Address, token api.TokenIdentifier, nonce uint64) api.DCTTokenData {
	inst, err := ctx.ledger.GetTokenInstance(addr, token, nonce)
	if err != nil {
		_ = ctx.fail(err)
		return api.DCTTokenData{Amount: new(big.Int)}
	}
	return api.DCTTokenData{
		TokenType:  api.TokenTypeFromNonce(nonce),
		Amount:     inst.Amount,
		Hash:       inst.Hash,
		Name:       inst.Name,
		Attributes: inst.Attributes,
		Creator:    inst.Creator,
		Royalties:  inst.Royalties,
		URIs:       inst.URIs,
	}
}

func (ctx *TxContext) GetDCTLocalRoles(token api.TokenIdentifier) []api.DCTLocalRole {
	roles, err := ctx.ledger.GetRoles(ctx.input.To, token)
	if err != nil {
		_ = ctx.fail(err)
		return nil
	}
	return roles
}

func (ctx *TxContext) GetTxHash() ids.ID { return ctx.input.TxHash }

// GetGasLeft reports the gas limit of the transaction: gas is not metered.
func (ctx *TxContext) GetGasLeft() uint64 {
	if ctx.input.GasLimit != 0 {
		return ctx.input.GasLimit
	}
	return ctx.mock.config.GasLimit
}

func (ctx *TxContext) blockInfo() ledger.BlockInfo {
	info, err := ctx.ledger.GetBlockInfo()
	if err != nil {
		_ = ctx.fail(err)
	}
	return info
}

func (ctx *TxContext) prevBlockInfo() ledger.BlockInfo {
	info, err := ctx.ledger.GetPrevBlockInfo()
	if err != nil {
		_ = ctx.fail(err)
	}
	return info
}

func (ctx *TxContext) GetBlockTimestamp() uint64     { return ctx.blockInfo().Timestamp }
func (ctx *TxContext) GetBlockNonce() uint64         { return ctx.blockInfo().Nonce }
func (ctx *TxContext) GetBlockRound() uint64         { return ctx.blockInfo().Round }
func (ctx *TxContext) GetBlockEpoch() uint64         { return ctx.blockInfo().Epoch }
func (ctx *TxContext) GetBlockRandomSeed() []byte    { return ctx.blockInfo().RandomSeed }
func (ctx *TxContext) GetPrevBlockTimestamp() uint64 { return ctx.prevBlockInfo().Timestamp }
func (ctx *TxContext) GetPrevBlockNonce() uint64     { return ctx.prevBlockInfo().Nonce }
func (ctx *TxContext) GetPrevBlockRound() uint64     { return ctx.prevBlockInfo().Round }
func (ctx *TxContext) GetPrevBlockEpoch() uint64     { return ctx.prevBlockInfo().Epoch }
func (ctx *TxContext) GetPrevBlockRandomSeed() []byte {
	return ctx.prevBlockInfo().RandomSeed
}

func (ctx *TxContext) StorageLoad(key []byte) []byte {
	value, err := ctx.ledger.GetStorage(ctx.input.To, key)
	if err != nil {
		_ = ctx.fail(err)
		return []byte{}
	}
	return value
}

func (ctx *TxContext) StorageStore(key, value []byte) error {
	if bytes.HasPrefix(key, reservedStoragePrefix) {
		return ctx.fail(api.NewTxError(api.ErrExecutionFailed, api.StatusExecutionFailed, api.StorageReservedKey))
	}
	if err := ctx.ledger.SetStorage(ctx.input.To, key, value); err != nil {
		return ctx.fail(err)
	}
	return nil
}

// SignalError aborts the frame with a user error.
func (ctx *TxContext) SignalError(message string) error {
	return ctx.fail(api.UserError(message))
}

func (ctx *TxContext) WriteEventLog(identifier []byte, topics [][]byte, data []byte) {
	ctx.logs = append(ctx.logs, Log{
		Address:    ctx.input.To,
		Identifier: identifier,
		Topics:     topics,
		Data:       data,
	})
}

// Finish appends values to the output of the frame. Closures executed as
// transactions use it to return results.
func (ctx *TxContext) Finish(values ...[]byte) {
	ctx.output = append(ctx.output, values...)
}
