// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"fmt"
	"math/big"

	"github.com/ava-labs/avalanchego/database"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/ledger"
)

// TxFunc is contract logic run as a transaction. It reports whether its
// effects should be kept.
type TxFunc func(ctx *TxContext) StateChange

// QueryFunc is read only contract logic.
type QueryFunc func(ctx *TxContext)

type handler func(ctx *TxContext) (StateChange, error)

// ExecuteTx runs [f] as a transaction from input.From to the contract at
// input.To. The payments of [input] are applied before [f] runs, so [f]
// observes them. All effects, payments included, are discarded if [f]
// returns Revert or fails.
func (b *BlockchainMock) ExecuteTx(input *TxInput, f TxFunc) *TxResult {
	return b.executeTop(CallDirect, input, func(ctx *TxContext) (StateChange, error) {
		return f(ctx), nil
	})
}

// ExecuteQuery runs [f] read only: whatever it changes is discarded.
func (b *BlockchainMock) ExecuteQuery(input *TxInput, f QueryFunc) *TxResult {
	return b.executeTop(CallQuery, input, func(ctx *TxContext) (StateChange, error) {
		f(ctx)
		return Revert, nil
	})
}

// ExecuteSCCall calls the endpoint input.Func of the contract at input.To.
// Built-in token transfer functions are decoded first. A call to a user
// account is a plain transfer.
func (b *BlockchainMock) ExecuteSCCall(input *TxInput) *TxResult {
	decoded, err := decodeBuiltinCall(input)
	if err != nil {
		b.metrics.executed.Inc()
		b.metrics.failed.Inc()
		return failedResult(b.txHash(input), err)
	}
	return b.executeTop(CallDirect, decoded, b.endpointHandler)
}

// ExecuteSCQuery calls the endpoint input.Func read only.
func (b *BlockchainMock) ExecuteSCQuery(input *TxInput) *TxResult {
	return b.executeTop(CallQuery, input, b.endpointHandler)
}

// ExecuteSCDeploy creates a contract running [code] owned by input.From and
// calls its "init" endpoint, if any, with input.Args. input.To is ignored:
// the new address comes from SetNewAddress or is derived from the creator
// and its current nonce. The returned address is meaningful only if the
// result succeeded.
func (b *BlockchainMock) ExecuteSCDeploy(input *TxInput, code []byte) (api.Address, *TxResult) {
	creator, err := b.ledger.GetAccount(input.From)
	if err != nil && err != database.ErrNotFound {
		return api.ZeroAddress, failedResult(b.txHash(input), err)
	}
	nonce := uint64(0)
	if creator != nil {
		nonce = creator.Nonce
	}
	newAddr := b.newContractAddress(input.From, nonce)

	if _, ok := b.contracts.Get(code); !ok {
		return api.ZeroAddress, failedResult(b.txHash(input), api.NewTxError(api.ErrContractNotFound, api.StatusContractNotFound, api.ContractNotFound))
	}

	deploy := *input
	deploy.To = newAddr
	deploy.Func = initEndpoint
	b.metrics.executed.Inc()
	result := b.execute(nil, CallDeploy, &deploy, func(frame *ledger.Ledger) error {
		_, err := frame.CreateContractAccount(newAddr, new(big.Int), code, input.From)
		return err
	}, b.endpointHandler)
	b.record(CallDeploy, &deploy, result)
	return newAddr, result
}

// ExecuteTransfer moves value without running any contract code.
func (b *BlockchainMock) ExecuteTransfer(input *TxInput) *TxResult {
	transfer := *input
	transfer.Func = ""
	return b.executeTop(CallDirect, &transfer, func(*TxContext) (StateChange, error) {
		return Commit, nil
	})
}

const initEndpoint = "init"

// endpointHandler dispatches the frame's input to the endpoint table of the
// target contract.
func (b *BlockchainMock) endpointHandler(ctx *TxContext) (StateChange, error) {
	acc, err := ctx.ledger.GetAccount(ctx.input.To)
	if err != nil && err != database.ErrNotFound {
		return Revert, err
	}
	if acc == nil || !acc.IsSmartContract() {
		if ctx.kind != CallQuery && ctx.input.Func == "" {
			return Commit, nil
		}
		return Revert, api.NewTxError(api.ErrContractNotFound, api.StatusContractNotFound, api.ContractNotFound)
	}
	code, ok := b.contracts.Get(acc.Code)
	if !ok {
		return Revert, api.NewTxError(api.ErrContractNotFound, api.StatusContractNotFound, fmt.Sprintf("%s: %s", api.ContractNotFound, acc.Code))
	}

	ep, ok := code.Endpoint(ctx.input.Func)
	if !ok {
		if ctx.kind == CallDeploy {
			// constructors are optional
			return Commit, nil
		}
		return Revert, api.NewTxError(api.ErrFunctionNotFound, api.StatusFunctionNotFound, api.FunctionNotFound)
	}
	if err := ep.checkPayable(ctx); err != nil {
		return Revert, ctx.fail(err)
	}

	out, err := ep.Handler(ctx, ctx.input.Args)
	if err != nil {
		return Revert, err
	}
	ctx.output = append(ctx.output, out...)
	return Commit, nil
}

// executeTop runs a frame directly on top of the committed ledger.
func (b *BlockchainMock) executeTop(kind CallKind, input *TxInput, h handler) *TxResult {
	if kind == CallQuery {
		b.metrics.queries.Inc()
	} else {
		b.metrics.executed.Inc()
	}
	result := b.execute(nil, kind, input, nil, h)
	b.record(kind, input, result)
	return result
}

func (b *BlockchainMock) record(kind CallKind, input *TxInput, result *TxResult) {
	if kind == CallQuery {
		return
	}
	switch {
	case result.Err != nil:
		b.metrics.failed.Inc()
		b.log.Debug("transaction failed",
			"kind", kind,
			"func", input.Func,
			"status", result.Status,
			"message", result.Message,
		)
	case result.Committed:
		b.metrics.committed.Inc()
	default:
		b.metrics.reverted.Inc()
	}
}

// execute is the frame lifecycle shared by top level and nested calls:
// snapshot the enclosing ledger, apply the payments, run the handler, then
// commit into the enclosing ledger or drop everything.
func (b *BlockchainMock) execute(parent *TxContext, kind CallKind, input *TxInput, setup func(*ledger.Ledger) error, h handler) *TxResult {
	in := *input
	input = &in
	base := b.ledger
	depth := 0
	if parent != nil {
		base = parent.ledger
		depth = parent.depth + 1
		input.TxHash = parent.input.TxHash
	}
	hash := b.txHash(input)
	input.TxHash = hash

	if depth > b.config.MaxCallDepth {
		return failedResult(hash, api.NewTxError(api.ErrCallStack, api.StatusCallStackOverflow, api.MaxCallDepthExceeded))
	}
	if depth > b.maxDepth {
		b.maxDepth = depth
		b.metrics.maxDepth.Set(float64(depth))
	}

	frame := base.Snapshot()
	ctx := newTxContext(b, parent, kind, input, frame, depth)

	if setup != nil {
		if err := setup(frame); err != nil {
			frame.Revert()
			return failedResult(hash, err)
		}
	}
	if err := ctx.applyTransfers(); err != nil {
		frame.Revert()
		return failedResult(hash, err)
	}

	change, err := runHandler(ctx, h)
	if err == nil {
		err = ctx.failure
	}
	if err != nil {
		frame.Revert()
		return failedResult(hash, err)
	}

	result := &TxResult{
		Status: api.StatusOk,
		Out:    ctx.output,
		TxHash: hash,
	}
	if change == Revert || kind == CallQuery {
		frame.Revert()
		return result
	}
	if err := frame.Commit(); err != nil {
		return failedResult(hash, err)
	}
	result.Committed = true
	result.Logs = ctx.logs
	if parent != nil {
		parent.logs = append(parent.logs, ctx.logs...)
	}
	return result
}

// runHandler turns a panicking contract into a failed frame.
func runHandler(ctx *TxContext, h handler) (change StateChange, err error) {
	defer func() {
		if r := recover(); r != nil {
			change = Revert
			err = api.NewTxError(api.ErrExecutionFailed, api.StatusExecutionFailed, fmt.Sprintf("panic occurred: %v", r))
		}
	}()
	return h(ctx)
}
