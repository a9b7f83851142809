// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"math/big"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

// CheckNotPayable fails the call if any value was attached to it, MOAX
// being checked before tokens. Tokens go through DCTValue, so more than one
// transfer fails as too many transfers.
func (ctx *TxContext) CheckNotPayable() error {
	if ctx.MoaxValue().Sign() > 0 {
		return ctx.fail(api.NewTxError(api.ErrNonPayable, api.StatusExecutionFailed, api.NonPayableFuncMoax))
	}
	value, err := ctx.DCTValue()
	if err != nil {
		return err
	}
	if value.Sign() > 0 {
		return ctx.fail(api.NewTxError(api.ErrNonPayable, api.StatusExecutionFailed, api.NonPayableFuncDCT))
	}
	return nil
}

func (ctx *TxContext) MoaxValue() *big.Int {
	return new(big.Int).Set(ctx.input.moaxValue())
}

func (ctx *TxContext) DCTNumTransfers() int { return len(ctx.input.DCTValues) }

// failIfMoreThanOneTransfer guards the single transfer accessors.
func (ctx *TxContext) failIfMoreThanOneTransfer() error {
	if len(ctx.input.DCTValues) > 1 {
		return ctx.fail(api.NewTxError(api.ErrTooManyTransfers, api.StatusExecutionFailed, api.TooManyDCTTransfers))
	}
	return nil
}

func (ctx *TxContext) DCTValue() (*big.Int, error) {
	if err := ctx.failIfMoreThanOneTransfer(); err != nil {
		return new(big.Int), err
	}
	return ctx.DCTValueByIndex(0), nil
}

func (ctx *TxContext) Token() (api.TokenIdentifier, error) {
	if err := ctx.failIfMoreThanOneTransfer(); err != nil {
		return api.MoaxToken(), err
	}
	return ctx.TokenByIndex(0), nil
}

func (ctx *TxContext) DCTTokenNonce() (uint64, error) {
	if err := ctx.failIfMoreThanOneTransfer(); err != nil {
		return 0, err
	}
	return ctx.DCTTokenNonceByIndex(0), nil
}

func (ctx *TxContext) DCTTokenType() (api.TokenType, error) {
	if err := ctx.failIfMoreThanOneTransfer(); err != nil {
		return api.Fungible, err
	}
	return ctx.DCTTokenTypeByIndex(0), nil
}

func (ctx *TxContext) DCTValueByIndex(index int) *big.Int {
	if index < 0 || index >= len(ctx.input.DCTValues) {
		return new(big.Int)
	}
	return new(big.Int).Set(ctx.input.DCTValues[index].Value)
}

// TokenByIndex reports MOAX when there is no transfer at [index].
func (ctx *TxContext) TokenByIndex(index int) api.TokenIdentifier {
	if index < 0 || index >= len(ctx.input.DCTValues) {
		return api.MoaxToken()
	}
	token := ctx.input.DCTValues[index].TokenIdentifier
	if token.IsMoax() {
		return api.MoaxToken()
	}
	return token
}

func (ctx *TxContext) DCTTokenNonceByIndex(index int) uint64 {
	if index < 0 || index >= len(ctx.input.DCTValues) {
		return 0
	}
	return ctx.input.DCTValues[index].Nonce
}

func (ctx *TxContext) DCTTokenTypeByIndex(index int) api.TokenType {
	return api.TokenTypeFromNonce(ctx.DCTTokenNonceByIndex(index))
}

func (ctx *TxContext) AllDCTTransfers() []api.DCTTokenPayment {
	payments := make([]api.DCTTokenPayment, len(ctx.input.DCTValues))
	for i, transfer := range ctx.input.DCTValues {
		payments[i] = transfer.payment()
		payments[i].Amount = new(big.Int).Set(transfer.Value)
	}
	return payments
}
