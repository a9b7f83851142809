// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"math/big"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/ledger"
)

func (ctx *TxContext) DirectMoax(to api.Address, amount *big.Int, _ []byte) error {
	if err := ctx.ledger.TransferMoax(ctx.input.To, to, amount); err != nil {
		return ctx.fail(err)
	}
	return nil
}

func (ctx *TxContext) DirectDCT(to api.Address, token api.TokenIdentifier, nonce uint64, amount *big.Int, data []byte) error {
	if token.IsMoax() {
		return ctx.DirectMoax(to, amount, data)
	}
	if err := ctx.ledger.TransferDCT(ctx.input.To, to, token, nonce, amount); err != nil {
		return ctx.fail(err)
	}
	return nil
}

func (ctx *TxContext) DirectMultiDCT(to api.Address, payments []api.DCTTokenPayment, data []byte) error {
	for _, p := range payments {
		if err := ctx.DirectDCT(to, p.TokenIdentifier, p.Nonce, p.Amount, data); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteOnDestContext calls [endpoint] of the contract at [to] in a nested
// frame. The nested effects are committed into this frame only: they are
// dropped again if this frame reverts. A failure of the nested call fails
// this frame as well.
func (ctx *TxContext) ExecuteOnDestContext(to api.Address, moax *big.Int, payments []api.DCTTokenPayment, endpoint string, args [][]byte) ([][]byte, error) {
	input := &TxInput{
		From:      ctx.input.To,
		To:        to,
		MoaxValue: moax,
		DCTValues: make([]TxInputDCT, len(payments)),
		Func:      endpoint,
		Args:      args,
		GasLimit:  ctx.input.GasLimit,
		GasPrice:  ctx.input.GasPrice,
	}
	for i, p := range payments {
		input.DCTValues[i] = TxInputDCT{TokenIdentifier: p.TokenIdentifier, Nonce: p.Nonce, Value: p.Amount}
	}

	result := ctx.mock.execute(ctx, CallDestContext, input, nil, ctx.mock.endpointHandler)
	if result.Err != nil {
		return nil, ctx.fail(result.Err)
	}
	return result.Out, nil
}

// requireRole fails the frame unless the current contract holds [role] on
// [token].
func (ctx *TxContext) requireRole(token api.TokenIdentifier, role api.DCTLocalRole) error {
	ok, err := ctx.ledger.HasRole(ctx.input.To, token, role)
	if err != nil {
		return ctx.fail(err)
	}
	if !ok {
		return ctx.fail(api.NewTxError(api.ErrRoleViolation, api.StatusExecutionFailed, api.ActionNotAllowed))
	}
	return nil
}

func (ctx *TxContext) DCTLocalMint(token api.TokenIdentifier, amount *big.Int) error {
	if err := ctx.requireRole(token, api.RoleMint); err != nil {
		return err
	}
	if err := ctx.ledger.AddDCTBalance(ctx.input.To, token, 0, amount); err != nil {
		return ctx.fail(err)
	}
	return nil
}

func (ctx *TxContext) DCTLocalBurn(token api.TokenIdentifier, amount *big.Int) error {
	if err := ctx.requireRole(token, api.RoleBurn); err != nil {
		return err
	}
	if err := ctx.ledger.SubDCTBalance(ctx.input.To, token, 0, amount); err != nil {
		return ctx.fail(err)
	}
	return nil
}

// DCTNFTCreate mints a new instance of [token] owned and created by the
// current contract and returns its nonce.
func (ctx *TxContext) DCTNFTCreate(token api.TokenIdentifier, amount *big.Int, props api.NFTProperties) (uint64, error) {
	if err := ctx.requireRole(token, api.RoleNftCreate); err != nil {
		return 0, err
	}
	if amount.Sign() <= 0 {
		return 0, ctx.fail(api.NewTxError(api.ErrExecutionFailed, api.StatusExecutionFailed, api.NFTCreateZeroAmount))
	}
	nonce, err := ctx.ledger.CreateNFT(ctx.input.To, token, amount, &ledger.TokenInstance{
		Attributes: props.Attributes,
		Creator:    ctx.input.To,
		Royalties:  props.Royalties,
		Hash:       props.Hash,
		Name:       props.Name,
		URIs:       props.URIs,
	})
	if err != nil {
		return 0, ctx.fail(err)
	}
	return nonce, nil
}

func (ctx *TxContext) DCTNFTAddQuantity(token api.TokenIdentifier, nonce uint64, amount *big.Int) error {
	if err := ctx.requireRole(token, api.RoleNftAddQuantity); err != nil {
		return err
	}
	if err := ctx.ledger.AddDCTBalance(ctx.input.To, token, nonce, amount); err != nil {
		return ctx.fail(err)
	}
	return nil
}

func (ctx *TxContext) DCTNFTBurn(token api.TokenIdentifier, nonce uint64, amount *big.Int) error {
	if err := ctx.requireRole(token, api.RoleNftBurn); err != nil {
		return err
	}
	if err := ctx.ledger.SubDCTBalance(ctx.input.To, token, nonce, amount); err != nil {
		return ctx.fail(err)
	}
	return nil
}
