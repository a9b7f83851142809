// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

func TestCallValueSingleTransfer(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)
	require.NoError(env.mock.Ledger().SetDCTBalance(alice, nft, 3, big.NewInt(1)))

	result := env.mock.ExecuteTx(&TxInput{
		From:      alice,
		To:        testSC,
		DCTValues: []TxInputDCT{{TokenIdentifier: nft, Nonce: 3, Value: big.NewInt(1)}},
	}, func(ctx *TxContext) StateChange {
		require.Equal(1, ctx.DCTNumTransfers())
		require.Equal(int64(0), ctx.MoaxValue().Int64())

		value, err := ctx.DCTValue()
		require.NoError(err)
		require.Equal(int64(1), value.Int64())
		token, err := ctx.Token()
		require.NoError(err)
		require.Equal(nft, token)
		nonce, err := ctx.DCTTokenNonce()
		require.NoError(err)
		require.Equal(uint64(3), nonce)
		tokenType, err := ctx.DCTTokenType()
		require.NoError(err)
		require.Equal(api.NonFungible, tokenType)

		require.ErrorIs(ctx.CheckNotPayable(), api.ErrNonPayable)
		return Revert
	})
	require.Equal(api.StatusExecutionFailed, result.Status)
	require.Equal(api.NonPayableFuncDCT, result.Message)
}

func TestCallValueNoTransfer(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)

	result := env.mock.ExecuteTx(&TxInput{From: alice, To: testSC}, func(ctx *TxContext) StateChange {
		require.NoError(ctx.CheckNotPayable())
		require.Equal(0, ctx.DCTNumTransfers())

		token, err := ctx.Token()
		require.NoError(err)
		require.True(token.IsMoax())
		value, err := ctx.DCTValue()
		require.NoError(err)
		require.Zero(value.Sign())
		require.Empty(ctx.AllDCTTransfers())
		return Commit
	})
	require.True(result.Succeeded())
}

func TestCallValueMultiTransfer(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)
	require.NoError(env.mock.Ledger().SetDCTBalance(alice, cool, 0, big.NewInt(100)))
	require.NoError(env.mock.Ledger().SetDCTBalance(alice, nft, 2, big.NewInt(1)))

	transfers := []TxInputDCT{
		{TokenIdentifier: cool, Value: big.NewInt(40)},
		{TokenIdentifier: nft, Nonce: 2, Value: big.NewInt(1)},
		{TokenIdentifier: api.MoaxToken(), Value: big.NewInt(7)},
	}
	result := env.mock.ExecuteTx(&TxInput{From: alice, To: testSC, DCTValues: transfers}, func(ctx *TxContext) StateChange {
		require.Equal(3, ctx.DCTNumTransfers())

		require.Equal(cool, ctx.TokenByIndex(0))
		require.Equal(int64(40), ctx.DCTValueByIndex(0).Int64())
		require.Equal(api.Fungible, ctx.DCTTokenTypeByIndex(0))
		require.Equal(nft, ctx.TokenByIndex(1))
		require.Equal(uint64(2), ctx.DCTTokenNonceByIndex(1))
		require.Equal(api.NonFungible, ctx.DCTTokenTypeByIndex(1))
		require.True(ctx.TokenByIndex(2).IsMoax())

		// out of range
		require.True(ctx.TokenByIndex(3).IsMoax())
		require.Zero(ctx.DCTValueByIndex(3).Sign())
		require.Zero(ctx.DCTTokenNonceByIndex(-1))
		require.Equal(api.Fungible, ctx.DCTTokenTypeByIndex(9))

		payments := ctx.AllDCTTransfers()
		require.Len(payments, 3)
		payments[0].Amount.SetInt64(0)
		require.Equal(int64(40), ctx.DCTValueByIndex(0).Int64())

		require.Equal(int64(40), ctx.GetSCBalance(cool, 0).Int64())
		require.Equal(int64(7), ctx.GetSCBalance(api.MoaxToken(), 0).Int64())
		return Commit
	})
	require.True(result.Succeeded())
	require.Equal(int64(60), env.dctBalance(t, alice, cool, 0))
	require.Equal(int64(993), env.balance(t, alice))
}

func TestCallValueTooManyTransfers(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)
	require.NoError(env.mock.Ledger().SetDCTBalance(alice, cool, 0, big.NewInt(100)))

	transfers := []TxInputDCT{
		{TokenIdentifier: cool, Value: big.NewInt(1)},
		{TokenIdentifier: cool, Value: big.NewInt(2)},
	}
	accessors := map[string]func(ctx *TxContext) error{
		"value": func(ctx *TxContext) error { _, err := ctx.DCTValue(); return err },
		"token": func(ctx *TxContext) error { _, err := ctx.Token(); return err },
		"nonce": func(ctx *TxContext) error { _, err := ctx.DCTTokenNonce(); return err },
		"type":  func(ctx *TxContext) error { _, err := ctx.DCTTokenType(); return err },
	}
	for name, accessor := range accessors {
		result := env.mock.ExecuteTx(&TxInput{From: alice, To: testSC, DCTValues: transfers}, func(ctx *TxContext) StateChange {
			require.ErrorIs(accessor(ctx), api.ErrTooManyTransfers, name)
			return Commit
		})
		require.Equal(api.StatusExecutionFailed, result.Status, name)
		require.Equal(api.TooManyDCTTransfers, result.Message, name)
	}
	require.Equal(int64(100), env.dctBalance(t, alice, cool, 0))
}

func TestCheckNotPayableMoaxFirst(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)
	require.NoError(env.mock.Ledger().SetDCTBalance(alice, cool, 0, big.NewInt(100)))

	result := env.mock.ExecuteSCCall(&TxInput{
		From:      alice,
		To:        testSC,
		Func:      "load",
		MoaxValue: big.NewInt(1),
		DCTValues: []TxInputDCT{{TokenIdentifier: cool, Value: big.NewInt(1)}},
	})
	require.Equal(api.NonPayableFuncMoax, result.Message)

	result = env.mock.ExecuteSCCall(&TxInput{
		From:      alice,
		To:        testSC,
		Func:      "payCool",
		DCTValues: []TxInputDCT{{TokenIdentifier: cool, Value: big.NewInt(1)}, {TokenIdentifier: cool, Value: big.NewInt(1)}},
	})
	require.Equal(api.TooManyDCTTransfers, result.Message)
}

func TestCheckNotPayableMultipleTransfers(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)
	require.NoError(env.mock.Ledger().SetDCTBalance(alice, cool, 0, big.NewInt(100)))

	result := env.mock.ExecuteSCCall(&TxInput{
		From:      alice,
		To:        testSC,
		Func:      "load",
		DCTValues: []TxInputDCT{{TokenIdentifier: cool, Value: big.NewInt(0)}, {TokenIdentifier: cool, Value: big.NewInt(1)}},
	})
	require.Equal(api.StatusExecutionFailed, result.Status)
	require.Equal(api.TooManyDCTTransfers, result.Message)
	require.ErrorIs(result.Err, api.ErrTooManyTransfers)
	require.Equal(int64(100), env.dctBalance(t, alice, cool, 0))

	result = env.mock.ExecuteSCCall(&TxInput{
		From:      alice,
		To:        testSC,
		Func:      "load",
		DCTValues: []TxInputDCT{{TokenIdentifier: cool, Value: big.NewInt(0)}},
	})
	require.True(result.Succeeded())
}
