// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package testframework

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/contracts/tester"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

var (
	coolToken     = api.TokenIdentifier("COOL-123456")
	veryCoolToken = api.TokenIdentifier("VERYCOOL-123456")

	nftAttributes = tester.NftDummyAttributes{CreationEpoch: 666, CoolFactor: 101}
)

func newTester(w *BlockchainStateWrapper, balance int64, owner *api.Address) *ContractObjWrapper {
	return w.CreateSCAccount(big.NewInt(balance), owner, tester.Code(), tester.CodePath)
}

func TestAdd(t *testing.T) {
	w := New(t)
	sc := newTester(w, 0, nil)

	result := w.ExecuteQuery(sc, func(ctx *vm.TxContext) {
		sum := tester.New(ctx).Sum(big.NewInt(1000), big.NewInt(2000))
		assert.Equal(t, big.NewInt(3000), sum)
	})
	require.True(t, result.Succeeded())
}

func TestSCResultOk(t *testing.T) {
	w := New(t)
	sc := newTester(w, 0, nil)

	w.ExecuteQuery(sc, func(ctx *vm.TxContext) {
		sum, err := tester.New(ctx).SumSCResult(big.NewInt(1000), big.NewInt(2000))
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(3000), sum)
	})
}

func TestSCResultErr(t *testing.T) {
	w := New(t)
	sc := newTester(w, 0, nil)

	w.ExecuteQuery(sc, func(ctx *vm.TxContext) {
		_, err := tester.New(ctx).SumSCResult(big.NewInt(0), big.NewInt(2000))
		require.ErrorIs(t, err, api.ErrUserFailure)
		assert.Equal(t, "Non-zero required", api.AsTxError(err).Message)
	})
}

func TestSCResultErrThroughEndpoint(t *testing.T) {
	w := New(t)
	caller := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)

	result := w.Mock().ExecuteSCCall(&vm.TxInput{
		From: caller,
		To:   sc.Address,
		Func: "sumScResult",
		Args: [][]byte{{}, api.TopEncodeU64(2000)},
	})
	RequireUserError(t, result, "Non-zero required")
}

func TestSCPaymentOk(t *testing.T) {
	w := New(t)
	caller := w.CreateUserAccount(big.NewInt(1_000))
	sc := newTester(w, 2_000, &caller)

	result := w.ExecuteTx(caller, sc, big.NewInt(1_000), func(ctx *vm.TxContext) vm.StateChange {
		assert.Equal(t, big.NewInt(1_000), tester.New(ctx).ReceiveMoax())
		return vm.Commit
	})
	require.True(t, result.Committed)

	w.CheckMoaxBalance(caller, big.NewInt(0))
	w.CheckMoaxBalance(sc.Address, big.NewInt(3_000))
}

func TestSCPaymentReverted(t *testing.T) {
	w := New(t)
	caller := w.CreateUserAccount(big.NewInt(1_000))
	sc := newTester(w, 2_000, &caller)

	result := w.ExecuteTx(caller, sc, big.NewInt(1_000), func(ctx *vm.TxContext) vm.StateChange {
		assert.Equal(t, big.NewInt(1_000), tester.New(ctx).ReceiveMoax())
		return vm.Revert
	})
	require.True(t, result.Succeeded())
	require.False(t, result.Committed)

	w.CheckMoaxBalance(caller, big.NewInt(1_000))
	w.CheckMoaxBalance(sc.Address, big.NewInt(2_000))
}

func TestSCHalfPayment(t *testing.T) {
	w := New(t)
	caller := w.CreateUserAccount(big.NewInt(1_000))
	sc := newTester(w, 2_000, &caller)

	w.ExecuteTx(caller, sc, big.NewInt(1_000), func(ctx *vm.TxContext) vm.StateChange {
		require.NoError(t, tester.New(ctx).ReceiveMoaxHalf())
		return vm.Commit
	})

	w.CheckMoaxBalance(caller, big.NewInt(500))
	w.CheckMoaxBalance(sc.Address, big.NewInt(2_500))
}

func TestDCTBalance(t *testing.T) {
	w := New(t)
	sc := newTester(w, 0, nil)

	w.SetDCTBalance(sc.Address, coolToken, big.NewInt(1_000))
	w.CheckDCTBalance(sc.Address, coolToken, big.NewInt(1_000))

	w.ExecuteQuery(sc, func(ctx *vm.TxContext) {
		assert.Equal(t, big.NewInt(1_000), tester.New(ctx).GetDCTBalance(coolToken, 0))
	})
}

func TestDCTPaymentOk(t *testing.T) {
	w := New(t)
	caller := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)

	w.SetDCTBalance(caller, coolToken, big.NewInt(1_000))
	w.SetDCTBalance(sc.Address, coolToken, big.NewInt(2_000))

	w.ExecuteDCTTransfer(caller, sc, coolToken, 0, big.NewInt(1_000), func(ctx *vm.TxContext) vm.StateChange {
		token, payment, err := tester.New(ctx).ReceiveDCT()
		require.NoError(t, err)
		assert.Equal(t, coolToken, token)
		assert.Equal(t, big.NewInt(1_000), payment)
		return vm.Commit
	})

	w.CheckDCTBalance(caller, coolToken, big.NewInt(0))
	w.CheckDCTBalance(sc.Address, coolToken, big.NewInt(3_000))
}

func TestDCTPaymentReverted(t *testing.T) {
	w := New(t)
	caller := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)

	w.SetDCTBalance(caller, coolToken, big.NewInt(1_000))
	w.SetDCTBalance(sc.Address, coolToken, big.NewInt(2_000))

	w.ExecuteDCTTransfer(caller, sc, coolToken, 0, big.NewInt(1_000), func(ctx *vm.TxContext) vm.StateChange {
		token, payment, err := tester.New(ctx).ReceiveDCT()
		require.NoError(t, err)
		assert.Equal(t, coolToken, token)
		assert.Equal(t, big.NewInt(1_000), payment)
		return vm.Revert
	})

	w.CheckDCTBalance(caller, coolToken, big.NewInt(1_000))
	w.CheckDCTBalance(sc.Address, coolToken, big.NewInt(2_000))
}

func TestNFTBalance(t *testing.T) {
	w := New(t)
	sc := newTester(w, 0, nil)
	const nonce = 2

	w.SetNFTBalance(sc.Address, coolToken, nonce, big.NewInt(1_000), nftAttributes.Encode())
	w.CheckNFTBalance(sc.Address, coolToken, nonce, big.NewInt(1_000), nftAttributes.Encode())

	w.ExecuteQuery(sc, func(ctx *vm.TxContext) {
		assert.Equal(t, big.NewInt(1_000), tester.New(ctx).GetDCTBalance(coolToken, nonce))
	})
}

func TestSCSendNFTToUser(t *testing.T) {
	w := New(t)
	caller := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)
	const nonce = 2

	w.SetNFTBalance(sc.Address, coolToken, nonce, big.NewInt(1_000), nftAttributes.Encode())

	w.ExecuteTx(caller, sc, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		require.NoError(t, tester.New(ctx).SendNFT(caller, coolToken, nonce, big.NewInt(400)))
		return vm.Commit
	})

	w.CheckNFTBalance(caller, coolToken, nonce, big.NewInt(400), nftAttributes.Encode())
	w.CheckNFTBalance(sc.Address, coolToken, nonce, big.NewInt(600), nftAttributes.Encode())
}

func TestSCDCTMintBurn(t *testing.T) {
	w := New(t)
	caller := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)

	w.SetDCTLocalRoles(sc.Address, coolToken, []api.DCTLocalRole{api.RoleMint, api.RoleBurn})

	w.ExecuteTx(caller, sc, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		require.NoError(t, tester.New(ctx).MintDCT(coolToken, 0, big.NewInt(400)))
		return vm.Commit
	})
	w.CheckDCTBalance(sc.Address, coolToken, big.NewInt(400))

	w.ExecuteTx(caller, sc, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		require.NoError(t, tester.New(ctx).BurnDCT(coolToken, 0, big.NewInt(100)))
		return vm.Commit
	})
	w.CheckDCTBalance(sc.Address, coolToken, big.NewInt(300))
}

func TestSCMintWithoutRole(t *testing.T) {
	w := New(t)
	caller := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)

	result := w.ExecuteTx(caller, sc, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		require.ErrorIs(t, tester.New(ctx).MintDCT(coolToken, 0, big.NewInt(400)), api.ErrRoleViolation)
		return vm.Commit
	})
	require.False(t, result.Succeeded())
	require.Equal(t, api.ActionNotAllowed, result.Message)
	w.CheckDCTBalance(sc.Address, coolToken, big.NewInt(0))
}

func TestSCNFT(t *testing.T) {
	w := New(t)
	caller := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)
	attributes := nftAttributes.Encode()

	w.SetDCTLocalRoles(sc.Address, coolToken, []api.DCTLocalRole{api.RoleNftCreate, api.RoleNftAddQuantity, api.RoleNftBurn})

	w.ExecuteTx(caller, sc, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		contract := tester.New(ctx)
		first, err := contract.CreateNFT(coolToken, big.NewInt(100), nftAttributes)
		require.NoError(t, err)
		assert.EqualValues(t, 1, first)

		second, err := contract.CreateNFT(coolToken, big.NewInt(100), nftAttributes)
		require.NoError(t, err)
		assert.EqualValues(t, 2, second)
		return vm.Commit
	})
	w.CheckNFTBalance(sc.Address, coolToken, 1, big.NewInt(100), attributes)
	w.CheckNFTBalance(sc.Address, coolToken, 2, big.NewInt(100), attributes)

	w.ExecuteTx(caller, sc, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		require.NoError(t, tester.New(ctx).MintDCT(coolToken, 1, big.NewInt(100)))
		return vm.Commit
	})
	w.CheckNFTBalance(sc.Address, coolToken, 1, big.NewInt(200), attributes)
	w.CheckNFTBalance(sc.Address, coolToken, 2, big.NewInt(100), attributes)

	w.ExecuteTx(caller, sc, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		require.NoError(t, tester.New(ctx).BurnDCT(coolToken, 2, big.NewInt(50)))
		return vm.Commit
	})
	w.CheckNFTBalance(sc.Address, coolToken, 1, big.NewInt(200), attributes)
	w.CheckNFTBalance(sc.Address, coolToken, 2, big.NewInt(50), attributes)
}

func TestDCTMultiTransfer(t *testing.T) {
	w := New(t)
	caller := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)
	const nonce = 5

	w.SetDCTBalance(caller, coolToken, big.NewInt(100))
	w.SetNFTBalance(caller, veryCoolToken, nonce, big.NewInt(1), nil)

	transfers := []vm.TxInputDCT{
		{TokenIdentifier: coolToken, Nonce: 0, Value: big.NewInt(100)},
		{TokenIdentifier: veryCoolToken, Nonce: nonce, Value: big.NewInt(1)},
	}
	w.ExecuteDCTMultiTransfer(caller, sc, transfers, func(ctx *vm.TxContext) vm.StateChange {
		payments := tester.New(ctx).ReceiveMultiDCT()
		require.Len(t, payments, 2)
		assert.Equal(t, coolToken, payments[0].TokenIdentifier)
		assert.EqualValues(t, 0, payments[0].Nonce)
		assert.Equal(t, big.NewInt(100), payments[0].Amount)
		assert.Equal(t, veryCoolToken, payments[1].TokenIdentifier)
		assert.EqualValues(t, nonce, payments[1].Nonce)
		assert.Equal(t, big.NewInt(1), payments[1].Amount)
		return vm.Commit
	})

	w.CheckDCTBalance(sc.Address, coolToken, big.NewInt(100))
	w.CheckNFTBalance(sc.Address, veryCoolToken, nonce, big.NewInt(1), nil)
}

func TestQuery(t *testing.T) {
	w := New(t)
	sc := newTester(w, 2_000, nil)

	w.ExecuteQuery(sc, func(ctx *vm.TxContext) {
		assert.Equal(t, big.NewInt(2_000), tester.New(ctx).GetMoaxBalance())
	})
}

// deploy calls the constructor the way a deployment would.
func deploy(t *testing.T, w *BlockchainStateWrapper, caller api.Address, sc *ContractObjWrapper) {
	result := w.ExecuteTx(caller, sc, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		require.NoError(t, tester.New(ctx).Init())
		return vm.Commit
	})
	require.True(t, result.Committed)
}

func addFifty(t *testing.T, caller api.Address, change vm.StateChange) vm.TxFunc {
	return func(ctx *vm.TxContext) vm.StateChange {
		contract := tester.New(ctx)
		totalBefore := contract.TotalValue()
		perCallerBefore := contract.ValuePerCaller(caller)
		assert.Equal(t, big.NewInt(1), totalBefore)
		assert.Equal(t, big.NewInt(0), perCallerBefore)

		require.NoError(t, contract.Add(big.NewInt(50)))

		assert.Equal(t, big.NewInt(51), contract.TotalValue())
		assert.Equal(t, big.NewInt(50), contract.ValuePerCaller(caller))
		return change
	}
}

func TestStorageCheck(t *testing.T) {
	w := New(t)
	user := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)

	deploy(t, w, user, sc)
	w.ExecuteTx(user, sc, big.NewInt(0), addFifty(t, user, vm.Commit))

	w.ExecuteQuery(sc, func(ctx *vm.TxContext) {
		contract := tester.New(ctx)
		assert.Equal(t, big.NewInt(51), contract.TotalValue())
		assert.Equal(t, big.NewInt(50), contract.ValuePerCaller(user))
	})
}

func TestStorageRevert(t *testing.T) {
	w := New(t)
	user := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)

	deploy(t, w, user, sc)
	w.ExecuteTx(user, sc, big.NewInt(0), addFifty(t, user, vm.Revert))

	w.ExecuteQuery(sc, func(ctx *vm.TxContext) {
		contract := tester.New(ctx)
		assert.Equal(t, big.NewInt(1), contract.TotalValue())
		assert.Equal(t, big.NewInt(0), contract.ValuePerCaller(user))
	})
}

func TestStorageSet(t *testing.T) {
	w := New(t)
	user := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)

	deploy(t, w, user, sc)
	w.ExecuteTx(user, sc, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		contract := tester.New(ctx)
		require.NoError(t, contract.SetTotalValue(big.NewInt(50)))
		require.NoError(t, contract.SetValuePerCaller(user, big.NewInt(50)))
		return vm.Commit
	})

	w.ExecuteQuery(sc, func(ctx *vm.TxContext) {
		contract := tester.New(ctx)
		assert.Equal(t, big.NewInt(50), contract.TotalValue())
		assert.Equal(t, big.NewInt(50), contract.ValuePerCaller(user))
	})
}

func TestBlockchainState(t *testing.T) {
	w := New(t)
	sc := newTester(w, 0, nil)

	w.SetBlockEpoch(10)
	w.SetBlockNonce(20)
	w.SetBlockTimestamp(30)
	w.SetBlockRound(40)
	w.SetBlockRandomSeed([]byte{1, 2, 3})

	w.ExecuteQuery(sc, func(ctx *vm.TxContext) {
		contract := tester.New(ctx)
		assert.EqualValues(t, 10, contract.GetBlockEpoch())
		assert.EqualValues(t, 20, contract.GetBlockNonce())
		assert.EqualValues(t, 30, contract.GetBlockTimestamp())
		assert.EqualValues(t, 40, ctx.GetBlockRound())
		assert.Equal(t, []byte{1, 2, 3}, ctx.GetBlockRandomSeed())
	})
}

func TestExecuteOnDestContextQuery(t *testing.T) {
	w := New(t)
	user := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)
	other := newTester(w, 0, nil)
	require.NotEqual(t, sc.Address, other.Address)

	w.ExecuteTx(user, other, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		require.NoError(t, tester.New(ctx).SetTotalValue(big.NewInt(5)))
		return vm.Commit
	})

	w.ExecuteQuery(sc, func(ctx *vm.TxContext) {
		value, err := tester.New(ctx).CallOtherContractExecuteOnDest(other.Address)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(5), value)
	})
}

func TestExecuteOnDestContextChangeState(t *testing.T) {
	w := New(t)
	user := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)
	other := newTester(w, 0, nil)

	w.ExecuteTx(user, other, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		require.NoError(t, tester.New(ctx).SetTotalValue(big.NewInt(5)))
		return vm.Commit
	})

	w.ExecuteTx(user, sc, big.NewInt(0), func(ctx *vm.TxContext) vm.StateChange {
		require.NoError(t, tester.New(ctx).ExecuteOnDestAddValue(other.Address, big.NewInt(5)))
		return vm.Commit
	})

	w.ExecuteQuery(other, func(ctx *vm.TxContext) {
		assert.Equal(t, big.NewInt(10), tester.New(ctx).GetVal())
	})
}

func TestCreatedAddresses(t *testing.T) {
	w := New(t)
	first := w.CreateUserAccount(big.NewInt(0))
	second := w.CreateUserAccount(big.NewInt(0))
	sc := newTester(w, 0, nil)

	require.NotEqual(t, first, second)
	require.False(t, first.IsSmartContract())
	require.True(t, sc.Address.IsSmartContract())
	require.Equal(t, tester.CodePath, sc.CodePath)
}
