// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package testframework drives contracts from Go tests: it creates accounts,
// runs closures as transactions and queries against a mock chain, checks
// balances and records what it does as a denali scenario.
package testframework

import (
	"bytes"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/denali"
	"github.com/dharitri/dharitri-wasm-debug/ledger"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

const codePrefix = "file:"

// BlockchainStateWrapper owns a mock chain for the duration of a test. Every
// setup failure fails the test.
type BlockchainStateWrapper struct {
	t    testing.TB
	mock *vm.BlockchainMock

	userCount     int
	contractCount int

	scenario *denali.Scenario
	txCount  int
}

// ContractObjWrapper is a contract account created by the wrapper.
type ContractObjWrapper struct {
	Address api.Address
	// CodePath is the code reference the contract is registered under.
	CodePath string
}

func New(t testing.TB, opts ...vm.Option) *BlockchainStateWrapper {
	mock, err := vm.New(vm.NewContractMap(), opts...)
	require.NoError(t, err)
	return &BlockchainStateWrapper{
		t:        t,
		mock:     mock,
		scenario: &denali.Scenario{Steps: []*denali.Step{}},
	}
}

func (w *BlockchainStateWrapper) Mock() *vm.BlockchainMock { return w.mock }

func (w *BlockchainStateWrapper) ledger() *ledger.Ledger { return w.mock.Ledger() }

// namedAddress builds the address of a denali address expression, so that
// recorded scenarios stay readable.
func (w *BlockchainStateWrapper) namedAddress(expr string) api.Address {
	addr, err := denali.ValueInterpreter{}.Address(denali.Value(expr))
	require.NoError(w.t, err)
	return addr
}

// CreateUserAccount creates a user account holding [balance] MOAX.
func (w *BlockchainStateWrapper) CreateUserAccount(balance *big.Int) api.Address {
	w.userCount++
	addr := w.namedAddress(fmt.Sprintf("address:user%d", w.userCount))
	require.NoError(w.t, w.mock.CreateUserAccount(addr, balance))
	return addr
}

// CreateSCAccount creates a contract account running [code], registered
// under [wasmPath]. A nil [owner] leaves the contract without owner.
func (w *BlockchainStateWrapper) CreateSCAccount(balance *big.Int, owner *api.Address, code *vm.ContractCode, wasmPath string) *ContractObjWrapper {
	w.contractCount++
	addr := w.namedAddress(fmt.Sprintf("sc:contract%d", w.contractCount))
	w.mock.Contracts().Register(wasmPath, code)

	ownerAddr := api.ZeroAddress
	if owner != nil {
		ownerAddr = *owner
	}
	require.NoError(w.t, w.mock.CreateContractAccount(addr, balance, []byte(codePrefix+wasmPath), ownerAddr))
	return &ContractObjWrapper{Address: addr, CodePath: wasmPath}
}

// ExecuteTx runs [f] as a transaction from [caller] to [sc] paying [moax].
func (w *BlockchainStateWrapper) ExecuteTx(caller api.Address, sc *ContractObjWrapper, moax *big.Int, f vm.TxFunc) *vm.TxResult {
	return w.mock.ExecuteTx(&vm.TxInput{
		From:      caller,
		To:        sc.Address,
		MoaxValue: moax,
	}, f)
}

// ExecuteDCTTransfer runs [f] as a transaction paying a single token
// transfer.
func (w *BlockchainStateWrapper) ExecuteDCTTransfer(caller api.Address, sc *ContractObjWrapper, token api.TokenIdentifier, nonce uint64, amount *big.Int, f vm.TxFunc) *vm.TxResult {
	return w.ExecuteDCTMultiTransfer(caller, sc, []vm.TxInputDCT{{
		TokenIdentifier: token,
		Nonce:           nonce,
		Value:           amount,
	}}, f)
}

func (w *BlockchainStateWrapper) ExecuteDCTMultiTransfer(caller api.Address, sc *ContractObjWrapper, transfers []vm.TxInputDCT, f vm.TxFunc) *vm.TxResult {
	return w.mock.ExecuteTx(&vm.TxInput{
		From:      caller,
		To:        sc.Address,
		DCTValues: transfers,
	}, f)
}

// ExecuteQuery runs [f] read only, with the contract as its own caller.
func (w *BlockchainStateWrapper) ExecuteQuery(sc *ContractObjWrapper, f vm.QueryFunc) *vm.TxResult {
	return w.mock.ExecuteQuery(&vm.TxInput{
		From: sc.Address,
		To:   sc.Address,
	}, f)
}

func (w *BlockchainStateWrapper) SetMoaxBalance(addr api.Address, balance *big.Int) {
	require.NoError(w.t, w.ledger().SetBalance(addr, balance))
}

func (w *BlockchainStateWrapper) GetMoaxBalance(addr api.Address) *big.Int {
	balance, err := w.ledger().GetBalance(addr)
	require.NoError(w.t, err)
	return balance
}

func (w *BlockchainStateWrapper) CheckMoaxBalance(addr api.Address, expected *big.Int) {
	w.t.Helper()
	require.Equal(w.t, expected.String(), w.GetMoaxBalance(addr).String(), "MOAX balance of %s", addr)
}

// SetDCTBalance sets the fungible balance of [token].
func (w *BlockchainStateWrapper) SetDCTBalance(addr api.Address, token api.TokenIdentifier, balance *big.Int) {
	require.NoError(w.t, w.ledger().SetDCTBalance(addr, token, 0, balance))
}

func (w *BlockchainStateWrapper) GetDCTBalance(addr api.Address, token api.TokenIdentifier, nonce uint64) *big.Int {
	balance, err := w.ledger().GetDCTBalance(addr, token, nonce)
	require.NoError(w.t, err)
	return balance
}

func (w *BlockchainStateWrapper) CheckDCTBalance(addr api.Address, token api.TokenIdentifier, expected *big.Int) {
	w.t.Helper()
	require.Equal(w.t, expected.String(), w.GetDCTBalance(addr, token, 0).String(), "%s balance of %s", token, addr)
}

// SetNFTBalance sets the balance of one NFT nonce along with its
// attributes.
func (w *BlockchainStateWrapper) SetNFTBalance(addr api.Address, token api.TokenIdentifier, nonce uint64, balance *big.Int, attributes []byte) {
	require.NoError(w.t, w.ledger().PutTokenInstance(addr, token, nonce, &ledger.TokenInstance{
		Amount:     new(big.Int).Set(balance),
		Attributes: attributes,
	}))
}

// CheckNFTBalance checks both the balance and the attributes of an NFT
// nonce.
func (w *BlockchainStateWrapper) CheckNFTBalance(addr api.Address, token api.TokenIdentifier, nonce uint64, expected *big.Int, attributes []byte) {
	w.t.Helper()
	inst, err := w.ledger().GetTokenInstance(addr, token, nonce)
	require.NoError(w.t, err)
	require.Equal(w.t, expected.String(), inst.Amount.String(), "%s-%d balance of %s", token, nonce, addr)
	require.True(w.t, bytes.Equal(attributes, inst.Attributes), "%s-%d attributes of %s: want %x, got %x", token, nonce, addr, attributes, inst.Attributes)
}

func (w *BlockchainStateWrapper) SetDCTLocalRoles(addr api.Address, token api.TokenIdentifier, roles []api.DCTLocalRole) {
	require.NoError(w.t, w.ledger().SetRoles(addr, token, roles))
}

func (w *BlockchainStateWrapper) updateBlockInfo(update func(*ledger.BlockInfo)) {
	require.NoError(w.t, w.mock.UpdateBlockInfo(update))
}

func (w *BlockchainStateWrapper) SetBlockEpoch(epoch uint64) {
	w.updateBlockInfo(func(info *ledger.BlockInfo) { info.Epoch = epoch })
}

func (w *BlockchainStateWrapper) SetBlockNonce(nonce uint64) {
	w.updateBlockInfo(func(info *ledger.BlockInfo) { info.Nonce = nonce })
}

func (w *BlockchainStateWrapper) SetBlockRound(round uint64) {
	w.updateBlockInfo(func(info *ledger.BlockInfo) { info.Round = round })
}

func (w *BlockchainStateWrapper) SetBlockTimestamp(timestamp uint64) {
	w.updateBlockInfo(func(info *ledger.BlockInfo) { info.Timestamp = timestamp })
}

func (w *BlockchainStateWrapper) SetBlockRandomSeed(seed []byte) {
	w.updateBlockInfo(func(info *ledger.BlockInfo) { info.RandomSeed = seed })
}

// RequireUserError fails the test unless [result] is a user error with
// [message].
func RequireUserError(t testing.TB, result *vm.TxResult, message string) {
	t.Helper()
	require.Equal(t, api.StatusUserError, result.Status, result.Message)
	require.Equal(t, message, result.Message)
}
