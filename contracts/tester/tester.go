// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tester is a contract exercising every part of the host API:
// payments, token roles, NFTs, storage, block information and nested
// calls.
package tester

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

// CodePath is the code reference deployed testers are registered under.
const CodePath = "output/rust-testing-framework-tester.wasm"

var (
	totalValueKey     = []byte("totalValue")
	valuePerCallerKey = []byte("valuePerCaller")

	errBadAttributes = errors.New("invalid NFT attributes length")
)

// NftDummyAttributes are the attributes the contract puts on the NFTs it
// creates.
type NftDummyAttributes struct {
	CreationEpoch uint64
	CoolFactor    uint8
}

func (a NftDummyAttributes) Encode() []byte {
	b := make([]byte, wrappers.LongLen+wrappers.ByteLen)
	binary.BigEndian.PutUint64(b, a.CreationEpoch)
	b[wrappers.LongLen] = a.CoolFactor
	return b
}

func DecodeNftDummyAttributes(b []byte) (NftDummyAttributes, error) {
	if len(b) != wrappers.LongLen+wrappers.ByteLen {
		return NftDummyAttributes{}, errBadAttributes
	}
	return NftDummyAttributes{
		CreationEpoch: binary.BigEndian.Uint64(b),
		CoolFactor:    b[wrappers.LongLen],
	}, nil
}

type Contract struct {
	api api.API
}

func New(a api.API) *Contract { return &Contract{api: a} }

func (c *Contract) Sum(first, second *big.Int) *big.Int {
	return new(big.Int).Add(first, second)
}

// SumSCResult returns a user error, without aborting the call, if either
// operand is zero.
func (c *Contract) SumSCResult(first, second *big.Int) (*big.Int, error) {
	if first.Sign() == 0 || second.Sign() == 0 {
		return nil, api.UserError("Non-zero required")
	}
	return c.Sum(first, second), nil
}

func (c *Contract) ReceiveMoax() *big.Int {
	return c.api.MoaxValue()
}

// ReceiveMoaxHalf sends half of the payment back to the caller.
func (c *Contract) ReceiveMoaxHalf() error {
	half := new(big.Int).Rsh(c.api.MoaxValue(), 1)
	return c.api.DirectMoax(c.api.GetCaller(), half, nil)
}

func (c *Contract) ReceiveDCT() (api.TokenIdentifier, *big.Int, error) {
	token, err := c.api.Token()
	if err != nil {
		return nil, nil, err
	}
	value, err := c.api.DCTValue()
	if err != nil {
		return nil, nil, err
	}
	return token, value, nil
}

func (c *Contract) ReceiveMultiDCT() []api.DCTTokenPayment {
	return c.api.AllDCTTransfers()
}

func (c *Contract) GetDCTBalance(token api.TokenIdentifier, nonce uint64) *big.Int {
	return c.api.GetSCBalance(token, nonce)
}

func (c *Contract) SendNFT(to api.Address, token api.TokenIdentifier, nonce uint64, amount *big.Int) error {
	return c.api.DirectDCT(to, token, nonce, amount, nil)
}

// MintDCT mints fungible units for nonce zero and adds quantity to an
// existing NFT otherwise.
func (c *Contract) MintDCT(token api.TokenIdentifier, nonce uint64, amount *big.Int) error {
	if nonce == 0 {
		return c.api.DCTLocalMint(token, amount)
	}
	return c.api.DCTNFTAddQuantity(token, nonce, amount)
}

func (c *Contract) BurnDCT(token api.TokenIdentifier, nonce uint64, amount *big.Int) error {
	if nonce == 0 {
		return c.api.DCTLocalBurn(token, amount)
	}
	return c.api.DCTNFTBurn(token, nonce, amount)
}

func (c *Contract) CreateNFT(token api.TokenIdentifier, amount *big.Int, attributes NftDummyAttributes) (uint64, error) {
	return c.api.DCTNFTCreate(token, amount, api.NFTProperties{
		Name:       []byte("NFT"),
		Attributes: attributes.Encode(),
		URIs:       [][]byte{[]byte("www.cool_nft.com/my_nft.jpg")},
	})
}

func (c *Contract) GetMoaxBalance() *big.Int {
	return c.api.GetSCBalance(api.MoaxToken(), 0)
}

func (c *Contract) Init() error {
	return c.SetTotalValue(big.NewInt(1))
}

// Add increases both the total and the caller's share by [value].
func (c *Contract) Add(value *big.Int) error {
	caller := c.api.GetCaller()
	if err := c.SetTotalValue(new(big.Int).Add(c.TotalValue(), value)); err != nil {
		return err
	}
	return c.SetValuePerCaller(caller, new(big.Int).Add(c.ValuePerCaller(caller), value))
}

func (c *Contract) TotalValue() *big.Int {
	return api.TopDecodeBigUint(c.api.StorageLoad(totalValueKey))
}

func (c *Contract) SetTotalValue(v *big.Int) error {
	return c.api.StorageStore(totalValueKey, api.TopEncodeBigUint(v))
}

func (c *Contract) ValuePerCaller(addr api.Address) *big.Int {
	return api.TopDecodeBigUint(c.api.StorageLoad(valuePerCallerStorageKey(addr)))
}

func (c *Contract) SetValuePerCaller(addr api.Address, v *big.Int) error {
	return c.api.StorageStore(valuePerCallerStorageKey(addr), api.TopEncodeBigUint(v))
}

func valuePerCallerStorageKey(addr api.Address) []byte {
	return append(append([]byte{}, valuePerCallerKey...), addr[:]...)
}

func (c *Contract) GetBlockEpoch() uint64     { return c.api.GetBlockEpoch() }
func (c *Contract) GetBlockNonce() uint64     { return c.api.GetBlockNonce() }
func (c *Contract) GetBlockTimestamp() uint64 { return c.api.GetBlockTimestamp() }

// CallOtherContractExecuteOnDest reads the total value of another tester
// through a nested call.
func (c *Contract) CallOtherContractExecuteOnDest(other api.Address) (*big.Int, error) {
	out, err := c.api.ExecuteOnDestContext(other, nil, nil, "getTotalValue", nil)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, c.api.SignalError(api.WrongNumberOfArguments)
	}
	return api.TopDecodeBigUint(out[0]), nil
}

func (c *Contract) ExecuteOnDestAddValue(other api.Address, value *big.Int) error {
	_, err := c.api.ExecuteOnDestContext(other, nil, nil, "addValue", [][]byte{api.TopEncodeBigUint(value)})
	return err
}

func (c *Contract) GetVal() *big.Int { return c.TotalValue() }
