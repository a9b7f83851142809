// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"math/big"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

var errWrongVersion = errors.New("wrong version")

// Account is a decoded account. Values returned by the ledger are copies:
// mutating them has no effect until they are written back.
type Account struct {
	Address  api.Address
	Nonce    uint64
	Balance  *big.Int
	Code     []byte
	Owner    api.Address
	Username []byte
}

func (a *Account) IsSmartContract() bool { return len(a.Code) != 0 }

type accountRecord struct {
	Nonce    uint64 `serialize:"true"`
	Balance  []byte `serialize:"true"`
	Code     []byte `serialize:"true"`
	Owner    []byte `serialize:"true"`
	Username []byte `serialize:"true"`
}

func newAccountRecord(acc *Account) *accountRecord {
	return &accountRecord{
		Nonce:    acc.Nonce,
		Balance:  api.TopEncodeBigUint(acc.Balance),
		Code:     acc.Code,
		Owner:    acc.Owner[:],
		Username: acc.Username,
	}
}

func (r *accountRecord) account(addr api.Address) *Account {
	acc := &Account{
		Address:  addr,
		Nonce:    r.Nonce,
		Balance:  api.TopDecodeBigUint(r.Balance),
		Code:     r.Code,
		Username: r.Username,
	}
	copy(acc.Owner[:], r.Owner)
	return acc
}

// TokenInstance is the balance and metadata of one (token, nonce) pair held
// by an account. Fungible tokens only use Amount.
type TokenInstance struct {
	Amount     *big.Int
	Attributes []byte
	Creator    api.Address
	Royalties  uint64
	Hash       []byte
	Name       []byte
	URIs       [][]byte
}

// TokenBalance is a TokenInstance together with its key.
type TokenBalance struct {
	TokenIdentifier api.TokenIdentifier
	Nonce           uint64
	*TokenInstance
}

type tokenRecord struct {
	Amount     []byte   `serialize:"true"`
	Attributes []byte   `serialize:"true"`
	Creator    []byte   `serialize:"true"`
	Royalties  uint64   `serialize:"true"`
	Hash       []byte   `serialize:"true"`
	Name       []byte   `serialize:"true"`
	URIs       [][]byte `serialize:"true"`
}

func newTokenRecord(inst *TokenInstance) *tokenRecord {
	return &tokenRecord{
		Amount:     api.TopEncodeBigUint(inst.Amount),
		Attributes: inst.Attributes,
		Creator:    inst.Creator[:],
		Royalties:  inst.Royalties,
		Hash:       inst.Hash,
		Name:       inst.Name,
		URIs:       inst.URIs,
	}
}

func (r *tokenRecord) instance() *TokenInstance {
	inst := &TokenInstance{
		Amount:     api.TopDecodeBigUint(r.Amount),
		Attributes: r.Attributes,
		Royalties:  r.Royalties,
		Hash:       r.Hash,
		Name:       r.Name,
		URIs:       r.URIs,
	}
	copy(inst.Creator[:], r.Creator)
	return inst
}

type rolesRecord struct {
	Roles []uint8 `serialize:"true"`
}

// BlockInfo describes the block a transaction is executed in.
type BlockInfo struct {
	Epoch      uint64
	Nonce      uint64
	Round      uint64
	Timestamp  uint64
	RandomSeed []byte
}

type blockInfoRecord struct {
	Epoch      uint64 `serialize:"true"`
	Nonce      uint64 `serialize:"true"`
	Round      uint64 `serialize:"true"`
	Timestamp  uint64 `serialize:"true"`
	RandomSeed []byte `serialize:"true"`
}
