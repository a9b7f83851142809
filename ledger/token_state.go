// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"math/big"
	"sort"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/utils"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

var _ TokenState = &tokenState{}

// TokenState stores DCT balances, local roles and NFT nonce counters, all
// scoped per account.
type TokenState interface {
	// GetTokenInstance never returns database.ErrNotFound, a missing
	// instance is reported with a zero amount.
	GetTokenInstance(addr api.Address, token api.TokenIdentifier, nonce uint64) (*TokenInstance, error)
	// PutTokenInstance removes the instance when its amount is zero.
	PutTokenInstance(addr api.Address, token api.TokenIdentifier, nonce uint64, inst *TokenInstance) error
	TokensOf(addr api.Address) ([]*TokenBalance, error)

	GetRoles(addr api.Address, token api.TokenIdentifier) ([]api.DCTLocalRole, error)
	SetRoles(addr api.Address, token api.TokenIdentifier, roles []api.DCTLocalRole) error
	RolesOf(addr api.Address) (map[string][]api.DCTLocalRole, error)

	GetLastNonce(addr api.Address, token api.TokenIdentifier) (uint64, error)
	SetLastNonce(addr api.Address, token api.TokenIdentifier, nonce uint64) error
	LastNoncesOf(addr api.Address) (map[string]uint64, error)
}

type tokenState struct {
	tokenDB database.Database
	rolesDB database.Database
	nonceDB database.Database
}

func NewTokenState(tokenDB, rolesDB, nonceDB database.Database) TokenState {
	return &tokenState{
		tokenDB: tokenDB,
		rolesDB: rolesDB,
		nonceDB: nonceDB,
	}
}

func (s *tokenState) GetTokenInstance(addr api.Address, token api.TokenIdentifier, nonce uint64) (*TokenInstance, error) {
	db := prefixdb.New(addr[:], s.tokenDB)
	b, err := db.Get(tokenKey(token, nonce))
	if err == database.ErrNotFound {
		return &TokenInstance{Amount: new(big.Int)}, nil
	}
	if err != nil {
		return nil, err
	}
	return parseTokenRecord(b)
}

func (s *tokenState) PutTokenInstance(addr api.Address, token api.TokenIdentifier, nonce uint64, inst *TokenInstance) error {
	db := prefixdb.New(addr[:], s.tokenDB)
	key := tokenKey(token, nonce)
	if inst.Amount == nil || inst.Amount.Sign() == 0 {
		return db.Delete(key)
	}
	bytes, err := marshalRecord(newTokenRecord(inst))
	if err != nil {
		return err
	}
	return db.Put(key, bytes)
}

// TokensOf returns every non zero token balance of [addr], ordered by token
// identifier then nonce.
func (s *tokenState) TokensOf(addr api.Address) ([]*TokenBalance, error) {
	db := prefixdb.New(addr[:], s.tokenDB)
	it := db.NewIterator()
	defer it.Release()

	balances := []*TokenBalance{}
	for it.Next() {
		token, nonce, err := parseTokenKey(it.Key())
		if err != nil {
			return nil, err
		}
		inst, err := parseTokenRecord(utils.CopyBytes(it.Value()))
		if err != nil {
			return nil, err
		}
		balances = append(balances, &TokenBalance{
			TokenIdentifier: token,
			Nonce:           nonce,
			TokenInstance:   inst,
		})
	}
	return balances, it.Error()
}

func (s *tokenState) GetRoles(addr api.Address, token api.TokenIdentifier) ([]api.DCTLocalRole, error) {
	db := prefixdb.New(addr[:], s.rolesDB)
	b, err := db.Get(token)
	if err == database.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parseRoles(b)
}

func (s *tokenState) SetRoles(addr api.Address, token api.TokenIdentifier, roles []api.DCTLocalRole) error {
	db := prefixdb.New(addr[:], s.rolesDB)
	if len(roles) == 0 {
		return db.Delete(token)
	}
	rec := &rolesRecord{Roles: make([]uint8, len(roles))}
	for i, role := range roles {
		rec.Roles[i] = uint8(role)
	}
	bytes, err := marshalRecord(rec)
	if err != nil {
		return err
	}
	return db.Put(token, bytes)
}

func (s *tokenState) RolesOf(addr api.Address) (map[string][]api.DCTLocalRole, error) {
	db := prefixdb.New(addr[:], s.rolesDB)
	it := db.NewIterator()
	defer it.Release()

	roles := map[string][]api.DCTLocalRole{}
	for it.Next() {
		tokenRoles, err := parseRoles(utils.CopyBytes(it.Value()))
		if err != nil {
			return nil, err
		}
		roles[string(it.Key())] = tokenRoles
	}
	return roles, it.Error()
}

func (s *tokenState) GetLastNonce(addr api.Address, token api.TokenIdentifier) (uint64, error) {
	db := prefixdb.New(addr[:], s.nonceDB)
	b, err := db.Get(token)
	if err == database.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return parseNonce(b)
}

func (s *tokenState) SetLastNonce(addr api.Address, token api.TokenIdentifier, nonce uint64) error {
	db := prefixdb.New(addr[:], s.nonceDB)
	if nonce == 0 {
		return db.Delete(token)
	}
	return db.Put(token, nonceBytes(nonce))
}

func (s *tokenState) LastNoncesOf(addr api.Address) (map[string]uint64, error) {
	db := prefixdb.New(addr[:], s.nonceDB)
	it := db.NewIterator()
	defer it.Release()

	nonces := map[string]uint64{}
	for it.Next() {
		nonce, err := parseNonce(it.Value())
		if err != nil {
			return nil, err
		}
		nonces[string(it.Key())] = nonce
	}
	return nonces, it.Error()
}

func parseTokenRecord(b []byte) (*TokenInstance, error) {
	rec := &tokenRecord{}
	if err := unmarshalRecord(b, rec); err != nil {
		return nil, err
	}
	return rec.instance(), nil
}

func parseRoles(b []byte) ([]api.DCTLocalRole, error) {
	rec := &rolesRecord{}
	if err := unmarshalRecord(b, rec); err != nil {
		return nil, err
	}
	roles := make([]api.DCTLocalRole, len(rec.Roles))
	for i, role := range rec.Roles {
		roles[i] = api.DCTLocalRole(role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles, nil
}
