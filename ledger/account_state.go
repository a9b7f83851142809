// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

const (
	accountCacheSize = 2048
)

var _ AccountState = &accountState{}

// AccountState stores account records keyed by address.
type AccountState interface {
	// GetAccount returns database.ErrNotFound if the account does not exist.
	GetAccount(addr api.Address) (*Account, error)
	HasAccount(addr api.Address) (bool, error)
	PutAccount(acc *Account) error
	Accounts() ([]*Account, error)

	ClearCache()
}

type accountState struct {
	accCache  cache.Cacher
	accountDB database.Database
}

func NewAccountState(db database.Database, accCache cache.Cacher) AccountState {
	if accCache == nil {
		accCache = &cache.LRU{Size: accountCacheSize}
	}
	return &accountState{
		accCache:  accCache,
		accountDB: db,
	}
}

func (s *accountState) GetAccount(addr api.Address) (*Account, error) {
	if recIntf, ok := s.accCache.Get(addr); ok {
		if recIntf == nil {
			return nil, database.ErrNotFound
		}
		return recIntf.(*accountRecord).account(addr), nil
	}

	recBytes, err := s.accountDB.Get(addr[:])
	if err == database.ErrNotFound {
		s.accCache.Put(addr, nil)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	rec, err := parseAccountRecord(recBytes)
	if err != nil {
		return nil, err
	}
	s.accCache.Put(addr, rec)
	return rec.account(addr), nil
}

func (s *accountState) HasAccount(addr api.Address) (bool, error) {
	_, err := s.GetAccount(addr)
	switch err {
	case nil:
		return true, nil
	case database.ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (s *accountState) PutAccount(acc *Account) error {
	rec := newAccountRecord(acc)
	bytes, err := marshalRecord(rec)
	if err != nil {
		return err
	}

	s.accCache.Put(acc.Address, rec)
	return s.accountDB.Put(acc.Address[:], bytes)
}

// Accounts returns every account sorted by address.
func (s *accountState) Accounts() ([]*Account, error) {
	it := s.accountDB.NewIterator()
	defer it.Release()

	accounts := []*Account{}
	for it.Next() {
		addr, err := api.AddressFromBytes(it.Key())
		if err != nil {
			return nil, err
		}
		rec, err := parseAccountRecord(utils.CopyBytes(it.Value()))
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, rec.account(addr))
	}
	return accounts, it.Error()
}

func (s *accountState) ClearCache() {
	s.accCache.Flush()
}

func parseAccountRecord(b []byte) (*accountRecord, error) {
	rec := &accountRecord{}
	if err := unmarshalRecord(b, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
