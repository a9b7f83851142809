// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/utils"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

var _ StorageState = &storageState{}

// StorageState is the raw key value storage of every account. A missing key
// reads as the empty value and writing the empty value removes the key.
type StorageState interface {
	GetStorage(addr api.Address, key []byte) ([]byte, error)
	SetStorage(addr api.Address, key, value []byte) error
	StorageOf(addr api.Address) (map[string][]byte, error)
}

type storageState struct {
	storageDB database.Database
}

func NewStorageState(db database.Database) StorageState {
	return &storageState{storageDB: db}
}

func (s *storageState) GetStorage(addr api.Address, key []byte) ([]byte, error) {
	db := prefixdb.New(addr[:], s.storageDB)
	value, err := db.Get(key)
	if err == database.ErrNotFound {
		return []byte{}, nil
	}
	return value, err
}

func (s *storageState) SetStorage(addr api.Address, key, value []byte) error {
	db := prefixdb.New(addr[:], s.storageDB)
	if len(value) == 0 {
		return db.Delete(key)
	}
	return db.Put(key, value)
}

func (s *storageState) StorageOf(addr api.Address) (map[string][]byte, error) {
	db := prefixdb.New(addr[:], s.storageDB)
	it := db.NewIterator()
	defer it.Release()

	storage := map[string][]byte{}
	for it.Next() {
		storage[string(it.Key())] = utils.CopyBytes(it.Value())
	}
	return storage, it.Error()
}
