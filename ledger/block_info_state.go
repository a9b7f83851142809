// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"github.com/ava-labs/avalanchego/database"
)

const (
	CurrentBlockKey byte = iota
	PreviousBlockKey
)

var (
	currentBlockKey                = []byte{CurrentBlockKey}
	previousBlockKey               = []byte{PreviousBlockKey}
	_                BlockInfoState = (*blockInfoState)(nil)
)

// BlockInfoState is a thin wrapper around a database to provide
// serialization, and de-serialization of the current and previous block
// information.
type BlockInfoState interface {
	GetBlockInfo() (BlockInfo, error)
	SetBlockInfo(info BlockInfo) error
	GetPrevBlockInfo() (BlockInfo, error)
	SetPrevBlockInfo(info BlockInfo) error
}

type blockInfoState struct {
	singletonDB database.Database
}

func NewBlockInfoState(db database.Database) BlockInfoState {
	return &blockInfoState{
		singletonDB: db,
	}
}

func (s *blockInfoState) GetBlockInfo() (BlockInfo, error) {
	return s.get(currentBlockKey)
}

func (s *blockInfoState) SetBlockInfo(info BlockInfo) error {
	return s.put(currentBlockKey, info)
}

func (s *blockInfoState) GetPrevBlockInfo() (BlockInfo, error) {
	return s.get(previousBlockKey)
}

func (s *blockInfoState) SetPrevBlockInfo(info BlockInfo) error {
	return s.put(previousBlockKey, info)
}

func (s *blockInfoState) get(key []byte) (BlockInfo, error) {
	b, err := s.singletonDB.Get(key)
	if err == database.ErrNotFound {
		return BlockInfo{}, nil
	}
	if err != nil {
		return BlockInfo{}, err
	}
	rec := blockInfoRecord{}
	if err := unmarshalRecord(b, &rec); err != nil {
		return BlockInfo{}, err
	}
	return BlockInfo{
		Epoch:      rec.Epoch,
		Nonce:      rec.Nonce,
		Round:      rec.Round,
		Timestamp:  rec.Timestamp,
		RandomSeed: rec.RandomSeed,
	}, nil
}

func (s *blockInfoState) put(key []byte, info BlockInfo) error {
	rec := blockInfoRecord{
		Epoch:      info.Epoch,
		Nonce:      info.Nonce,
		Round:      info.Round,
		Timestamp:  info.Timestamp,
		RandomSeed: info.RandomSeed,
	}
	b, err := marshalRecord(&rec)
	if err != nil {
		return err
	}
	return s.singletonDB.Put(key, b)
}
