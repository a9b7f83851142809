// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"encoding/binary"
	"fmt"
	"math/big"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/ledger"
)

const (
	Name = "dharitri-wasm-debug"
)

type newAddressKey struct {
	creator api.Address
	nonce   uint64
}

// BlockchainMock is an in process chain: a ledger, the contracts that can be
// deployed on it and the executor running transactions against both.
//
// It is not safe for concurrent use.
type BlockchainMock struct {
	config     Config
	log        log.Logger
	registerer prometheus.Registerer
	metrics    *metrics

	ledger    *ledger.Ledger
	contracts *ContractMap

	// Addresses handed out to contracts deployed by (creator, creator nonce).
	newAddresses map[newAddressKey]api.Address
	txCount      uint64
	maxDepth     int
}

// New returns an empty chain running the contracts of [contracts].
func New(contracts *ContractMap, opts ...Option) (*BlockchainMock, error) {
	b := &BlockchainMock{
		config:       DefaultConfig,
		log:          log.New("module", Name),
		contracts:    contracts,
		newAddresses: make(map[newAddressKey]api.Address),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.contracts == nil {
		b.contracts = NewContractMap()
	}
	if b.registerer == nil {
		b.registerer = prometheus.NewRegistry()
	}

	var err error
	b.metrics, err = newMetrics(b.config.Namespace, b.registerer)
	if err != nil {
		return nil, fmt.Errorf("couldn't register metrics: %w", err)
	}
	b.ledger, err = ledger.New(memdb.New(), b.registerer)
	if err != nil {
		return nil, fmt.Errorf("couldn't create ledger: %w", err)
	}
	b.log.Debug("blockchain mock initialized", "maxCallDepth", b.config.MaxCallDepth)
	return b, nil
}

// Ledger is the committed world state. Writing it directly is how tests
// arrange accounts between transactions.
func (b *BlockchainMock) Ledger() *ledger.Ledger { return b.ledger }

func (b *BlockchainMock) Contracts() *ContractMap { return b.contracts }

func (b *BlockchainMock) Config() Config { return b.config }

func (b *BlockchainMock) Logger() log.Logger { return b.log }

// SetNewAddress fixes the address of the contract [creator] deploys with
// account nonce [creatorNonce].
func (b *BlockchainMock) SetNewAddress(creator api.Address, creatorNonce uint64, newAddress api.Address) {
	b.newAddresses[newAddressKey{creator: creator, nonce: creatorNonce}] = newAddress
}

// newContractAddress returns the registered address for (creator, nonce), or
// derives one in the smart contract address range.
func (b *BlockchainMock) newContractAddress(creator api.Address, creatorNonce uint64) api.Address {
	if addr, ok := b.newAddresses[newAddressKey{creator: creator, nonce: creatorNonce}]; ok {
		return addr
	}
	buf := make([]byte, api.AddressLen+wrappers.LongLen)
	copy(buf, creator[:])
	binary.BigEndian.PutUint64(buf[api.AddressLen:], creatorNonce)
	hash := hashing.ComputeHash256Array(buf)

	addr := api.Address{}
	copy(addr[api.SCAddressNumLeadingZeros:], hash[:api.AddressLen-api.SCAddressNumLeadingZeros])
	return addr
}

// txHash fills the hash of transactions that do not provide one.
func (b *BlockchainMock) txHash(input *TxInput) ids.ID {
	if input.TxHash != ids.Empty {
		return input.TxHash
	}
	b.txCount++
	p := wrappers.Packer{MaxSize: 1 << 20, Bytes: make([]byte, 0, 128)}
	p.PackFixedBytes(input.From[:])
	p.PackFixedBytes(input.To[:])
	p.PackLong(b.txCount)
	p.PackStr(input.Func)
	p.PackBytes(input.moaxValue().Bytes())
	return hashing.ComputeHash256Array(p.Bytes)
}

// CreateUserAccount is a shortcut for tests and scenarios.
func (b *BlockchainMock) CreateUserAccount(addr api.Address, balance *big.Int) error {
	_, err := b.ledger.CreateUserAccount(addr, balance)
	return err
}

// CreateContractAccount deploys [code] at [addr] without running its
// constructor.
func (b *BlockchainMock) CreateContractAccount(addr api.Address, balance *big.Int, code []byte, owner api.Address) error {
	if _, ok := b.contracts.Get(code); !ok {
		return fmt.Errorf("%w: %s", api.ErrContractNotFound, code)
	}
	_, err := b.ledger.CreateContractAccount(addr, balance, code, owner)
	return err
}

func (b *BlockchainMock) SetBlockInfo(info ledger.BlockInfo) error {
	return b.ledger.SetBlockInfo(info)
}

func (b *BlockchainMock) SetPrevBlockInfo(info ledger.BlockInfo) error {
	return b.ledger.SetPrevBlockInfo(info)
}

// UpdateBlockInfo applies [update] to the current block information.
func (b *BlockchainMock) UpdateBlockInfo(update func(*ledger.BlockInfo)) error {
	info, err := b.ledger.GetBlockInfo()
	if err != nil {
		return err
	}
	update(&info)
	return b.ledger.SetBlockInfo(info)
}
