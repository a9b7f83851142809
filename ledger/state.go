// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/cache/metercacher"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// These are prefixes for db keys.
	// It's important to set different prefixes for each separate database objects.
	singletonStatePrefix = []byte("singleton")
	accountStatePrefix   = []byte("account")
	storageStatePrefix   = []byte("storage")
	tokenStatePrefix     = []byte("token")
	rolesStatePrefix     = []byte("roles")
	nonceStatePrefix     = []byte("nftnonce")

	errRootLedger   = errors.New("the root ledger cannot be committed or reverted")
	errLedgerClosed = errors.New("ledger snapshot already committed or reverted")
)

// Ledger is the world state: accounts, token balances, storage and block
// information.
//
// The root ledger writes straight to its database. Snapshot returns a child
// ledger whose writes are buffered in a versiondb overlay until Commit merges
// them into the parent, or Revert drops them. Snapshots stack: a child of a
// child commits into its parent snapshot, never directly into the root.
type Ledger struct {
	AccountState
	TokenState
	StorageState
	BlockInfoState

	db     database.Database
	baseDB *versiondb.Database
	parent *Ledger
	depth  int
	closed bool
}

// New returns a root ledger over [db]. When [registerer] is not nil the
// account cache reports its hit and miss metrics to it.
func New(db database.Database, registerer prometheus.Registerer) (*Ledger, error) {
	var accCache cache.Cacher = &cache.LRU{Size: accountCacheSize}
	if registerer != nil {
		var err error
		accCache, err = metercacher.New("account_cache", registerer, accCache)
		if err != nil {
			return nil, err
		}
	}
	return newLedger(db, accCache), nil
}

func newLedger(db database.Database, accCache cache.Cacher) *Ledger {
	return &Ledger{
		AccountState:   NewAccountState(prefixdb.New(accountStatePrefix, db), accCache),
		TokenState:     NewTokenState(prefixdb.New(tokenStatePrefix, db), prefixdb.New(rolesStatePrefix, db), prefixdb.New(nonceStatePrefix, db)),
		StorageState:   NewStorageState(prefixdb.New(storageStatePrefix, db)),
		BlockInfoState: NewBlockInfoState(prefixdb.New(singletonStatePrefix, db)),
		db:             db,
	}
}

// Snapshot opens a child ledger on top of [l]. [l] must not be written while
// the child is open.
func (l *Ledger) Snapshot() *Ledger {
	baseDB := versiondb.New(l.db)
	child := newLedger(baseDB, nil)
	child.baseDB = baseDB
	child.parent = l
	child.depth = l.depth + 1
	return child
}

// Commit merges the pending operations into the parent ledger.
func (l *Ledger) Commit() error {
	if l.parent == nil {
		return errRootLedger
	}
	if l.closed {
		return errLedgerClosed
	}
	l.closed = true
	if err := l.baseDB.Commit(); err != nil {
		return err
	}
	l.parent.ClearCache()
	return nil
}

// Revert drops the pending operations. Reverting twice is a no-op.
func (l *Ledger) Revert() {
	if l.parent == nil || l.closed {
		return
	}
	l.closed = true
	l.baseDB.Abort()
}

// Depth is the number of snapshots between [l] and the root ledger.
func (l *Ledger) Depth() int { return l.depth }

func (l *Ledger) Parent() *Ledger { return l.parent }
