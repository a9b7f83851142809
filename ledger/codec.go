// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
)

// recordVersion tags every record the ledger writes.
const recordVersion uint16 = 0

var recordCodec = newRecordCodec()

func newRecordCodec() codec.Manager {
	manager := codec.NewDefaultManager()
	if err := manager.RegisterCodec(recordVersion, linearcodec.NewDefault()); err != nil {
		panic(err)
	}
	return manager
}

func marshalRecord(rec interface{}) ([]byte, error) {
	return recordCodec.Marshal(recordVersion, rec)
}

// unmarshalRecord decodes [b] into [rec], rejecting records written by any
// other codec version.
func unmarshalRecord(b []byte, rec interface{}) error {
	version, err := recordCodec.Unmarshal(b, rec)
	if err != nil {
		return err
	}
	if version != recordVersion {
		return fmt.Errorf("%w: %d", errWrongVersion, version)
	}
	return nil
}
