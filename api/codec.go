// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/ava-labs/avalanchego/utils/wrappers"
)

var errValueTooLong = errors.New("value does not fit into 64 bits")

// Top level encoding: numbers are big endian with leading zeroes stripped,
// zero is the empty slice.

func TopEncodeBigUint(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return []byte{}
	}
	return v.Bytes()
}

func TopDecodeBigUint(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

func TopEncodeU64(v uint64) []byte {
	buf := make([]byte, wrappers.LongLen)
	binary.BigEndian.PutUint64(buf, v)
	i := 0
	for i < len(buf) && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

func TopDecodeU64(b []byte) (uint64, error) {
	if len(b) > wrappers.LongLen {
		return 0, errValueTooLong
	}
	buf := make([]byte, wrappers.LongLen)
	copy(buf[wrappers.LongLen-len(b):], b)
	return binary.BigEndian.Uint64(buf), nil
}

func TopEncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{}
}

// NestedEncodeBytes prefixes [b] with its 4 byte big endian length.
func NestedEncodeBytes(b []byte) []byte {
	out := make([]byte, wrappers.IntLen+len(b))
	binary.BigEndian.PutUint32(out, uint32(len(b)))
	copy(out[wrappers.IntLen:], b)
	return out
}

func NestedEncodeBigUint(v *big.Int) []byte {
	return NestedEncodeBytes(TopEncodeBigUint(v))
}
