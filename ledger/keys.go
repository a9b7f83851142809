// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

var ErrInvalidTokenKey = errors.New("invalid token key format")

// tokenKey lays out a token balance key as the identifier followed by the
// big endian nonce.
func tokenKey(token api.TokenIdentifier, nonce uint64) []byte {
	raw := make([]byte, len(token)+wrappers.LongLen)
	copy(raw, token)
	binary.BigEndian.PutUint64(raw[len(token):], nonce)
	return raw
}

func parseTokenKey(raw []byte) (api.TokenIdentifier, uint64, error) {
	if len(raw) <= wrappers.LongLen {
		return nil, 0, ErrInvalidTokenKey
	}
	split := len(raw) - wrappers.LongLen
	token := make(api.TokenIdentifier, split)
	copy(token, raw[:split])
	return token, binary.BigEndian.Uint64(raw[split:]), nil
}

func nonceBytes(nonce uint64) []byte {
	raw := make([]byte, wrappers.LongLen)
	binary.BigEndian.PutUint64(raw, nonce)
	return raw
}

func parseNonce(raw []byte) (uint64, error) {
	if len(raw) != wrappers.LongLen {
		return 0, ErrInvalidTokenKey
	}
	return binary.BigEndian.Uint64(raw), nil
}
