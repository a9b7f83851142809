// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// AddressLen is the length of every account address.
	AddressLen = 32

	// SCAddressNumLeadingZeros is the number of zero bytes a smart contract
	// address starts with.
	SCAddressNumLeadingZeros = 8
)

var (
	ZeroAddress = Address{}

	errBadAddressLen = errors.New("address must be 32 bytes long")
)

// Address identifies an account, user or smart contract.
type Address [AddressLen]byte

// AddressFromBytes copies [b] into an Address. [b] must be exactly
// [AddressLen] bytes long.
func AddressFromBytes(b []byte) (Address, error) {
	addr := Address{}
	if len(b) != AddressLen {
		return addr, fmt.Errorf("%w: got %d", errBadAddressLen, len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

// IsSmartContract reports whether the address is in the smart contract
// address range.
func (a Address) IsSmartContract() bool {
	for _, b := range a[:SCAddressNumLeadingZeros] {
		if b != 0 {
			return false
		}
	}
	return true
}

func (a Address) IsZero() bool { return a == ZeroAddress }

func (a Address) Bytes() []byte { return a[:] }

func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }
