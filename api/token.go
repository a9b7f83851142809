// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"fmt"
	"math/big"
)

// MoaxTokenIdentifier designates the native currency wherever a token
// identifier is expected.
const MoaxTokenIdentifier = "MOAX"

// TokenIdentifier is the ticker based identifier of a DCT token, or
// [MoaxTokenIdentifier].
type TokenIdentifier []byte

func MoaxToken() TokenIdentifier { return TokenIdentifier(MoaxTokenIdentifier) }

// IsMoax reports whether the identifier refers to the native currency. The
// empty identifier is treated as MOAX.
func (t TokenIdentifier) IsMoax() bool {
	return len(t) == 0 || string(t) == MoaxTokenIdentifier
}

// IsValidDCTIdentifier checks the TICKER-abcdef shape: an upper case
// alphanumeric ticker of 3 to 10 chars, a dash and 6 lower case hex chars.
func (t TokenIdentifier) IsValidDCTIdentifier() bool {
	const randomLen = 6
	if len(t) < 3+1+randomLen || len(t) > 10+1+randomLen {
		return false
	}
	dash := len(t) - randomLen - 1
	if t[dash] != '-' {
		return false
	}
	for _, c := range t[:dash] {
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	for _, c := range t[dash+1:] {
		if !(c >= 'a' && c <= 'f' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func (t TokenIdentifier) String() string {
	if len(t) == 0 {
		return MoaxTokenIdentifier
	}
	return string(t)
}

// TokenType is derived from the nonce of a transfer.
type TokenType uint8

const (
	Fungible TokenType = iota
	NonFungible
	SemiFungible
	Meta
	Invalid
)

func (t TokenType) String() string {
	switch t {
	case Fungible:
		return "Fungible"
	case NonFungible:
		return "NonFungible"
	case SemiFungible:
		return "SemiFungible"
	case Meta:
		return "Meta"
	default:
		return "Invalid"
	}
}

// TokenTypeFromNonce follows the host convention: nonce zero is fungible,
// anything else is reported as non fungible.
func TokenTypeFromNonce(nonce uint64) TokenType {
	if nonce == 0 {
		return Fungible
	}
	return NonFungible
}

// DCTTokenPayment is one element of a (multi) token transfer.
type DCTTokenPayment struct {
	TokenIdentifier TokenIdentifier
	Nonce           uint64
	Amount          *big.Int
}

func (p DCTTokenPayment) TokenType() TokenType { return TokenTypeFromNonce(p.Nonce) }

// DCTLocalRole is a per account, per token permission.
type DCTLocalRole uint8

const (
	RoleNone DCTLocalRole = iota
	RoleMint
	RoleBurn
	RoleNftCreate
	RoleNftAddQuantity
	RoleNftBurn
)

var roleNames = map[DCTLocalRole]string{
	RoleMint:           "DCTRoleLocalMint",
	RoleBurn:           "DCTRoleLocalBurn",
	RoleNftCreate:      "DCTRoleNFTCreate",
	RoleNftAddQuantity: "DCTRoleNFTAddQuantity",
	RoleNftBurn:        "DCTRoleNFTBurn",
}

// Name returns the protocol name of the role, as used in scenario files.
func (r DCTLocalRole) Name() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return ""
}

func (r DCTLocalRole) String() string { return r.Name() }

// ParseRole is the inverse of Name.
func ParseRole(name string) (DCTLocalRole, error) {
	for role, roleName := range roleNames {
		if roleName == name {
			return role, nil
		}
	}
	return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// DCTTokenData is the full view of one token instance held by an account.
type DCTTokenData struct {
	TokenType  TokenType
	Amount     *big.Int
	Frozen     bool
	Hash       []byte
	Name       []byte
	Attributes []byte
	Creator    Address
	Royalties  uint64
	URIs       [][]byte
}

// NFTProperties are the caller supplied fields of a newly created NFT.
type NFTProperties struct {
	Name       []byte
	Royalties  uint64
	Hash       []byte
	Attributes []byte
	URIs       [][]byte
}
