// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"fmt"
	"math/big"
)

// Args decodes the raw arguments of an endpoint in order. The first decoding
// error is kept and reported by Err; later calls return zero values.
type Args struct {
	raw [][]byte
	pos int
	err error
}

// NewArgs fails with a user error unless exactly [expected] arguments were
// passed.
func NewArgs(raw [][]byte, expected int) (*Args, error) {
	if len(raw) != expected {
		return nil, UserError(WrongNumberOfArguments)
	}
	return &Args{raw: raw}, nil
}

func (a *Args) next() []byte {
	if a.err != nil || a.pos >= len(a.raw) {
		return nil
	}
	arg := a.raw[a.pos]
	a.pos++
	return arg
}

func (a *Args) fail(name string, err error) {
	if a.err == nil {
		a.err = UserError(fmt.Sprintf("%s (%s): %s", ArgumentDecodeFailure, name, err))
	}
}

func (a *Args) Bytes() []byte { return a.next() }

func (a *Args) BigUint() *big.Int { return TopDecodeBigUint(a.next()) }

func (a *Args) U64(name string) uint64 {
	v, err := TopDecodeU64(a.next())
	if err != nil {
		a.fail(name, err)
	}
	return v
}

func (a *Args) Address(name string) Address {
	addr, err := AddressFromBytes(a.next())
	if err != nil {
		a.fail(name, err)
	}
	return addr
}

func (a *Args) Token() TokenIdentifier { return TokenIdentifier(a.next()) }

func (a *Args) Err() error { return a.err }
