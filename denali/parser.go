// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package denali

import (
	"math/big"
	"strings"

	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

// exprParser interprets a series of expressions and keeps the first error.
type exprParser struct {
	vi   ValueInterpreter
	errs wrappers.Errs
}

func (p *exprParser) bytes(v Value) []byte {
	b, err := p.vi.Interpret(string(v))
	p.errs.Add(err)
	return b
}

func (p *exprParser) bigUint(v Value) *big.Int {
	n, err := p.vi.BigUint(v)
	p.errs.Add(err)
	if n == nil {
		return new(big.Int)
	}
	return n
}

func (p *exprParser) u64(v Value) uint64 {
	n, err := p.vi.U64(v)
	p.errs.Add(err)
	return n
}

func (p *exprParser) address(v Value) api.Address {
	addr, err := p.vi.Address(v)
	p.errs.Add(err)
	return addr
}

// code keeps file references as they are: contracts are resolved by name
// through the contract map, never loaded from disk.
func (p *exprParser) code(v Value) []byte {
	if strings.HasPrefix(string(v), filePrefix) {
		return []byte(v)
	}
	return p.bytes(v)
}

func (p *exprParser) err() error { return p.errs.Err }
