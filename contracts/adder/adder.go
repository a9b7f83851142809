// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package adder is the smallest useful contract: it keeps a running sum.
package adder

import (
	"math/big"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

// CodePath is the code reference deployed adders are registered under.
const CodePath = "output/adder.wasm"

var sumKey = []byte("sum")

type Adder struct {
	api api.API
}

func New(a api.API) *Adder { return &Adder{api: a} }

func (c *Adder) Init(initial *big.Int) error {
	return c.api.StorageStore(sumKey, api.TopEncodeBigUint(initial))
}

// Add adds [value] to the stored sum.
func (c *Adder) Add(value *big.Int) error {
	sum := new(big.Int).Add(c.Sum(), value)
	return c.api.StorageStore(sumKey, api.TopEncodeBigUint(sum))
}

func (c *Adder) Sum() *big.Int {
	return api.TopDecodeBigUint(c.api.StorageLoad(sumKey))
}

// Code is the endpoint table of the adder.
func Code() *vm.ContractCode {
	return vm.NewContractCode("adder").
		Register("init", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 1)
			if err != nil {
				return nil, err
			}
			return nil, New(ctx).Init(args.BigUint())
		}).
		Register("add", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 1)
			if err != nil {
				return nil, err
			}
			return nil, New(ctx).Add(args.BigUint())
		}).
		Register("getSum", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			if _, err := api.NewArgs(raw, 0); err != nil {
				return nil, err
			}
			return [][]byte{api.TopEncodeBigUint(New(ctx).Sum())}, nil
		})
}
