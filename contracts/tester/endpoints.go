// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tester

import (
	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

func encodeU64(v uint64) [][]byte { return [][]byte{api.TopEncodeU64(v)} }

// Code is the endpoint table of the tester.
func Code() *vm.ContractCode {
	return vm.NewContractCode("rust-testing-framework-tester").
		Register("init", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			if _, err := api.NewArgs(raw, 0); err != nil {
				return nil, err
			}
			return nil, New(ctx).Init()
		}).
		Register("sum", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 2)
			if err != nil {
				return nil, err
			}
			sum := New(ctx).Sum(args.BigUint(), args.BigUint())
			return [][]byte{api.TopEncodeBigUint(sum)}, nil
		}).
		Register("sumScResult", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 2)
			if err != nil {
				return nil, err
			}
			sum, err := New(ctx).SumSCResult(args.BigUint(), args.BigUint())
			if err != nil {
				return nil, err
			}
			return [][]byte{api.TopEncodeBigUint(sum)}, nil
		}).
		Register("receiveMoax", vm.PayableMoax, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			return [][]byte{api.TopEncodeBigUint(New(ctx).ReceiveMoax())}, nil
		}).
		Register("receiveMoaxHalf", vm.PayableMoax, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			return nil, New(ctx).ReceiveMoaxHalf()
		}).
		Register("receiveDct", vm.PayableAny, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			token, value, err := New(ctx).ReceiveDCT()
			if err != nil {
				return nil, err
			}
			return [][]byte{token, api.TopEncodeBigUint(value)}, nil
		}).
		Register("receiveMultiDct", vm.PayableAny, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			payments := New(ctx).ReceiveMultiDCT()
			out := make([][]byte, 0, 3*len(payments))
			for _, p := range payments {
				out = append(out, p.TokenIdentifier, api.TopEncodeU64(p.Nonce), api.TopEncodeBigUint(p.Amount))
			}
			return out, nil
		}).
		Register("getDctBalance", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 2)
			if err != nil {
				return nil, err
			}
			token, nonce := args.Token(), args.U64("nonce")
			if err := args.Err(); err != nil {
				return nil, err
			}
			return [][]byte{api.TopEncodeBigUint(New(ctx).GetDCTBalance(token, nonce))}, nil
		}).
		Register("sendNft", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 4)
			if err != nil {
				return nil, err
			}
			to, token, nonce, amount := args.Address("to"), args.Token(), args.U64("nonce"), args.BigUint()
			if err := args.Err(); err != nil {
				return nil, err
			}
			return nil, New(ctx).SendNFT(to, token, nonce, amount)
		}).
		Register("mintDct", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 3)
			if err != nil {
				return nil, err
			}
			token, nonce, amount := args.Token(), args.U64("nonce"), args.BigUint()
			if err := args.Err(); err != nil {
				return nil, err
			}
			return nil, New(ctx).MintDCT(token, nonce, amount)
		}).
		Register("burnDct", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 3)
			if err != nil {
				return nil, err
			}
			token, nonce, amount := args.Token(), args.U64("nonce"), args.BigUint()
			if err := args.Err(); err != nil {
				return nil, err
			}
			return nil, New(ctx).BurnDCT(token, nonce, amount)
		}).
		Register("createNft", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 3)
			if err != nil {
				return nil, err
			}
			token, amount := args.Token(), args.BigUint()
			attributes, err := DecodeNftDummyAttributes(args.Bytes())
			if err != nil {
				return nil, api.UserError(api.ArgumentDecodeFailure)
			}
			nonce, err := New(ctx).CreateNFT(token, amount, attributes)
			if err != nil {
				return nil, err
			}
			return encodeU64(nonce), nil
		}).
		Register("getMoaxBalance", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			return [][]byte{api.TopEncodeBigUint(New(ctx).GetMoaxBalance())}, nil
		}).
		Register("addValue", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 1)
			if err != nil {
				return nil, err
			}
			return nil, New(ctx).Add(args.BigUint())
		}).
		Register("getTotalValue", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			return [][]byte{api.TopEncodeBigUint(New(ctx).TotalValue())}, nil
		}).
		Register("getValuePerCaller", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 1)
			if err != nil {
				return nil, err
			}
			addr := args.Address("caller")
			if err := args.Err(); err != nil {
				return nil, err
			}
			return [][]byte{api.TopEncodeBigUint(New(ctx).ValuePerCaller(addr))}, nil
		}).
		Register("getBlockEpoch", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			return encodeU64(New(ctx).GetBlockEpoch()), nil
		}).
		Register("getBlockNonce", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			return encodeU64(New(ctx).GetBlockNonce()), nil
		}).
		Register("getBlockTimestamp", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			return encodeU64(New(ctx).GetBlockTimestamp()), nil
		}).
		Register("callOtherContractExecuteOnDest", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 1)
			if err != nil {
				return nil, err
			}
			other := args.Address("other")
			if err := args.Err(); err != nil {
				return nil, err
			}
			value, err := New(ctx).CallOtherContractExecuteOnDest(other)
			if err != nil {
				return nil, err
			}
			return [][]byte{api.TopEncodeBigUint(value)}, nil
		}).
		Register("executeOnDestAddValue", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			args, err := api.NewArgs(raw, 2)
			if err != nil {
				return nil, err
			}
			other, value := args.Address("other"), args.BigUint()
			if err := args.Err(); err != nil {
				return nil, err
			}
			return nil, New(ctx).ExecuteOnDestAddValue(other, value)
		}).
		Register("getVal", vm.NotPayable, func(ctx api.API, raw [][]byte) ([][]byte, error) {
			return [][]byte{api.TopEncodeBigUint(New(ctx).GetVal())}, nil
		})
}
