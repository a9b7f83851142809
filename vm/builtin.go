// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/dharitri/dharitri-wasm-debug/api"
)

// Built-in functions carrying token transfers in their arguments.
const (
	BuiltinDCTTransfer         = "DCTTransfer"
	BuiltinDCTNFTTransfer      = "DCTNFTTransfer"
	BuiltinMultiDCTNFTTransfer = "MultiDCTNFTTransfer"
)

// decodeBuiltinCall rewrites a built-in transfer call into a plain call
// carrying the transfers:
//
//	DCTTransfer@token@amount[@func@args...]                 sent to the receiver
//	DCTNFTTransfer@token@nonce@amount@dest[@func@args...]   sent to the sender itself
//	MultiDCTNFTTransfer@dest@n@(token@nonce@amount)*n[@func@args...]
//
// Other inputs are returned unchanged.
func decodeBuiltinCall(input *TxInput) (*TxInput, error) {
	switch input.Func {
	case BuiltinDCTTransfer, BuiltinDCTNFTTransfer, BuiltinMultiDCTNFTTransfer:
	default:
		return input, nil
	}
	if input.moaxValue().Sign() != 0 || len(input.DCTValues) != 0 {
		return nil, errBuiltinArgs
	}

	decoded := *input
	args := input.Args
	switch input.Func {
	case BuiltinDCTTransfer:
		if len(args) < 2 {
			return nil, errBuiltinArgs
		}
		decoded.DCTValues = []TxInputDCT{{
			TokenIdentifier: api.TokenIdentifier(args[0]),
			Value:           api.TopDecodeBigUint(args[1]),
		}}
		args = args[2:]

	case BuiltinDCTNFTTransfer:
		if len(args) < 4 {
			return nil, errBuiltinArgs
		}
		nonce, err := api.TopDecodeU64(args[1])
		if err != nil {
			return nil, errBuiltinArgs
		}
		dest, err := api.AddressFromBytes(args[3])
		if err != nil {
			return nil, errBuiltinArgs
		}
		decoded.To = dest
		decoded.DCTValues = []TxInputDCT{{
			TokenIdentifier: api.TokenIdentifier(args[0]),
			Nonce:           nonce,
			Value:           api.TopDecodeBigUint(args[2]),
		}}
		args = args[4:]

	case BuiltinMultiDCTNFTTransfer:
		if len(args) < 2 {
			return nil, errBuiltinArgs
		}
		dest, err := api.AddressFromBytes(args[0])
		if err != nil {
			return nil, errBuiltinArgs
		}
		n, err := api.TopDecodeU64(args[1])
		if err != nil || n > uint64(len(args)-2)/3 {
			return nil, errBuiltinArgs
		}
		decoded.To = dest
		decoded.DCTValues = make([]TxInputDCT, n)
		for i := range decoded.DCTValues {
			triple := args[2+3*i:]
			nonce, err := api.TopDecodeU64(triple[1])
			if err != nil {
				return nil, errBuiltinArgs
			}
			decoded.DCTValues[i] = TxInputDCT{
				TokenIdentifier: api.TokenIdentifier(triple[0]),
				Nonce:           nonce,
				Value:           api.TopDecodeBigUint(triple[2]),
			}
		}
		args = args[2+3*n:]
	}

	decoded.Func = ""
	decoded.Args = nil
	if len(args) > 0 {
		decoded.Func = string(args[0])
		decoded.Args = args[1:]
	}
	return &decoded, nil
}

var errBuiltinArgs = api.NewTxError(api.ErrExecutionFailed, api.StatusExecutionFailed, api.InvalidBuiltinArguments)
