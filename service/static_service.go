// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package service

import (
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/utils/formatting"
)

const StaticName = "static"

// StaticService evaluates value expressions without touching any state.
type StaticService struct{}

func CreateStaticService() *StaticService {
	return &StaticService{}
}

// InterpretArgs are arguments for Interpret
type InterpretArgs struct {
	Expression string              `json:"expression"`
	Encoding   formatting.Encoding `json:"encoding"`
}

// InterpretReply is the reply from Interpret
type InterpretReply struct {
	Bytes    string              `json:"bytes"`
	Encoding formatting.Encoding `json:"encoding"`
}

// Interpret returns the encoded bytes of a value expression. File
// references are not allowed.
func (ss *StaticService) Interpret(_ *http.Request, args *InterpretArgs, reply *InterpretReply) error {
	b, err := interpreter.Interpret(args.Expression)
	if err != nil {
		return fmt.Errorf("couldn't interpret %q: %w", args.Expression, err)
	}
	reply.Bytes, err = formatting.EncodeWithChecksum(args.Encoding, b)
	if err != nil {
		return fmt.Errorf("couldn't encode bytes: %w", err)
	}
	reply.Encoding = args.Encoding
	return nil
}
