// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ava-labs/avalanchego/utils/formatting"
	cjson "github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/service"
)

// Client defines the debugger service client operations.
type Client interface {
	// RunScenario runs the scenario file at [path], relative to the
	// server's scenario directory. A failing scenario returns false and the
	// reason.
	RunScenario(ctx context.Context, path string) (bool, string, error)

	// GetBalance fetches the MOAX balance of the account at [address]
	GetBalance(ctx context.Context, address string) (*big.Int, error)

	// GetDCTBalance fetches a token balance of the account at [address]
	GetDCTBalance(ctx context.Context, address string, token api.TokenIdentifier, nonce uint64) (*big.Int, error)

	// GetStorage fetches the value stored under [key]
	GetStorage(ctx context.Context, address, key string) ([]byte, error)

	// Interpret evaluates a value expression on the server
	Interpret(ctx context.Context, expression string) ([]byte, error)
}

// New creates a new client object. [uri] is the server address, the RPC
// endpoint is appended to it.
func New(uri string) Client {
	return &client{
		req:       rpc.NewEndpointRequester(uri, service.RPCEndpoint, service.Name),
		staticReq: rpc.NewEndpointRequester(uri, service.RPCEndpoint, service.StaticName),
	}
}

type client struct {
	req       rpc.EndpointRequester
	staticReq rpc.EndpointRequester
}

func (cli *client) RunScenario(ctx context.Context, path string) (bool, string, error) {
	resp := new(service.RunScenarioReply)
	err := cli.req.SendRequest(ctx,
		"runScenario",
		&service.RunScenarioArgs{Path: path},
		resp,
	)
	if err != nil {
		return false, "", err
	}
	return resp.Success, resp.Error, nil
}

func (cli *client) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	resp := new(service.BalanceReply)
	err := cli.req.SendRequest(ctx,
		"getBalance",
		&service.AccountArgs{Address: address},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return parseAmount(resp.Balance)
}

func (cli *client) GetDCTBalance(ctx context.Context, address string, token api.TokenIdentifier, nonce uint64) (*big.Int, error) {
	resp := new(service.BalanceReply)
	err := cli.req.SendRequest(ctx,
		"getDCTBalance",
		&service.DCTBalanceArgs{
			AccountArgs: service.AccountArgs{Address: address},
			Token:       string(token),
			Nonce:       cjson.Uint64(nonce),
		},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return parseAmount(resp.Balance)
}

func (cli *client) GetStorage(ctx context.Context, address, key string) ([]byte, error) {
	resp := new(service.StorageReply)
	err := cli.req.SendRequest(ctx,
		"getStorage",
		&service.StorageArgs{
			AccountArgs: service.AccountArgs{Address: address},
			Key:         key,
		},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return formatting.Decode(resp.Encoding, resp.Value)
}

func (cli *client) Interpret(ctx context.Context, expression string) ([]byte, error) {
	resp := new(service.InterpretReply)
	err := cli.staticReq.SendRequest(ctx,
		"interpret",
		&service.InterpretArgs{Expression: expression, Encoding: formatting.Hex},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return formatting.Decode(resp.Encoding, resp.Bytes)
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}
