// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"

	log "github.com/inconshreveable/log15"
	"github.com/stretchr/testify/require"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/contracts/adder"
	"github.com/dharitri/dharitri-wasm-debug/contracts/tester"
	"github.com/dharitri/dharitri-wasm-debug/service"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

func newTestClient(t *testing.T) Client {
	logger := log.New()
	logger.SetHandler(log.DiscardHandler())

	contracts := vm.NewContractMap().
		Register(adder.CodePath, adder.Code()).
		Register(tester.CodePath, tester.Code())
	mock, err := vm.New(contracts, vm.WithLogger(logger))
	require.NoError(t, err)

	handlers, err := service.CreateHandlers(service.New(mock, "../denali/testdata", logger), nil)
	require.NoError(t, err)
	server := httptest.NewServer(service.NewMux(handlers))
	t.Cleanup(server.Close)
	return New(server.URL)
}

func TestClient(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := newTestClient(t)

	ok, reason, err := cli.RunScenario(ctx, "dct.scen.json")
	require.NoError(err)
	require.True(ok, reason)

	balance, err := cli.GetDCTBalance(ctx, "sc:tester", api.TokenIdentifier("COOL-123456"), 0)
	require.NoError(err)
	require.Equal(big.NewInt(65), balance)

	balance, err = cli.GetBalance(ctx, "address:alice")
	require.NoError(err)
	require.Equal(big.NewInt(100), balance)

	b, err := cli.Interpret(ctx, "biguint:1")
	require.NoError(err)
	require.Equal([]byte{0, 0, 0, 1, 1}, b)
}

func TestClientStorage(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := newTestClient(t)

	ok, reason, err := cli.RunScenario(ctx, "transfer.scen.json")
	require.NoError(err)
	require.True(ok, reason)

	value, err := cli.GetStorage(ctx, "address:bob", "str:DHARITRIreward")
	require.NoError(err)
	require.Equal([]byte{100}, value)

	balance, err := cli.GetBalance(ctx, "address:bob")
	require.NoError(err)
	require.Equal(big.NewInt(500), balance)
}

func TestClientErrors(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cli := newTestClient(t)

	_, err := cli.GetBalance(ctx, "0x01")
	require.Error(err)

	_, err = cli.Interpret(ctx, "file:secret")
	require.Error(err)

	ok, reason, err := cli.RunScenario(ctx, "cycle.scen.json")
	require.NoError(err)
	require.False(ok)
	require.Contains(reason, "includes itself")
}
