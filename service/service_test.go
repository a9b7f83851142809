// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package service

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/gorilla/rpc/v2/json2"
	log "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/dharitri/dharitri-wasm-debug/contracts/adder"
	"github.com/dharitri/dharitri-wasm-debug/contracts/tester"
	"github.com/dharitri/dharitri-wasm-debug/denali"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

const scenarioDir = "../denali/testdata"

func newTestServer(t *testing.T) *httptest.Server {
	logger := log.New()
	logger.SetHandler(log.DiscardHandler())

	registry := prometheus.NewRegistry()
	contracts := vm.NewContractMap().
		Register(adder.CodePath, adder.Code()).
		Register(tester.CodePath, tester.Code())
	mock, err := vm.New(contracts, vm.WithLogger(logger), vm.WithRegisterer(registry))
	require.NoError(t, err)

	handlers, err := CreateHandlers(New(mock, scenarioDir, logger), registry)
	require.NoError(t, err)
	server := httptest.NewServer(NewMux(handlers))
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, server *httptest.Server, method string, args, reply interface{}) error {
	body, err := json2.EncodeClientRequest(method, args)
	require.NoError(t, err)
	resp, err := http.Post(server.URL+RPCEndpoint, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	return json2.DecodeClientResponse(resp.Body, reply)
}

func TestRunScenarioPath(t *testing.T) {
	require := require.New(t)
	server := newTestServer(t)

	reply := RunScenarioReply{}
	require.NoError(call(t, server, "denali.runScenario", &RunScenarioArgs{Path: "adder.scen.json"}, &reply))
	require.True(reply.Success, reply.Error)
	require.EqualValues(5, reply.Steps)

	storage := StorageReply{}
	require.NoError(call(t, server, "denali.getStorage", &StorageArgs{
		AccountArgs: AccountArgs{Address: "sc:adder"},
		Key:         "str:sum",
	}, &storage))
	require.Equal(formatting.Hex, storage.Encoding)
	value, err := formatting.Decode(formatting.Hex, storage.Value)
	require.NoError(err)
	require.Equal([]byte{8}, value)
}

func TestRunScenarioInline(t *testing.T) {
	require := require.New(t)
	server := newTestServer(t)

	scenario, err := denali.Parse([]byte(`{
		"steps": [
			{
				"step": "setState",
				"accounts": {
					"address:alice": {
						"balance": "100",
						"dct": {"str:COOL": "7"}
					}
				}
			},
			{
				"step": "checkState",
				"accounts": {
					"address:alice": {"balance": "99"}
				}
			}
		]
	}`))
	require.NoError(err)

	reply := RunScenarioReply{}
	require.NoError(call(t, server, "denali.runScenario", &RunScenarioArgs{Scenario: scenario}, &reply))
	require.False(reply.Success)
	require.Contains(reply.Error, "balance")

	balance := BalanceReply{}
	require.NoError(call(t, server, "denali.getBalance", &AccountArgs{Address: "address:alice"}, &balance))
	require.Equal("100", balance.Balance)

	require.NoError(call(t, server, "denali.getDCTBalance", &DCTBalanceArgs{
		AccountArgs: AccountArgs{Address: "address:alice"},
		Token:       "COOL",
	}, &balance))
	require.Equal("7", balance.Balance)
}

func TestRunScenarioErrors(t *testing.T) {
	require := require.New(t)
	server := newTestServer(t)

	reply := RunScenarioReply{}
	err := call(t, server, "denali.runScenario", &RunScenarioArgs{}, &reply)
	require.Error(err)
	require.Contains(err.Error(), errNoScenario.Error())

	err = call(t, server, "denali.runScenario", &RunScenarioArgs{Path: "missing.scen.json"}, &reply)
	require.Error(err)

	balance := BalanceReply{}
	err = call(t, server, "denali.getBalance", &AccountArgs{Address: "0x01"}, &balance)
	require.Error(err)
}

func TestUnknownAccountIsEmpty(t *testing.T) {
	require := require.New(t)
	server := newTestServer(t)

	balance := BalanceReply{}
	require.NoError(call(t, server, "denali.getBalance", &AccountArgs{Address: "address:nobody"}, &balance))
	require.Equal("0", balance.Balance)

	storage := StorageReply{}
	require.NoError(call(t, server, "denali.getStorage", &StorageArgs{
		AccountArgs: AccountArgs{Address: "address:nobody"},
		Key:         "str:missing",
	}, &storage))
	value, err := formatting.Decode(formatting.Hex, storage.Value)
	require.NoError(err)
	require.Empty(value)

	err = call(t, server, "denali.getStorage", &StorageArgs{
		AccountArgs: AccountArgs{Address: "address:nobody"},
		Key:         "nested:file:service.go",
	}, &storage)
	require.Error(err)
	require.Contains(err.Error(), denali.ErrFileReference.Error())
}

func TestInterpret(t *testing.T) {
	require := require.New(t)
	server := newTestServer(t)

	reply := InterpretReply{}
	require.NoError(call(t, server, "static.interpret", &InterpretArgs{
		Expression: "str:a|u16:1",
		Encoding:   formatting.Hex,
	}, &reply))
	require.Equal(formatting.Hex, reply.Encoding)
	b, err := formatting.Decode(formatting.Hex, reply.Bytes)
	require.NoError(err)
	require.Equal([]byte{'a', 0, 1}, b)

	for _, expr := range []string{
		"file:service.go",
		"nested:file:service.go",
		"keccak256:file:service.go",
		"0x|file:service.go",
	} {
		err = call(t, server, "static.interpret", &InterpretArgs{Expression: expr, Encoding: formatting.Hex}, &reply)
		require.Error(err, expr)
		require.Contains(err.Error(), denali.ErrFileReference.Error(), expr)
	}

	err = call(t, server, "static.interpret", &InterpretArgs{Expression: "u8:256", Encoding: formatting.Hex}, &reply)
	require.Error(err)
}

func TestMetricsEndpoint(t *testing.T) {
	require := require.New(t)
	server := newTestServer(t)

	reply := RunScenarioReply{}
	require.NoError(call(t, server, "denali.runScenario", &RunScenarioArgs{Path: "transfer.scen.json"}, &reply))
	require.True(reply.Success, reply.Error)

	resp, err := http.Get(server.URL + MetricsEndpoint)
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.Contains(string(body), "vm_txs_executed")
}
