// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package service exposes a mock chain over JSON-RPC, so that scenarios can
// be run and state inspected from outside the process.
package service

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/ava-labs/avalanchego/utils/formatting"
	cjson "github.com/ava-labs/avalanchego/utils/json"
	log "github.com/inconshreveable/log15"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/denali"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

const Name = "denali"

var (
	errNoScenario = errors.New("either a path or a scenario is required")

	// interpreter evaluates expressions sent by clients, which must not
	// read local files.
	interpreter = denali.ValueInterpreter{NoFiles: true}
)

// Service is the API service of the debugger. Calls are serialized: the
// mock chain is not safe for concurrent use.
type Service struct {
	lock sync.Mutex
	mock *vm.BlockchainMock
	log  log.Logger

	// dir resolves relative scenario paths.
	dir string
}

func New(mock *vm.BlockchainMock, dir string, logger log.Logger) *Service {
	if logger == nil {
		logger = log.New("module", Name)
	}
	return &Service{mock: mock, dir: dir, log: logger}
}

// RunScenarioArgs names a scenario file or carries the scenario inline.
type RunScenarioArgs struct {
	Path     string           `json:"path"`
	Scenario *denali.Scenario `json:"scenario"`
}

// RunScenarioReply reports whether every step passed. A failing scenario is
// not an API error: the reason is returned in Error.
type RunScenarioReply struct {
	Success bool         `json:"success"`
	Steps   cjson.Uint32 `json:"steps"`
	Error   string       `json:"error,omitempty"`
}

// RunScenario runs a scenario against the state left by previous calls.
func (s *Service) RunScenario(_ *http.Request, args *RunScenarioArgs, reply *RunScenarioReply) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	runner := denali.NewRunner(s.mock, s.log)
	var err error
	switch {
	case args.Scenario != nil:
		reply.Steps = cjson.Uint32(len(args.Scenario.Steps))
		err = runner.RunScenario(args.Scenario, s.dir)
	case args.Path != "":
		path := args.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		scenario, loadErr := denali.Load(path)
		if loadErr != nil {
			return loadErr
		}
		reply.Steps = cjson.Uint32(len(scenario.Steps))
		err = runner.RunFile(path)
	default:
		return errNoScenario
	}

	reply.Success = err == nil
	if err != nil {
		reply.Error = err.Error()
		s.log.Info("scenario failed", "path", args.Path, "error", err)
	}
	return nil
}

// AccountArgs selects an account by address expression ("address:alice",
// "sc:adder" or hex).
type AccountArgs struct {
	Address string `json:"address"`
}

func (args *AccountArgs) address() (api.Address, error) {
	return interpreter.Address(denali.Value(args.Address))
}

// BalanceReply is a decimal amount.
type BalanceReply struct {
	Balance string `json:"balance"`
}

func (s *Service) GetBalance(_ *http.Request, args *AccountArgs, reply *BalanceReply) error {
	addr, err := args.address()
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	balance, err := s.mock.Ledger().GetBalance(addr)
	if err != nil {
		return err
	}
	reply.Balance = balance.String()
	return nil
}

type DCTBalanceArgs struct {
	AccountArgs
	Token string       `json:"token"`
	Nonce cjson.Uint64 `json:"nonce"`
}

func (s *Service) GetDCTBalance(_ *http.Request, args *DCTBalanceArgs, reply *BalanceReply) error {
	addr, err := args.address()
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	balance, err := s.mock.Ledger().GetDCTBalance(addr, api.TokenIdentifier(args.Token), uint64(args.Nonce))
	if err != nil {
		return err
	}
	reply.Balance = balance.String()
	return nil
}

// StorageArgs selects a storage entry. Key is a value expression.
type StorageArgs struct {
	AccountArgs
	Key string `json:"key"`
}

type StorageReply struct {
	Value    string              `json:"value"`
	Encoding formatting.Encoding `json:"encoding"`
}

func (s *Service) GetStorage(_ *http.Request, args *StorageArgs, reply *StorageReply) error {
	addr, err := args.address()
	if err != nil {
		return err
	}
	key, err := interpreter.Interpret(args.Key)
	if err != nil {
		return fmt.Errorf("couldn't interpret key: %w", err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	value, err := s.mock.Ledger().GetStorage(addr, key)
	if err != nil {
		return err
	}
	reply.Value, err = formatting.EncodeWithChecksum(formatting.Hex, value)
	reply.Encoding = formatting.Hex
	return err
}
