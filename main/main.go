// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// denali runs scenario files against the mock chain, and optionally serves
// the debugger API over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dharitri/dharitri-wasm-debug/contracts/adder"
	"github.com/dharitri/dharitri-wasm-debug/contracts/tester"
	"github.com/dharitri/dharitri-wasm-debug/denali"
	"github.com/dharitri/dharitri-wasm-debug/service"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

const (
	Name    = "denali"
	Version = "0.1.0"

	shutdownTimeout = 5 * time.Second
)

func main() {
	v, fs, err := getViper(os.Args[1:])
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}
	// Print version and exit
	if PrintVersion(v) {
		fmt.Printf("%s@%s\n", Name, Version)
		os.Exit(0)
	}
	config, err := getConfig(v, fs)
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}

	log.Root().SetHandler(log.LvlFilterHandler(config.LogLevel, log.StreamHandler(os.Stderr, log.TerminalFormat())))

	if err := run(config); err != nil {
		log.Error("denali failed", "error", err)
		os.Exit(1)
	}
}

func builtinContracts() *vm.ContractMap {
	return vm.NewContractMap().
		Register(adder.CodePath, adder.Code()).
		Register(tester.CodePath, tester.Code())
}

func run(config Config) error {
	registry := prometheus.NewRegistry()
	mock, err := vm.New(builtinContracts(),
		vm.WithConfig(config.VM),
		vm.WithLogger(log.New("module", "vm")),
		vm.WithRegisterer(registry),
	)
	if err != nil {
		return err
	}

	if err := runScenarios(mock, config.Scenarios); err != nil {
		return err
	}
	if !config.Serve {
		return nil
	}
	return serve(config, mock, registry)
}

// runScenarios runs the files in [paths] and reports how many failed. A lone
// scenario runs on [mock], so the API serves its final state; several each
// get a fresh chain.
func runScenarios(mock *vm.BlockchainMock, paths []string) error {
	failed := 0
	for _, path := range paths {
		scenarioMock := mock
		if len(paths) > 1 {
			var err error
			scenarioMock, err = vm.New(builtinContracts(), vm.WithConfig(mock.Config()), vm.WithLogger(mock.Logger()))
			if err != nil {
				return err
			}
		}
		logger := log.New("scenario", path)
		if err := denali.NewRunner(scenarioMock, logger).RunFile(path); err != nil {
			failed++
			logger.Error("FAIL", "error", err)
			continue
		}
		logger.Info("PASS")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(paths))
	}
	return nil
}

func serve(config Config, mock *vm.BlockchainMock, registry *prometheus.Registry) error {
	svc := service.New(mock, config.ScenarioDir, log.New("module", service.Name))
	handlers, err := service.CreateHandlers(svc, registry)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              config.Address(),
		Handler:           service.NewMux(handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving debugger API", "address", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
