// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	log "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultMaxCallDepth = 64
	defaultGasLimit     = 100_000_000
)

// DefaultConfig is used by New unless overridden with WithConfig.
var DefaultConfig = Config{
	MaxCallDepth: defaultMaxCallDepth,
	GasLimit:     defaultGasLimit,
	Namespace:    "vm",
}

// Config tunes the mock chain.
type Config struct {
	// MaxCallDepth bounds nested execute on dest context calls.
	MaxCallDepth int `json:"maxCallDepth"`
	// GasLimit is reported as the gas left of transactions that set none.
	GasLimit uint64 `json:"gasLimit"`
	// Namespace prefixes the executor metrics.
	Namespace string `json:"namespace"`
}

// Option customizes a BlockchainMock.
type Option func(*BlockchainMock)

func WithConfig(config Config) Option {
	return func(b *BlockchainMock) { b.config = config }
}

func WithLogger(logger log.Logger) Option {
	return func(b *BlockchainMock) { b.log = logger }
}

// WithRegisterer reports the executor and ledger cache metrics to
// [registerer]. Without it a private registry is used.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(b *BlockchainMock) { b.registerer = registerer }
}
