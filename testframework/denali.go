// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package testframework

import (
	"fmt"
	"math/big"

	"github.com/stretchr/testify/require"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/denali"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

const defaultDenaliGasLimit = 5_000_000

// ScCallDenali describes a recorded scCall step.
type ScCallDenali struct {
	From      api.Address
	To        api.Address
	Endpoint  string
	MoaxValue *big.Int
	Transfers []vm.TxInputDCT
	Arguments [][]byte
	GasLimit  uint64
}

func NewScCallDenali(from, to api.Address, endpoint string) *ScCallDenali {
	return &ScCallDenali{
		From:      from,
		To:        to,
		Endpoint:  endpoint,
		MoaxValue: new(big.Int),
		GasLimit:  defaultDenaliGasLimit,
	}
}

func (c *ScCallDenali) AddArgument(arg []byte) *ScCallDenali {
	c.Arguments = append(c.Arguments, arg)
	return c
}

func (c *ScCallDenali) AddDCTTransfer(token api.TokenIdentifier, nonce uint64, value *big.Int) *ScCallDenali {
	c.Transfers = append(c.Transfers, vm.TxInputDCT{TokenIdentifier: token, Nonce: nonce, Value: value})
	return c
}

func (c *ScCallDenali) SetMoaxValue(value *big.Int) *ScCallDenali {
	c.MoaxValue = value
	return c
}

func (c *ScCallDenali) SetGasLimit(limit uint64) *ScCallDenali {
	c.GasLimit = limit
	return c
}

// ScQueryDenali describes a recorded scQuery step.
type ScQueryDenali struct {
	To        api.Address
	Endpoint  string
	Arguments [][]byte
}

func NewScQueryDenali(to api.Address, endpoint string) *ScQueryDenali {
	return &ScQueryDenali{To: to, Endpoint: endpoint}
}

func (q *ScQueryDenali) AddArgument(arg []byte) *ScQueryDenali {
	q.Arguments = append(q.Arguments, arg)
	return q
}

// TxExpectDenali is the expected outcome of a recorded call. Logs, gas and
// refund are never checked.
type TxExpectDenali struct {
	Status  uint64
	Message string
	Out     [][]byte
}

func NewTxExpectDenali(status uint64) *TxExpectDenali {
	return &TxExpectDenali{Status: status}
}

func (e *TxExpectDenali) AddOutValue(value []byte) *TxExpectDenali {
	e.Out = append(e.Out, value)
	return e
}

func (e *TxExpectDenali) SetMessage(message string) *TxExpectDenali {
	e.Message = message
	return e
}

func (e *TxExpectDenali) step() *denali.Expect {
	if e == nil {
		return nil
	}
	expect := &denali.Expect{
		Out:    formatAll(e.Out),
		Status: denali.FormatU64(e.Status),
		Logs:   &denali.Logs{Any: true},
		Gas:    "*",
		Refund: "*",
	}
	if e.Message != "" {
		expect.Message = denali.Value("str:" + e.Message)
	}
	return expect
}

func formatAll(values [][]byte) []denali.Value {
	out := make([]denali.Value, len(values))
	for i, v := range values {
		out[i] = denali.FormatBytes(v)
	}
	return out
}

func (w *BlockchainStateWrapper) nextTxID() string {
	w.txCount++
	return fmt.Sprintf("%d", w.txCount)
}

func (w *BlockchainStateWrapper) exportAccount(addr api.Address) *denali.Accounts {
	acc, err := denali.ExportAccount(w.ledger(), addr)
	require.NoError(w.t, err)
	return &denali.Accounts{
		Entries: map[string]*denali.Account{string(denali.FormatAddress(addr)): acc},
	}
}

// AddDenaliSetAccount records a setState step recreating the current state
// of [addr].
func (w *BlockchainStateWrapper) AddDenaliSetAccount(addr api.Address) {
	w.scenario.Steps = append(w.scenario.Steps, &denali.Step{
		Step:     denali.StepSetState,
		Accounts: w.exportAccount(addr),
	})
}

// AddDenaliCheckAccount records a checkState step requiring the current
// state of [addr]. Other accounts are left unchecked.
func (w *BlockchainStateWrapper) AddDenaliCheckAccount(addr api.Address) {
	accounts := w.exportAccount(addr)
	accounts.AllowOthers = true
	w.scenario.Steps = append(w.scenario.Steps, &denali.Step{
		Step:     denali.StepCheckState,
		Accounts: accounts,
	})
}

func (w *BlockchainStateWrapper) AddDenaliScCall(call *ScCallDenali, expect *TxExpectDenali) {
	tx := &denali.Tx{
		From:      denali.FormatAddress(call.From),
		To:        denali.FormatAddress(call.To),
		Value:     denali.FormatBigUint(call.MoaxValue),
		Function:  call.Endpoint,
		Arguments: formatAll(call.Arguments),
		GasLimit:  denali.FormatU64(call.GasLimit),
		GasPrice:  "0",
	}
	for _, transfer := range call.Transfers {
		tx.DCTValue = append(tx.DCTValue, denali.DCTTransfer{
			TokenIdentifier: denali.Value("str:" + string(transfer.TokenIdentifier)),
			Nonce:           denali.FormatU64(transfer.Nonce),
			Value:           denali.FormatBigUint(transfer.Value),
		})
	}
	w.scenario.Steps = append(w.scenario.Steps, &denali.Step{
		Step:   denali.StepSCCall,
		TxID:   w.nextTxID(),
		Tx:     tx,
		Expect: expect.step(),
	})
}

func (w *BlockchainStateWrapper) AddDenaliScQuery(query *ScQueryDenali, expect *TxExpectDenali) {
	w.scenario.Steps = append(w.scenario.Steps, &denali.Step{
		Step: denali.StepSCQuery,
		TxID: w.nextTxID(),
		Tx: &denali.Tx{
			To:        denali.FormatAddress(query.To),
			Function:  query.Endpoint,
			Arguments: formatAll(query.Arguments),
		},
		Expect: expect.step(),
	})
}

// WriteDenaliOutput writes the recorded steps to [path].
func (w *BlockchainStateWrapper) WriteDenaliOutput(path string) {
	require.NoError(w.t, denali.Write(path, w.scenario))
}
