// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package denali

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	log "github.com/inconshreveable/log15"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/ledger"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

// validatorRewardKey accumulates the rewards credited to an account.
var validatorRewardKey = []byte("DHARITRIreward")

// Runner executes scenarios against a mock chain. Steps run in order and the
// first failing step stops the scenario.
type Runner struct {
	mock *vm.BlockchainMock
	log  log.Logger

	// files currently being run, to reject externalSteps cycles
	running map[string]bool
}

func NewRunner(mock *vm.BlockchainMock, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.New("module", "denali")
	}
	return &Runner{
		mock:    mock,
		log:     logger,
		running: make(map[string]bool),
	}
}

// Run runs the scenario file at [path] against [mock].
func Run(path string, mock *vm.BlockchainMock) error {
	return NewRunner(mock, nil).RunFile(path)
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scenario, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse %s: %w", path, err)
	}
	return scenario, nil
}

func Parse(b []byte) (*Scenario, error) {
	scenario := &Scenario{}
	if err := json.Unmarshal(b, scenario); err != nil {
		return nil, err
	}
	return scenario, nil
}

// RunFile runs the scenario at [path]. Relative references inside it are
// resolved against its directory.
func (r *Runner) RunFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if r.running[abs] {
		return fmt.Errorf("%s includes itself", path)
	}
	r.running[abs] = true
	defer delete(r.running, abs)

	scenario, err := Load(abs)
	if err != nil {
		return err
	}
	r.log.Debug("running scenario", "path", path, "steps", len(scenario.Steps))
	if err := r.RunScenario(scenario, filepath.Dir(abs)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// RunScenario runs already parsed steps. [dir] is where file references are
// resolved.
func (r *Runner) RunScenario(scenario *Scenario, dir string) error {
	vi := ValueInterpreter{Dir: dir}
	for i, step := range scenario.Steps {
		if err := r.runStep(vi, step); err != nil {
			return fmt.Errorf("step %d (%s%s): %w", i, step.Step, stepLabel(step), err)
		}
	}
	return nil
}

func stepLabel(step *Step) string {
	switch {
	case step.TxID != "":
		return " " + step.TxID
	case step.ID != "":
		return " " + step.ID
	default:
		return ""
	}
}

func (r *Runner) runStep(vi ValueInterpreter, step *Step) error {
	r.log.Debug("running step", "step", step.Step, "id", step.ID, "txId", step.TxID)
	switch step.Step {
	case StepSetState:
		return r.setState(vi, step)
	case StepCheckState:
		return r.checkState(vi, step)
	case StepSCCall:
		return r.scCall(vi, step)
	case StepSCQuery:
		return r.scQuery(vi, step)
	case StepSCDeploy:
		return r.scDeploy(vi, step)
	case StepTransfer:
		return r.transfer(vi, step)
	case StepValidatorReward:
		return r.validatorReward(vi, step)
	case StepDumpState:
		return r.dumpState()
	case StepExternalSteps:
		path := step.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(vi.Dir, path)
		}
		return r.RunFile(path)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStep, step.Step)
	}
}

func (r *Runner) setState(vi ValueInterpreter, step *Step) error {
	if step.Accounts != nil {
		for _, key := range step.Accounts.Keys() {
			if err := r.setAccount(vi, key, step.Accounts.Entries[key]); err != nil {
				return fmt.Errorf("account %s: %w", key, err)
			}
		}
	}

	for _, newAddress := range step.NewAddresses {
		p := exprParser{vi: vi}
		creator := p.address(newAddress.CreatorAddress)
		nonce := p.u64(newAddress.CreatorNonce)
		addr := p.address(newAddress.NewAddress)
		if err := p.err(); err != nil {
			return fmt.Errorf("new address: %w", err)
		}
		if !addr.IsSmartContract() {
			return fmt.Errorf("%w: %s", ErrNewAddress, newAddress.NewAddress)
		}
		r.mock.SetNewAddress(creator, nonce, addr)
	}

	l := r.mock.Ledger()
	if step.PreviousBlockInfo != nil {
		info, err := l.GetPrevBlockInfo()
		if err != nil {
			return err
		}
		if err := applyBlockInfo(vi, step.PreviousBlockInfo, &info); err != nil {
			return fmt.Errorf("previous block info: %w", err)
		}
		if err := r.mock.SetPrevBlockInfo(info); err != nil {
			return err
		}
	}
	if step.CurrentBlockInfo != nil {
		info, err := l.GetBlockInfo()
		if err != nil {
			return err
		}
		if err := applyBlockInfo(vi, step.CurrentBlockInfo, &info); err != nil {
			return fmt.Errorf("current block info: %w", err)
		}
		if err := r.mock.SetBlockInfo(info); err != nil {
			return err
		}
	}
	return nil
}

// applyBlockInfo overwrites the fields given in [src].
func applyBlockInfo(vi ValueInterpreter, src *BlockInfo, dst *ledger.BlockInfo) error {
	p := exprParser{vi: vi}
	if src.BlockTimestamp != "" {
		dst.Timestamp = p.u64(src.BlockTimestamp)
	}
	if src.BlockNonce != "" {
		dst.Nonce = p.u64(src.BlockNonce)
	}
	if src.BlockRound != "" {
		dst.Round = p.u64(src.BlockRound)
	}
	if src.BlockEpoch != "" {
		dst.Epoch = p.u64(src.BlockEpoch)
	}
	if src.BlockRandomSeed != "" {
		dst.RandomSeed = p.bytes(src.BlockRandomSeed)
	}
	return p.err()
}

// setAccount replaces the whole account at [key] with [acc].
func (r *Runner) setAccount(vi ValueInterpreter, key string, acc *Account) error {
	p := exprParser{vi: vi}
	addr := p.address(Value(key))
	account := &ledger.Account{
		Address:  addr,
		Nonce:    p.u64(acc.Nonce),
		Balance:  p.bigUint(acc.Balance),
		Code:     p.code(acc.Code),
		Username: p.bytes(acc.Username),
	}
	if acc.Owner != "" {
		account.Owner = p.address(acc.Owner)
	}
	if err := p.err(); err != nil {
		return err
	}

	hasCode := len(account.Code) != 0
	if hasCode != addr.IsSmartContract() {
		if hasCode {
			return fmt.Errorf("%w: account with code needs a smart contract address", ErrSCAddress)
		}
		return fmt.Errorf("%w: smart contract address needs code", ErrSCAddress)
	}
	if hasCode {
		if _, ok := r.mock.Contracts().Get(account.Code); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCode, account.Code)
		}
	}

	l := r.mock.Ledger()
	if err := clearAccount(l, addr); err != nil {
		return err
	}
	if err := l.PutAccountFields(account); err != nil {
		return err
	}

	if acc.Storage != nil && !acc.Storage.Any {
		for k, v := range acc.Storage.Entries {
			key, value := p.bytes(Value(k)), p.bytes(v)
			if err := p.err(); err != nil {
				return fmt.Errorf("storage %s: %w", k, err)
			}
			if err := l.SetStorage(addr, key, value); err != nil {
				return err
			}
		}
	}
	if acc.DCT != nil && !acc.DCT.Any {
		for token, data := range acc.DCT.Entries {
			if err := setDCT(vi, l, addr, token, data); err != nil {
				return fmt.Errorf("dct %s: %w", token, err)
			}
		}
	}
	return nil
}

func setDCT(vi ValueInterpreter, l *ledger.Ledger, addr api.Address, tokenExpr string, data *DCTData) error {
	p := exprParser{vi: vi}
	token := api.TokenIdentifier(p.bytes(Value(tokenExpr)))
	if err := p.err(); err != nil {
		return err
	}

	for _, instance := range data.Instances {
		nonce := p.u64(instance.Nonce)
		inst := &ledger.TokenInstance{
			Amount:     p.bigUint(instance.Balance),
			Attributes: p.bytes(instance.Attributes),
			Royalties:  p.u64(instance.Royalties),
			Hash:       p.bytes(instance.Hash),
		}
		if instance.Creator != "" {
			inst.Creator = p.address(instance.Creator)
		}
		if instance.URI != "" {
			inst.URIs = [][]byte{p.bytes(instance.URI)}
		}
		if err := p.err(); err != nil {
			return err
		}
		if err := l.PutTokenInstance(addr, token, nonce, inst); err != nil {
			return err
		}
	}

	if len(data.Roles) != 0 {
		roles := make([]api.DCTLocalRole, len(data.Roles))
		for i, name := range data.Roles {
			role, err := api.ParseRole(name)
			if err != nil {
				return err
			}
			roles[i] = role
		}
		if err := l.SetRoles(addr, token, roles); err != nil {
			return err
		}
	}
	if data.LastNonce != "" {
		lastNonce := p.u64(data.LastNonce)
		if err := p.err(); err != nil {
			return err
		}
		return l.SetLastNonce(addr, token, lastNonce)
	}
	return nil
}

// clearAccount drops the storage, tokens, roles and NFT nonce counters of
// [addr].
func clearAccount(l *ledger.Ledger, addr api.Address) error {
	storage, err := l.StorageOf(addr)
	if err != nil {
		return err
	}
	for key := range storage {
		if err := l.SetStorage(addr, []byte(key), nil); err != nil {
			return err
		}
	}

	tokens, err := l.TokensOf(addr)
	if err != nil {
		return err
	}
	for _, balance := range tokens {
		if err := l.PutTokenInstance(addr, balance.TokenIdentifier, balance.Nonce, &ledger.TokenInstance{Amount: new(big.Int)}); err != nil {
			return err
		}
	}

	roles, err := l.RolesOf(addr)
	if err != nil {
		return err
	}
	for token := range roles {
		if err := l.SetRoles(addr, api.TokenIdentifier(token), nil); err != nil {
			return err
		}
	}

	nonces, err := l.LastNoncesOf(addr)
	if err != nil {
		return err
	}
	for token := range nonces {
		if err := l.SetLastNonce(addr, api.TokenIdentifier(token), 0); err != nil {
			return err
		}
	}
	return nil
}

// txInput builds the input of [tx]. Fields missing from [tx] stay zero.
func txInput(vi ValueInterpreter, tx *Tx) (*vm.TxInput, error) {
	if tx == nil {
		return nil, ErrMissingTx
	}
	p := exprParser{vi: vi}
	input := &vm.TxInput{
		MoaxValue: p.bigUint(tx.moaxValue()),
		Func:      tx.Function,
		GasLimit:  p.u64(tx.GasLimit),
		GasPrice:  p.u64(tx.GasPrice),
	}
	if tx.From != "" {
		input.From = p.address(tx.From)
	}
	if tx.To != "" {
		input.To = p.address(tx.To)
	}
	for _, transfer := range tx.DCTValue {
		input.DCTValues = append(input.DCTValues, vm.TxInputDCT{
			TokenIdentifier: api.TokenIdentifier(p.bytes(transfer.TokenIdentifier)),
			Nonce:           p.u64(transfer.Nonce),
			Value:           p.bigUint(transfer.Value),
		})
	}
	for _, arg := range tx.Arguments {
		input.Args = append(input.Args, p.bytes(arg))
	}
	return input, p.err()
}

func (r *Runner) scCall(vi ValueInterpreter, step *Step) error {
	input, err := txInput(vi, step.Tx)
	if err != nil {
		return err
	}
	result := r.mock.ExecuteSCCall(input)
	if err := r.mock.Ledger().IncrementNonce(input.From); err != nil {
		return err
	}
	return checkExpect(vi, step.Expect, result)
}

// scQuery runs with the contract as its own caller unless the step names
// one.
func (r *Runner) scQuery(vi ValueInterpreter, step *Step) error {
	input, err := txInput(vi, step.Tx)
	if err != nil {
		return err
	}
	if step.Tx.From == "" {
		input.From = input.To
	}
	return checkExpect(vi, step.Expect, r.mock.ExecuteSCQuery(input))
}

func (r *Runner) scDeploy(vi ValueInterpreter, step *Step) error {
	input, err := txInput(vi, step.Tx)
	if err != nil {
		return err
	}
	p := exprParser{vi: vi}
	code := p.code(step.Tx.ContractCode)
	if err := p.err(); err != nil {
		return err
	}
	addr, result := r.mock.ExecuteSCDeploy(input, code)
	if err := r.mock.Ledger().IncrementNonce(input.From); err != nil {
		return err
	}
	if result.Succeeded() {
		r.log.Debug("contract deployed", "address", addr, "code", string(code))
	}
	return checkExpect(vi, step.Expect, result)
}

func (r *Runner) transfer(vi ValueInterpreter, step *Step) error {
	input, err := txInput(vi, step.Tx)
	if err != nil {
		return err
	}
	result := r.mock.ExecuteTransfer(input)
	if err := r.mock.Ledger().IncrementNonce(input.From); err != nil {
		return err
	}
	if !result.Succeeded() {
		return fmt.Errorf("%w: %s", ErrTransferFailed, result.Message)
	}
	return nil
}

// validatorReward credits the reward and adds it to the reward counter in
// the receiver's storage.
func (r *Runner) validatorReward(vi ValueInterpreter, step *Step) error {
	if step.Tx == nil {
		return ErrMissingTx
	}
	p := exprParser{vi: vi}
	to := p.address(step.Tx.To)
	reward := p.bigUint(step.Tx.moaxValue())
	if err := p.err(); err != nil {
		return err
	}

	l := r.mock.Ledger()
	if err := l.AddBalance(to, reward); err != nil {
		return err
	}
	previous, err := l.GetStorage(to, validatorRewardKey)
	if err != nil {
		return err
	}
	total := new(big.Int).Add(api.TopDecodeBigUint(previous), reward)
	return l.SetStorage(to, validatorRewardKey, api.TopEncodeBigUint(total))
}

func (r *Runner) dumpState() error {
	accounts, err := ExportState(r.mock)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return err
	}
	r.log.Info("state dump", "accounts", string(b))
	return nil
}
