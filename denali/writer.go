// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package denali

import (
	"bytes"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/ledger"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

// Write stores [scenario] at [path], creating parent directories as needed.
func Write(path string, scenario *Scenario) error {
	if scenario.Steps == nil {
		scenario.Steps = []*Step{}
	}
	b, err := json.MarshalIndent(scenario, "", "    ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// FormatBytes renders raw bytes as a hex expression.
func FormatBytes(b []byte) Value { return Value(hexString(b)) }

func FormatBigUint(n *big.Int) Value {
	if n == nil {
		return "0"
	}
	return Value(n.String())
}

func FormatU64(n uint64) Value { return Value(strconv.FormatUint(n, 10)) }

// FormatAddress prefers the "address:" and "sc:" forms when the address was
// built from a readable name.
func FormatAddress(addr api.Address) Value {
	if addr.IsSmartContract() {
		if name, ok := readableName(addr[api.SCAddressNumLeadingZeros:]); ok {
			return Value(scAddressPrefix + name)
		}
	} else if name, ok := readableName(addr[:]); ok {
		return Value(addressPrefix + name)
	}
	return FormatBytes(addr[:])
}

func readableName(b []byte) (string, bool) {
	name := strings.TrimRight(string(b), string(addressPadding))
	if name == "" {
		return "", false
	}
	for _, c := range []byte(name) {
		if c < '!' || c > '~' || c == concatSeparator[0] {
			return "", false
		}
	}
	return name, true
}

func formatCode(code []byte) Value {
	if bytes.HasPrefix(code, []byte(filePrefix)) {
		return Value(code)
	}
	return FormatBytes(code)
}

// ExportAccount describes the account at [addr] with every field set, so
// that it can both recreate and check it.
func ExportAccount(l *ledger.Ledger, addr api.Address) (*Account, error) {
	acc, err := l.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	out := &Account{
		Nonce:    FormatU64(acc.Nonce),
		Balance:  FormatBigUint(acc.Balance),
		Username: FormatBytes(acc.Username),
		Code:     formatCode(acc.Code),
		Storage:  &StorageMap{Entries: map[string]Value{}},
		DCT:      &DCTMap{Entries: map[string]*DCTData{}},
	}
	if !acc.Owner.IsZero() {
		out.Owner = FormatAddress(acc.Owner)
	}

	storage, err := l.StorageOf(addr)
	if err != nil {
		return nil, err
	}
	for key, value := range storage {
		out.Storage.Entries[hexString([]byte(key))] = FormatBytes(value)
	}

	tokens, err := l.TokensOf(addr)
	if err != nil {
		return nil, err
	}
	entry := func(token string) *DCTData {
		key := strPrefix + token
		data, ok := out.DCT.Entries[key]
		if !ok {
			data = &DCTData{}
			out.DCT.Entries[key] = data
		}
		return data
	}
	for _, balance := range tokens {
		data := entry(string(balance.TokenIdentifier))
		data.Instances = append(data.Instances, exportInstance(balance))
	}

	roles, err := l.RolesOf(addr)
	if err != nil {
		return nil, err
	}
	for token, tokenRoles := range roles {
		entry(token).Roles = roleNames(tokenRoles)
	}
	lastNonces, err := l.LastNoncesOf(addr)
	if err != nil {
		return nil, err
	}
	for token, nonce := range lastNonces {
		if nonce != 0 {
			entry(token).LastNonce = FormatU64(nonce)
		}
	}
	return out, nil
}

func exportInstance(balance *ledger.TokenBalance) *Instance {
	inst := &Instance{
		Nonce:      FormatU64(balance.Nonce),
		Balance:    FormatBigUint(balance.Amount),
		Hash:       FormatBytes(balance.Hash),
		Attributes: FormatBytes(balance.Attributes),
	}
	if balance.Royalties != 0 {
		inst.Royalties = FormatU64(balance.Royalties)
	}
	if !balance.Creator.IsZero() {
		inst.Creator = FormatAddress(balance.Creator)
	}
	if len(balance.URIs) != 0 {
		inst.URI = FormatBytes(balance.URIs[0])
	}
	return inst
}

// ExportState describes every account of the committed ledger of [mock].
func ExportState(mock *vm.BlockchainMock) (*Accounts, error) {
	l := mock.Ledger()
	accounts, err := l.Accounts()
	if err != nil {
		return nil, err
	}
	out := &Accounts{Entries: make(map[string]*Account, len(accounts))}
	for _, acc := range accounts {
		exported, err := ExportAccount(l, acc.Address)
		if err != nil {
			return nil, err
		}
		out.Entries[string(FormatAddress(acc.Address))] = exported
	}
	return out, nil
}
