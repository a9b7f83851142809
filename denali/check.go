// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package denali

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/ava-labs/avalanchego/database"
	"github.com/google/go-cmp/cmp"

	"github.com/dharitri/dharitri-wasm-debug/api"
	"github.com/dharitri/dharitri-wasm-debug/ledger"
	"github.com/dharitri/dharitri-wasm-debug/vm"
)

func (r *Runner) checkState(vi ValueInterpreter, step *Step) error {
	if step.Accounts == nil {
		return ErrAccountsMissing
	}
	l := r.mock.Ledger()

	var mismatches []string
	listed := make(map[api.Address]bool, len(step.Accounts.Entries))
	for _, key := range step.Accounts.Keys() {
		addr, err := vi.Address(Value(key))
		if err != nil {
			return err
		}
		listed[addr] = true
		found, err := checkAccount(vi, l, addr, step.Accounts.Entries[key])
		if err != nil {
			return fmt.Errorf("account %s: %w", key, err)
		}
		for _, m := range found {
			mismatches = append(mismatches, fmt.Sprintf("account %s: %s", key, m))
		}
	}

	if !step.Accounts.AllowOthers {
		accounts, err := l.Accounts()
		if err != nil {
			return err
		}
		for _, acc := range accounts {
			if !listed[acc.Address] {
				mismatches = append(mismatches, fmt.Sprintf("unexpected account %s", acc.Address))
			}
		}
	}

	if len(mismatches) != 0 {
		return fmt.Errorf("%w:\n%s", ErrCheckState, strings.Join(mismatches, "\n"))
	}
	return nil
}

// checkAccount returns the differences between [want] and the account
// stored at [addr]. Empty fields and "*" are not checked.
func checkAccount(vi ValueInterpreter, l *ledger.Ledger, addr api.Address, want *Account) ([]string, error) {
	acc, err := l.GetAccount(addr)
	if err == database.ErrNotFound {
		return []string{"not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	var mismatches []string
	p := exprParser{vi: vi}
	if checked(want.Nonce) {
		if nonce := p.u64(want.Nonce); nonce != acc.Nonce {
			mismatches = append(mismatches, fmt.Sprintf("nonce: want %d, got %d", nonce, acc.Nonce))
		}
	}
	if checked(want.Balance) {
		if balance := p.bigUint(want.Balance); balance.Cmp(acc.Balance) != 0 {
			mismatches = append(mismatches, fmt.Sprintf("balance: want %s, got %s", balance, acc.Balance))
		}
	}
	if checked(want.Username) {
		if username := p.bytes(want.Username); !bytes.Equal(username, acc.Username) {
			mismatches = append(mismatches, fmt.Sprintf("username: want %q, got %q", username, acc.Username))
		}
	}
	if checked(want.Owner) {
		if owner := p.address(want.Owner); owner != acc.Owner {
			mismatches = append(mismatches, fmt.Sprintf("owner: want %s, got %s", owner, acc.Owner))
		}
	}
	if checked(want.Code) {
		if code := p.code(want.Code); !sameCode(code, acc.Code) {
			mismatches = append(mismatches, fmt.Sprintf("code: want %q, got %q", code, acc.Code))
		}
	}
	if err := p.err(); err != nil {
		return nil, err
	}

	if want.Storage != nil && !want.Storage.Any {
		diff, err := storageDiff(vi, l, addr, want.Storage)
		if err != nil {
			return nil, err
		}
		if diff != "" {
			mismatches = append(mismatches, "storage (-want +got):\n"+diff)
		}
	}
	if want.DCT != nil && !want.DCT.Any {
		found, err := checkDCT(vi, l, addr, want.DCT)
		if err != nil {
			return nil, err
		}
		mismatches = append(mismatches, found...)
	}
	return mismatches, nil
}

func checked(v Value) bool { return v != "" && !v.IsAny() }

// sameCode compares code references by the contract they resolve to.
func sameCode(want, got []byte) bool {
	return bytes.Equal(want, got) || vm.CodeKey(string(want)) == vm.CodeKey(string(got))
}

// storageDiff requires the storage to hold exactly the non empty entries of
// [want].
func storageDiff(vi ValueInterpreter, l *ledger.Ledger, addr api.Address, want *StorageMap) (string, error) {
	p := exprParser{vi: vi}
	wantEntries := make(map[string]string, len(want.Entries))
	for k, v := range want.Entries {
		key, value := p.bytes(Value(k)), p.bytes(v)
		if len(value) != 0 {
			wantEntries[hexString(key)] = hexString(value)
		}
	}
	if err := p.err(); err != nil {
		return "", err
	}

	stored, err := l.StorageOf(addr)
	if err != nil {
		return "", err
	}
	gotEntries := make(map[string]string, len(stored))
	for k, v := range stored {
		gotEntries[hexString([]byte(k))] = hexString(v)
	}
	return cmp.Diff(wantEntries, gotEntries), nil
}

// checkDCT compares the listed tokens. Balances are compared across all
// tokens: an account holding a token that is not listed fails the check.
func checkDCT(vi ValueInterpreter, l *ledger.Ledger, addr api.Address, want *DCTMap) ([]string, error) {
	held, err := l.TokensOf(addr)
	if err != nil {
		return nil, err
	}
	gotBalances := make(map[string]string, len(held))
	instances := make(map[string]*ledger.TokenInstance, len(held))
	for _, balance := range held {
		key := instanceKey(balance.TokenIdentifier, balance.Nonce)
		instances[key] = balance.TokenInstance
		if balance.Amount.Sign() != 0 {
			gotBalances[key] = balance.Amount.String()
		}
	}
	roles, err := l.RolesOf(addr)
	if err != nil {
		return nil, err
	}
	lastNonces, err := l.LastNoncesOf(addr)
	if err != nil {
		return nil, err
	}

	var mismatches []string
	p := exprParser{vi: vi}
	wantBalances := make(map[string]string)
	for tokenExpr, data := range want.Entries {
		token := api.TokenIdentifier(p.bytes(Value(tokenExpr)))
		for _, instance := range data.Instances {
			nonce := p.u64(instance.Nonce)
			key := instanceKey(token, nonce)
			if instance.Balance.IsAny() {
				if balance, ok := gotBalances[key]; ok {
					wantBalances[key] = balance
				}
			} else if balance := p.bigUint(instance.Balance); balance.Sign() != 0 {
				wantBalances[key] = balance.String()
			}
			if inst, ok := instances[key]; ok {
				mismatches = append(mismatches, checkInstance(&p, key, instance, inst)...)
			}
		}

		if len(data.Roles) != 0 {
			wantRoles := append([]string{}, data.Roles...)
			for _, name := range wantRoles {
				if _, err := api.ParseRole(name); err != nil {
					return nil, err
				}
			}
			sort.Strings(wantRoles)
			gotRoles := roleNames(roles[string(token)])
			if diff := cmp.Diff(wantRoles, gotRoles); diff != "" {
				mismatches = append(mismatches, fmt.Sprintf("roles of %s (-want +got):\n%s", token, diff))
			}
		}
		if checked(data.LastNonce) {
			if lastNonce := p.u64(data.LastNonce); lastNonce != lastNonces[string(token)] {
				mismatches = append(mismatches, fmt.Sprintf("last nonce of %s: want %d, got %d", token, lastNonce, lastNonces[string(token)]))
			}
		}
	}
	if err := p.err(); err != nil {
		return nil, err
	}

	if diff := cmp.Diff(wantBalances, gotBalances); diff != "" {
		mismatches = append(mismatches, "dct balances (-want +got):\n"+diff)
	}
	return mismatches, nil
}

func checkInstance(p *exprParser, key string, want *Instance, got *ledger.TokenInstance) []string {
	var mismatches []string
	if checked(want.Attributes) {
		if attributes := p.bytes(want.Attributes); !bytes.Equal(attributes, got.Attributes) {
			mismatches = append(mismatches, fmt.Sprintf("attributes of %s: want %s, got %s", key, hexString(attributes), hexString(got.Attributes)))
		}
	}
	if checked(want.Creator) {
		if creator := p.address(want.Creator); creator != got.Creator {
			mismatches = append(mismatches, fmt.Sprintf("creator of %s: want %s, got %s", key, creator, got.Creator))
		}
	}
	if checked(want.Royalties) {
		if royalties := p.u64(want.Royalties); royalties != got.Royalties {
			mismatches = append(mismatches, fmt.Sprintf("royalties of %s: want %d, got %d", key, royalties, got.Royalties))
		}
	}
	if checked(want.Hash) {
		if hash := p.bytes(want.Hash); !bytes.Equal(hash, got.Hash) {
			mismatches = append(mismatches, fmt.Sprintf("hash of %s: want %s, got %s", key, hexString(hash), hexString(got.Hash)))
		}
	}
	if checked(want.URI) {
		uri := p.bytes(want.URI)
		if len(got.URIs) == 0 || !bytes.Equal(uri, got.URIs[0]) {
			mismatches = append(mismatches, fmt.Sprintf("uri of %s: want %q, got %q", key, uri, got.URIs))
		}
	}
	return mismatches
}

func instanceKey(token api.TokenIdentifier, nonce uint64) string {
	return fmt.Sprintf("%s/%d", token, nonce)
}

func roleNames(roles []api.DCTLocalRole) []string {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = role.Name()
	}
	sort.Strings(names)
	return names
}

func hexString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return "0x" + hex.EncodeToString(b)
}

// checkExpect compares the outcome of a transaction with [expect].
func checkExpect(vi ValueInterpreter, expect *Expect, result *vm.TxResult) error {
	if expect == nil {
		return nil
	}
	var mismatches []string
	p := exprParser{vi: vi}
	if checked(expect.Status) {
		if status := p.u64(expect.Status); status != result.Status {
			mismatches = append(mismatches, fmt.Sprintf("status: want %d, got %d (%s)", status, result.Status, result.Message))
		}
	}
	if checked(expect.Message) {
		if message := p.bytes(expect.Message); string(message) != result.Message {
			mismatches = append(mismatches, fmt.Sprintf("message: want %q, got %q", message, result.Message))
		}
	}
	if expect.Out != nil {
		want := make([]string, len(expect.Out))
		got := make([]string, len(result.Out))
		for i, out := range result.Out {
			got[i] = hexString(out)
		}
		for i, out := range expect.Out {
			if out.IsAny() && i < len(got) {
				want[i] = got[i]
				continue
			}
			want[i] = hexString(p.bytes(out))
		}
		if diff := cmp.Diff(want, got); diff != "" {
			mismatches = append(mismatches, "out (-want +got):\n"+diff)
		}
	}
	if expect.Logs != nil && !expect.Logs.Any {
		mismatches = append(mismatches, checkLogs(&p, expect.Logs.Entries, result.Logs)...)
	}
	if err := p.err(); err != nil {
		return err
	}
	if len(mismatches) != 0 {
		return fmt.Errorf("%w:\n%s", ErrTxExpectation, strings.Join(mismatches, "\n"))
	}
	return nil
}

type logView struct {
	Address    string
	Identifier string
	Topics     []string
	Data       string
}

func checkLogs(p *exprParser, want []LogEntry, got []vm.Log) []string {
	gotViews := make([]logView, len(got))
	for i, entry := range got {
		gotViews[i] = logView{
			Address:    hexString(entry.Address.Bytes()),
			Identifier: hexString(entry.Identifier),
			Data:       hexString(entry.Data),
		}
		for _, topic := range entry.Topics {
			gotViews[i].Topics = append(gotViews[i].Topics, hexString(topic))
		}
	}

	wantViews := make([]logView, len(want))
	for i, entry := range want {
		var actual logView
		if i < len(gotViews) {
			actual = gotViews[i]
		}
		wantViews[i] = logView{
			Address:    wildcard(p, entry.Address, actual.Address),
			Identifier: wildcard(p, entry.Identifier, actual.Identifier),
			Data:       wildcard(p, entry.Data, actual.Data),
		}
		for j, topic := range entry.Topics {
			actualTopic := ""
			if j < len(actual.Topics) {
				actualTopic = actual.Topics[j]
			}
			wantViews[i].Topics = append(wantViews[i].Topics, wildcard(p, topic, actualTopic))
		}
	}
	if diff := cmp.Diff(wantViews, gotViews); diff != "" {
		return []string{"logs (-want +got):\n" + diff}
	}
	return nil
}

// wildcard resolves "*" to the actual value.
func wildcard(p *exprParser, want Value, actual string) string {
	if want.IsAny() {
		return actual
	}
	return hexString(p.bytes(want))
}
