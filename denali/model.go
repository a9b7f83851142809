// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package denali

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Step names.
const (
	StepSetState        = "setState"
	StepCheckState      = "checkState"
	StepSCCall          = "scCall"
	StepSCQuery         = "scQuery"
	StepSCDeploy        = "scDeploy"
	StepTransfer        = "transfer"
	StepValidatorReward = "validatorReward"
	StepDumpState       = "dumpState"
	StepExternalSteps   = "externalSteps"
)

const (
	// anyValue matches whatever is found.
	anyValue = "*"
	// otherAccounts in a checkState allows accounts that are not listed.
	otherAccounts = "+"
)

// Scenario is the root of a .scen.json file.
type Scenario struct {
	Name        string  `json:"name,omitempty"`
	Comment     string  `json:"comment,omitempty"`
	CheckGas    bool    `json:"checkGas,omitempty"`
	GasSchedule string  `json:"gasSchedule,omitempty"`
	Steps       []*Step `json:"steps"`
}

// Step is any scenario step. Which fields are meaningful depends on the
// step name.
type Step struct {
	Step    string `json:"step"`
	ID      string `json:"id,omitempty"`
	TxID    string `json:"txId,omitempty"`
	Comment string `json:"comment,omitempty"`

	// externalSteps
	Path string `json:"path,omitempty"`

	// setState and checkState
	Accounts          *Accounts    `json:"accounts,omitempty"`
	NewAddresses      []NewAddress `json:"newAddresses,omitempty"`
	PreviousBlockInfo *BlockInfo   `json:"previousBlockInfo,omitempty"`
	CurrentBlockInfo  *BlockInfo   `json:"currentBlockInfo,omitempty"`

	// transactions
	Tx     *Tx     `json:"tx,omitempty"`
	Expect *Expect `json:"expect,omitempty"`
}

// Value is a value expression. In files it is either a string or a list of
// strings that are concatenated. Numbers are accepted as decimal
// expressions.
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*v = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	case b[0] == '[':
		var parts []Value
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		strs := make([]string, len(parts))
		for i, part := range parts {
			strs[i] = string(part)
		}
		*v = Value(strings.Join(strs, concatSeparator))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("%w: %s", errBadValue, b)
		}
		*v = Value(n.String())
		return nil
	}
}

func (v Value) IsAny() bool { return v == anyValue }

// Accounts maps address expressions to accounts. In checkState, AllowOthers
// is set by the "+" entry.
type Accounts struct {
	AllowOthers bool
	Entries     map[string]*Account
}

func (a *Accounts) UnmarshalJSON(b []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	a.Entries = make(map[string]*Account, len(raw))
	for key, value := range raw {
		if key == otherAccounts {
			a.AllowOthers = true
			continue
		}
		acc := &Account{}
		if err := json.Unmarshal(value, acc); err != nil {
			return fmt.Errorf("account %s: %w", key, err)
		}
		a.Entries[key] = acc
	}
	return nil
}

func (a *Accounts) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(a.Entries)+1)
	for key, acc := range a.Entries {
		out[key] = acc
	}
	if a.AllowOthers {
		out[otherAccounts] = ""
	}
	return json.Marshal(out)
}

// Keys returns the account expressions in sorted order.
func (a *Accounts) Keys() []string {
	keys := make([]string, 0, len(a.Entries))
	for key := range a.Entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Account is used both to set and to check state. Fields left empty are not
// set or not checked.
type Account struct {
	Comment  string      `json:"comment,omitempty"`
	Nonce    Value       `json:"nonce,omitempty"`
	Balance  Value       `json:"balance,omitempty"`
	DCT      *DCTMap     `json:"dct,omitempty"`
	Username Value       `json:"username,omitempty"`
	Storage  *StorageMap `json:"storage,omitempty"`
	Code     Value       `json:"code,omitempty"`
	Owner    Value       `json:"owner,omitempty"`
}

// StorageMap is "*" or a map of key to value expressions.
type StorageMap struct {
	Any     bool
	Entries map[string]Value
}

func (s *StorageMap) UnmarshalJSON(b []byte) error {
	if isAnyJSON(b) {
		s.Any = true
		return nil
	}
	return json.Unmarshal(b, &s.Entries)
}

func (s *StorageMap) MarshalJSON() ([]byte, error) {
	if s.Any {
		return json.Marshal(anyValue)
	}
	if s.Entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.Entries)
}

// DCTMap is "*" or a map of token identifier expressions to token data.
type DCTMap struct {
	Any     bool
	Entries map[string]*DCTData
}

func (d *DCTMap) UnmarshalJSON(b []byte) error {
	if isAnyJSON(b) {
		d.Any = true
		return nil
	}
	return json.Unmarshal(b, &d.Entries)
}

func (d *DCTMap) MarshalJSON() ([]byte, error) {
	if d.Any {
		return json.Marshal(anyValue)
	}
	if d.Entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.Entries)
}

// DCTData is either the compact form, a fungible balance, or the full form
// listing instances, roles and the last created nonce.
type DCTData struct {
	Instances []*Instance `json:"instances,omitempty"`
	LastNonce Value       `json:"lastNonce,omitempty"`
	Roles     []string    `json:"roles,omitempty"`
	Frozen    Value       `json:"frozen,omitempty"`
}

func (d *DCTData) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var balance Value
		if err := json.Unmarshal(b, &balance); err != nil {
			return err
		}
		d.Instances = []*Instance{{Nonce: "0", Balance: balance}}
		return nil
	}
	type plain DCTData
	return json.Unmarshal(b, (*plain)(d))
}

// Instance is the balance and metadata of one token nonce.
type Instance struct {
	Nonce      Value `json:"nonce"`
	Balance    Value `json:"balance"`
	Creator    Value `json:"creator,omitempty"`
	Royalties  Value `json:"royalties,omitempty"`
	Hash       Value `json:"hash,omitempty"`
	URI        Value `json:"uri,omitempty"`
	Attributes Value `json:"attributes,omitempty"`
}

type NewAddress struct {
	CreatorAddress Value `json:"creatorAddress"`
	CreatorNonce   Value `json:"creatorNonce"`
	NewAddress     Value `json:"newAddress"`
}

type BlockInfo struct {
	BlockTimestamp  Value `json:"blockTimestamp,omitempty"`
	BlockNonce      Value `json:"blockNonce,omitempty"`
	BlockRound      Value `json:"blockRound,omitempty"`
	BlockEpoch      Value `json:"blockEpoch,omitempty"`
	BlockRandomSeed Value `json:"blockRandomSeed,omitempty"`
}

// Tx is the transaction of scCall, scQuery, scDeploy, transfer and
// validatorReward steps.
type Tx struct {
	From         Value         `json:"from,omitempty"`
	To           Value         `json:"to,omitempty"`
	Value        Value         `json:"value,omitempty"`
	MoaxValue    Value         `json:"moaxValue,omitempty"`
	DCTValue     []DCTTransfer `json:"dctValue,omitempty"`
	Function     string        `json:"function,omitempty"`
	ContractCode Value         `json:"contractCode,omitempty"`
	Arguments    []Value       `json:"arguments,omitempty"`
	GasLimit     Value         `json:"gasLimit,omitempty"`
	GasPrice     Value         `json:"gasPrice,omitempty"`
}

// moaxValue accepts both spellings of the MOAX amount.
func (tx *Tx) moaxValue() Value {
	if tx.MoaxValue != "" {
		return tx.MoaxValue
	}
	return tx.Value
}

type DCTTransfer struct {
	TokenIdentifier Value `json:"tokenIdentifier"`
	Nonce           Value `json:"nonce,omitempty"`
	Value           Value `json:"value"`
}

// Expect is the expected outcome of a transaction. Fields left empty are not
// checked. Gas and refund are accepted but never checked.
type Expect struct {
	Out     []Value `json:"out,omitempty"`
	Status  Value   `json:"status,omitempty"`
	Message Value   `json:"message,omitempty"`
	Logs    *Logs   `json:"logs,omitempty"`
	Gas     Value   `json:"gas,omitempty"`
	Refund  Value   `json:"refund,omitempty"`
}

// Logs is "*" or the exact list of expected logs.
type Logs struct {
	Any     bool
	Entries []LogEntry
}

func (l *Logs) UnmarshalJSON(b []byte) error {
	if isAnyJSON(b) {
		l.Any = true
		return nil
	}
	return json.Unmarshal(b, &l.Entries)
}

func (l *Logs) MarshalJSON() ([]byte, error) {
	if l.Any {
		return json.Marshal(anyValue)
	}
	if l.Entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Entries)
}

type LogEntry struct {
	Address    Value   `json:"address"`
	Identifier Value   `json:"identifier"`
	Topics     []Value `json:"topics"`
	Data       Value   `json:"data"`
}

func isAnyJSON(b []byte) bool {
	var s string
	return json.Unmarshal(b, &s) == nil && s == anyValue
}
