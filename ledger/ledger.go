// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ava-labs/avalanchego/database"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

var (
	ErrAccountExists  = errors.New("account already exists")
	ErrAccountKind    = errors.New("account kind does not match its address")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrNotDCT         = errors.New("MOAX is not a DCT token")
)

// CreateUserAccount registers a user account holding [balance].
func (l *Ledger) CreateUserAccount(addr api.Address, balance *big.Int) (*Account, error) {
	if addr.IsSmartContract() {
		return nil, fmt.Errorf("%w: %s is a smart contract address", ErrAccountKind, addr)
	}
	exists, err := l.HasAccount(addr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	acc := &Account{Address: addr, Balance: copyAmount(balance)}
	return acc, l.PutAccount(acc)
}

// CreateContractAccount registers a contract running [code]. Re-creating an
// existing contract replaces its code and owner but keeps its balance and
// storage.
func (l *Ledger) CreateContractAccount(addr api.Address, balance *big.Int, code []byte, owner api.Address) (*Account, error) {
	if !addr.IsSmartContract() {
		return nil, fmt.Errorf("%w: %s is not a smart contract address", ErrAccountKind, addr)
	}
	acc, err := l.GetAccount(addr)
	switch err {
	case nil:
		if !acc.IsSmartContract() {
			return nil, fmt.Errorf("%w: %s holds no code", ErrAccountKind, addr)
		}
		acc.Code = code
		acc.Owner = owner
	case database.ErrNotFound:
		acc = &Account{Address: addr, Balance: copyAmount(balance), Code: code, Owner: owner}
	default:
		return nil, err
	}
	return acc, l.PutAccount(acc)
}

// getOrNewAccount returns the account at [addr], or a fresh empty one if it
// was never referenced.
func (l *Ledger) getOrNewAccount(addr api.Address) (*Account, error) {
	acc, err := l.GetAccount(addr)
	if err == database.ErrNotFound {
		return &Account{Address: addr, Balance: new(big.Int)}, nil
	}
	return acc, err
}

func (l *Ledger) GetBalance(addr api.Address) (*big.Int, error) {
	acc, err := l.getOrNewAccount(addr)
	if err != nil {
		return nil, err
	}
	return acc.Balance, nil
}

func (l *Ledger) SetBalance(addr api.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return ErrNegativeAmount
	}
	acc, err := l.getOrNewAccount(addr)
	if err != nil {
		return err
	}
	acc.Balance = copyAmount(balance)
	return l.PutAccount(acc)
}

func (l *Ledger) AddBalance(addr api.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	acc, err := l.getOrNewAccount(addr)
	if err != nil {
		return err
	}
	acc.Balance = new(big.Int).Add(acc.Balance, amount)
	return l.PutAccount(acc)
}

// SubBalance fails with api.ErrInsufficientFunds, leaving the balance
// untouched, when [amount] exceeds it.
func (l *Ledger) SubBalance(addr api.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	acc, err := l.getOrNewAccount(addr)
	if err != nil {
		return err
	}
	if acc.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s MOAX, needs %s", api.ErrInsufficientFunds, addr, acc.Balance, amount)
	}
	acc.Balance = new(big.Int).Sub(acc.Balance, amount)
	return l.PutAccount(acc)
}

// TransferMoax debits [from] before crediting [to].
func (l *Ledger) TransferMoax(from, to api.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := l.SubBalance(from, amount); err != nil {
		return err
	}
	return l.AddBalance(to, amount)
}

func (l *Ledger) IncrementNonce(addr api.Address) error {
	acc, err := l.getOrNewAccount(addr)
	if err != nil {
		return err
	}
	acc.Nonce++
	return l.PutAccount(acc)
}

// PutAccountFields overwrites a whole account, creating it if needed.
func (l *Ledger) PutAccountFields(acc *Account) error {
	if acc.Balance == nil {
		acc.Balance = new(big.Int)
	}
	if acc.Balance.Sign() < 0 {
		return ErrNegativeAmount
	}
	return l.PutAccount(acc)
}

func (l *Ledger) GetDCTBalance(addr api.Address, token api.TokenIdentifier, nonce uint64) (*big.Int, error) {
	inst, err := l.GetTokenInstance(addr, token, nonce)
	if err != nil {
		return nil, err
	}
	return inst.Amount, nil
}

// SetDCTBalance overwrites the amount of a token instance and keeps its
// metadata.
func (l *Ledger) SetDCTBalance(addr api.Address, token api.TokenIdentifier, nonce uint64, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	inst, err := l.GetTokenInstance(addr, token, nonce)
	if err != nil {
		return err
	}
	inst.Amount = copyAmount(amount)
	return l.putInstance(addr, token, nonce, inst)
}

func (l *Ledger) AddDCTBalance(addr api.Address, token api.TokenIdentifier, nonce uint64, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	inst, err := l.GetTokenInstance(addr, token, nonce)
	if err != nil {
		return err
	}
	inst.Amount = new(big.Int).Add(inst.Amount, amount)
	return l.putInstance(addr, token, nonce, inst)
}

// SubDCTBalance fails with api.ErrInsufficientFunds, leaving the balance
// untouched, when [amount] exceeds it.
func (l *Ledger) SubDCTBalance(addr api.Address, token api.TokenIdentifier, nonce uint64, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	inst, err := l.GetTokenInstance(addr, token, nonce)
	if err != nil {
		return err
	}
	if inst.Amount.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s %s (nonce %d), needs %s", api.ErrInsufficientFunds, addr, inst.Amount, token, nonce, amount)
	}
	inst.Amount = new(big.Int).Sub(inst.Amount, amount)
	return l.putInstance(addr, token, nonce, inst)
}

// TransferDCT moves [amount] of a token instance along with its metadata.
func (l *Ledger) TransferDCT(from, to api.Address, token api.TokenIdentifier, nonce uint64, amount *big.Int) error {
	src, err := l.GetTokenInstance(from, token, nonce)
	if err != nil {
		return err
	}
	if err := l.SubDCTBalance(from, token, nonce, amount); err != nil {
		return err
	}
	dst, err := l.GetTokenInstance(to, token, nonce)
	if err != nil {
		return err
	}
	if dst.Amount.Sign() == 0 {
		src.Amount = dst.Amount
		dst = src
	}
	dst.Amount = new(big.Int).Add(dst.Amount, amount)
	return l.putInstance(to, token, nonce, dst)
}

// CreateNFT allocates the next nonce of (addr, token), starting at 1, and
// credits [amount] of the new instance to [addr].
func (l *Ledger) CreateNFT(addr api.Address, token api.TokenIdentifier, amount *big.Int, inst *TokenInstance) (uint64, error) {
	lastNonce, err := l.GetLastNonce(addr, token)
	if err != nil {
		return 0, err
	}
	nonce := lastNonce + 1
	if err := l.SetLastNonce(addr, token, nonce); err != nil {
		return 0, err
	}
	created := *inst
	created.Amount = copyAmount(amount)
	return nonce, l.putInstance(addr, token, nonce, &created)
}

// HasRole reports whether [addr] was granted [role] on [token].
func (l *Ledger) HasRole(addr api.Address, token api.TokenIdentifier, role api.DCTLocalRole) (bool, error) {
	roles, err := l.GetRoles(addr, token)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

func (l *Ledger) putInstance(addr api.Address, token api.TokenIdentifier, nonce uint64, inst *TokenInstance) error {
	if token.IsMoax() {
		return ErrNotDCT
	}
	// Touch the account so token holders always show up in Accounts.
	exists, err := l.HasAccount(addr)
	if err != nil {
		return err
	}
	if !exists {
		if err := l.PutAccount(&Account{Address: addr, Balance: new(big.Int)}); err != nil {
			return err
		}
	}
	return l.PutTokenInstance(addr, token, nonce, inst)
}

func copyAmount(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
