package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"stakehub/storage"
)

const balancePrefix = "token/balance/"

var (
	ErrInvalidAmount     = errors.New("token ledger: amount must be positive")
	ErrInsufficientFunds = errors.New("token ledger: insufficient funds")
)

// Ledger tracks balances for any number of token identifiers in a key-value
// database. Transfers are serialized so a debit and its matching credit are
// never observed apart.
type Ledger struct {
	mu sync.Mutex
	db storage.Database
}

// NewLedger wraps the given database.
func NewLedger(db storage.Database) *Ledger {
	return &Ledger{db: db}
}

func balanceKey(token, addr common.Address) []byte {
	key := append([]byte(balancePrefix), token.Bytes()...)
	key = append(key, '/')
	return append(key, addr.Bytes()...)
}

func (l *Ledger) load(token, addr common.Address) (*big.Int, error) {
	raw, err := l.db.Get(balanceKey(token, addr))
	if err != nil {
		return nil, fmt.Errorf("token ledger: load balance: %w", err)
	}
	return new(big.Int).SetBytes(raw), nil
}

func (l *Ledger) store(token, addr common.Address, balance *big.Int) error {
	return l.db.Put(balanceKey(token, addr), balance.Bytes())
}

// BalanceOf returns the balance held by addr for the given token.
func (l *Ledger) BalanceOf(token, addr common.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(token, addr)
}

// Mint credits addr with freshly issued units. Used for genesis funding.
func (l *Ledger) Mint(token, addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, err := l.load(token, addr)
	if err != nil {
		return err
	}
	return l.store(token, addr, balance.Add(balance, amount))
}

// Transfer moves amount from one account to another. Zero-amount transfers
// succeed without touching storage.
func (l *Ledger) Transfer(token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fromBalance, err := l.load(token, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	toBalance, err := l.load(token, to)
	if err != nil {
		return err
	}
	if err := l.store(token, from, fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}
	return l.store(token, to, toBalance.Add(toBalance, amount))
}

// VaultGateway adapts the ledger to the staking engine's token movement
// interface: TransferIn pulls funds into the module custody account and
// TransferOut releases them.
type VaultGateway struct {
	ledger  *Ledger
	custody common.Address
}

// NewVaultGateway builds a gateway routing through the custody address.
func NewVaultGateway(ledger *Ledger, custody common.Address) *VaultGateway {
	return &VaultGateway{ledger: ledger, custody: custody}
}

// Custody returns the module custody address.
func (g *VaultGateway) Custody() common.Address { return g.custody }

// TransferIn moves amount from the caller into module custody.
func (g *VaultGateway) TransferIn(token, from common.Address, amount *big.Int) error {
	return g.ledger.Transfer(token, from, g.custody, amount)
}

// TransferOut moves amount from module custody to the recipient.
func (g *VaultGateway) TransferOut(token, to common.Address, amount *big.Int) error {
	return g.ledger.Transfer(token, g.custody, to, amount)
}
