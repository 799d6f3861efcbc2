package bank

import (
	"errors"
	"fmt"
	"math/bits"

	"artcontest/core/events"
	"artcontest/crypto"
)

var (
	errNilState = errors.New("bank: state not configured")

	// ErrInsufficientBalance is returned when a transfer source cannot cover
	// the requested amount.
	ErrInsufficientBalance = errors.New("bank: insufficient balance")
	// ErrUnknownAsset is returned for operations on unregistered assets.
	ErrUnknownAsset = errors.New("bank: unknown asset")
	// ErrAssetExists is returned when registering a symbol twice.
	ErrAssetExists = errors.New("bank: asset already registered")
	// ErrSupplyOverflow is returned when minting would overflow the supply.
	ErrSupplyOverflow = errors.New("bank: supply overflow")
)

type ledgerState interface {
	BankAssetGet(symbol string) (*Asset, bool, error)
	BankAssetPut(asset *Asset) error
	BankBalanceGet(symbol string, owner crypto.Address) (uint64, error)
	BankBalancePut(symbol string, owner crypto.Address, amount uint64) error
}

// Ledger implements the asset transfer primitive the contest engine relies
// on. Every call either applies all of its balance updates or none of them.
type Ledger struct {
	state   ledgerState
	emitter events.Emitter
}

// NewLedger creates a ledger with a no-op emitter.
func NewLedger() *Ledger {
	return &Ledger{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the ledger.
func (l *Ledger) SetState(state ledgerState) { l.state = state }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

func (l *Ledger) emit(evt events.Event) {
	if l == nil || l.emitter == nil || evt == nil {
		return
	}
	l.emitter.Emit(evt)
}

// RegisterAsset records a new asset with zero supply.
func (l *Ledger) RegisterAsset(symbol, name string, decimals uint8) (*Asset, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if _, ok, err := l.state.BankAssetGet(normalized); err != nil {
		return nil, err
	} else if ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetExists, normalized)
	}
	asset := &Asset{Symbol: normalized, Name: name, Decimals: decimals}
	if err := l.state.BankAssetPut(asset); err != nil {
		return nil, err
	}
	return asset.Clone(), nil
}

// Asset returns the metadata for a registered asset.
func (l *Ledger) Asset(symbol string) (*Asset, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	asset, ok, err := l.state.BankAssetGet(normalized)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, normalized)
	}
	return asset, nil
}

// Decimals returns the precision of a registered asset.
func (l *Ledger) Decimals(symbol string) (uint8, error) {
	asset, err := l.Asset(symbol)
	if err != nil {
		return 0, err
	}
	return asset.Decimals, nil
}

// Mint credits amount units of symbol to the recipient and grows the supply.
// It is only used to seed genesis allocations.
func (l *Ledger) Mint(symbol string, to crypto.Address, amount uint64) error {
	asset, err := l.Asset(symbol)
	if err != nil {
		return err
	}
	supply, carry := bits.Add64(asset.Supply, amount, 0)
	if carry != 0 {
		return ErrSupplyOverflow
	}
	balance, err := l.state.BankBalanceGet(asset.Symbol, to)
	if err != nil {
		return err
	}
	asset.Supply = supply
	if err := l.state.BankAssetPut(asset); err != nil {
		return err
	}
	// The balance cannot overflow when the supply did not.
	if err := l.state.BankBalancePut(asset.Symbol, to, balance+amount); err != nil {
		return err
	}
	l.emit(events.Mint{Asset: asset.Symbol, To: to, Amount: amount})
	return nil
}

// Balance returns the amount of symbol held by owner.
func (l *Ledger) Balance(symbol string, owner crypto.Address) (uint64, error) {
	asset, err := l.Asset(symbol)
	if err != nil {
		return 0, err
	}
	return l.state.BankBalanceGet(asset.Symbol, owner)
}

// Transfer moves amount units of symbol from one address to another. Zero
// amounts and self transfers are accepted and leave balances untouched.
func (l *Ledger) Transfer(symbol string, from, to crypto.Address, amount uint64) error {
	asset, err := l.Asset(symbol)
	if err != nil {
		return err
	}
	fromBal, err := l.state.BankBalanceGet(asset.Symbol, from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return fmt.Errorf("%w: %s has %d %s, needs %d", ErrInsufficientBalance, from, fromBal, asset.Symbol, amount)
	}
	if amount == 0 || from == to {
		l.emit(events.Transfer{Asset: asset.Symbol, From: from, To: to, Amount: amount})
		return nil
	}
	toBal, err := l.state.BankBalanceGet(asset.Symbol, to)
	if err != nil {
		return err
	}
	if err := l.state.BankBalancePut(asset.Symbol, from, fromBal-amount); err != nil {
		return err
	}
	if err := l.state.BankBalancePut(asset.Symbol, to, toBal+amount); err != nil {
		return err
	}
	l.emit(events.Transfer{Asset: asset.Symbol, From: from, To: to, Amount: amount})
	return nil
}
