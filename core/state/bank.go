package state

import (
	"fmt"

	"artcontest/crypto"
	"artcontest/native/bank"
)

type storedAsset struct {
	Symbol   string
	Name     string
	Decimals uint8
	Supply   uint64
}

// BankAssetGet loads asset metadata by normalized symbol.
func (m *Manager) BankAssetGet(symbol string) (*bank.Asset, bool, error) {
	var stored storedAsset
	ok, err := m.KVGet(BankAssetKey(symbol), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &bank.Asset{
		Symbol:   stored.Symbol,
		Name:     stored.Name,
		Decimals: stored.Decimals,
		Supply:   stored.Supply,
	}, true, nil
}

// BankAssetPut stores asset metadata.
func (m *Manager) BankAssetPut(asset *bank.Asset) error {
	if asset == nil {
		return fmt.Errorf("bank: nil asset")
	}
	return m.KVPut(BankAssetKey(asset.Symbol), &storedAsset{
		Symbol:   asset.Symbol,
		Name:     asset.Name,
		Decimals: asset.Decimals,
		Supply:   asset.Supply,
	})
}

// BankBalanceGet returns the owner's balance, zero when unset.
func (m *Manager) BankBalanceGet(symbol string, owner crypto.Address) (uint64, error) {
	var amount uint64
	if _, err := m.KVGet(BankBalanceKey(symbol, owner), &amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// BankBalancePut stores the owner's balance. Zero balances are removed.
func (m *Manager) BankBalancePut(symbol string, owner crypto.Address, amount uint64) error {
	if amount == 0 {
		return m.KVDelete(BankBalanceKey(symbol, owner))
	}
	return m.KVPut(BankBalanceKey(symbol, owner), amount)
}
