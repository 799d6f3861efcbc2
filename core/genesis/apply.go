package genesis

import (
	"fmt"

	"artcontest/crypto"
	"artcontest/native/bank"
)

type assetRegistrar interface {
	RegisterAsset(symbol, name string, decimals uint8) (*bank.Asset, error)
	Mint(symbol string, to crypto.Address, amount uint64) error
}

// Apply registers every native token and mints the allocations. The caller
// runs it inside a single state transition so a failure leaves no trace.
func Apply(spec *GenesisSpec, ledger assetRegistrar) error {
	if spec == nil {
		return nil
	}
	allocations, err := spec.Allocations()
	if err != nil {
		return err
	}
	for _, token := range spec.NativeTokens {
		if _, err := ledger.RegisterAsset(token.Symbol, token.Name, token.Decimals); err != nil {
			return fmt.Errorf("register %s: %w", token.Symbol, err)
		}
	}
	for _, alloc := range allocations {
		if err := ledger.Mint(alloc.Symbol, alloc.Account, alloc.Amount); err != nil {
			return fmt.Errorf("mint %s to %s: %w", alloc.Symbol, alloc.Account, err)
		}
	}
	return nil
}
