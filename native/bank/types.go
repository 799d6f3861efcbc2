package bank

import (
	"fmt"
	"strings"
)

const maxSymbolLength = 32

// Asset describes a fungible or non-fungible ledger asset. An asset with zero
// decimals and a supply of one is an NFT.
type Asset struct {
	Symbol   string
	Name     string
	Decimals uint8
	Supply   uint64
}

// Clone returns a copy of the asset metadata.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// NonFungible reports whether the asset is indivisible.
func (a *Asset) NonFungible() bool {
	return a != nil && a.Decimals == 0
}

// NormalizeSymbol trims and upper-cases an asset symbol, rejecting empty or
// oversized values.
func NormalizeSymbol(symbol string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(symbol))
	if trimmed == "" {
		return "", fmt.Errorf("bank: asset symbol required")
	}
	if len(trimmed) > maxSymbolLength {
		return "", fmt.Errorf("bank: asset symbol %q exceeds %d characters", trimmed, maxSymbolLength)
	}
	return trimmed, nil
}
