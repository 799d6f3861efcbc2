package genesis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"artcontest/crypto"
)

// GenesisSpec lists the assets registered and the balances minted when a
// fresh data directory is first opened.
type GenesisSpec struct {
	NativeTokens []NativeTokenSpec            `json:"nativeTokens" toml:"NativeTokens"`
	Alloc        map[string]map[string]string `json:"alloc" toml:"Alloc"` // addr -> token -> amount
}

// NativeTokenSpec describes one ledger asset. NFTs use zero decimals and a
// single unit allocation.
type NativeTokenSpec struct {
	Symbol   string `json:"symbol" toml:"Symbol"`
	Name     string `json:"name" toml:"Name"`
	Decimals uint8  `json:"decimals" toml:"Decimals"`
}

// Allocation is a validated, parsed Alloc entry.
type Allocation struct {
	Account crypto.Address
	Symbol  string
	Amount  uint64
}

// LoadGenesisSpec reads and validates a JSON genesis file. Unknown fields are
// rejected.
func LoadGenesisSpec(path string) (*GenesisSpec, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("genesis spec path must be provided")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis spec %q: %w", path, err)
	}
	var spec GenesisSpec
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode genesis spec %q: %w", path, err)
	}
	if _, err := spec.Allocations(); err != nil {
		return nil, fmt.Errorf("invalid genesis spec %q: %w", path, err)
	}
	return &spec, nil
}

// Validate checks token uniqueness and every allocation.
func (s *GenesisSpec) Validate() error {
	_, err := s.Allocations()
	return err
}

func (s *GenesisSpec) tokenSymbols() (map[string]struct{}, error) {
	symbols := make(map[string]struct{}, len(s.NativeTokens))
	for i, token := range s.NativeTokens {
		key := strings.ToUpper(strings.TrimSpace(token.Symbol))
		if key == "" {
			return nil, fmt.Errorf("nativeToken[%d]: symbol must be provided", i)
		}
		if _, exists := symbols[key]; exists {
			return nil, fmt.Errorf("nativeToken[%d]: duplicate symbol %q", i, token.Symbol)
		}
		symbols[key] = struct{}{}
	}
	return symbols, nil
}

// Allocations validates Alloc and returns it flattened in deterministic
// (account, symbol) order.
func (s *GenesisSpec) Allocations() ([]Allocation, error) {
	if s == nil {
		return nil, nil
	}
	symbols, err := s.tokenSymbols()
	if err != nil {
		return nil, err
	}
	accounts := make([]string, 0, len(s.Alloc))
	for account := range s.Alloc {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	var out []Allocation
	for _, account := range accounts {
		addr, err := crypto.ParseAddress(account)
		if err != nil {
			return nil, fmt.Errorf("alloc[%q]: %w", account, err)
		}
		tokenAlloc := s.Alloc[account]
		tokens := make([]string, 0, len(tokenAlloc))
		for symbol := range tokenAlloc {
			tokens = append(tokens, symbol)
		}
		sort.Strings(tokens)
		seen := make(map[string]struct{}, len(tokens))
		for _, symbol := range tokens {
			symKey := strings.ToUpper(strings.TrimSpace(symbol))
			if _, ok := symbols[symKey]; !ok {
				return nil, fmt.Errorf("alloc[%q][%q]: undefined token", account, symbol)
			}
			if _, dup := seen[symKey]; dup {
				return nil, fmt.Errorf("alloc[%q]: duplicate token %q", account, symbol)
			}
			seen[symKey] = struct{}{}
			amount, err := strconv.ParseUint(strings.TrimSpace(tokenAlloc[symbol]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("alloc[%q][%q]: invalid amount %q", account, symbol, tokenAlloc[symbol])
			}
			out = append(out, Allocation{Account: addr, Symbol: symKey, Amount: amount})
		}
	}
	return out, nil
}
