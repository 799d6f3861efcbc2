package events

import (
	"artcontest/core/types"
	"artcontest/crypto"
)

const (
	// TypeTransfer is emitted for every ledger balance movement.
	TypeTransfer = "bank.transfer"
	// TypeMint is emitted when genesis allocations credit a balance.
	TypeMint = "bank.mint"
)

type Transfer struct {
	Asset  string
	From   crypto.Address
	To     crypto.Address
	Amount uint64
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	attrs := map[string]string{}
	if asset := normalizeAsset(e.Asset); asset != "" {
		attrs["asset"] = asset
	}
	attrs["from"] = e.From.String()
	attrs["to"] = e.To.String()
	attrs["amount"] = formatAmount(e.Amount)
	return &types.Event{Type: TypeTransfer, Attributes: attrs}
}

type Mint struct {
	Asset  string
	To     crypto.Address
	Amount uint64
}

func (Mint) EventType() string { return TypeMint }

func (e Mint) Event() *types.Event {
	return &types.Event{Type: TypeMint, Attributes: map[string]string{
		"asset":  normalizeAsset(e.Asset),
		"to":     e.To.String(),
		"amount": formatAmount(e.Amount),
	}}
}
