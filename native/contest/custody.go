package contest

import (
	"fmt"

	"artcontest/crypto"
)

// derivedSigner returns the only address allowed to authorize transfers out
// of a vault with the given role and seeds.
func derivedSigner(role VaultRole, contestID uint64, artist crypto.Address) (crypto.Address, error) {
	switch role {
	case VaultPrize:
		return crypto.PrizeVaultSigner(contestID), nil
	case VaultNFT:
		return crypto.NFTVaultSigner(contestID, artist), nil
	default:
		return crypto.Address{}, fmt.Errorf("%w: unknown vault role %d", ErrVaultAuthority, role)
	}
}

func vaultAddress(role VaultRole, contestID uint64, artist crypto.Address) (crypto.Address, error) {
	switch role {
	case VaultPrize:
		return crypto.PrizeVaultAddress(contestID), nil
	case VaultNFT:
		return crypto.NFTVaultAddress(contestID, artist), nil
	default:
		return crypto.Address{}, fmt.Errorf("%w: unknown vault role %d", ErrVaultAuthority, role)
	}
}

// openVault creates the custody record controlled by the depositor. The
// vault address is derived, so a second vault for the same seeds is
// rejected.
func (e *Engine) openVault(role VaultRole, contestID uint64, artist crypto.Address, asset string, depositor crypto.Address) (*Vault, error) {
	addr, err := vaultAddress(role, contestID, artist)
	if err != nil {
		return nil, err
	}
	vault := &Vault{
		Role:      role,
		ContestID: contestID,
		Artist:    artist,
		Address:   addr,
		Asset:     asset,
		Depositor: depositor,
	}
	inserted, err := e.state.ContestVaultInsert(vault)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, fmt.Errorf("%w: vault %s already exists", ErrVaultAuthority, addr)
	}
	return vault, nil
}

// delegateVault moves control of the vault from its depositor to the
// program-derived signer.
func (e *Engine) delegateVault(vault *Vault) error {
	signer, err := derivedSigner(vault.Role, vault.ContestID, vault.Artist)
	if err != nil {
		return err
	}
	if err := vault.Delegate(signer); err != nil {
		return err
	}
	if err := e.state.ContestVaultPut(vault); err != nil {
		return err
	}
	e.emit(NewVaultDelegatedEvent(vault))
	return nil
}

// deposit moves funds from the depositor into a delegated vault.
func (e *Engine) deposit(vault *Vault, from crypto.Address, amount uint64) error {
	if !vault.Delegated() {
		return fmt.Errorf("%w: vault %s not delegated", ErrVaultAuthority, vault.Address)
	}
	return e.ledger.Transfer(vault.Asset, from, vault.Address, amount)
}

// release is the only path by which assets leave a vault. It is authorized
// by the derived signer recomputed from the vault's seeds.
func (e *Engine) release(vault *Vault, to crypto.Address, amount uint64) error {
	signer, err := derivedSigner(vault.Role, vault.ContestID, vault.Artist)
	if err != nil {
		return err
	}
	if vault.Authority() != signer {
		return fmt.Errorf("%w: vault %s controlled by %s", ErrVaultAuthority, vault.Address, vault.Authority())
	}
	return e.ledger.Transfer(vault.Asset, vault.Address, to, amount)
}

func (e *Engine) loadVault(addr crypto.Address) (*Vault, error) {
	vault, ok, err := e.state.ContestVaultGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, addr)
	}
	return vault, nil
}

// Vault returns a stored vault record by address.
func (e *Engine) Vault(addr crypto.Address) (*Vault, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.loadVault(addr)
}
