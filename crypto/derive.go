package crypto

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

// ProgramID namespaces every derived address so that they can never collide
// with a key-backed principal address.
var ProgramID = []byte("artcontest/v1")

// Role tags used to derive vault and signer addresses.
const (
	TagPrizeVault          = "prize_vault"
	TagPrizeVaultAuthority = "prize_vault_authority"
	TagNFTVault            = "nft_vault"
	TagNFTVaultAuthority   = "nft_vault_authority"
)

// DeriveAddress returns the last 20 bytes of keccak256(ProgramID || tag ||
// seeds...). The result has no private key; only program logic that knows
// the seeds can act for it.
func DeriveAddress(tag string, seeds ...[]byte) Address {
	parts := make([][]byte, 0, len(seeds)+2)
	parts = append(parts, ProgramID, []byte(tag))
	parts = append(parts, seeds...)
	hash := crypto.Keccak256(parts...)
	var addr Address
	copy(addr[:], hash[len(hash)-AddressLength:])
	return addr
}

// Uint64Seed encodes v big-endian for use as a derivation seed.
func Uint64Seed(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

// PrizeVaultAddress is the custody account of a contest's prize pool.
func PrizeVaultAddress(contestID uint64) Address {
	return DeriveAddress(TagPrizeVault, Uint64Seed(contestID))
}

// PrizeVaultSigner is the program-derived authority over a prize vault.
func PrizeVaultSigner(contestID uint64) Address {
	return DeriveAddress(TagPrizeVaultAuthority, Uint64Seed(contestID))
}

// NFTVaultAddress is the custody account of one artist's submission.
func NFTVaultAddress(contestID uint64, artist Address) Address {
	return DeriveAddress(TagNFTVault, Uint64Seed(contestID), artist[:])
}

// NFTVaultSigner is the program-derived authority over an NFT vault.
func NFTVaultSigner(contestID uint64, artist Address) Address {
	return DeriveAddress(TagNFTVaultAuthority, Uint64Seed(contestID), artist[:])
}
