package state

import (
	"encoding/binary"
	"strings"
)

var (
	contestCounterKeyBytes = []byte("contest/counter")
	contestRecordPrefix    = []byte("contest/record/")
	contestArtworkPrefix   = []byte("contest/artwork/")
	contestArtistPrefix    = []byte("contest/artist/")
	contestVotePrefix      = []byte("contest/vote/")
	contestVaultPrefix     = []byte("contest/vault/")
	contestClaimPrefix     = []byte("contest/claim/")
	bankAssetPrefix        = []byte("bank/asset/")
	bankBalancePrefix      = []byte("bank/balance/")
)

func joinKey(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, p := range parts {
		size += len(p)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, prefix...)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}

func uint64Bytes(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

// ContestCounterKey returns the key of the registry singleton.
func ContestCounterKey() []byte {
	return append([]byte(nil), contestCounterKeyBytes...)
}

// ContestRecordKey returns the key of a contest record.
func ContestRecordKey(id uint64) []byte {
	return joinKey(contestRecordPrefix, uint64Bytes(id))
}

// ContestArtworkKey returns the key of an artwork scoped to its contest.
func ContestArtworkKey(contestID, artworkID uint64) []byte {
	return joinKey(contestArtworkPrefix, uint64Bytes(contestID), uint64Bytes(artworkID))
}

// ContestArtistKey returns the key of the one-per-artist submission index.
func ContestArtistKey(contestID uint64, artist [20]byte) []byte {
	return joinKey(contestArtistPrefix, uint64Bytes(contestID), artist[:])
}

// ContestVoteKey returns the key of the one-per-voter ballot.
func ContestVoteKey(contestID uint64, voter [20]byte) []byte {
	return joinKey(contestVotePrefix, uint64Bytes(contestID), voter[:])
}

// ContestVaultKey returns the key of a custody record.
func ContestVaultKey(addr [20]byte) []byte {
	return joinKey(contestVaultPrefix, addr[:])
}

// ContestClaimKey returns the key of a claimed flag.
func ContestClaimKey(contestID uint64, role uint8, claimant [20]byte) []byte {
	return joinKey(contestClaimPrefix, uint64Bytes(contestID), []byte{role}, claimant[:])
}

// BankAssetKey returns the key of an asset's metadata.
func BankAssetKey(symbol string) []byte {
	return joinKey(bankAssetPrefix, []byte(strings.ToUpper(strings.TrimSpace(symbol))))
}

// BankBalanceKey returns the key of an owner's balance of symbol.
func BankBalanceKey(symbol string, owner [20]byte) []byte {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	return joinKey(bankBalancePrefix, []byte(normalized), []byte{':'}, owner[:])
}
