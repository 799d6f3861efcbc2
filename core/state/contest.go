package state

import (
	"fmt"

	"artcontest/crypto"
	"artcontest/native/contest"
)

type storedCounter struct {
	Initialized  bool
	ContestCount uint64
}

type storedContest struct {
	ID             uint64
	Owner          [20]byte
	PrizeAsset     string
	PrizeAmount    uint64
	ArtistSharePct uint8
	SubmitStart    uint64
	SubmitEnd      uint64
	VoteStart      uint64
	VoteEnd        uint64
	Title          string
	Link           string
	ArtworkCount   uint64
	VoteTally      []uint64
	PrizeVault     [20]byte
	CreatedAt      uint64
}

func newStoredContest(c *contest.Contest) *storedContest {
	return &storedContest{
		ID:             c.ID,
		Owner:          c.Owner,
		PrizeAsset:     c.PrizeAsset,
		PrizeAmount:    c.PrizeAmount,
		ArtistSharePct: c.ArtistSharePct,
		SubmitStart:    c.Submission.Start,
		SubmitEnd:      c.Submission.End,
		VoteStart:      c.Voting.Start,
		VoteEnd:        c.Voting.End,
		Title:          c.Title,
		Link:           c.Link,
		ArtworkCount:   c.ArtworkCount,
		VoteTally:      append([]uint64{}, c.VoteTally...),
		PrizeVault:     c.PrizeVault,
		CreatedAt:      c.CreatedAt,
	}
}

func (s *storedContest) toContest() (*contest.Contest, error) {
	if uint64(len(s.VoteTally)) != s.ArtworkCount {
		return nil, fmt.Errorf("contest %d: tally has %d entries for %d artworks", s.ID, len(s.VoteTally), s.ArtworkCount)
	}
	return &contest.Contest{
		ID:             s.ID,
		Owner:          crypto.Address(s.Owner),
		PrizeAsset:     s.PrizeAsset,
		PrizeAmount:    s.PrizeAmount,
		ArtistSharePct: s.ArtistSharePct,
		Submission:     contest.Window{Start: s.SubmitStart, End: s.SubmitEnd},
		Voting:         contest.Window{Start: s.VoteStart, End: s.VoteEnd},
		Title:          s.Title,
		Link:           s.Link,
		ArtworkCount:   s.ArtworkCount,
		VoteTally:      append([]uint64{}, s.VoteTally...),
		PrizeVault:     crypto.Address(s.PrizeVault),
		CreatedAt:      s.CreatedAt,
	}, nil
}

type storedArtwork struct {
	ID          uint64
	ContestID   uint64
	Artist      [20]byte
	NFTAsset    string
	NFTVault    [20]byte
	SubmittedAt uint64
}

func (s *storedArtwork) toArtwork() *contest.Artwork {
	return &contest.Artwork{
		ID:          s.ID,
		ContestID:   s.ContestID,
		Artist:      crypto.Address(s.Artist),
		NFTAsset:    s.NFTAsset,
		NFTVault:    crypto.Address(s.NFTVault),
		SubmittedAt: s.SubmittedAt,
	}
}

type storedVote struct {
	ContestID      uint64
	Voter          [20]byte
	VotedArtworkID uint64
	CastAt         uint64
}

type storedVault struct {
	Role      uint8
	ContestID uint64
	Artist    [20]byte
	Address   [20]byte
	Asset     string
	Depositor [20]byte
	Signer    [20]byte
}

type storedClaim struct {
	ContestID uint64
	Role      uint8
	Claimant  [20]byte
	ArtworkID uint64
	Asset     string
	Amount    uint64
	ClaimedAt uint64
}

// ContestCounterGet loads the registry singleton.
func (m *Manager) ContestCounterGet() (*contest.Counter, bool, error) {
	var stored storedCounter
	ok, err := m.KVGet(ContestCounterKey(), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &contest.Counter{Initialized: stored.Initialized, ContestCount: stored.ContestCount}, true, nil
}

// ContestCounterPut stores the registry singleton.
func (m *Manager) ContestCounterPut(counter *contest.Counter) error {
	if counter == nil {
		return fmt.Errorf("contest: nil counter")
	}
	return m.KVPut(ContestCounterKey(), &storedCounter{Initialized: counter.Initialized, ContestCount: counter.ContestCount})
}

// ContestGet loads a contest record.
func (m *Manager) ContestGet(id uint64) (*contest.Contest, bool, error) {
	var stored storedContest
	ok, err := m.KVGet(ContestRecordKey(id), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	record, err := stored.toContest()
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// ContestPut stores a contest record.
func (m *Manager) ContestPut(c *contest.Contest) error {
	if c == nil {
		return fmt.Errorf("contest: nil record")
	}
	return m.KVPut(ContestRecordKey(c.ID), newStoredContest(c))
}

// ContestArtworkInsert creates the artwork together with its per-artist
// index entry. It reports false when the artist or the artwork id is taken.
func (m *Manager) ContestArtworkInsert(a *contest.Artwork) (bool, error) {
	if a == nil {
		return false, fmt.Errorf("contest: nil artwork")
	}
	if exists, err := m.KVGet(ContestArtworkKey(a.ContestID, a.ID), nil); err != nil || exists {
		return false, err
	}
	inserted, err := m.KVInsert(ContestArtistKey(a.ContestID, a.Artist), a.ID)
	if err != nil || !inserted {
		return false, err
	}
	record := &storedArtwork{
		ID:          a.ID,
		ContestID:   a.ContestID,
		Artist:      a.Artist,
		NFTAsset:    a.NFTAsset,
		NFTVault:    a.NFTVault,
		SubmittedAt: a.SubmittedAt,
	}
	if err := m.KVPut(ContestArtworkKey(a.ContestID, a.ID), record); err != nil {
		return false, err
	}
	return true, nil
}

// ContestArtworkGet loads an artwork by contest-scoped id.
func (m *Manager) ContestArtworkGet(contestID, artworkID uint64) (*contest.Artwork, bool, error) {
	var stored storedArtwork
	ok, err := m.KVGet(ContestArtworkKey(contestID, artworkID), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return stored.toArtwork(), true, nil
}

// ContestArtworkByArtist resolves the artist's submission through the index.
func (m *Manager) ContestArtworkByArtist(contestID uint64, artist crypto.Address) (*contest.Artwork, bool, error) {
	var artworkID uint64
	ok, err := m.KVGet(ContestArtistKey(contestID, artist), &artworkID)
	if err != nil || !ok {
		return nil, ok, err
	}
	return m.ContestArtworkGet(contestID, artworkID)
}

// ContestVoteInsert creates the voter's ballot if none exists.
func (m *Manager) ContestVoteInsert(v *contest.VoteData) (bool, error) {
	if v == nil {
		return false, fmt.Errorf("contest: nil vote")
	}
	return m.KVInsert(ContestVoteKey(v.ContestID, v.Voter), &storedVote{
		ContestID:      v.ContestID,
		Voter:          v.Voter,
		VotedArtworkID: v.VotedArtworkID,
		CastAt:         v.CastAt,
	})
}

// ContestVoteGet loads the voter's ballot.
func (m *Manager) ContestVoteGet(contestID uint64, voter crypto.Address) (*contest.VoteData, bool, error) {
	var stored storedVote
	ok, err := m.KVGet(ContestVoteKey(contestID, voter), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &contest.VoteData{
		ContestID:      stored.ContestID,
		Voter:          crypto.Address(stored.Voter),
		VotedArtworkID: stored.VotedArtworkID,
		CastAt:         stored.CastAt,
	}, true, nil
}

func newStoredVault(v *contest.Vault) *storedVault {
	return &storedVault{
		Role:      uint8(v.Role),
		ContestID: v.ContestID,
		Artist:    v.Artist,
		Address:   v.Address,
		Asset:     v.Asset,
		Depositor: v.Depositor,
		Signer:    v.Signer,
	}
}

// ContestVaultInsert creates a custody record if its address is unused.
func (m *Manager) ContestVaultInsert(v *contest.Vault) (bool, error) {
	if v == nil {
		return false, fmt.Errorf("contest: nil vault")
	}
	return m.KVInsert(ContestVaultKey(v.Address), newStoredVault(v))
}

// ContestVaultPut overwrites a custody record.
func (m *Manager) ContestVaultPut(v *contest.Vault) error {
	if v == nil {
		return fmt.Errorf("contest: nil vault")
	}
	return m.KVPut(ContestVaultKey(v.Address), newStoredVault(v))
}

// ContestVaultGet loads a custody record by address.
func (m *Manager) ContestVaultGet(addr crypto.Address) (*contest.Vault, bool, error) {
	var stored storedVault
	ok, err := m.KVGet(ContestVaultKey(addr), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &contest.Vault{
		Role:      contest.VaultRole(stored.Role),
		ContestID: stored.ContestID,
		Artist:    crypto.Address(stored.Artist),
		Address:   crypto.Address(stored.Address),
		Asset:     stored.Asset,
		Depositor: crypto.Address(stored.Depositor),
		Signer:    crypto.Address(stored.Signer),
	}, true, nil
}

// ContestClaimInsert persists a claimed flag if none exists for the same
// contest, role and claimant.
func (m *Manager) ContestClaimInsert(c *contest.Claim) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("contest: nil claim")
	}
	return m.KVInsert(ContestClaimKey(c.ContestID, uint8(c.Role), c.Claimant), &storedClaim{
		ContestID: c.ContestID,
		Role:      uint8(c.Role),
		Claimant:  c.Claimant,
		ArtworkID: c.ArtworkID,
		Asset:     c.Asset,
		Amount:    c.Amount,
		ClaimedAt: c.ClaimedAt,
	})
}

// ContestClaimGet loads a claimed flag.
func (m *Manager) ContestClaimGet(contestID uint64, role contest.ClaimRole, claimant crypto.Address) (*contest.Claim, bool, error) {
	var stored storedClaim
	ok, err := m.KVGet(ContestClaimKey(contestID, uint8(role), claimant), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &contest.Claim{
		ContestID: stored.ContestID,
		Role:      contest.ClaimRole(stored.Role),
		Claimant:  crypto.Address(stored.Claimant),
		ArtworkID: stored.ArtworkID,
		Asset:     stored.Asset,
		Amount:    stored.Amount,
		ClaimedAt: stored.ClaimedAt,
	}, true, nil
}
