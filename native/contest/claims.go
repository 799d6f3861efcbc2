package contest

import (
	"fmt"

	"artcontest/crypto"
)

// settlementContext holds the records every claim path re-derives.
type settlementContext struct {
	contest *Contest
	artwork *Artwork
	winner  Winner
}

// prepareSettlement loads the contest and artwork, checks that voting has
// closed and recomputes the winner from the tally. The winner is never cached
// so claims stay correct in any order.
func (e *Engine) prepareSettlement(contestID, artworkID uint64) (*settlementContext, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	contest, err := e.loadContest(contestID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if now <= contest.Voting.End {
		return nil, fmt.Errorf("%w: voting ends at %d", ErrVotingNotClosed, contest.Voting.End)
	}
	winner, err := WinningArtwork(contest)
	if err != nil {
		return nil, err
	}
	artwork, err := e.loadArtwork(contestID, artworkID)
	if err != nil {
		return nil, err
	}
	if artwork.ContestID != contest.ID {
		return nil, fmt.Errorf("%w: artwork belongs to contest %d", ErrArtworkMismatch, artwork.ContestID)
	}
	return &settlementContext{contest: contest, artwork: artwork, winner: winner}, nil
}

func (s *settlementContext) requireWinner() error {
	if s.winner.Votes == 0 {
		return ErrNoVotesForWinner
	}
	if s.artwork.ID != s.winner.ArtworkID {
		return fmt.Errorf("%w: artwork %d, winner %d", ErrNotWinner, s.artwork.ID, s.winner.ArtworkID)
	}
	return nil
}

// markClaimed persists the claimed flag before any transfer happens. A second
// insert for the same (contest, role, claimant) fails with ErrAlreadyClaimed.
func (e *Engine) markClaimed(claim *Claim) error {
	if _, exists, err := e.state.ContestClaimGet(claim.ContestID, claim.Role, claim.Claimant); err != nil {
		return err
	} else if exists {
		return ErrAlreadyClaimed
	}
	inserted, err := e.state.ContestClaimInsert(claim)
	if err != nil {
		return err
	}
	if !inserted {
		return ErrAlreadyClaimed
	}
	return nil
}

// ClaimAsArtist pays the artist share of the prize pool to the artist of the
// winning artwork.
func (e *Engine) ClaimAsArtist(artist crypto.Address, contestID, artworkID uint64) (*Claim, error) {
	sc, err := e.prepareSettlement(contestID, artworkID)
	if err != nil {
		return nil, err
	}
	if sc.artwork.Artist != artist {
		return nil, ErrNotArtist
	}
	if err := sc.requireWinner(); err != nil {
		return nil, err
	}
	amount, err := ArtistPayout(sc.contest)
	if err != nil {
		return nil, err
	}
	vault, err := e.loadVault(sc.contest.PrizeVault)
	if err != nil {
		return nil, err
	}
	claim := &Claim{
		ContestID: contestID,
		Role:      ClaimArtist,
		Claimant:  artist,
		ArtworkID: sc.artwork.ID,
		Asset:     vault.Asset,
		Amount:    amount,
		ClaimedAt: e.now(),
	}
	if err := e.markClaimed(claim); err != nil {
		return nil, err
	}
	if err := e.release(vault, artist, amount); err != nil {
		return nil, err
	}
	e.emit(NewClaimedEvent(claim))
	return claim, nil
}

// ClaimAsVoter pays one equal share of the voters' pool to a voter who backed
// the winning artwork.
func (e *Engine) ClaimAsVoter(voter crypto.Address, contestID, artworkID uint64) (*Claim, error) {
	sc, err := e.prepareSettlement(contestID, artworkID)
	if err != nil {
		return nil, err
	}
	vote, ok, err := e.state.ContestVoteGet(contestID, voter)
	if err != nil {
		return nil, err
	}
	if !ok || vote.Voter != voter {
		return nil, ErrNotVoter
	}
	if vote.VotedArtworkID != sc.artwork.ID {
		return nil, fmt.Errorf("%w: voted for %d, claimed %d", ErrArtworkMismatch, vote.VotedArtworkID, sc.artwork.ID)
	}
	if err := sc.requireWinner(); err != nil {
		return nil, err
	}
	amount, err := VoterPayout(sc.contest, sc.winner.Votes)
	if err != nil {
		return nil, err
	}
	vault, err := e.loadVault(sc.contest.PrizeVault)
	if err != nil {
		return nil, err
	}
	claim := &Claim{
		ContestID: contestID,
		Role:      ClaimVoter,
		Claimant:  voter,
		ArtworkID: sc.artwork.ID,
		Asset:     vault.Asset,
		Amount:    amount,
		ClaimedAt: e.now(),
	}
	if err := e.markClaimed(claim); err != nil {
		return nil, err
	}
	if err := e.release(vault, voter, amount); err != nil {
		return nil, err
	}
	e.emit(NewClaimedEvent(claim))
	return claim, nil
}

// ClaimAsOwner transfers the winning artwork's NFT to the contest owner.
func (e *Engine) ClaimAsOwner(owner crypto.Address, contestID, artworkID uint64) (*Claim, error) {
	sc, err := e.prepareSettlement(contestID, artworkID)
	if err != nil {
		return nil, err
	}
	if sc.contest.Owner != owner {
		return nil, ErrNotOwner
	}
	if err := sc.requireWinner(); err != nil {
		return nil, err
	}
	vault, err := e.loadVault(sc.artwork.NFTVault)
	if err != nil {
		return nil, err
	}
	claim := &Claim{
		ContestID: contestID,
		Role:      ClaimOwner,
		Claimant:  owner,
		ArtworkID: sc.artwork.ID,
		Asset:     vault.Asset,
		Amount:    NFTUnit,
		ClaimedAt: e.now(),
	}
	if err := e.markClaimed(claim); err != nil {
		return nil, err
	}
	if err := e.release(vault, owner, NFTUnit); err != nil {
		return nil, err
	}
	e.emit(NewClaimedEvent(claim))
	return claim, nil
}
