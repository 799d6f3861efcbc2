package contest

import (
	"fmt"

	"github.com/holiman/uint256"
)

const percentDenominator = 100

// WinningArtwork scans the tally left to right and keeps the first strictly
// greater count, so the lowest artwork id wins a tie. A contest without
// submissions has no winner.
func WinningArtwork(c *Contest) (Winner, error) {
	if c == nil || c.ArtworkCount == 0 || len(c.VoteTally) == 0 {
		return Winner{}, ErrNoSubmissions
	}
	var best Winner
	for i, votes := range c.VoteTally {
		if i == 0 || votes > best.Votes {
			best = Winner{ArtworkID: uint64(i), Votes: votes}
		}
	}
	return best, nil
}

// ArtistPayout returns floor(prize * pct / 100).
func ArtistPayout(c *Contest) (uint64, error) {
	if c == nil {
		return 0, ErrContestNotFound
	}
	if c.ArtistSharePct > MaxArtistSharePct {
		return 0, ErrInvalidPercentage
	}
	share, err := percentOf(c.PrizeAmount, c.ArtistSharePct)
	if err != nil {
		return 0, err
	}
	return share.Uint64(), nil
}

// VoterPayout returns floor(floor(prize * (100 - pct) / 100) / winnerVotes),
// the amount each voter of the winning artwork receives.
func VoterPayout(c *Contest, winnerVotes uint64) (uint64, error) {
	if c == nil {
		return 0, ErrContestNotFound
	}
	if c.ArtistSharePct > MaxArtistSharePct {
		return 0, ErrInvalidPercentage
	}
	if winnerVotes == 0 {
		return 0, ErrNoVotesForWinner
	}
	pool, err := percentOf(c.PrizeAmount, MaxArtistSharePct-c.ArtistSharePct)
	if err != nil {
		return 0, err
	}
	pool.Div(pool, uint256.NewInt(winnerVotes))
	return pool.Uint64(), nil
}

// percentOf computes floor(amount * pct / 100). The product must fit in 64
// bits; the result then fits as well.
func percentOf(amount uint64, pct uint8) (*uint256.Int, error) {
	product := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(uint64(pct)))
	if !product.IsUint64() {
		return nil, fmt.Errorf("%w: %d * %d", ErrArithmeticOverflow, amount, pct)
	}
	return product.Div(product, uint256.NewInt(percentDenominator)), nil
}
