package contest

import (
	"fmt"
	"strings"
	"time"

	"artcontest/core/events"
	"artcontest/core/types"
	"artcontest/crypto"
)

// engineState is the keyed record store. The Insert methods create a record
// only if none exists under the same key and report whether they did; they
// are the mutual-exclusion point for the one-per-principal records.
type engineState interface {
	ContestCounterGet() (*Counter, bool, error)
	ContestCounterPut(counter *Counter) error
	ContestGet(id uint64) (*Contest, bool, error)
	ContestPut(contest *Contest) error
	ContestArtworkInsert(artwork *Artwork) (bool, error)
	ContestArtworkGet(contestID, artworkID uint64) (*Artwork, bool, error)
	ContestArtworkByArtist(contestID uint64, artist crypto.Address) (*Artwork, bool, error)
	ContestVoteInsert(vote *VoteData) (bool, error)
	ContestVoteGet(contestID uint64, voter crypto.Address) (*VoteData, bool, error)
	ContestVaultInsert(vault *Vault) (bool, error)
	ContestVaultPut(vault *Vault) error
	ContestVaultGet(addr crypto.Address) (*Vault, bool, error)
	ContestClaimInsert(claim *Claim) (bool, error)
	ContestClaimGet(contestID uint64, role ClaimRole, claimant crypto.Address) (*Claim, bool, error)
}

// assetLedger is the trusted transfer primitive. Transfer either fully
// succeeds or fails without side effects.
type assetLedger interface {
	Balance(asset string, owner crypto.Address) (uint64, error)
	Decimals(asset string) (uint8, error)
	Transfer(asset string, from, to crypto.Address, amount uint64) error
}

// Engine implements the contest lifecycle, custody and settlement rules. It
// assumes the host runs one call at a time and discards every write of a
// call that returns an error.
type Engine struct {
	state   engineState
	ledger  assetLedger
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine creates a contest engine with a no-op emitter and the wall clock.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the asset transfer primitive.
func (e *Engine) SetLedger(ledger assetLedger) { e.ledger = ledger }

// SetNowFunc overrides the time source. Primarily intended for tests to
// provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(contestEvent{evt: event})
}

func (e *Engine) now() uint64 {
	ts := time.Now().Unix()
	if e != nil && e.nowFn != nil {
		ts = e.nowFn()
	}
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.ledger == nil {
		return errNilLedger
	}
	return nil
}

func (e *Engine) loadContest(id uint64) (*Contest, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	c, ok, err := e.state.ContestGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrContestNotFound, id)
	}
	return c, nil
}

func (e *Engine) loadArtwork(contestID, artworkID uint64) (*Artwork, error) {
	a, ok, err := e.state.ContestArtworkGet(contestID, artworkID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: contest %d artwork %d", ErrArtworkNotFound, contestID, artworkID)
	}
	return a, nil
}

// Launch validates the contest definition, assigns the next contest id,
// opens the prize vault, hands its authority to the derived signer and
// escrows the prize.
func (e *Engine) Launch(owner crypto.Address, params LaunchParams) (*Contest, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	counter, err := e.loadCounter()
	if err != nil {
		return nil, err
	}
	balance, err := e.ledger.Balance(params.PrizeAsset, owner)
	if err != nil {
		return nil, err
	}
	if balance < params.PrizeAmount {
		return nil, fmt.Errorf("%w: balance %d below prize %d", ErrInsufficientFunds, balance, params.PrizeAmount)
	}
	id, err := e.nextContestID(counter)
	if err != nil {
		return nil, err
	}
	contest := &Contest{
		ID:             id,
		Owner:          owner,
		PrizeAsset:     params.PrizeAsset,
		PrizeAmount:    params.PrizeAmount,
		ArtistSharePct: params.ArtistSharePct,
		Submission:     params.Submission,
		Voting:         params.Voting,
		Title:          params.Title,
		Link:           params.Link,
		ArtworkCount:   0,
		VoteTally:      []uint64{},
		PrizeVault:     crypto.PrizeVaultAddress(id),
		CreatedAt:      e.now(),
	}
	vault, err := e.openVault(VaultPrize, id, crypto.Address{}, params.PrizeAsset, owner)
	if err != nil {
		return nil, err
	}
	if err := e.state.ContestPut(contest); err != nil {
		return nil, err
	}
	if err := e.delegateVault(vault); err != nil {
		return nil, err
	}
	if err := e.deposit(vault, owner, params.PrizeAmount); err != nil {
		return nil, err
	}
	e.emit(NewLaunchedEvent(contest))
	return contest.Clone(), nil
}

// Submit registers the artist's artwork and escrows its NFT. Each artist may
// submit once per contest.
func (e *Engine) Submit(artist crypto.Address, contestID uint64, nftAsset string) (*Artwork, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	contest, err := e.loadContest(contestID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if !contest.Submission.Contains(now) {
		return nil, fmt.Errorf("%w: now %d outside [%d, %d]", ErrSubmissionClosed, now, contest.Submission.Start, contest.Submission.End)
	}
	if _, exists, err := e.state.ContestArtworkByArtist(contestID, artist); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrDuplicateSubmission
	}
	if err := e.checkNFT(artist, contest, nftAsset); err != nil {
		return nil, err
	}
	artwork := &Artwork{
		ID:          contest.ArtworkCount,
		ContestID:   contestID,
		Artist:      artist,
		NFTAsset:    nftAsset,
		NFTVault:    crypto.NFTVaultAddress(contestID, artist),
		SubmittedAt: now,
	}
	inserted, err := e.state.ContestArtworkInsert(artwork)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrDuplicateSubmission
	}
	contest.VoteTally = append(contest.VoteTally, 0)
	contest.ArtworkCount++
	if err := e.state.ContestPut(contest); err != nil {
		return nil, err
	}
	vault, err := e.openVault(VaultNFT, contestID, artist, nftAsset, artist)
	if err != nil {
		return nil, err
	}
	if err := e.delegateVault(vault); err != nil {
		return nil, err
	}
	if err := e.deposit(vault, artist, NFTUnit); err != nil {
		return nil, err
	}
	e.emit(NewSubmittedEvent(artwork))
	return artwork.Clone(), nil
}

func (e *Engine) checkNFT(artist crypto.Address, contest *Contest, nftAsset string) error {
	if strings.TrimSpace(nftAsset) == "" || strings.EqualFold(strings.TrimSpace(nftAsset), strings.TrimSpace(contest.PrizeAsset)) {
		return fmt.Errorf("%w: asset %q", ErrInvalidNFT, nftAsset)
	}
	decimals, err := e.ledger.Decimals(nftAsset)
	if err != nil {
		return err
	}
	if decimals != 0 {
		return fmt.Errorf("%w: asset %s has %d decimals", ErrInvalidNFT, nftAsset, decimals)
	}
	held, err := e.ledger.Balance(nftAsset, artist)
	if err != nil {
		return err
	}
	if held != NFTUnit {
		return fmt.Errorf("%w: artist holds %d units of %s", ErrInvalidNFT, held, nftAsset)
	}
	return nil
}

// Vote records the voter's single ballot for artworkID and increments its
// tally.
func (e *Engine) Vote(voter crypto.Address, contestID, artworkID uint64) (*VoteData, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	contest, err := e.loadContest(contestID)
	if err != nil {
		return nil, err
	}
	if artworkID >= contest.ArtworkCount || artworkID >= uint64(len(contest.VoteTally)) {
		return nil, fmt.Errorf("%w: %d (contest has %d)", ErrInvalidArtwork, artworkID, contest.ArtworkCount)
	}
	now := e.now()
	if !contest.Voting.Contains(now) {
		return nil, fmt.Errorf("%w: now %d outside [%d, %d]", ErrVotingClosed, now, contest.Voting.Start, contest.Voting.End)
	}
	if contest.VoteTally[artworkID] == ^uint64(0) {
		return nil, fmt.Errorf("%w: tally for artwork %d", ErrArithmeticOverflow, artworkID)
	}
	vote := &VoteData{
		ContestID:      contestID,
		Voter:          voter,
		VotedArtworkID: artworkID,
		CastAt:         now,
	}
	inserted, err := e.state.ContestVoteInsert(vote)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrDuplicateVote
	}
	contest.VoteTally[artworkID]++
	if err := e.state.ContestPut(contest); err != nil {
		return nil, err
	}
	e.emit(NewVoteCastEvent(vote, contest.VoteTally[artworkID]))
	return vote.Clone(), nil
}

// Contest returns the stored contest.
func (e *Engine) Contest(id uint64) (*Contest, error) {
	return e.loadContest(id)
}

// Artwork returns an artwork by its contest-scoped id.
func (e *Engine) Artwork(contestID, artworkID uint64) (*Artwork, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.loadArtwork(contestID, artworkID)
}

// ArtworkByArtist returns the artist's submission to a contest.
func (e *Engine) ArtworkByArtist(contestID uint64, artist crypto.Address) (*Artwork, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	a, ok, err := e.state.ContestArtworkByArtist(contestID, artist)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: contest %d artist %s", ErrArtworkNotFound, contestID, artist)
	}
	return a, nil
}

// VoteOf returns the ballot cast by voter in a contest.
func (e *Engine) VoteOf(contestID uint64, voter crypto.Address) (*VoteData, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	v, ok, err := e.state.ContestVoteGet(contestID, voter)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: contest %d voter %s", ErrVoteNotFound, contestID, voter)
	}
	return v, nil
}

// Winner tallies the contest and returns the current leader.
func (e *Engine) Winner(contestID uint64) (Winner, error) {
	contest, err := e.loadContest(contestID)
	if err != nil {
		return Winner{}, err
	}
	return WinningArtwork(contest)
}

// ClaimStatus returns the claim record of claimant for role, if any.
func (e *Engine) ClaimStatus(contestID uint64, role ClaimRole, claimant crypto.Address) (*Claim, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	return e.state.ContestClaimGet(contestID, role, claimant)
}
