package contest

import (
	"fmt"
	"strings"

	"artcontest/crypto"
)

const (
	// MaxArtistSharePct is the upper bound of the artist's share of the pool.
	MaxArtistSharePct = 100
	// MaxTitleLength bounds the contest title in bytes.
	MaxTitleLength = 128
	// MaxLinkLength bounds the project link in bytes.
	MaxLinkLength = 256
	// NFTUnit is the amount escrowed per submission.
	NFTUnit = 1
)

// Counter is the registry singleton handing out contest identifiers.
type Counter struct {
	Initialized  bool
	ContestCount uint64
}

// Window is an inclusive [Start, End] interval of unix seconds.
type Window struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Valid reports whether the window is well ordered.
func (w Window) Valid() bool { return w.Start <= w.End }

// Contains reports whether ts falls inside the window bounds.
func (w Window) Contains(ts uint64) bool { return w.Start <= ts && ts <= w.End }

// Contest is the per-contest record. VoteTally always has ArtworkCount
// entries, indexed by artwork id.
type Contest struct {
	ID             uint64         `json:"id"`
	Owner          crypto.Address `json:"owner"`
	PrizeAsset     string         `json:"prizeAsset"`
	PrizeAmount    uint64         `json:"prizeAmount"`
	ArtistSharePct uint8          `json:"artistSharePct"`
	Submission     Window         `json:"submissionWindow"`
	Voting         Window         `json:"votingWindow"`
	Title          string         `json:"title"`
	Link           string         `json:"link"`
	ArtworkCount   uint64         `json:"artworkCount"`
	VoteTally      []uint64       `json:"voteTally"`
	PrizeVault     crypto.Address `json:"prizeVault"`
	CreatedAt      uint64         `json:"createdAt"`
}

// Clone returns a deep copy of the contest so callers can mutate it freely.
func (c *Contest) Clone() *Contest {
	if c == nil {
		return nil
	}
	clone := *c
	clone.VoteTally = append([]uint64{}, c.VoteTally...)
	return &clone
}

// Artwork is a single submission. It is never mutated after creation.
type Artwork struct {
	ID          uint64         `json:"id"`
	ContestID   uint64         `json:"contestId"`
	Artist      crypto.Address `json:"artist"`
	NFTAsset    string         `json:"nftAsset"`
	NFTVault    crypto.Address `json:"nftVault"`
	SubmittedAt uint64         `json:"submittedAt"`
}

// Clone returns a copy of the artwork.
func (a *Artwork) Clone() *Artwork {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// VoteData is the per-(contest, voter) ballot. Its existence is the
// double-vote guard and the eligibility proof for voter claims.
type VoteData struct {
	ContestID      uint64         `json:"contestId"`
	Voter          crypto.Address `json:"voter"`
	VotedArtworkID uint64         `json:"votedArtworkId"`
	CastAt         uint64         `json:"castAt"`
}

// Clone returns a copy of the ballot.
func (v *VoteData) Clone() *VoteData {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}

// VaultRole distinguishes prize pools from NFT custody accounts.
type VaultRole uint8

const (
	VaultPrize VaultRole = iota + 1
	VaultNFT
)

func (r VaultRole) String() string {
	switch r {
	case VaultPrize:
		return "prize"
	case VaultNFT:
		return "nft"
	default:
		return fmt.Sprintf("vault(%d)", uint8(r))
	}
}

// Vault is a custody account. Control starts with the depositor and moves to
// the program-derived Signer exactly once; Signer is never reassigned.
type Vault struct {
	Role      VaultRole      `json:"role"`
	ContestID uint64         `json:"contestId"`
	Artist    crypto.Address `json:"artist"`
	Address   crypto.Address `json:"address"`
	Asset     string         `json:"asset"`
	Depositor crypto.Address `json:"depositor"`
	Signer    crypto.Address `json:"signer"`
}

// Clone returns a copy of the vault.
func (v *Vault) Clone() *Vault {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}

// Delegated reports whether control has moved to the derived signer.
func (v *Vault) Delegated() bool { return v != nil && !v.Signer.IsZero() }

// Authority returns the address currently controlling the vault.
func (v *Vault) Authority() crypto.Address {
	if v.Delegated() {
		return v.Signer
	}
	return v.Depositor
}

// Delegate assigns the controlling signer. It succeeds only once.
func (v *Vault) Delegate(signer crypto.Address) error {
	if v == nil {
		return fmt.Errorf("%w: nil vault", ErrVaultAuthority)
	}
	if signer.IsZero() {
		return fmt.Errorf("%w: empty signer", ErrVaultAuthority)
	}
	if v.Delegated() {
		return fmt.Errorf("%w: vault %s already delegated", ErrVaultAuthority, v.Address)
	}
	v.Signer = signer
	return nil
}

// ClaimRole identifies which settlement path a claim took.
type ClaimRole uint8

const (
	ClaimArtist ClaimRole = iota + 1
	ClaimVoter
	ClaimOwner
)

func (r ClaimRole) String() string {
	switch r {
	case ClaimArtist:
		return "artist"
	case ClaimVoter:
		return "voter"
	case ClaimOwner:
		return "owner"
	default:
		return fmt.Sprintf("claim(%d)", uint8(r))
	}
}

// ParseClaimRole maps "artist", "voter" or "owner" to a ClaimRole.
func ParseClaimRole(raw string) (ClaimRole, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "artist":
		return ClaimArtist, nil
	case "voter":
		return ClaimVoter, nil
	case "owner":
		return ClaimOwner, nil
	default:
		return 0, fmt.Errorf("unknown claim role %q", raw)
	}
}

// Claim is the persisted "claimed" flag for one (contest, role, claimant).
type Claim struct {
	ContestID uint64         `json:"contestId"`
	Role      ClaimRole      `json:"role"`
	Claimant  crypto.Address `json:"claimant"`
	ArtworkID uint64         `json:"artworkId"`
	Asset     string         `json:"asset"`
	Amount    uint64         `json:"amount"`
	ClaimedAt uint64         `json:"claimedAt"`
}

// LaunchParams carries the caller-supplied contest definition.
type LaunchParams struct {
	PrizeAsset     string `json:"prizeAsset"`
	PrizeAmount    uint64 `json:"prizeAmount"`
	ArtistSharePct uint8  `json:"artistSharePct"`
	Submission     Window `json:"submissionWindow"`
	Voting         Window `json:"votingWindow"`
	Title          string `json:"title"`
	Link           string `json:"link"`
}

// Validate checks the schedule ordering, the percentage bound and metadata
// sizes.
func (p LaunchParams) Validate() error {
	if !p.Submission.Valid() {
		return fmt.Errorf("%w: submission window ends before it starts", ErrInvalidSchedule)
	}
	if !p.Voting.Valid() {
		return fmt.Errorf("%w: voting window ends before it starts", ErrInvalidSchedule)
	}
	if p.Submission.Start > p.Voting.Start {
		return fmt.Errorf("%w: voting starts before submissions open", ErrInvalidSchedule)
	}
	if p.ArtistSharePct > MaxArtistSharePct {
		return fmt.Errorf("%w: %d", ErrInvalidPercentage, p.ArtistSharePct)
	}
	if strings.TrimSpace(p.PrizeAsset) == "" {
		return fmt.Errorf("%w: prize asset required", ErrInvalidMetadata)
	}
	if len(p.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d bytes", ErrInvalidMetadata, MaxTitleLength)
	}
	if len(p.Link) > MaxLinkLength {
		return fmt.Errorf("%w: link exceeds %d bytes", ErrInvalidMetadata, MaxLinkLength)
	}
	return nil
}

// Winner is the result of tallying a contest.
type Winner struct {
	ArtworkID uint64 `json:"artworkId"`
	Votes     uint64 `json:"votes"`
}
