package contest

import (
	"strconv"

	"artcontest/core/types"
)

const (
	EventTypeRegistryInitialized = "contest.initialized"
	EventTypeContestLaunched     = "contest.launched"
	EventTypeArtworkSubmitted    = "contest.artwork.submitted"
	EventTypeVoteCast            = "contest.vote.cast"
	EventTypeVaultDelegated      = "contest.vault.delegated"
	EventTypeArtistClaimed       = "contest.claim.artist"
	EventTypeVoterClaimed        = "contest.claim.voter"
	EventTypeOwnerClaimed        = "contest.claim.owner"
)

type contestEvent struct {
	evt *types.Event
}

func (e contestEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e contestEvent) Event() *types.Event { return e.evt }

func formatUint(v uint64) string { return strconv.FormatUint(v, 10) }

// NewRegistryInitializedEvent is emitted once when the counter is created.
func NewRegistryInitializedEvent() *types.Event {
	return &types.Event{Type: EventTypeRegistryInitialized, Attributes: map[string]string{"contestCount": "0"}}
}

// NewLaunchedEvent returns the payload for a newly launched contest.
func NewLaunchedEvent(c *Contest) *types.Event {
	attrs := make(map[string]string)
	if c == nil {
		return &types.Event{Type: EventTypeContestLaunched, Attributes: attrs}
	}
	attrs["contestId"] = formatUint(c.ID)
	attrs["owner"] = c.Owner.String()
	attrs["prizeAsset"] = c.PrizeAsset
	attrs["prizeAmount"] = formatUint(c.PrizeAmount)
	attrs["artistSharePct"] = formatUint(uint64(c.ArtistSharePct))
	attrs["submitStart"] = formatUint(c.Submission.Start)
	attrs["submitEnd"] = formatUint(c.Submission.End)
	attrs["voteStart"] = formatUint(c.Voting.Start)
	attrs["voteEnd"] = formatUint(c.Voting.End)
	attrs["prizeVault"] = c.PrizeVault.String()
	if c.Title != "" {
		attrs["title"] = c.Title
	}
	return &types.Event{Type: EventTypeContestLaunched, Attributes: attrs}
}

// NewSubmittedEvent returns the payload for a registered artwork.
func NewSubmittedEvent(a *Artwork) *types.Event {
	attrs := make(map[string]string)
	if a == nil {
		return &types.Event{Type: EventTypeArtworkSubmitted, Attributes: attrs}
	}
	attrs["contestId"] = formatUint(a.ContestID)
	attrs["artworkId"] = formatUint(a.ID)
	attrs["artist"] = a.Artist.String()
	attrs["nftAsset"] = a.NFTAsset
	attrs["nftVault"] = a.NFTVault.String()
	return &types.Event{Type: EventTypeArtworkSubmitted, Attributes: attrs}
}

// NewVoteCastEvent returns the payload for a recorded ballot together with
// the updated tally of the chosen artwork.
func NewVoteCastEvent(v *VoteData, tally uint64) *types.Event {
	attrs := make(map[string]string)
	if v == nil {
		return &types.Event{Type: EventTypeVoteCast, Attributes: attrs}
	}
	attrs["contestId"] = formatUint(v.ContestID)
	attrs["voter"] = v.Voter.String()
	attrs["artworkId"] = formatUint(v.VotedArtworkID)
	attrs["tally"] = formatUint(tally)
	return &types.Event{Type: EventTypeVoteCast, Attributes: attrs}
}

// NewVaultDelegatedEvent is emitted when vault control moves to the derived
// signer.
func NewVaultDelegatedEvent(v *Vault) *types.Event {
	attrs := make(map[string]string)
	if v == nil {
		return &types.Event{Type: EventTypeVaultDelegated, Attributes: attrs}
	}
	attrs["contestId"] = formatUint(v.ContestID)
	attrs["role"] = v.Role.String()
	attrs["vault"] = v.Address.String()
	attrs["depositor"] = v.Depositor.String()
	attrs["signer"] = v.Signer.String()
	attrs["asset"] = v.Asset
	return &types.Event{Type: EventTypeVaultDelegated, Attributes: attrs}
}

// NewClaimedEvent returns the payload for a completed claim of any role.
func NewClaimedEvent(c *Claim) *types.Event {
	eventType := EventTypeArtistClaimed
	attrs := make(map[string]string)
	if c == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	switch c.Role {
	case ClaimVoter:
		eventType = EventTypeVoterClaimed
	case ClaimOwner:
		eventType = EventTypeOwnerClaimed
	}
	attrs["contestId"] = formatUint(c.ContestID)
	attrs["role"] = c.Role.String()
	attrs["claimant"] = c.Claimant.String()
	attrs["artworkId"] = formatUint(c.ArtworkID)
	attrs["asset"] = c.Asset
	attrs["amount"] = formatUint(c.Amount)
	return &types.Event{Type: eventType, Attributes: attrs}
}
