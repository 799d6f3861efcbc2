package contest

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"artcontest/core/events"
	"artcontest/core/types"
	"artcontest/crypto"
)

type artworkKey struct {
	contest uint64
	id      uint64
}

type principalKey struct {
	contest uint64
	who     crypto.Address
}

type claimKey struct {
	contest uint64
	role    ClaimRole
	who     crypto.Address
}

type mockState struct {
	counter  *Counter
	contests map[uint64]*Contest
	artworks map[artworkKey]*Artwork
	byArtist map[principalKey]uint64
	votes    map[principalKey]*VoteData
	vaults   map[crypto.Address]*Vault
	claims   map[claimKey]*Claim
}

func newMockState() *mockState {
	return &mockState{
		contests: make(map[uint64]*Contest),
		artworks: make(map[artworkKey]*Artwork),
		byArtist: make(map[principalKey]uint64),
		votes:    make(map[principalKey]*VoteData),
		vaults:   make(map[crypto.Address]*Vault),
		claims:   make(map[claimKey]*Claim),
	}
}

func (m *mockState) ContestCounterGet() (*Counter, bool, error) {
	if m.counter == nil {
		return nil, false, nil
	}
	clone := *m.counter
	return &clone, true, nil
}

func (m *mockState) ContestCounterPut(c *Counter) error {
	clone := *c
	m.counter = &clone
	return nil
}

func (m *mockState) ContestGet(id uint64) (*Contest, bool, error) {
	c, ok := m.contests[id]
	if !ok {
		return nil, false, nil
	}
	return c.Clone(), true, nil
}

func (m *mockState) ContestPut(c *Contest) error {
	m.contests[c.ID] = c.Clone()
	return nil
}

func (m *mockState) ContestArtworkInsert(a *Artwork) (bool, error) {
	key := principalKey{a.ContestID, a.Artist}
	if _, ok := m.byArtist[key]; ok {
		return false, nil
	}
	m.byArtist[key] = a.ID
	m.artworks[artworkKey{a.ContestID, a.ID}] = a.Clone()
	return true, nil
}

func (m *mockState) ContestArtworkGet(contestID, artworkID uint64) (*Artwork, bool, error) {
	a, ok := m.artworks[artworkKey{contestID, artworkID}]
	if !ok {
		return nil, false, nil
	}
	return a.Clone(), true, nil
}

func (m *mockState) ContestArtworkByArtist(contestID uint64, artist crypto.Address) (*Artwork, bool, error) {
	id, ok := m.byArtist[principalKey{contestID, artist}]
	if !ok {
		return nil, false, nil
	}
	return m.ContestArtworkGet(contestID, id)
}

func (m *mockState) ContestVoteInsert(v *VoteData) (bool, error) {
	key := principalKey{v.ContestID, v.Voter}
	if _, ok := m.votes[key]; ok {
		return false, nil
	}
	m.votes[key] = v.Clone()
	return true, nil
}

func (m *mockState) ContestVoteGet(contestID uint64, voter crypto.Address) (*VoteData, bool, error) {
	v, ok := m.votes[principalKey{contestID, voter}]
	if !ok {
		return nil, false, nil
	}
	return v.Clone(), true, nil
}

func (m *mockState) ContestVaultInsert(v *Vault) (bool, error) {
	if _, ok := m.vaults[v.Address]; ok {
		return false, nil
	}
	m.vaults[v.Address] = v.Clone()
	return true, nil
}

func (m *mockState) ContestVaultPut(v *Vault) error {
	m.vaults[v.Address] = v.Clone()
	return nil
}

func (m *mockState) ContestVaultGet(addr crypto.Address) (*Vault, bool, error) {
	v, ok := m.vaults[addr]
	if !ok {
		return nil, false, nil
	}
	return v.Clone(), true, nil
}

func (m *mockState) ContestClaimInsert(c *Claim) (bool, error) {
	key := claimKey{c.ContestID, c.Role, c.Claimant}
	if _, ok := m.claims[key]; ok {
		return false, nil
	}
	clone := *c
	m.claims[key] = &clone
	return true, nil
}

func (m *mockState) ContestClaimGet(contestID uint64, role ClaimRole, claimant crypto.Address) (*Claim, bool, error) {
	c, ok := m.claims[claimKey{contestID, role, claimant}]
	if !ok {
		return nil, false, nil
	}
	clone := *c
	return &clone, true, nil
}

type mockLedger struct {
	decimals map[string]uint8
	balances map[string]map[crypto.Address]uint64
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		decimals: make(map[string]uint8),
		balances: make(map[string]map[crypto.Address]uint64),
	}
}

func (l *mockLedger) credit(asset string, decimals uint8, to crypto.Address, amount uint64) {
	l.decimals[asset] = decimals
	if l.balances[asset] == nil {
		l.balances[asset] = make(map[crypto.Address]uint64)
	}
	l.balances[asset][to] += amount
}

func (l *mockLedger) Balance(asset string, owner crypto.Address) (uint64, error) {
	if _, ok := l.decimals[asset]; !ok {
		return 0, fmt.Errorf("mock: unknown asset %s", asset)
	}
	return l.balances[asset][owner], nil
}

func (l *mockLedger) Decimals(asset string) (uint8, error) {
	d, ok := l.decimals[asset]
	if !ok {
		return 0, fmt.Errorf("mock: unknown asset %s", asset)
	}
	return d, nil
}

func (l *mockLedger) Transfer(asset string, from, to crypto.Address, amount uint64) error {
	if _, ok := l.decimals[asset]; !ok {
		return fmt.Errorf("mock: unknown asset %s", asset)
	}
	if l.balances[asset][from] < amount {
		return fmt.Errorf("mock: insufficient balance")
	}
	l.balances[asset][from] -= amount
	l.balances[asset][to] += amount
	return nil
}

type capturingEmitter struct {
	events []events.Event
}

func (c *capturingEmitter) Emit(evt events.Event) {
	c.events = append(c.events, evt)
}

func (c *capturingEmitter) typesEvents() []*types.Event {
	out := make([]*types.Event, 0, len(c.events))
	for _, evt := range c.events {
		if wrapper, ok := evt.(contestEvent); ok && wrapper.evt != nil {
			out = append(out, wrapper.evt)
		}
	}
	return out
}

func (c *capturingEmitter) count(eventType string) int {
	n := 0
	for _, evt := range c.typesEvents() {
		if evt.Type == eventType {
			n++
		}
	}
	return n
}

func newTestAddress(fill byte) crypto.Address {
	var addr crypto.Address
	copy(addr[:], bytes.Repeat([]byte{fill}, crypto.AddressLength))
	return addr
}

const (
	prizeAsset = "PRIZE"
	t0         = int64(1_700_000_000)
)

var (
	owner   = newTestAddress(0x0A)
	artistA = newTestAddress(0xA1)
	artistB = newTestAddress(0xA2)
	artistC = newTestAddress(0xA3)
)

type harness struct {
	engine  *Engine
	state   *mockState
	ledger  *mockLedger
	emitter *capturingEmitter
	clock   int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		engine:  NewEngine(),
		state:   newMockState(),
		ledger:  newMockLedger(),
		emitter: &capturingEmitter{},
		clock:   t0,
	}
	h.engine.SetState(h.state)
	h.engine.SetLedger(h.ledger)
	h.engine.SetEmitter(h.emitter)
	h.engine.SetNowFunc(func() int64 { return h.clock })
	h.ledger.credit(prizeAsset, 6, owner, 10_000)
	if err := h.engine.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return h
}

func defaultParams(prize uint64, pct uint8) LaunchParams {
	return LaunchParams{
		PrizeAsset:     prizeAsset,
		PrizeAmount:    prize,
		ArtistSharePct: pct,
		Submission:     Window{Start: uint64(t0), End: uint64(t0 + 100)},
		Voting:         Window{Start: uint64(t0 + 100), End: uint64(t0 + 200)},
		Title:          "Demo Contest",
		Link:           "https://example.org/demo",
	}
}

func (h *harness) launch(t *testing.T, prize uint64, pct uint8) *Contest {
	t.Helper()
	c, err := h.engine.Launch(owner, defaultParams(prize, pct))
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	return c
}

func nftFor(artist crypto.Address) string {
	return "NFT-" + artist.Hex()[:6]
}

func (h *harness) submit(t *testing.T, contestID uint64, artist crypto.Address) *Artwork {
	t.Helper()
	asset := nftFor(artist)
	if _, ok := h.ledger.decimals[asset]; !ok {
		h.ledger.credit(asset, 0, artist, 1)
	}
	a, err := h.engine.Submit(artist, contestID, asset)
	if err != nil {
		t.Fatalf("submit %s: %v", artist, err)
	}
	return a
}

func (h *harness) vote(t *testing.T, contestID, artworkID uint64, voter crypto.Address) {
	t.Helper()
	if _, err := h.engine.Vote(voter, contestID, artworkID); err != nil {
		t.Fatalf("vote: %v", err)
	}
}

func voterAddr(i int) crypto.Address {
	return newTestAddress(byte(0xC0 + i))
}

func TestInitializeTwiceFails(t *testing.T) {
	h := newHarness(t)
	if err := h.engine.Initialize(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
	if h.emitter.count(EventTypeRegistryInitialized) != 1 {
		t.Fatalf("expected exactly one initialized event")
	}
}

func TestLaunchRequiresRegistry(t *testing.T) {
	engine := NewEngine()
	engine.SetState(newMockState())
	ledger := newMockLedger()
	ledger.credit(prizeAsset, 6, owner, 1_000)
	engine.SetLedger(ledger)
	if _, err := engine.Launch(owner, defaultParams(100, 10)); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestLaunchAssignsSequentialIDsAndEscrowsPrize(t *testing.T) {
	h := newHarness(t)
	first := h.launch(t, 1_000, 30)
	second := h.launch(t, 500, 50)
	if first.ID != 0 || second.ID != 1 {
		t.Fatalf("unexpected ids %d, %d", first.ID, second.ID)
	}
	count, err := h.engine.ContestCount()
	if err != nil || count != 2 {
		t.Fatalf("expected count 2, got %d (%v)", count, err)
	}
	if got := h.ledger.balances[prizeAsset][owner]; got != 8_500 {
		t.Fatalf("unexpected owner balance %d", got)
	}
	if got := h.ledger.balances[prizeAsset][crypto.PrizeVaultAddress(0)]; got != 1_000 {
		t.Fatalf("unexpected vault balance %d", got)
	}
	vault, err := h.engine.Vault(first.PrizeVault)
	if err != nil {
		t.Fatalf("vault: %v", err)
	}
	if vault.Authority() != crypto.PrizeVaultSigner(0) {
		t.Fatalf("prize vault not delegated to derived signer")
	}
	if vault.Depositor != owner || vault.Role != VaultPrize {
		t.Fatalf("unexpected vault record %+v", vault)
	}
	if first.ArtworkCount != 0 || len(first.VoteTally) != 0 {
		t.Fatalf("new contest must start empty")
	}
	if h.emitter.count(EventTypeContestLaunched) != 2 || h.emitter.count(EventTypeVaultDelegated) != 2 {
		t.Fatalf("missing launch events")
	}
}

func TestLaunchValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*LaunchParams)
		want   error
	}{
		{"submission reversed", func(p *LaunchParams) { p.Submission = Window{Start: 10, End: 5} }, ErrInvalidSchedule},
		{"voting reversed", func(p *LaunchParams) { p.Voting = Window{Start: p.Voting.End + 1, End: p.Voting.End} }, ErrInvalidSchedule},
		{"voting before submissions", func(p *LaunchParams) { p.Voting.Start = p.Submission.Start - 1 }, ErrInvalidSchedule},
		{"percentage over 100", func(p *LaunchParams) { p.ArtistSharePct = 101 }, ErrInvalidPercentage},
		{"missing prize asset", func(p *LaunchParams) { p.PrizeAsset = " " }, ErrInvalidMetadata},
		{"title too long", func(p *LaunchParams) { p.Title = string(bytes.Repeat([]byte("x"), MaxTitleLength+1)) }, ErrInvalidMetadata},
		{"insufficient funds", func(p *LaunchParams) { p.PrizeAmount = 10_001 }, ErrInsufficientFunds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			params := defaultParams(1_000, 30)
			tc.mutate(&params)
			_, err := h.engine.Launch(owner, params)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if Kind(err) != KindSetup {
				t.Fatalf("expected setup kind, got %q", Kind(err))
			}
			count, _ := h.engine.ContestCount()
			if count != 0 || len(h.state.contests) != 0 || len(h.state.vaults) != 0 {
				t.Fatalf("failed launch must not mutate state")
			}
			if h.ledger.balances[prizeAsset][owner] != 10_000 {
				t.Fatalf("failed launch moved funds")
			}
		})
	}
}

func TestLaunchAcceptsBoundaryPercentages(t *testing.T) {
	h := newHarness(t)
	for _, pct := range []uint8{0, 100} {
		if _, err := h.engine.Launch(owner, defaultParams(10, pct)); err != nil {
			t.Fatalf("pct %d: %v", pct, err)
		}
	}
}

func TestSubmitAssignsDenseIDsAndKeepsTallyAligned(t *testing.T) {
	h := newHarness(t)
	c := h.launch(t, 1_000, 30)
	for i, artist := range []crypto.Address{artistA, artistB, artistC} {
		a := h.submit(t, c.ID, artist)
		if a.ID != uint64(i) {
			t.Fatalf("expected artwork id %d, got %d", i, a.ID)
		}
		stored, err := h.engine.Contest(c.ID)
		if err != nil {
			t.Fatalf("contest: %v", err)
		}
		if uint64(len(stored.VoteTally)) != stored.ArtworkCount {
			t.Fatalf("tally length %d != artwork count %d", len(stored.VoteTally), stored.ArtworkCount)
		}
	}
	a, err := h.engine.ArtworkByArtist(c.ID, artistB)
	if err != nil || a.ID != 1 {
		t.Fatalf("lookup by artist: %+v %v", a, err)
	}
	vault, err := h.engine.Vault(a.NFTVault)
	if err != nil {
		t.Fatalf("nft vault: %v", err)
	}
	if vault.Authority() != crypto.NFTVaultSigner(c.ID, artistB) {
		t.Fatalf("nft vault not delegated")
	}
	if h.ledger.balances[nftFor(artistB)][artistB] != 0 || h.ledger.balances[nftFor(artistB)][a.NFTVault] != 1 {
		t.Fatalf("nft not escrowed")
	}
}

func TestSubmitTwiceFails(t *testing.T) {
	h := newHarness(t)
	c := h.launch(t, 1_000, 30)
	h.submit(t, c.ID, artistA)
	// Give the artist a second NFT so only the uniqueness guard can fail.
	h.ledger.credit("NFT-SECOND", 0, artistA, 1)
	_, err := h.engine.Submit(artistA, c.ID, "NFT-SECOND")
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
	stored, _ := h.engine.Contest(c.ID)
	if stored.ArtworkCount != 1 {
		t.Fatalf("duplicate submit changed artwork count to %d", stored.ArtworkCount)
	}
	if Kind(err) != KindUniqueness {
		t.Fatalf("unexpected kind %q", Kind(err))
	}
}

func TestSubmitWindow(t *testing.T) {
	h := newHarness(t)
	params := defaultParams(1_000, 30)
	params.Submission = Window{Start: uint64(t0 + 10), End: uint64(t0 + 20)}
	params.Voting = Window{Start: uint64(t0 + 20), End: uint64(t0 + 30)}
	c, err := h.engine.Launch(owner, params)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	h.ledger.credit(nftFor(artistA), 0, artistA, 1)

	h.clock = t0 + 9
	if _, err := h.engine.Submit(artistA, c.ID, nftFor(artistA)); !errors.Is(err, ErrSubmissionClosed) {
		t.Fatalf("expected early submit to fail, got %v", err)
	}
	h.clock = t0 + 21
	if _, err := h.engine.Submit(artistA, c.ID, nftFor(artistA)); !errors.Is(err, ErrSubmissionClosed) {
		t.Fatalf("expected late submit to fail, got %v", err)
	}
	h.clock = t0 + 20
	if _, err := h.engine.Submit(artistA, c.ID, nftFor(artistA)); err != nil {
		t.Fatalf("submit at window end: %v", err)
	}
}

func TestSubmitRequiresExactlyOneIndivisibleUnit(t *testing.T) {
	h := newHarness(t)
	c := h.launch(t, 1_000, 30)

	h.ledger.credit("FUNGIBLE", 2, artistA, 1)
	if _, err := h.engine.Submit(artistA, c.ID, "FUNGIBLE"); !errors.Is(err, ErrInvalidNFT) {
		t.Fatalf("expected decimals check to fail, got %v", err)
	}
	h.ledger.credit("NFT-EMPTY", 0, artistB, 0)
	if _, err := h.engine.Submit(artistA, c.ID, "NFT-EMPTY"); !errors.Is(err, ErrInvalidNFT) {
		t.Fatalf("expected missing nft to fail, got %v", err)
	}
	h.ledger.credit("NFT-TWO", 0, artistA, 2)
	if _, err := h.engine.Submit(artistA, c.ID, "NFT-TWO"); !errors.Is(err, ErrInvalidNFT) {
		t.Fatalf("expected multi-unit holding to fail, got %v", err)
	}
	if _, err := h.engine.Submit(artistA, c.ID, prizeAsset); !errors.Is(err, ErrInvalidNFT) {
		t.Fatalf("expected prize asset to be rejected, got %v", err)
	}
	if _, err := h.engine.Submit(artistA, 42, "NFT-TWO"); !errors.Is(err, ErrContestNotFound) {
		t.Fatalf("expected unknown contest, got %v", err)
	}
}

func TestVoteRules(t *testing.T) {
	h := newHarness(t)
	c := h.launch(t, 1_000, 30)
	h.submit(t, c.ID, artistA)

	h.clock = t0 + 150
	if _, err := h.engine.Vote(voterAddr(1), c.ID, 1); !errors.Is(err, ErrInvalidArtwork) {
		t.Fatalf("expected ErrInvalidArtwork, got %v", err)
	}
	h.vote(t, c.ID, 0, voterAddr(1))
	if _, err := h.engine.Vote(voterAddr(1), c.ID, 0); !errors.Is(err, ErrDuplicateVote) {
		t.Fatalf("expected ErrDuplicateVote, got %v", err)
	}
	stored, _ := h.engine.Contest(c.ID)
	if stored.VoteTally[0] != 1 {
		t.Fatalf("duplicate vote changed tally: %v", stored.VoteTally)
	}
	vote, err := h.engine.VoteOf(c.ID, voterAddr(1))
	if err != nil || vote.VotedArtworkID != 0 {
		t.Fatalf("vote lookup: %+v %v", vote, err)
	}
	if _, err := h.engine.VoteOf(c.ID, voterAddr(2)); !errors.Is(err, ErrVoteNotFound) {
		t.Fatalf("expected ErrVoteNotFound, got %v", err)
	}
}

func TestVoteWindow(t *testing.T) {
	h := newHarness(t)
	c := h.launch(t, 1_000, 30)
	h.submit(t, c.ID, artistA)

	h.clock = t0 + 99
	if _, err := h.engine.Vote(voterAddr(1), c.ID, 0); !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("expected vote before start to fail, got %v", err)
	}
	h.clock = t0 + 201
	if _, err := h.engine.Vote(voterAddr(1), c.ID, 0); !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("expected vote after end to fail, got %v", err)
	}
	h.clock = t0 + 200
	h.vote(t, c.ID, 0, voterAddr(1))
}

func TestWinningArtworkFirstMaxWins(t *testing.T) {
	c := &Contest{ArtworkCount: 4, VoteTally: []uint64{3, 5, 5, 2}}
	w, err := WinningArtwork(c)
	if err != nil {
		t.Fatalf("winner: %v", err)
	}
	if w.ArtworkID != 1 || w.Votes != 5 {
		t.Fatalf("expected artwork 1 with 5 votes, got %+v", w)
	}
	if _, err := WinningArtwork(&Contest{}); !errors.Is(err, ErrNoSubmissions) {
		t.Fatalf("expected ErrNoSubmissions, got %v", err)
	}
}

func TestPayoutScenario(t *testing.T) {
	c := &Contest{PrizeAmount: 1_000, ArtistSharePct: 30}
	artist, err := ArtistPayout(c)
	if err != nil || artist != 300 {
		t.Fatalf("artist payout %d (%v)", artist, err)
	}
	voter, err := VoterPayout(c, 3)
	if err != nil || voter != 233 {
		t.Fatalf("voter payout %d (%v)", voter, err)
	}
	if _, err := VoterPayout(c, 0); !errors.Is(err, ErrNoVotesForWinner) {
		t.Fatalf("expected ErrNoVotesForWinner, got %v", err)
	}
}

func TestPayoutOverflow(t *testing.T) {
	c := &Contest{PrizeAmount: ^uint64(0), ArtistSharePct: 2}
	if _, err := ArtistPayout(c); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := VoterPayout(c, 1); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	c.ArtistSharePct = 100
	if _, err := VoterPayout(c, 1); err != nil {
		t.Fatalf("zero voter share must not overflow: %v", err)
	}
	c.ArtistSharePct = 1
	got, err := ArtistPayout(c)
	if err != nil || got != ^uint64(0)/100 {
		t.Fatalf("unexpected 1%% payout %d (%v)", got, err)
	}
}

func TestPayoutsNeverExceedPool(t *testing.T) {
	prizes := []uint64{0, 1, 7, 99, 100, 1_000, 12_345, 1 << 40}
	for _, prize := range prizes {
		for pct := 0; pct <= 100; pct += 7 {
			c := &Contest{PrizeAmount: prize, ArtistSharePct: uint8(pct)}
			for n := uint64(1); n <= 13; n++ {
				a, err := ArtistPayout(c)
				if err != nil {
					t.Fatalf("artist payout: %v", err)
				}
				v, err := VoterPayout(c, n)
				if err != nil {
					t.Fatalf("voter payout: %v", err)
				}
				if a+v*n > prize {
					t.Fatalf("prize %d pct %d n %d: %d + %d*%d exceeds pool", prize, pct, n, a, v, n)
				}
			}
		}
	}
}

// scenario: prize 1000 at 30%, artists A (id 0) and B (id 1), three votes for
// B and one for A.
func setupScenario(t *testing.T) (*harness, *Contest) {
	t.Helper()
	h := newHarness(t)
	c := h.launch(t, 1_000, 30)
	h.submit(t, c.ID, artistA)
	h.submit(t, c.ID, artistB)
	h.clock = t0 + 150
	for i := 1; i <= 3; i++ {
		h.vote(t, c.ID, 1, voterAddr(i))
	}
	h.vote(t, c.ID, 0, voterAddr(4))
	h.clock = t0 + 201
	return h, c
}

func TestScenarioSettlement(t *testing.T) {
	h, c := setupScenario(t)

	w, err := h.engine.Winner(c.ID)
	if err != nil || w.ArtworkID != 1 || w.Votes != 3 {
		t.Fatalf("unexpected winner %+v (%v)", w, err)
	}

	claim, err := h.engine.ClaimAsArtist(artistB, c.ID, 1)
	if err != nil {
		t.Fatalf("artist claim: %v", err)
	}
	if claim.Amount != 300 || h.ledger.balances[prizeAsset][artistB] != 300 {
		t.Fatalf("artist received %d", h.ledger.balances[prizeAsset][artistB])
	}
	for i := 1; i <= 3; i++ {
		claim, err := h.engine.ClaimAsVoter(voterAddr(i), c.ID, 1)
		if err != nil {
			t.Fatalf("voter %d claim: %v", i, err)
		}
		if claim.Amount != 233 || h.ledger.balances[prizeAsset][voterAddr(i)] != 233 {
			t.Fatalf("voter %d received %d", i, h.ledger.balances[prizeAsset][voterAddr(i)])
		}
	}
	if _, err := h.engine.ClaimAsOwner(owner, c.ID, 1); err != nil {
		t.Fatalf("owner claim: %v", err)
	}
	if h.ledger.balances[nftFor(artistB)][owner] != 1 {
		t.Fatalf("owner did not receive the winning nft")
	}
	if h.ledger.balances[prizeAsset][c.PrizeVault] != 1_000-300-3*233 {
		t.Fatalf("unexpected vault remainder %d", h.ledger.balances[prizeAsset][c.PrizeVault])
	}
	if h.emitter.count(EventTypeVoterClaimed) != 3 || h.emitter.count(EventTypeArtistClaimed) != 1 || h.emitter.count(EventTypeOwnerClaimed) != 1 {
		t.Fatalf("missing claim events")
	}
	status, ok, err := h.engine.ClaimStatus(c.ID, ClaimArtist, artistB)
	if err != nil || !ok || status.Amount != 300 {
		t.Fatalf("claim status: %+v %v %v", status, ok, err)
	}
}

func TestClaimsAreSingleUse(t *testing.T) {
	h, c := setupScenario(t)
	if _, err := h.engine.ClaimAsArtist(artistB, c.ID, 1); err != nil {
		t.Fatalf("first artist claim: %v", err)
	}
	if _, err := h.engine.ClaimAsArtist(artistB, c.ID, 1); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if _, err := h.engine.ClaimAsVoter(voterAddr(1), c.ID, 1); err != nil {
		t.Fatalf("first voter claim: %v", err)
	}
	if _, err := h.engine.ClaimAsVoter(voterAddr(1), c.ID, 1); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if _, err := h.engine.ClaimAsOwner(owner, c.ID, 1); err != nil {
		t.Fatalf("first owner claim: %v", err)
	}
	if _, err := h.engine.ClaimAsOwner(owner, c.ID, 1); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if h.ledger.balances[prizeAsset][artistB] != 300 || h.ledger.balances[prizeAsset][voterAddr(1)] != 233 {
		t.Fatalf("repeated claims paid twice")
	}
}

func TestClaimEligibility(t *testing.T) {
	h, c := setupScenario(t)

	if _, err := h.engine.ClaimAsArtist(artistA, c.ID, 1); !errors.Is(err, ErrNotArtist) {
		t.Fatalf("expected ErrNotArtist, got %v", err)
	}
	if _, err := h.engine.ClaimAsArtist(artistA, c.ID, 0); !errors.Is(err, ErrNotWinner) {
		t.Fatalf("expected ErrNotWinner, got %v", err)
	}
	if _, err := h.engine.ClaimAsVoter(voterAddr(4), c.ID, 1); !errors.Is(err, ErrArtworkMismatch) {
		t.Fatalf("expected ErrArtworkMismatch, got %v", err)
	}
	if _, err := h.engine.ClaimAsVoter(voterAddr(4), c.ID, 0); !errors.Is(err, ErrNotWinner) {
		t.Fatalf("expected ErrNotWinner, got %v", err)
	}
	if _, err := h.engine.ClaimAsVoter(voterAddr(9), c.ID, 1); !errors.Is(err, ErrNotVoter) {
		t.Fatalf("expected ErrNotVoter, got %v", err)
	}
	if _, err := h.engine.ClaimAsOwner(artistA, c.ID, 1); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := h.engine.ClaimAsOwner(owner, c.ID, 0); !errors.Is(err, ErrNotWinner) {
		t.Fatalf("expected ErrNotWinner for losing nft, got %v", err)
	}
	if _, err := h.engine.ClaimAsOwner(owner, c.ID, 7); !errors.Is(err, ErrArtworkNotFound) {
		t.Fatalf("expected ErrArtworkNotFound, got %v", err)
	}
	if len(h.state.claims) != 0 {
		t.Fatalf("rejected claims must not be recorded")
	}
}

func TestClaimBeforeVotingCloses(t *testing.T) {
	h, c := setupScenario(t)
	h.clock = t0 + 200
	if _, err := h.engine.ClaimAsArtist(artistB, c.ID, 1); !errors.Is(err, ErrVotingNotClosed) {
		t.Fatalf("expected ErrVotingNotClosed, got %v", err)
	}
}

func TestClaimWithoutSubmissions(t *testing.T) {
	h := newHarness(t)
	c := h.launch(t, 1_000, 30)
	h.clock = t0 + 201
	if _, err := h.engine.ClaimAsArtist(artistA, c.ID, 0); !errors.Is(err, ErrNoSubmissions) {
		t.Fatalf("expected ErrNoSubmissions, got %v", err)
	}
	if _, err := h.engine.ClaimAsVoter(voterAddr(1), c.ID, 0); !errors.Is(err, ErrNoSubmissions) {
		t.Fatalf("expected ErrNoSubmissions, got %v", err)
	}
	if _, err := h.engine.ClaimAsOwner(owner, c.ID, 0); !errors.Is(err, ErrNoSubmissions) {
		t.Fatalf("expected ErrNoSubmissions, got %v", err)
	}
	if _, err := h.engine.Winner(c.ID); !errors.Is(err, ErrNoSubmissions) {
		t.Fatalf("expected ErrNoSubmissions from Winner, got %v", err)
	}
}

func TestClaimWithoutVotes(t *testing.T) {
	h := newHarness(t)
	c := h.launch(t, 1_000, 30)
	h.submit(t, c.ID, artistA)
	h.clock = t0 + 201
	if _, err := h.engine.ClaimAsArtist(artistA, c.ID, 0); !errors.Is(err, ErrNoVotesForWinner) {
		t.Fatalf("expected ErrNoVotesForWinner, got %v", err)
	}
	if _, err := h.engine.ClaimAsOwner(owner, c.ID, 0); !errors.Is(err, ErrNoVotesForWinner) {
		t.Fatalf("expected ErrNoVotesForWinner, got %v", err)
	}
	if Kind(ErrNoVotesForWinner) != KindArithmetic {
		t.Fatalf("unexpected kind")
	}
}

func TestReleaseRequiresDerivedSigner(t *testing.T) {
	h, c := setupScenario(t)
	vault := h.state.vaults[c.PrizeVault]
	vault.Signer = newTestAddress(0xEE)
	if _, err := h.engine.ClaimAsArtist(artistB, c.ID, 1); !errors.Is(err, ErrVaultAuthority) {
		t.Fatalf("expected ErrVaultAuthority, got %v", err)
	}
}

func TestVaultDelegatesOnce(t *testing.T) {
	v := &Vault{Depositor: owner}
	if v.Authority() != owner {
		t.Fatalf("undelegated vault must be controlled by depositor")
	}
	signer := crypto.PrizeVaultSigner(3)
	if err := v.Delegate(signer); err != nil {
		t.Fatalf("delegate: %v", err)
	}
	if v.Authority() != signer {
		t.Fatalf("authority not moved")
	}
	if err := v.Delegate(owner); !errors.Is(err, ErrVaultAuthority) {
		t.Fatalf("expected second delegation to fail, got %v", err)
	}
	if err := (&Vault{}).Delegate(crypto.Address{}); !errors.Is(err, ErrVaultAuthority) {
		t.Fatalf("expected zero signer to be rejected")
	}
}

func TestKindClassification(t *testing.T) {
	cases := map[error]ErrorKind{
		nil:                                 KindNone,
		ErrDuplicateVote:                    KindUniqueness,
		fmt.Errorf("wrap: %w", ErrNotOwner): KindEligibility,
		ErrContestNotFound:                  KindNotFound,
		errors.New("disk full"):             KindInternal,
	}
	for err, want := range cases {
		if got := Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestParseClaimRole(t *testing.T) {
	for raw, want := range map[string]ClaimRole{"artist": ClaimArtist, " Voter ": ClaimVoter, "OWNER": ClaimOwner} {
		got, err := ParseClaimRole(raw)
		if err != nil || got != want {
			t.Fatalf("ParseClaimRole(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := ParseClaimRole("judge"); err == nil {
		t.Fatalf("expected unknown role error")
	}
}
