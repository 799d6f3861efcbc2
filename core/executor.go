package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"artcontest/core/events"
	"artcontest/core/genesis"
	"artcontest/core/state"
	"artcontest/crypto"
	"artcontest/native/bank"
	"artcontest/native/contest"
	"artcontest/observability/logging"
	"artcontest/observability/metrics"
	"artcontest/storage"
)

// Executor is the host runtime of the contest engine. It runs one operation
// at a time against a journaled state manager, commits the journal when the
// operation succeeds and discards it otherwise. Events are buffered during
// the operation and forwarded to the sink only after the commit.
type Executor struct {
	mu      sync.Mutex
	state   *state.Manager
	ledger  *bank.Ledger
	engine  *contest.Engine
	buffer  *events.Buffer
	sink    events.Emitter
	logger  *slog.Logger
	metrics *metrics.ContestMetrics
	nowFn   func() time.Time
}

// Option customises an Executor.
type Option func(*Executor)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Executor) {
		if logger != nil {
			x.logger = logger
		}
	}
}

// WithEmitter sets the sink that receives committed events.
func WithEmitter(sink events.Emitter) Option {
	return func(x *Executor) {
		if sink != nil {
			x.sink = sink
		}
	}
}

// WithMetrics sets the Prometheus collectors. A nil value disables metrics.
func WithMetrics(m *metrics.ContestMetrics) Option {
	return func(x *Executor) { x.metrics = m }
}

// WithClock overrides the trusted time source handed to the engine.
func WithClock(now func() time.Time) Option {
	return func(x *Executor) {
		if now != nil {
			x.nowFn = now
		}
	}
}

// NewExecutor wires the ledger and contest engine to a state manager over db.
func NewExecutor(db storage.Database, opts ...Option) *Executor {
	x := &Executor{
		state:  state.NewManager(db),
		ledger: bank.NewLedger(),
		engine: contest.NewEngine(),
		buffer: &events.Buffer{},
		sink:   events.NoopEmitter{},
		logger: slog.Default(),
		nowFn:  time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	x.ledger.SetState(x.state)
	x.ledger.SetEmitter(x.buffer)
	x.engine.SetState(x.state)
	x.engine.SetLedger(x.ledger)
	x.engine.SetEmitter(x.buffer)
	x.engine.SetNowFunc(func() int64 { return x.nowFn().Unix() })
	return x
}

// apply runs fn as one atomic state transition.
func (x *Executor) apply(op string, fn func() error, attrs ...slog.Attr) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	start := time.Now()
	defer func() { x.metrics.ObserveLatency(op, time.Since(start)) }()

	err := fn()
	if err == nil {
		err = x.state.Commit()
	}
	if err != nil {
		x.state.Discard()
		x.buffer.Reset()
		kind := contest.Kind(err)
		x.metrics.ObserveRejected(op, string(kind))
		level := slog.LevelWarn
		if kind == contest.KindInternal {
			level = slog.LevelError
		}
		x.logger.LogAttrs(context.Background(), level, "operation rejected",
			append(attrs,
				slog.String("component", "executor"),
				slog.String("operation", op),
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()),
			)...)
		return err
	}

	committed := x.buffer.Flush(x.sink)
	x.record(committed)
	x.logger.LogAttrs(context.Background(), slog.LevelInfo, "operation committed",
		append(attrs,
			slog.String("component", "executor"),
			slog.String("operation", op),
			slog.Int("events", len(committed)),
		)...)
	return nil
}

// view runs a read-only fn under the executor lock.
func (x *Executor) view(fn func() error) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	defer x.state.Discard()
	return fn()
}

func (x *Executor) record(committed []events.Event) {
	if x.metrics == nil {
		return
	}
	for _, evt := range committed {
		switch evt.EventType() {
		case contest.EventTypeContestLaunched:
			x.metrics.IncLaunched()
		case contest.EventTypeArtworkSubmitted:
			x.metrics.IncSubmitted()
		case contest.EventTypeVoteCast:
			x.metrics.IncVoted()
		case contest.EventTypeArtistClaimed, contest.EventTypeVoterClaimed, contest.EventTypeOwnerClaimed:
			payload, ok := evt.(events.Payload)
			if !ok || payload.Event() == nil {
				continue
			}
			attrs := payload.Event().Attributes
			amount, _ := strconv.ParseUint(attrs["amount"], 10, 64)
			x.metrics.RecordClaim(attrs["role"], attrs["asset"], amount)
		case events.TypeTransfer:
			if transfer, ok := evt.(events.Transfer); ok {
				x.metrics.RecordTransfer(transfer.Asset)
			}
		}
	}
}

// Bootstrap applies the genesis allocations and initializes the registry on
// a fresh database. It reports false without changes when the registry
// already exists.
func (x *Executor) Bootstrap(spec *genesis.GenesisSpec) (bool, error) {
	var initialized bool
	if err := x.view(func() error {
		var err error
		initialized, err = x.engine.Initialized()
		return err
	}); err != nil {
		return false, err
	}
	if initialized {
		return false, nil
	}
	err := x.apply("bootstrap", func() error {
		if err := genesis.Apply(spec, x.ledger); err != nil {
			return fmt.Errorf("genesis: %w", err)
		}
		return x.engine.Initialize()
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Initialize creates the registry counter.
func (x *Executor) Initialize() error {
	return x.apply("initialize", x.engine.Initialize)
}

// Launch creates a contest owned by owner and escrows its prize.
func (x *Executor) Launch(owner crypto.Address, params contest.LaunchParams) (*contest.Contest, error) {
	var out *contest.Contest
	err := x.apply("launch", func() error {
		var err error
		out, err = x.engine.Launch(owner, params)
		return err
	}, logging.MaskField("owner", owner.String()))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Submit registers the artist's artwork and escrows its NFT.
func (x *Executor) Submit(artist crypto.Address, contestID uint64, nftAsset string) (*contest.Artwork, error) {
	var out *contest.Artwork
	err := x.apply("submit", func() error {
		var err error
		out, err = x.engine.Submit(artist, contestID, nftAsset)
		return err
	}, slog.Uint64("contest_id", contestID), logging.MaskField("artist", artist.String()))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Vote records the voter's ballot.
func (x *Executor) Vote(voter crypto.Address, contestID, artworkID uint64) (*contest.VoteData, error) {
	var out *contest.VoteData
	err := x.apply("vote", func() error {
		var err error
		out, err = x.engine.Vote(voter, contestID, artworkID)
		return err
	}, slog.Uint64("contest_id", contestID), slog.Uint64("artwork_id", artworkID), logging.MaskField("voter", voter.String()))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Claim settles the claimant's share for role.
func (x *Executor) Claim(role contest.ClaimRole, claimant crypto.Address, contestID, artworkID uint64) (*contest.Claim, error) {
	var claimFn func(crypto.Address, uint64, uint64) (*contest.Claim, error)
	switch role {
	case contest.ClaimArtist:
		claimFn = x.engine.ClaimAsArtist
	case contest.ClaimVoter:
		claimFn = x.engine.ClaimAsVoter
	case contest.ClaimOwner:
		claimFn = x.engine.ClaimAsOwner
	default:
		return nil, fmt.Errorf("unknown claim role %d", role)
	}
	var out *contest.Claim
	err := x.apply("claim_"+role.String(), func() error {
		var err error
		out, err = claimFn(claimant, contestID, artworkID)
		return err
	}, slog.Uint64("contest_id", contestID), slog.Uint64("artwork_id", artworkID), logging.MaskField("claimant", claimant.String()))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Contest returns a contest record.
func (x *Executor) Contest(id uint64) (*contest.Contest, error) {
	var out *contest.Contest
	err := x.view(func() error {
		var err error
		out, err = x.engine.Contest(id)
		return err
	})
	return out, err
}

// ContestCount returns the number of launched contests.
func (x *Executor) ContestCount() (uint64, error) {
	var out uint64
	err := x.view(func() error {
		var err error
		out, err = x.engine.ContestCount()
		return err
	})
	return out, err
}

// Artwork returns an artwork by contest-scoped id.
func (x *Executor) Artwork(contestID, artworkID uint64) (*contest.Artwork, error) {
	var out *contest.Artwork
	err := x.view(func() error {
		var err error
		out, err = x.engine.Artwork(contestID, artworkID)
		return err
	})
	return out, err
}

// ArtworkByArtist returns the artist's submission.
func (x *Executor) ArtworkByArtist(contestID uint64, artist crypto.Address) (*contest.Artwork, error) {
	var out *contest.Artwork
	err := x.view(func() error {
		var err error
		out, err = x.engine.ArtworkByArtist(contestID, artist)
		return err
	})
	return out, err
}

// VoteOf returns the voter's ballot.
func (x *Executor) VoteOf(contestID uint64, voter crypto.Address) (*contest.VoteData, error) {
	var out *contest.VoteData
	err := x.view(func() error {
		var err error
		out, err = x.engine.VoteOf(contestID, voter)
		return err
	})
	return out, err
}

// Winner returns the current leader of a contest.
func (x *Executor) Winner(contestID uint64) (contest.Winner, error) {
	var out contest.Winner
	err := x.view(func() error {
		var err error
		out, err = x.engine.Winner(contestID)
		return err
	})
	return out, err
}

// ClaimStatus returns the claim record of claimant for role.
func (x *Executor) ClaimStatus(contestID uint64, role contest.ClaimRole, claimant crypto.Address) (*contest.Claim, bool, error) {
	var (
		out *contest.Claim
		ok  bool
	)
	err := x.view(func() error {
		var err error
		out, ok, err = x.engine.ClaimStatus(contestID, role, claimant)
		return err
	})
	return out, ok, err
}

// Vault returns a custody record.
func (x *Executor) Vault(addr crypto.Address) (*contest.Vault, error) {
	var out *contest.Vault
	err := x.view(func() error {
		var err error
		out, err = x.engine.Vault(addr)
		return err
	})
	return out, err
}

// Balance returns owner's ledger balance of asset.
func (x *Executor) Balance(asset string, owner crypto.Address) (uint64, error) {
	var out uint64
	err := x.view(func() error {
		var err error
		out, err = x.ledger.Balance(asset, owner)
		return err
	})
	return out, err
}

// IsNotFound reports whether err is a lookup miss from the engine or ledger.
func IsNotFound(err error) bool {
	return contest.Kind(err) == contest.KindNotFound || errors.Is(err, bank.ErrUnknownAsset)
}
