package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"artcontest/crypto"
	"artcontest/gateway/middleware"
	"artcontest/native/contest"
)

// ContestService is the contest runtime exposed over HTTP. *core.Executor
// satisfies it.
type ContestService interface {
	Launch(owner crypto.Address, params contest.LaunchParams) (*contest.Contest, error)
	Submit(artist crypto.Address, contestID uint64, nftAsset string) (*contest.Artwork, error)
	Vote(voter crypto.Address, contestID, artworkID uint64) (*contest.VoteData, error)
	Claim(role contest.ClaimRole, claimant crypto.Address, contestID, artworkID uint64) (*contest.Claim, error)
	Contest(id uint64) (*contest.Contest, error)
	Winner(contestID uint64) (contest.Winner, error)
	Artwork(contestID, artworkID uint64) (*contest.Artwork, error)
	VoteOf(contestID uint64, voter crypto.Address) (*contest.VoteData, error)
	ClaimStatus(contestID uint64, role contest.ClaimRole, claimant crypto.Address) (*contest.Claim, bool, error)
	Vault(addr crypto.Address) (*contest.Vault, error)
	Balance(asset string, owner crypto.Address) (uint64, error)
}

type Config struct {
	Service       ContestService
	HealthHandler http.Handler
	Authenticator *middleware.Authenticator
	RateLimiter   *middleware.RateLimiter
	Observability *middleware.Observability
	Logger        *slog.Logger
}

func New(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &contestHandlers{
		svc:    cfg.Service,
		logger: logger.With(slog.String("component", "gateway.routes")),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	obs := cfg.Observability
	if obs != nil {
		r.Use(obs.Middleware)
	}

	health := cfg.HealthHandler
	if health == nil {
		health = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
	}
	r.Method(http.MethodGet, "/healthz", health)
	if obs != nil {
		r.Handle("/metrics", obs.MetricsHandler())
	}

	r.Route("/v1", func(v1 chi.Router) {
		if cfg.RateLimiter != nil {
			v1.Use(cfg.RateLimiter.Middleware())
		}
		v1.Get("/balances/{asset}/{address}", h.balance)
		v1.Get("/vaults/{address}", h.getVault)
		v1.Route("/contests", func(cr chi.Router) {
			cr.Get("/{contestID}", h.getContest)
			cr.Get("/{contestID}/winner", h.winner)
			cr.Get("/{contestID}/artworks/{artworkID}", h.getArtwork)
			cr.Get("/{contestID}/votes/{voter}", h.getVote)
			cr.Get("/{contestID}/claims/{role}/{claimant}", h.claimStatus)

			cr.Group(func(wr chi.Router) {
				if cfg.Authenticator != nil {
					wr.Use(cfg.Authenticator.Middleware())
				}
				wr.Post("/", h.launch)
				wr.Post("/{contestID}/artworks", h.submit)
				wr.Post("/{contestID}/votes", h.vote)
				wr.Post("/{contestID}/claims/{role}", h.claim)
			})
		})
	})
	return r
}
