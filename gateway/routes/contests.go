package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"artcontest/crypto"
	"artcontest/gateway/middleware"
	"artcontest/native/bank"
	"artcontest/native/contest"
)

type contestHandlers struct {
	svc    ContestService
	logger *slog.Logger
}

type submitRequest struct {
	NFTAsset string `json:"nftAsset"`
}

type artworkRequest struct {
	ArtworkID uint64 `json:"artworkId"`
}

type winnerResponse struct {
	ContestID uint64 `json:"contestId"`
	ArtworkID uint64 `json:"artworkId"`
	Votes     uint64 `json:"votes"`
}

type claimStatusResponse struct {
	Claimed bool           `json:"claimed"`
	Claim   *contest.Claim `json:"claim,omitempty"`
}

type balanceResponse struct {
	Asset   string         `json:"asset"`
	Address crypto.Address `json:"address"`
	Amount  uint64         `json:"amount"`
}

func (h *contestHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.String("kind", kind),
		slog.String("error", err.Error()))
	if status >= http.StatusInternalServerError {
		err = errors.New(http.StatusText(status))
	}
	writeJSONError(w, status, kind, err)
}

func badRequest(w http.ResponseWriter, err error) {
	writeJSONError(w, http.StatusBadRequest, "request", err)
}

func principal(w http.ResponseWriter, r *http.Request) (crypto.Address, bool) {
	addr, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "auth", errors.New("principal required"))
	}
	return addr, ok
}

func uintParam(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return value, nil
}

func addressParam(r *http.Request, name string) (crypto.Address, error) {
	addr, err := crypto.ParseAddress(chi.URLParam(r, name))
	if err != nil {
		return crypto.Address{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return addr, nil
}

func (h *contestHandlers) launch(w http.ResponseWriter, r *http.Request) {
	owner, ok := principal(w, r)
	if !ok {
		return
	}
	var params contest.LaunchParams
	if err := decodeBody(r, &params); err != nil {
		badRequest(w, err)
		return
	}
	created, err := h.svc.Launch(owner, params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *contestHandlers) submit(w http.ResponseWriter, r *http.Request) {
	artist, ok := principal(w, r)
	if !ok {
		return
	}
	contestID, err := uintParam(r, "contestID")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	artwork, err := h.svc.Submit(artist, contestID, req.NFTAsset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, artwork)
}

func (h *contestHandlers) vote(w http.ResponseWriter, r *http.Request) {
	voter, ok := principal(w, r)
	if !ok {
		return
	}
	contestID, err := uintParam(r, "contestID")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req artworkRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	ballot, err := h.svc.Vote(voter, contestID, req.ArtworkID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ballot)
}

func (h *contestHandlers) claim(w http.ResponseWriter, r *http.Request) {
	claimant, ok := principal(w, r)
	if !ok {
		return
	}
	contestID, err := uintParam(r, "contestID")
	if err != nil {
		badRequest(w, err)
		return
	}
	role, err := contest.ParseClaimRole(chi.URLParam(r, "role"))
	if err != nil {
		badRequest(w, err)
		return
	}
	var req artworkRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	settled, err := h.svc.Claim(role, claimant, contestID, req.ArtworkID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settled)
}

func (h *contestHandlers) getContest(w http.ResponseWriter, r *http.Request) {
	contestID, err := uintParam(r, "contestID")
	if err != nil {
		badRequest(w, err)
		return
	}
	record, err := h.svc.Contest(contestID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *contestHandlers) winner(w http.ResponseWriter, r *http.Request) {
	contestID, err := uintParam(r, "contestID")
	if err != nil {
		badRequest(w, err)
		return
	}
	leader, err := h.svc.Winner(contestID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, winnerResponse{ContestID: contestID, ArtworkID: leader.ArtworkID, Votes: leader.Votes})
}

func (h *contestHandlers) getArtwork(w http.ResponseWriter, r *http.Request) {
	contestID, err := uintParam(r, "contestID")
	if err != nil {
		badRequest(w, err)
		return
	}
	artworkID, err := uintParam(r, "artworkID")
	if err != nil {
		badRequest(w, err)
		return
	}
	artwork, err := h.svc.Artwork(contestID, artworkID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artwork)
}

func (h *contestHandlers) getVote(w http.ResponseWriter, r *http.Request) {
	contestID, err := uintParam(r, "contestID")
	if err != nil {
		badRequest(w, err)
		return
	}
	voter, err := addressParam(r, "voter")
	if err != nil {
		badRequest(w, err)
		return
	}
	ballot, err := h.svc.VoteOf(contestID, voter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ballot)
}

func (h *contestHandlers) claimStatus(w http.ResponseWriter, r *http.Request) {
	contestID, err := uintParam(r, "contestID")
	if err != nil {
		badRequest(w, err)
		return
	}
	role, err := contest.ParseClaimRole(chi.URLParam(r, "role"))
	if err != nil {
		badRequest(w, err)
		return
	}
	claimant, err := addressParam(r, "claimant")
	if err != nil {
		badRequest(w, err)
		return
	}
	record, claimed, err := h.svc.ClaimStatus(contestID, role, claimant)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, claimStatusResponse{Claimed: claimed, Claim: record})
}

func (h *contestHandlers) getVault(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r, "address")
	if err != nil {
		badRequest(w, err)
		return
	}
	vault, err := h.svc.Vault(addr)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vault)
}

func (h *contestHandlers) balance(w http.ResponseWriter, r *http.Request) {
	owner, err := addressParam(r, "address")
	if err != nil {
		badRequest(w, err)
		return
	}
	asset, err := bank.NormalizeSymbol(chi.URLParam(r, "asset"))
	if err != nil {
		badRequest(w, err)
		return
	}
	amount, err := h.svc.Balance(asset, owner)
	if errors.Is(err, bank.ErrUnknownAsset) {
		writeJSONError(w, http.StatusNotFound, string(contest.KindNotFound), err)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Asset: asset, Address: owner, Amount: amount})
}
