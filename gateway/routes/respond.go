package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"artcontest/native/bank"
	"artcontest/native/contest"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, kind string, err error) {
	message := strings.TrimSpace(err.Error())
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: message}})
}

// statusFor maps engine and ledger failures onto HTTP statuses.
func statusFor(err error) (int, string) {
	kind := contest.Kind(err)
	switch kind {
	case contest.KindNotFound:
		return http.StatusNotFound, string(kind)
	case contest.KindUniqueness:
		return http.StatusConflict, string(kind)
	case contest.KindEligibility:
		return http.StatusForbidden, string(kind)
	case contest.KindSetup, contest.KindArithmetic:
		return http.StatusUnprocessableEntity, string(kind)
	}
	if errors.Is(err, bank.ErrUnknownAsset) || errors.Is(err, bank.ErrInsufficientBalance) {
		return http.StatusUnprocessableEntity, string(contest.KindSetup)
	}
	return http.StatusInternalServerError, string(contest.KindInternal)
}

func decodeBody(r *http.Request, out interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
