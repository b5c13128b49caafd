package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/simchain/internal/balance"
	"github.com/Mohsinsiddi/simchain/internal/catalog"
	"github.com/Mohsinsiddi/simchain/internal/chain"
	"github.com/Mohsinsiddi/simchain/internal/logger"
	"github.com/Mohsinsiddi/simchain/internal/market"
	"github.com/Mohsinsiddi/simchain/internal/nft"
	"github.com/Mohsinsiddi/simchain/internal/sim"
	"github.com/Mohsinsiddi/simchain/internal/user"
	"github.com/Mohsinsiddi/simchain/internal/wallet"
)

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warn("api: encoding response", zap.Error(err))
	}
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, user.ErrUserExists),
		errors.Is(err, wallet.ErrWalletExists),
		errors.Is(err, market.ErrAlreadyListed):
		return http.StatusConflict
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, wallet.ErrWalletNotFound),
		errors.Is(err, nft.ErrNotFound),
		errors.Is(err, chain.ErrChainNotFound),
		errors.Is(err, catalog.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, balance.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sim.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, user.ErrInvalidInput),
		errors.Is(err, wallet.ErrAmbiguous),
		errors.Is(err, wallet.ErrInvalidKey):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("api: internal error", zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Details: validationMessages(err)})
		return false
	}
	return true
}

func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required", e.Field()))
		case "oneof":
			out = append(out, fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param()))
		case "max":
			out = append(out, fmt.Sprintf("%s must have maximum length %s", e.Field(), e.Param()))
		default:
			out = append(out, fmt.Sprintf("%s is invalid (%s)", e.Field(), e.Tag()))
		}
	}
	return out
}
