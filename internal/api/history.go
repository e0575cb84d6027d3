package api

import (
	"net/http"

	"github.com/ironcoachapp/ironcoach/internal/auth"
	"github.com/ironcoachapp/ironcoach/internal/storage"
)

const (
	defaultHistoryPageSize = 50
	maxHistoryPageSize     = 500
)

type historyResponse struct {
	Turns []storage.Turn `json:"turns"`
	Total int            `json:"total"`
}

// handleHistory returns the caller's transcript oldest-first, paginated.
func handleHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFromContext(r.Context())

		limit := parseIntParam(r, "limit", defaultHistoryPageSize, maxHistoryPageSize)
		offset := parseIntParam(r, "offset", 0, 0)

		turns, err := deps.Store.ListTurns(identity.UserID, limit, offset)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "internal error")
			return
		}
		total, err := deps.Store.CountTurns(identity.UserID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if turns == nil {
			turns = []storage.Turn{}
		}

		writeJSON(w, historyResponse{Turns: turns, Total: total})
	}
}
