package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ironcoachapp/ironcoach/internal/auth"
	"github.com/ironcoachapp/ironcoach/internal/chat"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Text string `json:"text"`
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			httpError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}

		reply, err := deps.Chat.Respond(r.Context(), identity, req.Message)
		if err != nil {
			switch {
			case errors.Is(err, chat.ErrEmptyMessage):
				httpError(w, http.StatusBadRequest, "message must not be empty")
			case errors.Is(err, auth.ErrUnauthenticated):
				httpError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			case errors.Is(err, chat.ErrGeneration):
				httpError(w, http.StatusBadGateway, "reply generation failed")
			default:
				httpError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, chatResponse{Text: reply})
	}
}
