package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ironcoachapp/ironcoach/internal/auth"
	"github.com/ironcoachapp/ironcoach/internal/storage"
)

const (
	defaultTone      = storage.ToneTough
	defaultIntensity = 70
)

type profileRequest struct {
	Tone      string `json:"tone"`
	Intensity *int   `json:"intensity"`
	Goal      string `json:"goal"`
}

func handleGetProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFromContext(r.Context())

		p, err := deps.Store.GetProfile(identity.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "profile not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, p)
	}
}

func handlePutProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		tone := req.Tone
		if tone == "" {
			tone = defaultTone
		}
		if !storage.ValidTone(tone) {
			httpError(w, http.StatusBadRequest, "invalid tone: %q", req.Tone)
			return
		}

		intensity := defaultIntensity
		if req.Intensity != nil {
			intensity = *req.Intensity
		}
		if intensity < 0 || intensity > 100 {
			httpError(w, http.StatusBadRequest, "intensity must be between 0 and 100")
			return
		}

		goal := strings.TrimSpace(req.Goal)
		if goal == "" {
			httpError(w, http.StatusBadRequest, "goal must not be empty")
			return
		}

		identity, _ := auth.IdentityFromContext(r.Context())
		p := storage.Profile{
			UserID:    identity.UserID,
			Email:     identity.Email,
			Tone:      tone,
			Intensity: intensity,
			Goal:      goal,
			UpdatedAt: time.Now().UTC(),
		}
		if err := deps.Store.UpsertProfile(p); err != nil {
			httpError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, p)
	}
}
