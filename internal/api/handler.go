// Package api exposes the HTTP surface: the conversational turn endpoint,
// profile onboarding/settings, history read-back, and health.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ironcoachapp/ironcoach/internal/auth"
	"github.com/ironcoachapp/ironcoach/internal/chat"
	"github.com/ironcoachapp/ironcoach/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps holds the handler's collaborators, constructed once at process start.
type Deps struct {
	Store         *storage.Store
	Chat          *chat.Service
	Verifier      auth.Verifier
	AllowedOrigin string
}

// NewHandler returns the HTTP handler for all ironcoach routes. Every route
// echoes permissive CORS headers; browser preflights are answered before auth.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(CORS(deps.AllowedOrigin))

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireIdentity(deps.Verifier))

		r.Post("/v1/chat", handleChat(deps))
		r.Get("/v1/profile", handleGetProfile(deps))
		r.Put("/v1/profile", handlePutProfile(deps))
		r.Get("/v1/history", handleHistory(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// httpError writes the flat error body every failure path uses: {"error": msg}.
func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": fmt.Sprintf(format, args...),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
