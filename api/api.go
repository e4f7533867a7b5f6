// Package api serves finished-match results over HTTP: a match by id, or a
// player's recent matches. It is read-only; results are written by the
// dealer when a match ends.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"poker-dealer-server/storage"
)

// Handler answers result lookups from a ResultStore.
type Handler struct {
	store storage.ResultStore
	log   *slog.Logger
}

// NewHandler wraps a store. A nil logger falls back to the default.
func NewHandler(store storage.ResultStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, log: logger}
}

// Register mounts the result routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /matches/{id}", h.getMatch)
	mux.HandleFunc("GET /matches", h.listMatches)
}

func (h *Handler) getMatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := h.store.GetMatchResult(r.Context(), id)
	if err != nil {
		h.log.Error("match lookup failed", "id", id, "err", err, "tag", "api")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if res == nil {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) listMatches(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if player == "" {
		http.Error(w, "player query parameter is required", http.StatusBadRequest)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, err := h.store.ListByPlayer(r.Context(), player, limit)
	if err != nil {
		h.log.Error("match listing failed", "player", player, "err", err, "tag", "api")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
