package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/zstd"
	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/repositories"
	"github.com/lleps/peinbol/pkg/state"
)

const (
	DefaultScoreboardLimit = 10
	MaxScoreboardLimit     = 100
)

// Status is the body of GET /status.
type Status struct {
	MatchID       string  `json:"matchId,omitempty"`
	Tick          uint64  `json:"tick"`
	Players       int     `json:"players"`
	Boxes         int     `json:"boxes"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

func HandleStatus(snapshots state.SnapshotStore, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := Status{UptimeSeconds: time.Since(startedAt).Seconds()}

		snapshot, err := snapshots.Get(r.Context())
		switch {
		case err == nil:
			status.MatchID = snapshot.MatchID.String()
			status.Tick = snapshot.Tick
			status.Players = len(snapshot.Players)
			status.Boxes = len(snapshot.Boxes)
		case errors.Is(err, state.ErrNoSnapshot):
			// the game loop has not ticked yet
		default:
			log.Error("failed to get snapshot: %v", err)
			http.Error(w, "Failed to get world snapshot", http.StatusInternalServerError)
			return
		}

		writeJSON(w, status)
	}
}

// HandleWorld serves the latest snapshot, zstd compressed when the client accepts it.
func HandleWorld(snapshots state.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := snapshots.Get(r.Context())
		if err != nil {
			if errors.Is(err, state.ErrNoSnapshot) {
				http.Error(w, "World not started", http.StatusServiceUnavailable)
				return
			}
			log.Error("failed to get snapshot: %v", err)
			http.Error(w, "Failed to get world snapshot", http.StatusInternalServerError)
			return
		}

		if !acceptsZstd(r) {
			writeJSON(w, snapshot)
			return
		}

		body, err := json.Marshal(snapshot)
		if err != nil {
			log.Error("failed to encode snapshot: %v", err)
			http.Error(w, "Failed to encode world snapshot", http.StatusInternalServerError)
			return
		}
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			log.Error("failed to create zstd writer: %v", err)
			http.Error(w, "Failed to compress world snapshot", http.StatusInternalServerError)
			return
		}
		compressed := encoder.EncodeAll(body, nil)
		encoder.Close()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "zstd")
		w.Header().Set("Vary", "Accept-Encoding")
		if _, err := w.Write(compressed); err != nil {
			log.Debug("failed to write world snapshot: %v", err)
		}
	}
}

func acceptsZstd(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		encoding, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(encoding, "zstd") {
			return true
		}
	}
	return false
}

func HandleScoreboard(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repository == nil {
			http.Error(w, "Stats are disabled", http.StatusServiceUnavailable)
			return
		}

		limit := DefaultScoreboardLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > MaxScoreboardLimit {
				http.Error(w, "limit must be between 1 and 100", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		scores, err := repository.TopKillers(r.Context(), limit)
		if err != nil {
			log.Error("failed to list top killers: %v", err)
			http.Error(w, "Failed to list top killers", http.StatusInternalServerError)
			return
		}
		writeJSON(w, scores)
	}
}

func HandlePlayerStats(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repository == nil {
			http.Error(w, "Stats are disabled", http.StatusServiceUnavailable)
			return
		}

		name := mux.Vars(r)["name"]
		stats, err := repository.PlayerStats(r.Context(), name)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Player not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get stats of %s: %v", name, err)
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, stats)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
