package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"nova-arena/internal/rank"
)

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()

	stats := map[string]interface{}{
		"tickNumber":  snap.TickNumber,
		"enemyCount":  len(snap.Enemies),
		"aliveCount":  snap.AliveCount,
		"score":       snap.Score,
		"kills":       snap.Kills,
		"deaths":      snap.Deaths,
		"roundActive": snap.RoundActive,
		"leaderboard": h.board.Len(),
	}
	if h.eventStats != nil {
		stats["events"] = h.eventStats()
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *routerHandlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset := queryInt(q.Get("offset"), 0)
	limit := queryInt(q.Get("limit"), 20)
	gameMode := q.Get("gameMode")

	writeJSON(w, http.StatusOK, h.board.Query(gameMode, offset, limit))
}

func (h *routerHandlers) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Score    int    `json:"score"`
		Kills    int    `json:"kills"`
		Deaths   int    `json:"deaths"`
		GameMode string `json:"gameMode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.board.Submit(req.Username, req.GameMode, req.Score, req.Kills, req.Deaths)
	if err != nil {
		switch {
		case errors.Is(err, rank.ErrEmptyUsername),
			errors.Is(err, rank.ErrEmptyGameMode),
			errors.Is(err, rank.ErrNegativeValue):
			writeError(w, err.Error(), http.StatusBadRequest)
		default:
			writeError(w, "submission failed", http.StatusInternalServerError)
		}
		return
	}

	UpdateLeaderboardSize(h.board.Len())
	writeJSON(w, http.StatusCreated, entry)
}

func (h *routerHandlers) handleRoundStart(w http.ResponseWriter, r *http.Request) {
	if h.session.RoundActive() {
		writeError(w, "round already in progress", http.StatusConflict)
		return
	}
	h.session.StartRound()
	writeJSON(w, http.StatusOK, map[string]bool{"started": true})
}

func (h *routerHandlers) handleRoundEnd(w http.ResponseWriter, r *http.Request) {
	if !h.session.RoundActive() {
		writeError(w, "no round in progress", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, h.session.EndRound())
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
