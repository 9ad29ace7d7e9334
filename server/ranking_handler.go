package server

import (
	"encoding/json"
	"net/http"

	"CupBack/cache"
	"CupBack/core/ranking"
	"CupBack/logger"
)

// RankingsHandler serves the personal and department leaderboards. The
// boards are a full recompute from the user set and the scan ledger; a
// short-TTL cache absorbs bursts, invalidated on every accepted scan and
// registration.
func (h *APIHandler) RankingsHandler(w http.ResponseWriter, r *http.Request) {
	if cached, err := cache.GetRankings(r.Context()); err != nil {
		logger.Warn("[Rankings] cache read failed", logger.ErrorField(err))
	} else if cached != "" {
		writeRaw(w, http.StatusOK, cached)
		return
	}

	users, err := h.userRepo.ListUsers()
	if err != nil {
		logger.Error("[Rankings] failed to list users", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	}
	scans, err := h.scanRepo.ListScans()
	if err != nil {
		logger.Error("[Rankings] failed to list scans", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	}

	boards := ranking.ComputeRankings(users, scans, h.cfg.CO2GramsPerCup)

	payload, err := json.Marshal(map[string]interface{}{
		"success": true,
		"data":    boards,
	})
	if err != nil {
		logger.Error("[Rankings] failed to marshal payload", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	}
	if err := cache.SetRankings(r.Context(), string(payload)); err != nil {
		logger.Warn("[Rankings] cache write failed", logger.ErrorField(err))
	}
	writeRaw(w, http.StatusOK, string(payload))
}
