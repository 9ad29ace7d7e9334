package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"CupBack/cache"
	"CupBack/core/identity"
	"CupBack/core/ledger"
	"CupBack/logger"
)

// ScanRequest is the scan submission body. Code carries the raw decoded QR
// payload; normalization happens server-side.
type ScanRequest struct {
	Code string `json:"code"`
}

// ScanHandler validates a QR payload and records a cup return.
func (h *APIHandler) ScanHandler(w http.ResponseWriter, r *http.Request) {
	authID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Login required")
		return
	}

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	clean, err := h.codes.Validate(req.Code)
	if err != nil {
		logger.Warn("[Scan] invalid code",
			logger.String("userId", authID),
			logger.String("code", clean))
		// The normalized payload goes back to the user so they can see what
		// the camera actually read.
		writeError(w, http.StatusBadRequest, "Invalid QR code: "+clean)
		return
	}

	// Resolve the canonical id; on failure fall back to the auth id so the
	// scan still lands somewhere rather than failing the whole operation.
	userID, err := h.resolver.Resolve(authID, GetEmailFromContext(r.Context()))
	if err != nil {
		if !errors.Is(err, identity.ErrIdentityUnresolved) {
			logger.Error("[Scan] identity lookup failed", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
			return
		}
		logger.Warn("[Scan] identity unresolved, using auth id",
			logger.String("authId", authID))
		userID = authID
	}

	scan, err := h.ledger.RecordScan(userID, clean, time.Now())
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateScan) {
			writeError(w, http.StatusConflict, "Already redeemed today, come back tomorrow")
			return
		}
		logger.Error("[Scan] failed to record scan",
			logger.String("userId", userID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	}

	// Read-side views are now stale: drop caches and tell live clients.
	if err := cache.InvalidateAggregates(r.Context()); err != nil {
		logger.Warn("[Scan] cache invalidation failed", logger.ErrorField(err))
	}
	cache.NotifyChanged(r.Context(), cache.CollectionScans)

	logger.Info("[Scan] cup returned",
		logger.String("userId", userID),
		logger.String("date", scan.Date),
		logger.String("code", scan.Code))
	writeJSON(w, http.StatusCreated, scan)
}

// StatsHandler serves the global aggregate view.
func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if cached, err := cache.GetStats(r.Context()); err != nil {
		logger.Warn("[Stats] cache read failed", logger.ErrorField(err))
	} else if cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	stats, err := h.ledger.Stats(time.Now())
	if err != nil {
		logger.Error("[Stats] failed to compute stats", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	}

	if err := cache.SetStats(r.Context(), &stats); err != nil {
		logger.Warn("[Stats] cache write failed", logger.ErrorField(err))
	}
	writeJSON(w, http.StatusOK, stats)
}

// UserStatsHandler serves the dashboard view for the authenticated user.
func (h *APIHandler) UserStatsHandler(w http.ResponseWriter, r *http.Request) {
	authID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Login required")
		return
	}

	userID, err := h.resolver.Resolve(authID, GetEmailFromContext(r.Context()))
	if err != nil {
		if !errors.Is(err, identity.ErrIdentityUnresolved) {
			logger.Error("[UserStats] identity lookup failed", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
			return
		}
		userID = authID
	}

	stats, err := h.ledger.UserStats(userID, time.Now())
	if err != nil {
		logger.Error("[UserStats] failed to compute stats",
			logger.String("userId", userID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
