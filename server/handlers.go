package server

import (
	"encoding/json"
	"net/http"

	"CupBack/config"
	"CupBack/core/identity"
	"CupBack/core/ledger"
	"CupBack/logger"
	"CupBack/repository"
)

// APIHandler bundles the dependencies of all HTTP handlers.
type APIHandler struct {
	userRepo repository.UserRepository
	scanRepo repository.ScanRepository
	postRepo repository.PostRepository
	resolver *identity.Resolver
	ledger   *ledger.Ledger
	codes    *ledger.CodeValidator
	hub      *EventHub
	cfg      *config.Config
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	scanRepo repository.ScanRepository,
	postRepo repository.PostRepository,
	resolver *identity.Resolver,
	l *ledger.Ledger,
	codes *ledger.CodeValidator,
	hub *EventHub,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo: userRepo,
		scanRepo: scanRepo,
		postRepo: postRepo,
		resolver: resolver,
		ledger:   l,
		codes:    codes,
		hub:      hub,
		cfg:      cfg,
	}
}

// writeJSON writes a success envelope.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	}); err != nil {
		logger.Error("[HTTP] failed to encode response", logger.ErrorField(err))
	}
}

// writeRaw writes a pre-serialized success payload (cached responses).
func writeRaw(w http.ResponseWriter, status int, payload string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(payload)); err != nil {
		logger.Error("[HTTP] failed to write response", logger.ErrorField(err))
	}
}

// writeError writes a failure envelope. Collaborator errors never reach the
// client raw; callers pick the message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	}); err != nil {
		logger.Error("[HTTP] failed to encode error response", logger.ErrorField(err))
	}
}
