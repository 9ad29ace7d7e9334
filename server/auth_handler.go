package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"CupBack/cache"
	"CupBack/core/auth"
	"CupBack/logger"
	"CupBack/model"
	"CupBack/repository"

	"github.com/google/uuid"
)

// LoginRequest is the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler handles user login requests.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("[Login] failed to decode request body", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.userRepo.GetUserByUsername(req.Username)
	if err != nil {
		logger.Error("[Login] failed to query user", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	}
	if user == nil {
		logger.Warn("[Login] unknown user", logger.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "Unknown username")
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		logger.Warn("[Login] wrong password", logger.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "Wrong password")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		logger.Error("[Login] failed to generate token", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	}

	logger.Info("[Login] success", logger.String("username", user.Username))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// RegisterHandler handles user registration requests. Unknown body fields are
// rejected: the stored record has exactly the schema of model.User.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		logger.Error("[Register] failed to decode request body", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" || req.Nickname == "" {
		writeError(w, http.StatusBadRequest, "Username, password and nickname are required")
		return
	}

	// Uniqueness pre-checks for friendlier error messages. Username and
	// nickname both carry unique indexes, so a racing duplicate that slips
	// past these checks still fails in CreateUser with ErrDuplicateUser.
	if existing, err := h.userRepo.GetUserByUsername(req.Username); err != nil {
		logger.Error("[Register] failed to check username", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "Username already exists")
		return
	}
	if existing, err := h.userRepo.GetUserByNickname(req.Nickname); err != nil {
		logger.Error("[Register] failed to check nickname", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "Nickname already exists")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("[Register] failed to hash password", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to process password")
		return
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: hashedPassword,
		Nickname:     req.Nickname,
		Name:         req.Name,
		Department:   req.Department,
		Year:         req.Year,
		Email:        req.Email,
		CreatedAt:    time.Now(),
	}

	if err := h.userRepo.CreateUser(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			logger.Warn("[Register] duplicate user",
				logger.String("username", req.Username),
				logger.String("nickname", req.Nickname))
			writeError(w, http.StatusConflict, "Username or nickname already exists")
			return
		}
		logger.Error("[Register] failed to create user", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	// totalUsers and the leaderboards just changed: drop the cached views and
	// tell live clients.
	if err := cache.InvalidateAggregates(r.Context()); err != nil {
		logger.Warn("[Register] cache invalidation failed", logger.ErrorField(err))
	}
	cache.NotifyChanged(r.Context(), cache.CollectionUsers)

	token, err := auth.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		logger.Error("[Register] failed to generate token", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	logger.Info("[Register] user created",
		logger.String("userId", user.ID),
		logger.String("username", user.Username))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// AuthMiddleware checks for a valid JWT token and stashes the session
// identity in the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxKeyUsername, claims.Username)
		ctx = context.WithValue(ctx, ctxKeyEmail, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

type contextKey string

const (
	ctxKeyUserID   contextKey = "userID"
	ctxKeyUsername contextKey = "username"
	ctxKeyEmail    contextKey = "email"
)

// GetUserIDFromContext extracts the authenticated user id from the request context.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(ctxKeyUserID).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetEmailFromContext extracts the session email from the request context.
func GetEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(ctxKeyEmail).(string)
	return email
}
