package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/types"
	"go.uber.org/zap"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.fail(w, "registration failed", err)
		return
	}
	h.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	h.respondWithToken(w, http.StatusCreated, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, "login failed", err)
		return
	}
	h.respondWithToken(w, http.StatusOK, user)
}

// UpdatePasswordWithUserID handles password update requests with an explicit user ID.
func (h *AuthHandler) UpdatePasswordWithUserID(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req types.UpdatePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(w, "password update failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated successfully",
	})
}

func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return false
	}
	if err := dst.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": extractValidationErrors(err)})
		return false
	}
	return true
}

func (h *AuthHandler) fail(w http.ResponseWriter, msg string, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": publicMessage(err, status)})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
		return
	}
	writeJSON(w, status, types.LoginResponse{User: user, Token: token})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		// First error only
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
