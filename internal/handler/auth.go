package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/crawlingsloth/lonumirus/internal/auth"
	"github.com/crawlingsloth/lonumirus/internal/user"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SwitchRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin delivery customer"`
}

type AuthHandler struct {
	service  auth.Service
	validate *validator.Validate
}

func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{service: service, validate: validator.New()}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.handleLogin)
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Post("/auth/switch-role", h.handleSwitchRole)
		r.Get("/auth/me", h.handleMe)
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		if !respondValidationError(w, err) {
			respondWithError(w, http.StatusInternalServerError, "internal validation error")
		}
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Error().Err(err).Msg("handler: login failed")
		respondWithError(w, http.StatusInternalServerError, "login failed")
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

// handleSwitchRole reissues the caller's session with a different effective
// role. The stored user record is untouched.
func (h *AuthHandler) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	var req SwitchRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		if !respondValidationError(w, err) {
			respondWithError(w, http.StatusInternalServerError, "internal validation error")
		}
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	session, err := h.service.SwitchRole(r.Context(), claims, user.Role(req.Role))
	if err != nil {
		log.Error().Err(err).Msg("handler: role switch failed")
		respondWithError(w, mapErrorToStatusCode(err), "failed to switch role")
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	u, err := h.service.CurrentUser(r.Context(), claims)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to load current user")
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}
