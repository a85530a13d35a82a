package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ihadi/timetrack-be/internal/auth"
	"github.com/ihadi/timetrack-be/internal/http/respond"
	"github.com/ihadi/timetrack-be/internal/middleware"
	"github.com/ihadi/timetrack-be/internal/models"
	"github.com/ihadi/timetrack-be/internal/models/dto"
	"github.com/ihadi/timetrack-be/internal/storage"
)

// AuthHandler owns registration, login, and profile endpoints.
type AuthHandler struct {
	store   storage.UserStore
	tokens  *auth.TokenManager
	policy  auth.DomainPolicy
	limiter *middleware.RateLimiter
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager, policy auth.DomainPolicy, limiter *middleware.RateLimiter) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, policy: policy, limiter: limiter}
}

// Register attaches auth routes to the mux. The credential endpoints sit
// behind the per-IP rate limiter; the profile endpoints require a token.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /api/auth/register", h.limiter.Limit(http.HandlerFunc(h.handleRegister)))
	mux.Handle("POST /api/auth/login", h.limiter.Limit(http.HandlerFunc(h.handleLogin)))
	mux.Handle("GET /api/auth/profile", middleware.RequireAuth(h.tokens, http.HandlerFunc(h.handleGetProfile)))
	mux.Handle("PUT /api/auth/profile", middleware.RequireAuth(h.tokens, http.HandlerFunc(h.handleUpdateProfile)))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.policy.Allows(req.Email) {
		respond.Error(w, http.StatusBadRequest, "only "+h.policy.Domain()+" emails are allowed")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	tech := models.Technician{
		Email:        strings.TrimSpace(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: passwordHash,
	}
	created, err := h.store.CreateUser(r.Context(), tech)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "email is already registered")
			return
		}
		log.Printf("create technician: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := h.tokens.Generate(created)
	if err != nil {
		log.Printf("generate token: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusCreated, "technician registered successfully", dto.AuthResponse{
		Token: token,
		User:  dto.NewTechnicianResponse(created),
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if !h.policy.Allows(req.Email) {
		respond.Error(w, http.StatusBadRequest, "only "+h.policy.Domain()+" emails are allowed")
		return
	}

	tech, err := h.store.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("fetch technician: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !auth.CheckPassword(tech.PasswordHash, req.Password) {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Generate(tech)
	if err != nil {
		log.Printf("generate token: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusOK, "login successful", dto.AuthResponse{
		Token: token,
		User:  dto.NewTechnicianResponse(tech),
	})
}

func (h *AuthHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	tech, err := h.store.FindByID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "technician not found")
			return
		}
		log.Printf("fetch technician: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusOK, "profile retrieved successfully", dto.NewTechnicianResponse(tech))
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	tech, err := h.store.FindByID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "technician not found")
			return
		}
		log.Printf("fetch technician: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if email := strings.TrimSpace(req.Email); email != "" && email != tech.Email {
		// the domain policy applies to email changes exactly as it does
		// to registration
		if !h.policy.Allows(email) {
			respond.Error(w, http.StatusBadRequest, "only "+h.policy.Domain()+" emails are allowed")
			return
		}
		tech.Email = email
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		tech.Name = name
	}
	if req.Password != "" {
		passwordHash, err := auth.HashPassword(req.Password)
		if err != nil {
			respond.Error(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		tech.PasswordHash = passwordHash
	}

	updated, err := h.store.UpdateUser(r.Context(), tech)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "email is already in use")
			return
		}
		log.Printf("update technician: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusOK, "profile updated successfully", dto.NewTechnicianResponse(updated))
}
