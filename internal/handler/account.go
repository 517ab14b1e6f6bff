package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dropline/dropline/internal/handler/dto"
	"github.com/dropline/dropline/internal/service"
)

// Error details for unknown users.
const (
	detailLoginNotFound   = "User not found. Please sign up first."
	detailProfileNotFound = "User not found"
)

// AccountHandler handles signup, login and profile endpoints.
type AccountHandler struct {
	svc      *service.AccountService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:      svc,
		logger:   logger,
		validate: newValidator(),
	}
}

// Signup handles POST /auth/signup.
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	user, created, err := h.svc.Signup(r.Context(), service.ProfileInput{
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err, detailLoginNotFound)
		return
	}

	response := dto.AuthResponse{
		Status: dto.StatusOK,
		User:   dto.ToUserResponse(user),
	}
	if created {
		h.logger.Info("user_created", "user_id", user.ID)
		response.ID = user.ID
	}
	writeJSON(w, http.StatusOK, response)
}

// Login handles POST /auth/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	user, err := h.svc.Login(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, r, h.logger, err, detailLoginNotFound)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Status: dto.StatusOK,
		User:   dto.ToUserResponse(user),
	})
}

// GetProfile handles GET /profile?email=.
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	query := dto.ProfileQuery{Email: r.URL.Query().Get("email")}
	if err := h.validate.Struct(&query); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	user, err := h.svc.GetProfile(r.Context(), query.Email)
	if err != nil {
		handleServiceError(w, r, h.logger, err, detailProfileNotFound)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// UpdateProfile handles PUT /profile.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), service.ProfileInput{
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err, detailProfileNotFound)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Status: dto.StatusOK,
		User:   dto.ToUserResponse(user),
	})
}
