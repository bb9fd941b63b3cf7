package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/akkm9120/sctp02-crud-mongo/internal/httputil"
	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service   *Service
	tokens    *TokenManager
	logger    *slog.Logger
	metrics   *metrics.Metrics
	validator *validator.Validate
}

func NewHandler(service *Service, tokens *TokenManager, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:   service,
		tokens:    tokens,
		logger:    logger,
		metrics:   metrics,
		validator: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/user", h.Signup)
	router.Post("/login", h.Login)

	router.Group(func(r chi.Router) {
		r.Use(Middleware(h.tokens, h.logger))
		r.Get("/profile", h.Profile)
		r.Get("/payment", h.Payment)
	})
}

// Signup creates a new account
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, httputil.KindValidation, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.WarnContext(r.Context(), "validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, httputil.KindValidation, "Email and password must be provided")
		return
	}

	result, err := h.service.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordUserSignedUp(r.Context())
	h.logger.InfoContext(r.Context(), "user signed up", "user_id", result.InsertedID)

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
	})
}

// Login exchanges credentials for a token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, httputil.KindValidation, "invalid request body")
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.metrics.RecordLogin(r.Context(), "failure")
		} else {
			h.metrics.RecordLogin(r.Context(), "error")
		}
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordLogin(r.Context(), "success")
	h.logger.InfoContext(r.Context(), "user logged in", "email", req.Email)

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"token": token,
	})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "success in accessing protected route",
		"payload": claims,
	})
}

func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "accessing protected payment route",
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		httputil.RespondWithError(w, http.StatusBadRequest, httputil.KindAuthentication, "Invalid login credentials")
	case errors.Is(err, ErrPasswordTooLong):
		httputil.RespondWithError(w, http.StatusBadRequest, httputil.KindValidation, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "auth operation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, httputil.KindStore, err.Error())
	}
}
