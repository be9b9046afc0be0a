// Package handler exposes the first-access flows over HTTP. Issuer
// identity rides on the Origin header; bodies are JSON in and out.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"firstaccess/internal/auth/models"
	"firstaccess/internal/platform/middleware"
	"firstaccess/internal/transport/http/shared"
	dErrors "firstaccess/pkg/domain-errors"
)

// Service defines the first-access operations the handler needs.
type Service interface {
	SendToken(ctx context.Context, issuer string, req models.SendTokenRequest) (*models.SendTokenResponse, error)
	ValidateToken(ctx context.Context, issuer string, req models.ValidateTokenRequest) (*models.ValidateTokenResponse, error)
	TokenInfo(ctx context.Context, issuer, identifier string) (*models.TokenInfoResponse, error)
	SweepExpired(ctx context.Context) (int, error)
}

// Handler wires the first-access endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs the handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the first-access endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/send-token", h.HandleSendToken)
	r.Post("/auth/validate-token", h.HandleValidateToken)
	r.Get("/ticket/tokens/{identifier}", h.HandleTokenInfo)
	r.Post("/admin/sweep-expired", h.HandleSweep)
}

// issuer extracts the caller's issuer name from the Origin header.
func issuer(r *http.Request) string {
	return r.Header.Get("Origin")
}

func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return req, false
	}
	return req, true
}

// HandleSendToken handles POST /auth/send-token requests.
func (h *Handler) HandleSendToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := time.Now()

	req, ok := decode[models.SendTokenRequest](w, r)
	if !ok {
		return
	}

	resp, err := h.service.SendToken(ctx, issuer(r), req)
	if err != nil {
		h.logger.ErrorContext(ctx, "send token failed",
			"request_id", requestID,
			"code", string(dErrors.CodeOf(err)),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "send token handled",
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	shared.WriteJSON(w, http.StatusOK, resp)
}

// HandleValidateToken handles POST /auth/validate-token requests. A wrong
// or stale token is still a 200: the outcome lives in the body.
func (h *Handler) HandleValidateToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := decode[models.ValidateTokenRequest](w, r)
	if !ok {
		return
	}

	resp, err := h.service.ValidateToken(ctx, issuer(r), req)
	if err != nil {
		h.logger.ErrorContext(ctx, "validate token failed",
			"request_id", requestID,
			"code", string(dErrors.CodeOf(err)),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, resp)
}

// HandleTokenInfo handles GET /ticket/tokens/{identifier} requests.
func (h *Handler) HandleTokenInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.service.TokenInfo(ctx, issuer(r), chi.URLParam(r, "identifier"))
	if err != nil {
		h.logger.WarnContext(ctx, "token info lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"code", string(dErrors.CodeOf(err)),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, resp)
}

// HandleSweep handles POST /admin/sweep-expired requests.
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cleared, err := h.service.SweepExpired(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "sweep failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, models.SweepResponse{
		Cleared: cleared,
		Message: fmt.Sprintf("%d expired records cleared", cleared),
	})
}
