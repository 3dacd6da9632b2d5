// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/retreat-status/internal/lifecycle"
	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
	"github.com/Shivanand-hulikatti/retreat-status/internal/service"
)

const defaultCountdownInterval = time.Second

// RetreatHandler holds all HTTP handlers for the retreat API.
type RetreatHandler struct {
	svc               *service.RetreatService
	logger            *slog.Logger
	countdownInterval time.Duration
	pongWait          time.Duration
	allowedOrigins    []string
}

// Option customises a RetreatHandler.
type Option func(*RetreatHandler)

// WithCountdownInterval sets the websocket countdown tick.
func WithCountdownInterval(d time.Duration) Option {
	return func(h *RetreatHandler) {
		if d > 0 {
			h.countdownInterval = d
		}
	}
}

// WithPongWait sets how long a countdown stream waits for a pong before
// dropping the client. Pings are sent at nine tenths of it.
func WithPongWait(d time.Duration) Option {
	return func(h *RetreatHandler) {
		if d > 0 {
			h.pongWait = d
		}
	}
}

// WithAllowedOrigins restricts websocket upgrades to origins. Empty allows all.
func WithAllowedOrigins(origins []string) Option {
	return func(h *RetreatHandler) {
		h.allowedOrigins = origins
	}
}

// NewRetreatHandler constructs a RetreatHandler.
func NewRetreatHandler(svc *service.RetreatService, logger *slog.Logger, opts ...Option) *RetreatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &RetreatHandler{
		svc:               svc,
		logger:            logger,
		countdownInterval: defaultCountdownInterval,
		pongWait:          defaultPongWait,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// Routes mounts the public retreat and lead endpoints on r.
func (h *RetreatHandler) Routes(r chi.Router) {
	r.Route("/retreats", func(r chi.Router) {
		r.Get("/", h.ListRetreats)
		r.Get("/active", h.ListActive)
		r.Get("/past", h.ListPast)
		r.Get("/next", h.NextRetreat)
		r.Get("/{id}", h.GetRetreat)
		r.Get("/{id}/countdown", h.Countdown)
		r.Get("/{id}/countdown/ws", h.CountdownWS)
	})
	r.Post("/leads", h.SubmitLead)
}

// ListRetreats handles GET /retreats?phase=
func (h *RetreatHandler) ListRetreats(w http.ResponseWriter, r *http.Request) {
	var filter service.ListFilter
	if raw := r.URL.Query().Get("phase"); raw != "" {
		phase, ok := lifecycle.ParsePhase(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, codeValidationFailed, fmt.Sprintf("unknown phase %q", raw))
			return
		}
		filter.Phase = phase
	}

	views, err := h.svc.ListRetreats(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// ListActive handles GET /retreats/active
func (h *RetreatHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// ListPast handles GET /retreats/past
func (h *RetreatHandler) ListPast(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ListPast(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// NextRetreat handles GET /retreats/next
// Returns the upcoming retreat featured on the landing page.
func (h *RetreatHandler) NextRetreat(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.NextRetreat(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetRetreat handles GET /retreats/{id}
func (h *RetreatHandler) GetRetreat(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetRetreat(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Countdown handles GET /retreats/{id}/countdown
func (h *RetreatHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	frame, err := h.svc.Countdown(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// SubmitLead handles POST /leads
func (h *RetreatHandler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLeadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body: "+err.Error())
		return
	}

	lead, err := h.svc.SubmitLead(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

// Overview handles GET /admin/overview
func (h *RetreatHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Overview(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
