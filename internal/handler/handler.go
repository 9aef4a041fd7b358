// Package handler exposes the back-office operations over HTTP.
// Transport only: requests are decoded, handed to the services, and the
// outcome is mapped to a status code. No domain rule lives here.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lotto-pos/internal/repository"
	"lotto-pos/internal/service"
)

// Handler bundles the services behind the HTTP API.
type Handler struct {
	slips      *service.SlipService
	draws      *service.DrawService
	agents     *service.AgentService
	settlement *service.SettlementService
	reports    *service.ReportService
}

// New creates a Handler over the given services.
func New(
	slips *service.SlipService,
	draws *service.DrawService,
	agents *service.AgentService,
	settlement *service.SettlementService,
	reports *service.ReportService,
) *Handler {
	return &Handler{
		slips:      slips,
		draws:      draws,
		agents:     agents,
		settlement: settlement,
		reports:    reports,
	}
}

// Routes builds the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/slips", func(r chi.Router) {
			r.Post("/", h.createSlip)
			r.Get("/", h.listSlips)
			r.Get("/{id}", h.getSlip)
			r.Get("/{id}/payout", h.slipPayout)
			r.Post("/{id}/pay", h.markPaid)
			r.Post("/{id}/unpaid-due", h.markUnpaidDue)
			r.Put("/{id}/agent", h.assignAgent)
		})
		r.Route("/draws", func(r chi.Router) {
			r.Post("/", h.openDraw)
			r.Get("/", h.listDraws)
			r.Get("/open", h.getOpenDraw)
			r.Get("/{id}", h.getDraw)
			r.Put("/{id}", h.updateDraw)
			r.Post("/{id}/close", h.closeDraw)
			r.Post("/{id}/result", h.closeWithResult)
			r.Put("/{id}/result", h.amendResult)
			r.Get("/{id}/summary", h.drawSummary)
			r.Get("/{id}/agents", h.agentReport)
		})
		r.Route("/agents", func(r chi.Router) {
			r.Post("/", h.saveAgent)
			r.Get("/", h.listAgents)
			r.Get("/{id}", h.getAgent)
			r.Get("/{id}/slips", h.agentSlips)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

// requestLogger logs one line per request with zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Error().Err(err).Msg("Failed to encode response")
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps service and repository errors to HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrSlipNotFound),
		errors.Is(err, repository.ErrDrawNotFound),
		errors.Is(err, repository.ErrAgentNotFound),
		errors.Is(err, repository.ErrNoOpenDraw):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrOpenDrawExists),
		errors.Is(err, service.ErrResultAlreadyRecorded),
		errors.Is(err, service.ErrEditWindowClosed),
		errors.Is(err, service.ErrDrawAlreadyClosed),
		errors.Is(err, service.ErrSlipNotWinning):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNoBetItems),
		errors.Is(err, service.ErrUnknownBetType),
		errors.Is(err, service.ErrInvalidBetNumber),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrDrawNotOpen),
		errors.Is(err, service.ErrNumberBanned),
		errors.Is(err, service.ErrNumberBlocked),
		errors.Is(err, service.ErrInvalidResult),
		errors.Is(err, service.ErrInvalidRate),
		errors.Is(err, service.ErrNoResultRecorded),
		errors.Is(err, service.ErrInvalidCommission),
		errors.Is(err, service.ErrInvalidPayoutPercent),
		errors.Is(err, service.ErrEmptyBannedSet):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
		respondJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

func respondBadRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
