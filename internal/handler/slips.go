package handler

import (
	"net/http"

	"github.com/google/uuid"

	"lotto-pos/internal/service"
)

func (h *Handler) createSlip(w http.ResponseWriter, r *http.Request) {
	var input service.CreateSlipInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	slip, err := h.slips.Create(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, slip)
}

func (h *Handler) listSlips(w http.ResponseWriter, r *http.Request) {
	var drawID *uuid.UUID
	if raw := r.URL.Query().Get("draw_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondBadRequest(w, "invalid draw_id")
			return
		}
		drawID = &id
	}

	slips, err := h.slips.List(r.Context(), drawID, 0)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slips)
}

func (h *Handler) getSlip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid slip id")
		return
	}

	slip, err := h.slips.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slip)
}

func (h *Handler) slipPayout(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid slip id")
		return
	}

	outcome, err := h.settlement.SlipPayout(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid slip id")
		return
	}

	if err := h.slips.MarkPaid(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) markUnpaidDue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid slip id")
		return
	}

	if err := h.slips.MarkUnpaidDue(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) assignAgent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid slip id")
		return
	}

	var body struct {
		AgentID *uuid.UUID `json:"agentId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	if err := h.slips.AssignAgent(r.Context(), id, body.AgentID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
