package handler

import (
	"net/http"

	"lotto-pos/internal/service"
)

func (h *Handler) openDraw(w http.ResponseWriter, r *http.Request) {
	var input service.OpenDrawInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	draw, err := h.draws.Open(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, draw)
}

func (h *Handler) listDraws(w http.ResponseWriter, r *http.Request) {
	draws, err := h.draws.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draws)
}

func (h *Handler) getOpenDraw(w http.ResponseWriter, r *http.Request) {
	draw, err := h.draws.GetOpen(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draw)
}

func (h *Handler) getDraw(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid draw id")
		return
	}

	draw, err := h.draws.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draw)
}

func (h *Handler) updateDraw(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid draw id")
		return
	}

	var input service.OpenDrawInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	draw, err := h.draws.UpdateConfig(r.Context(), id, input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draw)
}

func (h *Handler) closeDraw(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid draw id")
		return
	}

	draw, err := h.draws.CloseBetting(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draw)
}

func (h *Handler) closeWithResult(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid draw id")
		return
	}

	var input service.ResultInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	draw, err := h.draws.CloseWithResult(r.Context(), id, input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draw)
}

func (h *Handler) amendResult(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid draw id")
		return
	}

	var input service.ResultInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	draw, err := h.draws.AmendResult(r.Context(), id, input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, draw)
}

func (h *Handler) drawSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid draw id")
		return
	}

	summary, err := h.reports.DrawSummary(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) agentReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid draw id")
		return
	}

	report, err := h.reports.AgentReport(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
