package handler

import (
	"net/http"

	"lotto-pos/internal/service"
)

func (h *Handler) saveAgent(w http.ResponseWriter, r *http.Request) {
	var input service.SaveAgentInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	agent, err := h.agents.Save(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, agent)
}

func (h *Handler) listAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agents.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, agents)
}

func (h *Handler) getAgent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid agent id")
		return
	}

	agent, err := h.agents.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, agent)
}

func (h *Handler) agentSlips(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid agent id")
		return
	}

	slips, err := h.slips.ListByAgent(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slips)
}
