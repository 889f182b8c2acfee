package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hongminglow/civic-engine/internal/economy"
	"github.com/hongminglow/civic-engine/internal/http/respond"
	"github.com/hongminglow/civic-engine/internal/middleware"
	"github.com/hongminglow/civic-engine/internal/models/dto"
)

// GovernanceHandler exposes proposals and voting.
type GovernanceHandler struct {
	engine *economy.Engine
}

// NewGovernanceHandler constructs the handler.
func NewGovernanceHandler(engine *economy.Engine) *GovernanceHandler {
	return &GovernanceHandler{engine: engine}
}

// Register attaches governance routes to the mux.
func (h *GovernanceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /proposals", h.handleList)
	mux.HandleFunc("POST /proposals", h.handleCreate)
	mux.HandleFunc("GET /proposals/{id}", h.handleGet)
	mux.HandleFunc("POST /proposals/{id}/vote", h.handleVote)
	mux.HandleFunc("POST /proposals/{id}/close", h.handleClose)
}

func (h *GovernanceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.engine.Proposals(r.Context(), parseLimit(r.URL.Query().Get("limit"), 50))
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "proposals", proposals)
}

func (h *GovernanceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.ProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON payload")
		return
	}

	proposal, err := h.engine.CreateProposal(r.Context(), middleware.UserID(r.Context()), req.Title, req.Description)
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "proposal created", proposal)
}

func (h *GovernanceHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	proposal, err := h.engine.Proposal(r.Context(), r.PathValue("id"))
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "proposal", proposal)
}

func (h *GovernanceHandler) handleVote(w http.ResponseWriter, r *http.Request) {
	var req dto.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON payload")
		return
	}

	proposal, err := h.engine.Vote(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"), req.InFavor)
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "vote recorded", proposal)
}

func (h *GovernanceHandler) handleClose(w http.ResponseWriter, r *http.Request) {
	proposal, err := h.engine.CloseProposal(r.Context(), r.PathValue("id"))
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "proposal closed", proposal)
}
