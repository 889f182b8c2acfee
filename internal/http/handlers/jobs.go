package handlers

import (
	"net/http"

	"github.com/hongminglow/civic-engine/internal/economy"
	"github.com/hongminglow/civic-engine/internal/http/respond"
	"github.com/hongminglow/civic-engine/internal/middleware"
)

// JobsHandler exposes the job catalog and the apply/complete lifecycle.
type JobsHandler struct {
	engine *economy.Engine
}

// NewJobsHandler constructs the handler.
func NewJobsHandler(engine *economy.Engine) *JobsHandler {
	return &JobsHandler{engine: engine}
}

// Register attaches job routes to the mux.
func (h *JobsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /jobs", h.handleList)
	mux.HandleFunc("GET /jobs/{id}", h.handleGet)
	mux.HandleFunc("POST /jobs/{id}/apply", h.handleApply)
	mux.HandleFunc("POST /jobs/{id}/complete", h.handleComplete)
	mux.HandleFunc("GET /me/attempts", h.handleAttempts)
}

func (h *JobsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.engine.Jobs(r.Context())
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "job catalog", jobs)
}

func (h *JobsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	job, err := h.engine.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "job", job)
}

func (h *JobsHandler) handleApply(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.engine.Apply(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "application accepted", attempt)
}

func (h *JobsHandler) handleComplete(w http.ResponseWriter, r *http.Request) {
	user, err := h.engine.Complete(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "job completed", user)
}

func (h *JobsHandler) handleAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.engine.Attempts(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "job attempts", attempts)
}
