package handlers

import (
	"net/http"

	"github.com/hongminglow/civic-engine/internal/economy"
	"github.com/hongminglow/civic-engine/internal/http/respond"
	"github.com/hongminglow/civic-engine/internal/middleware"
)

// ProfileHandler exposes the caller's own record and the badge catalog.
type ProfileHandler struct {
	engine *economy.Engine
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(engine *economy.Engine) *ProfileHandler {
	return &ProfileHandler{engine: engine}
}

// Register attaches profile routes to the mux.
func (h *ProfileHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /me", h.handleMe)
	mux.HandleFunc("GET /badges", h.handleBadges)
}

func (h *ProfileHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.engine.User(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "profile", user)
}

func (h *ProfileHandler) handleBadges(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "badge catalog", h.engine.Badges())
}
