package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/hongminglow/civic-engine/internal/economy"
	"github.com/hongminglow/civic-engine/internal/http/respond"
	"github.com/hongminglow/civic-engine/internal/storage"
)

// engineError maps an engine error to the HTTP status and stable
// machine-readable code the client contract promises.
func engineError(w http.ResponseWriter, err error) {
	type mapping struct {
		status int
		code   string
	}
	known := []struct {
		err error
		m   mapping
	}{
		{economy.ErrInvalidAmount, mapping{http.StatusBadRequest, "invalid_amount"}},
		{economy.ErrInvalidInput, mapping{http.StatusBadRequest, "invalid_input"}},
		{economy.ErrUserNotFound, mapping{http.StatusNotFound, "user_not_found"}},
		{economy.ErrJobNotFound, mapping{http.StatusNotFound, "job_not_found"}},
		{economy.ErrProposalNotFound, mapping{http.StatusNotFound, "proposal_not_found"}},
		{economy.ErrSelfTransfer, mapping{http.StatusConflict, "self_transfer"}},
		{economy.ErrLevelTooLow, mapping{http.StatusConflict, "level_too_low"}},
		{economy.ErrAlreadyActive, mapping{http.StatusConflict, "already_active"}},
		{economy.ErrAlreadyCompleted, mapping{http.StatusConflict, "already_completed"}},
		{economy.ErrNotActive, mapping{http.StatusConflict, "not_active"}},
		{economy.ErrProposalClosed, mapping{http.StatusConflict, "proposal_closed"}},
		{economy.ErrAlreadyVoted, mapping{http.StatusConflict, "already_voted"}},
		{storage.ErrAlreadyExists, mapping{http.StatusConflict, "already_exists"}},
		{economy.ErrInsufficientFunds, mapping{http.StatusUnprocessableEntity, "insufficient_funds"}},
	}
	for _, k := range known {
		if errors.Is(err, k.err) {
			respond.Error(w, k.m.status, k.m.code, err.Error())
			return
		}
	}

	log.Printf("unexpected engine error: %v", err)
	respond.Error(w, http.StatusInternalServerError, "internal", "internal error")
}
