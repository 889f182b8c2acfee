package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hongminglow/civic-engine/internal/economy"
	"github.com/hongminglow/civic-engine/internal/http/respond"
	"github.com/hongminglow/civic-engine/internal/middleware"
	"github.com/hongminglow/civic-engine/internal/models/dto"
)

// WalletHandler exposes transfers and ledger history for the caller.
type WalletHandler struct {
	engine *economy.Engine
}

// NewWalletHandler constructs the handler.
func NewWalletHandler(engine *economy.Engine) *WalletHandler {
	return &WalletHandler{engine: engine}
}

// Register attaches wallet routes to the mux.
func (h *WalletHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /wallet/transfer", h.handleTransfer)
	mux.HandleFunc("GET /me/transactions", h.handleHistory)
}

func (h *WalletHandler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_input", "invalid JSON payload")
		return
	}

	tx, err := h.engine.Transfer(r.Context(), middleware.UserID(r.Context()), req.ToUserID, req.Amount)
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "transfer completed", tx)
}

func (h *WalletHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), 50)
	txs, err := h.engine.History(r.Context(), middleware.UserID(r.Context()), limit)
	if err != nil {
		engineError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "transaction history", txs)
}

func parseLimit(raw string, def int) int {
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}
