// internal/api/handler/betslip.go
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"betslip-wallet/internal/api/types"
	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/service"
	"betslip-wallet/internal/util"
)

// BetslipHandler handles the daily betslip and the bets placed on it.
type BetslipHandler struct {
	responder
	service service.WageringService
}

// NewBetslipHandler creates a new BetslipHandler.
func NewBetslipHandler(svc service.WageringService, logger *zap.Logger) *BetslipHandler {
	return &BetslipHandler{
		responder: newResponder(logger),
		service:   svc,
	}
}

// GetBetslip returns today's betslip.
// GET /api/betslip
func (h *BetslipHandler) GetBetslip(w http.ResponseWriter, r *http.Request) {
	account, err := callerAccount(r, h.service)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	slip, err := h.service.GetBetslip(r.Context(), account.ID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, slip)
}

// PayDailyFee pays today's fee and opens the betslip.
// POST /api/betslip/pay
func (h *BetslipHandler) PayDailyFee(w http.ResponseWriter, r *http.Request) {
	account, err := callerAccount(r, h.service)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	updated, slip, err := h.service.PayDailyFee(r.Context(), account.ID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Betslip opened",
		"new_balance": updated.Balance,
		"betslip":     slip,
	})
}

// PlaceBetRequest represents the request body for placing a bet.
type PlaceBetRequest struct {
	MatchID      string           `json:"match_id" validate:"required"`
	Market       string           `json:"market" validate:"required"`
	Selection    string           `json:"selection" validate:"required"`
	Amount       decimal.Decimal  `json:"amount"`
	ExpectedOdds *decimal.Decimal `json:"expected_odds,omitempty"`
}

// PlaceBet stakes on one selection of today's betslip.
// POST /api/bets
func (h *BetslipHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	var req PlaceBetRequest
	if err := h.decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	account, err := callerAccount(r, h.service)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	updated, bet, err := h.service.PlaceBet(r.Context(), account.ID, service.PlaceBetInput{
		MatchID:      req.MatchID,
		Market:       req.Market,
		Selection:    req.Selection,
		Amount:       req.Amount,
		ExpectedOdds: req.ExpectedOdds,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Bet placed",
		"new_balance": updated.Balance,
		"bet":         bet,
	})
}

// ListBets returns a page of the caller's bets.
// GET /api/bets?limit=20&offset=0
func (h *BetslipHandler) ListBets(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	account, err := callerAccount(r, h.service)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	bets, total, err := h.service.ListBets(r.Context(), account.ID, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.NewPage(bets, limit, offset, total))
}

// SettleBetRequest represents the request body for settling a bet.
type SettleBetRequest struct {
	Status string `json:"status" validate:"required,oneof=won lost void"`
}

// SettleBet records a bet result. Restricted to the service role.
// POST /api/bets/{betID}/settle
func (h *BetslipHandler) SettleBet(w http.ResponseWriter, r *http.Request) {
	betID, err := strconv.ParseInt(chi.URLParam(r, "betID"), 10, 64)
	if err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	var req SettleBetRequest
	if err := h.decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	bet, err := h.service.SettleBet(r.Context(), betID, domain.BetStatus(req.Status))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, bet)
}
