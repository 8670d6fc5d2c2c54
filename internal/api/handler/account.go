// internal/api/handler/account.go
package handler

import (
	"net/http"

	"go.uber.org/zap"

	"betslip-wallet/internal/api/middleware"
	"betslip-wallet/internal/api/types"
	"betslip-wallet/internal/service"
	"betslip-wallet/internal/util"
)

// AccountHandler handles HTTP requests related to the caller's account.
type AccountHandler struct {
	responder
	service service.WageringService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc service.WageringService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		responder: newResponder(logger),
		service:   svc,
	}
}

// CreateAccountRequest represents the request body for opening an account.
type CreateAccountRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"required,numeric,min=10,max=15"`
}

// CreateAccount opens the caller's account with the starting bonus.
// POST /api/account
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	var req CreateAccountRequest
	if err := h.decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if req.Email == "" {
		req.Email = claims.Email
	}

	account, err := h.service.CreateAccount(r.Context(), claims.Subject, req.Email, req.Phone)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, account)
}

// GetAccount returns the caller's account and balance.
// GET /api/account
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := callerAccount(r, h.service)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, account)
}

// GetTransactionHistory returns a page of the caller's transactions.
// GET /api/account/transactions?limit=20&offset=0
func (h *AccountHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
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

	transactions, total, err := h.service.GetTransactionHistory(r.Context(), account.ID, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.NewPage(transactions, limit, offset, total))
}
