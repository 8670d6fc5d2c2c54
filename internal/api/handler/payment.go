// internal/api/handler/payment.go
package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"betslip-wallet/internal/gateway"
	"betslip-wallet/internal/service"
	"betslip-wallet/internal/util"
)

// CallbackVerifier authenticates gateway callbacks.
type CallbackVerifier interface {
	VerifyCallback(body []byte, signature string) error
}

// PaymentHandler handles deposits, withdrawals and gateway callbacks.
type PaymentHandler struct {
	responder
	payments service.PaymentService
	accounts AccountResolver
	verifier CallbackVerifier
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments service.PaymentService, accounts AccountResolver, verifier CallbackVerifier, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		responder: newResponder(logger),
		payments:  payments,
		accounts:  accounts,
		verifier:  verifier,
	}
}

// FundingRequest represents the request body for a deposit or withdrawal.
type FundingRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Phone  string          `json:"phone" validate:"required,numeric,min=10,max=15"`
}

// Deposit starts a mobile-money collection. The balance is credited when the
// gateway confirms it.
// POST /api/deposits
func (h *PaymentHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req FundingRequest
	if err := h.decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	account, err := callerAccount(r, h.accounts)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	deposit, resp, err := h.payments.InitiateDeposit(r.Context(), account.ID, req.Amount, req.Phone)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":      "Confirm the payment on your phone",
		"transaction":  deposit,
		"tracking_id":  resp.TrackingID,
		"redirect_url": resp.RedirectURL,
	})
}

// Withdraw pays the requested amount less commission to the caller's phone.
// POST /api/withdrawals
func (h *PaymentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req FundingRequest
	if err := h.decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	account, err := callerAccount(r, h.accounts)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	updated, withdrawal, err := h.payments.RequestWithdrawal(r.Context(), account.ID, req.Amount, req.Phone)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Withdrawal sent",
		"new_balance": updated.Balance,
		"transaction": withdrawal,
	})
}

// DepositCallback applies a signed collection result from the gateway.
// POST /gateway/callbacks/deposit
func (h *PaymentHandler) DepositCallback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.respondWithError(w, fmt.Errorf("read callback: %w", util.ErrInvalidInput))
		return
	}
	if err := h.verifier.VerifyCallback(body, r.Header.Get(gateway.SignatureHeader)); err != nil {
		h.logger.Warn("rejected gateway callback", zap.String("remote", r.RemoteAddr), zap.Error(err))
		h.respondWithError(w, err)
		return
	}

	var callback gateway.Callback
	if err := json.Unmarshal(body, &callback); err != nil {
		h.respondWithError(w, fmt.Errorf("malformed callback: %w", util.ErrInvalidInput))
		return
	}

	deposit, err := h.payments.ConfirmDeposit(r.Context(), callback)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reference": deposit.Reference,
		"status":    deposit.Status,
	})
}
