// internal/api/handler/respond.go

// Package handler holds the HTTP handlers of the API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"betslip-wallet/internal/api/middleware"
	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/util"
)

// DefaultTimeout bounds request handling, except for streams.
const DefaultTimeout = 30 * time.Second

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxBodyBytes     = 1 << 20
)

// responder carries the JSON helpers shared by every handler.
type responder struct {
	logger   *zap.Logger
	validate *validator.Validate
}

func newResponder(logger *zap.Logger) responder {
	return responder{logger: logger, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Helper function to send JSON responses.
func (h responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal JSON response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h responder) respondWithError(w http.ResponseWriter, err error) {
	statusCode, message := errorStatus(err)
	if statusCode == http.StatusInternalServerError {
		h.logger.Error("unhandled service error", zap.Error(err))
	}
	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// errorStatus maps a service error to its HTTP status and client message.
func errorStatus(err error) (int, string) {
	switch {
	case util.IsError(err, util.ErrInvalidAmount), util.IsError(err, util.ErrInvalidOdds), util.IsError(err, util.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case util.IsError(err, util.ErrBelowMinimum):
		return http.StatusUnprocessableEntity, err.Error()
	case util.IsError(err, util.ErrInsufficientBalance):
		return http.StatusPaymentRequired, "Insufficient balance"
	case util.IsError(err, util.ErrBetslipUnpaid):
		return http.StatusForbidden, "Pay today's betslip fee before betting"
	case util.IsError(err, util.ErrAlreadyPaid):
		return http.StatusConflict, "Today's betslip fee is already paid"
	case util.IsError(err, util.ErrDuplicateEntry):
		return http.StatusConflict, "Account already exists"
	case util.IsError(err, util.ErrBetAlreadySettled), util.IsError(err, util.ErrOddsChanged),
		util.IsError(err, util.ErrBalanceConflict), util.IsError(err, util.ErrAmountMismatch):
		return http.StatusConflict, err.Error()
	case util.IsError(err, util.ErrNotFound), util.IsError(err, util.ErrAccountNotFound), util.IsError(err, util.ErrUserNotFound):
		return http.StatusNotFound, "Resource not found"
	case util.IsError(err, util.ErrInvalidSignature):
		return http.StatusUnauthorized, "Invalid signature"
	case util.IsError(err, util.ErrGatewayUnavailable), util.IsError(err, util.ErrPaymentFailed):
		return http.StatusBadGateway, err.Error()
	case util.IsError(err, util.ErrOddsUnavailable):
		return http.StatusServiceUnavailable, "Odds are currently unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// decode reads a JSON body into dst and validates its struct tags.
func (h responder) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %w", util.ErrInvalidInput)
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("field %s failed %q: %w", verrs[0].Field(), verrs[0].Tag(), util.ErrInvalidInput)
		}
		return fmt.Errorf("%v: %w", err, util.ErrInvalidInput)
	}
	return nil
}

// page parses limit and offset query parameters.
func page(r *http.Request) (int, int, error) {
	limit, offset := defaultPageLimit, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("limit must be a positive integer: %w", util.ErrInvalidInput)
		}
		limit = min(n, maxPageLimit)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("offset must be a non-negative integer: %w", util.ErrInvalidInput)
		}
		offset = n
	}
	return limit, offset, nil
}

// AccountResolver maps the authenticated subject to its account.
type AccountResolver interface {
	GetAccountBySubject(ctx context.Context, subject string) (*domain.Account, error)
}

// callerAccount returns the account of the authenticated caller.
func callerAccount(r *http.Request, accounts AccountResolver) (*domain.Account, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil, fmt.Errorf("missing credentials: %w", util.ErrInvalidInput)
	}
	return accounts.GetAccountBySubject(r.Context(), claims.Subject)
}
