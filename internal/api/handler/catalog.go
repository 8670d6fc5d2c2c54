// internal/api/handler/catalog.go
package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/ledger"
	"betslip-wallet/internal/service"
	"betslip-wallet/internal/util"
)

// MatchCatalog lists the fixtures of a day.
type MatchCatalog interface {
	Matches(ctx context.Context, day string) ([]domain.Match, error)
}

// CatalogHandler serves the wagering limits and the fixture list.
type CatalogHandler struct {
	responder
	limits  service.Limits
	catalog MatchCatalog
	now     func() time.Time
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(limits service.Limits, catalog MatchCatalog, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		responder: newResponder(logger),
		limits:    limits,
		catalog:   catalog,
		now:       time.Now,
	}
}

// GetLimits returns the fee, minimums and commission in force now.
// GET /api/limits
func (h *CatalogHandler) GetLimits(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.limits.View(h.now()))
}

// ListMatches returns the fixtures of a day, today by default.
// GET /api/matches?date=2026-10-15
func (h *CatalogHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	if day == "" {
		day = h.limits.BetslipDay(h.now())
	} else if _, err := time.Parse(ledger.DayLayout, day); err != nil {
		h.respondWithError(w, fmt.Errorf("date must be YYYY-MM-DD: %w", util.ErrInvalidInput))
		return
	}

	matches, err := h.catalog.Matches(r.Context(), day)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"date":    day,
		"matches": matches,
	})
}
