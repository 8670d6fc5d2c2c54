// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"betslip-wallet/internal/api/handler"
	"betslip-wallet/internal/api/middleware"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Account *handler.AccountHandler
	Betslip *handler.BetslipHandler
	Payment *handler.PaymentHandler
	Catalog *handler.CatalogHandler
	Stream  *handler.StreamHandler
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, jwtSecret string, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimiddleware.RequestID)          // Add a request ID to the context
	r.Use(chimiddleware.RealIP)             // Use the real IP address
	r.Use(middleware.RequestLogger(logger)) // Log HTTP requests
	r.Use(chimiddleware.Recoverer)          // Recover from panics and return 500

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Gateway callbacks authenticate by signature, not by token.
	r.With(chimiddleware.Timeout(handler.DefaultTimeout)).
		Post("/gateway/callbacks/deposit", h.Payment.DepositCallback)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.JWTAuth(jwtSecret, logger))

		// Streams stay open past the request timeout.
		r.Get("/account/stream", h.Stream.Stream)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(handler.DefaultTimeout))

			r.Post("/account", h.Account.CreateAccount)
			r.Get("/account", h.Account.GetAccount)
			r.Get("/account/transactions", h.Account.GetTransactionHistory)

			r.Get("/limits", h.Catalog.GetLimits)
			r.Get("/matches", h.Catalog.ListMatches)

			r.Get("/betslip", h.Betslip.GetBetslip)
			r.Post("/betslip/pay", h.Betslip.PayDailyFee)
			r.Post("/bets", h.Betslip.PlaceBet)
			r.Get("/bets", h.Betslip.ListBets)
			r.With(middleware.RequireRole(middleware.ServiceRole)).
				Post("/bets/{betID}/settle", h.Betslip.SettleBet)

			r.Post("/deposits", h.Payment.Deposit)
			r.Post("/withdrawals", h.Payment.Withdraw)
		})
	})

	return r
}
