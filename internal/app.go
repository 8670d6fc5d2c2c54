// internal/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	router "betslip-wallet/internal/api"
	"betslip-wallet/internal/api/handler"
	"betslip-wallet/internal/config"
	"betslip-wallet/internal/events"
	"betslip-wallet/internal/fixtures"
	"betslip-wallet/internal/gateway"
	"betslip-wallet/internal/jobs"
	"betslip-wallet/internal/metrics"
	"betslip-wallet/internal/repository/postgres"
	"betslip-wallet/internal/service"
	"betslip-wallet/internal/util"
	"betslip-wallet/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *zap.Logger
	DB     *sqlx.DB

	// Optional infrastructure, nil when not configured
	Redis       *redis.Client
	KafkaWriter *kafka.Writer

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Repositories
	Repositories service.Repositories

	// Services
	WageringService service.WageringService
	PaymentService  service.PaymentService

	// Background jobs
	Scheduler *jobs.Scheduler

	// HTTP API
	HTTPHandler http.Handler
	Streams     *handler.StreamHandler // closed on server shutdown
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{Logger: zap.NewNop()}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	if err := util.InitLogger(cfg.Env, cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = util.GetLogger()
	app.Logger.Info("application configuration loaded")

	// 3. Connect to Database and apply migrations
	database, err := db.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	if err := postgres.Migrate(ctx, app.DB.DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	app.Logger.Info("database connection established", zap.String("host", cfg.DB.Host))

	// 4. Connect optional infrastructure
	if cfg.Redis.Addr != "" {
		app.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.Logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	} else {
		app.Logger.Warn("REDIS_ADDR not set: odds are not cached and the account stream is disabled")
	}
	if len(cfg.Kafka.Brokers) > 0 {
		app.KafkaWriter = events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.LedgerTopic)
		app.Logger.Info("ledger event log enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	// 5. Initialize Repositories
	app.Repositories = service.Repositories{
		Users:        postgres.NewUserRepository(),
		Accounts:     postgres.NewAccountRepository(),
		Betslips:     postgres.NewBetslipRepository(),
		Bets:         postgres.NewBetRepository(),
		Transactions: postgres.NewTransactionRepository(),
	}

	// 6. Initialize collaborators
	limits, err := service.LimitsFromConfig(cfg.Ledger)
	if err != nil {
		return fmt.Errorf("invalid ledger configuration: %w", err)
	}

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:        cfg.Gateway.BaseURL,
		APIKey:         cfg.Gateway.APIKey,
		CallbackSecret: cfg.Gateway.CallbackSecret,
		CallbackURL:    cfg.Gateway.CallbackURL,
		Mock:           cfg.Gateway.Mock,
		Timeout:        cfg.Gateway.Timeout,
		RetryMax:       2,
	}, app.Logger)

	var oddsStore fixtures.Store
	if app.Redis != nil {
		oddsStore = app.Redis
	}
	provider := fixtures.NewClient(cfg.Fixtures.BaseURL, cfg.Fixtures.APIKey, cfg.Fixtures.Timeout, app.Logger)
	catalog := fixtures.NewCatalog(oddsStore, provider, cfg.Redis.OddsTTL, app.Logger)

	var (
		sinks      []events.Publisher
		subscriber events.Subscriber
	)
	if app.Redis != nil {
		feed := events.NewRedisFeed(app.Redis, app.Logger)
		sinks = append(sinks, feed)
		subscriber = feed
	}
	if app.KafkaWriter != nil {
		sinks = append(sinks, events.NewKafkaPublisher(app.KafkaWriter))
	}
	publisher := events.NewFanout(app.Logger, sinks...)

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Metrics = metrics.New(app.Registry)

	// 7. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	txRunner := service.NewTxRunner(app.DB, db.BeginTx, db.CommitTx, db.RollbackTx)
	app.WageringService = service.NewWageringService(txRunner, app.DB, app.Repositories, catalog, limits, publisher, app.Metrics, app.Logger)
	app.PaymentService = service.NewPaymentService(txRunner, app.DB, app.Repositories, gatewayClient, limits, publisher, app.Metrics, app.Logger)
	app.Scheduler = jobs.NewScheduler(app.PaymentService, cfg.Ledger.ReconcileSchedule, limits.Location, app.Logger)
	app.Logger.Info("services initialized")

	// 8. Initialize HTTP Handlers and Router
	app.Streams = handler.NewStreamHandler(app.WageringService, subscriber, app.Logger)
	app.HTTPHandler = router.NewRouter(router.Handlers{
		Account: handler.NewAccountHandler(app.WageringService, app.Logger),
		Betslip: handler.NewBetslipHandler(app.WageringService, app.Logger),
		Payment: handler.NewPaymentHandler(app.PaymentService, app.WageringService, gatewayClient, app.Logger),
		Catalog: handler.NewCatalogHandler(limits, catalog, app.Logger),
		Stream:  app.Streams,
	}, cfg.Auth.JWTSecret, app.Registry, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("shutting down application")
	var errs []error

	if app.Scheduler != nil {
		app.Scheduler.Stop()
	}
	if app.KafkaWriter != nil {
		if err := app.KafkaWriter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close kafka writer: %w", err))
		}
	}
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
		app.Logger.Info("database connection closed")
	}

	if err := errors.Join(errs...); err != nil {
		app.Logger.Error("application shutdown incomplete", zap.Error(err))
		return err
	}
	app.Logger.Info("application shut down gracefully")
	_ = app.Logger.Sync()
	return nil
}
