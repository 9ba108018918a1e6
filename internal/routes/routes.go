package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/carewallet/carewallet/internal/auth"
	"github.com/carewallet/carewallet/internal/config"
	"github.com/carewallet/carewallet/internal/funding"
	"github.com/carewallet/carewallet/internal/identity"
	"github.com/carewallet/carewallet/internal/ledger"
	"github.com/carewallet/carewallet/internal/middleware"
	"github.com/carewallet/carewallet/internal/notification"
	"github.com/carewallet/carewallet/internal/payments"
	"github.com/carewallet/carewallet/internal/reports"
	"github.com/carewallet/carewallet/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes. DB and Cache
// may be nil in development, in which case in-memory backends are used and
// Redis-backed features are disabled.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Metrics())
	if d.Cfg.IsDev() {
		// [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var (
		ledgerBackend ledger.Ledger
		identityRepo  identity.Repository
	)
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		d.Logger.Warn("no database configured, using in-memory storage")
		ledgerBackend = ledger.NewInMemory()
		identityRepo = identity.NewMemoryRepository()
	}
	ledgerBackend = ledger.Instrumented(ledgerBackend)

	notifier := notification.NewLoggerNotifier(d.Logger)
	walletSvc := wallet.NewService(ledgerBackend, d.Cfg.Currency)
	identitySvc := identity.NewService(identityRepo, walletSvc)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	fundingSvc := funding.NewService(ledgerBackend, funding.StaticAcquirer{}, notifier, d.Logger)
	paymentSvc := payments.NewService(ledgerBackend, notifier, d.Logger)
	reportSvc := reports.NewService(ledgerBackend)

	if err := bootstrapAdmin(identitySvc, d); err != nil {
		return err
	}

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterIdentityRoutes(api, identity.NewHandler(identitySvc, d.Logger))
	authHandler := auth.NewHandler(identitySvc, authSvc)
	RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit))

	// Protected routes; idempotency keys are scoped to the authenticated caller.
	protected := api.Group("",
		middleware.JWTAuth(authSvc),
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
	)
	RegisterSessionRoutes(protected, authHandler, identitySvc)
	RegisterWalletRoutes(protected, wallet.NewHandler(walletSvc))
	RegisterFundingRoutes(protected, funding.NewHandler(fundingSvc))
	RegisterPaymentRoutes(protected, payments.NewHandler(paymentSvc))
	RegisterReportRoutes(protected, reports.NewHandler(reportSvc))

	return nil
}

func bootstrapAdmin(ids *identity.Service, d Deps) error {
	if d.Cfg.AdminEmail == "" || d.Cfg.AdminPassword == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	admin, err := ids.EnsureAdmin(ctx, d.Cfg.AdminEmail, d.Cfg.AdminPassword, d.Cfg.AdminName)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	d.Logger.Info("admin account ready", slog.String("user_id", admin.ID), slog.String("email", admin.Email))
	return nil
}
