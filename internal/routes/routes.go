package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/walletapp/wallet_app/internal/category"
	"github.com/walletapp/wallet_app/internal/config"
	"github.com/walletapp/wallet_app/internal/finance"
	"github.com/walletapp/wallet_app/internal/ledger"
	"github.com/walletapp/wallet_app/internal/middleware"
	"github.com/walletapp/wallet_app/internal/notification"
	"github.com/walletapp/wallet_app/internal/transfer"
	"github.com/walletapp/wallet_app/internal/user"
	"github.com/walletapp/wallet_app/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a database
// (development only) the in-memory backends serve instead; outside dev the
// database is mandatory.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() && d.DB == nil {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var (
		transferStore transfer.Store
		walletStore   wallet.Store
		userRepo      user.Repository
		categoryRepo  category.Repository
		financeRepo   finance.Repository
		ledgerStore   *ledger.PostgresStore
	)
	if d.DB != nil {
		wallets := wallet.NewPostgresStore(d.DB)
		ledgerStore = ledger.NewPostgresStore(d.DB)
		transferStore = transfer.NewPostgresStore(d.DB, wallets, ledgerStore)
		walletStore = wallets
		userRepo = user.NewPostgresRepository(d.DB)
		categoryRepo = category.NewPostgresRepository(d.DB)
		financeRepo = finance.NewPostgresRepository(d.DB, wallets)
	} else {
		mem := transfer.NewMemoryStore()
		transferStore = mem
		walletStore = mem
		userRepo = user.NewMemoryRepository()
		categoryRepo = category.NewMemoryRepository()
		// Finance records write their balance effects into the same wallets
		// the transfer engine moves money between.
		financeRepo = finance.NewMemoryRepository(mem)
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	engine := transfer.NewEngine(transferStore, notifier, d.Logger, d.Cfg.DefaultCurrency)
	userSvc := user.NewService(userRepo, walletStore, d.Cfg.DefaultCurrency)
	financeSvc := finance.NewService(financeRepo, d.Cfg.DefaultCurrency)

	transferHandler := transfer.NewHandler(engine, d.Cfg.DebugErrors)
	walletHandler := wallet.NewHandler(walletStore, d.Cfg.DefaultCurrency)
	userHandler := user.NewHandler(userSvc)
	categoryHandler := category.NewHandler(categoryRepo)
	financeHandler := finance.NewHandler(financeSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterTransferRoutes(api, transferHandler)
	RegisterWalletRoutes(api, walletHandler)
	RegisterUserRoutes(api, userHandler)
	RegisterCategoryRoutes(api, categoryHandler)
	RegisterFinanceRoutes(api, financeHandler)
	if ledgerStore != nil {
		RegisterHistoryRoutes(api, ledger.NewHistoryHandler(ledgerStore))
	}

	return nil
}
