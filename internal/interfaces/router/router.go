package router

import (
	"net/http"
	"time"

	"folio-backend/internal/application/assets"
	"folio-backend/internal/application/ledger"
	"folio-backend/internal/application/platforms"
	"folio-backend/internal/application/portfolios"
	"folio-backend/internal/auth"
	"folio-backend/internal/config"
	"folio-backend/internal/infrastructure/database"
	adminhandler "folio-backend/internal/interfaces/handlers/admin"
	assethandler "folio-backend/internal/interfaces/handlers/assets"
	healthhandler "folio-backend/internal/interfaces/handlers/health"
	platformhandler "folio-backend/internal/interfaces/handlers/platforms"
	portfoliohandler "folio-backend/internal/interfaces/handlers/portfolios"
	txhandler "folio-backend/internal/interfaces/handlers/transactions"
	"folio-backend/internal/marketdata"
	"folio-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp wires the full HTTP surface. The returned DB and Redis client are
// handed back so main can verify connectivity and the scheduler can share
// them; rdb is nil when no Redis URL is configured.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	hh := healthhandler.New(db, rdb)
	app.Get("/health", hh.Live)
	app.Get("/health/json", hh.JSON)

	if db == nil {
		return app, db, rdb, nil
	}

	var prices marketdata.Provider = marketdata.NewClient(cfg.EODHDAPIKey, cfg.EODHDBaseURL, cfg.CoinGeckoBaseURL)
	if rdb != nil {
		prices = marketdata.NewCache(prices, rdb, time.Duration(cfg.PriceCacheTTL)*time.Second)
	}

	verifier := auth.NewHTTPVerifier(cfg.IdentityVerifyURL)
	requireAuth := middleware.RequireAuth(verifier, db)

	// Admin
	adh := &adminhandler.Handlers{DB: db}
	ag := app.Group("/api/v1/admin", middleware.RequireAdminKey(cfg.AdminKeyHash))
	ag.Post("/bootstrap", adh.Bootstrap)

	// Transactions (the ledger write path)
	ledgerSvc := &ledger.Service{DB: db}
	txh := &txhandler.Handlers{Service: ledgerSvc}
	txg := app.Group("/api/v1/transactions", requireAuth)
	txg.Post("/", txh.Create)
	txg.Post("/cash", txh.CreateCash)
	txg.Post("/asset", txh.CreateAsset)
	txg.Post("/bulk", txh.CreateBulk)
	txg.Get("/portfolio/:portfolioId", txh.History)
	txg.Put("/:id", txh.Update)
	txg.Delete("/:id", txh.Delete)

	// Portfolios
	ps := &portfolios.Service{DB: db, Prices: prices}
	ph := &portfoliohandler.Handlers{Service: ps}
	pg := app.Group("/api/v1/portfolios", requireAuth)
	pg.Post("/", ph.Create)
	pg.Get("/", ph.List)
	pg.Get("/:id", ph.Get)
	pg.Put("/:id", ph.Update)
	pg.Delete("/:id", ph.Delete)
	pg.Get("/:id/summary", ph.Summary)
	pg.Get("/:id/performance", ph.Performance)
	pg.Post("/:id/snapshot", ph.Snapshot)

	// Assets — /search must register before /:symbol routes
	as := &assets.Service{DB: db, Prices: prices}
	ah := &assethandler.Handlers{Service: as, Prices: prices}
	asg := app.Group("/api/v1/assets", requireAuth)
	asg.Get("/search", ah.Search)
	asg.Post("/", ah.Register)
	asg.Get("/", ah.List)
	asg.Get("/:symbol", ah.Get)
	asg.Get("/:symbol/price", ah.Price)
	asg.Get("/:symbol/history", ah.History)

	// Platforms
	pls := &platforms.Service{DB: db}
	plh := &platformhandler.Handlers{Service: pls}
	plg := app.Group("/api/v1/platforms", requireAuth)
	plg.Post("/", plh.Create)
	plg.Get("/", plh.List)

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
