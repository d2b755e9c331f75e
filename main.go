package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"creditcoach/config"
	"creditcoach/cron"
	"creditcoach/database"
	cartRepo "creditcoach/database/repository/cart"
	"creditcoach/handlers"
	"creditcoach/middleware"
	"creditcoach/routes"
	"creditcoach/services/auth"
	"creditcoach/services/backend"
	"creditcoach/services/booking"
	"creditcoach/services/cart"
	"creditcoach/services/catalog"
	"creditcoach/services/payment"
	"creditcoach/services/session"
	"creditcoach/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Cart mirror and caches.
	var (
		repo        cart.Repository
		cacheClient *redis.Client
	)
	switch cfg.CartStore {
	case "mongo":
		database.InitDB()
		utils.InitRedis()
		cacheClient = utils.GetCacheClient()
		mongoRepo, err := cartRepo.NewMongoCartRepo(ctx, database.Database(), cfg.CartTTL)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to prepare cart collection: %v", err)
		}
		repo = mongoRepo
	case "memory":
		logger.Warn("main: carts are kept in memory only")
		repo = cart.NewMemoryRepository()
	default:
		utils.InitRedis()
		cacheClient = utils.GetCacheClient()
		repo = cartRepo.NewRedisCartRepo(utils.GetCartClient(), cfg.CartTTL)
	}
	utils.StartHealthMonitor(ctx, utils.RedisClients(), database.MongoClient)

	verifier, err := auth.NewVerifier(ctx, cfg.AuthProvider, cfg.JWTSecret, cfg.FirebaseCredentialsFile)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize auth: %v", err)
	}
	if cacheClient != nil {
		verifier = auth.NewCachedVerifier(verifier, cacheClient, 5*time.Minute, logger.Named("auth"))
	}

	api := backend.NewClient(cfg.BackendAPIURL, cfg.BackendTimeout, logger.Named("backend"))
	products := catalog.NewService(api, cacheClient, cfg.CatalogTTL, logger.Named("catalog"))

	stripe.Key = cfg.StripeKey
	checkout := payment.NewCheckoutService(payment.NewStripeGateway(), cfg.Currency, cfg.CheckoutSuccess, cfg.CheckoutCancel, logger.Named("checkout"))

	// Reminders need the Redis queue.
	var (
		reminders    handlers.ReminderScheduler
		reminderSrv  *asynq.Server
		reminderConn *asynq.Client
	)
	if cfg.RemindersEnabled && cfg.CartStore != "memory" {
		reminderConn = asynq.NewClient(cron.RedisOpt())
		reminders = cron.NewReminderScheduler(reminderConn, cfg.ReminderLead, logger.Named("reminders"))
		reminderSrv = cron.InitReminderWorker(cron.LogNotifier{Logger: logger.Named("reminders")}, logger)
	}

	// Session-scoped stores.
	carts := session.NewRegistry("cart", cfg.SessionIdleTTL, func(ctx context.Context, sessionID string) *cart.Store {
		key := cfg.CartKey + ":" + sessionID
		return cart.NewStore(ctx, cart.Bind(repo, key), logger.Named("cart").With(zap.String("session", sessionID)))
	}, logger)
	wizards := session.NewRegistry("wizard", cfg.SessionIdleTTL, func(_ context.Context, sessionID string) *booking.Wizard {
		return booking.NewWizard(api, logger.Named("booking").With(zap.String("session", sessionID)))
	}, logger)
	go carts.Run(ctx, time.Minute)
	go wizards.Run(ctx, time.Minute)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(verifier,
		handlers.NewCartHandler(carts, products, logger.Named("cart")),
		handlers.NewBookingHandler(wizards, reminders, logger.Named("booking")),
		handlers.NewCheckoutHandler(carts, checkout, logger.Named("checkout")),
		handlers.NewAccountHandler(api, logger.Named("account")),
	)

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle, splitOrigins(cfg.AllowedOrigins), cfg.SessionCookie, cfg.SecureCookies)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if reminderSrv != nil {
		reminderSrv.Shutdown()
	}
	if reminderConn != nil {
		_ = reminderConn.Close()
	}
	if err := database.CloseDB(shutdownCtx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}
	_ = logger.Sync()

	logger.Sugar().Info("main: server stopped gracefully")
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = []string{"http://localhost:3000"}
	}
	return out
}
