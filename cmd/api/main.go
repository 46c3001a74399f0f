package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // display timezone without relying on the host zoneinfo

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/admin"
	"github.com/GTDGit/gtd_shop/internal/auth"
	"github.com/GTDGit/gtd_shop/internal/cache"
	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/internal/checkout"
	"github.com/GTDGit/gtd_shop/internal/config"
	"github.com/GTDGit/gtd_shop/internal/database"
	"github.com/GTDGit/gtd_shop/internal/handler"
	"github.com/GTDGit/gtd_shop/internal/middleware"
	"github.com/GTDGit/gtd_shop/internal/repository"
	"github.com/GTDGit/gtd_shop/internal/service"
	"github.com/GTDGit/gtd_shop/internal/sse"
	"github.com/GTDGit/gtd_shop/internal/store"
	"github.com/GTDGit/gtd_shop/internal/worker"
)

// main is the application entrypoint for the shop storefront and admin API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting gtd shop")

	// 3. Connect database
	db, err := database.Connect(context.Background(), &cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db, "file://migrations"); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Realtime store: Postgres nodes, changes fanned out over Redis
	changeBus := cache.NewChangeBus(redisClient)
	nodes := store.NewPostgres(db, changeBus)

	// 5. Initialize repositories
	productRepo := repository.NewProductRepository(nodes)
	orderRepo := repository.NewOrderRepository(nodes)
	policyRepo := repository.NewPolicyRepository(nodes)
	adminRepo := repository.NewAdminUserRepository(db)

	// 6. Initialize services
	authSvc := auth.NewService(adminRepo, cache.NewRevocationCache(redisClient), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if cfg.Auth.BootstrapEmail != "" {
		if err := authSvc.EnsureAdmin(context.Background(), cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword, cfg.Auth.BootstrapName); err != nil {
			log.Error().Err(err).Msg("bootstrap admin failed")
			fmt.Fprintf(os.Stderr, "bootstrap admin failed: %v\n", err)
			os.Exit(1)
		}
	}

	imageSvc, err := service.NewImageService(&cfg.Cloudinary)
	if err != nil {
		log.Warn().Err(err).Msg("Cloudinary initialization failed - image uploads will be disabled")
		imageSvc, _ = service.NewImageService(&config.CloudinaryConfig{})
	}

	shopCatalog := catalog.New(productRepo)
	checkoutSessions := checkout.NewSessions(cache.NewDraftCache(redisClient, cfg.Checkout.DraftTTL), productRepo, orderRepo)
	orderMgr := admin.NewOrderManager(orderRepo, productRepo, cfg.Timezone)
	policyEditor := admin.NewPolicyEditor(policyRepo)
	streamHub := sse.NewHub()

	// 7. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware(authSvc)
	loginLimiter := middleware.NewLoginRateLimiter(ctx, 5, time.Minute)

	// 9. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": handler.PingFunc(db.PingContext),
			"redis":    redisClient,
		}, streamHub),
		Storefront:    handler.NewStorefrontHandler(shopCatalog, policyRepo),
		Checkout:      handler.NewCheckoutHandler(checkoutSessions),
		Auth:          handler.NewAuthHandler(authSvc, loginLimiter),
		AdminProducts: handler.NewAdminProductHandler(productRepo),
		AdminOrders:   handler.NewAdminOrderHandler(orderMgr),
		AdminPolicies: handler.NewAdminPolicyHandler(policyEditor),
		Upload:        handler.NewUploadHandler(imageSvc),
		Stream: handler.NewStreamHandler(streamHub, shopCatalog, authSvc, handler.Dashboard{
			Products: admin.NewCatalogManager(productRepo),
			Orders:   orderMgr,
			Policies: policyEditor,
		}),
	}

	// 10. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw, loginLimiter)

	// 11. Start workers
	go worker.NewChangeRelayWorker(changeBus, nodes.Hub(), cfg.Worker.ChangeRelayRetry).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Tell stream clients to reconnect elsewhere, then stop workers
	streamHub.Broadcast(sse.EventShutdown, gin.H{"message": "server restarting"})
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health        *handler.HealthHandler
	Storefront    *handler.StorefrontHandler
	Checkout      *handler.CheckoutHandler
	Auth          *handler.AuthHandler
	AdminProducts *handler.AdminProductHandler
	AdminOrders   *handler.AdminOrderHandler
	AdminPolicies *handler.AdminPolicyHandler
	Upload        *handler.UploadHandler
	Stream        *handler.StreamHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.LoginRateLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Storefront routes (public)
	shop := router.Group("/v1/store")
	{
		shop.GET("/products", handlers.Storefront.ListProducts)
		shop.GET("/products/stream", handlers.Stream.StoreStream)
		shop.GET("/products/:id", handlers.Storefront.GetProduct)
		shop.GET("/categories", handlers.Storefront.ListCategories)
		shop.GET("/policies/:kind", handlers.Storefront.GetPolicy)

		// Checkout
		shop.POST("/checkout", handlers.Checkout.Start)
		shop.GET("/checkout/:id", handlers.Checkout.Get)
		shop.POST("/checkout/:id/product", handlers.Checkout.SelectProduct)
		shop.POST("/checkout/:id/increment", handlers.Checkout.Increment)
		shop.POST("/checkout/:id/decrement", handlers.Checkout.Decrement)
		shop.POST("/checkout/:id/size", handlers.Checkout.ChooseSize)
		shop.POST("/checkout/:id/address", handlers.Checkout.SubmitAddress)
		shop.POST("/checkout/:id/confirm", handlers.Checkout.Confirm)
		shop.POST("/checkout/:id/back", handlers.Checkout.Back)
		shop.POST("/checkout/:id/reset", handlers.Checkout.Reset)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", loginLimiter.Handle(), handlers.Auth.Login)
	admin.GET("/stream", handlers.Stream.AdminStream)
	admin.Use(jwtMiddleware.Handle())
	{
		admin.POST("/auth/logout", handlers.Auth.Logout)
		admin.GET("/auth/me", handlers.Auth.Me)

		// Product Management
		admin.GET("/products", handlers.AdminProducts.ListProducts)
		admin.POST("/products", handlers.AdminProducts.CreateProduct)
		admin.GET("/products/:id/form", handlers.AdminProducts.GetForm)
		admin.PUT("/products/:id", handlers.AdminProducts.UpdateProduct)
		admin.DELETE("/products/:id", handlers.AdminProducts.DeleteProduct)
		admin.POST("/uploads", handlers.Upload.UploadImage)

		// Orders
		admin.GET("/orders", handlers.AdminOrders.ListOrders)
		admin.PATCH("/orders/:id/status", handlers.AdminOrders.UpdateStatus)

		// Policies
		admin.GET("/policies", handlers.AdminPolicies.GetPolicies)
		admin.PUT("/policies", handlers.AdminPolicies.SavePolicies)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
