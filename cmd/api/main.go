package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_search/internal/cache"
	"github.com/GTDGit/gtd_search/internal/config"
	"github.com/GTDGit/gtd_search/internal/database"
	"github.com/GTDGit/gtd_search/internal/handler"
	"github.com/GTDGit/gtd_search/internal/middleware"
	"github.com/GTDGit/gtd_search/internal/ranking"
	"github.com/GTDGit/gtd_search/internal/repository"
	"github.com/GTDGit/gtd_search/internal/search"
	"github.com/GTDGit/gtd_search/internal/service"
	"github.com/GTDGit/gtd_search/internal/worker"
	"github.com/GTDGit/gtd_search/pkg/groq"
)

// main is the application entrypoint for the catalog search API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting catalog search api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.RunMigrations(db.DB, "migrations"); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 4. Context for workers and graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Enhancement cache (memory or Redis)
	var (
		enhancementCache cache.EnhancementCache
		redisPinger      handler.Pinger
	)
	switch cfg.Search.CacheBackend {
	case config.CacheBackendRedis:
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")
		enhancementCache = cache.NewRedisEnhancementCache(redisClient, cfg.Search.CacheTTL)
		redisPinger = redisClient
	default:
		enhancementCache = cache.NewMemoryEnhancementCache(cfg.Search.CacheTTL)
	}

	// 6. Ranking vocabulary
	vocab := ranking.DefaultVocabulary()
	if cfg.Search.VocabularyFile != "" {
		vocab, err = ranking.LoadVocabulary(cfg.Search.VocabularyFile)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.Search.VocabularyFile).Msg("vocabulary load failed")
			fmt.Fprintf(os.Stderr, "vocabulary load failed: %v\n", err)
			os.Exit(1)
		}
		log.Info().Str("path", cfg.Search.VocabularyFile).Msg("vocabulary loaded")
	}

	// 7. LLM enhancer (optional)
	var external service.ExternalEnhancer
	if cfg.Groq.Enabled() {
		groqClient, err := groq.NewClient(cfg.Groq.APIKey, cfg.Groq.Model, cfg.Groq.BaseURL, cfg.Groq.RequestTimeout)
		if err != nil {
			log.Warn().Err(err).Msg("Groq client initialization failed - using local query enhancement only")
		} else {
			external = groqClient
			log.Info().Str("model", cfg.Groq.Model).Msg("Groq query enhancer enabled")
		}
	} else {
		log.Warn().Msg("GROQ_API_KEY not set - using local query enhancement only")
	}

	// 8. Repositories and search index
	productRepo := repository.NewProductRepository(db)

	var (
		retriever     service.CandidateRetriever = productRepo
		indexer       service.ProductIndexer
		catalogPinger handler.Pinger
		reindexer     *service.ReindexService
	)
	if cfg.Catalog.Elasticsearch.Enabled() {
		esClient, err := search.NewElasticsearch(cfg.Catalog.Elasticsearch)
		if err != nil {
			log.Error().Err(err).Msg("elasticsearch client creation failed")
			fmt.Fprintf(os.Stderr, "elasticsearch client creation failed: %v\n", err)
			os.Exit(1)
		}
		esCatalog := search.NewElasticCatalog(esClient, cfg.Catalog.Elasticsearch.Index)
		if err := esCatalog.EnsureIndex(ctx); err != nil {
			log.Warn().Err(err).Msg("elasticsearch index setup failed")
		}
		indexer = esCatalog
		catalogPinger = esCatalog
		reindexer = service.NewReindexService(productRepo, esCatalog, 0, 0)
		if cfg.Catalog.Backend == config.CatalogBackendElasticsearch {
			retriever = esCatalog
		}
	}
	log.Info().Str("backend", cfg.Catalog.Backend).Msg("candidate retriever selected")

	// 9. Services
	enhancer := service.NewQueryEnhancer(
		enhancementCache,
		external,
		ranking.NewCorrector(vocab),
		ranking.NewIntentExtractor(vocab),
		cfg.Search.LLMTimeout,
	)
	scorer := ranking.NewScorer(vocab, ranking.DefaultWeights())
	searchSvc := service.NewSearchService(enhancer, retriever, scorer, cfg.Search.CandidateLimit)
	catalogSvc := service.NewCatalogService(productRepo, indexer)

	// 10. Handlers and middleware
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(productRepo, redisPinger, catalogPinger, external != nil),
		Search:  handler.NewSearchHandler(searchSvc),
		Product: handler.NewProductHandler(catalogSvc),
	}
	jwtMw := middleware.NewJWTMiddleware(cfg.JWTSecret)
	searchLimiter := middleware.NewRateLimiter(ctx, cfg.Search.RateLimitPerMinute, time.Minute)

	// 11. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw, searchLimiter)

	// 12. Start workers
	go worker.NewCacheSweepWorker(enhancementCache, cfg.Search.CacheSweepInterval).Start(ctx)
	if reindexer != nil && cfg.Catalog.Elasticsearch.SyncInterval > 0 {
		go worker.NewIndexSyncWorker(reindexer, cfg.Catalog.Elasticsearch.SyncInterval).Start(ctx)
	}

	// 13. Start HTTP server
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

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 15. Cancel context to stop workers
	cancel()

	// 16. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Search  *handler.SearchHandler
	Product *handler.ProductHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, searchLimiter *middleware.RateLimiter) {
	router.GET("/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/search/product", searchLimiter.Handle(), handlers.Search.SearchProducts)
		api.GET("/product/:id", handlers.Product.GetProduct)
	}

	// Catalog writes (admin JWT)
	admin := api.Group("")
	admin.Use(jwtMiddleware.Handle())
	{
		admin.POST("/product", handlers.Product.CreateProduct)
		admin.PUT("/product/meta-data", handlers.Product.UpdateMetadata)
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
