// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"vitrina-service/internal/config"
	"vitrina-service/internal/db"
	catalogHandler "vitrina-service/internal/handlers/catalog"
	listingHandler "vitrina-service/internal/handlers/listing"
	profileHandler "vitrina-service/internal/handlers/profile"
	promotionHandler "vitrina-service/internal/handlers/promotion"
	"vitrina-service/internal/middleware"
	"vitrina-service/internal/pkg/ratelimit"
	"vitrina-service/internal/repository/postgres"
	catalogUsecase "vitrina-service/internal/service/catalog"
	listingUsecase "vitrina-service/internal/service/listing"
	profileUsecase "vitrina-service/internal/service/profile"
	promotionUsecase "vitrina-service/internal/service/promotion"
	rankingUsecase "vitrina-service/internal/service/ranking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := postgres.Connect(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		// The engine stays correct without redis; cache and limiter degrade
		logger.Warn("redis unavailable, running without cache and rate limiting", zap.Error(err))
		redisClient = nil
	}

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	definitionRepo := postgres.NewUpgradeDefinitionRepository(pool)
	ledger := postgres.NewEntitlementLedger(dbWrapper)
	paymentRepo := postgres.NewPaymentHistoryRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)

	// ----- Services (Usecases) -----
	catalogService := catalogUsecase.NewCatalogService(definitionRepo, redisClient, s.cfg.CatalogCacheTTL, logger)
	resolver := promotionUsecase.NewResolver(catalogService, ledger, logger)
	historyService := promotionUsecase.NewHistoryService(paymentRepo)
	aggregator := rankingUsecase.NewAggregator(catalogService, logger)
	listingService := listingUsecase.NewListingService(profileRepo, ledger, aggregator, logger)
	profileService := profileUsecase.NewProfileService(profileRepo, logger)

	rateLimiter := ratelimit.NewRateLimiter(redisClient)

	// ----- Handlers -----
	handlers := &Handlers{
		CatalogHandler: catalogHandler.NewCatalogHandler(catalogService),
		PurchaseHandler: promotionHandler.NewPurchaseHandler(
			resolver,
			historyService,
			rateLimiter,
			s.cfg.PurchaseRateLimit,
			s.cfg.PurchaseRateWindow,
			logger,
		),
		ListingHandler: listingHandler.NewListingHandler(listingService),
		ProfileHandler: profileHandler.NewProfileHandler(profileService),
		AdminToken:     s.cfg.AdminToken,
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
