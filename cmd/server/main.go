package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stagesight/config"
	"stagesight/internal/cache"
	"stagesight/internal/checkout"
	"stagesight/internal/database"
	"stagesight/internal/handler"
	"stagesight/internal/middleware"
	"stagesight/internal/queue"
	"stagesight/internal/repository"
	"stagesight/internal/service"
	"stagesight/internal/storage"
	"stagesight/internal/worker"
	"stagesight/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 本機開發時從 .env 讀取設定，檔案不存在則直接使用環境變數
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	logger.SetLevel(cfg.LogLevel)
	gin.SetMode(cfg.Server.GinMode)
	log := logger.WithComponent("main")
	defer logger.L.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.InitDatabase(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Checkout.SeatClaims || cfg.Checkout.RedisSessions || cfg.Queue.Backend == "redis" {
		rdb, err = database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	objectStorage, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Server.PublicBaseURL+cfg.Storage.PublicPath)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	var claims cache.SeatClaimManager
	if cfg.Checkout.SeatClaims {
		claims = cache.NewRedisSeatClaimManager(rdb)
	}

	retry := queue.RetryPolicy{
		BaseDelay:   cfg.Queue.RetryBaseDelay,
		MaxAttempts: cfg.Queue.MaxRetryCount,
	}
	var cleanupQueue queue.CleanupQueue
	switch cfg.Queue.Backend {
	case "redis":
		hostname, _ := os.Hostname()
		cleanupQueue, err = queue.NewRedisStreamCleanupQueue(rdb, hostname, &queue.RedisStreamQueueConfig{
			ClaimMinIdleTime: cfg.Queue.ClaimMinIdleTime,
			MaxLen:           cfg.Queue.StreamMaxLen,
			Retry:            retry,
		})
		if err != nil {
			log.Fatal("Failed to initialize cleanup queue", zap.Error(err))
		}
	default:
		cleanupQueue = queue.NewMemoryCleanupQueue(100, &retry)
	}

	cleanupWorker := worker.NewProofCleanupWorker(objectStorage, cleanupQueue)
	if err := cleanupWorker.Start(ctx); err != nil {
		log.Fatal("Failed to start proof cleanup worker", zap.Error(err))
	}

	var sessions checkout.SessionStore
	if cfg.Checkout.RedisSessions {
		sessions = checkout.NewRedisSessionStore(rdb, cfg.Checkout.SessionTTL)
	} else {
		sessions = checkout.NewMemorySessionStore(cfg.Checkout.SessionTTL)
	}

	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)

	flow := checkout.NewFlow(bookingRepo, objectStorage, claims, cleanupQueue, checkout.Config{
		Rows:                cfg.Seating.Rows,
		SeatsPerRow:         cfg.Seating.SeatsPerRow,
		MaxSelection:        cfg.Seating.MaxSelection,
		MaxProofSize:        cfg.Storage.MaxProofSize,
		PlaceholderProof:    cfg.Checkout.PlaceholderProof,
		PlaceholderProofURL: cfg.Checkout.PlaceholderProofURL,
	})

	eventService := service.NewEventService(eventRepo, bookingRepo, claims, cfg.Seating.Rows, cfg.Seating.SeatsPerRow)
	checkoutService := service.NewCheckoutService(eventService, flow, sessions)
	bookingService := service.NewBookingService(bookingRepo, claims)

	openForSale(ctx, eventService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.MaxMultipartMemory = cfg.Storage.MaxProofSize + 1<<20

	router.Static(cfg.Storage.PublicPath, cfg.Storage.Dir)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router, middleware.Auth(cfg.Auth.JWTSecret, profileRepo), handler.Handlers{
		Events:   handler.NewEventHandler(eventService),
		Checkout: handler.NewCheckoutHandler(checkoutService, cfg.Storage.MaxProofSize),
		Bookings: handler.NewBookingHandler(bookingService),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
}

// openForSale 將每個場次已售出的座位寫入 Redis，失敗只記錄不中斷啟動
func openForSale(ctx context.Context, events service.EventService) {
	log := logger.WithComponent("main")

	list, err := events.List(ctx)
	if err != nil {
		log.Warn("Failed to list events for warm up", zap.Error(err))
		return
	}
	for _, e := range list {
		if err := events.OpenForSale(ctx, e.ID); err != nil {
			log.Warn("Failed to warm up seat claims", zap.Stringer("show_id", e.ID), zap.Error(err))
		}
	}
}
