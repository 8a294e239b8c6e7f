package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/api"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/api/handler"
	custommiddleware "github.com/sanosuguru/go-hotel-room-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/config"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-hotel-room-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/worker"
)

func main() {
	cfg := config.Load()
	defer logger.Sync()

	m := metrics.Init()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	if ok, _ := strconv.ParseBool(os.Getenv("RUN_MIGRATIONS")); ok {
		if err := postgres.RunMigrations(db.DB, "migrations"); err != nil {
			logger.Fatal("マイグレーションに失敗", zap.Error(err))
		}
	}

	// Redis接続（任意）。接続できない場合は分散ロックとキャッシュなしで起動する
	var lockManager redisinfra.LockManagerInterface
	var snapshotCache redisinfra.SnapshotCacheInterface
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis接続に失敗、分散ロックとキャッシュなしで起動します", zap.Error(err))
	} else {
		defer redisClient.Close()
		lockManager = redisinfra.NewLockManager(redisClient)
		snapshotCache = redisinfra.NewSnapshotCache(redisClient)
	}

	// リポジトリとサービス
	txManager := postgres.NewTxManager(db)
	bookingRepo := postgres.NewBookingRepository(db)
	roomRepo := postgres.NewRoomRepository(db)

	reservationService := application.NewReservationService(
		txManager, bookingRepo, roomRepo, roomRepo, lockManager, m)
	availabilityService := application.NewAvailabilityService(bookingRepo, roomRepo, snapshotCache)

	// 滞留pending予約の掃除ワーカー
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var sweeper *worker.StaleHoldSweeper
	if cfg.Sweeper.Enabled {
		sweeper = worker.NewStaleHoldSweeper(reservationService, cfg.Sweeper.Interval)
		go sweeper.Start(ctx)
	}

	// Echoセットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	// ルーティング
	bookingHandler := handler.NewBookingHandler(reservationService)
	roomHandler := handler.NewRoomHandler(availabilityService)
	healthHandler := handler.NewHealthHandler()

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommiddleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.GET("/rooms/:room_id/availability", roomHandler.GetAvailability)
	v1.POST("/rooms/:room_id/bookings", bookingHandler.Create)
	v1.GET("/bookings", bookingHandler.ListMine)
	v1.GET("/bookings/:id", bookingHandler.GetByID)
	v1.POST("/bookings/:id/confirm", bookingHandler.Confirm)
	v1.POST("/bookings/:id/cancel", bookingHandler.Cancel)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	logger.Info("サーバー起動", zap.String("port", cfg.Server.Port))

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
