package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-booking/internal/api/handler"
	"github.com/sanosuguru/go-show-booking/internal/api/middleware"
	"github.com/sanosuguru/go-show-booking/internal/api/router"
	"github.com/sanosuguru/go-show-booking/internal/application"
	"github.com/sanosuguru/go-show-booking/internal/config"
	"github.com/sanosuguru/go-show-booking/internal/infrastructure/paymentgw"
	"github.com/sanosuguru/go-show-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-show-booking/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-show-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-show-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-show-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-show-booking/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger(cfg.App.Env)
	logger.Set(log)
	defer func() { _ = logger.Sync() }()

	m := metrics.Init()

	// DB接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.App.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// Redis は任意。停止中はロックとキャッシュなしで動作する
	var (
		lockManager redisinfra.LockManagerInterface
		cache       redisinfra.AvailabilityCacheInterface
	)
	rc := redisinfra.NewClient(&cfg.Redis)
	defer rc.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisinfra.Ping(pingCtx, rc); err != nil {
		logger.Warn("Redisに接続できないため分散ロックとキャッシュを無効化します", zap.Error(err))
	} else {
		lockManager = redisinfra.NewLockManager(rc, m)
		cache = redisinfra.NewAvailabilityCache(rc)
	}
	cancelPing()

	gateway, local, err := paymentgw.NewGateway(&cfg.Payment, m)
	if err != nil {
		logger.Fatal("決済ゲートウェイの設定エラー", zap.Error(err))
	}
	if local {
		logger.Warn("PAYMENT_KEY_ID が未設定のためローカルゲートウェイを使用します")
	}

	opts := []application.Option{application.WithMetrics(m)}
	if cfg.RabbitMQ.Enabled() {
		pub, err := rabbitmq.Dial(&cfg.RabbitMQ, m)
		if err != nil {
			logger.Warn("RabbitMQに接続できないためイベント配信を無効化します", zap.Error(err))
		} else {
			defer pub.Close()
			opts = append(opts, application.WithPublisher(pub))
		}
	}

	// サービス初期化
	txManager := postgres.NewTxManager(db)
	bookingRepo := postgres.NewBookingRepository(db)
	seatRepo := postgres.NewSeatRepository(db)
	showRepo := postgres.NewShowRepository(db)
	settings := application.SettingsFromConfig(&cfg.Booking)

	reservationService := application.NewReservationService(
		txManager, bookingRepo, seatRepo, showRepo, gateway, lockManager, cache, settings, opts...)
	paymentService := application.NewPaymentService(
		txManager, bookingRepo, seatRepo, showRepo, cache, cfg.Payment.KeySecret, opts...)
	showService := application.NewShowService(txManager, showRepo, seatRepo, cache)

	healthChecks := []handler.DependencyCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return postgres.Ping(ctx, db) }},
		{Name: "redis", Check: redisCheck(rc), Optional: true},
	}

	e := router.New(router.Handlers{
		Booking: handler.NewBookingHandler(reservationService),
		Payment: handler.NewPaymentHandler(paymentService),
		Show:    handler.NewShowHandler(showService),
		Health:  handler.NewHealthHandler(healthChecks...),
	}, m, middleware.LoadMetricsConfig())
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// 期限切れ予約の回収ワーカー
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reclaimer := worker.NewExpiredBookingReclaimer(reservationService, cfg.Booking.ReclaimInterval)
	go reclaimer.Start(ctx)

	go func() {
		logger.Info("サーバー起動", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Env))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	reclaimer.Stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}

func redisCheck(rc goredis.Cmdable) func(context.Context) error {
	return func(ctx context.Context) error {
		return redisinfra.Ping(ctx, rc)
	}
}
