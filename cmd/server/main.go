package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	historyapp "redeem-server/internal/application/history"
	panelapp "redeem-server/internal/application/panel"
	redemptionapp "redeem-server/internal/application/redemption"
	webhookapp "redeem-server/internal/application/webhook"
	"redeem-server/internal/domain/service"
	"redeem-server/internal/infrastructure/config"
	otelinfra "redeem-server/internal/infrastructure/observability/otel"
	"redeem-server/internal/infrastructure/persistence/mysql"
	"redeem-server/internal/infrastructure/smmpanel"
	"redeem-server/internal/presentation/rest"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	tracer := otelinfra.Tracer("redeem-server")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("redeem-server")
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	// データベース接続の初期化
	db, err := mysql.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// スキーマの適用
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		cancelMigrate()
		log.Fatalf("Failed to migrate database: %v", err)
	}
	cancelMigrate()

	// リポジトリの初期化
	codeRepo := mysql.NewCodeRepository(db)

	// パネルクライアントの初期化
	panelClient := smmpanel.NewClient(&cfg.Panel)

	// ドメインサービスの初期化
	linkValidator := service.NewLinkValidator()

	// アプリケーションサービスの初期化
	redemptionAppService := redemptionapp.NewRedemptionApplicationService(
		codeRepo,
		panelClient,
		linkValidator,
		logger,
		metrics,
	)

	panelAppService := panelapp.NewPanelApplicationService(
		panelClient,
		logger,
	)

	historyAppService := historyapp.NewHistoryApplicationService(
		codeRepo,
		logger,
	)

	webhookAppService := webhookapp.NewWebhookApplicationService(
		codeRepo,
		redemptionAppService,
		&cfg.Webhook,
		logger,
		metrics,
	)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(
		cfg,
		logger,
		metrics,
		redemptionAppService,
		panelAppService,
		historyAppService,
		webhookAppService,
	)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// サーバーアドレスの設定
	address := fmt.Sprintf(":%d", cfg.Server.Port)

	// グレースフルシャットダウンの設定
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// REST APIサーバーを起動
	go func() {
		log.Printf("REST API server starting on %s", address)
		if err := router.Start(address); err != nil {
			log.Printf("REST API server error: %v", err)
		}
	}()

	// シグナルを待機
	<-quit
	log.Println("Shutting down server...")

	// グレースフルシャットダウン
	if err := router.Shutdown(); err != nil {
		log.Printf("Error shutting down REST API server: %v", err)
	}

	log.Println("Server stopped")
}
