package rest

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	historyapp "redeem-server/internal/application/history"
	panelapp "redeem-server/internal/application/panel"
	redemptionapp "redeem-server/internal/application/redemption"
	webhookapp "redeem-server/internal/application/webhook"
	"redeem-server/internal/infrastructure/config"
	otelinfra "redeem-server/internal/infrastructure/observability/otel"
	"redeem-server/internal/presentation/rest/handler"
	restmiddleware "redeem-server/internal/presentation/rest/middleware"
)

// Router REST APIルーター
type Router struct {
	echo              *echo.Echo
	redemptionHandler *handler.RedemptionHandler
	panelHandler      *handler.PanelHandler
	historyHandler    *handler.HistoryHandler
	webhookHandler    *handler.WebhookHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	redemptionService *redemptionapp.RedemptionApplicationService,
	panelService *panelapp.PanelApplicationService,
	historyService *historyapp.HistoryApplicationService,
	webhookService *webhookapp.WebhookApplicationService,
) (*Router, error) {
	e := echo.New()

	// Echoのデフォルトエラーハンドラーを無効化（カスタムエラーハンドラーを使用）
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// エラーハンドリングミドルウェアで処理される
	}

	// ミドルウェアの設定
	setupMiddleware(e, cfg, logger, metrics)

	// ハンドラーの作成
	redemptionHandler := handler.NewRedemptionHandler(redemptionService)
	panelHandler := handler.NewPanelHandler(panelService)
	historyHandler := handler.NewHistoryHandler(historyService)
	webhookHandler := handler.NewWebhookHandler(webhookService)

	// ルーティングの設定
	setupRoutes(e, cfg, logger, redemptionHandler, panelHandler, historyHandler, webhookHandler)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return &Router{
		echo:              e,
		redemptionHandler: redemptionHandler,
		panelHandler:      panelHandler,
		historyHandler:    historyHandler,
		webhookHandler:    webhookHandler,
	}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// CORS設定
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // 本番環境では適切に設定
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// セキュリティヘッダー
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// メトリクスミドルウェア
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *otelinfra.Logger,
	redemptionHandler *handler.RedemptionHandler,
	panelHandler *handler.PanelHandler,
	historyHandler *handler.HistoryHandler,
	webhookHandler *handler.WebhookHandler,
) {
	// API v1グループ
	api := e.Group("/api/v1")

	// フロントエンド認証が必要なエンドポイント
	authGroup := api.Group("", restmiddleware.AuthMiddleware(&cfg.JWT, logger))

	// コード検証・引き換えエンドポイント
	authGroup.POST("/validate-code", redemptionHandler.ValidateCode)
	authGroup.POST("/redeem", redemptionHandler.Redeem)

	// サービスカタログエンドポイント
	authGroup.POST("/search", panelHandler.SearchServices)
	authGroup.GET("/services", panelHandler.GetServices)

	// 履歴エンドポイント
	authGroup.POST("/user/redemptions", historyHandler.GetUserRedemptions)

	// 管理エンドポイント（APIキー認証）
	adminGroup := api.Group("/admin", restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))
	adminGroup.GET("/balance", panelHandler.GetBalance)
	adminGroup.POST("/order", panelHandler.CreateOrder)
	adminGroup.GET("/order/:order_id", panelHandler.GetOrderStatus)
	adminGroup.POST("/order/:order_id/refill", panelHandler.Refill)
	adminGroup.GET("/codes", historyHandler.ListCodes)
	adminGroup.POST("/codes", redemptionHandler.ProvisionCodes)
	adminGroup.GET("/redemptions", historyHandler.ListRedemptions)

	// 販売Webhookエンドポイント（署名検証のみ、認証ミドルウェアなし）
	e.POST("/webhook/sellauth", webhookHandler.HandleSellauth)

	// ヘルスチェックエンドポイント（認証不要）
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown サーバーをシャットダウン
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
