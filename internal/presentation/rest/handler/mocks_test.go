package handler

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel"
	metricnoop "go.opentelemetry.io/otel/metric/noop"

	historyapp "redeem-server/internal/application/history"
	panelapp "redeem-server/internal/application/panel"
	redemptionapp "redeem-server/internal/application/redemption"
	webhookapp "redeem-server/internal/application/webhook"
	"redeem-server/internal/domain/fulfillment"
	"redeem-server/internal/domain/redemption_code"
	"redeem-server/internal/domain/service"
	"redeem-server/internal/infrastructure/config"
	otelinfra "redeem-server/internal/infrastructure/observability/otel"
)

// MockCodeRepository モックコードリポジトリ
type MockCodeRepository struct {
	mock.Mock
}

func (m *MockCodeRepository) FindByCode(ctx context.Context, code string) (*redemption_code.Code, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*redemption_code.Code), args.Error(1)
}

func (m *MockCodeRepository) Create(ctx context.Context, code *redemption_code.Code) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCodeRepository) CreateBatch(ctx context.Context, codes []*redemption_code.Code) error {
	args := m.Called(ctx, codes)
	return args.Error(0)
}

func (m *MockCodeRepository) MarkUsed(ctx context.Context, code string, userID string, orderID *int64) error {
	args := m.Called(ctx, code, userID, orderID)
	return args.Error(0)
}

func (m *MockCodeRepository) SaveRedemption(ctx context.Context, history *redemption_code.RedemptionHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockCodeRepository) FindAll(ctx context.Context, status string) ([]*redemption_code.Code, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*redemption_code.Code), args.Error(1)
}

func (m *MockCodeRepository) FindOldestUnused(ctx context.Context, platform redemption_code.Platform, serviceType redemption_code.ServiceType) (*redemption_code.Code, error) {
	args := m.Called(ctx, platform, serviceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*redemption_code.Code), args.Error(1)
}

func (m *MockCodeRepository) FlagForReview(ctx context.Context, code string, reason string) error {
	args := m.Called(ctx, code, reason)
	return args.Error(0)
}

func (m *MockCodeRepository) FindRedemptionsByUserID(ctx context.Context, userID string) ([]*redemption_code.RedemptionHistory, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*redemption_code.RedemptionHistory), args.Error(1)
}

func (m *MockCodeRepository) FindAllRedemptions(ctx context.Context) ([]*redemption_code.RedemptionHistory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*redemption_code.RedemptionHistory), args.Error(1)
}

func (m *MockCodeRepository) FindRedemptionBySaleOrderID(ctx context.Context, saleOrderID string) (*redemption_code.RedemptionHistory, error) {
	args := m.Called(ctx, saleOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*redemption_code.RedemptionHistory), args.Error(1)
}

// MockPanelClient モックパネルクライアント
type MockPanelClient struct {
	mock.Mock
}

func (m *MockPanelClient) GetBalance(ctx context.Context) (*fulfillment.Balance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Balance), args.Error(1)
}

func (m *MockPanelClient) GetServices(ctx context.Context) ([]fulfillment.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.Service), args.Error(1)
}

func (m *MockPanelClient) CreateOrder(ctx context.Context, serviceID int64, link string, quantity int) (int64, error) {
	args := m.Called(ctx, serviceID, link, quantity)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPanelClient) GetOrderStatus(ctx context.Context, orderID int64) (*fulfillment.OrderStatus, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.OrderStatus), args.Error(1)
}

func (m *MockPanelClient) Refill(ctx context.Context, orderID int64) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

const testWebhookSecret = "test-webhook-secret"

// newTestLogger テスト用のロガーを作成
func newTestLogger() *otelinfra.Logger {
	return otelinfra.NewLogger(otel.Tracer("test"))
}

// newTestMetrics テスト用のメトリクスを作成
func newTestMetrics() *otelinfra.Metrics {
	otel.SetMeterProvider(metricnoop.NewMeterProvider())
	metrics, err := otelinfra.NewMetrics("test")
	if err != nil {
		panic(err)
	}
	return metrics
}

// newTestRedemptionService モックを使った引き換えサービスを作成
func newTestRedemptionService(repo *MockCodeRepository, panel *MockPanelClient) *redemptionapp.RedemptionApplicationService {
	return redemptionapp.NewRedemptionApplicationService(
		repo, panel, service.NewLinkValidator(), newTestLogger(), newTestMetrics(),
	)
}

// newTestHistoryService モックを使った履歴サービスを作成
func newTestHistoryService(repo *MockCodeRepository) *historyapp.HistoryApplicationService {
	return historyapp.NewHistoryApplicationService(repo, newTestLogger())
}

// newTestPanelService モックを使ったパネルサービスを作成
func newTestPanelService(panel *MockPanelClient) *panelapp.PanelApplicationService {
	return panelapp.NewPanelApplicationService(panel, newTestLogger())
}

// newTestWebhookService モックを使ったWebhookサービスを作成
func newTestWebhookService(repo *MockCodeRepository, panel *MockPanelClient) *webhookapp.WebhookApplicationService {
	cfg := &config.WebhookConfig{
		Secret: testWebhookSecret,
		ProductMap: map[string]config.ProductMapping{
			"prod_123": {Platform: "youtube", ServiceType: "subscribers"},
		},
	}
	return webhookapp.NewWebhookApplicationService(
		repo, newTestRedemptionService(repo, panel), cfg, newTestLogger(), newTestMetrics(),
	)
}

// newUnusedCode テスト用の未使用コードを作成
func newUnusedCode() *redemption_code.Code {
	return redemption_code.MustNewCode(
		"ABCD-EFGH-IJKL-MNOP", 101, 1000,
		redemption_code.PlatformYouTube, redemption_code.ServiceTypeSubscribers,
		"", 30, false,
	)
}
