package panel

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"redeem-server/internal/domain/fulfillment"
	otelinfra "redeem-server/internal/infrastructure/observability/otel"
)

// サービス名からドロップ保証を推定するキーワード
var noDropKeywords = []string{
	"no drop", "nodrop", "no-drop", "permanent", "lifetime",
	"guaranteed", "guarantee", "stable",
}

// PanelApplicationService パネルカタログ・注文の参照操作サービス
type PanelApplicationService struct {
	panelClient fulfillment.Client
	logger      *otelinfra.Logger
	tracer      trace.Tracer
}

// NewPanelApplicationService 新しいPanelApplicationServiceを作成
func NewPanelApplicationService(
	panelClient fulfillment.Client,
	logger *otelinfra.Logger,
) *PanelApplicationService {
	return &PanelApplicationService{
		panelClient: panelClient,
		logger:      logger,
		tracer:      otel.Tracer("panel-service"),
	}
}

// GetBalance アカウント残高を取得
func (s *PanelApplicationService) GetBalance(ctx context.Context) (*GetBalanceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PanelApplicationService.GetBalance")
	defer span.End()

	balance, err := s.panelClient.GetBalance(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to get panel balance", err, nil)
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "balance fetched")
	return &GetBalanceResponse{
		Balance:  balance.Amount,
		Currency: balance.Currency,
	}, nil
}

// GetServices サービス一覧をカテゴリ別にグループ化して取得
func (s *PanelApplicationService) GetServices(ctx context.Context) (*GetServicesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PanelApplicationService.GetServices")
	defer span.End()

	services, err := s.panelClient.GetServices(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to get panel services", err, nil)
		return nil, err
	}

	categories := make(map[string][]fulfillment.Service)
	for _, svc := range services {
		category := svc.Category
		if category == "" {
			category = "Uncategorized"
		}
		categories[category] = append(categories[category], svc)
	}

	span.SetAttributes(attribute.Int("panel.service_count", len(services)))
	span.SetStatus(otelcodes.Ok, "services fetched")
	return &GetServicesResponse{
		Categories: categories,
		Total:      len(services),
	}, nil
}

// matchesQuery 検索語の全単語がサービスの名前・カテゴリ・種別に含まれるか
func matchesQuery(svc fulfillment.Service, query string) bool {
	if query == "" {
		return true
	}
	searchable := strings.ToLower(fmt.Sprintf("%s %s %s", svc.Name, svc.Category, svc.Type))
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if !strings.Contains(searchable, word) {
			return false
		}
	}
	return true
}

// looksNoDrop サービス名からドロップ保証らしさを推定する
func looksNoDrop(svc fulfillment.Service) bool {
	name := strings.ToLower(svc.Name)
	for _, keyword := range noDropKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

// SearchServices 条件を指定してサービスを検索する。結果は単価の安い順
func (s *PanelApplicationService) SearchServices(ctx context.Context, req *SearchServicesRequest) (*SearchServicesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PanelApplicationService.SearchServices")
	defer span.End()

	span.SetAttributes(attribute.String("panel.query", req.Query))

	services, err := s.panelClient.GetServices(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to get panel services", err, nil)
		return nil, err
	}

	matched := make([]fulfillment.Service, 0)
	for _, svc := range services {
		if !matchesQuery(svc, req.Query) {
			continue
		}
		if req.MaxPrice != nil && svc.Rate > *req.MaxPrice {
			continue
		}
		if req.MinQuantity != nil && svc.Min > *req.MinQuantity {
			continue
		}
		if req.MaxQuantity != nil && svc.Max < *req.MaxQuantity {
			continue
		}
		if req.RefillOnly && !svc.Refill {
			continue
		}
		if req.NoDrop && !looksNoDrop(svc) {
			continue
		}
		matched = append(matched, svc)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Rate < matched[j].Rate
	})

	span.SetAttributes(attribute.Int("panel.match_count", len(matched)))
	span.SetStatus(otelcodes.Ok, "services searched")
	return &SearchServicesResponse{
		Services: matched,
		Count:    len(matched),
	}, nil
}

// CreateOrder コードを介さずパネルに直接発注する（管理用）
func (s *PanelApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PanelApplicationService.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("panel.service_id", req.ServiceID),
		attribute.Int("panel.quantity", req.Quantity),
	)

	if req.ServiceID <= 0 {
		err := fmt.Errorf("service_id is required")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	if strings.TrimSpace(req.Link) == "" {
		err := fmt.Errorf("link is required")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	if req.Quantity <= 0 {
		err := fmt.Errorf("quantity must be positive")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	orderID, err := s.panelClient.CreateOrder(ctx, req.ServiceID, strings.TrimSpace(req.Link), req.Quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to create direct order", err, map[string]interface{}{
			"service_id": req.ServiceID,
		})
		return nil, err
	}

	s.logger.Info(ctx, "Direct order created", map[string]interface{}{
		"service_id": req.ServiceID,
		"order_id":   orderID,
	})

	span.SetAttributes(attribute.Int64("panel.order_id", orderID))
	span.SetStatus(otelcodes.Ok, "order created")
	return &CreateOrderResponse{OrderID: orderID}, nil
}

// GetOrderStatus 注文の進行状況を取得
func (s *PanelApplicationService) GetOrderStatus(ctx context.Context, orderID int64) (*GetOrderStatusResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PanelApplicationService.GetOrderStatus")
	defer span.End()

	span.SetAttributes(attribute.Int64("panel.order_id", orderID))

	if orderID <= 0 {
		err := fmt.Errorf("order_id is required")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	status, err := s.panelClient.GetOrderStatus(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "order status fetched")
	return &GetOrderStatusResponse{
		OrderID:    status.OrderID,
		Status:     status.Status,
		Charge:     status.Charge,
		StartCount: status.StartCount,
		Remains:    status.Remains,
		Currency:   status.Currency,
	}, nil
}

// Refill 注文のリフィルを依頼する
func (s *PanelApplicationService) Refill(ctx context.Context, orderID int64) (*RefillResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PanelApplicationService.Refill")
	defer span.End()

	span.SetAttributes(attribute.Int64("panel.order_id", orderID))

	if orderID <= 0 {
		err := fmt.Errorf("order_id is required")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	refillID, err := s.panelClient.Refill(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "refill requested")
	return &RefillResponse{RefillID: refillID}, nil
}
