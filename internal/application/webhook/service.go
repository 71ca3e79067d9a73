package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"redeem-server/internal/application/redemption"
	"redeem-server/internal/domain/redemption_code"
	"redeem-server/internal/infrastructure/config"
	otelinfra "redeem-server/internal/infrastructure/observability/otel"
)

// ErrUnknownProduct 商品対応表に存在しない商品
var ErrUnknownProduct = errors.New("unknown product")

// ErrOutOfStock 該当する未使用コードの在庫がない
var ErrOutOfStock = errors.New("out of stock")

// WebhookApplicationService ECプラットフォームWebhookの処理サービス
// ECプラットフォーム側の注文IDを冪等性キーとして、同一イベントの再送で
// コードが二重消費されないことを保証する
type WebhookApplicationService struct {
	codeRepo      redemption_code.CodeRepository
	redemptionSvc *redemption.RedemptionApplicationService
	secret        []byte
	productMap    map[string]config.ProductMapping
	logger        *otelinfra.Logger
	metrics       *otelinfra.Metrics
	tracer        trace.Tracer
}

// NewWebhookApplicationService 新しいWebhookApplicationServiceを作成
func NewWebhookApplicationService(
	codeRepo redemption_code.CodeRepository,
	redemptionSvc *redemption.RedemptionApplicationService,
	cfg *config.WebhookConfig,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *WebhookApplicationService {
	return &WebhookApplicationService{
		codeRepo:      codeRepo,
		redemptionSvc: redemptionSvc,
		secret:        []byte(cfg.Secret),
		productMap:    cfg.ProductMap,
		logger:        logger,
		metrics:       metrics,
		tracer:        otel.Tracer("webhook-service"),
	}
}

// VerifySignature 生のリクエストボディに対するHMAC-SHA256署名を検証する
func (s *WebhookApplicationService) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandleEvent Webhookイベントを処理する
func (s *WebhookApplicationService) HandleEvent(ctx context.Context, event *Event) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "WebhookApplicationService.HandleEvent")
	defer span.End()

	span.SetAttributes(
		attribute.String("webhook.event", event.Event),
		attribute.String("webhook.sale_order_id", event.OrderID),
	)

	s.logger.Info(ctx, "Received webhook event", map[string]interface{}{
		"event":         event.Event,
		"sale_order_id": event.OrderID,
	})

	switch event.Event {
	case "order.completed":
		return s.handleOrderCompleted(ctx, span, event)
	case "order.refunded":
		return s.handleOrderRefunded(ctx, span, event)
	default:
		// 未知のイベントは受理して無視する
		s.metrics.RecordWebhookEvent(ctx, event.Event, ResultIgnored)
		span.SetStatus(otelcodes.Ok, "event ignored")
		return &Result{Status: ResultIgnored}, nil
	}
}

func (s *WebhookApplicationService) handleOrderCompleted(ctx context.Context, span trace.Span, event *Event) (*Result, error) {
	if event.OrderID == "" {
		err := fmt.Errorf("order_id is required")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// 冪等性チェック: 同一注文に対して既にコードを配送済みなら何もしない
	existing, err := s.codeRepo.FindRedemptionBySaleOrderID(ctx, event.OrderID)
	if err != nil && err != redemption_code.ErrRedemptionNotFound {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	if existing != nil {
		s.logger.Info(ctx, "Duplicate webhook delivery, already processed", map[string]interface{}{
			"sale_order_id": event.OrderID,
			"code":          existing.Code(),
		})
		s.metrics.RecordWebhookEvent(ctx, event.Event, ResultDuplicate)
		span.SetStatus(otelcodes.Ok, "duplicate delivery")
		return &Result{Status: ResultDuplicate, Code: existing.Code()}, nil
	}

	if event.Product == nil || event.Product.ID == "" {
		err := fmt.Errorf("product id is required")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	mapping, ok := s.productMap[event.Product.ID]
	if !ok {
		span.RecordError(ErrUnknownProduct)
		span.SetStatus(otelcodes.Error, ErrUnknownProduct.Error())
		s.logger.Error(ctx, "Product not in product map", ErrUnknownProduct, map[string]interface{}{
			"product_id": event.Product.ID,
		})
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, event.Product.ID)
	}

	platform, err := redemption_code.NewPlatform(mapping.Platform)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	serviceType, err := redemption_code.NewServiceType(mapping.ServiceType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// FIFO: 最も古い未使用コードを割り当てる
	code, err := s.codeRepo.FindOldestUnused(ctx, platform, serviceType)
	if err != nil {
		if err == redemption_code.ErrCodeNotFound {
			s.logger.Error(ctx, "No unused code in stock for webhook delivery", ErrOutOfStock, map[string]interface{}{
				"sale_order_id": event.OrderID,
				"platform":      platform.String(),
				"service_type":  serviceType.String(),
			})
			s.metrics.RecordOutOfStock(ctx, platform.String(), serviceType.String())
			s.metrics.RecordWebhookEvent(ctx, event.Event, ResultOutOfStock)
			span.SetStatus(otelcodes.Error, ErrOutOfStock.Error())
			return &Result{Status: ResultOutOfStock}, ErrOutOfStock
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	var link string
	if event.Custom != nil {
		link = event.Custom.Link
	}

	resp, err := s.redemptionSvc.Deliver(ctx, &redemption.DeliverRequest{
		Code:        code.Code(),
		Link:        link,
		SaleOrderID: event.OrderID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordWebhookEvent(ctx, event.Event, "delivery_failed")
		return nil, err
	}

	s.metrics.RecordWebhookEvent(ctx, event.Event, ResultDelivered)
	span.SetAttributes(attribute.String("webhook.code", resp.Code))
	span.SetStatus(otelcodes.Ok, "code delivered")

	s.logger.Info(ctx, "Webhook delivery completed", map[string]interface{}{
		"sale_order_id": event.OrderID,
		"code":          resp.Code,
	})

	return &Result{
		Status:  ResultDelivered,
		Code:    resp.Code,
		OrderID: resp.OrderID,
	}, nil
}

// handleOrderRefunded 返金されたコードに手動確認フラグを立てる
// ステータスは自動では変更しない（既に配送済みの注文を巻き戻せないため）
func (s *WebhookApplicationService) handleOrderRefunded(ctx context.Context, span trace.Span, event *Event) (*Result, error) {
	if event.OrderID == "" {
		err := fmt.Errorf("order_id is required")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	history, err := s.codeRepo.FindRedemptionBySaleOrderID(ctx, event.OrderID)
	if err != nil {
		if err == redemption_code.ErrRedemptionNotFound {
			// 配送前の返金。確認対象のコードが存在しないため無視する
			s.logger.Warn(ctx, "Refund for unknown sale order", map[string]interface{}{
				"sale_order_id": event.OrderID,
			})
			s.metrics.RecordWebhookEvent(ctx, event.Event, ResultIgnored)
			span.SetStatus(otelcodes.Ok, "refund for unknown order ignored")
			return &Result{Status: ResultIgnored}, nil
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	reason := fmt.Sprintf("refunded: %s", event.OrderID)
	if err := s.codeRepo.FlagForReview(ctx, history.Code(), reason); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	s.metrics.RecordWebhookEvent(ctx, event.Event, ResultFlagged)
	span.SetAttributes(attribute.String("webhook.code", history.Code()))
	span.SetStatus(otelcodes.Ok, "code flagged for review")

	s.logger.Info(ctx, "Refunded code flagged for review", map[string]interface{}{
		"sale_order_id": event.OrderID,
		"code":          history.Code(),
	})

	return &Result{Status: ResultFlagged, Code: history.Code()}, nil
}
