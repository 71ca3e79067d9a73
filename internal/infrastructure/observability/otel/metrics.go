package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// 引換試行数
	RedemptionCount metric.Int64Counter

	// パネルへの発注数
	OrderCount metric.Int64Counter

	// Webhookイベント数
	WebhookEventCount metric.Int64Counter

	// 在庫切れの発生件数
	OutOfStockCount metric.Int64Counter

	// 要調整ケースの発生件数（発注後にコード確定に失敗したもの）
	ReconciliationCount metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	redemptionCount, err := meter.Int64Counter(
		"redemptions_total",
		metric.WithDescription("Total number of redemption attempts"),
	)
	if err != nil {
		return nil, err
	}

	orderCount, err := meter.Int64Counter(
		"panel_orders_total",
		metric.WithDescription("Total number of orders placed on the panel"),
	)
	if err != nil {
		return nil, err
	}

	webhookEventCount, err := meter.Int64Counter(
		"webhook_events_total",
		metric.WithDescription("Total number of webhook events received"),
	)
	if err != nil {
		return nil, err
	}

	outOfStockCount, err := meter.Int64Counter(
		"out_of_stock_total",
		metric.WithDescription("Total number of out-of-stock occurrences"),
	)
	if err != nil {
		return nil, err
	}

	reconciliationCount, err := meter.Int64Counter(
		"reconciliation_needed_total",
		metric.WithDescription("Total number of redemptions needing manual reconciliation"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RedemptionCount:     redemptionCount,
		OrderCount:          orderCount,
		WebhookEventCount:   webhookEventCount,
		OutOfStockCount:     outOfStockCount,
		ReconciliationCount: reconciliationCount,
		RequestCount:        requestCount,
		ResponseTime:        responseTime,
		ErrorCount:          errorCount,
	}, nil
}

// RecordRedemption 引換試行を記録
func (m *Metrics) RecordRedemption(ctx context.Context, platform, serviceType, result string) {
	m.RedemptionCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("service_type", serviceType),
			attribute.String("result", result),
		),
	)
}

// RecordOrderPlaced パネルへの発注を記録
func (m *Metrics) RecordOrderPlaced(ctx context.Context, platform, serviceType string) {
	m.OrderCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("service_type", serviceType),
		),
	)
}

// RecordWebhookEvent Webhookイベントを記録
func (m *Metrics) RecordWebhookEvent(ctx context.Context, eventType, result string) {
	m.WebhookEventCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("event_type", eventType),
			attribute.String("result", result),
		),
	)
}

// RecordOutOfStock 在庫切れの発生を記録
func (m *Metrics) RecordOutOfStock(ctx context.Context, platform, serviceType string) {
	m.OutOfStockCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("service_type", serviceType),
		),
	)
}

// RecordReconciliation 要調整ケースの発生を記録
func (m *Metrics) RecordReconciliation(ctx context.Context, code string, orderID int64) {
	m.ReconciliationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("code", code),
			attribute.Int64("order_id", orderID),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
