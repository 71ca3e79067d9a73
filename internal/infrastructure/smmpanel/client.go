package smmpanel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"redeem-server/internal/domain/fulfillment"
	"redeem-server/internal/infrastructure/config"
)

const userAgent = "redeem-server/1.0"

// Client SMMパネルv2 APIのHTTPクライアント
// 全アクションは単一エンドポイントへのフォームエンコードPOSTで表現される
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient 新しいClientを作成
func NewClient(cfg *config.PanelConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		tracer: otel.Tracer("smmpanel-client"),
	}
}

// flexInt64 パネルは数値を文字列で返すことがあるため両方受け付ける
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	*f = flexInt64(v)
	return nil
}

// flexFloat64 flexInt64の浮動小数点版
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	*f = flexFloat64(v)
	return nil
}

// flexBool パネルはbool/数値/文字列を混在させるため全て受け付ける
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.ToLower(string(data)), `"`)
	*f = s == "true" || s == "1"
	return nil
}

// post アクションとパラメータをフォームエンコードして送信し、生のボディを返す
func (c *Client) post(ctx context.Context, action string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.apiKey)
	params.Set("action", action)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fulfillment.NewOrderError(fulfillment.ErrorKindTransient, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fulfillment.NewOrderError(fulfillment.ErrorKindTransient, "panel request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fulfillment.NewOrderError(fulfillment.ErrorKindTransient, "failed to read panel response", err)
	}

	if resp.StatusCode >= 500 {
		return nil, fulfillment.NewOrderError(fulfillment.ErrorKindTransient,
			fmt.Sprintf("panel returned status %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fulfillment.NewOrderError(fulfillment.ErrorKindRejected,
			fmt.Sprintf("panel returned status %d", resp.StatusCode), nil)
	}

	return body, nil
}

// classifyAPIError パネルのエラーメッセージを分類する
func classifyAPIError(message string) *fulfillment.OrderError {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "link"):
		return fulfillment.NewOrderError(fulfillment.ErrorKindInvalidLink, message, nil)
	case strings.Contains(lower, "funds") || strings.Contains(lower, "balance"):
		return fulfillment.NewOrderError(fulfillment.ErrorKindInsufficientBalance, message, nil)
	case strings.Contains(lower, "service"):
		return fulfillment.NewOrderError(fulfillment.ErrorKindServiceUnavailable, message, nil)
	default:
		return fulfillment.NewOrderError(fulfillment.ErrorKindRejected, message, nil)
	}
}

// apiError 全レスポンス共通のエラーフィールド
type apiError struct {
	Error string `json:"error"`
}

// GetBalance アカウント残高を取得
func (c *Client) GetBalance(ctx context.Context) (*fulfillment.Balance, error) {
	ctx, span := c.tracer.Start(ctx, "Client.GetBalance")
	defer span.End()

	body, err := c.post(ctx, "balance", nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	var resp struct {
		apiError
		Balance  flexFloat64 `json:"balance"`
		Currency string      `json:"currency"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fulfillment.NewOrderError(fulfillment.ErrorKindTransient, "invalid balance response", err)
	}
	if resp.Error != "" {
		apiErr := classifyAPIError(resp.Error)
		span.RecordError(apiErr)
		span.SetStatus(otelcodes.Error, apiErr.Error())
		return nil, apiErr
	}

	span.SetAttributes(attribute.Float64("panel.balance", float64(resp.Balance)))
	span.SetStatus(otelcodes.Ok, "balance fetched")
	return &fulfillment.Balance{
		Amount:   float64(resp.Balance),
		Currency: resp.Currency,
	}, nil
}

// GetServices 提供サービスの一覧を取得
func (c *Client) GetServices(ctx context.Context) ([]fulfillment.Service, error) {
	ctx, span := c.tracer.Start(ctx, "Client.GetServices")
	defer span.End()

	body, err := c.post(ctx, "services", nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// エラー時はオブジェクト、正常時は配列が返る
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		classified := classifyAPIError(apiErr.Error)
		span.RecordError(classified)
		span.SetStatus(otelcodes.Error, classified.Error())
		return nil, classified
	}

	var raw []struct {
		Service  flexInt64   `json:"service"`
		Name     string      `json:"name"`
		Type     string      `json:"type"`
		Category string      `json:"category"`
		Rate     flexFloat64 `json:"rate"`
		Min      flexInt64   `json:"min"`
		Max      flexInt64   `json:"max"`
		Refill   flexBool    `json:"refill"`
		Cancel   flexBool    `json:"cancel"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fulfillment.NewOrderError(fulfillment.ErrorKindTransient, "invalid services response", err)
	}

	services := make([]fulfillment.Service, 0, len(raw))
	for _, s := range raw {
		services = append(services, fulfillment.Service{
			ID:       int64(s.Service),
			Name:     s.Name,
			Type:     s.Type,
			Category: s.Category,
			Rate:     float64(s.Rate),
			Min:      int(s.Min),
			Max:      int(s.Max),
			Refill:   bool(s.Refill),
			Cancel:   bool(s.Cancel),
		})
	}

	span.SetAttributes(attribute.Int("panel.service_count", len(services)))
	span.SetStatus(otelcodes.Ok, "services fetched")
	return services, nil
}

// CreateOrder 注文を作成し、注文IDを返す
func (c *Client) CreateOrder(ctx context.Context, serviceID int64, link string, quantity int) (int64, error) {
	ctx, span := c.tracer.Start(ctx, "Client.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("panel.service_id", serviceID),
		attribute.Int("panel.quantity", quantity),
	)

	params := url.Values{}
	params.Set("service", strconv.FormatInt(serviceID, 10))
	params.Set("link", link)
	params.Set("quantity", strconv.Itoa(quantity))

	body, err := c.post(ctx, "add", params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, err
	}

	var resp struct {
		apiError
		Order flexInt64 `json:"order"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fulfillment.NewOrderError(fulfillment.ErrorKindTransient, "invalid order response", err)
	}
	if resp.Error != "" {
		apiErr := classifyAPIError(resp.Error)
		span.RecordError(apiErr)
		span.SetStatus(otelcodes.Error, apiErr.Error())
		return 0, apiErr
	}
	if resp.Order == 0 {
		err := fulfillment.NewOrderError(fulfillment.ErrorKindRejected, "panel returned no order id", nil)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int64("panel.order_id", int64(resp.Order)))
	span.SetStatus(otelcodes.Ok, "order created")
	return int64(resp.Order), nil
}

// GetOrderStatus 注文の進行状況を取得
func (c *Client) GetOrderStatus(ctx context.Context, orderID int64) (*fulfillment.OrderStatus, error) {
	ctx, span := c.tracer.Start(ctx, "Client.GetOrderStatus")
	defer span.End()

	span.SetAttributes(attribute.Int64("panel.order_id", orderID))

	params := url.Values{}
	params.Set("order", strconv.FormatInt(orderID, 10))

	body, err := c.post(ctx, "status", params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	var resp struct {
		apiError
		Charge     string    `json:"charge"`
		StartCount flexInt64 `json:"start_count"`
		Status     string    `json:"status"`
		Remains    flexInt64 `json:"remains"`
		Currency   string    `json:"currency"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fulfillment.NewOrderError(fulfillment.ErrorKindTransient, "invalid status response", err)
	}
	if resp.Error != "" {
		apiErr := classifyAPIError(resp.Error)
		span.RecordError(apiErr)
		span.SetStatus(otelcodes.Error, apiErr.Error())
		return nil, apiErr
	}

	span.SetAttributes(attribute.String("panel.order_status", resp.Status))
	span.SetStatus(otelcodes.Ok, "order status fetched")
	return &fulfillment.OrderStatus{
		OrderID:    orderID,
		Status:     resp.Status,
		Charge:     resp.Charge,
		StartCount: int64(resp.StartCount),
		Remains:    int64(resp.Remains),
		Currency:   resp.Currency,
	}, nil
}

// Refill 注文のリフィルを依頼し、リフィルIDを返す
func (c *Client) Refill(ctx context.Context, orderID int64) (int64, error) {
	ctx, span := c.tracer.Start(ctx, "Client.Refill")
	defer span.End()

	span.SetAttributes(attribute.Int64("panel.order_id", orderID))

	params := url.Values{}
	params.Set("order", strconv.FormatInt(orderID, 10))

	body, err := c.post(ctx, "refill", params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, err
	}

	var resp struct {
		apiError
		Refill flexInt64 `json:"refill"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fulfillment.NewOrderError(fulfillment.ErrorKindTransient, "invalid refill response", err)
	}
	if resp.Error != "" {
		apiErr := classifyAPIError(resp.Error)
		span.RecordError(apiErr)
		span.SetStatus(otelcodes.Error, apiErr.Error())
		return 0, apiErr
	}

	span.SetAttributes(attribute.Int64("panel.refill_id", int64(resp.Refill)))
	span.SetStatus(otelcodes.Ok, "refill requested")
	return int64(resp.Refill), nil
}
