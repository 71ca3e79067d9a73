package panel

import "redeem-server/internal/domain/fulfillment"

// SearchServicesRequest サービス検索リクエスト
type SearchServicesRequest struct {
	Query       string   `json:"query"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	MinQuantity *int     `json:"min_quantity,omitempty"`
	MaxQuantity *int     `json:"max_quantity,omitempty"`
	RefillOnly  bool     `json:"refill_only"`
	NoDrop      bool     `json:"no_drop"`
}

// SearchServicesResponse サービス検索レスポンス
type SearchServicesResponse struct {
	Services []fulfillment.Service `json:"services"`
	Count    int                   `json:"count"`
}

// GetServicesResponse カテゴリ別にグループ化したサービス一覧
type GetServicesResponse struct {
	Categories map[string][]fulfillment.Service `json:"categories"`
	Total      int                              `json:"total"`
}

// GetBalanceResponse 残高レスポンス
type GetBalanceResponse struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

// CreateOrderRequest 直接発注リクエスト
type CreateOrderRequest struct {
	ServiceID int64  `json:"service_id"`
	Link      string `json:"link"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderResponse 直接発注レスポンス
type CreateOrderResponse struct {
	OrderID int64 `json:"order_id"`
}

// GetOrderStatusResponse 注文ステータスレスポンス
type GetOrderStatusResponse struct {
	OrderID    int64  `json:"order_id"`
	Status     string `json:"status"`
	Charge     string `json:"charge"`
	StartCount int64  `json:"start_count"`
	Remains    int64  `json:"remains"`
	Currency   string `json:"currency"`
}

// RefillResponse リフィル依頼レスポンス
type RefillResponse struct {
	RefillID int64 `json:"refill_id"`
}
