package webhook

// Event ECプラットフォームから受信するWebhookイベント
type Event struct {
	Event    string    `json:"event"`
	OrderID  string    `json:"order_id"`
	Customer *Customer `json:"customer,omitempty"`
	Product  *Product  `json:"product,omitempty"`
	Custom   *Custom   `json:"custom,omitempty"`
}

// Customer 購入者情報
type Customer struct {
	Email string `json:"email"`
}

// Product 購入された商品情報
type Product struct {
	ID string `json:"id"`
}

// Custom 購入時に入力されたカスタムフィールド
type Custom struct {
	Link string `json:"link"`
}

// Result Webhook処理結果
type Result struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	OrderID *int64 `json:"order_id,omitempty"`
}

// 処理結果ステータス
const (
	ResultDelivered  = "delivered"
	ResultDuplicate  = "duplicate"
	ResultOutOfStock = "out_of_stock"
	ResultFlagged    = "flagged"
	ResultIgnored    = "ignored"
)
