package redemption

import "time"

// ValidateCodeRequest コード検証リクエスト
type ValidateCodeRequest struct {
	Code string `json:"code"`
}

// ValidateCodeResponse コード検証レスポンス
type ValidateCodeResponse struct {
	Code         string    `json:"code"`
	Platform     string    `json:"platform"`
	ServiceType  string    `json:"service_type"`
	Quantity     int       `json:"quantity"`
	Requirements string    `json:"requirements,omitempty"`
	HasRefill    bool      `json:"has_refill"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// RedeemRequest コード引き換えリクエスト
type RedeemRequest struct {
	Code     string `json:"code"`
	Link     string `json:"link"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// RedeemResponse コード引き換えレスポンス
type RedeemResponse struct {
	Code        string    `json:"code"`
	Platform    string    `json:"platform"`
	ServiceType string    `json:"service_type"`
	Quantity    int       `json:"quantity"`
	Link        string    `json:"link"`
	OrderID     int64     `json:"order_id"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}

// DeliverRequest Webhook経由の配送リクエスト
// Linkが空の場合は発注せず、コードの確保のみ行う
type DeliverRequest struct {
	Code        string `json:"code"`
	Link        string `json:"link"`
	SaleOrderID string `json:"sale_order_id"`
}

// DeliverResponse Webhook経由の配送レスポンス
type DeliverResponse struct {
	Code       string    `json:"code"`
	OrderID    *int64    `json:"order_id,omitempty"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

// ProvisionCodesRequest コード一括発行リクエスト
type ProvisionCodesRequest struct {
	Count        int    `json:"count"`
	ServiceID    int64  `json:"service_id"`
	Quantity     int    `json:"quantity"`
	Platform     string `json:"platform"`
	ServiceType  string `json:"service_type"`
	Requirements string `json:"requirements"`
	ExpiryDays   int    `json:"expiry_days"`
	Prefix       string `json:"prefix"`
	HasRefill    bool   `json:"has_refill"`
}

// ProvisionCodesResponse コード一括発行レスポンス
type ProvisionCodesResponse struct {
	Codes []string `json:"codes"`
}
