package handler

// ValidateCodeRequest コード検証リクエスト
// @Description コード検証リクエスト
type ValidateCodeRequest struct {
	Code string `json:"code" example:"AB12-CD34-EF56-GH78"`
}

// RedeemRequest コード引き換えリクエスト
// @Description コード引き換えリクエスト
type RedeemRequest struct {
	Code     string `json:"code" example:"AB12-CD34-EF56-GH78"`
	Link     string `json:"link" example:"https://youtube.com/@example"`
	UserID   string `json:"user_id" example:"user_123"`
	Username string `json:"username" example:"example#0001"`
}

// SearchRequest サービス検索リクエスト
// @Description サービス検索リクエスト
type SearchRequest struct {
	Query       string   `json:"query" example:"youtube subscribers"`
	MaxPrice    *float64 `json:"max_price,omitempty" example:"5.0"`
	MinQuantity *int     `json:"min_quantity,omitempty" example:"100"`
	MaxQuantity *int     `json:"max_quantity,omitempty" example:"10000"`
	RefillOnly  bool     `json:"refill_only" example:"false"`
	NoDrop      bool     `json:"no_drop" example:"false"`
}

// ProvisionCodesRequest コード一括発行リクエスト
// @Description コード一括発行リクエスト
type ProvisionCodesRequest struct {
	Count        int    `json:"count" example:"10"`
	ServiceID    int64  `json:"service_id" example:"101"`
	Quantity     int    `json:"quantity" example:"1000"`
	Platform     string `json:"platform" example:"youtube" enums:"youtube,instagram,tiktok,twitter"`
	ServiceType  string `json:"service_type" example:"subscribers"`
	Requirements string `json:"requirements" example:"Channel must be public"`
	ExpiryDays   int    `json:"expiry_days" example:"30"`
	Prefix       string `json:"prefix" example:"YT1K"`
	HasRefill    bool   `json:"has_refill" example:"true"`
}

// EnvelopeResponse 全エンドポイント共通のレスポンス外形
// @Description 全エンドポイント共通のレスポンス外形
type EnvelopeResponse struct {
	Success   bool        `json:"success" example:"true"`
	Message   string      `json:"message" example:"Code redeemed successfully"`
	Timestamp string      `json:"timestamp" example:"2025-01-01T00:00:00Z"`
	Data      interface{} `json:"data"`
}
