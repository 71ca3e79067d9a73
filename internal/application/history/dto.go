package history

import "time"

// CodeSummary 管理APIに返すコードの概要
type CodeSummary struct {
	Code         string     `json:"code"`
	ServiceID    int64      `json:"service_id"`
	Quantity     int        `json:"quantity"`
	Platform     string     `json:"platform"`
	ServiceType  string     `json:"service_type"`
	Requirements string     `json:"requirements,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_date"`
	UsedAt       *time.Time `json:"used_date,omitempty"`
	UsedBy       string     `json:"used_by_user_id,omitempty"`
	OrderID      *int64     `json:"order_id,omitempty"`
	ExpiresAt    time.Time  `json:"expires_at"`
	HasRefill    bool       `json:"has_refill"`
	NeedsReview  bool       `json:"needs_review"`
	ReviewReason string     `json:"review_reason,omitempty"`
}

// RedemptionSummary 引き換え履歴の概要
type RedemptionSummary struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	ServiceID   int64     `json:"service_id"`
	Quantity    int       `json:"quantity"`
	Link        string    `json:"link"`
	OrderID     *int64    `json:"order_id,omitempty"`
	SaleOrderID string    `json:"sale_order_id,omitempty"`
	RedeemedAt  time.Time `json:"redeemed_date"`
}

// ListCodesRequest コード一覧リクエスト
type ListCodesRequest struct {
	Status string `json:"status"`
}

// ListCodesResponse コード一覧レスポンス
type ListCodesResponse struct {
	Codes []CodeSummary `json:"codes"`
	Total int           `json:"total"`
}

// ListRedemptionsResponse 引き換え履歴一覧レスポンス
type ListRedemptionsResponse struct {
	Redemptions []RedemptionSummary `json:"redemptions"`
	Total       int                 `json:"total"`
}

// GetUserRedemptionsRequest ユーザー履歴リクエスト
type GetUserRedemptionsRequest struct {
	UserID string `json:"user_id"`
}
