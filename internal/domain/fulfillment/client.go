package fulfillment

import (
	"context"
)

// Balance パネルのアカウント残高
type Balance struct {
	Amount   float64
	Currency string
}

// Service パネルが提供するサービスカタログのエントリ
type Service struct {
	ID       int64
	Name     string
	Type     string
	Category string
	Rate     float64
	Min      int
	Max      int
	Refill   bool
	Cancel   bool
}

// OrderStatus パネル側の注文の進行状況
type OrderStatus struct {
	OrderID    int64
	Status     string
	Charge     string
	StartCount int64
	Remains    int64
	Currency   string
}

// Client 上位パネルAPIへの送信クライアントインターフェース
// リトライ方針はこのクライアントには持たせない。ストア更新との順序を
// 明示するため、リトライは引き換えエンジン側で行う
type Client interface {
	// GetBalance アカウント残高を取得
	GetBalance(ctx context.Context) (*Balance, error)

	// GetServices 提供サービスの一覧を取得
	GetServices(ctx context.Context) ([]Service, error)

	// CreateOrder 注文を作成し、注文IDを返す。失敗時は*OrderErrorを返す
	CreateOrder(ctx context.Context, serviceID int64, link string, quantity int) (int64, error)

	// GetOrderStatus 注文の進行状況を取得
	GetOrderStatus(ctx context.Context, orderID int64) (*OrderStatus, error)

	// Refill 注文のリフィルを依頼し、リフィルIDを返す
	Refill(ctx context.Context, orderID int64) (int64, error)
}
