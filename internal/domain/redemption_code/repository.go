package redemption_code

import (
	"context"
	"time"
)

// RedemptionHistory 引き換え履歴エンティティ（作成後は変更されない監査レコード）
type RedemptionHistory struct {
	id          int64
	code        string
	userID      string
	username    string
	serviceID   int64
	quantity    int
	link        string
	orderID     *int64
	saleOrderID string
	redeemedAt  time.Time
}

// NewRedemptionHistory 新しいRedemptionHistoryエンティティを作成
// orderIDは発注が確定しなかった場合nil、saleOrderIDはWebhook経由の配送時のみ設定される
func NewRedemptionHistory(
	code string,
	userID string,
	username string,
	serviceID int64,
	quantity int,
	link string,
	orderID *int64,
	saleOrderID string,
) *RedemptionHistory {
	return &RedemptionHistory{
		code:        code,
		userID:      userID,
		username:    username,
		serviceID:   serviceID,
		quantity:    quantity,
		link:        link,
		orderID:     orderID,
		saleOrderID: saleOrderID,
		redeemedAt:  time.Now(),
	}
}

// ID 履歴IDを返す
func (rh *RedemptionHistory) ID() int64 {
	return rh.id
}

// Code コードを返す
func (rh *RedemptionHistory) Code() string {
	return rh.code
}

// UserID ユーザーIDを返す
func (rh *RedemptionHistory) UserID() string {
	return rh.userID
}

// Username 表示名を返す
func (rh *RedemptionHistory) Username() string {
	return rh.username
}

// ServiceID パネル側のサービスIDを返す
func (rh *RedemptionHistory) ServiceID() int64 {
	return rh.serviceID
}

// Quantity 数量を返す
func (rh *RedemptionHistory) Quantity() int {
	return rh.quantity
}

// Link 配送先リンクを返す
func (rh *RedemptionHistory) Link() string {
	return rh.link
}

// OrderID パネル側の注文IDを返す（発注前に失敗した場合はnil）
func (rh *RedemptionHistory) OrderID() *int64 {
	return rh.orderID
}

// SaleOrderID ECプラットフォーム側の注文IDを返す（Webhook配送時のみ）
func (rh *RedemptionHistory) SaleOrderID() string {
	return rh.saleOrderID
}

// RedeemedAt 引き換え日時を返す
func (rh *RedemptionHistory) RedeemedAt() time.Time {
	return rh.redeemedAt
}

// SetID 履歴IDを設定（リポジトリから読み込んだ際に使用）
func (rh *RedemptionHistory) SetID(id int64) {
	rh.id = id
}

// SetRedeemedAt 引き換え日時を設定（リポジトリから読み込んだ際に使用）
func (rh *RedemptionHistory) SetRedeemedAt(t time.Time) {
	rh.redeemedAt = t
}

// CodeRepository 引き換えコードリポジトリインターフェース
// コードと履歴のライフサイクルを変更できるのはこのリポジトリのみ
type CodeRepository interface {
	// FindByCode コードで引き換えコードを取得
	FindByCode(ctx context.Context, code string) (*Code, error)

	// Create 引き換えコードを作成（重複コードはErrCodeAlreadyExists）
	Create(ctx context.Context, code *Code) error

	// CreateBatch 複数の引き換えコードを単一トランザクションで作成する
	// いずれか1件でも失敗した場合は全件ロールバックされる
	CreateBatch(ctx context.Context, codes []*Code) error

	// MarkUsed コードを使用済みにする。unused → usedの遷移を単一の
	// 条件付きUPDATEとして実行し、競合する呼び出しのうち1つだけが成功する。
	// 使用済みの場合はErrCodeAlreadyUsed、存在しない場合はErrCodeNotFoundを返す
	MarkUsed(ctx context.Context, code string, userID string, orderID *int64) error

	// SaveRedemption 引き換え履歴を保存
	SaveRedemption(ctx context.Context, history *RedemptionHistory) error

	// FindAll 引き換えコードの一覧を取得（作成日時の古い順）
	// statusが空文字の場合は全件を返す
	FindAll(ctx context.Context, status string) ([]*Code, error)

	// FindOldestUnused 指定のプラットフォーム・サービス種別で最も古い
	// 未使用コードを取得（Webhook配送のFIFO選択）
	FindOldestUnused(ctx context.Context, platform Platform, serviceType ServiceType) (*Code, error)

	// FlagForReview コードに手動確認フラグを立てる（ステータスは変更しない）
	FlagForReview(ctx context.Context, code string, reason string) error

	// FindRedemptionsByUserID ユーザーの引き換え履歴を取得（新しい順）
	FindRedemptionsByUserID(ctx context.Context, userID string) ([]*RedemptionHistory, error)

	// FindAllRedemptions 全引き換え履歴を取得（新しい順）
	FindAllRedemptions(ctx context.Context) ([]*RedemptionHistory, error)

	// FindRedemptionBySaleOrderID ECプラットフォーム側の注文IDで履歴を取得
	// （Webhookの冪等性チェックと返金処理に使用）
	FindRedemptionBySaleOrderID(ctx context.Context, saleOrderID string) (*RedemptionHistory, error)
}
