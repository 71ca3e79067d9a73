package redemption_code

import (
	"errors"
	"time"
)

// Code 引き換えコードエンティティ
type Code struct {
	code         string
	serviceID    int64
	quantity     int
	platform     Platform
	serviceType  ServiceType
	requirements string
	status       CodeStatus
	createdAt    time.Time
	usedAt       *time.Time
	usedBy       string
	orderID      *int64
	expiryDays   int
	hasRefill    bool
	needsReview  bool
	reviewReason string
}

// NewCode 新しいCodeエンティティを作成
func NewCode(
	code string,
	serviceID int64,
	quantity int,
	platform Platform,
	serviceType ServiceType,
	requirements string,
	expiryDays int,
	hasRefill bool,
) (*Code, error) {
	if code == "" {
		return nil, errors.New("invalid code")
	}
	if serviceID <= 0 {
		return nil, errors.New("invalid service id")
	}
	if quantity <= 0 {
		return nil, errors.New("invalid quantity")
	}
	if expiryDays <= 0 {
		return nil, errors.New("invalid expiry days")
	}

	return &Code{
		code:         code,
		serviceID:    serviceID,
		quantity:     quantity,
		platform:     platform,
		serviceType:  serviceType,
		requirements: requirements,
		status:       CodeStatusUnused,
		createdAt:    time.Now(),
		expiryDays:   expiryDays,
		hasRefill:    hasRefill,
	}, nil
}

// Code コードを返す
func (c *Code) Code() string {
	return c.code
}

// ServiceID パネル側のサービスIDを返す
func (c *Code) ServiceID() int64 {
	return c.serviceID
}

// Quantity 数量を返す
func (c *Code) Quantity() int {
	return c.quantity
}

// Platform プラットフォームを返す
func (c *Code) Platform() Platform {
	return c.platform
}

// ServiceType サービス種別を返す
func (c *Code) ServiceType() ServiceType {
	return c.serviceType
}

// Requirements 補足要件を返す
func (c *Code) Requirements() string {
	return c.requirements
}

// Status ステータスを返す
func (c *Code) Status() CodeStatus {
	return c.status
}

// CreatedAt 作成日時を返す
func (c *Code) CreatedAt() time.Time {
	return c.createdAt
}

// UsedAt 使用日時を返す（未使用の場合はnil）
func (c *Code) UsedAt() *time.Time {
	return c.usedAt
}

// UsedBy 使用ユーザーIDを返す
func (c *Code) UsedBy() string {
	return c.usedBy
}

// OrderID 発注済み注文IDを返す（未発注の場合はnil）
func (c *Code) OrderID() *int64 {
	return c.orderID
}

// ExpiryDays 有効日数を返す
func (c *Code) ExpiryDays() int {
	return c.expiryDays
}

// HasRefill リフィル対象かどうかを返す
func (c *Code) HasRefill() bool {
	return c.hasRefill
}

// NeedsReview 手動確認が必要かどうかを返す
func (c *Code) NeedsReview() bool {
	return c.needsReview
}

// ReviewReason 手動確認が必要な理由を返す
func (c *Code) ReviewReason() string {
	return c.reviewReason
}

// ExpiresAt 有効期限を返す（作成日時 + 有効日数）
func (c *Code) ExpiresAt() time.Time {
	return c.createdAt.AddDate(0, 0, c.expiryDays)
}

// IsExpired 指定時刻において期限切れかどうかを返す
func (c *Code) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt())
}

// ValidationError 引き換え可能かどうかを判定し、不可の場合は理由をエラーで返す
// 期限は読み取り時に遅延評価される（バックグラウンド掃除は行わない）
func (c *Code) ValidationError(now time.Time) error {
	switch c.status {
	case CodeStatusUsed:
		return ErrCodeAlreadyUsed
	case CodeStatusInvalidated:
		return ErrCodeInvalidated
	}
	if c.IsExpired(now) {
		return ErrCodeExpired
	}
	return nil
}

// IsRedeemable 指定時刻において引き換え可能かどうかを返す
func (c *Code) IsRedeemable(now time.Time) bool {
	return c.ValidationError(now) == nil
}

// SetStatus ステータスを設定（リポジトリから読み込んだ際に使用）
func (c *Code) SetStatus(status CodeStatus) {
	c.status = status
}

// SetCreatedAt 作成日時を設定（リポジトリから読み込んだ際に使用）
func (c *Code) SetCreatedAt(t time.Time) {
	c.createdAt = t
}

// SetUsage 使用情報を設定（リポジトリから読み込んだ際に使用）
func (c *Code) SetUsage(usedAt *time.Time, usedBy string, orderID *int64) {
	c.usedAt = usedAt
	c.usedBy = usedBy
	c.orderID = orderID
}

// SetReview 手動確認フラグを設定（リポジトリから読み込んだ際に使用）
func (c *Code) SetReview(needsReview bool, reason string) {
	c.needsReview = needsReview
	c.reviewReason = reason
}

// MustNewCode テスト用ヘルパー: NewCodeを呼び出し、エラーが発生した場合はpanicする
func MustNewCode(
	code string,
	serviceID int64,
	quantity int,
	platform Platform,
	serviceType ServiceType,
	requirements string,
	expiryDays int,
	hasRefill bool,
) *Code {
	c, err := NewCode(code, serviceID, quantity, platform, serviceType, requirements, expiryDays, hasRefill)
	if err != nil {
		panic(err)
	}
	return c
}
