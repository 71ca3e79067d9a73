package redemption_code

import "errors"

var (
	// ErrCodeNotFound 引き換えコードが見つからないエラー
	ErrCodeNotFound = errors.New("code not found")
	// ErrCodeExpired 引き換えコードが期限切れエラー
	ErrCodeExpired = errors.New("code expired")
	// ErrCodeAlreadyUsed 引き換えコードが既に使用済みエラー
	ErrCodeAlreadyUsed = errors.New("code already used")
	// ErrCodeInvalidated 引き換えコードが無効化されているエラー
	ErrCodeInvalidated = errors.New("code invalidated")
	// ErrCodeAlreadyExists 引き換えコードが既に存在するエラー
	ErrCodeAlreadyExists = errors.New("code already exists")
	// ErrRedemptionNotFound 引き換え履歴が見つからないエラー
	ErrRedemptionNotFound = errors.New("redemption not found")
)
