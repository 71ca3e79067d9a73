package fulfillment

import (
	"errors"
	"fmt"
)

// ErrorKind 注文エラーの分類
type ErrorKind string

const (
	// ErrorKindInvalidLink リンクがパネルに拒否された
	ErrorKindInvalidLink ErrorKind = "invalid-link"
	// ErrorKindInsufficientBalance 残高不足
	ErrorKindInsufficientBalance ErrorKind = "insufficient-balance"
	// ErrorKindServiceUnavailable 対象サービスが利用不可
	ErrorKindServiceUnavailable ErrorKind = "service-unavailable"
	// ErrorKindTransient ネットワーク障害・5xx・タイムアウト（リトライ可能）
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindRejected その他の拒否（リトライ不可）
	ErrorKindRejected ErrorKind = "rejected"
)

// OrderError 分類付きの注文エラー
type OrderError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewOrderError 新しいOrderErrorを作成
func NewOrderError(kind ErrorKind, message string, err error) *OrderError {
	return &OrderError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Error エラーメッセージを返す
func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 内包するエラーを返す
func (e *OrderError) Unwrap() error {
	return e.Err
}

// KindOf エラーの分類を返す。OrderErrorでない場合はErrorKindTransientとして
// 扱う（呼び出しタイムアウト等は注文が成立していない前提でリトライ可能）
func KindOf(err error) ErrorKind {
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ErrorKindTransient
}

// IsTransient リトライ可能なエラーかどうかを返す
func IsTransient(err error) bool {
	return KindOf(err) == ErrorKindTransient
}
