package redemption_code

import (
	"fmt"
)

// CodeStatus コードステータスを表す値オブジェクト
type CodeStatus string

const (
	CodeStatusUnused      CodeStatus = "unused"      // 未使用
	CodeStatusUsed        CodeStatus = "used"        // 使用済み
	CodeStatusInvalidated CodeStatus = "invalidated" // 無効化
)

// NewCodeStatus 新しいCodeStatusを作成
func NewCodeStatus(s string) (CodeStatus, error) {
	switch s {
	case "unused", "used", "invalidated":
		return CodeStatus(s), nil
	default:
		return "", fmt.Errorf("invalid code status: %s", s)
	}
}

// String 文字列表現を返す
func (cs CodeStatus) String() string {
	return string(cs)
}

// Valid 有効なコードステータスかどうかを返す
func (cs CodeStatus) Valid() bool {
	switch cs {
	case CodeStatusUnused, CodeStatusUsed, CodeStatusInvalidated:
		return true
	default:
		return false
	}
}

// IsUnused 未使用状態かどうかを返す
func (cs CodeStatus) IsUnused() bool {
	return cs == CodeStatusUnused
}
