package response

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Envelope 全APIレスポンス共通の外形
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// New 新しいEnvelopeを作成
func New(success bool, message string, data interface{}) Envelope {
	return Envelope{
		Success:   success,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}
}

// OK 成功レスポンスを返す
func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, New(true, message, data))
}

// Fail 失敗レスポンスを返す
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, New(false, message, nil))
}
