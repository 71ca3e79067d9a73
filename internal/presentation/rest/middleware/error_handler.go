package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"redeem-server/internal/application/redemption"
	"redeem-server/internal/application/webhook"
	"redeem-server/internal/domain/fulfillment"
	"redeem-server/internal/domain/redemption_code"
	otelinfra "redeem-server/internal/infrastructure/observability/otel"
	"redeem-server/internal/presentation/rest/response"
)

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// エラーハンドリング
			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	// ドメインエラーの判定と処理
	if errors.Is(err, redemption_code.ErrCodeNotFound) {
		logger.Warn(ctx, "Code not found", map[string]interface{}{
			"error": err.Error(),
		})
		return response.Fail(c, http.StatusNotFound, "Invalid code")
	}

	if errors.Is(err, redemption_code.ErrCodeAlreadyUsed) {
		logger.Warn(ctx, "Code already used", map[string]interface{}{
			"error": err.Error(),
		})
		return response.Fail(c, http.StatusConflict, "This code has already been used")
	}

	if errors.Is(err, redemption_code.ErrCodeExpired) {
		logger.Warn(ctx, "Code expired", map[string]interface{}{
			"error": err.Error(),
		})
		return response.Fail(c, http.StatusGone, "This code has expired")
	}

	if errors.Is(err, redemption_code.ErrCodeInvalidated) {
		logger.Warn(ctx, "Code invalidated", map[string]interface{}{
			"error": err.Error(),
		})
		return response.Fail(c, http.StatusGone, "This code is no longer valid")
	}

	if errors.Is(err, redemption_code.ErrCodeAlreadyExists) {
		logger.Warn(ctx, "Code already exists", map[string]interface{}{
			"error": err.Error(),
		})
		return response.Fail(c, http.StatusConflict, "Code already exists")
	}

	if errors.Is(err, redemption_code.ErrRedemptionNotFound) {
		logger.Warn(ctx, "Redemption not found", map[string]interface{}{
			"error": err.Error(),
		})
		return response.Fail(c, http.StatusNotFound, "Redemption not found")
	}

	// リンク分類エラー
	var linkErr *redemption.LinkRejectedError
	if errors.As(err, &linkErr) {
		logger.Warn(ctx, "Link rejected", map[string]interface{}{
			"reason": linkErr.Reason,
		})
		return response.Fail(c, http.StatusBadRequest, linkErr.Reason)
	}

	// Webhookのエラー
	if errors.Is(err, webhook.ErrOutOfStock) {
		logger.Warn(ctx, "Out of stock", map[string]interface{}{
			"error": err.Error(),
		})
		return response.Fail(c, http.StatusConflict, "No codes available for this product")
	}

	if errors.Is(err, webhook.ErrUnknownProduct) {
		logger.Warn(ctx, "Unknown product", map[string]interface{}{
			"error": err.Error(),
		})
		return response.Fail(c, http.StatusUnprocessableEntity, "Unknown product")
	}

	// パネル注文エラー
	var orderErr *fulfillment.OrderError
	if errors.As(err, &orderErr) {
		logger.Warn(ctx, "Panel order failed", map[string]interface{}{
			"kind":  string(orderErr.Kind),
			"error": orderErr.Error(),
		})
		switch orderErr.Kind {
		case fulfillment.ErrorKindInvalidLink:
			return response.Fail(c, http.StatusBadRequest, "The panel rejected this link")
		case fulfillment.ErrorKindInsufficientBalance:
			return response.Fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
		case fulfillment.ErrorKindServiceUnavailable:
			return response.Fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
		case fulfillment.ErrorKindTransient:
			return response.Fail(c, http.StatusBadGateway, "Upstream provider unavailable")
		default:
			return response.Fail(c, http.StatusBadGateway, "Order rejected by provider")
		}
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return response.Fail(c, httpErr.Code, message)
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return response.Fail(c, http.StatusInternalServerError, "An unexpected error occurred")
}
