package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	webhookapp "redeem-server/internal/application/webhook"
	"redeem-server/internal/presentation/rest/response"
)

// WebhookHandler ECプラットフォームからの販売Webhookハンドラー
type WebhookHandler struct {
	webhookService *webhookapp.WebhookApplicationService
}

// NewWebhookHandler 新しいWebhookHandlerを作成
func NewWebhookHandler(webhookService *webhookapp.WebhookApplicationService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// HandleSellauth 販売Webhook受信ハンドラー
// POST /webhook/sellauth
func (h *WebhookHandler) HandleSellauth(c echo.Context) error {
	// 署名検証は生のボディに対して行う
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	signature := c.Request().Header.Get("X-Sellauth-Signature")
	if !h.webhookService.VerifySignature(body, signature) {
		return response.Fail(c, http.StatusUnauthorized, "Invalid webhook signature")
	}

	var event webhookapp.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook payload")
	}

	result, err := h.webhookService.HandleEvent(c.Request().Context(), &event)
	if err != nil {
		return err
	}

	return response.OK(c, "Webhook processed", result)
}
