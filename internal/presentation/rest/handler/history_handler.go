package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	historyapp "redeem-server/internal/application/history"
	"redeem-server/internal/presentation/rest/response"
)

// HistoryHandler 引き換え履歴・コード一覧関連ハンドラー
type HistoryHandler struct {
	historyService *historyapp.HistoryApplicationService
}

// NewHistoryHandler 新しいHistoryHandlerを作成
func NewHistoryHandler(historyService *historyapp.HistoryApplicationService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// GetUserRedemptions ユーザーの引き換え履歴取得ハンドラー
// POST /api/v1/user/redemptions
func (h *HistoryHandler) GetUserRedemptions(c echo.Context) error {
	var reqBody struct {
		UserID string `json:"user_id"`
	}

	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	resp, err := h.historyService.GetUserRedemptions(c.Request().Context(), &historyapp.GetUserRedemptionsRequest{
		UserID: reqBody.UserID,
	})
	if err != nil {
		return err
	}

	return response.OK(c, "Redemption history retrieved", resp)
}

// ListCodes コード一覧取得ハンドラー（管理API）
// GET /api/v1/admin/codes?status=
func (h *HistoryHandler) ListCodes(c echo.Context) error {
	status := c.QueryParam("status")
	switch status {
	case "", "unused", "used", "invalidated":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
	}

	resp, err := h.historyService.ListCodes(c.Request().Context(), &historyapp.ListCodesRequest{
		Status: status,
	})
	if err != nil {
		return err
	}

	return response.OK(c, "Codes retrieved", resp)
}

// ListRedemptions 全引き換え履歴取得ハンドラー（管理API）
// GET /api/v1/admin/redemptions
func (h *HistoryHandler) ListRedemptions(c echo.Context) error {
	resp, err := h.historyService.ListRedemptions(c.Request().Context())
	if err != nil {
		return err
	}

	return response.OK(c, "Redemptions retrieved", resp)
}
