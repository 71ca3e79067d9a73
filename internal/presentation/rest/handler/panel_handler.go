package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	panelapp "redeem-server/internal/application/panel"
	"redeem-server/internal/presentation/rest/response"
)

// PanelHandler パネルカタログ・注文関連ハンドラー
type PanelHandler struct {
	panelService *panelapp.PanelApplicationService
}

// NewPanelHandler 新しいPanelHandlerを作成
func NewPanelHandler(panelService *panelapp.PanelApplicationService) *PanelHandler {
	return &PanelHandler{
		panelService: panelService,
	}
}

// SearchServices サービス検索ハンドラー
// POST /api/v1/search
func (h *PanelHandler) SearchServices(c echo.Context) error {
	var reqBody panelapp.SearchServicesRequest

	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.panelService.SearchServices(c.Request().Context(), &reqBody)
	if err != nil {
		return err
	}

	return response.OK(c, "Services found", resp)
}

// GetServices カテゴリ別サービス一覧ハンドラー
// GET /api/v1/services
func (h *PanelHandler) GetServices(c echo.Context) error {
	resp, err := h.panelService.GetServices(c.Request().Context())
	if err != nil {
		return err
	}

	return response.OK(c, "Services retrieved", resp)
}

// GetBalance パネル残高取得ハンドラー（管理API）
// GET /api/v1/admin/balance
func (h *PanelHandler) GetBalance(c echo.Context) error {
	resp, err := h.panelService.GetBalance(c.Request().Context())
	if err != nil {
		return err
	}

	return response.OK(c, "Balance retrieved", resp)
}

// CreateOrder 直接発注ハンドラー（管理API）
// POST /api/v1/admin/order
func (h *PanelHandler) CreateOrder(c echo.Context) error {
	var reqBody panelapp.CreateOrderRequest

	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.panelService.CreateOrder(c.Request().Context(), &reqBody)
	if err != nil {
		return err
	}

	return response.OK(c, "Order created", resp)
}

// GetOrderStatus 注文ステータス取得ハンドラー（管理API）
// GET /api/v1/admin/order/:order_id
func (h *PanelHandler) GetOrderStatus(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order_id")
	}

	resp, err := h.panelService.GetOrderStatus(c.Request().Context(), orderID)
	if err != nil {
		return err
	}

	return response.OK(c, "Order status retrieved", resp)
}

// Refill リフィル依頼ハンドラー（管理API）
// POST /api/v1/admin/order/:order_id/refill
func (h *PanelHandler) Refill(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order_id")
	}

	resp, err := h.panelService.Refill(c.Request().Context(), orderID)
	if err != nil {
		return err
	}

	return response.OK(c, "Refill requested", resp)
}
