package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	redemptionapp "redeem-server/internal/application/redemption"
	"redeem-server/internal/presentation/rest/response"
)

// RedemptionHandler コード検証・引き換え関連ハンドラー
type RedemptionHandler struct {
	redemptionService *redemptionapp.RedemptionApplicationService
}

// NewRedemptionHandler 新しいRedemptionHandlerを作成
func NewRedemptionHandler(redemptionService *redemptionapp.RedemptionApplicationService) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService: redemptionService,
	}
}

// ValidateCode コード検証ハンドラー
// POST /api/v1/validate-code
func (h *RedemptionHandler) ValidateCode(c echo.Context) error {
	var reqBody struct {
		Code string `json:"code"`
	}

	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	resp, err := h.redemptionService.Validate(c.Request().Context(), &redemptionapp.ValidateCodeRequest{
		Code: reqBody.Code,
	})
	if err != nil {
		return err
	}

	return response.OK(c, "Code is valid", resp)
}

// Redeem コード引き換えハンドラー
// POST /api/v1/redeem
func (h *RedemptionHandler) Redeem(c echo.Context) error {
	var reqBody struct {
		Code     string `json:"code"`
		Link     string `json:"link"`
		UserID   string `json:"user_id"`
		Username string `json:"username"`
	}

	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}
	if reqBody.Link == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "link is required")
	}
	if reqBody.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	resp, err := h.redemptionService.Redeem(c.Request().Context(), &redemptionapp.RedeemRequest{
		Code:     reqBody.Code,
		Link:     reqBody.Link,
		UserID:   reqBody.UserID,
		Username: reqBody.Username,
	})
	if err != nil {
		return err
	}

	return response.OK(c, "Code redeemed successfully", resp)
}

// ProvisionCodes コード一括発行ハンドラー（管理API）
// POST /api/v1/admin/codes
func (h *RedemptionHandler) ProvisionCodes(c echo.Context) error {
	var reqBody struct {
		Count        int    `json:"count"`
		ServiceID    int64  `json:"service_id"`
		Quantity     int    `json:"quantity"`
		Platform     string `json:"platform"`
		ServiceType  string `json:"service_type"`
		Requirements string `json:"requirements"`
		ExpiryDays   int    `json:"expiry_days"`
		Prefix       string `json:"prefix"`
		HasRefill    bool   `json:"has_refill"`
	}

	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.Count <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "count must be positive")
	}
	if reqBody.ServiceID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "service_id is required")
	}
	if reqBody.Quantity <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}

	resp, err := h.redemptionService.ProvisionCodes(c.Request().Context(), &redemptionapp.ProvisionCodesRequest{
		Count:        reqBody.Count,
		ServiceID:    reqBody.ServiceID,
		Quantity:     reqBody.Quantity,
		Platform:     reqBody.Platform,
		ServiceType:  reqBody.ServiceType,
		Requirements: reqBody.Requirements,
		ExpiryDays:   reqBody.ExpiryDays,
		Prefix:       reqBody.Prefix,
		HasRefill:    reqBody.HasRefill,
	})
	if err != nil {
		return err
	}

	return response.OK(c, "Codes generated", resp)
}
