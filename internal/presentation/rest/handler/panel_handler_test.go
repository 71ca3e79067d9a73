package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"redeem-server/internal/domain/fulfillment"
	restmiddleware "redeem-server/internal/presentation/rest/middleware"
)

func panelCatalog() []fulfillment.Service {
	return []fulfillment.Service{
		{ID: 101, Name: "YouTube Subscribers - No Drop", Type: "Default", Category: "YouTube", Rate: 4.50, Min: 100, Max: 50000, Refill: true},
		{ID: 201, Name: "Instagram Followers", Type: "Default", Category: "Instagram", Rate: 2.80, Min: 50, Max: 20000},
	}
}

func TestPanelHandler_SearchServices(t *testing.T) {
	t.Run("正常系: 検索結果を返す", func(t *testing.T) {
		panel := new(MockPanelClient)
		panel.On("GetServices", mock.Anything).Return(panelCatalog(), nil)
		h := NewPanelHandler(newTestPanelService(panel))

		rec := performJSONRequest(t, h.SearchServices, http.MethodPost, "/api/v1/search", `{"query": "youtube"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := parseEnvelope(t, rec)
		assert.Equal(t, true, envelope["success"])
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, float64(1), data["count"])
		panel.AssertExpectations(t)
	})

	t.Run("異常系: パネル障害", func(t *testing.T) {
		panel := new(MockPanelClient)
		panel.On("GetServices", mock.Anything).Return(nil, errors.New("panel unavailable"))
		h := NewPanelHandler(newTestPanelService(panel))

		rec := performJSONRequest(t, h.SearchServices, http.MethodPost, "/api/v1/search", `{}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		envelope := parseEnvelope(t, rec)
		assert.Equal(t, false, envelope["success"])
	})
}

func TestPanelHandler_GetServices(t *testing.T) {
	t.Run("正常系: カテゴリ別カタログを返す", func(t *testing.T) {
		panel := new(MockPanelClient)
		panel.On("GetServices", mock.Anything).Return(panelCatalog(), nil)
		h := NewPanelHandler(newTestPanelService(panel))

		rec := performJSONRequest(t, h.GetServices, http.MethodGet, "/api/v1/services", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := parseEnvelope(t, rec)
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, float64(2), data["total"])
		categories := data["categories"].(map[string]interface{})
		assert.Contains(t, categories, "YouTube")
		assert.Contains(t, categories, "Instagram")
	})
}

func TestPanelHandler_GetBalance(t *testing.T) {
	t.Run("正常系: 残高を返す", func(t *testing.T) {
		panel := new(MockPanelClient)
		panel.On("GetBalance", mock.Anything).Return(&fulfillment.Balance{Amount: 42.5, Currency: "USD"}, nil)
		h := NewPanelHandler(newTestPanelService(panel))

		rec := performJSONRequest(t, h.GetBalance, http.MethodGet, "/api/v1/admin/balance", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := parseEnvelope(t, rec)
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, 42.5, data["balance"])
		assert.Equal(t, "USD", data["currency"])
	})
}

func TestPanelHandler_CreateOrder(t *testing.T) {
	t.Run("正常系: 直接発注に成功", func(t *testing.T) {
		panel := new(MockPanelClient)
		panel.On("CreateOrder", mock.Anything, int64(101), "https://youtube.com/@example", 1000).Return(int64(555), nil)
		h := NewPanelHandler(newTestPanelService(panel))

		body := `{"service_id": 101, "link": "https://youtube.com/@example", "quantity": 1000}`
		rec := performJSONRequest(t, h.CreateOrder, http.MethodPost, "/api/v1/admin/order", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := parseEnvelope(t, rec)
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, float64(555), data["order_id"])
		panel.AssertExpectations(t)
	})

	t.Run("異常系: パネルが注文を拒否", func(t *testing.T) {
		panel := new(MockPanelClient)
		panel.On("CreateOrder", mock.Anything, int64(101), "https://youtube.com/@example", 1000).
			Return(int64(0), fulfillment.NewOrderError(fulfillment.ErrorKindInvalidLink, "incorrect link", nil))
		h := NewPanelHandler(newTestPanelService(panel))

		body := `{"service_id": 101, "link": "https://youtube.com/@example", "quantity": 1000}`
		rec := performJSONRequest(t, h.CreateOrder, http.MethodPost, "/api/v1/admin/order", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		envelope := parseEnvelope(t, rec)
		assert.Equal(t, false, envelope["success"])
	})
}

func TestPanelHandler_GetOrderStatus(t *testing.T) {
	t.Run("正常系: 注文ステータスを返す", func(t *testing.T) {
		panel := new(MockPanelClient)
		panel.On("GetOrderStatus", mock.Anything, int64(555)).Return(&fulfillment.OrderStatus{
			OrderID: 555, Status: "Completed", Charge: "4.50", Currency: "USD",
		}, nil)
		h := NewPanelHandler(newTestPanelService(panel))

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/order/555", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("order_id")
		c.SetParamValues("555")

		wrapped := restmiddleware.ErrorHandlerMiddleware(newTestLogger())(h.GetOrderStatus)
		require.NoError(t, wrapped(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := parseEnvelope(t, rec)
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, "Completed", data["status"])
	})

	t.Run("異常系: order_idが数値でない", func(t *testing.T) {
		panel := new(MockPanelClient)
		h := NewPanelHandler(newTestPanelService(panel))

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/order/abc", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("order_id")
		c.SetParamValues("abc")

		wrapped := restmiddleware.ErrorHandlerMiddleware(newTestLogger())(h.GetOrderStatus)
		require.NoError(t, wrapped(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPanelHandler_Refill(t *testing.T) {
	t.Run("正常系: リフィルを依頼できる", func(t *testing.T) {
		panel := new(MockPanelClient)
		panel.On("Refill", mock.Anything, int64(555)).Return(int64(42), nil)
		h := NewPanelHandler(newTestPanelService(panel))

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/order/555/refill", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("order_id")
		c.SetParamValues("555")

		wrapped := restmiddleware.ErrorHandlerMiddleware(newTestLogger())(h.Refill)
		require.NoError(t, wrapped(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := parseEnvelope(t, rec)
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, float64(42), data["refill_id"])
	})
}
