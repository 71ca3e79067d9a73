package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"redeem-server/internal/infrastructure/config"
	otelinfra "redeem-server/internal/infrastructure/observability/otel"
)

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		cfg            config.AdminAPIConfig
		apiKey         string
		forwardedFor   string
		expectedStatus int
	}{
		{
			name:           "正常系: 有効なAPIキー",
			cfg:            config.AdminAPIConfig{Enabled: true, APIKey: "admin-key"},
			apiKey:         "admin-key",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "異常系: APIキーなし",
			cfg:            config.AdminAPIConfig{Enabled: true, APIKey: "admin-key"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: APIキーが不正",
			cfg:            config.AdminAPIConfig{Enabled: true, APIKey: "admin-key"},
			apiKey:         "wrong-key",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: 管理APIが無効",
			cfg:            config.AdminAPIConfig{Enabled: false, APIKey: "admin-key"},
			apiKey:         "admin-key",
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "正常系: 許可リストに含まれるIP",
			cfg: config.AdminAPIConfig{
				Enabled: true, APIKey: "admin-key",
				AllowedIPs: []string{"203.0.113.10"},
			},
			apiKey:         "admin-key",
			forwardedFor:   "203.0.113.10",
			expectedStatus: http.StatusOK,
		},
		{
			name: "異常系: 許可リストに含まれないIP",
			cfg: config.AdminAPIConfig{
				Enabled: true, APIKey: "admin-key",
				AllowedIPs: []string{"203.0.113.10"},
			},
			apiKey:         "admin-key",
			forwardedFor:   "198.51.100.7",
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			if tt.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.forwardedFor)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			logger := otelinfra.NewLogger(otel.Tracer("test"))
			mw := APIKeyMiddleware(&tt.cfg, logger)
			handler := mw(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})

			require.NoError(t, handler(c))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus != http.StatusOK {
				var envelope map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
				assert.Equal(t, false, envelope["success"])
				assert.Contains(t, envelope, "timestamp")
			}
		})
	}
}
