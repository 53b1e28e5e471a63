package router

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/StoreFox/internal/pkg/suspension"
	"github.com/ManuelReschke/StoreFox/internal/pkg/webhookguard"
)

type stubSuspensionService struct{}

func (stubSuspensionService) RecordUnpaidOrder(context.Context, string, suspension.UnpaidOrderInput) error {
	return nil
}

func (stubSuspensionService) EvaluateAndApplySuspension(context.Context, string) (*suspension.EvaluationResult, error) {
	return &suspension.EvaluationResult{}, nil
}

func (stubSuspensionService) LiftSuspension(context.Context, string) (bool, error) {
	return false, nil
}

func (stubSuspensionService) AutoReactivateExpiredSuspensions(context.Context) (int, error) {
	return 2, nil
}

func (stubSuspensionService) Status(_ context.Context, id string) (*suspension.StatusView, error) {
	return &suspension.StatusView{CustomerID: id, Status: suspension.StatusActive, Threshold: suspension.UnpaidThreshold}, nil
}

func newTestApp() *fiber.App {
	app := fiber.New()
	InstallRouter(app, Dependencies{
		Suspension:    stubSuspensionService{},
		Guard:         webhookguard.NewMemoryGuard(time.Hour, time.Hour),
		AdminUsers:    map[string]string{"admin": "secret"},
		WebhookSecret: func(string) string { return "" },
	})
	return app
}

func basicAuth(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

func TestHealthz(t *testing.T) {
	resp, err := newTestApp().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminRoutesRequireCredentials(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"no credentials", "", fiber.StatusUnauthorized},
		{"wrong password", basicAuth("admin", "nope"), fiber.StatusUnauthorized},
		{"valid", basicAuth("admin", "secret"), fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/api/suspensions/sweep", nil)
			if tt.auth != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.auth)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAdminSuspensionStatusRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/api/customers/alice@example.com/suspension", nil)
	req.Header.Set(fiber.HeaderAuthorization, basicAuth("admin", "secret"))

	resp, err := newTestApp().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebhookRouteIsPublic(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments/stripe", strings.NewReader(`{}`))
	resp, err := newTestApp().Test(req, -1)
	require.NoError(t, err)
	// Reaches the handler; the provider has no secret configured.
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminSuspensionStatusRoute_EscapedCustomerID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/api/customers/alice%40example.com/suspension", nil)
	req.Header.Set(fiber.HeaderAuthorization, basicAuth("admin", "secret"))

	resp, err := newTestApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "alice@example.com", body["customer_id"])
}
