package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewallet/carewallet/internal/access"
	"github.com/carewallet/carewallet/internal/apierror"
	"github.com/carewallet/carewallet/internal/identity"
	"github.com/carewallet/carewallet/internal/ledger"
	"github.com/carewallet/carewallet/internal/logging"
	"github.com/carewallet/carewallet/internal/middleware"
)

type tokenAuth map[string]access.Principal

func (a tokenAuth) Authenticate(_ context.Context, token string) (access.Principal, error) {
	if p, ok := a[token]; ok {
		return p, nil
	}
	return access.Principal{}, errors.New("invalid token")
}

func newPaymentsApp(t *testing.T) *fiber.App {
	t.Helper()
	led := ledger.NewInMemory()
	_, err := ledger.Fund(context.Background(), led, "patient-1", "50")
	require.NoError(t, err)

	h := NewHandler(NewService(led, nil, logging.Discard()))
	app := fiber.New(fiber.Config{ErrorHandler: apierror.Handler(logging.Discard())})
	app.Use(middleware.JWTAuth(tokenAuth{
		"patient": {UserID: "patient-1", Role: identity.RolePatient},
		"admin":   {UserID: "admin-1", Role: identity.RoleAdmin},
	}))
	app.Post("/wallet/payment", middleware.RequireCapability(access.WalletPay), h.Pay)
	app.Post("/admin/wallets/:userId/refund", middleware.RequireCapability(access.WalletRefund), h.Refund)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, token, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHandlerPaymentRefundFlow(t *testing.T) {
	app := newPaymentsApp(t)

	status, body := postJSON(t, app, "/wallet/payment", "patient", `{"amount": 30, "appointmentId": "appt-1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "20.00", body["balance"])
	paymentID := body["transaction"].(map[string]any)["id"].(string)

	status, body = postJSON(t, app, "/wallet/payment", "patient", `{"amount": 25}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ledger.ErrInsufficientBalance.Error(), body["error"])

	status, _ = postJSON(t, app, "/admin/wallets/patient-1/refund", "patient", `{"amount": 10, "originalTransactionId": "`+paymentID+`"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = postJSON(t, app, "/admin/wallets/patient-1/refund", "admin", `{"amount": 10, "originalTransactionId": "`+paymentID+`"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "30.00", body["balance"])
	assert.Equal(t, paymentID, body["transaction"].(map[string]any)["original_transaction_id"])

	status, _ = postJSON(t, app, "/admin/wallets/patient-1/refund", "admin", `{"amount": 25, "originalTransactionId": "`+paymentID+`"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = postJSON(t, app, "/admin/wallets/patient-1/refund", "admin", `{"amount": 1, "originalTransactionId": "nope"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = postJSON(t, app, "/admin/wallets/patient-1/refund", "admin", `{"amount": 1}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = postJSON(t, app, "/admin/wallets/ghost/refund", "admin", `{"amount": 1, "originalTransactionId": "`+paymentID+`"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHandlerPaymentDuplicateAppointment(t *testing.T) {
	app := newPaymentsApp(t)

	status, first := postJSON(t, app, "/wallet/payment", "patient", `{"amount": "10.00", "appointmentId": "appt-7"}`)
	require.Equal(t, http.StatusOK, status)
	status, second := postJSON(t, app, "/wallet/payment", "patient", `{"amount": "10.00", "appointmentId": "appt-7"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, second["duplicate"])
	assert.Equal(t, first["balance"], second["balance"])
	assert.Equal(t, first["transaction"].(map[string]any)["id"], second["transaction"].(map[string]any)["id"])
}
