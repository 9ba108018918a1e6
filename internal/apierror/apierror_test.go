package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewallet/carewallet/internal/ledger"
	"github.com/carewallet/carewallet/internal/logging"
)

func TestFromLedger(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{ledger.ErrInvalidAmount, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", ledger.ErrInsufficientBalance), http.StatusBadRequest},
		{ledger.ErrWalletNotFound, http.StatusNotFound},
		{ledger.ErrOriginalNotFound, http.StatusNotFound},
		{ledger.ErrRefundExceedsPayment, http.StatusConflict},
		{errors.Join(ledger.ErrStorage, errors.New("conn reset")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
		{fiber.NewError(http.StatusTeapot, "tea"), http.StatusTeapot},
	}
	for _, tc := range cases {
		var fe *fiber.Error
		require.True(t, errors.As(FromLedger(tc.err), &fe))
		assert.Equal(t, tc.code, fe.Code, tc.err.Error())
	}
	assert.NoError(t, FromLedger(nil))
}

func TestStorageDetailsHidden(t *testing.T) {
	err := FromLedger(errors.Join(ledger.ErrStorage, errors.New("password=hunter2")))
	assert.Equal(t, internalMessage, err.(*fiber.Error).Message)
}

func TestHandlerRendersEnvelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: Handler(logging.Discard())})
	app.Get("/known", func(c *fiber.Ctx) error { return FromLedger(ledger.ErrInsufficientBalance) })
	app.Get("/unknown", func(c *fiber.Ctx) error { return errors.New("secret detail") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/known", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, ledger.ErrInsufficientBalance.Error(), body["error"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, internalMessage, body["error"])
}
