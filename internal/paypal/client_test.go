// internal/paypal/client_test.go
package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailibrary/prompts-backend/internal/config"
)

func testConfig(baseURL string) config.PayPalConfig {
	return config.PayPalConfig{
		BaseURL:         baseURL,
		ClientID:        "test-client",
		ClientSecret:    "test-secret",
		FeePercent:      20.0,
		DefaultCurrency: "USD",
	}
}

func TestFeeSplit(t *testing.T) {
	client := NewClient(testConfig(""))

	tests := []struct {
		name         string
		amount       float64
		platformFee  float64
		sellerAmount float64
	}{
		{"round amount", 100.00, 20.00, 80.00},
		{"small amount", 0.05, 0.01, 0.04},
		{"repeating fraction", 9.99, 2.00, 7.99},
		{"zero", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, seller := client.FeeSplit(tt.amount)
			assert.Equal(t, tt.platformFee, fee)
			assert.Equal(t, tt.sellerAmount, seller)
			assert.InDelta(t, tt.amount, fee+seller, 0.001)
		})
	}
}

func TestFeeSplitCustomPercent(t *testing.T) {
	cfg := testConfig("")
	cfg.FeePercent = 12.5
	client := NewClient(cfg)

	fee, seller := client.FeeSplit(80.00)
	assert.Equal(t, 10.00, fee)
	assert.Equal(t, 70.00, seller)
}

func TestAccessTokenMissingCredentials(t *testing.T) {
	client := NewClient(config.PayPalConfig{BaseURL: "http://example.invalid"})

	_, err := client.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestCreateOrder(t *testing.T) {
	productID := uuid.New()

	var orderBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "test-client", user)
			assert.Equal(t, "test-secret", pass)
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-123"})
		case "/v2/checkout/orders":
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&orderBody))
			json.NewEncoder(w).Encode(map[string]string{"id": "ORDER-1", "status": "CREATED"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	result, err := client.CreateOrder(context.Background(), productID, "Test Prompt", 100.00, "USD")
	require.NoError(t, err)

	assert.Equal(t, "ORDER-1", result.OrderID)
	assert.Equal(t, "CREATED", result.Status)
	assert.Equal(t, 20.00, result.PlatformFee)
	assert.Equal(t, 80.00, result.SellerAmount)

	assert.Equal(t, "CAPTURE", orderBody["intent"])
	units := orderBody["purchase_units"].([]interface{})
	require.Len(t, units, 1)
	unit := units[0].(map[string]interface{})
	assert.Equal(t, productID.String(), unit["reference_id"])

	amount := unit["amount"].(map[string]interface{})
	assert.Equal(t, "100.00", amount["value"])
	assert.Equal(t, "USD", amount["currency_code"])

	// Fee split travels in the correlation payload and round-trips at capture.
	payload, ok := DecodeOrderPayload(unit["custom_id"].(string))
	require.True(t, ok)
	assert.Equal(t, productID, payload.ProductID)
	assert.Equal(t, 20.00, payload.PlatformFee)
	assert.Equal(t, 80.00, payload.SellerAmount)
}

func TestCaptureOrder(t *testing.T) {
	productID := uuid.New()
	customID, _ := json.Marshal(OrderPayload{ProductID: productID, PlatformFee: 5.00, SellerAmount: 20.00})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-123"})
		case "/v2/checkout/orders/ORDER-1/capture":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":     "ORDER-1",
				"status": "COMPLETED",
				"payer": map[string]interface{}{
					"payer_id":      "PAYER-9",
					"email_address": "buyer@example.com",
					"name":          map[string]string{"given_name": "Ada", "surname": "Lovelace"},
				},
				"purchase_units": []map[string]interface{}{
					{
						"payments": map[string]interface{}{
							"captures": []map[string]interface{}{
								{
									"status":    "COMPLETED",
									"custom_id": string(customID),
									"amount":    map[string]string{"currency_code": "USD", "value": "25.00"},
								},
							},
						},
					},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	result, err := client.CaptureOrder(context.Background(), "ORDER-1")
	require.NoError(t, err)

	assert.Equal(t, "ORDER-1", result.OrderID)
	assert.Equal(t, "COMPLETED", result.Status)
	assert.Equal(t, "PAYER-9", result.PayerID)
	assert.Equal(t, "buyer@example.com", result.PayerEmail)
	assert.Equal(t, "Ada Lovelace", result.PayerName)
	assert.Equal(t, 25.00, result.Amount)
	assert.Equal(t, "USD", result.Currency)

	payload, ok := DecodeOrderPayload(result.CustomID)
	require.True(t, ok)
	assert.Equal(t, productID, payload.ProductID)
	assert.Equal(t, 5.00, payload.PlatformFee)
	assert.Equal(t, 20.00, payload.SellerAmount)
}

func TestCreateOrderUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-123"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"name":"INTERNAL_SERVER_ERROR"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.CreateOrder(context.Background(), uuid.New(), "Test", 10.00, "USD")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "create order", apiErr.Operation)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestDecodeOrderPayload(t *testing.T) {
	productID := uuid.New()
	valid, _ := json.Marshal(OrderPayload{ProductID: productID, PlatformFee: 1.00, SellerAmount: 4.00})

	tests := []struct {
		name     string
		customID string
		ok       bool
	}{
		{"valid payload", string(valid), true},
		{"empty", "", false},
		{"not json", "ORDER-REF-1", false},
		{"json without product id", `{"platform_fee":1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, ok := DecodeOrderPayload(tt.customID)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, productID, payload.ProductID)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "100.00", formatAmount(100))
	assert.Equal(t, "9.99", formatAmount(9.99))
	assert.Equal(t, "0.10", formatAmount(0.1))
	assert.Equal(t, "25.50", formatAmount(25.499999999999996))
}
