// internal/paypal/client.go
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ailibrary/prompts-backend/internal/config"
)

// ErrMissingCredentials is returned when the client is constructed without
// API credentials. Checkout endpoints surface it as a configuration problem,
// never as a payer-facing error.
var ErrMissingCredentials = errors.New("paypal: client id and secret are not configured")

// APIError wraps a non-success response from the PayPal REST API. The raw
// body is kept for logs only; handlers must not echo it to clients.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal: %s failed with status %d", e.Operation, e.StatusCode)
}

// OrderPayload is the correlation payload attached to an order at creation
// time and echoed back by the processor at capture time.
type OrderPayload struct {
	ProductID    uuid.UUID `json:"product_id"`
	PlatformFee  float64   `json:"platform_fee"`
	SellerAmount float64   `json:"seller_amount"`
}

type CreateOrderResult struct {
	OrderID      string
	Status       string
	PlatformFee  float64
	SellerAmount float64
}

type CaptureResult struct {
	OrderID    string
	Status     string
	PayerID    string
	PayerEmail string
	PayerName  string
	Amount     float64
	Currency   string
	CustomID   string
}

type Client struct {
	cfg        config.PayPalConfig
	httpClient *http.Client
}

func NewClient(cfg config.PayPalConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FeeSplit divides a sale amount into the platform fee and the seller amount,
// both rounded to cents. The parts always sum back to the rounded amount.
func (c *Client) FeeSplit(amount float64) (platformFee, sellerAmount float64) {
	platformFee = round2(amount * c.cfg.FeePercent / 100)
	sellerAmount = round2(amount - platformFee)
	return platformFee, sellerAmount
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AccessToken exchanges the configured credentials for a bearer token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", ErrMissingCredentials
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal: token request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Operation: "token", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("paypal: decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", &APIError{Operation: "token", StatusCode: resp.StatusCode, Body: string(body)}
	}

	return tokenResp.AccessToken, nil
}

// CreateOrder submits a one-item order for the given product. The fee split
// is computed here and carried in the purchase unit custom_id so capture can
// settle without trusting the caller.
func (c *Client) CreateOrder(ctx context.Context, productID uuid.UUID, title string, amount float64, currency string) (*CreateOrderResult, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	if currency == "" {
		currency = c.cfg.DefaultCurrency
	}

	platformFee, sellerAmount := c.FeeSplit(amount)
	payload, err := json.Marshal(OrderPayload{
		ProductID:    productID,
		PlatformFee:  platformFee,
		SellerAmount: sellerAmount,
	})
	if err != nil {
		return nil, err
	}

	orderReq := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": productID.String(),
				"description":  title,
				"custom_id":    string(payload),
				"amount": map[string]string{
					"currency_code": currency,
					"value":         formatAmount(amount),
				},
			},
		},
	}

	var orderResp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.post(ctx, token, "/v2/checkout/orders", "create order", orderReq, &orderResp); err != nil {
		return nil, err
	}

	return &CreateOrderResult{
		OrderID:      orderResp.ID,
		Status:       orderResp.Status,
		PlatformFee:  platformFee,
		SellerAmount: sellerAmount,
	}, nil
}

// CaptureOrder finalizes a buyer-approved order and returns the payer
// identity, the captured amount and the echoed correlation payload.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var captureResp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Payer  struct {
			PayerID string `json:"payer_id"`
			Email   string `json:"email_address"`
			Name    struct {
				GivenName string `json:"given_name"`
				Surname   string `json:"surname"`
			} `json:"name"`
		} `json:"payer"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					Status   string `json:"status"`
					CustomID string `json:"custom_id"`
					Amount   struct {
						CurrencyCode string `json:"currency_code"`
						Value        string `json:"value"`
					} `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}

	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	if err := c.post(ctx, token, path, "capture order", nil, &captureResp); err != nil {
		return nil, err
	}

	result := &CaptureResult{
		OrderID:   captureResp.ID,
		Status:    captureResp.Status,
		PayerID:   captureResp.Payer.PayerID,
		PayerName: strings.TrimSpace(captureResp.Payer.Name.GivenName + " " + captureResp.Payer.Name.Surname),
	}
	result.PayerEmail = captureResp.Payer.Email

	if len(captureResp.PurchaseUnits) > 0 {
		captures := captureResp.PurchaseUnits[0].Payments.Captures
		if len(captures) > 0 {
			capture := captures[0]
			result.CustomID = capture.CustomID
			result.Currency = capture.Amount.CurrencyCode
			if amount, err := strconv.ParseFloat(capture.Amount.Value, 64); err == nil {
				result.Amount = amount
			}
		}
	}

	return result, nil
}

// DecodeOrderPayload parses an echoed custom_id. Callers must branch on ok
// rather than rely on a zero-value fallback.
func DecodeOrderPayload(customID string) (OrderPayload, bool) {
	var payload OrderPayload
	if customID == "" {
		return payload, false
	}
	if err := json.Unmarshal([]byte(customID), &payload); err != nil {
		return OrderPayload{}, false
	}
	if payload.ProductID == uuid.Nil {
		return OrderPayload{}, false
	}
	return payload, true
}

func (c *Client) post(ctx context.Context, token, path, operation string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal: %s: %w", operation, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Operation: operation, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("paypal: decode %s response: %w", operation, err)
		}
	}

	return nil
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(round2(amount), 'f', 2, 64)
}
