package payment

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"clinic-engage/internal/config"
)

// Client wraps the Razorpay REST API with basic auth.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.RazorpayBaseURL,
	}
}

// SetBaseURL overrides the API base, used in tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// RupeesToPaise converts an INR amount to the integer paise Razorpay expects.
func RupeesToPaise(rupees decimal.Decimal) int64 {
	return rupees.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// PaymentLink is the subset of Razorpay's payment link resource we use.
type PaymentLink struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
}

// LinkRequest describes a payment link to create.
type LinkRequest struct {
	AmountRupees  decimal.Decimal
	Description   string
	CustomerName  string
	CustomerPhone string
	ReferenceID   string
}

// CreatePaymentLink creates a Razorpay payment link and returns it.
func (c *Client) CreatePaymentLink(in LinkRequest) (*PaymentLink, error) {
	payload := map[string]any{
		"amount":      RupeesToPaise(in.AmountRupees),
		"currency":    "INR",
		"description": in.Description,
		"customer": map[string]any{
			"name":    in.CustomerName,
			"contact": in.CustomerPhone,
		},
		"notify":          map[string]any{"sms": true},
		"reminder_enable": true,
	}
	if in.ReferenceID != "" {
		payload["reference_id"] = in.ReferenceID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment link: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/payment_links", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.RazorpayKeyID, c.cfg.RazorpaySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("razorpay returned %d: %s", resp.StatusCode, string(respBody))
	}

	var link PaymentLink
	if err := json.Unmarshal(respBody, &link); err != nil {
		return nil, fmt.Errorf("failed to parse payment link response: %w", err)
	}
	return &link, nil
}

// FetchPayment reads one payment by ID.
func (c *Client) FetchPayment(paymentID string) (map[string]any, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.RazorpayKeyID, c.cfg.RazorpaySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("razorpay returned %d: %s", resp.StatusCode, string(respBody))
	}

	var out map[string]any
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to parse payment: %w", err)
	}
	return out, nil
}

// CapturePayment captures an authorized payment for the given paise amount.
func (c *Client) CapturePayment(paymentID string, amountPaise int64) error {
	payload, err := json.Marshal(map[string]any{
		"amount":   amountPaise,
		"currency": "INR",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal capture: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost,
		c.baseURL+"/payments/"+paymentID+"/capture", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.RazorpayKeyID, c.cfg.RazorpaySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("razorpay request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("razorpay capture returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// placeholder values that ship in env templates and must not reach production
var placeholderValues = map[string]bool{
	"":                    true,
	"your_key_id":         true,
	"your_key_secret":     true,
	"your_webhook_secret": true,
	"changeme":            true,
}

// Configured reports whether real Razorpay credentials are present.
func (c *Client) Configured() bool {
	return !placeholderValues[c.cfg.RazorpayKeyID] && !placeholderValues[c.cfg.RazorpaySecret]
}

// SignWebhookPayload computes the HMAC-SHA256 hex signature Razorpay
// puts in X-Razorpay-Signature. Exposed for webhook replay tooling.
func SignWebhookPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header with a
// constant-time compare.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	expected := SignWebhookPayload(body, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}
