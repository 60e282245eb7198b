package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"clinic-engage/internal/config"
)

const adminAPIVersion = "2024-07"

// Client talks to the Shopify Admin REST API for one shop.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    fmt.Sprintf("https://%s.myshopify.com", cfg.ShopifyShop),
	}
}

// SetBaseURL overrides the shop URL, used in tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

type variantEnvelope struct {
	Variant variantBody `json:"variant"`
}

type variantBody struct {
	ID    int64  `json:"id"`
	Price string `json:"price"`
}

// UpdateVariantPrice sets the price of a variant. Shopify wants the
// price as a decimal string, so the amount is formatted to two places.
func (c *Client) UpdateVariantPrice(variantID int64, price decimal.Decimal) error {
	payload, err := json.Marshal(variantEnvelope{Variant: variantBody{
		ID:    variantID,
		Price: price.StringFixed(2),
	}})
	if err != nil {
		return fmt.Errorf("failed to marshal variant: %w", err)
	}

	url := fmt.Sprintf("%s/admin/api/%s/variants/%d.json", c.baseURL, adminAPIVersion, variantID)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.cfg.ShopifyAdminToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("shopify returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
