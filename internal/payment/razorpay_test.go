package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-engage/internal/config"
)

func TestRupeesToPaise(t *testing.T) {
	assert.EqualValues(t, 150000, RupeesToPaise(decimal.NewFromInt(1500)))
	assert.EqualValues(t, 99950, RupeesToPaise(decimal.RequireFromString("999.50")))
	assert.EqualValues(t, 1, RupeesToPaise(decimal.RequireFromString("0.01")))
	// sub-paise amounts round to the nearest paisa
	assert.EqualValues(t, 12346, RupeesToPaise(decimal.RequireFromString("123.456")))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment_link.paid"}`)
	secret := "whsec"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, signature, SignWebhookPayload(body, secret))
	assert.True(t, VerifyWebhookSignature(body, signature, secret))
	assert.False(t, VerifyWebhookSignature(body, signature, "wrong-secret"))
	assert.False(t, VerifyWebhookSignature([]byte("tampered"), signature, secret))
	assert.False(t, VerifyWebhookSignature(body, "deadbeef", secret))
}

func TestCreatePaymentLink(t *testing.T) {
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/payment_links", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]any{
			"id":        "plink_1",
			"short_url": "https://rzp.io/l/abc",
			"status":    "created",
			"amount":    150000,
		})
	}))
	defer server.Close()

	cfg := &config.Config{
		RazorpayKeyID:   "key_id",
		RazorpaySecret:  "key_secret",
		RazorpayBaseURL: server.URL,
	}
	client := NewClient(cfg)

	link, err := client.CreatePaymentLink(LinkRequest{
		AmountRupees:  decimal.NewFromInt(1500),
		Description:   "Consultation fee",
		CustomerName:  "Priya",
		CustomerPhone: "+919876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "plink_1", link.ID)
	assert.Equal(t, "https://rzp.io/l/abc", link.ShortURL)

	// rupees converted to paise on the wire
	assert.EqualValues(t, 150000, gotPayload["amount"])
	assert.Equal(t, "INR", gotPayload["currency"])
}

func TestCreatePaymentLinkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"description":"amount too small"}}`))
	}))
	defer server.Close()

	client := NewClient(&config.Config{RazorpayBaseURL: server.URL})
	_, err := client.CreatePaymentLink(LinkRequest{AmountRupees: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
