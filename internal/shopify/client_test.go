package shopify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-engage/internal/config"
)

func TestUpdateVariantPrice(t *testing.T) {
	var gotPath, gotToken string
	var gotBody map[string]map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"variant":{"id":42,"price":"1499.00"}}`))
	}))
	defer server.Close()

	client := NewClient(&config.Config{ShopifyAdminToken: "shpat_x"})
	client.SetBaseURL(server.URL)

	err := client.UpdateVariantPrice(42, decimal.RequireFromString("1499"))
	require.NoError(t, err)

	assert.Equal(t, "/admin/api/2024-07/variants/42.json", gotPath)
	assert.Equal(t, "shpat_x", gotToken)
	// price sent as a two-decimal string
	assert.Equal(t, "1499.00", gotBody["variant"]["price"])
	assert.EqualValues(t, 42, gotBody["variant"]["id"])
}

func TestUpdateVariantPriceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":"Not Found"}`))
	}))
	defer server.Close()

	client := NewClient(&config.Config{})
	client.SetBaseURL(server.URL)

	err := client.UpdateVariantPrice(99, decimal.NewFromInt(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
