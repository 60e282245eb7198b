package zenoti

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-engage/internal/config"
)

func TestSearchGuestByPhone(t *testing.T) {
	var gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/guests/search", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"guests":[{"id":"g1","center_id":"c1",
			"personal_info":{"first_name":"Priya","last_name":"Sharma","mobile_phone":{"number":"9876543210"}},
			"address_info":{"city":"Mumbai","zip_code":"400053"}}]}`))
	}))
	defer server.Close()

	client := NewClient(&config.Config{ZenotiAPIKey: "zkey"})
	client.SetBaseURL(server.URL)

	guests, err := client.SearchGuestByPhone("+91 98765 43210")
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "g1", guests[0].ID)
	assert.Equal(t, "Priya", guests[0].PersonalInfo.FirstName)

	assert.Equal(t, "apikey zkey", gotAuth)
	assert.Contains(t, gotQuery, "phone=%2B91+98765+43210")
}

func TestGuestAddressByPhone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"guests":[
			{"id":"g1","address_info":{"city":"Mumbai"}},
			{"id":"g2","address_info":{"city":"Pune"}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(&config.Config{})
	client.SetBaseURL(server.URL)

	// first matching guest wins
	address, err := client.GuestAddressByPhone("9876543210")
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", address["city"])
}

func TestGuestAddressByPhoneNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"guests":[]}`))
	}))
	defer server.Close()

	client := NewClient(&config.Config{})
	client.SetBaseURL(server.URL)

	_, err := client.GuestAddressByPhone("9876543210")
	assert.Error(t, err)
}

func TestCenterSalesPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/centers/c1/sales", r.URL.Path)
		assert.Equal(t, "2026-08-01", r.URL.Query().Get("start_date"))
		w.Write([]byte(`{"total_sales":123}`))
	}))
	defer server.Close()

	client := NewClient(&config.Config{})
	client.SetBaseURL(server.URL)

	raw, err := client.CenterSales("c1", "2026-08-01", "2026-08-25")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_sales":123}`, string(raw))
}
