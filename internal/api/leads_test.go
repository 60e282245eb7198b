package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-engage/internal/config"
	"clinic-engage/internal/zoho"
)

func newZohoLeadRouter(t *testing.T, apiHandler http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	}))
	t.Cleanup(tokenServer.Close)

	apiServer := httptest.NewServer(apiHandler)
	t.Cleanup(apiServer.Close)

	crm := zoho.NewClient(&config.Config{
		ZohoClientID:     "cid",
		ZohoClientSecret: "secret",
		ZohoRefreshToken: "rt",
		ZohoTokenURL:     tokenServer.URL,
		ZohoAPIBase:      apiServer.URL,
	})

	handler := NewLeadHandler(newTestDB(t), crm)
	router := gin.New()
	router.GET("/leads/zoho", handler.ZohoLeads)
	return router
}

func TestZohoLeadsDateFilters(t *testing.T) {
	var gotCriteria string
	router := newZohoLeadRouter(t, func(w http.ResponseWriter, r *http.Request) {
		gotCriteria = r.URL.Query().Get("criteria")
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/leads/zoho?from=2026-08-18&to=2026-08-24", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// dates travel to Zoho as IST day boundaries, to inclusive
	assert.Contains(t, gotCriteria, "Created_Time:greater_equal:2026-08-18T00:00:00+05:30")
	assert.Contains(t, gotCriteria, "Created_Time:less_equal:2026-08-24T23:59:59+05:30")
}

func TestZohoLeadsRejectsBadDate(t *testing.T) {
	router := newZohoLeadRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/leads/zoho?from=18-08-2026", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
